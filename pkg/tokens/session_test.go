package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-session-secret")

func TestSessionToken_RoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tok, err := NewSessionToken("user-1", now, now.Add(time.Hour), testSecret)
	require.NoError(t, err)

	claims, err := SessionClaimsFromToken(tok, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, now.Add(time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestSessionClaimsFromToken_Rejects(t *testing.T) {
	t.Parallel()

	now := time.Now()
	expired, err := NewSessionToken("u", now.Add(-2*time.Hour), now.Add(-time.Hour), testSecret)
	require.NoError(t, err)

	otherKey, err := NewSessionToken("u", now, now.Add(time.Hour), []byte("other"))
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u"},
	}).SignedString(testSecret)
	require.NoError(t, err)

	tests := map[string]string{
		"expired":     expired,
		"wrong key":   otherKey,
		"alg none":    unsigned,
		"missing exp": noExp,
		"garbage":     "not-a-jwt",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			claims, err := SessionClaimsFromToken(tok, testSecret)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}
