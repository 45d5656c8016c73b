package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImageStore_RequiresBucket(t *testing.T) {
	t.Parallel()

	_, err := NewImageStore(context.Background(), Config{Region: "us-east-1"})
	require.Error(t, err)
}

func TestImageStore_PresignUpload(t *testing.T) {
	t.Parallel()

	store, err := NewImageStore(context.Background(), Config{
		BaseEndpoint: "http://localhost:9000",
		Region:       "us-east-1",
		Bucket:       "images",
		AccessKey:    "minio",
		SecretKey:    "minio-secret",
	})
	require.NoError(t, err)

	userID := uuid.New()
	up, err := store.PresignUpload(context.Background(), userID, "Photo.JPG")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(up.Key, "items/"+userID.String()+"/"))
	assert.True(t, strings.HasSuffix(up.Key, ".jpg"))
	assert.Equal(t, "http://localhost:9000/images/"+up.Key, up.PublicURL)

	u, err := url.Parse(up.UploadURL)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/images/"+up.Key, u.Path)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
}

func TestImageStore_PublicURL(t *testing.T) {
	t.Parallel()

	s := &ImageStore{cfg: Config{Bucket: "b", Region: "eu-west-1", PublicBaseURL: "https://cdn.example.com/"}}
	assert.Equal(t, "https://cdn.example.com/k.png", s.publicURL("k.png"))

	s.cfg.PublicBaseURL = ""
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com/k.png", s.publicURL("k.png"))
}
