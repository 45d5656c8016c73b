package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/charge"
)

// StripeClient creates charges through the Stripe charges API.
type StripeClient struct {
	charges charge.Client
}

// NewStripeClient builds a client with its own backend so the base URL and
// timeout never leak into the stripe package globals. An empty baseURL means
// the live API.
func NewStripeClient(baseURL, secretKey string, timeout time.Duration) (*StripeClient, error) {
	if secretKey == "" {
		return nil, errors.New("stripe: secret key is empty")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	cfg := &stripe.BackendConfig{
		HTTPClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		// retries are driven by the caller's idempotency key
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	}
	if baseURL != "" {
		cfg.URL = stripe.String(baseURL)
	}

	return &StripeClient{
		charges: charge.Client{B: stripe.GetBackendWithConfig(stripe.APIBackend, cfg), Key: secretKey},
	}, nil
}

func (c *StripeClient) Charge(ctx context.Context, in ChargeRequest) (*Charge, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("stripe: amount must be positive, got %d", in.Amount)
	}
	if in.Source == "" {
		return nil, errors.New("stripe: payment source is empty")
	}

	params := &stripe.ChargeParams{
		Amount:   stripe.Int64(in.Amount),
		Currency: stripe.String(strings.ToLower(in.Currency)),
	}
	params.Context = ctx
	if in.Description != "" {
		params.Description = stripe.String(in.Description)
	}
	if in.IdempotencyKey != "" {
		params.SetIdempotencyKey(in.IdempotencyKey)
	}
	if err := params.SetSource(in.Source); err != nil {
		return nil, fmt.Errorf("stripe: source: %w", err)
	}

	ch, err := c.charges.New(params)
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) {
			if se.Type == stripe.ErrorTypeCard || se.HTTPStatusCode == http.StatusPaymentRequired {
				return nil, fmt.Errorf("%w: %s", ErrDeclined, se.Msg)
			}
			return nil, fmt.Errorf("stripe: %s (%d): %s", se.Type, se.HTTPStatusCode, se.Msg)
		}
		return nil, fmt.Errorf("stripe: create charge: %w", err)
	}
	if ch.ID == "" {
		return nil, errors.New("stripe: response without charge id")
	}
	if ch.Status == stripe.ChargeStatusFailed {
		return nil, fmt.Errorf("%w: charge %s failed", ErrDeclined, ch.ID)
	}

	return &Charge{ID: ch.ID, Amount: ch.Amount, Status: string(ch.Status)}, nil
}
