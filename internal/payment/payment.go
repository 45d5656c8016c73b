package payment

import (
	"context"
	"errors"
)

var ErrDeclined = errors.New("payment declined")

type ChargeRequest struct {
	Amount         int64
	Currency       string
	Source         string
	Description    string
	IdempotencyKey string
}

// Charge is what the gateway confirmed. Amount is the captured amount in the
// smallest currency unit and may differ from the requested one.
type Charge struct {
	ID     string
	Amount int64
	Status string
}

type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*Charge, error)
}
