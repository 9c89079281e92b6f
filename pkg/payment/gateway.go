// Package payment charges the discounted price when a user accepts the
// downsell offer. The stub gateway stands in for a real processor; the
// rest of the system only sees the Gateway interface.
package payment

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// ErrDeclined is returned when the charge does not go through.
var ErrDeclined = errors.New("payment: charge declined")

type Charge struct {
	TransactionID string
	AmountCents   int
	ChargedAt     time.Time
}

type Gateway interface {
	// ChargeDownsell charges the user the discounted amount. A nil error
	// means the money moved; callers must not proceed on error.
	ChargeDownsell(ctx context.Context, userID uuid.UUID, amountCents int) (*Charge, error)
}

// StubGateway simulates a processor: a short fixed delay, then success at
// a configurable rate.
type StubGateway struct {
	Delay       time.Duration
	SuccessRate float64
	rng         *rand.Rand
}

func NewStubGateway() *StubGateway {
	return &StubGateway{
		Delay:       500 * time.Millisecond,
		SuccessRate: 0.95,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewStubGatewaySeeded pins the random source for deterministic tests.
func NewStubGatewaySeeded(seed int64) *StubGateway {
	g := NewStubGateway()
	g.Delay = 0
	g.rng = rand.New(rand.NewSource(seed))
	return g
}

func (g *StubGateway) ChargeDownsell(ctx context.Context, userID uuid.UUID, amountCents int) (*Charge, error) {
	if g.Delay > 0 {
		select {
		case <-time.After(g.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if g.rng.Float64() >= g.SuccessRate {
		return nil, ErrDeclined
	}

	return &Charge{
		TransactionID: fmt.Sprintf("txn_%s", uuid.NewString()),
		AmountCents:   amountCents,
		ChargedAt:     time.Now(),
	}, nil
}
