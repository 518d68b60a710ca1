package bidder

import (
	"github.com/erain9/sealedbid/pkg/core"
)

// StaticBidder bids the same amount every round
type StaticBidder[C any] struct {
	*State[C]
	amount    C
	valuation C
}

// NewStaticBidder creates a StaticBidder with a fixed bid and private valuation
func NewStaticBidder[C any](id core.Identifier, amount, valuation C) *StaticBidder[C] {
	return &StaticBidder[C]{
		State:     NewState[C](id),
		amount:    amount,
		valuation: valuation,
	}
}

// Bid implements Bidder
func (b *StaticBidder[C]) Bid(_ RoundState[C]) C {
	return b.Propose(b.amount)
}

// Update implements Bidder
func (b *StaticBidder[C]) Update(winner core.Identifier, winningPayment C) error {
	_, err := b.Record(winner, winningPayment, b.valuation)
	return err
}

// Valuation returns the private item valuation
func (b *StaticBidder[C]) Valuation() C {
	return b.valuation
}

var _ Bidder[int, RoundState[int]] = (*StaticBidder[int])(nil)
