package bidder

import (
	"github.com/erain9/sealedbid/pkg/core"
)

// Bidder is an auction participant. S is the auction state shape the
// surrounding mechanism hands to participants.
//
// Per round the mechanism calls Bid once, resolves the book, then calls
// Update once with the winner and the winning payment.
type Bidder[C, S any] interface {
	// ID returns the bidder identifier
	ID() core.Identifier
	// Bid returns the amount to submit for the current round
	Bid(state S) C
	// Update records the resolved round in the bidder history
	Update(winner core.Identifier, winningPayment C) error
}

// RoundState is the default auction state passed to bidders
type RoundState[C any] struct {
	// Round number, starting at 1
	Round int
	// Number of bidders taking part in the round
	Competitors int
	// Winning payments of previous rounds, oldest first
	PriceHistory []C
}
