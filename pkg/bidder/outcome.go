package bidder

import "errors"

// Errors
var (
	ErrNoOpenRound = errors.New("no open round: update requires a preceding bid")
)

// Outcome is what a bidder keeps after a round resolves.
//
// When Won is false, PricePaid holds the winning price of the round rather
// than the bidder's own bid, so losers can measure how close they were.
type Outcome[C any] struct {
	Won       bool
	PricePaid C
	ItemValue C
}
