package bidder

import (
	"github.com/erain9/sealedbid/pkg/core"
)

// State is the bookkeeping shared by every concrete bidder: identity,
// an append-only outcome history and the current proposed bid.
//
// A round is opened by Propose and closed by Record; Record without an
// open round fails, which rejects an update without a bid as well as a
// second update for the same round.
type State[C any] struct {
	id      core.Identifier
	history []Outcome[C]
	currBid C
	open    bool
}

// NewState creates an empty State for the given bidder
func NewState[C any](id core.Identifier) *State[C] {
	return &State[C]{
		id:      id,
		history: make([]Outcome[C], 0),
	}
}

// ID returns the bidder identifier
func (s *State[C]) ID() core.Identifier {
	return s.id
}

// Propose stores amount as the current bid and opens the round
func (s *State[C]) Propose(amount C) C {
	s.currBid = amount
	s.open = true
	return amount
}

// Record appends the outcome of the open round and closes it
func (s *State[C]) Record(winner core.Identifier, winningPayment, itemValue C) (Outcome[C], error) {
	if !s.open {
		return Outcome[C]{}, ErrNoOpenRound
	}

	outcome := Outcome[C]{
		Won:       winner == s.id,
		PricePaid: winningPayment,
		ItemValue: itemValue,
	}
	s.history = append(s.history, outcome)
	s.open = false

	return outcome, nil
}

// CurrentBid returns the last proposed bid
func (s *State[C]) CurrentBid() C {
	return s.currBid
}

// Open reports whether a bid was proposed and not yet resolved
func (s *State[C]) Open() bool {
	return s.open
}

// History returns a copy of all recorded outcomes, oldest first
func (s *State[C]) History() []Outcome[C] {
	out := make([]Outcome[C], len(s.history))
	copy(out, s.history)
	return out
}

// Rounds returns the number of resolved rounds
func (s *State[C]) Rounds() int {
	return len(s.history)
}

// Wins returns the number of rounds won
func (s *State[C]) Wins() int {
	wins := 0
	for _, o := range s.history {
		if o.Won {
			wins++
		}
	}
	return wins
}

// LastOutcome returns the most recent outcome
func (s *State[C]) LastOutcome() (Outcome[C], bool) {
	if len(s.history) == 0 {
		return Outcome[C]{}, false
	}
	return s.history[len(s.history)-1], true
}
