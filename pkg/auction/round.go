package auction

import (
	"errors"
	"sync"

	"github.com/erain9/sealedbid/pkg/core"
	"github.com/erain9/sealedbid/pkg/mechanism"
)

// Errors
var (
	ErrRoundClosed = errors.New("round already resolved")
)

// Round owns the order book of one in-progress auction round and
// serializes access to it, so bids may be submitted from several goroutines.
// A round is resolved once and then discarded.
type Round[C any] struct {
	mu     sync.Mutex
	book   *core.OrderBook[C]
	closed bool
}

// NewRound creates a round over an empty order book
func NewRound[C any](book *core.OrderBook[C]) *Round[C] {
	return &Round[C]{book: book}
}

// Submit inserts a bid into the round's book
func (r *Round[C]) Submit(bid core.Bid[C]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoundClosed
	}
	r.book.Insert(bid)
	return nil
}

// Len returns the number of submitted bids
func (r *Round[C]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.book.Len()
}

// Resolve closes the round and applies the mechanism to its book. It
// returns the resolution and the bids in rank order.
func (r *Round[C]) Resolve(m mechanism.Mechanism[C]) (mechanism.Resolution[C], []core.Bid[C], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return mechanism.Resolution[C]{}, nil, ErrRoundClosed
	}
	r.closed = true

	res, err := m.Resolve(r.book)
	if err != nil {
		return mechanism.Resolution[C]{}, nil, err
	}
	return res, r.book.Bids(), nil
}
