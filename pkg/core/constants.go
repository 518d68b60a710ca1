package core

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrEmptyBook        = errors.New("empty order book")
	ErrInvalidRank      = errors.New("invalid rank")
	ErrInsufficientBids = errors.New("insufficient bids")
)

// RankError reports a failed order-statistic query. It unwraps to either
// ErrInvalidRank or ErrInsufficientBids.
type RankError struct {
	K     int
	Count int
	Err   error
}

func (e *RankError) Error() string {
	if errors.Is(e.Err, ErrInvalidRank) {
		return fmt.Sprintf("%v: k must be greater than 0, got %d", e.Err, e.K)
	}
	return fmt.Sprintf("%v: requested rank %d, book holds %d", e.Err, e.K, e.Count)
}

// Unwrap returns the sentinel error
func (e *RankError) Unwrap() error {
	return e.Err
}
