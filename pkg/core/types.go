package core

import (
	"encoding/json"
	"fmt"
)

// Identifier names a bidder. It is an owned value and compares by value.
type Identifier string

// String returns the identifier as string
func (id Identifier) String() string {
	return string(id)
}

// Bid is a single (bidder, amount) pair submitted for one auction round
type Bid[C any] struct {
	Bidder Identifier
	Amount C
}

// NewBid creates a Bid
func NewBid[C any](bidder Identifier, amount C) Bid[C] {
	return Bid[C]{Bidder: bidder, Amount: amount}
}

// String implements fmt.Stringer interface
func (b Bid[C]) String() string {
	return fmt.Sprintf("%s@%v", b.Bidder, b.Amount)
}

// MarshalJSON implements Marshaler interface
func (b Bid[C]) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Bidder string `json:"bidder"`
		Amount string `json:"amount"`
	}{
		Bidder: string(b.Bidder),
		Amount: fmt.Sprint(b.Amount),
	})
}
