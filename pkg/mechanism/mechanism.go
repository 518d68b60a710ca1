package mechanism

import (
	"errors"
	"fmt"

	"github.com/erain9/sealedbid/pkg/core"
)

// Mechanism names
const (
	NameFirstPrice  = "first_price"
	NameSecondPrice = "second_price"
)

// Errors
var (
	ErrUnknownMechanism = errors.New("unknown auction mechanism")
	ErrNoBids           = errors.New("no bids to resolve")
)

// Resolution is the winner and payment decided for one round
type Resolution[C any] struct {
	Winner     core.Identifier
	Payment    C
	WinningBid core.Bid[C]
	// FellBack is set when the book held fewer bids than the pricing rank
	// and the lowest bid set the price instead
	FellBack bool
}

// Mechanism turns an order book into a winner and a payment
type Mechanism[C any] interface {
	Name() string
	Resolve(book *core.OrderBook[C]) (Resolution[C], error)
}

// FirstPrice awards the item to the highest bid at its own amount
type FirstPrice[C any] struct{}

// Name implements Mechanism
func (FirstPrice[C]) Name() string {
	return NameFirstPrice
}

// Resolve implements Mechanism
func (FirstPrice[C]) Resolve(book *core.OrderBook[C]) (Resolution[C], error) {
	top, err := book.Largest()
	if err != nil {
		return Resolution[C]{}, fmt.Errorf("%w: %w", ErrNoBids, err)
	}
	return Resolution[C]{
		Winner:     top.Bidder,
		Payment:    top.Amount,
		WinningBid: top,
	}, nil
}

// KthPrice awards the item to the highest bid at the amount of the K-th
// highest bid. When fewer than K bids exist the lowest bid sets the price.
type KthPrice[C any] struct {
	K int
}

// Name implements Mechanism
func (m KthPrice[C]) Name() string {
	if m.K == 2 {
		return NameSecondPrice
	}
	return fmt.Sprintf("price_rank_%d", m.K)
}

// Resolve implements Mechanism
func (m KthPrice[C]) Resolve(book *core.OrderBook[C]) (Resolution[C], error) {
	top, err := book.Largest()
	if err != nil {
		return Resolution[C]{}, fmt.Errorf("%w: %w", ErrNoBids, err)
	}

	res := Resolution[C]{
		Winner:     top.Bidder,
		WinningBid: top,
	}

	priced, err := book.KthHighest(m.K)
	switch {
	case err == nil:
		res.Payment = priced.Amount
	case errors.Is(err, core.ErrInsufficientBids):
		lowest, lowErr := book.Lowest()
		if lowErr != nil {
			return Resolution[C]{}, lowErr
		}
		res.Payment = lowest.Amount
		res.FellBack = true
	default:
		return Resolution[C]{}, err
	}

	return res, nil
}

// SecondPrice returns the Vickrey mechanism
func SecondPrice[C any]() KthPrice[C] {
	return KthPrice[C]{K: 2}
}

// ByName returns the mechanism registered under name
func ByName[C any](name string) (Mechanism[C], error) {
	switch name {
	case NameFirstPrice:
		return FirstPrice[C]{}, nil
	case NameSecondPrice:
		return SecondPrice[C](), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMechanism, name)
	}
}
