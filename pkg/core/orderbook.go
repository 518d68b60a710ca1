package core

import (
	"cmp"
	"slices"
	"strings"

	"github.com/nikolaydubina/fpdecimal"
	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"
)

// rankedBid is a bid tagged with its submission sequence. The pair
// (amount, seq) is unique, so the tree never replaces an existing bid.
type rankedBid[C any] struct {
	bid Bid[C]
	seq uint64
}

// OrderBook holds the bids of one auction round ranked by amount descending,
// ties kept in submission order.
//
// OrderBook is not safe for concurrent use; callers serialize access.
type OrderBook[C any] struct {
	compare Compare[C]
	bids    *btree.BTreeG[rankedBid[C]]
	nextSeq uint64
}

// NewOrderBookFunc creates an empty OrderBook ordered by the given comparator
func NewOrderBookFunc[C any](compare Compare[C]) *OrderBook[C] {
	ob := &OrderBook[C]{compare: compare}
	ob.bids = btree.NewBTreeGOptions(ob.less, btree.Options{NoLocks: true})
	return ob
}

// NewOrderBook creates an empty OrderBook for built-in ordered currencies
func NewOrderBook[C cmp.Ordered]() *OrderBook[C] {
	return NewOrderBookFunc(CompareOrdered[C])
}

// NewDecimalOrderBook creates an empty OrderBook for fixed point currencies
func NewDecimalOrderBook() *OrderBook[fpdecimal.Decimal] {
	return NewOrderBookFunc(CompareDecimal)
}

// NewBigDecimalOrderBook creates an empty OrderBook for arbitrary precision currencies
func NewBigDecimalOrderBook() *OrderBook[decimal.Decimal] {
	return NewOrderBookFunc(CompareBigDecimal)
}

// NewOrderBookFromFunc builds an OrderBook from bids in source order
func NewOrderBookFromFunc[C any](compare Compare[C], bids []Bid[C]) *OrderBook[C] {
	ob := NewOrderBookFunc(compare)
	ob.InsertAll(bids...)
	return ob
}

// NewOrderBookFrom builds an OrderBook from bids in source order
func NewOrderBookFrom[C cmp.Ordered](bids []Bid[C]) *OrderBook[C] {
	return NewOrderBookFromFunc(CompareOrdered[C], bids)
}

// NewDecimalOrderBookFrom builds a fixed point OrderBook from bids in source order
func NewDecimalOrderBookFrom(bids []Bid[fpdecimal.Decimal]) *OrderBook[fpdecimal.Decimal] {
	return NewOrderBookFromFunc(CompareDecimal, bids)
}

// Insert adds a bid to the book
func (ob *OrderBook[C]) Insert(bid Bid[C]) {
	ob.bids.Set(ob.tag(bid))
}

// InsertAll adds bids in source order. The batch is sorted once and bulk
// loaded, which is cheaper than repeated Insert on an empty book.
func (ob *OrderBook[C]) InsertAll(bids ...Bid[C]) {
	batch := make([]rankedBid[C], len(bids))
	for i, bid := range bids {
		batch[i] = ob.tag(bid)
	}
	slices.SortFunc(batch, func(a, b rankedBid[C]) int {
		if ob.less(a, b) {
			return -1
		}
		return 1
	})
	for _, item := range batch {
		ob.bids.Load(item)
	}
}

// Len returns the number of bids in the book
func (ob *OrderBook[C]) Len() int {
	return ob.bids.Len()
}

// Largest returns the highest bid, the earliest submitted among equal amounts
func (ob *OrderBook[C]) Largest() (Bid[C], error) {
	item, ok := ob.bids.Min()
	if !ok {
		var zero Bid[C]
		return zero, ErrEmptyBook
	}
	return item.bid, nil
}

// Lowest returns the lowest ranked bid, the latest submitted among equal amounts
func (ob *OrderBook[C]) Lowest() (Bid[C], error) {
	item, ok := ob.bids.Max()
	if !ok {
		var zero Bid[C]
		return zero, ErrEmptyBook
	}
	return item.bid, nil
}

// KthHighest returns the bid at rank k, 1-indexed. KthHighest(1) equals Largest.
func (ob *OrderBook[C]) KthHighest(k int) (Bid[C], error) {
	var zero Bid[C]
	count := ob.bids.Len()

	if k <= 0 {
		return zero, &RankError{K: k, Count: count, Err: ErrInvalidRank}
	}
	if k > count {
		return zero, &RankError{K: k, Count: count, Err: ErrInsufficientBids}
	}

	item, ok := ob.bids.GetAt(k - 1)
	if !ok {
		return zero, &RankError{K: k, Count: count, Err: ErrInsufficientBids}
	}
	return item.bid, nil
}

// Scan iterates bids in rank order until fn returns false
func (ob *OrderBook[C]) Scan(fn func(rank int, bid Bid[C]) bool) {
	rank := 0
	ob.bids.Scan(func(item rankedBid[C]) bool {
		rank++
		return fn(rank, item.bid)
	})
}

// TopN returns up to n highest bids in rank order
func (ob *OrderBook[C]) TopN(n int) []Bid[C] {
	if n <= 0 {
		return []Bid[C]{}
	}
	out := make([]Bid[C], 0, min(n, ob.bids.Len()))
	ob.Scan(func(rank int, bid Bid[C]) bool {
		out = append(out, bid)
		return rank < n
	})
	return out
}

// Bids returns all bids in rank order
func (ob *OrderBook[C]) Bids() []Bid[C] {
	return ob.TopN(ob.bids.Len())
}

// String implements fmt.Stringer interface
func (ob *OrderBook[C]) String() string {
	sb := strings.Builder{}
	ob.Scan(func(rank int, bid Bid[C]) bool {
		sb.WriteString("\n")
		sb.WriteString(bid.String())
		return true
	})
	return sb.String()
}

// private methods

func (ob *OrderBook[C]) tag(bid Bid[C]) rankedBid[C] {
	item := rankedBid[C]{bid: bid, seq: ob.nextSeq}
	ob.nextSeq++
	return item
}

// less ranks higher amounts first, then earlier submissions
func (ob *OrderBook[C]) less(a, b rankedBid[C]) bool {
	if c := ob.compare(a.bid.Amount, b.bid.Amount); c != 0 {
		return c > 0
	}
	return a.seq < b.seq
}
