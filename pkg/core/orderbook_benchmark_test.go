package core

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/nikolaydubina/fpdecimal"
)

func benchmarkBids(n int) []Bid[fpdecimal.Decimal] {
	r := rand.New(rand.NewSource(42))
	bids := make([]Bid[fpdecimal.Decimal], n)
	for i := range bids {
		// whole-cent amounts between 100.00 and 110.00 so ties occur
		price := fpdecimal.FromFloat(100.0 + float64(r.Intn(1000))/100)
		bids[i] = NewBid(Identifier(fmt.Sprintf("bidder-%d", i)), price)
	}
	return bids
}

// BenchmarkInsert measures incremental insertion into a growing book
func BenchmarkInsert(b *testing.B) {
	bids := benchmarkBids(10000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		book := NewDecimalOrderBook()
		for _, bid := range bids {
			book.Insert(bid)
		}
	}
}

// BenchmarkConstruct measures bulk construction from the same bids
func BenchmarkConstruct(b *testing.B) {
	bids := benchmarkBids(10000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = NewDecimalOrderBookFrom(bids)
	}
}

// BenchmarkKthHighest measures rank lookups on a populated book
func BenchmarkKthHighest(b *testing.B) {
	bids := benchmarkBids(10000)
	book := NewDecimalOrderBookFrom(bids)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := book.KthHighest(i%len(bids) + 1); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkLargest measures the top-of-book lookup
func BenchmarkLargest(b *testing.B) {
	book := NewDecimalOrderBookFrom(benchmarkBids(10000))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := book.Largest(); err != nil {
			b.Fatal(err)
		}
	}
}
