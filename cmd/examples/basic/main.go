package main

import (
	"errors"
	"fmt"

	"github.com/erain9/sealedbid/pkg/core"
	"github.com/erain9/sealedbid/pkg/mechanism"
	"github.com/nikolaydubina/fpdecimal"
)

func main() {
	// Build a fixed point book from five sealed bids
	book := core.NewDecimalOrderBookFrom([]core.Bid[fpdecimal.Decimal]{
		core.NewBid[fpdecimal.Decimal]("A", fpdecimal.FromInt(10)),
		core.NewBid[fpdecimal.Decimal]("B", fpdecimal.FromInt(30)),
		core.NewBid[fpdecimal.Decimal]("C", fpdecimal.FromInt(30)),
		core.NewBid[fpdecimal.Decimal]("D", fpdecimal.FromInt(20)),
		core.NewBid[fpdecimal.Decimal]("E", fpdecimal.FromInt(5)),
	})

	fmt.Printf("Order book (%d bids):%s\n\n", book.Len(), book)

	largest, err := book.Largest()
	if err != nil {
		panic(err)
	}
	fmt.Printf("Largest: %s\n", largest)

	for k := 1; k <= book.Len()+1; k++ {
		bid, err := book.KthHighest(k)
		if err != nil {
			fmt.Printf("Rank %d: %v\n", k, err)
			continue
		}
		fmt.Printf("Rank %d: %s\n", k, bid)
	}

	if _, err := book.KthHighest(0); errors.Is(err, core.ErrInvalidRank) {
		fmt.Printf("Rank 0: %v\n", err)
	}

	// Resolve the same book under both pricing rules
	fmt.Println()
	for _, name := range []string{mechanism.NameFirstPrice, mechanism.NameSecondPrice} {
		m, err := mechanism.ByName[fpdecimal.Decimal](name)
		if err != nil {
			panic(err)
		}
		res, err := m.Resolve(book)
		if err != nil {
			panic(err)
		}
		fmt.Printf("%s: winner=%s pays=%s\n", m.Name(), res.Winner, res.Payment)
	}

	// An empty book has no winner
	if _, err := core.NewDecimalOrderBook().Largest(); errors.Is(err, core.ErrEmptyBook) {
		fmt.Printf("Empty book: %v\n", err)
	}
}
