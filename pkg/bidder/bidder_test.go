package bidder

import (
	"testing"

	"github.com/erain9/sealedbid/pkg/core"
	"github.com/nikolaydubina/fpdecimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticBidder_UpdateRecordsOutcome(t *testing.T) {
	a := NewStaticBidder[int]("A", 10, 25)
	b := NewStaticBidder[int]("B", 30, 40)

	state := RoundState[int]{Round: 1, Competitors: 2}
	assert.Equal(t, 10, a.Bid(state))
	assert.Equal(t, 30, b.Bid(state))

	require.NoError(t, a.Update("B", 30))
	require.NoError(t, b.Update("B", 30))

	last, ok := a.LastOutcome()
	require.True(t, ok)
	assert.Equal(t, Outcome[int]{Won: false, PricePaid: 30, ItemValue: 25}, last)

	last, ok = b.LastOutcome()
	require.True(t, ok)
	assert.Equal(t, Outcome[int]{Won: true, PricePaid: 30, ItemValue: 40}, last)
}

func TestState_IdentifierComparedByValue(t *testing.T) {
	name := []byte("bidder-7")
	s := NewState[int](core.Identifier(name))
	s.Propose(5)

	name[0] = 'x'
	outcome, err := s.Record(core.Identifier("bidder-7"), 5, 9)
	require.NoError(t, err)
	assert.True(t, outcome.Won)
}

func TestState_UpdateRequiresBid(t *testing.T) {
	s := NewStaticBidder[int]("A", 10, 25)

	err := s.Update("B", 30)
	assert.ErrorIs(t, err, ErrNoOpenRound)
	assert.Equal(t, 0, s.Rounds())

	s.Bid(RoundState[int]{Round: 1})
	require.NoError(t, s.Update("B", 30))

	err = s.Update("B", 30)
	assert.ErrorIs(t, err, ErrNoOpenRound)
	assert.Equal(t, 1, s.Rounds())
}

func TestState_HistoryIsAppendOnly(t *testing.T) {
	s := NewStaticBidder[int]("A", 10, 25)

	for round := 1; round <= 3; round++ {
		s.Bid(RoundState[int]{Round: round})
		winner := core.Identifier("B")
		if round == 2 {
			winner = "A"
		}
		require.NoError(t, s.Update(winner, 10*round))
	}

	history := s.History()
	require.Len(t, history, 3)
	assert.Equal(t, []Outcome[int]{
		{Won: false, PricePaid: 10, ItemValue: 25},
		{Won: true, PricePaid: 20, ItemValue: 25},
		{Won: false, PricePaid: 30, ItemValue: 25},
	}, history)
	assert.Equal(t, 1, s.Wins())

	history[0].Won = true
	assert.False(t, s.History()[0].Won)
}

func TestState_CurrentBidOverwritten(t *testing.T) {
	s := NewState[int]("A")
	assert.False(t, s.Open())

	s.Propose(10)
	assert.True(t, s.Open())
	assert.Equal(t, 10, s.CurrentBid())

	s.Propose(12)
	assert.Equal(t, 12, s.CurrentBid())

	_, ok := s.LastOutcome()
	assert.False(t, ok)
}

func TestAdaptiveBidder_ShadeMovesWithOutcomes(t *testing.T) {
	valuation := fpdecimal.FromInt(100)
	b := NewAdaptiveBidder("A", valuation,
		WithShade(fpdecimal.FromFloat(0.8)),
		WithShadeStep(fpdecimal.FromFloat(0.1)),
		WithMinShade(fpdecimal.FromFloat(0.5)),
	)
	state := RoundState[fpdecimal.Decimal]{Round: 1, Competitors: 3}

	amount := b.Bid(state)
	assert.True(t, amount.Equal(fpdecimal.FromInt(80)), "got %s", amount)
	assert.True(t, b.CurrentBid().Equal(amount))

	// lost at a price below valuation: bid higher next time
	require.NoError(t, b.Update("B", fpdecimal.FromInt(90)))
	assert.True(t, b.Shade().Equal(fpdecimal.FromFloat(0.9)), "got %s", b.Shade())

	// lost above valuation: keep shade
	b.Bid(state)
	require.NoError(t, b.Update("B", fpdecimal.FromInt(150)))
	assert.True(t, b.Shade().Equal(fpdecimal.FromFloat(0.9)), "got %s", b.Shade())

	// won: shade down
	b.Bid(state)
	require.NoError(t, b.Update("A", fpdecimal.FromInt(90)))
	assert.True(t, b.Shade().Equal(fpdecimal.FromFloat(0.8)), "got %s", b.Shade())

	history := b.History()
	require.Len(t, history, 3)
	assert.False(t, history[0].Won)
	assert.True(t, history[0].PricePaid.Equal(fpdecimal.FromInt(90)))
	assert.True(t, history[0].ItemValue.Equal(valuation))
	assert.True(t, history[2].Won)
}

func TestAdaptiveBidder_ShadeIsClamped(t *testing.T) {
	b := NewAdaptiveBidder("A", fpdecimal.FromInt(10),
		WithShade(fpdecimal.FromFloat(0.95)),
		WithShadeStep(fpdecimal.FromFloat(0.2)),
		WithMinShade(fpdecimal.FromFloat(0.6)),
	)
	state := RoundState[fpdecimal.Decimal]{Round: 1}

	b.Bid(state)
	require.NoError(t, b.Update("B", fpdecimal.FromInt(5)))
	assert.True(t, b.Shade().Equal(fpdecimal.FromInt(1)), "got %s", b.Shade())

	for i := 0; i < 5; i++ {
		b.Bid(state)
		require.NoError(t, b.Update("A", fpdecimal.FromInt(5)))
	}
	assert.True(t, b.Shade().Equal(fpdecimal.FromFloat(0.6)), "got %s", b.Shade())
}

func TestAdaptiveBidder_UpdateWithoutBid(t *testing.T) {
	b := NewAdaptiveBidder("A", fpdecimal.FromInt(10))
	err := b.Update("A", fpdecimal.FromInt(5))
	assert.ErrorIs(t, err, ErrNoOpenRound)
	assert.True(t, b.Shade().Equal(fpdecimal.FromFloat(0.8)))
}
