package auction

import (
	"context"
	"errors"
	"testing"

	"github.com/erain9/sealedbid/pkg/bidder"
	"github.com/erain9/sealedbid/pkg/core"
	"github.com/erain9/sealedbid/pkg/mechanism"
	"github.com/erain9/sealedbid/pkg/messaging"
	"github.com/erain9/sealedbid/pkg/otel"
	"github.com/nikolaydubina/fpdecimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type intState = bidder.RoundState[int]

func staticBidders() []*bidder.StaticBidder[int] {
	return []*bidder.StaticBidder[int]{
		bidder.NewStaticBidder[int]("A", 10, 25),
		bidder.NewStaticBidder[int]("B", 30, 45),
		bidder.NewStaticBidder[int]("C", 30, 35),
		bidder.NewStaticBidder[int]("D", 20, 22),
		bidder.NewStaticBidder[int]("E", 5, 8),
	}
}

func asBidders(static []*bidder.StaticBidder[int]) []bidder.Bidder[int, intState] {
	out := make([]bidder.Bidder[int, intState], len(static))
	for i, b := range static {
		out[i] = b
	}
	return out
}

// failingBidder rejects every update
type failingBidder struct {
	*bidder.StaticBidder[int]
}

func (f failingBidder) Update(core.Identifier, int) error {
	return errors.New("ledger full")
}

func TestAuctioneer_FirstPriceRound(t *testing.T) {
	static := staticBidders()
	sender := messaging.NewMockMessageSender()
	a := NewAuctioneer(core.NewOrderBook[int], mechanism.Mechanism[int](mechanism.FirstPrice[int]{}), asBidders(static), Options{Sender: sender})

	result, err := a.RunRound(context.Background(), intState{Round: 1, Competitors: len(static)})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Round)
	assert.NotEmpty(t, result.RoundID)
	assert.Equal(t, core.Identifier("B"), result.Resolution.Winner)
	assert.Equal(t, 30, result.Resolution.Payment)
	require.Len(t, result.Bids, 5)
	assert.Equal(t, core.NewBid[int]("C", 30), result.Bids[1])

	for _, b := range static {
		last, ok := b.LastOutcome()
		require.True(t, ok, b.ID())
		assert.Equal(t, b.ID() == "B", last.Won, b.ID())
		assert.Equal(t, 30, last.PricePaid, b.ID())
		assert.Equal(t, b.Valuation(), last.ItemValue, b.ID())
		assert.False(t, b.Open(), b.ID())
	}

	msgs := sender.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, result.RoundID, msgs[0].RoundID)
	assert.Equal(t, "B", msgs[0].Winner)
	assert.Equal(t, "30", msgs[0].Payment)
	assert.Equal(t, mechanism.NameFirstPrice, msgs[0].Mechanism)
	require.Len(t, msgs[0].Bids, 5)
	assert.Equal(t, messaging.BidEntry{Bidder: "E", Amount: "5"}, msgs[0].Bids[4])
}

func TestAuctioneer_SecondPriceWithDecimals(t *testing.T) {
	alice := bidder.NewAdaptiveBidder("alice", fpdecimal.FromInt(100))
	bob := bidder.NewAdaptiveBidder("bob", fpdecimal.FromInt(50))
	bidders := []bidder.Bidder[fpdecimal.Decimal, bidder.RoundState[fpdecimal.Decimal]]{alice, bob}

	a := NewAuctioneer(core.NewDecimalOrderBook, mechanism.Mechanism[fpdecimal.Decimal](mechanism.SecondPrice[fpdecimal.Decimal]()), bidders, Options{})

	result, err := a.RunRound(context.Background(), bidder.RoundState[fpdecimal.Decimal]{Round: 1, Competitors: 2})
	require.NoError(t, err)
	assert.Equal(t, core.Identifier("alice"), result.Resolution.Winner)
	assert.True(t, result.Resolution.Payment.Equal(fpdecimal.FromInt(40)), "got %s", result.Resolution.Payment)

	assert.Equal(t, 1, alice.Wins())
	assert.Equal(t, 0, bob.Wins())
	assert.Equal(t, 1, bob.Rounds())
}

func TestAuctioneer_NoBiddersDiscardsRound(t *testing.T) {
	sender := messaging.NewMockMessageSender()
	a := NewAuctioneer[int, intState](core.NewOrderBook[int], mechanism.FirstPrice[int]{}, nil, Options{Sender: sender})

	result, err := a.RunRound(context.Background(), intState{Round: 1})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, mechanism.ErrNoBids)
	assert.ErrorIs(t, err, core.ErrEmptyBook)
	assert.Empty(t, sender.Messages())
	assert.Equal(t, 1, a.Rounds())
}

func TestAuctioneer_UpdateErrorsAreJoined(t *testing.T) {
	static := staticBidders()
	bidders := asBidders(static)
	bidders[0] = failingBidder{static[0]}

	a := NewAuctioneer(core.NewOrderBook[int], mechanism.Mechanism[int](mechanism.FirstPrice[int]{}), bidders, Options{})
	result, err := a.RunRound(context.Background(), intState{Round: 1})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "update A")
	require.NotNil(t, result)
	assert.Equal(t, core.Identifier("B"), result.Resolution.Winner)

	// every other bidder still saw the outcome
	for _, b := range static[1:] {
		assert.Equal(t, 1, b.Rounds(), b.ID())
	}
}

func TestAuctioneer_PublishFailureDoesNotFailRound(t *testing.T) {
	sender := messaging.NewMockMessageSender()
	sender.FailWith(errors.New("broker down"))

	a := NewAuctioneer(core.NewOrderBook[int], mechanism.Mechanism[int](mechanism.FirstPrice[int]{}), asBidders(staticBidders()), Options{Sender: sender})
	_, err := a.RunRound(context.Background(), intState{Round: 1})
	assert.NoError(t, err)
}

func TestAuctioneer_RecordsSpans(t *testing.T) {
	otel.ResetForTesting()
	defer otel.ResetForTesting()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.InitForTesting(tp.Tracer("test"))

	a := NewAuctioneer(core.NewOrderBook[int], mechanism.Mechanism[int](mechanism.SecondPrice[int]()), asBidders(staticBidders()), Options{Sender: messaging.NewMockMessageSender()})
	_, err := a.RunRound(context.Background(), intState{Round: 1})
	require.NoError(t, err)

	names := make([]string, 0)
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	assert.ElementsMatch(t, []string{otel.SpanCollectBids, otel.SpanResolveRound, otel.SpanPublish, otel.SpanRunRound}, names)
}

func TestAuctioneer_FreshBookEachRound(t *testing.T) {
	a := NewAuctioneer(core.NewOrderBook[int], mechanism.Mechanism[int](mechanism.FirstPrice[int]{}), asBidders(staticBidders()), Options{})

	for round := 1; round <= 3; round++ {
		result, err := a.RunRound(context.Background(), intState{Round: round})
		require.NoError(t, err)
		assert.Len(t, result.Bids, 5)
		assert.Equal(t, round, result.Round)
	}
}
