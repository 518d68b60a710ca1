package auction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erain9/sealedbid/pkg/bidder"
	"github.com/erain9/sealedbid/pkg/core"
	"github.com/erain9/sealedbid/pkg/logging"
	"github.com/erain9/sealedbid/pkg/mechanism"
	"github.com/erain9/sealedbid/pkg/messaging"
	"github.com/erain9/sealedbid/pkg/otel"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Result describes one resolved round
type Result[C any] struct {
	RoundID    string
	Round      int
	Mechanism  string
	Resolution mechanism.Resolution[C]
	// Bids in rank order
	Bids     []core.Bid[C]
	Duration time.Duration
}

// Options configures an Auctioneer
type Options struct {
	// Sender publishes every resolved round; nil disables publishing
	Sender messaging.MessageSender
}

// Auctioneer drives rounds: it collects a bid from every bidder into a
// fresh order book, resolves the book with its mechanism and reports the
// outcome back to every bidder.
type Auctioneer[C, S any] struct {
	bidders   []bidder.Bidder[C, S]
	mechanism mechanism.Mechanism[C]
	newBook   func() *core.OrderBook[C]
	sender    messaging.MessageSender
	rounds    int
}

// NewAuctioneer creates an Auctioneer. newBook must return an empty book.
func NewAuctioneer[C, S any](newBook func() *core.OrderBook[C], m mechanism.Mechanism[C], bidders []bidder.Bidder[C, S], opts Options) *Auctioneer[C, S] {
	return &Auctioneer[C, S]{
		bidders:   bidders,
		mechanism: m,
		newBook:   newBook,
		sender:    opts.Sender,
	}
}

// Bidders returns the participating bidders
func (a *Auctioneer[C, S]) Bidders() []bidder.Bidder[C, S] {
	return a.bidders
}

// Rounds returns the number of rounds started
func (a *Auctioneer[C, S]) Rounds() int {
	return a.rounds
}

// RunRound runs one complete round with the given auction state. A round
// that cannot be resolved is discarded and no bidder is updated.
func (a *Auctioneer[C, S]) RunRound(ctx context.Context, state S) (*Result[C], error) {
	start := time.Now()
	a.rounds++
	roundID := uuid.NewString()

	ctx = logging.WithRoundID(ctx, roundID)
	logger := logging.FromContext(ctx).With().
		Int("round", a.rounds).
		Str("mechanism", a.mechanism.Name()).
		Logger()
	metrics := otel.GetRoundMetrics()

	ctx, span := otel.StartRoundSpan(ctx, otel.SpanRunRound,
		attribute.String(otel.AttributeRoundID, roundID),
		attribute.Int(otel.AttributeRoundNumber, a.rounds),
		attribute.String(otel.AttributeMechanism, a.mechanism.Name()),
	)
	defer otel.EndSpan(span)

	round, err := a.collectBids(ctx, state)
	if err != nil {
		return nil, a.fail(ctx, span, "collect", err)
	}

	res, bids, err := a.resolve(ctx, round)
	if err != nil {
		logger.Warn().Err(err).Int("bids", round.Len()).Msg("Round could not be resolved")
		return nil, a.fail(ctx, span, "resolve", err)
	}

	var updateErrs []error
	for _, b := range a.bidders {
		if err := b.Update(res.Winner, res.Payment); err != nil {
			updateErrs = append(updateErrs, fmt.Errorf("update %s: %w", b.ID(), err))
		}
	}

	result := &Result[C]{
		RoundID:    roundID,
		Round:      a.rounds,
		Mechanism:  a.mechanism.Name(),
		Resolution: res,
		Bids:       bids,
		Duration:   time.Since(start),
	}

	a.publish(ctx, result)

	metrics.RecordRound(ctx, a.mechanism.Name(), len(bids), res.FellBack, result.Duration)
	otel.AddAttributes(span,
		attribute.Int(otel.AttributeBidCount, len(bids)),
		attribute.String(otel.AttributeWinner, res.Winner.String()),
		attribute.String(otel.AttributePayment, fmt.Sprint(res.Payment)),
		attribute.Bool(otel.AttributeFellBack, res.FellBack),
	)

	logger.Info().
		Str("winner", res.Winner.String()).
		Str("payment", fmt.Sprint(res.Payment)).
		Bool("fell_back", res.FellBack).
		Int("bids", len(bids)).
		Dur("duration", result.Duration).
		Msg("Round resolved")

	if len(updateErrs) > 0 {
		return result, a.fail(ctx, span, "update", errors.Join(updateErrs...))
	}
	if span != nil {
		span.SetStatus(codes.Ok, "round resolved")
	}
	return result, nil
}

// private methods

func (a *Auctioneer[C, S]) collectBids(ctx context.Context, state S) (*Round[C], error) {
	_, span := otel.StartRoundSpan(ctx, otel.SpanCollectBids)
	defer otel.EndSpan(span)

	round := NewRound(a.newBook())
	for _, b := range a.bidders {
		if err := round.Submit(core.NewBid(b.ID(), b.Bid(state))); err != nil {
			return nil, err
		}
	}
	otel.AddAttributes(span, attribute.Int(otel.AttributeBidCount, round.Len()))
	return round, nil
}

func (a *Auctioneer[C, S]) resolve(ctx context.Context, round *Round[C]) (mechanism.Resolution[C], []core.Bid[C], error) {
	_, span := otel.StartRoundSpan(ctx, otel.SpanResolveRound)
	defer otel.EndSpan(span)

	return round.Resolve(a.mechanism)
}

func (a *Auctioneer[C, S]) publish(ctx context.Context, result *Result[C]) {
	if a.sender == nil {
		return
	}

	ctx, span := otel.StartRoundSpan(ctx, otel.SpanPublish)
	defer otel.EndSpan(span)

	msg := &messaging.RoundMessage{
		RoundID:   result.RoundID,
		Round:     result.Round,
		Mechanism: result.Mechanism,
		Winner:    result.Resolution.Winner.String(),
		Payment:   fmt.Sprint(result.Resolution.Payment),
		FellBack:  result.Resolution.FellBack,
		Bids:      make([]messaging.BidEntry, 0, len(result.Bids)),
	}
	for _, bid := range result.Bids {
		msg.Bids = append(msg.Bids, messaging.BidEntry{
			Bidder: bid.Bidder.String(),
			Amount: fmt.Sprint(bid.Amount),
		})
	}

	if err := a.sender.SendRoundMessage(ctx, msg); err != nil {
		logger := logging.FromContext(ctx)
		logger.Error().Err(err).Msg("Failed to publish round result")
		if span != nil {
			span.SetStatus(codes.Error, "publish failed")
		}
	}
}

func (a *Auctioneer[C, S]) fail(ctx context.Context, span trace.Span, reason string, err error) error {
	otel.GetRoundMetrics().RecordFailure(ctx, a.mechanism.Name(), reason)
	if span != nil {
		span.SetStatus(codes.Error, reason+" failed")
	}
	return err
}
