package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// Span names
	SpanRunRound     = "run_round"
	SpanCollectBids  = "collect_bids"
	SpanResolveRound = "resolve_round"
	SpanPublish      = "publish_result"

	// Attribute keys
	AttributeRoundID     = "round.id"
	AttributeRoundNumber = "round.number"
	AttributeMechanism   = "round.mechanism"
	AttributeBidCount    = "round.bid_count"
	AttributeWinner      = "round.winner"
	AttributePayment     = "round.payment"
	AttributeFellBack    = "round.fell_back"
)

// StartRoundSpan starts a new span for an auction round step. It returns a
// nil span when tracing is not initialized.
func StartRoundSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := GetAuctionTracer()
	if tracer == nil {
		return ctx, nil
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// AddAttributes adds attributes to a span
func AddAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span == nil {
		return
	}
	span.SetAttributes(attrs...)
}

// EndSpan ends a span that may be nil
func EndSpan(span trace.Span) {
	if span == nil {
		return
	}
	span.End()
}
