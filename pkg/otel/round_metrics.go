package otel

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	roundMetrics     *RoundMetrics
	roundMetricsOnce sync.Once
)

// RoundMetrics holds metrics for auction rounds
type RoundMetrics struct {
	roundsTotal    metric.Int64Counter
	bidsTotal      metric.Int64Counter
	fallbacksTotal metric.Int64Counter
	failuresTotal  metric.Int64Counter
	roundDuration  metric.Float64Histogram
}

// NewRoundMetrics creates the round instruments on the given meter
func NewRoundMetrics(meter metric.Meter) (*RoundMetrics, error) {
	roundsTotal, err := meter.Int64Counter(
		"auction.rounds.total",
		metric.WithDescription("Total number of resolved auction rounds"),
		metric.WithUnit("{round}"),
	)
	if err != nil {
		return nil, err
	}

	bidsTotal, err := meter.Int64Counter(
		"auction.bids.total",
		metric.WithDescription("Total number of bids inserted into order books"),
		metric.WithUnit("{bid}"),
	)
	if err != nil {
		return nil, err
	}

	fallbacksTotal, err := meter.Int64Counter(
		"auction.price_fallbacks.total",
		metric.WithDescription("Rounds priced by the lowest bid because the book held too few bids"),
		metric.WithUnit("{round}"),
	)
	if err != nil {
		return nil, err
	}

	failuresTotal, err := meter.Int64Counter(
		"auction.rounds.failed",
		metric.WithDescription("Rounds that could not be resolved"),
		metric.WithUnit("{round}"),
	)
	if err != nil {
		return nil, err
	}

	roundDuration, err := meter.Float64Histogram(
		"auction.round.duration",
		metric.WithDescription("Time to collect, resolve and settle one round"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RoundMetrics{
		roundsTotal:    roundsTotal,
		bidsTotal:      bidsTotal,
		fallbacksTotal: fallbacksTotal,
		failuresTotal:  failuresTotal,
		roundDuration:  roundDuration,
	}, nil
}

// GetRoundMetrics returns the RoundMetrics singleton. Instrument creation
// failures yield an empty RoundMetrics whose methods do nothing.
func GetRoundMetrics() *RoundMetrics {
	roundMetricsOnce.Do(func() {
		m, err := NewRoundMetrics(GetMeterProvider().Meter(instrumentationName))
		if err != nil {
			m = &RoundMetrics{}
		}
		roundMetrics = m
	})
	return roundMetrics
}

func resetRoundMetrics() {
	roundMetrics = nil
	roundMetricsOnce = sync.Once{}
}

// RecordRound records a resolved round
func (m *RoundMetrics) RecordRound(ctx context.Context, mechanism string, bids int, fellBack bool, duration time.Duration) {
	if m.roundsTotal == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("round.mechanism", mechanism))
	m.roundsTotal.Add(ctx, 1, attrs)
	m.bidsTotal.Add(ctx, int64(bids), attrs)
	m.roundDuration.Record(ctx, duration.Seconds(), attrs)
	if fellBack {
		m.fallbacksTotal.Add(ctx, 1, attrs)
	}
}

// RecordFailure records a round that could not be resolved
func (m *RoundMetrics) RecordFailure(ctx context.Context, mechanism string, reason string) {
	if m.failuresTotal == nil {
		return
	}

	m.failuresTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("round.mechanism", mechanism),
		attribute.String("failure.reason", reason),
	))
}
