package bidder

import (
	"github.com/erain9/sealedbid/pkg/core"
	"github.com/nikolaydubina/fpdecimal"
	"github.com/rs/zerolog"
)

var (
	defaultShade     = fpdecimal.FromFloat(0.8)
	defaultShadeStep = fpdecimal.FromFloat(0.05)
	defaultMinShade  = fpdecimal.FromFloat(0.5)
	maxShade         = fpdecimal.FromInt(1)
)

// AdaptiveBidder shades its valuation and tunes the shade from its own
// history: a win lowers the shade, a loss at a price it could have
// afforded raises it.
type AdaptiveBidder struct {
	*State[fpdecimal.Decimal]
	valuation fpdecimal.Decimal
	shade     fpdecimal.Decimal
	step      fpdecimal.Decimal
	minShade  fpdecimal.Decimal
	logger    zerolog.Logger
}

// AdaptiveOption configures an AdaptiveBidder
type AdaptiveOption func(*AdaptiveBidder)

// WithShade sets the starting fraction of the valuation to bid
func WithShade(shade fpdecimal.Decimal) AdaptiveOption {
	return func(b *AdaptiveBidder) { b.shade = shade }
}

// WithShadeStep sets how much the shade moves after each round
func WithShadeStep(step fpdecimal.Decimal) AdaptiveOption {
	return func(b *AdaptiveBidder) { b.step = step }
}

// WithMinShade sets the lowest shade the bidder falls back to
func WithMinShade(minShade fpdecimal.Decimal) AdaptiveOption {
	return func(b *AdaptiveBidder) { b.minShade = minShade }
}

// WithLogger attaches a logger
func WithLogger(logger zerolog.Logger) AdaptiveOption {
	return func(b *AdaptiveBidder) { b.logger = logger }
}

// NewAdaptiveBidder creates an AdaptiveBidder with a private valuation
func NewAdaptiveBidder(id core.Identifier, valuation fpdecimal.Decimal, opts ...AdaptiveOption) *AdaptiveBidder {
	b := &AdaptiveBidder{
		State:     NewState[fpdecimal.Decimal](id),
		valuation: valuation,
		shade:     defaultShade,
		step:      defaultShadeStep,
		minShade:  defaultMinShade,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.shade = clampShade(b.shade, b.minShade)
	b.logger = b.logger.With().Str("component", "AdaptiveBidder").Str("bidder", id.String()).Logger()
	return b
}

// Bid implements Bidder
func (b *AdaptiveBidder) Bid(state RoundState[fpdecimal.Decimal]) fpdecimal.Decimal {
	amount := b.valuation.Mul(b.shade)

	b.logger.Debug().
		Int("round", state.Round).
		Int("competitors", state.Competitors).
		Str("shade", b.shade.String()).
		Str("amount", amount.String()).
		Msg("Calculated bid")

	return b.Propose(amount)
}

// Update implements Bidder
func (b *AdaptiveBidder) Update(winner core.Identifier, winningPayment fpdecimal.Decimal) error {
	outcome, err := b.Record(winner, winningPayment, b.valuation)
	if err != nil {
		return err
	}

	switch {
	case outcome.Won:
		b.shade = clampShade(b.shade.Sub(b.step), b.minShade)
	case winningPayment.LessThan(b.valuation):
		b.shade = clampShade(b.shade.Add(b.step), b.minShade)
	}

	b.logger.Debug().
		Bool("won", outcome.Won).
		Str("price_paid", winningPayment.String()).
		Str("next_shade", b.shade.String()).
		Msg("Recorded outcome")

	return nil
}

// Shade returns the fraction of the valuation bid next round
func (b *AdaptiveBidder) Shade() fpdecimal.Decimal {
	return b.shade
}

// Valuation returns the private item valuation
func (b *AdaptiveBidder) Valuation() fpdecimal.Decimal {
	return b.valuation
}

func clampShade(shade, minShade fpdecimal.Decimal) fpdecimal.Decimal {
	if shade.LessThan(minShade) {
		return minShade
	}
	if shade.GreaterThan(maxShade) {
		return maxShade
	}
	return shade
}

var _ Bidder[fpdecimal.Decimal, RoundState[fpdecimal.Decimal]] = (*AdaptiveBidder)(nil)
