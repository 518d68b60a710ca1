package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/erain9/sealedbid/pkg/auction"
	"github.com/erain9/sealedbid/pkg/bidder"
	"github.com/erain9/sealedbid/pkg/core"
	"github.com/erain9/sealedbid/pkg/mechanism"
	"github.com/erain9/sealedbid/pkg/messaging"
	"github.com/nikolaydubina/fpdecimal"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// State is the auction state handed to simulated bidders
type State = bidder.RoundState[fpdecimal.Decimal]

// Participant is a simulated bidder with its private valuation
type Participant interface {
	bidder.Bidder[fpdecimal.Decimal, State]
	Valuation() fpdecimal.Decimal
	Wins() int
	History() []bidder.Outcome[fpdecimal.Decimal]
}

// BidderSummary is the end-of-run view of one bidder
type BidderSummary struct {
	ID        core.Identifier
	Kind      string
	Valuation fpdecimal.Decimal
	Wins      int
	// Surplus is the sum of valuation minus payment over rounds won
	Surplus fpdecimal.Decimal
}

// Report summarizes a simulation run
type Report struct {
	Mechanism    string
	Rounds       int
	Failed       int
	Fallbacks    int
	Revenue      fpdecimal.Decimal
	Bidders      []BidderSummary
	LatencyP50   time.Duration
	LatencyP99   time.Duration
	LatencyMax   time.Duration
	TotalRuntime time.Duration
}

// Simulation runs many rounds among a fixed population of bidders
type Simulation struct {
	cfg          *Config
	participants []Participant
	kinds        map[core.Identifier]string
	auctioneer   *auction.Auctioneer[fpdecimal.Decimal, State]
	limiter      *rate.Limiter
	latency      *hdrhistogram.Histogram
	logger       zerolog.Logger
}

// New builds the bidder population and the auctioneer
func New(cfg *Config, sender messaging.MessageSender, logger zerolog.Logger) (*Simulation, error) {
	m, err := mechanism.ByName[fpdecimal.Decimal](cfg.Mechanism)
	if err != nil {
		return nil, err
	}

	r := rand.New(rand.NewSource(cfg.Seed))
	valuation := func() fpdecimal.Decimal {
		v := cfg.MinValuation + r.Float64()*(cfg.MaxValuation-cfg.MinValuation)
		return fpdecimal.FromFloat(float64(int64(v*100)) / 100)
	}

	s := &Simulation{
		cfg:    cfg,
		kinds:  make(map[core.Identifier]string),
		logger: logger.With().Str("component", "simulation").Logger(),

		// one microsecond to one minute at 3 significant figures
		latency: hdrhistogram.New(1, int64(time.Minute/time.Microsecond), 3),
	}

	for i := 0; i < cfg.StaticBidders; i++ {
		id := core.Identifier(fmt.Sprintf("static-%d", i+1))
		v := valuation()
		s.add(bidder.NewStaticBidder(id, v, v), "static")
	}
	for i := 0; i < cfg.AdaptiveBidders; i++ {
		id := core.Identifier(fmt.Sprintf("adaptive-%d", i+1))
		s.add(bidder.NewAdaptiveBidder(id, valuation(), bidder.WithLogger(logger)), "adaptive")
	}

	bidders := make([]bidder.Bidder[fpdecimal.Decimal, State], len(s.participants))
	for i, p := range s.participants {
		bidders[i] = p
	}
	s.auctioneer = auction.NewAuctioneer(core.NewDecimalOrderBook, m, bidders, auction.Options{Sender: sender})

	if cfg.RoundsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RoundsPerSecond), 1)
	}

	return s, nil
}

// Participants returns the simulated bidders
func (s *Simulation) Participants() []Participant {
	return s.participants
}

// Run executes the configured number of rounds. It stops early when ctx is
// done or pacing cannot finish before its deadline, and still reports the
// rounds completed so far.
func (s *Simulation) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{
		Mechanism: s.cfg.Mechanism,
		Revenue:   fpdecimal.Zero,
	}
	history := make([]fpdecimal.Decimal, 0, s.cfg.Rounds)
	var runErr error

	for round := 1; round <= s.cfg.Rounds; round++ {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				s.logger.Warn().Err(err).Int("round", round).Msg("Simulation interrupted")
				runErr = err
				break
			}
		}
		if ctx.Err() != nil {
			break
		}

		roundCtx, cancel := context.WithTimeout(ctx, s.cfg.RoundTimeout)
		result, err := s.auctioneer.RunRound(roundCtx, State{
			Round:        round,
			Competitors:  len(s.participants),
			PriceHistory: slices.Clip(history),
		})
		cancel()

		if result == nil {
			report.Failed++
			s.logger.Error().Err(err).Int("round", round).Msg("Round failed")
			continue
		}
		if err != nil {
			s.logger.Warn().Err(err).Int("round", round).Msg("Round resolved with bidder errors")
		}

		report.Rounds++
		report.Revenue = report.Revenue.Add(result.Resolution.Payment)
		if result.Resolution.FellBack {
			report.Fallbacks++
		}
		history = append(history, result.Resolution.Payment)

		if err := s.latency.RecordValue(result.Duration.Microseconds()); err != nil {
			s.logger.Debug().Err(err).Msg("Latency out of histogram range")
		}
	}

	report.LatencyP50 = time.Duration(s.latency.ValueAtQuantile(50)) * time.Microsecond
	report.LatencyP99 = time.Duration(s.latency.ValueAtQuantile(99)) * time.Microsecond
	report.LatencyMax = time.Duration(s.latency.Max()) * time.Microsecond
	report.Bidders = s.summaries()
	report.TotalRuntime = time.Since(start)

	if runErr == nil {
		runErr = ctx.Err()
	}
	return report, runErr
}

// private methods

func (s *Simulation) add(p Participant, kind string) {
	s.participants = append(s.participants, p)
	s.kinds[p.ID()] = kind
}

func (s *Simulation) summaries() []BidderSummary {
	out := make([]BidderSummary, 0, len(s.participants))
	for _, p := range s.participants {
		surplus := fpdecimal.Zero
		for _, o := range p.History() {
			if o.Won {
				surplus = surplus.Add(o.ItemValue.Sub(o.PricePaid))
			}
		}
		out = append(out, BidderSummary{
			ID:        p.ID(),
			Kind:      s.kinds[p.ID()],
			Valuation: p.Valuation(),
			Wins:      p.Wins(),
			Surplus:   surplus,
		})
	}
	return out
}
