package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/erain9/sealedbid/config"
	"github.com/erain9/sealedbid/pkg/db/queue"
	"github.com/erain9/sealedbid/pkg/logging"
	"github.com/erain9/sealedbid/pkg/messaging"
	"github.com/erain9/sealedbid/pkg/messaging/kafka"
	"github.com/erain9/sealedbid/pkg/otel"
	"github.com/erain9/sealedbid/pkg/simulation"
	"github.com/fatih/color"
	"github.com/nikolaydubina/fpdecimal"
)

func main() {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}

	logger := logging.Setup(logging.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Format == "pretty",
		Output: os.Stderr,
	})
	if cfg.Source != "" {
		logger.Info().Str("path", cfg.Source).Msg("Loaded configuration file")
	}

	simCfg, err := simulation.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load simulation configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	cleanup, err := otel.Init(otel.Config{
		ServiceName:      otel.ServiceAuctioneer,
		ServiceVersion:   cfg.Telemetry.ServiceVersion,
		Endpoint:         cfg.Telemetry.Endpoint,
		CollectorEnabled: cfg.Telemetry.Enabled,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize OpenTelemetry")
	}
	defer cleanup()

	if cfg.Telemetry.Enabled {
		if err := otel.StartRuntimeMetrics(10 * time.Second); err != nil {
			logger.Warn().Err(err).Msg("Runtime metrics unavailable")
		}
	}

	sender, err := setupSender(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to set up round publisher")
	}
	if sender != nil {
		defer sender.Close()
	}

	if cfg.Kafka.Enabled && cfg.Kafka.Tail {
		consumer := kafka.SetupConsumer(ctx, logger, cfg.Kafka.BrokerAddr, cfg.Kafka.Topic, cfg.Kafka.ConsumerGroup)
		defer consumer.Close()
	}

	sim, err := simulation.New(simCfg, sender, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create simulation")
	}

	logger.Info().
		Int("rounds", simCfg.Rounds).
		Str("mechanism", simCfg.Mechanism).
		Int("bidders", len(sim.Participants())).
		Msg("Starting simulation")

	report, err := sim.Run(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Simulation stopped early")
	}

	printReport(os.Stdout, report)
}

// setupSender returns nil when publishing is disabled
func setupSender(cfg *config.Config) (messaging.MessageSender, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}

	if cfg.Kafka.Mode == config.KafkaModeProducer {
		sender, err := queue.NewQueueMessageSender([]string{cfg.Kafka.BrokerAddr}, cfg.Kafka.Topic)
		if err != nil {
			return nil, err
		}
		return sender, nil
	}

	sender, err := kafka.NewKafkaMessageSender(cfg.Kafka.BrokerAddr, cfg.Kafka.Topic)
	if err != nil {
		return nil, err
	}
	return sender, nil
}

func printReport(out io.Writer, report *simulation.Report) {
	color.NoColor = false
	cyan := color.New(color.FgCyan).SprintfFunc()
	green := color.New(color.FgGreen).SprintfFunc()
	yellow := color.New(color.FgYellow).SprintfFunc()

	fmt.Fprintf(out, "%s %s\n", cyan("Mechanism:"), report.Mechanism)
	fmt.Fprintf(out, "%s %d completed, %d failed, %d fell back\n",
		cyan("Rounds:"), report.Rounds, report.Failed, report.Fallbacks)
	fmt.Fprintf(out, "%s %s\n", cyan("Revenue:"), report.Revenue)
	fmt.Fprintf(out, "%s p50=%s p99=%s max=%s total=%s\n\n",
		cyan("Latency:"), report.LatencyP50, report.LatencyP99, report.LatencyMax,
		report.TotalRuntime.Round(time.Millisecond))

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		cyan("Bidder"), cyan("Kind"), cyan("Valuation"), cyan("Wins"), cyan("Surplus"))

	for _, b := range report.Bidders {
		wins := fmt.Sprint(b.Wins)
		if b.Wins > 0 {
			wins = green(wins)
		}
		surplus := b.Surplus.String()
		if b.Surplus.LessThan(fpdecimal.Zero) {
			surplus = yellow(surplus)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", b.ID, b.Kind, b.Valuation, wins, surplus)
	}

	w.Flush()
}
