package otel

import (
	"fmt"
	"time"

	hostmetrics "go.opentelemetry.io/contrib/instrumentation/host"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
)

// StartRuntimeMetrics starts Go runtime (memory, GC) and host (CPU,
// network) metrics collection on the configured meter provider.
func StartRuntimeMetrics(memStatsInterval time.Duration) error {
	mp := GetMeterProvider()

	if err := runtime.Start(
		runtime.WithMeterProvider(mp),
		runtime.WithMinimumReadMemStatsInterval(memStatsInterval),
	); err != nil {
		return fmt.Errorf("failed to start runtime metrics: %w", err)
	}

	if err := hostmetrics.Start(hostmetrics.WithMeterProvider(mp)); err != nil {
		return fmt.Errorf("failed to start host metrics: %w", err)
	}

	return nil
}
