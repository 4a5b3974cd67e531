package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Probe checks one dependency such as postgres or redis.
type Probe func(ctx context.Context) error

// HealthReporter feeds probe results into the gRPC health service. Each probe
// is published under its own service name; the overall status ("") is
// SERVING only when every probe passes.
type HealthReporter struct {
	server *health.Server
	probes map[string]Probe
	logger *slog.Logger
}

func NewHealthReporter(server *health.Server, probes map[string]Probe, logger *slog.Logger) *HealthReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthReporter{server: server, probes: probes, logger: logger}
}

func (h *HealthReporter) Check(ctx context.Context) bool {
	healthy := true
	for name, probe := range h.probes {
		status := healthpb.HealthCheckResponse_SERVING
		if err := probe(ctx); err != nil {
			h.logger.WarnContext(ctx, "health probe failed", slog.String("probe", name), slog.String("error", err.Error()))
			status = healthpb.HealthCheckResponse_NOT_SERVING
			healthy = false
		}
		h.server.SetServingStatus(name, status)
	}

	overall := healthpb.HealthCheckResponse_SERVING
	if !healthy {
		overall = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus("", overall)
	return healthy
}

// Watch runs Check immediately and then every interval until ctx is done.
func (h *HealthReporter) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		probeCtx, cancel := context.WithTimeout(ctx, interval/2)
		h.Check(probeCtx)
		cancel()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *HealthReporter) Shutdown() {
	h.server.Shutdown()
}
