package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/example/numtracker/internal/transport/httpapi"
	"github.com/example/numtracker/internal/wire"
)

// ServeCmd starts the HTTP transport, exposing /graphql and /schema, and
// registers a Prometheus-backed OpenTelemetry MeterProvider so the
// allocator's counters are scraped alongside the service.
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the allocation and path-templating HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := wire.Config()

			exporter, err := prometheus.New()
			if err != nil {
				return fmt.Errorf("failed to create prometheus exporter: %w", err)
			}
			provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
			otel.SetMeterProvider(provider)
			defer provider.Shutdown(context.Background())

			handler := httpapi.NewHandler(wire.Contract())

			mux := http.NewServeMux()
			mux.Handle("/graphql", handler)
			mux.Handle("/schema", handler)
			mux.Handle("/metrics", promhttp.Handler())

			addr := fmt.Sprintf(":%d", cfg.Port)
			fmt.Printf("%s listening on %s\n", color.New(color.FgGreen).Sprint("numtracker"), addr)
			slog.Info("starting server", "addr", addr, "db", cfg.DBPath)

			return http.ListenAndServe(addr, mux)
		},
	}
}
