// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/googlecloudplatform/refdb/internal/logger"
	"github.com/googlecloudplatform/refdb/internal/metrics"
	"github.com/googlecloudplatform/refdb/internal/refs"
)

// errorKind extracts the refs.ErrorKind name for metric labeling, or
// "other" for an error this package didn't originate (e.g. a filesystem
// error from outside the Backend).
func errorKind(err error) string {
	var refErr *refs.Error
	if errors.As(err, &refErr) {
		return refErr.Kind.String()
	}
	return "other"
}

// metricsHandle is populated by PersistentPreRunE before any subcommand's
// RunE runs; it defaults to a no-op so a command invoked without going
// through rootCmd.Execute() (as in tests) still has something to call.
var metricsHandle metrics.OpsMetricHandle = metrics.NewNoopMetrics()
var metricsServer *http.Server

// recordOp times a single backend operation and reports it to
// metricsHandle, returning a func to call with the operation's error (nil
// on success) once it completes.
func recordOp(op string) func(error) {
	start := time.Now()
	ctx := context.Background()
	return func(err error) {
		metricsHandle.OpsCount(ctx, op, 1)
		metricsHandle.OpsLatency(ctx, op, time.Since(start))
		if err != nil {
			metricsHandle.OpsErrorCount(ctx, op, errorKind(err), 1)
		}
	}
}

// setupMetrics builds the operation metric handle a subcommand reports
// against. When metrics are disabled it returns a no-op handle and a nil
// server, so callers always have something to call OpsCount et al. on.
func setupMetrics(mc metricsConfig) (metrics.OpsMetricHandle, *http.Server, error) {
	if !mc.Enabled {
		return metrics.NewNoopMetrics(), nil, nil
	}

	exporter, err := otelprom.New()
	if err != nil {
		return nil, nil, fmt.Errorf("starting prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	handle, err := metrics.NewOTelMetrics(provider)
	if err != nil {
		return nil, nil, fmt.Errorf("building metric handle: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: mc.ListenAddr, Handler: mux}

	go func() {
		logger.Infof("metrics listening on %s", mc.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("metrics server: %v", err)
		}
	}()

	return handle, srv, nil
}

// shutdownMetrics stops the Prometheus listener started by setupMetrics, if
// any; a nil srv (metrics disabled) is a no-op.
func shutdownMetrics(ctx context.Context, srv *http.Server) error {
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// metricsConfig is the subset of cfg.MetricsConfig setupMetrics needs,
// named independently so this file doesn't import cfg just for two fields.
type metricsConfig struct {
	Enabled    bool
	ListenAddr string
}
