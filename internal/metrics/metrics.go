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

// Package metrics exposes the reference database's operation counters,
// modeled directly on the OpsMetricHandle shape used elsewhere in this
// lineage: an ops count/latency/error-count triple per operation name,
// backed by OpenTelemetry and exported as Prometheus metrics.
package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OpKey annotates the operation a measurement is about; its value is the
// name the caller passes, which cmd sets to the subcommand name, e.g.
// "show-ref" or "pack-refs".
const OpKey = "refdb_op"

// OpsMetricHandle is the interface the backend depends on; production
// wiring uses otelMetrics, tests use the no-op implementation below.
type OpsMetricHandle interface {
	OpsCount(ctx context.Context, op string, inc int64)
	OpsLatency(ctx context.Context, op string, latency time.Duration)
	OpsErrorCount(ctx context.Context, op string, kind string, inc int64)

	CompressTotal(ctx context.Context)
	CompressLooseAbsorbed(ctx context.Context, inc int64)
	CacheRefresh(ctx context.Context)
	CorruptDetected(ctx context.Context, where string)
}

type otelMetrics struct {
	opsCount      metric.Int64Counter
	opsErrorCount metric.Int64Counter
	opsLatency    metric.Float64Histogram

	compressTotal metric.Int64Counter
	looseAbsorbed metric.Int64Counter
	cacheRefresh  metric.Int64Counter
	corruptTotal  metric.Int64Counter

	opAttrs     sync.Map // string -> metric.MeasurementOption
	errAttrs    sync.Map // [2]string -> metric.MeasurementOption
	corruptAttr sync.Map // string -> metric.MeasurementOption
}

// NewOTelMetrics builds the real metric handle against the given meter
// provider (typically wired to the Prometheus exporter in cmd/).
func NewOTelMetrics(provider metric.MeterProvider) (OpsMetricHandle, error) {
	meter := provider.Meter("refdb")

	opsCount, err := meter.Int64Counter("refdb_ops_total")
	if err != nil {
		return nil, err
	}
	opsErrorCount, err := meter.Int64Counter("refdb_ops_error_total")
	if err != nil {
		return nil, err
	}
	opsLatency, err := meter.Float64Histogram("refdb_ops_latency_ms")
	if err != nil {
		return nil, err
	}
	compressTotal, err := meter.Int64Counter("refdb_compress_total")
	if err != nil {
		return nil, err
	}
	looseAbsorbed, err := meter.Int64Counter("refdb_compress_loose_absorbed_total")
	if err != nil {
		return nil, err
	}
	cacheRefresh, err := meter.Int64Counter("refdb_cache_refresh_total")
	if err != nil {
		return nil, err
	}
	corruptTotal, err := meter.Int64Counter("refdb_corrupt_total")
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		opsCount:      opsCount,
		opsErrorCount: opsErrorCount,
		opsLatency:    opsLatency,
		compressTotal: compressTotal,
		looseAbsorbed: looseAbsorbed,
		cacheRefresh:  cacheRefresh,
		corruptTotal:  corruptTotal,
	}, nil
}

func (m *otelMetrics) opAttrSet(op string) metric.MeasurementOption {
	if v, ok := m.opAttrs.Load(op); ok {
		return v.(metric.MeasurementOption)
	}
	opt := metric.WithAttributeSet(attribute.NewSet(attribute.String(OpKey, op)))
	actual, _ := m.opAttrs.LoadOrStore(op, opt)
	return actual.(metric.MeasurementOption)
}

func (m *otelMetrics) OpsCount(ctx context.Context, op string, inc int64) {
	m.opsCount.Add(ctx, inc, m.opAttrSet(op))
}

func (m *otelMetrics) OpsLatency(ctx context.Context, op string, latency time.Duration) {
	m.opsLatency.Record(ctx, float64(latency.Microseconds())/1000, m.opAttrSet(op))
}

func (m *otelMetrics) OpsErrorCount(ctx context.Context, op string, kind string, inc int64) {
	key := op + "|" + kind
	var opt metric.MeasurementOption
	if v, ok := m.errAttrs.Load(key); ok {
		opt = v.(metric.MeasurementOption)
	} else {
		opt = metric.WithAttributeSet(attribute.NewSet(
			attribute.String(OpKey, op),
			attribute.String("refdb_error_kind", kind),
		))
		actual, _ := m.errAttrs.LoadOrStore(key, opt)
		opt = actual.(metric.MeasurementOption)
	}
	m.opsErrorCount.Add(ctx, inc, opt)
}

func (m *otelMetrics) CompressTotal(ctx context.Context) {
	m.compressTotal.Add(ctx, 1)
}

func (m *otelMetrics) CompressLooseAbsorbed(ctx context.Context, inc int64) {
	m.looseAbsorbed.Add(ctx, inc)
}

func (m *otelMetrics) CacheRefresh(ctx context.Context) {
	m.cacheRefresh.Add(ctx, 1)
}

func (m *otelMetrics) CorruptDetected(ctx context.Context, where string) {
	var opt metric.MeasurementOption
	if v, ok := m.corruptAttr.Load(where); ok {
		opt = v.(metric.MeasurementOption)
	} else {
		opt = metric.WithAttributeSet(attribute.NewSet(attribute.String("refdb_where", where)))
		actual, _ := m.corruptAttr.LoadOrStore(where, opt)
		opt = actual.(metric.MeasurementOption)
	}
	m.corruptTotal.Add(ctx, 1, opt)
}

type noopMetrics struct{}

// NewNoopMetrics returns a handle that discards every measurement, for use
// in tests and any build that doesn't want a metrics dependency wired up.
func NewNoopMetrics() OpsMetricHandle { return noopMetrics{} }

func (noopMetrics) OpsCount(context.Context, string, int64)              {}
func (noopMetrics) OpsLatency(context.Context, string, time.Duration)    {}
func (noopMetrics) OpsErrorCount(context.Context, string, string, int64) {}
func (noopMetrics) CompressTotal(context.Context)                        {}
func (noopMetrics) CompressLooseAbsorbed(context.Context, int64)         {}
func (noopMetrics) CacheRefresh(context.Context)                         {}
func (noopMetrics) CorruptDetected(context.Context, string)              {}
