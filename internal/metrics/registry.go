package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Registry holds the engine's domain metrics. Export wiring (an SDK meter
// provider) is configured by the embedding platform; with none installed
// these instruments are no-ops, which keeps the core free of network I/O.
type Registry struct {
	meter metric.Meter

	ClaimEvaluations   metric.Int64Counter
	EvaluationDuration metric.Float64Histogram
	RiskReports        metric.Int64Counter
	WindowsAnalyzed    metric.Int64Counter
	DegradedAnalyses   metric.Int64Counter
	SeriesSynthesized  metric.Int64Counter
}

// NewRegistry creates and registers all engine metrics
func NewRegistry() (*Registry, error) {
	meter := otel.Meter("claims-engine")
	r := &Registry{meter: meter}

	var err error
	if r.ClaimEvaluations, err = meter.Int64Counter("fraud.claim_evaluations",
		metric.WithDescription("Claim fraud evaluations by rating")); err != nil {
		return nil, err
	}
	if r.EvaluationDuration, err = meter.Float64Histogram("fraud.evaluation_duration_seconds",
		metric.WithDescription("Fraud evaluation latency")); err != nil {
		return nil, err
	}
	if r.RiskReports, err = meter.Int64Counter("risk.reports",
		metric.WithDescription("Risk reports produced by category")); err != nil {
		return nil, err
	}
	if r.WindowsAnalyzed, err = meter.Int64Counter("telematics.windows_analyzed",
		metric.WithDescription("Incident windows analyzed with full statistics")); err != nil {
		return nil, err
	}
	if r.DegradedAnalyses, err = meter.Int64Counter("telematics.degraded_analyses",
		metric.WithDescription("Incident analyses that returned degraded data, by reason")); err != nil {
		return nil, err
	}
	if r.SeriesSynthesized, err = meter.Int64Counter("telematics.series_synthesized",
		metric.WithDescription("Driver series synthesized for missing telemetry")); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) RecordEvaluation(ctx context.Context, rating string, seconds float64) {
	attrs := metric.WithAttributes(attribute.String("rating", rating))
	r.ClaimEvaluations.Add(ctx, 1, attrs)
	r.EvaluationDuration.Record(ctx, seconds, attrs)
}

func (r *Registry) RecordRiskReport(ctx context.Context, category string) {
	r.RiskReports.Add(ctx, 1, metric.WithAttributes(attribute.String("category", category)))
}

func (r *Registry) RecordWindowAnalyzed(ctx context.Context) {
	r.WindowsAnalyzed.Add(ctx, 1)
}

func (r *Registry) RecordDegradedAnalysis(ctx context.Context, reason string) {
	r.DegradedAnalyses.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (r *Registry) RecordSynthesis(ctx context.Context) {
	r.SeriesSynthesized.Add(ctx, 1)
}
