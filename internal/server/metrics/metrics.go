// Package metrics holds the Prometheus collectors and OpenTelemetry tracer
// shared by the liveness, sweep and OTP flows.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("vasihat.server")

var (
	// checkInsTotal counts accepted check-ins by method.
	checkInsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vasihat_checkins_total",
		Help: "Total accepted check-ins by method",
	}, []string{"method"})

	// sweepsTotal counts evaluator runs by result (ok, partial, error).
	sweepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vasihat_sweeps_total",
		Help: "Total dead man's switch sweeps by result",
	}, []string{"result"})

	sweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vasihat_sweep_duration_seconds",
		Help:    "Dead man's switch sweep duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	})

	lapsedUsersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vasihat_lapsed_users_total",
		Help: "Lapsed users seen across all sweeps",
	})

	grantsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vasihat_nominee_grants_total",
		Help: "Nominee access grants by source (sweep, manual)",
	}, []string{"source"})

	// otpTotal counts OTP events by channel and status (sent, failed, verified, rejected).
	otpTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vasihat_otp_total",
		Help: "One-time password events by channel and status",
	}, []string{"channel", "status"})
)

func CheckIn(method string) {
	checkInsTotal.WithLabelValues(method).Inc()
}

// Sweep records one evaluator run.
func Sweep(result string, d time.Duration, lapsed, granted int) {
	sweepsTotal.WithLabelValues(result).Inc()
	sweepDuration.Observe(d.Seconds())
	lapsedUsersTotal.Add(float64(lapsed))
	grantsTotal.WithLabelValues("sweep").Add(float64(granted))
}

func ManualGrant() {
	grantsTotal.WithLabelValues("manual").Inc()
}

func OTP(channel, status string) {
	otpTotal.WithLabelValues(channel, status).Inc()
}

// StartSpan opens a span on the server tracer. Without a configured
// provider otel returns a no-op span.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
