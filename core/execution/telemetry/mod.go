// Package telemetry wraps an execution service to observe its sessions. Each
// session gets an identifier, a span, a log entry and updates the metrics of
// the engine.
package telemetry

import (
	"math/big"
	"time"

	engine "github.com/JoowonYun/CasperLabs"
	"github.com/JoowonYun/CasperLabs/core/execution"
	"github.com/JoowonYun/CasperLabs/core/gas"
	"github.com/JoowonYun/CasperLabs/internal/tracing"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

// Outcomes of a session as they appear in the metrics.
const (
	OutcomeSuccess  = "success"
	OutcomeRevert   = "revert"
	OutcomeGasLimit = "gas_limit"
	OutcomeError    = "error"
)

// defines prometheus metrics
var (
	promSessions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_sessions_total",
		Help: "total number of sessions executed",
	}, []string{"phase", "outcome"})

	promGas = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_gas_used_total",
		Help: "total amount of gas charged to the sessions",
	}, []string{"phase"})

	promEffectSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "engine_effect_keys",
		Help:    "number of keys touched by a session",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 20, 30, 50, 100},
	})

	promDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "engine_session_duration_seconds",
		Help:    "duration of a session",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	engine.PromCollectors = append(engine.PromCollectors, promSessions, promGas,
		promEffectSize, promDuration)
}

var getTracer = tracing.GetTracer

// Option is the type of option to create the service.
type Option func(*Service)

// WithLogger sets the logger of the sessions.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer sets the tracer of the spans in place of the tracer of the
// service name.
func WithTracer(tracer opentracing.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// Service is an execution service that observes another one.
//
// - implements execution.Service
type Service struct {
	inner  execution.Service
	tracer opentracing.Tracer
	logger zerolog.Logger
}

// NewService returns the service wrapping the inner one. The spans are sent to
// the tracer of the name unless another one is given.
func NewService(inner execution.Service, name string, opts ...Option) (*Service, error) {
	s := &Service{
		inner:  inner,
		logger: engine.Logger.With().Str("service", name).Logger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.tracer == nil {
		tracer, err := getTracer(name)
		if err != nil {
			return nil, xerrors.Errorf("failed to get tracer: %v", err)
		}

		s.tracer = tracer
	}

	return s, nil
}

// Exec implements execution.Service.
func (s *Service) Exec(reader execution.Reader, req execution.Request) execution.Result {
	id := xid.New().String()
	phase := req.Phase.String()

	span := s.tracer.StartSpan("exec")
	span.SetTag(tracing.SessionTag, id)
	span.SetTag(tracing.PhaseTag, phase)
	span.SetTag(tracing.DeployTag, req.DeployHash.String())
	defer span.Finish()

	start := time.Now()
	res := s.inner.Exec(reader, req)
	elapsed := time.Since(start)

	outcome := Outcome(res)

	promSessions.WithLabelValues(phase, outcome).Inc()
	promGas.WithLabelValues(phase).Add(toFloat(res.Cost))
	promEffectSize.Observe(float64(res.Effect.Size()))
	promDuration.Observe(elapsed.Seconds())

	span.SetTag("outcome", outcome)
	span.SetTag("cost", res.Cost.String())

	event := s.logger.Info()
	if !res.IsSuccess() {
		span.SetTag("error", true)
		event = s.logger.Warn().Err(res.Err)
	}

	event.Str("session", id).
		Str("deploy", req.DeployHash.String()).
		Str("phase", phase).
		Str("code", req.Code).
		Str("outcome", outcome).
		Str("cost", res.Cost.String()).
		Int("keys", res.Effect.Size()).
		Dur("elapsed", elapsed).
		Msg("session executed")

	return res
}

// Outcome returns the label of the result.
func Outcome(res execution.Result) string {
	if res.IsSuccess() {
		return OutcomeSuccess
	}

	if _, ok := res.RevertCode(); ok {
		return OutcomeRevert
	}

	if xerrors.Is(res.Err, execution.ErrGasLimit) {
		return OutcomeGasLimit
	}

	return OutcomeError
}

func toFloat(g gas.Gas) float64 {
	f, _ := new(big.Float).SetInt(g.Value().Big()).Float64()
	return f
}
