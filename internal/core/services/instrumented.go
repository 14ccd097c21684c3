package services

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sufield/trustgate/internal/core/domain"
	"github.com/sufield/trustgate/internal/core/ports"
)

// InstrumentedPolicy decorates a TrustPolicy with structured logging and
// metrics. The wrapped policy stays pure; all side effects live here, at the
// edge, so the decision logic itself remains trivially concurrent-safe.
//
// Rejections are logged with the reason and an evaluation id for correlation
// with transport-layer logs, but never with certificate contents.
type InstrumentedPolicy struct {
	inner   ports.TrustPolicy
	name    string
	logger  *slog.Logger
	metrics MetricsReporter
	now     func() time.Time
}

// NewInstrumentedPolicy wraps a policy. The name labels metrics and log
// entries (typically "strict" or "permissive"). A nil logger falls back to
// slog.Default(), a nil reporter to NoOpMetrics.
func NewInstrumentedPolicy(inner ports.TrustPolicy, name string, logger *slog.Logger, metrics MetricsReporter) *InstrumentedPolicy {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &NoOpMetrics{}
	}
	return &InstrumentedPolicy{
		inner:   inner,
		name:    name,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// Evaluate delegates to the wrapped policy and records the outcome.
func (p *InstrumentedPolicy) Evaluate(chain domain.ServerTrustChain, host domain.Hostname) domain.Decision {
	start := p.now()
	decision := p.inner.Evaluate(chain, host)
	elapsed := p.now().Sub(start)

	result := "rejected"
	if decision.IsTrusted() {
		result = "trusted"
	}
	p.metrics.RecordEvaluation(p.name, result, string(decision.Reason()), elapsed.Seconds())

	if !decision.IsTrusted() {
		p.logger.Warn("trust evaluation rejected peer",
			"evaluation_id", uuid.NewString(),
			"policy", p.name,
			"hostname", host.String(),
			"reason", string(decision.Reason()),
			"detail", decision.Detail(),
			"chain_length", chain.Count(),
		)
	}

	return decision
}

// ReplacePins forwards pin replacement when the wrapped policy supports it,
// so the watcher can be wired to the decorated policy directly.
func (p *InstrumentedPolicy) ReplacePins(pins *domain.PinSet) {
	if replacer, ok := p.inner.(ports.PinReplacer); ok {
		replacer.ReplacePins(pins)
		p.logger.Info("pin configuration replaced", "policy", p.name, "pins", pins.String())
	}
}
