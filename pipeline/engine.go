package pipeline

import (
	"context"
	"time"

	"concierge/llmclient"
	"concierge/session"
	"concierge/tenant"

	"go.uber.org/zap"
)

// DefaultProviderTimeout bounds a completion call when none is configured.
const DefaultProviderTimeout = 20 * time.Second

// Completer is the completion provider. Its output is untrusted.
type Completer interface {
	Complete(ctx context.Context, req llmclient.Request) (string, error)
}

// Engine runs the ordered decision stages for one turn.
type Engine struct {
	provider Completer
	timeout  time.Duration
	logger   *zap.Logger
	handlers []Handler
}

func NewEngine(provider Completer, timeout time.Duration, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	e := &Engine{provider: provider, timeout: timeout, logger: logger}
	e.handlers = []Handler{
		recallStage,
		greeterStage,
		semanticStage,
		pricingStage,
		closingStage,
		e.generativeStage,
	}
	return e
}

// Resolve produces exactly one reply for message, appends the exchange to
// the session history and updates the session flags. The tenant is only
// read.
func (e *Engine) Resolve(ctx context.Context, t *tenant.Tenant, state *session.State, message string) Decision {
	var decision Decision
	for _, handle := range e.handlers {
		if d, ok := handle(ctx, t, state, message); ok {
			decision = d
			break
		}
	}

	apply(state, message, decision, t.Settings.HistoryCap())

	e.logger.Debug("Turn resolved",
		zap.String("tenant_id", t.ID),
		zap.String("visitor_id", state.VisitorID),
		zap.String("stage", string(decision.Stage)),
		zap.Float64("score", decision.Score),
		zap.Int("escalation", decision.Escalation))
	return decision
}

func apply(state *session.State, message string, d Decision, historyCap int) {
	state.AppendTurn(session.RoleUser, message, historyCap)
	state.AppendTurn(session.RoleAssistant, d.Reply, historyCap)

	switch d.Stage {
	case StageGreeting, StageLowInfo, StagePricing:
		state.MarkAnswered()
	case StageSemantic, StageGenerative:
		state.MarkAnswered()
		state.ClearFallback()
	case StageFallback:
		state.MarkFallbackUsed()
		if d.ErrorNotified {
			state.MarkErrorNotified()
		}
	}
}
