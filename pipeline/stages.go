package pipeline

import (
	"context"
	"strings"
	"unicode"

	"concierge/grounding"
	"concierge/llmclient"
	"concierge/matcher"
	"concierge/session"
	"concierge/tenant"

	"go.uber.org/zap"
)

// Handler is one decision stage. It reads the tenant, the session and the
// message and either produces a decision or declines. Handlers never mutate
// state; the engine applies the decision afterwards.
type Handler func(ctx context.Context, t *tenant.Tenant, state *session.State, message string) (Decision, bool)

func recallStage(_ context.Context, t *tenant.Tenant, state *session.State, message string) (Decision, bool) {
	if !IsRecall(message) {
		return Decision{}, false
	}
	templates := t.Settings.Templates
	last, ok := state.LastAssistant()
	if !ok {
		return Decision{Stage: StageRecall, Reply: templates.RecallEmpty}, true
	}
	reply := templates.Recall
	if strings.Contains(reply, "{last}") {
		reply = strings.ReplaceAll(reply, "{last}", last)
	} else {
		reply = reply + " " + last
	}
	return Decision{Stage: StageRecall, Reply: reply}, true
}

func greeterStage(_ context.Context, t *tenant.Tenant, _ *session.State, message string) (Decision, bool) {
	s := t.Settings
	if !s.GreeterEnabled {
		return Decision{}, false
	}
	switch {
	case t.Patterns.IsGreeting(message):
		return Decision{Stage: StageGreeting, Reply: withMenu(s.Templates.Greeter, s)}, true
	case t.Patterns.IsLowInfo(message):
		return Decision{Stage: StageLowInfo, Reply: withMenu(s.Templates.Clarify, s)}, true
	}
	return Decision{}, false
}

// semanticStage answers verbatim from the best FAQ or knowledge snippet.
// Pricing questions still get the authoritative pricing line when the match
// landed on something else.
func semanticStage(_ context.Context, t *tenant.Tenant, _ *session.State, message string) (Decision, bool) {
	match, ok := matcher.Best(t.Config, message, t.Settings.SemanticThreshold)
	if !ok {
		return Decision{}, false
	}
	reply := match.Answer
	if IsPricingIntent(message) {
		reply = grounding.PricingLine(t.Config)
	}
	return Decision{Stage: StageSemantic, Reply: reply, Score: match.Score}, true
}

func pricingStage(_ context.Context, t *tenant.Tenant, _ *session.State, message string) (Decision, bool) {
	if !IsPricingIntent(message) {
		return Decision{}, false
	}
	return Decision{Stage: StagePricing, Reply: grounding.PricingLine(t.Config)}, true
}

func closingStage(_ context.Context, t *tenant.Tenant, state *session.State, message string) (Decision, bool) {
	if !state.HasAnsweredBefore || !IsClosing(message) {
		return Decision{}, false
	}
	return Decision{Stage: StageClosing, Reply: t.Settings.ClosingMessage}, true
}

// generativeStage is the last resort. It always produces a decision: the
// provider's answer, or a non-repeating fallback when the provider fails or
// returns nothing usable.
func (e *Engine) generativeStage(ctx context.Context, t *tenant.Tenant, state *session.State, message string) (Decision, bool) {
	if e.provider == nil {
		return escalate(t.Settings, state, true), true
	}

	req := llmclient.Request{
		Model:    t.Settings.Model,
		System:   grounding.Build(t),
		Examples: examples(t.Config.Examples),
		History:  priorTurns(state, t.Settings.HistoryCap()),
		User:     message,
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	text, err := e.provider.Complete(callCtx, req)
	if err != nil {
		e.logger.Warn("Completion provider failed",
			zap.String("tenant_id", t.ID),
			zap.String("visitor_id", state.VisitorID),
			zap.Bool("fallback_already_used", state.FallbackAlreadyUsed),
			zap.Error(err))
		return escalate(t.Settings, state, true), true
	}

	text = strings.TrimSpace(text)
	if degenerate(text) {
		e.logger.Warn("Completion provider returned an empty answer", zap.String("tenant_id", t.ID))
		return escalate(t.Settings, state, false), true
	}
	if IsPricingIntent(message) {
		text = grounding.PricingLine(t.Config)
	}
	return Decision{Stage: StageGenerative, Reply: text}, true
}

// escalate picks the first fallback text the first time it is needed and
// the second one while the first is still marked as used, so the same
// fallback wording is never given twice in a row. notify appends the
// transient-error notice once per session.
func escalate(s tenant.Settings, state *session.State, notify bool) Decision {
	if !state.FallbackAlreadyUsed {
		d := Decision{Stage: StageFallback, Reply: withMenu(s.Fallbacks[0], s), Escalation: 1}
		if notify && !state.ErrorAlreadyNotified {
			d.Reply += "\n\n" + s.Templates.ErrorNotice
			d.ErrorNotified = true
		}
		return d
	}
	return Decision{Stage: StageFallback, Reply: withMenu(s.Fallbacks[1], s), Escalation: 2}
}

func degenerate(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func withMenu(text string, s tenant.Settings) string {
	m := menu(s)
	if m == "" {
		return text
	}
	return text + "\n\n" + m
}

func menu(s tenant.Settings) string {
	if s.MenuSize <= 0 || len(s.CommonQuestions) == 0 {
		return ""
	}
	questions := s.CommonQuestions
	if len(questions) > s.MenuSize {
		questions = questions[:s.MenuSize]
	}
	var b strings.Builder
	b.WriteString(s.Templates.MenuHeader)
	for _, q := range questions {
		b.WriteString("\n- ")
		b.WriteString(q)
	}
	return b.String()
}

func examples(in []tenant.Example) []llmclient.Example {
	out := make([]llmclient.Example, 0, len(in))
	for _, ex := range in {
		out = append(out, llmclient.Example{User: ex.User, Assistant: ex.Assistant})
	}
	return out
}

func priorTurns(state *session.State, limit int) []llmclient.Message {
	tail := state.Tail(limit)
	out := make([]llmclient.Message, 0, len(tail))
	for _, turn := range tail {
		out = append(out, llmclient.Message{Role: turn.Role, Content: turn.Content})
	}
	return out
}
