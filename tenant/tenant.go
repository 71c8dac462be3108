package tenant

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Defaults applied to every sparse configuration.
const (
	DefaultBrand             = "our team"
	DefaultMenuSize          = 3
	DefaultSemanticThreshold = 0.18
	DefaultHistoryTurns      = 6
	DefaultFAQDigestCap      = 24

	DefaultRecallTemplate      = `My last message was: "{last}"`
	DefaultRecallEmptyTemplate = "I haven't sent you a message yet in this conversation."
	DefaultGreeterTemplate     = "Hi! Welcome to {brand}. How can I help you today?"
	DefaultClarifyTemplate     = "Could you tell me a little more about what you're looking for?"
	DefaultMenuHeader          = "You can ask me things like:"
	DefaultErrorNotice         = "(We had a brief technical hiccup, so I'm giving you our standard answer.)"
	DefaultFirstFallback       = "I'm not sure about that one. Could you rephrase it, or ask about one of our common topics?"
	DefaultSecondFallback      = "I still don't have an answer for that. Please reach out to our team directly and they'll be glad to help."
	DefaultClosingMessage      = "Thanks for chatting with us. Have a great day!"
)

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// ValidID reports whether id is an acceptable tenant identifier. Identifiers
// double as file names, so anything path-like is rejected.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// Tenant is a loaded, validated tenant: the normalized configuration plus
// its resolved settings and compiled patterns. Values are immutable once
// built and are replaced wholesale on reload.
type Tenant struct {
	ID       string
	Config   Config
	Settings Settings
	Patterns Patterns
}

// New normalizes cfg and compiles its patterns. defaultModel is used when
// the configuration names no model.
func New(id string, cfg Config, defaultModel string, logger *zap.Logger) *Tenant {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("tenant_id", id))
	normalized := Normalize(cfg, logger)
	settings := Resolve(normalized, defaultModel)
	return &Tenant{
		ID:       id,
		Config:   normalized,
		Settings: settings,
		Patterns: CompilePatterns(normalized.Options, logger),
	}
}

// Normalize returns a copy of cfg with a default brand and without FAQ
// entries that have no answer.
func Normalize(cfg Config, logger *zap.Logger) Config {
	out := cfg
	out.Brand = strings.TrimSpace(cfg.Brand)
	if out.Brand == "" {
		out.Brand = DefaultBrand
	}

	out.FAQs = make([]FAQ, 0, len(cfg.FAQs))
	for i, faq := range cfg.FAQs {
		answer := strings.TrimSpace(faq.Answer)
		if answer == "" {
			logger.Warn("Skipping FAQ entry without an answer", zap.Int("index", i), zap.String("question", faq.Question))
			continue
		}
		keywords := make([]string, 0, len(faq.Keywords))
		for _, kw := range faq.Keywords {
			if kw = strings.TrimSpace(kw); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		out.FAQs = append(out.FAQs, FAQ{
			Question: strings.TrimSpace(faq.Question),
			Answer:   answer,
			Keywords: keywords,
		})
	}

	out.Examples = make([]Example, 0, len(cfg.Examples))
	for _, ex := range cfg.Examples {
		if strings.TrimSpace(ex.User) == "" || strings.TrimSpace(ex.Assistant) == "" {
			continue
		}
		out.Examples = append(out.Examples, ex)
	}
	return out
}

// Resolve computes Settings from already normalized configuration.
func Resolve(cfg Config, defaultModel string) Settings {
	opts := cfg.Options
	s := Settings{
		Model:             firstNonBlank(cfg.Model, defaultModel),
		GreeterEnabled:    true,
		MenuSize:          DefaultMenuSize,
		SemanticThreshold: DefaultSemanticThreshold,
		HistoryTurns:      DefaultHistoryTurns,
		FAQDigestCap:      DefaultFAQDigestCap,
		ClosingMessage:    DefaultClosingMessage,
	}
	if opts.GreeterEnabled != nil {
		s.GreeterEnabled = *opts.GreeterEnabled
	}
	if opts.MenuSize > 0 {
		s.MenuSize = opts.MenuSize
	}
	if opts.SemanticThreshold != nil && *opts.SemanticThreshold >= 0 {
		s.SemanticThreshold = *opts.SemanticThreshold
	}
	if opts.HistoryTurns > 0 {
		s.HistoryTurns = opts.HistoryTurns
	}
	if opts.FAQDigestCap > 0 {
		s.FAQDigestCap = opts.FAQDigestCap
	}
	if opts.ClosingMessage != nil {
		// An explicit empty closing message is a valid terminal reply.
		s.ClosingMessage = strings.TrimSpace(*opts.ClosingMessage)
	}

	t := opts.Templates
	s.Templates = Templates{
		Recall:      firstNonBlank(t.Recall, DefaultRecallTemplate),
		RecallEmpty: firstNonBlank(t.RecallEmpty, DefaultRecallEmptyTemplate),
		Greeter:     strings.ReplaceAll(firstNonBlank(t.Greeter, DefaultGreeterTemplate), "{brand}", cfg.Brand),
		Clarify:     firstNonBlank(t.Clarify, DefaultClarifyTemplate),
		MenuHeader:  firstNonBlank(t.MenuHeader, DefaultMenuHeader),
		ErrorNotice: firstNonBlank(t.ErrorNotice, DefaultErrorNotice),
	}

	var fallbacks []string
	for _, fb := range opts.Fallbacks {
		if fb = strings.TrimSpace(fb); fb != "" {
			fallbacks = append(fallbacks, fb)
		}
	}
	s.Fallbacks[0] = DefaultFirstFallback
	s.Fallbacks[1] = DefaultSecondFallback
	if len(fallbacks) > 0 {
		s.Fallbacks[0] = fallbacks[0]
	}
	if len(fallbacks) > 1 && fallbacks[1] != fallbacks[0] {
		s.Fallbacks[1] = fallbacks[1]
	}
	if s.Fallbacks[1] == s.Fallbacks[0] {
		s.Fallbacks[1] = DefaultSecondFallback
		if s.Fallbacks[0] == DefaultSecondFallback {
			s.Fallbacks[1] = DefaultFirstFallback
		}
	}

	for _, q := range opts.CommonQuestions {
		if q = strings.TrimSpace(q); q != "" {
			s.CommonQuestions = append(s.CommonQuestions, q)
		}
	}
	return s
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
