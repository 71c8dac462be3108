package tenant

// Config is one tenant's configuration as it appears on disk. It is decoded
// once per load and never mutated afterwards; reloads produce a new value.
type Config struct {
	Brand     string    `yaml:"brand"`
	FAQs      []FAQ     `yaml:"faqs"`
	Knowledge Knowledge `yaml:"knowledge"`
	Style     string    `yaml:"style"`
	Model     string    `yaml:"model"`
	Examples  []Example `yaml:"examples"`
	Options   Options   `yaml:"options"`
	SheetID   string    `yaml:"sheet_id"`
}

// FAQ is a single question/answer pair. Answer is required; entries without
// one are dropped by Normalize.
type FAQ struct {
	Question string   `yaml:"q"`
	Answer   string   `yaml:"a"`
	Keywords []string `yaml:"keywords"`
}

// Example is a few-shot exchange handed to the completion provider.
type Example struct {
	User      string `yaml:"user"`
	Assistant string `yaml:"assistant"`
}

// Options are the behavioral knobs. Pointer fields distinguish "unset" from
// an explicit zero value.
type Options struct {
	GreeterEnabled    *bool     `yaml:"greeter_enabled"`
	GreetingPatterns  []string  `yaml:"greeting_patterns"`
	LowInfoPatterns   []string  `yaml:"low_info_patterns"`
	MenuSize          int       `yaml:"menu_size"`
	SemanticThreshold *float64  `yaml:"semantic_threshold"`
	HistoryTurns      int       `yaml:"history_turns"`
	FAQDigestCap      int       `yaml:"faq_digest_cap"`
	Templates         Templates `yaml:"templates"`
	Fallbacks         []string  `yaml:"fallbacks"`
	ClosingMessage    *string   `yaml:"closing_message"`
	CommonQuestions   []string  `yaml:"common_questions"`
}

// Templates holds the canned message texts. Recall substitutes {last};
// Greeter substitutes {brand}.
type Templates struct {
	Recall      string `yaml:"recall"`
	RecallEmpty string `yaml:"recall_empty"`
	Greeter     string `yaml:"greeter"`
	Clarify     string `yaml:"clarify"`
	MenuHeader  string `yaml:"menu_header"`
	ErrorNotice string `yaml:"error_notice"`
}

// Settings are Options with every default resolved.
type Settings struct {
	Model             string
	GreeterEnabled    bool
	MenuSize          int
	SemanticThreshold float64
	HistoryTurns      int
	FAQDigestCap      int
	Templates         Templates
	// Fallbacks[0] is used on the first failure in a session, Fallbacks[1]
	// afterwards. The two are always distinct.
	Fallbacks       [2]string
	ClosingMessage  string
	CommonQuestions []string
}

// HistoryCap is the number of stored history entries (user + assistant).
func (s Settings) HistoryCap() int {
	return 2 * s.HistoryTurns
}
