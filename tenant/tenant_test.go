package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"acme", true},
		{"acme-co_2", true},
		{"0day", true},
		{"", false},
		{"Acme", false},
		{"../etc", false},
		{"a/b", false},
		{"-acme", false},
	}
	for _, tt := range tests {
		if got := ValidID(tt.id); got != tt.want {
			t.Errorf("ValidID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	cfg := Config{
		FAQs: []FAQ{
			{Question: " Hours? ", Answer: " 9 to 5 ", Keywords: []string{" hours ", ""}},
			{Question: "No answer", Answer: "   "},
		},
		Examples: []Example{
			{User: "hi", Assistant: "hello"},
			{User: "incomplete"},
		},
	}

	got := Normalize(cfg, zap.NewNop())

	assert.Equal(t, DefaultBrand, got.Brand)
	assert.Equal(t, []FAQ{{Question: "Hours?", Answer: "9 to 5", Keywords: []string{"hours"}}}, got.FAQs)
	assert.Equal(t, []Example{{User: "hi", Assistant: "hello"}}, got.Examples)
	assert.Len(t, cfg.FAQs, 2, "input must not be mutated")
}

func TestResolveDefaults(t *testing.T) {
	s := Resolve(Config{Brand: "Acme"}, "default-model")

	assert.Equal(t, "default-model", s.Model)
	assert.True(t, s.GreeterEnabled)
	assert.Equal(t, DefaultMenuSize, s.MenuSize)
	assert.Equal(t, DefaultSemanticThreshold, s.SemanticThreshold)
	assert.Equal(t, DefaultHistoryTurns, s.HistoryTurns)
	assert.Equal(t, 2*DefaultHistoryTurns, s.HistoryCap())
	assert.Equal(t, DefaultFAQDigestCap, s.FAQDigestCap)
	assert.Equal(t, "Hi! Welcome to Acme. How can I help you today?", s.Templates.Greeter)
	assert.Equal(t, DefaultClosingMessage, s.ClosingMessage)
	assert.Equal(t, [2]string{DefaultFirstFallback, DefaultSecondFallback}, s.Fallbacks)
}

func TestResolveOverrides(t *testing.T) {
	disabled := false
	threshold := 0.4
	closing := ""
	cfg := Config{
		Brand: "Acme",
		Model: "tenant-model",
		Options: Options{
			GreeterEnabled:    &disabled,
			SemanticThreshold: &threshold,
			MenuSize:          2,
			HistoryTurns:      3,
			ClosingMessage:    &closing,
			CommonQuestions:   []string{"Pricing?", " ", "Hours?"},
			Templates:         Templates{Greeter: "Welcome to {brand}!"},
		},
	}

	s := Resolve(cfg, "default-model")

	assert.Equal(t, "tenant-model", s.Model)
	assert.False(t, s.GreeterEnabled)
	assert.Equal(t, 0.4, s.SemanticThreshold)
	assert.Equal(t, 2, s.MenuSize)
	assert.Equal(t, 6, s.HistoryCap())
	assert.Equal(t, "", s.ClosingMessage)
	assert.Equal(t, []string{"Pricing?", "Hours?"}, s.CommonQuestions)
	assert.Equal(t, "Welcome to Acme!", s.Templates.Greeter)
}

func TestResolveFallbacksAreDistinct(t *testing.T) {
	tests := []struct {
		name      string
		fallbacks []string
		want      [2]string
	}{
		{name: "none", want: [2]string{DefaultFirstFallback, DefaultSecondFallback}},
		{name: "one", fallbacks: []string{"Sorry!"}, want: [2]string{"Sorry!", DefaultSecondFallback}},
		{name: "two", fallbacks: []string{"Sorry!", "Still sorry!"}, want: [2]string{"Sorry!", "Still sorry!"}},
		{name: "duplicate", fallbacks: []string{"Sorry!", "Sorry!"}, want: [2]string{"Sorry!", DefaultSecondFallback}},
		{name: "first_equals_default_second", fallbacks: []string{DefaultSecondFallback}, want: [2]string{DefaultSecondFallback, DefaultFirstFallback}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Resolve(Config{Options: Options{Fallbacks: tt.fallbacks}}, "")
			assert.Equal(t, tt.want, s.Fallbacks)
			assert.NotEqual(t, s.Fallbacks[0], s.Fallbacks[1])
		})
	}
}

func TestCompilePatterns(t *testing.T) {
	tests := []struct {
		name     string
		greeting []string
		message  string
		want     bool
	}{
		{name: "default_greeting", message: "Hello there!", want: true},
		{name: "default_not_greeting", message: "hello, what are your hours?", want: false},
		{name: "custom_is_case_insensitive", greeting: []string{`^yo$`}, message: "YO", want: true},
		{name: "custom_replaces_default", greeting: []string{`^yo$`}, message: "hello", want: false},
		{name: "invalid_falls_back_to_default", greeting: []string{`(`}, message: "hello", want: true},
		{name: "invalid_keeps_valid_siblings", greeting: []string{`(`, `^yo$`}, message: "yo", want: true},
		{name: "invalid_keeps_default_with_siblings", greeting: []string{`^yo$`, `[`}, message: "hi", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := CompilePatterns(Options{GreetingPatterns: tt.greeting}, zap.NewNop())
			assert.Equal(t, tt.want, p.IsGreeting(tt.message))
		})
	}
}

func TestDefaultLowInfo(t *testing.T) {
	p := CompilePatterns(Options{}, zap.NewNop())
	for _, msg := range []string{"", "  ", "ok", "Okay!", "?", "hmmm"} {
		assert.True(t, p.IsLowInfo(msg), "expected %q to be low-info", msg)
	}
	for _, msg := range []string{"ok what are your hours", "pricing"} {
		assert.False(t, p.IsLowInfo(msg), "expected %q not to be low-info", msg)
	}
}
