package tenant

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Built-in patterns used when a tenant supplies none or supplies one that
// does not compile.
var (
	defaultGreetingPattern = regexp.MustCompile(`(?i)^\s*(hi|hello|hey|hiya|howdy|greetings|good\s+(morning|afternoon|evening))(\s+there)?[\s!.,?]*$`)
	defaultLowInfoPattern  = regexp.MustCompile(`(?i)^[\s!.,?]*(ok|okay|k|yes|yeah|yep|sure|cool|hmm+|huh|what|\?+)?[\s!.,?]*$`)
)

// Patterns is the compiled intent pattern set for one tenant. It is built
// at load time so matching never has to deal with bad expressions.
type Patterns struct {
	Greeting []*regexp.Regexp
	LowInfo  []*regexp.Regexp
}

// IsGreeting reports whether message matches any greeting pattern.
func (p Patterns) IsGreeting(message string) bool {
	return matchAny(p.Greeting, message)
}

// IsLowInfo reports whether message matches any low-info pattern.
func (p Patterns) IsLowInfo(message string) bool {
	return matchAny(p.LowInfo, message)
}

func matchAny(patterns []*regexp.Regexp, message string) bool {
	for _, re := range patterns {
		if re.MatchString(message) {
			return true
		}
	}
	return false
}

// CompilePatterns compiles the tenant-supplied pattern lists
// case-insensitively. A pattern that fails to compile is logged and replaced
// by the built-in default for its category.
func CompilePatterns(opts Options, logger *zap.Logger) Patterns {
	return Patterns{
		Greeting: compileCategory("greeting", opts.GreetingPatterns, defaultGreetingPattern, logger),
		LowInfo:  compileCategory("low_info", opts.LowInfoPatterns, defaultLowInfoPattern, logger),
	}
}

func compileCategory(category string, sources []string, fallback *regexp.Regexp, logger *zap.Logger) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(sources)+1)
	failed := false
	for _, src := range sources {
		if strings.TrimSpace(src) == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + src)
		if err != nil {
			logger.Warn("Invalid tenant pattern, substituting built-in default",
				zap.String("category", category),
				zap.String("pattern", src),
				zap.Error(err))
			failed = true
			continue
		}
		compiled = append(compiled, re)
	}
	if failed || len(compiled) == 0 {
		compiled = append(compiled, fallback)
	}
	return compiled
}
