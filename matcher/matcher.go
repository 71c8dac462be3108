package matcher

import (
	"strings"

	"concierge/tenant"
)

// Kind tells where a match came from.
type Kind string

const (
	KindFAQ       Kind = "faq"
	KindKnowledge Kind = "knowledge"
)

// Match is the winning candidate of a ranking pass.
type Match struct {
	Kind   Kind
	Index  int // position in the FAQ list or the flattened snippet list
	Label  string
	Answer string
	Score  float64
}

type candidate struct {
	kind   Kind
	index  int
	label  string
	answer string
	tokens TokenSet
}

// Best ranks FAQs followed by flattened knowledge snippets against message
// and returns the top candidate if its score reaches threshold. Ties go to
// the earliest candidate. An empty message token set never matches.
func Best(cfg tenant.Config, message string, threshold float64) (Match, bool) {
	query := Tokenize(message)
	if len(query) == 0 {
		return Match{}, false
	}

	var best Match
	found := false
	for _, c := range candidates(cfg) {
		score := Score(query, c.tokens)
		if score == 0 {
			continue
		}
		if !found || score > best.Score {
			best = Match{Kind: c.kind, Index: c.index, Label: c.label, Answer: c.answer, Score: score}
			found = true
		}
	}
	if !found || best.Score < threshold {
		return Match{}, false
	}
	return best, true
}

func candidates(cfg tenant.Config) []candidate {
	snippets := tenant.Flatten(cfg.Knowledge)
	out := make([]candidate, 0, len(cfg.FAQs)+len(snippets))
	for i, faq := range cfg.FAQs {
		if strings.TrimSpace(faq.Answer) == "" {
			continue
		}
		text := strings.Join([]string{faq.Question, strings.Join(faq.Keywords, " "), faq.Answer}, " ")
		out = append(out, candidate{
			kind:   KindFAQ,
			index:  i,
			label:  faq.Question,
			answer: faq.Answer,
			tokens: Tokenize(text),
		})
	}
	for i, s := range snippets {
		out = append(out, candidate{
			kind:   KindKnowledge,
			index:  i,
			label:  s.Label,
			answer: s.Answer,
			tokens: Tokenize(s.Label + " " + s.Answer),
		})
	}
	return out
}
