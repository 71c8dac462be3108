package matcher

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TokenSet is an unordered set of significant tokens.
type TokenSet map[string]struct{}

var stopWords = toSet(
	"a", "an", "the", "and", "or", "but", "if", "so", "of", "to", "in", "on", "at", "by",
	"for", "with", "from", "as", "about", "into", "is", "are", "was", "were", "be", "been",
	"am", "do", "does", "did", "have", "has", "had", "i", "im", "me", "my", "you", "your",
	"youre", "yours", "we", "us", "our", "ours", "it", "its", "this", "that", "these",
	"those", "there", "here", "what", "whats", "which", "who", "how", "when", "where",
	"why", "can", "could", "would", "should", "will", "shall", "may", "might", "please",
	"just", "any", "some", "s", "t", "d", "ll", "re", "ve",
)

func toSet(words ...string) TokenSet {
	set := make(TokenSet, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Tokenize lowercases text, folds diacritics, drops apostrophes, splits on
// anything that is not a letter or digit and removes stop words. It never
// fails; empty or punctuation-only input yields an empty set.
func Tokenize(text string) TokenSet {
	set := TokenSet{}
	if strings.TrimSpace(text) == "" {
		return set
	}

	folded := strings.ToLower(fold(text))
	folded = strings.NewReplacer("'", "", "’", "").Replace(folded)
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, f := range fields {
		if _, stop := stopWords[f]; stop {
			continue
		}
		set[f] = struct{}{}
	}
	return set
}

// fold strips combining marks so "café" and "cafe" tokenize alike.
// Transformers are stateful, so one is built per call.
func fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

// Score is |A∩B| / sqrt(|A|·|B|): a cosine over unweighted sets. It is an
// approximation of relatedness, not semantic equivalence.
func Score(a, b TokenSet) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	shared := 0
	for tok := range small {
		if _, ok := large[tok]; ok {
			shared++
		}
	}
	if shared == 0 {
		return 0
	}
	return float64(shared) / math.Sqrt(float64(len(a))*float64(len(b)))
}
