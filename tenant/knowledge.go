package tenant

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fact is one entry of the knowledge map: either a scalar Value or, when
// List is set, an ordered list of Items.
type Fact struct {
	Key   string
	Value string
	Items []string
	List  bool
}

// Knowledge is the tenant knowledge map in configuration order.
type Knowledge []Fact

// Snippet is a matchable (label, answer) pair derived from Knowledge.
type Snippet struct {
	Label  string
	Answer string
}

// UnmarshalYAML decodes a mapping node while keeping key order. Scalars
// become plain facts, sequences of scalars become list facts, anything else
// is ignored.
func (k *Knowledge) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*k = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("knowledge must be a mapping, got %s", kindName(node.Kind))
	}

	facts := make(Knowledge, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := strings.TrimSpace(node.Content[i].Value)
		value := node.Content[i+1]
		if key == "" {
			continue
		}
		switch value.Kind {
		case yaml.ScalarNode:
			if value.Tag == "!!null" {
				continue
			}
			facts = append(facts, Fact{Key: key, Value: value.Value})
		case yaml.SequenceNode:
			items := make([]string, 0, len(value.Content))
			for _, item := range value.Content {
				if item.Kind == yaml.ScalarNode && item.Tag != "!!null" {
					items = append(items, item.Value)
				}
			}
			facts = append(facts, Fact{Key: key, Items: items, List: true})
		}
	}
	*k = facts
	return nil
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	default:
		return "unknown"
	}
}

// Flatten turns the knowledge map into snippets: one per scalar fact
// labelled with its key, one per list element labelled "key N" (1-based).
// Blank answers are skipped so a snippet can never surface as an empty reply.
func Flatten(k Knowledge) []Snippet {
	snippets := make([]Snippet, 0, len(k))
	for _, fact := range k {
		if !fact.List {
			if answer := strings.TrimSpace(fact.Value); answer != "" {
				snippets = append(snippets, Snippet{Label: fact.Key, Answer: answer})
			}
			continue
		}
		for i, item := range fact.Items {
			if answer := strings.TrimSpace(item); answer != "" {
				snippets = append(snippets, Snippet{
					Label:  fmt.Sprintf("%s %d", fact.Key, i+1),
					Answer: answer,
				})
			}
		}
	}
	return snippets
}

// Lookup returns the first fact whose key matches one of keys
// (case-insensitive). List facts are joined with "; ".
func (k Knowledge) Lookup(keys ...string) (string, bool) {
	for _, want := range keys {
		for _, fact := range k {
			if !strings.EqualFold(fact.Key, want) {
				continue
			}
			var text string
			if fact.List {
				parts := make([]string, 0, len(fact.Items))
				for _, item := range fact.Items {
					if item = strings.TrimSpace(item); item != "" {
						parts = append(parts, item)
					}
				}
				text = strings.Join(parts, "; ")
			} else {
				text = strings.TrimSpace(fact.Value)
			}
			if text != "" {
				return text, true
			}
		}
	}
	return "", false
}
