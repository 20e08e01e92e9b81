package evolve

import (
	"strings"
	"unicode"
)

// Stopwords are removed from a lowercased trigger, in this order.
var Stopwords = []string{"when", "creating", "writing", "adding", "implementing", "testing"}

// Normalizer maps a trigger phrase to a clustering key.
type Normalizer func(trigger string) string

// NormalizeTrigger lowercases trigger and then, for each stopword in order,
// removes every occurrence and trims surrounding whitespace.
//
// Removal is by substring, not by word: "rewriting" loses "writing" and
// "testing" inside "pentesting" is stripped too. Only the ends are trimmed;
// whitespace left inside the key by a removal stays there.
func NormalizeTrigger(trigger string) string {
	key := strings.ToLower(trigger)
	for _, word := range Stopwords {
		key = strings.TrimSpace(strings.ReplaceAll(key, word, ""))
	}
	return key
}

// WordBoundaryNormalizer lowercases trigger, drops stopwords that appear as
// whole words and joins the remaining words with single spaces.
func WordBoundaryNormalizer(trigger string) string {
	stop := make(map[string]bool, len(Stopwords))
	for _, w := range Stopwords {
		stop[w] = true
	}

	words := strings.FieldsFunc(strings.ToLower(trigger), unicode.IsSpace)
	kept := words[:0]
	for _, w := range words {
		if !stop[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}
