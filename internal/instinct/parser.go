package instinct

import (
	"fmt"
	"strconv"
	"strings"
)

// Delimiter is the line that opens and closes a header section.
const Delimiter = "---"

// quotePairs lists the quote characters stripped from header values.
var quotePairs = [][2]string{
	{`"`, `"`},
	{`'`, `'`},
	{"“", "”"},
	{"‘", "’"},
}

// Parse splits the full text of a record file into records.
//
// Each "---" line toggles between header and body. Header lines are split
// on their first colon into a field; body lines accumulate into the content
// of the record whose header most recently closed. A record is finalized
// when the next header opens or at end of input.
//
// A header that is never closed swallows every remaining line as header
// lines and yields a record with an empty body.
//
// Records without an id are returned; filter them with Identified.
func Parse(content string) ([]*Instinct, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var (
		records  []*Instinct
		current  *Instinct
		body     []string
		inHeader bool
	)

	finalize := func() {
		if current == nil {
			return
		}
		current.Content = strings.TrimSpace(strings.Join(body, "\n"))
		records = append(records, current)
	}

	for n, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == Delimiter {
			if inHeader {
				inHeader = false
				continue
			}
			finalize()
			current = New()
			body = body[:0]
			inHeader = true
			continue
		}

		if inHeader {
			key, value, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			if err := current.Set(key, unquote(strings.TrimSpace(value))); err != nil {
				return nil, fmt.Errorf("line %d: %w", n+1, err)
			}
			continue
		}

		// Text before the first header has no record to attach to.
		if current != nil {
			body = append(body, line)
		}
	}
	finalize()

	return records, nil
}

// unquote strips one layer of matching quote characters.
func unquote(v string) string {
	for _, q := range quotePairs {
		if len(v) >= len(q[0])+len(q[1]) && strings.HasPrefix(v, q[0]) && strings.HasSuffix(v, q[1]) {
			return v[len(q[0]) : len(v)-len(q[1])]
		}
	}
	return v
}

func parseConfidence(v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", ErrMalformedRecord, FieldConfidence, v)
	}
	return f, nil
}
