package instinct

import (
	"bufio"
	"io"
	"strings"
)

// Format writes records in the flat-file format understood by Parse.
// Field order is preserved. Values that would not survive a re-parse
// verbatim are wrapped in double quotes.
//
// Body lines consisting solely of "---" cannot be represented and will
// split the record when read back.
func Format(w io.Writer, records []*Instinct) error {
	bw := bufio.NewWriter(w)
	for i, r := range records {
		if i > 0 {
			bw.WriteString("\n")
		}
		bw.WriteString(Delimiter + "\n")
		for pair := r.Fields.Oldest(); pair != nil; pair = pair.Next() {
			bw.WriteString(pair.Key + ": " + quoteValue(pair.Value) + "\n")
		}
		bw.WriteString(Delimiter + "\n")
		if r.Content != "" {
			bw.WriteString("\n" + r.Content + "\n")
		}
	}
	return bw.Flush()
}

// FormatString is Format into a string.
func FormatString(records []*Instinct) string {
	var sb strings.Builder
	_ = Format(&sb, records)
	return sb.String()
}

func quoteValue(v string) string {
	if v != strings.TrimSpace(v) || unquote(v) != v || strings.HasPrefix(v, `"`) || strings.HasPrefix(v, `'`) {
		return `"` + v + `"`
	}
	return v
}
