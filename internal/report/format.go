package report

import (
	"regexp"
	"strings"
)

const (
	barCells        = 10
	maxActionLength = 60
	ruleWidth       = 60
)

var actionPattern = regexp.MustCompile(`(?s)## Action\s*\n\s*(.+?)(?:\n\n|\n##|$)`)

// ConfidenceBar renders conf as ten cells of '#' and '-'. The filled count
// is conf*10 truncated and clamped to [0, 10].
func ConfidenceBar(conf float64) string {
	filled, empty := barSplit(conf)
	return strings.Repeat("#", filled) + strings.Repeat("-", empty)
}

func barSplit(conf float64) (int, int) {
	filled := int(conf * barCells)
	if filled < 0 {
		filled = 0
	}
	if filled > barCells {
		filled = barCells
	}
	return filled, barCells - filled
}

// Percent returns conf*100 truncated toward zero.
func Percent(conf float64) int {
	return int(conf * 100)
}

// ExtractAction returns the first line of the "## Action" section of a
// record body, cut to 60 characters with a trailing "..." when longer.
func ExtractAction(content string) (string, bool) {
	m := actionPattern.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	action := strings.TrimSpace(m[1])
	if i := strings.IndexByte(action, '\n'); i >= 0 {
		action = action[:i]
	}
	if runes := []rune(action); len(runes) > maxActionLength {
		action = string(runes[:maxActionLength]) + "..."
	}
	return action, true
}

func rule() string {
	return strings.Repeat("=", ruleWidth)
}
