package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fyrsmithlabs/homunculus/internal/evolve"
)

// Evolve is the input of the evolve report.
type Evolve struct {
	Total          int
	HighConfidence int
	// Threshold is the confidence counted as high, shown as a percentage.
	Threshold float64

	// Clusters is the full ranked list; only the first TopN are shown.
	Clusters   []evolve.Cluster
	TopN       int
	SampleSize int

	// Generated lists skills written by this run, if any.
	Generated []*evolve.Artifact
}

// WriteEvolve renders the evolve analysis to w.
func WriteEvolve(w io.Writer, e Evolve) error {
	st := newStyles(w)
	var sb strings.Builder

	fmt.Fprintf(&sb, "\n%s\n", st.dim.Render(rule()))
	fmt.Fprintf(&sb, "  %s\n", st.title.Render(fmt.Sprintf("EVOLVE ANALYSIS - %d instincts", e.Total)))
	fmt.Fprintf(&sb, "%s\n\n", st.dim.Render(rule()))

	fmt.Fprintf(&sb, "High confidence instincts (>=%d%%): %d\n", int(math.Round(e.Threshold*100)), e.HighConfidence)
	fmt.Fprintf(&sb, "\nPotential skill clusters found: %d\n", len(e.Clusters))

	top := e.Clusters
	if e.TopN > 0 && len(top) > e.TopN {
		top = top[:e.TopN]
	}

	if len(top) > 0 {
		fmt.Fprintf(&sb, "\n%s\n\n", st.section.Render("## SKILL CANDIDATES"))
		for i, c := range top {
			fmt.Fprintf(&sb, "%d. Cluster: %q\n", i+1, c.Key)
			fmt.Fprintf(&sb, "   Instincts: %d, Avg confidence: %.0f%%\n", c.Size(), c.MeanConfidence*100)
			fmt.Fprintf(&sb, "   %s %s\n", st.dim.Render("Domains:"), strings.Join(c.Domains, ", "))
			for _, id := range c.IDs(e.SampleSize) {
				fmt.Fprintf(&sb, "     - %s\n", id)
			}
			sb.WriteString("\n")
		}
	}

	if len(e.Generated) > 0 {
		fmt.Fprintf(&sb, "\n%s\n\n", st.section.Render("## GENERATED"))
		for _, a := range e.Generated {
			fmt.Fprintf(&sb, "  %s  %s\n", a.Name, st.dim.Render(a.Path))
		}
	}

	fmt.Fprintf(&sb, "\n%s\n\n", st.dim.Render(rule()))

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteInsufficient renders the message shown when the store is too small
// to evolve.
func WriteInsufficient(w io.Writer, found, min int) error {
	st := newStyles(w)
	_, err := fmt.Fprintf(w, "%s (found %d)\n",
		st.warning.Render(fmt.Sprintf("Need at least %d instincts to analyze patterns.", min)), found)
	return err
}
