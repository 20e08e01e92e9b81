package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fyrsmithlabs/homunculus/internal/instinct"
)

// Status is the input of the status report.
type Status struct {
	Instincts []*instinct.Instinct

	PersonalDir  string
	InheritedDir string

	// Observations is the number of logged events, or -1 when the
	// observations file does not exist.
	Observations     int
	ObservationsFile string
}

// WriteStatus renders the status report to w.
//
// Instincts are grouped by domain (missing domains shown as "general"),
// domains in name order, and within a domain by descending confidence
// (missing confidence shown as 0.5). Equal confidences keep store order.
func WriteStatus(w io.Writer, s Status) error {
	st := newStyles(w)
	var sb strings.Builder

	if len(s.Instincts) == 0 {
		sb.WriteString("No instincts found.\n\n")
		sb.WriteString("Instinct directories:\n")
		fmt.Fprintf(&sb, "  Personal:  %s\n", s.PersonalDir)
		fmt.Fprintf(&sb, "  Inherited: %s\n", s.InheritedDir)
		_, err := io.WriteString(w, sb.String())
		return err
	}

	fmt.Fprintf(&sb, "\n%s\n", st.dim.Render(rule()))
	fmt.Fprintf(&sb, "  %s\n", st.title.Render(fmt.Sprintf("INSTINCT STATUS - %d total", len(s.Instincts))))
	fmt.Fprintf(&sb, "%s\n\n", st.dim.Render(rule()))

	personal, inherited := 0, 0
	for _, i := range s.Instincts {
		switch i.SourceType {
		case instinct.Personal:
			personal++
		case instinct.Inherited:
			inherited++
		}
	}
	fmt.Fprintf(&sb, "  %s  %d\n", st.label.Render("Personal:"), personal)
	fmt.Fprintf(&sb, "  %s %d\n\n", st.label.Render("Inherited:"), inherited)

	byDomain := make(map[string][]*instinct.Instinct)
	for _, i := range s.Instincts {
		d := i.DomainOr(instinct.DefaultDomain)
		byDomain[d] = append(byDomain[d], i)
	}
	domains := make([]string, 0, len(byDomain))
	for d := range byDomain {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	for _, domain := range domains {
		records := byDomain[domain]
		sort.SliceStable(records, func(a, b int) bool {
			return records[a].ConfidenceOr(instinct.DefaultConfidence) > records[b].ConfidenceOr(instinct.DefaultConfidence)
		})

		fmt.Fprintf(&sb, "%s\n\n", st.section.Render(fmt.Sprintf("## %s (%d)", strings.ToUpper(domain), len(records))))
		for _, r := range records {
			writeStatusEntry(&sb, st, r)
		}
	}

	if s.Observations >= 0 {
		fmt.Fprintf(&sb, "  %s %d events logged\n", st.label.Render("Observations:"), s.Observations)
		fmt.Fprintf(&sb, "  %s %s\n", st.label.Render("File:"), s.ObservationsFile)
	}

	fmt.Fprintf(&sb, "\n%s\n\n", st.dim.Render(rule()))

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeStatusEntry(sb *strings.Builder, st styles, r *instinct.Instinct) {
	conf := r.ConfidenceOr(instinct.DefaultConfidence)
	filled, empty := barSplit(conf)
	bar := st.filled.Render(strings.Repeat("#", filled)) + st.empty.Render(strings.Repeat("-", empty))

	id := r.ID()
	if id == "" {
		id = "unnamed"
	}
	trigger := r.Trigger()
	if trigger == "" {
		trigger = "unknown trigger"
	}

	fmt.Fprintf(sb, "  %s %3d%%  %s\n", bar, Percent(conf), id)
	fmt.Fprintf(sb, "            %s %s\n", st.dim.Render("trigger:"), trigger)
	if action, ok := ExtractAction(r.Content); ok {
		fmt.Fprintf(sb, "            %s %s\n", st.dim.Render("action:"), action)
	}
	sb.WriteString("\n")
}
