package evolve

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/fyrsmithlabs/homunculus/internal/instinct"
)

// SkillFile is the file name written inside each generated skill directory.
const SkillFile = "SKILL.md"

// Artifact describes a generated skill.
type Artifact struct {
	Name        string
	Path        string
	EvolutionID string
}

// Generate writes cluster as <dir>/<slug>/SKILL.md and returns what it wrote.
//
// The file opens with a header block in record format (name, description,
// evolution_id, source_instincts, confidence, domains) followed by the body
// of every member under its id. An existing SKILL.md for the same slug is
// replaced.
func Generate(c Cluster, dir string) (*Artifact, error) {
	return generate(c, dir, skillName(c))
}

// GenerateAll writes every cluster in order. Clusters whose names collide
// within the run get a -1, -2, ... suffix so no skill overwrites another
// written by the same call.
func GenerateAll(clusters []Cluster, dir string) ([]*Artifact, error) {
	used := make(map[string]bool, len(clusters))
	artifacts := make([]*Artifact, 0, len(clusters))
	for _, c := range clusters {
		base := skillName(c)
		name := base
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s-%d", base, n)
		}
		used[name] = true

		artifact, err := generate(c, dir, name)
		if err != nil {
			return artifacts, err
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, nil
}

func skillName(c Cluster) string {
	name := slugify(c.Key)
	if name == "" && len(c.Members) > 0 {
		name = slugify(c.Members[0].ID())
	}
	if name == "" {
		name = "unnamed-skill"
	}
	return name
}

func generate(c Cluster, dir, name string) (*Artifact, error) {
	header := instinct.New()
	id := uuid.New().String()
	fields := []struct{ key, value string }{
		{"name", name},
		{"description", describe(c)},
		{"evolution_id", id},
		{"source_instincts", strings.Join(c.IDs(0), ", ")},
		{instinct.FieldConfidence, strconv.FormatFloat(c.MeanConfidence, 'f', 2, 64)},
		{"domains", strings.Join(c.Domains, ", ")},
	}
	for _, f := range fields {
		if err := header.Set(f.key, f.value); err != nil {
			return nil, fmt.Errorf("failed to build skill header: %w", err)
		}
	}
	header.Content = strings.TrimSpace(renderBody(name, c))

	skillDir := filepath.Join(dir, name)
	if err := os.MkdirAll(skillDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create skill directory: %w", err)
	}

	path := filepath.Join(skillDir, SkillFile)
	if err := os.WriteFile(path, []byte(instinct.FormatString([]*instinct.Instinct{header})), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return &Artifact{Name: name, Path: path, EvolutionID: id}, nil
}

func describe(c Cluster) string {
	if c.Key == "" {
		return fmt.Sprintf("Evolved from %d instincts without a trigger", c.Size())
	}
	return fmt.Sprintf("Evolved from %d instincts triggered by %q", c.Size(), c.Key)
}

func renderBody(name string, c Cluster) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", name)
	for _, m := range c.Members {
		fmt.Fprintf(&sb, "\n## %s\n", m.ID())
		if t := m.Trigger(); t != "" {
			fmt.Fprintf(&sb, "\nTrigger: %s\n", t)
		}
		if m.Content != "" {
			fmt.Fprintf(&sb, "\n%s\n", m.Content)
		}
	}
	return sb.String()
}

// slugify lowercases s and collapses every run of characters other than
// letters and digits into a single dash.
func slugify(s string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			dash = false
			continue
		}
		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}
