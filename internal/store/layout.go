package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fyrsmithlabs/homunculus/internal/instinct"
)

// Evolved artifact kinds, one directory each under evolved/.
const (
	KindSkills   = "skills"
	KindCommands = "commands"
	KindAgents   = "agents"
)

// Layout resolves the fixed paths under a homunculus root.
type Layout struct {
	Root string
}

// NewLayout returns the layout rooted at root.
func NewLayout(root string) Layout {
	return Layout{Root: root}
}

// InstinctsDir returns <root>/instincts.
func (l Layout) InstinctsDir() string { return filepath.Join(l.Root, "instincts") }

// TierDir returns the directory holding records of the given provenance.
func (l Layout) TierDir(p instinct.Provenance) string {
	return filepath.Join(l.InstinctsDir(), string(p))
}

// EvolvedDir returns the destination directory for an artifact kind.
func (l Layout) EvolvedDir(kind string) string {
	return filepath.Join(l.Root, "evolved", kind)
}

// ObservationsFile returns the append-only event log.
func (l Layout) ObservationsFile() string { return filepath.Join(l.Root, "observations.jsonl") }

// ArchiveDir returns the directory rotated observation logs move to.
func (l Layout) ArchiveDir() string { return filepath.Join(l.Root, "observations.archive") }

// DisabledFlag returns the file whose presence disables observation.
func (l Layout) DisabledFlag() string { return filepath.Join(l.Root, "disabled") }

// Tiers returns the provenance tiers in load order: personal, then inherited.
func (l Layout) Tiers() []Tier {
	return []Tier{
		{Provenance: instinct.Personal, Dir: l.TierDir(instinct.Personal)},
		{Provenance: instinct.Inherited, Dir: l.TierDir(instinct.Inherited)},
	}
}

// Ensure creates every directory of the layout that does not exist yet.
func (l Layout) Ensure() error {
	dirs := []string{
		l.TierDir(instinct.Personal),
		l.TierDir(instinct.Inherited),
		l.EvolvedDir(KindSkills),
		l.EvolvedDir(KindCommands),
		l.EvolvedDir(KindAgents),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
