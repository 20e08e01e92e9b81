package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/homunculus/internal/evolve"
	"github.com/fyrsmithlabs/homunculus/internal/instinct"
)

// runCLI executes the instinct command against dir and returns its output.
func runCLI(t *testing.T, dir, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("HOMUNCULUS_DIR", "")
	os.Unsetenv("HOMUNCULUS_DIR")

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--dir", dir}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTier(t *testing.T, dir string, p instinct.Provenance, name, content string) {
	t.Helper()
	tier := filepath.Join(dir, "instincts", string(p))
	require.NoError(t, os.MkdirAll(tier, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tier, name), []byte(content), 0644))
}

const personalRecords = `---
id: table-tests
trigger: when writing a new test
confidence: 0.6
domain: testing
---
## Action
Prefer table-driven tests.

---
id: subtests
trigger: when creating a new test
confidence: 0.9
domain: testing
---
Use t.Run.

---
id: legacy
trigger: refactoring legacy code
confidence: 0.4
---
Small steps.
`

func TestRoot_CreatesLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "homunculus")

	_, _, err := runCLI(t, dir, "", "status")
	require.NoError(t, err)

	for _, sub := range []string{"instincts/personal", "instincts/inherited", "evolved/skills", "evolved/commands", "evolved/agents"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err, sub)
		assert.True(t, info.IsDir())
	}
}

func TestStatus_Empty(t *testing.T) {
	out, _, err := runCLI(t, t.TempDir(), "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "No instincts found.")
}

func TestStatus(t *testing.T) {
	dir := t.TempDir()
	writeTier(t, dir, instinct.Personal, "mine.yaml", personalRecords)
	writeTier(t, dir, instinct.Inherited, "team.yaml", "---\nid: shared\ndomain: api\n---\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "observations.jsonl"), []byte("{}\n{}\n"), 0644))

	out, _, err := runCLI(t, dir, "", "status")
	require.NoError(t, err)

	assert.Contains(t, out, "INSTINCT STATUS - 4 total")
	assert.Contains(t, out, "Personal:  3")
	assert.Contains(t, out, "Inherited: 1")
	assert.Contains(t, out, "## TESTING (2)")
	assert.Contains(t, out, "action: Prefer table-driven tests.")
	assert.Contains(t, out, "Observations: 2 events logged")
}

func TestStatus_MalformedFileIsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeTier(t, dir, instinct.Personal, "good.yaml", "---\nid: good\n---\n")
	writeTier(t, dir, instinct.Personal, "bad.yaml", "---\nid: bad\nconfidence: not-a-number\n---\n")

	out, errOut, err := runCLI(t, dir, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "INSTINCT STATUS - 1 total")
	assert.Contains(t, out, "good")
	assert.Contains(t, errOut, "skipping instinct file")
	assert.Contains(t, errOut, "bad.yaml")
}

func TestStatus_SkippedFileReportedAtQuietLogLevel(t *testing.T) {
	dir := t.TempDir()
	writeTier(t, dir, instinct.Personal, "good.yaml", "---\nid: good\n---\n")
	writeTier(t, dir, instinct.Personal, "bad.yaml", "---\nid: bad\nconfidence: not-a-number\n---\n")

	out, errOut, err := runCLI(t, dir, "", "--log-level", "error", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "INSTINCT STATUS - 1 total")
	assert.Contains(t, errOut, "warning: skipping")
	assert.Contains(t, errOut, "bad.yaml")
	assert.NotContains(t, errOut, "skipping instinct file")
}

func TestEvolve_InsufficientData(t *testing.T) {
	dir := t.TempDir()
	writeTier(t, dir, instinct.Personal, "mine.yaml", "---\nid: a\n---\n---\nid: b\n---\n")

	out, errOut, err := runCLI(t, dir, "", "evolve")
	require.Error(t, err)
	assert.ErrorIs(t, err, evolve.ErrInsufficientData)
	assert.Contains(t, out, "Need at least 3 instincts")
	assert.Contains(t, errOut, "not enough instincts")
}

func TestEvolve(t *testing.T) {
	dir := t.TempDir()
	writeTier(t, dir, instinct.Personal, "mine.yaml", personalRecords)

	out, _, err := runCLI(t, dir, "", "evolve")
	require.NoError(t, err)

	assert.Contains(t, out, "EVOLVE ANALYSIS - 3 instincts")
	assert.Contains(t, out, "High confidence instincts (>=80%): 1")
	assert.Contains(t, out, "Potential skill clusters found: 1")
	assert.Contains(t, out, `1. Cluster: "a new test"`)
	assert.Contains(t, out, "Instincts: 2, Avg confidence: 75%")
	assert.Contains(t, out, "     - table-tests")

	entries, err := os.ReadDir(filepath.Join(dir, "evolved", "skills"))
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is generated without --generate")
}

func TestEvolve_Generate(t *testing.T) {
	dir := t.TempDir()
	writeTier(t, dir, instinct.Personal, "mine.yaml", personalRecords)

	out, _, err := runCLI(t, dir, "", "evolve", "--generate")
	require.NoError(t, err)

	path := filepath.Join(dir, "evolved", "skills", "a-new-test", evolve.SkillFile)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "source_instincts: table-tests, subtests")
	assert.Contains(t, string(data), "Prefer table-driven tests.")
}

func TestEvolve_WordBoundaryFromEnv(t *testing.T) {
	dir := t.TempDir()
	writeTier(t, dir, instinct.Personal, "mine.yaml",
		"---\nid: a\ntrigger: rewriting docs\n---\n---\nid: b\ntrigger: re docs\n---\n---\nid: c\n---\n")

	out, _, err := runCLI(t, dir, "", "evolve")
	require.NoError(t, err)
	assert.Contains(t, out, "Potential skill clusters found: 1")

	t.Setenv("HOMUNCULUS_EVOLVE_WORD_BOUNDARY", "true")
	out, _, err = runCLI(t, dir, "", "evolve")
	require.NoError(t, err)
	assert.Contains(t, out, "Potential skill clusters found: 0")
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	writeTier(t, dir, instinct.Personal, "mine.yaml", personalRecords)
	src := filepath.Join(t.TempDir(), "team-pack.yaml")
	require.NoError(t, os.WriteFile(src, []byte("---\nid: subtests\n---\n---\nid: fresh\nconfidence: 0.8\n---\nNew lesson.\n"), 0644))

	out, _, err := runCLI(t, dir, "", "import", src)
	require.NoError(t, err)
	assert.Contains(t, out, "  + fresh")
	assert.Contains(t, out, "  - subtests (already exists)")

	written := filepath.Join(dir, "instincts", "inherited", "team-pack.yaml")
	assert.Contains(t, out, "Imported 1 instincts to "+written)
	data, err := os.ReadFile(written)
	require.NoError(t, err)
	assert.Contains(t, string(data), "id: fresh")

	// A second import finds everything already present.
	out, _, err = runCLI(t, dir, "", "import", src)
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to import.")
}

func TestImport_DryRunAndMinConfidence(t *testing.T) {
	dir := t.TempDir()
	content := "---\nid: strong\nconfidence: 0.9\n---\n---\nid: weak\nconfidence: 0.1\n---\n"

	out, _, err := runCLI(t, dir, content, "import", "-", "--dry-run", "--min-confidence", "0.5")
	require.NoError(t, err)
	assert.Contains(t, out, "  + strong")
	assert.Contains(t, out, "  - weak (below minimum confidence)")
	assert.Contains(t, out, "Would import 1 instincts")

	entries, err := os.ReadDir(filepath.Join(dir, "instincts", "inherited"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestImport_MissingSource(t *testing.T) {
	_, _, err := runCLI(t, t.TempDir(), "", "import", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	writeTier(t, dir, instinct.Personal, "mine.yaml", personalRecords)

	out, _, err := runCLI(t, dir, "", "export", "--domain", "testing", "--min-confidence", "0.7")
	require.NoError(t, err)

	records, err := instinct.Parse(out)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "subtests", records[0].ID())
	assert.Equal(t, "Use t.Run.", records[0].Content)
}

func TestExport_ToFileRoundTrips(t *testing.T) {
	dir := t.TempDir()
	writeTier(t, dir, instinct.Personal, "mine.yaml", personalRecords)
	target := filepath.Join(t.TempDir(), "export.yaml")

	_, errOut, err := runCLI(t, dir, "", "export", "-o", target)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Exported 3 instincts to "+target)

	other := t.TempDir()
	out, _, err := runCLI(t, other, "", "import", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 instincts")

	out, _, err = runCLI(t, other, "", "evolve")
	require.NoError(t, err)
	assert.Contains(t, out, "Instincts: 2, Avg confidence: 75%")
}

func TestExport_Empty(t *testing.T) {
	out, errOut, err := runCLI(t, t.TempDir(), "", "export")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "No instincts to export.")
}

func TestObserve(t *testing.T) {
	dir := t.TempDir()
	payload := `{"tool_name":"Bash","tool_input":{"command":"ls"},"session_id":"s1"}`

	out, _, err := runCLI(t, dir, payload, "observe", "pre")
	require.NoError(t, err)
	assert.Equal(t, payload+"\n", out)

	data, err := os.ReadFile(filepath.Join(dir, "observations.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"event":"tool_start"`)
	assert.Contains(t, string(data), `"tool":"Bash"`)

	status, _, err := runCLI(t, dir, "", "status")
	require.NoError(t, err)
	assert.Contains(t, status, "No instincts found.")
}

func TestObserve_NeverFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("evolve: [unclosed"), 0644))

	out, errOut, err := runCLI(t, dir, "not json", "observe", "post")
	require.NoError(t, err)
	assert.Equal(t, "not json\n", out)
	assert.Contains(t, errOut, "using default configuration")
	assert.Contains(t, errOut, "failed to record observation")
}

func TestInvalidConfigFailsOtherCommands(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("evolve:\n  top_n: -1\n"), 0644))

	_, _, err := runCLI(t, dir, "", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "top_n")
}
