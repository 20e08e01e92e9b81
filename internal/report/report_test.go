package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/homunculus/internal/evolve"
	"github.com/fyrsmithlabs/homunculus/internal/instinct"
)

func parseOne(t *testing.T, content string, source instinct.Provenance) *instinct.Instinct {
	t.Helper()
	records, err := instinct.Parse(content)
	require.NoError(t, err)
	require.Len(t, records, 1)
	records[0].SourceType = source
	return records[0]
}

func TestConfidenceBar(t *testing.T) {
	tests := []struct {
		conf float64
		want string
	}{
		{0.0, "----------"},
		{0.5, "#####-----"},
		{0.79, "#######---"},
		{1.0, "##########"},
		{1.7, "##########"},
		{-0.2, "----------"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ConfidenceBar(tt.conf), "conf %v", tt.conf)
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 73, Percent(0.73))
	assert.Equal(t, 50, Percent(0.5))
	assert.Equal(t, 170, Percent(1.7))
}

func TestExtractAction(t *testing.T) {
	long := strings.Repeat("x", 70)
	tests := []struct {
		name    string
		content string
		want    string
		ok      bool
	}{
		{"simple", "# Title\n\n## Action\nUse table tests.\n\n## Evidence\n- seen", "Use table tests.", true},
		{"first line only", "## Action\nline one\nline two", "line one", true},
		{"stops at next section", "## Action\n  indented\n## Next", "indented", true},
		{"truncated", "## Action\n" + long, strings.Repeat("x", 60) + "...", true},
		{"exactly sixty", "## Action\n" + strings.Repeat("y", 60), strings.Repeat("y", 60), true},
		{"no section", "# Title\nbody", "", false},
		{"heading without newline", "## Action", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractAction(tt.content)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteStatus_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStatus(&buf, Status{
		PersonalDir:  "/h/instincts/personal",
		InheritedDir: "/h/instincts/inherited",
		Observations: -1,
	}))

	out := buf.String()
	assert.Contains(t, out, "No instincts found.")
	assert.Contains(t, out, "Personal:  /h/instincts/personal")
	assert.Contains(t, out, "Inherited: /h/instincts/inherited")
}

func TestWriteStatus(t *testing.T) {
	records := []*instinct.Instinct{
		parseOne(t, "---\nid: low\ndomain: testing\nconfidence: 0.3\ntrigger: when testing\n---\n", instinct.Personal),
		parseOne(t, "---\nid: high\ndomain: testing\nconfidence: 0.9\n---\n## Action\nRun go test -race.\n", instinct.Personal),
		parseOne(t, "---\nid: plain\n---\n", instinct.Inherited),
		parseOne(t, "---\nid: api-one\ndomain: api\nconfidence: 0.7\ntrigger: when adding endpoints\n---\n", instinct.Inherited),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteStatus(&buf, Status{
		Instincts:        records,
		Observations:     12,
		ObservationsFile: "/h/observations.jsonl",
	}))
	out := buf.String()

	assert.Contains(t, out, "INSTINCT STATUS - 4 total")
	assert.Contains(t, out, "Personal:  2")
	assert.Contains(t, out, "Inherited: 2")
	assert.Contains(t, out, "#########-  90%  high")
	assert.Contains(t, out, "###-------  30%  low")
	assert.Contains(t, out, "#####-----  50%  plain")
	assert.Contains(t, out, "trigger: unknown trigger")
	assert.Contains(t, out, "trigger: when adding endpoints")
	assert.Contains(t, out, "action: Run go test -race.")
	assert.Contains(t, out, "Observations: 12 events logged")
	assert.Contains(t, out, "File: /h/observations.jsonl")

	// Domains sorted, records by descending confidence.
	api := strings.Index(out, "## API (1)")
	general := strings.Index(out, "## GENERAL (1)")
	testingIdx := strings.Index(out, "## TESTING (2)")
	require.True(t, api >= 0 && general >= 0 && testingIdx >= 0, out)
	assert.Less(t, api, general)
	assert.Less(t, general, testingIdx)
	assert.Less(t, strings.Index(out, "  high"), strings.Index(out, "  low"))

	// Input order is untouched.
	assert.Equal(t, "low", records[0].ID())
}

func TestWriteStatus_NoObservationsFile(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStatus(&buf, Status{
		Instincts:    []*instinct.Instinct{parseOne(t, "---\nid: a\n---\n", instinct.Personal)},
		Observations: -1,
	}))
	assert.NotContains(t, buf.String(), "Observations:")
}

func makeCluster(t *testing.T, key string, mean float64, ids ...string) evolve.Cluster {
	t.Helper()
	c := evolve.Cluster{Key: key, MeanConfidence: mean, Domains: []string{instinct.DefaultDomain}}
	for _, id := range ids {
		c.Members = append(c.Members, parseOne(t, "---\nid: "+id+"\n---\n", instinct.Personal))
	}
	return c
}

func TestWriteEvolve(t *testing.T) {
	clusters := []evolve.Cluster{
		makeCluster(t, "a new test", 0.75, "a", "b", "c", "d"),
		makeCluster(t, "errors", 0.5, "e", "f"),
		makeCluster(t, "hidden", 0.5, "g", "h"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEvolve(&buf, Evolve{
		Total:          9,
		HighConfidence: 2,
		Threshold:      0.8,
		Clusters:       clusters,
		TopN:           2,
		SampleSize:     3,
	}))
	out := buf.String()

	assert.Contains(t, out, "EVOLVE ANALYSIS - 9 instincts")
	assert.Contains(t, out, "High confidence instincts (>=80%): 2")
	assert.Contains(t, out, "Potential skill clusters found: 3")
	assert.Contains(t, out, "1. Cluster: \"a new test\"")
	assert.Contains(t, out, "Instincts: 4, Avg confidence: 75%")
	assert.Contains(t, out, "     - c\n")
	assert.NotContains(t, out, "     - d\n")
	assert.Contains(t, out, "2. Cluster: \"errors\"")
	assert.NotContains(t, out, "hidden")
	assert.NotContains(t, out, "GENERATED")
}

func TestWriteEvolve_NoClusters(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEvolve(&buf, Evolve{Total: 3, Threshold: 0.8, TopN: 5, SampleSize: 3}))
	out := buf.String()
	assert.Contains(t, out, "Potential skill clusters found: 0")
	assert.NotContains(t, out, "SKILL CANDIDATES")
}

func TestWriteEvolve_Generated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEvolve(&buf, Evolve{
		Total:     4,
		Threshold: 0.8,
		Clusters:  []evolve.Cluster{makeCluster(t, "x", 0.5, "a", "b")},
		TopN:      5,
		Generated: []*evolve.Artifact{{Name: "x", Path: "/h/evolved/skills/x/SKILL.md"}},
	}))
	assert.Contains(t, buf.String(), "/h/evolved/skills/x/SKILL.md")
}

func TestWriteInsufficient(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInsufficient(&buf, 2, 3))
	assert.Equal(t, "Need at least 3 instincts to analyze patterns. (found 2)\n", buf.String())
}
