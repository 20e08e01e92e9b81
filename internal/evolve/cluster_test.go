package evolve

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/homunculus/internal/instinct"
)

// rec builds an instinct. Empty trigger, domain or confidence are omitted.
func rec(t *testing.T, id, trigger, domain, confidence string) *instinct.Instinct {
	t.Helper()
	r := instinct.New()
	require.NoError(t, r.Set(instinct.FieldID, id))
	if trigger != "" {
		require.NoError(t, r.Set(instinct.FieldTrigger, trigger))
	}
	if domain != "" {
		require.NoError(t, r.Set(instinct.FieldDomain, domain))
	}
	if confidence != "" {
		require.NoError(t, r.Set(instinct.FieldConfidence, confidence))
	}
	return r
}

func keys(clusters []Cluster) []string {
	out := make([]string, len(clusters))
	for i, c := range clusters {
		out[i] = c.Key
	}
	return out
}

func TestClusterInstincts_SharedKey(t *testing.T) {
	records := []*instinct.Instinct{
		rec(t, "a", "when creating a new test", "", ""),
		rec(t, "b", "when writing a new test", "", ""),
		rec(t, "c", "refactoring legacy code", "", ""),
	}

	clusters := ClusterInstincts(records)
	require.Len(t, clusters, 1)
	assert.Equal(t, "a new test", clusters[0].Key)
	assert.Equal(t, 2, clusters[0].Size())
	assert.Equal(t, []string{"a", "b"}, clusters[0].IDs(0))
}

func TestClusterInstincts_MeanConfidence(t *testing.T) {
	records := []*instinct.Instinct{
		rec(t, "a", "when adding retries", "", "0.6"),
		rec(t, "b", "adding retries", "", "0.9"),
	}

	clusters := ClusterInstincts(records)
	require.Len(t, clusters, 1)
	assert.InDelta(t, 0.75, clusters[0].MeanConfidence, 1e-9)
}

func TestClusterInstincts_MissingConfidenceCountsAsDefault(t *testing.T) {
	records := []*instinct.Instinct{
		rec(t, "a", "x", "", "1.0"),
		rec(t, "b", "x", "", ""),
	}

	clusters := ClusterInstincts(records)
	require.Len(t, clusters, 1)
	assert.InDelta(t, 0.75, clusters[0].MeanConfidence, 1e-9)

	_, ok := records[1].Confidence()
	assert.False(t, ok, "records must not be mutated")
}

func TestClusterInstincts_Ranking(t *testing.T) {
	records := []*instinct.Instinct{
		// Pair with high confidence.
		rec(t, "p1", "pair", "", "0.95"),
		rec(t, "p2", "pair", "", "0.95"),
		// Triple with low confidence.
		rec(t, "t1", "triple", "", "0.1"),
		rec(t, "t2", "triple", "", "0.1"),
		rec(t, "t3", "triple", "", "0.1"),
		// Second pair, lower confidence than the first.
		rec(t, "q1", "other pair", "", "0.4"),
		rec(t, "q2", "other pair", "", "0.4"),
	}

	clusters := ClusterInstincts(records)
	assert.Equal(t, []string{"triple", "pair", "other pair"}, keys(clusters))
}

func TestClusterInstincts_TiesKeepDiscoveryOrder(t *testing.T) {
	records := []*instinct.Instinct{
		rec(t, "b1", "beta", "", "0.5"),
		rec(t, "a1", "alpha", "", "0.5"),
		rec(t, "b2", "beta", "", "0.5"),
		rec(t, "a2", "alpha", "", "0.5"),
	}

	clusters := ClusterInstincts(records)
	assert.Equal(t, []string{"beta", "alpha"}, keys(clusters))
}

func TestClusterInstincts_Domains(t *testing.T) {
	records := []*instinct.Instinct{
		rec(t, "a", "x", "testing", ""),
		rec(t, "b", "x", "", ""),
		rec(t, "c", "x", "api", ""),
		rec(t, "d", "x", "testing", ""),
	}

	clusters := ClusterInstincts(records)
	require.Len(t, clusters, 1)
	assert.Equal(t, []string{"api", instinct.DefaultDomain, "testing"}, clusters[0].Domains)
}

func TestClusterInstincts_EmptyTriggerIsAKey(t *testing.T) {
	records := []*instinct.Instinct{
		rec(t, "a", "", "", ""),
		rec(t, "b", "when", "", ""),
		rec(t, "c", "unrelated", "", ""),
	}

	clusters := ClusterInstincts(records)
	require.Len(t, clusters, 1)
	assert.Equal(t, "", clusters[0].Key)
	assert.Equal(t, []string{"a", "b"}, clusters[0].IDs(0))
}

func TestClusterInstincts_Empty(t *testing.T) {
	clusters := ClusterInstincts(nil)
	assert.NotNil(t, clusters)
	assert.Empty(t, clusters)
}

func TestClusterInstincts_ReturnsAllClusters(t *testing.T) {
	var records []*instinct.Instinct
	for i := 0; i < 8; i++ {
		trigger := "topic " + strconv.Itoa(i)
		records = append(records,
			rec(t, trigger+"a", trigger, "", ""),
			rec(t, trigger+"b", trigger, "", ""))
	}

	assert.Len(t, ClusterInstincts(records), 8)
}

func TestClusterInstincts_WithNormalizer(t *testing.T) {
	records := []*instinct.Instinct{
		rec(t, "a", "rewriting docs", "", ""),
		rec(t, "b", "re docs", "", ""),
	}

	assert.Len(t, ClusterInstincts(records), 1)
	assert.Empty(t, ClusterInstincts(records, WithNormalizer(WordBoundaryNormalizer)))
}

func TestCluster_IDs(t *testing.T) {
	c := Cluster{Members: []*instinct.Instinct{
		rec(t, "a", "", "", ""),
		rec(t, "b", "", "", ""),
		rec(t, "c", "", "", ""),
		rec(t, "d", "", "", ""),
	}}
	assert.Equal(t, []string{"a", "b", "c"}, c.IDs(3))
	assert.Equal(t, []string{"a", "b", "c", "d"}, c.IDs(10))
	assert.Equal(t, []string{"a", "b", "c", "d"}, c.IDs(0))
}

func TestCheckMinimum(t *testing.T) {
	assert.NoError(t, CheckMinimum(3, DefaultMinInstincts))
	assert.NoError(t, CheckMinimum(10, DefaultMinInstincts))

	err := CheckMinimum(2, DefaultMinInstincts)
	assert.ErrorIs(t, err, ErrInsufficientData)
	assert.Contains(t, err.Error(), "need at least 3, found 2")
}

func TestHighConfidenceCount(t *testing.T) {
	records := []*instinct.Instinct{
		rec(t, "a", "", "", "0.8"),
		rec(t, "b", "", "", "0.79"),
		rec(t, "c", "", "", ""),
		rec(t, "d", "", "", "1.2"),
	}
	assert.Equal(t, 2, HighConfidenceCount(records, 0.8))
	assert.Equal(t, 0, HighConfidenceCount(nil, 0.8))
}
