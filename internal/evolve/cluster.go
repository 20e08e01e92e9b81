package evolve

import (
	"errors"
	"fmt"
	"sort"

	"github.com/fyrsmithlabs/homunculus/internal/instinct"
)

// ErrInsufficientData is returned when too few instincts exist to evolve.
var ErrInsufficientData = errors.New("not enough instincts to analyze patterns")

// DefaultMinInstincts is the smallest store an evolve run accepts.
const DefaultMinInstincts = 3

// minClusterSize is the smallest group reported as a cluster.
const minClusterSize = 2

// Cluster is a group of instincts sharing a normalized trigger.
type Cluster struct {
	// Key is the normalized trigger. It may be empty.
	Key string

	// Members in store order.
	Members []*instinct.Instinct

	// MeanConfidence averages member confidences, missing ones counting
	// as instinct.DefaultConfidence.
	MeanConfidence float64

	// Domains are the distinct member domains, sorted.
	Domains []string
}

// Size returns the number of members.
func (c Cluster) Size() int {
	return len(c.Members)
}

// IDs returns up to n member ids in store order. n <= 0 means all.
func (c Cluster) IDs(n int) []string {
	if n <= 0 || n > len(c.Members) {
		n = len(c.Members)
	}
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = c.Members[i].ID()
	}
	return ids
}

// Option configures ClusterInstincts.
type Option func(*options)

type options struct {
	normalize Normalizer
}

// WithNormalizer replaces NormalizeTrigger as the key function.
func WithNormalizer(n Normalizer) Option {
	return func(o *options) {
		if n != nil {
			o.normalize = n
		}
	}
}

// ClusterInstincts groups records by normalized trigger and returns every
// group of two or more, ranked by size and then mean confidence, both
// descending. Ties keep the order in which their keys were first seen.
func ClusterInstincts(records []*instinct.Instinct, opts ...Option) []Cluster {
	o := &options{normalize: NormalizeTrigger}
	for _, opt := range opts {
		opt(o)
	}

	var order []string
	groups := make(map[string][]*instinct.Instinct)
	for _, r := range records {
		key := o.normalize(r.Trigger())
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}

	clusters := make([]Cluster, 0, len(order))
	for _, key := range order {
		members := groups[key]
		if len(members) < minClusterSize {
			continue
		}
		clusters = append(clusters, Cluster{
			Key:            key,
			Members:        members,
			MeanConfidence: calculateAverageConfidence(members),
			Domains:        distinctDomains(members),
		})
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		if clusters[i].Size() != clusters[j].Size() {
			return clusters[i].Size() > clusters[j].Size()
		}
		return clusters[i].MeanConfidence > clusters[j].MeanConfidence
	})

	return clusters
}

// calculateAverageConfidence computes mean confidence of members.
func calculateAverageConfidence(members []*instinct.Instinct) float64 {
	if len(members) == 0 {
		return 0
	}
	var sum float64
	for _, m := range members {
		sum += m.ConfidenceOr(instinct.DefaultConfidence)
	}
	return sum / float64(len(members))
}

func distinctDomains(members []*instinct.Instinct) []string {
	seen := make(map[string]bool)
	var domains []string
	for _, m := range members {
		d := m.DomainOr(instinct.DefaultDomain)
		if !seen[d] {
			seen[d] = true
			domains = append(domains, d)
		}
	}
	sort.Strings(domains)
	return domains
}

// CheckMinimum returns ErrInsufficientData when n is below min.
func CheckMinimum(n, min int) error {
	if n < min {
		return fmt.Errorf("%w: need at least %d, found %d", ErrInsufficientData, min, n)
	}
	return nil
}

// HighConfidenceCount counts records at or above threshold. A missing
// confidence counts as zero here, not as the presentation default.
func HighConfidenceCount(records []*instinct.Instinct, threshold float64) int {
	n := 0
	for _, r := range records {
		if r.ConfidenceOr(0) >= threshold {
			n++
		}
	}
	return n
}
