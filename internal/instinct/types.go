package instinct

import (
	"errors"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ErrMalformedRecord is returned when a header field fails type coercion.
var ErrMalformedRecord = errors.New("malformed instinct record")

// Well-known header field names.
const (
	FieldID         = "id"
	FieldDomain     = "domain"
	FieldTrigger    = "trigger"
	FieldConfidence = "confidence"
)

// Presentation defaults. They are applied by consumers and never persisted.
const (
	DefaultDomain     = "general"
	DefaultConfidence = 0.5
)

// Provenance identifies which tier of the store a record was loaded from.
type Provenance string

const (
	// Personal instincts were learned locally.
	Personal Provenance = "personal"

	// Inherited instincts were imported from someone else.
	Inherited Provenance = "inherited"
)

// Instinct is a single parsed record.
type Instinct struct {
	// Fields holds every header field in declaration order, values as
	// written (quotes stripped). The confidence field keeps its raw text.
	Fields *orderedmap.OrderedMap[string, string]

	// Content is the body following the header, trimmed.
	Content string

	// SourceFile is the absolute path the record was loaded from.
	// Set by the store loader, empty for freshly parsed records.
	SourceFile string

	// SourceType is the provenance tier of SourceFile.
	SourceType Provenance

	confidence    float64
	hasConfidence bool
}

// New returns an empty instinct ready for fields to be set.
func New() *Instinct {
	return &Instinct{Fields: orderedmap.New[string, string]()}
}

// Get returns a header field.
func (i *Instinct) Get(key string) (string, bool) {
	return i.Fields.Get(key)
}

// ID returns the id field, or "" when absent.
func (i *Instinct) ID() string {
	v, _ := i.Fields.Get(FieldID)
	return v
}

// Trigger returns the trigger field, or "" when absent.
func (i *Instinct) Trigger() string {
	v, _ := i.Fields.Get(FieldTrigger)
	return v
}

// Domain returns the declared domain and whether it was present.
func (i *Instinct) Domain() (string, bool) {
	return i.Fields.Get(FieldDomain)
}

// DomainOr returns the declared domain, or def when absent.
func (i *Instinct) DomainOr(def string) string {
	if v, ok := i.Fields.Get(FieldDomain); ok {
		return v
	}
	return def
}

// Confidence returns the parsed confidence and whether it was declared.
// Out-of-range values are returned unchanged.
func (i *Instinct) Confidence() (float64, bool) {
	return i.confidence, i.hasConfidence
}

// ConfidenceOr returns the declared confidence, or def when absent.
func (i *Instinct) ConfidenceOr(def float64) float64 {
	if i.hasConfidence {
		return i.confidence
	}
	return def
}

// Set stores a header field. Setting confidence coerces the value and
// returns ErrMalformedRecord when it is not a float.
func (i *Instinct) Set(key, value string) error {
	if key == FieldConfidence {
		f, err := parseConfidence(value)
		if err != nil {
			return err
		}
		i.confidence = f
		i.hasConfidence = true
	}
	i.Fields.Set(key, value)
	return nil
}

// Identified returns the records that carry a non-empty id, in order.
func Identified(records []*Instinct) []*Instinct {
	out := make([]*Instinct, 0, len(records))
	for _, r := range records {
		if r.ID() != "" {
			out = append(out, r)
		}
	}
	return out
}
