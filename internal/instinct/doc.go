// Package instinct defines the instinct record and its flat-file format.
//
// An instinct is a short structured lesson learned by an agent: an id, a
// trigger describing when it applies, a confidence score, a domain and a
// free-text body. Any number of records can live in one file:
//
//	---
//	id: prefer-table-tests
//	trigger: "when writing go tests"
//	confidence: 0.7
//	domain: testing
//	---
//
//	# Prefer table tests
//
//	## Action
//	Use table-driven tests with t.Run subtests.
//
// # Header Fields
//
// Header fields are kept in an ordered map of strings so the format stays
// open-ended: any "key: value" line inside a header becomes a field. Typed
// accessors (ID, Trigger, Domain, Confidence) are layered on top. Only the
// confidence field is coerced at parse time; a value that is not a float
// fails the whole parse with ErrMalformedRecord.
//
// # Identified Records
//
// Parse returns every block it finds, including blocks without an id (stray
// front matter, notes). Callers drop those with Identified before use.
package instinct
