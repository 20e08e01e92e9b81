// Package store reads and writes the on-disk instinct store.
//
// The store is a directory tree rooted at the homunculus dir:
//
//	<root>/
//	  instincts/personal/     locally learned record files
//	  instincts/inherited/    imported record files
//	  evolved/{skills,commands,agents}/
//	  observations.jsonl
//
// Provenance is never inferred: each Tier passed to the Loader names its
// directory and the provenance its records receive. Loading is best
// effort. A file that cannot be read or parsed becomes a Warning and the
// remaining files still load.
package store
