// Package evolve groups instincts into candidate skills.
//
// Each instinct's trigger is reduced to a clustering key by NormalizeTrigger.
// Instincts sharing a key form a Cluster; clusters of two or more are ranked
// by size, then by mean confidence. Generate renders a cluster as a SKILL.md
// artifact under the evolved skills directory.
//
// The engine is pure: it never mutates records and never fails. The minimum
// store size for an evolve run is a command policy enforced by CheckMinimum.
package evolve
