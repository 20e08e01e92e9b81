// Package report renders the human-readable output of the status and
// evolve commands.
//
// Styling uses lipgloss with a renderer bound to the destination writer, so
// redirected output and test buffers receive plain text.
package report
