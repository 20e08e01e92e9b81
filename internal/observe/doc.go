// Package observe records tool-use hook events to the observation log.
//
// A Recorder is driven by the agent's pre and post tool-use hooks. It
// passes the hook payload through unchanged, then appends one JSON line per
// event to observations.jsonl. The log is moved into observations.archive/
// once it reaches the configured size. Recording never blocks the agent:
// callers log a Record error and still exit successfully.
package observe
