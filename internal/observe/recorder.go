package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/homunculus/internal/logging"
	"github.com/fyrsmithlabs/homunculus/internal/store"
)

// Phase is the hook that invoked the recorder.
type Phase string

const (
	// PhasePre runs before a tool executes.
	PhasePre Phase = "pre"

	// PhasePost runs after a tool completes.
	PhasePost Phase = "post"
)

// Event names written to the log.
const (
	EventToolStart    = "tool_start"
	EventToolComplete = "tool_complete"
)

// SessionEnv is consulted when the payload carries no session id.
const SessionEnv = "CLAUDE_SESSION_ID"

const (
	defaultMaxFileSize   = 10 * 1024 * 1024 // 10MB
	defaultMaxFieldChars = 5000
	unknown              = "unknown"
)

// Event is one line of the observation log.
type Event struct {
	Timestamp string  `json:"timestamp"`
	Event     string  `json:"event"`
	Tool      string  `json:"tool"`
	Session   string  `json:"session"`
	Input     *string `json:"input,omitempty"`
	Output    *string `json:"output,omitempty"`
	ID        string  `json:"id"`
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithMaxFileSize sets the log size, in bytes, that triggers rotation.
func WithMaxFileSize(n int64) Option {
	return func(r *Recorder) { r.maxFileSize = n }
}

// WithMaxFieldChars sets the character limit for input and output payloads.
func WithMaxFieldChars(n int) Option {
	return func(r *Recorder) { r.maxFieldChars = n }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(r *Recorder) { r.logger = logger }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// Recorder appends hook events to a layout's observation log.
type Recorder struct {
	layout        store.Layout
	maxFileSize   int64
	maxFieldChars int
	logger        *logging.Logger
	now           func() time.Time
	getenv        func(string) string
}

// NewRecorder creates a recorder writing under layout.
func NewRecorder(layout store.Layout, opts ...Option) *Recorder {
	r := &Recorder{
		layout:        layout,
		maxFileSize:   defaultMaxFileSize,
		maxFieldChars: defaultMaxFieldChars,
		logger:        logging.NewNop(),
		now:           time.Now,
		getenv:        os.Getenv,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record copies the hook payload from in to out, then logs it as an event.
//
// The payload is echoed before anything else so the agent sees it even when
// recording fails. Nothing is logged when the disabled flag exists or the
// payload is blank.
func (r *Recorder) Record(ctx context.Context, phase Phase, in io.Reader, out io.Writer) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read hook payload: %w", err)
	}
	if _, err := fmt.Fprintln(out, string(data)); err != nil {
		return fmt.Errorf("failed to echo hook payload: %w", err)
	}

	if _, err := os.Stat(r.layout.DisabledFlag()); err == nil {
		r.logger.Debug(ctx, "observation disabled", zap.String("flag", r.layout.DisabledFlag()))
		return nil
	}

	if err := os.MkdirAll(r.layout.Root, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", r.layout.Root, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("failed to parse hook payload: %w", err)
	}

	event := r.buildEvent(phase, payload)
	r.rotate(ctx)
	return r.append(event)
}

func (r *Recorder) buildEvent(phase Phase, payload map[string]any) Event {
	now := r.now().UTC()
	event := Event{
		Timestamp: now.Format("2006-01-02T15:04:05.000Z"),
		Event:     EventToolComplete,
		Tool:      unknown,
		Session:   unknown,
		ID:        uuid.NewString(),
	}
	if phase == PhasePre {
		event.Event = EventToolStart
	}

	if v, ok := first(payload, "tool_name", "tool"); ok {
		event.Tool = r.text(v, -1)
	}
	if v, ok := first(payload, "session_id"); ok {
		event.Session = r.text(v, -1)
	} else if env := r.getenv(SessionEnv); env != "" {
		event.Session = env
	}

	if event.Event == EventToolStart {
		input := "{}"
		if v, ok := first(payload, "tool_input", "input"); ok {
			input = r.text(v, r.maxFieldChars)
		}
		event.Input = &input
	} else {
		output := ""
		if v, ok := first(payload, "tool_output", "output"); ok {
			output = r.text(v, r.maxFieldChars)
		}
		event.Output = &output
	}
	return event
}

// first returns the first of keys with a present, non-zero value.
func first(payload map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		v, ok := payload[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case nil:
			continue
		case string:
			if t == "" {
				continue
			}
		case bool:
			if !t {
				continue
			}
		case float64:
			if t == 0 {
				continue
			}
		}
		return v, true
	}
	return nil, false
}

// text renders v as a string, JSON-encoding anything that is not one, and
// keeps at most limit characters. A negative limit keeps everything.
func (r *Recorder) text(v any, limit int) string {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	default:
		s = encode(t)
	}
	if limit >= 0 {
		if runes := []rune(s); len(runes) > limit {
			s = string(runes[:limit])
		}
	}
	return s
}

func encode(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// rotate archives the log when it has reached the size limit. Failures are
// logged and leave the log in place.
func (r *Recorder) rotate(ctx context.Context) {
	path := r.layout.ObservationsFile()
	info, err := os.Stat(path)
	if err != nil || info.Size() < r.maxFileSize {
		return
	}

	archive := r.layout.ArchiveDir()
	if err := os.MkdirAll(archive, 0755); err != nil {
		r.logger.Warn(ctx, "failed to create observation archive", zap.String("dir", archive), zap.Error(err))
		return
	}

	ts := strings.NewReplacer(":", "-", ".", "-").Replace(r.now().UTC().Format("2006-01-02T15:04:05.000Z"))
	target := filepath.Join(archive, "observations-"+ts+".jsonl")
	if err := os.Rename(path, target); err != nil {
		r.logger.Warn(ctx, "failed to archive observations", zap.String("file", path), zap.Error(err))
		return
	}
	r.logger.Info(ctx, "archived observations", zap.String("archive", target), zap.Int64("bytes", info.Size()))
}

func (r *Recorder) append(event Event) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(event); err != nil {
		return fmt.Errorf("failed to encode observation: %w", err)
	}

	path := r.layout.ObservationsFile()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("failed to append observation: %w", err)
	}
	return f.Close()
}

// CountLines returns the number of lines in the file at path. A final line
// without a trailing newline still counts. A missing file returns an error
// matching fs.ErrNotExist.
func CountLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	buf := make([]byte, 32*1024)
	count := 0
	var last byte = '\n'
	for {
		n, err := f.Read(buf)
		if n > 0 {
			count += bytes.Count(buf[:n], []byte{'\n'})
			last = buf[n-1]
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}
	if last != '\n' {
		count++
	}
	return count, nil
}

