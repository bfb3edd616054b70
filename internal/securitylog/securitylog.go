// Package securitylog is an append-only, best-effort structured audit log
// of security-relevant events: pattern validation and mitigation
// decisions. It never surfaces a raw pattern's text, only a truncated
// SHA-256 hash of it, and a logging failure here never aborts the run.
package securitylog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/codepathfinder/prreview/internal/model"
)

// PatternHashLen matches the CFA core's fingerprint truncation so hashes
// read consistently across the codebase.
const PatternHashLen = 16

// HashPattern truncates a SHA-256 digest of raw pattern text, so the
// pattern itself never needs to appear in a SecurityEvent.
func HashPattern(raw string) string {
	h := sha256.Sum256([]byte(raw))
	full := hex.EncodeToString(h[:])
	if len(full) > PatternHashLen {
		return full[:PatternHashLen]
	}
	return full
}

// Logger writes NDJSON SecurityEvents to an io.Writer, one per line.
// Writes are serialized; a write error is swallowed (logged best-effort,
// per spec: "the logger never throws") rather than propagated to the
// caller, which is expected to be deep inside hot analysis code that must
// not fail on a logging hiccup.
type Logger struct {
	mu     sync.Mutex
	w      io.Writer
	runID  string
	onErr  func(error)
}

// New creates a Logger writing to w, stamping every event with runID.
// onErr, if non-nil, is invoked (not propagated) on a write failure —
// tests can use it to assert a failure was swallowed rather than silently
// lost.
func New(w io.Writer, runID string, onErr func(error)) *Logger {
	return &Logger{w: w, runID: runID, onErr: onErr}
}

// Emit appends one event, stamping Timestamp and RunID. outcome=failure
// events must carry a non-empty ErrorReason; Emit does not enforce this
// (callers own the invariant) but never panics regardless.
func (l *Logger) Emit(now time.Time, event model.SecurityEvent) {
	event.Timestamp = now.UTC().Format(time.RFC3339)
	event.RunID = l.runID

	line, err := json.Marshal(event)
	if err != nil {
		l.fail(err)
		return
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.w.Write(line); err != nil {
		l.fail(err)
	}
}

func (l *Logger) fail(err error) {
	if l.onErr != nil {
		l.onErr(err)
	}
}
