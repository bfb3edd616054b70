package securitylog_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codepathfinder/prreview/internal/model"
	"github.com/codepathfinder/prreview/internal/securitylog"
)

func TestHashPattern_NeverReturnsRawText(t *testing.T) {
	raw := "(a+)+b"
	hash := securitylog.HashPattern(raw)
	assert.NotContains(t, hash, raw)
	assert.Len(t, hash, securitylog.PatternHashLen)
}

func TestHashPattern_Stable(t *testing.T) {
	assert.Equal(t, securitylog.HashPattern("x"), securitylog.HashPattern("x"))
}

func TestLogger_Emit_WritesNDJSONLine(t *testing.T) {
	var buf bytes.Buffer
	logger := securitylog.New(&buf, "run-1", nil)

	logger.Emit(time.Unix(0, 0), model.SecurityEvent{
		Category: "pattern_validation",
		RuleID:   "sanitize-001",
		Outcome:  model.SecurityOutcomeSuccess,
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var event model.SecurityEvent
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &event))
	assert.Equal(t, "run-1", event.RunID)
	assert.Equal(t, "sanitize-001", event.RuleID)
	assert.NotEmpty(t, event.Timestamp)
}

func TestLogger_Emit_AppendOnly_MultipleEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := securitylog.New(&buf, "run-1", nil)

	logger.Emit(time.Unix(0, 0), model.SecurityEvent{RuleID: "a"})
	logger.Emit(time.Unix(1, 0), model.SecurityEvent{RuleID: "b"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, assert.AnError
}

func TestLogger_Emit_WriteFailure_NeverPanics(t *testing.T) {
	var captured error
	logger := securitylog.New(failingWriter{}, "run-1", func(err error) { captured = err })

	assert.NotPanics(t, func() {
		logger.Emit(time.Unix(0, 0), model.SecurityEvent{RuleID: "a"})
	})
	assert.Error(t, captured)
}
