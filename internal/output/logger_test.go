package output_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codepathfinder/prreview/internal/output"
)

func TestLogger_Progress_OnlyVerboseAndAbove(t *testing.T) {
	var buf bytes.Buffer
	l := output.NewLoggerWithWriter(output.VerbosityNormal, &buf)
	l.Progress("hello")
	assert.Empty(t, buf.String())

	buf.Reset()
	l = output.NewLoggerWithWriter(output.VerbosityVerbose, &buf)
	l.Progress("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestLogger_Debug_OnlyAtDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	l := output.NewLoggerWithWriter(output.VerbosityVerbose, &buf)
	l.Debug("detail")
	assert.Empty(t, buf.String())

	buf.Reset()
	l = output.NewLoggerWithWriter(output.VerbosityDebug, &buf)
	l.Debug("detail")
	assert.Contains(t, buf.String(), "detail")
}

func TestLogger_WarningAndError_AlwaysShown(t *testing.T) {
	var buf bytes.Buffer
	l := output.NewLoggerWithWriter(output.VerbosityQuiet, &buf)
	l.Warning("careful")
	l.Error("broken")

	out := buf.String()
	assert.Contains(t, out, "Warning: careful")
	assert.Contains(t, out, "Error: broken")
}

func TestLogger_Timings(t *testing.T) {
	var buf bytes.Buffer
	l := output.NewLoggerWithWriter(output.VerbosityNormal, &buf)

	stop := l.StartTiming("phase1")
	stop()

	assert.Contains(t, l.GetAllTimings(), "phase1")
	assert.GreaterOrEqual(t, l.GetTiming("phase1").Nanoseconds(), int64(0))
}

func TestLogger_VerbosityHelpers(t *testing.T) {
	l := output.NewLoggerWithWriter(output.VerbosityDebug, &bytes.Buffer{})
	assert.True(t, l.IsVerbose())
	assert.True(t, l.IsDebug())
	assert.Equal(t, output.VerbosityDebug, l.Verbosity())
}

func TestLogger_NonTTY_ProgressFallsBackToDescriptionLine(t *testing.T) {
	var buf bytes.Buffer
	l := output.NewLoggerWithWriter(output.VerbosityVerbose, &buf)
	assert.NoError(t, l.StartProgress("working", 10))
	assert.Contains(t, buf.String(), "working...")
	assert.False(t, l.IsProgressEnabled())
}
