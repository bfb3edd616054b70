package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Logger provides structured, verbosity-gated logging plus optional
// terminal progress bars for long-running passes.
type Logger struct {
	verbosity    VerbosityLevel
	writer       io.Writer
	startTime    time.Time
	timings      map[string]time.Duration
	isTTY        bool
	progressBar  *progressbar.ProgressBar
	showProgress bool
}

// NewLogger creates a logger writing to stderr, keeping stdout clean for
// machine-readable output (--json, SARIF export).
func NewLogger(verbosity VerbosityLevel) *Logger {
	return NewLoggerWithWriter(verbosity, os.Stderr)
}

// NewLoggerWithWriter creates a logger with a custom writer, for tests.
func NewLoggerWithWriter(verbosity VerbosityLevel, w io.Writer) *Logger {
	isTTY := IsTTY(w)
	return &Logger{
		verbosity:    verbosity,
		writer:       w,
		startTime:    time.Now(),
		timings:      make(map[string]time.Duration),
		isTTY:        isTTY,
		showProgress: isTTY,
	}
}

// Progress logs a high-level progress message (verbose and debug only).
func (l *Logger) Progress(format string, args ...interface{}) {
	if l.verbosity >= VerbosityVerbose {
		fmt.Fprintf(l.writer, format+"\n", args...)
	}
}

// Statistic logs counts/metrics (verbose and debug only).
func (l *Logger) Statistic(format string, args ...interface{}) {
	if l.verbosity >= VerbosityVerbose {
		fmt.Fprintf(l.writer, format+"\n", args...)
	}
}

// Debug logs a debug line with an elapsed-time prefix (debug only).
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.verbosity >= VerbosityDebug {
		fmt.Fprintf(l.writer, "[%s] %s\n", formatDuration(time.Since(l.startTime)), fmt.Sprintf(format, args...))
	}
}

// Warning always logs a warning, regardless of verbosity.
func (l *Logger) Warning(format string, args ...interface{}) {
	fmt.Fprintf(l.writer, "Warning: %s\n", fmt.Sprintf(format, args...))
}

// Error always logs an error, regardless of verbosity.
func (l *Logger) Error(format string, args ...interface{}) {
	fmt.Fprintf(l.writer, "Error: %s\n", fmt.Sprintf(format, args...))
}

// StartTiming begins timing a named operation; call the returned func to
// stop it and record the duration.
func (l *Logger) StartTiming(name string) func() {
	start := time.Now()
	return func() {
		l.timings[name] = time.Since(start)
	}
}

// GetTiming returns the recorded duration for name.
func (l *Logger) GetTiming(name string) time.Duration {
	return l.timings[name]
}

// GetAllTimings returns a copy of every recorded timing.
func (l *Logger) GetAllTimings() map[string]time.Duration {
	out := make(map[string]time.Duration, len(l.timings))
	for k, v := range l.timings {
		out[k] = v
	}
	return out
}

// PrintTimingSummary prints every recorded timing (verbose mode only).
func (l *Logger) PrintTimingSummary() {
	if l.verbosity < VerbosityVerbose {
		return
	}
	fmt.Fprintln(l.writer, "\nTiming Summary:")
	for name, d := range l.timings {
		fmt.Fprintf(l.writer, "  %s: %s\n", name, d.Round(time.Millisecond))
	}
}

func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%02d:%02d.%03d", minutes, seconds, millis)
}

func (l *Logger) Verbosity() VerbosityLevel { return l.verbosity }
func (l *Logger) IsVerbose() bool           { return l.verbosity >= VerbosityVerbose }
func (l *Logger) IsDebug() bool             { return l.verbosity >= VerbosityDebug }
func (l *Logger) IsTTY() bool               { return l.isTTY }
func (l *Logger) GetWriter() io.Writer      { return l.writer }

// StartProgress starts a progress bar (total > 0) or spinner (total < 0).
// In non-TTY mode it prints a single description line instead.
func (l *Logger) StartProgress(description string, total int) error {
	if !l.showProgress || !l.isTTY {
		l.Progress("%s...", description)
		return nil
	}

	if l.progressBar != nil {
		_ = l.progressBar.Finish()
	}

	onDone := progressbar.OptionOnCompletion(func() { fmt.Fprintf(l.writer, "\n") })
	if total < 0 {
		l.progressBar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWriter(l.writer),
			progressbar.OptionSetWidth(40),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionSpinnerType(14),
			onDone,
		)
		return nil
	}

	l.progressBar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(l.writer),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		onDone,
		progressbar.OptionSetRenderBlankState(true),
	)
	return nil
}

// UpdateProgress advances the active progress bar by delta.
func (l *Logger) UpdateProgress(delta int) error {
	if !l.showProgress || !l.isTTY || l.progressBar == nil {
		return nil
	}
	return l.progressBar.Add(delta)
}

// FinishProgress completes and clears the active progress bar.
func (l *Logger) FinishProgress() error {
	if !l.showProgress || !l.isTTY || l.progressBar == nil {
		return nil
	}
	err := l.progressBar.Finish()
	l.progressBar = nil
	return err
}

// SetProgressDescription updates the active progress bar's label.
func (l *Logger) SetProgressDescription(description string) {
	if !l.showProgress || !l.isTTY || l.progressBar == nil {
		return
	}
	l.progressBar.Describe(description)
}

// IsProgressEnabled reports whether progress bars render (TTY + enabled).
func (l *Logger) IsProgressEnabled() bool {
	return l.showProgress && l.isTTY
}
