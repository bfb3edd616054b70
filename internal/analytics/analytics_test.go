package analytics_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codepathfinder/prreview/internal/analytics"
)

func TestNoopEmitter_DoesNothing(t *testing.T) {
	var e analytics.Emitter = analytics.NoopEmitter{}
	assert.NotPanics(t, func() {
		e.Emit(analytics.ReviewStarted, map[string]any{"passes": 3})
		e.Close()
	})
}

func TestConsoleEmitter_WritesEvent(t *testing.T) {
	var buf bytes.Buffer
	e := analytics.ConsoleEmitter{Out: &buf}

	e.Emit(analytics.ReviewCompleted, map[string]any{"findings": 2})

	assert.Contains(t, buf.String(), analytics.ReviewCompleted)
	assert.Contains(t, buf.String(), "findings")
}

func TestConsoleEmitter_NilWriter_NoPanic(t *testing.T) {
	e := analytics.ConsoleEmitter{}
	assert.NotPanics(t, func() { e.Emit(analytics.ReviewStarted, nil) })
}

func TestPosthogEmitter_EmptyPublicKey_IsNoop(t *testing.T) {
	e := analytics.NewPosthogEmitter("", "1.0.0")
	assert.NotPanics(t, func() { e.Emit(analytics.ReviewStarted, nil) })
}
