// Package budget enforces spec §4.5's per-PR hard limits (files, changed
// lines, estimated tokens, estimated cost, wall-clock) and per-analysis
// soft limits (nodes visited, call depth, pattern-regex wall-time), and
// reports the monotonic ok -> warning -> exceeded -> terminated status a
// single run moves through.
package budget

import (
	"strings"
	"sync"
	"time"

	"github.com/codepathfinder/prreview/internal/model"
)

// TokensPerByte approximates token count from diff byte size.
const TokensPerByte = 0.25 // 1 token per 4 bytes

// OutputTokenRatio is the assumed fraction of input tokens an agent's
// output costs, used for USD estimation.
const OutputTokenRatio = 0.20

// WarningPercent is the running-total fraction of any hard limit at which
// Budget transitions from ok to warning.
const WarningPercent = 0.80

// priorityPrefixes are analyzed first when a run is in degraded mode and
// must shed low-priority files.
var priorityPrefixes = []string{"auth", "security", "api"}

// ModelRate prices one provider/model's per-token cost in USD, used for
// cost estimation.
type ModelRate struct {
	InputPerToken  float64
	OutputPerToken float64
}

// Budget is the single shared, single-writer-mutated instance per run. All
// counters are monotonically increasing; Status only moves forward.
type Budget struct {
	mu sync.Mutex

	limits model.BudgetLimits
	start  time.Time
	rate   ModelRate

	filesAnalyzed int
	changedLines  int
	tokensUsed    int64
	usdSpent      float64

	status model.BudgetStatus
}

// New creates a Budget enforcing limits, priced at rate, starting its
// wall-clock from now.
func New(limits model.BudgetLimits, rate ModelRate, now time.Time) *Budget {
	return &Budget{limits: limits, rate: rate, start: now, status: model.BudgetOK}
}

// Status returns the current monotonic status.
func (b *Budget) Status() model.BudgetStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// ShouldContinue checks wall-clock and the hard size caps, advancing
// status if any is at or past its limit. now is passed in rather than
// read from the clock so callers control time in tests and so a run's
// notion of "now" is consistent across one check.
func (b *Budget) ShouldContinue(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := now.Sub(b.start).Milliseconds()
	b.advance(elapsed)

	return b.status != model.BudgetTerminated && b.status != model.BudgetExceeded
}

// advance recomputes status from current counters against limits, only
// ever moving forward. Caller must hold mu.
func (b *Budget) advance(elapsedMs int64) {
	ratios := []float64{
		ratio(b.filesAnalyzed, b.limits.MaxFiles),
		ratio(b.changedLines, b.limits.MaxChangedLines),
		ratioInt64(b.tokensUsed, b.limits.MaxTokens),
		ratioFloat(b.usdSpent, b.limits.MaxUSD),
		ratioInt64(elapsedMs, b.limits.MaxWallMs),
	}

	next := model.BudgetOK
	for _, r := range ratios {
		switch {
		case r >= 1.0:
			next = model.BudgetExceeded
		case r >= WarningPercent && next == model.BudgetOK:
			next = model.BudgetWarning
		}
	}
	if next.AtLeast(b.status) {
		b.status = next
	}
}

// Terminate forces status to terminated, the final state past exceeded —
// used when the run must stop immediately rather than merely skip
// further work.
func (b *Budget) Terminate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = model.BudgetTerminated
}

// ShouldAnalyzeFile reports whether path should still be analyzed. Once
// the budget is in a degraded state (warning or past), only files whose
// path contains a priority prefix ("auth", "security", "api") continue to
// be analyzed.
func (b *Budget) ShouldAnalyzeFile(path string) bool {
	b.mu.Lock()
	degraded := b.status.AtLeast(model.BudgetWarning)
	b.mu.Unlock()

	if !degraded {
		return true
	}
	lower := strings.ToLower(path)
	for _, p := range priorityPrefixes {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// MaxCallDepth returns the configured bound on inter-procedural recursion.
// Negative means unset (the caller should fall back to its own default);
// zero is a legitimate, honored bound of "don't recurse at all."
func (b *Budget) MaxCallDepth() int {
	return b.limits.MaxCallDepth
}

// RecordFile records one analyzed file's line count against the running
// changed-lines counter.
func (b *Budget) RecordFile(lineCount int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filesAnalyzed++
	b.changedLines += lineCount
}

// RecordTokens records estimated token usage and its USD cost, folding an
// assumed output-token ratio into the cost estimate.
func (b *Budget) RecordTokens(inputTokens int64) {
	outputTokens := int64(float64(inputTokens) * OutputTokenRatio)
	cost := float64(inputTokens)*b.rate.InputPerToken + float64(outputTokens)*b.rate.OutputPerToken

	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokensUsed += inputTokens + outputTokens
	b.usdSpent += cost
}

// EstimateTokens approximates token count from diff byte size: roughly
// one token per four bytes.
func EstimateTokens(diffBytes int) int64 {
	return int64(float64(diffBytes) * TokensPerByte)
}

func ratio(used, max int) float64 {
	if max <= 0 {
		return 0
	}
	return float64(used) / float64(max)
}

func ratioInt64(used, max int64) float64 {
	if max <= 0 {
		return 0
	}
	return float64(used) / float64(max)
}

func ratioFloat(used, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return used / max
}
