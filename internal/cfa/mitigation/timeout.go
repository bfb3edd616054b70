package mitigation

import (
	"fmt"
	"regexp"
	"time"
)

// DefaultPatternTimeout is the per-pattern-per-input regex deadline: 100ms.
// Every compiled pattern uses it; there is no per-pattern or per-run
// override.
const DefaultPatternTimeout = 100 * time.Millisecond

// TimeoutInfo records that a pattern's name-regex evaluation was cancelled
// before it could produce a verdict. The match is then treated as
// non-matching. The call matcher (matchesName) discards this record, so no
// emitted finding carries it.
type TimeoutInfo struct {
	PatternID string
	ElapsedMs int64
}

// guardedRegex wraps a compiled regexp with a cooperative wall-clock
// deadline: the match runs on a worker goroutine, and the caller gives up
// waiting for it at the deadline, attributing the verdict "no match"
// either way. Go's regexp package does not expose a mid-match interrupt
// point (it is RE2-backed and cannot itself be stepped or canceled), so
// this is the cooperative-check-over-watchdog option the spec leaves open:
// the goroutine runs to completion in the background even after the
// caller's deadline fires, but its result is discarded.
type guardedRegex struct {
	re      *regexp.Regexp
	timeout time.Duration
	id      string
}

func newGuardedRegex(id, pattern string, timeout time.Duration) (*guardedRegex, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %s: %w", id, err)
	}
	if timeout <= 0 {
		timeout = DefaultPatternTimeout
	}
	return &guardedRegex{re: re, timeout: timeout, id: id}, nil
}

// Match evaluates the pattern against input under the configured deadline.
// ok reports whether the evaluation completed (true) or was abandoned at
// the deadline (false, with info populated).
func (g *guardedRegex) Match(input string) (matched bool, ok bool, info *TimeoutInfo) {
	result := make(chan bool, 1)
	start := time.Now()
	go func() {
		result <- g.re.MatchString(input)
	}()

	select {
	case m := <-result:
		return m, true, nil
	case <-time.After(g.timeout):
		return false, false, &TimeoutInfo{PatternID: g.id, ElapsedMs: time.Since(start).Milliseconds()}
	}
}

// compile validates a Pattern's name regex (when set), classifies its ReDoS
// risk, and rejects it unless the risk is below the classifier's threshold
// or the pattern id is whitelisted.
func compile(p Pattern, classifier *RedosClassifier, whitelist map[string]bool) (*CompiledPattern, error) {
	cp := &CompiledPattern{Pattern: p}
	if p.NameRegex == "" {
		return cp, nil
	}

	if classifier == nil {
		classifier = DefaultClassifier()
	}
	risk := classifier.Classify(p.NameRegex)
	if risk.rank() >= classifier.RejectThreshold.rank() && !whitelist[p.ID] {
		return nil, fmt.Errorf("pattern %s: name regex rejected, redos risk %s at or above threshold %s", p.ID, risk, classifier.RejectThreshold)
	}

	matcher, err := newGuardedRegex(p.ID, p.NameRegex, DefaultPatternTimeout)
	if err != nil {
		return nil, err
	}
	cp.nameMatcher = matcher
	return cp, nil
}
