package budget

import "github.com/codepathfinder/prreview/internal/model"

// PassGate decides whether a pass containing a paid LLM agent may run: if
// the budget is already exceeded, the pass is skipped — fatal only when
// the pass itself is required. A merely "warning" budget still allows
// paid agents to run.
func (b *Budget) PassGate(hasPaidAgent, required bool) (skip bool, fatal bool) {
	if !hasPaidAgent {
		return false, false
	}
	if b.Status().AtLeast(model.BudgetExceeded) {
		return true, required
	}
	return false, false
}
