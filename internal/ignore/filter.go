package ignore

// Filter composes the three-tier precedence from spec §4.3: the ignore
// file is checked first, then config-level excludes, then config-level
// includes — when includes are non-empty they act as a whitelist, so a
// path must match one of them to survive.
type Filter struct {
	IgnoreFile *Matcher
	Excludes   *Matcher
	Includes   *Matcher // nil or empty means "no whitelist restriction"
}

// Excluded reports whether path should be skipped from review.
func (f *Filter) Excluded(path string) bool {
	if f.IgnoreFile != nil && f.IgnoreFile.Match(path) {
		return true
	}
	if f.Excludes != nil && f.Excludes.Match(path) {
		return true
	}
	if f.Includes != nil && len(f.Includes.rules) > 0 && !f.Includes.Match(path) {
		return true
	}
	return false
}
