package ruleset

import "fmt"

// ParseSpec parses "go/security" into a Spec.
func ParseSpec(spec string) (Spec, error) {
	lang, bundle, ok := splitOnce(spec, '/')
	if !ok {
		return Spec{}, fmt.Errorf("invalid bundle spec: %s (expected format: language/bundle)", spec)
	}
	return Spec{Language: lang, Bundle: bundle}, nil
}

func splitOnce(s string, sep byte) (string, string, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

// Validate checks that a Spec is well formed.
func (s Spec) Validate() error {
	if s.Language == "" {
		return fmt.Errorf("language cannot be empty")
	}
	if s.Bundle == "" {
		return fmt.Errorf("bundle cannot be empty")
	}
	return nil
}
