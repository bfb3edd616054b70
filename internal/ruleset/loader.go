package ruleset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/codepathfinder/prreview/internal/cfa/mitigation"
	"github.com/codepathfinder/prreview/internal/model"
	"github.com/codepathfinder/prreview/internal/securitylog"
)

// patternFile is the on-disk JSON shape of one file inside an extracted
// bundle. A bundle directory holds one or more of these, each contributing
// a batch of patterns.
type patternFile struct {
	Patterns []patternDoc `json:"patterns"`
}

type patternDoc struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Mitigates  []string `json:"mitigates"`
	MatchKind  string   `json:"match_kind"`
	ExactName  string   `json:"exact_name,omitempty"`
	NameRegex  string   `json:"name_regex,omitempty"`
	Module     string   `json:"module,omitempty"`
	Confidence string   `json:"confidence,omitempty"`
	Deprecated bool     `json:"deprecated,omitempty"`
}

// LoadPatterns walks every *.json file directly under dir (an extracted
// bundle directory) and returns the union of their declared patterns.
func LoadPatterns(dir string) ([]mitigation.Pattern, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle dir: %w", err)
	}

	var out []mitigation.Pattern
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		var pf patternFile
		if err := json.Unmarshal(data, &pf); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}

		for _, doc := range pf.Patterns {
			p, err := toPattern(doc)
			if err != nil {
				return nil, fmt.Errorf("%s: pattern %s: %w", path, doc.ID, err)
			}
			out = append(out, p)
		}
	}

	return out, nil
}

func toPattern(doc patternDoc) (mitigation.Pattern, error) {
	if doc.ID == "" {
		return mitigation.Pattern{}, fmt.Errorf("missing id")
	}

	confidence := mitigation.ConfidenceMedium
	switch doc.Confidence {
	case "", string(mitigation.ConfidenceMedium):
		confidence = mitigation.ConfidenceMedium
	case string(mitigation.ConfidenceHigh):
		confidence = mitigation.ConfidenceHigh
	case string(mitigation.ConfidenceLow):
		confidence = mitigation.ConfidenceLow
	default:
		return mitigation.Pattern{}, fmt.Errorf("unknown confidence: %s", doc.Confidence)
	}

	return mitigation.Pattern{
		ID:         doc.ID,
		Name:       doc.Name,
		Mitigates:  doc.Mitigates,
		MatchKind:  mitigation.Kind(doc.MatchKind),
		ExactName:  doc.ExactName,
		NameRegex:  doc.NameRegex,
		Module:     doc.Module,
		Confidence: confidence,
		BuiltIn:    false,
		Deprecated: doc.Deprecated,
	}, nil
}

// LoadIntoRegistry parses every pattern file in dir and registers each
// non-deprecated pattern into reg, using classifier to reject risky regexes
// unless whitelisted by ID. A rejected pattern is skipped rather than
// aborting the whole load, so one bad pattern in a bundle doesn't blank
// out every mitigation for the run.
//
// log, if non-nil, receives a SecurityEvent for every accept/reject
// decision so a rejected pattern leaves an audit trail instead of
// vanishing silently.
func LoadIntoRegistry(dir string, reg *mitigation.Registry, classifier *mitigation.RedosClassifier, whitelist map[string]bool, log *securitylog.Logger) (int, error) {
	patterns, err := LoadPatterns(dir)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, p := range patterns {
		if p.Deprecated {
			continue
		}
		if err := reg.Add(p, classifier, whitelist); err != nil {
			emitPatternDecision(log, p.ID, model.SecurityOutcomeFailure, err.Error())
			continue
		}
		emitPatternDecision(log, p.ID, model.SecurityOutcomeSuccess, "")
		count++
	}

	return count, nil
}

func emitPatternDecision(log *securitylog.Logger, patternID string, outcome model.SecurityEventOutcome, reason string) {
	if log == nil {
		return
	}
	log.Emit(time.Now(), model.SecurityEvent{
		Category:    "mitigation_pattern_load",
		RuleID:      patternID,
		PatternHash: securitylog.HashPattern(patternID),
		Outcome:     outcome,
		ErrorReason: reason,
	})
}
