package sarif_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codepathfinder/prreview/internal/model"
	"github.com/codepathfinder/prreview/internal/reporting/sarif"
)

func TestWrite_ValidJSONWithRulesAndResults(t *testing.T) {
	var buf bytes.Buffer

	complete := []model.Finding{
		{Severity: model.SeverityError, File: "a.go", Line: 12, Message: "sql injection", RuleID: "sec-sqli", SourceAgent: "security"},
		{Severity: model.SeverityWarning, File: "b.go", Line: 3, Message: "missing check", RuleID: "sec-sqli", SourceAgent: "security"},
	}
	partial := []model.Finding{
		{Severity: model.SeverityInfo, File: "c.go", Line: 0, Message: "heuristic", SourceAgent: "style", Degraded: true, DegradedReason: "timed out"},
	}

	require.NoError(t, sarif.Write(&buf, complete, partial))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	runs := doc["runs"].([]interface{})
	require.Len(t, runs, 1)
	run := runs[0].(map[string]interface{})

	tool := run["tool"].(map[string]interface{})
	driver := tool["driver"].(map[string]interface{})
	assert.Equal(t, "prreview", driver["name"])

	rules := driver["rules"].([]interface{})
	assert.Len(t, rules, 2)

	results := run["results"].([]interface{})
	assert.Len(t, results, 3)
}

func TestWrite_EmptyFindings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sarif.Write(&buf, nil, nil))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	runs := doc["runs"].([]interface{})
	require.Len(t, runs, 1)
}

func TestWrite_FindingWithoutRuleIDFallsBackToAgent(t *testing.T) {
	var buf bytes.Buffer
	findings := []model.Finding{
		{Severity: model.SeverityError, File: "a.go", Line: 1, Message: "bad", SourceAgent: "security"},
	}
	require.NoError(t, sarif.Write(&buf, findings, nil))
	assert.Contains(t, buf.String(), "agent:security")
}
