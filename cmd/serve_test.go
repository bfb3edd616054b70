package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCommandFlags(t *testing.T) {
	addrFlag := serveCmd.Flags().Lookup("addr")
	require.NotNil(t, addrFlag)
	assert.Equal(t, ":8080", addrFlag.DefValue)

	rulesetFlag := serveCmd.Flags().Lookup("ruleset-dir")
	require.NotNil(t, rulesetFlag)
	assert.Equal(t, "", rulesetFlag.DefValue)
}

func TestServeRequestBody_DecodesJSON(t *testing.T) {
	raw := `{"repo_path":"/repo","base_ref":"main","head_ref":"feature","pr_number":7,"owner":"acme","repo_name":"widgets","platform":"github"}`

	var body serveRequestBody
	require.NoError(t, json.Unmarshal([]byte(raw), &body))

	assert.Equal(t, "/repo", body.RepoPath)
	assert.Equal(t, 7, body.PRNumber)
	assert.Equal(t, "github", body.Platform)
}
