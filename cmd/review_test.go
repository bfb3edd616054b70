package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codepathfinder/prreview/internal/model"
	"github.com/codepathfinder/prreview/internal/pipeline"
)

func TestReviewCommandFlags(t *testing.T) {
	tests := []struct {
		flag     string
		defValue string
	}{
		{"repo", "."},
		{"base", ""},
		{"head", ""},
		{"pr", "0"},
		{"owner", ""},
		{"repo-name", ""},
		{"platform", ""},
		{"dry-run", "false"},
		{"config", ""},
		{"ruleset-dir", ""},
		{"sarif-out", ""},
		{"json", ""},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			flag := reviewCmd.Flags().Lookup(tt.flag)
			require.NotNil(t, flag, "flag %q should be registered on review command", tt.flag)
			assert.Equal(t, tt.defValue, flag.DefValue)
		})
	}
}

func TestReviewCommand_RequiresBaseAndHead(t *testing.T) {
	assert.NotNil(t, reviewCmd.Flag("base").Annotations[cobra.BashCompOneRequiredFlag])
	assert.NotNil(t, reviewCmd.Flag("head").Annotations[cobra.BashCompOneRequiredFlag])
}

func TestTokenForPlatform(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "gh-secret")
	t.Setenv("SYSTEM_ACCESSTOKEN", "ado-secret")

	assert.Equal(t, "gh-secret", tokenForPlatform("github"))
	assert.Equal(t, "ado-secret", tokenForPlatform("azuredevops"))
	assert.Equal(t, "", tokenForPlatform(""))
}

func TestFlatten_CollectsFindingsAcrossGroups(t *testing.T) {
	groups := []pipeline.Group{
		{File: "a.go", Line: 1, Findings: []model.Finding{{File: "a.go", Line: 1}, {File: "a.go", Line: 2}}},
		{File: "b.go", Line: 10, Findings: []model.Finding{{File: "b.go", Line: 10}}},
	}
	out := flatten(groups)
	assert.Len(t, out, 3)
}

func TestNewBackend_UnknownPlatform_Errors(t *testing.T) {
	_, err := newBackend(reviewRequest{Platform: "bitbucket"}, "sha")
	assert.Error(t, err)
}

func TestNewBackend_EmptyPlatform_ReturnsNilBackend(t *testing.T) {
	backend, err := newBackend(reviewRequest{Platform: ""}, "sha")
	require.NoError(t, err)
	assert.Nil(t, backend)
}
