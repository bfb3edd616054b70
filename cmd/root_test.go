package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codepathfinder/prreview/internal/output"
)

func TestRootCommandPersistentFlags(t *testing.T) {
	tests := []struct {
		flag     string
		defValue string
	}{
		{"disable-metrics", "false"},
		{"verbose", "false"},
		{"no-banner", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			flag := rootCmd.PersistentFlags().Lookup(tt.flag)
			require.NotNil(t, flag, "persistent flag %q should be registered", tt.flag)
			assert.Equal(t, tt.defValue, flag.DefValue)
		})
	}
}

func TestVerbosityFor(t *testing.T) {
	assert.Equal(t, output.VerbosityVerbose, verbosityFor(true))
	assert.Equal(t, output.VerbosityNormal, verbosityFor(false))
}
