package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommandFlags(t *testing.T) {
	tests := []struct {
		flag     string
		defValue string
	}{
		{"repo", "."},
		{"config", ""},
		{"json", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			flag := validateCmd.Flags().Lookup(tt.flag)
			require.NotNil(t, flag, "flag %q should be registered on validate command", tt.flag)
			assert.Equal(t, tt.defValue, flag.DefValue)
		})
	}
}
