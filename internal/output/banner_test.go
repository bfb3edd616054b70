package output_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codepathfinder/prreview/internal/output"
)

func TestPrintBanner_Full(t *testing.T) {
	var buf bytes.Buffer
	output.PrintBanner(&buf, "0.1.0", output.BannerOptions{ShowBanner: true, ShowVersion: true, ShowLicense: true})

	out := buf.String()
	assert.Contains(t, out, "0.1.0")
	assert.Contains(t, out, "Apache-2.0")
}

func TestPrintBanner_TextOnly(t *testing.T) {
	var buf bytes.Buffer
	output.PrintBanner(&buf, "0.1.0", output.BannerOptions{ShowBanner: false, ShowVersion: true, ShowLicense: false})

	out := buf.String()
	assert.Contains(t, out, "0.1.0")
	assert.NotContains(t, out, "Apache-2.0")
}

func TestPrintBanner_NilWriter_NoPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		output.PrintBanner(nil, "0.1.0", output.DefaultBannerOptions())
	})
}

func TestCompactBanner(t *testing.T) {
	assert.Contains(t, output.CompactBanner("0.1.0"), "0.1.0")
}

func TestShouldShowBanner(t *testing.T) {
	assert.False(t, output.ShouldShowBanner(true, true))
	assert.True(t, output.ShouldShowBanner(true, false))
	assert.False(t, output.ShouldShowBanner(false, false))
}
