package diffstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codepathfinder/prreview/internal/diffstore"
)

func TestParseRange_TwoDot(t *testing.T) {
	r, err := diffstore.ParseRange("main..feature")
	require.NoError(t, err)
	assert.Equal(t, "main", r.Base)
	assert.Equal(t, "feature", r.Head)
	assert.False(t, r.TripleDot)
}

func TestParseRange_ThreeDot(t *testing.T) {
	r, err := diffstore.ParseRange("main...feature")
	require.NoError(t, err)
	assert.Equal(t, "main", r.Base)
	assert.Equal(t, "feature", r.Head)
	assert.True(t, r.TripleDot)
}

func TestParseRange_Missing(t *testing.T) {
	_, err := diffstore.ParseRange("main")
	require.Error(t, err)
	var rangeErr *diffstore.RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, diffstore.RangeErrorMissing, rangeErr.Kind)
}

func TestParseRange_EmptyBase(t *testing.T) {
	_, err := diffstore.ParseRange("..feature")
	require.Error(t, err)
	var rangeErr *diffstore.RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, diffstore.RangeErrorEmptyBase, rangeErr.Kind)
}

func TestParseRange_EmptyHead(t *testing.T) {
	_, err := diffstore.ParseRange("main..")
	require.Error(t, err)
	var rangeErr *diffstore.RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, diffstore.RangeErrorEmptyHead, rangeErr.Kind)
}

func TestParseRange_Multiple(t *testing.T) {
	_, err := diffstore.ParseRange("a..b..c")
	require.Error(t, err)
	var rangeErr *diffstore.RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, diffstore.RangeErrorMultiple, rangeErr.Kind)
}
