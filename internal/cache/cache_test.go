package cache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codepathfinder/prreview/internal/cache"
	"github.com/codepathfinder/prreview/internal/model"
)

func TestKey_Hash_StableAndScoped(t *testing.T) {
	k1 := cache.Key{PRID: "42", HeadSHA: "abc", ConfigHash: "cfg1", AgentID: "secrets"}
	k2 := cache.Key{PRID: "42", HeadSHA: "abc", ConfigHash: "cfg1", AgentID: "secrets"}
	k3 := cache.Key{PRID: "42", HeadSHA: "def", ConfigHash: "cfg1", AgentID: "secrets"}

	assert.Equal(t, k1.Hash(), k2.Hash())
	assert.NotEqual(t, k1.Hash(), k3.Hash())
}

func TestCache_PutSuccess_ThenGet(t *testing.T) {
	c, err := cache.New(0)
	require.NoError(t, err)

	key := cache.Key{PRID: "1", HeadSHA: "h", ConfigHash: "c", AgentID: "a"}
	c.Put(key, model.AgentSuccess{Findings: []model.Finding{{Message: "x"}}})

	entry, ok := c.Get(key)
	require.True(t, ok)
	assert.Len(t, entry.Result.Findings, 1)
}

func TestCache_PutFailure_NeverStored(t *testing.T) {
	c, err := cache.New(0)
	require.NoError(t, err)

	key := cache.Key{PRID: "1", HeadSHA: "h", ConfigHash: "c", AgentID: "a"}
	c.Put(key, model.AgentFailure{Err: assert.AnError})

	_, ok := c.Get(key)
	assert.False(t, ok)
}

func TestCache_PutSkipped_NeverStored(t *testing.T) {
	c, err := cache.New(0)
	require.NoError(t, err)

	key := cache.Key{PRID: "1", HeadSHA: "h", ConfigHash: "c", AgentID: "a"}
	c.Put(key, model.AgentSkipped{Reason: "budget"})

	_, ok := c.Get(key)
	assert.False(t, ok)
}

func TestCache_Miss_ReturnsFalse(t *testing.T) {
	c, err := cache.New(0)
	require.NoError(t, err)
	_, ok := c.Get(cache.Key{PRID: "x"})
	assert.False(t, ok)
}
