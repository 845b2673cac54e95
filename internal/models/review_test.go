package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewSource_Valid(t *testing.T) {
	for _, s := range []ReviewSource{ReviewSourceCLI, ReviewSourceAPI, ReviewSourceMCP} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, ReviewSource("").Valid())
	assert.False(t, ReviewSource("fax").Valid())
	assert.False(t, ReviewSource("CLI").Valid())
}

func TestParseSourceFilter(t *testing.T) {
	src, err := ParseSourceFilter("")
	require.NoError(t, err)
	assert.Equal(t, ReviewSource(""), src)

	src, err = ParseSourceFilter("mcp")
	require.NoError(t, err)
	assert.Equal(t, ReviewSourceMCP, src)

	_, err = ParseSourceFilter("bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid source "bogus"`)
}
