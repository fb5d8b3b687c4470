package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePattern_WildcardMatchesAnySubstring(t *testing.T) {
	re := compilePattern("user:42:*")
	require.NotNil(t, re)

	assert.True(t, re.MatchString("user:42:categories"))
	assert.True(t, re.MatchString("user:42:summary:2024-01-01..2024-01-31"))
	assert.True(t, re.MatchString("user:42:"))
	assert.False(t, re.MatchString("user:421:categories"))
	assert.False(t, re.MatchString("user:4:categories"))
}

func TestCompilePattern_IsAnchored(t *testing.T) {
	re := compilePattern("user:42")
	require.NotNil(t, re)

	assert.True(t, re.MatchString("user:42"))
	assert.False(t, re.MatchString("xuser:42"))
	assert.False(t, re.MatchString("user:42:categories"))
}

func TestCompilePattern_EscapesMetacharacters(t *testing.T) {
	re := compilePattern("a.b[0]+c")
	require.NotNil(t, re)

	assert.True(t, re.MatchString("a.b[0]+c"))
	assert.False(t, re.MatchString("aXb[0]+c"))
	assert.False(t, re.MatchString("a.b0+c"))
}

func TestCompilePattern_MultipleWildcards(t *testing.T) {
	re := compilePattern("user:*:summary:*")
	require.NotNil(t, re)

	assert.True(t, re.MatchString("user:42:summary:2024"))
	assert.False(t, re.MatchString("user:42:categories:2024"))
}
