package nickname_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-homepage/nickname"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchSubstrings(t *testing.T) {
	m := nickname.New([]string{"tree", "house", "ouse", "zebra"})

	matches := m.Match("treehouse42")
	assert.Equal(t, []string{"house", "ouse", "tree"}, matches)
}

func TestMatchCaseInsensitive(t *testing.T) {
	m := nickname.New([]string{"tree"})

	assert.Equal(t, []string{"tree"}, m.Match("TREEhugger"))
	assert.Equal(t, []string{"tree"}, m.Match("TrEe"))
}

func TestMatchNoHits(t *testing.T) {
	m := nickname.New([]string{"tree", "house"})

	assert.Empty(t, m.Match("xyz123"))
}

func TestNewDropsShortWords(t *testing.T) {
	m := nickname.New([]string{"a", "an", "the", "axe"})

	assert.Equal(t, 2, m.Len())
	assert.Empty(t, m.Match("an"))
	assert.Equal(t, []string{"axe"}, m.Match("battleaxe"))
}

func TestNewDeduplicates(t *testing.T) {
	m := nickname.New([]string{"tree", "Tree", "TREE"})
	assert.Equal(t, 1, m.Len())
}

func TestLoadReader(t *testing.T) {
	dict := "a\ntree\nhouse\nok\nzebra\n"
	m, err := nickname.Load(strings.NewReader(dict))
	require.NoError(t, err)

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, []string{"tree"}, m.Match("palmtree"))
}
