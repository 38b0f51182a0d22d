package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"a", "b", 1},
		{"ab", "abc", 1},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"RED", "red", 3},
		{"GREEN", "GREEN", 0},
		{"héllo", "hello", 1}, // counted in runes, not bytes
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.expected, Levenshtein(tt.b, tt.a))
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 1.0, Similarity("blue", "blue"), 1e-9)
	assert.InDelta(t, 0.75, Similarity("blue", "blux"), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
}

func TestNormalizeIdent(t *testing.T) {
	for _, in := range []string{"RED_ALERT", "redAlert", "red-alert", "Red Alert", "red.alert"} {
		assert.Equal(t, "redalert", NormalizeIdent(in), in)
	}
}

func TestRank(t *testing.T) {
	ranked := Rank("gren", []string{"RED", "GREEN", "BLUE"})
	require.Len(t, ranked, 3)
	assert.Equal(t, "GREEN", ranked[0].Name)
	assert.False(t, ranked[0].Exact)

	ranked = Rank("red", []string{"BLUE", "RED"})
	assert.Equal(t, []string{"RED", "BLUE"}, ranked.Names())
	assert.True(t, ranked.Best().Exact)
	assert.Len(t, ranked.Top(1), 1)
	assert.Len(t, ranked.Top(5), 2)
}

func TestRank_TieBreakByName(t *testing.T) {
	ranked := Rank("zz", []string{"bb", "aa"})
	assert.Equal(t, []string{"aa", "bb"}, ranked.Names())
}

func TestSuggest(t *testing.T) {
	name, ok := Suggest("BLEU", []string{"RED", "GREEN", "BLUE"}, DefaultThreshold)
	require.True(t, ok)
	assert.Equal(t, "BLUE", name)

	_, ok = Suggest("PURPLE", []string{"RED", "GREEN", "BLUE"}, DefaultThreshold)
	assert.False(t, ok)

	_, ok = Suggest("X", nil, 0)
	assert.False(t, ok)
}

func BenchmarkRank(b *testing.B) {
	names := []string{"Created", "Updated", "Deleted", "Archived", "Pending", "Active"}
	for b.Loop() {
		Rank("updatd", names)
	}
}
