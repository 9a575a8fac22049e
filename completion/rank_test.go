package completion

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odvcencio/zcode/lsp"
)

func labels(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Item.Label
	}
	return out
}

var printItems = []lsp.CompletionItem{
	{Label: "Println", SortText: "b"},
	{Label: "Printf", SortText: "a"},
	{Label: "print_debug"},
	{Label: "Sprint"},
	{Label: "Errorf"},
}

func TestRankByQualityAndServerOrder(t *testing.T) {
	got := Rank(printItems, "Print", "go", nil, 0)
	require.Equal(t, []string{"Printf", "Println", "print_debug", "Sprint"}, labels(got))
	require.NotEmpty(t, got[0].Matched)
}

func TestRankUsesFrequency(t *testing.T) {
	r := NewRanker()
	for i := 0; i < 5; i++ {
		r.Record("go", "Println", 0)
	}
	got := Rank(printItems, "Print", "go", r, 0)
	require.Equal(t, "Println", got[0].Item.Label)

	// Other languages are unaffected.
	got = Rank(printItems, "Print", "python", r, 0)
	require.Equal(t, "Printf", got[0].Item.Label)
}

func TestRankEmptyPrefixKeepsAll(t *testing.T) {
	got := Rank(printItems, "", "go", nil, 0)
	require.Len(t, got, len(printItems))
	require.Empty(t, Rank(printItems, "zzz", "go", nil, 0))
	require.Nil(t, Rank(nil, "a", "go", nil, 0))
}
