package completion

import (
	"math"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/odvcencio/zcode/lsp"
)

// Match quality tiers.
const (
	qualityFuzzy = 1.0 + iota
	qualitySubstring
	qualityFoldPrefix
	qualityPrefix
)

// Candidate is a ranked completion item.
type Candidate struct {
	Item  lsp.CompletionItem
	Score float64
	// Matched holds byte offsets into Item.FilterKey() matched by the
	// prefix.
	Matched []int
}

type filterKeys []lsp.CompletionItem

func (k filterKeys) String(i int) string { return k[i].FilterKey() }
func (k filterKeys) Len() int            { return len(k) }

// serverOrder ranks items by sortText, falling back to the label, and
// returns a score in (0, 1] per input index.
func serverOrder(items []lsp.CompletionItem) []float64 {
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	key := func(i int) string {
		if items[i].SortText != "" {
			return items[i].SortText
		}
		return items[i].Label
	}
	sort.SliceStable(idx, func(a, b int) bool { return key(idx[a]) < key(idx[b]) })
	scores := make([]float64, len(items))
	n := float64(len(items))
	for rank, i := range idx {
		scores[i] = 1 - float64(rank)/n
	}
	return scores
}

func quality(key, prefix string) float64 {
	switch {
	case strings.HasPrefix(key, prefix):
		return qualityPrefix
	case len(key) >= len(prefix) && strings.EqualFold(key[:len(prefix)], prefix):
		return qualityFoldPrefix
	case strings.Contains(strings.ToLower(key), strings.ToLower(prefix)):
		return qualitySubstring
	}
	return qualityFuzzy
}

// Rank filters items by prefix and orders them by match quality, server
// order and how often each label was accepted before in lang.
func Rank(items []lsp.CompletionItem, prefix, lang string, r *Ranker, now int64) []Candidate {
	if len(items) == 0 {
		return nil
	}
	order := serverOrder(items)
	score := func(i int, q float64) float64 {
		s := 2*q + order[i]
		if r != nil {
			s += math.Log1p(r.Weight(lang, items[i].Label, now))
		}
		if items[i].Preselect {
			s += 0.5
		}
		return s
	}

	var out []Candidate
	if prefix == "" {
		out = make([]Candidate, len(items))
		for i, it := range items {
			out[i] = Candidate{Item: it, Score: score(i, qualityPrefix)}
		}
	} else {
		matches := fuzzy.FindFrom(prefix, filterKeys(items))
		out = make([]Candidate, 0, len(matches))
		for _, m := range matches {
			out = append(out, Candidate{
				Item:    items[m.Index],
				Score:   score(m.Index, quality(m.Str, prefix)),
				Matched: m.MatchedIndexes,
			})
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		return out[a].Item.Label < out[b].Item.Label
	})
	return out
}
