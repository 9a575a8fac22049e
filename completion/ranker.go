package completion

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	json "github.com/goccy/go-json"
)

const (
	// MaxEntries bounds the frequency table of one language.
	MaxEntries = 512
	// DefaultHalfLife is how long a use takes to lose half its weight.
	DefaultHalfLife = 72 * time.Hour

	cleanupEvery = 128
	minWeight    = 0.05
	snapshotV    = 1
)

type entry struct {
	Weight float64 `json:"w"`
	At     int64   `json:"at"`
}

// Ranker is a per-language table of accepted completions whose weights
// decay exponentially. Times are unix milliseconds supplied by the caller.
type Ranker struct {
	HalfLife time.Duration

	langs   map[string]map[string]entry
	records int
}

// NewRanker returns an empty ranker.
func NewRanker() *Ranker {
	return &Ranker{HalfLife: DefaultHalfLife, langs: make(map[string]map[string]entry)}
}

func (r *Ranker) decayed(e entry, now int64) float64 {
	dt := now - e.At
	half := r.HalfLife.Milliseconds()
	if dt <= 0 || half <= 0 {
		return e.Weight
	}
	return e.Weight * math.Exp2(-float64(dt)/float64(half))
}

// Record notes that label was accepted in lang.
func (r *Ranker) Record(lang, label string, now int64) {
	if label == "" {
		return
	}
	m := r.langs[lang]
	if m == nil {
		m = make(map[string]entry)
		r.langs[lang] = m
	}
	e := m[label]
	m[label] = entry{Weight: r.decayed(e, now) + 1, At: now}
	if len(m) > MaxEntries {
		r.evict(m, now, len(m)-MaxEntries)
	}
	r.records++
	if r.records%cleanupEvery == 0 {
		r.Cleanup(now)
	}
}

// evict drops the n lightest entries. Ties go by label so the result does
// not depend on map order.
func (r *Ranker) evict(m map[string]entry, now int64, n int) {
	type kv struct {
		label  string
		weight float64
	}
	all := make([]kv, 0, len(m))
	for l, e := range m {
		all = append(all, kv{l, r.decayed(e, now)})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].weight != all[j].weight {
			return all[i].weight < all[j].weight
		}
		return all[i].label < all[j].label
	})
	for _, e := range all[:n] {
		delete(m, e.label)
	}
}

// Weight returns the decayed weight of label in lang.
func (r *Ranker) Weight(lang, label string, now int64) float64 {
	e, ok := r.langs[lang][label]
	if !ok {
		return 0
	}
	return r.decayed(e, now)
}

// Len returns the number of entries kept for lang.
func (r *Ranker) Len(lang string) int { return len(r.langs[lang]) }

// Cleanup drops entries whose weight has decayed to almost nothing and
// returns how many were removed.
func (r *Ranker) Cleanup(now int64) int {
	removed := 0
	for lang, m := range r.langs {
		for label, e := range m {
			if r.decayed(e, now) < minWeight {
				delete(m, label)
				removed++
			}
		}
		if len(m) == 0 {
			delete(r.langs, lang)
		}
	}
	return removed
}

type snapshot struct {
	Version    int                         `json:"version"`
	HalfLifeMS int64                       `json:"half_life_ms"`
	Languages  map[string]map[string]entry `json:"languages"`
}

// MarshalJSON encodes the table. Map keys are written sorted.
func (r *Ranker) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshot{Version: snapshotV, HalfLifeMS: r.HalfLife.Milliseconds(), Languages: r.langs})
}

// UnmarshalJSON replaces the table with a snapshot.
func (r *Ranker) UnmarshalJSON(data []byte) error {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s.Version != snapshotV {
		return fmt.Errorf("ranker snapshot version %d not supported", s.Version)
	}
	r.HalfLife = DefaultHalfLife
	if s.HalfLifeMS > 0 {
		r.HalfLife = time.Duration(s.HalfLifeMS) * time.Millisecond
	}
	r.langs = make(map[string]map[string]entry, len(s.Languages))
	for lang, m := range s.Languages {
		if len(m) == 0 {
			continue
		}
		r.langs[lang] = m
		if len(m) > MaxEntries {
			r.evict(m, 0, len(m)-MaxEntries)
		}
	}
	return nil
}

// DefaultPath is where the ranker snapshot lives.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "zcode", "completion-ranker.json"), nil
}

// Load reads a snapshot. A missing file yields an empty ranker.
func Load(path string) (*Ranker, error) {
	r := NewRanker()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return r, err
	}
	if err := json.Unmarshal(data, r); err != nil {
		return NewRanker(), fmt.Errorf("decode %s: %w", path, err)
	}
	return r, nil
}

// WriteSnapshot atomically replaces path with data.
func WriteSnapshot(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".ranker-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
