package completion

import (
	"fmt"
	"math"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func TestRankerDecay(t *testing.T) {
	r := NewRanker()
	r.Record("go", "Println", 0)
	r.Record("go", "Println", 0)
	if got := r.Weight("go", "Println", 0); got != 2 {
		t.Fatalf("Weight = %v, want 2", got)
	}
	half := r.HalfLife.Milliseconds()
	if got := r.Weight("go", "Println", half); math.Abs(got-1) > 1e-9 {
		t.Fatalf("Weight after half-life = %v, want 1", got)
	}
	r.Record("go", "Println", half)
	if got := r.Weight("go", "Println", half); math.Abs(got-2) > 1e-9 {
		t.Fatalf("Weight after record = %v, want 2", got)
	}
	if got := r.Weight("rust", "Println", half); got != 0 {
		t.Fatalf("other language Weight = %v, want 0", got)
	}
}

func TestRankerBoundedPerLanguage(t *testing.T) {
	r := NewRanker()
	for i := 0; i < MaxEntries+40; i++ {
		r.Record("go", fmt.Sprintf("id%04d", i), 1000)
	}
	r.Record("py", "x", 1000)
	require.Equal(t, MaxEntries, r.Len("go"))
	require.Equal(t, 1, r.Len("py"))
	// Equal weights evict the smallest labels first.
	require.Zero(t, r.Weight("go", "id0000", 1000))
	require.Equal(t, 1.0, r.Weight("go", fmt.Sprintf("id%04d", MaxEntries+39), 1000))
}

func TestRankerCleanup(t *testing.T) {
	r := NewRanker()
	r.Record("go", "old", 0)
	r.Record("go", "new", 10*r.HalfLife.Milliseconds())
	require.Equal(t, 1, r.Cleanup(10*r.HalfLife.Milliseconds()))
	require.Equal(t, 1, r.Len("go"))
}

func TestRankerSnapshot(t *testing.T) {
	r := NewRanker()
	r.Record("go", "Println", 5)
	r.Record("c", "printf", 7)
	data, err := json.Marshal(r)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sub", "ranker.json")
	require.NoError(t, WriteSnapshot(path, data))
	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, r.Weight("go", "Println", 5), loaded.Weight("go", "Println", 5))
	require.Equal(t, r.Weight("c", "printf", 7), loaded.Weight("c", "printf", 7))

	missing, err := Load(filepath.Join(t.TempDir(), "none.json"))
	require.NoError(t, err)
	require.Zero(t, missing.Len("go"))

	var bad Ranker
	require.Error(t, json.Unmarshal([]byte(`{"version":9}`), &bad))
}
