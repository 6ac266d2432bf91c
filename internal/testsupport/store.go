package testsupport

import (
	"testing"

	"topicsweep/internal/index"
	"topicsweep/internal/store"
)

// MustOpenIndex opens an index.Index for tests and registers cleanup.
func MustOpenIndex(t testing.TB, path string) *index.Index {
	t.Helper()

	idx, err := index.Open(path)
	if err != nil {
		t.Fatalf("index.Open: %v", err)
	}
	t.Cleanup(func() {
		idx.Close()
	})
	return idx
}

// NewStore returns an experiment store rooted in a temp directory.
func NewStore(t testing.TB) *store.Store {
	t.Helper()
	return store.New(t.TempDir())
}
