// Package scripturetest loads the small fixture corpus shared by tests.
package scripturetest

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Wryz/bible-modules/internal/scripture"
	"github.com/stretchr/testify/require"
)

// Path returns the location of testdata/corpus.json.
func Path() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "testdata", "corpus.json")
}

// Index loads the fixture corpus and indexes it.
func Index(t testing.TB) *scripture.Index {
	t.Helper()

	corpus, err := scripture.LoadCorpusFile(Path())
	require.NoError(t, err)
	return scripture.NewIndex(corpus)
}
