package picker_test

import (
	"testing"

	"github.com/Wryz/bible-modules/internal/picker"
	"github.com/Wryz/bible-modules/internal/scripture"
	"github.com/Wryz/bible-modules/internal/scripture/scripturetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPick_RespectsExclusion(t *testing.T) {
	idx := scripturetest.Index(t)
	p := picker.New(idx, 42)
	scope := idx.BooksFrom("Matthew")

	for i := 0; i < 1000; i++ {
		v, ok := p.Pick(picker.Options{
			Exclude:     map[string]struct{}{"Matthew 1:1": {}},
			Scope:       scope,
			MaxAttempts: 50,
		})
		require.True(t, ok)
		require.NotEqual(t, "Matthew 1:1", v.Reference)
		assert.Contains(t, scope, v.Book)
	}
}

func TestPick_StaysInScope(t *testing.T) {
	idx := scripturetest.Index(t)
	p := picker.New(idx, 7)

	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		v, ok := p.Pick(picker.Options{Scope: []string{"Matthew"}})
		require.True(t, ok)
		require.Equal(t, "Matthew", v.Book)
		seen[v.Reference] = true
	}
	assert.Len(t, seen, 3, "every verse of the scope is reachable")
}

func TestPick_EmptyScope(t *testing.T) {
	idx := scripturetest.Index(t)
	p := picker.New(idx, 1)

	_, ok := p.Pick(picker.Options{})
	assert.False(t, ok)

	_, ok = p.Pick(picker.Options{Scope: []string{"Hezekiah", "Tobit"}})
	assert.False(t, ok)
}

func TestPick_FallbackIgnoresExclusion(t *testing.T) {
	idx := scripturetest.Index(t)
	p := picker.New(idx, 3)

	v, ok := p.Pick(picker.Options{
		Exclude: map[string]struct{}{"1 Samuel 2:3": {}},
		Scope:   []string{"Hezekiah", "1 Samuel"},
	})
	require.True(t, ok)
	assert.Equal(t, "1 Samuel 2:3", v.Reference)
}

func TestPick_StrictGivesUp(t *testing.T) {
	idx := scripturetest.Index(t)
	p := picker.New(idx, 3)

	_, ok := p.Pick(picker.Options{
		Exclude: map[string]struct{}{"1 Samuel 2:3": {}},
		Scope:   []string{"1 Samuel"},
		Strict:  true,
	})
	assert.False(t, ok)
}

func TestPick_ExclusionAppliesToExpandedReference(t *testing.T) {
	idx := scripturetest.Index(t)
	exp := scripture.NewExpander(idx)
	p := picker.New(idx, 11)

	for i := 0; i < 200; i++ {
		v, ok := p.Pick(picker.Options{
			Exclude: map[string]struct{}{"John 3:14-16": {}},
			Scope:   []string{"John"},
			Expand:  exp.Expand,
			Strict:  true,
		})
		if !ok {
			continue
		}
		assert.NotEqual(t, "John 3:14-16", v.Reference)
	}
}

func TestPickDistinctFrom(t *testing.T) {
	idx := scripturetest.Index(t)
	p := picker.New(idx, 5)
	scope := idx.BooksFrom("Matthew")

	current, _ := idx.Verse("Matthew", 5, 3)
	for i := 0; i < 200; i++ {
		v, ok := p.PickDistinctFrom(&current, []string{"Matthew"}, nil)
		require.True(t, ok)
		assert.Equal(t, "Matthew", v.Book)
	}

	v, ok := p.PickDistinctFrom(nil, scope, nil)
	require.True(t, ok)
	assert.Contains(t, scope, v.Book)
}

func TestPickDistinctFrom_SingleVerseScopeStillReturns(t *testing.T) {
	idx := scripturetest.Index(t)
	p := picker.New(idx, 5)

	current, _ := idx.Verse("1 Samuel", 2, 3)
	v, ok := p.PickDistinctFrom(&current, []string{"1 Samuel"}, nil)
	require.True(t, ok)
	assert.Equal(t, current.Reference, v.Reference)
}

func TestPick_SameSeedSameSequence(t *testing.T) {
	idx := scripturetest.Index(t)
	a := picker.New(idx, 99)
	b := picker.New(idx, 99)
	scope := idx.AllBooks()

	for i := 0; i < 50; i++ {
		va, _ := a.Pick(picker.Options{Scope: scope})
		vb, _ := b.Pick(picker.Options{Scope: scope})
		require.Equal(t, va, vb)
	}
}
