// Package picker draws pseudo-random verses from a book scope while trying
// to avoid a set of recently used references.
package picker

import (
	"math/rand/v2"
	"sync"

	"github.com/Wryz/bible-modules/internal/scripture"
)

const (
	// DefaultMaxAttempts bounds the exclusion-respecting draws per Pick.
	DefaultMaxAttempts = 10
	// DistinctAttempts is the smaller budget used when only the current
	// verse has to be avoided.
	DistinctAttempts = 5
)

type Options struct {
	// Exclude holds references the pick should avoid.
	Exclude map[string]struct{}
	// Scope lists the eligible books, usually Index.BooksFrom("Matthew").
	Scope       []string
	MaxAttempts int
	// Expand, when set, is applied to each draw before the exclusion check
	// so that excluded references are compared as they will be displayed.
	Expand func(scripture.Verse) scripture.Verse
	// Strict disables the unconditional fallback draw.
	Strict bool
}

// Picker is safe for concurrent use.
type Picker struct {
	idx *scripture.Index

	mu  sync.Mutex
	rng *rand.Rand
}

func New(idx *scripture.Index, seed uint64) *Picker {
	return &Picker{
		idx: idx,
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Pick draws book, chapter and verse uniformly, retrying while the result is
// excluded. Once MaxAttempts draws are spent it falls back to one draw that
// ignores the exclusion set: freshness is traded for always having a verse.
// It reports false only when the scope holds no verse at all, or when a
// strict pick runs out of attempts.
func (p *Picker) Pick(opts Options) (scripture.Verse, bool) {
	if len(opts.Scope) == 0 {
		return scripture.Verse{}, false
	}

	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	for range attempts {
		v, ok := p.draw(opts.Scope)
		if !ok {
			continue
		}
		v = expand(opts, v)
		if _, excluded := opts.Exclude[v.Reference]; excluded {
			continue
		}
		return v, true
	}

	if opts.Strict {
		return scripture.Verse{}, false
	}

	v, ok := p.fallback(opts.Scope)
	if !ok {
		return scripture.Verse{}, false
	}
	return expand(opts, v), true
}

// PickDistinctFrom picks a verse whose reference differs from current.
func (p *Picker) PickDistinctFrom(current *scripture.Verse, scope []string, expandFn func(scripture.Verse) scripture.Verse) (scripture.Verse, bool) {
	exclude := map[string]struct{}{}
	if current != nil {
		exclude[current.Reference] = struct{}{}
	}
	return p.Pick(Options{
		Exclude:     exclude,
		Scope:       scope,
		MaxAttempts: DistinctAttempts,
		Expand:      expandFn,
	})
}

func (p *Picker) draw(scope []string) (scripture.Verse, bool) {
	book := scope[p.intN(len(scope))]
	chapters := p.idx.Chapters(book)
	if len(chapters) == 0 {
		return scripture.Verse{}, false
	}
	verses := p.idx.VersesInChapter(book, chapters[p.intN(len(chapters))])
	if len(verses) == 0 {
		return scripture.Verse{}, false
	}
	return verses[p.intN(len(verses))], true
}

// fallback draws from the non-empty part of the scope only, so it succeeds
// whenever any book in scope has a verse.
func (p *Picker) fallback(scope []string) (scripture.Verse, bool) {
	type chapterRef struct {
		book    string
		chapter int
	}
	byBook := make(map[string][]chapterRef)
	var books []string
	for _, book := range scope {
		if _, seen := byBook[book]; seen {
			continue
		}
		var filled []chapterRef
		for _, ch := range p.idx.Chapters(book) {
			if len(p.idx.VersesInChapter(book, ch)) > 0 {
				filled = append(filled, chapterRef{book, ch})
			}
		}
		byBook[book] = filled
		if len(filled) > 0 {
			books = append(books, book)
		}
	}
	if len(books) == 0 {
		return scripture.Verse{}, false
	}

	chapters := byBook[books[p.intN(len(books))]]
	pick := chapters[p.intN(len(chapters))]
	verses := p.idx.VersesInChapter(pick.book, pick.chapter)
	return verses[p.intN(len(verses))], true
}

func (p *Picker) intN(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(n)
}

func expand(opts Options, v scripture.Verse) scripture.Verse {
	if opts.Expand == nil {
		return v
	}
	return opts.Expand(v)
}
