package scripture

import (
	"slices"
	"strings"
)

// Index answers read-only queries over a Corpus. Unresolved lookups return
// empty results rather than errors; absence is the common case for typed
// searches and boundary navigation.
type Index struct {
	corpus *Corpus
	names  []string
	lookup map[string]int // lower-cased name or abbreviation -> book position
	books  []bookEntry
	size   int
}

type bookEntry struct {
	chapterPos map[int]int
	versePos   []map[int]int
}

// position addresses a verse by slice offsets rather than numbers.
type position struct {
	book, chapter, verse int
}

func NewIndex(c *Corpus) *Index {
	idx := &Index{
		corpus: c,
		names:  make([]string, 0, len(c.Books)),
		lookup: make(map[string]int, len(c.Books)*2),
		books:  make([]bookEntry, len(c.Books)),
	}

	for bi, book := range c.Books {
		idx.names = append(idx.names, book.Name)
		idx.lookup[strings.ToLower(book.Name)] = bi
		if book.Abbreviation != "" {
			if _, taken := idx.lookup[strings.ToLower(book.Abbreviation)]; !taken {
				idx.lookup[strings.ToLower(book.Abbreviation)] = bi
			}
		}

		entry := bookEntry{
			chapterPos: make(map[int]int, len(book.Chapters)),
			versePos:   make([]map[int]int, len(book.Chapters)),
		}
		for ci, ch := range book.Chapters {
			entry.chapterPos[ch.Number] = ci
			entry.versePos[ci] = make(map[int]int, len(ch.Verses))
			for vi, v := range ch.Verses {
				entry.versePos[ci][v.Number] = vi
			}
			idx.size += len(ch.Verses)
		}
		idx.books[bi] = entry
	}

	return idx
}

// Size is the number of verses in the corpus.
func (idx *Index) Size() int {
	return idx.size
}

// FindBook matches a book name or abbreviation, ignoring case. The result
// is a copy; the indexed corpus stays untouched.
func (idx *Index) FindBook(nameOrAbbrev string) *Book {
	bi, ok := idx.bookPos(nameOrAbbrev)
	if !ok {
		return nil
	}

	src := idx.corpus.Books[bi]
	book := Book{Name: src.Name, Abbreviation: src.Abbreviation, Chapters: make([]Chapter, len(src.Chapters))}
	for i, ch := range src.Chapters {
		book.Chapters[i] = Chapter{Number: ch.Number, Verses: slices.Clone(ch.Verses)}
	}
	return &book
}

func (idx *Index) bookPos(nameOrAbbrev string) (int, bool) {
	bi, ok := idx.lookup[strings.ToLower(strings.TrimSpace(nameOrAbbrev))]
	return bi, ok
}

// AllBooks returns book names in canonical corpus order.
func (idx *Index) AllBooks() []string {
	out := make([]string, len(idx.names))
	copy(out, idx.names)
	return out
}

// BooksFrom returns the books from name through the end of the corpus. An
// unknown name yields the full list.
func (idx *Index) BooksFrom(name string) []string {
	bi, ok := idx.bookPos(name)
	if !ok {
		return idx.AllBooks()
	}
	out := make([]string, len(idx.names)-bi)
	copy(out, idx.names[bi:])
	return out
}

func (idx *Index) Chapters(book string) []int {
	bi, ok := idx.bookPos(book)
	if !ok {
		return []int{}
	}
	chapters := idx.corpus.Books[bi].Chapters
	out := make([]int, 0, len(chapters))
	for _, ch := range chapters {
		out = append(out, ch.Number)
	}
	return out
}

func (idx *Index) VersesInChapter(book string, chapter int) []Verse {
	bi, ok := idx.bookPos(book)
	if !ok {
		return []Verse{}
	}
	ci, ok := idx.books[bi].chapterPos[chapter]
	if !ok {
		return []Verse{}
	}

	verses := idx.corpus.Books[bi].Chapters[ci].Verses
	out := make([]Verse, 0, len(verses))
	for vi := range verses {
		out = append(out, idx.at(position{bi, ci, vi}))
	}
	return out
}

// Verse resolves a single verse by book, chapter and verse number.
func (idx *Index) Verse(book string, chapter, number int) (Verse, bool) {
	p, ok := idx.locate(book, chapter, number)
	if !ok {
		return Verse{}, false
	}
	return idx.at(p), true
}

// Previous walks one verse back, crossing chapter and book boundaries.
// It reports false for the first verse of the corpus.
func (idx *Index) Previous(v Verse) (Verse, bool) {
	p, ok := idx.locate(v.Book, v.Chapter, v.Number)
	if !ok {
		return Verse{}, false
	}
	p, ok = idx.prev(p)
	if !ok {
		return Verse{}, false
	}
	return idx.at(p), true
}

// Next walks one verse forward. It reports false for the last verse of the
// corpus.
func (idx *Index) Next(v Verse) (Verse, bool) {
	p, ok := idx.locate(v.Book, v.Chapter, v.Number)
	if !ok {
		return Verse{}, false
	}
	p, ok = idx.next(p)
	if !ok {
		return Verse{}, false
	}
	return idx.at(p), true
}

// Search does a case-insensitive substring scan in corpus order. Without a
// scope book the book name is matched too.
func (idx *Index) Search(query, scopeBook string) []Verse {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []Verse{}
	}

	first, last := 0, len(idx.corpus.Books)
	scoped := strings.TrimSpace(scopeBook) != ""
	if scoped {
		bi, ok := idx.bookPos(scopeBook)
		if !ok {
			return []Verse{}
		}
		first, last = bi, bi+1
	}

	results := []Verse{}
	for bi := first; bi < last; bi++ {
		book := idx.corpus.Books[bi]
		bookHit := !scoped && strings.Contains(strings.ToLower(book.Name), q)
		for ci, ch := range book.Chapters {
			for vi, v := range ch.Verses {
				if bookHit || strings.Contains(strings.ToLower(v.Text), q) {
					results = append(results, idx.at(position{bi, ci, vi}))
				}
			}
		}
	}
	return results
}

func (idx *Index) locate(book string, chapter, number int) (position, bool) {
	bi, ok := idx.bookPos(book)
	if !ok {
		return position{}, false
	}
	ci, ok := idx.books[bi].chapterPos[chapter]
	if !ok {
		return position{}, false
	}
	vi, ok := idx.books[bi].versePos[ci][number]
	if !ok {
		return position{}, false
	}
	return position{bi, ci, vi}, true
}

func (idx *Index) at(p position) Verse {
	book := idx.corpus.Books[p.book]
	ch := book.Chapters[p.chapter]
	v := ch.Verses[p.verse]
	return NewVerse(book.Name, ch.Number, v.Number, v.Text)
}

func (idx *Index) prev(p position) (position, bool) {
	if p.verse > 0 {
		p.verse--
		return p, true
	}
	for {
		p.chapter--
		for p.chapter < 0 {
			p.book--
			if p.book < 0 {
				return position{}, false
			}
			p.chapter = len(idx.corpus.Books[p.book].Chapters) - 1
		}
		if n := len(idx.corpus.Books[p.book].Chapters[p.chapter].Verses); n > 0 {
			p.verse = n - 1
			return p, true
		}
	}
}

func (idx *Index) next(p position) (position, bool) {
	chapters := idx.corpus.Books[p.book].Chapters
	if p.verse+1 < len(chapters[p.chapter].Verses) {
		p.verse++
		return p, true
	}
	for {
		p.chapter++
		for p.chapter >= len(idx.corpus.Books[p.book].Chapters) {
			p.book++
			if p.book >= len(idx.corpus.Books) {
				return position{}, false
			}
			p.chapter = 0
		}
		if len(idx.corpus.Books[p.book].Chapters[p.chapter].Verses) > 0 {
			p.verse = 0
			return p, true
		}
	}
}
