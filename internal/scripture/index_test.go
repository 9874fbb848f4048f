package scripture_test

import (
	"strings"
	"testing"

	"github.com/Wryz/bible-modules/internal/scripture"
	"github.com/Wryz/bible-modules/internal/scripture/scripturetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCorpus_RejectsOutOfOrderChapters(t *testing.T) {
	raw := `{"books":[{"name":"Jude","abbreviation":"Jud","chapters":[
		{"chapterNumber":2,"verses":[{"verseNumber":1,"text":"A."}]},
		{"chapterNumber":1,"verses":[{"verseNumber":1,"text":"B."}]}]}]}`

	_, err := scripture.LoadCorpus(strings.NewReader(raw))
	require.ErrorIs(t, err, scripture.ErrInvalidCorpus)
}

func TestLoadCorpus_RejectsOutOfOrderVerses(t *testing.T) {
	raw := `{"books":[{"name":"Jude","chapters":[
		{"chapterNumber":1,"verses":[{"verseNumber":2,"text":"A."},{"verseNumber":2,"text":"B."}]}]}]}`

	_, err := scripture.LoadCorpus(strings.NewReader(raw))
	require.ErrorIs(t, err, scripture.ErrInvalidCorpus)
}

func TestLoadCorpus_RejectsEmptyText(t *testing.T) {
	raw := `{"books":[{"name":"Jude","chapters":[
		{"chapterNumber":1,"verses":[{"verseNumber":1,"text":"   "}]}]}]}`

	_, err := scripture.LoadCorpus(strings.NewReader(raw))
	require.ErrorIs(t, err, scripture.ErrInvalidCorpus)
}

func TestLoadCorpus_BadJSON(t *testing.T) {
	_, err := scripture.LoadCorpus(strings.NewReader("{"))
	require.Error(t, err)
}

func TestFindBook(t *testing.T) {
	idx := scripturetest.Index(t)

	tests := []struct {
		query string
		want  string
	}{
		{"John", "John"},
		{"john", "John"},
		{"JN", "John"},
		{"1sam", "1 Samuel"},
		{"1 samuel", "1 Samuel"},
		{"  Genesis ", "Genesis"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			book := idx.FindBook(tt.query)
			require.NotNil(t, book)
			assert.Equal(t, tt.want, book.Name)
		})
	}

	assert.Nil(t, idx.FindBook("Hezekiah"))
}

func TestFindBook_ReturnsCopy(t *testing.T) {
	idx := scripturetest.Index(t)

	book := idx.FindBook("John")
	require.NotNil(t, book)
	book.Name = "Jonah"
	book.Chapters[0].Number = 99
	book.Chapters[0].Verses[0].Text = "rewritten"

	again := idx.FindBook("John")
	require.NotNil(t, again)
	assert.Equal(t, "John", again.Name)
	assert.Equal(t, 3, again.Chapters[0].Number)

	v, ok := idx.Verse("John", 3, 14)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(v.Text, "Just as Moses"))
	assert.Equal(t, []int{3, 4}, idx.Chapters("John"))
}

func TestAllBooks_CorpusOrder(t *testing.T) {
	idx := scripturetest.Index(t)

	assert.Equal(t,
		[]string{"Genesis", "1 Samuel", "Malachi", "Matthew", "John", "Revelation"},
		idx.AllBooks())
}

func TestBooksFrom(t *testing.T) {
	idx := scripturetest.Index(t)

	assert.Equal(t, []string{"Matthew", "John", "Revelation"}, idx.BooksFrom("Matthew"))
	assert.Equal(t, []string{"Revelation"}, idx.BooksFrom("rev"))
	assert.Equal(t, idx.AllBooks(), idx.BooksFrom("Hezekiah"))
}

func TestChapters(t *testing.T) {
	idx := scripturetest.Index(t)

	assert.Equal(t, []int{1, 5}, idx.Chapters("Matthew"))
	assert.Equal(t, []int{2}, idx.Chapters("1 Samuel"))
	assert.Empty(t, idx.Chapters("Hezekiah"))
}

func TestVersesInChapter(t *testing.T) {
	idx := scripturetest.Index(t)

	verses := idx.VersesInChapter("gen", 1)
	require.Len(t, verses, 3)
	assert.Equal(t, "Genesis 1:1", verses[0].Reference)
	assert.Equal(t, "Genesis 1:3", verses[2].Reference)

	assert.Empty(t, idx.VersesInChapter("Genesis", 9))
	assert.Empty(t, idx.VersesInChapter("Hezekiah", 1))
}

func TestVerse(t *testing.T) {
	idx := scripturetest.Index(t)

	v, ok := idx.Verse("Jn", 3, 16)
	require.True(t, ok)
	assert.Equal(t, "John", v.Book)
	assert.Equal(t, "John 3:16", v.Reference)
	assert.True(t, strings.HasPrefix(v.Text, "for God so loved"))

	_, ok = idx.Verse("John", 3, 99)
	assert.False(t, ok)
	_, ok = idx.Verse("John", 99, 1)
	assert.False(t, ok)
	_, ok = idx.Verse("Hezekiah", 1, 1)
	assert.False(t, ok)
}

func TestNavigation_Boundaries(t *testing.T) {
	idx := scripturetest.Index(t)

	first, ok := idx.Verse("Genesis", 1, 1)
	require.True(t, ok)
	_, ok = idx.Previous(first)
	assert.False(t, ok, "first verse of the corpus has no predecessor")

	last, ok := idx.Verse("Revelation", 22, 21)
	require.True(t, ok)
	_, ok = idx.Next(last)
	assert.False(t, ok, "last verse of the corpus has no successor")
}

func TestNavigation_CrossesChaptersAndBooks(t *testing.T) {
	idx := scripturetest.Index(t)

	v, _ := idx.Verse("Genesis", 1, 3)
	next, ok := idx.Next(v)
	require.True(t, ok)
	assert.Equal(t, "Genesis 2:1", next.Reference)

	next, ok = idx.Next(next)
	require.True(t, ok)
	assert.Equal(t, "1 Samuel 2:3", next.Reference)

	v, _ = idx.Verse("Matthew", 1, 1)
	prev, ok := idx.Previous(v)
	require.True(t, ok)
	assert.Equal(t, "Malachi 4:6", prev.Reference)
}

func TestNavigation_RoundTrip(t *testing.T) {
	idx := scripturetest.Index(t)

	for _, book := range idx.AllBooks() {
		for _, ch := range idx.Chapters(book) {
			for _, v := range idx.VersesInChapter(book, ch) {
				if next, ok := idx.Next(v); ok {
					back, ok := idx.Previous(next)
					require.True(t, ok)
					assert.Equal(t, v, back)
				}
				if prev, ok := idx.Previous(v); ok {
					fwd, ok := idx.Next(prev)
					require.True(t, ok)
					assert.Equal(t, v, fwd)
				}
			}
		}
	}
}

func TestNavigation_UnknownVerse(t *testing.T) {
	idx := scripturetest.Index(t)

	_, ok := idx.Next(scripture.NewVerse("John", 3, 99, "x"))
	assert.False(t, ok)
	_, ok = idx.Previous(scripture.NewVerse("Hezekiah", 1, 1, "x"))
	assert.False(t, ok)
}

func TestSearch(t *testing.T) {
	idx := scripturetest.Index(t)

	results := idx.Search("ETERNAL LIFE", "")
	refs := references(results)
	assert.Equal(t, []string{"John 3:15", "John 3:16", "John 3:36"}, refs)

	results = idx.Search("blessed", "Matthew")
	assert.Equal(t, []string{"Matthew 5:3", "Matthew 5:4"}, references(results))
}

func TestSearch_MatchesBookNameWhenUnscoped(t *testing.T) {
	idx := scripturetest.Index(t)

	results := idx.Search("malachi", "")
	assert.Equal(t, []string{"Malachi 4:5", "Malachi 4:6"}, references(results))

	assert.Empty(t, idx.Search("malachi", "Malachi"))
}

func TestSearch_EmptyOrUnknownScope(t *testing.T) {
	idx := scripturetest.Index(t)

	assert.Empty(t, idx.Search("  ", ""))
	assert.Empty(t, idx.Search("light", "Hezekiah"))
}

func TestSize(t *testing.T) {
	idx := scripturetest.Index(t)
	assert.Equal(t, 19, idx.Size())
}

func references(verses []scripture.Verse) []string {
	out := make([]string, 0, len(verses))
	for _, v := range verses {
		out = append(out, v.Reference)
	}
	return out
}
