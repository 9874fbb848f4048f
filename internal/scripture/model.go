package scripture

import "fmt"

// Corpus is the full Bible text as loaded from disk. It is never mutated
// after LoadCorpus returns.
type Corpus struct {
	Version string `json:"version"`
	Books   []Book `json:"books"`
}

type Book struct {
	Name         string    `json:"name"`
	Abbreviation string    `json:"abbreviation"`
	Chapters     []Chapter `json:"chapters"`
}

type Chapter struct {
	Number int         `json:"chapterNumber"`
	Verses []VerseText `json:"verses"`
}

type VerseText struct {
	Number int    `json:"verseNumber"`
	Text   string `json:"text"`
}

// Verse is a single verse, or a passage produced by the Expander. For a
// passage Book, Chapter and Number point at its first verse and Reference
// carries the full range.
type Verse struct {
	Book      string `json:"book"`
	Chapter   int    `json:"chapter"`
	Number    int    `json:"verseNumber"`
	Text      string `json:"text"`
	Reference string `json:"reference"`
}

func NewVerse(book string, chapter, number int, text string) Verse {
	return Verse{
		Book:      book,
		Chapter:   chapter,
		Number:    number,
		Text:      text,
		Reference: FormatReference(book, chapter, number),
	}
}

// FormatReference renders "Book C:V".
func FormatReference(book string, chapter, number int) string {
	return fmt.Sprintf("%s %d:%d", book, chapter, number)
}
