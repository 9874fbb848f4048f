package scripture

import (
	"regexp"
	"strconv"
	"strings"
)

// referencePattern matches "John 3:16", "Song of Solomon 2:4" and
// "1 Samuel 2:3" style references.
var referencePattern = regexp.MustCompile(`^(\d+\s+)?([A-Za-z]+(?:\s+[A-Za-z]+)*)\s+(\d+):(\d+)`)

// ParseReference resolves a textual reference against the index.
func (idx *Index) ParseReference(ref string) (Verse, bool) {
	m := referencePattern.FindStringSubmatch(strings.TrimSpace(ref))
	if m == nil {
		return Verse{}, false
	}

	book := m[2]
	if prefix := strings.TrimSpace(m[1]); prefix != "" {
		book = prefix + " " + book
	}

	chapter, err := strconv.Atoi(m[3])
	if err != nil {
		return Verse{}, false
	}
	number, err := strconv.Atoi(m[4])
	if err != nil {
		return Verse{}, false
	}

	return idx.Verse(book, chapter, number)
}

// FormatRange renders the reference of a passage running from first to
// last:
//
//	John 3:16             single verse
//	John 3:14-16          same chapter
//	John 3:36-4:2         same book
//	Malachi 4:6-Matthew 1:1  across books
func FormatRange(first, last Verse) string {
	switch {
	case first.Book != last.Book:
		return first.Reference + "-" + last.Reference
	case first.Chapter != last.Chapter:
		return FormatReference(first.Book, first.Chapter, first.Number) + "-" +
			strconv.Itoa(last.Chapter) + ":" + strconv.Itoa(last.Number)
	case first.Number != last.Number:
		return FormatReference(first.Book, first.Chapter, first.Number) + "-" + strconv.Itoa(last.Number)
	default:
		return first.Reference
	}
}
