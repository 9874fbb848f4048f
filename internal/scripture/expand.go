package scripture

import (
	"strings"
	"unicode/utf8"
)

// Expander grows a verse into a quotation that starts with a capital letter
// and ends on terminal punctuation.
type Expander struct {
	idx *Index
}

func NewExpander(idx *Index) *Expander {
	return &Expander{idx: idx}
}

// Expand returns v unchanged when it already reads as a complete sentence.
// Otherwise neighbouring verses are pulled in until both ends are satisfied
// or the corpus runs out. Growth is capped at the corpus size.
//
// A passage produced by an earlier Expand is returned as is.
func (e *Expander) Expand(v Verse) Verse {
	if isPassage(v) {
		return v
	}

	window := []Verse{v}
	startDone, endDone := false, false
	budget := e.idx.Size()

	for budget > 0 {
		changed := false

		if !startDone && !startsSentence(window[0].Text) {
			if prev, ok := e.idx.Previous(window[0]); ok {
				window = append([]Verse{prev}, window...)
				changed = true
				budget--
			} else {
				startDone = true
			}
		}

		if budget > 0 && !endDone && !endsSentence(window[len(window)-1].Text) {
			if next, ok := e.idx.Next(window[len(window)-1]); ok {
				window = append(window, next)
				changed = true
				budget--
			} else {
				endDone = true
			}
		}

		if !changed {
			break
		}
	}

	if len(window) == 1 {
		return v
	}

	texts := make([]string, 0, len(window))
	for _, w := range window {
		texts = append(texts, strings.TrimSpace(w.Text))
	}

	first, last := window[0], window[len(window)-1]
	return Verse{
		Book:      first.Book,
		Chapter:   first.Chapter,
		Number:    first.Number,
		Text:      strings.Join(texts, " "),
		Reference: FormatRange(first, last),
	}
}

func isPassage(v Verse) bool {
	return v.Reference != FormatReference(v.Book, v.Chapter, v.Number)
}

func startsSentence(text string) bool {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(text))
	return r >= 'A' && r <= 'Z'
}

func endsSentence(text string) bool {
	r, _ := utf8.DecodeLastRuneInString(strings.TrimSpace(text))
	switch r {
	case '.', '!', '?', '"', '”':
		return true
	}
	return false
}
