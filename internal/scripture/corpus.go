package scripture

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var ErrInvalidCorpus = errors.New("invalid corpus")

// LoadCorpusFile reads a corpus JSON file such as bible-niv.json.
func LoadCorpusFile(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	defer f.Close()

	return LoadCorpus(f)
}

// LoadCorpus decodes and validates a corpus. Chapters must be ascending
// within a book and verses ascending within a chapter.
func LoadCorpus(r io.Reader) (*Corpus, error) {
	var c Corpus
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse corpus JSON: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Corpus) validate() error {
	seen := make(map[string]bool, len(c.Books))
	for _, book := range c.Books {
		if strings.TrimSpace(book.Name) == "" {
			return fmt.Errorf("%w: book without a name", ErrInvalidCorpus)
		}
		key := strings.ToLower(book.Name)
		if seen[key] {
			return fmt.Errorf("%w: duplicate book %q", ErrInvalidCorpus, book.Name)
		}
		seen[key] = true

		prevChapter := 0
		for _, ch := range book.Chapters {
			if ch.Number <= prevChapter {
				return fmt.Errorf("%w: %s chapter %d out of order", ErrInvalidCorpus, book.Name, ch.Number)
			}
			prevChapter = ch.Number

			prevVerse := 0
			for _, v := range ch.Verses {
				if v.Number <= prevVerse {
					return fmt.Errorf("%w: %s %d:%d out of order", ErrInvalidCorpus, book.Name, ch.Number, v.Number)
				}
				if strings.TrimSpace(v.Text) == "" {
					return fmt.Errorf("%w: %s %d:%d has no text", ErrInvalidCorpus, book.Name, ch.Number, v.Number)
				}
				prevVerse = v.Number
			}
		}
	}
	return nil
}
