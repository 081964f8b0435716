package article

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// MinParagraphLength is the trimmed length a paragraph must exceed to be
// kept. Shorter paragraphs are usually navigation, captions or bylines.
const MinParagraphLength = 40

// Extractor turns a raw HTML page into plain article text.
type Extractor interface {
	Extract(html []byte) (string, error)
}

// ParagraphExtractor keeps every <p> whose trimmed text is longer than
// MinParagraphLength code points, newline-joined in document order.
type ParagraphExtractor struct{}

func (ParagraphExtractor) Extract(html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("create document from reader: %w", err)
	}

	var paragraphs []string

	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if utf8.RuneCountInString(text) <= MinParagraphLength {
			return
		}

		paragraphs = append(paragraphs, text)
	})

	return strings.Join(paragraphs, "\n"), nil
}
