package markdown

import (
	"strings"
	"unicode/utf8"
)

// Taken from https://core.telegram.org/bots/api#markdownv2-style.
const mdV2SpecialChars = `._[](){}#|!+-=*~>` + "`" + `\`

// Inside (...) part of inline link only ')' and '\' must be escaped.
const mdV2LinkURLSpecialChars = `)\`

//nolint:gochecknoglobals // Lookup tables meant to be immutable.
var (
	mdV2Lookup        = lookup(mdV2SpecialChars)
	mdV2LinkURLLookup = lookup(mdV2LinkURLSpecialChars)
)

func EscapeV2(input string) string {
	return escape(input, &mdV2Lookup)
}

func EscapeLinkURLV2(input string) string {
	return escape(input, &mdV2LinkURLLookup)
}

// SplitV2 escapes text and splits it into chunks of at most limit runes,
// preferring line boundaries. An escape sequence is never split.
func SplitV2(text string, limit int) []string {
	if limit <= 0 {
		return nil
	}

	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)

	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
		}
		cur.Reset()
		curLen = 0
	}

	for i, line := range strings.Split(text, "\n") {
		escaped := EscapeV2(line)
		escapedLen := utf8.RuneCountInString(escaped)

		sep := 0
		if i > 0 && cur.Len() > 0 {
			sep = 1
		}

		if curLen+sep+escapedLen <= limit {
			if sep > 0 {
				cur.WriteByte('\n')
			}
			cur.WriteString(escaped)
			curLen += sep + escapedLen

			continue
		}

		flush()

		if escapedLen <= limit {
			cur.WriteString(escaped)
			curLen = escapedLen

			continue
		}

		for _, r := range line {
			piece := EscapeV2(string(r))
			pieceLen := utf8.RuneCountInString(piece)

			if curLen+pieceLen > limit {
				flush()
			}

			cur.WriteString(piece)
			curLen += pieceLen
		}
	}

	flush()

	return chunks
}

func escape(input string, lookup *[256]bool) string {
	charsToEscape := 0

	for i := range len(input) {
		if lookup[input[i]] {
			charsToEscape++
		}
	}
	if charsToEscape == 0 {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) + charsToEscape)

	for i := range len(input) {
		c := input[i]
		if lookup[c] {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}

func lookup(chars string) [256]bool {
	var m [256]bool
	for i := range len(chars) {
		m[chars[i]] = true
	}
	return m
}
