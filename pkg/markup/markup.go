package markup

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const ExcerptLength = 200

var blockTags = map[string]bool{
	"p": true, "br": true, "div": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// Strip returns the plain text of an HTML fragment. Block elements become
// spaces and runs of whitespace collapse to one.
func Strip(fragment string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))

	var b strings.Builder
	skip := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// io.EOF or a malformed tail; either way keep what was read.
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			if skip == 0 {
				b.Write(tokenizer.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)

			if tag == "script" || tag == "style" {
				skip++
			}

			if blockTags[tag] {
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)

			if (tag == "script" || tag == "style") && skip > 0 {
				skip--
			}

			if blockTags[tag] {
				b.WriteByte(' ')
			}
		}
	}
}

// Excerpt strips markup and truncates to limit runes, cutting at the last
// word boundary and appending an ellipsis.
func Excerpt(fragment string, limit int) string {
	text := Strip(fragment)

	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:limit])

	if idx := strings.LastIndex(cut, " "); idx > limit/2 {
		cut = cut[:idx]
	}

	return strings.TrimRight(cut, " ,.;:") + "…"
}
