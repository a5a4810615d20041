package services

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// lineBreakTags end a visual line when closed
var lineBreakTags = map[string]bool{
	"p":   true,
	"div": true,
	"br":  true,
	"tr":  true,
	"li":  true,
}

// skippedTags have their contents dropped entirely
var skippedTags = map[string]bool{
	"script": true,
	"style":  true,
}

var (
	entityReplacer = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&#39;", "'",
		"&quot;", `"`,
	)

	// footnote markers such as [1], [ 12 ] and their closing form [/1]
	footnotePattern = regexp.MustCompile(`\[\s*/?\s*\d+\s*\]`)

	horizontalSpace = regexp.MustCompile(`[^\S\n]+`)
)

// NormalizeText turns raw page markup into visually ordered text lines.
// It never fails: a page without the expected structure simply yields no matches downstream.
func NormalizeText(raw string) string {
	z := html.NewTokenizer(strings.NewReader(raw))

	var b strings.Builder
	b.Grow(len(raw) / 2)
	skipDepth := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return tidyLines(b.String())

		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skippedTags[tag] && tt == html.StartTagToken {
				skipDepth++
				continue
			}
			if tag == "br" {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skippedTags[tag] {
				if skipDepth > 0 {
					skipDepth--
				}
				continue
			}
			if lineBreakTags[tag] {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			b.WriteString(entityReplacer.Replace(string(z.Raw())))
		}
	}
}

// tidyLines removes footnote noise, collapses whitespace, trims every line
// and folds runs of blank lines into one
func tidyLines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = footnotePattern.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(horizontalSpace.ReplaceAllString(line, " "))
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}

	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
