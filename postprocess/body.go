package postprocess

import (
	"html"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aluiziolira/go-wp2mdx/media"
)

var (
	markdownImage = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)((?:\s+"[^"]*")?)\)`)

	mdxComment    = regexp.MustCompile(`\{/\*.*?\*/\}`)
	markdownLink  = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	htmlTag       = regexp.MustCompile(`<[^>]+>`)
	fencedCode    = regexp.MustCompile("(?s)```.*?```")
	markdownNoise = regexp.MustCompile("[#*_`>|~]+")
	whitespace    = regexp.MustCompile(`\s+`)
)

// rewriteImageRefs points Markdown image references in body at
// images/<base>. Raw HTML, such as embedded tweets, is left alone.
func rewriteImageRefs(body string) string {
	return markdownImage.ReplaceAllStringFunc(body, func(m string) string {
		parts := markdownImage.FindStringSubmatch(m)
		if !media.IsImageURL(parts[2]) {
			return m
		}
		return "![" + parts[1] + "](" + media.LocalPath(parts[2]) + parts[3] + ")"
	})
}

// Summarize strips markup from body and returns at most limit characters of
// its text. Truncated text ends in an ellipsis.
func Summarize(body string, limit int) string {
	text := fencedCode.ReplaceAllString(body, " ")
	text = mdxComment.ReplaceAllString(text, " ")
	text = markdownImage.ReplaceAllString(text, " ")
	text = markdownLink.ReplaceAllString(text, "$1")
	text = htmlTag.ReplaceAllString(text, " ")
	text = markdownNoise.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)
	text = strings.TrimSpace(whitespace.ReplaceAllString(text, " "))

	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit])) + "…"
}

type domainRewriter struct {
	from []string
	to   string
}

func newDomainRewriter(oldDomain, newDomain string) *domainRewriter {
	if oldDomain == "" || newDomain == "" {
		return nil
	}
	u, err := url.Parse(oldDomain)
	if err != nil || u.Host == "" {
		return nil
	}
	return &domainRewriter{
		from: []string{"https://" + u.Host, "http://" + u.Host},
		to:   strings.TrimRight(newDomain, "/"),
	}
}

func (d *domainRewriter) rewrite(body string) string {
	if d == nil {
		return body
	}
	for _, from := range d.from {
		body = strings.ReplaceAll(body, from, d.to)
	}
	return body
}
