package translator

import (
	"regexp"
	"strings"

	"github.com/aluiziolira/go-wp2mdx/media"
)

const (
	breakAttr    = "data-wp2mdx-break"
	moreAttr     = "data-wp2mdx-more"
	languageAttr = "data-wp-language"
	alignAttr    = "data-wp2mdx-align"

	breakPlaceholder = `<div ` + breakAttr + `></div>`
	morePlaceholder  = `<div ` + moreAttr + `></div>`

	// MoreMarker is the MDX form of the WordPress read-more separator.
	MoreMarker = "{/* more */}"
)

var (
	preBlockPattern  = regexp.MustCompile(`(?is)<pre\b.*?</pre>`)
	blankRunPattern  = regexp.MustCompile(`\r?\n(?:[ \t]*\r?\n)+`)
	morePattern      = regexp.MustCompile(`(?i)<!--\s*more\b.*?-->`)
	codeBlockPattern = regexp.MustCompile(`(?s)<!--\s*wp:[\w/-]*code\s+(\{.*?\})\s*/?-->\s*<pre\b`)
	languagePattern  = regexp.MustCompile(`"language"\s*:\s*"([^"]+)"`)
	imgTagPattern    = regexp.MustCompile(`(?i)<img\b[^>]*>`)
	srcAttrPattern   = regexp.MustCompile(`(?i)(\ssrc\s*=\s*)(["'])([^"']*)(["'])`)
)

func preprocess(html string, rewriteImages bool) string {
	html = hoistCodeLanguage(html)
	html = morePattern.ReplaceAllString(html, morePlaceholder)
	if rewriteImages {
		html = rewriteImageSources(html)
	}
	return replaceBlankRuns(html)
}

// replaceBlankRuns turns runs of blank lines outside <pre> into placeholder
// blocks so the paragraph break survives conversion.
func replaceBlankRuns(html string) string {
	var b strings.Builder
	last := 0
	for _, loc := range preBlockPattern.FindAllStringIndex(html, -1) {
		b.WriteString(blankRunPattern.ReplaceAllString(html[last:loc[0]], breakPlaceholder))
		b.WriteString(html[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(blankRunPattern.ReplaceAllString(html[last:], breakPlaceholder))
	return b.String()
}

func hoistCodeLanguage(html string) string {
	return codeBlockPattern.ReplaceAllStringFunc(html, func(match string) string {
		sub := codeBlockPattern.FindStringSubmatch(match)
		lang := languagePattern.FindStringSubmatch(sub[1])
		if lang == nil {
			return match
		}
		return match[:len(match)-len("<pre")] + `<pre ` + languageAttr + `="` + lang[1] + `"`
	})
}

func rewriteImageSources(html string) string {
	return imgTagPattern.ReplaceAllStringFunc(html, func(tag string) string {
		return srcAttrPattern.ReplaceAllStringFunc(tag, func(attr string) string {
			m := srcAttrPattern.FindStringSubmatch(attr)
			if !media.IsImageURL(m[3]) {
				return attr
			}
			return m[1] + m[2] + media.LocalPath(m[3]) + m[4]
		})
	})
}
