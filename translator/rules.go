package translator

import (
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-wp2mdx/media"
)

var (
	emptyAttrPattern = regexp.MustCompile(`(\s[\w:-]+)=""`)
	whitespace       = regexp.MustCompile(`\s+`)
)

// rules returns the WordPress-specific conversion rules. A rule returning nil
// falls through to the converter's default handling of the tag. The converter
// may call a rule more than once for the same element, so rules keep no state.
func rules() []md.Rule {
	return []md.Rule{
		{
			Filter:      []string{"div"},
			Replacement: placeholderRule,
		},
		{
			Filter:      []string{"blockquote", "p", "div"},
			Replacement: embedRule,
		},
		{
			Filter:      []string{"script", "iframe"},
			Replacement: rawRule,
		},
		{
			Filter:      []string{"figure"},
			Replacement: figureRule,
		},
		{
			Filter:      []string{"figcaption"},
			Replacement: figcaptionRule,
		},
		{
			Filter:      []string{"pre"},
			Replacement: preRule,
		},
		{
			Filter:      []string{"img"},
			Replacement: imageRule,
		},
	}
}

func placeholderRule(_ string, selec *goquery.Selection, _ *md.Options) *string {
	if _, ok := selec.Attr(breakAttr); ok {
		return md.String("\n\n")
	}
	if _, ok := selec.Attr(moreAttr); ok {
		return md.String("\n\n" + MoreMarker + "\n\n")
	}
	return nil
}

func isEmbed(selec *goquery.Selection) bool {
	if goquery.NodeName(selec) == "blockquote" && selec.HasClass("twitter-tweet") {
		return true
	}
	_, hasHash := selec.Attr("data-slug-hash")
	return hasHash && selec.HasClass("codepen")
}

func embedRule(_ string, selec *goquery.Selection, _ *md.Options) *string {
	if !isEmbed(selec) {
		return nil
	}
	html, err := goquery.OuterHtml(selec)
	if err != nil {
		return nil
	}
	return md.String("\n\n" + html + "\n\n")
}

func rawRule(_ string, selec *goquery.Selection, _ *md.Options) *string {
	html, err := goquery.OuterHtml(selec)
	if err != nil {
		return nil
	}
	return md.String("\n\n" + emptyAttrPattern.ReplaceAllString(html, "$1") + "\n\n")
}

func figureRule(content string, selec *goquery.Selection, _ *md.Options) *string {
	img := selec.Find("img").First()
	if img.Length() == 0 {
		return md.String("\n\n<figure>" + strings.TrimSpace(content) + "</figure>\n\n")
	}

	caption := collapse(selec.Find("figcaption").First().Text())
	return md.String("\n\n" + imageMarkdown(img.AttrOr("alt", ""), imageFilename(img), img.AttrOr(alignAttr, "")+caption) + "\n\n")
}

func figcaptionRule(content string, selec *goquery.Selection, _ *md.Options) *string {
	if selec.ParentsFiltered("figure").First().Find("img").Length() > 0 {
		return md.String("")
	}
	return md.String("<figcaption>" + strings.TrimSpace(content) + "</figcaption>")
}

func preRule(_ string, selec *goquery.Selection, opt *md.Options) *string {
	if selec.Find("code").Length() > 0 {
		return nil
	}
	fence := opt.Fence
	if fence == "" {
		fence = "```"
	}
	lang := selec.AttrOr(languageAttr, "")
	code := strings.Trim(selec.Text(), "\n")
	return md.String(fmt.Sprintf("\n\n%s%s\n%s\n%s\n\n", fence, lang, code, fence))
}

func imageRule(_ string, selec *goquery.Selection, _ *md.Options) *string {
	if selec.ParentsFiltered("figure").Length() > 0 {
		// rendered by figureRule
		return md.String("")
	}
	filename := imageFilename(selec)
	title := strings.TrimSpace(selec.AttrOr("title", ""))
	if title == "" {
		title = "Image"
	}
	return md.String(imageMarkdown(selec.AttrOr("alt", ""), filename, selec.AttrOr(alignAttr, "")+title))
}

func imageFilename(img *goquery.Selection) string {
	return media.NormalizeFilename(media.FilenameFromURL(img.AttrOr("src", "")))
}

func imageMarkdown(alt, filename, title string) string {
	alt = strings.NewReplacer("[", `\[`, "]", `\]`).Replace(collapse(alt))
	title = strings.ReplaceAll(title, `"`, `\"`)
	return fmt.Sprintf(`![%s](%s/%s "%s")`, alt, media.ImageDir, filename, title)
}

func collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
