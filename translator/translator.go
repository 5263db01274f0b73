// Package translator converts WordPress post bodies to Markdown.
package translator

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-wp2mdx/media"
	"github.com/aluiziolira/go-wp2mdx/models"
)

// Options configures a Translator.
type Options struct {
	// RewriteImageSrc points <img> sources at images/<base filename>. It is
	// enabled when scraped images are saved locally.
	RewriteImageSrc bool
	// Dimensions resolves image sizes for alignment. May be nil.
	Dimensions media.DimensionLookup
}

// Translator converts HTML to Markdown with WordPress-specific rules. One
// instance is used per run; it owns the run's AlignmentState.
type Translator struct {
	opts      Options
	converter *md.Converter

	mu    sync.Mutex
	align AlignmentState
}

// New builds a Translator.
func New(opts Options) *Translator {
	t := &Translator{opts: opts}
	t.converter = md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx",
		HorizontalRule:   "---",
		BulletListMarker: "-",
		CodeBlockStyle:   "fenced",
		Fence:            "```",
		EmDelimiter:      "_",
		StrongDelimiter:  "**",
		LinkStyle:        "inlined",
	})
	t.converter.AddRules(rules()...)
	t.converter.Before(t.assignAlignment)
	return t
}

// Translate converts one post body. An empty body yields an empty result.
// Conversion failures are returned as a ConversionError carrying postID.
func (t *Translator) Translate(postID, html string) (out string, err error) {
	if strings.TrimSpace(html) == "" {
		slog.Debug("post has no body content", slog.String("id", postID))
		return "", nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = &models.ConversionError{
				Stage:  models.StageTransform,
				PostID: postID,
				Msg:    "convert HTML to markdown",
				Err:    fmt.Errorf("panic: %v", r),
			}
		}
	}()

	markdown, convErr := t.converter.ConvertString(preprocess(html, t.opts.RewriteImageSrc))
	if convErr != nil {
		return "", &models.ConversionError{
			Stage:  models.StageTransform,
			PostID: postID,
			Msg:    "convert HTML to markdown",
			Err:    convErr,
		}
	}
	return strings.TrimSpace(markdown), nil
}

// assignAlignment stores the marker of every rendered image in document order
// before any rule runs.
func (t *Translator) assignAlignment(doc *goquery.Selection) {
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		if img.ParentsFiltered("blockquote, p, div").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return isEmbed(s)
		}).Length() > 0 {
			return
		}
		// figureRule renders only the first image of a figure
		if fig := img.ParentsFiltered("figure").First(); fig.Length() > 0 && !fig.Find("img").First().IsSelection(img) {
			return
		}
		img.SetAttr(alignAttr, t.marker(imageFilename(img)))
	})
}

func (t *Translator) marker(filename string) string {
	var (
		dims  media.Dimensions
		known bool
	)
	if t.opts.Dimensions != nil {
		dims, known = t.opts.Dimensions.Lookup(filename)
	}
	return t.align.Next(dims, known)
}
