package collector

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/aluiziolira/go-wp2mdx/media"
	"github.com/aluiziolira/go-wp2mdx/models"
)

var imgSrcPattern = regexp.MustCompile(`(?i)<img\b[^>]*?\ssrc\s*=\s*["']([^"']+)["']`)

// CollectAttachedImages returns the image attachments in items.
func CollectAttachedImages(items []*models.RawItem) []*models.Image {
	var images []*models.Image
	for _, item := range items {
		if item.Type() != "attachment" {
			continue
		}
		rawURL, ok := models.First(item.AttachmentURL)
		if !ok || rawURL == "" {
			slog.Warn("attachment without url", slog.String("id", item.ID()))
			continue
		}
		if !media.IsImageURL(rawURL) {
			continue
		}
		id := item.ID()
		parent, hasParent := models.First(item.PostParent)
		if id == "" || !hasParent {
			slog.Warn("attachment missing id or parent", slog.String("url", rawURL))
			continue
		}
		images = append(images, &models.Image{ID: id, PostID: parent, URL: rawURL})
	}
	slog.Info("collected attached images", slog.Int("count", len(images)))
	return images
}

// CollectScrapedImages scans the bodies of posts of the given types for <img>
// sources and resolves them against the post link.
func CollectScrapedImages(items []*models.RawItem, types []string) []*models.Image {
	selected := make(map[string]struct{}, len(types))
	for _, t := range types {
		selected[t] = struct{}{}
	}

	var images []*models.Image
	for _, item := range items {
		if _, ok := selected[item.Type()]; !ok {
			continue
		}
		body, ok := models.First(item.Content)
		if !ok || body == "" {
			continue
		}
		link := models.FirstOr(item.Link, "")

		emitted := make(map[string]struct{})
		for _, m := range imgSrcPattern.FindAllStringSubmatch(body, -1) {
			src := strings.TrimSpace(m[1])
			if !media.IsImageURL(src) {
				continue
			}
			resolved, err := resolveURL(link, src)
			if err != nil {
				slog.Warn("skipping malformed image url",
					slog.String("post", item.ID()),
					slog.String("src", src),
					slog.Any("error", err),
				)
				continue
			}
			if _, dup := emitted[resolved]; dup {
				continue
			}
			emitted[resolved] = struct{}{}
			images = append(images, &models.Image{ID: models.ScrapedImageID, PostID: item.ID(), URL: resolved})
		}
	}
	slog.Info("collected scraped images", slog.Int("count", len(images)))
	return images
}

func resolveURL(base, ref string) (string, error) {
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if refURL.IsAbs() {
		if refURL.Host == "" {
			return "", fmt.Errorf("absolute url without host")
		}
		return refURL.String(), nil
	}
	if base == "" {
		return "", fmt.Errorf("relative url without post link")
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("post link: %w", err)
	}
	if !baseURL.IsAbs() {
		return "", fmt.Errorf("post link %q is not absolute", base)
	}
	return baseURL.ResolveReference(refURL).String(), nil
}
