// Package collector selects posts and images from parsed WXR items and links
// them together.
package collector

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/aluiziolira/go-wp2mdx/config"
	"github.com/aluiziolira/go-wp2mdx/models"
	"github.com/goliatone/go-slug"
)

// Translator converts a post body to Markdown.
type Translator interface {
	Translate(postID, html string) (string, error)
}

var excludedTypes = map[string]struct{}{
	"attachment":          {},
	"revision":            {},
	"nav_menu_item":       {},
	"custom_css":          {},
	"customize_changeset": {},
}

var skippedStatuses = map[string]struct{}{
	"trash":      {},
	"draft":      {},
	"auto-draft": {},
}

// GetPostTypes returns the post types selected for conversion, in order of
// first appearance when other types are included.
func GetPostTypes(items []*models.RawItem, cfg *config.Config) []string {
	if !cfg.IncludeOtherTypes {
		if cfg.IncludePages {
			return []string{"post", "page"}
		}
		return []string{"post"}
	}

	seen := make(map[string]struct{})
	var types []string
	for _, item := range items {
		t := item.Type()
		if t == "" {
			continue
		}
		if _, skip := excludedTypes[t]; skip {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		types = append(types, t)
	}
	return types
}

// BuildPosts builds a Post envelope for every publishable item of the given
// types. Content is left empty; see TranslatePosts.
func BuildPosts(items []*models.RawItem, types []string, cfg *config.Config) []*models.Post {
	var posts []*models.Post
	ids := make(map[string]struct{})

	for _, postType := range types {
		count := 0
		for _, item := range items {
			if item.Type() != postType {
				continue
			}
			status := models.FirstOr(item.Status, "")
			if _, skip := skippedStatuses[status]; skip && !(status == "draft" && cfg.IncludeDrafts) {
				continue
			}

			id := item.ID()
			if id == "" {
				slog.Warn("skipping item without post id",
					slog.String("type", postType),
					slog.String("title", models.FirstOr(item.Title, "")),
				)
				continue
			}
			if _, dup := ids[id]; dup {
				slog.Warn("skipping duplicate post id", slog.String("id", id))
				continue
			}
			ids[id] = struct{}{}

			cover, _ := item.Meta("_thumbnail_id")
			posts = append(posts, &models.Post{
				Data: item,
				Meta: models.PostMeta{
					ID:           id,
					Slug:         postSlug(item),
					CoverImageID: strings.TrimSpace(cover),
					Type:         postType,
					ImageURLs:    []string{},
				},
				Frontmatter: models.NewFrontmatter(),
			})
			count++
		}
		slog.Info("collected posts", slog.String("type", postType), slog.Int("count", count))
	}

	slog.Info("collected posts total", slog.Int("count", len(posts)))
	return posts
}

// TranslatePosts fills Content for every post. A failing body degrades to an
// empty string so the rest of the corpus is still converted.
func TranslatePosts(posts []*models.Post, tr Translator) {
	for _, post := range posts {
		body := models.FirstOr(post.Data.Content, "")
		content, err := tr.Translate(post.Meta.ID, body)
		if err != nil {
			slog.Error("translate post body",
				slog.String("id", post.Meta.ID),
				slog.Any("error", err),
			)
			content = ""
		}
		post.Content = content
	}
}

// CollectPosts selects and translates posts in one step.
func CollectPosts(items []*models.RawItem, types []string, cfg *config.Config, tr Translator) []*models.Post {
	posts := BuildPosts(items, types, cfg)
	TranslatePosts(posts, tr)
	return posts
}

func postSlug(item *models.RawItem) string {
	raw := strings.TrimSpace(models.FirstOr(item.PostName, ""))
	if raw == "" {
		generated, err := slug.Normalize(models.FirstOr(item.Title, ""))
		if err != nil || generated == "" {
			generated = item.ID()
		}
		slog.Debug("generated slug from title", slog.String("id", item.ID()), slog.String("slug", generated))
		return generated
	}

	decoded, err := url.PathUnescape(raw)
	if err != nil {
		slog.Warn("slug decode failed, keeping encoded slug",
			slog.String("id", item.ID()),
			slog.String("slug", raw),
			slog.Any("error", err),
		)
		return raw
	}
	return decoded
}
