package frontmatter

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aluiziolira/go-wp2mdx/config"
	"github.com/aluiziolira/go-wp2mdx/media"
	"github.com/aluiziolira/go-wp2mdx/models"
	"github.com/aluiziolira/go-wp2mdx/parser"
)

// Groups accepted for the group field.
const (
	GroupPro         = "pro"
	GroupKontra      = "kontra"
	GroupFragezeiten = "fragezeiten"
)

// DefaultGroup is used when a post has no valid beitragsart term.
const DefaultGroup = GroupFragezeiten

// ValidGroup reports whether g is one of the accepted groups.
func ValidGroup(g string) bool {
	switch g {
	case GroupPro, GroupKontra, GroupFragezeiten:
		return true
	}
	return false
}

// HeroImage is the rendered cover image.
type HeroImage struct {
	Src string `yaml:"src"`
	Alt string `yaml:"alt"`
}

type field struct {
	key       string
	required  []string
	mandatory bool
	extract   func(*models.Post) (any, error)
}

func (f field) Key() string                            { return f.key }
func (f field) RequiredFields() []string               { return f.required }
func (f field) Extract(post *models.Post) (any, error) { return f.extract(post) }
func (f field) Mandatory() bool                        { return f.mandatory }

var newlineRuns = regexp.MustCompile(`[\r\n]+`)

// DefaultRegistry returns the extractors for every supported field, bound to
// the formatting options in cfg.
func DefaultRegistry(cfg *config.Config) (*Registry, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, &models.ConversionError{Stage: models.StageConfig, Msg: "resolve timezone", Err: err}
	}
	dates := dateFormatter{loc: loc, layout: cfg.CustomDateFormat, withTime: cfg.IncludeTimeWithDate}
	published := func(post *models.Post) (any, error) {
		t, err := PublishDate(post)
		if err != nil {
			return nil, err
		}
		return dates.format(t), nil
	}

	exclusions := make(map[string]struct{}, len(cfg.CategoryExclusions))
	for _, c := range cfg.CategoryExclusions {
		exclusions[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
	}

	return NewRegistry(
		field{key: "id", required: []string{"post_id"}, extract: func(post *models.Post) (any, error) {
			id, ok := models.First(post.Data.PostID)
			if !ok {
				return nil, missing(post, "id", "post_id")
			}
			if n, err := strconv.Atoi(id); err == nil {
				return n, nil
			}
			return id, nil
		}},
		field{key: "title", required: []string{"title"}, extract: func(post *models.Post) (any, error) {
			title, ok := models.First(post.Data.Title)
			if !ok {
				return nil, missing(post, "title", "title")
			}
			return title, nil
		}},
		field{key: "author", required: []string{"creator"}, extract: func(post *models.Post) (any, error) {
			return mapAuthor(cfg, models.FirstOr(post.Data.Creator, "")), nil
		}},
		field{key: "date", required: []string{"pubDate"}, extract: published},
		field{key: "pubDatetime", required: []string{"pubDate"}, mandatory: true, extract: published},
		field{key: "modDatetime", required: []string{"pubDate"}, extract: published},
		field{key: "slug", required: []string{"post_name"}, extract: func(post *models.Post) (any, error) {
			if post.Meta.Slug == "" {
				return nil, missing(post, "slug", "post_name")
			}
			return post.Meta.Slug, nil
		}},
		field{key: "excerpt", required: []string{"excerpt"}, extract: func(post *models.Post) (any, error) {
			excerpt, ok := models.First(post.Data.Excerpt)
			if !ok {
				return nil, missing(post, "excerpt", "excerpt")
			}
			excerpt = strings.TrimSpace(newlineRuns.ReplaceAllString(excerpt, " "))
			if excerpt == "" {
				return nil, nil
			}
			return excerpt, nil
		}},
		field{key: "categories", required: []string{"category"}, extract: func(post *models.Post) (any, error) {
			var out []string
			seen := make(map[string]struct{})
			for _, raw := range post.Data.Terms("category") {
				name := decodeTerm(raw)
				if _, skip := exclusions[strings.ToLower(name)]; skip {
					continue
				}
				if mapped, ok := cfg.CategoryMapping[strings.ToLower(name)]; ok {
					name = mapped
				}
				if _, dup := seen[name]; dup {
					continue
				}
				seen[name] = struct{}{}
				out = append(out, name)
			}
			if len(out) == 0 && len(cfg.FallbackCategories) > 0 {
				out = append(out, cfg.FallbackCategories...)
			}
			return out, nil
		}},
		field{key: "taxonomy", required: []string{"category"}, extract: func(post *models.Post) (any, error) {
			terms := post.Data.Terms("beitragsart")
			if len(terms) == 0 {
				return DefaultGroup, nil
			}
			return MapGroup(decodeTerm(terms[0])), nil
		}},
		field{key: "tags", required: []string{"category"}, extract: func(post *models.Post) (any, error) {
			tags := []string{}
			for _, raw := range post.Data.Terms("post_tag") {
				tags = append(tags, decodeTerm(raw))
			}
			return tags, nil
		}},
		field{key: "coverImage", required: []string{"postmeta", "title"}, extract: func(post *models.Post) (any, error) {
			if post.Meta.CoverImage == "" {
				return nil, nil
			}
			return HeroImage{
				Src: "./" + media.ImageDir + "/" + media.NormalizeFilename(post.Meta.CoverImage),
				Alt: models.FirstOr(post.Data.Title, ""),
			}, nil
		}},
		field{key: "featured", required: []string{"is_sticky"}, extract: func(post *models.Post) (any, error) {
			sticky, ok := models.First(post.Data.IsSticky)
			return ok && strings.TrimSpace(sticky) != "0" && strings.TrimSpace(sticky) != "", nil
		}},
		field{key: "type", required: []string{"post_type"}, extract: func(post *models.Post) (any, error) {
			t, ok := models.First(post.Data.PostType)
			if !ok {
				return nil, missing(post, "type", "post_type")
			}
			return t, nil
		}},
		field{key: "draft", required: []string{"status"}, extract: func(post *models.Post) (any, error) {
			return models.FirstOr(post.Data.Status, "") == "draft", nil
		}},
	), nil
}

// PublishDate parses the post's pubDate.
func PublishDate(post *models.Post) (time.Time, error) {
	raw, ok := models.First(post.Data.PubDate)
	if !ok || strings.TrimSpace(raw) == "" {
		return time.Time{}, &models.ConversionError{
			Stage:  models.StageTransform,
			PostID: post.Meta.ID,
			Field:  "pubDatetime",
			Msg:    "missing publication date",
		}
	}
	t, err := parser.ParseDate(raw)
	if err != nil {
		return time.Time{}, &models.ConversionError{
			Stage:  models.StageTransform,
			PostID: post.Meta.ID,
			Field:  "pubDatetime",
			Msg:    "invalid publication date",
			Err:    err,
		}
	}
	return t, nil
}

// MapGroup maps a beitragsart term to a group, defaulting to fragezeiten.
func MapGroup(term string) string {
	g := strings.ToLower(strings.TrimSpace(term))
	if ValidGroup(g) {
		return g
	}
	return DefaultGroup
}

func mapAuthor(cfg *config.Config, creator string) string {
	creator = strings.TrimSpace(creator)
	if creator == "" {
		return cfg.DefaultAuthor
	}
	if mapped, ok := cfg.AuthorMapping[creator]; ok {
		return mapped
	}
	return strings.ReplaceAll(strings.ToLower(creator), " ", "-")
}

func decodeTerm(raw string) string {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		decoded = raw
	}
	return strings.TrimSpace(html.UnescapeString(decoded))
}

func missing(post *models.Post, key, raw string) error {
	return &models.ConversionError{
		Stage:  models.StageTransform,
		PostID: post.Meta.ID,
		Field:  key,
		Msg:    fmt.Sprintf("missing raw field %s", raw),
	}
}

type dateFormatter struct {
	loc      *time.Location
	layout   string
	withTime bool
}

func (d dateFormatter) format(t time.Time) string {
	t = t.In(d.loc)
	switch {
	case d.layout != "":
		return t.Format(d.layout)
	case d.withTime:
		return t.Format(time.RFC3339)
	default:
		return t.Format("2006-01-02")
	}
}
