// Package parser reads WordPress WXR exports into raw item records.
package parser

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aluiziolira/go-wp2mdx/models"
	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/mmcdole/gofeed/rss"
)

// ParseFile opens path and parses it as a WXR document.
func ParseFile(path string) ([]*models.RawItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, models.NewError(models.StageParse, fmt.Sprintf("open %s", path), err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a WXR document. A document without rss.channel.item entries
// is rejected because nothing downstream is meaningful without them.
func Parse(r io.Reader) ([]*models.RawItem, error) {
	feed, err := (&rss.Parser{}).Parse(r)
	if err != nil {
		return nil, models.NewError(models.StageParse, "decode WXR document", err)
	}
	if len(feed.Items) == 0 {
		return nil, models.NewError(models.StageParse, "missing rss.channel.item", nil)
	}

	items := make([]*models.RawItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if it == nil {
			continue
		}
		items = append(items, convertItem(it))
	}

	slog.Debug("parsed WXR document",
		slog.String("channel", feed.Title),
		slog.Int("items", len(items)),
	)
	return items, nil
}

func convertItem(it *rss.Item) *models.RawItem {
	wp := it.Extensions["wp"]

	item := &models.RawItem{
		Title:         optional(it.Title),
		Link:          optional(it.Link),
		PubDate:       optional(it.PubDate),
		Content:       optional(it.Content),
		Creator:       values(it.Extensions["dc"]["creator"]),
		Excerpt:       values(it.Extensions["excerpt"]["encoded"]),
		PostID:        values(wp["post_id"]),
		PostName:      values(wp["post_name"]),
		PostType:      values(wp["post_type"]),
		Status:        values(wp["status"]),
		PostParent:    values(wp["post_parent"]),
		IsSticky:      values(wp["is_sticky"]),
		AttachmentURL: values(wp["attachment_url"]),
		PostDate:      values(wp["post_date"]),
	}

	// content:encoded is mapped to Item.Content; older gofeed builds leave it
	// in the extension map instead.
	if len(item.Content) == 0 {
		item.Content = values(it.Extensions["content"]["encoded"])
	}

	for _, c := range it.Categories {
		if c == nil {
			continue
		}
		item.Categories = append(item.Categories, models.Term{Domain: c.Domain, Value: c.Value})
	}

	for _, meta := range wp["postmeta"] {
		key := childValue(meta, "meta_key")
		if key == "" {
			continue
		}
		item.PostMeta = append(item.PostMeta, models.Meta{Key: key, Value: childValue(meta, "meta_value")})
	}

	return item
}

func optional(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}

func values(exts []ext.Extension) []string {
	if len(exts) == 0 {
		return nil
	}
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		out = append(out, e.Value)
	}
	return out
}

func childValue(e ext.Extension, name string) string {
	children := e.Children[name]
	if len(children) == 0 {
		return ""
	}
	return children[0].Value
}
