package pipeline

import (
	"context"
	"log/slog"

	"github.com/aluiziolira/go-wp2mdx/frontmatter"
	"github.com/aluiziolira/go-wp2mdx/models"
)

// WriteMarkdown writes one .mdx file per post: frontmatter block followed by
// the translated body. A second post resolving to an already claimed path is
// skipped.
func (p *Pipeline) WriteMarkdown(ctx context.Context, posts []*models.Post) models.Tally {
	var tally models.Tally
	claimed := make(map[string]string, len(posts))

	payloads := make([]payload, 0, len(posts))
	for _, post := range posts {
		dest, err := GetPostPath(post, p.cfg)
		if err != nil {
			tally.Failed++
			p.record(KindMarkdown, post.Meta.Slug, post.Meta.ID, err)
			continue
		}
		if owner, dup := claimed[dest]; dup {
			tally.Skipped++
			slog.Warn("output path already claimed",
				slog.String("path", dest),
				slog.String("id", post.Meta.ID),
				slog.String("owner", owner),
			)
			continue
		}
		claimed[dest] = post.Meta.ID

		payloads = append(payloads, payload{
			path:   dest,
			postID: post.Meta.ID,
			run: func(context.Context) error {
				return writePost(dest, post)
			},
		})
	}
	return tally.Add(p.dispatch(ctx, KindMarkdown, payloads, p.cfg.MarkdownWriteDelay))
}

func writePost(dest string, post *models.Post) error {
	fm := post.Frontmatter
	if fm == nil {
		fm = models.NewFrontmatter()
	}
	doc, err := frontmatter.Document(fm, post.Content)
	if err != nil {
		return &models.ConversionError{
			Stage:  models.StageTransform,
			PostID: post.Meta.ID,
			Msg:    "render frontmatter",
			Err:    err,
		}
	}
	if err := writeFileAtomic(dest, []byte(doc)); err != nil {
		return &models.ConversionError{
			Stage:  models.StageFilesystem,
			PostID: post.Meta.ID,
			Msg:    "write markdown",
			Err:    err,
		}
	}
	return nil
}
