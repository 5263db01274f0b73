package collector

import (
	"log/slog"

	"github.com/aluiziolira/go-wp2mdx/media"
	"github.com/aluiziolira/go-wp2mdx/models"
)

// MergeImagesIntoPosts attaches each image to the first post that owns it,
// either directly by post id or as the post's cover image. An image joins at
// most one post. Unmatched images are dropped. It returns the number of
// images that matched.
func MergeImagesIntoPosts(images []*models.Image, posts []*models.Post) int {
	matched := 0
	for _, image := range images {
		for _, post := range posts {
			owner := image.PostID == post.Meta.ID
			cover := post.Meta.CoverImageID != "" && image.ID == post.Meta.CoverImageID
			if !owner && !cover {
				continue
			}
			post.Meta.AddImageURL(image.URL)
			if cover && post.Meta.CoverImage == "" {
				post.Meta.CoverImage = media.FilenameFromURL(image.URL)
			}
			matched++
			break
		}
	}
	slog.Debug("merged images into posts",
		slog.Int("images", len(images)),
		slog.Int("matched", matched),
		slog.Int("discarded", len(images)-matched),
	)
	return matched
}
