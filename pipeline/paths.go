package pipeline

import (
	"path/filepath"

	"github.com/aluiziolira/go-wp2mdx/config"
	"github.com/aluiziolira/go-wp2mdx/frontmatter"
	"github.com/aluiziolira/go-wp2mdx/media"
	"github.com/aluiziolira/go-wp2mdx/models"
)

// GetPostPath returns the markdown destination of post:
//
//	<output>/[type]/[yyyy]/[mm]/[yyyy-mm-dd-]<slug>/index.mdx
//
// or <slug>.mdx when post folders are disabled. The date is the publication
// date in the configured timezone.
func GetPostPath(post *models.Post, cfg *config.Config) (string, error) {
	date := post.Date
	if date.IsZero() {
		d, err := frontmatter.PublishDate(post)
		if err != nil {
			return "", err
		}
		date = d
	}
	loc, err := cfg.Location()
	if err != nil {
		return "", models.NewError(models.StageConfig, "resolve timezone", err)
	}
	date = date.In(loc)

	if post.Meta.Slug == "" {
		return "", &models.ConversionError{
			Stage:  models.StageFilesystem,
			PostID: post.Meta.ID,
			Field:  "slug",
			Msg:    "cannot build output path without a slug",
		}
	}

	dir := cfg.OutputDir
	if cfg.TypeFolders && post.Meta.Type != "" {
		dir = filepath.Join(dir, post.Meta.Type)
	}
	if cfg.YearFolders {
		dir = filepath.Join(dir, date.Format("2006"))
	}
	if cfg.MonthFolders {
		dir = filepath.Join(dir, date.Format("01"))
	}

	name := post.Meta.Slug
	if cfg.PrefixDate {
		name = date.Format("2006-01-02") + "-" + name
	}
	if cfg.PostFolders {
		return filepath.Join(dir, name, "index.mdx"), nil
	}
	return filepath.Join(dir, name+".mdx"), nil
}

// imagesDir is the directory images referenced by the markdown at postPath
// are stored in.
func imagesDir(postPath string) string {
	return filepath.Join(filepath.Dir(postPath), media.ImageDir)
}
