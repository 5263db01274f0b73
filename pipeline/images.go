package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aluiziolira/go-wp2mdx/config"
	"github.com/aluiziolira/go-wp2mdx/media"
	"github.com/aluiziolira/go-wp2mdx/models"
)

// imageJob is one image file to save: every URL variant of the same base
// filename within one images directory collapses into a single job.
type imageJob struct {
	dest     string
	url      string
	postID   string
	variants int
}

// planImages groups the image URLs of posts by destination. The URL whose
// filename already is the base name wins as the download source; otherwise
// the first variant seen is used.
func planImages(posts []*models.Post, cfg *config.Config) ([]*imageJob, int) {
	var jobs []*imageJob
	byDest := make(map[string]*imageJob)
	unresolved := 0

	for _, post := range posts {
		if len(post.Meta.ImageURLs) == 0 {
			continue
		}
		postPath, err := GetPostPath(post, cfg)
		if err != nil {
			unresolved += len(post.Meta.ImageURLs)
			slog.Warn("cannot place images for post",
				slog.String("id", post.Meta.ID),
				slog.Any("error", err),
			)
			continue
		}
		dir := imagesDir(postPath)

		for _, rawURL := range post.Meta.ImageURLs {
			name := media.FilenameFromURL(rawURL)
			if name == "" || !media.IsImageFilename(name) {
				slog.Debug("skipping non-image url", slog.String("url", rawURL))
				continue
			}
			base := media.NormalizeFilename(name)
			dest := filepath.Join(dir, base)

			job, ok := byDest[dest]
			if !ok {
				job = &imageJob{dest: dest, url: rawURL, postID: post.Meta.ID}
				byDest[dest] = job
				jobs = append(jobs, job)
				continue
			}
			job.variants++
			if name == base && media.FilenameFromURL(job.url) != base {
				job.url = rawURL
			}
		}
	}
	return jobs, unresolved
}

// WriteImages downloads every image referenced by posts into its images
// directory. Variants that collapse into an already planned file count as
// skipped. Saved or already present images are probed into the run's
// dimension store.
func (p *Pipeline) WriteImages(ctx context.Context, posts []*models.Post) models.Tally {
	jobs, unresolved := planImages(posts, p.cfg)

	var tally models.Tally
	tally.Failed = unresolved

	payloads := make([]payload, 0, len(jobs))
	for _, job := range jobs {
		tally.Skipped += job.variants
		payloads = append(payloads, payload{
			path:   job.dest,
			postID: job.postID,
			run: func(ctx context.Context) error {
				return p.saveImage(ctx, job)
			},
			onSkip: func() {
				p.probeExisting(job.dest)
			},
		})
	}
	return tally.Add(p.dispatch(ctx, KindImage, payloads, p.cfg.ImageRequestDelay))
}

func (p *Pipeline) saveImage(ctx context.Context, job *imageJob) error {
	data, err := p.fetcher.Fetch(ctx, job.url)
	if err != nil {
		return &models.ConversionError{
			Stage:  models.StageImage,
			PostID: job.postID,
			Msg:    "download " + job.url,
			Err:    err,
		}
	}
	p.remember(job.dest, data)
	if err := writeFileAtomic(job.dest, data); err != nil {
		return &models.ConversionError{
			Stage:  models.StageFilesystem,
			PostID: job.postID,
			Msg:    "save image",
			Err:    err,
		}
	}
	return nil
}

func (p *Pipeline) probeExisting(dest string) {
	data, err := os.ReadFile(dest)
	if err != nil {
		slog.Debug("cannot read existing image", slog.String("path", dest), slog.Any("error", err))
		return
	}
	p.remember(dest, data)
}

func (p *Pipeline) remember(dest string, data []byte) {
	name := filepath.Base(dest)
	dims, err := media.Probe(name, data)
	if err != nil {
		slog.Debug("image dimensions unknown", slog.String("file", name), slog.Any("error", err))
		return
	}
	p.dims.Put(name, dims)
}
