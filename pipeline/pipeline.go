// Package pipeline turns parsed WXR items into .mdx files and local images.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aluiziolira/go-wp2mdx/collector"
	"github.com/aluiziolira/go-wp2mdx/config"
	"github.com/aluiziolira/go-wp2mdx/downloader"
	"github.com/aluiziolira/go-wp2mdx/frontmatter"
	"github.com/aluiziolira/go-wp2mdx/media"
	"github.com/aluiziolira/go-wp2mdx/models"
	"github.com/aluiziolira/go-wp2mdx/postprocess"
	"github.com/aluiziolira/go-wp2mdx/translator"
)

// Fetcher downloads one remote file.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Progress receives payload progress. Advance may be called concurrently.
type Progress interface {
	Begin(kind string, total int)
	Advance(kind string)
}

type noProgress struct{}

func (noProgress) Begin(string, int) {}
func (noProgress) Advance(string)    {}

// Pipeline coordinates one conversion run.
type Pipeline struct {
	cfg      *config.Config
	fetcher  Fetcher
	metrics  *downloader.Metrics
	dims     *media.DimensionStore
	progress Progress

	mu     sync.Mutex // guards result tallies written from payload goroutines
	result *models.RunResult
}

// New builds a pipeline. metrics may be nil.
func New(cfg *config.Config, fetcher Fetcher, metrics *downloader.Metrics) (*Pipeline, error) {
	dims, err := media.NewDimensionStore(cfg.DimensionCacheSize)
	if err != nil {
		return nil, models.NewError(models.StageConfig, "create dimension store", err)
	}
	return &Pipeline{
		cfg:      cfg,
		fetcher:  fetcher,
		metrics:  metrics,
		dims:     dims,
		progress: noProgress{},
		result:   newResult(0),
	}, nil
}

// WithProgress installs a progress sink.
func (p *Pipeline) WithProgress(progress Progress) {
	if progress == nil {
		progress = noProgress{}
	}
	p.progress = progress
}

// Dimensions exposes the run's image dimension store.
func (p *Pipeline) Dimensions() *media.DimensionStore {
	return p.dims
}

// Run converts items end to end:
//
//	select posts → collect and merge images → assemble frontmatter →
//	download images → translate bodies → write markdown → post-process
//
// Images are saved before translation so alignment sees real dimensions.
// Only configuration problems are fatal; per-post and per-payload failures
// are counted in the result. A canceled ctx is returned alongside the
// partial result.
func (p *Pipeline) Run(ctx context.Context, items []*models.RawItem) (*models.RunResult, error) {
	p.result = newResult(len(items))

	fields, err := p.cfg.Fields()
	if err != nil {
		return nil, models.NewError(models.StageConfig, "parse frontmatter fields", err)
	}
	registry, err := frontmatter.DefaultRegistry(p.cfg)
	if err != nil {
		return nil, err
	}
	assembler, err := frontmatter.NewAssembler(registry, fields)
	if err != nil {
		return nil, err
	}

	types := collector.GetPostTypes(items, p.cfg)
	posts := collector.BuildPosts(items, types, p.cfg)
	slog.Info("selected posts", slog.Int("count", len(posts)), slog.Any("types", types))

	var images []*models.Image
	if p.cfg.SaveAttachedImages {
		images = append(images, collector.CollectAttachedImages(items)...)
	}
	if p.cfg.SaveScrapedImages {
		images = append(images, collector.CollectScrapedImages(items, types)...)
	}
	collector.MergeImagesIntoPosts(images, posts)

	posts, failures := assembler.AssembleAll(posts)
	for _, err := range failures {
		p.result.DroppedPosts++
		p.result.ErrorsByType[errorLabel(err)]++
	}
	p.result.Posts = len(posts)

	p.result.Images = p.WriteImages(ctx, posts)

	tr := translator.New(translator.Options{
		RewriteImageSrc: p.cfg.SaveScrapedImages,
		Dimensions:      p.dims,
	})
	collector.TranslatePosts(posts, tr)

	p.result.Markdown = p.WriteMarkdown(ctx, posts)

	if !p.cfg.DryRun && ctx.Err() == nil && p.result.Markdown.OK+p.result.Markdown.Skipped > 0 {
		processed, err := postprocess.New(p.cfg).ProcessDir(p.cfg.OutputDir)
		if err != nil {
			slog.Warn("post-processing finished with errors", slog.Any("error", err))
		}
		p.result.Processed = processed
	}

	p.result.EndTime = time.Now()
	if err := p.metrics.WriteTextfile(p.cfg.MetricsFile); err != nil {
		slog.Warn("cannot write metrics", slog.Any("error", err))
	}
	if err := ctx.Err(); err != nil {
		return p.result, fmt.Errorf("run interrupted: %w", err)
	}
	return p.result, nil
}

func newResult(items int) *models.RunResult {
	return &models.RunResult{
		StartTime:    time.Now(),
		Items:        items,
		ErrorsByType: make(map[string]int),
	}
}
