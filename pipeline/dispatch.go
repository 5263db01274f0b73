package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aluiziolira/go-wp2mdx/downloader"
	"github.com/aluiziolira/go-wp2mdx/models"
)

// Payload kinds.
const (
	KindImage    = "image"
	KindMarkdown = "markdown"
)

// payload is one file to produce. run is only called when path does not
// exist yet, unless the run is forced.
type payload struct {
	path   string
	postID string
	run    func(ctx context.Context) error
	// onSkip runs instead of run when path already exists.
	onSkip func()
}

// dispatch fires every pending payload in its own goroutine, payload i after
// i*delay, and waits for all of them. Existing destinations are skipped
// before delays are assigned. Failures are logged and counted; there are no
// retries.
func (p *Pipeline) dispatch(ctx context.Context, kind string, payloads []payload, delay time.Duration) models.Tally {
	var tally models.Tally

	pending := make([]payload, 0, len(payloads))
	for _, pl := range payloads {
		if !p.cfg.Force && fileExists(pl.path) {
			tally.Skipped++
			p.metrics.IncPayload(kind, downloader.OutcomeSkipped)
			slog.Debug("skipping existing "+kind, slog.String("path", pl.path))
			if pl.onSkip != nil {
				pl.onSkip()
			}
			continue
		}
		pending = append(pending, pl)
	}

	if p.cfg.DryRun {
		for _, pl := range pending {
			slog.Info("would write "+kind, slog.String("path", pl.path), slog.String("post", pl.postID))
		}
		tally.Planned = len(pending)
		return tally
	}

	p.progress.Begin(kind, len(pending))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for i, pl := range pending {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := fire(ctx, time.Duration(i)*delay, pl)

			mu.Lock()
			if err != nil {
				tally.Failed++
			} else {
				tally.OK++
			}
			mu.Unlock()

			p.record(kind, pl.path, pl.postID, err)
			p.progress.Advance(kind)
		}()
	}
	wg.Wait()

	slog.Info("wrote "+kind+" payloads",
		slog.Int("ok", tally.OK),
		slog.Int("skipped", tally.Skipped),
		slog.Int("failed", tally.Failed),
	)
	return tally
}

func fire(ctx context.Context, wait time.Duration, pl payload) error {
	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}
	return pl.run(ctx)
}

// record books the outcome of one payload on the run result.
func (p *Pipeline) record(kind, path, postID string, err error) {
	if err == nil {
		p.metrics.IncPayload(kind, downloader.OutcomeOK)
		return
	}

	label := errorLabel(err)
	p.metrics.IncPayload(kind, downloader.OutcomeFailed)
	// the downloader counts its own failures
	if !models.IsStage(err, models.StageImage) {
		p.metrics.IncError(label)
	}
	slog.Error("[FAILED] "+kind,
		slog.String("path", path),
		slog.String("post", postID),
		slog.String("category", label),
		slog.Any("error", err),
	)

	p.mu.Lock()
	p.result.ErrorsByType[label]++
	p.result.FailedPaths = append(p.result.FailedPaths, path)
	p.mu.Unlock()
}

// errorLabel names the failure class of err. Download failures keep the
// downloader's classification.
func errorLabel(err error) string {
	var ce *models.ConversionError
	if errors.As(err, &ce) && ce.Stage != models.StageImage {
		return string(ce.Stage)
	}
	return downloader.ErrorLabel(err)
}
