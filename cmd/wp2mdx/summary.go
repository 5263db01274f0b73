package main

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/aluiziolira/go-wp2mdx/config"
	"github.com/aluiziolira/go-wp2mdx/models"
	"github.com/schollz/progressbar/v3"
)

type barProgress struct {
	mu   sync.Mutex
	bars map[string]*progressbar.ProgressBar
}

func newBarProgress() *barProgress {
	return &barProgress{bars: make(map[string]*progressbar.ProgressBar)}
}

func (b *barProgress) Begin(kind string, total int) {
	if total == 0 {
		return
	}
	b.mu.Lock()
	b.bars[kind] = progressbar.Default(int64(total), "writing "+kind+"s")
	b.mu.Unlock()
}

func (b *barProgress) Advance(kind string) {
	b.mu.Lock()
	bar := b.bars[kind]
	b.mu.Unlock()
	if bar != nil {
		_ = bar.Add(1)
	}
}

func printSummary(w io.Writer, result *models.RunResult, cfg *config.Config) {
	separator := "--------------------------------------------------"
	fmt.Fprintln(w, "\n"+separator)
	if cfg.DryRun {
		fmt.Fprintln(w, "Dry run complete")
	} else {
		fmt.Fprintln(w, "Conversion complete")
	}

	fmt.Fprintf(w, "  Items:         %d\n", result.Items)
	fmt.Fprintf(w, "  Posts:         %d (%d dropped)\n", result.Posts, result.DroppedPosts)
	fmt.Fprintf(w, "  Markdown:      %s\n", formatTally(result.Markdown))
	fmt.Fprintf(w, "  Images:        %s\n", formatTally(result.Images))
	fmt.Fprintf(w, "  Postprocessed: %d\n", result.Processed)
	if len(result.ErrorsByType) > 0 {
		keys := make([]string, 0, len(result.ErrorsByType))
		for k := range result.ErrorsByType {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprint(w, "  Error types:  ")
		for _, k := range keys {
			fmt.Fprintf(w, " %s=%d", k, result.ErrorsByType[k])
		}
		fmt.Fprintln(w)
	}
	for _, path := range result.FailedPaths {
		fmt.Fprintf(w, "  [FAILED]      %s\n", path)
	}
	fmt.Fprintf(w, "  Duration:      %v\n", result.Duration())
	fmt.Fprintf(w, "  Output dir:    %s\n", cfg.OutputDir)
	if cfg.MetricsFile != "" {
		fmt.Fprintf(w, "  Metrics file:  %s\n", cfg.MetricsFile)
	}
	fmt.Fprintln(w, separator)
}

func formatTally(t models.Tally) string {
	if t.Planned > 0 {
		return fmt.Sprintf("%d planned, %d skipped", t.Planned, t.Skipped)
	}
	return fmt.Sprintf("%d written, %d skipped, %d failed", t.OK, t.Skipped, t.Failed)
}
