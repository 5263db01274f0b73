package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aluiziolira/go-wp2mdx/config"
	"github.com/aluiziolira/go-wp2mdx/downloader"
	"github.com/aluiziolira/go-wp2mdx/parser"
	"github.com/aluiziolira/go-wp2mdx/pipeline"
	"github.com/spf13/cobra"
)

func newConvertCmd(globals *globalFlags) *cobra.Command {
	cfg := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "convert [export.xml]",
		Short: "Convert a WXR export into .mdx files",
		Long: `Convert parses a WordPress WXR export, downloads attached and embedded
images, and writes one .mdx file per published post. Existing files are
skipped, so an interrupted run can simply be repeated.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bindConvertEnv(cmd, cfg); err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.InputFile = args[0]
			}
			cfg.Verbose = globals.verbose
			cfg.Quiet = globals.quiet
			cfg.CategoryMapping = lowerKeys(cfg.CategoryMapping)

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runConvert(cmd, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.InputFile, "input", "i", cfg.InputFile, "WXR export file")
	f.StringVarP(&cfg.OutputDir, "output", "o", cfg.OutputDir, "Output directory")
	f.BoolVar(&cfg.YearFolders, "year-folders", cfg.YearFolders, "Group posts into yyyy folders")
	f.BoolVar(&cfg.MonthFolders, "month-folders", cfg.MonthFolders, "Group posts into mm folders")
	f.BoolVar(&cfg.PostFolders, "post-folders", cfg.PostFolders, "Write each post as <slug>/index.mdx")
	f.BoolVar(&cfg.TypeFolders, "type-folders", cfg.TypeFolders, "Group posts by post type")
	f.BoolVar(&cfg.PrefixDate, "prefix-date", cfg.PrefixDate, "Prefix post names with yyyy-mm-dd")
	f.BoolVar(&cfg.SaveAttachedImages, "save-attached-images", cfg.SaveAttachedImages, "Download images attached to posts")
	f.BoolVar(&cfg.SaveScrapedImages, "save-scraped-images", cfg.SaveScrapedImages, "Download images found in post bodies")
	f.BoolVar(&cfg.IncludeOtherTypes, "include-other-types", cfg.IncludeOtherTypes, "Convert custom post types too")
	f.BoolVar(&cfg.IncludePages, "include-pages", cfg.IncludePages, "Convert pages as well as posts")
	f.BoolVar(&cfg.IncludeDrafts, "include-drafts", cfg.IncludeDrafts, "Convert drafts")
	f.DurationVar(&cfg.ImageRequestDelay, "image-delay", cfg.ImageRequestDelay, "Delay between image downloads")
	f.DurationVar(&cfg.ImageTimeout, "image-timeout", cfg.ImageTimeout, "Timeout per image download")
	f.DurationVar(&cfg.MarkdownWriteDelay, "markdown-delay", cfg.MarkdownWriteDelay, "Delay between markdown writes")
	f.BoolVar(&cfg.StrictSSL, "strict-ssl", cfg.StrictSSL, "Verify TLS certificates of media hosts")
	f.StringVar(&cfg.UserAgent, "user-agent", cfg.UserAgent, "User-Agent for image downloads")
	f.BoolVar(&cfg.IncludeTimeWithDate, "include-time", cfg.IncludeTimeWithDate, "Include the time in frontmatter dates")
	f.StringVar(&cfg.CustomDateFormat, "date-format", cfg.CustomDateFormat, "Go time layout for frontmatter dates")
	f.StringVar(&cfg.Timezone, "timezone", cfg.Timezone, "IANA timezone for dates and folders")
	f.StringSliceVar(&cfg.FrontmatterFields, "fields", cfg.FrontmatterFields, "Frontmatter fields in order, key or key:alias")
	f.StringSliceVar(&cfg.CategoryExclusions, "exclude-categories", cfg.CategoryExclusions, "Categories to drop")
	f.StringSliceVar(&cfg.FallbackCategories, "fallback-categories", cfg.FallbackCategories, "Categories for posts without any")
	f.StringToStringVar(&cfg.CategoryMapping, "category-map", cfg.CategoryMapping, "Category renames, name=Display")
	f.StringToStringVar(&cfg.AuthorMapping, "author-map", cfg.AuthorMapping, "Author renames, login=slug")
	f.StringVar(&cfg.DefaultAuthor, "default-author", cfg.DefaultAuthor, "Author for posts without a creator")
	f.StringVar(&cfg.OldDomain, "old-domain", cfg.OldDomain, "Site URL whose links are rewritten")
	f.StringVar(&cfg.NewDomain, "new-domain", cfg.NewDomain, "Replacement site URL")
	f.IntVar(&cfg.DimensionCacheSize, "dimension-cache", cfg.DimensionCacheSize, "Number of image sizes kept for alignment")
	f.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write Prometheus metrics to this textfile")
	f.BoolVar(&cfg.Force, "force", cfg.Force, "Overwrite existing files instead of skipping them")
	f.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "Plan the run without downloading or writing")

	return cmd
}

func bindConvertEnv(cmd *cobra.Command, cfg *config.Config) error {
	b := &envBinder{cmd: cmd}
	b.str("input", "WP2MDX_INPUT", &cfg.InputFile)
	b.str("output", "WP2MDX_OUTPUT", &cfg.OutputDir)
	b.boolean("year-folders", "WP2MDX_YEAR_FOLDERS", &cfg.YearFolders)
	b.boolean("month-folders", "WP2MDX_MONTH_FOLDERS", &cfg.MonthFolders)
	b.boolean("post-folders", "WP2MDX_POST_FOLDERS", &cfg.PostFolders)
	b.boolean("type-folders", "WP2MDX_TYPE_FOLDERS", &cfg.TypeFolders)
	b.boolean("prefix-date", "WP2MDX_PREFIX_DATE", &cfg.PrefixDate)
	b.boolean("save-attached-images", "WP2MDX_SAVE_ATTACHED_IMAGES", &cfg.SaveAttachedImages)
	b.boolean("save-scraped-images", "WP2MDX_SAVE_SCRAPED_IMAGES", &cfg.SaveScrapedImages)
	b.boolean("include-other-types", "WP2MDX_INCLUDE_OTHER_TYPES", &cfg.IncludeOtherTypes)
	b.boolean("include-pages", "WP2MDX_INCLUDE_PAGES", &cfg.IncludePages)
	b.boolean("include-drafts", "WP2MDX_INCLUDE_DRAFTS", &cfg.IncludeDrafts)
	b.millis("image-delay", "WP2MDX_IMAGE_DELAY_MS", &cfg.ImageRequestDelay)
	b.millis("image-timeout", "WP2MDX_IMAGE_TIMEOUT_MS", &cfg.ImageTimeout)
	b.millis("markdown-delay", "WP2MDX_MARKDOWN_DELAY_MS", &cfg.MarkdownWriteDelay)
	b.boolean("strict-ssl", "WP2MDX_STRICT_SSL", &cfg.StrictSSL)
	b.str("user-agent", "WP2MDX_USER_AGENT", &cfg.UserAgent)
	b.boolean("include-time", "WP2MDX_INCLUDE_TIME", &cfg.IncludeTimeWithDate)
	b.str("date-format", "WP2MDX_DATE_FORMAT", &cfg.CustomDateFormat)
	b.str("timezone", "WP2MDX_TIMEZONE", &cfg.Timezone)
	b.list("fields", "WP2MDX_FIELDS", &cfg.FrontmatterFields)
	b.list("exclude-categories", "WP2MDX_EXCLUDE_CATEGORIES", &cfg.CategoryExclusions)
	b.list("fallback-categories", "WP2MDX_FALLBACK_CATEGORIES", &cfg.FallbackCategories)
	b.pairs("category-map", "WP2MDX_CATEGORY_MAP", &cfg.CategoryMapping)
	b.pairs("author-map", "WP2MDX_AUTHOR_MAP", &cfg.AuthorMapping)
	b.str("default-author", "WP2MDX_DEFAULT_AUTHOR", &cfg.DefaultAuthor)
	b.str("old-domain", "WP2MDX_OLD_DOMAIN", &cfg.OldDomain)
	b.str("new-domain", "WP2MDX_NEW_DOMAIN", &cfg.NewDomain)
	b.integer("dimension-cache", "WP2MDX_DIMENSION_CACHE", &cfg.DimensionCacheSize)
	b.str("metrics-file", "WP2MDX_METRICS_FILE", &cfg.MetricsFile)
	b.boolean("force", "WP2MDX_FORCE", &cfg.Force)
	b.boolean("dry-run", "WP2MDX_DRY_RUN", &cfg.DryRun)
	if b.err != nil {
		return fmt.Errorf("invalid environment: %w", b.err)
	}
	return nil
}

func runConvert(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()

	slog.Info("starting conversion",
		slog.String("input", cfg.InputFile),
		slog.String("output", cfg.OutputDir),
		slog.Bool("dry_run", cfg.DryRun),
	)

	items, err := parser.ParseFile(cfg.InputFile)
	if err != nil {
		return err
	}

	metrics := downloader.NewMetrics()
	p, err := pipeline.New(cfg, downloader.New(cfg, metrics), metrics)
	if err != nil {
		return err
	}
	if !cfg.Quiet && isTerminal(os.Stderr) {
		p.WithProgress(newBarProgress())
	}

	result, runErr := p.Run(ctx, items)
	if result != nil {
		printSummary(cmd.OutOrStdout(), result, cfg)
	}
	return runErr
}

func lowerKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}
