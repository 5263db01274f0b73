package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/aluiziolira/go-wp2mdx/collector"
	"github.com/aluiziolira/go-wp2mdx/config"
	"github.com/aluiziolira/go-wp2mdx/frontmatter"
	"github.com/aluiziolira/go-wp2mdx/models"
	"github.com/aluiziolira/go-wp2mdx/parser"
	"github.com/aluiziolira/go-wp2mdx/postprocess"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "validate <export.xml>",
		Short: "Parse an export and report item counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := parser.ParseFile(args[0])
			if err != nil {
				return err
			}

			registry, err := frontmatter.DefaultRegistry(cfg)
			if err != nil {
				return err
			}
			fields, err := cfg.Fields()
			if err != nil {
				return err
			}
			if err := registry.Check(fields); err != nil {
				return err
			}

			counts := make(map[string]int)
			for _, item := range items {
				key := item.Type() + "/" + models.FirstOr(item.Status, "-")
				counts[key]++
			}
			keys := make([]string, 0, len(counts))
			for k := range counts {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE/STATUS\tCOUNT")
			for _, k := range keys {
				fmt.Fprintf(w, "%s\t%d\n", k, counts[k])
			}
			fmt.Fprintf(w, "total\t%d\n", len(items))
			return w.Flush()
		},
	}
	cmd.Flags().StringSliceVar(&cfg.FrontmatterFields, "fields", cfg.FrontmatterFields, "Frontmatter fields to check")
	return cmd
}

func newListCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "list <export.xml>",
		Short: "List the posts a conversion would write",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := parser.ParseFile(args[0])
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			posts := collector.BuildPosts(items, collector.GetPostTypes(items, cfg), cfg)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tID\tSTATUS\tDATE\tTITLE")
			for _, post := range posts {
				date := "-"
				if t, err := frontmatter.PublishDate(post); err == nil {
					date = t.In(loc).Format("2006-01-02")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					post.Meta.Type,
					post.Meta.ID,
					models.FirstOr(post.Data.Status, "-"),
					date,
					models.FirstOr(post.Data.Title, ""),
				)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&cfg.IncludePages, "include-pages", cfg.IncludePages, "List pages as well as posts")
	cmd.Flags().BoolVar(&cfg.IncludeDrafts, "include-drafts", cfg.IncludeDrafts, "List drafts")
	cmd.Flags().BoolVar(&cfg.IncludeOtherTypes, "include-other-types", cfg.IncludeOtherTypes, "List custom post types too")
	cmd.Flags().StringVar(&cfg.Timezone, "timezone", cfg.Timezone, "IANA timezone for dates")
	return cmd
}

func newCategoriesCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Print the category mapping used for frontmatter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b := &envBinder{cmd: cmd}
			b.pairs("category-map", "WP2MDX_CATEGORY_MAP", &cfg.CategoryMapping)
			b.list("exclude-categories", "WP2MDX_EXCLUDE_CATEGORIES", &cfg.CategoryExclusions)
			b.list("fallback-categories", "WP2MDX_FALLBACK_CATEGORIES", &cfg.FallbackCategories)
			if b.err != nil {
				return b.err
			}

			mapping := lowerKeys(cfg.CategoryMapping)
			keys := make([]string, 0, len(mapping))
			for k := range mapping {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WORDPRESS\tCATEGORY")
			for _, k := range keys {
				fmt.Fprintf(w, "%s\t%s\n", k, mapping[k])
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nexcluded: %s\nfallback: %s\n",
				strings.Join(cfg.CategoryExclusions, ", "),
				strings.Join(cfg.FallbackCategories, ", "),
			)
			return nil
		},
	}
	cmd.Flags().StringToStringVar(&cfg.CategoryMapping, "category-map", cfg.CategoryMapping, "Category renames, name=Display")
	cmd.Flags().StringSliceVar(&cfg.CategoryExclusions, "exclude-categories", cfg.CategoryExclusions, "Categories to drop")
	cmd.Flags().StringSliceVar(&cfg.FallbackCategories, "fallback-categories", cfg.FallbackCategories, "Categories for posts without any")
	return cmd
}

func newPostprocessCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "postprocess [dir]",
		Short: "Normalize frontmatter and links of written .mdx files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := &envBinder{cmd: cmd}
			b.list("fallback-categories", "WP2MDX_FALLBACK_CATEGORIES", &cfg.FallbackCategories)
			b.str("old-domain", "WP2MDX_OLD_DOMAIN", &cfg.OldDomain)
			b.str("new-domain", "WP2MDX_NEW_DOMAIN", &cfg.NewDomain)
			if b.err != nil {
				return b.err
			}
			root := cfg.OutputDir
			if len(args) == 1 {
				root = args[0]
			}

			processed, err := postprocess.New(cfg).ProcessDir(root)
			fmt.Fprintf(cmd.OutOrStdout(), "postprocessed %d files in %s\n", processed, root)
			return err
		},
	}
	cmd.Flags().StringSliceVar(&cfg.FallbackCategories, "fallback-categories", cfg.FallbackCategories, "Categories for posts without any")
	cmd.Flags().StringVar(&cfg.OldDomain, "old-domain", cfg.OldDomain, "Site URL whose links are rewritten")
	cmd.Flags().StringVar(&cfg.NewDomain, "new-domain", cfg.NewDomain, "Replacement site URL")
	return cmd
}
