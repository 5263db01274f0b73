package main

import (
	"log/slog"
	"os"

	"github.com/aluiziolira/go-wp2mdx/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	verbose bool
	quiet   bool
}

func newRootCmd() *cobra.Command {
	globals := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "wp2mdx",
		Short: "Convert a WordPress export into MDX files with local images",
		Long: `wp2mdx migrates a WordPress WXR export into a tree of .mdx files with
normalized YAML frontmatter and locally stored images.

Settings can also be given as WP2MDX_* environment variables or in a .env file
in the working directory. Flags take precedence.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// a missing .env file is fine
			_ = godotenv.Load()

			if !cmd.Flags().Changed("verbose") {
				if v, ok, err := config.EnvBool("WP2MDX_VERBOSE"); err == nil && ok {
					globals.verbose = v
				}
			}
			logger, level := newLogger(globals.verbose)
			if globals.quiet {
				level.Set(slog.LevelWarn)
			}
			slog.SetDefault(logger)
		},
	}

	cmd.PersistentFlags().BoolVarP(&globals.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&globals.quiet, "quiet", "q", false, "Only log warnings and errors; hide progress bars")

	cmd.AddCommand(newConvertCmd(globals))
	cmd.AddCommand(newPostprocessCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newCategoriesCmd())

	return cmd
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
