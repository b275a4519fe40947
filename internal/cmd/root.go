package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/adamancini/alfredwf/env"
	"github.com/adamancini/alfredwf/internal/config"
	"github.com/adamancini/alfredwf/internal/logging"
	"github.com/adamancini/alfredwf/internal/output"
)

// rootOptions carries global flags and the dependencies resolved from them
// before a subcommand runs.
type rootOptions struct {
	// Global flags
	outputFormat string
	configPath   string
	repo         string
	logFormat    string
	verbose      bool
	quiet        bool

	stdout  io.Writer
	stderr  io.Writer
	environ env.Provider
	workDir string
	client  *http.Client

	cfg    *config.Config
	env    *env.Env
	format output.Format
	out    *output.Writer
	logger *slog.Logger
}

// Execute runs the alfredwf command line against the process environment.
func Execute(version, commit, date string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	opts := &rootOptions{
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		environ: env.OS,
		workDir: wd,
	}
	return newRootCmd(opts, version, commit, date).Execute()
}

func newRootCmd(opts *rootOptions, version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "alfredwf",
		Short: "Self-update helper for Alfred workflows",
		Long: `alfredwf checks a GitHub repository for newer releases of an Alfred workflow
and downloads the new bundle into the workflow cache.

Run it from a workflow script. Alfred provides the workflow UID, name, version,
and data and cache directories through the environment; an alfredwf.toml file
in the workflow directory can supply or override them.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve()
		},
	}
	rootCmd.SetVersionTemplate(fmt.Sprintf("alfredwf %s (commit %s, built %s)\n", version, commit, date))
	rootCmd.SetOut(opts.stdout)
	rootCmd.SetErr(opts.stderr)

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&opts.outputFormat, "output", "o", "text", "Output format: text, json, yaml, alfred, xml")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to alfredwf config file")
	rootCmd.PersistentFlags().StringVar(&opts.repo, "repo", "", "GitHub repository (owner/name) that publishes releases")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "Quiet mode (errors only)")

	// Add subcommands
	rootCmd.AddCommand(newCheckCmd(opts))
	rootCmd.AddCommand(newDownloadCmd(opts))
	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newSetVersionCmd(opts))
	rootCmd.AddCommand(newSetIntervalCmd(opts))
	rootCmd.AddCommand(newEnvCmd(opts))
	rootCmd.AddCommand(newCompletionCmd())

	// Register completion function for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json", "yaml", "alfred", "xml"}, cobra.ShellCompDirectiveNoFileComp
	})

	return rootCmd
}

// resolve parses the output format, loads the config file, and builds the
// layered environment and logger.
func (o *rootOptions) resolve() error {
	format, err := output.ParseFormat(o.outputFormat)
	if err != nil {
		return err
	}
	o.format = format
	o.out = output.NewWriter(o.stdout, format)

	cfg, err := config.Resolve(o.configPath, o.workDir, o.environ)
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.env = env.New(cfg.Environment(o.environ))

	level := "info"
	switch {
	case o.quiet:
		level = "error"
	case o.verbose || o.env.IsDebug():
		level = "debug"
	}
	logger, err := logging.New(logging.Options{Level: level, Format: o.logFormat, Writer: o.stderr})
	if err != nil {
		return err
	}
	o.logger = logger

	if cfg.Path != "" {
		logger.Debug("loaded config", slog.String("path", cfg.Path))
	}
	return nil
}
