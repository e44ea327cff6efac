package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fbz-tec/docvault/core/client"
	"github.com/fbz-tec/docvault/core/config"
	"github.com/fbz-tec/docvault/internal/logger"
	"github.com/fbz-tec/docvault/internal/version"
)

var (
	verbose  bool
	quiet    bool
	envFiles []string
	apiURL   string

	// cfg is loaded once per invocation, before any subcommand runs.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "docvault",
	Short: "Document catalog server, client and exporter",
	Long: `docvault stores document records and their files behind a REST API.

The same binary runs the API server, talks to a running server as a client,
and exports the catalog straight from the database.

Supported databases (DATABASE_URI or MONGODB_URI):
 • mongodb://, mongodb+srv://
 • postgres://, postgresql://
 • sqlite://path/to/file.db
 • memory:// (in-process, for development)`,
	Example: `  # Start the API against a local MongoDB
  MONGODB_URI=mongodb://localhost:27017 docvault serve

  # List documents in the Project category, sorted by name
  docvault docs list --category Project --sort name

  # Upload a file and create its document record
  docvault upload report.pdf --title "Q1 Report" --description "First quarter figures" --category Financial

  # Export the catalog to gzip-compressed CSV
  docvault export -o catalog.csv -z gzip`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output with detailed information")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Enable quiet mode: only display error messages")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Load settings from these .env files (default ./.env)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "Base URL of the docvault API (overrides DOCVAULT_API)")

	rootCmd.AddCommand(versionCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	if verbose && quiet {
		return fmt.Errorf("cannot use --verbose and --quiet flags together")
	}

	cfg = config.LoadConfig(envFiles...)

	if cfg.LogLevel != "" {
		if err := logger.SetLevel(cfg.LogLevel); err != nil {
			logger.Warn("%v", err)
		}
	}
	switch {
	case quiet:
		logger.SetVerbose(false)
		logger.SetQuiet(true)
	case verbose:
		logger.SetQuiet(false)
		logger.SetVerbose(true)
		logger.Debug("Verbose mode enabled")
	}

	if cmd.Flags().Changed("api") {
		cfg.APIURL = apiURL
	}

	logger.Debug("docvault %s (build %s, commit %s)", version.AppVersion, version.BuildTime, version.GitCommit)
	return nil
}

// apiClient builds a client for cfg.APIURL.
func apiClient() (*client.Client, error) {
	c, err := client.New(cfg.APIURL, nil)
	if err != nil {
		return nil, &config.ConfigurationError{Key: config.EnvAPIURL, Reason: err.Error()}
	}
	logger.Debug("Using API at %s", cfg.APIURL)
	return c, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
