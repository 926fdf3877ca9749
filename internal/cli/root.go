// Package cli implements the webhook command tree.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/charliek/webhook/internal/client"
	"github.com/charliek/webhook/internal/config"
	"github.com/charliek/webhook/internal/logging"
	"github.com/charliek/webhook/internal/render"
)

// Version is set during build
var Version = "dev"

// skipConfigAnnotation marks commands that run without loading configuration
const skipConfigAnnotation = "webhook/skip-config"

// app holds the state shared by all commands of one invocation
type app struct {
	// Global flags
	configPath string
	baseURL    string
	noColor    bool
	verbose    bool
	logFile    string

	stdout io.Writer
	stderr io.Writer

	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
}

// NewRootCmd builds the command tree writing to stdout and stderr
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		stdout: stdout,
		stderr: stderr,
		logger: slog.Default(),
	}

	rootCmd := &cobra.Command{
		Use:   "webhook",
		Short: "Capture and inspect webhooks from the terminal",
		Long: `webhook is a terminal client for a webhook-capture service. It supports:
  - Generating inbox tokens and their webhook URLs
  - Live monitoring of incoming requests
  - One-shot listings with method and path filters
  - Detailed views of a single request`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
	}

	// Persistent flags available to all subcommands
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file (replaces webhook.yaml and webhook.local.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "Webhook service base URL")
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&a.logFile, "log-file", "", "Also write logs to this file")

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetVersionTemplate("webhook version {{.Version}}\n")

	rootCmd.AddCommand(
		a.newGenerateCmd(),
		a.newMonitorCmd(),
		a.newLogsCmd(),
		a.newShowCmd(),
		a.newConfigCmd(),
		a.newVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup configures logging and resolves configuration before any command runs
func (a *app) setup(cmd *cobra.Command, args []string) error {
	logger, closer, err := logging.Setup(logging.Options{
		Verbose: a.verbose,
		File:    a.logFile,
		Stderr:  a.stderr,
	})
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	a.logger = logger
	a.logCloser = closer

	if cmd.Annotations[skipConfigAnnotation] == "true" {
		return nil
	}

	cfg, err := config.Load(config.LoadOptions{Path: a.configPath})
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Explicit flags win over every configuration layer
	if cmd.Flags().Changed("base-url") {
		if err := config.ValidateBaseURL(a.baseURL); err != nil {
			return fmt.Errorf("--base-url: %w", err)
		}
		cfg.Webhook.BaseURL = a.baseURL
		cfg.Sources = append(cfg.Sources, "flags")
	}
	a.cfg = cfg

	a.logger.Debug("configuration resolved", "sources", cfg.Sources, "base_url", cfg.Webhook.BaseURL)
	return nil
}

func (a *app) teardown() {
	if a.logCloser != nil {
		if err := a.logCloser.Close(); err != nil {
			fmt.Fprintf(a.stderr, "Warning: closing log file: %v\n", err)
		}
	}
}

// client returns a service client for the resolved configuration
func (a *app) client() *client.Client {
	return client.New(a.cfg.Webhook.BaseURL,
		client.WithTimeout(a.cfg.Webhook.RequestTimeout.Std()),
		client.WithLogger(a.logger),
	)
}

// renderer returns a renderer for output written to w. Color is used only
// when allowed by --no-color and NO_COLOR and when w is a terminal.
func (a *app) renderer(w io.Writer) *render.Renderer {
	previewLength := 0
	if a.cfg != nil {
		previewLength = a.cfg.Webhook.BodyPreviewLength
	}
	return render.New(w, render.Options{
		Color:         a.colorEnabled(),
		PreviewLength: previewLength,
	})
}

func (a *app) colorEnabled() bool {
	if a.noColor {
		return false
	}
	_, set := os.LookupEnv("NO_COLOR")
	return !set
}

// write writes rendered lines to stdout
func (a *app) write(lines []string) error {
	return render.Write(a.stdout, lines)
}

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version",
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "webhook version %s\n", Version)
		},
	}
}
