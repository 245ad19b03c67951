package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bilgisen/addconnect/internal/client"
	"github.com/bilgisen/addconnect/internal/config"
	"github.com/bilgisen/addconnect/internal/intake"
	"github.com/bilgisen/addconnect/internal/logger"
	"github.com/spf13/cobra"
)

// cli carries the resolved configuration and output streams of one run
type cli struct {
	apiBase  string
	logLevel string
	timeout  time.Duration

	cfg    *config.Config
	client *client.Client
	out    io.Writer
	errOut io.Writer

	// override replaces the HTTP client when non-nil
	override intake.Backend
}

func newRootCmd(out, errOut io.Writer, override intake.Backend) *cobra.Command {
	a := &cli{out: out, errOut: errOut, override: override}

	root := &cobra.Command{
		Use:   "addconnect",
		Short: "Add & Connect - submit trends, technologies and inspirations",
		Long: `addconnect submits content to the Add & Connect backend through one of
three intake paths: typed in manually, imported from a URL, or uploaded as a file.

Run without arguments to open the interactive form.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.apiBase, "api-base", "", "backend origin or API base (overrides API_BASE_URL)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 0, "request timeout (overrides HTTP_TIMEOUT)")

	root.AddCommand(
		a.manualCmd(),
		a.urlCmd(),
		a.previewCmd(),
		a.fileCmd(),
		a.tuiCmd(),
	)
	return root
}

// setup loads configuration, applies flag overrides and builds the client
func (a *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadClient(config.ClientOverrides{
		APIBase:     a.apiBase,
		LogLevel:    a.logLevel,
		HTTPTimeout: a.timeout,
	})
	if err != nil {
		return err
	}
	a.cfg = cfg

	logCfg := logger.Config{Level: cfg.LogLevel, Output: "stderr", Pretty: true}
	if isTUI(cmd) {
		// The terminal belongs to the UI; log to a file or not at all
		logCfg = logger.Config{Level: logger.Disabled}
		if cfg.LogFile != "" {
			logCfg = logger.Config{Level: cfg.LogLevel, Output: cfg.LogFile}
		}
	}
	if err := logger.Init(logCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.client = client.New(cfg.APIBase, cfg.HTTPTimeout, client.WithUploadTimeout(cfg.UploadTimeout))
	logger.Debug().Str("api_base", a.client.BaseURL()).Msg("client configured")
	return nil
}

func isTUI(cmd *cobra.Command) bool {
	return cmd.Name() == "tui" || !cmd.HasParent()
}

func (a *cli) backend() intake.Backend {
	if a.override != nil {
		return a.override
	}
	return a.client
}

func (a *cli) options() intake.Options {
	if a.cfg == nil {
		return intake.Options{}
	}
	return intake.Options{InvalidatePreviewOnEdit: a.cfg.PreviewInvalidateOnEdit}
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr, nil).Execute(); err != nil {
		os.Exit(1)
	}
}
