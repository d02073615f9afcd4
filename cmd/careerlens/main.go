package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"careerlens/internal/config"
	apierrors "careerlens/internal/errors"
	"careerlens/internal/infrastructure"
	"careerlens/internal/services"
	"careerlens/internal/validation"
	"careerlens/pkg/contracts"
)

// cli carries the global flags and the components built from them once the
// configuration is loaded.
type cli struct {
	configPath  string
	verbose     bool
	view        string
	filtersPath string

	cfg      *config.Config
	logger   *slog.Logger
	logFile  *os.File
	service  *services.AnalysisService
	files    *validation.FileValidator
	requests *validation.RequestValidator
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run executes the command line in args. Results go to stdout, logs and
// errors to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	c := &cli{}
	defer c.close()

	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(infrastructure.EnsureTraceID(ctx))

	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		if details, ok := apiErr.Details.(apierrors.ValidationErrors); ok {
			for _, fe := range details.Errors {
				fmt.Fprintf(stderr, "  %s: %s\n", fe.Field, fe.Message)
			}
		}
	}
	return err
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "careerlens",
		Short: "Validate and analyse placement spreadsheets",
		Long: `careerlens checks placement spreadsheets against the column contract of
an analysis view and computes the same metrics the dashboard shows.

Views:
  student    one row per student with academic and placement columns
  company    one row per recruiting company with per-department hires
  overview   the main dashboard, a reduced student sheet

Examples:
  careerlens validate --view student batch-2024.xlsx
  careerlens analyze --view overview --names salary_bands,top_earners *.csv
  careerlens export --view student --filters cse.yaml --format xlsx batch.xlsx
  careerlens template --view company --format xlsx`,
		Version:      contracts.GetFullVersionString(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML configuration file (default: $CAREERLENS_CONFIG_FILE or ./careerlens.yaml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&c.view, "view", "", "Analysis view: student, company or overview")

	root.AddCommand(c.validateCmd())
	root.AddCommand(c.analyzeCmd())
	root.AddCommand(c.exportCmd())
	root.AddCommand(c.templateCmd())
	return root
}

// setup loads configuration and builds the logger and the analysis service.
func (c *cli) setup(cmd *cobra.Command) error {
	var err error
	if c.configPath != "" {
		c.cfg, err = config.LoadFile(c.configPath)
	} else {
		c.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if c.verbose {
		c.cfg.Logging.Level = "debug"
	}

	c.logger, c.logFile, err = infrastructure.NewLogger(c.cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.logger = c.logger.With(slog.String("command", cmd.Name()))

	c.service = services.NewAnalysisService(services.AnalysisOptionsFrom(c.cfg), c.logger)
	c.files = validation.NewFileValidator(c.logger, c.cfg.Upload.MaxBytes, c.cfg.Upload.Extensions)
	c.requests = validation.NewRequestValidator()
	return nil
}

func (c *cli) close() {
	if c.logFile != nil {
		_ = c.logFile.Close()
	}
}
