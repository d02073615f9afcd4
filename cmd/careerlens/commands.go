package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"

	"careerlens/internal/analysis"
	"careerlens/internal/exporter"
	"careerlens/internal/filter"
	"careerlens/internal/schema"
	"careerlens/internal/services"
	api "careerlens/pkg/contracts/api/v1"
)

// stdoutPath selects standard output for --out.
const stdoutPath = "-"

func (c *cli) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [files...]",
		Short: "Check files against the column contract of a view",
		Long: `Decodes every file and reports the required columns it lacks. All files
are checked; the command fails if any of them is rejected.`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.runValidate,
	}
}

func (c *cli) runValidate(cmd *cobra.Command, args []string) error {
	paths, err := c.files.ResolveInputs(args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range paths {
		summary, err := c.load(cmd.Context(), path)
		var missing *schema.ValidationError
		switch {
		case err == nil:
			fmt.Fprintf(out, "ok    %s (%d rows, %d columns)\n", path, summary.Rows, len(summary.Columns))
		case errors.As(err, &missing):
			failed++
			fmt.Fprintf(out, "FAIL  %s: missing %s\n", path, strings.Join(missing.Missing, ", "))
		default:
			failed++
			fmt.Fprintf(out, "FAIL  %s: %v\n", path, err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(paths))
	}
	return nil
}

type analyzeFlags struct {
	names  []string
	topN   int
	widths map[string]string
	out    string
}

// fileReport is the analyze output for one input file.
type fileReport struct {
	File    string             `json:"file"`
	Dataset api.DatasetSummary `json:"dataset"`
	Metrics []analysis.Result  `json:"metrics"`
}

func (c *cli) analyzeCmd() *cobra.Command {
	var f analyzeFlags
	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Compute view metrics for one or more files as JSON",
		Long: `Loads each file into its own dataset, applies the optional filters and
evaluates the view's metric catalogue. Files are processed concurrently,
bounded by upload.max_concurrent.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAnalyze(cmd, args, f)
		},
	}
	cmd.Flags().StringSliceVar(&f.names, "names", nil, "Metrics to evaluate (default: all)")
	cmd.Flags().IntVar(&f.topN, "top-n", 0, "Ranking length")
	cmd.Flags().StringToStringVar(&f.widths, "width", nil, "Histogram width overrides, e.g. salary=2.5")
	cmd.Flags().StringVar(&c.filtersPath, "filters", "", "YAML or JSON filter file")
	cmd.Flags().StringVarP(&f.out, "out", "o", stdoutPath, "Output file")
	return cmd
}

func (c *cli) runAnalyze(cmd *cobra.Command, args []string, f analyzeFlags) error {
	req, err := metricsRequest(f)
	if err != nil {
		return err
	}
	if err := c.requests.Struct(req); err != nil {
		return err
	}
	query := services.MetricsQuery{Names: req.Names, TopN: req.TopN, Widths: req.Widths}

	paths, err := c.files.ResolveInputs(args)
	if err != nil {
		return err
	}

	reports := make([]fileReport, len(paths))
	g, ctx := errgroup.WithContext(cmd.Context())
	if c.cfg.Upload.MaxConcurrent > 0 {
		g.SetLimit(c.cfg.Upload.MaxConcurrent)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			summary, err := c.load(ctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results, _, err := c.service.Metrics(ctx, path, c.view, query)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			reports[i] = fileReport{File: path, Dataset: summary, Metrics: results}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		return err
	}
	return c.write(cmd, f.out, buf.Bytes())
}

func metricsRequest(f analyzeFlags) (api.MetricsRequest, error) {
	req := api.MetricsRequest{Names: f.names, TopN: f.topN}
	if len(f.widths) > 0 {
		req.Widths = make(map[string]float64, len(f.widths))
		for key, raw := range f.widths {
			w, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return req, fmt.Errorf("invalid width %s=%q", key, raw)
			}
			req.Widths[key] = w
		}
	}
	return req, nil
}

func (c *cli) exportCmd() *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write the filtered rows of a file as CSV, XLSX or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := exporter.ParseFormat(format, exporter.FormatCSV)
			if err != nil {
				return err
			}
			if _, err := c.load(cmd.Context(), args[0]); err != nil {
				return err
			}

			var buf bytes.Buffer
			name, err := c.service.Export(cmd.Context(), args[0], c.view, f, &buf)
			if err != nil {
				return err
			}
			if out == "" {
				out = name
			}
			return c.write(cmd, out, buf.Bytes())
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "csv, xlsx or json")
	cmd.Flags().StringVar(&c.filtersPath, "filters", "", "YAML or JSON filter file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, - for stdout (default: generated name)")
	return cmd
}

func (c *cli) templateCmd() *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write the blank upload template of a view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.requests.Struct(api.TemplateRequest{View: c.view, Format: format}); err != nil {
				return err
			}
			f, err := exporter.ParseFormat(format, exporter.FormatJSON)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			name, err := c.service.Template(cmd.Context(), c.view, f, &buf)
			if err != nil {
				return err
			}
			if out == "" {
				out = name
			}
			return c.write(cmd, out, buf.Bytes())
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "json, csv or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, - for stdout (default: generated name)")
	return cmd
}

// load reads path into the dataset keyed by the path itself and applies
// the filter file, if any.
func (c *cli) load(ctx context.Context, path string) (api.DatasetSummary, error) {
	if err := c.files.ValidateInputFile(path); err != nil {
		return api.DatasetSummary{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return api.DatasetSummary{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	summary, err := c.service.Upload(ctx, path, c.view, filepath.Base(path), data)
	if err != nil {
		return api.DatasetSummary{}, err
	}
	if c.filtersPath == "" {
		return summary, nil
	}

	criteria, err := c.readFilters()
	if err != nil {
		return api.DatasetSummary{}, err
	}
	return c.service.SetFilters(ctx, path, c.view, criteria)
}

// readFilters parses the filter file. JSON documents are valid YAML, so
// one decoder serves both.
func (c *cli) readFilters() (filter.Criteria, error) {
	var criteria filter.Criteria
	data, err := os.ReadFile(c.filtersPath)
	if err != nil {
		return criteria, fmt.Errorf("failed to read filters: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &criteria); err != nil {
		return criteria, fmt.Errorf("failed to parse filters %s: %w", c.filtersPath, err)
	}
	if err := c.requests.Struct(api.FilterRequestFrom(criteria)); err != nil {
		return criteria, err
	}
	return criteria, nil
}

func (c *cli) write(cmd *cobra.Command, out string, data []byte) error {
	if out == stdoutPath {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := c.files.ValidateOutputDirectory(filepath.Dir(out)); err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	c.logger.InfoContext(cmd.Context(), "output written", slog.String("path", out), slog.Int("bytes", len(data)))
	return nil
}
