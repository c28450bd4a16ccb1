// Command rentalreport runs the dashboard pipeline once over a rentals file
// and writes the five charts to an .xlsx workbook or a .csv file.
//
//	rentalreport -in train.csv -out report.xlsx [-years 2011,2012] [-seasons 1,2] [-workingday All|0|1]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"bikedash/internal/config"
	"bikedash/internal/dataprocessing"
	"bikedash/internal/exporter"
	"bikedash/internal/infrastructure"
	"bikedash/internal/validation"
	"bikedash/pkg/contracts/domain"
)

// options holds the parsed command line
type options struct {
	in         string
	out        string
	years      string
	seasons    string
	workingDay string
	logLevel   string
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	logger := infrastructure.NewLoggerWithWriter(os.Stderr, config.LoggingConfig{Level: opts.logLevel})
	if err := run(context.Background(), opts, logger); err != nil {
		logger.Error("Report failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("rentalreport", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.in, "in", "", "rentals CSV file (required)")
	fs.StringVar(&opts.out, "out", "", "report file, .xlsx or .csv (required)")
	fs.StringVar(&opts.years, "years", "", "comma-separated years (default: every year in the file)")
	fs.StringVar(&opts.seasons, "seasons", "", "comma-separated seasons (default: every season in the file)")
	fs.StringVar(&opts.workingDay, "workingday", string(domain.WorkingDayAll), "working day filter: All, 0 or 1")
	fs.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.in == "" || opts.out == "" {
		fmt.Fprintln(output, "rentalreport: -in and -out are required")
		fs.Usage()
		return opts, errors.New("missing required flags")
	}
	return opts, nil
}

// run loads the input, applies the selection and writes the report
func run(ctx context.Context, opts options, logger *slog.Logger) error {
	fileValidator := validation.NewFileValidator(logger)
	if err := fileValidator.ValidateDatasetFile(opts.in); err != nil {
		return err
	}
	format, err := fileValidator.ReportFormat(opts.out)
	if err != nil {
		return err
	}

	in, err := os.Open(opts.in)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	start := time.Now()
	ds, err := dataprocessing.LoadDataset(ctx, filepath.Base(opts.in), in)
	if err != nil {
		return fmt.Errorf("load %s: %w", opts.in, err)
	}
	logger.Info("Dataset loaded",
		slog.String("file", opts.in),
		slog.Int("records", ds.Len()),
		slog.Duration("duration", time.Since(start)))

	sel, err := buildSelection(opts, dataprocessing.Options(ds.Records))
	if err != nil {
		return err
	}
	if err := validation.NewStructValidator().ValidateStruct(sel); err != nil {
		return fmt.Errorf("invalid selection: %w", err)
	}

	res := dataprocessing.Render(ds.Records, sel)
	logger.Info("Charts rendered",
		slog.Any("years", sel.Years),
		slog.Any("seasons", sel.Seasons),
		slog.String("workingday", string(sel.WorkingDay)),
		slog.Int("matching_records", res.RecordCount))

	if err := writeReport(opts.out, exporter.Format(format), res, exporter.ReportMeta{
		Title:       config.AppTitle,
		DatasetName: ds.Name,
		DatasetID:   ds.ID,
		GeneratedAt: time.Now(),
	}); err != nil {
		return err
	}

	logger.Info("Report written", slog.String("file", opts.out), slog.String("format", format))
	return nil
}

// buildSelection starts from every option in the file and narrows it with
// whatever flags were given
func buildSelection(opts options, available domain.FilterOptions) (domain.FilterSelection, error) {
	sel := available.DefaultSelection()

	if opts.years != "" {
		years, err := parseInts(opts.years)
		if err != nil {
			return sel, fmt.Errorf("-years: %w", err)
		}
		sel.Years = years
	}
	if opts.seasons != "" {
		seasons, err := parseInts(opts.seasons)
		if err != nil {
			return sel, fmt.Errorf("-seasons: %w", err)
		}
		sel.Seasons = seasons
	}

	wd, err := domain.ParseWorkingDaySelector(opts.workingDay)
	if err != nil {
		return sel, fmt.Errorf("-workingday: %w", err)
	}
	sel.WorkingDay = wd

	return sel, nil
}

func parseInts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	values := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", p)
		}
		values = append(values, v)
	}
	return values, nil
}

// writeReport writes to a temp file next to path and renames it, so a
// failed export never leaves a truncated report behind
func writeReport(path string, format exporter.Format, res domain.ChartResults, meta exporter.ReportMeta) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".rentalreport-*")
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := exporter.NewChartExporter().Export(tmp, format, res, meta); err != nil {
		tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}
