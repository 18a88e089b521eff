package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/DjordjeVuckovic/pipebench/internal/bench/report"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/runner"
	"github.com/DjordjeVuckovic/pipebench/internal/bench/spec"
	"github.com/DjordjeVuckovic/pipebench/internal/methods"
	"github.com/DjordjeVuckovic/pipebench/internal/storage"
	"github.com/DjordjeVuckovic/pipebench/internal/storage/factory"
	"github.com/DjordjeVuckovic/pipebench/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
)

type app struct {
	cfg     cliConfig
	runner  *runner.Runner[methods.Matrix]
	metrics *telemetry.Metrics
	store   storage.ResultStore
	out     io.Writer
}

func main() {
	cfg := parseFlags()
	if err := cfg.validate(); err != nil {
		slog.Error("Invalid flags", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Benchmark failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg cliConfig) error {
	reg, err := methods.NewRegistry()
	if err != nil {
		return err
	}

	metrics := telemetry.NewMetrics(prometheus.NewRegistry())
	a := &app{
		cfg:     cfg,
		runner:  runner.New(reg, runner.Config{Workers: cfg.Workers}, runner.WithObserver[methods.Matrix](metrics.Observer())),
		metrics: metrics,
		out:     os.Stdout,
	}

	if cfg.Store {
		storeCfg, err := factory.LoadEnv()
		if err != nil {
			return fmt.Errorf("load storage config: %w", err)
		}
		store, cleanup, err := factory.NewResultStore(ctx, storeCfg)
		if err != nil {
			return err
		}
		defer cleanup()
		a.store = store
		slog.Info("Result store initialized", "type", storeCfg.Type)
	}

	ps, err := spec.LoadFromFile(cfg.SpecPath)
	if err != nil {
		return fmt.Errorf("load spec %q: %w", cfg.SpecPath, err)
	}

	if !cfg.Watch {
		return a.execute(ctx, ps)
	}

	if err := a.execute(ctx, ps); err != nil {
		slog.Error("Pipeline run failed", "name", ps.Name, "error", err)
	}
	return spec.Watch(ctx, cfg.SpecPath, func(ps *spec.PipelineSpec) {
		if err := a.execute(ctx, ps); err != nil {
			slog.Error("Pipeline run failed", "name", ps.Name, "error", err)
		}
	})
}

func (a *app) execute(ctx context.Context, ps *spec.PipelineSpec) error {
	fl, ok := methods.Flatteners()[a.cfg.Flatten]
	if !ok {
		return fmt.Errorf("unknown flattener %q", a.cfg.Flatten)
	}

	result, err := a.runner.Run(ctx, ps)
	if err != nil {
		a.metrics.RunFinished(ps.Name, 0, err)
		return err
	}
	a.metrics.RunFinished(ps.Name, result.Table.Len(), nil)

	rpt, err := report.Generate(result, fl)
	if err != nil {
		return err
	}
	return a.outputReport(ctx, rpt)
}

func (a *app) outputReport(ctx context.Context, rpt *report.Report) error {
	report.WriteTable(rpt, a.out)

	if a.cfg.Group != "" {
		groups, err := report.Aggregate(rpt, a.cfg.Group, a.cfg.Field)
		if err != nil {
			return err
		}
		writeGroups(a.out, a.cfg.Group, a.cfg.Field, groups)
	}

	switch a.cfg.Output {
	case "":
	case "-":
		if err := report.EncodeJSON(rpt, a.out); err != nil {
			return fmt.Errorf("write JSON report: %w", err)
		}
	default:
		if err := report.WriteJSON(rpt, a.cfg.Output); err != nil {
			return fmt.Errorf("write JSON report: %w", err)
		}
		slog.Info("Report written", "path", a.cfg.Output)
	}

	if a.cfg.CSV != "" {
		if err := report.WriteCSVFile(rpt, a.cfg.CSV); err != nil {
			return fmt.Errorf("write CSV report: %w", err)
		}
		slog.Info("CSV report written", "path", a.cfg.CSV)
	}

	if a.store != nil {
		if err := a.store.Save(ctx, rpt); err != nil {
			return fmt.Errorf("save report: %w", err)
		}
		slog.Info("Report saved", "run", rpt.Meta.RunID)
	}
	return nil
}

func writeGroups(w io.Writer, column, field string, groups []report.GroupStat) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "\n--- %s by %s ---\n", field, column)
	fmt.Fprintln(tw, column+"\tcount\tmean\tmin\tmax")
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", g.Label, g.Count, fmtStat(g.Mean), fmtStat(g.Min), fmtStat(g.Max))
	}
	tw.Flush()
}

func fmtStat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}
