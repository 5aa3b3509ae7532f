// Command theatre solves surgery scheduling instances from YAML files.
//
// Single instance:
//
//	theatre -input day.yaml [-xlsx day.xlsx] [-ics day.ics] [-json]
//
// Batch over a directory of instances:
//
//	theatre -dir ward-instances/ [-workers 4]
//
// Exit codes: 0 scheduled, 1 infeasible, 2 cancelled, 3 usage or input error.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/apoorvpandey048/theatre-scheduler/internal/config"
	"github.com/apoorvpandey048/theatre-scheduler/internal/export"
	"github.com/apoorvpandey048/theatre-scheduler/internal/instance"
	"github.com/apoorvpandey048/theatre-scheduler/internal/render"
	"github.com/apoorvpandey048/theatre-scheduler/pkg/theatre"
)

type options struct {
	input      string
	dir        string
	configPath string
	timeout    time.Duration
	workers    int
	xlsxPath   string
	icsPath    string
	jsonOut    bool
	quiet      bool
	version    bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var opts options
	fs := flag.NewFlagSet("theatre", flag.ContinueOnError)
	fs.StringVar(&opts.input, "input", "", "instance YAML file to solve")
	fs.StringVar(&opts.dir, "dir", "", "directory of instance YAML files to solve as a batch")
	fs.StringVar(&opts.configPath, "config", "", "config file (defaults: ./config.yaml, ./config/config.yaml)")
	fs.DurationVar(&opts.timeout, "timeout", 0, "per-solve deadline, overrides solver.timeout (0 keeps config)")
	fs.IntVar(&opts.workers, "workers", 0, "batch pool size, overrides solver.workers (0 keeps config)")
	fs.StringVar(&opts.xlsxPath, "xlsx", "", "write the schedule workbook to this path")
	fs.StringVar(&opts.icsPath, "ics", "", "write the schedule calendar to this path")
	fs.BoolVar(&opts.jsonOut, "json", false, "print results as JSON instead of a rendered grid")
	fs.BoolVar(&opts.quiet, "quiet", false, "print nothing; rely on the exit code and export files")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return 3
	}

	if opts.version {
		info := theatre.GetVersionInfo()
		fmt.Printf("theatre-scheduler v%s (go %s)\n", info.Version, info.GoVersion)
		return 0
	}

	if (opts.input == "") == (opts.dir == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -input or -dir is required")
		fs.Usage()
		return 3
	}
	if opts.dir != "" && (opts.xlsxPath != "" || opts.icsPath != "") {
		fmt.Fprintln(os.Stderr, "-xlsx and -ics require -input")
		return 3
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 3
	}
	// Explicitly set flags win over the config file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "timeout":
			cfg.Solver.Timeout = opts.timeout
		case "workers":
			cfg.Solver.Workers = opts.workers
		}
	})

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		return 3
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	if cfg.Solver.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Solver.Timeout)
		defer cancel()
	}

	if opts.input != "" {
		return runSingle(ctx, opts, cfg, logger)
	}
	return runBatch(ctx, opts, cfg, logger)
}

func runSingle(ctx context.Context, opts options, cfg *config.Config, logger *zap.Logger) int {
	in, err := instance.Load(opts.input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load instance: %v\n", err)
		return 3
	}
	p, err := in.Problem()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid instance %s: %v\n", opts.input, err)
		return 3
	}

	solver := theatre.NewSolverWithConfig(p, &theatre.Config{
		MaxTeamSize: cfg.Solver.MaxTeamSize,
		Logger:      logger,
	})
	res := solver.Solve(ctx)

	if err := printResult(opts, in, res); err != nil {
		fmt.Fprintf(os.Stderr, "print result: %v\n", err)
		return 3
	}
	if res.Status == theatre.StatusScheduled {
		if err := writeExports(opts, in, res.Schedule); err != nil {
			fmt.Fprintf(os.Stderr, "export: %v\n", err)
			return 3
		}
	} else if opts.xlsxPath != "" || opts.icsPath != "" {
		logger.Warn("no schedule to export", zap.String("status", string(res.Status)))
	}
	return exitCode(res.Status)
}

func runBatch(ctx context.Context, opts options, cfg *config.Config, logger *zap.Logger) int {
	requests, err := loadBatch(opts.dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load batch: %v\n", err)
		return 3
	}
	if len(requests) == 0 {
		fmt.Fprintf(os.Stderr, "no instance files in %s\n", opts.dir)
		return 3
	}

	mon := theatre.NewMonitor()
	outcomes := theatre.SolveBatch(ctx, requests, &theatre.BatchOptions{
		Workers: cfg.Solver.Workers,
		Config:  &theatre.Config{MaxTeamSize: cfg.Solver.MaxTeamSize, Monitor: mon},
		Logger:  logger,
	})

	switch {
	case opts.quiet:
	case opts.jsonOut:
		if err := printBatchJSON(outcomes); err != nil {
			fmt.Fprintf(os.Stderr, "print results: %v\n", err)
			return 3
		}
	default:
		for _, out := range outcomes {
			if out.Err != nil {
				fmt.Printf("%s: error: %v\n", out.ID, out.Err)
				continue
			}
			fmt.Printf("%s: %s\n", out.ID, render.Summary(out.Result))
		}
		fmt.Printf("batch totals: %s\n", mon.Snapshot())
	}

	code := 0
	for _, out := range outcomes {
		switch {
		case out.Err != nil:
			code = max(code, 3)
		case out.Result.Status == theatre.StatusCancelled:
			code = max(code, 2)
		case out.Result.Status == theatre.StatusInfeasible:
			code = max(code, 1)
		}
	}
	return code
}

// loadBatch reads every .yaml/.yml under dir, sorted by name so batch
// output order is stable. The file stem becomes the request identifier.
func loadBatch(dir string) ([]theatre.BatchRequest, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	requests := make([]theatre.BatchRequest, 0, len(names))
	for _, name := range names {
		in, err := instance.Load(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		requests = append(requests, theatre.BatchRequest{
			ID:         strings.TrimSuffix(name, filepath.Ext(name)),
			Surgeries:  in.Surgeries,
			Staff:      in.Staff,
			TotalSlots: in.TotalSlots,
		})
	}
	return requests, nil
}

func printResult(opts options, in *instance.Instance, res *theatre.Result) error {
	if opts.quiet {
		return nil
	}
	if opts.jsonOut {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	fmt.Println(render.Summary(res))
	switch res.Status {
	case theatre.StatusScheduled:
		fmt.Print(render.Schedule(in, res.Schedule))
	case theatre.StatusInfeasible:
		fmt.Print(render.Reasons(res.Reasons))
	}
	return nil
}

func writeExports(opts options, in *instance.Instance, sched theatre.Schedule) error {
	if opts.xlsxPath != "" {
		data, err := export.Workbook(in, sched)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.xlsxPath, data, 0o644); err != nil {
			return err
		}
	}
	if opts.icsPath != "" {
		data, err := export.Calendar(in, sched)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.icsPath, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func printBatchJSON(outcomes []theatre.BatchOutcome) error {
	type report struct {
		ID     string          `json:"id"`
		Result *theatre.Result `json:"result,omitempty"`
		Error  string          `json:"error,omitempty"`
	}
	reports := make([]report, len(outcomes))
	for i, out := range outcomes {
		reports[i] = report{ID: out.ID, Result: out.Result}
		if out.Err != nil {
			reports[i].Error = out.Err.Error()
		}
	}
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func exitCode(status theatre.Status) int {
	switch status {
	case theatre.StatusScheduled:
		return 0
	case theatre.StatusInfeasible:
		return 1
	case theatre.StatusCancelled:
		return 2
	}
	return 3
}
