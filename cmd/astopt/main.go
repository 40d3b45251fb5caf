// Command astopt is a reference host for the optimizer. It reads pre-parsed
// units from a directory of *.ast.json files, runs them through the
// pre-compilation hook and writes the rewritten units and a change report.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/orizon-lang/astopt/internal/astjson"
	"github.com/orizon-lang/astopt/internal/cli"
	"github.com/orizon-lang/astopt/internal/config"
	"github.com/orizon-lang/astopt/internal/host"
	"github.com/orizon-lang/astopt/internal/optimize"
)

const toolName = "astopt"

var commandInfo = cli.CommandInfo{
	Name:        toolName,
	Usage:       "astopt -in <dir> [-out <dir>] [-config <file>] [-report <file>] [-json] [-watch]",
	Description: "Optimize pre-parsed component scripts before compilation",
	Examples: []string{
		"astopt -in build/ast -out build/ast-opt",
		"astopt -in build/ast -json -report report.json",
		"astopt -in build/ast -out build/ast-opt -config astopt.json -watch",
	},
	Flags: []cli.FlagInfo{
		{Name: "in", Usage: "directory of *.ast.json units"},
		{Name: "out", Usage: "directory for rewritten units"},
		{Name: "config", Usage: "JSON configuration file", Default: "astopt.json"},
		{Name: "report", Usage: "write the change report to a file instead of stdout"},
		{Name: "json", Usage: "print the report (or version) as JSON"},
		{Name: "watch", Usage: "re-run whenever the configuration file changes"},
		{Name: "version", Usage: "print version information"},
	},
}

type options struct {
	configPath string
	inDir      string
	outDir     string
	reportPath string
	jsonOut    bool
	watch      bool
	version    bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	var opts options
	fs := flag.NewFlagSet(toolName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { cli.PrintCommandUsage(stderr, commandInfo) }

	fs.StringVar(&opts.configPath, "config", "astopt.json", "JSON configuration file")
	fs.StringVar(&opts.inDir, "in", "", "directory of *.ast.json units")
	fs.StringVar(&opts.outDir, "out", "", "directory for rewritten units")
	fs.StringVar(&opts.reportPath, "report", "", "write the change report to this file")
	fs.BoolVar(&opts.jsonOut, "json", false, "JSON output")
	fs.BoolVar(&opts.watch, "watch", false, "re-run on configuration changes")
	fs.BoolVar(&opts.version, "version", false, "print version information")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if !opts.version && opts.inDir == "" {
		fs.Usage()
		return nil, fmt.Errorf("-in is required")
	}
	return &opts, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if opts.version {
		cli.PrintVersion(stdout, toolName, opts.jsonOut)
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger, level := cli.NewLogger(cli.LogOptions{Format: cfg.LogFormat, Debug: cfg.Debug, Output: stderr})
	toggles := optimize.NewToggles(cfg.Enabled, cfg.Debug, level)
	pipeline := optimize.NewPipeline(optimize.DefaultPasses(),
		optimize.WithLogger(logger),
		optimize.WithToggles(toggles),
		optimize.WithFilter(cfg.Filter()),
	)
	registry := host.NewRegistry()
	if err := registry.RegisterPipeline(pipeline); err != nil {
		logger.Error("Hook registration failed", "error", err)
		return 1
	}

	sess := &session{opts: opts, registry: registry, pipeline: pipeline, logger: logger, stdout: stdout}
	if err := sess.compile(); err != nil {
		logger.Error("Compilation failed", "error", err)
		return 1
	}
	if !opts.watch {
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = config.Watch(ctx, opts.configPath, func(cfg *config.Config, err error) {
		if err != nil {
			logger.Warn("Configuration reload failed", "path", opts.configPath, "error", err)
			return
		}
		cfg.Apply(toggles)
		pipeline.SetFilter(cfg.Filter())
		logger.Info("Configuration reloaded", "path", opts.configPath,
			"enabled", cfg.Enabled, "debug", cfg.Debug, "disabled_passes", cfg.DisabledPasses)
		if err := sess.compile(); err != nil {
			logger.Error("Compilation failed", "error", err)
		}
	})
	if err != nil {
		logger.Error("Cannot watch configuration", "path", opts.configPath, "error", err)
		return 1
	}
	logger.Info("Watching configuration", "path", opts.configPath)
	<-ctx.Done()
	return 0
}

// session is one host process: its registry and the pipeline behind it.
type session struct {
	opts     *options
	registry *host.Registry
	pipeline *optimize.Pipeline
	logger   *slog.Logger
	stdout   io.Writer
}

// compile reads every unit, invokes the hooks and writes the results.
func (s *session) compile() error {
	units, err := astjson.ReadDir(os.DirFS(s.opts.inDir))
	if err != nil {
		return err
	}
	s.logger.Debug("Units loaded", "dir", s.opts.inDir, "units", len(units))

	out := s.registry.Invoke(units)

	if s.opts.outDir != "" {
		if err := astjson.WriteDir(s.opts.outDir, out); err != nil {
			return fmt.Errorf("failed to write units: %w", err)
		}
	}
	return s.report(buildSummary(s.pipeline.Context(), len(units)))
}

func (s *session) report(sum summary) error {
	w := s.stdout
	width := defaultWidth
	if f, ok := w.(*os.File); ok {
		width = terminalWidth(f)
	}
	if s.opts.reportPath != "" {
		f, err := os.Create(s.opts.reportPath)
		if err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		defer f.Close()
		w, width = f, defaultWidth
	}

	if s.opts.jsonOut {
		return writeJSON(w, sum)
	}
	writeText(w, sum, width)
	return nil
}
