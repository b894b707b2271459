package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"unitc/internal/attrib"
	"unitc/internal/buildpipeline"
	"unitc/internal/diag"
	"unitc/internal/diagfmt"
	"unitc/internal/frontend/execpass"
	"unitc/internal/observ"
	"unitc/internal/outmap"
	"unitc/internal/project"
	"unitc/internal/trace"
	"unitc/internal/version"
)

type outputFormat string

const (
	formatPretty outputFormat = "pretty"
	formatJSON   outputFormat = "json"
	formatShort  outputFormat = "short"
	formatSarif  outputFormat = "sarif"
)

func readOutputFormat(value string) (outputFormat, error) {
	switch f := outputFormat(strings.TrimSpace(strings.ToLower(value))); f {
	case formatPretty, formatJSON, formatShort, formatSarif:
		return f, nil
	case "":
		return formatPretty, nil
	default:
		return "", fmt.Errorf("unsupported format %q (must be pretty, json, short or sarif)", value)
	}
}

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [flags] [path]",
		Short: "Compile the production and test sources of a project",
		Long:  "Compile a project described by unitc.toml. The manifest is looked up from path (default: current directory) upwards.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  buildExecution,
	}
	cmd.Flags().String("format", string(formatPretty), "diagnostics format (pretty|json|short|sarif)")
	cmd.Flags().String("emit-map", "", "write the source-to-class map to this file")
	cmd.Flags().Bool("timings", false, "print per-pass timings")
	return cmd
}

type buildOptions struct {
	format   outputFormat
	emitMap  string
	timings  bool
	quiet    bool
	maxDiags int
	ui       uiMode
}

func readBuildOptions(cmd *cobra.Command) (buildOptions, error) {
	var opts buildOptions
	formatValue, err := cmd.Flags().GetString("format")
	if err != nil {
		return opts, err
	}
	if opts.format, err = readOutputFormat(formatValue); err != nil {
		return opts, err
	}
	if opts.emitMap, err = cmd.Flags().GetString("emit-map"); err != nil {
		return opts, err
	}
	if opts.timings, err = cmd.Flags().GetBool("timings"); err != nil {
		return opts, err
	}
	if opts.quiet, err = cmd.Flags().GetBool("quiet"); err != nil {
		return opts, err
	}
	if opts.maxDiags, err = cmd.Flags().GetInt("max-diagnostics"); err != nil {
		return opts, err
	}
	if opts.maxDiags < 0 {
		return opts, fmt.Errorf("--max-diagnostics must not be negative")
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return opts, err
	}
	if opts.ui, err = readUIMode(uiValue); err != nil {
		return opts, err
	}
	return opts, nil
}

func buildExecution(cmd *cobra.Command, args []string) error {
	opts, err := readBuildOptions(cmd)
	if err != nil {
		return err
	}

	timer := observ.NewTimer()
	startDir := "."
	if len(args) == 1 {
		startDir = args[0]
	}
	phase := timer.Begin("manifest")
	manifest, err := project.Load(startDir)
	if err != nil {
		return err
	}
	timer.End(phase, manifest.Path)

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	tracer := trace.FromContext(cmd.Context())

	production := newPass(manifest, false)
	test := newPass(manifest, true)
	phase = timer.Begin("discover")
	sources := [2][]string{}
	for _, isTest := range []bool{false, true} {
		files, err := manifest.Discover(isTest)
		if err != nil {
			return err
		}
		sources[buildpipeline.RoleFor(isTest)] = files
	}
	timer.End(phase, fmt.Sprintf("%d files", len(sources[0])+len(sources[1])))

	var units *buildpipeline.Units
	newUnits := func(progress buildpipeline.ProgressSink) (*buildpipeline.Units, error) {
		u, err := buildpipeline.NewUnits(production, test,
			buildpipeline.WithTracer(tracer), buildpipeline.WithProgress(progress))
		if err != nil {
			return nil, err
		}
		for _, isTest := range []bool{false, true} {
			for _, path := range sources[buildpipeline.RoleFor(isTest)] {
				u.Register(path, isTest)
			}
		}
		units = u
		return u, nil
	}

	bag := diag.NewBag(opts.maxDiags)
	errorCount := 0
	sink := diag.MultiSink{
		diag.BagSink{Bag: bag},
		diag.SinkFunc(func(sev diag.Severity, _, _ string, _, _ int) {
			if sev == diag.SevError {
				errorCount++
			}
		}),
	}

	title := fmt.Sprintf("building %s", manifest.Config.Package.Name)
	var items []attrib.OutputItem
	view := selectProgressView(opts.ui, opts.format, opts.quiet)
	if view == progressTUI {
		items, err = runCompileWithUI(title, newUnits, sink)
	} else {
		var progress buildpipeline.ProgressSink
		if view == progressLog {
			progress = passLogger(cmd.ErrOrStderr())
		}
		var u *buildpipeline.Units
		if u, err = newUnits(progress); err == nil {
			items, err = u.CompileAll(sink)
		}
	}
	if err != nil {
		return err
	}
	recordPasses(timer, units.Timings(), sources)

	phase = timer.Begin("render")
	if err := renderDiagnostics(cmd.OutOrStdout(), bag, manifest.Root, opts); err != nil {
		return err
	}
	timer.End(phase, string(opts.format))

	if opts.emitMap != "" {
		m, err := outmap.New(manifest.Config.Package.Name, items)
		if err != nil {
			return err
		}
		if err := m.Write(opts.emitMap); err != nil {
			return fmt.Errorf("failed to write output map: %w", err)
		}
	}

	if opts.timings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}

	if errorCount > 0 {
		return errBuildFailed
	}
	return nil
}

func newPass(m *project.Manifest, isTest bool) *execpass.Pass {
	return execpass.New(execpass.Config{
		Command:   m.Config.Compiler.Command,
		OutputDir: m.OutputDir(isTest),
		Classpath: m.Classpath(isTest),
		Dir:       m.Root,
		Jobs:      m.Config.Compiler.Jobs,
	})
}

func renderDiagnostics(w io.Writer, bag *diag.Bag, baseDir string, opts buildOptions) error {
	switch opts.format {
	case formatJSON:
		return diagfmt.JSON(w, bag, diagfmt.JSONOpts{IncludePositions: true, BaseDir: baseDir})
	case formatShort:
		return diagfmt.Short(w, bag, baseDir)
	case formatSarif:
		return diagfmt.Sarif(w, bag, diagfmt.SarifRunMeta{
			ToolName:       "unitc",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		})
	default:
		if opts.quiet && !bag.HasErrors() && !bag.HasWarnings() {
			return nil
		}
		return diagfmt.Pretty(w, bag, diagfmt.PrettyOpts{
			Color:   !color.NoColor,
			BaseDir: baseDir,
			Summary: !opts.quiet,
		})
	}
}

// passLogger prints one line per finished pass.
func passLogger(w io.Writer) buildpipeline.ProgressSink {
	return buildpipeline.ProgressFunc(func(ev buildpipeline.Event) {
		if ev.Status != buildpipeline.StatusDone && ev.Status != buildpipeline.StatusError {
			return
		}
		fmt.Fprintf(w, "%s: %d sources, %d classes (%s)\n", ev.Pass, ev.Sources, ev.Items, ev.Status)
	})
}

func recordPasses(timer *observ.Timer, t buildpipeline.Timings, sources [2][]string) {
	for _, role := range []buildpipeline.Role{buildpipeline.RoleProduction, buildpipeline.RoleTest} {
		if t.Has(role) {
			timer.Record(role.String()+" pass", t.Duration(role), fmt.Sprintf("%d sources", len(sources[role])))
		}
	}
}
