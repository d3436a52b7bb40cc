package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mouse-blink/codemodder/internal/adapter"
	"github.com/mouse-blink/codemodder/internal/controller"
	"github.com/mouse-blink/codemodder/internal/domain/transform"
	"github.com/mouse-blink/codemodder/internal/logging"
	m "github.com/mouse-blink/codemodder/internal/model"
)

// RunArgs holds the inputs of one codemod run.
type RunArgs struct {
	// Directory is the absolute project directory.
	Directory   m.Path
	Output      m.Path
	PathInclude []string
	PathExclude []string
	// Codemods run on every file in this order.
	Codemods []transform.Codemod
	// Scan enables the external scanner with the given rule files.
	Scan  bool
	Rules map[string][]byte
	// Parallel bounds the number of files processed at once.
	Parallel    int
	DryRun      bool
	CommandLine []string
	Version     string
	MetricsFile m.Path
}

// ViewArgs holds the inputs of the view command.
type ViewArgs struct {
	Report m.Path
}

// Workflow defines the operations behind the CLI commands.
type Workflow interface {
	Run(ctx context.Context, args RunArgs) (*m.CodeTF, error)
	List(codemods []transform.Codemod) error
	View(args ViewArgs) error
}

type workflow struct {
	fsAdapter   adapter.SourceFSAdapter
	parser      adapter.PythonFileAdapter
	reportStore adapter.ReportStore
	scanner     adapter.Scanner
	ui          controller.UI
}

// NewWorkflow creates a new Workflow instance with the provided adapters.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	parser adapter.PythonFileAdapter,
	reportStore adapter.ReportStore,
	scanner adapter.Scanner,
	ui controller.UI,
) Workflow {
	return &workflow{
		fsAdapter:   fsAdapter,
		parser:      parser,
		reportStore: reportStore,
		scanner:     scanner,
		ui:          ui,
	}
}

// Run selects the sources, applies the codemods to each file on a bounded
// worker pool, writes rewritten files unless DryRun is set and stores the
// report. A file that fails is recorded in the report and does not stop the
// others. Report write failures return an ErrorTypeReport error; files that
// could not be read or written return an ErrorTypeIO error after the report
// is stored.
func (w *workflow) Run(ctx context.Context, args RunArgs) (*m.CodeTF, error) {
	start := time.Now()
	logger := log.With().Str("run_id", uuid.NewString()).Logger()

	scope := newPathScope(args.PathInclude, args.PathExclude)
	include, exclude := scope.fileGlobs()

	sources, err := w.fsAdapter.Get(args.Directory, include, exclude)
	if err != nil {
		return nil, logging.NewError(logging.ErrorTypeIO, "failed to collect sources", err, map[string]interface{}{
			"directory": string(args.Directory),
		})
	}

	logger.Info().
		Str("directory", string(args.Directory)).
		Int("files", len(sources)).
		Int("codemods", len(args.Codemods)).
		Bool("dry_run", args.DryRun).
		Msg("starting codemod run")

	findings := w.scan(ctx, logger, args)

	if err := w.ui.Start(controller.WithTotal(len(sources))); err != nil {
		return nil, err
	}

	results := w.process(ctx, logger, args, scope, sources, findings)

	w.ui.Close()
	w.ui.Wait()

	elapsed := time.Since(start)
	report := BuildCodeTF(ReportArgs{
		Version:     args.Version,
		Elapsed:     elapsed,
		CommandLine: args.CommandLine,
		Directory:   args.Directory,
	}, args.Codemods, results)

	w.writeMetrics(logger, args.MetricsFile, results, elapsed)

	if err := w.reportStore.SaveReport(args.Output, report); err != nil {
		rerr := logging.NewError(logging.ErrorTypeReport, "failed to write report", err, map[string]interface{}{
			"output": string(args.Output),
		})
		logging.LogError(logger, rerr)

		return report, rerr
	}

	logger.Info().
		Str("output", string(args.Output)).
		Int("failed_files", len(report.Run.FailedFiles)).
		Dur("elapsed", elapsed).
		Msg("report written")

	if err := w.ui.DisplayReport(report); err != nil {
		return report, err
	}

	if n := countIOFailures(results); n > 0 {
		return report, logging.NewError(logging.ErrorTypeIO, fmt.Sprintf("%d file(s) could not be read or written", n), nil, nil)
	}

	return report, nil
}

// List shows the given codemods.
func (w *workflow) List(codemods []transform.Codemod) error {
	return w.ui.DisplayCodemods(codemods)
}

// View loads a stored report and shows its summary.
func (w *workflow) View(args ViewArgs) error {
	report, err := w.reportStore.LoadReport(args.Report)
	if err != nil {
		return logging.NewError(logging.ErrorTypeIO, "failed to read report", err, map[string]interface{}{
			"report": string(args.Report),
		})
	}

	return w.ui.DisplayReport(report)
}

// scan runs the external scanner. Scanner failures are logged and the run
// continues with no findings.
func (w *workflow) scan(ctx context.Context, logger zerolog.Logger, args RunArgs) adapter.Findings {
	if !args.Scan {
		return nil
	}

	findings, err := w.scanner.Scan(ctx, args.Directory, args.Rules)
	if err != nil {
		logging.LogError(logger, logging.NewError(logging.ErrorTypeScan, "scanner failed, continuing without findings", err, nil))

		return adapter.Findings{}
	}

	logger.Debug().Int("files", len(findings)).Msg("scanner finished")

	return findings
}

// process fans sources out over at most args.Parallel goroutines. Results
// keep the order of sources.
func (w *workflow) process(
	ctx context.Context,
	logger zerolog.Logger,
	args RunArgs,
	scope pathScope,
	sources []m.Source,
	findings adapter.Findings,
) []m.FileResult {
	results := make([]m.FileResult, len(sources))
	eng := NewEngine(w.parser, args.Codemods)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, args.Parallel))

	for i, src := range sources {
		i, src := i, src
		src.Filter = scope.lineFilter(src.Rel)

		g.Go(func() error {
			results[i] = w.processFile(gctx, logger, eng, args, src, findings[src.Rel])
			w.ui.FileProcessed(results[i])

			return nil
		})
	}

	_ = g.Wait()

	return results
}

func (w *workflow) processFile(
	ctx context.Context,
	logger zerolog.Logger,
	eng Engine,
	args RunArgs,
	src m.Source,
	findings map[string][]m.Finding,
) m.FileResult {
	fields := map[string]interface{}{"file": string(src.Rel)}

	content, err := w.fsAdapter.ReadFile(src.Path)
	if err != nil {
		result := m.FileResult{Source: src, Err: logging.NewError(logging.ErrorTypeIO, "failed to read file", err, fields)}
		logging.LogError(logger, result.Err)

		return result
	}

	file := &transform.FileContext{
		Path:           src.Rel,
		ProjectDir:     string(args.Directory),
		Filter:         src.Filter,
		Findings:       findings,
		ScannerEnabled: args.Scan,
	}

	result := eng.Apply(ctx, file, src, content)
	if result.Err != nil {
		logging.LogError(logger, result.Err)

		return result
	}

	if !result.Changed() || args.DryRun {
		return result
	}

	if err := w.fsAdapter.WriteFile(src.Path, result.Rewritten); err != nil {
		result.Err = logging.NewError(logging.ErrorTypeIO, "failed to write file", err, fields)
		logging.LogError(logger, result.Err)
	}

	return result
}

func (w *workflow) writeMetrics(logger zerolog.Logger, path m.Path, results []m.FileResult, elapsed time.Duration) {
	if path == "" {
		return
	}

	metrics := adapter.NewMetrics()
	for _, r := range results {
		metrics.ObserveFile(r)
	}

	metrics.ObserveRun(elapsed)

	if err := metrics.WriteTextfile(path); err != nil {
		logging.LogError(logger, logging.NewError(logging.ErrorTypeIO, "failed to write metrics", err, map[string]interface{}{
			"metrics_file": string(path),
		}))
	}
}

func countIOFailures(results []m.FileResult) int {
	n := 0

	for _, r := range results {
		if t, ok := logging.TypeOf(r.Err); ok && t == logging.ErrorTypeIO {
			n++
		}
	}

	return n
}
