// Package cmd provides the root command and CLI setup for codemodder.
package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mouse-blink/codemodder/internal/adapter"
	"github.com/mouse-blink/codemodder/internal/config"
	"github.com/mouse-blink/codemodder/internal/controller"
	"github.com/mouse-blink/codemodder/internal/domain"
	"github.com/mouse-blink/codemodder/internal/domain/codemods"
	"github.com/mouse-blink/codemodder/internal/logging"
	m "github.com/mouse-blink/codemodder/internal/model"
)

// version is set at build time with -ldflags "-X".
var version = "dev"

var fsAdapter adapter.SourceFSAdapter
var pythonFileAdapter adapter.PythonFileAdapter
var reportStore adapter.ReportStore
var ui controller.UI
var workflow domain.Workflow

// workflowFor builds the workflow of a run once its configuration is known.
var workflowFor func(cmd *cobra.Command, cfg *config.Config) domain.Workflow

func init() {
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	pythonFileAdapter = adapter.NewLocalPythonFileAdapter()
	reportStore = adapter.NewReportStore()
	workflow = domain.NewWorkflow(
		fsAdapter,
		pythonFileAdapter,
		reportStore,
		adapter.NewSemgrepScanner("semgrep"),
		ui,
	)
	workflowFor = func(cmd *cobra.Command, cfg *config.Config) domain.Workflow {
		return domain.NewWorkflow(
			fsAdapter,
			pythonFileAdapter,
			reportStore,
			adapter.NewSemgrepScanner(cfg.Semgrep.Binary),
			controller.NewUI(cmd, !cfg.NoTUI && controller.IsTTY(cmd.OutOrStdout())),
		)
	}
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "codemodder <directory>",
		Short: "Automated security fixes for python projects",
		Long: `Codemodder rewrites python source in place with a fixed set of
security and quality codemods and records every change in a CodeTF report.

Path patterns accept an optional line suffix:
  --path-include "src/**/*.py"     process every file under src
  --path-include "src/app.py:12"   only rewrite line 12 of src/app.py
  --path-exclude "src/app.py:40"   never rewrite line 40 of src/app.py`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCodemods(cmd, v, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringP("output", "o", "", "path of the CodeTF report to write")
	flags.String("config", "", "config file (default is <directory>/.codemodder.yaml)")
	flags.StringSlice("codemod-include", nil, "comma-separated codemods to run (default all)")
	flags.StringSlice("codemod-exclude", nil, "comma-separated codemods to skip")
	flags.StringSlice("path-include", nil, "glob[:line] of files to process (can be repeated)")
	flags.StringSlice("path-exclude", nil, "glob[:line] of files or lines to skip, added to the default excludes (can be repeated)")
	flags.IntP("parallel", "p", 0, "number of files processed at once (default number of CPUs)")
	flags.Bool("dry-run", false, "compute the report without writing files")
	flags.Bool("semgrep", false, "run semgrep and restrict rule based codemods to its findings")
	flags.String("metrics-file", "", "write prometheus metrics of the run to this file")
	flags.String("log-level", "", "log level (trace, debug, info, warn, error, disabled)")
	flags.String("log-format", "", "log format (console or json)")
	flags.Bool("no-tui", false, "disable the interactive progress view")

	bindFlags(v, cmd, map[string]string{
		config.KeyOutput:         "output",
		config.KeyConfig:         "config",
		config.KeyCodemodInclude: "codemod-include",
		config.KeyCodemodExclude: "codemod-exclude",
		config.KeyPathInclude:    "path-include",
		config.KeyPathExclude:    "path-exclude",
		config.KeyParallel:       "parallel",
		config.KeyDryRun:         "dry-run",
		config.KeySemgrepEnabled: "semgrep",
		config.KeyMetricsFile:    "metrics-file",
		config.KeyLogLevel:       "log-level",
		config.KeyLogFormat:      "log-format",
		config.KeyNoTUI:          "no-tui",
	})

	return cmd
}

// bindFlags binds viper keys to flags of cmd. Flags override the config file.
func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for key, flag := range keys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func runCodemods(cmd *cobra.Command, v *viper.Viper, dirArg string) error {
	directory, err := filepath.Abs(dirArg)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	cfg, err := config.Load(v, directory)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	if err := logging.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	selected, err := codemods.Registry().Select(cfg.CodemodInclude, cfg.CodemodExclude)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	var rules map[string][]byte
	if cfg.Semgrep.Enabled {
		if rules, err = codemods.RuleFiles(); err != nil {
			return &ExitError{Code: ExitFailure, Err: err}
		}
	}

	output, err := filepath.Abs(cfg.Output)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	_, err = workflowFor(cmd, cfg).Run(ctx, domain.RunArgs{
		Directory:   m.Path(directory),
		Output:      m.Path(output),
		PathInclude: cfg.PathInclude,
		PathExclude: cfg.PathExclude,
		Codemods:    selected,
		Scan:        cfg.Semgrep.Enabled,
		Rules:       rules,
		Parallel:    cfg.Parallel,
		DryRun:      cfg.DryRun,
		CommandLine: os.Args[1:],
		Version:     version,
		MetricsFile: m.Path(cfg.MetricsFile),
	})

	return exitErrorFor(err)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(ExitCode(err))
	}
}

// ExitCode maps an error returned by a command to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return ExitFailure
}
