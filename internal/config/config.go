// Package config loads the run configuration from flags, environment and an
// optional .codemodder.yaml file.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the project directory.
const FileName = ".codemodder"

// EnvPrefix prefixes environment overrides, e.g. CODEMODDER_PARALLEL.
const EnvPrefix = "CODEMODDER"

// Keys.
const (
	KeyConfig         = "config"
	KeyOutput         = "output"
	KeyCodemodInclude = "codemod-include"
	KeyCodemodExclude = "codemod-exclude"
	KeyPathInclude    = "path-include"
	KeyPathExclude    = "path-exclude"
	KeyParallel       = "parallel"
	KeyDryRun         = "dry-run"
	KeyLogLevel       = "log-level"
	KeyLogFormat      = "log-format"
	KeySemgrepEnabled = "semgrep.enabled"
	KeySemgrepBinary  = "semgrep.binary"
	KeyMetricsFile    = "metrics-file"
	KeyNoTUI          = "no-tui"
)

// DefaultPathInclude selects every python file.
var DefaultPathInclude = []string{"**/*.py"}

// DefaultPathExclude skips tests, virtualenvs and build output. User excludes
// are added to these, never substituted for them.
var DefaultPathExclude = []string{
	"**/test/**",
	"**/tests/**",
	"**/conftest.py",
	"**/build/**",
	"**/dist/**",
	"**/venv/**",
	"**/.venv/**",
	"**/site-packages/**",
	"**/.tox/**",
}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Semgrep configures the external scanner.
type Semgrep struct {
	Enabled bool   `mapstructure:"enabled"`
	Binary  string `mapstructure:"binary" validate:"required_if=Enabled true"`
}

// Config is the validated run configuration.
type Config struct {
	Directory      string   `mapstructure:"-" validate:"required,dir"`
	Output         string   `mapstructure:"output" validate:"required"`
	CodemodInclude []string `mapstructure:"codemod-include"`
	CodemodExclude []string `mapstructure:"codemod-exclude"`
	PathInclude    []string `mapstructure:"path-include" validate:"dive,required,pathglob"`
	PathExclude    []string `mapstructure:"path-exclude" validate:"dive,required,pathglob"`
	Parallel       int      `mapstructure:"parallel" validate:"min=1,max=1024"`
	DryRun         bool     `mapstructure:"dry-run"`
	LogLevel       string   `mapstructure:"log-level" validate:"omitempty,oneof=trace debug info warn error disabled"`
	LogFormat      string   `mapstructure:"log-format" validate:"oneof=console json"`
	Semgrep        Semgrep  `mapstructure:"semgrep"`
	MetricsFile    string   `mapstructure:"metrics-file"`
	NoTUI          bool     `mapstructure:"no-tui"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPathInclude, DefaultPathInclude)
	v.SetDefault(KeyParallel, runtime.NumCPU())
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeySemgrepBinary, "semgrep")
}

// Load reads the configuration for a run over directory. Values come, in
// increasing priority, from defaults, the config file, the environment and
// flags already bound to v.
func Load(v *viper.Viper, directory string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, directory); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	cfg.Directory = directory
	cfg.PathExclude = withDefaultExcludes(cfg.PathExclude)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func readConfigFile(v *viper.Viper, directory string) error {
	if file := v.GetString(KeyConfig); file != "" {
		v.SetConfigFile(file)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", file, err)
		}

		return nil
	}

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(directory)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config in %s: %w", directory, err)
		}
	}

	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("pathglob", func(fl validator.FieldLevel) bool {
		return doublestar.ValidatePattern(stripLine(fl.Field().String()))
	}); err != nil {
		panic(err)
	}

	return v
}

// stripLine drops a trailing `:line` suffix from a path pattern.
func stripLine(pattern string) string {
	i := strings.LastIndex(pattern, ":")
	if i < 0 {
		return pattern
	}

	if line, err := strconv.Atoi(pattern[i+1:]); err != nil || line <= 0 {
		return pattern
	}

	return pattern[:i]
}

func withDefaultExcludes(user []string) []string {
	out := slices.Clone(DefaultPathExclude)

	for _, p := range user {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}

	return out
}

// Validate checks field constraints and the rules that span fields.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag()))
			}

			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, ", "))
		}

		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if len(c.CodemodInclude) > 0 && len(c.CodemodExclude) > 0 {
		return fmt.Errorf("%w: codemod-include and codemod-exclude are mutually exclusive", ErrInvalid)
	}

	return nil
}
