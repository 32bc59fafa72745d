package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/samdwyer/dungeongrammar/internal/config"
	"github.com/samdwyer/dungeongrammar/internal/generator"
	"github.com/samdwyer/dungeongrammar/internal/logging"
)

// EnvPrefix namespaces flag overrides in the environment, e.g.
// DUNGEONGRAMMAR_CANDIDATES=16 or DUNGEONGRAMMAR_NO_NARRATIVE=true.
const EnvPrefix = "DUNGEONGRAMMAR"

const (
	flagConfig      = "config"
	flagIterations  = "iterations"
	flagFormat      = "format"
	flagCandidates  = "candidates"
	flagSeed        = "seed"
	flagWorkers     = "workers"
	flagMaxSymbols  = "max-symbols"
	flagNoNarrative = "no-narrative"
	flagVerbose     = "verbose"
	flagAddr        = "addr"
)

// Output formats for the build command.
const (
	FormatJSON  = "json"
	FormatASCII = "ascii"
)

type settings struct {
	ConfigPath  string
	Iterations  int
	Format      string
	Candidates  int
	Seed        int64
	Workers     int
	MaxSymbols  int
	NoNarrative bool
	Verbose     bool
	Addr        string
}

// addGenerationFlags registers the flags shared by build, view and serve.
func addGenerationFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String(flagConfig, "", "path to a TOML config (default: embedded)")
	f.Int(flagIterations, -1, "override the configured grammar iterations")
	f.Int(flagCandidates, 0, "override the configured candidate count")
	f.Int64(flagSeed, 0, "run seed; 0 picks a random one")
	f.Int(flagWorkers, 0, "override the configured worker count")
	f.Int(flagMaxSymbols, -1, "override the expansion size limit; 0 disables it")
	f.Bool(flagNoNarrative, false, "use fallback text instead of the text service")
	f.BoolP(flagVerbose, "v", false, "debug logging")
}

// readSettings layers environment overrides under explicitly set flags.
func readSettings(cmd *cobra.Command) (settings, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return settings{}, fmt.Errorf("bind flags: %w", err)
	}

	s := settings{
		ConfigPath:  v.GetString(flagConfig),
		Iterations:  v.GetInt(flagIterations),
		Format:      v.GetString(flagFormat),
		Candidates:  v.GetInt(flagCandidates),
		Seed:        v.GetInt64(flagSeed),
		Workers:     v.GetInt(flagWorkers),
		MaxSymbols:  v.GetInt(flagMaxSymbols),
		NoNarrative: v.GetBool(flagNoNarrative),
		Verbose:     v.GetBool(flagVerbose),
		Addr:        v.GetString(flagAddr),
	}
	if s.Candidates < 0 || s.Workers < 0 {
		return settings{}, fmt.Errorf("candidates and workers must not be negative")
	}
	return s, nil
}

// loadConfig reads the config file, or the embedded default, and applies
// environment overrides.
func (s settings) loadConfig(env config.Env) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if s.ConfigPath == "" {
		cfg, err = config.Default()
	} else {
		cfg, err = config.Load(s.ConfigPath)
	}
	if err != nil {
		return nil, err
	}
	env.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s settings) options(log *zap.Logger) generator.Options {
	opts := generator.Options{
		Candidates:  s.Candidates,
		Workers:     s.Workers,
		NoNarrative: s.NoNarrative,
		Logger:      log,
	}
	if s.MaxSymbols >= 0 {
		maxSymbols := s.MaxSymbols
		opts.MaxSymbols = &maxSymbols
	}
	if s.Iterations >= 0 {
		iterations := s.Iterations
		opts.Iterations = &iterations
	}
	return opts
}

// prepare resolves everything a generating command needs.
func prepare(cmd *cobra.Command, env config.Env) (settings, *config.Config, *zap.Logger, error) {
	s, err := readSettings(cmd)
	if err != nil {
		return s, nil, nil, err
	}
	log, err := logging.New(s.Verbose)
	if err != nil {
		return s, nil, nil, err
	}
	cfg, err := s.loadConfig(env)
	if err != nil {
		return s, nil, nil, err
	}
	return s, cfg, log, nil
}
