package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/samdwyer/dungeongrammar/internal/config"
	"github.com/samdwyer/dungeongrammar/internal/generator"
	"github.com/samdwyer/dungeongrammar/internal/server"
	"github.com/samdwyer/dungeongrammar/internal/ui"
)

func newBuildCommand(env config.Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate a dungeon and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, cfg, log, err := prepare(cmd, env)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if s.Format != FormatJSON && s.Format != FormatASCII {
				return fmt.Errorf("unknown format %q (want %s or %s)", s.Format, FormatJSON, FormatASCII)
			}

			report, err := run(cmd, s, cfg, log)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if s.Format == FormatASCII {
				return ui.WriteReport(out, report.Dungeon)
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	addGenerationFlags(cmd)
	cmd.Flags().String(flagFormat, FormatJSON, "output format: json or ascii")
	return cmd
}

func newViewCommand(env config.Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Generate a dungeon and browse it in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, cfg, log, err := prepare(cmd, env)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			palette, err := ui.NewPalette(cfg.Dungeon.Colors)
			if err != nil {
				return err
			}
			report, err := run(cmd, s, cfg, log)
			if err != nil {
				return err
			}

			screen, err := ui.NewScreen()
			if err != nil {
				return fmt.Errorf("open terminal: %w", err)
			}
			defer screen.Close()

			title := fmt.Sprintf("seed %d  score %.3f  rooms %d", report.RunSeed, report.Score, report.Dungeon.Len())
			return ui.NewViewer(screen, report.Dungeon, palette, title).Run(cmd.Context())
		},
	}
	addGenerationFlags(cmd)
	return cmd
}

func newServeCommand(env config.Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generated dungeons over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, cfg, log, err := prepare(cmd, env)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			return server.New(cfg, s.options(log)).ListenAndServe(cmd.Context(), s.Addr)
		},
	}
	addGenerationFlags(cmd)
	cmd.Flags().String(flagAddr, "127.0.0.1:8080", "listen address")
	return cmd
}

// run selects the best candidate for the configured run seed.
func run(cmd *cobra.Command, s settings, cfg *config.Config, log *zap.Logger) (generator.Report, error) {
	rng, runSeed, err := generator.NewRand(s.Seed)
	if err != nil {
		return generator.Report{}, err
	}
	log.Info("generating", zap.Int64("run_seed", runSeed))

	out, err := generator.FromConfig(cfg, s.options(log)).Best(cmd.Context(), rng)
	if err != nil {
		return generator.Report{}, err
	}
	return out.Report(runSeed), nil
}
