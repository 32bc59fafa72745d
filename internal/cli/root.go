// Package cli implements the dungeongrammar command line.
package cli

import (
	"context"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/samdwyer/dungeongrammar/internal/config"
)

// Version is set at build time.
var Version = "dev"

// NewRootCommand creates the root command. env carries overrides parsed from
// the process environment.
func NewRootCommand(env config.Env) *cobra.Command {
	root := &cobra.Command{
		Use:   "dungeongrammar",
		Short: "Grow dungeons from weighted L-system grammars",
		Long: color.CyanString(`dungeongrammar expands a weighted L-system grammar into a room graph,
scores many candidate seeds, keeps the best one and describes its rooms.`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newBuildCommand(env))
	root.AddCommand(newViewCommand(env))
	root.AddCommand(newServeCommand(env))
	root.AddCommand(newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			title := color.New(color.FgCyan, color.Bold)
			value := color.New(color.FgWhite)
			out := cmd.OutOrStdout()

			title.Fprint(out, "dungeongrammar version: ")
			value.Fprintln(out, Version)
			title.Fprint(out, "Go version: ")
			value.Fprintln(out, runtime.Version())
		},
	}
}

// Execute runs the root command and prints any error in red.
func Execute(ctx context.Context, env config.Env, args []string) error {
	root := NewRootCommand(env)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
