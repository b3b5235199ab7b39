// Package cli wires the searchable commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nonibytes/searchable/internal/cli/commands"
	"github.com/nonibytes/searchable/internal/cliopt"
	"github.com/nonibytes/searchable/internal/cliutil"
	"github.com/nonibytes/searchable/internal/config"
)

// Version is set at build time.
var Version = "0.1.0"

// NewRootCmd builds the command tree. Command output goes to stdout, logs and
// errors to stderr.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	env := &commands.Env{Options: cliopt.DefaultGlobalOptions()}

	root := &cobra.Command{
		Use:   "searchable",
		Short: "Relevance-ranked keyword search over SQL tables",
		Long: `searchable builds relevance-ranked LIKE searches over the columns of a
table. Every configured column is scored for exact, prefix and substring
matches of each search term, weighted by the column's importance, and rows
below the relevance threshold are dropped.

Entities and connections are read from ./searchable.yaml (or --config),
SEARCHABLE_* environment variables and flags, in increasing precedence.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			cfg, err := config.Load(env.Options.ConfigFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			env.Config = cfg
			env.Logger = cliutil.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
			if used := config.FindConfigFile(env.Options.ConfigFile); used != "" {
				env.Logger.Debug("config loaded", "file", used)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	cliopt.BindGlobalFlags(root.PersistentFlags(), &env.Options)
	_ = root.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "sql"}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(commands.NewSearchCommand(env))
	root.AddCommand(commands.NewExplainCommand(env))
	root.AddCommand(commands.NewEntitiesCommand(env))
	root.AddCommand(commands.NewDialectsCommand(env))
	return root
}

// Run executes argv and returns an exit code.
func Run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	root := NewRootCmd(stdout, stderr)
	root.SetArgs(argv)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// Execute runs the CLI with the process arguments and streams.
func Execute(argv []string) int {
	return Run(context.Background(), argv, os.Stdout, os.Stderr)
}
