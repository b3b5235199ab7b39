package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nonibytes/searchable/internal/cliutil"
	"github.com/nonibytes/searchable/searchable"
	"github.com/nonibytes/searchable/searchable/ops"
	"github.com/nonibytes/searchable/searchable/storage/sqlbuilder"
)

type searchFlags struct {
	all            bool
	execute        bool
	threshold      float64
	entireText     bool
	entireTextOnly bool
	limit          int
	concurrency    int
}

// searchResult is one entity's search. Rows is nil unless the query was
// executed.
type searchResult struct {
	Entity  string    `json:"entity"`
	Dialect string    `json:"dialect"`
	SQL     string    `json:"sql"`
	Args    []any     `json:"args"`
	Columns []string  `json:"columns,omitempty"`
	Rows    []ops.Row `json:"rows,omitempty"`
	Elapsed string    `json:"elapsed,omitempty"`
}

func NewSearchCommand(env *Env) *cobra.Command {
	var f searchFlags
	cmd := &cobra.Command{
		Use:   "search [entity] <text>",
		Short: "Build (and optionally run) a relevance-ranked search",
		Long: `Build the relevance-ranked query for an entity and print it, or run it
against the entity's connection with --execute.

With --all the text is searched in every configured entity concurrently and
the first argument is the search text.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if f.all {
				return cobra.MinimumNArgs(1)(cmd, args)
			}
			return cobra.MinimumNArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			entities := []string{args[0]}
			text := strings.Join(args[1:], " ")
			if f.all {
				entities = env.Config.EntityNames()
				text = strings.Join(args, " ")
			}

			opts := searchable.SearchOptions{EntireText: f.entireText, EntireTextOnly: f.entireTextOnly}
			if cmd.Flags().Changed("threshold") {
				opts.Threshold = searchable.Threshold(f.threshold)
			}

			results, err := runSearches(cmd.Context(), env, entities, text, opts, f)
			if err != nil {
				return err
			}
			printSearchResults(cmd.OutOrStdout(), cliutil.ParseOutputFormat(env.Config.Output), results)
			return nil
		},
	}

	cmd.Flags().BoolVar(&f.all, "all", false, "search every configured entity")
	cmd.Flags().BoolVarP(&f.execute, "execute", "x", false, "run the query against the entity's connection")
	cmd.Flags().Float64VarP(&f.threshold, "threshold", "t", 0, "minimum relevance (default: average column weight)")
	cmd.Flags().BoolVar(&f.entireText, "entire-text", false, "also score the whole search text")
	cmd.Flags().BoolVar(&f.entireTextOnly, "entire-text-only", false, "score only the whole search text")
	cmd.Flags().IntVarP(&f.limit, "limit", "n", 20, "max rows per entity (0 for no limit)")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 4, "entities searched at once with --all")
	return cmd
}

func runSearches(ctx context.Context, env *Env, entities []string, text string, opts searchable.SearchOptions, f searchFlags) ([]searchResult, error) {
	results := make([]searchResult, len(entities))

	g, ctx := errgroup.WithContext(ctx)
	if f.concurrency > 0 {
		g.SetLimit(f.concurrency)
	}
	for i, name := range entities {
		g.Go(func() error {
			r, err := searchEntity(ctx, env, name, text, opts, f)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func searchEntity(ctx context.Context, env *Env, name, text string, opts searchable.SearchOptions, f searchFlags) (searchResult, error) {
	s, err := env.Searcher(name)
	if err != nil {
		return searchResult{}, err
	}
	base := s.NewQuery().OrderBy(searchable.RelevanceAlias, "desc")
	if f.limit > 0 {
		base.Limit(f.limit)
	}
	q, err := s.Search(base, &text, opts)
	if err != nil {
		return searchResult{}, err
	}

	style := s.Dialect().PlaceholderStyle()
	sqlText, args := ops.Render(style, q)
	r := searchResult{Entity: name, Dialect: s.Dialect().Name(), SQL: sqlText, Args: args}
	if !f.execute {
		return r, nil
	}

	res, elapsed, err := execute(ctx, env, s.Entity().Connection, style, q)
	if err != nil {
		return searchResult{}, err
	}
	r.Columns, r.Rows, r.Elapsed = res.Columns, res.Rows, elapsed.String()
	return r, nil
}

func execute(ctx context.Context, env *Env, connection string, style sqlbuilder.PlaceholderStyle, q *sqlbuilder.Query) (*ops.Result, time.Duration, error) {
	conn, err := env.Config.ConnectionConfig(connection)
	if err != nil {
		return nil, 0, err
	}
	adapter, err := cliutil.NewAdapter(conn)
	if err != nil {
		return nil, 0, err
	}
	defer adapter.Close()

	db, err := adapter.Connect(ctx)
	if err != nil {
		return nil, 0, searchable.Wrap(searchable.ErrIO, "connect to database", err)
	}
	defer db.Close()

	start := time.Now()
	res, err := ops.Fetch(ctx, db, style, q)
	if err != nil {
		return nil, 0, err
	}
	env.Logger.Debug("search executed", "connection", connection, "rows", len(res.Rows), "elapsed", time.Since(start))
	return res, time.Since(start), nil
}

func printSearchResults(w io.Writer, format cliutil.OutputFormat, results []searchResult) {
	switch format {
	case cliutil.FormatJSON:
		cliutil.PrintJSON(w, results)
	case cliutil.FormatSQL:
		for _, r := range results {
			fmt.Fprintf(w, "-- %s (%s)\n%s;\n", r.Entity, r.Dialect, r.SQL)
		}
	default:
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if r.Rows == nil && r.Columns == nil {
				fmt.Fprintf(w, "%s (%s)\n%s\n", r.Entity, r.Dialect, r.SQL)
				printArgs(w, r.Args)
				continue
			}
			fmt.Fprintf(w, "%s: %d rows in %s\n", r.Entity, len(r.Rows), r.Elapsed)
			cliutil.PrintRows(w, r.Columns, r.Rows)
		}
	}
}

func printArgs(w io.Writer, args []any) {
	t := cliutil.NewTable(w)
	t.AppendHeader([]any{"#", "binding"})
	for i, a := range args {
		t.AppendRow([]any{i + 1, a})
	}
	t.Render()
}
