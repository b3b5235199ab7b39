package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nonibytes/searchable/internal/cliutil"
	"github.com/nonibytes/searchable/searchable"
	"github.com/nonibytes/searchable/searchable/ops"
	"github.com/nonibytes/searchable/searchable/planner"
	"github.com/nonibytes/searchable/searchable/query"
)

type explanation struct {
	Entity    string             `json:"entity"`
	Dialect   string             `json:"dialect"`
	Terms     query.Terms        `json:"terms"`
	Columns   map[string]float64 `json:"columns"`
	Tiers     []string           `json:"tiers"`
	Threshold string             `json:"threshold"`
	SQL       string             `json:"sql"`
	Args      []any              `json:"args"`
}

func NewExplainCommand(env *Env) *cobra.Command {
	var (
		threshold      float64
		entireText     bool
		entireTextOnly bool
	)
	cmd := &cobra.Command{
		Use:   "explain <entity> <text>",
		Short: "Show how a search is scored and the SQL it produces",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := env.Searcher(args[0])
			if err != nil {
				return err
			}
			text := strings.Join(args[1:], " ")
			opts := searchable.SearchOptions{EntireText: entireText, EntireTextOnly: entireTextOnly}
			if cmd.Flags().Changed("threshold") {
				opts.Threshold = searchable.Threshold(threshold)
			}

			q, err := s.Search(s.NewQuery(), &text, opts)
			if err != nil {
				return err
			}
			sqlText, bound := ops.Render(s.Dialect().PlaceholderStyle(), q)

			terms := s.Terms(text)
			ex := explanation{
				Entity:    args[0],
				Dialect:   s.Dialect().Name(),
				Terms:     terms,
				Columns:   s.Columns(),
				Tiers:     activeTiers(terms, opts),
				Threshold: describeThreshold(s, opts),
				SQL:       sqlText,
				Args:      bound,
			}
			printExplanation(cmd.OutOrStdout(), cliutil.ParseOutputFormat(env.Config.Output), ex)
			return nil
		},
	}
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", 0, "minimum relevance (default: average column weight)")
	cmd.Flags().BoolVar(&entireText, "entire-text", false, "also score the whole search text")
	cmd.Flags().BoolVar(&entireTextOnly, "entire-text-only", false, "score only the whole search text")
	return cmd
}

func activeTiers(terms query.Terms, o searchable.SearchOptions) []string {
	var tiers []planner.Tier
	if !o.EntireTextOnly {
		tiers = append(tiers, planner.TermTiers...)
	}
	if o.EntireTextOnly || (o.EntireText && len(terms) > 1) {
		tiers = append(tiers, planner.WholeTextTiers...)
	}
	out := make([]string, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, fmt.Sprintf("%s x%g", t.Name, t.Multiplier))
	}
	return out
}

func describeThreshold(s *searchable.Searcher, o searchable.SearchOptions) string {
	if o.Threshold != nil {
		return fmt.Sprintf("%.2f", *o.Threshold)
	}
	t, err := planner.DefaultThreshold(s.Entity().Name, s.Columns())
	if err != nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f (average column weight)", t)
}

func printExplanation(w io.Writer, format cliutil.OutputFormat, ex explanation) {
	switch format {
	case cliutil.FormatJSON:
		cliutil.PrintJSON(w, ex)
		return
	case cliutil.FormatSQL:
		fmt.Fprintf(w, "%s;\n", ex.SQL)
		return
	}

	fmt.Fprintf(w, "Entity:    %s (%s)\n", ex.Entity, ex.Dialect)
	fmt.Fprintf(w, "Terms:     %s\n", strings.Join(quoteAll(ex.Terms), ", "))
	fmt.Fprintf(w, "Tiers:     %s\n", strings.Join(ex.Tiers, ", "))
	fmt.Fprintf(w, "Threshold: %s\n\n", ex.Threshold)

	t := cliutil.NewTable(w)
	t.AppendHeader([]any{"column", "weight"})
	for _, name := range searchable.Columns(ex.Columns).Names() {
		t.AppendRow([]any{name, ex.Columns[name]})
	}
	t.Render()

	fmt.Fprintf(w, "\n%s\n\n", ex.SQL)
	printArgs(w, ex.Args)
}

func quoteAll(terms []string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = fmt.Sprintf("%q", t)
	}
	return out
}
