package commands

import (
	"github.com/spf13/cobra"

	"github.com/nonibytes/searchable/internal/cliutil"
	"github.com/nonibytes/searchable/searchable/dialect"
	"github.com/nonibytes/searchable/searchable/storage/sqlbuilder"
)

type dialectInfo struct {
	Name        string `json:"name"`
	Operator    string `json:"operator"`
	Column      string `json:"column"`
	HavingAlias bool   `json:"having_alias"`
	GroupAll    bool   `json:"group_by_all_columns"`
	Placeholder string `json:"placeholder"`
}

func NewDialectsCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List supported SQL dialects and how they differ",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var infos []dialectInfo
			for _, name := range dialect.Names() {
				d, err := dialect.Lookup(name)
				if err != nil {
					return err
				}
				infos = append(infos, dialectInfo{
					Name:        d.Name(),
					Operator:    d.MatchOperator(),
					Column:      d.QuoteColumn("posts.title"),
					HavingAlias: d.HavingUsesAlias(),
					GroupAll:    d.GroupByAllColumns(),
					Placeholder: placeholderName(d),
				})
			}

			w := cmd.OutOrStdout()
			if cliutil.ParseOutputFormat(env.Config.Output) == cliutil.FormatJSON {
				cliutil.PrintJSON(w, infos)
				return nil
			}
			t := cliutil.NewTable(w)
			t.AppendHeader([]any{"dialect", "match", "column", "having alias", "group all", "placeholder"})
			for _, i := range infos {
				t.AppendRow([]any{i.Name, i.Operator, i.Column, i.HavingAlias, i.GroupAll, i.Placeholder})
			}
			t.Render()
			return nil
		},
	}
}

func placeholderName(d dialect.Dialect) string {
	switch d.PlaceholderStyle() {
	case sqlbuilder.PlaceholderDollar:
		return "$1"
	case sqlbuilder.PlaceholderAtP:
		return "@p1"
	default:
		return "?"
	}
}
