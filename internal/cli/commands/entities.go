package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nonibytes/searchable/internal/cliutil"
	"github.com/nonibytes/searchable/searchable"
	"github.com/nonibytes/searchable/searchable/planner"
)

type entityInfo struct {
	Name       string             `json:"name"`
	Table      string             `json:"table"`
	Connection string             `json:"connection"`
	Dialect    string             `json:"dialect"`
	Columns    map[string]float64 `json:"columns"`
	Threshold  float64            `json:"default_threshold"`
	Joins      []string           `json:"joins,omitempty"`
}

func NewEntitiesCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List configured searchable entities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var infos []entityInfo
			for _, name := range env.Config.EntityNames() {
				s, err := env.Searcher(name)
				if err != nil {
					return err
				}
				e := s.Entity()
				info := entityInfo{
					Name:       name,
					Table:      e.Table,
					Connection: e.Connection,
					Dialect:    s.Dialect().Name(),
					Columns:    s.Columns(),
				}
				if info.Connection == "" {
					info.Connection = env.Config.DefaultConnection()
				}
				// No columns means no default threshold; shown as 0.
				info.Threshold, _ = planner.DefaultThreshold(name, s.Columns())
				for _, j := range e.Joins {
					info.Joins = append(info.Joins, j.Table)
				}
				infos = append(infos, info)
			}

			w := cmd.OutOrStdout()
			if cliutil.ParseOutputFormat(env.Config.Output) == cliutil.FormatJSON {
				cliutil.PrintJSON(w, infos)
				return nil
			}
			t := cliutil.NewTable(w)
			t.AppendHeader([]any{"entity", "table", "connection", "dialect", "columns", "threshold", "joins"})
			for _, i := range infos {
				t.AppendRow([]any{i.Name, i.Table, i.Connection, i.Dialect, formatColumns(i.Columns),
					fmt.Sprintf("%.2f", i.Threshold), strings.Join(i.Joins, ", ")})
			}
			t.Render()
			return nil
		},
	}
}

func formatColumns(cols map[string]float64) string {
	names := searchable.Columns(cols).Names()
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s=%g", n, cols[n])
	}
	return strings.Join(parts, " ")
}
