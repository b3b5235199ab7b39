package commands

import (
	"log/slog"

	"github.com/nonibytes/searchable/internal/cliopt"
	"github.com/nonibytes/searchable/internal/config"
	"github.com/nonibytes/searchable/searchable"
)

// Env is shared by every command. Config and Logger are set by the root
// command before a subcommand runs.
type Env struct {
	Options cliopt.GlobalOptions
	Config  *config.Config
	Logger  *slog.Logger
}

// Searcher builds the searcher for a configured entity.
func (e *Env) Searcher(entity string) (*searchable.Searcher, error) {
	ent, err := e.Config.Entity(entity)
	if err != nil {
		return nil, err
	}
	tok, err := e.Config.Tokenizer()
	if err != nil {
		return nil, err
	}
	return searchable.New(ent, e.Config, searchable.WithLogger(e.Logger), searchable.WithTokenizer(tok))
}
