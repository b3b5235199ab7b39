package cliopt

import "github.com/spf13/pflag"

// GlobalOptions are parsed once at the CLI root and passed to subcommands.
//
// NOTE: This is a separate package to avoid import cycles between the root
// command and per-command code.
type GlobalOptions struct {
	ConfigFile string
	Connection string
	Output     string
	Verbose    bool
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{Output: "table"}
}

// BindGlobalFlags registers the global flags. Connection, output and verbose
// also feed the configuration loader, which gives them the highest
// precedence.
func BindGlobalFlags(fs *pflag.FlagSet, g *GlobalOptions) {
	fs.StringVar(&g.ConfigFile, "config", g.ConfigFile, "config file (default: ./searchable.yaml)")
	fs.StringVarP(&g.Connection, "connection", "c", g.Connection, "connection name overriding database.default")
	fs.StringVarP(&g.Output, "output", "o", g.Output, "output format: table|json|sql")
	fs.BoolVarP(&g.Verbose, "verbose", "v", g.Verbose, "debug logging on stderr")
}
