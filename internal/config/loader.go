package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	EnvPrefix      = "SEARCHABLE_"
	DefaultOutput  = "table"
	defaultConnKey = "default"
)

var configFileNames = []string{"searchable.yaml", "searchable.yml"}

// flagKeys maps CLI flags onto configuration keys. Other flags are not
// configuration.
var flagKeys = map[string]string{
	"connection": "database.default",
	"verbose":    "verbose",
	"output":     "output",
}

// FindConfigFile returns explicit when set, else the first default file
// name present in the working directory, else "".
func FindConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load reads configuration with precedence flags > env > file > defaults.
//
// Environment variables use the SEARCHABLE_ prefix with "__" separating
// levels: SEARCHABLE_DATABASE__DEFAULT=replica. Column names containing dots
// can only be set from the file.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"database.default": defaultConnKey,
		"verbose":          false,
		"output":           DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := FindConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	for name, conn := range cfg.Database.Connections {
		conn.DSN = os.ExpandEnv(conn.DSN)
		cfg.Database.Connections[name] = conn
	}
	return &cfg, nil
}

// envKey turns SEARCHABLE_DATABASE__DEFAULT into database.default.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}
