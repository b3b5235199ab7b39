// Package config loads connection and entity descriptions for the searchable
// CLI.
package config

import (
	"fmt"
	"sort"

	"golang.org/x/text/language"

	"github.com/nonibytes/searchable/searchable"
	"github.com/nonibytes/searchable/searchable/query"
)

// Config is the whole configuration file.
type Config struct {
	Database DatabaseConfig          `koanf:"database"`
	Entities map[string]EntityConfig `koanf:"entities"`

	// Language is the BCP 47 tag whose case rules fold search text.
	Language string `koanf:"language"`

	Verbose bool   `koanf:"verbose"`
	Output  string `koanf:"output"`
}

type DatabaseConfig struct {
	Default     string                      `koanf:"default"`
	Connections map[string]ConnectionConfig `koanf:"connections"`
}

// ConnectionConfig describes one database connection. Driver picks both the
// SQL dialect and the adapter used by --execute.
type ConnectionConfig struct {
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
	Prefix string `koanf:"prefix"`
	Schema string `koanf:"schema"` // postgres only
}

type JoinConfig struct {
	Table        string `koanf:"table"`
	First        string `koanf:"first"`
	Second       string `koanf:"second"`
	FilterColumn string `koanf:"filter_column"`
	FilterValue  any    `koanf:"filter_value"`
}

// EntityConfig is the YAML form of searchable.Entity. When Columns is empty
// the weights are derived from Fillable.
type EntityConfig struct {
	Table         string             `koanf:"table"`
	PrimaryKey    string             `koanf:"primary_key"`
	Connection    string             `koanf:"connection"`
	Columns       map[string]float64 `koanf:"columns"`
	PrefixColumns bool               `koanf:"prefix_columns"`
	Joins         []JoinConfig       `koanf:"joins"`
	GroupBy       []string           `koanf:"group_by"`
	TableColumns  []string           `koanf:"table_columns"`
	SelectFields  []string           `koanf:"select_fields"`
	Fillable      []string           `koanf:"fillable"`
}

// Tokenizer returns the tokenizer for the configured language.
func (c *Config) Tokenizer() (query.Tokenizer, error) {
	if c.Language == "" {
		return query.Tokenizer{}, nil
	}
	tag, err := language.Parse(c.Language)
	if err != nil {
		return query.Tokenizer{}, searchable.ConfigurationErrorf("", "language %q: %v", c.Language, err)
	}
	return query.Tokenizer{Lang: tag}, nil
}

func (c *Config) DefaultConnection() string { return c.Database.Default }

func (c *Config) Connection(name string) (searchable.ConnectionInfo, bool) {
	conn, ok := c.Database.Connections[name]
	if !ok {
		return searchable.ConnectionInfo{}, false
	}
	return searchable.ConnectionInfo{Driver: conn.Driver, Prefix: conn.Prefix}, true
}

// ConnectionConfig returns the named connection, or the default one when name
// is empty.
func (c *Config) ConnectionConfig(name string) (ConnectionConfig, error) {
	if name == "" {
		name = c.Database.Default
	}
	conn, ok := c.Database.Connections[name]
	if !ok {
		return ConnectionConfig{}, fmt.Errorf("unknown connection %q", name)
	}
	return conn, nil
}

// EntityNames returns the configured entity names, sorted.
func (c *Config) EntityNames() []string {
	names := make([]string, 0, len(c.Entities))
	for name := range c.Entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entity converts the named entity description. The table defaults to the
// entity name.
func (c *Config) Entity(name string) (searchable.Entity, error) {
	ec, ok := c.Entities[name]
	if !ok {
		return searchable.Entity{}, searchable.ConfigurationError(name, "entity is not configured")
	}

	e := searchable.Entity{
		Name:          name,
		Table:         ec.Table,
		PrimaryKey:    ec.PrimaryKey,
		Connection:    ec.Connection,
		Columns:       searchable.Columns(ec.Columns),
		PrefixColumns: ec.PrefixColumns,
		GroupBy:       ec.GroupBy,
		TableColumns:  ec.TableColumns,
		SelectFields:  ec.SelectFields,
	}
	if e.Table == "" {
		e.Table = name
	}
	if len(e.Columns) == 0 && len(ec.Fillable) > 0 {
		e.Columns = searchable.DefaultColumns(ec.Fillable)
	}
	for _, j := range ec.Joins {
		e.Joins = append(e.Joins, searchable.Join{
			Table:        j.Table,
			First:        j.First,
			Second:       j.Second,
			FilterColumn: j.FilterColumn,
			FilterValue:  j.FilterValue,
		})
	}
	return e, nil
}
