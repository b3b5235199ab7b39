package searchable

import "github.com/nonibytes/searchable/searchable/planner"

const (
	DefaultPrimaryKey = "id"
	RelevanceAlias    = planner.RelevanceAlias

	// DefaultImportantWeight is given by DefaultColumns to the usual
	// headline columns; every other column weighs DefaultWeight.
	DefaultImportantWeight = 10
	DefaultWeight          = 1
)

var defaultImportantColumns = []string{"name", "title", "description", "body", "message"}
