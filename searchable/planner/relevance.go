package planner

import (
	"fmt"
	"strings"

	"github.com/nonibytes/searchable/searchable/dialect"
	serrors "github.com/nonibytes/searchable/searchable/errors"
	"github.com/nonibytes/searchable/searchable/storage/sqlbuilder"
)

// RelevanceAlias is the name of the computed score column.
const RelevanceAlias = "relevance"

// Sum concatenates fragments with + and their bindings in the same order.
func Sum(fragments []Fragment) Fragment {
	parts := make([]string, 0, len(fragments))
	var args []any
	for _, f := range fragments {
		if f.Empty() {
			continue
		}
		parts = append(parts, f.SQL)
		args = append(args, f.Args...)
	}
	return Fragment{SQL: strings.Join(parts, " + "), Args: args}
}

// DefaultThreshold is the average configured column weight. It is a
// heuristic; callers override it by passing an explicit threshold.
func DefaultThreshold(entity string, weights map[string]float64) (float64, error) {
	if len(weights) == 0 {
		return 0, serrors.ConfigurationError(entity, "no searchable columns configured; cannot derive a default threshold")
	}
	var total float64
	for _, w := range weights {
		total += w
	}
	return total / float64(len(weights)), nil
}

// ApplyRelevance adds "max(<sum>) as relevance", the threshold filter and the
// relevance ordering to q. With no fragments q is left untouched.
func ApplyRelevance(q *sqlbuilder.Query, d dialect.Dialect, fragments []Fragment, threshold float64) error {
	sum := Sum(fragments)
	if sum.Empty() {
		return nil
	}
	if err := checkPlaceholders(sum); err != nil {
		return err
	}

	// Grouping may fold several joined rows into one entity; max keeps the
	// best row rather than adding them up.
	q.SelectRaw(fmt.Sprintf("max(%s) as %s", sum.SQL, RelevanceAlias), sum.Args...)

	limit := fmt.Sprintf("%.2f", threshold)
	if d.HavingUsesAlias() {
		q.HavingRaw(fmt.Sprintf("%s >= %s", RelevanceAlias, limit))
	} else {
		q.HavingRaw(fmt.Sprintf("%s >= %s", sum.SQL, limit), sum.Args...)
	}
	q.OrderBy(RelevanceAlias, "desc")
	return nil
}
