// Package planner synthesizes the relevance-scored subquery: per-column
// scoring fragments, the aggregated relevance column and its threshold, joins
// and grouping, and the merge back into the caller's query.
package planner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nonibytes/searchable/searchable/dialect"
	serrors "github.com/nonibytes/searchable/searchable/errors"
	"github.com/nonibytes/searchable/searchable/storage/sqlbuilder"
)

// Tier is a match strictness level. A match scores weight × Multiplier; the
// bound pattern is Pre + text + Post.
type Tier struct {
	Name       string
	Multiplier float64
	Pre        string
	Post       string
}

var (
	TierExact     = Tier{Name: "exact", Multiplier: 15}
	TierPrefix    = Tier{Name: "prefix", Multiplier: 5, Post: "%"}
	TierSubstring = Tier{Name: "substring", Multiplier: 1, Pre: "%", Post: "%"}

	TierWholeExact     = Tier{Name: "whole-exact", Multiplier: 50}
	TierWholeSubstring = Tier{Name: "whole-substring", Multiplier: 30, Pre: "%", Post: "%"}
)

// TermTiers are scored for every term independently.
var TermTiers = []Tier{TierExact, TierPrefix, TierSubstring}

// WholeTextTiers are scored against the whole normalized search text.
var WholeTextTiers = []Tier{TierWholeExact, TierWholeSubstring}

// Mode selects which tiers are active for one search.
type Mode struct {
	// EntireText adds the whole-text tiers when there is more than one term.
	EntireText bool
	// EntireTextOnly scores the whole text only; per-term tiers are skipped.
	EntireTextOnly bool
}

func (m Mode) termTiers() bool { return !m.EntireTextOnly }

func (m Mode) wholeTextTiers(terms []string) bool {
	return m.EntireTextOnly || (m.EntireText && len(terms) > 1)
}

// Fragment is a scoring expression and the values bound to its placeholders,
// in placeholder order.
type Fragment struct {
	SQL  string
	Args []any
}

func (f Fragment) Empty() bool { return f.SQL == "" }

// BuildFragment renders one (column, tier) fragment: a CASE per text, summed.
func BuildFragment(d dialect.Dialect, column string, weight float64, texts []string, tier Tier) (Fragment, error) {
	b := sqlbuilder.New(sqlbuilder.PlaceholderQuestion)
	score := formatScore(weight * tier.Multiplier)
	field := "LOWER(" + d.QuoteColumn(column) + ") " + d.MatchOperator()

	cases := make([]string, 0, len(texts))
	for _, text := range texts {
		ph := b.Arg(tier.Pre + text + tier.Post)
		cases = append(cases, fmt.Sprintf("(case when %s %s then %s else 0 end)", field, ph, score))
	}

	f := Fragment{SQL: strings.Join(cases, " + "), Args: b.Args()}
	if err := checkPlaceholders(f); err != nil {
		return Fragment{}, err
	}
	return f, nil
}

type tierTexts struct {
	tier  Tier
	texts []string
}

// BuildColumn renders every active tier for one column. Empty fragments are
// dropped, so a column with no terms and no whole-text tiers yields nothing.
func BuildColumn(d dialect.Dialect, column string, weight float64, terms []string, whole string, mode Mode) ([]Fragment, error) {
	var plan []tierTexts
	if mode.termTiers() {
		for _, t := range TermTiers {
			plan = append(plan, tierTexts{tier: t, texts: terms})
		}
	}
	if mode.wholeTextTiers(terms) {
		for _, t := range WholeTextTiers {
			plan = append(plan, tierTexts{tier: t, texts: []string{whole}})
		}
	}

	out := make([]Fragment, 0, len(plan))
	for _, p := range plan {
		f, err := BuildFragment(d, column, weight, p.texts, p.tier)
		if err != nil {
			return nil, fmt.Errorf("column %s, tier %s: %w", column, p.tier.Name, err)
		}
		if !f.Empty() {
			out = append(out, f)
		}
	}
	return out, nil
}

func checkPlaceholders(f Fragment) error {
	if n := sqlbuilder.CountPlaceholders(f.SQL); n != len(f.Args) {
		return serrors.InternalInvariantError(fmt.Sprintf(
			"scoring fragment has %d placeholders but %d bindings", n, len(f.Args)))
	}
	return nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
