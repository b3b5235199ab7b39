package sqlbuilder

import (
	"strconv"
	"strings"
)

type PlaceholderStyle int

const (
	PlaceholderQuestion PlaceholderStyle = iota
	PlaceholderDollar
	PlaceholderAtP
)

// Builder collects bound values in the order their placeholders are
// emitted. A Builder belongs to a single call and is never shared.
type Builder struct {
	Style PlaceholderStyle
	args  []any
}

func New(style PlaceholderStyle) *Builder {
	return &Builder{Style: style, args: make([]any, 0)}
}

func (b *Builder) Arg(v any) string {
	b.args = append(b.args, v)
	return placeholder(b.Style, len(b.args))
}

func (b *Builder) Args() []any { return b.args }
func (b *Builder) Len() int    { return len(b.args) }

func placeholder(style PlaceholderStyle, n int) string {
	switch style {
	case PlaceholderDollar:
		return "$" + strconv.Itoa(n)
	case PlaceholderAtP:
		return "@p" + strconv.Itoa(n)
	default:
		return "?"
	}
}

// Rebind rewrites the "?" placeholders of sql into the given style. Question
// marks inside single-quoted literals and quoted or bracketed identifiers
// are left alone.
func Rebind(style PlaceholderStyle, sql string) string {
	if style == PlaceholderQuestion {
		return sql
	}
	var b strings.Builder
	b.Grow(len(sql) + 16)
	n := 0
	var quote rune
	for _, r := range sql {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			b.WriteRune(r)
		case r == '\'' || r == '"' || r == '`':
			quote = r
			b.WriteRune(r)
		case r == '[':
			quote = ']'
			b.WriteRune(r)
		case r == '?':
			n++
			b.WriteString(placeholder(style, n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CountPlaceholders counts "?" placeholders outside quoted sections.
func CountPlaceholders(sql string) int {
	n := 0
	var quote rune
	for _, r := range sql {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == '[':
			quote = ']'
		case r == '?':
			n++
		}
	}
	return n
}
