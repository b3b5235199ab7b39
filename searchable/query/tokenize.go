// Package query turns free search text into the terms scored by the planner.
package query

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Terms is the ordered list of search terms extracted from a search string.
// A term is never empty; phrase terms keep their inner whitespace.
type Terms []string

// Tokenizer splits search text into terms. The zero value folds case with
// language.Und rules.
type Tokenizer struct {
	Lang language.Tag
}

// Tokenize is Tokenizer{}.Tokenize.
func Tokenize(input string) Terms {
	return Tokenizer{}.Tokenize(input)
}

// Normalize trims the input and lowercases it using the tokenizer's locale.
// The result is the text matched by whole-text tiers.
func (t Tokenizer) Normalize(input string) string {
	// cases.Caser is stateful, so every call gets its own.
	return cases.Lower(t.Lang).String(strings.TrimSpace(input))
}

// Tokenize normalizes the input and splits it into terms.
//
// A double quote at the start of a term opens a phrase that runs to the next
// unescaped double quote; a backslash escapes the following character and is
// kept in the term. Everything else is a maximal run of non-space characters.
// An unterminated phrase is not an error: the quote is scanned as the start of
// an ordinary word.
func (t Tokenizer) Tokenize(input string) Terms {
	l := newLexer(t.Normalize(input))
	terms := Terms{}
	for {
		term, ok := l.next()
		if !ok {
			return terms
		}
		if term != "" {
			terms = append(terms, term)
		}
	}
}

type lexer struct {
	input []rune
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: []rune(input)}
}

// next returns the next term, which may be empty for "". ok is false at EOF.
func (l *lexer) next() (string, bool) {
	l.skipWhitespace()
	if l.pos >= len(l.input) {
		return "", false
	}
	if l.input[l.pos] == '"' {
		if phrase, end, ok := l.scanPhrase(); ok {
			l.pos = end
			return phrase, true
		}
	}
	return l.scanWord(), true
}

func (l *lexer) skipWhitespace() {
	for l.pos < len(l.input) && unicode.IsSpace(l.input[l.pos]) {
		l.pos++
	}
}

// scanPhrase looks for a closing quote without moving the lexer. It returns the
// phrase body and the position after the closing quote.
func (l *lexer) scanPhrase() (string, int, bool) {
	var sb strings.Builder
	i := l.pos + 1 // opening quote
	for i < len(l.input) {
		ch := l.input[i]
		switch {
		case ch == '"':
			return sb.String(), i + 1, true
		case ch == '\\':
			if i+1 >= len(l.input) || l.input[i+1] == '\n' {
				return "", 0, false
			}
			sb.WriteRune(ch)
			sb.WriteRune(l.input[i+1])
			i += 2
		default:
			sb.WriteRune(ch)
			i++
		}
	}
	return "", 0, false
}

func (l *lexer) scanWord() string {
	start := l.pos
	for l.pos < len(l.input) && !unicode.IsSpace(l.input[l.pos]) {
		l.pos++
	}
	return string(l.input[start:l.pos])
}
