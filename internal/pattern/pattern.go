// Package pattern implements the wildcard syntax accepted by audit log
// filters: '*' matches any run of characters, '.' matches exactly one
// character and '\' makes the next character literal.
package pattern

import "strings"

type tokenKind int

const (
	literal tokenKind = iota
	anyRun
	anyOne
)

type token struct {
	kind tokenKind
	r    rune
}

// Pattern is a parsed filter pattern.
type Pattern struct {
	raw    string
	tokens []token
}

// Parse never fails; a trailing '\' is a literal backslash.
func Parse(raw string) Pattern {
	p := Pattern{raw: raw}
	runes := []rune(raw)
	for i := 0; i < len(runes); i++ {
		switch c := runes[i]; c {
		case '\\':
			if i+1 < len(runes) {
				i++
				p.tokens = append(p.tokens, token{kind: literal, r: runes[i]})
			} else {
				p.tokens = append(p.tokens, token{kind: literal, r: '\\'})
			}
		case '*':
			// collapse consecutive runs
			if n := len(p.tokens); n > 0 && p.tokens[n-1].kind == anyRun {
				continue
			}
			p.tokens = append(p.tokens, token{kind: anyRun})
		case '.':
			p.tokens = append(p.tokens, token{kind: anyOne})
		default:
			p.tokens = append(p.tokens, token{kind: literal, r: c})
		}
	}
	return p
}

func (p Pattern) String() string {
	return p.raw
}

// HasWildcards reports whether the pattern is anything other than a plain
// literal.
func (p Pattern) HasWildcards() bool {
	for _, t := range p.tokens {
		if t.kind != literal {
			return true
		}
	}
	return false
}

// Literal returns the unescaped text; only meaningful when HasWildcards is
// false.
func (p Pattern) Literal() string {
	var b strings.Builder
	for _, t := range p.tokens {
		if t.kind == literal {
			b.WriteRune(t.r)
		}
	}
	return b.String()
}

// Like renders the pattern for SQL LIKE with '\' as the escape character.
func (p Pattern) Like() string {
	var b strings.Builder
	for _, t := range p.tokens {
		switch t.kind {
		case anyRun:
			b.WriteByte('%')
		case anyOne:
			b.WriteByte('_')
		default:
			if t.r == '%' || t.r == '_' || t.r == '\\' {
				b.WriteByte('\\')
			}
			b.WriteRune(t.r)
		}
	}
	return b.String()
}

// Wildcard renders the pattern for an Elasticsearch wildcard query.
func (p Pattern) Wildcard() string {
	var b strings.Builder
	for _, t := range p.tokens {
		switch t.kind {
		case anyRun:
			b.WriteByte('*')
		case anyOne:
			b.WriteByte('?')
		default:
			if t.r == '*' || t.r == '?' || t.r == '\\' {
				b.WriteByte('\\')
			}
			b.WriteRune(t.r)
		}
	}
	return b.String()
}

// Match reports whether s matches the whole pattern.
func (p Pattern) Match(s string) bool {
	return match(p.tokens, []rune(s))
}

func match(tokens []token, s []rune) bool {
	// classic glob matching with single-star backtracking
	ti, si := 0, 0
	starTi, starSi := -1, 0
	for si < len(s) {
		if ti < len(tokens) {
			switch t := tokens[ti]; t.kind {
			case anyRun:
				starTi, starSi = ti, si
				ti++
				continue
			case anyOne:
				ti++
				si++
				continue
			default:
				if t.r == s[si] {
					ti++
					si++
					continue
				}
			}
		}
		if starTi < 0 {
			return false
		}
		starSi++
		ti, si = starTi+1, starSi
	}
	for ti < len(tokens) && tokens[ti].kind == anyRun {
		ti++
	}
	return ti == len(tokens)
}
