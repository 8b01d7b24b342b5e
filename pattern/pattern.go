package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// WildcardToken matches any substring, including the empty one, inside a wildcard pattern.
const WildcardToken = "*"

// Kind identifies which variant a Pattern holds.
type Kind uint8

const (
	// KindLiteral matches one exact URL.
	KindLiteral Kind = iota
	// KindWildcard matches URLs where each WildcardToken stands for any substring.
	KindWildcard
	// KindRegexp matches URLs with a regular expression search.
	KindRegexp
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindWildcard:
		return "wildcard"
	case KindRegexp:
		return "regexp"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

var (
	// ErrInvalidPattern wraps regular expression compile failures.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrNilRegexp is returned when a Regexp pattern was built from a nil expression.
	ErrNilRegexp = errors.New("regexp is nil")
)

// Matcher tests URLs against a compiled pattern.
type Matcher interface {
	// Match reports whether target satisfies the pattern.
	Match(target string) bool

	// String returns the canonical pattern string. Two matchers with equal
	// strings match exactly the same URLs.
	String() string
}

// Pattern is a URL pattern that has not been compiled yet. The zero value is
// a literal that matches only the empty string.
type Pattern struct {
	kind    Kind
	source  string
	re      *regexp.Regexp
	nilExpr bool
}

// Literal returns a pattern matching exactly url.
func Literal(url string) Pattern {
	return Pattern{kind: KindLiteral, source: url}
}

// Glob returns a wildcard pattern. Every WildcardToken in s matches any
// substring; everything else matches literally.
func Glob(s string) Pattern {
	return Pattern{kind: KindWildcard, source: s}
}

// Regexp returns a pattern backed by an already compiled expression.
func Regexp(re *regexp.Regexp) Pattern {
	if re == nil {
		return Pattern{kind: KindRegexp, nilExpr: true}
	}
	return Pattern{kind: KindRegexp, source: re.String(), re: re}
}

// Expr returns a regular expression pattern from source. The expression is
// compiled by Compile, so a malformed expression surfaces there. An empty
// source matches every URL.
func Expr(source string) Pattern {
	return Pattern{kind: KindRegexp, source: source}
}

// Parse treats s as a wildcard pattern when it contains WildcardToken and as
// a literal otherwise.
func Parse(s string) Pattern {
	if strings.Contains(s, WildcardToken) {
		return Glob(s)
	}
	return Literal(s)
}

// Kind returns the pattern variant.
func (p Pattern) Kind() Kind { return p.kind }

// Source returns the text the pattern was built from.
func (p Pattern) Source() string { return p.source }

// String describes the pattern for diagnostics.
func (p Pattern) String() string {
	return p.kind.String() + ":" + p.source
}

// Compile builds the Matcher for the pattern.
func (p Pattern) Compile() (Matcher, error) {
	switch p.kind {
	case KindLiteral:
		return compile("^" + regexp.QuoteMeta(p.source) + "$")
	case KindWildcard:
		return compile(WildcardToRegexp(p.source))
	case KindRegexp:
		if p.re != nil {
			return &regexpMatcher{re: p.re}, nil
		}
		if p.nilExpr {
			return nil, ErrNilRegexp
		}
		return compile(p.source)
	default:
		return nil, fmt.Errorf("%w: unknown %s", ErrInvalidPattern, p.kind)
	}
}

// WildcardToRegexp translates a wildcard string into an anchored regular
// expression. Literal portions are escaped and every WildcardToken becomes ".*".
func WildcardToRegexp(s string) string {
	parts := strings.Split(s, WildcardToken)
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return "^" + strings.Join(parts, ".*") + "$"
}

func compile(expr string) (Matcher, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Join(ErrInvalidPattern, err)
	}
	return &regexpMatcher{re: re}, nil
}

// regexpMatcher is the single Matcher implementation; every variant compiles
// down to a regular expression.
type regexpMatcher struct {
	re *regexp.Regexp
}

func (m *regexpMatcher) Match(target string) bool { return m.re.MatchString(target) }

func (m *regexpMatcher) String() string { return m.re.String() }
