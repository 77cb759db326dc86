package meta

import "strings"

// predicateKind classifies a normalized filter: exact equality or a LIKE
// pattern containing unescaped SQL wildcards.
type predicateKind int

const (
	predicateExact predicateKind = iota
	predicatePattern
)

// normalizedFilter is the outcome of filter normalization. A nil value
// means the predicate is omitted entirely.
type normalizedFilter struct {
	value *string
	kind  predicateKind
}

func exactFilter(v string) normalizedFilter {
	return normalizedFilter{value: &v, kind: predicateExact}
}

// normalizeFilter prepares a caller-supplied filter for predicate
// assembly. Outside pedantic mode a filter fully wrapped in identifier
// quotes has the quotes stripped; the result is then classified by
// wildcard content. A nil filter passes through as an omitted predicate;
// an empty string stays an exact (empty) match.
func normalizeFilter(raw *string, f Flags) normalizedFilter {
	if raw == nil {
		return normalizedFilter{}
	}
	v := *raw
	if !f.Pedantic {
		v = unquoteIdentifier(v, f.quote())
	}
	kind := predicateExact
	if hasWildcards(v) {
		kind = predicatePattern
	}
	return normalizedFilter{value: &v, kind: kind}
}

// normalizeNamespaceFilter is normalizeFilter plus the null-means-current
// substitution: a nil database filter is replaced with the session's
// active database before normalization when the flag asks for it.
func normalizeNamespaceFilter(raw *string, f Flags) normalizedFilter {
	if raw == nil && f.NullDatabaseMeansCurrent {
		db := f.Database
		raw = &db
	}
	return normalizeFilter(raw, f)
}

// hasWildcards reports whether s contains a % or _ not preceded by an
// unescaped backslash.
func hasWildcards(s string) bool {
	escaped := false
	for _, r := range s {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '%', '_':
			return true
		}
	}
	return false
}

// unquoteIdentifier strips one level of identifier quoting when s is
// fully wrapped in the quote string, un-doubling embedded quotes. Values
// not wrapped on both ends are returned unchanged.
func unquoteIdentifier(s, quote string) string {
	if quote == "" || len(s) < 2*len(quote) {
		return s
	}
	if !strings.HasPrefix(s, quote) || !strings.HasSuffix(s, quote) {
		return s
	}
	inner := s[len(quote) : len(s)-len(quote)]
	return strings.ReplaceAll(inner, quote+quote, quote)
}

// sqlPatternMatch evaluates a SQL LIKE pattern against s, honoring %
// and _ with backslash escapes. Used by the SHOW-command strategy, which
// cannot always push the pattern down to the server.
func sqlPatternMatch(pattern, s string) bool {
	return likeMatch([]rune(pattern), []rune(s))
}

func likeMatch(p, s []rune) bool {
	for len(p) > 0 {
		switch p[0] {
		case '%':
			// Collapse a run of % and try every suffix.
			for len(p) > 0 && p[0] == '%' {
				p = p[1:]
			}
			if len(p) == 0 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if likeMatch(p, s[i:]) {
					return true
				}
			}
			return false
		case '_':
			if len(s) == 0 {
				return false
			}
			p, s = p[1:], s[1:]
		case '\\':
			if len(p) >= 2 {
				p = p[1:]
			}
			fallthrough
		default:
			if len(s) == 0 || s[0] != p[0] {
				return false
			}
			p, s = p[1:], s[1:]
		}
	}
	return len(s) == 0
}
