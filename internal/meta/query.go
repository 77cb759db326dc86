package meta

import "strings"

// CatalogQuery is a fully assembled metadata statement. SQL placeholder
// count always equals len(Args); the SHOW-command strategy embeds
// identifiers literally and carries no args.
type CatalogQuery struct {
	SQL  string
	Args []any
}

// whereBuilder accumulates predicates and their bind values in lockstep.
// Omitted filters add nothing; a query with no predicates renders no
// WHERE keyword at all.
type whereBuilder struct {
	conds []string
	args  []any
}

// add appends a predicate for col: = for exact filters, LIKE for
// patterns. A nil filter value is a no-op.
func (w *whereBuilder) add(col string, nf normalizedFilter) {
	if nf.value == nil {
		return
	}
	op := "="
	if nf.kind == predicatePattern {
		op = "LIKE"
	}
	w.conds = append(w.conds, col+" "+op+" ?")
	w.args = append(w.args, *nf.value)
}

// addExact appends an unconditional equality predicate.
func (w *whereBuilder) addExact(col string, v string) {
	w.conds = append(w.conds, col+" = ?")
	w.args = append(w.args, v)
}

// addRaw appends a literal condition with no bind value.
func (w *whereBuilder) addRaw(cond string) {
	w.conds = append(w.conds, cond)
}

// clause renders " WHERE c1 AND c2 ..." or the empty string.
func (w *whereBuilder) clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// quoteIdentifier wraps name in the identifier quote, doubling embedded
// quote characters. The SHOW-command strategy uses it to inline names the
// protocol cannot parameterize.
func quoteIdentifier(name, quote string) string {
	return quote + strings.ReplaceAll(name, quote, quote+quote) + quote
}

// stringLiteral renders s as a single-quoted SQL literal, escaping
// quotes and backslashes. SHOW commands accept no placeholders, so
// their pattern operands are inlined through this.
func stringLiteral(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			b.WriteString("''")
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteByte(s[i])
		}
	}
	b.WriteByte('\'')
	return b.String()
}
