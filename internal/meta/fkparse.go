package meta

import (
	"strings"

	"github.com/kdutta/mysqlmeta/internal/errs"
)

// Referential action codes reported in UPDATE_RULE / DELETE_RULE.
const (
	ImportedKeyCascade    = 0
	ImportedKeyRestrict   = 1
	ImportedKeySetNull    = 2
	ImportedKeyNoAction   = 3
	ImportedKeySetDefault = 4

	ImportedKeyNotDeferrable = 7
)

// keyDescriptor is a parsed foreign-key definition in the canonical
// comment form
//
//	name(col1,col2) REFER db/table(ref1,ref2) ON DELETE CASCADE ON UPDATE SET NULL
//
// as produced from SHOW CREATE TABLE output.
type keyDescriptor struct {
	constraintName     string
	localColumns       []string
	referencedDatabase string
	referencedTable    string
	referencedColumns  []string
	deleteRule         int64
	updateRule         int64
}

// parseKeyComment parses a canonical foreign-key comment. Identifier
// quotes inside the comment are stripped with quote. Every structural
// defect returns a parse error carrying the offending comment, including
// a local/referenced column-count mismatch.
func parseKeyComment(comment, quote string) (*keyDescriptor, error) {
	open := strings.IndexByte(comment, '(')
	if open < 0 {
		return nil, errs.Parse("foreign key comment has no opening parenthesis", comment)
	}
	closing := strings.IndexByte(comment[open:], ')')
	if closing < 0 {
		return nil, errs.Parse("foreign key comment has no closing parenthesis", comment)
	}
	closing += open

	d := &keyDescriptor{
		constraintName: unquoteIdentifier(strings.TrimSpace(comment[:open]), quote),
		localColumns:   splitColumnList(comment[open+1:closing], quote),
	}

	rest := comment[closing+1:]
	referIdx := strings.Index(rest, "REFER ")
	if referIdx < 0 {
		return nil, errs.Parse("foreign key comment has no REFER clause", comment)
	}
	rest = rest[referIdx+len("REFER "):]

	refOpen := strings.IndexByte(rest, '(')
	if refOpen < 0 {
		return nil, errs.Parse("foreign key comment has no referenced column list", comment)
	}
	refClose := strings.IndexByte(rest[refOpen:], ')')
	if refClose < 0 {
		return nil, errs.Parse("foreign key comment has no closing parenthesis", comment)
	}
	refClose += refOpen

	target := strings.TrimSpace(rest[:refOpen])
	slash := strings.IndexByte(target, '/')
	if slash < 0 {
		return nil, errs.Parse("foreign key comment has no database/table separator", comment)
	}
	d.referencedDatabase = unquoteIdentifier(target[:slash], quote)
	d.referencedTable = unquoteIdentifier(target[slash+1:], quote)
	d.referencedColumns = splitColumnList(rest[refOpen+1:refClose], quote)

	if len(d.localColumns) != len(d.referencedColumns) {
		return nil, errs.Parse("foreign key comment column counts do not match", comment)
	}

	d.deleteRule, d.updateRule = foreignKeyActions(rest[refClose+1:])
	return d, nil
}

func splitColumnList(list, quote string) []string {
	parts := strings.Split(list, ",")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		p = unquoteIdentifier(strings.TrimSpace(p), quote)
		if p != "" {
			cols = append(cols, p)
		}
	}
	return cols
}

// foreignKeyActions reads ON DELETE / ON UPDATE clauses. An absent
// clause, and NO ACTION, both report RESTRICT: the server enforces them
// identically.
func foreignKeyActions(clause string) (deleteRule, updateRule int64) {
	deleteRule = ImportedKeyRestrict
	updateRule = ImportedKeyRestrict
	upper := strings.ToUpper(clause)
	if i := strings.Index(upper, "ON DELETE"); i >= 0 {
		deleteRule = actionCode(upper[i+len("ON DELETE"):])
	}
	if i := strings.Index(upper, "ON UPDATE"); i >= 0 {
		updateRule = actionCode(upper[i+len("ON UPDATE"):])
	}
	return deleteRule, updateRule
}

func actionCode(s string) int64 {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "CASCADE"):
		return ImportedKeyCascade
	case strings.HasPrefix(s, "SET NULL"):
		return ImportedKeySetNull
	case strings.HasPrefix(s, "SET DEFAULT"):
		return ImportedKeySetDefault
	default:
		return ImportedKeyRestrict
	}
}

// extractForeignKeyComments turns SHOW CREATE TABLE output into the
// canonical comment form understood by parseKeyComment, one entry per
// CONSTRAINT ... FOREIGN KEY line. References without an explicit
// database qualifier are attributed to defaultDB.
func extractForeignKeyComments(createSQL, defaultDB, quote string) []string {
	var comments []string
	for _, line := range strings.Split(createSQL, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), ","))
		upper := strings.ToUpper(line)
		if !strings.Contains(upper, "FOREIGN KEY") || !strings.HasPrefix(upper, "CONSTRAINT") {
			continue
		}
		c, ok := foreignKeyLineToComment(line, defaultDB, quote)
		if ok {
			comments = append(comments, c)
		}
	}
	return comments
}

// foreignKeyLineToComment rewrites
//
//	CONSTRAINT `fk` FOREIGN KEY (`a`,`b`) REFERENCES `db`.`t` (`x`,`y`) ON DELETE CASCADE
//
// into "fk(a,b) REFER db/t(x,y) ON DELETE CASCADE".
func foreignKeyLineToComment(line, defaultDB, quote string) (string, bool) {
	upper := strings.ToUpper(line)

	fkIdx := strings.Index(upper, "FOREIGN KEY")
	name := unquoteIdentifier(strings.TrimSpace(line[len("CONSTRAINT"):fkIdx]), quote)

	rest := line[fkIdx+len("FOREIGN KEY"):]
	open := strings.IndexByte(rest, '(')
	closing := strings.IndexByte(rest, ')')
	if open < 0 || closing < open {
		return "", false
	}
	local := splitColumnList(rest[open+1:closing], quote)

	rest = rest[closing+1:]
	refIdx := strings.Index(strings.ToUpper(rest), "REFERENCES")
	if refIdx < 0 {
		return "", false
	}
	rest = rest[refIdx+len("REFERENCES"):]
	open = strings.IndexByte(rest, '(')
	closing = strings.IndexByte(rest, ')')
	if open < 0 || closing < open {
		return "", false
	}

	target := strings.TrimSpace(rest[:open])
	db, tbl := defaultDB, target
	if dot := splitQualified(target, quote); dot >= 0 {
		db = unquoteIdentifier(target[:dot], quote)
		tbl = target[dot+1:]
	}
	tbl = unquoteIdentifier(tbl, quote)
	referenced := splitColumnList(rest[open+1:closing], quote)
	actions := strings.TrimSpace(rest[closing+1:])

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	b.WriteString(strings.Join(local, ","))
	b.WriteString(") REFER ")
	b.WriteString(db)
	b.WriteByte('/')
	b.WriteString(tbl)
	b.WriteByte('(')
	b.WriteString(strings.Join(referenced, ","))
	b.WriteByte(')')
	if actions != "" {
		b.WriteByte(' ')
		b.WriteString(actions)
	}
	return b.String(), true
}

// splitQualified finds the dot separating a quoted db.table pair,
// ignoring dots inside identifier quotes. Returns -1 when unqualified.
func splitQualified(target, quote string) int {
	inQuote := false
	for i := 0; i < len(target); i++ {
		if strings.HasPrefix(target[i:], quote) {
			inQuote = !inQuote
			i += len(quote) - 1
			continue
		}
		if target[i] == '.' && !inQuote {
			return i
		}
	}
	return -1
}
