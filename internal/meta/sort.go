package meta

import (
	"sort"
	"strings"
)

// sortIndexRows orders merged index rows the way a single information
// schema query would: unique indexes first, then index type, then index
// name (folded per the server's identifier case rule), then column
// position. Required whenever rows from several per-database commands
// are concatenated.
func sortIndexRows(rows []IndexRow, f Flags) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.NonUnique != b.NonUnique {
			return !a.NonUnique
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		an, bn := f.foldCase(a.IndexName), f.foldCase(b.IndexName)
		if an != bn {
			return an < bn
		}
		return a.OrdinalPosition < b.OrdinalPosition
	})
}

// sortTableRows orders merged table rows by type, then namespace, then
// name.
func sortTableRows(rows []TableRow, f Flags) {
	key := func(r TableRow) string {
		var b strings.Builder
		b.WriteString(r.TableType)
		b.WriteByte('\x00')
		if r.TableCat != nil {
			b.WriteString(f.foldCase(*r.TableCat))
		}
		b.WriteByte('\x00')
		if r.TableSchem != nil {
			b.WriteString(f.foldCase(*r.TableSchem))
		}
		b.WriteByte('\x00')
		b.WriteString(f.foldCase(r.TableName))
		return b.String()
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return key(rows[i]) < key(rows[j])
	})
}

// sortPrimaryKeyRows orders primary key rows by column name, matching
// the fixed ORDER BY of the information-schema query.
func sortPrimaryKeyRows(rows []PrimaryKeyRow, f Flags) {
	sort.SliceStable(rows, func(i, j int) bool {
		return f.foldCase(rows[i].ColumnName) < f.foldCase(rows[j].ColumnName)
	})
}
