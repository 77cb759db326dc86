package meta

import (
	"context"
	"database/sql"
	"strings"

	"github.com/kdutta/mysqlmeta/internal/errs"
)

// IndexInfo describes the indexes of one table, one row per indexed
// column, unique indexes first. With unique set, non-unique indexes are
// left out. The table argument is mandatory.
func (m *Metadata) IndexInfo(ctx context.Context, catalog, schema, table *string, unique bool) ([]IndexRow, error) {
	tbl, err := requireTable(table)
	if err != nil {
		return nil, err
	}
	ns := normalizeNamespaceFilter(m.resolveNamespace(catalog, schema), m.flags)

	if m.strategy == StrategyShowCommands {
		return m.indexInfoFromShow(ctx, ns, tbl, unique)
	}
	return m.indexInfoFromInfoSchema(ctx, ns, tbl, unique)
}

func (m *Metadata) buildIndexInfoQuery(ns normalizedFilter, table string, unique bool) CatalogQuery {
	var b strings.Builder
	b.WriteString("SELECT TABLE_SCHEMA, TABLE_NAME, NON_UNIQUE, INDEX_NAME, SEQ_IN_INDEX,")
	b.WriteString(" COLUMN_NAME, COLLATION, CARDINALITY, INDEX_TYPE")
	b.WriteString(" FROM INFORMATION_SCHEMA.STATISTICS")

	var w whereBuilder
	w.add("TABLE_SCHEMA", ns)
	w.addExact("TABLE_NAME", table)
	if unique {
		w.addRaw("NON_UNIQUE = 0")
	}
	b.WriteString(w.clause())
	b.WriteString(" ORDER BY NON_UNIQUE, INDEX_NAME, SEQ_IN_INDEX")
	return CatalogQuery{SQL: b.String(), Args: w.args}
}

func (m *Metadata) indexInfoFromInfoSchema(ctx context.Context, ns normalizedFilter, table string, unique bool) ([]IndexRow, error) {
	q := m.buildIndexInfoQuery(ns, table, unique)
	m.logQuery(q.SQL, len(q.Args))

	rows, err := m.db.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]IndexRow, 0)
	for rows.Next() {
		var (
			db, name, indexName, column string
			nonUnique, seq              int64
			collation                   sql.NullString
			cardinality                 sql.NullInt64
			indexType                   string
		)
		if err := rows.Scan(&db, &name, &nonUnique, &indexName, &seq, &column,
			&collation, &cardinality, &indexType); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan index row", err)
		}
		result = append(result, m.buildIndexRow(db, name, nonUnique != 0, indexName,
			indexType, seq, column, nullStrPtr(collation), cardinality.Int64))
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error reading indexes", err)
	}
	return result, nil
}

func (m *Metadata) indexInfoFromShow(ctx context.Context, ns normalizedFilter, table string, unique bool) ([]IndexRow, error) {
	result := make([]IndexRow, 0)
	err := m.eachFilteredDatabase(ctx, ns, func(db string) error {
		raw, err := m.showKeys(ctx, db, table)
		if errs.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		for _, rec := range raw {
			nonUnique := rawInt64(rec["Non_unique"]) != 0
			if unique && nonUnique {
				continue
			}
			result = append(result, m.buildIndexRow(db, table, nonUnique,
				rawString(rec["Key_name"]),
				rawString(rec["Index_type"]),
				rawInt64(rec["Seq_in_index"]),
				rawString(rec["Column_name"]),
				rawStringPtr(rec["Collation"]),
				rawInt64(rec["Cardinality"])))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortIndexRows(result, m.flags)
	return result, nil
}

func (m *Metadata) buildIndexRow(db, table string, nonUnique bool, indexName, indexType string, seq int64, column string, collation *string, cardinality int64) IndexRow {
	cat, schem := m.flags.splitNamespace(db)

	kind := int64(TableIndexOther)
	if strings.EqualFold(indexType, "HASH") {
		kind = TableIndexHashed
	}

	return IndexRow{
		TableCat:        cat,
		TableSchem:      schem,
		TableName:       table,
		NonUnique:       nonUnique,
		IndexName:       indexName,
		Type:            kind,
		OrdinalPosition: seq,
		ColumnName:      column,
		AscOrDesc:       collation,
		Cardinality:     cardinality,
		Pages:           0,
	}
}
