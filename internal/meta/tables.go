package meta

import (
	"context"
	"database/sql"
	"strings"

	"github.com/kdutta/mysqlmeta/internal/errs"
)

// Table type labels reported in TABLE_TYPE.
const (
	TableTypeTable       = "TABLE"
	TableTypeView        = "VIEW"
	TableTypeSystemTable = "SYSTEM TABLE"
	TableTypeSystemView  = "SYSTEM VIEW"
)

// systemDatabases contains databases whose base tables present as
// SYSTEM TABLE rather than TABLE.
var systemDatabases = map[string]struct{}{
	"mysql":              {},
	"performance_schema": {},
	"sys":                {},
}

// Tables lists matching tables and views. A nil or empty types slice
// matches every table type; unrecognized entries match nothing.
func (m *Metadata) Tables(ctx context.Context, catalog, schemaPattern, tablePattern *string, types []string) ([]TableRow, error) {
	ns := normalizeNamespaceFilter(m.resolveNamespace(catalog, schemaPattern), m.flags)
	tf := normalizeFilter(tablePattern, m.flags)
	wanted := tableTypeSet(types)

	var (
		rows []TableRow
		err  error
	)
	if m.strategy == StrategyShowCommands {
		rows, err = m.tablesFromShow(ctx, ns, tf)
	} else {
		rows, err = m.tablesFromInfoSchema(ctx, ns, tf)
	}
	if err != nil {
		return nil, err
	}

	if wanted != nil {
		filtered := rows[:0]
		for _, r := range rows {
			if _, ok := wanted[r.TableType]; ok {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}
	sortTableRows(rows, m.flags)
	return rows, nil
}

func tableTypeSet(types []string) map[string]struct{} {
	if len(types) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[strings.ToUpper(strings.TrimSpace(t))] = struct{}{}
	}
	return set
}

func (m *Metadata) buildTablesQuery(ns, tf normalizedFilter) CatalogQuery {
	var b strings.Builder
	b.WriteString("SELECT TABLE_SCHEMA, TABLE_NAME, TABLE_TYPE, TABLE_COMMENT FROM INFORMATION_SCHEMA.TABLES")

	var w whereBuilder
	w.add("TABLE_SCHEMA", ns)
	w.add("TABLE_NAME", tf)
	b.WriteString(w.clause())

	b.WriteString(" ORDER BY TABLE_TYPE, TABLE_SCHEMA, TABLE_NAME")
	return CatalogQuery{SQL: b.String(), Args: w.args}
}

func (m *Metadata) tablesFromInfoSchema(ctx context.Context, ns, tf normalizedFilter) ([]TableRow, error) {
	q := m.buildTablesQuery(ns, tf)
	m.logQuery(q.SQL, len(q.Args))

	rows, err := m.db.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]TableRow, 0)
	for rows.Next() {
		var (
			db, name, rawType string
			comment           sql.NullString
		)
		if err := rows.Scan(&db, &name, &rawType, &comment); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan table row", err)
		}
		result = append(result, m.buildTableRow(db, name, rawType, nullStrPtr(comment)))
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error reading tables", err)
	}
	return result, nil
}

func (m *Metadata) tablesFromShow(ctx context.Context, ns, tf normalizedFilter) ([]TableRow, error) {
	dbs, err := m.matchingDatabases(ctx, ns)
	if err != nil {
		return nil, err
	}

	result := make([]TableRow, 0)
	for _, db := range dbs {
		q := "SHOW FULL TABLES FROM " + quoteIdentifier(db, m.flags.quote())
		if tf.value != nil {
			q += " LIKE " + stringLiteral(*tf.value)
		}
		m.logQuery(q, 0)

		rows, err := m.db.Query(ctx, q)
		if errs.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}

		func() {
			defer rows.Close()
			for rows.Next() {
				var name, rawType string
				if scanErr := rows.Scan(&name, &rawType); scanErr != nil {
					err = errs.Wrap(errs.ErrKindQueryFailed, "failed to scan table row", scanErr)
					return
				}
				result = append(result, m.buildTableRow(db, name, rawType, nil))
			}
			err = rows.Err()
		}()
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// buildTableRow maps the server's table type label to the reported one:
// base tables in the server's own databases present as SYSTEM TABLE.
func (m *Metadata) buildTableRow(db, name, rawType string, comment *string) TableRow {
	tableType := strings.ToUpper(rawType)
	if tableType == "BASE TABLE" {
		if _, sys := systemDatabases[strings.ToLower(db)]; sys {
			tableType = TableTypeSystemTable
		} else {
			tableType = TableTypeTable
		}
	}
	cat, schem := m.flags.splitNamespace(db)
	return TableRow{
		TableCat:   cat,
		TableSchem: schem,
		TableName:  name,
		TableType:  tableType,
		Remarks:    comment,
	}
}
