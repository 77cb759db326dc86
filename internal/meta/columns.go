package meta

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/kdutta/mysqlmeta/internal/database"
	"github.com/kdutta/mysqlmeta/internal/errs"
)

// Columns describes the columns of every matching table. The namespace
// filter is taken from catalog or schemaPattern per the session's term;
// nil filters for table and column match everything.
func (m *Metadata) Columns(ctx context.Context, catalog, schemaPattern, tablePattern, columnPattern *string) ([]ColumnRow, error) {
	ns := normalizeNamespaceFilter(m.resolveNamespace(catalog, schemaPattern), m.flags)
	tf := normalizeFilter(tablePattern, m.flags)
	cf := normalizeFilter(columnPattern, m.flags)

	if m.strategy == StrategyShowCommands {
		return m.columnsFromShow(ctx, ns, tf, cf)
	}
	return m.columnsFromInfoSchema(ctx, ns, tf, cf)
}

// buildColumnsQuery assembles the information-schema statement. The raw
// COLUMN_TYPE is projected and interpreted client-side, so this path and
// the SHOW path share one type-mapping implementation and cannot
// disagree. DATETIME_PRECISION exists only from 5.6.4 on; older servers
// get a NULL literal in the same position so the scan shape never
// changes.
func (m *Metadata) buildColumnsQuery(ns, tf, cf normalizedFilter) CatalogQuery {
	dtp := "NULL"
	if m.flags.supportsFractionalSeconds() {
		dtp = "DATETIME_PRECISION"
	}

	var b strings.Builder
	b.WriteString("SELECT TABLE_SCHEMA, TABLE_NAME, COLUMN_NAME, COLUMN_TYPE, COLUMN_DEFAULT, IS_NULLABLE,")
	b.WriteString(" CHARACTER_MAXIMUM_LENGTH, CHARACTER_OCTET_LENGTH, NUMERIC_PRECISION, NUMERIC_SCALE, ")
	b.WriteString(dtp)
	b.WriteString(" AS DATETIME_PRECISION, COLUMN_COMMENT, ORDINAL_POSITION, EXTRA")
	b.WriteString(" FROM INFORMATION_SCHEMA.COLUMNS")

	var w whereBuilder
	w.add("TABLE_SCHEMA", ns)
	w.add("TABLE_NAME", tf)
	w.add("COLUMN_NAME", cf)
	b.WriteString(w.clause())

	b.WriteString(" ORDER BY TABLE_SCHEMA, TABLE_NAME, ORDINAL_POSITION")
	return CatalogQuery{SQL: b.String(), Args: w.args}
}

func (m *Metadata) columnsFromInfoSchema(ctx context.Context, ns, tf, cf normalizedFilter) ([]ColumnRow, error) {
	q := m.buildColumnsQuery(ns, tf, cf)
	m.logQuery(q.SQL, len(q.Args))

	rows, err := m.db.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]ColumnRow, 0)
	for rows.Next() {
		var (
			tableSchema, tableName, columnName, columnType string
			columnDefault, isNullable                      sql.NullString
			charMaxLen, charOctetLen                       sql.NullInt64
			numPrecision, numScale, dtPrecision            sql.NullInt64
			comment                                        sql.NullString
			ordinal                                        int64
			extra                                          sql.NullString
		)
		if err := rows.Scan(&tableSchema, &tableName, &columnName, &columnType, &columnDefault,
			&isNullable, &charMaxLen, &charOctetLen, &numPrecision, &numScale, &dtPrecision,
			&comment, &ordinal, &extra); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan column row", err)
		}

		row, err := m.buildColumnRow(tableSchema, tableName, columnName, columnType,
			strOrEmpty(isNullable), nullStrPtr(columnDefault), nullStrPtr(comment),
			ordinal, strOrEmpty(extra))
		if err != nil {
			return nil, err
		}

		// Prefer the server-reported lengths over the parsed defaults.
		// Integer display widths and NUMERIC_PRECISION legitimately
		// differ; the information schema wins on this path. BIT and
		// BOOLEAN keep the parsed size: for a remapped TINYINT(1) the
		// schema still reports the tinyint precision.
		remapped := row.DataType == SQLTypeBit || row.DataType == SQLTypeBoolean
		if charMaxLen.Valid {
			row.ColumnSize = nullI64Ptr(charMaxLen)
		} else if numPrecision.Valid && !remapped {
			p := numPrecision.Int64
			if p == 7 && row.TypeName == "MEDIUMINT UNSIGNED" && m.flags.mediumintUnsignedPrecisionBug() {
				p = 8
			}
			row.ColumnSize = &p
		}
		if numScale.Valid {
			row.DecimalDigits = nullI64Ptr(numScale)
		}
		if charOctetLen.Valid {
			row.CharOctetLength = nullI64Ptr(charOctetLen)
		}

		result = append(result, *row)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error reading columns", err)
	}
	return result, nil
}

// buildColumnRow assembles the shared portion of a column row from the
// raw type definition.
func (m *Metadata) buildColumnRow(db, table, column, columnType, isNullable string, columnDef, remarks *string, ordinal int64, extra string) (*ColumnRow, error) {
	desc, err := parseTypeDescriptor(columnType, isNullable, m.flags)
	if err != nil {
		return nil, err
	}

	cat, schem := m.flags.splitNamespace(db)
	extraUpper := strings.ToUpper(extra)

	row := &ColumnRow{
		TableCat:          cat,
		TableSchem:        schem,
		TableName:         table,
		ColumnName:        column,
		DataType:          int64(desc.id.Code(m.flags)),
		TypeName:          desc.name,
		ColumnSize:        desc.columnSize,
		BufferLength:      desc.bufferLength,
		DecimalDigits:     desc.decimalDigits,
		NumPrecRadix:      desc.numPrecRadix,
		Nullable:          desc.nullability,
		Remarks:           remarks,
		ColumnDef:         columnDef,
		CharOctetLength:   desc.charOctetLength,
		OrdinalPosition:   ordinal,
		IsNullable:        desc.isNullable,
		IsAutoIncrement:   yesNo(strings.Contains(extraUpper, "AUTO_INCREMENT")),
		IsGeneratedColumn: yesNo(strings.Contains(extraUpper, "GENERATED")),
	}
	return row, nil
}

// columnsFromShow walks SHOW DATABASES / SHOW FULL COLUMNS. A database
// or table that disappears mid-walk is skipped; everything else fails
// the whole operation. Ordinal positions count all columns of the table
// even when a column filter narrows the output.
func (m *Metadata) columnsFromShow(ctx context.Context, ns, tf, cf normalizedFilter) ([]ColumnRow, error) {
	dbs, err := m.matchingDatabases(ctx, ns)
	if err != nil {
		return nil, err
	}

	result := make([]ColumnRow, 0)
	for _, db := range dbs {
		tables, err := m.showTableNames(ctx, db, tf)
		if errs.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}

		for _, table := range tables {
			q := "SHOW FULL COLUMNS FROM " + quoteIdentifier(table, m.flags.quote()) +
				" FROM " + quoteIdentifier(db, m.flags.quote())
			m.logQuery(q, 0)

			rows, err := m.db.Query(ctx, q)
			if errs.IsNotFound(err) {
				continue
			}
			if err != nil {
				return nil, err
			}
			raw, err := database.ScanRows(rows)
			if err != nil {
				return nil, err
			}

			for i, rec := range raw {
				name := rawString(rec["Field"])
				if !filterMatches(cf, name) {
					continue
				}
				row, err := m.buildColumnRow(db, table,
					name,
					rawString(rec["Type"]),
					rawString(rec["Null"]),
					rawStringPtr(rec["Default"]),
					rawStringPtr(rec["Comment"]),
					int64(i+1),
					rawString(rec["Extra"]),
				)
				if err != nil {
					return nil, err
				}
				result = append(result, *row)
			}
		}
	}
	return result, nil
}

// showTableNames lists the tables of db via SHOW FULL TABLES, sorted.
// The table filter is pushed down as LIKE when present.
func (m *Metadata) showTableNames(ctx context.Context, db string, tf normalizedFilter) ([]string, error) {
	q := "SHOW FULL TABLES FROM " + quoteIdentifier(db, m.flags.quote())
	if tf.value != nil {
		q += " LIKE " + stringLiteral(*tf.value)
	}
	m.logQuery(q, 0)

	rows, err := m.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name, tableType string
		if err := rows.Scan(&name, &tableType); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan table name", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error listing tables", err)
	}
	sort.Strings(names)
	return names, nil
}

// filterMatches applies an already-normalized filter to a name
// client-side, for commands that could not push it down.
func filterMatches(nf normalizedFilter, name string) bool {
	if nf.value == nil {
		return true
	}
	if nf.kind == predicatePattern {
		return sqlPatternMatch(*nf.value, name)
	}
	return *nf.value == name
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}
