package meta

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/kdutta/mysqlmeta/internal/database"
	"github.com/kdutta/mysqlmeta/internal/errs"
)

// PrimaryKeys describes the primary key columns of one table, ordered
// by column name. The table argument is mandatory.
func (m *Metadata) PrimaryKeys(ctx context.Context, catalog, schema, table *string) ([]PrimaryKeyRow, error) {
	tbl, err := requireTable(table)
	if err != nil {
		return nil, err
	}
	ns := normalizeNamespaceFilter(m.resolveNamespace(catalog, schema), m.flags)

	if m.strategy == StrategyShowCommands {
		return m.primaryKeysFromShow(ctx, ns, tbl)
	}
	return m.primaryKeysFromInfoSchema(ctx, ns, tbl)
}

func (m *Metadata) primaryKeysFromInfoSchema(ctx context.Context, ns normalizedFilter, table string) ([]PrimaryKeyRow, error) {
	var b strings.Builder
	b.WriteString("SELECT TABLE_SCHEMA, TABLE_NAME, COLUMN_NAME, SEQ_IN_INDEX FROM INFORMATION_SCHEMA.STATISTICS")

	var w whereBuilder
	w.add("TABLE_SCHEMA", ns)
	w.addExact("TABLE_NAME", table)
	w.addRaw("INDEX_NAME = 'PRIMARY'")
	b.WriteString(w.clause())
	b.WriteString(" ORDER BY TABLE_SCHEMA, TABLE_NAME, COLUMN_NAME, SEQ_IN_INDEX")

	m.logQuery(b.String(), len(w.args))
	rows, err := m.db.Query(ctx, b.String(), w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]PrimaryKeyRow, 0)
	for rows.Next() {
		var (
			db, name, column string
			seq              int64
		)
		if err := rows.Scan(&db, &name, &column, &seq); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan primary key row", err)
		}
		cat, schem := m.flags.splitNamespace(db)
		result = append(result, PrimaryKeyRow{
			TableCat:   cat,
			TableSchem: schem,
			TableName:  name,
			ColumnName: column,
			KeySeq:     seq,
			PKName:     "PRIMARY",
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error reading primary keys", err)
	}
	return result, nil
}

func (m *Metadata) primaryKeysFromShow(ctx context.Context, ns normalizedFilter, table string) ([]PrimaryKeyRow, error) {
	result := make([]PrimaryKeyRow, 0)
	err := m.eachFilteredDatabase(ctx, ns, func(db string) error {
		raw, err := m.showKeys(ctx, db, table)
		if errs.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		cat, schem := m.flags.splitNamespace(db)
		for _, rec := range raw {
			if rawString(rec["Key_name"]) != "PRIMARY" {
				continue
			}
			result = append(result, PrimaryKeyRow{
				TableCat:   cat,
				TableSchem: schem,
				TableName:  table,
				ColumnName: rawString(rec["Column_name"]),
				KeySeq:     rawInt64(rec["Seq_in_index"]),
				PKName:     "PRIMARY",
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortPrimaryKeyRows(result, m.flags)
	return result, nil
}

// ImportedKeys describes the foreign keys declared by one table,
// ordered by the referenced table.
func (m *Metadata) ImportedKeys(ctx context.Context, catalog, schema, table *string) ([]KeyRow, error) {
	tbl, err := requireTable(table)
	if err != nil {
		return nil, err
	}
	ns := normalizeNamespaceFilter(m.resolveNamespace(catalog, schema), m.flags)

	if m.strategy == StrategyShowCommands {
		return m.importedKeysFromShow(ctx, ns, tbl)
	}
	q := m.buildKeysQuery(ns, &tbl, normalizedFilter{}, nil, false)
	return m.keysFromInfoSchema(ctx, q)
}

// ExportedKeys describes the foreign keys of other tables that
// reference one table, ordered by the referencing table.
func (m *Metadata) ExportedKeys(ctx context.Context, catalog, schema, table *string) ([]KeyRow, error) {
	tbl, err := requireTable(table)
	if err != nil {
		return nil, err
	}
	ns := normalizeNamespaceFilter(m.resolveNamespace(catalog, schema), m.flags)

	if m.strategy == StrategyShowCommands {
		return m.exportedKeysFromShow(ctx, ns, tbl)
	}
	q := m.buildKeysQuery(normalizedFilter{}, nil, ns, &tbl, true)
	return m.keysFromInfoSchema(ctx, q)
}

// CrossReference describes the foreign keys of foreignTable that
// reference parentTable. Both table arguments are mandatory.
func (m *Metadata) CrossReference(ctx context.Context, parentCatalog, parentSchema, parentTable, foreignCatalog, foreignSchema, foreignTable *string) ([]KeyRow, error) {
	pkTable, err := requireTable(parentTable)
	if err != nil {
		return nil, err
	}
	fkTable, err := requireTable(foreignTable)
	if err != nil {
		return nil, err
	}
	pkNS := normalizeNamespaceFilter(m.resolveNamespace(parentCatalog, parentSchema), m.flags)
	fkNS := normalizeNamespaceFilter(m.resolveNamespace(foreignCatalog, foreignSchema), m.flags)

	if m.strategy == StrategyShowCommands {
		rows, err := m.importedKeysFromShow(ctx, fkNS, fkTable)
		if err != nil {
			return nil, err
		}
		filtered := make([]KeyRow, 0)
		for _, r := range rows {
			if r.PKTableName != pkTable {
				continue
			}
			if !namespaceRowMatches(pkNS, r.PKTableCat, r.PKTableSchem, m.flags) {
				continue
			}
			filtered = append(filtered, r)
		}
		return filtered, nil
	}

	q := m.buildKeysQuery(fkNS, &fkTable, pkNS, &pkTable, false)
	return m.keysFromInfoSchema(ctx, q)
}

// buildKeysQuery assembles the KEY_COLUMN_USAGE/REFERENTIAL_CONSTRAINTS
// join shared by the three relationship operations. fkNS/fkTable filter
// the declaring side, pkNS/pkTable the referenced side; a nil table
// leaves that side open. orderByFK selects the exported-keys ordering.
func (m *Metadata) buildKeysQuery(fkNS normalizedFilter, fkTable *string, pkNS normalizedFilter, pkTable *string, orderByFK bool) CatalogQuery {
	var b strings.Builder
	b.WriteString("SELECT K.CONSTRAINT_NAME, K.TABLE_SCHEMA, K.TABLE_NAME, K.COLUMN_NAME,")
	b.WriteString(" K.REFERENCED_TABLE_SCHEMA, K.REFERENCED_TABLE_NAME, K.REFERENCED_COLUMN_NAME,")
	b.WriteString(" K.ORDINAL_POSITION, R.UPDATE_RULE, R.DELETE_RULE, R.UNIQUE_CONSTRAINT_NAME")
	b.WriteString(" FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE K")
	b.WriteString(" JOIN INFORMATION_SCHEMA.REFERENTIAL_CONSTRAINTS R")
	b.WriteString(" ON R.CONSTRAINT_SCHEMA = K.CONSTRAINT_SCHEMA AND R.CONSTRAINT_NAME = K.CONSTRAINT_NAME AND R.TABLE_NAME = K.TABLE_NAME")

	var w whereBuilder
	w.addRaw("K.REFERENCED_TABLE_SCHEMA IS NOT NULL")
	w.add("K.TABLE_SCHEMA", fkNS)
	if fkTable != nil {
		w.addExact("K.TABLE_NAME", *fkTable)
	}
	w.add("K.REFERENCED_TABLE_SCHEMA", pkNS)
	if pkTable != nil {
		w.addExact("K.REFERENCED_TABLE_NAME", *pkTable)
	}
	b.WriteString(w.clause())

	if orderByFK {
		b.WriteString(" ORDER BY K.TABLE_SCHEMA, K.TABLE_NAME, K.ORDINAL_POSITION")
	} else {
		b.WriteString(" ORDER BY K.REFERENCED_TABLE_SCHEMA, K.REFERENCED_TABLE_NAME, K.ORDINAL_POSITION")
	}
	return CatalogQuery{SQL: b.String(), Args: w.args}
}

func (m *Metadata) keysFromInfoSchema(ctx context.Context, q CatalogQuery) ([]KeyRow, error) {
	m.logQuery(q.SQL, len(q.Args))
	rows, err := m.db.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]KeyRow, 0)
	for rows.Next() {
		var (
			constraint, fkDB, fkTable, fkColumn string
			pkDB, pkTable, pkColumn             string
			seq                                 int64
			updateRule, deleteRule              string
			uniqueConstraint                    sql.NullString
		)
		if err := rows.Scan(&constraint, &fkDB, &fkTable, &fkColumn, &pkDB, &pkTable,
			&pkColumn, &seq, &updateRule, &deleteRule, &uniqueConstraint); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan key row", err)
		}

		pkCat, pkSchem := m.flags.splitNamespace(pkDB)
		fkCat, fkSchem := m.flags.splitNamespace(fkDB)
		fkName := constraint
		result = append(result, KeyRow{
			PKTableCat:    pkCat,
			PKTableSchem:  pkSchem,
			PKTableName:   pkTable,
			PKColumnName:  pkColumn,
			FKTableCat:    fkCat,
			FKTableSchem:  fkSchem,
			FKTableName:   fkTable,
			FKColumnName:  fkColumn,
			KeySeq:        seq,
			UpdateRule:    actionCode(strings.ToUpper(updateRule)),
			DeleteRule:    actionCode(strings.ToUpper(deleteRule)),
			FKName:        &fkName,
			PKName:        nullStrPtr(uniqueConstraint),
			Deferrability: ImportedKeyNotDeferrable,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error reading keys", err)
	}
	return result, nil
}

// importedKeysFromShow parses SHOW CREATE TABLE output of the table
// itself in each matching database.
func (m *Metadata) importedKeysFromShow(ctx context.Context, ns normalizedFilter, table string) ([]KeyRow, error) {
	result := make([]KeyRow, 0)
	err := m.eachFilteredDatabase(ctx, ns, func(db string) error {
		descs, err := m.foreignKeysOf(ctx, db, table)
		if errs.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		for _, d := range descs {
			result = append(result, m.keyRowsFromDescriptor(d, db, table)...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortKeyRowsByPK(result, m.flags)
	return result, nil
}

// exportedKeysFromShow scans every table of every matching database for
// foreign keys referencing the target table.
func (m *Metadata) exportedKeysFromShow(ctx context.Context, ns normalizedFilter, table string) ([]KeyRow, error) {
	dbs, err := m.matchingDatabases(ctx, normalizedFilter{})
	if err != nil {
		return nil, err
	}

	result := make([]KeyRow, 0)
	for _, db := range dbs {
		tables, err := m.showTableNames(ctx, db, normalizedFilter{})
		if errs.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, fkTable := range tables {
			descs, err := m.foreignKeysOf(ctx, db, fkTable)
			if errs.IsNotFound(err) {
				continue
			}
			if err != nil {
				return nil, err
			}
			for _, d := range descs {
				if d.referencedTable != table {
					continue
				}
				if !filterMatches(ns, d.referencedDatabase) {
					continue
				}
				result = append(result, m.keyRowsFromDescriptor(d, db, fkTable)...)
			}
		}
	}
	return result, nil
}

// foreignKeysOf parses the foreign-key definitions out of SHOW CREATE
// TABLE for one table.
func (m *Metadata) foreignKeysOf(ctx context.Context, db, table string) ([]*keyDescriptor, error) {
	quote := m.flags.quote()
	q := "SHOW CREATE TABLE " + quoteIdentifier(db, quote) + "." + quoteIdentifier(table, quote)
	m.logQuery(q, 0)

	rows, err := m.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	raw, err := database.ScanRows(rows)
	if err != nil {
		return nil, err
	}

	var descs []*keyDescriptor
	for _, rec := range raw {
		createSQL := rawString(rec["Create Table"])
		if createSQL == "" {
			continue
		}
		for _, comment := range extractForeignKeyComments(createSQL, db, quote) {
			d, err := parseKeyComment(comment, quote)
			if err != nil {
				return nil, err
			}
			descs = append(descs, d)
		}
	}
	return descs, nil
}

// keyRowsFromDescriptor expands one parsed constraint into its per-column
// rows. Column counts were validated at parse time.
func (m *Metadata) keyRowsFromDescriptor(d *keyDescriptor, fkDB, fkTable string) []KeyRow {
	pkCat, pkSchem := m.flags.splitNamespace(d.referencedDatabase)
	fkCat, fkSchem := m.flags.splitNamespace(fkDB)

	rows := make([]KeyRow, 0, len(d.localColumns))
	for i := range d.localColumns {
		name := d.constraintName
		rows = append(rows, KeyRow{
			PKTableCat:    pkCat,
			PKTableSchem:  pkSchem,
			PKTableName:   d.referencedTable,
			PKColumnName:  d.referencedColumns[i],
			FKTableCat:    fkCat,
			FKTableSchem:  fkSchem,
			FKTableName:   fkTable,
			FKColumnName:  d.localColumns[i],
			KeySeq:        int64(i + 1),
			UpdateRule:    d.updateRule,
			DeleteRule:    d.deleteRule,
			FKName:        &name,
			PKName:        nil,
			Deferrability: ImportedKeyNotDeferrable,
		})
	}
	return rows
}

// BestRowIdentifier reports the primary key columns as the optimal set
// for row identification. Both strategies read SHOW COLUMNS: the
// information schema offers nothing better for this question.
func (m *Metadata) BestRowIdentifier(ctx context.Context, catalog, schema, table *string) ([]BestRowRow, error) {
	tbl, err := requireTable(table)
	if err != nil {
		return nil, err
	}
	ns := normalizeNamespaceFilter(m.resolveNamespace(catalog, schema), m.flags)

	result := make([]BestRowRow, 0)
	err = m.eachFilteredDatabase(ctx, ns, func(db string) error {
		q := "SHOW COLUMNS FROM " + quoteIdentifier(tbl, m.flags.quote()) +
			" FROM " + quoteIdentifier(db, m.flags.quote())
		m.logQuery(q, 0)

		rows, err := m.db.Query(ctx, q)
		if errs.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		raw, err := database.ScanRows(rows)
		if err != nil {
			return err
		}

		for _, rec := range raw {
			if !strings.EqualFold(rawString(rec["Key"]), "PRI") {
				continue
			}
			desc, err := parseTypeDescriptor(rawString(rec["Type"]), rawString(rec["Null"]), m.flags)
			if err != nil {
				return err
			}
			result = append(result, BestRowRow{
				Scope:         BestRowSession,
				ColumnName:    rawString(rec["Field"]),
				DataType:      int64(desc.id.Code(m.flags)),
				TypeName:      desc.name,
				ColumnSize:    desc.columnSize,
				BufferLength:  desc.bufferLength,
				DecimalDigits: desc.decimalDigits,
				PseudoColumn:  BestRowNotPseudo,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// showKeys runs SHOW KEYS for one table and returns the raw records.
func (m *Metadata) showKeys(ctx context.Context, db, table string) ([]map[string]any, error) {
	q := "SHOW KEYS FROM " + quoteIdentifier(table, m.flags.quote()) +
		" FROM " + quoteIdentifier(db, m.flags.quote())
	m.logQuery(q, 0)

	rows, err := m.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return database.ScanRows(rows)
}

// eachFilteredDatabase resolves a namespace filter to databases and
// invokes fn for each. An exact filter skips the SHOW DATABASES round
// trip.
func (m *Metadata) eachFilteredDatabase(ctx context.Context, ns normalizedFilter, fn func(db string) error) error {
	if ns.value != nil && ns.kind == predicateExact {
		return fn(*ns.value)
	}
	dbs, err := m.matchingDatabases(ctx, ns)
	if err != nil {
		return err
	}
	for _, db := range dbs {
		if err := fn(db); err != nil {
			return err
		}
	}
	return nil
}

// namespaceRowMatches checks a produced row's namespace against a
// filter, on whichever side the term populated.
func namespaceRowMatches(ns normalizedFilter, cat, schem *string, f Flags) bool {
	if ns.value == nil {
		return true
	}
	db := ""
	if f.Term == TermSchema {
		if schem != nil {
			db = *schem
		}
	} else if cat != nil {
		db = *cat
	}
	return filterMatches(ns, db)
}

// sortKeyRowsByPK orders merged rows the way the single-query path
// would for imported keys.
func sortKeyRowsByPK(rows []KeyRow, f Flags) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		an := f.foldCase(a.PKTableName)
		bn := f.foldCase(b.PKTableName)
		if an != bn {
			return an < bn
		}
		return a.KeySeq < b.KeySeq
	})
}
