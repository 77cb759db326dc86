package meta

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/kdutta/mysqlmeta/internal/database"
	"github.com/kdutta/mysqlmeta/internal/errs"
)

// Procedures lists stored procedures matching the filters, ordered by
// database and name.
func (m *Metadata) Procedures(ctx context.Context, catalog, schemaPattern, namePattern *string) ([]ProcedureRow, error) {
	ns := normalizeNamespaceFilter(m.resolveNamespace(catalog, schemaPattern), m.flags)
	nf := normalizeFilter(namePattern, m.flags)

	if m.strategy == StrategyShowCommands {
		rows, err := m.routinesFromShow(ctx, "SHOW PROCEDURE STATUS", ns, nf)
		if err != nil {
			return nil, err
		}
		result := make([]ProcedureRow, 0, len(rows))
		for _, r := range rows {
			cat, schem := m.flags.splitNamespace(r.db)
			result = append(result, ProcedureRow{
				ProcedureCat:   cat,
				ProcedureSchem: schem,
				ProcedureName:  r.name,
				Remarks:        r.comment,
				ProcedureType:  ProcedureNoResult,
				SpecificName:   r.name,
			})
		}
		return result, nil
	}

	q := m.buildRoutinesQuery("PROCEDURE", ns, nf)
	rows, err := m.routinesFromInfoSchema(ctx, q)
	if err != nil {
		return nil, err
	}
	result := make([]ProcedureRow, 0, len(rows))
	for _, r := range rows {
		cat, schem := m.flags.splitNamespace(r.db)
		result = append(result, ProcedureRow{
			ProcedureCat:   cat,
			ProcedureSchem: schem,
			ProcedureName:  r.name,
			Remarks:        r.comment,
			ProcedureType:  ProcedureNoResult,
			SpecificName:   r.name,
		})
	}
	return result, nil
}

// Functions lists stored functions matching the filters, ordered by
// database and name.
func (m *Metadata) Functions(ctx context.Context, catalog, schemaPattern, namePattern *string) ([]FunctionRow, error) {
	ns := normalizeNamespaceFilter(m.resolveNamespace(catalog, schemaPattern), m.flags)
	nf := normalizeFilter(namePattern, m.flags)

	var (
		rows []routineRecord
		err  error
	)
	if m.strategy == StrategyShowCommands {
		rows, err = m.routinesFromShow(ctx, "SHOW FUNCTION STATUS", ns, nf)
	} else {
		rows, err = m.routinesFromInfoSchema(ctx, m.buildRoutinesQuery("FUNCTION", ns, nf))
	}
	if err != nil {
		return nil, err
	}

	result := make([]FunctionRow, 0, len(rows))
	for _, r := range rows {
		cat, schem := m.flags.splitNamespace(r.db)
		result = append(result, FunctionRow{
			FunctionCat:   cat,
			FunctionSchem: schem,
			FunctionName:  r.name,
			Remarks:       r.comment,
			FunctionType:  FunctionNoTable,
			SpecificName:  r.name,
		})
	}
	return result, nil
}

type routineRecord struct {
	db      string
	name    string
	comment *string
}

func (m *Metadata) buildRoutinesQuery(routineType string, ns, nf normalizedFilter) CatalogQuery {
	var b strings.Builder
	b.WriteString("SELECT ROUTINE_SCHEMA, ROUTINE_NAME, ROUTINE_COMMENT FROM INFORMATION_SCHEMA.ROUTINES")

	var w whereBuilder
	w.addExact("ROUTINE_TYPE", routineType)
	w.add("ROUTINE_SCHEMA", ns)
	w.add("ROUTINE_NAME", nf)
	b.WriteString(w.clause())
	b.WriteString(" ORDER BY ROUTINE_SCHEMA, ROUTINE_NAME")
	return CatalogQuery{SQL: b.String(), Args: w.args}
}

func (m *Metadata) routinesFromInfoSchema(ctx context.Context, q CatalogQuery) ([]routineRecord, error) {
	m.logQuery(q.SQL, len(q.Args))
	rows, err := m.db.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]routineRecord, 0)
	for rows.Next() {
		var (
			db, name string
			comment  sql.NullString
		)
		if err := rows.Scan(&db, &name, &comment); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan routine row", err)
		}
		result = append(result, routineRecord{db: db, name: name, comment: nullStrPtr(comment)})
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error reading routines", err)
	}
	return result, nil
}

// routinesFromShow runs a SHOW ... STATUS command. The name filter is
// pushed down as LIKE; the database filter is applied client-side since
// the command has no FROM clause.
func (m *Metadata) routinesFromShow(ctx context.Context, command string, ns, nf normalizedFilter) ([]routineRecord, error) {
	q := command
	if nf.value != nil {
		q += " LIKE " + stringLiteral(*nf.value)
	}
	m.logQuery(q, 0)

	rows, err := m.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	raw, err := database.ScanRows(rows)
	if err != nil {
		return nil, err
	}

	result := make([]routineRecord, 0, len(raw))
	for _, rec := range raw {
		db := rawString(rec["Db"])
		if !filterMatches(ns, db) {
			continue
		}
		result = append(result, routineRecord{
			db:      db,
			name:    rawString(rec["Name"]),
			comment: rawStringPtr(rec["Comment"]),
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		ad, bd := m.flags.foldCase(a.db), m.flags.foldCase(b.db)
		if ad != bd {
			return ad < bd
		}
		return m.flags.foldCase(a.name) < m.flags.foldCase(b.name)
	})
	return result, nil
}
