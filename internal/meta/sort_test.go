package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortIndexRows(t *testing.T) {
	rows := []IndexRow{
		{IndexName: "idx_name", NonUnique: true, Type: TableIndexOther, OrdinalPosition: 1},
		{IndexName: "PRIMARY", NonUnique: false, Type: TableIndexOther, OrdinalPosition: 2},
		{IndexName: "PRIMARY", NonUnique: false, Type: TableIndexOther, OrdinalPosition: 1},
		{IndexName: "idx_hash", NonUnique: true, Type: TableIndexHashed, OrdinalPosition: 1},
		{IndexName: "uq_email", NonUnique: false, Type: TableIndexOther, OrdinalPosition: 1},
	}

	sortIndexRows(rows, Flags{})

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.IndexName)
	}
	// Unique first, then type, then name, then position.
	assert.Equal(t, []string{"PRIMARY", "PRIMARY", "uq_email", "idx_hash", "idx_name"}, names)
	assert.Equal(t, int64(1), rows[0].OrdinalPosition)
	assert.Equal(t, int64(2), rows[1].OrdinalPosition)
}

func TestSortIndexRows_CaseFolding(t *testing.T) {
	rows := []IndexRow{
		{IndexName: "Zeta", Type: TableIndexOther},
		{IndexName: "alpha", Type: TableIndexOther},
		{IndexName: "Beta", Type: TableIndexOther},
	}

	// Binary comparison puts uppercase names first.
	sortIndexRows(rows, Flags{})
	assert.Equal(t, "Beta", rows[0].IndexName)
	assert.Equal(t, "Zeta", rows[1].IndexName)
	assert.Equal(t, "alpha", rows[2].IndexName)

	sortIndexRows(rows, Flags{LowerCaseIdentifiers: true})
	assert.Equal(t, "alpha", rows[0].IndexName)
	assert.Equal(t, "Beta", rows[1].IndexName)
	assert.Equal(t, "Zeta", rows[2].IndexName)
}

func TestSortTableRows(t *testing.T) {
	rows := []TableRow{
		{TableCat: ptr("beta"), TableName: "t1", TableType: "TABLE"},
		{TableCat: ptr("alpha"), TableName: "v1", TableType: "VIEW"},
		{TableCat: ptr("alpha"), TableName: "t2", TableType: "TABLE"},
		{TableCat: ptr("alpha"), TableName: "t1", TableType: "TABLE"},
	}

	sortTableRows(rows, Flags{})

	require.Len(t, rows, 4)
	assert.Equal(t, "t1", rows[0].TableName)
	assert.Equal(t, "alpha", *rows[0].TableCat)
	assert.Equal(t, "t2", rows[1].TableName)
	assert.Equal(t, "t1", rows[2].TableName)
	assert.Equal(t, "beta", *rows[2].TableCat)
	assert.Equal(t, "VIEW", rows[3].TableType)
}

func TestSortPrimaryKeyRows(t *testing.T) {
	rows := []PrimaryKeyRow{
		{ColumnName: "zone", KeySeq: 1},
		{ColumnName: "id", KeySeq: 2},
	}
	sortPrimaryKeyRows(rows, Flags{})
	assert.Equal(t, "id", rows[0].ColumnName)
	assert.Equal(t, "zone", rows[1].ColumnName)
}

func TestSortKeyRowsByPK(t *testing.T) {
	fk := "fk"
	rows := []KeyRow{
		{PKTableName: "zones", KeySeq: 1, FKName: &fk},
		{PKTableName: "arcs", KeySeq: 2, FKName: &fk},
		{PKTableName: "arcs", KeySeq: 1, FKName: &fk},
	}
	sortKeyRowsByPK(rows, Flags{})
	assert.Equal(t, "arcs", rows[0].PKTableName)
	assert.Equal(t, int64(1), rows[0].KeySeq)
	assert.Equal(t, int64(2), rows[1].KeySeq)
	assert.Equal(t, "zones", rows[2].PKTableName)
}

func TestRowArities(t *testing.T) {
	assert.Len(t, ColumnRow{}.Values(), len(ColumnsColumns))
	assert.Len(t, TableRow{}.Values(), len(TablesColumns))
	assert.Len(t, PrimaryKeyRow{}.Values(), len(PrimaryKeysColumns))
	assert.Len(t, KeyRow{}.Values(), len(KeysColumns))
	assert.Len(t, IndexRow{}.Values(), len(IndexInfoColumns))
	assert.Len(t, BestRowRow{}.Values(), len(BestRowColumns))
	assert.Len(t, ProcedureRow{}.Values(), len(ProceduresColumns))
	assert.Len(t, FunctionRow{}.Values(), len(FunctionsColumns))
	assert.Len(t, TypeInfoRow{}.Values(), len(TypeInfoColumns))
}
