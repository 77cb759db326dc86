package meta

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdutta/mysqlmeta/internal/database"
	"github.com/kdutta/mysqlmeta/internal/errs"
)

// fakeDB serves canned results keyed by SQL prefix and records every
// statement it sees.
type fakeDB struct {
	responses []fakeResponse
	queries   []string
}

type fakeResponse struct {
	prefix  string
	columns []string
	rows    [][]any
	err     error
}

func (f *fakeDB) Ping(context.Context) error  { return nil }
func (f *fakeDB) Close(context.Context) error { return nil }

func (f *fakeDB) Query(_ context.Context, query string, _ ...any) (database.Rows, error) {
	f.queries = append(f.queries, query)
	for _, r := range f.responses {
		if strings.HasPrefix(query, r.prefix) {
			if r.err != nil {
				return nil, r.err
			}
			return &fakeRows{columns: r.columns, rows: r.rows}, nil
		}
	}
	return nil, errs.New(errs.ErrKindQueryFailed, "unexpected query: "+query)
}

func (f *fakeDB) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	rows, err := f.Query(ctx, query, args...)
	return &fakeRow{rows: rows, err: err}
}

func (f *fakeDB) Exec(_ context.Context, query string, _ ...any) (int64, error) {
	f.queries = append(f.queries, query)
	return 1, nil
}

type fakeRows struct {
	columns []string
	rows    [][]any
	pos     int
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.pos-1]
	for i, d := range dest {
		if i >= len(row) {
			break
		}
		if err := assign(d, row[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeRows) Columns() ([]string, error) { return r.columns, nil }
func (r *fakeRows) Close()                     {}
func (r *fakeRows) Err() error                 { return nil }

type fakeRow struct {
	rows database.Rows
	err  error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	defer r.rows.Close()
	if !r.rows.Next() {
		return errs.New(errs.ErrKindNotFound, "no rows")
	}
	return r.rows.Scan(dest...)
}

func assign(dest, src any) error {
	switch d := dest.(type) {
	case *any:
		*d = src
	case *string:
		*d = fmt.Sprint(src)
	case *int64:
		switch v := src.(type) {
		case int64:
			*d = v
		case int:
			*d = int64(v)
		default:
			return fmt.Errorf("cannot assign %T to *int64", src)
		}
	case *sql.NullString:
		if src == nil {
			*d = sql.NullString{}
		} else {
			*d = sql.NullString{String: fmt.Sprint(src), Valid: true}
		}
	case *sql.NullInt64:
		switch v := src.(type) {
		case nil:
			*d = sql.NullInt64{}
		case int64:
			*d = sql.NullInt64{Int64: v, Valid: true}
		case int:
			*d = sql.NullInt64{Int64: int64(v), Valid: true}
		default:
			return fmt.Errorf("cannot assign %T to *sql.NullInt64", src)
		}
	default:
		return fmt.Errorf("unsupported scan target %T", dest)
	}
	return nil
}

func testFlags() Flags {
	return Flags{
		Term:           TermCatalog,
		Server:         Version{8, 0, 36},
		Database:       "app",
		TinyInt1IsBit:  true,
		YearIsDateType: true,
	}
}

func showColumnsHeader() []string {
	return []string{"Field", "Type", "Collation", "Null", "Key", "Default", "Extra", "Privileges", "Comment"}
}

func TestDatabases_Sorted(t *testing.T) {
	db := &fakeDB{responses: []fakeResponse{
		{prefix: "SHOW DATABASES", columns: []string{"Database"}, rows: [][]any{{"gamma"}, {"alpha"}, {"beta"}}},
	}}
	m := New(db, testFlags())

	dbs, err := m.Databases(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, dbs)
}

func TestDatabases_PatternPushdown(t *testing.T) {
	db := &fakeDB{responses: []fakeResponse{
		{prefix: "SHOW DATABASES LIKE 'app%'", columns: []string{"Database"}, rows: [][]any{{"app"}}},
	}}
	m := New(db, testFlags())

	pattern := "app%"
	dbs, err := m.Databases(context.Background(), &pattern)
	require.NoError(t, err)
	assert.Equal(t, []string{"app"}, dbs)
}

func TestColumns_ShowStrategy_SkipsVanishedDatabase(t *testing.T) {
	db := &fakeDB{responses: []fakeResponse{
		{prefix: "SHOW DATABASES", columns: []string{"Database"}, rows: [][]any{{"alpha"}, {"beta"}, {"gamma"}}},
		{prefix: "SHOW FULL TABLES FROM `alpha`", columns: []string{"Tables_in_alpha", "Table_type"}, rows: [][]any{{"t1", "BASE TABLE"}}},
		{prefix: "SHOW FULL TABLES FROM `beta`", err: errs.New(errs.ErrKindNotFound, "unknown database")},
		{prefix: "SHOW FULL TABLES FROM `gamma`", columns: []string{"Tables_in_gamma", "Table_type"}, rows: [][]any{{"t2", "BASE TABLE"}}},
		{prefix: "SHOW FULL COLUMNS FROM `t1` FROM `alpha`", columns: showColumnsHeader(), rows: [][]any{
			{"id", "int(11)", nil, "NO", "PRI", nil, "auto_increment", "", ""},
		}},
		{prefix: "SHOW FULL COLUMNS FROM `t2` FROM `gamma`", columns: showColumnsHeader(), rows: [][]any{
			{"title", "varchar(32)", "utf8mb4_general_ci", "YES", "", nil, "", "", ""},
		}},
	}}
	m := New(db, testFlags(), WithStrategy(StrategyShowCommands))

	rows, err := m.Columns(context.Background(), nil, nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "id", rows[0].ColumnName)
	assert.Equal(t, "alpha", *rows[0].TableCat)
	assert.Nil(t, rows[0].TableSchem)
	assert.Equal(t, int64(SQLTypeInteger), rows[0].DataType)
	assert.Equal(t, "INT", rows[0].TypeName)
	assert.Equal(t, "YES", rows[0].IsAutoIncrement)
	assert.Equal(t, int64(1), rows[0].OrdinalPosition)
	assert.Equal(t, int64(ColumnNoNulls), rows[0].Nullable)

	assert.Equal(t, "title", rows[1].ColumnName)
	assert.Equal(t, "VARCHAR", rows[1].TypeName)
	assert.Equal(t, int64(32), *rows[1].ColumnSize)
	assert.Equal(t, int64(32), *rows[1].CharOctetLength)
	assert.Equal(t, "YES", rows[1].IsNullable)
}

func TestColumns_ShowStrategy_OrdinalsCountFilteredColumns(t *testing.T) {
	db := &fakeDB{responses: []fakeResponse{
		{prefix: "SHOW DATABASES", columns: []string{"Database"}, rows: [][]any{{"alpha"}}},
		{prefix: "SHOW FULL TABLES FROM `alpha`", columns: []string{"Tables_in_alpha", "Table_type"}, rows: [][]any{{"t1", "BASE TABLE"}}},
		{prefix: "SHOW FULL COLUMNS FROM `t1` FROM `alpha`", columns: showColumnsHeader(), rows: [][]any{
			{"id", "int", nil, "NO", "PRI", nil, "", "", ""},
			{"name", "varchar(10)", nil, "YES", "", nil, "", "", ""},
			{"age", "int", nil, "YES", "", nil, "", "", ""},
		}},
	}}
	m := New(db, testFlags(), WithStrategy(StrategyShowCommands))

	col := "age"
	rows, err := m.Columns(context.Background(), nil, nil, nil, &col)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	// Third column of the table, even though the filter kept only one.
	assert.Equal(t, int64(3), rows[0].OrdinalPosition)
}

func TestColumns_InfoSchema_TinyIntCoercion(t *testing.T) {
	db := &fakeDB{responses: []fakeResponse{
		{prefix: "SELECT TABLE_SCHEMA, TABLE_NAME, COLUMN_NAME, COLUMN_TYPE", rows: [][]any{
			{"app", "t1", "active", "tinyint(1)", nil, "NO", nil, nil, 3, 0, nil, nil, 1, ""},
			{"app", "t1", "flags", "tinyint(1) unsigned", nil, "NO", nil, nil, 3, 0, nil, nil, 2, ""},
		}},
	}}
	m := New(db, testFlags())

	rows, err := m.Columns(context.Background(), nil, nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Plain TINYINT(1) remaps; the schema's tinyint precision does not
	// override the BIT size.
	assert.Equal(t, "BIT", rows[0].TypeName)
	assert.Equal(t, int64(SQLTypeBit), rows[0].DataType)
	assert.Equal(t, int64(1), *rows[0].ColumnSize)

	// An UNSIGNED (or ZEROFILL) modifier keeps the integer identity.
	assert.Equal(t, "TINYINT UNSIGNED", rows[1].TypeName)
	assert.Equal(t, int64(SQLTypeTinyInt), rows[1].DataType)
	assert.Equal(t, int64(3), *rows[1].ColumnSize)
}

func TestPrimaryKeys_NilTable(t *testing.T) {
	m := New(&fakeDB{}, testFlags())

	_, err := m.PrimaryKeys(context.Background(), nil, nil, nil)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestPrimaryKeys_ShowStrategy_SortedByColumnName(t *testing.T) {
	keysHeader := []string{"Table", "Non_unique", "Key_name", "Seq_in_index", "Column_name", "Collation", "Cardinality", "Index_type"}
	db := &fakeDB{responses: []fakeResponse{
		{prefix: "SHOW KEYS FROM `orders` FROM `shop`", columns: keysHeader, rows: [][]any{
			{"orders", 0, "PRIMARY", 1, "zone", "A", 10, "BTREE"},
			{"orders", 0, "PRIMARY", 2, "id", "A", 10, "BTREE"},
			{"orders", 1, "idx_name", 1, "name", "A", 5, "BTREE"},
		}},
	}}
	m := New(db, testFlags(), WithStrategy(StrategyShowCommands))

	cat := "shop"
	table := "orders"
	rows, err := m.PrimaryKeys(context.Background(), &cat, nil, &table)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "id", rows[0].ColumnName)
	assert.Equal(t, int64(2), rows[0].KeySeq)
	assert.Equal(t, "zone", rows[1].ColumnName)
	assert.Equal(t, "PRIMARY", rows[1].PKName)
}

func TestImportedKeys_ShowStrategy(t *testing.T) {
	createTable := "CREATE TABLE `child` (\n" +
		"  `id` int NOT NULL,\n" +
		"  `parent_a` int DEFAULT NULL,\n" +
		"  `parent_b` int DEFAULT NULL,\n" +
		"  PRIMARY KEY (`id`),\n" +
		"  CONSTRAINT `fk_parent` FOREIGN KEY (`parent_a`, `parent_b`) REFERENCES `parent` (`a`, `b`) ON DELETE CASCADE ON UPDATE SET NULL\n" +
		") ENGINE=InnoDB"

	db := &fakeDB{responses: []fakeResponse{
		{prefix: "SHOW CREATE TABLE `shop`.`child`", columns: []string{"Table", "Create Table"}, rows: [][]any{
			{"child", createTable},
		}},
	}}
	m := New(db, testFlags(), WithStrategy(StrategyShowCommands))

	cat := "shop"
	table := "child"
	rows, err := m.ImportedKeys(context.Background(), &cat, nil, &table)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "parent", rows[0].PKTableName)
	assert.Equal(t, "shop", *rows[0].PKTableCat)
	assert.Equal(t, "a", rows[0].PKColumnName)
	assert.Equal(t, "parent_a", rows[0].FKColumnName)
	assert.Equal(t, "child", rows[0].FKTableName)
	assert.Equal(t, int64(1), rows[0].KeySeq)
	assert.Equal(t, int64(ImportedKeyCascade), rows[0].DeleteRule)
	assert.Equal(t, int64(ImportedKeySetNull), rows[0].UpdateRule)
	assert.Equal(t, "fk_parent", *rows[0].FKName)

	assert.Equal(t, "b", rows[1].PKColumnName)
	assert.Equal(t, int64(2), rows[1].KeySeq)
}

func TestImportedKeys_ShowStrategy_MissingTable(t *testing.T) {
	db := &fakeDB{responses: []fakeResponse{
		{prefix: "SHOW CREATE TABLE `shop`.`gone`", err: errs.New(errs.ErrKindNotFound, "no such table")},
	}}
	m := New(db, testFlags(), WithStrategy(StrategyShowCommands))

	cat := "shop"
	table := "gone"
	rows, err := m.ImportedKeys(context.Background(), &cat, nil, &table)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestTables_TypeFilterAndSystemMapping(t *testing.T) {
	db := &fakeDB{responses: []fakeResponse{
		{
			prefix:  "SELECT TABLE_SCHEMA, TABLE_NAME, TABLE_TYPE, TABLE_COMMENT",
			columns: []string{"TABLE_SCHEMA", "TABLE_NAME", "TABLE_TYPE", "TABLE_COMMENT"},
			rows: [][]any{
				{"mysql", "user", "BASE TABLE", nil},
				{"shop", "orders", "BASE TABLE", "order data"},
				{"shop", "v_orders", "VIEW", nil},
			},
		},
	}}
	m := New(db, testFlags())

	rows, err := m.Tables(context.Background(), nil, nil, nil, []string{"TABLE", "VIEW"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// The mysql.user base table presents as SYSTEM TABLE and is filtered out.
	assert.Equal(t, "orders", rows[0].TableName)
	assert.Equal(t, TableTypeTable, rows[0].TableType)
	assert.Equal(t, "v_orders", rows[1].TableName)
	assert.Equal(t, TableTypeView, rows[1].TableType)
}

func TestSQLKeywords_ComputedOncePerVersion(t *testing.T) {
	computed := 0
	cache := NewKeywordCache()
	v := Version{8, 0, 36}

	first := cache.GetOrCompute(v, func() string { computed++; return "A,B" })
	second := cache.GetOrCompute(v, func() string { computed++; return "C,D" })

	assert.Equal(t, "A,B", first)
	assert.Equal(t, "A,B", second)
	assert.Equal(t, 1, computed)
}

func TestSQLKeywords_Content(t *testing.T) {
	m := New(&fakeDB{}, testFlags())
	kw := "," + m.SQLKeywords() + ","

	// MySQL-only reserved words are present.
	assert.Contains(t, kw, ",DATABASES,")
	assert.Contains(t, kw, ",ZEROFILL,")
	// Words SQL:2003 also reserves are excluded.
	assert.NotContains(t, kw, ",SELECT,")
	assert.NotContains(t, kw, ",CREATE,")
}

func TestCrossReference_RequiresBothTables(t *testing.T) {
	m := New(&fakeDB{}, testFlags())

	parent := "parent"
	_, err := m.CrossReference(context.Background(), nil, nil, &parent, nil, nil, nil)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))

	_, err = m.CrossReference(context.Background(), nil, nil, nil, nil, nil, &parent)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestBestRowIdentifier_PrimaryKeyColumnsOnly(t *testing.T) {
	colsHeader := []string{"Field", "Type", "Null", "Key", "Default", "Extra"}
	db := &fakeDB{responses: []fakeResponse{
		{prefix: "SHOW COLUMNS FROM `orders` FROM `shop`", columns: colsHeader, rows: [][]any{
			{"id", "bigint unsigned", "NO", "PRI", nil, "auto_increment"},
			{"note", "text", "YES", "", nil, ""},
		}},
	}}
	m := New(db, testFlags())

	cat := "shop"
	table := "orders"
	rows, err := m.BestRowIdentifier(context.Background(), &cat, nil, &table)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "id", rows[0].ColumnName)
	assert.Equal(t, "BIGINT UNSIGNED", rows[0].TypeName)
	assert.Equal(t, int64(SQLTypeBigInt), rows[0].DataType)
	assert.Equal(t, int64(BestRowSession), rows[0].Scope)
	assert.Equal(t, int64(BestRowNotPseudo), rows[0].PseudoColumn)
}

func TestDetectFlags(t *testing.T) {
	db := &fakeDB{responses: []fakeResponse{
		{prefix: "SELECT VERSION()", columns: []string{"VERSION()"}, rows: [][]any{{"8.0.36-debug"}}},
		{prefix: "SELECT DATABASE()", columns: []string{"DATABASE()"}, rows: [][]any{{"shop"}}},
		{prefix: "SHOW VARIABLES LIKE 'lower_case_table_names'", columns: []string{"Variable_name", "Value"}, rows: [][]any{
			{"lower_case_table_names", "1"},
		}},
	}}

	flags, err := DetectFlags(context.Background(), db, Flags{Term: TermCatalog})
	require.NoError(t, err)
	assert.Equal(t, Version{8, 0, 36}, flags.Server)
	assert.Equal(t, "shop", flags.Database)
	assert.True(t, flags.LowerCaseIdentifiers)
}
