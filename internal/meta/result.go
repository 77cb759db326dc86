package meta

// Result-kind constants for the non-column positions of the fixed row
// contracts. Values follow the JDBC DatabaseMetaData convention.
const (
	ProcedureResultUnknown = 0
	ProcedureNoResult      = 1
	ProcedureReturnsResult = 2

	FunctionNoTable = 1

	TypeNoNulls    = 0
	TypeNullable   = 1
	TypeSearchable = 3

	TableIndexStatistic = 0
	TableIndexClustered = 1
	TableIndexHashed    = 2
	TableIndexOther     = 3

	BestRowTemporary = 0
	BestRowSession   = 2
	BestRowNotPseudo = 1
)

// Column name lists for each result kind. Ordering and arity are part of
// the contract: Values() on the matching row type always yields exactly
// len(...Columns) entries in this order, for every server version and
// strategy.
var (
	ColumnsColumns = []string{
		"TABLE_CAT", "TABLE_SCHEM", "TABLE_NAME", "COLUMN_NAME",
		"DATA_TYPE", "TYPE_NAME", "COLUMN_SIZE", "BUFFER_LENGTH",
		"DECIMAL_DIGITS", "NUM_PREC_RADIX", "NULLABLE", "REMARKS",
		"COLUMN_DEF", "SQL_DATA_TYPE", "SQL_DATETIME_SUB",
		"CHAR_OCTET_LENGTH", "ORDINAL_POSITION", "IS_NULLABLE",
		"SCOPE_CATALOG", "SCOPE_SCHEMA", "SCOPE_TABLE",
		"SOURCE_DATA_TYPE", "IS_AUTOINCREMENT", "IS_GENERATEDCOLUMN",
	}

	TablesColumns = []string{
		"TABLE_CAT", "TABLE_SCHEM", "TABLE_NAME", "TABLE_TYPE",
		"REMARKS", "TYPE_CAT", "TYPE_SCHEM", "TYPE_NAME",
		"SELF_REFERENCING_COL_NAME", "REF_GENERATION",
	}

	PrimaryKeysColumns = []string{
		"TABLE_CAT", "TABLE_SCHEM", "TABLE_NAME", "COLUMN_NAME",
		"KEY_SEQ", "PK_NAME",
	}

	KeysColumns = []string{
		"PKTABLE_CAT", "PKTABLE_SCHEM", "PKTABLE_NAME", "PKCOLUMN_NAME",
		"FKTABLE_CAT", "FKTABLE_SCHEM", "FKTABLE_NAME", "FKCOLUMN_NAME",
		"KEY_SEQ", "UPDATE_RULE", "DELETE_RULE", "FK_NAME", "PK_NAME",
		"DEFERRABILITY",
	}

	IndexInfoColumns = []string{
		"TABLE_CAT", "TABLE_SCHEM", "TABLE_NAME", "NON_UNIQUE",
		"INDEX_QUALIFIER", "INDEX_NAME", "TYPE", "ORDINAL_POSITION",
		"COLUMN_NAME", "ASC_OR_DESC", "CARDINALITY", "PAGES",
		"FILTER_CONDITION",
	}

	BestRowColumns = []string{
		"SCOPE", "COLUMN_NAME", "DATA_TYPE", "TYPE_NAME", "COLUMN_SIZE",
		"BUFFER_LENGTH", "DECIMAL_DIGITS", "PSEUDO_COLUMN",
	}

	ProceduresColumns = []string{
		"PROCEDURE_CAT", "PROCEDURE_SCHEM", "PROCEDURE_NAME",
		"RESERVED_1", "RESERVED_2", "RESERVED_3", "REMARKS",
		"PROCEDURE_TYPE", "SPECIFIC_NAME",
	}

	FunctionsColumns = []string{
		"FUNCTION_CAT", "FUNCTION_SCHEM", "FUNCTION_NAME", "REMARKS",
		"FUNCTION_TYPE", "SPECIFIC_NAME",
	}

	TypeInfoColumns = []string{
		"TYPE_NAME", "DATA_TYPE", "PRECISION", "LITERAL_PREFIX",
		"LITERAL_SUFFIX", "CREATE_PARAMS", "NULLABLE", "CASE_SENSITIVE",
		"SEARCHABLE", "UNSIGNED_ATTRIBUTE", "FIXED_PREC_SCALE",
		"AUTO_INCREMENT", "LOCAL_TYPE_NAME", "MINIMUM_SCALE",
		"MAXIMUM_SCALE", "SQL_DATA_TYPE", "SQL_DATETIME_SUB",
		"NUM_PREC_RADIX",
	}
)

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func ptr[T any](v T) *T { return &v }

// ColumnRow describes one table column.
type ColumnRow struct {
	TableCat          *string
	TableSchem        *string
	TableName         string
	ColumnName        string
	DataType          int64
	TypeName          string
	ColumnSize        *int64
	BufferLength      int64
	DecimalDigits     *int64
	NumPrecRadix      int64
	Nullable          int64
	Remarks           *string
	ColumnDef         *string
	SQLDataType       int64
	SQLDatetimeSub    int64
	CharOctetLength   *int64
	OrdinalPosition   int64
	IsNullable        string
	SourceDataType    *int64
	IsAutoIncrement   string
	IsGeneratedColumn string
}

// Values yields the row in the ColumnsColumns contract order.
func (r ColumnRow) Values() []any {
	return []any{
		nullable(r.TableCat), nullable(r.TableSchem), r.TableName,
		r.ColumnName, r.DataType, r.TypeName, nullable(r.ColumnSize),
		r.BufferLength, nullable(r.DecimalDigits), r.NumPrecRadix,
		r.Nullable, nullable(r.Remarks), nullable(r.ColumnDef),
		r.SQLDataType, r.SQLDatetimeSub, nullable(r.CharOctetLength),
		r.OrdinalPosition, r.IsNullable, nil, nil, nil,
		nullable(r.SourceDataType), r.IsAutoIncrement, r.IsGeneratedColumn,
	}
}

// TableRow describes one table or view.
type TableRow struct {
	TableCat   *string
	TableSchem *string
	TableName  string
	TableType  string
	Remarks    *string
}

func (r TableRow) Values() []any {
	return []any{
		nullable(r.TableCat), nullable(r.TableSchem), r.TableName,
		r.TableType, nullable(r.Remarks), nil, nil, nil, nil, nil,
	}
}

// PrimaryKeyRow describes one column of a table's primary key.
type PrimaryKeyRow struct {
	TableCat   *string
	TableSchem *string
	TableName  string
	ColumnName string
	KeySeq     int64
	PKName     string
}

func (r PrimaryKeyRow) Values() []any {
	return []any{
		nullable(r.TableCat), nullable(r.TableSchem), r.TableName,
		r.ColumnName, r.KeySeq, r.PKName,
	}
}

// KeyRow describes one column pair of a foreign-key relationship. The
// same shape serves imported keys, exported keys, and cross references.
type KeyRow struct {
	PKTableCat    *string
	PKTableSchem  *string
	PKTableName   string
	PKColumnName  string
	FKTableCat    *string
	FKTableSchem  *string
	FKTableName   string
	FKColumnName  string
	KeySeq        int64
	UpdateRule    int64
	DeleteRule    int64
	FKName        *string
	PKName        *string
	Deferrability int64
}

func (r KeyRow) Values() []any {
	return []any{
		nullable(r.PKTableCat), nullable(r.PKTableSchem), r.PKTableName,
		r.PKColumnName, nullable(r.FKTableCat), nullable(r.FKTableSchem),
		r.FKTableName, r.FKColumnName, r.KeySeq, r.UpdateRule,
		r.DeleteRule, nullable(r.FKName), nullable(r.PKName),
		r.Deferrability,
	}
}

// IndexRow describes one column of one index.
type IndexRow struct {
	TableCat        *string
	TableSchem      *string
	TableName       string
	NonUnique       bool
	IndexQualifier  *string
	IndexName       string
	Type            int64
	OrdinalPosition int64
	ColumnName      string
	AscOrDesc       *string
	Cardinality     int64
	Pages           int64
	FilterCondition *string
}

func (r IndexRow) Values() []any {
	return []any{
		nullable(r.TableCat), nullable(r.TableSchem), r.TableName,
		r.NonUnique, nullable(r.IndexQualifier), r.IndexName, r.Type,
		r.OrdinalPosition, r.ColumnName, nullable(r.AscOrDesc),
		r.Cardinality, r.Pages, nullable(r.FilterCondition),
	}
}

// BestRowRow describes one column of the optimal row identifier.
type BestRowRow struct {
	Scope         int64
	ColumnName    string
	DataType      int64
	TypeName      string
	ColumnSize    *int64
	BufferLength  int64
	DecimalDigits *int64
	PseudoColumn  int64
}

func (r BestRowRow) Values() []any {
	return []any{
		r.Scope, r.ColumnName, r.DataType, r.TypeName,
		nullable(r.ColumnSize), r.BufferLength,
		nullable(r.DecimalDigits), r.PseudoColumn,
	}
}

// ProcedureRow describes one stored procedure.
type ProcedureRow struct {
	ProcedureCat   *string
	ProcedureSchem *string
	ProcedureName  string
	Remarks        *string
	ProcedureType  int64
	SpecificName   string
}

func (r ProcedureRow) Values() []any {
	return []any{
		nullable(r.ProcedureCat), nullable(r.ProcedureSchem),
		r.ProcedureName, nil, nil, nil, nullable(r.Remarks),
		r.ProcedureType, r.SpecificName,
	}
}

// FunctionRow describes one stored function.
type FunctionRow struct {
	FunctionCat   *string
	FunctionSchem *string
	FunctionName  string
	Remarks       *string
	FunctionType  int64
	SpecificName  string
}

func (r FunctionRow) Values() []any {
	return []any{
		nullable(r.FunctionCat), nullable(r.FunctionSchem),
		r.FunctionName, nullable(r.Remarks), r.FunctionType,
		r.SpecificName,
	}
}

// TypeInfoRow describes one supported column type.
type TypeInfoRow struct {
	TypeName          string
	DataType          int64
	Precision         int64
	LiteralPrefix     *string
	LiteralSuffix     *string
	CreateParams      *string
	Nullable          int64
	CaseSensitive     bool
	Searchable        int64
	UnsignedAttribute bool
	FixedPrecScale    bool
	AutoIncrement     bool
	LocalTypeName     string
	MinimumScale      int64
	MaximumScale      int64
}

func (r TypeInfoRow) Values() []any {
	return []any{
		r.TypeName, r.DataType, r.Precision, nullable(r.LiteralPrefix),
		nullable(r.LiteralSuffix), nullable(r.CreateParams), r.Nullable,
		r.CaseSensitive, r.Searchable, r.UnsignedAttribute,
		r.FixedPrecScale, r.AutoIncrement, r.LocalTypeName,
		r.MinimumScale, r.MaximumScale, int64(0), int64(0), int64(10),
	}
}
