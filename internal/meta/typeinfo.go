package meta

import "context"

// typeInfoOrder lists the reported types by data-type code and then by
// how closely each maps to the portable type. Aliases appear under their
// alias names. YEAR is inserted at query time: its position depends on
// whether it presents as a date or a small integer.
var typeInfoOrder = []string{
	"BIT",
	"TINYINT", "TINYINT UNSIGNED",
	"BIGINT", "BIGINT UNSIGNED",
	"LONG VARBINARY", "MEDIUMBLOB", "LONGBLOB", "BLOB", "VECTOR",
	"VARBINARY", "TINYBLOB",
	"BINARY",
	"LONG VARCHAR", "MEDIUMTEXT", "LONGTEXT", "TEXT",
	"CHAR", "ENUM", "SET",
	"DECIMAL", "NUMERIC",
	"INTEGER", "INT", "MEDIUMINT", "INTEGER UNSIGNED", "INT UNSIGNED", "MEDIUMINT UNSIGNED",
	"SMALLINT", "SMALLINT UNSIGNED",
	"FLOAT",
	"DOUBLE", "DOUBLE PRECISION", "REAL", "DOUBLE UNSIGNED",
	"VARCHAR", "TINYTEXT",
	"BOOL",
	"DATE",
	"TIME",
	"DATETIME", "TIMESTAMP",
}

// TypeInfo reports the column types the server supports, one row per
// type name including aliases. The result is static per session; the
// context is accepted for interface symmetry with the other operations.
func (m *Metadata) TypeInfo(_ context.Context) ([]TypeInfoRow, error) {
	names := make([]string, 0, len(typeInfoOrder)+1)
	for _, name := range typeInfoOrder {
		names = append(names, name)
		if !m.flags.YearIsDateType && name == "SMALLINT UNSIGNED" {
			names = append(names, "YEAR")
		}
		if m.flags.YearIsDateType && name == "DATE" {
			names = append(names, "YEAR")
		}
	}

	rows := make([]TypeInfoRow, 0, len(names))
	for _, name := range names {
		rows = append(rows, m.typeInfoRow(name))
	}
	return rows, nil
}

// typeInfoRow builds the row for one type name. The name is kept as
// given so aliases list under their own names while carrying the
// aliased type's attributes.
func (m *Metadata) typeInfoRow(name string) TypeInfoRow {
	id := typeByName(name)

	row := TypeInfoRow{
		TypeName:          name,
		DataType:          int64(id.Code(m.flags)),
		Precision:         id.Precision(),
		CreateParams:      ptr(id.CreateParams()),
		Nullable:          TypeNullable,
		CaseSensitive:     true,
		Searchable:        TypeSearchable,
		UnsignedAttribute: id.Unsignable(),
		AutoIncrement:     m.autoIncrementable(id),
		LocalTypeName:     id.Name(),
	}

	prefix := ""
	if quotedLiteral(id) {
		prefix = "'"
	}
	row.LiteralPrefix = &prefix
	suffix := prefix
	row.LiteralSuffix = &suffix

	switch id {
	case TypeDecimal, TypeDecimalUnsigned, TypeDouble, TypeDoubleUnsigned:
		row.MinimumScale = -308
		row.MaximumScale = 308
	case TypeFloat, TypeFloatUnsigned:
		row.MinimumScale = -38
		row.MaximumScale = 38
	}
	return row
}

// autoIncrementable reports whether a column of the type can carry
// AUTO_INCREMENT. Floating-point auto-increment was removed in 8.4.
func (m *Metadata) autoIncrementable(id TypeID) bool {
	switch id {
	case TypeTinyInt, TypeTinyIntUnsigned, TypeSmallInt, TypeSmallIntUnsigned,
		TypeMediumInt, TypeMediumIntUnsigned, TypeInt, TypeIntUnsigned,
		TypeBigInt, TypeBigIntUnsigned, TypeBoolean:
		return true
	case TypeFloat, TypeFloatUnsigned, TypeDouble, TypeDoubleUnsigned:
		return !m.flags.Server.Meets(8, 4, 0)
	}
	return false
}

// quotedLiteral reports the types whose literals are written quoted.
func quotedLiteral(id TypeID) bool {
	switch id {
	case TypeTinyBlob, TypeBlob, TypeMediumBlob, TypeLongBlob,
		TypeTinyText, TypeText, TypeMediumText, TypeLongText, TypeJSON,
		TypeBinary, TypeVarBinary, TypeChar, TypeVarChar, TypeEnum,
		TypeSet, TypeDate, TypeTime, TypeDatetime, TypeTimestamp,
		TypeGeometry, TypeVector, TypeUnknown:
		return true
	}
	return false
}
