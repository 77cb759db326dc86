package meta

import "strings"

// Portable SQL type codes reported in DATA_TYPE / SQL_DATA_TYPE columns.
// Values follow the java.sql.Types convention so results line up with
// what JDBC-side tooling expects.
const (
	SQLTypeBit           = -7
	SQLTypeTinyInt       = -6
	SQLTypeBigInt        = -5
	SQLTypeLongVarBinary = -4
	SQLTypeVarBinary     = -3
	SQLTypeBinary        = -2
	SQLTypeLongVarChar   = -1
	SQLTypeChar          = 1
	SQLTypeDecimal       = 3
	SQLTypeInteger       = 4
	SQLTypeSmallInt      = 5
	SQLTypeFloat         = 6
	SQLTypeReal          = 7
	SQLTypeDouble        = 8
	SQLTypeVarChar       = 12
	SQLTypeBoolean       = 16
	SQLTypeDate          = 91
	SQLTypeTime          = 92
	SQLTypeTimestamp     = 93
	SQLTypeOther         = 1111
)

// TypeID identifies a MySQL column type. Unsigned integer variants are
// distinct entries because their reported precision differs.
type TypeID int

const (
	TypeUnknown TypeID = iota
	TypeBit
	TypeTinyInt
	TypeTinyIntUnsigned
	TypeBoolean
	TypeSmallInt
	TypeSmallIntUnsigned
	TypeMediumInt
	TypeMediumIntUnsigned
	TypeInt
	TypeIntUnsigned
	TypeBigInt
	TypeBigIntUnsigned
	TypeFloat
	TypeFloatUnsigned
	TypeDouble
	TypeDoubleUnsigned
	TypeDecimal
	TypeDecimalUnsigned
	TypeChar
	TypeVarChar
	TypeTinyText
	TypeText
	TypeMediumText
	TypeLongText
	TypeJSON
	TypeBinary
	TypeVarBinary
	TypeTinyBlob
	TypeBlob
	TypeMediumBlob
	TypeLongBlob
	TypeEnum
	TypeSet
	TypeDate
	TypeTime
	TypeDatetime
	TypeTimestamp
	TypeYear
	TypeGeometry
	TypeVector
	TypeNull
)

type typeEntry struct {
	name         string
	code         int32
	precision    int64
	createParams string
	caseSens     bool // case-sensitive for comparison purposes
	unsignable   bool // accepts the UNSIGNED attribute
}

var typeTable = map[TypeID]typeEntry{
	TypeBit:               {"BIT", SQLTypeBit, 1, "[(M)]", false, false},
	TypeTinyInt:           {"TINYINT", SQLTypeTinyInt, 3, "[(M)] [UNSIGNED] [ZEROFILL]", false, true},
	TypeTinyIntUnsigned:   {"TINYINT UNSIGNED", SQLTypeTinyInt, 3, "[(M)] [UNSIGNED] [ZEROFILL]", false, true},
	TypeBoolean:           {"BOOLEAN", SQLTypeBoolean, 3, "", false, false},
	TypeSmallInt:          {"SMALLINT", SQLTypeSmallInt, 5, "[(M)] [UNSIGNED] [ZEROFILL]", false, true},
	TypeSmallIntUnsigned:  {"SMALLINT UNSIGNED", SQLTypeSmallInt, 5, "[(M)] [UNSIGNED] [ZEROFILL]", false, true},
	TypeMediumInt:         {"MEDIUMINT", SQLTypeInteger, 7, "[(M)] [UNSIGNED] [ZEROFILL]", false, true},
	TypeMediumIntUnsigned: {"MEDIUMINT UNSIGNED", SQLTypeInteger, 8, "[(M)] [UNSIGNED] [ZEROFILL]", false, true},
	TypeInt:               {"INT", SQLTypeInteger, 10, "[(M)] [UNSIGNED] [ZEROFILL]", false, true},
	TypeIntUnsigned:       {"INT UNSIGNED", SQLTypeInteger, 10, "[(M)] [UNSIGNED] [ZEROFILL]", false, true},
	TypeBigInt:            {"BIGINT", SQLTypeBigInt, 19, "[(M)] [UNSIGNED] [ZEROFILL]", false, true},
	TypeBigIntUnsigned:    {"BIGINT UNSIGNED", SQLTypeBigInt, 20, "[(M)] [UNSIGNED] [ZEROFILL]", false, true},
	TypeFloat:             {"FLOAT", SQLTypeReal, 12, "[(M,D)] [UNSIGNED] [ZEROFILL]", false, true},
	TypeFloatUnsigned:     {"FLOAT UNSIGNED", SQLTypeReal, 12, "[(M,D)] [UNSIGNED] [ZEROFILL]", false, true},
	TypeDouble:            {"DOUBLE", SQLTypeDouble, 22, "[(M,D)] [UNSIGNED] [ZEROFILL]", false, true},
	TypeDoubleUnsigned:    {"DOUBLE UNSIGNED", SQLTypeDouble, 22, "[(M,D)] [UNSIGNED] [ZEROFILL]", false, true},
	TypeDecimal:           {"DECIMAL", SQLTypeDecimal, 65, "[(M[,D])] [UNSIGNED] [ZEROFILL]", false, true},
	TypeDecimalUnsigned:   {"DECIMAL UNSIGNED", SQLTypeDecimal, 65, "[(M[,D])] [UNSIGNED] [ZEROFILL]", false, true},
	TypeChar:              {"CHAR", SQLTypeChar, 255, "(M)", true, false},
	TypeVarChar:           {"VARCHAR", SQLTypeVarChar, 65535, "(M)", true, false},
	TypeTinyText:          {"TINYTEXT", SQLTypeVarChar, 255, "", true, false},
	TypeText:              {"TEXT", SQLTypeLongVarChar, 65535, "[(M)]", true, false},
	TypeMediumText:        {"MEDIUMTEXT", SQLTypeLongVarChar, 16777215, "", true, false},
	TypeLongText:          {"LONGTEXT", SQLTypeLongVarChar, 4294967295, "", true, false},
	TypeJSON:              {"JSON", SQLTypeLongVarChar, 1073741824, "", true, false},
	TypeBinary:            {"BINARY", SQLTypeBinary, 255, "(M)", true, false},
	TypeVarBinary:         {"VARBINARY", SQLTypeVarBinary, 65535, "(M)", true, false},
	TypeTinyBlob:          {"TINYBLOB", SQLTypeVarBinary, 255, "", true, false},
	TypeBlob:              {"BLOB", SQLTypeLongVarBinary, 65535, "[(M)]", true, false},
	TypeMediumBlob:        {"MEDIUMBLOB", SQLTypeLongVarBinary, 16777215, "", true, false},
	TypeLongBlob:          {"LONGBLOB", SQLTypeLongVarBinary, 4294967295, "", true, false},
	TypeEnum:              {"ENUM", SQLTypeChar, 65535, "('value1','value2',...)", true, false},
	TypeSet:               {"SET", SQLTypeChar, 64, "('value1','value2',...)", true, false},
	TypeDate:              {"DATE", SQLTypeDate, 10, "", false, false},
	TypeTime:              {"TIME", SQLTypeTime, 16, "[(fsp)]", false, false},
	TypeDatetime:          {"DATETIME", SQLTypeTimestamp, 26, "[(fsp)]", false, false},
	TypeTimestamp:         {"TIMESTAMP", SQLTypeTimestamp, 26, "[(fsp)]", false, false},
	TypeYear:              {"YEAR", SQLTypeDate, 4, "[(4)]", false, false},
	TypeGeometry:          {"GEOMETRY", SQLTypeBinary, 65535, "", true, false},
	TypeVector:            {"VECTOR", SQLTypeLongVarBinary, 65532, "[(M)]", true, false},
	TypeNull:              {"NULL", SQLTypeOther, 0, "", false, false},
	TypeUnknown:           {"UNKNOWN", SQLTypeOther, 65535, "", false, false},
}

// Name names the type in MySQL terms, e.g. "MEDIUMINT UNSIGNED".
func (t TypeID) Name() string { return typeTable[t].name }

// Precision is the type's maximum precision or length.
func (t TypeID) Precision() int64 { return typeTable[t].precision }

// CreateParams names the parameters accepted in a column definition.
func (t TypeID) CreateParams() string { return typeTable[t].createParams }

// CaseSensitive reports whether values of the type compare case-sensitively.
func (t TypeID) CaseSensitive() bool { return typeTable[t].caseSens }

// Unsignable reports whether the type accepts the UNSIGNED attribute.
func (t TypeID) Unsignable() bool { return typeTable[t].unsignable }

// Code is the portable SQL type code, honoring the YEAR-as-date flag.
func (t TypeID) Code(f Flags) int32 {
	if t == TypeYear && !f.YearIsDateType {
		return SQLTypeSmallInt
	}
	return typeTable[t].code
}

var typeAliases = map[string]TypeID{
	"BOOL":               TypeBoolean,
	"INTEGER":            TypeInt,
	"INTEGER UNSIGNED":   TypeIntUnsigned,
	"INT1":               TypeTinyInt,
	"INT2":               TypeSmallInt,
	"INT3":               TypeMediumInt,
	"INT4":               TypeInt,
	"INT8":               TypeBigInt,
	"MIDDLEINT":          TypeMediumInt,
	"REAL":               TypeDouble,
	"DOUBLE PRECISION":   TypeDouble,
	"DEC":                TypeDecimal,
	"NUMERIC":            TypeDecimal,
	"FIXED":              TypeDecimal,
	"CHARACTER":          TypeChar,
	"NCHAR":              TypeChar,
	"CHARACTER VARYING":  TypeVarChar,
	"NVARCHAR":           TypeVarChar,
	"LONG":               TypeMediumText,
	"LONG VARCHAR":       TypeMediumText,
	"LONG VARBINARY":     TypeMediumBlob,
	"CHAR BYTE":          TypeBinary,
	"POINT":              TypeGeometry,
	"LINESTRING":         TypeGeometry,
	"POLYGON":            TypeGeometry,
	"MULTIPOINT":         TypeGeometry,
	"MULTILINESTRING":    TypeGeometry,
	"MULTIPOLYGON":       TypeGeometry,
	"GEOMETRYCOLLECTION": TypeGeometry,
	"GEOMCOLLECTION":     TypeGeometry,
}

var typeByNameTable = func() map[string]TypeID {
	m := make(map[string]TypeID, len(typeTable)+len(typeAliases))
	for id, e := range typeTable {
		m[e.name] = id
	}
	for name, id := range typeAliases {
		m[name] = id
	}
	return m
}()

// unsignedVariant maps a signed integer/float/decimal type to its
// unsigned counterpart; other types map to themselves.
var unsignedVariant = map[TypeID]TypeID{
	TypeTinyInt:   TypeTinyIntUnsigned,
	TypeSmallInt:  TypeSmallIntUnsigned,
	TypeMediumInt: TypeMediumIntUnsigned,
	TypeInt:       TypeIntUnsigned,
	TypeBigInt:    TypeBigIntUnsigned,
	TypeFloat:     TypeFloatUnsigned,
	TypeDouble:    TypeDoubleUnsigned,
	TypeDecimal:   TypeDecimalUnsigned,
}

// typeByName resolves a raw column type as reported by the server
// ("mediumint(8) unsigned zerofill") to its TypeID. Unknown names
// resolve to TypeUnknown.
func typeByName(raw string) TypeID {
	name := strings.ToUpper(strings.TrimSpace(raw))

	unsigned := false
	for {
		switch {
		case strings.HasSuffix(name, " ZEROFILL"):
			// ZEROFILL implies UNSIGNED.
			name = strings.TrimSuffix(name, " ZEROFILL")
			unsigned = true
		case strings.HasSuffix(name, " UNSIGNED"):
			name = strings.TrimSuffix(name, " UNSIGNED")
			unsigned = true
		case strings.HasSuffix(name, " SIGNED"):
			name = strings.TrimSuffix(name, " SIGNED")
		default:
			goto trimmed
		}
	}
trimmed:
	if i := strings.IndexByte(name, '('); i >= 0 {
		// Drop the length/member clause but keep a possible attribute
		// after the closing paren ("DECIMAL(10,2) UNSIGNED" arrives with
		// the attribute already trimmed above only when unparenthesized).
		j := strings.LastIndexByte(name, ')')
		if j > i {
			name = strings.TrimSpace(name[:i] + name[j+1:])
		} else {
			name = strings.TrimSpace(name[:i])
		}
		return typeByName(name + attrSuffix(unsigned))
	}
	name = strings.TrimSpace(name)

	id, ok := typeByNameTable[name]
	if !ok {
		return TypeUnknown
	}
	if unsigned {
		if u, ok := unsignedVariant[id]; ok {
			return u
		}
	}
	return id
}

func attrSuffix(unsigned bool) string {
	if unsigned {
		return " UNSIGNED"
	}
	return ""
}
