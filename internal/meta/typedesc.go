package meta

import (
	"strconv"
	"strings"

	"github.com/kdutta/mysqlmeta/internal/errs"
)

// Nullability codes reported in the NULLABLE column.
const (
	ColumnNoNulls         = 0
	ColumnNullable        = 1
	ColumnNullableUnknown = 2
)

// maxBufferSize is the fixed BUFFER_LENGTH reported for every column.
const maxBufferSize = 65535

// typeDescriptor is the parsed form of a raw column definition as the
// server reports it in SHOW FULL COLUMNS ("mediumint(8) unsigned",
// "enum('a','bb')", "datetime(3)"). It carries everything the column
// and best-row projections need.
type typeDescriptor struct {
	id                TypeID
	name              string
	columnSize        *int64
	decimalDigits     *int64
	datetimePrecision *int64
	charOctetLength   *int64
	bufferLength      int64
	numPrecRadix      int64
	nullability       int64
	isNullable        string
}

// parseTypeDescriptor parses a raw type definition plus the server's
// Null column value ("YES", "NO", or "" when unknown).
//
// TINYINT(1) is subject to the BIT/BOOLEAN coercion flags here, on the
// same terms the information-schema projection applies in SQL: the two
// paths must agree on the reported type for any given column.
func parseTypeDescriptor(typeInfo, nullabilityInfo string, f Flags) (*typeDescriptor, error) {
	if strings.TrimSpace(typeInfo) == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "column type definition is empty")
	}

	d := &typeDescriptor{
		bufferLength: maxBufferSize,
		numPrecRadix: 10,
	}

	switch nullabilityInfo {
	case "YES":
		d.nullability = ColumnNullable
		d.isNullable = "YES"
	case "UNKNOWN":
		d.nullability = ColumnNullableUnknown
		d.isNullable = ""
	default:
		d.nullability = ColumnNoNulls
		d.isNullable = "NO"
	}

	d.id = typeByName(typeInfo)

	args, err := parenArgs(typeInfo)
	if err != nil {
		return nil, err
	}

	switch d.id {
	case TypeEnum:
		var max int64
		for _, m := range args {
			if n := int64(len(strings.Trim(m, "'"))); n > max {
				max = n
			}
		}
		d.columnSize = &max

	case TypeSet:
		var size int64
		for _, m := range args {
			size += int64(len(strings.Trim(m, "'")))
		}
		if n := int64(len(args)); n > 1 {
			size += n - 1 // separators
		}
		d.columnSize = &size

	case TypeTinyInt, TypeTinyIntUnsigned:
		// The parenthesized number is a display width, not a precision;
		// the reported size stays the type default. Only a plain signed
		// TINYINT(1) is subject to the BIT/BOOLEAN remap: an UNSIGNED or
		// ZEROFILL attribute resolves to TypeTinyIntUnsigned and keeps
		// its integer identity.
		if d.id == TypeTinyInt && f.TinyInt1IsBit && len(args) == 1 && args[0] == "1" {
			if f.TransformedBitIsBoolean {
				d.id = TypeBoolean
			} else {
				d.id = TypeBit
			}
		}

	case TypeFloat, TypeFloatUnsigned:
		// FLOAT(p) with p > 23 is stored as double precision.
		size, scale, err := numericArgs(args, typeInfo)
		if err != nil {
			return nil, err
		}
		if size != nil && scale == nil && *size > 23 {
			if d.id == TypeFloatUnsigned {
				d.id = TypeDoubleUnsigned
			} else {
				d.id = TypeDouble
			}
		}
		d.columnSize = size
		d.decimalDigits = scale

	case TypeTime:
		fsp, err := fspArg(args, typeInfo)
		if err != nil {
			return nil, err
		}
		size := int64(8)
		if fsp > 0 {
			size += fsp + 1
		}
		d.columnSize = &size
		d.datetimePrecision = &fsp

	case TypeDatetime, TypeTimestamp:
		fsp, err := fspArg(args, typeInfo)
		if err != nil {
			return nil, err
		}
		size := int64(19)
		if fsp > 0 {
			size += fsp + 1
		}
		d.columnSize = &size
		d.datetimePrecision = &fsp

	default:
		size, scale, err := numericArgs(args, typeInfo)
		if err != nil {
			return nil, err
		}
		d.columnSize = size
		d.decimalDigits = scale
	}

	// Defaults when the definition carried no explicit length.
	if d.columnSize == nil {
		var size int64
		switch d.id {
		case TypeDecimal, TypeDecimalUnsigned:
			size = 65
		case TypeDouble, TypeDoubleUnsigned:
			size = 22
		case TypeFloat, TypeFloatUnsigned:
			size = 12
		case TypeChar:
			size = 1
		case TypeDate:
			size = 10
		case TypeYear:
			size = 4
		default:
			size = d.id.Precision()
		}
		d.columnSize = &size
	}

	if d.decimalDigits == nil && isIntegerType(d.id) {
		zero := int64(0)
		d.decimalDigits = &zero
	}

	if hasCharOctetLength(d.id) {
		d.charOctetLength = d.columnSize
	}

	d.name = d.id.Name()
	return d, nil
}

// parenArgs splits the parenthesized argument list of a type definition
// into its comma-separated members. Definitions without parentheses
// return nil. Quoted members (enum/set) keep their quotes; commas inside
// quotes do not split.
func parenArgs(typeInfo string) ([]string, error) {
	open := strings.IndexByte(typeInfo, '(')
	if open < 0 {
		return nil, nil
	}
	close := strings.LastIndexByte(typeInfo, ')')
	if close < open {
		return nil, errs.Parse("unbalanced parenthesis in type definition", typeInfo)
	}
	inner := typeInfo[open+1 : close]

	var args []string
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			cur.WriteByte(c)
		case c == ',' && !inQuote:
			args = append(args, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if cur.Len() > 0 {
		args = append(args, strings.TrimSpace(cur.String()))
	}
	return args, nil
}

// numericArgs interprets up to two numeric arguments as (size, scale).
func numericArgs(args []string, typeInfo string) (size, scale *int64, err error) {
	if len(args) == 0 {
		return nil, nil, nil
	}
	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return nil, nil, errs.Parse("bad length in type definition", typeInfo)
	}
	size = &n
	if len(args) > 1 {
		s, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return nil, nil, errs.Parse("bad scale in type definition", typeInfo)
		}
		scale = &s
	}
	return size, scale, nil
}

// fspArg reads an optional fractional-seconds precision argument.
func fspArg(args []string, typeInfo string) (int64, error) {
	if len(args) == 0 {
		return 0, nil
	}
	fsp, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || fsp < 0 {
		return 0, errs.Parse("bad fractional seconds precision", typeInfo)
	}
	return fsp, nil
}

func isIntegerType(id TypeID) bool {
	switch id {
	case TypeTinyInt, TypeTinyIntUnsigned, TypeSmallInt, TypeSmallIntUnsigned,
		TypeMediumInt, TypeMediumIntUnsigned, TypeInt, TypeIntUnsigned,
		TypeBigInt, TypeBigIntUnsigned, TypeBit, TypeBoolean, TypeYear:
		return true
	}
	return false
}

// hasCharOctetLength reports the kinds whose CHAR_OCTET_LENGTH mirrors
// the column size.
func hasCharOctetLength(id TypeID) bool {
	switch id {
	case TypeChar, TypeVarChar, TypeTinyText, TypeText, TypeMediumText,
		TypeLongText, TypeJSON, TypeBinary, TypeVarBinary, TypeTinyBlob,
		TypeBlob, TypeMediumBlob, TypeLongBlob, TypeEnum, TypeSet:
		return true
	}
	return false
}
