package meta

import "strconv"

// Helpers for values coming back through database.ScanRows, where the
// driver hands SHOW command output over as []byte or string.

func rawString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return ""
	}
}

func rawStringPtr(v any) *string {
	if v == nil {
		return nil
	}
	s := rawString(v)
	return &s
}

func rawInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case uint64:
		return int64(t)
	case []byte:
		n, _ := strconv.ParseInt(string(t), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	default:
		return 0
	}
}
