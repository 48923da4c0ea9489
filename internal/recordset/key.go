package recordset

import (
	"math"
	"strconv"
)

// nullKey is the join key shared by every null value. Joins that must treat
// nulls as non-matching filter them out afterwards.
const nullKey = "\x00null"

// Key returns a comparable representation of value for equality joins.
// Integer and floating point values that are numerically equal share a key,
// so an int64 loaded from SQLite joins with an int built in memory.
func Key(value any) string {
	switch v := value.(type) {
	case nil:
		return nullKey
	case string:
		return "s:" + v
	case *string:
		if v == nil {
			return nullKey
		}
		return "s:" + *v
	case []byte:
		return "s:" + string(v)
	case bool:
		return "b:" + strconv.FormatBool(v)
	case int:
		return "n:" + strconv.FormatInt(int64(v), 10)
	case int32:
		return "n:" + strconv.FormatInt(int64(v), 10)
	case int64:
		return "n:" + strconv.FormatInt(v, 10)
	case uint32:
		return "n:" + strconv.FormatUint(uint64(v), 10)
	case uint64:
		return "n:" + strconv.FormatUint(v, 10)
	case float32:
		return floatKey(float64(v))
	case float64:
		return floatKey(v)
	default:
		s, _ := AsString(v)
		return "s:" + s
	}
}

// IsNull reports whether value is a null.
func IsNull(value any) bool {
	return Key(value) == nullKey
}

func floatKey(f float64) string {
	if math.IsNaN(f) {
		return nullKey
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return "n:" + strconv.FormatInt(int64(f), 10)
	}
	return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
}
