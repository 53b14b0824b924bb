package common

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseUint64orHex converts the given uint64 string into the number.
// It can parse the string with 0x prefix as well.
func ParseUint64orHex(val string) (uint64, error) {
	str := strings.TrimSpace(val)
	base := 10

	if strings.HasPrefix(str, "0x") || strings.HasPrefix(str, "0X") {
		str = str[2:]
		base = 16
	}

	return strconv.ParseUint(str, base, 64)
}

// ParseNumeric converts a decoded JSON value holding a non-negative integer
// (a decimal or 0x string, a json.Number, a float64 or any Go integer) into uint64.
func ParseNumeric(val any) (uint64, error) {
	switch v := val.(type) {
	case string:
		return ParseUint64orHex(v)
	case json.Number:
		return ParseUint64orHex(v.String())
	case float64:
		if v < 0 || v != math.Trunc(v) || v > math.MaxUint64 {
			return 0, fmt.Errorf("value %v is not a non-negative integer", v)
		}
		return uint64(v), nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("negative value %d", v)
		}
		return uint64(v), nil
	case int64:
		if v < 0 {
			return 0, fmt.Errorf("negative value %d", v)
		}
		return uint64(v), nil
	case uint64:
		return v, nil
	case nil:
		return 0, fmt.Errorf("value is missing")
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", val)
	}
}

func ToLowerWithTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
