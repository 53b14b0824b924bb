package types

import (
	"fmt"
	"maps"
	"net/url"
	"strconv"
)

// Params holds the query parameters of an explorer request.
// A nil value, or a nil pointer, marks an unset parameter that is left out of the query.
type Params map[string]any

// Clone returns a shallow copy of p that is safe to extend.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	maps.Copy(out, p)
	return out
}

// With returns a copy of p extended with extra. Keys in extra win.
func (p Params) With(extra Params) Params {
	out := p.Clone()
	maps.Copy(out, extra)
	return out
}

// Values encodes the set parameters into url.Values.
func (p Params) Values() url.Values {
	values := make(url.Values, len(p))
	for k, v := range p {
		if s, ok := formatParam(v); ok {
			values.Set(k, s)
		}
	}
	return values
}

func formatParam(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case *string:
		if val == nil {
			return "", false
		}
		return *val, true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case *uint64:
		if val == nil {
			return "", false
		}
		return strconv.FormatUint(*val, 10), true
	case int:
		return strconv.Itoa(val), true
	case *int:
		if val == nil {
			return "", false
		}
		return strconv.Itoa(*val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case bool:
		return strconv.FormatBool(val), true
	case *bool:
		if val == nil {
			return "", false
		}
		return strconv.FormatBool(*val), true
	case fmt.Stringer:
		return val.String(), true
	default:
		return fmt.Sprint(val), true
	}
}
