package homework

import (
	"encoding/json"
	"fmt"
	"math"
)

// CheckResponse verifies that raw is a homework status payload and returns
// its homeworks list.
//
// raw is expected to be decoded with json.Decoder.UseNumber, but float64
// numbers holding integral values are accepted too.
func CheckResponse(raw any) ([]map[string]any, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: response is %T, want object", ErrShape, raw)
	}
	if _, err := CurrentDate(m); err != nil {
		return nil, err
	}
	rawList, ok := m[KeyHomeworks]
	if !ok {
		return nil, fmt.Errorf("%w: key %q is missing", ErrShape, KeyHomeworks)
	}
	list, ok := rawList.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %T, want list", ErrShape, KeyHomeworks, rawList)
	}
	out := make([]map[string]any, 0, len(list))
	for i, el := range list {
		hw, ok := el.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] is %T, want object", ErrShape, KeyHomeworks, i, el)
		}
		out = append(out, hw)
	}
	return out, nil
}

// CurrentDate returns the server timestamp of a decoded payload.
func CurrentDate(raw any) (int64, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return 0, fmt.Errorf("%w: response is %T, want object", ErrShape, raw)
	}
	v, ok := m[KeyCurrentDate]
	if !ok {
		return 0, fmt.Errorf("%w: key %q is missing", ErrShape, KeyCurrentDate)
	}
	switch n := v.(type) {
	case json.Number:
		ts, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer: %s", ErrShape, KeyCurrentDate, n)
		}
		return ts, nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: %q is not an integer: %v", ErrShape, KeyCurrentDate, n)
		}
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("%w: %q is %T, want integer", ErrShape, KeyCurrentDate, v)
	}
}
