package core

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CoerceAmount converts a wire-format numeric field into a definite float.
// The backend serializes decimals as JSON strings while plain numbers pass
// through as float64, so decoded payloads carry either. Malformed or
// non-finite input coerces to 0 rather than failing: a broken amount must
// never take down a summary view.
func CoerceAmount(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return finiteOrZero(n)
	case float32:
		return finiteOrZero(float64(n))
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		return parseAmount(n.String())
	case string:
		return parseAmount(n)
	default:
		return 0
	}
}

func parseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return finiteOrZero(f)
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
