package store

import (
	"encoding/json"
	"time"
)

// MatchFilter reports whether doc satisfies filter. An empty filter matches
// everything. Unknown operators never match, so a malformed filter selects
// nothing rather than everything.
func MatchFilter(doc Document, filter Filter) bool {
	for field, cond := range filter {
		if field == OpOr {
			alts, ok := cond.([]Filter)
			if !ok {
				return false
			}
			matched := false
			for _, alt := range alts {
				if MatchFilter(doc, alt) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
			continue
		}

		val := doc[field]
		ops, ok := cond.(map[string]any)
		if !ok {
			// Literal equality.
			if cmp, comparable := Compare(val, cond); !comparable || cmp != 0 {
				return false
			}
			continue
		}
		for op, operand := range ops {
			if !matchOp(val, op, operand) {
				return false
			}
		}
	}
	return true
}

func matchOp(val any, op string, operand any) bool {
	switch op {
	case OpIn:
		candidates, ok := operand.([]any)
		if !ok {
			return false
		}
		for _, c := range candidates {
			if cmp, comparable := Compare(val, c); comparable && cmp == 0 {
				return true
			}
		}
		return false
	case OpGT, OpGTE, OpLT, OpLTE:
		cmp, comparable := Compare(val, operand)
		if !comparable {
			return false
		}
		switch op {
		case OpGT:
			return cmp > 0
		case OpGTE:
			return cmp >= 0
		case OpLT:
			return cmp < 0
		default:
			return cmp <= 0
		}
	default:
		return false
	}
}

// Compare orders two document values. The second return value is false when
// the values are of incompatible kinds. Numeric types are coerced to float64;
// time.Time compares against RFC 3339 strings so values survive a round trip
// through backends that store timestamps as strings.
func Compare(a, b any) (int, bool) {
	if a == nil || b == nil {
		if a == nil && b == nil {
			return 0, true
		}
		// nil sorts before any value
		if a == nil {
			return -1, true
		}
		return 1, true
	}

	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			switch {
			case af < bf:
				return -1, true
			case af > bf:
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}

	if at, ok := toTime(a); ok {
		if bt, ok := toTime(b); ok {
			switch {
			case at.Before(bt):
				return -1, true
			case at.After(bt):
				return 1, true
			default:
				return 0, true
			}
		}
	}

	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		switch {
		case as < bs:
			return -1, true
		case as > bs:
			return 1, true
		default:
			return 0, true
		}
	}

	ab, aok := a.(bool)
	bb, bok := b.(bool)
	if aok && bok {
		switch {
		case ab == bb:
			return 0, true
		case !ab:
			return -1, true
		default:
			return 1, true
		}
	}

	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed, true
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
