package ops

import (
	"time"
)

// Firestore query operators.
const (
	Equal          = "=="
	NotEqual       = "!="
	Greater        = ">"
	GreaterOrEqual = ">="
	Less           = "<"
	LessOrEqual    = "<="
)

// Apply evaluates `left op right` the way the document store does for the supported
// operand types (strings, numbers, timestamps). Mismatched types never match.
func Apply(op string, left, right interface{}) bool {
	c, ok := compare(left, right)
	if !ok {
		return false
	}

	switch op {
	case Equal:
		return c == 0
	case NotEqual:
		return c != 0
	case Greater:
		return c > 0
	case GreaterOrEqual:
		return c >= 0
	case Less:
		return c < 0
	case LessOrEqual:
		return c <= 0
	}
	return false
}

func compare(left, right interface{}) (int, bool) {
	if l, ok := left.(string); ok {
		r, ok := right.(string)
		if !ok {
			return 0, false
		}
		switch {
		case l < r:
			return -1, true
		case l > r:
			return 1, true
		}
		return 0, true
	}

	if l, ok := left.(time.Time); ok {
		r, ok := right.(time.Time)
		if !ok {
			return 0, false
		}
		return l.Compare(r), true
	}

	l, lok := toFloat(left)
	r, rok := toFloat(right)
	if !lok || !rok {
		return 0, false
	}
	switch {
	case l < r:
		return -1, true
	case l > r:
		return 1, true
	}
	return 0, true
}

func toFloat(v interface{}) (float64, bool) {
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
	}
	return 0, false
}
