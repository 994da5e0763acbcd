package transform

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Per-field coercion lives here as pure functions returning (value, ok)
// tagged results. A false tag means the field degrades to NULL; no coercion
// failure ever propagates as an error.

// PurchaseDateLayout is the fixed day/month/year pattern used by the source.
const PurchaseDateLayout = "02/01/2006"

// numericRun matches the first embedded numeric substring in free-form text
// such as "R$ 12.50" or "7 dias". Ambiguous multi-number strings resolve to
// the first run.
var numericRun = regexp.MustCompile(`(\d+\.?\d*|\.\d+)`)

// asString renders any scalar as its string form. nil maps to ("", false).
func asString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	default:
		return fmt.Sprint(t), true
	}
}

// asFloat parses v as a floating-point number.
func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Cents converts a major-currency amount into integer minor units: the value
// is multiplied by 100 and truncated toward zero. The product is rounded at
// the sixth decimal first so binary float artifacts ("49.9" * 100 =
// 4989.999...) cannot lose a cent.
func Cents(v any) (int64, bool) {
	f, ok := asFloat(v)
	if !ok {
		return 0, false
	}
	p := f * 100
	p = math.Round(p*1e6) / 1e6
	return int64(math.Trunc(p)), true
}

// ShippingCents extracts the first numeric run from a free-form shipping
// string before converting to cents, so currency symbols and unit suffixes do
// not discard an otherwise usable number. Non-string numerics convert
// directly.
func ShippingCents(v any) (int64, bool) {
	if s, isStr := v.(string); isStr {
		run := numericRun.FindString(s)
		if run == "" {
			return 0, false
		}
		return Cents(run)
	}
	return Cents(v)
}

// Integer parses v as an integer. Fractional strings do not qualify.
func Integer(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		if t == math.Trunc(t) {
			return int64(t), true
		}
		return 0, false
	case json.Number:
		i, err := t.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// Float parses v as a floating-point value (latitude/longitude).
func Float(v any) (float64, bool) {
	return asFloat(v)
}

// Date parses v against the fixed day/month/year source layout. Empty,
// non-string, or mismatched input degrades to NULL.
func Date(v any) (time.Time, bool) {
	s, isStr := v.(string)
	if !isStr || strings.TrimSpace(s) == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(PurchaseDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
