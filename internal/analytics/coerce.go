package analytics

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ToNumeric turns any cell value into a float64. Numbers pass through, strings
// are stripped of everything except digits, '.' and '-' and parsed. Whatever
// cannot be parsed becomes 0.
func ToNumeric(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case uint:
		return float64(n)
	case uint64:
		return float64(n)
	case uint32:
		return float64(n)
	case string:
		return parseNumeric(n)
	case fmt.Stringer:
		return parseNumeric(n.String())
	}
	return parseNumeric(fmt.Sprint(v))
}

// ToPercent is ToNumeric for values like "71.1%".
func ToPercent(v any) float64 {
	if s, ok := v.(string); ok {
		return parseNumeric(strings.ReplaceAll(s, "%", ""))
	}
	return ToNumeric(v)
}

func parseNumeric(s string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return 0
	}
	val, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return finite(val)
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
