package cleaner

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

const (
	unknownText       = "Unknown"
	noDescriptionText = "No description available"

	// DefaultDescriptionLength is the business summary cut-off in runes.
	DefaultDescriptionLength = 300
)

// SafeFloat converts an arbitrary decoded JSON value to float64.
// Missing, numeric zero, "N/A" (any case) and unparseable values yield def.
// The string "0" is a value, not a missing one.
func SafeFloat(v any, def float64) float64 {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	if f == 0 && !isString(v) {
		return def
	}
	return f
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

// SafeInt converts an arbitrary decoded JSON value to int.
// Floats truncate toward zero; strings must hold an integer.
func SafeInt(v any, def int) int {
	switch x := v.(type) {
	case nil:
		return def
	case string:
		s := strings.TrimSpace(x)
		if s == "" || strings.EqualFold(s, "n/a") {
			return def
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return def
		}
		return n
	case json.Number:
		n, err := strconv.Atoi(x.String())
		if err != nil || n == 0 {
			return def
		}
		return n
	}
	f, ok := toFloat(v)
	if !ok || f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return def
	}
	return int(f)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, false
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" || strings.EqualFold(s, "n/a") {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

// isFalsy reports whether v carries no usable value.
func isFalsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	}
	if f, ok := toFloat(v); ok {
		return f == 0
	}
	return false
}

func textOf(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// CleanText returns the trimmed text of v, or "Unknown" when v is empty or "N/A".
func CleanText(v any) string {
	if isFalsy(v) {
		return unknownText
	}
	s := strings.TrimSpace(textOf(v))
	if s == "" || s == "N/A" {
		return unknownText
	}
	return s
}

// TruncateDescription trims v and cuts it to maxLen runes followed by "...".
func TruncateDescription(v any, maxLen int) string {
	if isFalsy(v) {
		return noDescriptionText
	}
	s := strings.TrimSpace(textOf(v))
	if s == "" || s == "N/A" {
		return noDescriptionText
	}
	r := []rune(s)
	if len(r) > maxLen {
		return string(r[:maxLen]) + "..."
	}
	return s
}

// StandardizeSector title-cases a cleaned sector name.
func StandardizeSector(v any) string {
	s := CleanText(v)
	if s == unknownText {
		return s
	}
	return titleCase(s)
}

// titleCase upper-cases the first letter of every letter run and lower-cases the rest.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		prevLetter = false
		b.WriteRune(r)
	}
	return b.String()
}

// optionalText returns the trimmed text of v or def.
func optionalText(v any, def string) string {
	if isFalsy(v) {
		return def
	}
	s := strings.TrimSpace(textOf(v))
	if s == "" {
		return def
	}
	return s
}

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(int32(places)).InexactFloat64()
}
