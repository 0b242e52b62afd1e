package filter

import (
	"math"
	"strconv"
	"strings"
)

// builtin is one entry in the expression function library.
// maxArgs of -1 means variadic.
type builtin struct {
	minArgs int
	maxArgs int
	fn      func(args []any) any
}

// builtins holds the fixed function library available to filter
// expressions. Names are matched case-insensitively; the parser
// lower-cases call targets before lookup.
var builtins map[string]builtin

func init() {
	unary := func(fn func(any) any) builtin {
		return builtin{minArgs: 1, maxArgs: 1, fn: func(args []any) any { return fn(args[0]) }}
	}

	builtins = map[string]builtin{
		"str":  unary(func(v any) any { return str(v) }),
		"trim": unary(func(v any) any { return strings.TrimSpace(str(v)) }),
		"lower": unary(func(v any) any {
			return strings.ToLower(str(v))
		}),
		"upper": unary(func(v any) any {
			return strings.ToUpper(str(v))
		}),
		"normalize": unary(func(v any) any { return normalize(v) }),
		"norm":      unary(func(v any) any { return normalize(v) }),
		"float":     unary(parseNumber),
		"number":    unary(parseNumber),
		"int":       unary(parseInteger),
		"integer":   unary(parseInteger),
		"all":       {minArgs: 2, maxArgs: -1, fn: allOf},
		"any":       {minArgs: 2, maxArgs: -1, fn: anyOf},
	}
}

// str is the null-safe stringifier every other function builds on.
func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		if math.IsNaN(t) {
			return "NaN"
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

// normalize lower-cases and trims the stringified value.
func normalize(v any) string {
	return strings.ToLower(strings.TrimSpace(str(v)))
}

func parseNumber(v any) any {
	if f, ok := toFloat(v); ok {
		return f
	}
	return nil
}

func parseInteger(v any) any {
	if f, ok := toFloat(v); ok {
		return math.Trunc(f)
	}
	return nil
}

// allOf reports whether every argument is a substring of the normalized
// first value.
func allOf(args []any) any {
	haystack := normalize(args[0])
	for _, arg := range args[1:] {
		if !strings.Contains(haystack, normalize(arg)) {
			return false
		}
	}
	return true
}

// anyOf reports whether at least one argument is a substring of the
// normalized first value.
func anyOf(args []any) any {
	haystack := normalize(args[0])
	for _, arg := range args[1:] {
		if strings.Contains(haystack, normalize(arg)) {
			return true
		}
	}
	return false
}
