package filter

import (
	"math"
	"strconv"
	"strings"
)

// eval computes the value of an expression node against a projected
// field map. It is total: type mismatches degrade to NaN, false, or
// string coercion instead of failing, so a compiled predicate can never
// error at evaluation time.
func eval(n node, fields map[string]any) any {
	switch v := n.(type) {
	case *literalNode:
		return v.value

	case *identNode:
		return fields[v.name]

	case *callNode:
		args := make([]any, len(v.args))
		for i, arg := range v.args {
			args[i] = eval(arg, fields)
		}
		return builtins[v.name].fn(args)

	case *unaryNode:
		operand := eval(v.operand, fields)
		if v.op == "not" {
			return !truthy(operand)
		}
		f, ok := toFloat(operand)
		if !ok {
			return math.NaN()
		}
		return -f

	case *binaryNode:
		return evalBinary(v, fields)
	}
	return nil
}

func evalBinary(n *binaryNode, fields map[string]any) any {
	// Logical operators short-circuit.
	switch n.op {
	case "and":
		return truthy(eval(n.left, fields)) && truthy(eval(n.right, fields))
	case "or":
		return truthy(eval(n.left, fields)) || truthy(eval(n.right, fields))
	}

	left := eval(n.left, fields)
	right := eval(n.right, fields)

	switch n.op {
	case "==":
		return equals(left, right)
	case "!=":
		return !equals(left, right)
	case "<", "<=", ">", ">=":
		cmp, ok := compare(left, right)
		if !ok {
			return false
		}
		switch n.op {
		case "<":
			return cmp < 0
		case "<=":
			return cmp <= 0
		case ">":
			return cmp > 0
		default:
			return cmp >= 0
		}
	case "+":
		lf, lok := toFloat(left)
		rf, rok := toFloat(right)
		if lok && rok {
			return lf + rf
		}
		return str(left) + str(right)
	case "-", "*", "/", "%":
		lf, lok := toFloat(left)
		rf, rok := toFloat(right)
		if !lok || !rok {
			return math.NaN()
		}
		switch n.op {
		case "-":
			return lf - rf
		case "*":
			return lf * rf
		case "/":
			return lf / rf
		default:
			return math.Mod(lf, rf)
		}
	}
	return nil
}

// truthy maps a value to a filter decision: false for nil, false, zero,
// NaN, and the empty string.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	}
	return true
}

// equals compares loosely: nil only equals nil, booleans compare against
// the other side's truthiness, values that both parse as numbers compare
// numerically, and everything else falls back to string comparison.
func equals(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ab, ok := a.(bool); ok {
		return ab == truthy(b)
	}
	if bb, ok := b.(bool); ok {
		return truthy(a) == bb
	}
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}
	return str(a) == str(b)
}

// compare returns -1/0/1 when the two values are orderable: numerically
// when both coerce to numbers, lexicographically when both are strings.
func compare(a, b any) (int, bool) {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return strings.Compare(as, bs), true
	}
	return 0, false
}

// toFloat coerces a value to float64 where possible; strings must parse
// as numbers, booleans become 0 or 1, nil never coerces.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
