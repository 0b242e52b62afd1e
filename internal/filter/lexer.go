package filter

import (
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokOp
)

type token struct {
	kind tokenKind
	text string
	pos  int
	num  float64
}

// twoCharOps are matched before single characters.
var twoCharOps = []string{"==", "!=", "<>", "<=", ">=", "&&", "||"}

const singleCharOps = "=<>!()+-*/%,"

// lex splits a filter expression into tokens. Positions are byte offsets
// into the original expression, used in compile error messages.
func lex(input string) ([]token, error) {
	var out []token
	i := 0
	for i < len(input) {
		ch := input[i]

		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++

		case isIdentStart(ch):
			start := i
			for i < len(input) && isIdentPart(input[i]) {
				i++
			}
			out = append(out, token{kind: tokIdent, text: input[start:i], pos: start})

		case ch >= '0' && ch <= '9':
			start := i
			for i < len(input) && input[i] >= '0' && input[i] <= '9' {
				i++
			}
			if i < len(input) && input[i] == '.' {
				i++
				for i < len(input) && input[i] >= '0' && input[i] <= '9' {
					i++
				}
			}
			text := input[start:i]
			num, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, &CompileError{Expr: input, Pos: start, Msg: fmt.Sprintf("invalid number %q", text)}
			}
			out = append(out, token{kind: tokNumber, text: text, pos: start, num: num})

		case ch == '"' || ch == '\'':
			lit, next, err := lexString(input, i)
			if err != nil {
				return nil, err
			}
			out = append(out, token{kind: tokString, text: lit, pos: i})
			i = next

		default:
			if i+1 < len(input) {
				two := input[i : i+2]
				matched := false
				for _, op := range twoCharOps {
					if two == op {
						out = append(out, token{kind: tokOp, text: op, pos: i})
						i += 2
						matched = true
						break
					}
				}
				if matched {
					continue
				}
			}
			if strings.IndexByte(singleCharOps, ch) >= 0 {
				out = append(out, token{kind: tokOp, text: string(ch), pos: i})
				i++
				continue
			}
			return nil, &CompileError{Expr: input, Pos: i, Msg: fmt.Sprintf("unexpected character %q", string(ch))}
		}
	}
	out = append(out, token{kind: tokEOF, pos: len(input)})
	return out, nil
}

// lexString reads a quoted literal starting at input[start] and returns
// the unescaped value plus the index just past the closing quote.
func lexString(input string, start int) (string, int, error) {
	quote := input[start]
	var b strings.Builder
	i := start + 1
	for i < len(input) {
		ch := input[i]
		if ch == quote {
			return b.String(), i + 1, nil
		}
		if ch == '\\' && i+1 < len(input) {
			i++
			switch input[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(input[i])
			}
			i++
			continue
		}
		b.WriteByte(ch)
		i++
	}
	return "", 0, &CompileError{Expr: input, Pos: start, Msg: "unterminated string literal"}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}
