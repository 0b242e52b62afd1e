package filter

import (
	"fmt"
	"strings"
)

// Expression AST. Nodes are immutable after parsing; one tree is shared
// by every evaluation of the predicate it compiled into.
type node interface {
	at() int
}

type literalNode struct {
	pos   int
	value any
}

type identNode struct {
	pos  int
	name string
}

type callNode struct {
	pos  int
	name string
	args []node
}

type unaryNode struct {
	pos     int
	op      string
	operand node
}

type binaryNode struct {
	pos         int
	op          string
	left, right node
}

func (n *literalNode) at() int { return n.pos }
func (n *identNode) at() int   { return n.pos }
func (n *callNode) at() int    { return n.pos }
func (n *unaryNode) at() int   { return n.pos }
func (n *binaryNode) at() int  { return n.pos }

// parser is a recursive-descent parser over the lexed token stream.
// Grammar, loosest binding first:
//
//	expr    := and ( "or" and )*
//	and     := not ( "and" not )*
//	not     := ( "not" | "!" ) not | cmp
//	cmp     := sum ( ( "==" | "=" | "!=" | "<>" | "<" | "<=" | ">" | ">=" ) sum )?
//	sum     := product ( ( "+" | "-" ) product )*
//	product := unary ( ( "*" | "/" | "%" ) unary )*
//	unary   := "-" unary | primary
//	primary := number | string | "true" | "false" | ident | ident "(" args ")" | "(" expr ")"
//
// Identifiers must name a projected field; call targets must name a
// library function with a matching argument count. Both are checked
// here, at compile time, so evaluation can stay total.
type parser struct {
	expr   string
	tokens []token
	pos    int
}

func parse(expr string) (node, error) {
	tokens, err := lex(expr)
	if err != nil {
		return nil, err
	}
	p := &parser{expr: expr, tokens: tokens}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.errorf(tok.pos, "unexpected %q", tok.text)
	}
	return root, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(pos int, format string, args ...any) error {
	return &CompileError{Expr: p.expr, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// matchOp consumes the next token when it is one of the given operators.
func (p *parser) matchOp(ops ...string) (token, bool) {
	tok := p.peek()
	if tok.kind != tokOp {
		return token{}, false
	}
	for _, op := range ops {
		if tok.text == op {
			return p.advance(), true
		}
	}
	return token{}, false
}

// matchKeyword consumes the next token when it is the given bare word.
func (p *parser) matchKeyword(word string) (token, bool) {
	tok := p.peek()
	if tok.kind == tokIdent && strings.EqualFold(tok.text, word) {
		return p.advance(), true
	}
	return token{}, false
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.matchKeyword("or")
		if !ok {
			tok, ok = p.matchOp("||")
		}
		if !ok {
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{pos: tok.pos, op: "or", left: left, right: right}
	}
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.matchKeyword("and")
		if !ok {
			tok, ok = p.matchOp("&&")
		}
		if !ok {
			return left, nil
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{pos: tok.pos, op: "and", left: left, right: right}
	}
}

func (p *parser) parseNot() (node, error) {
	tok, ok := p.matchKeyword("not")
	if !ok {
		tok, ok = p.matchOp("!")
	}
	if ok {
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &unaryNode{pos: tok.pos, op: "not", operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (node, error) {
	left, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	tok, ok := p.matchOp("==", "=", "!=", "<>", "<=", ">=", "<", ">")
	if !ok {
		return left, nil
	}
	right, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	op := tok.text
	switch op {
	case "=":
		op = "=="
	case "<>":
		op = "!="
	}
	return &binaryNode{pos: tok.pos, op: op, left: left, right: right}, nil
}

func (p *parser) parseSum() (node, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.matchOp("+", "-")
		if !ok {
			return left, nil
		}
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{pos: tok.pos, op: tok.text, left: left, right: right}
	}
}

func (p *parser) parseProduct() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok, ok := p.matchOp("*", "/", "%")
		if !ok {
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{pos: tok.pos, op: tok.text, left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	if tok, ok := p.matchOp("-"); ok {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{pos: tok.pos, op: "-", operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.advance()
	switch tok.kind {
	case tokNumber:
		return &literalNode{pos: tok.pos, value: tok.num}, nil

	case tokString:
		return &literalNode{pos: tok.pos, value: tok.text}, nil

	case tokIdent:
		switch strings.ToLower(tok.text) {
		case "true":
			return &literalNode{pos: tok.pos, value: true}, nil
		case "false":
			return &literalNode{pos: tok.pos, value: false}, nil
		}
		if _, ok := p.matchOp("("); ok {
			return p.parseCall(tok)
		}
		name := strings.ToLower(tok.text)
		if _, known := fieldNames[name]; !known {
			return nil, p.errorf(tok.pos, "unknown identifier %q", tok.text)
		}
		return &identNode{pos: tok.pos, name: name}, nil

	case tokOp:
		if tok.text == "(" {
			inner, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if _, ok := p.matchOp(")"); !ok {
				return nil, p.errorf(p.peek().pos, "expected closing parenthesis")
			}
			return inner, nil
		}
	}
	if tok.kind == tokEOF {
		return nil, p.errorf(tok.pos, "unexpected end of expression")
	}
	return nil, p.errorf(tok.pos, "unexpected %q", tok.text)
}

// parseCall parses the argument list of name(...); the opening
// parenthesis has already been consumed.
func (p *parser) parseCall(nameTok token) (node, error) {
	name := strings.ToLower(nameTok.text)
	fn, known := builtins[name]
	if !known {
		return nil, p.errorf(nameTok.pos, "unknown function %q", nameTok.text)
	}

	var args []node
	if _, ok := p.matchOp(")"); !ok {
		for {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if _, ok := p.matchOp(","); ok {
				continue
			}
			if _, ok := p.matchOp(")"); ok {
				break
			}
			return nil, p.errorf(p.peek().pos, "expected ',' or ')' in call to %q", nameTok.text)
		}
	}

	if len(args) < fn.minArgs {
		return nil, p.errorf(nameTok.pos, "%q needs at least %d argument(s)", nameTok.text, fn.minArgs)
	}
	if fn.maxArgs >= 0 && len(args) > fn.maxArgs {
		return nil, p.errorf(nameTok.pos, "%q takes at most %d argument(s)", nameTok.text, fn.maxArgs)
	}
	return &callNode{pos: nameTok.pos, name: name, args: args}, nil
}
