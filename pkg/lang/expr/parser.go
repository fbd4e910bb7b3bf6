package expr

import (
	"fmt"
	"strconv"

	"github.com/quenio/agerun/pkg/frame"
)

// ParseError mirrors LexError but for syntax-level failures.
type ParseError struct {
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d: %s", e.Pos, e.Message)
}

// Parse lexes and parses a complete expression, failing if trailing
// tokens remain after the expression.
func Parse(src string) (AST, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	node, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if p.peek().Kind != EOF {
		return nil, &ParseError{p.peek().Pos, "unexpected trailing input"}
	}
	return node, nil
}

// ParseTokens parses one expression starting at tokens[0], stopping at
// the first token it does not consume (a comma or closing paren, for
// example) rather than requiring EOF. It returns the AST and the index
// of the first unconsumed token. Used by pkg/lang/instr to parse
// comma-separated function-call arguments out of a shared token stream.
func ParseTokens(tokens []Token) (AST, int, error) {
	p := &parser{tokens: tokens}
	node, err := p.parseComparison()
	if err != nil {
		return nil, 0, err
	}
	return node, p.pos, nil
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Kind: EOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	t := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *parser) parseComparison() (AST, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		var op Op
		switch p.peek().Kind {
		case Eq:
			op = OpEq
		case Neq:
			op = OpNeq
		case Lt:
			op = OpLt
		case Lte:
			op = OpLte
		case Gt:
			op = OpGt
		case Gte:
			op = OpGte
		default:
			return left, nil
		}
		p.next()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = BinaryOp{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseAdditive() (AST, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op Op
		switch p.peek().Kind {
		case Plus:
			op = OpAdd
		case Minus:
			op = OpSub
		default:
			return left, nil
		}
		p.next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = BinaryOp{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseMultiplicative() (AST, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		var op Op
		switch p.peek().Kind {
		case Star:
			op = OpMul
		case Slash:
			op = OpDiv
		default:
			return left, nil
		}
		p.next()
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = BinaryOp{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseAtom() (AST, error) {
	tok := p.peek()
	switch tok.Kind {
	case Int:
		p.next()
		v, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, &ParseError{tok.Pos, "invalid integer literal"}
		}
		return LiteralInt{Value: v}, nil
	case Float:
		p.next()
		v, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, &ParseError{tok.Pos, "invalid double literal"}
		}
		return LiteralDouble{Value: v}, nil
	case Str:
		p.next()
		return LiteralString{Value: tok.Text}, nil
	case LParen:
		p.next()
		node, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		if p.peek().Kind != RParen {
			return nil, &ParseError{p.peek().Pos, "expected ')'"}
		}
		p.next()
		return node, nil
	case Ident:
		return p.parseAccess()
	default:
		return nil, &ParseError{tok.Pos, "expected a literal, memory/context/message access, or '('"}
	}
}

func (p *parser) parseAccess() (AST, error) {
	tok := p.next()
	var root frame.Root
	switch tok.Text {
	case string(frame.RootMemory):
		root = frame.RootMemory
	case string(frame.RootContext):
		root = frame.RootContext
	case string(frame.RootMessage):
		root = frame.RootMessage
	default:
		return nil, &ParseError{tok.Pos, fmt.Sprintf("unknown identifier %q (expected memory, context, or message)", tok.Text)}
	}
	var path []string
	for p.peek().Kind == Dot {
		p.next()
		ident := p.peek()
		if ident.Kind != Ident {
			return nil, &ParseError{ident.Pos, "expected identifier after '.'"}
		}
		p.next()
		path = append(path, ident.Text)
	}
	return MemoryAccess{Root: root, Path: path}, nil
}
