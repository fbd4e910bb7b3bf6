package instr

import (
	"fmt"
	"strings"

	"github.com/quenio/agerun/pkg/lang/expr"
)

// ParseError mirrors expr's error types: it carries (position,
// message), and every mini-parser returns it as "no AST" (nil, err
// here); callers such as System.Compile record it on the event log.
type ParseError struct {
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d: %s", e.Pos, e.Message)
}

func funcKindOf(name string) (FuncKind, bool) {
	switch FuncKind(name) {
	case Send, If, Parse, Build, Compile, Spawn, Destroy:
		return FuncKind(name), true
	default:
		return "", false
	}
}

// Parse tokenizes and parses one instruction line.
func Parse(src string) (AST, error) {
	tokens, err := expr.Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	return p.parseInstruction()
}

type parser struct {
	tokens []expr.Token
	pos    int
}

func (p *parser) peek() expr.Token {
	if p.pos >= len(p.tokens) {
		return expr.Token{Kind: expr.EOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) next() expr.Token {
	t := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *parser) parseInstruction() (AST, error) {
	first := p.peek()
	if first.Kind != expr.Ident {
		return nil, &ParseError{first.Pos, "expected an instruction starting with 'memory.' or a function name"}
	}

	if first.Text == "memory" {
		return p.parseAssignment()
	}

	if _, ok := funcKindOf(first.Text); ok {
		call, err := p.parseFunctionCall("")
		if err != nil {
			return nil, err
		}
		if err := p.expectEOF(); err != nil {
			return nil, err
		}
		return call, nil
	}

	return nil, &ParseError{first.Pos, fmt.Sprintf("unknown instruction %q", first.Text)}
}

func (p *parser) parseAssignment() (AST, error) {
	p.next() // "memory"
	var segments []string
	for p.peek().Kind == expr.Dot {
		p.next()
		ident := p.peek()
		if ident.Kind != expr.Ident {
			return nil, &ParseError{ident.Pos, "expected identifier after '.'"}
		}
		p.next()
		segments = append(segments, ident.Text)
	}
	if len(segments) == 0 {
		return nil, &ParseError{p.peek().Pos, "assignment target must be memory.<path>"}
	}
	targetPath := strings.Join(segments, ".")

	assign := p.peek()
	if assign.Kind != expr.Assign {
		return nil, &ParseError{assign.Pos, "expected ':=' after assignment target"}
	}
	p.next()

	// A function-call RHS becomes a FunctionCall with ResultPath set,
	// rather than an Assignment wrapping the call.
	if p.peek().Kind == expr.Ident {
		if _, ok := funcKindOf(p.peek().Text); ok && p.pos+1 < len(p.tokens) && p.tokens[p.pos+1].Kind == expr.LParen {
			call, err := p.parseFunctionCall(targetPath)
			if err != nil {
				return nil, err
			}
			if err := p.expectEOF(); err != nil {
				return nil, err
			}
			return call, nil
		}
	}

	node, next, err := expr.ParseTokens(p.tokens[p.pos:])
	if err != nil {
		return nil, err
	}
	p.pos += next
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return Assignment{TargetPath: targetPath, Expr: node}, nil
}

func (p *parser) parseFunctionCall(resultPath string) (AST, error) {
	nameTok := p.next()
	kind, ok := funcKindOf(nameTok.Text)
	if !ok {
		return nil, &ParseError{nameTok.Pos, fmt.Sprintf("unknown function %q", nameTok.Text)}
	}

	if p.peek().Kind != expr.LParen {
		return nil, &ParseError{p.peek().Pos, "expected '(' after function name"}
	}
	p.next()

	var args []expr.AST
	if p.peek().Kind != expr.RParen {
		for {
			node, next, err := expr.ParseTokens(p.tokens[p.pos:])
			if err != nil {
				return nil, err
			}
			p.pos += next
			args = append(args, node)
			if p.peek().Kind == expr.Comma {
				p.next()
				continue
			}
			break
		}
	}

	if p.peek().Kind != expr.RParen {
		return nil, &ParseError{p.peek().Pos, "expected ')'"}
	}
	p.next()

	if err := validateArgCount(kind, len(args), nameTok.Pos); err != nil {
		return nil, err
	}

	return FunctionCall{Kind: kind, Args: args, ResultPath: resultPath}, nil
}

func validateArgCount(kind FuncKind, got int, pos int) error {
	for _, want := range ArgCounts[kind] {
		if got == want {
			return nil
		}
	}
	return &ParseError{pos, fmt.Sprintf("%s expects %v argument(s), got %d", kind, ArgCounts[kind], got)}
}

func (p *parser) expectEOF() error {
	if p.peek().Kind != expr.EOF {
		return &ParseError{p.peek().Pos, "unexpected trailing input"}
	}
	return nil
}
