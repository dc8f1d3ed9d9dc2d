// Package parser implements a Pratt (precedence-climbing) parser turning
// a token stream into a span-annotated ast.Expression tree. The
// prefixParseFns/infixParseFns registration tables and the curToken/
// peekToken two-token lookahead shape are carried over from the teacher
// (amoghasbhardwaj-Eloquence/parser/parser.go); unlike the teacher, parse
// functions return `(ast.Expression, *fault.Fault)` directly instead of
// appending to a shared error slice, since every other package in this
// module propagates errors that way.
package parser

import (
	"strconv"

	"github.com/corazon/jqsafe/ast"
	"github.com/corazon/jqsafe/fault"
	"github.com/corazon/jqsafe/lexer"
	"github.com/corazon/jqsafe/span"
	"github.com/corazon/jqsafe/token"
)

// Precedence levels, lowest to highest, mirroring jq's own grammar
// (lowest-to-highest: pipe, comma, alternative, assignment, or, and,
// comparison, additive, multiplicative, unary, postfix).
const (
	LOWEST int = iota * 10
	PIPE
	COMMA
	ALT
	ASSIGNP
	OR
	AND
	CMP
	ADD
	MUL
	UNARY
	POSTFIX
)

var precedences = map[token.Type]int{
	token.PIPE:                 PIPE,
	token.AS:                   PIPE,
	token.COMMA:                COMMA,
	token.ALT:                  ALT,
	token.ASSIGN:               ASSIGNP,
	token.PIPE_EQ:              ASSIGNP,
	token.PLUS_EQ:              ASSIGNP,
	token.MINUS_EQ:             ASSIGNP,
	token.STAR_EQ:              ASSIGNP,
	token.SLASH_EQ:             ASSIGNP,
	token.PERCENT_EQ:           ASSIGNP,
	token.ALT_EQ:               ASSIGNP,
	token.OR:                   OR,
	token.AND:                  AND,
	token.EQ:                   CMP,
	token.NE:                   CMP,
	token.LT:                   CMP,
	token.GT:                   CMP,
	token.LE:                   CMP,
	token.GE:                   CMP,
	token.PLUS:                 ADD,
	token.MINUS:                ADD,
	token.STAR:                 MUL,
	token.SLASH:                MUL,
	token.PERCENT:              MUL,
	token.DOT:                  POSTFIX,
	token.LBRACKET:             POSTFIX,
	token.QUESTION:             POSTFIX,
}

type (
	prefixParseFn func() (ast.Expression, *fault.Fault)
	infixParseFn  func(ast.Expression) (ast.Expression, *fault.Fault)
)

// Parser consumes a Lexer's token stream and produces an ast.Expression.
type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

// New creates a Parser reading from l.
func New(l *lexer.Lexer) (*Parser, *fault.Fault) {
	p := &Parser{l: l}

	p.prefixParseFns = make(map[token.Type]prefixParseFn)
	p.registerPrefix(token.DOT, p.parseDotPrefix)
	p.registerPrefix(token.DOTDOT, p.parseRecurseDefault)
	p.registerPrefix(token.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.STRING_START, p.parseInterpString)
	p.registerPrefix(token.VARIABLE, p.parseVarRef)
	p.registerPrefix(token.FORMAT, p.parseFormat)
	p.registerPrefix(token.LPAREN, p.parseGrouped)
	p.registerPrefix(token.LBRACKET, p.parseArrayConstruct)
	p.registerPrefix(token.LBRACE, p.parseObjectConstruct)
	p.registerPrefix(token.MINUS, p.parseUnary)
	p.registerPrefix(token.IF, p.parseIf)
	p.registerPrefix(token.TRY, p.parseTry)
	p.registerPrefix(token.REDUCE, p.parseReduce)
	p.registerPrefix(token.FOREACH, p.parseForeach)
	p.registerPrefix(token.LABEL, p.parseLabel)
	p.registerPrefix(token.BREAK, p.parseBreak)
	p.registerPrefix(token.DEF, p.parseFuncDef)
	p.registerPrefix(token.IDENT, p.parseIdentCall)
	p.registerPrefix(token.NOT, p.parseNotCall)
	p.registerPrefix(token.TRUE, p.parseBoolLiteral)
	p.registerPrefix(token.FALSE, p.parseBoolLiteral)
	p.registerPrefix(token.NULL, p.parseNullLiteral)

	p.infixParseFns = make(map[token.Type]infixParseFn)
	p.registerInfix(token.PIPE, p.parsePipe)
	p.registerInfix(token.AS, p.parseBind)
	p.registerInfix(token.COMMA, p.parseComma)
	p.registerInfix(token.ALT, p.parseAlternative)
	p.registerInfix(token.ASSIGN, p.parseAssign)
	p.registerInfix(token.PIPE_EQ, p.parseAssign)
	p.registerInfix(token.PLUS_EQ, p.parseAssign)
	p.registerInfix(token.MINUS_EQ, p.parseAssign)
	p.registerInfix(token.STAR_EQ, p.parseAssign)
	p.registerInfix(token.SLASH_EQ, p.parseAssign)
	p.registerInfix(token.PERCENT_EQ, p.parseAssign)
	p.registerInfix(token.ALT_EQ, p.parseAssign)
	p.registerInfix(token.OR, p.parseBooleanOp)
	p.registerInfix(token.AND, p.parseBooleanOp)
	p.registerInfix(token.EQ, p.parseBinary)
	p.registerInfix(token.NE, p.parseBinary)
	p.registerInfix(token.LT, p.parseBinary)
	p.registerInfix(token.GT, p.parseBinary)
	p.registerInfix(token.LE, p.parseBinary)
	p.registerInfix(token.GE, p.parseBinary)
	p.registerInfix(token.PLUS, p.parseBinary)
	p.registerInfix(token.MINUS, p.parseBinary)
	p.registerInfix(token.STAR, p.parseBinary)
	p.registerInfix(token.SLASH, p.parseBinary)
	p.registerInfix(token.PERCENT, p.parseBinary)
	p.registerInfix(token.DOT, p.parseFieldAccess)
	p.registerInfix(token.LBRACKET, p.parseIndexOrSlice)
	p.registerInfix(token.QUESTION, p.parseTrySuffix)

	if err := p.nextToken(); err != nil {
		return nil, err
	}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) registerPrefix(t token.Type, fn prefixParseFn) { p.prefixParseFns[t] = fn }
func (p *Parser) registerInfix(t token.Type, fn infixParseFn)   { p.infixParseFns[t] = fn }

func (p *Parser) nextToken() *fault.Fault {
	p.curToken = p.peekToken
	tok, err := p.l.NextToken()
	if err != nil {
		return err
	}
	p.peekToken = tok
	return nil
}

func (p *Parser) curTokenIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.Type) *fault.Fault {
	if p.peekTokenIs(t) {
		return p.nextToken()
	}
	return fault.Parse(p.peekToken.Span, "expected %s, got %s", t, p.peekToken.Type)
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// ParseProgram parses the entire token stream as a single expression and
// asserts EOF follows.
func ParseProgram(source string) (ast.Expression, *fault.Fault) {
	p, err := New(lexer.New(source))
	if err != nil {
		return nil, err
	}
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if !p.curTokenIs(token.EOF) {
		return nil, fault.Parse(p.curToken.Span, "unexpected trailing token %s", p.curToken.Type)
	}
	return expr, nil
}

func (p *Parser) parseExpression(precedence int) (ast.Expression, *fault.Fault) {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		return nil, fault.Parse(p.curToken.Span, "unexpected token %s", p.curToken.Type)
	}
	left, err := prefix()
	if err != nil {
		return nil, err
	}

	for !p.peekTokenIs(token.EOF) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left, nil
		}
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		left, err = infix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

// --- prefix parse functions ---

func (p *Parser) parseDotPrefix() (ast.Expression, *fault.Fault) {
	start := p.curToken.Span
	switch {
	case p.peekTokenIs(token.IDENT):
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		f := &ast.Field{Name: p.curToken.Literal, Sp: span.Cover(start, p.curToken.Span)}
		return p.maybeOptional(f, &f.Optional, &f.Sp)
	case token.IsKeyword(p.peekToken.Literal) && p.peekToken.Literal != "" && p.peekToken.Span.Start == start.End:
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		f := &ast.Field{Name: p.curToken.Literal, Sp: span.Cover(start, p.curToken.Span)}
		return p.maybeOptional(f, &f.Optional, &f.Sp)
	case p.peekTokenIs(token.STRING):
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		f := &ast.Field{Name: p.curToken.Literal, Sp: span.Cover(start, p.curToken.Span)}
		return p.maybeOptional(f, &f.Optional, &f.Sp)
	case p.peekTokenIs(token.LBRACKET):
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		return p.parseIndexOrSlice(&ast.Identity{Sp: start})
	default:
		return &ast.Identity{Sp: start}, nil
	}
}

func (p *Parser) parseRecurseDefault() (ast.Expression, *fault.Fault) {
	return &ast.RecurseDefault{Sp: p.curToken.Span}, nil
}

func (p *Parser) parseNumberLiteral() (ast.Expression, *fault.Fault) {
	n, convErr := strconv.ParseFloat(p.curToken.Literal, 64)
	if convErr != nil {
		return nil, fault.Parse(p.curToken.Span, "invalid number literal %q", p.curToken.Literal)
	}
	return &ast.Literal{Kind: ast.LiteralNumber, Num: n, Sp: p.curToken.Span}, nil
}

func (p *Parser) parseStringLiteral() (ast.Expression, *fault.Fault) {
	return &ast.Literal{Kind: ast.LiteralString, Str: p.curToken.Literal, Sp: p.curToken.Span}, nil
}

func (p *Parser) parseBoolLiteral() (ast.Expression, *fault.Fault) {
	return &ast.Literal{Kind: ast.LiteralBool, Bool: p.curToken.Type == token.TRUE, Sp: p.curToken.Span}, nil
}

func (p *Parser) parseNullLiteral() (ast.Expression, *fault.Fault) {
	return &ast.Literal{Kind: ast.LiteralNull, Sp: p.curToken.Span}, nil
}

// parseInterpString parses an interpolated string starting at a
// STRING_START token, consuming STRING_MID segments and embedded
// expressions until STRING_END.
func (p *Parser) parseInterpString() (ast.Expression, *fault.Fault) {
	start := p.curToken.Span
	var parts []ast.InterpPart
	parts = append(parts, ast.InterpPart{Text: p.curToken.Literal})
	for {
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		parts = append(parts, ast.InterpPart{Expr: expr})
		if err := p.expectPeek(token.STRING_MID); err == nil {
			parts = append(parts, ast.InterpPart{Text: p.curToken.Literal})
			continue
		}
		if err := p.expectPeek(token.STRING_END); err != nil {
			return nil, fault.Parse(p.peekToken.Span, "expected continuation of interpolated string, got %s", p.peekToken.Type)
		}
		parts = append(parts, ast.InterpPart{Text: p.curToken.Literal})
		break
	}
	return &ast.InterpString{Parts: parts, Sp: span.Cover(start, p.curToken.Span)}, nil
}

func (p *Parser) parseVarRef() (ast.Expression, *fault.Fault) {
	return &ast.VarRef{Name: p.curToken.Literal, Sp: p.curToken.Span}, nil
}

// parseFormat handles `@name` optionally followed immediately by a string
// literal to which the format is applied; bare `@name` applies the format
// to the current input.
func (p *Parser) parseFormat() (ast.Expression, *fault.Fault) {
	start := p.curToken.Span
	name := p.curToken.Literal
	switch {
	case p.peekTokenIs(token.STRING):
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		return &ast.InterpString{
			Format: name,
			Parts:  []ast.InterpPart{{Text: p.curToken.Literal}},
			Sp:     span.Cover(start, p.curToken.Span),
		}, nil
	case p.peekTokenIs(token.STRING_START):
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		inner, err := p.parseInterpString()
		if err != nil {
			return nil, err
		}
		s := inner.(*ast.InterpString)
		s.Format = name
		s.Sp = span.Cover(start, s.Sp)
		return s, nil
	default:
		return &ast.Call{Name: "@" + name, Sp: start}, nil
	}
}

func (p *Parser) parseGrouped() (ast.Expression, *fault.Fault) {
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(token.RPAREN); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) parseArrayConstruct() (ast.Expression, *fault.Fault) {
	start := p.curToken.Span
	if p.peekTokenIs(token.RBRACKET) {
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		return &ast.ArrayConstruct{Sp: span.Cover(start, p.curToken.Span)}, nil
	}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	body, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(token.RBRACKET); err != nil {
		return nil, err
	}
	return &ast.ArrayConstruct{Body: body, Sp: span.Cover(start, p.curToken.Span)}, nil
}

func (p *Parser) parseObjectConstruct() (ast.Expression, *fault.Fault) {
	start := p.curToken.Span
	var entries []ast.ObjectEntry
	if p.peekTokenIs(token.RBRACE) {
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		return &ast.ObjectConstruct{Sp: span.Cover(start, p.curToken.Span)}, nil
	}
	for {
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		entry, err := p.parseObjectEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
		if p.peekTokenIs(token.COMMA) {
			if err := p.nextToken(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expectPeek(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.ObjectConstruct{Entries: entries, Sp: span.Cover(start, p.curToken.Span)}, nil
}

func (p *Parser) parseObjectEntry() (ast.ObjectEntry, *fault.Fault) {
	switch {
	case p.curTokenIs(token.VARIABLE):
		name := p.curToken.Literal
		key := ast.Expression(&ast.VarRef{Name: name, Sp: p.curToken.Span})
		if p.peekTokenIs(token.COLON) {
			if err := p.nextToken(); err != nil {
				return ast.ObjectEntry{}, err
			}
			if err := p.nextToken(); err != nil {
				return ast.ObjectEntry{}, err
			}
			val, err := p.parseExpression(COMMA + 1)
			if err != nil {
				return ast.ObjectEntry{}, err
			}
			return ast.ObjectEntry{Key: &ast.Literal{Kind: ast.LiteralString, Str: name}, Value: val}, nil
		}
		return ast.ObjectEntry{Key: key, Value: nil}, nil
	case p.curTokenIs(token.IDENT) || token.IsKeyword(p.curToken.Literal):
		name := p.curToken.Literal
		key := ast.Expression(&ast.Literal{Kind: ast.LiteralString, Str: name, Sp: p.curToken.Span})
		if p.peekTokenIs(token.COLON) {
			if err := p.nextToken(); err != nil {
				return ast.ObjectEntry{}, err
			}
			if err := p.nextToken(); err != nil {
				return ast.ObjectEntry{}, err
			}
			val, err := p.parseExpression(COMMA + 1)
			if err != nil {
				return ast.ObjectEntry{}, err
			}
			return ast.ObjectEntry{Key: key, Value: val}, nil
		}
		return ast.ObjectEntry{Key: key, Value: nil}, nil
	case p.curTokenIs(token.STRING), p.curTokenIs(token.STRING_START):
		key, err := p.parseExpression(LOWEST)
		if err != nil {
			return ast.ObjectEntry{}, err
		}
		if err := p.expectPeek(token.COLON); err != nil {
			return ast.ObjectEntry{}, err
		}
		if err := p.nextToken(); err != nil {
			return ast.ObjectEntry{}, err
		}
		val, err := p.parseExpression(COMMA + 1)
		if err != nil {
			return ast.ObjectEntry{}, err
		}
		return ast.ObjectEntry{Key: key, Value: val}, nil
	case p.curTokenIs(token.LPAREN):
		if err := p.nextToken(); err != nil {
			return ast.ObjectEntry{}, err
		}
		key, err := p.parseExpression(LOWEST)
		if err != nil {
			return ast.ObjectEntry{}, err
		}
		if err := p.expectPeek(token.RPAREN); err != nil {
			return ast.ObjectEntry{}, err
		}
		if err := p.expectPeek(token.COLON); err != nil {
			return ast.ObjectEntry{}, err
		}
		if err := p.nextToken(); err != nil {
			return ast.ObjectEntry{}, err
		}
		val, err := p.parseExpression(COMMA + 1)
		if err != nil {
			return ast.ObjectEntry{}, err
		}
		return ast.ObjectEntry{Key: key, Value: val}, nil
	default:
		return ast.ObjectEntry{}, fault.Parse(p.curToken.Span, "invalid object key %s", p.curToken.Type)
	}
}

func (p *Parser) parseUnary() (ast.Expression, *fault.Fault) {
	start := p.curToken.Span
	op := p.curToken.Type
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	operand, err := p.parseExpression(UNARY)
	if err != nil {
		return nil, err
	}
	return &ast.Unary{Operator: op, Operand: operand, Sp: span.Cover(start, operand.Span())}, nil
}

func (p *Parser) parseIf() (ast.Expression, *fault.Fault) {
	start := p.curToken.Span
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(token.THEN); err != nil {
		return nil, err
	}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	then, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}

	var elifs []ast.ElifBranch
	for p.peekTokenIs(token.ELIF) {
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		elifCond, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		if err := p.expectPeek(token.THEN); err != nil {
			return nil, err
		}
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		elifBody, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		elifs = append(elifs, ast.ElifBranch{Cond: elifCond, Body: elifBody})
	}

	var elseBody ast.Expression
	if p.peekTokenIs(token.ELSE) {
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		elseBody, err = p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectPeek(token.END); err != nil {
		return nil, err
	}
	return &ast.If{Cond: cond, Then: then, Elifs: elifs, Else: elseBody, Sp: span.Cover(start, p.curToken.Span)}, nil
}

func (p *Parser) parseTry() (ast.Expression, *fault.Fault) {
	start := p.curToken.Span
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	body, err := p.parseExpression(POSTFIX)
	if err != nil {
		return nil, err
	}
	var handler ast.Expression
	end := body.Span()
	if p.peekTokenIs(token.CATCH) {
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		handler, err = p.parseExpression(POSTFIX)
		if err != nil {
			return nil, err
		}
		end = handler.Span()
	}
	return &ast.TryCatch{Body: body, Handler: handler, Sp: span.Cover(start, end)}, nil
}

func (p *Parser) parseReduce() (ast.Expression, *fault.Fault) {
	start := p.curToken.Span
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	source, err := p.parseExpression(POSTFIX)
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(token.AS); err != nil {
		return nil, err
	}
	if err := p.expectPeek(token.VARIABLE); err != nil {
		return nil, err
	}
	varName := p.curToken.Literal
	if err := p.expectPeek(token.LPAREN); err != nil {
		return nil, err
	}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	init, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(token.SEMI); err != nil {
		return nil, err
	}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	update, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.Reduce{Source: source, Var: varName, Init: init, Update: update, Sp: span.Cover(start, p.curToken.Span)}, nil
}

func (p *Parser) parseForeach() (ast.Expression, *fault.Fault) {
	start := p.curToken.Span
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	source, err := p.parseExpression(POSTFIX)
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(token.AS); err != nil {
		return nil, err
	}
	if err := p.expectPeek(token.VARIABLE); err != nil {
		return nil, err
	}
	varName := p.curToken.Literal
	if err := p.expectPeek(token.LPAREN); err != nil {
		return nil, err
	}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	init, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(token.SEMI); err != nil {
		return nil, err
	}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	update, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	var extract ast.Expression
	if p.peekTokenIs(token.SEMI) {
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		extract, err = p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectPeek(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.Foreach{Source: source, Var: varName, Init: init, Update: update, Extract: extract, Sp: span.Cover(start, p.curToken.Span)}, nil
}

func (p *Parser) parseLabel() (ast.Expression, *fault.Fault) {
	start := p.curToken.Span
	if err := p.expectPeek(token.VARIABLE); err != nil {
		return nil, err
	}
	name := p.curToken.Literal
	if err := p.expectPeek(token.PIPE); err != nil {
		return nil, err
	}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	body, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	return &ast.Label{Name: name, Body: body, Sp: span.Cover(start, body.Span())}, nil
}

func (p *Parser) parseBreak() (ast.Expression, *fault.Fault) {
	start := p.curToken.Span
	if err := p.expectPeek(token.VARIABLE); err != nil {
		return nil, err
	}
	return &ast.Break{Name: p.curToken.Literal, Sp: span.Cover(start, p.curToken.Span)}, nil
}

// parseFuncDef parses `def name(params): body; rest`. Params are
// separated by `;`, matching jq's own convention (not `,`, which is
// reserved for value generation inside expressions). A `$`-prefixed
// parameter name denotes a by-value parameter; bare names are by-filter.
func (p *Parser) parseFuncDef() (ast.Expression, *fault.Fault) {
	start := p.curToken.Span
	if err := p.expectPeek(token.IDENT); err != nil {
		return nil, err
	}
	name := p.curToken.Literal

	var params []string
	if p.peekTokenIs(token.LPAREN) {
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		for {
			switch p.curToken.Type {
			case token.VARIABLE:
				params = append(params, "$"+p.curToken.Literal)
			case token.IDENT:
				params = append(params, p.curToken.Literal)
			default:
				return nil, fault.Parse(p.curToken.Span, "expected parameter name, got %s", p.curToken.Type)
			}
			if p.peekTokenIs(token.SEMI) {
				if err := p.nextToken(); err != nil {
					return nil, err
				}
				if err := p.nextToken(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
		if err := p.expectPeek(token.RPAREN); err != nil {
			return nil, err
		}
	}

	if err := p.expectPeek(token.COLON); err != nil {
		return nil, err
	}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	body, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(token.SEMI); err != nil {
		return nil, err
	}

	var rest ast.Expression
	end := p.curToken.Span
	if !p.peekTokenIs(token.EOF) {
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		rest, err = p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		end = rest.Span()
	}
	return &ast.FuncDef{Name: name, Params: params, Body: body, Rest: rest, Sp: span.Cover(start, end)}, nil
}

func (p *Parser) parseIdentCall() (ast.Expression, *fault.Fault) {
	start := p.curToken.Span
	name := p.curToken.Literal
	if !p.peekTokenIs(token.LPAREN) {
		return &ast.Call{Name: name, Sp: start}, nil
	}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	args, err := p.parseCallArgs()
	if err != nil {
		return nil, err
	}
	return &ast.Call{Name: name, Args: args, Sp: span.Cover(start, p.curToken.Span)}, nil
}

func (p *Parser) parseNotCall() (ast.Expression, *fault.Fault) {
	return &ast.Call{Name: "not", Sp: p.curToken.Span}, nil
}

// parseCallArgs parses `( arg ; arg ; ... )`, curToken starting on LPAREN.
func (p *Parser) parseCallArgs() ([]ast.Expression, *fault.Fault) {
	var args []ast.Expression
	if p.peekTokenIs(token.RPAREN) {
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		return args, nil
	}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	for {
		arg, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peekTokenIs(token.SEMI) {
			if err := p.nextToken(); err != nil {
				return nil, err
			}
			if err := p.nextToken(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expectPeek(token.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

// --- infix (led) parse functions ---

func (p *Parser) parsePipe(left ast.Expression) (ast.Expression, *fault.Fault) {
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	right, err := p.parseExpression(PIPE - 1) // right-associative
	if err != nil {
		return nil, err
	}
	return &ast.Pipe{Left: left, Right: right, Sp: span.Cover(left.Span(), right.Span())}, nil
}

func (p *Parser) parseComma(left ast.Expression) (ast.Expression, *fault.Fault) {
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	right, err := p.parseExpression(COMMA)
	if err != nil {
		return nil, err
	}
	return &ast.Comma{Left: left, Right: right, Sp: span.Cover(left.Span(), right.Span())}, nil
}

func (p *Parser) parseAlternative(left ast.Expression) (ast.Expression, *fault.Fault) {
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	right, err := p.parseExpression(ALT - 1) // right-associative
	if err != nil {
		return nil, err
	}
	return &ast.Alternative{Left: left, Right: right, Sp: span.Cover(left.Span(), right.Span())}, nil
}

func (p *Parser) parseAssign(left ast.Expression) (ast.Expression, *fault.Fault) {
	op := p.curToken.Type
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	right, err := p.parseExpression(ASSIGNP)
	if err != nil {
		return nil, err
	}
	return &ast.Assign{Operator: op, LHS: left, RHS: right, Sp: span.Cover(left.Span(), right.Span())}, nil
}

func (p *Parser) parseBooleanOp(left ast.Expression) (ast.Expression, *fault.Fault) {
	op := p.curToken.Type
	prec := precedences[op]
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}
	return &ast.Boolean{Operator: op, Left: left, Right: right, Sp: span.Cover(left.Span(), right.Span())}, nil
}

func (p *Parser) parseBinary(left ast.Expression) (ast.Expression, *fault.Fault) {
	op := p.curToken.Type
	prec := precedences[op]
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}
	return &ast.Binary{Operator: op, Left: left, Right: right, Sp: span.Cover(left.Span(), right.Span())}, nil
}

func (p *Parser) parseFieldAccess(left ast.Expression) (ast.Expression, *fault.Fault) {
	switch {
	case p.peekTokenIs(token.IDENT), p.peekTokenIs(token.STRING):
		if err := p.nextToken(); err != nil {
			return nil, err
		}
	case token.IsKeyword(p.peekToken.Literal) && p.peekToken.Literal != "":
		if err := p.nextToken(); err != nil {
			return nil, err
		}
	default:
		return nil, fault.Parse(p.peekToken.Span, "expected field name after '.', got %s", p.peekToken.Type)
	}
	f := &ast.Field{Target: left, Name: p.curToken.Literal, Sp: span.Cover(left.Span(), p.curToken.Span)}
	if p.peekTokenIs(token.QUESTION) {
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		f.Optional = true
		f.Sp = span.Cover(f.Sp, p.curToken.Span)
	}
	return f, nil
}

// parseIndexOrSlice handles `TARGET[...]`, `TARGET[]`, `TARGET[a:b]`.
// curToken is LBRACKET on entry.
func (p *Parser) parseIndexOrSlice(left ast.Expression) (ast.Expression, *fault.Fault) {
	start := left.Span()
	if p.peekTokenIs(token.RBRACKET) {
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		n := &ast.Iterate{Target: left, Sp: span.Cover(start, p.curToken.Span)}
		return p.maybeOptional(n, &n.Optional, &n.Sp)
	}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	if p.curTokenIs(token.COLON) {
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		to, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		if err := p.expectPeek(token.RBRACKET); err != nil {
			return nil, err
		}
		n := &ast.Slice{Target: left, To: to, Sp: span.Cover(start, p.curToken.Span)}
		return p.maybeOptional(n, &n.Optional, &n.Sp)
	}
	first, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if p.peekTokenIs(token.COLON) {
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		if p.peekTokenIs(token.RBRACKET) {
			if err := p.nextToken(); err != nil {
				return nil, err
			}
			n := &ast.Slice{Target: left, From: first, Sp: span.Cover(start, p.curToken.Span)}
			return p.maybeOptional(n, &n.Optional, &n.Sp)
		}
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		to, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		if err := p.expectPeek(token.RBRACKET); err != nil {
			return nil, err
		}
		n := &ast.Slice{Target: left, From: first, To: to, Sp: span.Cover(start, p.curToken.Span)}
		return p.maybeOptional(n, &n.Optional, &n.Sp)
	}
	if err := p.expectPeek(token.RBRACKET); err != nil {
		return nil, err
	}
	n := &ast.Index{Target: left, Index: first, Sp: span.Cover(start, p.curToken.Span)}
	return p.maybeOptional(n, &n.Optional, &n.Sp)
}

func (p *Parser) maybeOptional(n ast.Expression, optional *bool, sp *span.Span) (ast.Expression, *fault.Fault) {
	if p.peekTokenIs(token.QUESTION) {
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		*optional = true
		*sp = span.Cover(*sp, p.curToken.Span)
	}
	return n, nil
}

func (p *Parser) parseTrySuffix(left ast.Expression) (ast.Expression, *fault.Fault) {
	return &ast.TryCatch{Body: left, Sp: span.Cover(left.Span(), p.curToken.Span)}, nil
}

// parseBind handles `SOURCE as PATTERN (?// PATTERN)* | BODY`.
func (p *Parser) parseBind(left ast.Expression) (ast.Expression, *fault.Fault) {
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	pat, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	patterns := []ast.Pattern{pat}
	for p.peekTokenIs(token.QUESTION_SLASH_SLASH) {
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		pat, err = p.parsePattern()
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, pat)
	}
	if err := p.expectPeek(token.PIPE); err != nil {
		return nil, err
	}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	body, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	return &ast.Bind{Source: left, Patterns: patterns, Body: body, Sp: span.Cover(left.Span(), body.Span())}, nil
}

// parsePattern parses a single `as`-destructuring pattern: a bare
// variable, an array pattern `[p, p, ...]`, or an object pattern
// `{key: p, ...}`. curToken is the pattern's first token on entry and
// exit.
func (p *Parser) parsePattern() (ast.Pattern, *fault.Fault) {
	switch p.curToken.Type {
	case token.VARIABLE:
		return ast.Pattern{Var: p.curToken.Literal}, nil
	case token.LBRACKET:
		var elems []ast.Pattern
		if p.peekTokenIs(token.RBRACKET) {
			if err := p.nextToken(); err != nil {
				return ast.Pattern{}, err
			}
			return ast.Pattern{Array: elems}, nil
		}
		for {
			if err := p.nextToken(); err != nil {
				return ast.Pattern{}, err
			}
			elem, err := p.parsePattern()
			if err != nil {
				return ast.Pattern{}, err
			}
			elems = append(elems, elem)
			if p.peekTokenIs(token.COMMA) {
				if err := p.nextToken(); err != nil {
					return ast.Pattern{}, err
				}
				continue
			}
			break
		}
		if err := p.expectPeek(token.RBRACKET); err != nil {
			return ast.Pattern{}, err
		}
		return ast.Pattern{Array: elems}, nil
	case token.LBRACE:
		var entries []ast.ObjectPatEntry
		for {
			if err := p.nextToken(); err != nil {
				return ast.Pattern{}, err
			}
			entry, err := p.parsePatternObjectEntry()
			if err != nil {
				return ast.Pattern{}, err
			}
			entries = append(entries, entry)
			if p.peekTokenIs(token.COMMA) {
				if err := p.nextToken(); err != nil {
					return ast.Pattern{}, err
				}
				continue
			}
			break
		}
		if err := p.expectPeek(token.RBRACE); err != nil {
			return ast.Pattern{}, err
		}
		return ast.Pattern{Object: entries}, nil
	default:
		return ast.Pattern{}, fault.Parse(p.curToken.Span, "expected pattern, got %s", p.curToken.Type)
	}
}

func (p *Parser) parsePatternObjectEntry() (ast.ObjectPatEntry, *fault.Fault) {
	switch {
	case p.curTokenIs(token.VARIABLE):
		name := p.curToken.Literal
		key := ast.Expression(&ast.Literal{Kind: ast.LiteralString, Str: name, Sp: p.curToken.Span})
		if p.peekTokenIs(token.COLON) {
			if err := p.nextToken(); err != nil {
				return ast.ObjectPatEntry{}, err
			}
			if err := p.nextToken(); err != nil {
				return ast.ObjectPatEntry{}, err
			}
			sub, err := p.parsePattern()
			if err != nil {
				return ast.ObjectPatEntry{}, err
			}
			return ast.ObjectPatEntry{Key: key, Pattern: sub}, nil
		}
		return ast.ObjectPatEntry{Key: key, Pattern: ast.Pattern{Var: name}}, nil
	case p.curTokenIs(token.IDENT) || token.IsKeyword(p.curToken.Literal):
		key := ast.Expression(&ast.Literal{Kind: ast.LiteralString, Str: p.curToken.Literal, Sp: p.curToken.Span})
		if err := p.expectPeek(token.COLON); err != nil {
			return ast.ObjectPatEntry{}, err
		}
		if err := p.nextToken(); err != nil {
			return ast.ObjectPatEntry{}, err
		}
		sub, err := p.parsePattern()
		if err != nil {
			return ast.ObjectPatEntry{}, err
		}
		return ast.ObjectPatEntry{Key: key, Pattern: sub}, nil
	case p.curTokenIs(token.STRING):
		key := ast.Expression(&ast.Literal{Kind: ast.LiteralString, Str: p.curToken.Literal, Sp: p.curToken.Span})
		if err := p.expectPeek(token.COLON); err != nil {
			return ast.ObjectPatEntry{}, err
		}
		if err := p.nextToken(); err != nil {
			return ast.ObjectPatEntry{}, err
		}
		sub, err := p.parsePattern()
		if err != nil {
			return ast.ObjectPatEntry{}, err
		}
		return ast.ObjectPatEntry{Key: key, Pattern: sub}, nil
	case p.curTokenIs(token.LPAREN):
		if err := p.nextToken(); err != nil {
			return ast.ObjectPatEntry{}, err
		}
		key, err := p.parseExpression(LOWEST)
		if err != nil {
			return ast.ObjectPatEntry{}, err
		}
		if err := p.expectPeek(token.RPAREN); err != nil {
			return ast.ObjectPatEntry{}, err
		}
		if err := p.expectPeek(token.COLON); err != nil {
			return ast.ObjectPatEntry{}, err
		}
		if err := p.nextToken(); err != nil {
			return ast.ObjectPatEntry{}, err
		}
		sub, err := p.parsePattern()
		if err != nil {
			return ast.ObjectPatEntry{}, err
		}
		return ast.ObjectPatEntry{Key: key, Pattern: sub}, nil
	default:
		return ast.ObjectPatEntry{}, fault.Parse(p.curToken.Span, "invalid object pattern key %s", p.curToken.Type)
	}
}
