// Copyright © 2026 The Loom Authors under an MIT-style license.

package parse

import (
	"fmt"
	"strconv"

	"github.com/loom-lang/loom/expr"
	"github.com/loom-lang/loom/loc"
)

// An Error is a parse error at a source location.
type Error struct {
	Loc loc.Loc
	Msg string
}

func (e *Error) Error() string {
	return e.Loc.String() + ": " + e.Msg
}

// Parser parses source text into an expression tree.
type Parser struct {
	lexer   *Lexer
	current Token
	peek    Token
}

// NewParser returns a Parser over the given source text.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	// Read two tokens to initialize current and peek.
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses a whole function body: a sequence of statements
// separated by newlines or semicolons.
func Parse(input string) (*expr.Block, error) {
	p := NewParser(input)
	return p.parseStmts(TOKEN_EOF)
}

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.current = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *Parser) errorf(tok Token, f string, vs ...interface{}) error {
	return &Error{Loc: tok.Loc, Msg: fmt.Sprintf(f, vs...)}
}

func (p *Parser) expect(t TokenType) error {
	if p.current.Type != t {
		return p.errorf(p.current, "expected %s, got %s", t, p.current.Type)
	}
	p.nextToken()
	return nil
}

func (p *Parser) skipSeparators() {
	for p.current.Type == TOKEN_NEWLINE || p.current.Type == TOKEN_SEMICOLON {
		p.nextToken()
	}
}

// parseStmts parses statements up to the end token.
func (p *Parser) parseStmts(end TokenType) (*expr.Block, error) {
	var stmts []expr.Expr
	for {
		p.skipSeparators()
		if p.current.Type == end {
			p.nextToken()
			return &expr.Block{Exprs: stmts}, nil
		}
		if p.current.Type == TOKEN_EOF {
			return nil, p.errorf(p.current, "expected %s, got %s", end, p.current.Type)
		}
		e, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, e)
		switch p.current.Type {
		case TOKEN_NEWLINE, TOKEN_SEMICOLON, TOKEN_EOF:
		default:
			if p.current.Type != end {
				return nil, p.errorf(p.current, "unexpected %s after statement", p.current.Type)
			}
		}
	}
}

// Binding powers; higher binds tighter. Assignment is right
// associative, everything else is left associative.
var precedence = map[TokenType]int{
	TOKEN_ASSIGN: 1,
	TOKEN_OR:     2,
	TOKEN_AND:    3,
	TOKEN_EQ:     4,
	TOKEN_NE:     4,
	TOKEN_LT:     5,
	TOKEN_GT:     5,
	TOKEN_LE:     5,
	TOKEN_GE:     5,
	TOKEN_PLUS:   6,
	TOKEN_MINUS:  6,
	TOKEN_STAR:   7,
	TOKEN_SLASH:  7,
}

// parseExpr parses an expression by precedence climbing.
func (p *Parser) parseExpr(minPrec int) (expr.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		prec, ok := precedence[p.current.Type]
		if !ok || prec < minPrec {
			return left, nil
		}
		op := p.current
		p.nextToken()
		// An operator at the end of a line continues the expression.
		for p.current.Type == TOKEN_NEWLINE {
			p.nextToken()
		}
		next := prec + 1
		if op.Type == TOKEN_ASSIGN {
			next = prec
		}
		right, err := p.parseExpr(next)
		if err != nil {
			return nil, err
		}
		left = &expr.Call{
			Head: &expr.Sym{Name: op.Value},
			Args: []expr.Expr{left, right},
		}
	}
}

func (p *Parser) parseUnary() (expr.Expr, error) {
	switch p.current.Type {
	case TOKEN_MINUS, TOKEN_NOT:
		op := p.current
		p.nextToken()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &expr.Call{Head: &expr.Sym{Name: op.Value}, Args: []expr.Expr{operand}}, nil
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression and any call suffixes.
func (p *Parser) parsePostfix() (expr.Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.current.Type == TOKEN_LPAREN {
		open := p.current
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		e, err = p.makeCall(open, e, args)
		if err != nil {
			return nil, err
		}
	}
	return e, nil
}

// makeCall builds a call node, recognizing the yield and return forms.
func (p *Parser) makeCall(open Token, head expr.Expr, args []expr.Expr) (expr.Expr, error) {
	h, ok := head.(*expr.Sym)
	if !ok {
		return &expr.Call{Head: head, Args: args}, nil
	}
	switch h.Name {
	case "yield":
		if len(args) > 1 {
			return nil, p.errorf(open, "yield takes at most one value")
		}
		y := &expr.Yield{}
		if len(args) == 1 {
			y.Val = args[0]
		}
		return y, nil
	case "return":
		if len(args) > 1 {
			return nil, p.errorf(open, "return takes at most one value")
		}
		r := &expr.Return{}
		if len(args) == 1 {
			r.Val = args[0]
		}
		return r, nil
	}
	return &expr.Call{Head: head, Args: args}, nil
}

func (p *Parser) parseArgs() ([]expr.Expr, error) {
	if err := p.expect(TOKEN_LPAREN); err != nil {
		return nil, err
	}
	var args []expr.Expr
	for p.current.Type != TOKEN_RPAREN {
		a, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.current.Type != TOKEN_COMMA {
			break
		}
		p.nextToken()
	}
	if err := p.expect(TOKEN_RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (expr.Expr, error) {
	tok := p.current
	switch tok.Type {
	case TOKEN_INT:
		v, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, p.errorf(tok, "bad integer %q", tok.Value)
		}
		p.nextToken()
		return &expr.Lit{Val: v}, nil
	case TOKEN_FLOAT:
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, p.errorf(tok, "bad number %q", tok.Value)
		}
		p.nextToken()
		return &expr.Lit{Val: v}, nil
	case TOKEN_STRING:
		p.nextToken()
		return &expr.Lit{Val: tok.Value}, nil
	case TOKEN_TRUE:
		p.nextToken()
		return &expr.Lit{Val: true}, nil
	case TOKEN_FALSE:
		p.nextToken()
		return &expr.Lit{Val: false}, nil
	case TOKEN_NULL:
		p.nextToken()
		return &expr.Lit{}, nil
	case TOKEN_IDENT:
		p.nextToken()
		return &expr.Sym{Name: tok.Value}, nil
	case TOKEN_BREAK:
		p.nextToken()
		return &expr.Break{}, nil
	case TOKEN_NEXT:
		p.nextToken()
		return &expr.Next{}, nil
	case TOKEN_LPAREN:
		p.nextToken()
		e, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		if err := p.expect(TOKEN_RPAREN); err != nil {
			return nil, err
		}
		return e, nil
	case TOKEN_LBRACE:
		p.nextToken()
		return p.parseStmts(TOKEN_RBRACE)
	case TOKEN_IF:
		return p.parseIf()
	case TOKEN_REPEAT:
		return p.parseRepeat()
	case TOKEN_WHILE:
		return p.parseWhile()
	case TOKEN_FOR:
		return p.parseFor()
	case TOKEN_ILLEGAL:
		return nil, p.errorf(tok, "%s", tok.Value)
	default:
		return nil, p.errorf(tok, "unexpected %s", tok.Type)
	}
}

// parseBranch parses the body of a structural form: a braced block or
// a single expression, possibly starting on the next line.
func (p *Parser) parseBranch() (expr.Expr, error) {
	for p.current.Type == TOKEN_NEWLINE {
		p.nextToken()
	}
	return p.parseExpr(1)
}

func (p *Parser) parseIf() (expr.Expr, error) {
	p.nextToken() // consume if
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBranch()
	if err != nil {
		return nil, err
	}
	n := &expr.If{Cond: cond, Then: then}
	// An else may start on the next line.
	if p.current.Type == TOKEN_NEWLINE && p.peek.Type == TOKEN_ELSE {
		p.nextToken()
	}
	if p.current.Type == TOKEN_ELSE {
		p.nextToken()
		n.Else, err = p.parseBranch()
		if err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (p *Parser) parseCondition() (expr.Expr, error) {
	if err := p.expect(TOKEN_LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(1)
	if err != nil {
		return nil, err
	}
	if err := p.expect(TOKEN_RPAREN); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *Parser) parseRepeat() (expr.Expr, error) {
	p.nextToken() // consume repeat
	body, err := p.parseBranch()
	if err != nil {
		return nil, err
	}
	return &expr.Repeat{Body: body}, nil
}

func (p *Parser) parseWhile() (expr.Expr, error) {
	p.nextToken() // consume while
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBranch()
	if err != nil {
		return nil, err
	}
	return &expr.While{Cond: cond, Body: body}, nil
}

func (p *Parser) parseFor() (expr.Expr, error) {
	p.nextToken() // consume for
	if err := p.expect(TOKEN_LPAREN); err != nil {
		return nil, err
	}
	name := p.current
	if err := p.expect(TOKEN_IDENT); err != nil {
		return nil, err
	}
	if err := p.expect(TOKEN_IN); err != nil {
		return nil, err
	}
	seq, err := p.parseExpr(1)
	if err != nil {
		return nil, err
	}
	if err := p.expect(TOKEN_RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseBranch()
	if err != nil {
		return nil, err
	}
	return &expr.For{Var: name.Value, Seq: seq, Body: body}, nil
}
