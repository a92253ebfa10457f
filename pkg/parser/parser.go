// Package parser implements Slate's recursive-descent, Pratt-precedence
// parser: two-token lookahead (curTok/peekTok), an accumulated error list
// rather than panic-on-first-error, in the same organizational style as
// the teacher's own `pkg/parser/parser.go` — rebuilt against the
// C/Ruby-flavored grammar of SPEC_FULL.md §D instead of the teacher's
// Smalltalk unary/binary/keyword message precedence.
package parser

import (
	"fmt"
	"strconv"

	"github.com/edadma/slate-sub000/pkg/ast"
	"github.com/edadma/slate-sub000/pkg/lexer"
	"github.com/edadma/slate-sub000/pkg/token"
)

type precedence int

const (
	precNone precedence = iota
	precAssign
	precOr
	precAnd
	precEquality
	precComparison
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precAdditive
	precMultiplicative
	precUnary
	precPower
	precPostfix
)

var precedences = map[token.Type]precedence{
	token.ASSIGN:   precAssign,
	token.OR:       precOr,
	token.AND:      precAnd,
	token.XOR:      precAnd,
	token.EQ:       precEquality,
	token.NEQ:      precEquality,
	token.LT:       precComparison,
	token.LE:       precComparison,
	token.GT:       precComparison,
	token.GE:       precComparison,
	token.PIPE:     precBitOr,
	token.CARET:    precBitXor,
	token.AMP:      precBitAnd,
	token.SHL:      precShift,
	token.SHR:      precShift,
	token.PLUS:     precAdditive,
	token.MINUS:    precAdditive,
	token.DOTDOT:   precAdditive,
	token.DOTDOTEQ: precAdditive,
	token.STAR:     precMultiplicative,
	token.SLASH:    precMultiplicative,
	token.MOD:      precMultiplicative,
	token.STARSTAR: precPower,
	token.LPAREN:   precPostfix,
	token.LBRACKET: precPostfix,
	token.DOT:      precPostfix,
}

// Parser consumes a token stream and produces an *ast.Program.
type Parser struct {
	l       *lexer.Lexer
	curTok  token.Token
	peekTok token.Token
	errors  []string
}

// New returns a Parser reading from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

// Errors returns every parse error accumulated so far.
func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) next() {
	p.curTok = p.peekTok
	p.peekTok = p.l.NextToken()
}

func (p *Parser) curIs(t token.Type) bool  { return p.curTok.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peekTok.Type == t }

func (p *Parser) expect(t token.Type) bool {
	if p.peekIs(t) {
		p.next()
		return true
	}
	p.errorf("expected next token to be %s, got %s instead", t, p.peekTok.Type)
	return false
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, fmt.Sprintf("line %d: %s", p.curTok.Line, fmt.Sprintf(format, args...)))
}

func (p *Parser) peekPrecedence() precedence {
	if pr, ok := precedences[p.peekTok.Type]; ok {
		return pr
	}
	return precNone
}

// ParseProgram parses the entire token stream into a Program.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.curIs(token.EOF) {
		if stmt := p.parseStatement(); stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		p.next()
	}
	return prog
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curTok.Type {
	case token.LET:
		return p.parseLetStatement()
	case token.CLASS:
		return p.parseClassDeclaration()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForInStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.BREAK:
		return &ast.BreakStatement{}
	case token.CONTINUE:
		return &ast.ContinueStatement{}
	case token.LBRACE:
		return p.parseBlockStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseLetStatement() ast.Statement {
	if !p.expect(token.IDENT) {
		return nil
	}
	name := p.curTok.Literal
	if !p.expect(token.ASSIGN) {
		return nil
	}
	p.next()
	value := p.parseExpression(precAssign)
	p.skipSemicolon()

	if fn, ok := value.(*ast.ArrowFunction); ok {
		return &ast.FunctionDeclaration{Name: name, Params: fn.Params, ExprBody: fn.ExprBody, BlockBody: fn.BlockBody}
	}
	return &ast.LetStatement{Name: name, Value: value}
}

func (p *Parser) skipSemicolon() {
	if p.peekIs(token.SEMICOLON) {
		p.next()
	}
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{}
	p.next() // consume {
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if stmt := p.parseStatement(); stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.next()
	}
	return block
}

func (p *Parser) parseIfStatement() ast.Statement {
	if !p.expect(token.LPAREN) {
		return nil
	}
	p.next()
	cond := p.parseExpression(precAssign)
	if !p.expect(token.RPAREN) {
		return nil
	}
	if !p.expect(token.LBRACE) {
		return nil
	}
	then := p.parseBlockStatement()
	stmt := &ast.IfStatement{Condition: cond, Then: then}
	if p.peekIs(token.ELSE) {
		p.next()
		if p.peekIs(token.IF) {
			p.next()
			stmt.Else = p.parseIfStatement()
		} else if p.expect(token.LBRACE) {
			stmt.Else = p.parseBlockStatement()
		}
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	if !p.expect(token.LPAREN) {
		return nil
	}
	p.next()
	cond := p.parseExpression(precAssign)
	if !p.expect(token.RPAREN) || !p.expect(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStatement()
	return &ast.WhileStatement{Condition: cond, Body: body}
}

func (p *Parser) parseForInStatement() ast.Statement {
	if !p.expect(token.LPAREN) {
		return nil
	}
	if !p.expect(token.IDENT) {
		return nil
	}
	name := p.curTok.Literal
	if !p.expect(token.IN) {
		return nil
	}
	p.next()
	iterable := p.parseExpression(precAssign)
	if !p.expect(token.RPAREN) || !p.expect(token.LBRACE) {
		return nil
	}
	body := p.parseBlockStatement()
	return &ast.ForInStatement{Var: name, Iterable: iterable, Body: body}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{}
	if p.peekIs(token.SEMICOLON) || p.peekIs(token.RBRACE) {
		return stmt
	}
	p.next()
	stmt.Value = p.parseExpression(precAssign)
	p.skipSemicolon()
	return stmt
}

func (p *Parser) parseClassDeclaration() ast.Statement {
	if !p.expect(token.IDENT) {
		return nil
	}
	decl := &ast.ClassDeclaration{Name: p.curTok.Literal}
	if p.peekIs(token.COLON) {
		p.next()
		if !p.expect(token.IDENT) {
			return nil
		}
		decl.SuperClass = p.curTok.Literal
	}
	if !p.expect(token.LBRACE) {
		return nil
	}
	p.next()
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if p.curIs(token.IDENT) && (p.peekIs(token.COMMA) || p.isFieldListEnd()) {
			decl.Fields = append(decl.Fields, p.curTok.Literal)
			for p.peekIs(token.COMMA) {
				p.next()
				p.next()
				decl.Fields = append(decl.Fields, p.curTok.Literal)
			}
			p.skipSemicolon()
		} else if p.curIs(token.IDENT) && p.peekIs(token.LPAREN) {
			decl.Methods = append(decl.Methods, p.parseMethodDeclaration())
		}
		p.next()
	}
	return decl
}

// isFieldListEnd distinguishes a bare field-name line (`x, y`) from a
// method definition (`x(...)`): a field line's identifier is followed by
// a semicolon, a newline (i.e. the next real token is another identifier
// or `}`), or a comma.
func (p *Parser) isFieldListEnd() bool {
	return p.peekIs(token.SEMICOLON) || p.peekIs(token.IDENT) || p.peekIs(token.RBRACE)
}

func (p *Parser) parseMethodDeclaration() *ast.MethodDeclaration {
	m := &ast.MethodDeclaration{Name: p.curTok.Literal}
	p.next() // consume name, now at (
	m.Params = p.parseParamList()
	if !p.expect(token.LBRACE) {
		return m
	}
	m.Body = p.parseBlockStatement()
	return m
}

func (p *Parser) parseParamList() []string {
	var params []string
	if !p.curIs(token.LPAREN) {
		return params
	}
	if p.peekIs(token.RPAREN) {
		p.next()
		return params
	}
	p.next()
	params = append(params, p.curTok.Literal)
	for p.peekIs(token.COMMA) {
		p.next()
		p.next()
		params = append(params, p.curTok.Literal)
	}
	p.expect(token.RPAREN)
	return params
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	expr := p.parseExpression(precNone)
	p.skipSemicolon()
	return &ast.ExpressionStatement{Expr: expr}
}

// parseExpression is the Pratt-parser entry point: parse a prefix
// expression, then keep folding in infix/postfix operators whose
// precedence exceeds minPrec.
func (p *Parser) parseExpression(minPrec precedence) ast.Expression {
	left := p.parsePrefix()
	for !p.peekIs(token.SEMICOLON) && minPrec < p.peekPrecedence() {
		p.next()
		left = p.parseInfix(left)
	}
	return left
}

func (p *Parser) parsePrefix() ast.Expression {
	switch p.curTok.Type {
	case token.INT:
		return p.parseIntLiteral()
	case token.FLOAT:
		return p.parseFloatLiteral()
	case token.STRING:
		return &ast.StringLiteral{Value: p.curTok.Literal}
	case token.TRUE:
		return &ast.BoolLiteral{Value: true}
	case token.FALSE:
		return &ast.BoolLiteral{Value: false}
	case token.NULL:
		return &ast.NullLiteral{}
	case token.SELF:
		return &ast.SelfExpr{}
	case token.SUPER:
		return p.parseSuperExpr()
	case token.IDENT:
		return p.parseIdentifierOrArrow()
	case token.LPAREN:
		return p.parseParenOrArrow()
	case token.LBRACKET:
		return p.parseArrayLiteral()
	case token.LBRACE:
		return p.parseObjectLiteral()
	case token.MINUS:
		p.next()
		return &ast.UnaryExpr{Operator: "-", Operand: p.parseExpression(precUnary)}
	case token.NOT:
		p.next()
		return &ast.UnaryExpr{Operator: "not", Operand: p.parseExpression(precUnary)}
	case token.TILDE:
		p.next()
		return &ast.UnaryExpr{Operator: "~", Operand: p.parseExpression(precUnary)}
	default:
		p.errorf("unexpected token %s", p.curTok.Type)
		return nil
	}
}

func (p *Parser) parseIntLiteral() ast.Expression {
	n, err := strconv.ParseInt(p.curTok.Literal, 10, 64)
	if err != nil || n < -(1<<31) || n > (1<<31-1) {
		// Out-of-range integer literals are still valid source: they are
		// compiled as a float constant rather than rejected, since Slate's
		// numeric tower exists precisely to keep arithmetic going past
		// Int32 (the compiler itself never emits a BigInt constant).
		f, _ := strconv.ParseFloat(p.curTok.Literal, 64)
		return &ast.FloatLiteral{Value: f}
	}
	return &ast.IntLiteral{Value: int32(n)}
}

// parseSuperExpr parses `super.name`, the only legal use of `super` — it
// always resolves to a method lookup on the enclosing method's home
// class's parent, never to a freestanding value.
func (p *Parser) parseSuperExpr() ast.Expression {
	sup := &ast.SuperExpr{}
	if !p.expect(token.DOT) {
		return sup
	}
	if !p.expect(token.IDENT) {
		return sup
	}
	return &ast.GetExpr{Receiver: sup, Name: p.curTok.Literal}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	f, err := strconv.ParseFloat(p.curTok.Literal, 64)
	if err != nil {
		p.errorf("invalid float literal %q", p.curTok.Literal)
	}
	return &ast.FloatLiteral{Value: f}
}

// parseIdentifierOrArrow handles both a bare identifier reference and a
// single-parameter arrow function without parentheses (`x -> x * x`), the
// common case in the filter/map chaining idiom.
func (p *Parser) parseIdentifierOrArrow() ast.Expression {
	name := p.curTok.Literal
	if p.peekIs(token.ARROW) {
		p.next()
		return p.finishArrow([]string{name})
	}
	return &ast.Identifier{Name: name}
}

// parseParenOrArrow disambiguates `(expr)` from `(params) -> body` by
// scanning ahead for an arrow after the matching close-paren.
func (p *Parser) parseParenOrArrow() ast.Expression {
	if p.looksLikeArrowParams() {
		params := p.parseParamList()
		if !p.expect(token.ARROW) {
			return nil
		}
		return p.finishArrow(params)
	}
	p.next()
	expr := p.parseExpression(precAssign)
	p.expect(token.RPAREN)
	return expr
}

func (p *Parser) finishArrow(params []string) ast.Expression {
	fn := &ast.ArrowFunction{Params: params}
	if p.peekIs(token.LBRACE) {
		p.next()
		fn.BlockBody = p.parseBlockStatement()
	} else {
		p.next()
		fn.ExprBody = p.parseExpression(precAssign)
	}
	return fn
}

// looksLikeArrowParams distinguishes `(a, b) -> body` from a parenthesized
// expression `(a + b)` by scanning forward from a cloned copy of the lexer
// (Lexer holds only value fields, so copying it is just a cursor snapshot)
// to find the matching close-paren and checking whether `->` follows it.
// The real parser state (p.l, curTok, peekTok) is untouched by the scan.
func (p *Parser) looksLikeArrowParams() bool {
	if p.peekIs(token.RPAREN) {
		return true
	}
	lx := *p.l
	depth := 1
	t := p.peekTok
	for {
		switch t.Type {
		case token.EOF:
			return false
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				return lx.NextToken().Type == token.ARROW
			}
		}
		t = lx.NextToken()
	}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	lit := &ast.ArrayLiteral{}
	if p.peekIs(token.RBRACKET) {
		p.next()
		return lit
	}
	p.next()
	lit.Elements = append(lit.Elements, p.parseExpression(precAssign))
	for p.peekIs(token.COMMA) {
		p.next()
		p.next()
		lit.Elements = append(lit.Elements, p.parseExpression(precAssign))
	}
	p.expect(token.RBRACKET)
	return lit
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	lit := &ast.ObjectLiteral{}
	if p.peekIs(token.RBRACE) {
		p.next()
		return lit
	}
	p.next()
	lit.Entries = append(lit.Entries, p.parseObjectEntry())
	for p.peekIs(token.COMMA) {
		p.next()
		p.next()
		lit.Entries = append(lit.Entries, p.parseObjectEntry())
	}
	p.expect(token.RBRACE)
	return lit
}

func (p *Parser) parseObjectEntry() ast.ObjectEntry {
	key := p.curTok.Literal
	p.expect(token.COLON)
	p.next()
	return ast.ObjectEntry{Key: key, Value: p.parseExpression(precAssign)}
}

func (p *Parser) parseInfix(left ast.Expression) ast.Expression {
	switch p.curTok.Type {
	case token.ASSIGN:
		p.next()
		value := p.parseExpression(precAssign - 1)
		return &ast.AssignExpr{Target: left, Value: value}
	case token.AND:
		return p.parseLogical(left, "and", precAnd)
	case token.OR:
		return p.parseLogical(left, "or", precOr)
	case token.XOR:
		return p.parseLogical(left, "xor", precAnd)
	case token.LPAREN:
		return p.parseCall(left)
	case token.LBRACKET:
		return p.parseIndex(left)
	case token.DOT:
		return p.parseGet(left)
	case token.DOTDOT:
		p.next()
		right := p.parseExpression(precAdditive)
		return &ast.RangeLiteral{From: left, To: right}
	case token.DOTDOTEQ:
		p.next()
		right := p.parseExpression(precAdditive)
		return &ast.RangeLiteral{From: left, To: right, Inclusive: true}
	default:
		return p.parseBinary(left)
	}
}

func (p *Parser) parseLogical(left ast.Expression, op string, prec precedence) ast.Expression {
	p.next()
	right := p.parseExpression(prec)
	return &ast.LogicalExpr{Operator: op, Left: left, Right: right}
}

func (p *Parser) parseBinary(left ast.Expression) ast.Expression {
	op := p.curTok.Literal
	prec := p.currentPrecedence()
	rightAssoc := p.curTok.Type == token.STARSTAR
	p.next()
	nextMin := prec
	if !rightAssoc {
		// left-associative: parse the right operand at one level higher
	} else {
		nextMin = prec - 1
	}
	right := p.parseExpression(nextMin)
	return &ast.BinaryExpr{Operator: op, Left: left, Right: right}
}

func (p *Parser) currentPrecedence() precedence {
	if pr, ok := precedences[p.curTok.Type]; ok {
		return pr
	}
	return precNone
}

func (p *Parser) parseCall(callee ast.Expression) ast.Expression {
	call := &ast.CallExpr{Callee: callee}
	if p.peekIs(token.RPAREN) {
		p.next()
		return call
	}
	p.next()
	call.Args = append(call.Args, p.parseExpression(precAssign))
	for p.peekIs(token.COMMA) {
		p.next()
		p.next()
		call.Args = append(call.Args, p.parseExpression(precAssign))
	}
	p.expect(token.RPAREN)
	return call
}

func (p *Parser) parseIndex(receiver ast.Expression) ast.Expression {
	p.next()
	idx := p.parseExpression(precAssign)
	p.expect(token.RBRACKET)
	return &ast.IndexExpr{Receiver: receiver, Index: idx}
}

func (p *Parser) parseGet(receiver ast.Expression) ast.Expression {
	if !p.expect(token.IDENT) {
		return receiver
	}
	return &ast.GetExpr{Receiver: receiver, Name: p.curTok.Literal}
}
