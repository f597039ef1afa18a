package parser

import (
	"milan/internal/codegen"
	"milan/internal/lexer"
	"milan/internal/semantic"
)

// =========================================================================
// Expressions
//
// Lowest to highest binding power:
//
//	expression -> orExpr { ('xor' | '->') orExpr }
//	orExpr     -> andExpr { 'or' andExpr }
//	andExpr    -> relation { 'and' relation }
//	relation   -> arithmetic [ cmp arithmetic ]
//	arithmetic -> term { ('+' | '-') term }
//	term       -> factor { ('*' | '/') factor }
//
// Every procedure returns the type of the value it left on the stack.
// =========================================================================

func (p *Parser) expression() semantic.Type {
	typ := p.orExpr()
	for p.see(lexer.XOR) || p.see(lexer.IMPL) {
		op, line := p.scanner.Token(), p.line()
		p.next()
		right := p.orExpr()
		p.checkLogical(lexer.Describe(op), typ, right, line)
		if op == lexer.XOR {
			p.emitArg(codegen.Compare, codegen.CmpNe)
		} else {
			// a -> b holds exactly when a <= b for 0/1 values.
			p.emitArg(codegen.Compare, codegen.CmpLe)
		}
		typ = semantic.Bool
	}
	return typ
}

func (p *Parser) orExpr() semantic.Type {
	typ := p.andExpr()
	for p.see(lexer.OR) {
		line := p.line()
		p.next()
		right := p.andExpr()
		p.checkLogical("'or'", typ, right, line)
		p.emitOr()
		typ = semantic.Bool
	}
	return typ
}

func (p *Parser) andExpr() semantic.Type {
	typ := p.relation()
	for p.see(lexer.AND) {
		line := p.line()
		p.next()
		right := p.relation()
		p.checkLogical("'and'", typ, right, line)
		p.emit(codegen.Mult)
		typ = semantic.Bool
	}
	return typ
}

// relation compares two arithmetic values. At most one comparison is allowed.
func (p *Parser) relation() semantic.Type {
	left := p.arithmetic()
	if !p.see(lexer.CMP) {
		return left
	}
	cmp, line := p.scanner.Cmp(), p.line()
	p.next()
	right := p.arithmetic()

	switch {
	case left != right:
		p.diags.Typef(line, "comparison operator is not defined for different type variables (%s %s %s).", left, cmp, right)
		p.emitArg(codegen.Compare, cmp.Code())
	case left == semantic.Complex:
		p.compareComplex(cmp, line)
	default:
		p.emitArg(codegen.Compare, cmp.Code())
	}
	return semantic.Bool
}

func (p *Parser) arithmetic() semantic.Type {
	typ := p.term()
	for p.see(lexer.ADDOP) {
		op, line := p.scanner.Arith(), p.line()
		p.next()
		right := p.term()
		typ = p.binary(op, typ, right, line)
	}
	return typ
}

func (p *Parser) term() semantic.Type {
	typ := p.factor()
	for p.see(lexer.MULOP) {
		op, line := p.scanner.Arith(), p.line()
		p.next()
		right := p.factor()
		typ = p.binary(op, typ, right, line)
	}
	return typ
}

// factor -> number | complex | boolean | ident | '-' factor | '!' factor
//
//	| '(' expression ')' | 'read' [ '(' type ')' ]
func (p *Parser) factor() semantic.Type {
	switch {
	case p.see(lexer.NUMBER):
		p.emitArg(codegen.Push, p.scanner.Int())
		p.next()
		return semantic.Int

	case p.see(lexer.COMPLEX):
		re, im := p.scanner.Complex()
		p.next()
		p.emitArg(codegen.Push, im)
		p.emitArg(codegen.Push, re)
		return semantic.Complex

	case p.see(lexer.BOOLEAN):
		value := 0
		if p.scanner.Bool() {
			value = 1
		}
		p.next()
		p.emitArg(codegen.Push, value)
		return semantic.Bool

	case p.see(lexer.IDENT):
		return p.variable()

	case p.see(lexer.ADDOP) && p.scanner.Arith() == lexer.Minus:
		line := p.line()
		p.next()
		typ := p.factor()
		if typ == semantic.Bool {
			p.diags.Typef(line, "unary minus is not defined for bool.")
		}
		p.negate(typ)
		return typ

	case p.see(lexer.NOT):
		line := p.line()
		p.next()
		if typ := p.factor(); typ != semantic.Bool {
			p.diags.Typef(line, "operator '!' is only defined for bool, not %s.", typ)
		}
		p.emitArg(codegen.Push, 0)
		p.emitArg(codegen.Compare, codegen.CmpEq)
		return semantic.Bool

	case p.match(lexer.LPAREN):
		typ := p.expression()
		p.mustBe(lexer.RPAREN)
		return typ

	case p.match(lexer.READ):
		return p.read()
	}

	p.diags.Syntaxf(p.line(), "expression expected.")
	return semantic.Int
}

// variable loads an identifier. Reading a variable that was never assigned
// declares it as an int.
func (p *Parser) variable() semantic.Type {
	name, line := p.scanner.Text(), p.line()
	p.next()

	sym := p.symbols.Declare(name)
	if p.symbols.Fix(sym, semantic.Int) {
		p.diags.Warnf(line, "variable %s is used before it is assigned a value.", name)
	}
	p.load(sym)
	return sym.Type
}

// read -> 'read' [ '(' type ')' ]
func (p *Parser) read() semantic.Type {
	if !p.match(lexer.LPAREN) {
		p.emit(codegen.Input)
		return semantic.Int
	}

	typ := semantic.Int
	switch {
	case p.see(lexer.TYPE):
		typ, _ = semantic.LookupType(p.scanner.TypeName())
		p.next()
	case p.see(lexer.IDENT):
		p.diags.Typef(p.line(), "unknown type %s in read.", p.scanner.Text())
		p.next()
	default:
		p.mustBe(lexer.TYPE)
	}

	switch typ {
	case semantic.Bool:
		p.emit(codegen.Input)
		p.emitArg(codegen.Push, 0)
		p.emitArg(codegen.Compare, codegen.CmpNe)
	case semantic.Complex:
		p.readComplex()
	default:
		p.emit(codegen.Input)
	}

	p.mustBe(lexer.RPAREN)
	return typ
}

// checkLogical reports non-bool operands of a logical operator.
func (p *Parser) checkLogical(op string, left, right semantic.Type, line int) {
	if left != semantic.Bool || right != semantic.Bool {
		p.diags.Typef(line, "operator %s is only defined for bool operands, not %s and %s.", op, left, right)
	}
}

// emitOr turns the sum of two 0/1 values into 0/1.
func (p *Parser) emitOr() {
	p.emit(codegen.Add)
	p.emitArg(codegen.Push, 1)
	p.emitArg(codegen.Compare, codegen.CmpGe)
}
