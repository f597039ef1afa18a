package parser

import (
	"milan/internal/codegen"
	"milan/internal/lexer"
	"milan/internal/semantic"
)

// =========================================================================
// Program and statements
// =========================================================================

// program -> 'begin' statementList 'end'
func (p *Parser) program() {
	p.mustBe(lexer.BEGIN)
	p.statementList()
	p.mustBe(lexer.END)
	p.emit(codegen.Stop)

	if !p.see(lexer.EOF) {
		p.diags.Warnf(p.line(), "text after 'end' is ignored.")
	}
}

// statementList -> [ statement { ';' statement } ]
//
// The list is empty when the next token closes the enclosing block.
func (p *Parser) statementList() {
	if p.see(lexer.END) || p.see(lexer.OD) || p.see(lexer.ELSE) || p.see(lexer.FI) {
		return
	}
	for {
		p.statement()
		if !p.match(lexer.SEMICOLON) {
			return
		}
	}
}

func (p *Parser) statement() {
	switch {
	case p.see(lexer.IDENT):
		p.assignment()
	case p.match(lexer.IF):
		p.conditional()
	case p.match(lexer.WHILE):
		p.loop()
	case p.match(lexer.WRITE):
		p.output()
	default:
		p.diags.Syntaxf(p.line(), "statement expected.")
	}
}

// assignment -> ident ':=' expression
//
// The first assignment fixes the variable's type; later assignments must
// agree with it.
func (p *Parser) assignment() {
	name, line := p.scanner.Text(), p.line()
	sym := p.symbols.Declare(name)
	p.next()
	p.mustBe(lexer.ASSIGN)

	typ := p.expression()
	if !p.symbols.Fix(sym, typ) && sym.Type != typ {
		p.diags.Typef(line, "variable %s is %s and cannot be assigned a %s value.", name, sym.Type, typ)
	}
	p.store(sym, typ)
}

// conditional -> 'if' expression 'then' statementList [ 'else' statementList ] 'fi'
func (p *Parser) conditional() {
	p.condition("if")
	jumpNo := p.code.Reserve()

	p.mustBe(lexer.THEN)
	p.statementList()

	if p.match(lexer.ELSE) {
		jump := p.code.Reserve()
		p.patch(jumpNo, codegen.JumpIfFalse, p.code.CurrentAddress())
		p.statementList()
		p.patch(jump, codegen.Jump, p.code.CurrentAddress())
	} else {
		p.patch(jumpNo, codegen.JumpIfFalse, p.code.CurrentAddress())
	}

	p.mustBe(lexer.FI)
}

// loop -> 'while' expression 'do' statementList 'od'
func (p *Parser) loop() {
	conditionAddress := p.code.CurrentAddress()
	p.condition("while")
	jumpNo := p.code.Reserve()

	p.mustBe(lexer.DO)
	p.statementList()
	p.mustBe(lexer.OD)

	p.emitArg(codegen.Jump, conditionAddress)
	p.patch(jumpNo, codegen.JumpIfFalse, p.code.CurrentAddress())
}

// output -> 'write' '(' expression ')'
func (p *Parser) output() {
	p.mustBe(lexer.LPAREN)
	typ := p.expression()
	p.mustBe(lexer.RPAREN)

	for i := 0; i < typ.Width(); i++ {
		p.emit(codegen.Print)
	}
}

// condition parses the controlling expression of an if or while.
func (p *Parser) condition(construct string) {
	line := p.line()
	if typ := p.expression(); typ != semantic.Bool {
		p.diags.Typef(line, "condition of %s must be bool, not %s.", construct, typ)
	}
}
