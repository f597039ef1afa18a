package parser

import (
	"milan/internal/codegen"
	"milan/internal/lexer"
	"milan/internal/semantic"
)

// =========================================================================
// Lowering of typed operators
//
// A complex value occupies two stack cells, imaginary below and real on top.
// Sequences that need to reorder cells park them in a scratch block acquired
// for the duration of the sequence only.
// =========================================================================

// binary applies an arithmetic operator to the two values on top of the stack
// and returns the type of the result.
func (p *Parser) binary(op lexer.Arith, left, right semantic.Type, line int) semantic.Type {
	typ := semantic.Promote(left, right)
	if left != typ {
		p.widenLeft(typ)
	}
	if right != typ {
		p.widenRight(typ)
	}

	switch typ {
	case semantic.Bool:
		p.boolArith(op, line)
	case semantic.Complex:
		p.complexArith(op)
	default:
		p.intArith(op)
	}
	return typ
}

func (p *Parser) intArith(op lexer.Arith) {
	switch op {
	case lexer.Plus:
		p.emit(codegen.Add)
	case lexer.Minus:
		p.emit(codegen.Sub)
	case lexer.Multiply:
		p.emit(codegen.Mult)
	case lexer.Divide:
		p.emit(codegen.Div)
	}
}

// boolArith gives the arithmetic operators their logical reading on 0/1
// values: '+' is or, '-' is xor, '*' is and. Division has no meaning.
func (p *Parser) boolArith(op lexer.Arith, line int) {
	switch op {
	case lexer.Plus:
		p.emitOr()
	case lexer.Minus:
		p.emitArg(codegen.Compare, codegen.CmpNe)
	case lexer.Multiply:
		p.emit(codegen.Mult)
	case lexer.Divide:
		p.diags.Typef(line, "operator %s is not defined for bool.", op)
		p.emit(codegen.Div)
	}
}

// widenRight converts the scalar on top of the stack to target.
func (p *Parser) widenRight(target semantic.Type) {
	switch target {
	case semantic.Bool:
		p.toBool()
	case semantic.Complex:
		t := p.scratch.Acquire(1)
		p.storeTemp(t, 0)
		p.emitArg(codegen.Push, 0)
		p.loadTemp(t, 0)
		p.scratch.Release(t)
	}
}

// widenLeft converts the scalar below the right operand to target. The right
// operand, already of type target, is parked in scratch meanwhile.
func (p *Parser) widenLeft(target semantic.Type) {
	switch target {
	case semantic.Bool:
		t := p.scratch.Acquire(1)
		p.storeTemp(t, 0)
		p.toBool()
		p.loadTemp(t, 0)
		p.scratch.Release(t)
	case semantic.Complex:
		// The right operand is complex here, so two cells sit above the scalar.
		t := p.scratch.Acquire(3)
		p.storeTemp(t, 0, 1, 2)
		p.emitArg(codegen.Push, 0)
		p.loadTemp(t, 2, 1, 0)
		p.scratch.Release(t)
	}
}

// toBool maps any nonzero value on top of the stack to 1.
func (p *Parser) toBool() {
	p.emitArg(codegen.Push, 0)
	p.emitArg(codegen.Compare, codegen.CmpNe)
}

// complexArith combines (a+bi) and (c+di). On entry the stack holds
// b a d c with c on top.
func (p *Parser) complexArith(op lexer.Arith) {
	switch op {
	case lexer.Plus, lexer.Minus:
		scalar := codegen.Add
		if op == lexer.Minus {
			scalar = codegen.Sub
		}
		t := p.scratch.Acquire(3)
		p.storeTemp(t, 0, 1, 2) // c, d, a
		p.loadTemp(t, 1)
		p.emit(scalar) // b op d
		p.loadTemp(t, 2, 0)
		p.emit(scalar) // a op c
		p.scratch.Release(t)

	case lexer.Multiply:
		t := p.scratch.Acquire(4)
		p.storeTemp(t, 0, 1, 2, 3)            // c, d, a, b
		p.product(t, 2, 1, codegen.Add, 3, 0) // ad + bc
		p.product(t, 2, 0, codegen.Sub, 3, 1) // ac - bd
		p.scratch.Release(t)

	case lexer.Divide:
		t := p.scratch.Acquire(5)
		p.storeTemp(t, 0, 1, 2, 3)            // c, d, a, b
		p.product(t, 0, 0, codegen.Add, 1, 1) // c*c + d*d
		p.storeTemp(t, 4)
		p.product(t, 3, 0, codegen.Sub, 2, 1) // bc - ad
		p.loadTemp(t, 4)
		p.emit(codegen.Div)
		p.product(t, 2, 0, codegen.Add, 3, 1) // ac + bd
		p.loadTemp(t, 4)
		p.emit(codegen.Div)
		p.scratch.Release(t)
	}
}

// product emits t[x1]*t[y1] op t[x2]*t[y2].
func (p *Parser) product(t codegen.Block, x1, y1 int, op codegen.Opcode, x2, y2 int) {
	p.loadTemp(t, x1, y1)
	p.emit(codegen.Mult)
	p.loadTemp(t, x2, y2)
	p.emit(codegen.Mult)
	p.emit(op)
}

// compareComplex compares two complex values component by component. Only
// equality and inequality are defined.
func (p *Parser) compareComplex(cmp lexer.Cmp, line int) {
	if cmp != lexer.Eq && cmp != lexer.Ne {
		p.diags.Typef(line, "comparison operator %s is not defined for complex variables.", cmp)
	}

	t := p.scratch.Acquire(3)
	p.storeTemp(t, 0, 1, 2) // c, d, a
	p.loadTemp(t, 1)
	p.emitArg(codegen.Compare, cmp.Code()) // b ? d
	p.loadTemp(t, 2, 0)
	p.emitArg(codegen.Compare, cmp.Code()) // a ? c
	p.scratch.Release(t)

	if cmp == lexer.Ne {
		p.emitOr()
	} else {
		p.emit(codegen.Mult)
	}
}

// negate flips the sign of the value on top of the stack.
func (p *Parser) negate(typ semantic.Type) {
	p.emit(codegen.Invert)
	if typ != semantic.Complex {
		return
	}
	t := p.scratch.Acquire(1)
	p.storeTemp(t, 0)
	p.emit(codegen.Invert)
	p.loadTemp(t, 0)
	p.scratch.Release(t)
}

// readComplex reads the real part, then the imaginary part.
func (p *Parser) readComplex() {
	t := p.scratch.Acquire(1)
	p.emit(codegen.Input)
	p.storeTemp(t, 0)
	p.emit(codegen.Input)
	p.loadTemp(t, 0)
	p.scratch.Release(t)
}

// storeTemp pops into the given slots of t, in order.
func (p *Parser) storeTemp(t codegen.Block, slots ...int) {
	for _, i := range slots {
		p.code.EmitScratch(codegen.Store, t.Slot(i))
	}
}

// loadTemp pushes the given slots of t, in order.
func (p *Parser) loadTemp(t codegen.Block, slots ...int) {
	for _, i := range slots {
		p.code.EmitScratch(codegen.Load, t.Slot(i))
	}
}
