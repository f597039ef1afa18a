package parser

import (
	"io"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"milan/internal/codegen"
	"milan/internal/lexer"
	"milan/internal/semantic"
)

// ---------------------------------------------------------------------------
// Parser
//
// Milan is compiled in a single recursive-descent pass: every grammar
// procedure checks syntax, returns the semantic type of what it parsed and
// emits stack-machine code as a side effect. There is no syntax tree.
// ---------------------------------------------------------------------------

// Parser holds the state of one compilation. It is not reusable.
type Parser struct {
	scanner *lexer.Scanner
	code    *codegen.Buffer
	scratch *codegen.Scratch
	symbols *semantic.Table
	diags   *semantic.Diagnostics
}

// New returns a parser reading from scanner and reporting into diags.
func New(scanner *lexer.Scanner, diags *semantic.Diagnostics) *Parser {
	return &Parser{
		scanner: scanner,
		code:    codegen.NewBuffer(),
		scratch: &codegen.Scratch{},
		symbols: semantic.NewTable(),
		diags:   diags,
	}
}

// Parse compiles the whole program. If no error was recorded the finished
// program is written to w and described by the result; otherwise nothing is
// written and the result is nil. The returned error covers output failures
// only; compile errors live in the diagnostics.
func (p *Parser) Parse(w io.Writer, opts *codegen.Options) (*codegen.Result, error) {
	glog.V(1).Info("parsing program")
	p.program()
	if p.diags.Failed() {
		glog.V(1).Infof("compilation failed with %d diagnostic(s); no code written", len(p.diags.All()))
		return nil, nil
	}
	return codegen.Generate(p.code, p.scratch, p.symbols.Size(), w, opts)
}

// Symbols returns the variable table built so far.
func (p *Parser) Symbols() *semantic.Table {
	return p.symbols
}

// Code returns the instruction buffer emitted so far.
func (p *Parser) Code() *codegen.Buffer {
	return p.code
}

// Compile lexes and parses src in one go. Lexical errors are recorded ahead
// of the parse, so a program with a stray character never produces output.
func Compile(src string, w io.Writer, opts *codegen.Options) (*codegen.Result, *semantic.Diagnostics, error) {
	diags := &semantic.Diagnostics{}
	tokens, lexErrs := lexer.Lex(src)
	for _, e := range lexErrs {
		diags.Lexicalf(e.Line, "%s %q.", e.Message, e.Lexeme)
	}
	p := New(lexer.NewScanner(tokens), diags)
	result, err := p.Parse(w, opts)
	return result, diags, err
}

// ---------------------------------------------------------------------------
// Token helpers
// ---------------------------------------------------------------------------

// see reports whether the current token has the given type.
func (p *Parser) see(typ string) bool {
	return p.scanner.Token() == typ
}

// match consumes the current token if it has the given type.
func (p *Parser) match(typ string) bool {
	if p.see(typ) {
		p.scanner.Next()
		return true
	}
	return false
}

func (p *Parser) next() {
	p.scanner.Next()
}

func (p *Parser) line() int {
	return p.scanner.Line()
}

// mustBe consumes a required token. On a mismatch it reports a syntax error
// and recovers by skipping ahead to the token (or end of input).
func (p *Parser) mustBe(typ string) {
	if p.match(typ) {
		return
	}
	p.diags.Syntaxf(p.line(), "%s found while %s expected.",
		lexer.Describe(p.scanner.Token()), lexer.Describe(typ))
	p.recover(typ)
}

// recover discards tokens until typ or EOF, consuming typ if found.
func (p *Parser) recover(typ string) {
	skipped := 0
	for !p.see(typ) && !p.see(lexer.EOF) {
		p.next()
		skipped++
	}
	if p.see(typ) {
		p.next()
	}
	glog.V(2).Infof("recovered at %s after skipping %d token(s)", lexer.Describe(typ), skipped)
}

// ---------------------------------------------------------------------------
// Emission helpers
// ---------------------------------------------------------------------------

func (p *Parser) emit(op codegen.Opcode) {
	p.code.Emit(op)
}

func (p *Parser) emitArg(op codegen.Opcode, arg int) {
	p.code.EmitArg(op, arg)
}

// patch fills a slot this parser reserved. A failure is a parser bug.
func (p *Parser) patch(addr int, op codegen.Opcode, target int) {
	if err := p.code.EmitAt(addr, op, target); err != nil {
		panic(errors.Wrap(err, "backpatch"))
	}
}

// load pushes a variable: imaginary part first for Complex so that the real
// part ends up on top.
func (p *Parser) load(sym *semantic.Symbol) {
	if sym.Type == semantic.Complex {
		p.emitArg(codegen.Load, sym.Address+1)
	}
	p.emitArg(codegen.Load, sym.Address)
}

// store pops a value of type typ into a variable, real part first.
func (p *Parser) store(sym *semantic.Symbol, typ semantic.Type) {
	p.emitArg(codegen.Store, sym.Address)
	if typ == semantic.Complex {
		p.emitArg(codegen.Store, sym.Address+1)
	}
}
