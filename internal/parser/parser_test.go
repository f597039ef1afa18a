package parser_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milan/internal/codegen"
	"milan/internal/lexer"
	"milan/internal/parser"
	"milan/internal/semantic"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// compileOK compiles src and fails the test on any error diagnostic.
func compileOK(t *testing.T, src string) (*codegen.Result, string) {
	t.Helper()
	var out bytes.Buffer
	res, diags, err := parser.Compile(src, &out, codegen.DefaultOptions())
	require.NoError(t, err)
	require.False(t, diags.Failed(), "unexpected diagnostics: %v", diags.Err())
	require.NotNil(t, res)
	return res, out.String()
}

// compileFail compiles src, expects it to fail and checks nothing was written.
func compileFail(t *testing.T, src string) *semantic.Diagnostics {
	t.Helper()
	var out bytes.Buffer
	res, diags, err := parser.Compile(src, &out, codegen.DefaultOptions())
	require.NoError(t, err)
	require.True(t, diags.Failed(), "expected %q to fail", src)
	assert.Nil(t, res)
	assert.Empty(t, out.String(), "no code may be written after an error")
	return diags
}

// parse runs a parser directly so tests can inspect its symbol table.
func parse(t *testing.T, src string) (*parser.Parser, *semantic.Diagnostics) {
	t.Helper()
	tokens, lexErrs := lexer.Lex(src)
	require.Empty(t, lexErrs)
	diags := &semantic.Diagnostics{}
	p := parser.New(lexer.NewScanner(tokens), diags)
	_, err := p.Parse(&bytes.Buffer{}, nil)
	require.NoError(t, err)
	return p, diags
}

func messages(diags *semantic.Diagnostics) []string {
	var out []string
	for _, d := range diags.All() {
		out = append(out, d.Error())
	}
	return out
}

var (
	push   = func(v int) codegen.Instruction { return codegen.OpArg(codegen.Push, v) }
	load   = func(a int) codegen.Instruction { return codegen.OpArg(codegen.Load, a) }
	store  = func(a int) codegen.Instruction { return codegen.OpArg(codegen.Store, a) }
	cmp    = func(c int) codegen.Instruction { return codegen.OpArg(codegen.Compare, c) }
	jump   = func(a int) codegen.Instruction { return codegen.OpArg(codegen.Jump, a) }
	jumpNo = func(a int) codegen.Instruction { return codegen.OpArg(codegen.JumpIfFalse, a) }
	add    = codegen.Op(codegen.Add)
	mult   = codegen.Op(codegen.Mult)
	invert = codegen.Op(codegen.Invert)
	write  = codegen.Op(codegen.Print)
	read   = codegen.Op(codegen.Input)
	stop   = codegen.Op(codegen.Stop)
)

// ---------------------------------------------------------------------------
// Statements and control flow
// ---------------------------------------------------------------------------

func TestAssignAndWrite(t *testing.T) {
	res, listing := compileOK(t, "begin x := 2 + 3; write(x) end")

	assert.Equal(t, []codegen.Instruction{
		push(2), push(3), add, store(0), load(0), write, stop,
	}, res.Instructions)
	assert.Equal(t, "0:\tPUSH\t2\n1:\tPUSH\t3\n2:\tADD\n3:\tSTORE\t0\n4:\tLOAD\t0\n5:\tPRINT\n6:\tSTOP\n", listing)
	assert.Equal(t, []int{5}, run(t, res.Instructions))
}

func TestIfElseBackpatch(t *testing.T) {
	res, _ := compileOK(t, "begin if 1 < 2 then write(1) else write(0) fi end")

	assert.Equal(t, []codegen.Instruction{
		push(1), push(2), cmp(codegen.CmpLt),
		jumpNo(7), // first instruction of the else branch
		push(1), write,
		jump(9), // just past the else branch
		push(0), write,
		stop,
	}, res.Instructions)
	assert.Equal(t, []int{1}, run(t, res.Instructions))
}

func TestIfWithoutElse(t *testing.T) {
	res, _ := compileOK(t, "begin if false then write(1) fi; write(2) end")

	assert.Equal(t, []codegen.Instruction{
		push(0), jumpNo(4), push(1), write,
		push(2), write, stop,
	}, res.Instructions)
	assert.Equal(t, []int{2}, run(t, res.Instructions))
}

func TestWhileBackpatch(t *testing.T) {
	res, _ := compileOK(t, "begin i := 0; while i < 3 do i := i + 1 od; write(i) end")

	assert.Equal(t, []codegen.Instruction{
		push(0), store(0),
		load(0), push(3), cmp(codegen.CmpLt), jumpNo(11),
		load(0), push(1), add, store(0),
		jump(2),
		load(0), write, stop,
	}, res.Instructions)
	assert.Equal(t, []int{3}, run(t, res.Instructions))
}

func TestNestedControlFlow(t *testing.T) {
	src := `
begin
  n := 5;
  sum := 0;
  while n > 0 do
    if n = 3 then
      sum := sum + 100
    else
      sum := sum + n
    fi;
    n := n - 1
  od;
  write(sum)
end`
	res, _ := compileOK(t, src)
	assert.Equal(t, []int{5 + 4 + 100 + 2 + 1}, run(t, res.Instructions))
}

func TestEmptyBlocks(t *testing.T) {
	res, _ := compileOK(t, "begin if true then else fi; while false do od end")
	assert.Empty(t, run(t, res.Instructions))

	res, _ = compileOK(t, "begin end")
	assert.Equal(t, []codegen.Instruction{stop}, res.Instructions)
}

func TestComplexWritePrintsRealFirst(t *testing.T) {
	res, _ := compileOK(t, "begin z := 7 + 2i; write(z) end")
	assert.Equal(t, []int{7, 2}, run(t, res.Instructions))

	// Two PRINTs for one complex write.
	n := 0
	for _, in := range res.Instructions {
		if in.Op == codegen.Print {
			n++
		}
	}
	assert.Equal(t, 2, n)
}

// ---------------------------------------------------------------------------
// Storage
// ---------------------------------------------------------------------------

func TestStorageAllocation(t *testing.T) {
	p, diags := parse(t, "begin a := 1; z := 2i; b := true; z := z * z end")
	require.False(t, diags.Failed())

	table := p.Symbols()
	assert.Equal(t, 0, table.Lookup("a").Address)
	assert.Equal(t, semantic.Int, table.Lookup("a").Type)
	assert.Equal(t, 1, table.Lookup("z").Address)
	assert.Equal(t, semantic.Complex, table.Lookup("z").Type)
	assert.Equal(t, 3, table.Lookup("b").Address)
	assert.Equal(t, semantic.Bool, table.Lookup("b").Type)
	assert.Equal(t, 4, table.Size())
}

func TestAddressesFollowTypeFixing(t *testing.T) {
	// y is read (and fixed as int) before x's expression is complete, so it
	// gets the lower address.
	p, diags := parse(t, "begin x := y + 1; z := 1i; w := x end")
	require.False(t, diags.Failed())

	table := p.Symbols()
	assert.Equal(t, 0, table.Lookup("y").Address)
	assert.Equal(t, 1, table.Lookup("x").Address)
	assert.Equal(t, 2, table.Lookup("z").Address)
	assert.Equal(t, 4, table.Lookup("w").Address, "z keeps two adjacent slots")
	assert.Equal(t, 5, table.Size())

	var names []string
	for _, sym := range table.Symbols() {
		names = append(names, sym.Name)
	}
	assert.Equal(t, []string{"x", "y", "z", "w"}, names, "declaration order is not address order")
}

func TestComplexLoadAndStoreOrder(t *testing.T) {
	res, _ := compileOK(t, "begin z := 3i; w := z end")

	assert.Equal(t, []codegen.Instruction{
		push(3), push(0), store(0), store(1),
		load(1), load(0), store(2), store(3),
		stop,
	}, res.Instructions)
}

func TestScratchPlacedAfterVariables(t *testing.T) {
	// The scratch block is in use before x exists, yet must not overlap it.
	src := "begin z := 1i * 1i; x := 5; write(z); write(x) end"
	res, _ := compileOK(t, src)

	assert.Equal(t, 3, res.Variables)
	assert.Equal(t, 3, res.ScratchBase)
	assert.Equal(t, 4, res.ScratchSize)
	assert.Equal(t, store(3), res.Instructions[4])
	assert.Equal(t, []int{-1, 0, 5}, run(t, res.Instructions))

	var out bytes.Buffer
	opts := codegen.DefaultOptions()
	opts.ScratchShift = 10
	shifted, diags, err := parser.Compile(src, &out, opts)
	require.NoError(t, err)
	require.False(t, diags.Failed())
	assert.Equal(t, 13, shifted.ScratchBase)
	assert.Equal(t, store(13), shifted.Instructions[4])
	assert.Equal(t, []int{-1, 0, 5}, run(t, shifted.Instructions))
}

func TestProgramWithoutScratch(t *testing.T) {
	res, _ := compileOK(t, "begin x := 1 end")
	assert.Zero(t, res.ScratchSize)
	assert.Equal(t, 1, res.ScratchBase)
}

// ---------------------------------------------------------------------------
// Diagnostics and recovery
// ---------------------------------------------------------------------------

func TestReassignWithDifferentTypeFailsClosed(t *testing.T) {
	diags := compileFail(t, "begin x := 1; x := 1+2i end")

	assert.Equal(t, 1, diags.Count(semantic.TypeError))
	assert.Equal(t, []string{"Line 1: variable x is int and cannot be assigned a complex value."}, messages(diags))
}

func TestTypeErrorLine(t *testing.T) {
	diags := compileFail(t, "begin\n  x := 1;\n  x := true\nend")
	require.Len(t, diags.All(), 1)
	assert.Equal(t, 3, diags.All()[0].Line)
}

func TestMissingTokenRecovery(t *testing.T) {
	diags := compileFail(t, "begin write 1) end")
	require.NotEmpty(t, diags.All())
	assert.Equal(t, "Line 1: number found while '(' expected.", diags.All()[0].Error())
	assert.Equal(t, len(diags.All()), diags.Count(semantic.SyntaxError))
}

func TestMissingExpression(t *testing.T) {
	diags := compileFail(t, "begin x := ; write(1) end")
	assert.Equal(t, []string{"Line 1: expression expected."}, messages(diags))
}

func TestMissingStatement(t *testing.T) {
	diags := compileFail(t, "begin x := 1; ; write(x) end")
	assert.Equal(t, []string{"Line 1: statement expected."}, messages(diags))
}

func TestMissingBegin(t *testing.T) {
	diags := compileFail(t, "x := 1 end")
	assert.Equal(t, "Line 1: identifier found while 'begin' expected.", diags.All()[0].Error())
}

func TestErrorsAccumulate(t *testing.T) {
	src := "begin\n x := true;\n if x then y := 1 + true fi;\n while 1 do od;\n x := 3\nend"
	diags := compileFail(t, src)

	require.Len(t, diags.All(), 2)
	assert.Equal(t, 4, diags.All()[0].Line)
	assert.Contains(t, diags.All()[0].Message, "condition of while")
	assert.Equal(t, 5, diags.All()[1].Line)

	err := diags.Err()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "2 error(s) occurred:\n"))
}

func TestLexicalErrorFailsClosed(t *testing.T) {
	diags := compileFail(t, "begin x := 1 # 2 end")
	assert.Equal(t, 1, diags.Count(semantic.LexicalError))
}

func TestUnassignedVariableWarns(t *testing.T) {
	res, _ := compileOK(t, "begin y := y + 1; write(y) end")
	assert.Equal(t, []int{1}, run(t, res.Instructions))

	p, diags := parse(t, "begin write(y) end")
	assert.False(t, diags.Failed())
	assert.Equal(t, 1, diags.Count(semantic.Notice))
	assert.Equal(t, "Line 1: warning: variable y is used before it is assigned a value.", diags.All()[0].Error())
	assert.Equal(t, semantic.Int, p.Symbols().Lookup("y").Type)
	assert.Nil(t, diags.Err())
}

func TestTextAfterEndWarns(t *testing.T) {
	var out bytes.Buffer
	res, diags, err := parser.Compile("begin x := 1 end x := 2", &out, nil)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.False(t, diags.Failed())
	assert.Equal(t, 1, diags.Count(semantic.Notice))
	assert.NotEmpty(t, out.String())
}

func TestYAMLOutput(t *testing.T) {
	var out bytes.Buffer
	opts := codegen.DefaultOptions()
	opts.Format = codegen.YAML
	_, diags, err := parser.Compile("begin write(1) end", &out, opts)
	require.NoError(t, err)
	require.False(t, diags.Failed())
	assert.Equal(t, "program:\n- addr: 0\n  op: PUSH\n  arg: 1\n- addr: 1\n  op: PRINT\n- addr: 2\n  op: STOP\n", out.String())
}

func TestReservedPlaceholderCount(t *testing.T) {
	// if/else reserves two jumps, while reserves one.
	p, diags := parse(t, "begin if true then while false do od else write(1) fi end")
	require.False(t, diags.Failed())
	assert.Equal(t, 3, p.Code().Reserved())
}
