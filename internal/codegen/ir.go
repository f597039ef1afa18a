package codegen

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Stack-machine opcodes
//
// The Milan VM is a stack machine with a flat, integer-addressed memory.
// Every instruction is an opcode plus at most one integer operand, and an
// instruction's address is its position in the program.
// ---------------------------------------------------------------------------

// Opcode is a VM instruction opcode.
type Opcode int

const (
	Nop Opcode = iota // placeholder left by Reserve, never flushed

	// Data movement
	Push  // push the operand
	Load  // push memory[operand]
	Store // pop into memory[operand]

	// Arithmetic
	Add
	Sub
	Mult
	Div
	Invert // negate the top of the stack

	// Comparison: pops b then a, pushes 1 if (a cmp b) else 0
	Compare

	// Control flow
	Jump        // jump to operand
	JumpIfFalse // pop; jump to operand if the value is 0

	// I/O
	Print // pop and print
	Input // read an integer and push it

	Stop
)

var opNames = map[Opcode]string{
	Nop:         "NOP",
	Push:        "PUSH",
	Load:        "LOAD",
	Store:       "STORE",
	Add:         "ADD",
	Sub:         "SUB",
	Mult:        "MULT",
	Div:         "DIV",
	Invert:      "INVERT",
	Compare:     "COMPARE",
	Jump:        "JUMP",
	JumpIfFalse: "JUMP_NO",
	Print:       "PRINT",
	Input:       "INPUT",
	Stop:        "STOP",
}

func (op Opcode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OP(%d)", int(op))
}

// HasOperand reports whether instructions with this opcode carry an operand.
func (op Opcode) HasOperand() bool {
	switch op {
	case Push, Load, Store, Compare, Jump, JumpIfFalse:
		return true
	}
	return false
}

// Comparison codes carried by COMPARE.
const (
	CmpEq = 0 // =
	CmpNe = 1 // <>
	CmpLt = 2 // <
	CmpGt = 3 // >
	CmpLe = 4 // <=
	CmpGe = 5 // >=
)

// ---------------------------------------------------------------------------
// Instruction
// ---------------------------------------------------------------------------

// Instruction is a single VM instruction.
type Instruction struct {
	Op  Opcode
	Arg int
}

func (i Instruction) String() string {
	if i.Op.HasOperand() {
		return fmt.Sprintf("%s %d", i.Op, i.Arg)
	}
	return i.Op.String()
}

// Convenience constructors for instructions.
func Op(op Opcode) Instruction            { return Instruction{Op: op} }
func OpArg(op Opcode, arg int) Instruction { return Instruction{Op: op, Arg: arg} }

// DebugDump returns a human-readable representation of a program.
func DebugDump(instrs []Instruction) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== program (%d instructions) ===\n", len(instrs))
	for addr, instr := range instrs {
		fmt.Fprintf(&sb, "  %4d  %s\n", addr, instr)
	}
	return sb.String()
}
