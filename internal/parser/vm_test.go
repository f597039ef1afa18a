package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"milan/internal/codegen"
)

// machine is a minimal interpreter for compiled programs. It lets the tests
// check what a lowered sequence computes rather than only how it is spelled.
type machine struct {
	t      *testing.T
	stack  []int
	memory map[int]int
	input  []int
	output []int
}

// run executes instrs until STOP and returns everything printed. The stack
// must be empty when the program stops.
func run(t *testing.T, instrs []codegen.Instruction, input ...int) []int {
	t.Helper()
	m := &machine{t: t, memory: map[int]int{}, input: input}

	pc := 0
	for steps := 0; ; steps++ {
		require.Less(t, steps, 100000, "program does not terminate")
		require.True(t, pc >= 0 && pc < len(instrs), "pc %d outside program", pc)
		in := instrs[pc]
		pc++

		switch in.Op {
		case codegen.Push:
			m.push(in.Arg)
		case codegen.Load:
			m.push(m.memory[in.Arg])
		case codegen.Store:
			m.memory[in.Arg] = m.pop()
		case codegen.Add:
			b, a := m.pop(), m.pop()
			m.push(a + b)
		case codegen.Sub:
			b, a := m.pop(), m.pop()
			m.push(a - b)
		case codegen.Mult:
			b, a := m.pop(), m.pop()
			m.push(a * b)
		case codegen.Div:
			b, a := m.pop(), m.pop()
			require.NotZero(t, b, "division by zero at %d", pc-1)
			m.push(a / b)
		case codegen.Invert:
			m.push(-m.pop())
		case codegen.Compare:
			b, a := m.pop(), m.pop()
			m.push(compare(t, in.Arg, a, b))
		case codegen.Jump:
			pc = in.Arg
		case codegen.JumpIfFalse:
			if m.pop() == 0 {
				pc = in.Arg
			}
		case codegen.Print:
			m.output = append(m.output, m.pop())
		case codegen.Input:
			require.NotEmpty(t, m.input, "program reads more input than given")
			m.push(m.input[0])
			m.input = m.input[1:]
		case codegen.Stop:
			require.Empty(t, m.stack, "stack not empty at STOP")
			return m.output
		default:
			t.Fatalf("unexpected instruction %s at %d", in, pc-1)
		}
	}
}

func (m *machine) push(v int) {
	m.stack = append(m.stack, v)
}

func (m *machine) pop() int {
	require.NotEmpty(m.t, m.stack, "stack underflow")
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v
}

func compare(t *testing.T, code, a, b int) int {
	var ok bool
	switch code {
	case codegen.CmpEq:
		ok = a == b
	case codegen.CmpNe:
		ok = a != b
	case codegen.CmpLt:
		ok = a < b
	case codegen.CmpGt:
		ok = a > b
	case codegen.CmpLe:
		ok = a <= b
	case codegen.CmpGe:
		ok = a >= b
	default:
		t.Fatalf("bad comparison code %d", code)
	}
	if ok {
		return 1
	}
	return 0
}
