package codegen

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// slot is one position in the buffer. Reserved slots are placeholders until
// EmitAt fills them; scratch slots carry an operand relative to the scratch
// region until Relocate rebases them.
type slot struct {
	instr    Instruction
	reserved bool
	filled   bool
	scratch  bool
}

// Buffer is the append-only instruction log the parser emits into. Slots can
// be reserved before their target address is known and patched later.
type Buffer struct {
	slots     []slot
	relocated bool
}

// NewBuffer returns an empty instruction buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Emit appends an instruction without an operand.
func (b *Buffer) Emit(op Opcode) {
	b.append(slot{instr: Op(op)})
}

// EmitArg appends an instruction with an operand.
func (b *Buffer) EmitArg(op Opcode, arg int) {
	b.append(slot{instr: OpArg(op, arg)})
}

// EmitScratch appends a LOAD or STORE whose operand is a scratch slot number.
// The real address is assigned by Relocate once every variable is known.
func (b *Buffer) EmitScratch(op Opcode, scratchSlot int) {
	b.append(slot{instr: OpArg(op, scratchSlot), scratch: true})
}

func (b *Buffer) append(s slot) {
	if glog.V(5) {
		glog.Infof("emit %4d  %s", len(b.slots), s.instr)
	}
	b.slots = append(b.slots, s)
}

// Reserve appends a placeholder and returns its address.
func (b *Buffer) Reserve() int {
	addr := len(b.slots)
	b.append(slot{instr: Op(Nop), reserved: true})
	return addr
}

// EmitAt fills a previously reserved placeholder. Patching an address that
// was never reserved, or one that is already filled, is an error.
func (b *Buffer) EmitAt(addr int, op Opcode, arg int) error {
	if addr < 0 || addr >= len(b.slots) {
		return errors.Errorf("patch address %d out of range [0, %d)", addr, len(b.slots))
	}
	s := &b.slots[addr]
	if !s.reserved {
		return errors.Errorf("address %d was not reserved", addr)
	}
	if s.filled {
		return errors.Errorf("address %d is already filled with %s", addr, s.instr)
	}
	s.instr = OpArg(op, arg)
	s.filled = true
	if glog.V(5) {
		glog.Infof("patch %4d  %s", addr, s.instr)
	}
	return nil
}

// CurrentAddress returns the address the next instruction will occupy.
func (b *Buffer) CurrentAddress() int {
	return len(b.slots)
}

// Reserved returns the number of placeholders reserved so far.
func (b *Buffer) Reserved() int {
	n := 0
	for _, s := range b.slots {
		if s.reserved {
			n++
		}
	}
	return n
}

// Relocate rebases every scratch operand onto base. It may only run once.
func (b *Buffer) Relocate(base int) error {
	if b.relocated {
		return errors.New("scratch operands already relocated")
	}
	for i := range b.slots {
		if b.slots[i].scratch {
			b.slots[i].instr.Arg += base
		}
	}
	b.relocated = true
	glog.V(3).Infof("scratch region relocated to %d", base)
	return nil
}

// Instructions returns the finished program. It fails while any placeholder
// is unfilled or scratch operands are still relative.
func (b *Buffer) Instructions() ([]Instruction, error) {
	out := make([]Instruction, len(b.slots))
	for i, s := range b.slots {
		if s.reserved && !s.filled {
			return nil, errors.Errorf("address %d was reserved but never filled", i)
		}
		if s.scratch && !b.relocated {
			return nil, errors.Errorf("address %d refers to an unrelocated scratch slot", i)
		}
		out[i] = s.instr
	}
	return out, nil
}
