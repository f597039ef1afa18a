package codegen

import "fmt"

// Scratch hands out blocks of temporary storage for multi-instruction
// lowerings (complex arithmetic, widening). Blocks are released in LIFO
// order, so a lowering nested inside another always gets slots disjoint from
// every block still live. Slot numbers are relative to the scratch region;
// Buffer.Relocate turns them into addresses.
type Scratch struct {
	top  int
	high int
}

// Block is a contiguous run of scratch slots.
type Block struct {
	base int
	size int
}

// Acquire returns a fresh block of n slots above every live block.
func (s *Scratch) Acquire(n int) Block {
	b := Block{base: s.top, size: n}
	s.top += n
	if s.top > s.high {
		s.high = s.top
	}
	return b
}

// Release frees b, which must be the most recently acquired live block.
func (s *Scratch) Release(b Block) {
	if b.base+b.size != s.top {
		panic(fmt.Sprintf("scratch block [%d,%d) released out of order (top %d)", b.base, b.base+b.size, s.top))
	}
	s.top = b.base
}

// HighWater returns the largest number of slots ever live at once, i.e. the
// size of the scratch region.
func (s *Scratch) HighWater() int {
	return s.high
}

// Live returns the number of slots currently acquired.
func (s *Scratch) Live() int {
	return s.top
}

// Slot returns the relative slot number of the i-th slot of the block.
func (b Block) Slot(i int) int {
	if i < 0 || i >= b.size {
		panic(fmt.Sprintf("scratch slot %d outside block of %d", i, b.size))
	}
	return b.base + i
}
