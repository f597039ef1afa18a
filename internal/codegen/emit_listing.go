package codegen

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// EmitListing writes a program in the Milan VM text format, one instruction
// per line:
//
//	0:	PUSH	2
//	1:	PUSH	3
//	2:	ADD
func EmitListing(w io.Writer, instrs []Instruction) error {
	bw := bufio.NewWriter(w)
	for addr, instr := range instrs {
		var err error
		if instr.Op.HasOperand() {
			_, err = fmt.Fprintf(bw, "%d:\t%s\t%d\n", addr, instr.Op, instr.Arg)
		} else {
			_, err = fmt.Fprintf(bw, "%d:\t%s\n", addr, instr.Op)
		}
		if err != nil {
			return errors.Wrapf(err, "writing instruction %d", addr)
		}
	}
	return errors.Wrap(bw.Flush(), "flushing listing")
}
