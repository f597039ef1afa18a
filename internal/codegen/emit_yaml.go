package codegen

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type yamlInstruction struct {
	Addr int    `yaml:"addr"`
	Op   string `yaml:"op"`
	Arg  *int   `yaml:"arg,omitempty"`
}

type yamlProgram struct {
	Program []yamlInstruction `yaml:"program"`
}

// EmitYAML writes a program as a YAML document with a single "program" key.
// Instructions without an operand omit "arg".
func EmitYAML(w io.Writer, instrs []Instruction) error {
	doc := yamlProgram{Program: make([]yamlInstruction, len(instrs))}
	for addr, instr := range instrs {
		yi := yamlInstruction{Addr: addr, Op: instr.Op.String()}
		if instr.Op.HasOperand() {
			arg := instr.Arg
			yi.Arg = &arg
		}
		doc.Program[addr] = yi
	}
	out, err := yaml.Marshal(&doc)
	if err != nil {
		return errors.Wrap(err, "marshalling program")
	}
	_, err = w.Write(out)
	return errors.Wrap(err, "writing yaml program")
}
