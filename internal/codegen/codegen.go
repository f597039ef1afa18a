package codegen

import (
	"io"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// ---------------------------------------------------------------------------
// Options controls the behaviour of the code-generation pipeline.
// ---------------------------------------------------------------------------

// Options configures how a finished program is laid out and written.
type Options struct {
	// Format of the serialized program.
	Format Format

	// ScratchShift is the gap left between the last variable and the
	// scratch region.
	ScratchShift int

	// Verbose dumps the finished program to the log.
	Verbose bool
}

// DefaultOptions returns sensible defaults (listing format, scratch region
// directly after the variables).
func DefaultOptions() *Options {
	return &Options{Format: Listing}
}

// ---------------------------------------------------------------------------
// Result is returned by Generate.
// ---------------------------------------------------------------------------

type Result struct {
	Instructions []Instruction
	Variables    int // storage slots used by variables
	ScratchBase  int // first address of the scratch region
	ScratchSize  int // slots in the scratch region
}

// ---------------------------------------------------------------------------
// Generate: flush a finished buffer
//
// Pipeline: relocate scratch operands → validate placeholders → serialize
// ---------------------------------------------------------------------------

// Generate finalizes buf and writes it to w. variables is the number of
// storage slots taken by variables; the scratch region starts after them.
// It must be called at most once per buffer.
func Generate(buf *Buffer, scratch *Scratch, variables int, w io.Writer, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	if scratch != nil && scratch.Live() != 0 {
		return nil, errors.Errorf("incomplete program: %d scratch slots still in use", scratch.Live())
	}

	base := variables + opts.ScratchShift
	if err := buf.Relocate(base); err != nil {
		return nil, err
	}

	instrs, err := buf.Instructions()
	if err != nil {
		return nil, errors.Wrap(err, "incomplete program")
	}

	result := &Result{
		Instructions: instrs,
		Variables:    variables,
		ScratchBase:  base,
	}
	if scratch != nil {
		result.ScratchSize = scratch.HighWater()
	}

	if opts.Verbose {
		glog.Info(DebugDump(instrs))
	}

	switch opts.Format {
	case Listing:
		err = EmitListing(w, instrs)
	case YAML:
		err = EmitYAML(w, instrs)
	default:
		return nil, errors.Errorf("unsupported output format: %s", opts.Format)
	}
	if err != nil {
		return nil, err
	}
	glog.V(1).Infof("generated %d instructions (%d variable slots, %d scratch slots at %d)",
		len(instrs), variables, result.ScratchSize, base)
	return result, nil
}
