package codegen

import "github.com/pkg/errors"

// ---------------------------------------------------------------------------
// Output formats
// ---------------------------------------------------------------------------

// Format selects how a finished program is serialized.
type Format int

const (
	Listing Format = iota // Milan VM text: "addr:\tOP\targ" per line
	YAML                  // a "program:" sequence of {addr, op, arg}
)

func (f Format) String() string {
	switch f {
	case Listing:
		return "listing"
	case YAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// Extension returns the conventional file extension for the format.
func (f Format) Extension() string {
	switch f {
	case YAML:
		return ".yaml"
	default:
		return ".milvm"
	}
}

// ParseFormat resolves a format name as given on the command line or in a
// config file.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "", "listing", "vm", "text":
		return Listing, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return Listing, errors.Errorf("unsupported output format: %s", name)
	}
}
