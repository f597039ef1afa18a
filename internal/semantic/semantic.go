package semantic

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
	"github.com/hashicorp/go-multierror"
)

// ---------------------------------------------------------------------------
// Diagnostic severity
// ---------------------------------------------------------------------------

// Severity indicates whether a diagnostic is an error or a warning.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Kind classifies a diagnostic by the rule that produced it.
type Kind int

const (
	SyntaxError Kind = iota // expected-token mismatch, recovered by skipping tokens
	TypeError               // operand/operator type mismatch, recovered by assuming a type
	LexicalError            // stray character or malformed literal
	Notice                  // warnings that do not block output
)

func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "syntax error"
	case TypeError:
		return "type error"
	case LexicalError:
		return "lexical error"
	case Notice:
		return "notice"
	default:
		return "unknown"
	}
}

// ---------------------------------------------------------------------------
// Diagnostic
// ---------------------------------------------------------------------------

// Diagnostic is a single message produced while compiling.
type Diagnostic struct {
	Message  string
	Line     int
	Severity Severity
	Kind     Kind
}

func (d Diagnostic) Error() string {
	if d.Severity == Warning {
		return fmt.Sprintf("Line %d: warning: %s", d.Line, d.Message)
	}
	return fmt.Sprintf("Line %d: %s", d.Line, d.Message)
}

// ---------------------------------------------------------------------------
// Diagnostics: the per-compile error context
// ---------------------------------------------------------------------------

// Diagnostics accumulates the messages of one compilation. The first error
// sets a sticky failure flag that is never cleared; warnings do not set it.
type Diagnostics struct {
	list   []Diagnostic
	failed bool
}

// Syntaxf records a syntax error.
func (d *Diagnostics) Syntaxf(line int, format string, args ...interface{}) {
	d.add(Diagnostic{Message: fmt.Sprintf(format, args...), Line: line, Severity: Error, Kind: SyntaxError})
}

// Typef records a type error.
func (d *Diagnostics) Typef(line int, format string, args ...interface{}) {
	d.add(Diagnostic{Message: fmt.Sprintf(format, args...), Line: line, Severity: Error, Kind: TypeError})
}

// Lexicalf records an error reported by the lexer.
func (d *Diagnostics) Lexicalf(line int, format string, args ...interface{}) {
	d.add(Diagnostic{Message: fmt.Sprintf(format, args...), Line: line, Severity: Error, Kind: LexicalError})
}

// Warnf records a warning.
func (d *Diagnostics) Warnf(line int, format string, args ...interface{}) {
	d.add(Diagnostic{Message: fmt.Sprintf(format, args...), Line: line, Severity: Warning, Kind: Notice})
}

func (d *Diagnostics) add(diag Diagnostic) {
	if diag.Severity == Error {
		d.failed = true
	}
	glog.V(1).Infof("diagnostic (%s): %s", diag.Kind, diag.Error())
	d.list = append(d.list, diag)
}

// Failed reports whether any error has been recorded.
func (d *Diagnostics) Failed() bool {
	return d.failed
}

// All returns every diagnostic in the order it was reported.
func (d *Diagnostics) All() []Diagnostic {
	return d.list
}

// Count returns the number of diagnostics of the given kind.
func (d *Diagnostics) Count(kind Kind) int {
	n := 0
	for _, diag := range d.list {
		if diag.Kind == kind {
			n++
		}
	}
	return n
}

// Errors returns the number of errors recorded. Warnings are not counted.
func (d *Diagnostics) Errors() int {
	n := 0
	for _, diag := range d.list {
		if diag.Severity == Error {
			n++
		}
	}
	return n
}

// Err folds every error (not warning) into a single error, or returns nil.
func (d *Diagnostics) Err() error {
	var result *multierror.Error
	for _, diag := range d.list {
		if diag.Severity == Error {
			result = multierror.Append(result, diag)
		}
	}
	if result == nil {
		return nil
	}
	result.ErrorFormat = listFormat
	return result
}

func listFormat(errs []error) string {
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = err.Error()
	}
	return fmt.Sprintf("%d error(s) occurred:\n%s", len(errs), strings.Join(lines, "\n"))
}

// ---------------------------------------------------------------------------
// Type system
// ---------------------------------------------------------------------------

// Type is the semantic type of a Milan value.
type Type int

const (
	Undefined Type = iota // a variable seen but not yet typed
	Int
	Bool
	Complex
)

func (t Type) String() string {
	switch t {
	case Undefined:
		return "undefined"
	case Int:
		return "int"
	case Bool:
		return "bool"
	case Complex:
		return "complex"
	default:
		return "unknown"
	}
}

// Width returns the number of storage slots (and stack cells) a value of
// type t occupies.
func (t Type) Width() int {
	if t == Complex {
		return 2
	}
	return 1
}

// promotionOrder is the total order used to unify the operand types of a
// binary operator, lowest first. The declaration order of the Type constants
// plays no part in promotion.
var promotionOrder = []Type{Int, Bool, Complex}

// Rank returns the position of t in the promotion order, or -1 for types
// that take no part in promotion.
func Rank(t Type) int {
	for i, p := range promotionOrder {
		if p == t {
			return i
		}
	}
	return -1
}

// Promote returns the result type of a binary operator applied to operands
// of types a and b: the greater of the two in the promotion order.
func Promote(a, b Type) Type {
	if Rank(b) > Rank(a) {
		return b
	}
	return a
}

// builtinTypes maps the type names accepted by read(...) to their types.
var builtinTypes = map[string]Type{
	"int":     Int,
	"bool":    Bool,
	"complex": Complex,
}

// LookupType resolves a type name to a Type.
func LookupType(name string) (Type, bool) {
	t, ok := builtinTypes[name]
	return t, ok
}
