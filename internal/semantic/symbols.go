package semantic

import "github.com/golang/glog"

// ---------------------------------------------------------------------------
// Symbol
// ---------------------------------------------------------------------------

// Symbol records a Milan variable. Address is -1 until the variable's type
// is fixed; from then on it never changes. A Complex variable keeps its real
// part at Address and its imaginary part at Address+1.
type Symbol struct {
	Name    string
	Type    Type
	Address int
}

// ---------------------------------------------------------------------------
// Table
// ---------------------------------------------------------------------------

// Table maps variable names to symbols and hands out storage addresses.
// Milan has a single global scope.
type Table struct {
	symbols map[string]*Symbol
	order   []*Symbol
	next    int
}

// NewTable returns an empty symbol table whose first address is 0.
func NewTable() *Table {
	return &Table{symbols: make(map[string]*Symbol)}
}

// Lookup returns the symbol with the given name, or nil.
func (t *Table) Lookup(name string) *Symbol {
	return t.symbols[name]
}

// Declare returns the symbol for name, creating an Undefined, unbound one on
// first sight.
func (t *Table) Declare(name string) *Symbol {
	if sym, ok := t.symbols[name]; ok {
		return sym
	}
	sym := &Symbol{Name: name, Type: Undefined, Address: -1}
	t.symbols[name] = sym
	t.order = append(t.order, sym)
	return sym
}

// Fix gives an Undefined symbol its type and binds its storage: one slot, or
// two consecutive slots for Complex. Symbols that already have a type are
// left untouched; Fix reports whether it changed anything.
func (t *Table) Fix(sym *Symbol, typ Type) bool {
	if sym.Type != Undefined {
		return false
	}
	if typ == Undefined {
		typ = Int
	}
	sym.Type = typ
	sym.Address = t.next
	t.next += typ.Width()
	glog.V(3).Infof("variable %s: %s at %d", sym.Name, sym.Type, sym.Address)
	return true
}

// Size returns the number of storage slots bound so far, which is also the
// first address past every variable.
func (t *Table) Size() int {
	return t.next
}

// Symbols returns every symbol in declaration order.
func (t *Table) Symbols() []*Symbol {
	return t.order
}
