package lexer

import "github.com/golang/glog"

// Scanner is a one-token-lookahead cursor over a lexed token slice. It is the
// token source the single-pass parser consumes: Token reports the current
// kind without consuming it, Next consumes it, and the payload accessors
// decode the current token.
type Scanner struct {
	tokens []Token
	pos    int
}

// NewScanner returns a scanner positioned on the first token. A missing EOF
// terminator is added so Token never runs off the end.
func NewScanner(tokens []Token) *Scanner {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != EOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens, Token{Type: EOF, Line: line})
	}
	return &Scanner{tokens: tokens}
}

// Token returns the current token type.
func (s *Scanner) Token() string {
	return s.tokens[s.pos].Type
}

// Next consumes the current token. At EOF it stays put.
func (s *Scanner) Next() {
	if s.pos < len(s.tokens)-1 {
		s.pos++
	}
	if glog.V(5) {
		glog.Infof("token %s at line %d", s.tokens[s.pos], s.tokens[s.pos].Line)
	}
}

// Line returns the source line of the current token.
func (s *Scanner) Line() int {
	return s.tokens[s.pos].Line
}

// Int returns the value of a NUMBER token.
func (s *Scanner) Int() int {
	return s.tokens[s.pos].Int
}

// Complex returns the real and imaginary parts of a COMPLEX token.
func (s *Scanner) Complex() (re, im int) {
	return 0, s.tokens[s.pos].Int
}

// Bool returns the value of a BOOLEAN token.
func (s *Scanner) Bool() bool {
	return s.tokens[s.pos].Int != 0
}

// Text returns the name of an IDENT token.
func (s *Scanner) Text() string {
	return s.tokens[s.pos].Value
}

// TypeName returns the word of a TYPE token.
func (s *Scanner) TypeName() string {
	return s.tokens[s.pos].Value
}

// Arith returns the operator of an ADDOP or MULOP token.
func (s *Scanner) Arith() Arith {
	return s.tokens[s.pos].Arith
}

// Cmp returns the comparison of a CMP token.
func (s *Scanner) Cmp() Cmp {
	return s.tokens[s.pos].Cmp
}

// Describe returns a human-readable name for a token type, as used in
// "X found while Y expected" messages.
func Describe(typ string) string {
	switch typ {
	case EOF:
		return "end of file"
	case IDENT:
		return "identifier"
	case NUMBER:
		return "number"
	case COMPLEX:
		return "complex number"
	case BOOLEAN:
		return "boolean constant"
	case TYPE:
		return "type name"
	case ASSIGN:
		return "':='"
	case SEMICOLON:
		return "';'"
	case LPAREN:
		return "'('"
	case RPAREN:
		return "')'"
	case ADDOP:
		return "'+' or '-'"
	case MULOP:
		return "'*' or '/'"
	case CMP:
		return "comparison operator"
	case NOT:
		return "'!'"
	case IMPL:
		return "'->'"
	}
	for word, kw := range keywords {
		if kw == typ && kw != BOOLEAN {
			return "'" + word + "'"
		}
	}
	return typ
}
