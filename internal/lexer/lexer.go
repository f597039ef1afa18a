package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang/glog"
)

const (
	// Special
	EOF = "EOF"

	// Literals
	IDENT   = "IDENT"   // identifiers: x, total, z2, …
	NUMBER  = "NUMBER"  // integer literals: 0, 42, …
	COMPLEX = "COMPLEX" // imaginary literals: 2i, 10i, …
	BOOLEAN = "BOOLEAN" // true, false
	TYPE    = "TYPE"    // type names accepted by read(...): int, complex, bool

	// Keywords
	BEGIN = "BEGIN"
	END   = "END"
	IF    = "IF"
	THEN  = "THEN"
	ELSE  = "ELSE"
	FI    = "FI"
	WHILE = "WHILE"
	DO    = "DO"
	OD    = "OD"
	WRITE = "WRITE"
	READ  = "READ"

	// Delimiters
	ASSIGN    = "ASSIGN"    // :=
	SEMICOLON = "SEMICOLON" // ;
	LPAREN    = "LPAREN"    // (
	RPAREN    = "RPAREN"    // )

	// Operators
	ADDOP = "ADDOP" // + -
	MULOP = "MULOP" // * /
	CMP   = "CMP"   // = <> != < > <= >=
	NOT   = "NOT"   // !
	AND   = "AND"   // and
	OR    = "OR"    // or
	XOR   = "XOR"   // xor
	IMPL  = "IMPL"  // ->
)

// keywords maps reserved words to their token types.
var keywords = map[string]string{
	"begin": BEGIN,
	"end":   END,
	"if":    IF,
	"then":  THEN,
	"else":  ELSE,
	"fi":    FI,
	"while": WHILE,
	"do":    DO,
	"od":    OD,
	"write": WRITE,
	"read":  READ,
	"and":   AND,
	"or":    OR,
	"xor":   XOR,
	"true":  BOOLEAN,
	"false": BOOLEAN,
}

// typeNames are the words that lex as TYPE.
var typeNames = map[string]bool{
	"int":     true,
	"complex": true,
	"bool":    true,
}

// Arith is the sub-kind of an ADDOP or MULOP token.
type Arith int

const (
	Plus Arith = iota
	Minus
	Multiply
	Divide
)

func (a Arith) String() string {
	switch a {
	case Plus:
		return "+"
	case Minus:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	default:
		return "?"
	}
}

// Cmp is the sub-kind of a CMP token. Its numeric value is the operand of
// the VM's COMPARE instruction.
type Cmp int

const (
	Eq Cmp = iota // =
	Ne            // <> or !=
	Lt            // <
	Gt            // >
	Le            // <=
	Ge            // >=
)

func (c Cmp) String() string {
	switch c {
	case Eq:
		return "="
	case Ne:
		return "<>"
	case Lt:
		return "<"
	case Gt:
		return ">"
	case Le:
		return "<="
	case Ge:
		return ">="
	default:
		return "?"
	}
}

// Code returns the comparison code passed to COMPARE.
func (c Cmp) Code() int { return int(c) }

// Token represents a single lexical token produced by the lexer. The payload
// fields are only meaningful for the matching token type.
type Token struct {
	Type   string
	Value  string
	Line   int
	Column int

	Int   int   // NUMBER value, COMPLEX imaginary part, BOOLEAN 0/1
	Arith Arith // ADDOP / MULOP
	Cmp   Cmp   // CMP
}

func (t Token) String() string {
	if t.Value == "" {
		return t.Type
	}
	return fmt.Sprintf("%s(%s)", t.Type, t.Value)
}

// LexError represents a recoverable error encountered during lexing.
type LexError struct {
	Message string
	Lexeme  string
	Line    int
	Column  int
}

func (e LexError) Error() string {
	return fmt.Sprintf("line %d, col %d: %s (got %q)", e.Line, e.Column, e.Message, e.Lexeme)
}

/**
* Lexes the given Milan source into a slice of Tokens. Also returns a slice of LexErrors for any recoverable errors encountered during lexing (e.g. stray characters).
* @param input The source code to lex.
* @return A slice of Tokens (always terminated by EOF) and a slice of LexErrors.
 */
func Lex(input string) ([]Token, []LexError) {
	var tokens []Token
	var errors []LexError
	line, col, i := 1, 1, 0

	for i < len(input) {
		ch := input[i]
		if isWhitespace(ch) {
			if ch == '\n' {
				line++
				col = 1
			} else if ch != '\r' {
				col++
			}
			i++
			continue
		}

		if n, err := commentLength(input[i:]); n > 0 {
			if err != nil {
				err.Line, err.Column = line, col
				errors = append(errors, *err)
			}
			line, col = advance(input[i:i+n], line, col)
			i += n
			continue
		}

		if isDigit(ch) {
			tok, err, newI, newCol := lexNumber(input, i, line, col)
			if err != nil {
				errors = append(errors, *err)
			}
			tokens = append(tokens, tok)
			i, col = newI, newCol
			continue
		}

		// Keywords, type names and identifiers
		if isIdentStart(ch) {
			tok, newI, newCol := lexIdentifier(input, i, line, col)
			tokens = append(tokens, tok)
			i, col = newI, newCol
			continue
		}

		if tok, width := lexOperatorOrDelimiter(input, i, line, col); width > 0 {
			tokens = append(tokens, tok)
			i += width
			col += width
			continue
		}

		errors = append(errors, LexError{
			Message: "unexpected character",
			Lexeme:  string(ch),
			Line:    line,
			Column:  col,
		})
		i++
		col++
	}

	tokens = append(tokens, Token{Type: EOF, Line: line, Column: col})
	if glog.V(3) {
		glog.Infof("lexed %d tokens, %d errors", len(tokens), len(errors))
	}
	return tokens, errors
}

// commentLength returns the length of the "//" or "/* */" comment at the
// start of rest, or 0 if rest does not start with one. An unterminated block
// comment runs to the end of the input and is reported without a position.
func commentLength(rest string) (int, *LexError) {
	switch {
	case strings.HasPrefix(rest, "//"):
		if n := strings.IndexByte(rest, '\n'); n >= 0 {
			return n, nil
		}
		return len(rest), nil
	case strings.HasPrefix(rest, "/*"):
		if n := strings.Index(rest[2:], "*/"); n >= 0 {
			return n + 4, nil
		}
		return len(rest), &LexError{Message: "unterminated block comment", Lexeme: "/*"}
	}
	return 0, nil
}

// advance moves a line/column position past skipped text. Carriage returns
// take no column.
func advance(skipped string, line, col int) (int, int) {
	for i := 0; i < len(skipped); i++ {
		switch skipped[i] {
		case '\n':
			line++
			col = 1
		case '\r':
		default:
			col++
		}
	}
	return line, col
}

// lexNumber scans an integer literal, or an imaginary literal when the digits
// are immediately followed by a lone 'i' (2i, 15i). "2in" lexes as the
// number 2 followed by the identifier "in".
func lexNumber(input string, start int, line int, col int) (Token, *LexError, int, int) {
	i := start
	startCol := col
	for i < len(input) && isDigit(input[i]) {
		i++
		col++
	}
	digits := input[start:i]

	typ := NUMBER
	if i < len(input) && input[i] == 'i' && (i+1 >= len(input) || !isIdentPart(input[i+1])) {
		typ = COMPLEX
		i++
		col++
	}

	tok := Token{Type: typ, Value: input[start:i], Line: line, Column: startCol}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return tok, &LexError{
			Message: "integer literal out of range",
			Lexeme:  tok.Value,
			Line:    line,
			Column:  startCol,
		}, i, col
	}
	tok.Int = n
	return tok, nil, i, col
}

func lexIdentifier(input string, start int, line int, col int) (Token, int, int) {
	i := start
	startCol := col
	for i < len(input) && isIdentPart(input[i]) {
		i++
		col++
	}
	word := input[start:i]
	tok := Token{Type: IDENT, Value: word, Line: line, Column: startCol}
	if kw, ok := keywords[word]; ok {
		tok.Type = kw
		if word == "true" {
			tok.Int = 1
		}
	} else if typeNames[word] {
		tok.Type = TYPE
	}
	return tok, i, col
}

// lexOperatorOrDelimiter tries to match a 1- or 2-character operator or
// delimiter starting at input[i]. Returns the token and the number of
// characters consumed (0 if nothing matched).
func lexOperatorOrDelimiter(input string, i int, line int, col int) (Token, int) {
	ch := input[i]
	var next byte
	if i+1 < len(input) {
		next = input[i+1]
	}

	// Two-character tokens
	switch ch {
	case ':':
		if next == '=' {
			return Token{Type: ASSIGN, Value: ":=", Line: line, Column: col}, 2
		}
		return Token{}, 0
	case '-':
		if next == '>' {
			return Token{Type: IMPL, Value: "->", Line: line, Column: col}, 2
		}
		return Token{Type: ADDOP, Value: "-", Line: line, Column: col, Arith: Minus}, 1
	case '!':
		if next == '=' {
			return Token{Type: CMP, Value: "!=", Line: line, Column: col, Cmp: Ne}, 2
		}
		return Token{Type: NOT, Value: "!", Line: line, Column: col}, 1
	case '<':
		if next == '=' {
			return Token{Type: CMP, Value: "<=", Line: line, Column: col, Cmp: Le}, 2
		}
		if next == '>' {
			return Token{Type: CMP, Value: "<>", Line: line, Column: col, Cmp: Ne}, 2
		}
		return Token{Type: CMP, Value: "<", Line: line, Column: col, Cmp: Lt}, 1
	case '>':
		if next == '=' {
			return Token{Type: CMP, Value: ">=", Line: line, Column: col, Cmp: Ge}, 2
		}
		return Token{Type: CMP, Value: ">", Line: line, Column: col, Cmp: Gt}, 1
	}

	// Single-character tokens
	switch ch {
	case '(':
		return Token{Type: LPAREN, Value: "(", Line: line, Column: col}, 1
	case ')':
		return Token{Type: RPAREN, Value: ")", Line: line, Column: col}, 1
	case ';':
		return Token{Type: SEMICOLON, Value: ";", Line: line, Column: col}, 1
	case '=':
		return Token{Type: CMP, Value: "=", Line: line, Column: col, Cmp: Eq}, 1
	case '+':
		return Token{Type: ADDOP, Value: "+", Line: line, Column: col, Arith: Plus}, 1
	case '*':
		return Token{Type: MULOP, Value: "*", Line: line, Column: col, Arith: Multiply}, 1
	case '/':
		return Token{Type: MULOP, Value: "/", Line: line, Column: col, Arith: Divide}, 1
	}

	return Token{}, 0
}

func isWhitespace(ch byte) bool {
	return strings.IndexByte(" \t\n\r", ch) >= 0
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// isIdentStart and isIdentPart accept ASCII letters and '_'; digits may only
// follow the first byte.
func isIdentStart(ch byte) bool {
	lower := ch | 0x20
	return ('a' <= lower && lower <= 'z') || ch == '_'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
