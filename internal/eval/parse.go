package eval

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxFields caps the highest $N an equation may reference.
const MaxFields = 1024

// SyntaxError reports a malformed equation. Pos is a byte offset into
// Equation.
type SyntaxError struct {
	Equation string
	Pos      int
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s (at offset %d in %q)", e.Msg, e.Pos, e.Equation)
}

// frame carries the inputs of one evaluation.
type frame struct {
	now     []float64
	last    []float64
	elapsed float64
	delta   float64
}

type node interface {
	eval(f *frame) float64
}

type number float64

func (n number) eval(*frame) float64 { return float64(n) }

// field is $N, or ~N when delta is set. index is zero-based.
type field struct {
	index int
	delta bool
}

func (v field) eval(f *frame) float64 {
	if v.index >= len(f.now) {
		return 0
	}
	val := f.now[v.index]
	if v.delta && v.index < len(f.last) {
		val -= f.last[v.index]
	}
	return val
}

type clock struct {
	delta bool
}

func (c clock) eval(f *frame) float64 {
	if c.delta {
		return f.delta
	}
	return f.elapsed
}

type binary struct {
	op          byte
	left, right node
}

func (b binary) eval(f *frame) float64 {
	l := b.left.eval(f)
	r := b.right.eval(f)
	switch b.op {
	case '+':
		return l + r
	case '-':
		return l - r
	case '*':
		return l * r
	case '/':
		if r == 0 {
			return 0
		}
		return l / r
	case '%':
		if r == 0 {
			return 0
		}
		return math.Mod(l, r)
	}
	return 0
}

// Program is a compiled equation.
type Program struct {
	text string
	root node
	vars int
}

// Vars returns the highest field number the program references.
func (p *Program) Vars() int { return p.vars }

// String returns the source text.
func (p *Program) String() string { return p.text }

func (p *Program) run(f *frame) float64 {
	return p.root.eval(f)
}

// Compile parses an equation. Anything after a ';' is a comment. An empty
// equation means "$1".
func Compile(text string) (*Program, error) {
	body := text
	if i := strings.IndexByte(body, ';'); i >= 0 {
		body = body[:i]
	}
	if strings.TrimSpace(body) == "" {
		text = "$1"
	}

	p := &parser{src: text}
	p.skipSpace()
	root, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.src) && p.src[p.pos] != ';' {
		return nil, p.errorf("extra junk at end: %q", p.src[p.pos:])
	}

	return &Program{text: text, root: root, vars: p.vars}, nil
}

type parser struct {
	src  string
	pos  int
	vars int
}

func (p *parser) errorf(format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Equation: p.src, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *parser) peekAt(off int) byte {
	if p.pos+off < len(p.src) {
		return p.src[p.pos+off]
	}
	return 0
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

// expr := term (('+' | '-') term)*
func (p *parser) expr() (node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for c := p.peek(); c == '+' || c == '-'; c = p.peek() {
		p.pos++
		p.skipSpace()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = binary{op: c, left: left, right: right}
	}
	return left, nil
}

// term := factor (('*' | '/' | '%') factor)*
func (p *parser) term() (node, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}
	for c := p.peek(); c == '*' || c == '/' || c == '%'; c = p.peek() {
		p.pos++
		p.skipSpace()
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left = binary{op: c, left: left, right: right}
	}
	return left, nil
}

// factor := number | '(' expr ')' | variable
func (p *parser) factor() (node, error) {
	c := p.peek()
	switch {
	case isDigit(c) || (c == '+' || c == '-' || c == '.') && isDigit(p.peekAt(1)):
		return p.number()

	case c == '(':
		p.pos++
		p.skipSpace()
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		if p.peek() != ')' {
			return nil, p.errorf("closing parenthesis expected")
		}
		p.pos++
		p.skipSpace()
		return inner, nil

	case c == '$' || c == '~':
		return p.variable()
	}

	return nil, p.errorf("number expected")
}

func (p *parser) number() (node, error) {
	n := scanNumber(p.src[p.pos:])
	v, err := strconv.ParseFloat(p.src[p.pos:p.pos+n], 64)
	// overflow keeps the +/-Inf ParseFloat returns
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, p.errorf("number expected")
	}
	p.pos += n
	p.skipSpace()
	return number(v), nil
}

func (p *parser) variable() (node, error) {
	delta := p.src[p.pos] == '~'
	p.pos++

	start := p.pos
	for p.pos < len(p.src) && isIdent(p.src[p.pos]) {
		p.pos++
	}
	id := p.src[start:p.pos]

	var n node
	switch {
	case id == "":
		return nil, p.errorf("missing variable identifier")

	case strings.EqualFold(id, "t"):
		n = clock{delta: delta}

	case allDigits(id):
		idx, err := strconv.Atoi(id)
		if err != nil || idx > MaxFields {
			return nil, p.errorf("no such field: %s", id)
		}
		if idx == 0 {
			return nil, p.errorf("no such field: 0")
		}
		if idx > p.vars {
			p.vars = idx
		}
		n = field{index: idx - 1, delta: delta}

	default:
		return nil, p.errorf("invalid variable identifier: %s", id)
	}

	p.skipSpace()
	return n, nil
}

// scanNumber returns the length of the decimal literal at the start of s:
// optional sign, digits, optional fraction, optional exponent.
func scanNumber(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isIdent(c byte) bool {
	return isDigit(c) || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return s != ""
}
