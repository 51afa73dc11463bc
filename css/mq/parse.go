package mq

import (
	"fmt"
	"strconv"
	"strings"

	"csseng/css/bytecode"
	"csseng/css/tokens"
	"csseng/fixed"
	"csseng/intern"
)

// ErrInvalid is returned for a malformed media query list.
var ErrInvalid = bytecode.ErrInvalid

// features that take the min-/max- prefixes and range comparisons
var rangeFeatures = map[string]bool{
	"width":               true,
	"height":              true,
	"aspect-ratio":        true,
	"resolution":          true,
	"color":               true,
	"color-index":         true,
	"monochrome":          true,
	"device-width":        true,
	"device-height":       true,
	"device-aspect-ratio": true,
}

type state int

const (
	expectQueryStart state = iota
	expectMediaTypeOrCond
	expectCondOrFeature
	expectFeatureNameOrValue
	expectOperatorOrEnd
)

type parser struct {
	vec tokens.Vector
	cur int
}

func invalid(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalid)...)
}

// Parse parses a comma separated media query list. An empty list is
// returned for empty input and matches every medium. Any error invalidates
// the whole list; callers that must keep going store NotAll instead.
func Parse(vec tokens.Vector) ([]*Query, error) {
	p := &parser{vec: vec}
	if vec.AtEnd(0) {
		return nil, nil
	}

	var list []*Query
	for {
		q, err := p.query()
		if err != nil {
			return nil, err
		}
		list = append(list, q)

		p.skip()
		tok := p.vec.Next(&p.cur)
		switch {
		case tok == nil:
			return list, nil
		case !tok.IsChar(','):
			return nil, invalid("unexpected %s after media query", tok)
		}
	}
}

// ParseString tokenizes s and parses it as a media query list.
func ParseString(tbl *intern.Table, s string) ([]*Query, error) {
	return Parse(tokens.Tokenize(tbl, []byte(s)))
}

func (p *parser) skip() {
	p.vec.ConsumeWhitespace(&p.cur)
}

func (p *parser) peek() *tokens.Token {
	return p.vec.Peek(p.cur)
}

// parenFollows reports whether the token after the current one, ignoring
// whitespace, opens a parenthesis.
func (p *parser) parenFollows() bool {
	cur := p.cur + 1
	p.vec.ConsumeWhitespace(&cur)
	return p.vec.Peek(cur).IsChar('(')
}

func reserved(t *tokens.Token) bool {
	return t.IsIdent("and") || t.IsIdent("or") || t.IsIdent("not") || t.IsIdent("only")
}

func (p *parser) query() (*Query, error) {
	q := &Query{Type: TypeAll}
	for st := expectQueryStart; ; {
		p.skip()
		tok := p.peek()

		switch st {
		case expectQueryStart:
			switch {
			case tok == nil, tok.IsChar(','):
				return nil, invalid("empty media query")
			case tok.IsChar('('), tok.IsIdent("not") && p.parenFollows():
				c, err := p.condition(true)
				if err != nil {
					return nil, err
				}
				q.Cond = c
				return q, nil
			case tok.IsIdent("not"), tok.IsIdent("only"):
				q.NegateType = tok.IsIdent("not")
				p.cur++
				st = expectMediaTypeOrCond
			case tok.Type == tokens.Ident:
				st = expectMediaTypeOrCond
			default:
				return nil, invalid("unexpected %s at media query start", tok)
			}

		case expectMediaTypeOrCond:
			if tok == nil || tok.Type != tokens.Ident || reserved(tok) {
				return nil, invalid("media type expected")
			}
			q.Type = TypeByName(tok.Data)
			p.cur++
			st = expectCondOrFeature

		case expectCondOrFeature:
			switch {
			case tok == nil, tok.IsChar(','):
				return q, nil
			case tok.IsIdent("and"):
				p.cur++
				c, err := p.condition(false)
				if err != nil {
					return nil, err
				}
				q.Cond = c
				return q, nil
			default:
				return nil, invalid("unexpected %s after media type", tok)
			}
		}
	}
}

// condition parses "not (...)" or a chain of parenthesised parts joined by
// one of "and" and "or". Or-chains are not allowed after a media type.
func (p *parser) condition(allowOr bool) (*Cond, error) {
	p.skip()
	if p.peek().IsIdent("not") {
		p.cur++
		part, err := p.inParens()
		if err != nil {
			return nil, err
		}
		return &Cond{Negate: true, Parts: []Part{part}}, nil
	}

	first, err := p.inParens()
	if err != nil {
		return nil, err
	}
	c := &Cond{Parts: []Part{first}}
	for joined := false; ; joined = true {
		save := p.cur
		p.skip()
		tok := p.peek()

		var op CondOp
		switch {
		case tok.IsIdent("and"):
			op = CondAnd
		case tok.IsIdent("or") && allowOr:
			op = CondOr
		case tok.IsIdent("or"):
			return nil, invalid("or-chain after a media type")
		default:
			p.cur = save
			return c, nil
		}
		if joined && op != c.Op {
			return nil, invalid("and and or mixed in one condition")
		}
		c.Op = op
		p.cur++

		part, err := p.inParens()
		if err != nil {
			return nil, err
		}
		c.Parts = append(c.Parts, part)
	}
}

// inParens parses a parenthesised condition or feature.
func (p *parser) inParens() (Part, error) {
	p.skip()
	if tok := p.vec.Next(&p.cur); !tok.IsChar('(') {
		return nil, invalid("( expected")
	}

	p.skip()
	if tok := p.peek(); !tok.IsChar('(') && !tok.IsIdent("not") {
		return p.feature()
	}
	c, err := p.condition(true)
	if err != nil {
		return nil, err
	}
	p.skip()
	if tok := p.vec.Next(&p.cur); !tok.IsChar(')') {
		return nil, invalid("unbalanced parenthesis")
	}
	return c, nil
}

type operand struct {
	name  string
	value Value
}

// feature parses everything after the opening parenthesis of a feature test
// up to and including the closing one.
func (p *parser) feature() (*Feature, error) {
	var (
		operands []operand
		ops      []Op
		colon    bool
		haveName bool
	)
	for st := expectFeatureNameOrValue; ; {
		p.skip()
		tok := p.peek()
		if tok == nil {
			return nil, invalid("unbalanced parenthesis")
		}

		switch st {
		case expectFeatureNameOrValue:
			if tok.Type == tokens.Ident && !colon && !haveName {
				p.cur++
				operands = append(operands, operand{name: strings.ToLower(tok.Data)})
				haveName = true
			} else {
				v, err := p.value()
				if err != nil {
					return nil, err
				}
				operands = append(operands, operand{value: v})
			}
			st = expectOperatorOrEnd

		case expectOperatorOrEnd:
			switch {
			case tok.IsChar(')'):
				p.cur++
				return buildFeature(operands, ops, colon)
			case colon || len(ops) == 2:
				return nil, invalid("unexpected %s in media feature", tok)
			case tok.IsChar(':'):
				if len(ops) > 0 || !haveName {
					return nil, invalid("misplaced : in media feature")
				}
				colon = true
				p.cur++
			default:
				op, err := p.operator()
				if err != nil {
					return nil, err
				}
				ops = append(ops, op)
			}
			st = expectFeatureNameOrValue
		}
	}
}

// operator reads <, <=, >, >= or =. The two characters of <= and >= must
// not be separated.
func (p *parser) operator() (Op, error) {
	tok := p.vec.Next(&p.cur)
	var op Op
	switch {
	case tok.IsChar('='):
		return OpEQ, nil
	case tok.IsChar('<'):
		op = OpLT
	case tok.IsChar('>'):
		op = OpGT
	default:
		return 0, invalid("comparison expected, got %s", tok)
	}
	if p.peek().IsChar('=') {
		p.cur++
		if op == OpLT {
			return OpLTE, nil
		}
		return OpGTE, nil
	}
	return op, nil
}

func (p *parser) value() (Value, error) {
	tok := p.vec.Next(&p.cur)
	if tok == nil {
		return nil, invalid("value expected")
	}

	switch tok.Type {
	case tokens.Ident:
		return Ident(strings.ToLower(tok.Data)), nil

	case tokens.Dimension:
		v, n := fixed.Parse(tok.Data, false)
		if n == 0 {
			return nil, invalid("bad dimension %q", tok.Data)
		}
		u, ok := bytecode.UnitByName(tok.Data[n:])
		if !ok {
			return nil, invalid("unknown unit %q", tok.Data[n:])
		}
		return Dimension{Len: v, Unit: u}, nil

	case tokens.Number:
		num, err := number(tok)
		if err != nil {
			return nil, err
		}
		save := p.cur
		p.skip()
		if !p.vec.Next(&p.cur).IsChar('/') {
			p.cur = save
			if i, err := strconv.ParseInt(tok.Data, 10, 32); err == nil {
				return Integer(i), nil
			}
			return Number(num), nil
		}
		p.skip()
		den, err := number(p.vec.Next(&p.cur))
		if err != nil {
			return nil, invalid("bad ratio")
		}
		return Ratio{Num: num, Den: den}, nil
	}
	return nil, invalid("unexpected %s in media feature", tok)
}

func number(t *tokens.Token) (fixed.Fixed, error) {
	if t == nil || t.Type != tokens.Number {
		return 0, ErrInvalid
	}
	v, n := fixed.Parse(t.Data, false)
	if n == 0 || n != len(t.Data) {
		return 0, invalid("bad number %q", t.Data)
	}
	return v, nil
}

func buildFeature(operands []operand, ops []Op, colon bool) (*Feature, error) {
	isName := func(i int) bool { return operands[i].name != "" }

	switch {
	case colon:
		if len(operands) != 2 {
			return nil, invalid("media feature value expected")
		}
		f := &Feature{Name: operands[0].name, Op: OpEQ, Value: operands[1].value}
		for prefix, op := range map[string]Op{"min-": OpGTE, "max-": OpLTE} {
			base, ok := strings.CutPrefix(f.Name, prefix)
			if !ok {
				continue
			}
			if !rangeFeatures[base] {
				return nil, invalid("%s is not a range feature", base)
			}
			f.Name, f.Op = base, op
		}
		return f, nil

	case len(ops) == 0:
		if len(operands) != 1 || !isName(0) {
			return nil, invalid("media feature name expected")
		}
		return &Feature{Name: operands[0].name, Op: OpBool}, nil

	case len(ops) == 1 && len(operands) == 2:
		var f *Feature
		switch {
		case isName(0) && !isName(1):
			f = &Feature{Name: operands[0].name, Op: ops[0], Value: operands[1].value}
		case !isName(0) && isName(1):
			f = &Feature{Name: operands[1].name, Op: ops[0].invert(), Value: operands[0].value}
		default:
			return nil, invalid("media feature range needs one name")
		}
		if !rangeFeatures[f.Name] {
			return nil, invalid("%s is not a range feature", f.Name)
		}
		return f, nil

	case len(ops) == 2 && len(operands) == 3:
		if isName(0) || !isName(1) || isName(2) {
			return nil, invalid("media feature range needs the name in the middle")
		}
		less := func(o Op) bool { return o == OpLT || o == OpLTE }
		more := func(o Op) bool { return o == OpGT || o == OpGTE }
		if !(less(ops[0]) && less(ops[1])) && !(more(ops[0]) && more(ops[1])) {
			return nil, invalid("media feature range operators disagree")
		}
		name := operands[1].name
		if !rangeFeatures[name] {
			return nil, invalid("%s is not a range feature", name)
		}
		return &Feature{
			Name:   name,
			Op:     ops[0].invert(),
			Value:  operands[0].value,
			Op2:    ops[1],
			Value2: operands[2].value,
		}, nil
	}
	return nil, invalid("malformed media feature")
}
