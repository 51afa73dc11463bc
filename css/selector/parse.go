package selector

import (
	"fmt"
	"strings"

	"csseng/css/bytecode"
	"csseng/css/tokens"
	"csseng/intern"
)

// ErrInvalid is returned for a selector that cannot be parsed.
var ErrInvalid = bytecode.ErrInvalid

func invalid(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalid)...)
}

type parser struct {
	tbl *intern.Table
	vec tokens.Vector
	cur int
}

// Parse parses a comma separated selector group. If any selector of the
// group is invalid the whole group is rejected.
func Parse(tbl *intern.Table, vec tokens.Vector) ([]*Selector, error) {
	var list []*Selector
	for _, part := range vec.Split(',') {
		part = part.TrimSpace()
		if len(part) == 0 {
			return nil, invalid("empty selector")
		}
		p := &parser{tbl: tbl, vec: part}
		sel, err := p.complex()
		if err != nil {
			return nil, fmt.Errorf("selector %q: %w", part.Text(), err)
		}
		list = append(list, sel)
	}
	return list, nil
}

// ParseString tokenizes and parses s.
func ParseString(tbl *intern.Table, s string) ([]*Selector, error) {
	return Parse(tbl, tokens.Tokenize(tbl, []byte(s)))
}

func (p *parser) peek() *tokens.Token {
	return p.vec.Peek(p.cur)
}

// skip consumes whitespace and reports whether there was any.
func (p *parser) skip() bool {
	start := p.cur
	p.vec.ConsumeWhitespace(&p.cur)
	return p.cur > start
}

func (p *parser) complex() (*Selector, error) {
	var (
		compounds []*Compound
		combs     []Combinator
	)
	for {
		c, err := p.compound(false)
		if err != nil {
			return nil, err
		}
		compounds = append(compounds, c)

		ws := p.skip()
		tok := p.peek()
		if tok == nil {
			break
		}
		if c.Pseudo != PseudoNone {
			return nil, invalid("pseudo-element ::%s must end the selector", c.Pseudo)
		}

		comb := CombDescendant
		switch {
		case tok.IsChar('>'):
			comb = CombChild
		case tok.IsChar('+'):
			comb = CombAdjacent
		case tok.IsChar('~'):
			comb = CombSibling
		case !ws:
			return nil, invalid("unexpected %s", tok)
		}
		if comb != CombDescendant {
			p.cur++
			p.skip()
		}
		combs = append(combs, comb)
	}

	sel := &Selector{Compounds: make([]*Compound, 0, len(compounds))}
	for i := len(compounds) - 1; i >= 0; i-- {
		c := compounds[i]
		if i > 0 {
			c.Comb = combs[i-1]
		}
		sel.Compounds = append(sel.Compounds, c)
		sel.Specificity = sel.Specificity.Add(c.specificity())
	}
	return sel, nil
}

// compound parses one compound selector. Inside :not() pseudo-elements are
// not allowed.
func (p *parser) compound(inNot bool) (*Compound, error) {
	c := &Compound{}
	start := p.cur
	if err := p.typeSelector(c); err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok == nil {
			break
		}
		simple := tok.Type == tokens.Hash || tok.IsChar('.') || tok.IsChar('[') || tok.IsChar(':')
		if !simple {
			break
		}
		if c.Pseudo != PseudoNone {
			return nil, invalid("pseudo-element ::%s must end the selector", c.Pseudo)
		}

		var err error
		switch {
		case tok.Type == tokens.Hash:
			p.cur++
			c.Simples = append(c.Simples, Simple{Kind: KindID, Name: tok.IData})
		case tok.IsChar('.'):
			p.cur++
			name := p.vec.Next(&p.cur)
			if name == nil || name.Type != tokens.Ident {
				return nil, invalid("class name expected")
			}
			c.Simples = append(c.Simples, Simple{Kind: KindClass, Name: name.IData})
		case tok.IsChar('['):
			err = p.attribute(c)
		default:
			err = p.pseudo(c, inNot)
		}
		if err != nil {
			return nil, err
		}
	}

	if p.cur == start {
		if tok := p.peek(); tok != nil {
			return nil, invalid("unexpected %s", tok)
		}
		return nil, invalid("selector expected")
	}
	return c, nil
}

// typeSelector parses an optional "ns|name", "*|name", "|name", "name" or
// "*" at the start of a compound.
func (p *parser) typeSelector(c *Compound) error {
	tok := p.peek()
	if tok == nil {
		return nil
	}
	bar := p.vec.Peek(p.cur + 1).IsChar('|')

	switch {
	case tok.Type == tokens.Ident && bar:
		c.NS, c.HasNS = strings.ToLower(tok.Data), true
		p.cur += 2
	case tok.IsChar('*') && bar:
		p.cur += 2
	case tok.IsChar('|'):
		c.HasNS = true
		p.cur++
	default:
		switch {
		case tok.Type == tokens.Ident:
			c.Name = p.tbl.Intern(strings.ToLower(tok.Data))
			p.cur++
		case tok.IsChar('*'):
			p.cur++
		}
		return nil
	}

	// a namespace prefix must be followed by an element name or '*'
	switch tok = p.vec.Next(&p.cur); {
	case tok == nil:
		return invalid("element name expected after namespace prefix")
	case tok.Type == tokens.Ident:
		c.Name = p.tbl.Intern(strings.ToLower(tok.Data))
	case tok.IsChar('*'):
	default:
		return invalid("unexpected %s after namespace prefix", tok)
	}
	return nil
}

var attrOps = map[tokens.Type]AttrOp{
	tokens.IncludeMatch:   AttrIncludes,
	tokens.DashMatch:      AttrDashMatch,
	tokens.PrefixMatch:    AttrPrefix,
	tokens.SuffixMatch:    AttrSuffix,
	tokens.SubstringMatch: AttrSubstring,
}

func (p *parser) attribute(c *Compound) error {
	p.cur++ // [
	p.vec.ConsumeWhitespace(&p.cur)
	name := p.vec.Next(&p.cur)
	if name == nil || name.Type != tokens.Ident {
		return invalid("attribute name expected")
	}
	s := Simple{Kind: KindAttr, Name: p.tbl.Intern(strings.ToLower(name.Data))}

	p.skip()
	tok := p.vec.Next(&p.cur)
	switch {
	case tok.IsChar(']'):
		c.Simples = append(c.Simples, s)
		return nil
	case tok.IsChar('='):
		s.Op = AttrEquals
	case tok != nil && attrOps[tok.Type] != AttrExists:
		s.Op = attrOps[tok.Type]
	default:
		return invalid("attribute operator expected")
	}

	p.skip()
	val := p.vec.Next(&p.cur)
	if val == nil || (val.Type != tokens.Ident && val.Type != tokens.String) {
		return invalid("attribute value expected")
	}
	s.Value = val.Data

	p.skip()
	tok = p.vec.Next(&p.cur)
	if tok.IsIdent("i") || tok.IsIdent("s") {
		s.Fold = tok.IsIdent("i")
		p.skip()
		tok = p.vec.Next(&p.cur)
	}
	if !tok.IsChar(']') {
		return invalid("] expected")
	}
	c.Simples = append(c.Simples, s)
	return nil
}

// pseudoElementByName also accepts the four CSS2 pseudo-elements written
// with a single colon.
func pseudoElementByName(name string) (PseudoElement, bool) {
	for i := PseudoFirstLine; i < PseudoCount; i++ {
		if strings.EqualFold(pseudoElementNames[i], name) {
			return i, true
		}
	}
	return PseudoNone, false
}

func (p *parser) pseudo(c *Compound, inNot bool) error {
	p.cur++ // :
	element := false
	if p.peek().IsChar(':') {
		p.cur++
		element = true
	}

	tok := p.vec.Next(&p.cur)
	if tok == nil {
		return invalid("pseudo-class name expected")
	}
	switch tok.Type {
	case tokens.Ident:
		if pe, ok := pseudoElementByName(tok.Data); ok {
			if inNot {
				return invalid("pseudo-element inside :not()")
			}
			c.Pseudo = pe
			return nil
		}
		if element {
			return invalid("unknown pseudo-element ::%s", tok.Data)
		}
		pc, ok := pseudoClassByName(tok.Data)
		if !ok || pc.functional() {
			return invalid("unknown pseudo-class :%s", tok.Data)
		}
		c.Simples = append(c.Simples, Simple{Kind: KindPseudoClass, Pseudo: pc})
		return nil

	case tokens.Function:
		pc, ok := pseudoClassByName(tok.Data)
		if element || !ok || !pc.functional() {
			return invalid("unknown pseudo-class :%s()", tok.Data)
		}
		args, err := p.arguments()
		if err != nil {
			return err
		}
		s := Simple{Kind: KindPseudoClass, Pseudo: pc}
		switch pc {
		case PCNot:
			for _, arg := range args.Split(',') {
				sub := &parser{tbl: p.tbl, vec: arg.TrimSpace()}
				nc, err := sub.compound(true)
				if err != nil {
					return fmt.Errorf(":not(): %w", err)
				}
				if !sub.vec.AtEnd(sub.cur) {
					return invalid(":not() takes compound selectors")
				}
				s.Not = append(s.Not, nc)
			}
		case PCLang:
			args = args.TrimSpace()
			if len(args) != 1 || (args[0].Type != tokens.Ident && args[0].Type != tokens.String) {
				return invalid(":lang() takes one language tag")
			}
			s.Lang = args[0].Data
		default:
			a, b, ok := parseNth(args)
			if !ok {
				return invalid("bad an+b in :%s(%s)", pc, args.Text())
			}
			s.A, s.B = a, b
		}
		c.Simples = append(c.Simples, s)
		return nil
	}
	return invalid("unexpected %s after ':'", tok)
}

// arguments returns the tokens up to the ')' closing the function just
// consumed, and moves past it.
func (p *parser) arguments() (tokens.Vector, error) {
	start := p.cur
	for depth := 0; ; {
		tok := p.vec.Next(&p.cur)
		switch {
		case tok == nil:
			return nil, invalid("unbalanced parenthesis")
		case tok.Type == tokens.Function, tok.IsChar('('):
			depth++
		case tok.IsChar(')'):
			if depth == 0 {
				return p.vec[start : p.cur-1], nil
			}
			depth--
		}
	}
}
