// Package selector parses CSS selectors and matches them against document
// nodes.
package selector

import (
	"cmp"
	"strconv"
	"strings"

	"csseng/intern"
)

// Combinator relates a compound to the one on its left.
type Combinator uint8

const (
	CombNone Combinator = iota
	CombDescendant
	CombChild
	CombAdjacent
	CombSibling
)

func (c Combinator) String() string {
	switch c {
	case CombDescendant:
		return " "
	case CombChild:
		return " > "
	case CombAdjacent:
		return " + "
	case CombSibling:
		return " ~ "
	}
	return ""
}

// PseudoElement selects which part of an element a selector styles.
type PseudoElement uint8

const (
	PseudoNone PseudoElement = iota
	PseudoFirstLine
	PseudoFirstLetter
	PseudoBefore
	PseudoAfter

	PseudoCount
)

var pseudoElementNames = [PseudoCount]string{
	PseudoNone:        "",
	PseudoFirstLine:   "first-line",
	PseudoFirstLetter: "first-letter",
	PseudoBefore:      "before",
	PseudoAfter:       "after",
}

func (p PseudoElement) String() string {
	if p < PseudoCount {
		return pseudoElementNames[p]
	}
	return "pseudo(" + strconv.Itoa(int(p)) + ")"
}

// Kind tells simple selectors apart.
type Kind uint8

const (
	KindID Kind = iota
	KindClass
	KindAttr
	KindPseudoClass
)

// AttrOp is the comparison of an attribute selector.
type AttrOp uint8

const (
	AttrExists    AttrOp = iota // [a]
	AttrEquals                  // [a=v]
	AttrIncludes                // [a~=v]
	AttrDashMatch               // [a|=v]
	AttrPrefix                  // [a^=v]
	AttrSuffix                  // [a$=v]
	AttrSubstring               // [a*=v]
)

var attrOpText = [...]string{"", "=", "~=", "|=", "^=", "$=", "*="}

// PseudoClass identifies a supported pseudo-class.
type PseudoClass uint8

const (
	PCLink PseudoClass = iota
	PCVisited
	PCHover
	PCActive
	PCFocus
	PCFocusWithin
	PCTarget
	PCChecked
	PCDisabled
	PCEnabled
	PCRoot
	PCEmpty
	PCFirstChild
	PCLastChild
	PCOnlyChild
	PCFirstOfType
	PCLastOfType
	PCOnlyOfType
	PCNthChild
	PCNthLastChild
	PCNthOfType
	PCNthLastOfType
	PCNot
	PCLang

	pcCount
)

var pseudoClassNames = [pcCount]string{
	PCLink:          "link",
	PCVisited:       "visited",
	PCHover:         "hover",
	PCActive:        "active",
	PCFocus:         "focus",
	PCFocusWithin:   "focus-within",
	PCTarget:        "target",
	PCChecked:       "checked",
	PCDisabled:      "disabled",
	PCEnabled:       "enabled",
	PCRoot:          "root",
	PCEmpty:         "empty",
	PCFirstChild:    "first-child",
	PCLastChild:     "last-child",
	PCOnlyChild:     "only-child",
	PCFirstOfType:   "first-of-type",
	PCLastOfType:    "last-of-type",
	PCOnlyOfType:    "only-of-type",
	PCNthChild:      "nth-child",
	PCNthLastChild:  "nth-last-child",
	PCNthOfType:     "nth-of-type",
	PCNthLastOfType: "nth-last-of-type",
	PCNot:           "not",
	PCLang:          "lang",
}

func pseudoClassByName(name string) (PseudoClass, bool) {
	for i, n := range pseudoClassNames {
		if strings.EqualFold(n, name) {
			return PseudoClass(i), true
		}
	}
	return 0, false
}

// functional reports whether the pseudo-class takes an argument.
func (pc PseudoClass) functional() bool {
	return pc >= PCNthChild
}

func (pc PseudoClass) String() string {
	if pc < pcCount {
		return pseudoClassNames[pc]
	}
	return "pseudo-class(" + strconv.Itoa(int(pc)) + ")"
}

// Simple is one id, class, attribute or pseudo-class test.
type Simple struct {
	Kind Kind

	// Name is the id, the class or the lower case attribute name.
	Name intern.String

	Op    AttrOp
	Value string
	Fold  bool // attribute value compared ignoring ASCII case

	Pseudo PseudoClass
	A, B   int         // an+b for the nth- pseudo-classes
	Not    []*Compound // :not() arguments
	Lang   string
}

// Compound is a sequence of simple selectors applying to one element.
type Compound struct {
	// NS is the namespace prefix, only tested when HasNS is set. "*|" is
	// the same as no prefix; "|" requires no namespace.
	NS    string
	HasNS bool
	// Name is the lower case element name, zero for the universal selector.
	Name    intern.String
	Simples []Simple
	Pseudo  PseudoElement

	// Comb relates this compound to the next one in the chain, which is
	// further left in source order.
	Comb Combinator
}

// Selector is a complex selector stored right to left: Compounds[0] is
// the subject.
type Selector struct {
	Compounds   []*Compound
	Specificity Specificity
}

// PseudoElement returns the pseudo-element the selector styles.
func (s *Selector) PseudoElement() PseudoElement {
	return s.Compounds[0].Pseudo
}

// Specificity is the (ids, classes, types) triple.
type Specificity struct {
	A, B, C int
}

// Compare returns -1, 0 or 1.
func (s Specificity) Compare(o Specificity) int {
	return cmp.Or(cmp.Compare(s.A, o.A), cmp.Compare(s.B, o.B), cmp.Compare(s.C, o.C))
}

func (s Specificity) Add(o Specificity) Specificity {
	return Specificity{A: s.A + o.A, B: s.B + o.B, C: s.C + o.C}
}

func (s Specificity) String() string {
	return strconv.Itoa(s.A) + "," + strconv.Itoa(s.B) + "," + strconv.Itoa(s.C)
}

func (c *Compound) specificity() Specificity {
	var sp Specificity
	if !c.Name.IsZero() {
		sp.C++
	}
	if c.Pseudo != PseudoNone {
		sp.C++
	}
	for i := range c.Simples {
		s := &c.Simples[i]
		switch {
		case s.Kind == KindID:
			sp.A++
		case s.Kind == KindPseudoClass && s.Pseudo == PCNot:
			var most Specificity
			for _, arg := range s.Not {
				if a := arg.specificity(); a.Compare(most) > 0 {
					most = a
				}
			}
			sp = sp.Add(most)
		default:
			sp.B++
		}
	}
	return sp
}

func (c *Compound) String() string {
	var sb strings.Builder
	if c.HasNS {
		sb.WriteString(c.NS)
		sb.WriteByte('|')
	}
	switch {
	case !c.Name.IsZero():
		sb.WriteString(c.Name.String())
	case len(c.Simples) == 0 && c.Pseudo == PseudoNone:
		sb.WriteByte('*')
	}
	for i := range c.Simples {
		c.Simples[i].write(&sb)
	}
	if c.Pseudo != PseudoNone {
		sb.WriteString("::")
		sb.WriteString(c.Pseudo.String())
	}
	return sb.String()
}

func (s *Simple) write(sb *strings.Builder) {
	switch s.Kind {
	case KindID:
		sb.WriteByte('#')
		sb.WriteString(s.Name.String())
	case KindClass:
		sb.WriteByte('.')
		sb.WriteString(s.Name.String())
	case KindAttr:
		sb.WriteByte('[')
		sb.WriteString(s.Name.String())
		if s.Op != AttrExists {
			sb.WriteString(attrOpText[s.Op])
			sb.WriteString(strconv.Quote(s.Value))
			if s.Fold {
				sb.WriteString(" i")
			}
		}
		sb.WriteByte(']')
	case KindPseudoClass:
		sb.WriteByte(':')
		sb.WriteString(s.Pseudo.String())
		switch s.Pseudo {
		case PCNthChild, PCNthLastChild, PCNthOfType, PCNthLastOfType:
			sb.WriteString("(" + strconv.Itoa(s.A) + "n")
			if s.B >= 0 {
				sb.WriteByte('+')
			}
			sb.WriteString(strconv.Itoa(s.B) + ")")
		case PCLang:
			sb.WriteString("(" + s.Lang + ")")
		case PCNot:
			args := make([]string, len(s.Not))
			for i, c := range s.Not {
				args[i] = c.String()
			}
			sb.WriteString("(" + strings.Join(args, ", ") + ")")
		}
	}
}

// String renders the selector in source order.
func (s *Selector) String() string {
	var sb strings.Builder
	for i := len(s.Compounds) - 1; i >= 0; i-- {
		c := s.Compounds[i]
		sb.WriteString(c.String())
		if i > 0 {
			sb.WriteString(s.Compounds[i-1].Comb.String())
		}
	}
	return sb.String()
}
