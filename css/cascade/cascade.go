// Package cascade selects the declarations that apply to a document node
// from a set of stylesheets.
package cascade

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"
	xfixed "golang.org/x/image/math/fixed"

	"csseng/css/bytecode"
	"csseng/css/mq"
	"csseng/css/selector"
	"csseng/css/stylesheet"
)

// inlineSpecificity ranks an inline style above every selector.
var inlineSpecificity = selector.Specificity{A: 1 << 30}

// Value is the winning declaration for one property.
type Value struct {
	bytecode.Declaration
	// Strings resolves the string operands of the declaration.
	Strings     *bytecode.StringTable
	Origin      stylesheet.Origin
	Specificity selector.Specificity
}

// Text renders the declaration as CSS.
func (v *Value) Text() string {
	return v.Format(v.Strings)
}

// Pixels resolves a single length against m to device pixels in 26.6
// fixed point. Percentages, keywords and inherited values do not resolve.
func (v *Value) Pixels(m *mq.Media) (xfixed.Int26_6, bool) {
	if m == nil || v.Inherit || v.Declaration.Value != bytecode.ValueSetLength || len(v.Lengths) != 1 {
		return 0, false
	}
	l := v.Lengths[0]
	if !l.Unit.IsLength() {
		return 0, false
	}
	return mq.LengthToPx(m, l.Value, l.Unit).Int26_6(), true
}

// Style maps properties to their winning declarations.
type Style map[bytecode.Property]Value

// Computed is the result of a selection: one style for the element itself
// and one for each pseudo-element any rule targeted.
type Computed struct {
	Styles [selector.PseudoCount]Style
}

// Get returns the winning declaration of p for pseudo-element pe.
func (c *Computed) Get(pe selector.PseudoElement, p bytecode.Property) (Value, bool) {
	if pe >= selector.PseudoCount || c.Styles[pe] == nil {
		return Value{}, false
	}
	v, ok := c.Styles[pe][p]
	return v, ok
}

// Values returns the style of pe ordered by property.
func (c *Computed) Values(pe selector.PseudoElement) []Value {
	if pe >= selector.PseudoCount {
		return nil
	}
	style := c.Styles[pe]
	props := make([]bytecode.Property, 0, len(style))
	for p := range style {
		props = append(props, p)
	}
	slices.Sort(props)

	out := make([]Value, len(props))
	for i, p := range props {
		out[i] = style[p]
	}
	return out
}

// Format renders the style of pe as declarations ordered by property.
func (c *Computed) Format(pe selector.PseudoElement) []string {
	values := c.Values(pe)
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	for i := range values {
		out[i] = values[i].Text()
	}
	return out
}

// Context holds the stylesheets selection runs against, in cascade order
// within each origin. It is safe to call Select concurrently once all
// sheets are appended.
type Context struct {
	log    *zap.Logger
	sheets []*stylesheet.Stylesheet
}

func New(log *zap.Logger, sheets ...*stylesheet.Stylesheet) *Context {
	if log == nil {
		log = zap.NewNop()
	}
	return &Context{log: log.Named("cascade"), sheets: slices.Clone(sheets)}
}

// Append adds a sheet after those already present.
func (c *Context) Append(sheet *stylesheet.Stylesheet) {
	c.sheets = append(c.sheets, sheet)
}

// Select computes the style of node with a throwaway context.
func Select(node selector.Node, sheets []*stylesheet.Stylesheet, media *mq.Media, inline *stylesheet.Stylesheet) (*Computed, error) {
	return New(nil, sheets...).Select(node, media, inline)
}

// match is one selector of one rule matching the node.
type match struct {
	rule        *stylesheet.SelectorRule
	strings     *bytecode.StringTable
	origin      stylesheet.Origin
	specificity selector.Specificity
	pseudo      selector.PseudoElement
	seq         int
}

type propState struct {
	specificity selector.Specificity
	origin      stylesheet.Origin
	important   bool
	inherit     bool
	set         bool
	value       Value
}

// state is the bookkeeping of one selection.
type state struct {
	node    selector.Node
	media   *mq.Media
	matcher *selector.Matcher
	matches []match
	seq     int
	visited map[*stylesheet.Stylesheet]bool

	props [bytecode.PropCount][selector.PseudoCount]propState

	// the declaration being applied
	origin      stylesheet.Origin
	specificity selector.Specificity
	pseudo      selector.PseudoElement
}

var anyMedia = &mq.Media{Type: mq.TypeAll}

// Select computes the style of node for media. A nil media matches every
// media type. inline, if not nil, is a sheet from stylesheet.ParseInline.
func (c *Context) Select(node selector.Node, media *mq.Media, inline *stylesheet.Stylesheet) (*Computed, error) {
	if node == nil {
		return nil, errors.New("no node to select for")
	}
	if media == nil {
		media = anyMedia
	}

	s := &state{
		node:    node,
		media:   media,
		matcher: selector.NewMatcher(),
		visited: make(map[*stylesheet.Stylesheet]bool),
	}
	s.matcher.Reset(node)

	for _, sheet := range c.sheets {
		s.collect(sheet, sheet.Origin)
	}

	slices.SortStableFunc(s.matches, func(a, b match) int {
		if a.origin != b.origin {
			return cmp.Compare(a.origin, b.origin)
		}
		if n := a.specificity.Compare(b.specificity); n != 0 {
			return n
		}
		return cmp.Compare(a.seq, b.seq)
	})

	for i := range s.matches {
		m := &s.matches[i]
		s.origin, s.specificity, s.pseudo = m.origin, m.specificity, m.pseudo
		if err := s.apply(m.rule.Style, m.strings); err != nil {
			return nil, err
		}
	}

	if inline != nil && inline.InlineStyle() != nil {
		s.origin, s.specificity, s.pseudo = stylesheet.OriginAuthor, inlineSpecificity, selector.PseudoNone
		if err := s.apply(inline.InlineStyle(), inline.Strings); err != nil {
			return nil, err
		}
	}

	c.log.Debug("Selected", zap.Int("matches", len(s.matches)), zap.Int("rejected", s.matcher.Rejected()))
	return s.result(), nil
}

// collect gathers the matching selectors of sheet and, first, of the
// sheets it imports. Imported sheets take the origin of the importer.
func (s *state) collect(sheet *stylesheet.Stylesheet, origin stylesheet.Origin) {
	if sheet == nil || s.visited[sheet] || !mq.Evaluate(sheet.Media, s.media) {
		return
	}
	s.visited[sheet] = true

	for _, imp := range sheet.Imports() {
		if imp.Sheet != nil && mq.Evaluate(imp.Media, s.media) {
			s.collect(imp.Sheet, origin)
		}
	}

	for rule := range sheet.SelectorRules() {
		if !ruleGoodForMedia(rule, s.media) {
			continue
		}
		for _, sel := range rule.Selectors {
			if !s.matcher.Match(sel) {
				continue
			}
			s.seq++
			s.matches = append(s.matches, match{
				rule:        rule,
				strings:     sheet.Strings,
				origin:      origin,
				specificity: sel.Specificity,
				pseudo:      sel.PseudoElement(),
				seq:         s.seq,
			})
		}
	}
}

// ruleGoodForMedia reports whether every @media rule enclosing r matches.
func ruleGoodForMedia(r stylesheet.Rule, media *mq.Media) bool {
	for p := r.Parent(); p != nil; p = p.Parent() {
		if !mq.Evaluate(p.Media, media) {
			return false
		}
	}
	return true
}

// apply offers every record of style to the cascade.
func (s *state) apply(style *bytecode.Style, strs *bytecode.StringTable) error {
	words := style.Words()
	for off := 0; off < len(words); {
		d, n, err := bytecode.DecodeAt(words, off)
		if err != nil {
			return fmt.Errorf("corrupt style at word %d: %w", off, err)
		}
		off += n

		if d.Property >= bytecode.PropCount {
			continue
		}
		ps := &s.props[d.Property][s.pseudo]
		if !s.outranksExisting(ps, d.Important) {
			continue
		}
		*ps = propState{
			specificity: s.specificity,
			origin:      s.origin,
			important:   d.Important,
			inherit:     d.Inherit,
			set:         true,
			value: Value{
				Declaration: d,
				Strings:     strs,
				Origin:      s.origin,
				Specificity: s.specificity,
			},
		}
	}
	return nil
}

// outranksExisting decides whether a declaration from the current origin
// and specificity replaces the one already recorded in ps. Important UA
// declarations count as normal against other origins, important user
// declarations beat everything, and within one origin important beats
// normal. Otherwise equal rank goes to the later declaration.
func (s *state) outranksExisting(ps *propState, important bool) bool {
	if !ps.set {
		return true
	}

	switch {
	case ps.origin < s.origin:
		return !(ps.origin == stylesheet.OriginUser && ps.important)
	case ps.origin == s.origin:
		if important != ps.important {
			return important
		}
		return s.specificity.Compare(ps.specificity) >= 0
	}
	return s.origin == stylesheet.OriginUser && important
}

func (s *state) result() *Computed {
	c := &Computed{}
	for p := range s.props {
		for pe := range s.props[p] {
			ps := &s.props[p][pe]
			if !ps.set {
				continue
			}
			if c.Styles[pe] == nil {
				c.Styles[pe] = make(Style)
			}
			c.Styles[pe][bytecode.Property(p)] = ps.value
		}
	}
	return c
}
