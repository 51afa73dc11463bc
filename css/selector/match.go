package selector

import (
	"slices"
	"strings"
)

// Flags carries the dynamic state of an element that pseudo-classes test.
type Flags uint16

const (
	FlagLink Flags = 1 << iota
	FlagVisited
	FlagHover
	FlagActive
	FlagFocus
	FlagFocusWithin
	FlagTarget
	FlagChecked
	FlagDisabled
	FlagEnabled
)

var flagOf = map[PseudoClass]Flags{
	PCLink:        FlagLink,
	PCVisited:     FlagVisited,
	PCHover:       FlagHover,
	PCActive:      FlagActive,
	PCFocus:       FlagFocus,
	PCFocusWithin: FlagFocusWithin,
	PCTarget:      FlagTarget,
	PCChecked:     FlagChecked,
	PCDisabled:    FlagDisabled,
	PCEnabled:     FlagEnabled,
}

// Node is an element of the document being styled. Navigation methods
// return nil, not a typed nil, when there is no such element; only element
// nodes are ever returned.
type Node interface {
	// Name returns the namespace prefix ("" for HTML) and the local name.
	Name() (ns, local string)
	ID() string
	Classes() []string
	Attr(name string) (string, bool)
	Parent() Node
	PrevSibling() Node
	NextSibling() Node
	// IsEmpty reports whether the element has no element children and no
	// text.
	IsEmpty() bool
	Flags() Flags
	// Lang returns the language of the element, possibly inherited.
	Lang() string
}

// RejectCacheSize is the number of compounds the matcher remembers as
// absent from the ancestors of the current node.
const RejectCacheSize = 128

type rejectEntry struct {
	kind Kind
	name string
}

// Matcher matches selectors against a single subject node. It remembers
// single class or id compounds that no ancestor of the subject carries, so
// later descendant and child selectors needing them fail fast. The cache is
// only valid for one subject; call Reset before moving on.
type Matcher struct {
	node   Node
	reject [RejectCacheSize]rejectEntry
	next   int // cache fills from the end down to 0
}

func NewMatcher() *Matcher {
	m := &Matcher{}
	m.Reset(nil)
	return m
}

// Reset makes n the subject and empties the reject cache.
func (m *Matcher) Reset(n Node) {
	m.node = n
	m.next = RejectCacheSize
}

// Rejected returns the number of entries in the reject cache.
func (m *Matcher) Rejected() int {
	return RejectCacheSize - m.next
}

// Match reports whether sel matches the current subject. Pseudo-elements
// are not tested here; the caller decides which one it is selecting for.
func (m *Matcher) Match(sel *Selector) bool {
	if m.node == nil || len(sel.Compounds) == 0 {
		return false
	}
	if !m.matchCompound(sel.Compounds[0], m.node) {
		return false
	}
	return m.matchChain(sel, 0, m.node)
}

// cacheable reports whether c is a universal compound holding exactly one
// class or id test.
func cacheable(c *Compound) bool {
	if !c.Name.IsZero() || c.HasNS || c.Pseudo != PseudoNone || len(c.Simples) != 1 {
		return false
	}
	k := c.Simples[0].Kind
	return k == KindClass || k == KindID
}

func (m *Matcher) rejected(c *Compound) bool {
	s := &c.Simples[0]
	for i := m.next; i < RejectCacheSize; i++ {
		if e := &m.reject[i]; e.kind == s.Kind && e.name == s.Name.String() {
			return true
		}
	}
	return false
}

func (m *Matcher) remember(c *Compound) {
	if m.next == 0 {
		return
	}
	m.next--
	m.reject[m.next] = rejectEntry{kind: c.Simples[0].Kind, name: c.Simples[0].Name.String()}
}

// matchChain matches the compounds left of i, with n matching
// sel.Compounds[i].
func (m *Matcher) matchChain(sel *Selector, i int, n Node) bool {
	if i == len(sel.Compounds)-1 {
		return true
	}
	comb, next := sel.Compounds[i].Comb, sel.Compounds[i+1]

	useCache := i == 0 && cacheable(next) && (comb == CombDescendant || comb == CombChild)
	if useCache && m.rejected(next) {
		return false
	}

	switch comb {
	case CombDescendant:
		found := false
		for a := n.Parent(); a != nil; a = a.Parent() {
			if !m.matchCompound(next, a) {
				continue
			}
			found = true
			if m.matchChain(sel, i+1, a) {
				return true
			}
		}
		if useCache && !found {
			m.remember(next)
		}
	case CombChild:
		if a := n.Parent(); a != nil && m.matchCompound(next, a) {
			return m.matchChain(sel, i+1, a)
		}
	case CombAdjacent:
		if s := n.PrevSibling(); s != nil && m.matchCompound(next, s) {
			return m.matchChain(sel, i+1, s)
		}
	case CombSibling:
		for s := n.PrevSibling(); s != nil; s = s.PrevSibling() {
			if m.matchCompound(next, s) && m.matchChain(sel, i+1, s) {
				return true
			}
		}
	}
	return false
}

func (m *Matcher) matchCompound(c *Compound, n Node) bool {
	ns, local := n.Name()
	if c.HasNS && !strings.EqualFold(ns, c.NS) {
		return false
	}
	if !c.Name.IsZero() && !strings.EqualFold(local, c.Name.String()) {
		return false
	}
	for i := range c.Simples {
		if !m.matchSimple(&c.Simples[i], n) {
			return false
		}
	}
	return true
}

func (m *Matcher) matchSimple(s *Simple, n Node) bool {
	switch s.Kind {
	case KindID:
		return n.ID() == s.Name.String()
	case KindClass:
		return slices.Contains(n.Classes(), s.Name.String())
	case KindAttr:
		return matchAttr(s, n)
	}

	if f, ok := flagOf[s.Pseudo]; ok {
		return n.Flags()&f != 0
	}
	switch s.Pseudo {
	case PCRoot:
		return n.Parent() == nil
	case PCEmpty:
		return n.IsEmpty()
	case PCFirstChild:
		return n.PrevSibling() == nil
	case PCLastChild:
		return n.NextSibling() == nil
	case PCOnlyChild:
		return n.PrevSibling() == nil && n.NextSibling() == nil
	case PCFirstOfType:
		return siblings(n, false, true) == 0
	case PCLastOfType:
		return siblings(n, true, true) == 0
	case PCOnlyOfType:
		return siblings(n, false, true) == 0 && siblings(n, true, true) == 0
	case PCNthChild:
		return nthMatches(s.A, s.B, 1+siblings(n, false, false))
	case PCNthLastChild:
		return nthMatches(s.A, s.B, 1+siblings(n, true, false))
	case PCNthOfType:
		return nthMatches(s.A, s.B, 1+siblings(n, false, true))
	case PCNthLastOfType:
		return nthMatches(s.A, s.B, 1+siblings(n, true, true))
	case PCNot:
		for _, c := range s.Not {
			if m.matchCompound(c, n) {
				return false
			}
		}
		return true
	case PCLang:
		return langMatches(n.Lang(), s.Lang)
	}
	return false
}

func matchAttr(s *Simple, n Node) bool {
	v, ok := n.Attr(s.Name.String())
	if !ok {
		return false
	}
	want := s.Value
	if s.Fold {
		v, want = strings.ToLower(v), strings.ToLower(want)
	}

	switch s.Op {
	case AttrExists:
		return true
	case AttrEquals:
		return v == want
	case AttrIncludes:
		return want != "" && !strings.ContainsAny(want, " \t\n\r\f") && slices.Contains(strings.Fields(v), want)
	case AttrDashMatch:
		return v == want || strings.HasPrefix(v, want+"-")
	case AttrPrefix:
		return want != "" && strings.HasPrefix(v, want)
	case AttrSuffix:
		return want != "" && strings.HasSuffix(v, want)
	case AttrSubstring:
		return want != "" && strings.Contains(v, want)
	}
	return false
}

// langMatches is true for an exact match or a match followed by '-'.
func langMatches(lang, want string) bool {
	if len(lang) < len(want) || !strings.EqualFold(lang[:len(want)], want) {
		return false
	}
	return len(lang) == len(want) || lang[len(want)] == '-'
}

// siblings counts the element siblings before (or after) n, optionally only
// those with the same element name.
func siblings(n Node, after, ofType bool) int {
	step := Node.PrevSibling
	if after {
		step = Node.NextSibling
	}
	_, name := n.Name()

	count := 0
	for s := step(n); s != nil; s = step(s) {
		if ofType {
			if _, local := s.Name(); !strings.EqualFold(local, name) {
				continue
			}
		}
		count++
	}
	return count
}
