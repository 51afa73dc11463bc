// Package htmldom exposes golang.org/x/net/html trees as nodes the selector
// engine can match.
package htmldom

import (
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"csseng/css/selector"
)

// Document is a parsed HTML document together with the dynamic element
// state (hover, focus and the like) the tree itself does not carry.
type Document struct {
	Root *html.Node
	// Fragment is the id of the :target element, without '#'.
	Fragment string
	// Lang is used for elements without a lang attribute on any ancestor.
	Lang string

	state map[*html.Node]selector.Flags
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("unable to parse html: %w", err)
	}
	return New(root), nil
}

// New wraps an existing tree.
func New(root *html.Node) *Document {
	return &Document{Root: root, state: make(map[*html.Node]selector.Flags)}
}

// SetState records dynamic state flags for n, replacing earlier ones.
func (d *Document) SetState(n *html.Node, f selector.Flags) {
	if f == 0 {
		delete(d.state, n)
		return
	}
	d.state[n] = f
}

// Node wraps n, returning nil unless it is an element.
func (d *Document) Node(n *html.Node) *Node {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	return &Node{doc: d, n: n}
}

// Elements yields every element in document order.
func (d *Document) Elements() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		var walk func(n *html.Node) bool
		walk = func(n *html.Node) bool {
			if n.Type == html.ElementNode && !yield(&Node{doc: d, n: n}) {
				return false
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if !walk(c) {
					return false
				}
			}
			return true
		}
		if d.Root != nil {
			walk(d.Root)
		}
	}
}

// ByID returns the first element with the given id, or nil.
func (d *Document) ByID(id string) *Node {
	for n := range d.Elements() {
		if n.ID() == id {
			return n
		}
	}
	return nil
}

// Node is an element of a Document. It implements selector.Node.
type Node struct {
	doc *Document
	n   *html.Node
}

var _ selector.Node = (*Node)(nil)

// HTML returns the wrapped node.
func (n *Node) HTML() *html.Node {
	return n.n
}

func (n *Node) Name() (string, string) {
	return n.n.Namespace, n.n.Data
}

func (n *Node) ID() string {
	id, _ := n.Attr("id")
	return id
}

func (n *Node) Classes() []string {
	class, _ := n.Attr("class")
	return strings.Fields(class)
}

// Attr looks up an attribute without a namespace. Attribute names are
// compared ignoring ASCII case.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

// Style returns the contents of the style attribute.
func (n *Node) Style() (string, bool) {
	return n.Attr("style")
}

func (n *Node) element(h *html.Node) selector.Node {
	if h == nil {
		return nil
	}
	return &Node{doc: n.doc, n: h}
}

func (n *Node) Parent() selector.Node {
	p := n.n.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return n.element(p)
}

func (n *Node) PrevSibling() selector.Node {
	for s := n.n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return n.element(s)
		}
	}
	return nil
}

func (n *Node) NextSibling() selector.Node {
	for s := n.n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return n.element(s)
		}
	}
	return nil
}

// IsEmpty is true when n has neither element nor text children. Comments
// do not count.
func (n *Node) IsEmpty() bool {
	for c := n.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode || c.Type == html.TextNode {
			return false
		}
	}
	return true
}

// Flags combines the state derived from the markup (links, checked and
// disabled form controls, the target element) with the state recorded by
// SetState.
func (n *Node) Flags() selector.Flags {
	f := n.doc.state[n.n]
	if n.n.Namespace != "" {
		return f
	}

	_, hasHref := n.Attr("href")
	_, disabled := n.Attr("disabled")
	switch n.n.DataAtom {
	case atom.A, atom.Area, atom.Link:
		if hasHref {
			f |= selector.FlagLink
		}
	case atom.Input:
		if _, checked := n.Attr("checked"); checked {
			switch typ, _ := n.Attr("type"); strings.ToLower(typ) {
			case "checkbox", "radio":
				f |= selector.FlagChecked
			}
		}
		f |= enabledOrDisabled(disabled)
	case atom.Option:
		if _, selected := n.Attr("selected"); selected {
			f |= selector.FlagChecked
		}
		f |= enabledOrDisabled(disabled)
	case atom.Button, atom.Select, atom.Textarea, atom.Optgroup, atom.Fieldset:
		f |= enabledOrDisabled(disabled)
	}

	if id := n.ID(); id != "" && id == n.doc.Fragment {
		f |= selector.FlagTarget
	}
	return f
}

func enabledOrDisabled(disabled bool) selector.Flags {
	if disabled {
		return selector.FlagDisabled
	}
	return selector.FlagEnabled
}

// Lang returns the closest lang attribute, falling back to Document.Lang.
func (n *Node) Lang() string {
	for h := n.n; h != nil; h = h.Parent {
		if h.Type != html.ElementNode {
			continue
		}
		for _, a := range h.Attr {
			if strings.EqualFold(a.Key, "lang") && (a.Namespace == "" || a.Namespace == "xml") {
				return a.Val
			}
		}
	}
	return n.doc.Lang
}

// Path renders the element and its ancestors for diagnostics, like
// "html > body > div#main.wide".
func (n *Node) Path() string {
	var parts []string
	for h := n.n; h != nil && h.Type == html.ElementNode; h = h.Parent {
		e := &Node{doc: n.doc, n: h}
		s := h.Data
		if id := e.ID(); id != "" {
			s += "#" + id
		}
		for _, c := range e.Classes() {
			s += "." + c
		}
		parts = append(parts, s)
	}
	slices.Reverse(parts)
	return strings.Join(parts, " > ")
}
