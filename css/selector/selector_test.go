package selector_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"csseng/css/selector"
	"csseng/intern"
)

type node struct {
	ns, name string
	attrs    map[string]string
	text     string
	flags    selector.Flags
	parent   *node
	kids     []*node
}

func el(name string, attrs map[string]string, kids ...*node) *node {
	n := &node{name: name, attrs: attrs}
	for _, k := range kids {
		k.parent = n
		n.kids = append(n.kids, k)
	}
	return n
}

func attrs(kv ...string) map[string]string {
	m := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return m
}

func (n *node) Name() (string, string) { return n.ns, n.name }
func (n *node) ID() string             { return n.attrs["id"] }
func (n *node) Classes() []string      { return strings.Fields(n.attrs["class"]) }
func (n *node) Flags() selector.Flags  { return n.flags }
func (n *node) IsEmpty() bool          { return len(n.kids) == 0 && n.text == "" }

func (n *node) Attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

func (n *node) Parent() selector.Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *node) sibling(delta int) selector.Node {
	if n.parent == nil {
		return nil
	}
	for i, k := range n.parent.kids {
		if k == n {
			if j := i + delta; j >= 0 && j < len(n.parent.kids) {
				return n.parent.kids[j]
			}
			return nil
		}
	}
	return nil
}

func (n *node) PrevSibling() selector.Node { return n.sibling(-1) }
func (n *node) NextSibling() selector.Node { return n.sibling(1) }

func (n *node) Lang() string {
	for a := n; a != nil; a = a.parent {
		if l, ok := a.attrs["lang"]; ok {
			return l
		}
	}
	return ""
}

func (n *node) walk(fn func(*node)) {
	fn(n)
	for _, k := range n.kids {
		k.walk(fn)
	}
}

func text(n *node, s string) *node {
	n.text = s
	return n
}

func document() *node {
	link := text(el("a", attrs("id", "link", "href", "https://example.com/x.pdf")), "pdf")
	link.flags = selector.FlagLink | selector.FlagHover

	pic := el("svg", attrs("id", "pic"), el("circle", attrs("id", "c1")))
	pic.ns, pic.kids[0].ns = "svg", "svg"

	return el("html", attrs("id", "root", "lang", "en-GB"),
		el("body", attrs("id", "body"),
			el("div", attrs("id", "main", "class", "content wide"),
				text(el("p", attrs("id", "p1", "class", "first")), "hello"),
				text(el("p", attrs("id", "p2", "class", "note", "data-x", "Foo bar")), "world"),
				el("ul", attrs("id", "list"),
					text(el("li", attrs("id", "l1")), "item"),
					text(el("li", attrs("id", "l2")), "item"),
					text(el("li", attrs("id", "l3")), "item"),
					text(el("li", attrs("id", "l4")), "item"),
				),
				link,
			),
			el("div", attrs("id", "side", "class", "sidebar", "lang", "fr"),
				el("span", attrs("id", "s1")),
			),
			pic,
		),
	)
}

func parseOne(t *testing.T, tbl *intern.Table, s string) *selector.Selector {
	t.Helper()
	list, err := selector.ParseString(tbl, s)
	require.NoError(t, err)
	require.Len(t, list, 1)
	return list[0]
}

func TestSpecificity(t *testing.T) {
	tbl := intern.NewTable()
	for _, tt := range []struct {
		sel  string
		want string
	}{
		{"*", "0,0,0"},
		{"li", "0,0,1"},
		{"ul li", "0,0,2"},
		{"ul ol+li", "0,0,3"},
		{"h1 + *[rel=up]", "0,1,1"},
		{"ul ol li.red", "0,1,3"},
		{"li.red.level", "0,2,1"},
		{"#x34y", "1,0,0"},
		{"#s12:not(foo)", "1,0,1"},
		{":not(.a, #b)", "1,0,0"},
		{"a:hover", "0,1,1"},
		{"p::first-line", "0,0,2"},
		{"li:nth-child(2n+1)", "0,1,1"},
	} {
		t.Run(tt.sel, func(t *testing.T) {
			require.Equal(t, tt.want, parseOne(t, tbl, tt.sel).Specificity.String())
		})
	}

	a := selector.Specificity{A: 1}
	b := selector.Specificity{B: 12, C: 3}
	require.Equal(t, 1, a.Compare(b))
	require.Equal(t, -1, b.Compare(a))
	require.Equal(t, 0, b.Compare(b))
	require.Equal(t, 1, selector.Specificity{B: 1, C: 5}.Compare(selector.Specificity{B: 1, C: 2}))
	require.Equal(t, -1, selector.Specificity{A: 1}.Compare(selector.Specificity{A: 1, C: 1}))
}

func TestParse_String(t *testing.T) {
	tbl := intern.NewTable()
	for _, tt := range []struct {
		in, want string
	}{
		{"div > p.note", "div > p.note"},
		{"div   p", "div p"},
		{"h1~*", "h1 ~ *"},
		{"h1+h2", "h1 + h2"},
		{"A.B#C", "a.B#C"},
		{"a[href^='http' i]", `a[href^="http" i]`},
		{"[Title]", "[title]"},
		{"[lang|=en]", `[lang|="en"]`},
		{"ul li:nth-child(2n+1)", "ul li:nth-child(2n+1)"},
		{":nth-child(odd)", ":nth-child(2n+1)"},
		{"li:nth-last-of-type(-n+3)", "li:nth-last-of-type(-1n+3)"},
		{"li:nth-of-type(2n-1)", "li:nth-of-type(2n-1)"},
		{"p:first-line", "p::first-line"},
		{"p::AFTER", "p::after"},
		{"svg|circle", "svg|circle"},
		{"*|p", "p"},
		{"|p", "|p"},
		{":not(.a, p)", ":not(.a, p)"},
		{":lang(en)", ":lang(en)"},
		{"a:HOVER", "a:hover"},
	} {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, parseOne(t, tbl, tt.in).String())
		})
	}
}

func TestParse_Group(t *testing.T) {
	tbl := intern.NewTable()
	list, err := selector.ParseString(tbl, "h1, h2 > em ,p::before")
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "h2 > em", list[1].String())
	require.Equal(t, selector.CombChild, list[1].Compounds[0].Comb)
	require.Equal(t, selector.CombNone, list[1].Compounds[1].Comb)
	require.Equal(t, selector.PseudoBefore, list[2].PseudoElement())
	require.Equal(t, selector.PseudoNone, list[0].PseudoElement())
}

func TestParse_Invalid(t *testing.T) {
	tbl := intern.NewTable()
	for _, s := range []string{
		"",
		"a,",
		",a",
		"a, , b",
		"a >",
		"> a",
		"a > > b",
		"p::before span",
		"p::before.x",
		"::foo",
		":foo",
		":hover()",
		"::not(a)",
		":nth-child",
		":nth-child(x)",
		":nth-child(2n + -1)",
		":not(::before)",
		":not(a b)",
		":lang()",
		"[a",
		"[a=]",
		"[=a]",
		"[a~=b c]",
		"a|",
		"#",
		".",
		"a..b",
		"p !",
		"a:hover(",
	} {
		t.Run(s, func(t *testing.T) {
			list, err := selector.ParseString(tbl, s)
			require.Error(t, err)
			require.True(t, errors.Is(err, selector.ErrInvalid), "%v", err)
			require.Nil(t, list)
		})
	}
}

func matchAll(t *testing.T, tbl *intern.Table, doc *node, s string) []string {
	t.Helper()
	sel := parseOne(t, tbl, s)
	m := selector.NewMatcher()
	var got []string
	doc.walk(func(n *node) {
		m.Reset(n)
		if m.Match(sel) {
			got = append(got, n.ID())
		}
	})
	return got
}

func TestMatch(t *testing.T) {
	tbl := intern.NewTable()
	doc := document()
	all := func(ids ...string) []string { return ids }

	for _, tt := range []struct {
		sel  string
		want []string
	}{
		{"p", all("p1", "p2")},
		{"P", all("p1", "p2")},
		{"div p", all("p1", "p2")},
		{"body > p", nil},
		{"div > p", all("p1", "p2")},
		{"p + p", all("p2")},
		{"p ~ a", all("link")},
		{"p ~ ul li", all("l1", "l2", "l3", "l4")},
		{"html body div ul > li:first-child", all("l1")},
		{"div.sidebar ~ svg", all("pic")},
		{".missing p", nil},

		{"li:nth-child(odd)", all("l1", "l3")},
		{"li:nth-child(2n)", all("l2", "l4")},
		{"li:nth-child(3)", all("l3")},
		{"li:nth-last-child(1)", all("l4")},
		{"li:nth-child(-n+2)", all("l1", "l2")},
		{"p:first-of-type", all("p1")},
		{"p:last-of-type", all("p2")},
		{"p:nth-of-type(2)", all("p2")},
		{"ul:only-of-type", all("list")},
		{"div:first-child", all("main")},
		{"li:only-child", nil},
		{"span:only-child", all("s1")},
		{":root", all("root")},
		{":empty", all("s1", "c1")},

		{"a:hover", all("link")},
		{"a:visited", nil},
		{":link", all("link")},

		{"[href$='.pdf']", all("link")},
		{"[href^=https]", all("link")},
		{"[data-x~=bar]", all("p2")},
		{"[data-x~=Bar]", nil},
		{"[data-x~=BAR i]", all("p2")},
		{"[data-x='foo bar' i]", all("p2")},
		{"[data-x='foo bar']", nil},
		{"[data-x*=o]", all("p2")},
		{"[data-x*='']", nil},
		{"[lang|=en]", all("root")},
		{"[lang|=en-GB]", all("root")},
		{"[lang=en]", nil},

		{":lang(fr)", all("side", "s1")},
		{"p:lang(en)", all("p1", "p2")},
		{"p:lang(en-gb)", all("p1", "p2")},
		{"p:lang(e)", nil},

		{".content.wide", all("main")},
		{"#main .first", all("p1")},
		{"p:not(.note)", all("p1")},
		{"li:not(:first-child, :last-child)", all("l2", "l3")},

		{"svg|circle", all("c1")},
		{"svg|*", all("pic", "c1")},
		{"*|circle", all("c1")},
		{"|p", all("p1", "p2")},
		{"|circle", nil},
	} {
		t.Run(tt.sel, func(t *testing.T) {
			require.Equal(t, tt.want, matchAll(t, tbl, doc, tt.sel))
		})
	}
}

func TestMatcher_RejectCache(t *testing.T) {
	tbl := intern.NewTable()
	doc := document()
	p1 := doc.kids[0].kids[0].kids[0]
	require.Equal(t, "p1", p1.ID())

	m := selector.NewMatcher()
	m.Reset(p1)
	match := func(s string) bool { return m.Match(parseOne(t, tbl, s)) }

	require.False(t, match(".missing p"))
	require.Equal(t, 1, m.Rejected())
	require.False(t, match(".missing p"))
	require.False(t, match(".missing > p"))
	require.Equal(t, 1, m.Rejected())

	// the compound was found, so nothing is remembered
	require.True(t, match("#main p"))
	require.True(t, match(".content p"))
	require.Equal(t, 1, m.Rejected())

	// only compounds next to the subject are cached
	require.False(t, match(".gone div p"))
	require.Equal(t, 1, m.Rejected())

	// neither are other combinators
	require.False(t, match(".missing + p"))
	require.Equal(t, 1, m.Rejected())

	// subject mismatch stops before any ancestor is looked at
	require.False(t, match(".other li"))
	require.Equal(t, 1, m.Rejected())

	require.False(t, match("#missing p"))
	require.Equal(t, 2, m.Rejected())

	require.True(t, match("p"))

	m.Reset(p1)
	require.Equal(t, 0, m.Rejected())

	for i := range selector.RejectCacheSize + 2 {
		require.False(t, match(fmt.Sprintf(".c%d p", i)))
	}
	require.Equal(t, selector.RejectCacheSize, m.Rejected())
	require.True(t, match("div p"))
}
