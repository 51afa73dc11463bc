package debug

import (
	"fmt"
	"strings"

	"csseng/css/bytecode"
	"csseng/css/cascade"
	"csseng/css/mq"
	"csseng/css/selector"
	"csseng/css/stylesheet"
)

// DumpStylesheet writes sheet and the sheets it imports.
func (tw TreeWriter) DumpStylesheet(depth int, sheet *stylesheet.Stylesheet) {
	tw.dumpSheet(depth, sheet, make(map[*stylesheet.Stylesheet]bool))
}

func (tw TreeWriter) dumpSheet(depth int, sheet *stylesheet.Stylesheet, seen map[*stylesheet.Stylesheet]bool) {
	seen[sheet] = true

	tw.Line(depth, "stylesheet %s origin=%s media=%s", quoteOr(sheet.URL, "<inline>"), sheet.Origin, mediaText(sheet.Media))
	if sheet.Title != "" {
		tw.TextBlock(depth+1, "title", sheet.Title)
	}
	if sheet.QuirksUsed {
		tw.Line(depth+1, "quirks used")
	}
	for _, w := range sheet.Warnings() {
		tw.TextBlock(depth+1, "dropped", w.Error())
	}
	tw.dumpRules(depth+1, sheet, sheet.Rules, seen)
}

func (tw TreeWriter) dumpRules(depth int, sheet *stylesheet.Stylesheet, rules []stylesheet.Rule, seen map[*stylesheet.Stylesheet]bool) {
	for _, r := range rules {
		switch r := r.(type) {
		case *stylesheet.CharsetRule:
			tw.Line(depth, "[%d] @charset %q", r.Index(), r.Encoding)
		case *stylesheet.ImportRule:
			tw.Line(depth, "[%d] @import %q media=%s", r.Index(), r.URL, mediaText(r.Media))
			switch {
			case r.Sheet == nil:
				tw.Line(depth+1, "not loaded")
			case seen[r.Sheet]:
				tw.Line(depth+1, "already shown")
			default:
				tw.dumpSheet(depth+1, r.Sheet, seen)
			}
		case *stylesheet.MediaRule:
			tw.Line(depth, "[%d] @media %s", r.Index(), mediaText(r.Media))
			tw.dumpRules(depth+1, sheet, r.Rules, seen)
		case *stylesheet.FontFaceRule:
			tw.Line(depth, "[%d] @font-face", r.Index())
			tw.TextBlock(depth+1, "font-family", r.Family)
			tw.TextBlock(depth+1, "src", r.Src)
			tw.TextBlock(depth+1, "font-style", r.Style)
			tw.TextBlock(depth+1, "font-weight", r.Weight)
		case *stylesheet.PageRule:
			tw.Line(depth, "[%d] @page %s", r.Index(), r.Selector)
			tw.dumpStyle(depth+1, r.Style, sheet.Strings)
		case *stylesheet.SelectorRule:
			sels := make([]string, len(r.Selectors))
			for i, s := range r.Selectors {
				sels[i] = s.String() + " (" + s.Specificity.String() + ")"
			}
			tw.Line(depth, "[%d] %s", r.Index(), strings.Join(sels, ", "))
			tw.dumpStyle(depth+1, r.Style, sheet.Strings)
		}
	}
}

func (tw TreeWriter) dumpStyle(depth int, style *bytecode.Style, strs *bytecode.StringTable) {
	decls, err := bytecode.Decode(style)
	for _, d := range decls {
		tw.Line(depth, "%s", d.Format(strs))
	}
	if err != nil {
		tw.TextBlock(depth, "corrupt", err.Error())
	}
}

// DumpComputed writes the result of a selection, one block per styled
// pseudo-element. With media, lengths are followed by their pixel value.
func (tw TreeWriter) DumpComputed(depth int, c *cascade.Computed, media *mq.Media) {
	for pe := range selector.PseudoCount {
		if c.Styles[pe] == nil {
			continue
		}
		name := "element"
		if pe != selector.PseudoNone {
			name = "::" + pe.String()
		}
		tw.Line(depth, "%s", name)
		for _, v := range c.Values(pe) {
			if px, ok := v.Pixels(media); ok {
				tw.Line(depth+1, "%s (= %dpx)", v.Text(), px.Round())
				continue
			}
			tw.Line(depth+1, "%s", v.Text())
		}
	}
}

func mediaText(list []*mq.Query) string {
	if len(list) == 0 {
		return "all"
	}
	return mq.Format(list)
}

func quoteOr(s, empty string) string {
	if s == "" {
		return empty
	}
	return fmt.Sprintf("%q", s)
}
