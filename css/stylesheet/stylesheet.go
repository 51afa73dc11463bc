// Package stylesheet parses CSS source into rules holding style bytecode.
package stylesheet

import (
	"iter"

	"go.uber.org/multierr"

	"csseng/css/bytecode"
	"csseng/css/mq"
	"csseng/css/selector"
	"csseng/intern"
)

// Origin is where a stylesheet comes from. Later origins win the cascade
// for normal declarations.
type Origin uint8

const (
	OriginUA Origin = iota
	OriginUser
	OriginAuthor
)

func (o Origin) String() string {
	switch o {
	case OriginUA:
		return "user-agent"
	case OriginUser:
		return "user"
	case OriginAuthor:
		return "author"
	}
	return "unknown"
}

// RuleType identifies a rule variant.
type RuleType uint8

const (
	RuleSelector RuleType = iota
	RuleCharset
	RuleImport
	RuleMedia
	RuleFontFace
	RulePage
)

func (t RuleType) String() string {
	switch t {
	case RuleSelector:
		return "selector"
	case RuleCharset:
		return "@charset"
	case RuleImport:
		return "@import"
	case RuleMedia:
		return "@media"
	case RuleFontFace:
		return "@font-face"
	case RulePage:
		return "@page"
	}
	return "unknown"
}

// Rule is one rule of a stylesheet.
type Rule interface {
	Type() RuleType
	// Parent returns the enclosing @media rule, nil at the top level.
	Parent() *MediaRule
	// Index is the position of the rule in source order across the whole
	// stylesheet, nested rules included.
	Index() int
}

type base struct {
	parent *MediaRule
	index  int
}

func (b *base) Parent() *MediaRule { return b.parent }
func (b *base) Index() int         { return b.index }

// SelectorRule is a style rule. Selectors is nil for the single rule of an
// inline style.
type SelectorRule struct {
	base
	Selectors []*selector.Selector
	Style     *bytecode.Style
}

func (*SelectorRule) Type() RuleType { return RuleSelector }

type CharsetRule struct {
	base
	Encoding string
}

func (*CharsetRule) Type() RuleType { return RuleCharset }

// ImportRule references another stylesheet. The caller fetches and parses
// it, then attaches the result to Sheet.
type ImportRule struct {
	base
	URL   string
	Media []*mq.Query
	Sheet *Stylesheet
}

func (*ImportRule) Type() RuleType { return RuleImport }

// MediaRule groups rules applying when its query list matches.
type MediaRule struct {
	base
	Media []*mq.Query
	Rules []Rule
}

func (*MediaRule) Type() RuleType { return RuleMedia }

type FontFaceRule struct {
	base
	Family string
	Src    string
	Style  string
	Weight string
}

func (*FontFaceRule) Type() RuleType { return RuleFontFace }

// PageRule holds the declarations of an @page rule. Selector is the raw
// page selector, possibly empty.
type PageRule struct {
	base
	Selector string
	Style    *bytecode.Style
}

func (*PageRule) Type() RuleType { return RulePage }

// Stylesheet is the parsed form of one CSS source. It is not modified after
// Parse returns, except for attaching imported sheets.
type Stylesheet struct {
	URL    string
	Title  string
	Origin Origin
	// Media restricts the whole sheet, nil means all media.
	Media []*mq.Query

	Inline     bool
	Quirks     bool
	QuirksUsed bool

	Rules    []Rule
	Strings  *bytecode.StringTable
	Interner *intern.Table

	warnings error
}

// Err returns every problem that made the parser drop a declaration, rule
// or media query list, combined with multierr. Nil if there were none.
func (s *Stylesheet) Err() error {
	return s.warnings
}

// Warnings returns the individual problems gathered in Err.
func (s *Stylesheet) Warnings() []error {
	return multierr.Errors(s.warnings)
}

// Imports returns the @import rules of the sheet in source order.
func (s *Stylesheet) Imports() []*ImportRule {
	var out []*ImportRule
	for _, r := range s.Rules {
		if ir, ok := r.(*ImportRule); ok {
			out = append(out, ir)
		}
	}
	return out
}

// SelectorRules yields every style rule, descending into @media blocks.
// Imported sheets are not visited.
func (s *Stylesheet) SelectorRules() iter.Seq[*SelectorRule] {
	return func(yield func(*SelectorRule) bool) {
		walkSelectorRules(s.Rules, yield)
	}
}

func walkSelectorRules(rules []Rule, yield func(*SelectorRule) bool) bool {
	for _, r := range rules {
		switch r := r.(type) {
		case *SelectorRule:
			if !yield(r) {
				return false
			}
		case *MediaRule:
			if !walkSelectorRules(r.Rules, yield) {
				return false
			}
		}
	}
	return true
}

// InlineStyle returns the style of a sheet parsed with ParseInline.
func (s *Stylesheet) InlineStyle() *bytecode.Style {
	if !s.Inline || len(s.Rules) == 0 {
		return nil
	}
	if r, ok := s.Rules[0].(*SelectorRule); ok {
		return r.Style
	}
	return nil
}
