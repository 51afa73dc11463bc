package stylesheet

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"csseng/css/bytecode"
	"csseng/css/mq"
	"csseng/css/props"
	"csseng/css/selector"
	"csseng/css/tokens"
	"csseng/intern"
)

// Options control how a stylesheet is parsed.
type Options struct {
	// URL is the location of the sheet and the base for relative URIs.
	URL    string
	Title  string
	Origin Origin
	Media  []*mq.Query

	// Quirks accepts unitless non-zero lengths.
	Quirks bool
	// MaxStyleWords limits the bytecode of a single rule, 0 for no limit.
	MaxStyleWords int

	// Interner is shared by all sheets that are selected together. A new
	// table is created when nil.
	Interner *intern.Table
	// Resolve turns relative URIs absolute, props.ResolveURL when nil.
	Resolve props.Resolver
	Log     *zap.Logger
}

type parser struct {
	log   *zap.Logger
	sheet *Stylesheet
	ctx   *props.Context
	p     *css.Parser
	limit int

	index int
	// @charset and @import are only honoured before any other rule
	sawRule bool
}

func newParser(data []byte, inline bool, opts Options) *parser {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	tbl := opts.Interner
	if tbl == nil {
		tbl = intern.NewTable()
	}

	sheet := &Stylesheet{
		URL:      opts.URL,
		Title:    opts.Title,
		Origin:   opts.Origin,
		Media:    opts.Media,
		Inline:   inline,
		Quirks:   opts.Quirks,
		Strings:  bytecode.NewStringTable(),
		Interner: tbl,
	}

	ctx := props.NewContext(tbl, sheet.Strings, log)
	ctx.BaseURL = opts.URL
	ctx.Quirks = opts.Quirks
	if opts.Resolve != nil {
		ctx.Resolve = opts.Resolve
	}

	return &parser{
		log:   log.Named("stylesheet"),
		sheet: sheet,
		ctx:   ctx,
		p:     css.NewParser(parse.NewInput(bytes.NewReader(data)), inline),
		limit: opts.MaxStyleWords,
	}
}

// Parse parses a complete stylesheet. Malformed declarations, selectors and
// media query lists are dropped and reported by Stylesheet.Err; only running
// out of style space fails the parse.
func Parse(data []byte, opts Options) (*Stylesheet, error) {
	ps := newParser(data, false, opts)
	ps.log.Debug("Parsing stylesheet", zap.String("url", opts.URL), zap.Int("bytes", len(data)))

	rules, err := ps.ruleList(nil)
	if err != nil {
		return nil, err
	}
	ps.finish(rules)
	return ps.sheet, nil
}

// ParseInline parses the contents of a style attribute: a bare declaration
// list. The result holds a single selector rule without selectors.
func ParseInline(data []byte, opts Options) (*Stylesheet, error) {
	ps := newParser(data, true, opts)

	rule := &SelectorRule{Style: bytecode.NewStyle(ps.limit)}
	for {
		gt, _, name := ps.p.Next()
		switch gt {
		case css.ErrorGrammar:
			if !ps.p.HasParseError() {
				ps.finish([]Rule{rule})
				return ps.sheet, nil
			}
			ps.warn(fmt.Errorf("%w: %w", bytecode.ErrInvalid, ps.p.Err()))
		case css.DeclarationGrammar:
			if err := ps.declaration(string(name), rule.Style); err != nil {
				return nil, err
			}
		case css.BeginAtRuleGrammar:
			ps.skipBlock()
			ps.warn(fmt.Errorf("%s in inline style: %w", name, bytecode.ErrInvalid))
		}
	}
}

func (ps *parser) finish(rules []Rule) {
	ps.sheet.Rules = rules
	ps.sheet.QuirksUsed = ps.ctx.QuirksUsed
	if ps.sheet.warnings != nil {
		ps.log.Debug("Stylesheet parsed with problems",
			zap.String("url", ps.sheet.URL),
			zap.Int("dropped", len(ps.sheet.Warnings())))
	}
}

func (ps *parser) warn(err error) {
	ps.log.Debug("Dropped", zap.Error(err))
	ps.sheet.warnings = multierr.Append(ps.sheet.warnings, err)
}

func (ps *parser) nextIndex() int {
	ps.index++
	return ps.index
}

func (ps *parser) vector(in []css.Token) tokens.Vector {
	return tokens.FromTdewolff(ps.sheet.Interner, in)
}

// ruleList reads rules until the end of the enclosing @media block, or of
// the input when parent is nil.
func (ps *parser) ruleList(parent *MediaRule) ([]Rule, error) {
	var rules []Rule
	for {
		gt, _, data := ps.p.Next()
		switch gt {
		case css.ErrorGrammar:
			if !ps.p.HasParseError() {
				return rules, nil
			}
			ps.warn(fmt.Errorf("%w: %w", bytecode.ErrInvalid, ps.p.Err()))

		case css.EndAtRuleGrammar:
			if parent != nil {
				return rules, nil
			}

		case css.BeginRulesetGrammar:
			ps.sawRule = true
			r, err := ps.ruleset(parent)
			if err != nil {
				return nil, err
			}
			if r != nil {
				rules = append(rules, r)
			}

		case css.AtRuleGrammar:
			if r := ps.atRule(string(data), parent); r != nil {
				rules = append(rules, r)
			}

		case css.BeginAtRuleGrammar:
			r, err := ps.blockAtRule(string(data), parent)
			if err != nil {
				return nil, err
			}
			if r != nil {
				rules = append(rules, r)
			}
		}
	}
}

func (ps *parser) ruleset(parent *MediaRule) (Rule, error) {
	prelude := ps.vector(ps.p.Values())
	sels, selErr := selector.Parse(ps.sheet.Interner, prelude)

	style := bytecode.NewStyle(ps.limit)
	if err := ps.declarations(style, css.EndRulesetGrammar); err != nil {
		return nil, err
	}

	if selErr != nil {
		ps.warn(selErr)
		return nil, nil
	}
	return &SelectorRule{
		base:      base{parent: parent, index: ps.nextIndex()},
		Selectors: sels,
		Style:     style,
	}, nil
}

// declarations parses a declaration block into style until the end event.
func (ps *parser) declarations(style *bytecode.Style, end css.GrammarType) error {
	for {
		gt, _, data := ps.p.Next()
		switch gt {
		case end:
			return nil
		case css.ErrorGrammar:
			if !ps.p.HasParseError() {
				return nil
			}
			ps.warn(fmt.Errorf("%w: %w", bytecode.ErrInvalid, ps.p.Err()))
		case css.DeclarationGrammar:
			if err := ps.declaration(string(data), style); err != nil {
				return err
			}
		case css.CustomPropertyGrammar:
			ps.log.Debug("Skipping custom property", zap.ByteString("name", data))
		case css.BeginAtRuleGrammar:
			ps.skipBlock()
			ps.warn(fmt.Errorf("nested %s: %w", data, bytecode.ErrInvalid))
		case css.AtRuleGrammar:
			ps.warn(fmt.Errorf("nested %s: %w", data, bytecode.ErrInvalid))
		}
	}
}

func (ps *parser) declaration(name string, style *bytecode.Style) error {
	err := props.Parse(ps.ctx, name, ps.vector(ps.p.Values()), style)
	switch {
	case err == nil:
	case errors.Is(err, bytecode.ErrOutOfMemory):
		return err
	default:
		ps.warn(err)
	}
	return nil
}

// skipBlock discards everything up to the end of the block just opened.
func (ps *parser) skipBlock() {
	depth := 1
	for depth > 0 {
		gt, _, _ := ps.p.Next()
		switch gt {
		case css.ErrorGrammar:
			if !ps.p.HasParseError() {
				return
			}
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// atRule handles the at-rules without a block.
func (ps *parser) atRule(name string, parent *MediaRule) Rule {
	prelude := ps.vector(ps.p.Values()).TrimSpace()
	first := !ps.sawRule
	ps.sawRule = true

	switch name {
	case "@charset":
		if !first || parent != nil || ps.index > 0 {
			ps.warn(fmt.Errorf("@charset not at the start: %w", bytecode.ErrInvalid))
			return nil
		}
		if len(prelude) != 1 || prelude[0].Type != tokens.String {
			ps.warn(fmt.Errorf("@charset %q: %w", prelude.Text(), bytecode.ErrInvalid))
			return nil
		}
		ps.sawRule = false
		return &CharsetRule{
			base:     base{index: ps.nextIndex()},
			Encoding: prelude[0].Data,
		}

	case "@import":
		if !first || parent != nil {
			ps.warn(fmt.Errorf("@import after other rules: %w", bytecode.ErrInvalid))
			return nil
		}
		// further imports may follow
		ps.sawRule = false
		return ps.importRule(prelude)
	}

	ps.log.Debug("Skipping @-rule", zap.String("rule", name))
	ps.warn(fmt.Errorf("unsupported %s: %w", name, bytecode.ErrInvalid))
	return nil
}

func (ps *parser) importRule(prelude tokens.Vector) Rule {
	cur := 0
	tok := prelude.Next(&cur)
	if tok == nil || (tok.Type != tokens.String && tok.Type != tokens.URI) {
		ps.warn(fmt.Errorf("@import %q: %w", prelude.Text(), bytecode.ErrInvalid))
		return nil
	}

	resolve := ps.ctx.Resolve
	if resolve == nil {
		resolve = props.ResolveURL
	}
	url, err := resolve(ps.sheet.URL, tok.Data)
	if err != nil {
		ps.log.Warn("Unable to resolve import", zap.String("uri", tok.Data), zap.Error(err))
		ps.warn(fmt.Errorf("@import %q: %w: %w", tok.Data, bytecode.ErrInvalid, err))
		return nil
	}

	media, err := mq.Parse(prelude[cur:].TrimSpace())
	if err != nil {
		ps.warn(fmt.Errorf("@import %q media: %w", tok.Data, err))
		media = mq.NotAll()
	}
	ps.log.Debug("Parsed @import", zap.String("url", url))
	return &ImportRule{
		base:  base{index: ps.nextIndex()},
		URL:   url,
		Media: media,
	}
}

// blockAtRule handles the at-rules followed by a block.
func (ps *parser) blockAtRule(name string, parent *MediaRule) (Rule, error) {
	prelude := ps.vector(ps.p.Values()).TrimSpace()
	ps.sawRule = true

	switch name {
	case "@media":
		media, err := mq.Parse(prelude)
		if err != nil {
			ps.warn(fmt.Errorf("@media %q: %w", prelude.Text(), err))
			media = mq.NotAll()
		}
		r := &MediaRule{
			base:  base{parent: parent, index: ps.nextIndex()},
			Media: media,
		}
		rules, err := ps.ruleList(r)
		if err != nil {
			return nil, err
		}
		r.Rules = rules
		ps.log.Debug("Parsed @media block", zap.String("query", mq.Format(media)), zap.Int("rules", len(rules)))
		return r, nil

	case "@font-face":
		r, err := ps.fontFace(parent)
		if err != nil {
			return nil, err
		}
		return r, nil

	case "@page":
		r := &PageRule{
			base:     base{parent: parent, index: ps.nextIndex()},
			Selector: prelude.Text(),
			Style:    bytecode.NewStyle(ps.limit),
		}
		if err := ps.declarations(r.Style, css.EndAtRuleGrammar); err != nil {
			return nil, err
		}
		return r, nil
	}

	ps.skipBlock()
	ps.log.Debug("Skipping @-rule", zap.String("rule", name))
	ps.warn(fmt.Errorf("unsupported %s: %w", name, bytecode.ErrInvalid))
	return nil, nil
}

func (ps *parser) fontFace(parent *MediaRule) (*FontFaceRule, error) {
	r := &FontFaceRule{base: base{parent: parent, index: ps.nextIndex()}}
	for {
		gt, _, data := ps.p.Next()
		switch gt {
		case css.EndAtRuleGrammar:
			if r.Family == "" {
				ps.warn(fmt.Errorf("@font-face without font-family: %w", bytecode.ErrInvalid))
			}
			return r, nil
		case css.ErrorGrammar:
			if !ps.p.HasParseError() {
				return r, nil
			}
			ps.warn(fmt.Errorf("%w: %w", bytecode.ErrInvalid, ps.p.Err()))
		case css.DeclarationGrammar:
			val := ps.vector(ps.p.Values()).TrimSpace()
			switch name := strings.ToLower(string(data)); name {
			case "font-family":
				if len(val) == 1 && val[0].Type == tokens.String {
					r.Family = val[0].Data
				} else {
					r.Family = val.Text()
				}
			case "src":
				r.Src = val.Text()
			case "font-style":
				r.Style = val.Text()
			case "font-weight":
				r.Weight = val.Text()
			default:
				ps.log.Debug("Skipping font descriptor", zap.String("descriptor", name))
			}
		}
	}
}
