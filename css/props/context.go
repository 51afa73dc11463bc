// Package props parses property values into style bytecode. There is one
// parser per property; shorthands expand into their longhands.
package props

import (
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"csseng/css/bytecode"
	"csseng/css/tokens"
	"csseng/intern"
)

// ErrInvalid is returned for malformed values.
var ErrInvalid = bytecode.ErrInvalid

// Resolver turns a possibly relative URI into an absolute one.
type Resolver func(base, rel string) (string, error)

// ResolveURL resolves rel against base following RFC 3986. An empty base
// leaves rel untouched.
func ResolveURL(base, rel string) (string, error) {
	r, err := url.Parse(rel)
	if err != nil {
		return "", fmt.Errorf("bad uri %q: %w", rel, err)
	}
	if base == "" {
		return r.String(), nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("bad base uri %q: %w", base, err)
	}
	return b.ResolveReference(r).String(), nil
}

type keyword int

const (
	kwInherit keyword = iota
	kwNone
	kwAuto
	kwNormal
	kwSpan
	kwCover
	kwContain
	kwCurrentColor
	kwTransparent
	kwURL
	kwRGB
	kwRGBA
	kwHSL
	kwHSLA

	kwCount
)

var keywordNames = [kwCount]string{
	kwInherit:      "inherit",
	kwNone:         "none",
	kwAuto:         "auto",
	kwNormal:       "normal",
	kwSpan:         "span",
	kwCover:        "cover",
	kwContain:      "contain",
	kwCurrentColor: "currentcolor",
	kwTransparent:  "transparent",
	kwURL:          "url",
	kwRGB:          "rgb",
	kwRGBA:         "rgba",
	kwHSL:          "hsl",
	kwHSLA:         "hsla",
}

// Context carries everything property parsers need from the stylesheet
// being parsed. Tokens handed to the parsers must be interned in the same
// table the context was created with.
type Context struct {
	Strings  *bytecode.StringTable
	Interner *intern.Table
	Resolve  Resolver
	BaseURL  string

	// Quirks allows non-zero unitless lengths. QuirksUsed records whether
	// that was ever needed.
	Quirks     bool
	QuirksUsed bool

	log *zap.Logger
	kw  [kwCount]intern.String
}

// NewContext prepares a parsing context. A nil logger disables logging.
func NewContext(tbl *intern.Table, strs *bytecode.StringTable, log *zap.Logger) *Context {
	if log == nil {
		log = zap.NewNop()
	}
	ctx := &Context{
		Strings:  strs,
		Interner: tbl,
		Resolve:  ResolveURL,
		log:      log.Named("props"),
	}
	for i, name := range keywordNames {
		ctx.kw[i] = tbl.Intern(name)
	}
	return ctx
}

func (ctx *Context) is(t *tokens.Token, k keyword) bool {
	return t != nil && t.Type == tokens.Ident && t.IData.CaselessEqual(ctx.kw[k])
}

func (ctx *Context) isFunction(t *tokens.Token, k keyword) bool {
	return t != nil && t.Type == tokens.Function && t.IData.CaselessEqual(ctx.kw[k])
}

// addString interns s into the stylesheet string table.
func (ctx *Context) addString(s string) uint32 {
	return ctx.Strings.Add(ctx.Interner.Intern(s))
}
