package props

import (
	"fmt"

	"go.uber.org/zap"

	"csseng/css/tokens"
)

func (ctx *Context) isURI(t *tokens.Token) bool {
	return t != nil && (t.Type == tokens.URI || ctx.isFunction(t, kwURL))
}

// parseURI reads url(...) in either its token or function form, resolves it
// against the stylesheet base and stores it in the string table.
func (ctx *Context) parseURI(vec tokens.Vector, cur *int) (uint32, error) {
	orig := *cur
	tok := vec.Next(cur)

	var rel string
	switch {
	case tok == nil:
		return 0, ErrInvalid
	case tok.Type == tokens.URI:
		rel = tok.Data
	case ctx.isFunction(tok, kwURL):
		vec.ConsumeWhitespace(cur)
		s := vec.Next(cur)
		vec.ConsumeWhitespace(cur)
		if s == nil || s.Type != tokens.String || !vec.Next(cur).IsChar(')') {
			*cur = orig
			return 0, fmt.Errorf("malformed url(): %w", ErrInvalid)
		}
		rel = s.Data
	default:
		*cur = orig
		return 0, ErrInvalid
	}

	resolve := ctx.Resolve
	if resolve == nil {
		resolve = ResolveURL
	}
	abs, err := resolve(ctx.BaseURL, rel)
	if err != nil {
		*cur = orig
		ctx.log.Warn("Unable to resolve URI", zap.String("uri", rel), zap.String("base", ctx.BaseURL), zap.Error(err))
		return 0, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return ctx.addString(abs), nil
}
