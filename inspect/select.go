package inspect

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"csseng/css/cascade"
	"csseng/css/mq"
	"csseng/css/selector"
	"csseng/css/stylesheet"
	"csseng/htmldom"
	"csseng/state"
	"csseng/utils/debug"
)

// Select computes the style of the elements of an HTML document against
// the user agent, user and author stylesheets.
func Select(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("select")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input document has been specified")
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many documents", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}
	m, err := mediaFor(env, cmd)
	if err != nil {
		return err
	}

	doc, err := loadDocument(src)
	if err != nil {
		return err
	}
	env.Rpt.Store("document.html", src)
	doc.Fragment = strings.TrimPrefix(cmd.String("target"), "#")
	doc.Lang = cmd.String("lang")

	var filter []*selector.Selector
	if q := cmd.String("query"); q != "" {
		if filter, err = selector.ParseString(env.Strings, q); err != nil {
			return fmt.Errorf("unable to use query: %w", err)
		}
	}

	sheets, err := collectSheets(env, cmd, doc, src)
	if err != nil {
		return err
	}
	cc := cascade.New(log, sheets...)

	defer func(start time.Time) {
		log.Debug("Selection completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	tw := debug.NewTreeWriter()
	matcher := selector.NewMatcher()
	var count int
	for n := range doc.Elements() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !matchesAny(matcher, n, filter) {
			continue
		}
		count++

		inline, err := inlineStyle(env, n)
		if err != nil {
			return err
		}
		c, err := cc.Select(n, m, inline)
		if err != nil {
			return fmt.Errorf("unable to select style for %s: %w", n.Path(), err)
		}
		tw.Line(0, "%s", n.Path())
		tw.DumpComputed(1, c, m)
	}
	log.Info("Styles computed", zap.String("document", src), zap.Int("sheets", len(sheets)), zap.Int("elements", count))

	env.Rpt.StoreData("select.txt", []byte(tw.String()))
	return output(cmd, tw.String())
}

func loadDocument(src string) (*htmldom.Document, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("unable to open document: %w", err)
	}
	defer f.Close()
	return htmldom.Parse(f)
}

func matchesAny(m *selector.Matcher, n *htmldom.Node, list []*selector.Selector) bool {
	if len(list) == 0 {
		return true
	}
	m.Reset(n)
	for _, s := range list {
		if m.Match(s) {
			return true
		}
	}
	return false
}

// collectSheets returns the stylesheets in cascade order: user agent
// (configured or built in), user, command line author sheets and finally
// <style> elements of the document.
func collectSheets(env *state.LocalEnv, cmd *cli.Command, doc *htmldom.Document, src string) ([]*stylesheet.Stylesheet, error) {
	log := env.Log.Named("select")

	sheets, err := env.UserAgentSheets()
	if err != nil {
		return nil, err
	}
	if env.Cfg == nil || env.Cfg.Parsing.UAStylesheet == "" {
		ua, err := stylesheet.Parse(defaultUAStylesheet, env.StylesheetOptions("", stylesheet.OriginUA))
		if err != nil {
			return nil, fmt.Errorf("unable to parse built-in stylesheet: %w", err)
		}
		sheets = append([]*stylesheet.Stylesheet{ua}, sheets...)
	}

	for _, path := range cmd.StringSlice("css") {
		sheet, err := env.LoadStylesheet(path, stylesheet.OriginAuthor)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, sheet)
	}

	if cmd.Bool("no-embedded") {
		return sheets, nil
	}
	base := ""
	if abs, err := filepath.Abs(src); err == nil {
		base = "file://" + filepath.ToSlash(abs)
	}
	for n := range doc.Elements() {
		h := n.HTML()
		if h.DataAtom != atom.Style || h.Namespace != "" {
			continue
		}
		opts := env.StylesheetOptions(base, stylesheet.OriginAuthor)
		opts.Title, _ = n.Attr("title")
		if media, ok := n.Attr("media"); ok {
			if opts.Media, err = mq.ParseString(env.Strings, media); err != nil {
				log.Debug("Invalid media attribute", zap.String("media", media), zap.Error(err))
				opts.Media = mq.NotAll()
			}
		}
		sheet, err := stylesheet.Parse([]byte(textContent(h)), opts)
		if err != nil {
			return nil, fmt.Errorf("unable to parse <style> of %s: %w", n.Path(), err)
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

func inlineStyle(env *state.LocalEnv, n *htmldom.Node) (*stylesheet.Stylesheet, error) {
	style, ok := n.Style()
	if !ok {
		return nil, nil
	}
	sheet, err := stylesheet.ParseInline([]byte(style), env.StylesheetOptions("", stylesheet.OriginAuthor))
	if err != nil {
		return nil, fmt.Errorf("unable to parse style attribute of %s: %w", n.Path(), err)
	}
	return sheet, nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}
