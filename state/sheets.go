package state

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"

	"csseng/css/stylesheet"
)

// maxImportDepth bounds @import chains.
const maxImportDepth = 16

// StylesheetOptions returns parse options for a sheet located at loc,
// taking parsing settings from the configuration. An empty loc falls back
// to the configured base URL.
func (e *LocalEnv) StylesheetOptions(loc string, origin stylesheet.Origin) stylesheet.Options {
	opts := stylesheet.Options{
		URL:      loc,
		Origin:   origin,
		Interner: e.Strings,
		Log:      e.logger(),
	}
	if e.Cfg != nil {
		opts.Quirks = e.Cfg.Parsing.Quirks
		opts.MaxStyleWords = e.Cfg.Parsing.MaxStyleWords
		if opts.URL == "" {
			opts.URL = e.Cfg.Parsing.BaseURL
		}
	}
	return opts
}

// LoadStylesheet parses the file at path and, recursively, the local files
// it imports. Imports which cannot be loaded are logged and left without a
// sheet, cycles share the already loaded sheet.
func (e *LocalEnv) LoadStylesheet(path string, origin stylesheet.Origin) (*stylesheet.Stylesheet, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("unable to locate stylesheet '%s': %w", path, err)
	}
	return e.load(fileURL(abs), origin, make(map[string]*stylesheet.Stylesheet), 0)
}

// UserAgentSheets loads the configured user agent and user stylesheets,
// skipping those not configured.
func (e *LocalEnv) UserAgentSheets() ([]*stylesheet.Stylesheet, error) {
	if e.Cfg == nil {
		return nil, nil
	}
	var sheets []*stylesheet.Stylesheet
	for _, s := range []struct {
		path   string
		origin stylesheet.Origin
	}{
		{e.Cfg.Parsing.UAStylesheet, stylesheet.OriginUA},
		{e.Cfg.Parsing.UserStylesheet, stylesheet.OriginUser},
	} {
		if s.path == "" {
			continue
		}
		sheet, err := e.LoadStylesheet(s.path, s.origin)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

func (e *LocalEnv) load(loc string, origin stylesheet.Origin, seen map[string]*stylesheet.Stylesheet, depth int) (*stylesheet.Stylesheet, error) {
	path, err := localPath(loc)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read stylesheet: %w", err)
	}
	if data, err = decode(data); err != nil {
		return nil, fmt.Errorf("unable to decode stylesheet '%s': %w", path, err)
	}
	e.Rpt.Store("css/"+strings.TrimPrefix(filepath.ToSlash(path), "/"), path)

	sheet, err := stylesheet.Parse(data, e.StylesheetOptions(loc, origin))
	if err != nil {
		return nil, fmt.Errorf("unable to parse stylesheet '%s': %w", path, err)
	}
	seen[loc] = sheet

	log := e.logger()
	for _, w := range sheet.Warnings() {
		log.Debug("Stylesheet problem", zap.String("url", loc), zap.Error(w))
	}

	for _, imp := range sheet.Imports() {
		if s, ok := seen[imp.URL]; ok {
			imp.Sheet = s
			continue
		}
		if depth+1 >= maxImportDepth {
			log.Warn("Imports nested too deep, ignoring", zap.String("url", imp.URL))
			continue
		}
		if imp.Sheet, err = e.load(imp.URL, origin, seen, depth+1); err != nil {
			log.Warn("Unable to load import, ignoring", zap.String("url", imp.URL), zap.Error(err))
		}
	}
	return sheet, nil
}

var charsetPrefix = []byte(`@charset "`)

// decode converts data to UTF-8, honouring a byte order mark or a leading
// @charset rule. A UTF-16 @charset without a BOM cannot occur in ASCII
// compatible text, such files are read as UTF-8.
func decode(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, []byte("\xef\xbb\xbf")):
		return data[3:], nil
	case bytes.HasPrefix(data, []byte("\xff\xfe")), bytes.HasPrefix(data, []byte("\xfe\xff")):
		out, err := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("bad UTF-16 text: %w", err)
		}
		return out, nil
	}
	if !bytes.HasPrefix(data, charsetPrefix) {
		return data, nil
	}
	end := bytes.IndexByte(data[len(charsetPrefix):], '"')
	if end < 0 {
		return data, nil
	}
	name := string(data[len(charsetPrefix) : len(charsetPrefix)+end])
	if strings.HasPrefix(strings.ToLower(name), "utf-16") {
		return data, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", name)
	}
	if enc == unicode.UTF8 {
		return data, nil
	}
	return enc.NewDecoder().Bytes(data)
}

func fileURL(abs string) string {
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

func localPath(loc string) (string, error) {
	u, err := url.Parse(loc)
	if err != nil {
		return "", fmt.Errorf("bad stylesheet location %q: %w", loc, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("only local stylesheets are supported, got %q", loc)
	}
	p := u.Path
	if runtime.GOOS == "windows" {
		p = strings.TrimPrefix(p, "/")
	}
	return filepath.FromSlash(p), nil
}
