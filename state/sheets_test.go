package state

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/unicode"

	"csseng/config"
	"csseng/css/stylesheet"
	"csseng/intern"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("unable to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("unable to write %s: %v", name, err)
		}
	}
	return dir
}

func testEnv(t *testing.T) *LocalEnv {
	return &LocalEnv{Log: zaptest.NewLogger(t), Strings: intern.NewTable()}
}

func TestLoadStylesheet_Imports(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.css": `@import "parts/base.css";
@import url(missing.css) print;
@import "http://example.com/remote.css";
p { color: red }`,
		"parts/base.css": `@import "../main.css"; h1 { color: blue }`,
	})

	env := testEnv(t)
	sheet, err := env.LoadStylesheet(filepath.Join(dir, "main.css"), stylesheet.OriginAuthor)
	if err != nil {
		t.Fatalf("LoadStylesheet() error = %v", err)
	}
	if !strings.HasPrefix(sheet.URL, "file:///") || !strings.HasSuffix(sheet.URL, "/main.css") {
		t.Errorf("URL = %q", sheet.URL)
	}
	if sheet.Interner != env.Strings {
		t.Error("sheet does not use the shared string table")
	}

	imports := sheet.Imports()
	if len(imports) != 3 {
		t.Fatalf("got %d imports, want 3", len(imports))
	}
	base := imports[0].Sheet
	if base == nil {
		t.Fatal("parts/base.css was not loaded")
	}
	if !strings.HasSuffix(base.URL, "/parts/base.css") || base.Origin != stylesheet.OriginAuthor {
		t.Errorf("base sheet = %q (%v)", base.URL, base.Origin)
	}
	if back := base.Imports(); len(back) != 1 || back[0].Sheet != sheet {
		t.Error("import cycle does not lead back to the first sheet")
	}
	if imports[1].Sheet != nil {
		t.Error("missing import must stay without a sheet")
	}
	if imports[2].Sheet != nil {
		t.Error("remote import must stay without a sheet")
	}
}

func TestLoadStylesheet_Missing(t *testing.T) {
	if _, err := testEnv(t).LoadStylesheet(filepath.Join(t.TempDir(), "absent.css"), stylesheet.OriginAuthor); err == nil {
		t.Fatal("expected error for missing stylesheet")
	}
}

func TestStylesheetOptions(t *testing.T) {
	env := testEnv(t)

	opts := env.StylesheetOptions("", stylesheet.OriginUser)
	if opts.Quirks || opts.MaxStyleWords != 0 || opts.URL != "" || opts.Origin != stylesheet.OriginUser {
		t.Errorf("options without configuration = %+v", opts)
	}

	env.Cfg = &config.Config{Parsing: config.ParsingConfig{Quirks: true, MaxStyleWords: 100, BaseURL: "http://example.com/"}}
	opts = env.StylesheetOptions("", stylesheet.OriginAuthor)
	if !opts.Quirks || opts.MaxStyleWords != 100 || opts.URL != "http://example.com/" {
		t.Errorf("options = %+v", opts)
	}
	if opts = env.StylesheetOptions("file:///x.css", stylesheet.OriginAuthor); opts.URL != "file:///x.css" {
		t.Errorf("explicit location lost: %q", opts.URL)
	}
}

func TestUserAgentSheets(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"ua.css":   "p { display: block }",
		"user.css": "p { color: black }",
	})

	env := testEnv(t)
	env.Cfg = &config.Config{Parsing: config.ParsingConfig{UAStylesheet: filepath.Join(dir, "ua.css")}}
	sheets, err := env.UserAgentSheets()
	if err != nil {
		t.Fatalf("UserAgentSheets() error = %v", err)
	}
	if len(sheets) != 1 || sheets[0].Origin != stylesheet.OriginUA {
		t.Fatalf("sheets = %v", sheets)
	}

	env.Cfg.Parsing.UserStylesheet = filepath.Join(dir, "user.css")
	if sheets, err = env.UserAgentSheets(); err != nil {
		t.Fatalf("UserAgentSheets() error = %v", err)
	}
	if len(sheets) != 2 || sheets[1].Origin != stylesheet.OriginUser {
		t.Fatalf("sheets = %v", sheets)
	}

	env.Cfg.Parsing.UserStylesheet = filepath.Join(dir, "gone.css")
	if _, err = env.UserAgentSheets(); err == nil {
		t.Fatal("expected error for a configured but missing stylesheet")
	}
}

func utf16Text(t *testing.T, s string, order unicode.Endianness) string {
	t.Helper()
	out, err := unicode.UTF16(order, unicode.UseBOM).NewEncoder().String(s)
	if err != nil {
		t.Fatalf("unable to encode UTF-16: %v", err)
	}
	return out
}

func TestLoadStylesheet_Charset(t *testing.T) {
	const fontFace = "@font-face { font-family: \"Café\" }"
	dir := writeFiles(t, map[string]string{
		"latin.css":   "@charset \"windows-1252\";\n@font-face { font-family: \"Caf\xe9\" }",
		"bom.css":     "\xef\xbb\xbf" + fontFace,
		"utf16le.css": utf16Text(t, fontFace, unicode.LittleEndian),
		"utf16be.css": utf16Text(t, "@charset \"UTF-16\";"+fontFace, unicode.BigEndian),
		"bad.css":     "@charset \"no-such-charset\"; p { color: red }",
	})
	env := testEnv(t)

	for _, name := range []string{"latin.css", "bom.css", "utf16le.css", "utf16be.css"} {
		sheet, err := env.LoadStylesheet(filepath.Join(dir, name), stylesheet.OriginAuthor)
		if err != nil {
			t.Fatalf("%s: LoadStylesheet() error = %v", name, err)
		}
		var family string
		for _, r := range sheet.Rules {
			if ff, ok := r.(*stylesheet.FontFaceRule); ok {
				family = ff.Family
			}
		}
		if family != "Café" {
			t.Errorf("%s: font-family = %q", name, family)
		}
	}

	if _, err := env.LoadStylesheet(filepath.Join(dir, "bad.css"), stylesheet.OriginAuthor); err == nil {
		t.Error("expected error for unknown charset")
	}
}
