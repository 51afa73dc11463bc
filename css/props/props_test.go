package props_test

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"csseng/css/bytecode"
	"csseng/css/props"
	"csseng/css/tokens"
	"csseng/intern"
)

func newContext(t *testing.T) *props.Context {
	t.Helper()
	return props.NewContext(intern.NewTable(), bytecode.NewStringTable(), zaptest.NewLogger(t))
}

// parseDecl parses "name: value" into a fresh style and returns the decoded
// declarations formatted as text.
func parseDecl(t *testing.T, ctx *props.Context, decl string) ([]string, error) {
	t.Helper()
	name, val, _ := strings.Cut(decl, ":")
	vec := tokens.Tokenize(ctx.Interner, []byte(val))
	style := bytecode.NewStyle(0)

	if err := props.Parse(ctx, strings.TrimSpace(name), vec, style); err != nil {
		if style.Len() != 0 {
			t.Errorf("failed parse left %d words behind", style.Len())
		}
		return nil, err
	}

	decls, err := bytecode.Decode(style)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	out := make([]string, len(decls))
	for i := range decls {
		out[i] = decls[i].Format(ctx.Strings)
	}
	return out, nil
}

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		decl string
		want []string
	}{
		{"display: block", []string{"display: block"}},
		{"DISPLAY: Inline-Block", []string{"display: inline-block"}},
		{"display: inherit", []string{"display: inherit"}},
		{"width: 10px", []string{"width: 10px"}},
		{"width: 0", []string{"width: 0px"}},
		{"width: 50%", []string{"width: 50%"}},
		{"width: auto !important", []string{"width: auto !important"}},
		{"height: 2.5em", []string{"height: 2.5em"}},
		{"max-width: none", []string{"max-width: none"}},
		{"top: -3px", []string{"top: -3px"}},
		{"margin: 1px 2px", []string{"margin-top: 1px", "margin-right: 2px", "margin-bottom: 1px", "margin-left: 2px"}},
		{"margin: 1px 2px 3px", []string{"margin-top: 1px", "margin-right: 2px", "margin-bottom: 3px", "margin-left: 2px"}},
		{"margin: auto", []string{"margin-top: auto", "margin-right: auto", "margin-bottom: auto", "margin-left: auto"}},
		{"padding: inherit", []string{"padding-top: inherit", "padding-right: inherit", "padding-bottom: inherit", "padding-left: inherit"}},
		{"border-style: solid dashed", []string{"border-top-style: solid", "border-right-style: dashed", "border-bottom-style: solid", "border-left-style: dashed"}},
		{"letter-spacing: normal", []string{"letter-spacing: normal"}},
		{"line-height: 1.5", []string{"line-height: 1.5"}},
		{"line-height: 20px", []string{"line-height: 20px"}},
		{"font-size: x-large", []string{"font-size: x-large"}},
		{"vertical-align: -2px", []string{"vertical-align: -2px"}},
		{"vertical-align: middle", []string{"vertical-align: middle"}},
		{"border-top-width: thick", []string{"border-top-width: thick"}},
		{"stroke-width: 3", []string{"stroke-width: 3px"}},
		{"border-spacing: 2px", []string{"border-spacing: 2px 2px"}},
		{"border-spacing: 1px 2px", []string{"border-spacing: 1px 2px"}},

		{"color: red", []string{"color: #ff0000"}},
		{"color: #0f08", []string{"color: #00ff0088"}},
		{"color: #A0b0C0", []string{"color: #a0b0c0"}},
		{"color: rgb(255, 0, 0)", []string{"color: #ff0000"}},
		{"color: rgba(0,0,255,0.5)", []string{"color: #0000ff7f"}},
		{"color: rgb(100%, 0%, 0%)", []string{"color: #ff0000"}},
		{"color: rgb(0 128 0 / 50%)", []string{"color: #0080007f"}},
		{"color: hsl(120, 100%, 25%)", []string{"color: #007f00"}},
		{"color: hsl(0deg 0% 100%)", []string{"color: #ffffff"}},
		{"color: currentColor", []string{"color: currentcolor"}},
		{"color: transparent", []string{"color: #00000000"}},
		{"outline-color: invert", []string{"outline-color: invert"}},
		{"fill: none", []string{"fill: none"}},
		{"fill: url(#grad)", []string{"fill: url(#grad)"}},
		{"stroke: blue", []string{"stroke: #0000ff"}},

		{"opacity: 1.5", []string{"opacity: 1"}},
		{"opacity: -1", []string{"opacity: 0"}},
		{"z-index: -3", []string{"z-index: -3"}},
		{"z-index: auto", []string{"z-index: auto"}},
		{"font-weight: 700", []string{"font-weight: 700"}},
		{"font-weight: bold", []string{"font-weight: bold"}},
		{"orphans: 2", []string{"orphans: 2"}},

		{"background-image: url(a.png)", []string{"background-image: url(a.png)"}},
		{"list-style-image: url('b.png')", []string{"list-style-image: url(b.png)"}},

		{"flex: none", []string{"flex-grow: 0", "flex-shrink: 0", "flex-basis: auto"}},
		{"flex: auto", []string{"flex-grow: 1", "flex-shrink: 1", "flex-basis: auto"}},
		{"flex: 2 1 10px", []string{"flex-grow: 2", "flex-shrink: 1", "flex-basis: 10px"}},
		{"flex: 3", []string{"flex-grow: 3", "flex-shrink: 1", "flex-basis: 0px"}},
		{"flex: 1 0", []string{"flex-grow: 1", "flex-shrink: 0", "flex-basis: 0px"}},
		{"flex: 10px", []string{"flex-grow: 1", "flex-shrink: 1", "flex-basis: 10px"}},
		{"flex: 10px 2 3", []string{"flex-grow: 2", "flex-shrink: 3", "flex-basis: 10px"}},
		{"flex: 1 1 0", []string{"flex-grow: 1", "flex-shrink: 1", "flex-basis: 0px"}},
		{"flex: content", []string{"flex-grow: 1", "flex-shrink: 1", "flex-basis: content"}},
		{"flex-flow: wrap column", []string{"flex-direction: column", "flex-wrap: wrap"}},
		{"flex-flow: row-reverse", []string{"flex-direction: row-reverse", "flex-wrap: nowrap"}},

		{"overflow: hidden", []string{"overflow-x: hidden", "overflow-y: hidden"}},
		{"overflow: hidden scroll", []string{"overflow-x: hidden", "overflow-y: scroll"}},

		{"background-size: contain", []string{"background-size: contain"}},
		{"background-size: cover", []string{"background-size: cover"}},
		{"background-size: 10px", []string{"background-size: 10px auto"}},
		{"background-size: auto", []string{"background-size: auto auto"}},
		{"background-size: 50% 20px", []string{"background-size: 50% 20px"}},
		{"background-size: auto 3em", []string{"background-size: auto 3em"}},

		{"text-shadow: 1px 2px red", []string{"text-shadow: 1px 2px #ff0000"}},
		{"text-shadow: red 1px 2px 3px", []string{"text-shadow: 1px 2px 3px #ff0000"}},
		{"text-shadow: 1px 2px", []string{"text-shadow: 1px 2px"}},
		{"text-shadow: 1px 2px currentcolor", []string{"text-shadow: 1px 2px currentcolor"}},
		{"text-shadow: none", []string{"text-shadow: none"}},

		{"stroke-dasharray: 5, 10px, 2%", []string{"stroke-dasharray: 5px, 10px, 2%"}},
		{"stroke-dasharray: 5 3", []string{"stroke-dasharray: 5px, 3px"}},
		{"stroke-dasharray: none", []string{"stroke-dasharray: none"}},
		{"stroke-dasharray: inherit", []string{"stroke-dasharray: inherit"}},

		{"grid-template-columns: 1fr 2fr 100px", []string{"grid-template-columns: 1fr 2fr 100px"}},
		{"grid-template-rows: none", []string{"grid-template-rows: none"}},
		{"grid-row: 1 / span 2", []string{"grid-row-start: 1", "grid-row-end: span 2"}},
		{"grid-column: 2", []string{"grid-column-start: 2", "grid-column-end: auto"}},
		{"grid-column-end: 3 span", []string{"grid-column-end: span 3"}},
		{"grid-row-start: -1", []string{"grid-row-start: -1"}},

		{"transform: rotate(45deg) translate(1px, 2px)", []string{"transform: rotate(45deg) translate(1px, 2px)"}},
		{"transform: none", []string{"transform: none"}},
		{"filter: none", []string{"filter: none"}},

		{"border: 1px solid red", []string{
			"border-top-width: 1px", "border-right-width: 1px", "border-bottom-width: 1px", "border-left-width: 1px",
			"border-top-style: solid", "border-right-style: solid", "border-bottom-style: solid", "border-left-style: solid",
			"border-top-color: #ff0000", "border-right-color: #ff0000", "border-bottom-color: #ff0000", "border-left-color: #ff0000",
		}},
		{"border-top: solid", []string{"border-top-width: medium", "border-top-style: solid", "border-top-color: currentcolor"}},
		{"border-left: red thin", []string{"border-left-width: thin", "border-left-style: none", "border-left-color: #ff0000"}},
		{"outline: red", []string{"outline-width: medium", "outline-style: none", "outline-color: #ff0000"}},
		{"list-style: none", []string{"list-style-type: none", "list-style-position: outside", "list-style-image: none"}},
		{"list-style: url(a.png) inside square", []string{"list-style-type: square", "list-style-position: inside", "list-style-image: url(a.png)"}},
		{"list-style: none none", []string{"list-style-type: none", "list-style-position: outside", "list-style-image: none"}},
	}

	for _, tt := range tests {
		t.Run(tt.decl, func(t *testing.T) {
			got, err := parseDecl(t, newContext(t), tt.decl)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []string{
		"unknown-property: 1",
		"width:",
		"width: 10",
		"width: -1px",
		"width: 10deg",
		"width: 10px 20px",
		"width: inherit auto",
		"display: blocky",
		"letter-spacing: 10%",
		"padding: 1px 2px 3px 4px 5px",
		"margin: 1px inherit",
		"color: #ggg",
		"color: #12345",
		"color: rgb(1, 2)",
		"color: rgb(1, 2 3)",
		"color: rgb(1, 2, 3,)",
		"color: rgb(1%, 2, 3)",
		"color: hsl(120, 100, 50%)",
		"color: nocolour",
		"z-index: 1.5",
		"orphans: 0",
		"font-weight: 750",
		"flex: 1 10px 2",
		"flex: 1 2 3",
		"flex: 1 1 1px 1px",
		"flex: none 1",
		"flex-flow: row column",
		"overflow: hidden scroll auto",
		"background-size: cover 10px",
		"background-size: 10px contain",
		"background-size: -1px",
		"text-shadow: 1px",
		"text-shadow: 1px 2px 3px 4px",
		"text-shadow: 1px 2px red blue",
		"text-shadow: 1px red 2px",
		"text-shadow: 1px 2px -3px",
		"stroke-dasharray: 5,,3",
		"stroke-dasharray: 5, red",
		"grid-row-start: 0",
		"grid-row-start: span -1",
		"grid-row: 1 /",
		"grid-template-columns: 1deg",
		"transform: rotate(45deg",
		"transform: 45deg",
		"border-top: solid solid",
		"border: 1px 2px",
		"list-style: disc circle",
		"filter: blur(2px)",
	}

	for _, decl := range tests {
		t.Run(decl, func(t *testing.T) {
			got, err := parseDecl(t, newContext(t), decl)
			if err == nil {
				t.Fatalf("expected error, got %q", got)
			}
			if !errors.Is(err, props.ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestParse_Quirks(t *testing.T) {
	ctx := newContext(t)
	if _, err := parseDecl(t, ctx, "width: 10"); err == nil {
		t.Fatal("unitless length accepted in standards mode")
	}

	ctx.Quirks = true
	got, err := parseDecl(t, ctx, "width: 10")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []string{"width: 10px"}) || !ctx.QuirksUsed {
		t.Errorf("got %q, quirks used %v", got, ctx.QuirksUsed)
	}
}

func TestParse_ResolvesURIs(t *testing.T) {
	ctx := newContext(t)
	ctx.BaseURL = "http://example.com/css/site.css"

	got, err := parseDecl(t, ctx, "filter: url(f.svg#x)")
	if err != nil {
		t.Fatal(err)
	}
	if want := "filter: url(http://example.com/css/f.svg#x)"; got[0] != want {
		t.Errorf("got %q, want %q", got[0], want)
	}

	errResolve := errors.New("no network")
	ctx.Resolve = func(base, rel string) (string, error) { return "", errResolve }
	_, err = parseDecl(t, ctx, "stroke: url(#paint)")
	if !errors.Is(err, props.ErrInvalid) || !errors.Is(err, errResolve) {
		t.Errorf("resolver failure not reported as invalid: %v", err)
	}
}

func TestParse_KeepsExistingRecords(t *testing.T) {
	ctx := newContext(t)
	style := bytecode.NewStyle(0)

	ok := tokens.Tokenize(ctx.Interner, []byte("1px"))
	if err := props.Parse(ctx, "width", ok, style); err != nil {
		t.Fatal(err)
	}
	before := slices.Clone(style.Words())

	bad := tokens.Tokenize(ctx.Interner, []byte("1px solid red blue"))
	if err := props.Parse(ctx, "border", bad, style); err == nil {
		t.Fatal("expected failure")
	}
	if !slices.Equal(style.Words(), before) || len(style.Records()) != 1 {
		t.Fatalf("failed shorthand modified the style: %v", style.Words())
	}
}

func TestParse_OutOfMemory(t *testing.T) {
	ctx := newContext(t)
	style := bytecode.NewStyle(2)

	err := props.Parse(ctx, "border", tokens.Tokenize(ctx.Interner, []byte("1px solid red")), style)
	if !errors.Is(err, bytecode.ErrOutOfMemory) {
		t.Fatalf("expected ErrOutOfMemory, got %v", err)
	}
	if style.Len() != 0 {
		t.Fatalf("style not rolled back: %d words", style.Len())
	}
}

func TestSupported(t *testing.T) {
	names := props.Supported()
	for _, want := range []string{"flex", "background-size", "text-shadow", "grid-template-columns", "transform", "filter"} {
		if !slices.Contains(names, want) {
			t.Errorf("%s missing from Supported()", want)
		}
	}
	if !slices.IsSorted(names) {
		t.Error("Supported() is not sorted")
	}
}
