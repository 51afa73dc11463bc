package bytecode

import "strings"

// Property identifies a longhand property. Shorthands never appear in
// bytecode; they expand into their longhands at parse time.
type Property uint16

const (
	PropAlignContent Property = iota
	PropAlignItems
	PropAlignSelf
	PropBackgroundAttachment
	PropBackgroundClip
	PropBackgroundColor
	PropBackgroundImage
	PropBackgroundOrigin
	PropBackgroundRepeat
	PropBackgroundSize
	PropBorderBottomColor
	PropBorderBottomStyle
	PropBorderBottomWidth
	PropBorderCollapse
	PropBorderLeftColor
	PropBorderLeftStyle
	PropBorderLeftWidth
	PropBorderRightColor
	PropBorderRightStyle
	PropBorderRightWidth
	PropBorderSpacing
	PropBorderTopColor
	PropBorderTopStyle
	PropBorderTopWidth
	PropBottom
	PropBoxSizing
	PropCaptionSide
	PropClear
	PropColor
	PropColumnCount
	PropColumnGap
	PropCursor
	PropDirection
	PropDisplay
	PropEmptyCells
	PropFill
	PropFillOpacity
	PropFillRule
	PropFilter
	PropFlexBasis
	PropFlexDirection
	PropFlexGrow
	PropFlexShrink
	PropFlexWrap
	PropFloat
	PropFontSize
	PropFontStyle
	PropFontVariant
	PropFontWeight
	PropGridColumnEnd
	PropGridColumnStart
	PropGridRowEnd
	PropGridRowStart
	PropGridTemplateColumns
	PropGridTemplateRows
	PropHeight
	PropJustifyContent
	PropLeft
	PropLetterSpacing
	PropLineHeight
	PropListStyleImage
	PropListStylePosition
	PropListStyleType
	PropMarginBottom
	PropMarginLeft
	PropMarginRight
	PropMarginTop
	PropMaxHeight
	PropMaxWidth
	PropMinHeight
	PropMinWidth
	PropOpacity
	PropOrder
	PropOrphans
	PropOutlineColor
	PropOutlineStyle
	PropOutlineWidth
	PropOverflowX
	PropOverflowY
	PropPaddingBottom
	PropPaddingLeft
	PropPaddingRight
	PropPaddingTop
	PropPosition
	PropRight
	PropRowGap
	PropStroke
	PropStrokeDasharray
	PropStrokeLinecap
	PropStrokeLinejoin
	PropStrokeMiterlimit
	PropStrokeOpacity
	PropStrokeWidth
	PropTableLayout
	PropTextAlign
	PropTextIndent
	PropTextOverflow
	PropTextShadow
	PropTextTransform
	PropTop
	PropTransform
	PropUnicodeBidi
	PropVerticalAlign
	PropVisibility
	PropWhiteSpace
	PropWidows
	PropWidth
	PropWordBreak
	PropWordSpacing
	PropZIndex

	PropCount
)

// Layout selects how composite value tags of a property are decoded.
type Layout uint8

const (
	LayoutPlain Layout = iota
	LayoutShadow
	LayoutBackgroundSize
)

// PropInfo describes a property: its name, whether it inherits by default
// and the keyword set its keyword value tags index into.
type PropInfo struct {
	Name      string
	Inherited bool
	Keywords  []string
	Layout    Layout
}

var (
	kwAuto        = []string{"auto"}
	kwNone        = []string{"none"}
	kwNormal      = []string{"normal"}
	kwBorderStyle = []string{"none", "hidden", "dotted", "dashed", "solid", "double", "groove", "ridge", "inset", "outset"}
	kwBorderWidth = []string{"thin", "medium", "thick"}
	kwOverflow    = []string{"visible", "hidden", "scroll", "auto", "clip"}
	kwBox         = []string{"border-box", "padding-box", "content-box"}
	kwGridLine    = []string{"auto"}
	kwFontSize    = []string{"xx-small", "x-small", "small", "medium", "large", "x-large", "xx-large", "larger", "smaller"}
	kwFontWeight  = []string{"normal", "bold", "bolder", "lighter"}
	kwFlexBasis   = []string{"auto", "content"}
	kwZIndex      = []string{"auto"}
)

var propTable = [PropCount]PropInfo{
	PropAlignContent:         {Name: "align-content", Keywords: []string{"stretch", "flex-start", "flex-end", "center", "space-between", "space-around", "space-evenly"}},
	PropAlignItems:           {Name: "align-items", Keywords: []string{"stretch", "flex-start", "flex-end", "center", "baseline"}},
	PropAlignSelf:            {Name: "align-self", Keywords: []string{"auto", "stretch", "flex-start", "flex-end", "center", "baseline"}},
	PropBackgroundAttachment: {Name: "background-attachment", Keywords: []string{"fixed", "scroll", "local"}},
	PropBackgroundClip:       {Name: "background-clip", Keywords: kwBox},
	PropBackgroundColor:      {Name: "background-color", Keywords: []string{"transparent"}},
	PropBackgroundImage:      {Name: "background-image", Keywords: kwNone},
	PropBackgroundOrigin:     {Name: "background-origin", Keywords: kwBox},
	PropBackgroundRepeat:     {Name: "background-repeat", Keywords: []string{"repeat", "repeat-x", "repeat-y", "no-repeat"}},
	PropBackgroundSize:       {Name: "background-size", Layout: LayoutBackgroundSize},
	PropBorderBottomColor:    {Name: "border-bottom-color"},
	PropBorderBottomStyle:    {Name: "border-bottom-style", Keywords: kwBorderStyle},
	PropBorderBottomWidth:    {Name: "border-bottom-width", Keywords: kwBorderWidth},
	PropBorderCollapse:       {Name: "border-collapse", Inherited: true, Keywords: []string{"collapse", "separate"}},
	PropBorderLeftColor:      {Name: "border-left-color"},
	PropBorderLeftStyle:      {Name: "border-left-style", Keywords: kwBorderStyle},
	PropBorderLeftWidth:      {Name: "border-left-width", Keywords: kwBorderWidth},
	PropBorderRightColor:     {Name: "border-right-color"},
	PropBorderRightStyle:     {Name: "border-right-style", Keywords: kwBorderStyle},
	PropBorderRightWidth:     {Name: "border-right-width", Keywords: kwBorderWidth},
	PropBorderSpacing:        {Name: "border-spacing", Inherited: true},
	PropBorderTopColor:       {Name: "border-top-color"},
	PropBorderTopStyle:       {Name: "border-top-style", Keywords: kwBorderStyle},
	PropBorderTopWidth:       {Name: "border-top-width", Keywords: kwBorderWidth},
	PropBottom:               {Name: "bottom", Keywords: kwAuto},
	PropBoxSizing:            {Name: "box-sizing", Keywords: []string{"content-box", "border-box"}},
	PropCaptionSide:          {Name: "caption-side", Inherited: true, Keywords: []string{"top", "bottom"}},
	PropClear:                {Name: "clear", Keywords: []string{"none", "left", "right", "both"}},
	PropColor:                {Name: "color", Inherited: true},
	PropColumnCount:          {Name: "column-count", Keywords: kwAuto},
	PropColumnGap:            {Name: "column-gap", Keywords: kwNormal},
	PropCursor: {Name: "cursor", Inherited: true, Keywords: []string{
		"auto", "crosshair", "default", "pointer", "move", "e-resize", "ne-resize", "nw-resize", "n-resize",
		"se-resize", "sw-resize", "s-resize", "w-resize", "text", "wait", "help", "progress",
	}},
	PropDirection: {Name: "direction", Inherited: true, Keywords: []string{"ltr", "rtl"}},
	PropDisplay: {Name: "display", Keywords: []string{
		"inline", "block", "list-item", "run-in", "inline-block", "table", "inline-table",
		"table-row-group", "table-header-group", "table-footer-group", "table-row",
		"table-column-group", "table-column", "table-cell", "table-caption", "none",
		"flex", "inline-flex", "grid", "inline-grid",
	}},
	PropEmptyCells:          {Name: "empty-cells", Inherited: true, Keywords: []string{"show", "hide"}},
	PropFill:                {Name: "fill", Inherited: true, Keywords: kwNone},
	PropFillOpacity:         {Name: "fill-opacity", Inherited: true},
	PropFillRule:            {Name: "fill-rule", Inherited: true, Keywords: []string{"nonzero", "evenodd"}},
	PropFilter:              {Name: "filter", Keywords: kwNone},
	PropFlexBasis:           {Name: "flex-basis", Keywords: kwFlexBasis},
	PropFlexDirection:       {Name: "flex-direction", Keywords: []string{"row", "row-reverse", "column", "column-reverse"}},
	PropFlexGrow:            {Name: "flex-grow"},
	PropFlexShrink:          {Name: "flex-shrink"},
	PropFlexWrap:            {Name: "flex-wrap", Keywords: []string{"nowrap", "wrap", "wrap-reverse"}},
	PropFloat:               {Name: "float", Keywords: []string{"left", "right", "none"}},
	PropFontSize:            {Name: "font-size", Inherited: true, Keywords: kwFontSize},
	PropFontStyle:           {Name: "font-style", Inherited: true, Keywords: []string{"normal", "italic", "oblique"}},
	PropFontVariant:         {Name: "font-variant", Inherited: true, Keywords: []string{"normal", "small-caps"}},
	PropFontWeight:          {Name: "font-weight", Inherited: true, Keywords: kwFontWeight},
	PropGridColumnEnd:       {Name: "grid-column-end", Keywords: kwGridLine},
	PropGridColumnStart:     {Name: "grid-column-start", Keywords: kwGridLine},
	PropGridRowEnd:          {Name: "grid-row-end", Keywords: kwGridLine},
	PropGridRowStart:        {Name: "grid-row-start", Keywords: kwGridLine},
	PropGridTemplateColumns: {Name: "grid-template-columns", Keywords: kwNone},
	PropGridTemplateRows:    {Name: "grid-template-rows", Keywords: kwNone},
	PropHeight:              {Name: "height", Keywords: kwAuto},
	PropJustifyContent:      {Name: "justify-content", Keywords: []string{"flex-start", "flex-end", "center", "space-between", "space-around", "space-evenly"}},
	PropLeft:                {Name: "left", Keywords: kwAuto},
	PropLetterSpacing:       {Name: "letter-spacing", Inherited: true, Keywords: kwNormal},
	PropLineHeight:          {Name: "line-height", Inherited: true, Keywords: kwNormal},
	PropListStyleImage:      {Name: "list-style-image", Inherited: true, Keywords: kwNone},
	PropListStylePosition:   {Name: "list-style-position", Inherited: true, Keywords: []string{"inside", "outside"}},
	PropListStyleType: {Name: "list-style-type", Inherited: true, Keywords: []string{
		"disc", "circle", "square", "decimal", "decimal-leading-zero", "lower-roman", "upper-roman",
		"lower-greek", "lower-latin", "upper-latin", "armenian", "georgian", "lower-alpha", "upper-alpha", "none",
	}},
	PropMarginBottom:     {Name: "margin-bottom", Keywords: kwAuto},
	PropMarginLeft:       {Name: "margin-left", Keywords: kwAuto},
	PropMarginRight:      {Name: "margin-right", Keywords: kwAuto},
	PropMarginTop:        {Name: "margin-top", Keywords: kwAuto},
	PropMaxHeight:        {Name: "max-height", Keywords: kwNone},
	PropMaxWidth:         {Name: "max-width", Keywords: kwNone},
	PropMinHeight:        {Name: "min-height", Keywords: kwAuto},
	PropMinWidth:         {Name: "min-width", Keywords: kwAuto},
	PropOpacity:          {Name: "opacity"},
	PropOrder:            {Name: "order"},
	PropOrphans:          {Name: "orphans", Inherited: true},
	PropOutlineColor:     {Name: "outline-color", Keywords: []string{"invert"}},
	PropOutlineStyle:     {Name: "outline-style", Keywords: kwBorderStyle},
	PropOutlineWidth:     {Name: "outline-width", Keywords: kwBorderWidth},
	PropOverflowX:        {Name: "overflow-x", Keywords: kwOverflow},
	PropOverflowY:        {Name: "overflow-y", Keywords: kwOverflow},
	PropPaddingBottom:    {Name: "padding-bottom"},
	PropPaddingLeft:      {Name: "padding-left"},
	PropPaddingRight:     {Name: "padding-right"},
	PropPaddingTop:       {Name: "padding-top"},
	PropPosition:         {Name: "position", Keywords: []string{"static", "relative", "absolute", "fixed", "sticky"}},
	PropRight:            {Name: "right", Keywords: kwAuto},
	PropRowGap:           {Name: "row-gap", Keywords: kwNormal},
	PropStroke:           {Name: "stroke", Inherited: true, Keywords: kwNone},
	PropStrokeDasharray:  {Name: "stroke-dasharray", Inherited: true, Keywords: kwNone},
	PropStrokeLinecap:    {Name: "stroke-linecap", Inherited: true, Keywords: []string{"butt", "round", "square"}},
	PropStrokeLinejoin:   {Name: "stroke-linejoin", Inherited: true, Keywords: []string{"miter", "round", "bevel"}},
	PropStrokeMiterlimit: {Name: "stroke-miterlimit", Inherited: true},
	PropStrokeOpacity:    {Name: "stroke-opacity", Inherited: true},
	PropStrokeWidth:      {Name: "stroke-width", Inherited: true},
	PropTableLayout:      {Name: "table-layout", Keywords: []string{"auto", "fixed"}},
	PropTextAlign:        {Name: "text-align", Inherited: true, Keywords: []string{"left", "right", "center", "justify", "start", "end"}},
	PropTextIndent:       {Name: "text-indent", Inherited: true},
	PropTextOverflow:     {Name: "text-overflow", Keywords: []string{"clip", "ellipsis"}},
	PropTextShadow:       {Name: "text-shadow", Inherited: true, Keywords: kwNone, Layout: LayoutShadow},
	PropTextTransform:    {Name: "text-transform", Inherited: true, Keywords: []string{"capitalize", "uppercase", "lowercase", "none"}},
	PropTop:              {Name: "top", Keywords: kwAuto},
	PropTransform:        {Name: "transform", Keywords: kwNone},
	PropUnicodeBidi:      {Name: "unicode-bidi", Keywords: []string{"normal", "embed", "bidi-override", "isolate", "isolate-override", "plaintext"}},
	PropVerticalAlign: {Name: "vertical-align", Keywords: []string{
		"baseline", "sub", "super", "top", "text-top", "middle", "bottom", "text-bottom",
	}},
	PropVisibility: {Name: "visibility", Inherited: true, Keywords: []string{"visible", "hidden", "collapse"}},
	PropWhiteSpace: {Name: "white-space", Inherited: true, Keywords: []string{"normal", "pre", "nowrap", "pre-wrap", "pre-line"}},
	PropWidows:     {Name: "widows", Inherited: true},
	PropWidth:      {Name: "width", Keywords: kwAuto},
	PropWordBreak:  {Name: "word-break", Inherited: true, Keywords: []string{"normal", "break-all", "keep-all", "break-word"}},
	PropWordSpacing: {Name: "word-spacing", Inherited: true, Keywords: kwNormal},
	PropZIndex:      {Name: "z-index", Keywords: kwZIndex},
}

var propByName = func() map[string]Property {
	m := make(map[string]Property, PropCount)
	for p := range PropCount {
		m[propTable[p].Name] = p
	}
	return m
}()

// Info returns the description of p.
func (p Property) Info() *PropInfo {
	if p >= PropCount {
		return &PropInfo{Name: "unknown"}
	}
	return &propTable[p]
}

func (p Property) String() string {
	return p.Info().Name
}

// Keyword returns the keyword stored as value tag v for p.
func (p Property) Keyword(v uint16) (string, bool) {
	kw := p.Info().Keywords
	if int(v) < len(kw) {
		return kw[v], true
	}
	return "", false
}

// KeywordValue returns the value tag for keyword name of p, ignoring ASCII
// case.
func (p Property) KeywordValue(name string) (uint16, bool) {
	for i, kw := range p.Info().Keywords {
		if strings.EqualFold(kw, name) {
			return uint16(i), true
		}
	}
	return 0, false
}

// PropertyByName finds a longhand by its lower case name.
func PropertyByName(name string) (Property, bool) {
	p, ok := propByName[strings.ToLower(name)]
	return p, ok
}
