package mq_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"csseng/css/bytecode"
	"csseng/css/mq"
	"csseng/fixed"
	"csseng/intern"
)

func px(n int) mq.Dimension {
	return mq.Dimension{Len: fixed.FromInt(n), Unit: bytecode.UnitPX}
}

func screen(w, h int) *mq.Media {
	return &mq.Media{
		Type:       mq.TypeScreen,
		Width:      fixed.FromInt(w),
		Height:     fixed.FromInt(h),
		FontSize:   fixed.FromInt(12),
		LineHeight: fixed.FromInt(20),
	}
}

func TestParse_Shapes(t *testing.T) {
	tbl := intern.NewTable()

	t.Run("colon form with prefix", func(t *testing.T) {
		list, err := mq.ParseString(tbl, "screen and (min-width: 600px)")
		require.NoError(t, err)
		require.Len(t, list, 1)
		q := list[0]
		require.Equal(t, mq.TypeScreen, q.Type)
		require.False(t, q.NegateType)
		require.NotNil(t, q.Cond)
		require.Len(t, q.Cond.Parts, 1)
		require.Equal(t, &mq.Feature{Name: "width", Op: mq.OpGTE, Value: px(600)}, q.Cond.Parts[0])
	})

	t.Run("reversed single range", func(t *testing.T) {
		list, err := mq.ParseString(tbl, "(600px < width)")
		require.NoError(t, err)
		require.Equal(t, mq.TypeAll, list[0].Type)
		require.Equal(t, &mq.Feature{Name: "width", Op: mq.OpGT, Value: px(600)}, list[0].Cond.Parts[0])
	})

	t.Run("double range", func(t *testing.T) {
		list, err := mq.ParseString(tbl, "(600px <= width <= 900px)")
		require.NoError(t, err)
		require.Equal(t, &mq.Feature{
			Name: "width", Op: mq.OpGTE, Value: px(600), Op2: mq.OpLTE, Value2: px(900),
		}, list[0].Cond.Parts[0])
	})

	t.Run("verbose range", func(t *testing.T) {
		list, err := mq.ParseString(tbl, "(HEIGHT>=20em)")
		require.NoError(t, err)
		require.Equal(t, &mq.Feature{
			Name: "height", Op: mq.OpGTE, Value: mq.Dimension{Len: fixed.FromInt(20), Unit: bytecode.UnitEM},
		}, list[0].Cond.Parts[0])
	})

	t.Run("boolean and ident values", func(t *testing.T) {
		list, err := mq.ParseString(tbl, "not print, (color) and (orientation: Landscape)")
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.True(t, list[0].NegateType)
		require.Equal(t, mq.TypePrint, list[0].Type)
		require.Nil(t, list[0].Cond)

		c := list[1].Cond
		require.Equal(t, mq.CondAnd, c.Op)
		require.Equal(t, []mq.Part{
			&mq.Feature{Name: "color", Op: mq.OpBool},
			&mq.Feature{Name: "orientation", Op: mq.OpEQ, Value: mq.Ident("landscape")},
		}, c.Parts)
	})

	t.Run("ratio and integer", func(t *testing.T) {
		list, err := mq.ParseString(tbl, "(min-aspect-ratio: 16 / 9) or (max-monochrome: 2)")
		require.NoError(t, err)
		c := list[0].Cond
		require.Equal(t, mq.CondOr, c.Op)
		require.Equal(t, &mq.Feature{
			Name: "aspect-ratio", Op: mq.OpGTE, Value: mq.Ratio{Num: fixed.FromInt(16), Den: fixed.FromInt(9)},
		}, c.Parts[0])
		require.Equal(t, &mq.Feature{Name: "monochrome", Op: mq.OpLTE, Value: mq.Integer(2)}, c.Parts[1])
	})

	t.Run("nested and negated", func(t *testing.T) {
		list, err := mq.ParseString(tbl, "only screen and not ((width > 1px) or (height > 1px))")
		require.NoError(t, err)
		c := list[0].Cond
		require.True(t, c.Negate)
		require.Len(t, c.Parts, 1)
		inner, ok := c.Parts[0].(*mq.Cond)
		require.True(t, ok)
		require.Equal(t, mq.CondOr, inner.Op)
		require.Len(t, inner.Parts, 2)
	})

	t.Run("unknown type", func(t *testing.T) {
		list, err := mq.ParseString(tbl, "hologram")
		require.NoError(t, err)
		require.Equal(t, mq.Type(0), list[0].Type)
	})

	t.Run("empty", func(t *testing.T) {
		list, err := mq.ParseString(tbl, "  ")
		require.NoError(t, err)
		require.Empty(t, list)
	})
}

func TestParse_Invalid(t *testing.T) {
	tbl := intern.NewTable()
	for _, s := range []string{
		"(width: 600px",
		"screen and",
		"screen,",
		",screen",
		"(width > )",
		"(width:)",
		"(min-orientation: 1)",
		"(orientation > 1)",
		"(a) and (b) or (c)",
		"screen and (a) or (b)",
		"(width < 600px > 300px)",
		"(100px < width > 300px)",
		"(100px < 200px)",
		"(width = height = 1px)",
		"only",
		"not",
		"screen (width)",
		"screen print",
		"(width: 10px 20px)",
		"(width > 10%)",
		"(width: 1/)",
		"((width > 1px)",
		"(16 /)",
	} {
		t.Run(s, func(t *testing.T) {
			list, err := mq.ParseString(tbl, s)
			require.Error(t, err)
			require.True(t, errors.Is(err, mq.ErrInvalid), "%v", err)
			require.Nil(t, list)
		})
	}
}

func TestEvaluate(t *testing.T) {
	tbl := intern.NewTable()
	tests := []struct {
		query string
		media *mq.Media
		want  bool
	}{
		{"", screen(800, 600), true},
		{"all", screen(800, 600), true},
		{"screen", screen(800, 600), true},
		{"print", screen(800, 600), false},
		{"not print", screen(800, 600), true},
		{"not screen", screen(800, 600), false},
		{"print, screen", screen(800, 600), true},
		{"hologram", screen(800, 600), false},

		{"(min-width: 600px)", screen(600, 600), true},
		{"(min-width: 600px)", screen(599, 600), false},
		{"(max-width: 600px)", screen(600, 600), true},
		{"(width: 800px)", screen(800, 600), true},
		{"(width: 800px)", screen(801, 600), false},
		{"(500px <= width <= 900px)", screen(499, 600), false},
		{"(500px <= width <= 900px)", screen(901, 600), false},
		{"(500px <= width <= 900px)", screen(700, 600), true},
		{"(900px > width > 500px)", screen(700, 600), true},
		{"(900px > width > 500px)", screen(900, 600), false},
		{"(600px < width)", screen(601, 600), true},
		{"(600px < width)", screen(600, 600), false},

		// width and height only; anything else fails closed
		{"(width < 600px) and (orientation)", screen(800, 600), false},
		{"(width < 600px) and (orientation)", screen(500, 600), false},
		{"(width < 600px)", screen(500, 600), true},
		{"(width < 600px) or (orientation)", screen(500, 600), true},
		{"(orientation: landscape)", screen(800, 600), false},
		{"not (orientation)", screen(800, 600), true},

		{"not (width < 600px)", screen(800, 600), true},
		{"screen and (height > 500px)", screen(800, 600), true},
		{"print and (height > 500px)", screen(800, 600), false},
		{"not print and (height > 700px)", screen(800, 600), false},
		{"(width)", screen(800, 600), true},
		{"(width)", screen(0, 600), false},
		{"(height)", screen(800, 600), true},
		{"(height)", screen(800, 0), false},
		{"not (width)", screen(0, 600), true},
		{"(min-width: 0)", screen(800, 600), true},
		{"(min-width: 600)", screen(800, 600), false},
		{"(min-width: 30em)", screen(480, 600), true},
		{"(min-width: 30em)", screen(479, 600), false},
		{"(max-height: 50vh)", screen(800, 600), false},
		{"(max-width: 100vw)", screen(800, 600), true},
		{"(min-width: 1in)", screen(96, 600), true},
		{"(aspect-ratio: 4/3)", screen(800, 600), false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			list, err := mq.ParseString(tbl, tt.query)
			require.NoError(t, err)
			require.Equal(t, tt.want, mq.Evaluate(list, tt.media))
		})
	}
}

func TestEvaluate_NotAll(t *testing.T) {
	require.False(t, mq.Evaluate(mq.NotAll(), screen(800, 600)))
	require.False(t, mq.Evaluate(mq.NotAll(), &mq.Media{Type: mq.TypePrint}))
}

func TestLengthToPx(t *testing.T) {
	m := screen(800, 600) // 12pt font, 20px line height
	tests := []struct {
		v    float64
		unit bytecode.Unit
		want int
	}{
		{13, bytecode.UnitPX, 13},
		{2, bytecode.UnitEM, 32},
		{2, bytecode.UnitREM, 32},
		{2, bytecode.UnitEX, 20},
		{2, bytecode.UnitCH, 12},
		{2, bytecode.UnitLH, 40},
		{1, bytecode.UnitIN, 96},
		{1, bytecode.UnitCM, 38},
		{10, bytecode.UnitMM, 40},
		{40, bytecode.UnitQ, 40},
		{3, bytecode.UnitPT, 3},
		{2, bytecode.UnitPC, 32},
		{10, bytecode.UnitVW, 80},
		{10, bytecode.UnitVH, 60},
		{10, bytecode.UnitVI, 80},
		{10, bytecode.UnitVB, 60},
		{10, bytecode.UnitVMIN, 60},
		{10, bytecode.UnitVMAX, 80},
		{10, bytecode.UnitDEG, 0},
	}
	for _, tt := range tests {
		t.Run(tt.unit.String(), func(t *testing.T) {
			got := mq.LengthToPx(m, fixed.FromFloat(tt.v), tt.unit)
			require.Equal(t, tt.want, got.Int())
		})
	}
}

func TestFormat(t *testing.T) {
	tbl := intern.NewTable()
	list, err := mq.ParseString(tbl, "not screen and (min-width: 10px), (600px <= width < 900px)")
	require.NoError(t, err)
	require.Equal(t, "not screen and (width >= 10px), all and (width >= 600px, < 900px)", mq.Format(list))
}
