package bytecode

import (
	"errors"
	"strings"
	"testing"

	"csseng/fixed"
	"csseng/intern"
)

func TestOPV(t *testing.T) {
	w := BuildOPV(PropZIndex, FlagImportant|FlagInherit, ValueSetInteger)
	p, flags, v := OPV(w)
	if p != PropZIndex || flags != FlagImportant|FlagInherit || v != ValueSetInteger {
		t.Fatalf("OPV round trip = (%v, %#x, %#x)", p, flags, v)
	}
	if PropCount > 1<<propBits {
		t.Fatalf("%d properties do not fit the opcode field", PropCount)
	}
}

func TestStyle_MarkTruncate(t *testing.T) {
	s := NewStyle(0)
	if err := s.AppendOPV(PropWidth, 0, ValueSetLength); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendLength(fixed.FromInt(10), UnitPX); err != nil {
		t.Fatal(err)
	}

	mark := s.Mark()
	_ = s.AppendOPV(PropHeight, 0, ValueSetLength)
	_ = s.AppendLength(fixed.FromInt(5), UnitEM)
	_ = s.Inherit(PropColor)
	if len(s.Records()) != 3 {
		t.Fatalf("records = %v", s.Records())
	}

	s.Truncate(mark)
	if s.Len() != 3 || len(s.Records()) != 1 {
		t.Fatalf("after truncate len=%d records=%v", s.Len(), s.Records())
	}
	// truncating past the end is a no-op
	s.Truncate(100)
	if s.Len() != 3 {
		t.Fatalf("len = %d", s.Len())
	}
}

func TestStyle_Merge(t *testing.T) {
	dst := NewStyle(0)
	_ = dst.Inherit(PropColor)

	src := dst.Sub()
	_ = src.AppendOPV(PropOpacity, 0, ValueSetNumber)
	_ = src.Append(uint32(fixed.Half))
	_ = src.AppendOPV(PropDisplay, 0, 1)

	if err := dst.Merge(src); err != nil {
		t.Fatal(err)
	}
	if src.Len() != 0 || len(src.Records()) != 0 {
		t.Fatal("merge must consume its source")
	}
	if got, want := dst.Records(), []int{0, 1, 3}; len(got) != len(want) || got[1] != want[1] || got[2] != want[2] {
		t.Fatalf("records = %v, want %v", got, want)
	}

	dst.MakeImportant()
	decls, err := Decode(dst)
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range decls {
		if !d.Important {
			t.Errorf("%s not important", d.Property)
		}
	}
	if decls[1].Number != fixed.Half || decls[2].Value != 1 {
		t.Errorf("unexpected decode %+v", decls)
	}
}

func TestStyle_OutOfMemory(t *testing.T) {
	s := NewStyle(4)
	_ = s.AppendOPV(PropWidth, 0, ValueSetLength)
	_ = s.AppendLength(fixed.One, UnitPX)
	err := s.AppendOPV(PropHeight, 0, ValueSetLength)
	if err != nil {
		t.Fatalf("fourth word should fit: %v", err)
	}
	err = s.AppendLength(fixed.One, UnitPX)
	if !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("expected ErrOutOfMemory, got %v", err)
	}
	if errors.Is(err, ErrInvalid) {
		t.Fatal("out of memory must be distinct from invalid")
	}
	if s.Len() != 4 {
		t.Fatalf("failed append changed the style: len %d", s.Len())
	}
}

func TestDecode_Format(t *testing.T) {
	tbl := intern.NewTable()
	strs := NewStringTable()
	s := NewStyle(0)

	_ = s.AppendOPV(PropWidth, 0, ValueSetLength)
	_ = s.AppendLength(fixed.FromInt(10), UnitPX)
	_ = s.AppendOPV(PropColor, FlagImportant, ValueSetColour)
	_ = s.Append(0xffff0000)
	_ = s.AppendOPV(PropBackgroundImage, 0, ValueSetURI)
	_ = s.Append(strs.Add(tbl.Intern("a.png")))
	_ = s.AppendOPV(PropStrokeDasharray, 0, ValueSetList)
	_ = s.VAppend(ListItem, uint32(fixed.FromInt(1)), uint32(UnitPX), ListItem, uint32(fixed.FromInt(2)), uint32(UnitPCT), ListEnd)
	_ = s.AppendOPV(PropTextShadow, 0, ValueComposite|ShadowH|ShadowV|ShadowColour)
	_ = s.AppendLength(fixed.FromInt(1), UnitPX)
	_ = s.AppendLength(fixed.FromInt(2), UnitPX)
	_ = s.Append(0x80000000)
	_ = s.AppendOPV(PropBackgroundSize, 0, BackgroundSizeValue(SizeSet, SizeAuto))
	_ = s.AppendLength(fixed.FromInt(10), UnitPX)
	_ = s.AppendOPV(PropGridRowStart, 0, ValueSetSpan)
	_ = s.Append(2)
	_ = s.Inherit(PropDisplay)

	decls, err := Decode(s)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		"width: 10px",
		"color: #ff0000 !important",
		"background-image: url(a.png)",
		"stroke-dasharray: 1px, 2%",
		"text-shadow: 1px 2px #00000080",
		"background-size: 10px auto",
		"grid-row-start: span 2",
		"display: inherit",
	}
	if len(decls) != len(want) {
		t.Fatalf("decoded %d declarations, want %d", len(decls), len(want))
	}
	for i := range want {
		if got := decls[i].Format(strs); got != want[i] {
			t.Errorf("decl %d = %q, want %q", i, got, want[i])
		}
	}
}

func TestDecode_Truncated(t *testing.T) {
	s := NewStyle(0)
	_ = s.AppendOPV(PropWidth, 0, ValueSetLength)
	_ = s.Append(uint32(fixed.One))

	if _, err := Decode(s); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestUnitByName(t *testing.T) {
	for _, name := range []string{"PX", "vmin", "Q", "%", "dppx"} {
		u, ok := UnitByName(name)
		if !ok {
			t.Errorf("%s not found", name)
			continue
		}
		if !strings.EqualFold(u.String(), name) {
			t.Errorf("%s resolved to %s", name, u)
		}
	}
	if _, ok := UnitByName("furlong"); ok {
		t.Error("unknown unit accepted")
	}
	if !UnitVMAX.IsLength() || UnitPCT.IsLength() || !UnitTURN.IsAngle() {
		t.Error("unit classes are wrong")
	}
}
