// Package bytecode defines the compact encoding of parsed declarations.
//
// A style is a sequence of 32-bit words. Every declaration is a record that
// starts with an OPV word packing the property, flags and a value tag,
// followed by the operands the value tag calls for:
//
//	bits  0..9   property
//	bits 10..17  flags (FlagImportant, FlagInherit)
//	bits 18..31  value tag
//
// Value tags below ValueSetLength index the property's keyword list and
// carry no operands. Lengths are stored as a fixed-point word followed by a
// unit word.
package bytecode

import (
	"errors"
	"fmt"

	"csseng/fixed"
)

var (
	// ErrInvalid marks malformed input. The caller drops the declaration,
	// media query list or rule and carries on.
	ErrInvalid = errors.New("invalid")
	// ErrOutOfMemory is returned when a style outgrows its word limit. It
	// aborts the whole parse.
	ErrOutOfMemory = errors.New("out of memory")
)

// Flags of an OPV word.
const (
	FlagImportant uint8 = 0x1
	FlagInherit   uint8 = 0x2
)

// Value tags with operands.
const (
	ValueSetLength     uint16 = 0x1001 // fixed, unit
	ValueSetNumber     uint16 = 0x1002 // fixed
	ValueSetInteger    uint16 = 0x1003 // int32
	ValueSetColour     uint16 = 0x1004 // 0xAARRGGBB
	ValueSetURI        uint16 = 0x1005 // string table index
	ValueSetString     uint16 = 0x1006 // string table index
	ValueSetList       uint16 = 0x1007 // (ListItem fixed unit)* ListEnd
	ValueSetSpan       uint16 = 0x1008 // int32
	ValueSetLengthPair uint16 = 0x1009 // fixed, unit, fixed, unit
	ValueCurrentColour uint16 = 0x100a

	// ValueComposite tags carry a property specific bit set in the low bits.
	ValueComposite uint16 = 0x2000
)

// List item markers used by ValueSetList.
const (
	ListEnd  uint32 = 0
	ListItem uint32 = 1
)

// text-shadow composite bits. Operands follow in bit order: h, v and blur
// lengths, then the colour word.
const (
	ShadowH            uint16 = 0x1
	ShadowV            uint16 = 0x2
	ShadowBlur         uint16 = 0x4
	ShadowColour       uint16 = 0x8
	ShadowCurrentColor uint16 = 0x10
)

// background-size axis kinds, horizontal in bits 0..1 and vertical in
// bits 2..3 of the composite tag. A SizeSet axis is followed by a length.
const (
	SizeAuto    uint16 = 0
	SizeSet     uint16 = 1
	SizeContain uint16 = 2
	SizeCover   uint16 = 3
)

// BackgroundSizeValue builds the composite value tag for two axes.
func BackgroundSizeValue(h, v uint16) uint16 {
	return ValueComposite | h | v<<2
}

const (
	propBits  = 10
	flagBits  = 8
	propMask  = 1<<propBits - 1
	flagMask  = 1<<flagBits - 1
	valueMask = 1<<14 - 1
)

// BuildOPV packs an OPV word.
func BuildOPV(p Property, flags uint8, value uint16) uint32 {
	return uint32(p)&propMask | uint32(flags)<<propBits | (uint32(value)&valueMask)<<(propBits+flagBits)
}

// OPV unpacks an OPV word.
func OPV(w uint32) (p Property, flags uint8, value uint16) {
	return Property(w & propMask), uint8(w >> propBits & flagMask), uint16(w >> (propBits + flagBits))
}

const minGrowth = 16

// Style is an append-only buffer of declaration records that can be rolled
// back to a previous mark. The zero value is an empty, unlimited style.
type Style struct {
	words   []uint32
	records []int
	max     int
}

// NewStyle returns a style that refuses to grow beyond maxWords words.
// A maxWords of zero means no limit.
func NewStyle(maxWords int) *Style {
	return &Style{max: maxWords}
}

// Sub returns an empty style sharing the word limit of s, used for private
// shorthand buffers.
func (s *Style) Sub() *Style {
	return &Style{max: s.max}
}

func (s *Style) grow(n int) error {
	need := len(s.words) + n
	if s.max > 0 && need > s.max {
		return fmt.Errorf("style needs %d words, limit %d: %w", need, s.max, ErrOutOfMemory)
	}
	if need <= cap(s.words) {
		return nil
	}
	c := max(cap(s.words)*2, minGrowth, need)
	if s.max > 0 {
		c = min(c, s.max)
	}
	words := make([]uint32, len(s.words), c)
	copy(words, s.words)
	s.words = words
	return nil
}

// AppendOPV starts a new record.
func (s *Style) AppendOPV(p Property, flags uint8, value uint16) error {
	if err := s.grow(1); err != nil {
		return err
	}
	s.records = append(s.records, len(s.words))
	s.words = append(s.words, BuildOPV(p, flags, value))
	return nil
}

// Append adds an operand word to the current record.
func (s *Style) Append(w uint32) error {
	if err := s.grow(1); err != nil {
		return err
	}
	s.words = append(s.words, w)
	return nil
}

// VAppend adds several operand words at once.
func (s *Style) VAppend(ws ...uint32) error {
	if err := s.grow(len(ws)); err != nil {
		return err
	}
	s.words = append(s.words, ws...)
	return nil
}

// AppendLength adds a fixed-point value and its unit.
func (s *Style) AppendLength(v fixed.Fixed, u Unit) error {
	return s.VAppend(uint32(v), uint32(u))
}

// Inherit appends the single word record meaning "use the parent's value".
func (s *Style) Inherit(p Property) error {
	return s.AppendOPV(p, FlagInherit, 0)
}

// Merge moves all records of src to the end of s and empties src.
func (s *Style) Merge(src *Style) error {
	if src == nil || len(src.words) == 0 {
		return nil
	}
	if err := s.grow(len(src.words)); err != nil {
		return err
	}
	base := len(s.words)
	for _, r := range src.records {
		s.records = append(s.records, base+r)
	}
	s.words = append(s.words, src.words...)
	src.words = src.words[:0]
	src.records = src.records[:0]
	return nil
}

// Mark captures the current length for a later Truncate.
func (s *Style) Mark() int {
	return len(s.words)
}

// Truncate rolls s back to mark, dropping every record started after it.
func (s *Style) Truncate(mark int) {
	if mark >= len(s.words) {
		return
	}
	s.words = s.words[:mark]
	n := len(s.records)
	for n > 0 && s.records[n-1] >= mark {
		n--
	}
	s.records = s.records[:n]
}

// MakeImportant sets the important flag on every record.
func (s *Style) MakeImportant() {
	for _, r := range s.records {
		s.words[r] |= uint32(FlagImportant) << propBits
	}
}

// Len returns the number of words.
func (s *Style) Len() int {
	return len(s.words)
}

// Words returns the encoded words. The slice must not be modified.
func (s *Style) Words() []uint32 {
	return s.words
}

// Records returns the word offsets at which records start.
func (s *Style) Records() []int {
	return s.records
}
