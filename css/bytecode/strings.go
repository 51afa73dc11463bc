package bytecode

import "csseng/intern"

// StringTable holds the strings referenced from a stylesheet's bytecode.
// Indices are stable for the lifetime of the table.
type StringTable struct {
	items []intern.String
	index map[intern.String]uint32
}

func NewStringTable() *StringTable {
	return &StringTable{index: make(map[intern.String]uint32)}
}

// Add stores s, returning the index of an existing equal entry if any.
func (t *StringTable) Add(s intern.String) uint32 {
	if i, ok := t.index[s]; ok {
		return i
	}
	i := uint32(len(t.items))
	t.items = append(t.items, s)
	t.index[s] = i
	return i
}

// Get returns the string at index i.
func (t *StringTable) Get(i uint32) (intern.String, bool) {
	if t == nil || int(i) >= len(t.items) {
		return intern.String{}, false
	}
	return t.items[i], true
}

func (t *StringTable) Len() int {
	return len(t.items)
}
