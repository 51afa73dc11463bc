// Package intern provides the string interning table shared by stylesheets:
// every identifier-like token, property keyword and stored string is kept
// once, compared by identity and, when needed, without regard to case.
package intern

import (
	"sync"

	"golang.org/x/text/cases"
)

type entry struct {
	s      string
	folded *entry
}

// String is a handle to an interned string. The zero value is the absent
// string. Handles from different tables never compare equal.
type String struct {
	e *entry
}

// String returns the interned text.
func (s String) String() string {
	if s.e == nil {
		return ""
	}
	return s.e.s
}

func (s String) IsZero() bool {
	return s.e == nil
}

func (s String) Len() int {
	return len(s.String())
}

// Equal reports whether both handles refer to the same interned string.
func (s String) Equal(o String) bool {
	return s.e == o.e
}

// CaselessEqual reports whether both strings are equal under case folding.
func (s String) CaselessEqual(o String) bool {
	if s.e == nil || o.e == nil {
		return s.e == o.e
	}
	return s.e.folded == o.e.folded
}

// Folded returns the case folded form of s.
func (s String) Folded() String {
	if s.e == nil {
		return s
	}
	return String{s.e.folded}
}

// Table interns strings. It is safe for concurrent use.
type Table struct {
	mu      sync.Mutex
	entries map[string]*entry
	fold    cases.Caser
}

func NewTable() *Table {
	return &Table{
		entries: make(map[string]*entry),
		fold:    cases.Fold(),
	}
}

// Intern returns the handle for s, adding it to the table if necessary.
func (t *Table) Intern(s string) String {
	t.mu.Lock()
	defer t.mu.Unlock()
	return String{t.intern(s)}
}

// InternBytes is Intern for byte slices; b is copied.
func (t *Table) InternBytes(b []byte) String {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[string(b)]; ok {
		return String{e}
	}
	return String{t.intern(string(b))}
}

// Len returns the number of distinct strings in the table.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (t *Table) intern(s string) *entry {
	if e, ok := t.entries[s]; ok {
		return e
	}
	e := &entry{s: s}
	t.entries[s] = e

	f := t.fold.String(s)
	t.fold.Reset()
	if f == s {
		e.folded = e
	} else {
		e.folded = t.intern(f)
	}
	return e
}
