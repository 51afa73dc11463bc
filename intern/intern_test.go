package intern

import (
	"sync"
	"testing"
)

func TestIntern(t *testing.T) {
	tbl := NewTable()

	a := tbl.Intern("Width")
	b := tbl.InternBytes([]byte("Width"))
	c := tbl.Intern("width")
	d := tbl.Intern("WIDTH")

	if !a.Equal(b) {
		t.Error("same text must intern to the same handle")
	}
	if a.Equal(c) {
		t.Error("different case must intern to different handles")
	}
	if !a.CaselessEqual(c) || !d.CaselessEqual(c) {
		t.Error("caseless comparison failed")
	}
	if a.Folded().String() != "width" {
		t.Errorf("Folded() = %q", a.Folded().String())
	}
	if tbl.Len() != 3 {
		t.Errorf("Len() = %d, want 3", tbl.Len())
	}

	var zero String
	if !zero.IsZero() || zero.String() != "" || zero.CaselessEqual(a) {
		t.Error("zero handle misbehaves")
	}
}

func TestIntern_Concurrent(t *testing.T) {
	tbl := NewTable()
	words := []string{"auto", "none", "inherit", "Auto", "NONE"}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				for _, w := range words {
					tbl.Intern(w)
				}
			}
		}()
	}
	wg.Wait()

	if !tbl.Intern("auto").CaselessEqual(tbl.Intern("Auto")) {
		t.Error("caseless comparison failed after concurrent use")
	}
}
