package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestReport(t *testing.T) *Report {
	t.Helper()
	conf := ReporterConfig{Destination: filepath.Join(t.TempDir(), "report.zip")}
	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	return r
}

func readArchive(t *testing.T, name string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()

	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("unable to read %s: %v", f.Name, err)
		}
		out[f.Name] = string(data)
	}
	return out
}

func TestReportClose_RemovesStoredDirs(t *testing.T) {
	r := newTestReport(t)

	dir1, err := os.MkdirTemp("", "test-workdir1-")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	dir2, err := os.MkdirTemp("", "test-workdir2-")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir1, "computed.txt"), []byte("color: #ff0000"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	stored := filepath.Join(t.TempDir(), "input.css")
	if err := os.WriteFile(stored, []byte("p { color: red }"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	r.Store("workdir-1", dir1)
	r.Store("workdir-2", dir2)
	r.Store("input.css", stored)

	if err := r.Close(); err != nil {
		t.Fatalf("Report.Close() error: %v", err)
	}

	for _, dir := range []string{dir1, dir2} {
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			os.RemoveAll(dir)
			t.Errorf("expected %s to be removed, but it still exists", dir)
		}
	}
	if _, err := os.Stat(stored); err != nil {
		t.Errorf("stored file should not be removed, but got error: %v", err)
	}

	files := readArchive(t, r.Name())
	if files["input.css"] != "p { color: red }" {
		t.Errorf("input.css = %q", files["input.css"])
	}
	if files["workdir-1/computed.txt"] != "color: #ff0000" {
		t.Errorf("workdir-1/computed.txt = %q", files["workdir-1/computed.txt"])
	}
	if !strings.Contains(files["MANIFEST"], "workdir-2") {
		t.Errorf("MANIFEST lacks workdir-2:\n%s", files["MANIFEST"])
	}
}

func TestReport_StoreData(t *testing.T) {
	r := newTestReport(t)

	data := []byte("version: 1\n")
	r.StoreData("config/config.yaml", data)
	data[0] = 'X'
	r.StoreData("config/config.yaml", []byte("second"))
	r.StoreData("empty", nil)
	r.Store("absent", filepath.Join(t.TempDir(), "nothing-here"))

	if err := r.Close(); err != nil {
		t.Fatalf("Report.Close() error: %v", err)
	}

	files := readArchive(t, r.Name())
	if files["config/config.yaml"] != "version: 1\n" {
		t.Errorf("stored data changed with the caller's slice: %q", files["config/config.yaml"])
	}
	var versioned int
	for name, content := range files {
		if strings.HasPrefix(name, "config/config.yaml-") && content == "second" {
			versioned++
		}
	}
	if versioned != 1 {
		t.Errorf("repeated name was not versioned: %v", files)
	}
	if content, ok := files["empty"]; !ok || content != "" {
		t.Errorf("empty data entry = %q, %v", content, ok)
	}
	if _, ok := files["absent"]; ok {
		t.Error("absent file must not be archived")
	}
}

func TestReport_StoreConflict(t *testing.T) {
	r := newTestReport(t)
	defer r.Close()

	r.Store("input", "a.css")
	r.Store("input", "a.css")

	defer func() {
		if recover() == nil {
			t.Error("expected panic when overwriting an entry with a new path")
		}
	}()
	r.Store("input", "b.css")
}

func TestReportClose_NilReport(t *testing.T) {
	var r *Report
	r.Store("x", "y")
	r.StoreData("x", []byte("y"))
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
	if r.Name() != "" {
		t.Errorf("Name on nil report = %q", r.Name())
	}
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}
