package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempLibrary(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempLibrary(t)
	content := []byte("(kicad_symbol_lib (version 20211014)\n)\n")
	if err := s.Write("lcsc.kicad_sym", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("lcsc.kicad_sym")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempLibrary(t)
	if err := s.Write("lcsc.pretty/R_0603_C1.kicad_mod", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("lcsc.pretty/R_0603_C1.kicad_mod")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestDeleteAndExists(t *testing.T) {
	s := tempLibrary(t)
	_ = s.Write("lcsc.3dshapes/x.step", []byte("bye"))
	ok, err := s.Exists("lcsc.3dshapes/x.step")
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
	if err := s.Delete("lcsc.3dshapes/x.step"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ok, _ := s.Exists("lcsc.3dshapes/x.step"); ok {
		t.Error("file still exists after delete")
	}
	if ok, _ := s.Exists("lcsc.3dshapes"); ok {
		t.Error("directory reported as file")
	}
}

func TestList(t *testing.T) {
	s := tempLibrary(t)
	_ = s.Write("lcsc.pretty/a.kicad_mod", []byte("a"))
	_ = s.Write("lcsc.pretty/b.kicad_mod", []byte("b"))
	_ = s.Write("lcsc.pretty/readme.txt", []byte("not a footprint"))

	items, err := s.List("lcsc.pretty", ".kicad_mod")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len = %d, want 2", len(items))
	}
	for _, it := range items {
		if it.Checksum == "" || it.UpdatedAt.IsZero() {
			t.Errorf("incomplete entry %+v", it)
		}
	}
}

func TestListMissingDir(t *testing.T) {
	s := tempLibrary(t)
	items, err := s.List("nope.pretty", ".kicad_mod")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("len = %d, want 0", len(items))
	}
}

func TestNames(t *testing.T) {
	s := tempLibrary(t)
	_ = s.Write("lcsc.3dshapes/a_C1.step", []byte("a"))
	_ = s.Write("lcsc.3dshapes/a_C1.wrl", []byte("a"))
	_ = s.Write("lcsc.3dshapes/nested/b_C2.step", []byte("b"))
	if err := os.WriteFile(filepath.Join(s.root, "lcsc.3dshapes", tmpPrefix+"x.step"), []byte("partial"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := s.Names("lcsc.3dshapes", ".step")
	if err != nil {
		t.Fatalf("Names: %v", err)
	}
	want := []string{filepath.Join("lcsc.3dshapes", "a_C1.step")}
	if len(got) != 1 || got[0] != want[0] {
		t.Errorf("Names = %v, want %v", got, want)
	}

	missing, err := s.Names("nope.3dshapes", ".step")
	if err != nil || missing != nil {
		t.Errorf("missing dir = %v, %v", missing, err)
	}
	if _, err := s.Names("../outside", ".step"); err == nil {
		t.Error("expected error for traversal")
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempLibrary(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.kicad_mod",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteNoLeftovers(t *testing.T) {
	s := tempLibrary(t)
	_ = s.Write("lcsc.kicad_sym", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write("lcsc.kicad_sym", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("lcsc.kicad_sym")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.root, tmpPrefix+"*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp(t.TempDir(), "lcsc2kicad-test-*")
	_ = f.Close()
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
