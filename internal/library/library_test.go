package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/lcsc2kicad/internal/apperr"
)

func testLibrary(t *testing.T) *Library {
	t.Helper()
	lib, err := Open(filepath.Join(t.TempDir(), "lib"), "lcsc", slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return lib
}

func entry(name string) string {
	return fmt.Sprintf("  (symbol %q (in_bom yes) (on_board yes)\n    (property \"Reference\" \"U\" (id 0) (at 0 0 0))\n  )\n", name)
}

func readSym(t *testing.T, lib *Library) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(lib.Dir(), lib.SymbolFile()))
	if err != nil {
		t.Fatalf("read container: %v", err)
	}
	return string(data)
}

func TestAddOrUpdateCreatesContainer(t *testing.T) {
	ctx := context.Background()
	lib := testLibrary(t)
	if err := lib.AddOrUpdate(ctx, "A_C1", entry("A_C1"), false); err != nil {
		t.Fatal(err)
	}
	want := "(kicad_symbol_lib (version 20211014) (generator lcsc2kicad)\n" + entry("A_C1") + ")\n"
	if diff := cmp.Diff(want, readSym(t, lib)); diff != "" {
		t.Errorf("container (-want +got):\n%s", diff)
	}
}

func TestAddOrUpdateDuplicateLeavesBytes(t *testing.T) {
	ctx := context.Background()
	lib := testLibrary(t)
	for _, n := range []string{"A_C1", "B_C2"} {
		if err := lib.AddOrUpdate(ctx, n, entry(n), false); err != nil {
			t.Fatal(err)
		}
	}
	before := readSym(t, lib)

	err := lib.AddOrUpdate(ctx, "A_C1", "  (symbol \"A_C1\" (changed))\n", false)
	if !errors.Is(err, apperr.ErrDuplicateComponent) {
		t.Fatalf("err = %v, want ErrDuplicateComponent", err)
	}
	if after := readSym(t, lib); after != before {
		t.Errorf("container changed on duplicate:\n%s", after)
	}
}

func TestAddOrUpdateOverwriteRewritesOnlySpan(t *testing.T) {
	ctx := context.Background()
	lib := testLibrary(t)
	for _, n := range []string{"A_C1", "B_C2", "C_C3"} {
		if err := lib.AddOrUpdate(ctx, n, entry(n), false); err != nil {
			t.Fatal(err)
		}
	}
	before := readSym(t, lib)
	replacement := "  (symbol \"B_C2\" (in_bom no))\n"
	if err := lib.AddOrUpdate(ctx, "B_C2", replacement, true); err != nil {
		t.Fatal(err)
	}
	want := strings.Replace(before, entry("B_C2"), replacement, 1)
	if diff := cmp.Diff(want, readSym(t, lib)); diff != "" {
		t.Errorf("container (-want +got):\n%s", diff)
	}
}

func TestAddOrUpdatePreservesForeignFormatting(t *testing.T) {
	ctx := context.Background()
	lib := testLibrary(t)
	// Hand-edited container: tabs, a comment-like string and no trailing newline.
	orig := "(kicad_symbol_lib (version 20211014) (generator kicad_symbol_editor)\n\t(symbol \"Keep_C9\" (property \"Note\" \"has ) and ( inside\"))\n)"
	if err := os.WriteFile(filepath.Join(lib.Dir(), lib.SymbolFile()), []byte(orig), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := lib.AddOrUpdate(ctx, "New_C10", entry("New_C10"), false); err != nil {
		t.Fatal(err)
	}
	got := readSym(t, lib)
	want := strings.TrimSuffix(orig, ")") + entry("New_C10") + ")"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("container (-want +got):\n%s", diff)
	}
}

func TestRemoveSymbols(t *testing.T) {
	ctx := context.Background()
	lib := testLibrary(t)
	for _, n := range []string{"A_C1", "B_C12", "C_C1", "D_C2"} {
		if err := lib.AddOrUpdate(ctx, n, entry(n), false); err != nil {
			t.Fatal(err)
		}
	}
	n, err := lib.RemoveSymbols(ctx, "C1")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("removed = %d, want 2", n)
	}
	want := SymbolLibHeader[:len(SymbolLibHeader)-2] + entry("B_C12") + entry("D_C2") + ")\n"
	if diff := cmp.Diff(want, readSym(t, lib)); diff != "" {
		t.Errorf("container (-want +got):\n%s", diff)
	}
}

func TestRemoveSymbolsIgnoresQuotedNames(t *testing.T) {
	ctx := context.Background()
	lib := testLibrary(t)
	decoy := "  (symbol \"Other_C5\" (property \"Note\" \"(symbol \\\"Fake_C7\\\")\"))\n"
	if err := lib.AddOrUpdate(ctx, "Other_C5", decoy, false); err != nil {
		t.Fatal(err)
	}
	before := readSym(t, lib)
	n, err := lib.RemoveSymbols(ctx, "C7")
	if err != nil || n != 0 {
		t.Fatalf("RemoveSymbols = %d, %v; want 0, nil", n, err)
	}
	if readSym(t, lib) != before {
		t.Error("container changed")
	}
}

func TestRemoveNonExistent(t *testing.T) {
	ctx := context.Background()
	lib := testLibrary(t)

	rep, err := lib.Remove(ctx, "C404")
	if err != nil {
		t.Fatalf("Remove on empty library: %v", err)
	}
	if rep != (RemoveReport{}) {
		t.Errorf("report = %+v, want zeros", rep)
	}

	if err := lib.AddOrUpdate(ctx, "A_C1", entry("A_C1"), false); err != nil {
		t.Fatal(err)
	}
	before := readSym(t, lib)
	rep, err = lib.Remove(ctx, "C404")
	if err != nil || rep.Total() != 0 {
		t.Fatalf("Remove = %+v, %v", rep, err)
	}
	if readSym(t, lib) != before {
		t.Error("container changed")
	}
}

func TestFilesAndRemoveReport(t *testing.T) {
	ctx := context.Background()
	lib := testLibrary(t)

	if err := lib.AddOrUpdate(ctx, "R_C25", entry("R_C25"), false); err != nil {
		t.Fatal(err)
	}
	if err := lib.WriteFootprint(ctx, "R_C25", "(footprint \"R_C25\")\n"); err != nil {
		t.Fatal(err)
	}
	if err := lib.WriteFootprint(ctx, "R_C250", "(footprint \"R_C250\")\n"); err != nil {
		t.Fatal(err)
	}
	if err := lib.WriteModel(ctx, "R0603_C25", ExtWRL, []byte("#VRML V2.0 utf8\n")); err != nil {
		t.Fatal(err)
	}
	if err := lib.WriteModel(ctx, "R0603_C25", ExtSTEP, []byte("ISO-10303-21;\n")); err != nil {
		t.Fatal(err)
	}
	if err := lib.WriteModel(ctx, "x", "obj", nil); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("bad ext err = %v", err)
	}

	got, err := lib.Lookup(ctx, "C25")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Artifacts{Symbol: true, Footprint: true, ModelFormats: []string{ExtWRL, ExtSTEP}}, got); diff != "" {
		t.Errorf("lookup (-want +got):\n%s", diff)
	}

	rep, err := lib.Remove(ctx, "C25")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(RemoveReport{Symbols: 1, Footprints: 1, Models: 2}, rep); diff != "" {
		t.Errorf("report (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(filepath.Join(lib.Dir(), "lcsc.pretty", "R_C250.kicad_mod")); err != nil {
		t.Errorf("unrelated footprint removed: %v", err)
	}
	if got, _ := lib.Lookup(ctx, "C25"); !got.Empty() {
		t.Errorf("lookup after remove = %+v", got)
	}
}

func TestConcurrentAddOrUpdate(t *testing.T) {
	ctx := context.Background()
	lib := testLibrary(t)

	const n = 24
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("P_C%d", i)
			errs <- lib.AddOrUpdate(ctx, name, entry(name), false)
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}

	names, err := lib.SymbolNames(ctx)
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(names)
	var want []string
	for i := range n {
		want = append(want, fmt.Sprintf("P_C%d", i))
	}
	sort.Strings(want)
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
}
