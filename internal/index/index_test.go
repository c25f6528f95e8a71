package index

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/starford/lcsc2kicad/internal/apperr"
	"github.com/starford/lcsc2kicad/internal/library"
	"github.com/starford/lcsc2kicad/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func summary(id, name string, at time.Time) models.ComponentSummary {
	return models.ComponentSummary{
		ID:           id,
		Name:         name,
		Title:        name,
		Manufacturer: "Yageo",
		Package:      "0603",
		HasSymbol:    true,
		HasFootprint: true,
		ModelFormats: []string{"wrl", "step"},
		Checksum:     "sum-" + id,
		UpdatedAt:    at,
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM components`).Scan(&count); err != nil {
		t.Fatalf("components table missing: %v", err)
	}
}

func TestUpsertAndGet(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	want := summary("C25804", "RC0603_10K_C25804", time.Now().UTC().Truncate(time.Second))
	if err := db.UpsertComponent(ctx, want); err != nil {
		t.Fatalf("UpsertComponent: %v", err)
	}
	got, err := db.GetComponent(ctx, "C25804")
	if err != nil {
		t.Fatalf("GetComponent: %v", err)
	}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("component mismatch (-want +got):\n%s", diff)
	}

	want.HasFootprint = false
	want.ModelFormats = nil
	if err := db.UpsertComponent(ctx, want); err != nil {
		t.Fatalf("UpsertComponent again: %v", err)
	}
	got, _ = db.GetComponent(ctx, "C25804")
	if diff := cmp.Diff(want, *got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("updated component mismatch (-want +got):\n%s", diff)
	}
}

func TestGetComponentNotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetComponent(context.Background(), "C1")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteComponent(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.UpsertComponent(ctx, summary("C1", "A_C1", time.Now()))

	if err := db.DeleteComponent(ctx, "C1"); err != nil {
		t.Fatalf("DeleteComponent: %v", err)
	}
	if _, err := db.GetComponent(ctx, "C1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("component still present: %v", err)
	}
	if err := db.DeleteComponent(ctx, "C1"); err != nil {
		t.Errorf("deleting twice: %v", err)
	}
}

func TestListComponents(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = db.UpsertComponent(ctx, summary("C3", "B_C3", base.Add(1*time.Hour)))
	_ = db.UpsertComponent(ctx, summary("C1", "C_C1", base.Add(3*time.Hour)))
	_ = db.UpsertComponent(ctx, summary("C2", "A_C2", base.Add(2*time.Hour)))

	ids := func(cs []models.ComponentSummary) []string {
		var out []string
		for _, c := range cs {
			out = append(out, c.ID)
		}
		return out
	}

	tests := []struct {
		sort          string
		limit, offset int
		want          []string
	}{
		{"", 0, 0, []string{"C1", "C2", "C3"}},
		{"id", 10, 0, []string{"C1", "C2", "C3"}},
		{"name", 10, 0, []string{"C2", "C3", "C1"}},
		{"id", 1, 1, []string{"C2"}},
		{"id", 10, 5, nil},
	}
	for _, tt := range tests {
		got, total, err := db.ListComponents(ctx, tt.limit, tt.offset, tt.sort)
		if err != nil {
			t.Fatalf("ListComponents(%q): %v", tt.sort, err)
		}
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
		if diff := cmp.Diff(tt.want, ids(got)); diff != "" {
			t.Errorf("sort %q limit %d offset %d (-want +got):\n%s", tt.sort, tt.limit, tt.offset, diff)
		}
	}

	if _, _, err := db.ListComponents(ctx, 10, 0, "size"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("unknown sort: err = %v, want ErrInvalidInput", err)
	}
}

func TestSearch(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	r := summary("C25804", "RC0603_10K_C25804", time.Now())
	r.Manufacturer = "Yageo"
	c := summary("C14663", "CL10B104_C14663", time.Now())
	c.Manufacturer = "Samsung"
	_ = db.UpsertComponent(ctx, r)
	_ = db.UpsertComponent(ctx, c)

	got, err := db.Search(ctx, "Samsung", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].ID != "C14663" {
		t.Errorf("Search(Samsung) = %+v", got)
	}

	_ = db.DeleteComponent(ctx, "C14663")
	got, _ = db.Search(ctx, "Samsung", 10)
	if len(got) != 0 {
		t.Errorf("deleted component still found: %+v", got)
	}
}

func TestAllIDs(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.UpsertComponent(ctx, summary("C1", "A_C1", time.Now()))
	_ = db.UpsertComponent(ctx, summary("C2", "B_C2", time.Now()))

	got, err := db.AllIDs(ctx)
	if err != nil {
		t.Fatalf("AllIDs: %v", err)
	}
	want := map[string]struct{}{"C1": {}, "C2": {}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AllIDs (-want +got):\n%s", diff)
	}
}

type fakeInspector map[string]library.Artifacts

func (f fakeInspector) Lookup(_ context.Context, id string) (library.Artifacts, error) {
	return f[id], nil
}

func TestSync(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.UpsertComponent(ctx, summary("C1", "A_C1", time.Now()))
	_ = db.UpsertComponent(ctx, summary("C2", "B_C2", time.Now()))
	_ = db.UpsertComponent(ctx, summary("C3", "C_C3", time.Now()))

	lib := fakeInspector{
		"C1": {Symbol: true, Footprint: true, ModelFormats: []string{"wrl", "step"}},
		"C2": {Symbol: true},
	}
	if err := Sync(ctx, db, lib, slog.New(slog.DiscardHandler)); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	ids, _ := db.AllIDs(ctx)
	if _, ok := ids["C3"]; ok || len(ids) != 2 {
		t.Fatalf("ids after sync = %v", ids)
	}
	c2, err := db.GetComponent(ctx, "C2")
	if err != nil {
		t.Fatalf("GetComponent: %v", err)
	}
	if !c2.HasSymbol || c2.HasFootprint || len(c2.ModelFormats) != 0 {
		t.Errorf("C2 not refreshed: %+v", c2)
	}
}
