package componentservice

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/lcsc2kicad/internal/apperr"
	"github.com/starford/lcsc2kicad/internal/batch"
	"github.com/starford/lcsc2kicad/internal/converter"
	"github.com/starford/lcsc2kicad/internal/library"
	"github.com/starford/lcsc2kicad/internal/sse"
	"github.com/starford/lcsc2kicad/internal/testutil"
)

type event struct{ kind, id, name string }

type recorder struct {
	mu     sync.Mutex
	events []event
}

func (r *recorder) add(e event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) ComponentConverted(ev sse.Converted) { r.add(event{"converted", ev.ID, ev.Name}) }

func (r *recorder) ComponentRemoved(ev sse.Removed) { r.add(event{"removed", ev.ID, ""}) }

// partialLibrary removes like the real library but reports a failure for
// the model class.
type partialLibrary struct{ *library.Library }

var errModels = errors.New("models: permission denied")

func (l partialLibrary) Remove(ctx context.Context, id string) (library.RemoveReport, error) {
	rep, err := l.Library.Remove(ctx, id)
	if err != nil {
		return rep, err
	}
	return rep, errModels
}

var opts = converter.Options{Symbol: true, Footprint: true, ProjectRelative: true}

func newService(t *testing.T, errs map[string]error) (*Service, *library.Library, *recorder) {
	t.Helper()
	lib := testutil.TestLibrary(t)
	db := testutil.TestDB(t)
	conv := &testutil.FakeConverter{Lib: lib, DB: db, Errors: errs}
	rec := &recorder{}
	return NewService(conv, lib, db, rec, opts, slog.New(slog.DiscardHandler)), lib, rec
}

func TestConvertPublishes(t *testing.T) {
	svc, _, rec := newService(t, nil)
	ctx := context.Background()

	if _, err := svc.Convert(ctx, "C1", svc.Defaults()); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Convert(ctx, "C1", svc.Defaults()); !errors.Is(err, apperr.ErrDuplicateComponent) {
		t.Fatalf("second convert: err = %v, want ErrDuplicateComponent", err)
	}
	want := []event{{"converted", "C1", "Part_C1"}}
	if diff := cmp.Diff(want, rec.events, cmp.AllowUnexported(event{})); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestRemove(t *testing.T) {
	svc, lib, rec := newService(t, nil)
	ctx := context.Background()
	_, _ = svc.Convert(ctx, "C1", opts)
	_, _ = svc.Convert(ctx, "C12", opts)

	rep, err := svc.Remove(ctx, "C1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(library.RemoveReport{Symbols: 1, Footprints: 1}, rep); diff != "" {
		t.Errorf("report (-want +got):\n%s", diff)
	}
	if _, err := svc.GetComponent(ctx, "C1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("catalog still has C1: %v", err)
	}
	if _, err := svc.GetComponent(ctx, "C12"); err != nil {
		t.Errorf("C12 should survive: %v", err)
	}
	art, _ := lib.Lookup(ctx, "C12")
	if !art.Symbol || !art.Footprint {
		t.Errorf("C12 artifacts removed: %+v", art)
	}

	rep, err = svc.Remove(ctx, "C1")
	if err != nil || rep.Total() != 0 {
		t.Errorf("second remove = %+v, %v", rep, err)
	}
	if got := rec.events[len(rec.events)-1]; got.kind != "removed" || got.id != "C1" {
		t.Errorf("last event = %+v", got)
	}
	removed := 0
	for _, e := range rec.events {
		if e.kind == "removed" {
			removed++
		}
	}
	if removed != 1 {
		t.Errorf("removed events = %d, want 1", removed)
	}

	if _, err := svc.Remove(ctx, "1"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("bad id: err = %v, want ErrInvalidInput", err)
	}
}

func TestRemovePartialFailureDropsCatalogRow(t *testing.T) {
	lib := testutil.TestLibrary(t)
	db := testutil.TestDB(t)
	conv := &testutil.FakeConverter{Lib: lib, DB: db}
	rec := &recorder{}
	svc := NewService(conv, partialLibrary{lib}, db, rec, opts, slog.New(slog.DiscardHandler))
	ctx := context.Background()
	if _, err := svc.Convert(ctx, "C4", opts); err != nil {
		t.Fatal(err)
	}

	rep, err := svc.Remove(ctx, "C4")
	if !errors.Is(err, errModels) {
		t.Fatalf("err = %v, want the library failure", err)
	}
	if rep.Symbols != 1 || rep.Footprints != 1 {
		t.Errorf("report = %+v", rep)
	}
	if _, err := svc.GetComponent(ctx, "C4"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("catalog row kept after partial removal: %v", err)
	}
	if got := rec.events[len(rec.events)-1]; got.kind != "removed" || got.id != "C4" {
		t.Errorf("last event = %+v", got)
	}

	// Nothing left to remove: the failure is returned and nothing is announced.
	n := len(rec.events)
	if _, err := svc.Remove(ctx, "C4"); !errors.Is(err, errModels) {
		t.Errorf("second remove err = %v", err)
	}
	if len(rec.events) != n {
		t.Errorf("events grew to %d, want %d", len(rec.events), n)
	}
}

func TestConvertBatch(t *testing.T) {
	svc, _, _ := newService(t, map[string]error{"C3": testutil.ErrUnknownPart})
	rep, err := svc.ConvertBatch(context.Background(), []string{"C1", "C2", "C3", "C4"}, opts,
		batch.Options{Parallel: 2, ContinueOnError: true})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Total != 4 || rep.Success != 3 || rep.Failed != 1 {
		t.Errorf("report = %+v", rep)
	}
	if diff := cmp.Diff([]string{"C3"}, rep.FailedIDs); diff != "" {
		t.Errorf("failed ids (-want +got):\n%s", diff)
	}

	items, total, err := svc.ListComponents(context.Background(), 10, 0, "id")
	if err != nil || total != 3 || len(items) != 3 {
		t.Errorf("list = %d items, total %d, err %v", len(items), total, err)
	}
}

func TestSearchEmptyIsSlice(t *testing.T) {
	svc, _, _ := newService(t, nil)
	got, err := svc.Search(context.Background(), "nothing", 10)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Error("Search should return an empty slice, not nil")
	}
}
