package converter

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/lcsc2kicad/internal/apperr"
	"github.com/starford/lcsc2kicad/internal/geometry"
	"github.com/starford/lcsc2kicad/internal/library"
	"github.com/starford/lcsc2kicad/internal/models"
)

const testOBJ = "newmtl m\nKd 1 0 0\nv 0 0 0\nv 1 0 0\nv 0 1 0\nusemtl m\nf 1 2 3\n"

type fakeSource struct {
	records map[string]*models.ComponentRecord
	objErr  error
	stepErr error

	mu      sync.Mutex
	fetched []string
}

func (f *fakeSource) FetchComponent(_ context.Context, id string) (*models.ComponentRecord, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, id)
	f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok {
		return nil, errors.Join(apperr.ErrRemote, apperr.ErrComponentNotFound)
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeSource) DownloadOBJ(context.Context, string) ([]byte, error) {
	if f.objErr != nil {
		return nil, f.objErr
	}
	return []byte(testOBJ), nil
}

func (f *fakeSource) DownloadSTEP(context.Context, string) ([]byte, error) {
	if f.stepErr != nil {
		return nil, f.stepErr
	}
	return []byte("ISO-10303-21;\nEND-ISO-10303-21;\n"), nil
}

type fakeCatalog struct {
	mu   sync.Mutex
	rows map[string]models.ComponentSummary
}

func (f *fakeCatalog) UpsertComponent(_ context.Context, c models.ComponentSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rows == nil {
		f.rows = map[string]models.ComponentSummary{}
	}
	f.rows[c.ID] = c
	return nil
}

func resistor(id string, withModel bool) *models.ComponentRecord {
	rec := &models.ComponentRecord{
		ID:           id,
		Title:        "0603WAF1002T5E",
		Prefix:       "R",
		Package:      "0603",
		Manufacturer: "UNI-ROYAL",
		SymbolOrigin: geometry.Pt(400, 300),
		SymbolShapes: []string{
			"R~390~296~~~20~8~#A00000~1~0~none~gge1~0",
			"P~show~0~1~380~300~180~gge2~0^^380~300^^M 380 300 h 10~#800^^1~393~304~0~1~start~~~#800^^1~388~299~0~1~end~~~#800^^0~387~300^^0~M 390 303 L 393 300 L 390 297",
			"P~show~0~2~420~300~0~gge3~0^^420~300^^M 420 300 h -10~#800^^1~407~304~0~2~end~~~#800^^1~412~299~0~2~start~~~#800^^0~413~300^^0~M 410 297 L 407 300 L 410 303",
		},
		FootprintOrigin: geometry.Pt(4000, 3000),
		FootprintShapes: []string{
			"PAD~RECT~3997~3000~3~4~1~~1~0~~0~gge1~0~~Y~0",
			"PAD~RECT~4003~3000~3~4~1~~2~0~~0~gge2~0~~Y~0",
			"TRACK~0.6~3~~3994 2997 4006 2997~gge3~0",
		},
	}
	if withModel {
		rec.Model3D = &models.Model3D{UUID: "uuid-1", Title: "R0603"}
	}
	return rec
}

func setup(t *testing.T, src *fakeSource) (*Converter, *library.Library, *fakeCatalog) {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	lib, err := library.Open(filepath.Join(t.TempDir(), "lib"), "lcsc", logger)
	if err != nil {
		t.Fatal(err)
	}
	cat := &fakeCatalog{}
	return New(src, lib, cat, logger), lib, cat
}

var full = Options{Symbol: true, Footprint: true, Model3D: true, ProjectRelative: true, GlobalEnv: "LCSC"}

func TestConvertFull(t *testing.T) {
	src := &fakeSource{records: map[string]*models.ComponentRecord{"C25804": resistor("C25804", true)}}
	conv, lib, cat := setup(t, src)

	res, err := conv.Convert(context.Background(), "C25804", full)
	if err != nil {
		t.Fatal(err)
	}
	want := &Result{
		ID: "C25804", Name: "0603WAF1002T5E_C25804", Title: "0603WAF1002T5E",
		Symbol: true, Footprint: true, ModelFormats: []string{"wrl", "step"},
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("result (-want +got):\n%s", diff)
	}

	sym, err := os.ReadFile(filepath.Join(lib.Dir(), "lcsc.kicad_sym"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(sym), `(symbol "0603WAF1002T5E_C25804"`) ||
		!strings.Contains(string(sym), `(property "Footprint" "lcsc:0603WAF1002T5E_C25804"`) {
		t.Errorf("symbol container:\n%s", sym)
	}
	fp, err := os.ReadFile(filepath.Join(lib.Dir(), "lcsc.pretty", "0603WAF1002T5E_C25804.kicad_mod"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(fp), `(model "${KIPRJMOD}/lcsc.3dshapes/R0603_C25804.step"`) {
		t.Errorf("footprint:\n%s", fp)
	}
	for _, f := range []string{"R0603_C25804.wrl", "R0603_C25804.step"} {
		if _, err := os.Stat(filepath.Join(lib.Dir(), "lcsc.3dshapes", f)); err != nil {
			t.Errorf("missing model: %v", err)
		}
	}

	row, ok := cat.rows["C25804"]
	if !ok {
		t.Fatal("catalog not updated")
	}
	if !row.HasSymbol || !row.HasFootprint || len(row.ModelFormats) != 2 || row.Checksum == "" || row.Package != "0603" {
		t.Errorf("catalog row = %+v", row)
	}
}

func TestConvertValidation(t *testing.T) {
	src := &fakeSource{}
	conv, _, _ := setup(t, src)
	ctx := context.Background()

	for _, id := range []string{"", "C", "12345", "c123", "C12a", "C 1"} {
		if _, err := conv.Convert(ctx, id, full); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("Convert(%q) err = %v, want ErrInvalidInput", id, err)
		}
	}
	if _, err := conv.Convert(ctx, "C1", Options{}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("empty selection err = %v, want ErrInvalidInput", err)
	}
	if len(src.fetched) != 0 {
		t.Errorf("fetched %v before validation passed", src.fetched)
	}
}

func TestConvertDuplicateSymbol(t *testing.T) {
	src := &fakeSource{records: map[string]*models.ComponentRecord{"C1": resistor("C1", false)}}
	conv, _, _ := setup(t, src)
	ctx := context.Background()
	opts := Options{Symbol: true}

	if _, err := conv.Convert(ctx, "C1", opts); err != nil {
		t.Fatal(err)
	}
	if _, err := conv.Convert(ctx, "C1", opts); !errors.Is(err, apperr.ErrDuplicateComponent) {
		t.Fatalf("second convert err = %v, want ErrDuplicateComponent", err)
	}
	opts.Overwrite = true
	if _, err := conv.Convert(ctx, "C1", opts); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestConvertMeshPolicy(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		objErr  error
		stepErr error
		want    []string
		wantErr bool
	}{
		{"both", nil, nil, []string{"wrl", "step"}, false},
		{"obj fails", boom, nil, []string{"step"}, false},
		{"step fails", nil, boom, []string{"wrl"}, false},
		{"all fail", boom, boom, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{
				records: map[string]*models.ComponentRecord{"C7": resistor("C7", true)},
				objErr:  tt.objErr,
				stepErr: tt.stepErr,
			}
			conv, _, _ := setup(t, src)
			res, err := conv.Convert(context.Background(), "C7", Options{Model3D: true})
			if tt.wantErr {
				if !errors.Is(err, apperr.ErrRemote) || !errors.Is(err, boom) {
					t.Fatalf("err = %v, want ErrRemote wrapping cause", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, res.ModelFormats); diff != "" {
				t.Errorf("formats (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConvertWithoutModel(t *testing.T) {
	src := &fakeSource{records: map[string]*models.ComponentRecord{"C2": resistor("C2", false)}}
	conv, _, _ := setup(t, src)
	res, err := conv.Convert(context.Background(), "C2", full)
	if err != nil {
		t.Fatal(err)
	}
	if res.ModelFormats != nil {
		t.Errorf("formats = %v, want none", res.ModelFormats)
	}
}

func TestConvertRemoteError(t *testing.T) {
	conv, _, cat := setup(t, &fakeSource{})
	_, err := conv.Convert(context.Background(), "C404", full)
	if !errors.Is(err, apperr.ErrComponentNotFound) {
		t.Fatalf("err = %v, want ErrComponentNotFound", err)
	}
	if len(cat.rows) != 0 {
		t.Errorf("catalog updated on failure")
	}
}

func TestConvertGeometryError(t *testing.T) {
	rec := resistor("C3", false)
	rec.SymbolShapes = []string{"R~bad"}
	conv, _, _ := setup(t, &fakeSource{records: map[string]*models.ComponentRecord{"C3": rec}})
	if _, err := conv.Convert(context.Background(), "C3", Options{Symbol: true}); !errors.Is(err, apperr.ErrGeometry) {
		t.Fatalf("err = %v, want ErrGeometry", err)
	}
}
