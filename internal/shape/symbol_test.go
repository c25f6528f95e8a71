package shape

import (
	"errors"
	"log/slog"
	"math"
	"testing"

	"github.com/starford/lcsc2kicad/internal/apperr"
	"github.com/starford/lcsc2kicad/internal/geometry"
)

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

const pinRecord = "P~show~0~1~670~30~180~gge1~0^^670~30^^M 670 30 h -20~#880000^^1~648~33~0~VCC~end~~~#0000FF^^1~655~29~0~1~start~~~#0000FF^^0~653~30^^0~M 650 27 L 647 30 L 650 33"

func TestParseSymbolKeepsRectangleFill(t *testing.T) {
	shapes := []string{
		"R~10~20~~~30~40~#880000~1~0~#FFFFFF~gge1~0",
		"R~0~0~~~5~5~#880000~1~0~none~gge2~0",
		"R~1~1~~~2~2~#880000~1~0~~gge3~0",
	}
	sym, err := ParseSymbol(shapes, discard())
	if err != nil {
		t.Fatal(err)
	}
	if len(sym.Rectangles) != 3 {
		t.Fatalf("rectangles = %d, want 3", len(sym.Rectangles))
	}
	want := []bool{true, false, false}
	for i, r := range sym.Rectangles {
		if r.Fill != want[i] {
			t.Errorf("rect %d fill = %v, want %v", i, r.Fill, want[i])
		}
	}
	if got := sym.Rectangles[0]; got.X != 10 || got.Y != 20 || got.Width != 30 || got.Height != 40 {
		t.Errorf("rect 0 = %+v", got)
	}
}

func TestParseSymbolDropsMalformed(t *testing.T) {
	shapes := []string{
		"R~abc~20~~~30~40~#880000~1~0~none~gge1~0",
		"C~5~5~2~#880000~1~0~none~gge2",
		"SVGNODE~{}",
		"ZZ~1~2",
	}
	sym, err := ParseSymbol(shapes, discard())
	if err != nil {
		t.Fatal(err)
	}
	if sym.Dropped != 1 {
		t.Errorf("dropped = %d, want 1", sym.Dropped)
	}
	if len(sym.Circles) != 1 || sym.Circles[0].Radius != 2 {
		t.Errorf("circles = %+v", sym.Circles)
	}
}

func TestParseSymbolEmpty(t *testing.T) {
	_, err := ParseSymbol([]string{"R~x~y", "UNKNOWN~1"}, discard())
	if !errors.Is(err, apperr.ErrGeometry) {
		t.Fatalf("err = %v, want ErrGeometry", err)
	}
	_, err = ParseSymbol(nil, discard())
	if !errors.Is(err, apperr.ErrGeometry) {
		t.Fatalf("empty input err = %v, want ErrGeometry", err)
	}
}

func TestParseSymbolPin(t *testing.T) {
	sym, err := ParseSymbol([]string{pinRecord}, discard())
	if err != nil {
		t.Fatal(err)
	}
	if len(sym.Pins) != 1 {
		t.Fatalf("pins = %d", len(sym.Pins))
	}
	p := sym.Pins[0]
	if p.Number != "1" || p.Name != "VCC" {
		t.Errorf("pin = %q/%q", p.Number, p.Name)
	}
	if p.Pos.X != 670 || p.Pos.Y != 30 || p.Rotation != 180 {
		t.Errorf("pin pos = %+v rot %v", p.Pos, p.Rotation)
	}
	if p.Length != 20 {
		t.Errorf("length = %v, want 20", p.Length)
	}
	if p.Dot || p.Clock {
		t.Errorf("dot/clock = %v/%v", p.Dot, p.Clock)
	}
	if p.ElectricType != PinUnspecified {
		t.Errorf("electric = %d", p.ElectricType)
	}
}

func TestParseSymbolArcForms(t *testing.T) {
	shapes := []string{
		"A~0~0~10~0~90~#880000~1~0~none~gge1",
		"A~M 0 0 A 5 5 0 0 1 10 0~~#880000~1~0~none~gge2",
	}
	sym, err := ParseSymbol(shapes, discard())
	if err != nil {
		t.Fatal(err)
	}
	if len(sym.Arcs) != 2 {
		t.Fatalf("arcs = %d, want 2", len(sym.Arcs))
	}
	if a := sym.Arcs[0]; a.Radius != 10 || a.EndAngle != 90 {
		t.Errorf("numeric arc = %+v", a)
	}
	a := sym.Arcs[1]
	if !near(a.Center.X, 5) || !near(a.Center.Y, 0) || !near(a.Radius, 5) {
		t.Errorf("path arc = %+v", a)
	}
	if !near(a.EndAngle-a.StartAngle, 180) {
		t.Errorf("extent = %v, want 180", a.EndAngle-a.StartAngle)
	}
}

func TestParseSymbolEllipticalArcKeepsEndpoints(t *testing.T) {
	sym, err := ParseSymbol([]string{"A~M 0 0 A 10 5 0 0 1 20 0~~#880000~1~0~none~gge3"}, discard())
	if err != nil {
		t.Fatal(err)
	}
	if len(sym.Arcs) != 1 {
		t.Fatalf("arcs = %d, want 1", len(sym.Arcs))
	}
	pts := sym.Arcs[0].Through
	if len(pts) != 3 {
		t.Fatalf("through = %v, want 3 points", pts)
	}
	if pts[0] != geometry.Pt(0, 0) || pts[2] != geometry.Pt(20, 0) {
		t.Errorf("endpoints = %v, %v", pts[0], pts[2])
	}
	if !near(pts[1].X, 10) || !near(math.Abs(pts[1].Y), 5) {
		t.Errorf("mid = %v, want on the ellipse apex", pts[1])
	}
}

func TestPinLength(t *testing.T) {
	tests := []struct {
		d    string
		want float64
	}{
		{"M 670 30 h -20", 20},
		{"M 0 0 v 10", 10},
		{"M 0 0 L 3 4", 5},
		{"M 5 5 H 15", 10},
		{"", 0},
	}
	for _, tt := range tests {
		if got := pinLength(tt.d); got != tt.want {
			t.Errorf("pinLength(%q) = %v, want %v", tt.d, got, tt.want)
		}
	}
}

func near(a, b float64) bool {
	d := a - b
	return d < 1e-6 && d > -1e-6
}
