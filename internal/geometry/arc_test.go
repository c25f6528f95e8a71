package geometry

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/starford/lcsc2kicad/internal/apperr"
)

const eps = 1e-6

func near(a, b Point, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

func angleDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	return math.Min(d, 360-d)
}

func TestSolveEndpointArc_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 2000; i++ {
		in := EndpointArc{
			Start:    Pt(rng.Float64()*200-100, rng.Float64()*200-100),
			End:      Pt(rng.Float64()*200-100, rng.Float64()*200-100),
			RX:       0.5 + rng.Float64()*80,
			RY:       0.5 + rng.Float64()*80,
			Rotation: rng.Float64()*720 - 360,
			LargeArc: i%2 == 0,
			Sweep:    (i/2)%2 == 0,
		}
		sol, err := SolveEndpointArc(in)
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		tol := eps * math.Max(1, math.Max(sol.RX, sol.RY))
		if got := sol.StartPoint(); !near(got, in.Start, tol) {
			t.Fatalf("case %d: start %v, want %v", i, got, in.Start)
		}
		if got := sol.EndPoint(); !near(got, in.End, tol) {
			t.Fatalf("case %d: end %v, want %v", i, got, in.End)
		}
		if in.Sweep != (sol.Extent > 0) {
			t.Fatalf("case %d: extent %g disagrees with sweep=%v", i, sol.Extent, in.Sweep)
		}
		if want := normalizeDeg(sol.StartAngle + sol.Extent/2); angleDiff(sol.MidAngle, want) > 1e-6 {
			t.Fatalf("case %d: mid angle %g, want %g", i, sol.MidAngle, want)
		}
		scaled := sol.RX > math.Abs(in.RX)*(1+1e-9)
		if !scaled && in.LargeArc != (math.Abs(sol.Extent) > 180) {
			t.Fatalf("case %d: extent %g disagrees with large=%v", i, sol.Extent, in.LargeArc)
		}
	}
}

func TestSolveEndpointArc_HalfCircle(t *testing.T) {
	sol, err := SolveEndpointArc(EndpointArc{
		Start: Pt(0, 0),
		End:   Pt(10, 0),
		RX:    5,
		RY:    5,
		Sweep: true,
	})
	if err != nil {
		t.Fatalf("SolveEndpointArc: %v", err)
	}
	if !near(sol.Center, Pt(5, 0), eps) {
		t.Errorf("center = %v, want (5,0)", sol.Center)
	}
	if math.Abs(sol.Extent-180) > eps {
		t.Errorf("extent = %g, want 180", sol.Extent)
	}
	// Sweep=1 runs through increasing angles: 180 -> 270 -> 360.
	if !near(sol.MidPoint(), Pt(5, -5), eps) {
		t.Errorf("mid = %v, want (5,-5)", sol.MidPoint())
	}
}

func TestSolveEndpointArc_ScalesSmallRadii(t *testing.T) {
	sol, err := SolveEndpointArc(EndpointArc{
		Start: Pt(0, 0),
		End:   Pt(10, 0),
		RX:    1,
		RY:    1,
	})
	if err != nil {
		t.Fatalf("SolveEndpointArc: %v", err)
	}
	if math.Abs(sol.RX-5) > eps || math.Abs(sol.RY-5) > eps {
		t.Errorf("radii = (%g, %g), want (5, 5)", sol.RX, sol.RY)
	}
	if !near(sol.Center, Pt(5, 0), eps) {
		t.Errorf("center = %v, want (5,0)", sol.Center)
	}
}

func TestSolveEndpointArc_ZeroRadius(t *testing.T) {
	cases := []EndpointArc{
		{Start: Pt(0, 0), End: Pt(1, 1), RX: 0, RY: 3},
		{Start: Pt(0, 0), End: Pt(1, 1), RX: 3, RY: 0},
		{Start: Pt(2, 2), End: Pt(2, 2), RX: 3, RY: 3},
	}
	for _, c := range cases {
		if _, err := SolveEndpointArc(c); !errors.Is(err, apperr.ErrArcGeometry) {
			t.Errorf("SolveEndpointArc(%+v) err = %v, want ErrArcGeometry", c, err)
		}
	}
}

func TestMidAngle(t *testing.T) {
	cases := []struct {
		start, end float64
		sweep      bool
		want       float64
	}{
		{10, 90, true, 50},
		{10, 90, false, 230},
		{350, 10, true, 0},
		{350, 10, false, 180},
		{90, 10, false, 50},
	}
	for _, c := range cases {
		if got := midAngle(c.start, c.end, c.sweep); angleDiff(got, c.want) > eps {
			t.Errorf("midAngle(%g, %g, %v) = %g, want %g", c.start, c.end, c.sweep, got, c.want)
		}
	}
}

func TestCircularArc(t *testing.T) {
	start, mid, end := CircularArc(Pt(0, 0), 10, 0, 90)
	if !near(start, Pt(10, 0), eps) {
		t.Errorf("start = %v", start)
	}
	if !near(end, Pt(0, 10), eps) {
		t.Errorf("end = %v", end)
	}
	h := 10 / math.Sqrt2
	if !near(mid, Pt(h, h), eps) {
		t.Errorf("mid = %v", mid)
	}
}
