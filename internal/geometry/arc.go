package geometry

import (
	"fmt"
	"math"

	"github.com/starford/lcsc2kicad/internal/apperr"
)

// CircularArc evaluates an arc given by center, radius and start/end angles
// in degrees. The mid point sits on the bisector of the two angles.
func CircularArc(center Point, r, startDeg, endDeg float64) (start, mid, end Point) {
	at := func(deg float64) Point {
		a := radians(deg)
		return Point{X: center.X + r*math.Cos(a), Y: center.Y + r*math.Sin(a)}
	}
	return at(startDeg), at((startDeg + endDeg) / 2), at(endDeg)
}

// EndpointArc is an elliptical arc in SVG endpoint parameterization.
type EndpointArc struct {
	Start    Point
	End      Point
	RX       float64
	RY       float64
	Rotation float64 // x-axis rotation, degrees
	LargeArc bool
	Sweep    bool
}

// ArcSolution is the center parameterization of an EndpointArc.
type ArcSolution struct {
	Center Point
	// RX and RY are the radii actually used, scaled up when the input radii
	// could not span the endpoints.
	RX       float64
	RY       float64
	Rotation float64
	// StartAngle and EndAngle are ellipse parameter angles in degrees, both
	// folded into [0, 360).
	StartAngle float64
	EndAngle   float64
	// Extent is the signed angular sweep in degrees: positive when Sweep is set.
	Extent   float64
	MidAngle float64
	Sweep    bool
}

// SolveEndpointArc converts endpoint parameters to center parameters
// following SVG 1.1 implementation notes F.6.5 and F.6.6.
//
// Radii that are too small are scaled up uniformly by the minimal factor that
// makes the arc feasible. A zero radius, or coincident endpoints, yields
// ErrArcGeometry.
func SolveEndpointArc(a EndpointArc) (ArcSolution, error) {
	rx, ry := math.Abs(a.RX), math.Abs(a.RY)
	if rx == 0 || ry == 0 {
		return ArcSolution{}, fmt.Errorf("%w: zero radius (rx=%g, ry=%g)", apperr.ErrArcGeometry, a.RX, a.RY)
	}
	if a.Start == a.End {
		return ArcSolution{}, fmt.Errorf("%w: coincident endpoints at (%g, %g)", apperr.ErrArcGeometry, a.Start.X, a.Start.Y)
	}

	phi := radians(a.Rotation)
	cosPhi, sinPhi := math.Cos(phi), math.Sin(phi)

	// Step 1: midpoint-relative start point in the ellipse frame.
	dx2 := (a.Start.X - a.End.X) / 2
	dy2 := (a.Start.Y - a.End.Y) / 2
	x1p := cosPhi*dx2 + sinPhi*dy2
	y1p := -sinPhi*dx2 + cosPhi*dy2

	// Radii correction.
	lambda := (x1p*x1p)/(rx*rx) + (y1p*y1p)/(ry*ry)
	if lambda > 1 {
		s := math.Sqrt(lambda)
		rx *= s
		ry *= s
	}

	// Step 2: center in the ellipse frame.
	rx2, ry2 := rx*rx, ry*ry
	num := rx2*ry2 - rx2*y1p*y1p - ry2*x1p*x1p
	den := rx2*y1p*y1p + ry2*x1p*x1p
	if num < 0 {
		num = 0
	}
	coef := math.Sqrt(num / den)
	if a.LargeArc == a.Sweep {
		coef = -coef
	}
	cxp := coef * rx * y1p / ry
	cyp := -coef * ry * x1p / rx

	// Step 3: back to source frame.
	cx := cosPhi*cxp - sinPhi*cyp + (a.Start.X+a.End.X)/2
	cy := sinPhi*cxp + cosPhi*cyp + (a.Start.Y+a.End.Y)/2

	// Step 4: angles.
	ux, uy := (x1p-cxp)/rx, (y1p-cyp)/ry
	vx, vy := (-x1p-cxp)/rx, (-y1p-cyp)/ry
	theta1 := math.Atan2(uy, ux)
	delta := math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
	if !a.Sweep && delta > 0 {
		delta -= 2 * math.Pi
	} else if a.Sweep && delta < 0 {
		delta += 2 * math.Pi
	}

	start := normalizeDeg(degrees(theta1))
	end := normalizeDeg(degrees(theta1 + delta))
	return ArcSolution{
		Center:     Point{X: cx, Y: cy},
		RX:         rx,
		RY:         ry,
		Rotation:   a.Rotation,
		StartAngle: start,
		EndAngle:   end,
		Extent:     degrees(delta),
		MidAngle:   midAngle(start, end, a.Sweep),
		Sweep:      a.Sweep,
	}, nil
}

// midAngle averages start and end and moves to the opposite side when the
// direction of end-start disagrees with the sweep flag. With both angles
// folded into [0, 360) this equals start + extent/2.
func midAngle(start, end float64, sweep bool) float64 {
	mid := (start + end) / 2
	diff := end - start
	if (sweep && diff < 0) || (!sweep && diff > 0) {
		mid += 180
	}
	return normalizeDeg(mid)
}

// PointAt evaluates the ellipse at parameter angle deg.
func (s ArcSolution) PointAt(deg float64) Point {
	t := radians(deg)
	phi := radians(s.Rotation)
	ex, ey := s.RX*math.Cos(t), s.RY*math.Sin(t)
	return Point{
		X: s.Center.X + ex*math.Cos(phi) - ey*math.Sin(phi),
		Y: s.Center.Y + ex*math.Sin(phi) + ey*math.Cos(phi),
	}
}

// StartPoint, MidPoint and EndPoint evaluate the arc at its defining angles.
func (s ArcSolution) StartPoint() Point { return s.PointAt(s.StartAngle) }

func (s ArcSolution) MidPoint() Point { return s.PointAt(s.MidAngle) }

func (s ArcSolution) EndPoint() Point { return s.PointAt(s.EndAngle) }

// Radius returns the mean radius, used where a circular arc is required.
func (s ArcSolution) Radius() float64 { return EllipseRadius(s.RX, s.RY) }
