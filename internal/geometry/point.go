// Package geometry holds the coordinate transforms and curve math used to move
// EasyEDA shapes into KiCad space.
package geometry

import (
	"math"
	"strconv"
	"strings"
)

// MMPerUnit is the size of one EasyEDA canvas unit (10 mil) in millimetres.
const MMPerUnit = 0.254

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// ToMM converts canvas units to millimetres.
func ToMM(v float64) float64 { return v * MMPerUnit }

// ParseNumbers splits s on whitespace and commas and parses every field as
// float64. Fields that do not parse are skipped.
func ParseNumbers(s string) []float64 {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n'
	})
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// ParsePoints reads "x1 y1 x2 y2 ..." into points. A trailing odd value is dropped.
func ParsePoints(s string) []Point {
	nums := ParseNumbers(s)
	out := make([]Point, 0, len(nums)/2)
	for i := 0; i+1 < len(nums); i += 2 {
		out = append(out, Point{X: nums[i], Y: nums[i+1]})
	}
	return out
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// normalizeDeg folds an angle into [0, 360).
func normalizeDeg(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
