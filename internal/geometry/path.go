package geometry

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/starford/lcsc2kicad/internal/apperr"
)

// TokenizePath interprets the M/L/Z subset of SVG path data. M and L take one
// coordinate pair written either as "x,y" or as two tokens; Z and z repeat the
// first point. Anything else is ignored. Every point is passed through
// mapPoint; a nil mapPoint keeps source coordinates.
//
// Callers should discard results with fewer than two points.
func TokenizePath(d string, mapPoint func(Point) Point) []Point {
	if mapPoint == nil {
		mapPoint = func(p Point) Point { return p }
	}
	tokens := strings.Fields(d)
	var points []Point
	for i := 0; i < len(tokens); i++ {
		switch tokens[i] {
		case "M", "L":
			if i+1 >= len(tokens) {
				continue
			}
			i++
			if xs, ys, ok := strings.Cut(tokens[i], ","); ok {
				x, errX := strconv.ParseFloat(xs, 64)
				y, errY := strconv.ParseFloat(ys, 64)
				if errX == nil && errY == nil {
					points = append(points, mapPoint(Point{X: x, Y: y}))
				}
				continue
			}
			if i+1 >= len(tokens) {
				continue
			}
			x, errX := strconv.ParseFloat(tokens[i], 64)
			y, errY := strconv.ParseFloat(tokens[i+1], 64)
			if errX == nil && errY == nil {
				points = append(points, mapPoint(Point{X: x, Y: y}))
				i++
			}
		case "Z", "z":
			if len(points) > 0 {
				points = append(points, points[0])
			}
		}
	}
	return points
}

// ParseArcPath reads "M x1 y1 A rx ry rotation large sweep x2 y2". Commas and
// command letters glued to numbers are accepted. Any other shape yields
// ErrMalformedRecord.
func ParseArcPath(d string) (EndpointArc, error) {
	tokens := splitPathTokens(d)
	if len(tokens) < 11 || tokens[0] != "M" || tokens[3] != "A" {
		return EndpointArc{}, fmt.Errorf("%w: arc path %q", apperr.ErrMalformedRecord, d)
	}
	nums := make([]float64, 0, 9)
	for _, idx := range []int{1, 2, 4, 5, 6, 7, 8, 9, 10} {
		v, err := strconv.ParseFloat(tokens[idx], 64)
		if err != nil {
			return EndpointArc{}, fmt.Errorf("%w: arc path %q: %w", apperr.ErrMalformedRecord, d, err)
		}
		nums = append(nums, v)
	}
	return EndpointArc{
		Start:    Point{X: nums[0], Y: nums[1]},
		RX:       nums[2],
		RY:       nums[3],
		Rotation: nums[4],
		LargeArc: nums[5] != 0,
		Sweep:    nums[6] != 0,
		End:      Point{X: nums[7], Y: nums[8]},
	}, nil
}

// splitPathTokens separates command letters from numbers and treats commas as
// whitespace: "M1,2A3 3" -> [M 1 2 A 3 3].
func splitPathTokens(d string) []string {
	var b strings.Builder
	for _, r := range d {
		switch {
		case r == ',':
			b.WriteByte(' ')
		case unicode.IsLetter(r) && r != 'e' && r != 'E':
			b.WriteByte(' ')
			b.WriteRune(r)
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Fields(b.String())
}
