package geometry

// Space selects the axis and unit convention of a Normalizer.
type Space int

const (
	// SymbolSpace inverts Y (EasyEDA grows downward, KiCad symbols grow
	// upward) and keeps canvas units.
	SymbolSpace Space = iota
	// FootprintSpace keeps the Y direction and converts to millimetres.
	FootprintSpace
)

func (s Space) String() string {
	if s == FootprintSpace {
		return "footprint"
	}
	return "symbol"
}

// Normalizer maps source coordinates to target space relative to a bbox origin.
// It is a pure value: the same input always yields the same output.
type Normalizer struct {
	Space  Space
	Origin Point
}

// NewSymbolNormalizer returns a symbol-space normalizer anchored at origin.
func NewSymbolNormalizer(origin Point) Normalizer {
	return Normalizer{Space: SymbolSpace, Origin: origin}
}

// NewFootprintNormalizer returns a footprint-space normalizer anchored at origin.
func NewFootprintNormalizer(origin Point) Normalizer {
	return Normalizer{Space: FootprintSpace, Origin: origin}
}

// Translate moves p so the bbox origin sits at (0,0). With a zero origin it
// returns p unchanged.
func (n Normalizer) Translate(p Point) Point {
	return Point{X: p.X - n.Origin.X, Y: p.Y - n.Origin.Y}
}

// Point maps a source point into target space.
//
//	symbol:    (x - bx, by - y)
//	footprint: ((x - bx) * k, (y - by) * k)
func (n Normalizer) Point(p Point) Point {
	t := n.Translate(p)
	if n.Space == FootprintSpace {
		return Point{X: ToMM(t.X), Y: ToMM(t.Y)}
	}
	return Point{X: t.X, Y: -t.Y}
}

// XY is Point for separate coordinates.
func (n Normalizer) XY(x, y float64) Point { return n.Point(Point{X: x, Y: y}) }

// Points maps every element of ps.
func (n Normalizer) Points(ps []Point) []Point {
	out := make([]Point, len(ps))
	for i, p := range ps {
		out[i] = n.Point(p)
	}
	return out
}

// Length scales a distance (radius, width, stroke) into target units.
func (n Normalizer) Length(v float64) float64 {
	if n.Space == FootprintSpace {
		return ToMM(v)
	}
	return v
}

// Rect maps the rectangle at (x, y) with size (w, h) to an opposite-corner
// pair. Each corner is transformed independently.
func (n Normalizer) Rect(x, y, w, h float64) (Point, Point) {
	return n.XY(x, y), n.XY(x+w, y+h)
}

// EllipseRadius is the radius of the circle used in place of an ellipse.
// Unequal radii are averaged; KiCad has no ellipse primitive.
func EllipseRadius(rx, ry float64) float64 {
	if rx == ry {
		return rx
	}
	return (rx + ry) / 2
}
