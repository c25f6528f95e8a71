// Package shape decodes EasyEDA shape records into typed primitives.
//
// A record is a "~"-separated string whose first field is a type tag. Pin
// records are further split into "^^"-separated segments. All geometry is in
// source canvas units; nothing here applies the bbox origin.
package shape

import "github.com/starford/lcsc2kicad/internal/geometry"

// Style carries the stroke and fill flags common to outline primitives.
type Style struct {
	StrokeWidth float64
	Fill        bool
}

// Pin electric types as encoded by EasyEDA.
const (
	PinUnspecified = iota
	PinInput
	PinOutput
	PinBidirectional
	PinPower
)

// Pin is a symbol pin. Pos is the electrical connection point.
type Pin struct {
	Number       string
	Name         string
	ElectricType int
	Pos          geometry.Point
	Rotation     float64
	Length       float64
	Dot          bool
	Clock        bool
}

// Rectangle is an axis-aligned box anchored at its top-left corner.
type Rectangle struct {
	X, Y          float64
	Width, Height float64
	Style
}

// Circle is a circle outline.
type Circle struct {
	Center geometry.Point
	Radius float64
	Style
}

// Ellipse is an axis-aligned ellipse.
type Ellipse struct {
	Center geometry.Point
	RX, RY float64
	Style
}

// Arc is a symbol arc in center form. EndAngle may exceed 360 or be lower
// than StartAngle; the arc runs from StartAngle to EndAngle.
type Arc struct {
	Center     geometry.Point
	Radius     float64
	StartAngle float64
	EndAngle   float64
	// Through holds start, mid and end for arcs given in path form. Center
	// and Radius only approximate an elliptical source; these points are
	// exact.
	Through []geometry.Point
	Style
}

// Polyline is an open or closed point sequence. Polygons use the same type.
type Polyline struct {
	Points []geometry.Point
	Style
}

// Path holds raw M/L/Z path data.
type Path struct {
	Data string
	Style
}

// Symbol is the parsed schematic symbol.
type Symbol struct {
	Pins       []Pin
	Rectangles []Rectangle
	Circles    []Circle
	Ellipses   []Ellipse
	Arcs       []Arc
	Polylines  []Polyline
	Polygons   []Polyline
	Paths      []Path

	// Dropped counts records that failed to parse.
	Dropped int
}

// Len returns the number of usable primitives.
func (s *Symbol) Len() int {
	return len(s.Pins) + len(s.Rectangles) + len(s.Circles) + len(s.Ellipses) +
		len(s.Arcs) + len(s.Polylines) + len(s.Polygons) + len(s.Paths)
}

// Pad shapes.
const (
	PadEllipse = "ELLIPSE"
	PadRect    = "RECT"
	PadOval    = "OVAL"
	PadPolygon = "POLYGON"
)

// Pad is a footprint pad. HoleRadius > 0 marks a through-hole pad.
type Pad struct {
	Shape      string
	Center     geometry.Point
	Width      float64
	Height     float64
	LayerID    int
	Number     string
	HoleRadius float64
	HoleLength float64
	Points     []geometry.Point
	Rotation   float64
	Plated     bool
}

// ThroughHole reports whether the pad has a drill.
func (p Pad) ThroughHole() bool { return p.HoleRadius > 0 }

// Track is a silkscreen/outline polyline.
type Track struct {
	StrokeWidth float64
	LayerID     int
	Points      []geometry.Point
}

// FootprintCircle is a footprint circle outline.
type FootprintCircle struct {
	Center      geometry.Point
	Radius      float64
	StrokeWidth float64
	LayerID     int
}

// FootprintArc is an arc in SVG endpoint form.
type FootprintArc struct {
	StrokeWidth float64
	LayerID     int
	Arc         geometry.EndpointArc
}

// FootprintRect is a rectangle outline drawn on a layer.
type FootprintRect struct {
	X, Y          float64
	Width, Height float64
	StrokeWidth   float64
	LayerID       int
}

// Text is a footprint text item.
type Text struct {
	Type        string
	Pos         geometry.Point
	StrokeWidth float64
	Rotation    float64
	Mirror      bool
	LayerID     int
	FontSize    float64
	Text        string
	Shown       bool
}

// Hole is a non-plated drill.
type Hole struct {
	Center geometry.Point
	Radius float64
}

// Via is a plated drill. Diameter is the copper size, Radius the hole radius.
type Via struct {
	Center   geometry.Point
	Diameter float64
	Radius   float64
}

// Footprint is the parsed PCB footprint.
type Footprint struct {
	Pads       []Pad
	Tracks     []Track
	Circles    []FootprintCircle
	Arcs       []FootprintArc
	Rectangles []FootprintRect
	Texts      []Text
	Holes      []Hole
	Vias       []Via

	Dropped int
}

// Len returns the number of usable primitives.
func (f *Footprint) Len() int {
	return len(f.Pads) + len(f.Tracks) + len(f.Circles) + len(f.Arcs) +
		len(f.Rectangles) + len(f.Texts) + len(f.Holes) + len(f.Vias)
}
