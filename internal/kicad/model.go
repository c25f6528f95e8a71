// Package kicad assembles parsed EasyEDA primitives into KiCad symbol and
// footprint models and serializes them to the KiCad 6 s-expression formats.
package kicad

import "github.com/starford/lcsc2kicad/internal/geometry"

// Symbol is the target schematic symbol. Geometry is in symbol space:
// canvas units with Y growing upward. The exporter scales to millimetres.
type Symbol struct {
	Name         string
	Reference    string
	Value        string
	Footprint    string
	Datasheet    string
	Manufacturer string
	LCSCPart     string
	PartClass    string

	Pins       []Pin
	Rectangles []Rectangle
	Circles    []Circle
	Arcs       []Arc
	Polylines  []Polyline
}

// Pin electrical types.
const (
	PinTypeUnspecified   = "unspecified"
	PinTypeInput         = "input"
	PinTypeOutput        = "output"
	PinTypeBidirectional = "bidirectional"
	PinTypePowerIn       = "power_in"
	PinTypePassive       = "passive"
)

// Pin graphic styles.
const (
	PinStyleLine     = "line"
	PinStyleInverted = "inverted"
	PinStyleClock    = "clock"
)

type Pin struct {
	Number      string
	Name        string
	Type        string
	Style       string
	Pos         geometry.Point
	Orientation float64
	Length      float64
}

type Rectangle struct {
	Start, End  geometry.Point
	StrokeWidth float64
	Fill        bool
}

type Circle struct {
	Center      geometry.Point
	Radius      float64
	StrokeWidth float64
	Fill        bool
}

// Arc is a three-point arc.
type Arc struct {
	Start, Mid, End geometry.Point
	StrokeWidth     float64
	Fill            bool
}

type Polyline struct {
	Points      []geometry.Point
	StrokeWidth float64
	Fill        bool
}

// Footprint is the target PCB footprint. All geometry is in millimetres.
type Footprint struct {
	Name    string
	Attr    string
	Pads    []Pad
	Lines   []Line
	Circles []FootprintCircle
	Arcs    []FootprintArc
	Texts   []Text
	Model   *Model3D
}

// Pad types.
const (
	PadSMD           = "smd"
	PadThroughHole   = "thru_hole"
	PadNPThroughHole = "np_thru_hole"
)

// Pad is a footprint pad. Outline is only set for custom pads and is
// relative to Pos.
type Pad struct {
	Number   string
	Type     string
	Shape    string
	Pos      geometry.Point
	Rotation float64
	Width    float64
	Height   float64
	Layers   []string
	Drill    *Drill
	Outline  []geometry.Point
}

// Drill is a pad hole. A non-zero Width makes it an oval slot.
type Drill struct {
	Diameter float64
	Width    float64
}

// Oval reports whether the drill is a slot.
func (d Drill) Oval() bool { return d.Width > 0 }

type Line struct {
	Start, End geometry.Point
	Width      float64
	Layer      string
}

type FootprintCircle struct {
	Center geometry.Point
	Radius float64
	Width  float64
	Layer  string
}

type FootprintArc struct {
	Start, Mid, End geometry.Point
	Width           float64
	Layer           string
}

// Text is a free footprint text.
type Text struct {
	Text      string
	Pos       geometry.Point
	Rotation  float64
	Layer     string
	Size      float64
	Thickness float64
	Mirror    bool
	Hidden    bool
}

// Vec3 is an x/y/z triple used by 3D model placement.
type Vec3 struct{ X, Y, Z float64 }

// Model3D references a mesh file from a footprint.
type Model3D struct {
	Path   string
	Offset Vec3
	Scale  Vec3
	Rotate Vec3
}
