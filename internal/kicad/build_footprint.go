package kicad

import (
	"log/slog"
	"math"

	"github.com/starford/lcsc2kicad/internal/geometry"
	"github.com/starford/lcsc2kicad/internal/models"
	"github.com/starford/lcsc2kicad/internal/shape"
)

const (
	minSize   = 0.01
	minStroke = 0.01
	// polyPadSize is the nominal anchor size of a custom pad.
	polyPadSize      = 0.01
	polyOutlineWidth = 0.1
)

// FootprintOptions controls naming and the 3D model reference.
type FootprintOptions struct {
	LibName         string
	ProjectRelative bool
	GlobalEnv       string
	// WithModel embeds the 3D model reference when the record has one.
	WithModel bool
}

// BuildFootprint assembles the target footprint for rec. Arcs that cannot be
// solved are skipped with a warning.
func BuildFootprint(rec *models.ComponentRecord, fp *shape.Footprint, opts FootprintOptions, logger *slog.Logger) *Footprint {
	n := geometry.NewFootprintNormalizer(rec.FootprintOrigin)
	out := &Footprint{Name: ComponentName(rec.Title, rec.ID), Attr: "smd"}

	for _, p := range fp.Pads {
		pad := buildPad(n, p)
		if pad.Type == PadThroughHole {
			out.Attr = "through_hole"
		}
		out.Pads = append(out.Pads, pad)
	}

	for _, h := range fp.Holes {
		d := n.Length(h.Radius * 2)
		out.Pads = append(out.Pads, Pad{
			Type:   PadNPThroughHole,
			Shape:  "circle",
			Pos:    n.Point(h.Center),
			Width:  d,
			Height: d,
			Layers: []string{"*.Cu", "*.Mask"},
			Drill:  &Drill{Diameter: d},
		})
	}
	for _, v := range fp.Vias {
		size := n.Length(v.Diameter)
		out.Pads = append(out.Pads, Pad{
			Type:   PadThroughHole,
			Shape:  "circle",
			Pos:    n.Point(v.Center),
			Width:  size,
			Height: size,
			Layers: []string{"*.Cu", "*.Mask"},
			Drill:  &Drill{Diameter: n.Length(v.Radius * 2)},
		})
	}

	for _, t := range fp.Tracks {
		pts := n.Points(t.Points)
		w := stroke(n, t.StrokeWidth)
		layer := Layer(t.LayerID)
		for i := 1; i < len(pts); i++ {
			out.Lines = append(out.Lines, Line{Start: pts[i-1], End: pts[i], Width: w, Layer: layer})
		}
	}

	for _, r := range fp.Rectangles {
		a, c := n.Rect(r.X, r.Y, r.Width, r.Height)
		b := geometry.Pt(c.X, a.Y)
		d := geometry.Pt(a.X, c.Y)
		w := stroke(n, r.StrokeWidth)
		layer := Layer(r.LayerID)
		for _, seg := range [][2]geometry.Point{{a, b}, {b, c}, {c, d}, {d, a}} {
			out.Lines = append(out.Lines, Line{Start: seg[0], End: seg[1], Width: w, Layer: layer})
		}
	}

	for _, c := range fp.Circles {
		out.Circles = append(out.Circles, FootprintCircle{
			Center: n.Point(c.Center),
			Radius: n.Length(c.Radius),
			Width:  stroke(n, c.StrokeWidth),
			Layer:  Layer(c.LayerID),
		})
	}

	for _, a := range fp.Arcs {
		sol, err := geometry.SolveEndpointArc(a.Arc)
		if err != nil {
			logger.Warn("footprint: skipping arc", slog.String("component", rec.ID), slog.String("error", err.Error()))
			continue
		}
		out.Arcs = append(out.Arcs, FootprintArc{
			Start: n.Point(a.Arc.Start),
			Mid:   n.Point(sol.MidPoint()),
			End:   n.Point(a.Arc.End),
			Width: stroke(n, a.StrokeWidth),
			Layer: Layer(a.LayerID),
		})
	}

	for _, t := range fp.Texts {
		out.Texts = append(out.Texts, Text{
			Text:      t.Text,
			Pos:       n.Point(t.Pos),
			Rotation:  angle(t.Rotation),
			Layer:     Layer(t.LayerID),
			Size:      math.Max(n.Length(t.FontSize), minSize),
			Thickness: stroke(n, t.StrokeWidth),
			Mirror:    t.Mirror,
			Hidden:    !t.Shown,
		})
	}

	if opts.WithModel && rec.Model3D != nil {
		modelName := ComponentName(rec.Model3D.Title, rec.ID)
		out.Model = &Model3D{
			Path:  ModelPath(opts.LibName, modelName, opts.ProjectRelative, opts.GlobalEnv),
			Scale: Vec3{1, 1, 1},
		}
	}
	return out
}

func buildPad(n geometry.Normalizer, p shape.Pad) Pad {
	pos := n.Point(p.Center)
	pad := Pad{
		Number:   p.Number,
		Type:     PadSMD,
		Shape:    PadShape(p.Shape),
		Pos:      pos,
		Rotation: angle(p.Rotation),
		Width:    math.Max(n.Length(p.Width), minSize),
		Height:   math.Max(n.Length(p.Height), minSize),
		Layers:   PadLayers(p.LayerID, p.ThroughHole()),
	}
	if p.ThroughHole() {
		pad.Type = PadThroughHole
		if !p.Plated {
			pad.Type = PadNPThroughHole
		}
		pad.Drill = padDrill(n, p)
	}

	if p.Shape == shape.PadPolygon {
		if len(p.Points) < 2 {
			pad.Shape = "rect"
			return pad
		}
		pad.Width, pad.Height, pad.Rotation = polyPadSize, polyPadSize, 0
		for _, pt := range n.Points(p.Points) {
			pad.Outline = append(pad.Outline, pt.Sub(pos))
		}
	}
	return pad
}

// padDrill picks the slot orientation from the clearance left along each
// axis once the hole's longest extent is removed.
func padDrill(n geometry.Normalizer, p shape.Pad) *Drill {
	d := n.Length(p.HoleRadius * 2)
	if p.HoleLength <= 0 {
		return &Drill{Diameter: d}
	}
	l := n.Length(p.HoleLength)
	longest := math.Max(d, l)
	pos0 := n.Length(p.Height) - longest
	pos90 := n.Length(p.Width) - longest
	if pos0 > pos90 {
		return &Drill{Diameter: d, Width: l}
	}
	return &Drill{Diameter: l, Width: d}
}

func stroke(n geometry.Normalizer, w float64) float64 {
	return math.Max(n.Length(w), minStroke)
}

// angle folds rotations above 180 degrees to their negative equivalent.
func angle(r float64) float64 {
	if r > 180 {
		return -(360 - r)
	}
	return r
}
