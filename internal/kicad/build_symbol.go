package kicad

import (
	"math"

	"github.com/starford/lcsc2kicad/internal/geometry"
	"github.com/starford/lcsc2kicad/internal/models"
	"github.com/starford/lcsc2kicad/internal/shape"
)

// BuildSymbol assembles the target symbol for rec. The first rectangle is
// always filled since EasyEDA draws the body outline first.
func BuildSymbol(rec *models.ComponentRecord, sym *shape.Symbol, libName string) *Symbol {
	n := geometry.NewSymbolNormalizer(rec.SymbolOrigin)
	name := ComponentName(rec.Title, rec.ID)
	out := &Symbol{
		Name:         name,
		Reference:    rec.Prefix,
		Value:        rec.Title,
		Footprint:    libName + ":" + name,
		Datasheet:    rec.Datasheet,
		Manufacturer: rec.Manufacturer,
		LCSCPart:     rec.ID,
		PartClass:    rec.PartClass,
	}

	for _, p := range sym.Pins {
		out.Pins = append(out.Pins, Pin{
			Number:      p.Number,
			Name:        p.Name,
			Type:        PinType(p.ElectricType),
			Style:       pinStyle(p),
			Pos:         n.Point(p.Pos),
			Orientation: math.Mod(p.Rotation+180, 360),
			Length:      p.Length,
		})
	}

	for i, r := range sym.Rectangles {
		start, end := n.Rect(r.X, r.Y, r.Width, r.Height)
		out.Rectangles = append(out.Rectangles, Rectangle{
			Start:       start,
			End:         end,
			StrokeWidth: r.StrokeWidth,
			Fill:        i == 0 || r.Fill,
		})
	}

	for _, c := range sym.Circles {
		out.Circles = append(out.Circles, Circle{
			Center: n.Point(c.Center), Radius: c.Radius, StrokeWidth: c.StrokeWidth, Fill: c.Fill,
		})
	}
	for _, e := range sym.Ellipses {
		out.Circles = append(out.Circles, Circle{
			Center:      n.Point(e.Center),
			Radius:      geometry.EllipseRadius(e.RX, e.RY),
			StrokeWidth: e.StrokeWidth,
			Fill:        e.Fill,
		})
	}

	for _, a := range sym.Arcs {
		// Evaluated in source space, then each point is mapped.
		s, m, e := geometry.CircularArc(a.Center, a.Radius, a.StartAngle, a.EndAngle)
		if len(a.Through) == 3 {
			s, m, e = a.Through[0], a.Through[1], a.Through[2]
		}
		out.Arcs = append(out.Arcs, Arc{
			Start: n.Point(s), Mid: n.Point(m), End: n.Point(e),
			StrokeWidth: a.StrokeWidth, Fill: a.Fill,
		})
	}

	for _, pl := range sym.Polylines {
		out.Polylines = append(out.Polylines, Polyline{
			Points: n.Points(pl.Points), StrokeWidth: pl.StrokeWidth,
		})
	}
	for _, pg := range sym.Polygons {
		pts := n.Points(pg.Points)
		if pts[0] != pts[len(pts)-1] {
			pts = append(pts, pts[0])
		}
		out.Polylines = append(out.Polylines, Polyline{Points: pts, StrokeWidth: pg.StrokeWidth, Fill: pg.Fill})
	}
	for _, p := range sym.Paths {
		pts := geometry.TokenizePath(p.Data, n.Point)
		if len(pts) < 2 {
			continue
		}
		out.Polylines = append(out.Polylines, Polyline{Points: pts, StrokeWidth: p.StrokeWidth, Fill: p.Fill})
	}
	return out
}

func pinStyle(p shape.Pin) string {
	switch {
	case p.Dot:
		return PinStyleInverted
	case p.Clock:
		return PinStyleClock
	default:
		return PinStyleLine
	}
}

