package shape

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/starford/lcsc2kicad/internal/apperr"
	"github.com/starford/lcsc2kicad/internal/geometry"
)

// ParseSymbol decodes symbol shape records. Unknown tags and malformed
// records are logged and skipped; only an empty result is an error.
func ParseSymbol(shapes []string, logger *slog.Logger) (*Symbol, error) {
	sym := &Symbol{}
	for i, raw := range shapes {
		err := sym.add(raw)
		switch {
		case err == nil:
		case errors.Is(err, ErrUnsupported):
			logger.Debug("symbol: skipping record", slog.Int("index", i), slog.String("error", err.Error()))
		default:
			sym.Dropped++
			logger.Warn("symbol: dropping record", slog.Int("index", i), slog.String("error", err.Error()))
		}
	}
	if sym.Len() == 0 {
		return nil, fmt.Errorf("%w: symbol has no usable primitives (%d records, %d dropped)",
			apperr.ErrGeometry, len(shapes), sym.Dropped)
	}
	return sym, nil
}

func (s *Symbol) add(raw string) error {
	if strings.HasPrefix(raw, "P~") {
		pin, err := parsePin(raw)
		if err != nil {
			return err
		}
		s.Pins = append(s.Pins, pin)
		return nil
	}

	r := newRecord(raw)
	switch r.tag() {
	case "R":
		rect := Rectangle{
			X:      r.num(1),
			Y:      r.num(2),
			Width:  r.num(5),
			Height: r.num(6),
			Style:  Style{StrokeWidth: r.optNum(8), Fill: r.fill(10)},
		}
		if r.err != nil {
			return r.err
		}
		s.Rectangles = append(s.Rectangles, rect)
	case "C":
		c := Circle{
			Center: geometry.Pt(r.num(1), r.num(2)),
			Radius: r.num(3),
			Style:  Style{StrokeWidth: r.optNum(5), Fill: r.fill(7)},
		}
		if r.err != nil {
			return r.err
		}
		s.Circles = append(s.Circles, c)
	case "E":
		e := Ellipse{
			Center: geometry.Pt(r.num(1), r.num(2)),
			RX:     r.num(3),
			RY:     r.num(4),
			Style:  Style{StrokeWidth: r.optNum(6), Fill: r.fill(8)},
		}
		if r.err != nil {
			return r.err
		}
		s.Ellipses = append(s.Ellipses, e)
	case "A":
		arc, err := parseSymbolArc(r)
		if err != nil {
			return err
		}
		s.Arcs = append(s.Arcs, arc)
	case "PL", "PG":
		pts := geometry.ParsePoints(r.str(1))
		if len(pts) < 2 {
			r.fail("need at least two points, got %d", len(pts))
			return r.err
		}
		pl := Polyline{Points: pts, Style: Style{StrokeWidth: r.optNum(3), Fill: r.fill(5)}}
		if r.tag() == "PL" {
			s.Polylines = append(s.Polylines, pl)
		} else {
			s.Polygons = append(s.Polygons, pl)
		}
	case "PT":
		d := strings.TrimSpace(r.str(1))
		if d == "" {
			r.fail("empty path")
			return r.err
		}
		s.Paths = append(s.Paths, Path{Data: d, Style: Style{StrokeWidth: r.optNum(3), Fill: r.fill(5)}})
	default:
		return errUnsupported(r.tag())
	}
	return nil
}

// parseSymbolArc accepts both the numeric center form and EasyEDA's SVG path
// form. The path form is solved into center form.
func parseSymbolArc(r *record) (Arc, error) {
	if d := strings.TrimSpace(r.str(1)); strings.HasPrefix(d, "M") {
		ep, err := geometry.ParseArcPath(d)
		if err != nil {
			return Arc{}, err
		}
		sol, err := geometry.SolveEndpointArc(ep)
		if err != nil {
			return Arc{}, err
		}
		return Arc{
			Center:     sol.Center,
			Radius:     sol.Radius(),
			StartAngle: sol.StartAngle,
			EndAngle:   sol.StartAngle + sol.Extent,
			Through:    []geometry.Point{ep.Start, sol.MidPoint(), ep.End},
			Style:      Style{StrokeWidth: r.optNum(4), Fill: r.fill(6)},
		}, nil
	}
	arc := Arc{
		Center:     geometry.Pt(r.num(1), r.num(2)),
		Radius:     r.num(3),
		StartAngle: r.num(4),
		EndAngle:   r.num(5),
		Style:      Style{StrokeWidth: r.optNum(7), Fill: r.fill(9)},
	}
	return arc, r.err
}

// parsePin decodes the "^^"-segmented pin record.
func parsePin(raw string) (Pin, error) {
	segs := strings.Split(raw, "^^")
	head := newRecord(segs[0])
	pin := Pin{
		ElectricType: head.optInt(2),
		Number:       head.str(3),
		Pos:          geometry.Pt(head.num(4), head.num(5)),
		Rotation:     head.optNum(6),
	}
	if head.err != nil {
		return Pin{}, head.err
	}
	seg := func(i int) *record {
		if i >= len(segs) {
			return newRecord("")
		}
		return newRecord(segs[i])
	}
	pin.Length = pinLength(seg(2).str(0))
	if name := seg(3).str(4); name != "" {
		pin.Name = name
	}
	if num := seg(4).str(4); num != "" {
		pin.Number = num
	}
	pin.Dot = seg(5).flag(0)
	pin.Clock = seg(6).flag(0)
	if pin.Number == "" {
		head.fail("pin without number")
		return Pin{}, head.err
	}
	return pin, nil
}

// pinLength measures the pin stroke path, e.g. "M 670 30 h -20".
func pinLength(d string) float64 {
	tokens := strings.Fields(strings.ReplaceAll(d, ",", " "))
	var start, cur geometry.Point
	read := func(i int) (float64, bool) {
		if i >= len(tokens) {
			return 0, false
		}
		v, err := strconv.ParseFloat(tokens[i], 64)
		return v, err == nil
	}
	for i := 0; i < len(tokens); i++ {
		switch tokens[i] {
		case "M", "L":
			x, okX := read(i + 1)
			y, okY := read(i + 2)
			if !okX || !okY {
				continue
			}
			cur = geometry.Pt(x, y)
			if tokens[i] == "M" {
				start = cur
			}
			i += 2
		case "h":
			if v, ok := read(i + 1); ok {
				cur.X += v
				i++
			}
		case "v":
			if v, ok := read(i + 1); ok {
				cur.Y += v
				i++
			}
		case "H":
			if v, ok := read(i + 1); ok {
				cur.X = v
				i++
			}
		case "V":
			if v, ok := read(i + 1); ok {
				cur.Y = v
				i++
			}
		}
	}
	return math.Round(start.Dist(cur)*1e6) / 1e6
}
