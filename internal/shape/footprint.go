package shape

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/lcsc2kicad/internal/apperr"
	"github.com/starford/lcsc2kicad/internal/geometry"
)

// ErrUnsupported marks a record whose tag this parser does not handle.
var ErrUnsupported = errors.New("unsupported shape")

func errUnsupported(tag string) error {
	return fmt.Errorf("%w: %q", ErrUnsupported, tag)
}

// ParseFootprint decodes footprint shape records with the same tolerance
// rules as ParseSymbol.
func ParseFootprint(shapes []string, logger *slog.Logger) (*Footprint, error) {
	fp := &Footprint{}
	for i, raw := range shapes {
		err := fp.add(raw)
		switch {
		case err == nil:
		case errors.Is(err, ErrUnsupported):
			logger.Debug("footprint: skipping record", slog.Int("index", i), slog.String("error", err.Error()))
		default:
			fp.Dropped++
			logger.Warn("footprint: dropping record", slog.Int("index", i), slog.String("error", err.Error()))
		}
	}
	if fp.Len() == 0 {
		return nil, fmt.Errorf("%w: footprint has no usable primitives (%d records, %d dropped)",
			apperr.ErrGeometry, len(shapes), fp.Dropped)
	}
	return fp, nil
}

func (f *Footprint) add(raw string) error {
	r := newRecord(raw)
	switch r.tag() {
	case "PAD":
		pad := Pad{
			Shape:      strings.ToUpper(strings.TrimSpace(r.str(1))),
			Center:     geometry.Pt(r.num(2), r.num(3)),
			Width:      r.num(4),
			Height:     r.num(5),
			LayerID:    r.optInt(6),
			Number:     r.str(8),
			HoleRadius: r.optNum(9),
			Points:     geometry.ParsePoints(r.str(10)),
			Rotation:   r.optNum(11),
			HoleLength: r.optNum(13),
			Plated:     r.str(15) != "N",
		}
		if r.err != nil {
			return r.err
		}
		f.Pads = append(f.Pads, pad)
	case "TRACK":
		pts := geometry.ParsePoints(r.str(4))
		if len(pts) < 2 {
			r.fail("need at least two points, got %d", len(pts))
			return r.err
		}
		f.Tracks = append(f.Tracks, Track{StrokeWidth: r.optNum(1), LayerID: r.optInt(2), Points: pts})
	case "CIRCLE":
		c := FootprintCircle{
			Center:      geometry.Pt(r.num(1), r.num(2)),
			Radius:      r.num(3),
			StrokeWidth: r.optNum(4),
			LayerID:     r.optInt(5),
		}
		if r.err != nil {
			return r.err
		}
		f.Circles = append(f.Circles, c)
	case "ARC":
		ep, err := geometry.ParseArcPath(r.str(4))
		if err != nil {
			return err
		}
		f.Arcs = append(f.Arcs, FootprintArc{StrokeWidth: r.optNum(1), LayerID: r.optInt(2), Arc: ep})
	case "RECT":
		rect := FootprintRect{
			X:           r.num(1),
			Y:           r.num(2),
			Width:       r.num(3),
			Height:      r.num(4),
			StrokeWidth: r.optNum(5),
			LayerID:     r.optInt(7),
		}
		if r.err != nil {
			return r.err
		}
		f.Rectangles = append(f.Rectangles, rect)
	case "TEXT":
		t := Text{
			Type:        r.str(1),
			Pos:         geometry.Pt(r.num(2), r.num(3)),
			StrokeWidth: r.optNum(4),
			Rotation:    r.optNum(5),
			Mirror:      r.flag(6),
			LayerID:     r.optInt(7),
			FontSize:    r.optNum(9),
			Text:        r.str(10),
			Shown:       r.str(12) != "none",
		}
		if r.err != nil {
			return r.err
		}
		f.Texts = append(f.Texts, t)
	case "HOLE":
		h := Hole{Center: geometry.Pt(r.num(1), r.num(2)), Radius: r.num(3)}
		if r.err != nil {
			return r.err
		}
		f.Holes = append(f.Holes, h)
	case "VIA":
		v := Via{
			Center:   geometry.Pt(r.num(1), r.num(2)),
			Diameter: r.num(3),
			Radius:   r.num(5),
		}
		if r.err != nil {
			return r.err
		}
		f.Vias = append(f.Vias, v)
	default:
		return errUnsupported(r.tag())
	}
	return nil
}
