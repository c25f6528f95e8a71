package kicad

import (
	"fmt"
	"strings"

	"github.com/starford/lcsc2kicad/internal/geometry"
)

// FootprintVersion is the s-expression format version written to .kicad_mod files.
const FootprintVersion = "20211014"

// Generator names the tool in generated files.
const Generator = "lcsc2kicad"

func pt(p geometry.Point) string { return fnum(p.X) + " " + fnum(p.Y) }

// ExportFootprint renders f as a complete .kicad_mod file.
func ExportFootprint(f *Footprint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(footprint %s (version %s) (generator %s)\n", quote(f.Name), FootprintVersion, Generator)
	b.WriteString("  (layer \"F.Cu\")\n")
	fmt.Fprintf(&b, "  (attr %s)\n", f.Attr)
	b.WriteString("  (fp_text reference \"REF**\" (at 0 -4) (layer \"F.SilkS\")\n    (effects (font (size 1 1) (thickness 0.15)))\n  )\n")
	fmt.Fprintf(&b, "  (fp_text value %s (at 0 4) (layer \"F.Fab\")\n    (effects (font (size 1 1) (thickness 0.15)))\n  )\n", quote(f.Name))

	for _, t := range f.Texts {
		hide := ""
		if t.Hidden {
			hide = " hide"
		}
		justify := ""
		if t.Mirror {
			justify = " (justify mirror)"
		}
		fmt.Fprintf(&b, "  (fp_text user %s (at %s %s) (layer %s)%s\n    (effects (font (size %s %s) (thickness %s))%s)\n  )\n",
			quote(t.Text), pt(t.Pos), fnum(t.Rotation), quote(t.Layer), hide,
			fnum(t.Size), fnum(t.Size), fnum(t.Thickness), justify)
	}
	for _, l := range f.Lines {
		fmt.Fprintf(&b, "  (fp_line (start %s) (end %s) (layer %s) (width %s))\n",
			pt(l.Start), pt(l.End), quote(l.Layer), fnum(l.Width))
	}
	for _, c := range f.Circles {
		end := geometry.Pt(c.Center.X+c.Radius, c.Center.Y)
		fmt.Fprintf(&b, "  (fp_circle (center %s) (end %s) (layer %s) (width %s) (fill none))\n",
			pt(c.Center), pt(end), quote(c.Layer), fnum(c.Width))
	}
	for _, a := range f.Arcs {
		fmt.Fprintf(&b, "  (fp_arc (start %s) (mid %s) (end %s) (layer %s) (width %s))\n",
			pt(a.Start), pt(a.Mid), pt(a.End), quote(a.Layer), fnum(a.Width))
	}
	for _, p := range f.Pads {
		writePad(&b, p)
	}
	if m := f.Model; m != nil {
		fmt.Fprintf(&b, "  (model %s\n    (offset (xyz %s))\n    (scale (xyz %s))\n    (rotate (xyz %s))\n  )\n",
			quote(m.Path), vec(m.Offset), vec(m.Scale), vec(m.Rotate))
	}
	b.WriteString(")\n")
	return b.String()
}

func writePad(b *strings.Builder, p Pad) {
	at := pt(p.Pos)
	if p.Rotation != 0 {
		at += " " + fnum(p.Rotation)
	}
	fmt.Fprintf(b, "  (pad %s %s %s (at %s) (size %s %s)", quote(p.Number), p.Type, p.Shape, at, fnum(p.Width), fnum(p.Height))
	if d := p.Drill; d != nil {
		if d.Oval() {
			fmt.Fprintf(b, " (drill oval %s %s)", fnum(d.Diameter), fnum(d.Width))
		} else {
			fmt.Fprintf(b, " (drill %s)", fnum(d.Diameter))
		}
	}
	quoted := make([]string, len(p.Layers))
	for i, l := range p.Layers {
		quoted[i] = quote(l)
	}
	fmt.Fprintf(b, " (layers %s)", strings.Join(quoted, " "))
	if len(p.Outline) == 0 {
		b.WriteString(")\n")
		return
	}
	b.WriteString("\n    (options (clearance outline) (anchor circle))\n    (primitives\n      (gr_poly (pts")
	for _, o := range p.Outline {
		fmt.Fprintf(b, " (xy %s)", pt(o))
	}
	fmt.Fprintf(b, ") (width %s) (fill yes))\n    )\n  )\n", fnum(polyOutlineWidth))
}

func vec(v Vec3) string { return fnum(v.X) + " " + fnum(v.Y) + " " + fnum(v.Z) }
