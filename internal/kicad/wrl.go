package kicad

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/lcsc2kicad/internal/apperr"
)

// objScale converts OBJ millimetres to VRML tenths of an inch.
const objScale = 1 / 2.54

type material struct {
	diffuse      [3]float64
	specular     [3]float64
	transparency float64
}

type meshGroup struct {
	material string
	faces    [][]int
}

// ConvertOBJToWRL converts an EasyEDA OBJ mesh (with inline materials) into a
// VRML 2.0 document, one Shape per material group.
func ConvertOBJToWRL(obj []byte) ([]byte, error) {
	materials := map[string]material{}
	var (
		vertices [][3]float64
		groups   []*meshGroup
		curMat   string
		cur      *meshGroup
	)

	sc := bufio.NewScanner(bytes.NewReader(obj))
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "newmtl":
			if len(fields) > 1 {
				curMat = fields[1]
				materials[curMat] = material{}
			}
		case "Kd", "Ks":
			m := materials[curMat]
			rgb := parseTriple(fields[1:])
			if fields[0] == "Kd" {
				m.diffuse = rgb
			} else {
				m.specular = rgb
			}
			materials[curMat] = m
		case "d":
			if len(fields) > 1 {
				if d, err := strconv.ParseFloat(fields[1], 64); err == nil {
					m := materials[curMat]
					m.transparency = 1 - d
					materials[curMat] = m
				}
			}
		case "v":
			v := parseTriple(fields[1:])
			for i := range v {
				v[i] *= objScale
			}
			vertices = append(vertices, v)
		case "usemtl":
			name := ""
			if len(fields) > 1 {
				name = fields[1]
			}
			cur = &meshGroup{material: name}
			groups = append(groups, cur)
		case "f":
			if cur == nil {
				cur = &meshGroup{}
				groups = append(groups, cur)
			}
			face, err := parseFace(fields[1:], len(vertices))
			if err != nil {
				return nil, err
			}
			cur.faces = append(cur.faces, face)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: read obj: %w", apperr.ErrGeometry, err)
	}
	if len(vertices) == 0 {
		return nil, fmt.Errorf("%w: obj has no vertices", apperr.ErrGeometry)
	}

	var b strings.Builder
	b.WriteString("#VRML V2.0 utf8\n# " + Generator + "\n")
	shapes := 0
	for _, g := range groups {
		if len(g.faces) == 0 {
			continue
		}
		writeShape(&b, materials[g.material], g.faces, vertices)
		shapes++
	}
	if shapes == 0 {
		return nil, fmt.Errorf("%w: obj has no faces", apperr.ErrGeometry)
	}
	return []byte(b.String()), nil
}

// writeShape emits one Shape with only the vertices its faces reference.
func writeShape(b *strings.Builder, m material, faces [][]int, vertices [][3]float64) {
	remap := map[int]int{}
	var used []int
	for _, f := range faces {
		for _, idx := range f {
			if _, ok := remap[idx]; !ok {
				remap[idx] = len(used)
				used = append(used, idx)
			}
		}
	}

	b.WriteString("Shape {\n  appearance Appearance {\n    material Material {\n")
	fmt.Fprintf(b, "      diffuseColor %s\n", triple(m.diffuse))
	fmt.Fprintf(b, "      specularColor %s\n", triple(m.specular))
	b.WriteString("      ambientIntensity 0.2\n")
	fmt.Fprintf(b, "      transparency %s\n", fnum(m.transparency))
	b.WriteString("      shininess 0.5\n    }\n  }\n")
	b.WriteString("  geometry IndexedFaceSet {\n    ccw TRUE\n    solid FALSE\n")
	b.WriteString("    coord Coordinate {\n      point [\n")
	for _, idx := range used {
		fmt.Fprintf(b, "        %s,\n", triple(vertices[idx]))
	}
	b.WriteString("      ]\n    }\n    coordIndex [\n")
	for _, f := range faces {
		b.WriteString("      ")
		for _, idx := range f {
			b.WriteString(strconv.Itoa(remap[idx]))
			b.WriteByte(',')
		}
		b.WriteString("-1,\n")
	}
	b.WriteString("    ]\n  }\n}\n")
}

// parseFace reads "f a b c" with optional "/vt/vn" suffixes into zero-based
// vertex indices. Negative indices count back from the last vertex.
func parseFace(fields []string, nv int) ([]int, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("%w: face with %d vertices", apperr.ErrGeometry, len(fields))
	}
	face := make([]int, 0, len(fields))
	for _, f := range fields {
		head, _, _ := strings.Cut(f, "/")
		i, err := strconv.Atoi(head)
		if err != nil {
			return nil, fmt.Errorf("%w: face index %q: %w", apperr.ErrGeometry, f, err)
		}
		if i < 0 {
			i = nv + i
		} else {
			i--
		}
		if i < 0 || i >= nv {
			return nil, fmt.Errorf("%w: face index %s out of range", apperr.ErrGeometry, f)
		}
		face = append(face, i)
	}
	return face, nil
}

func parseTriple(fields []string) [3]float64 {
	var v [3]float64
	for i := 0; i < 3 && i < len(fields); i++ {
		v[i], _ = strconv.ParseFloat(fields[i], 64)
	}
	return v
}

func triple(v [3]float64) string {
	return fnum(v[0]) + " " + fnum(v[1]) + " " + fnum(v[2])
}

// CheckSTEP verifies data looks like an ISO 10303-21 exchange file.
func CheckSTEP(data []byte) error {
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("ISO-10303-21")) {
		return fmt.Errorf("%w: step payload lacks ISO-10303-21 header", apperr.ErrGeometry)
	}
	return nil
}
