package easyeda

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/lcsc2kicad/internal/apperr"
	"github.com/starford/lcsc2kicad/internal/geometry"
	"github.com/starford/lcsc2kicad/internal/models"
)

type apiResponse struct {
	Success bool       `json:"success"`
	Result  *apiResult `json:"result"`
}

type apiResult struct {
	Title         *string         `json:"title"`
	DataStr       *dataStr        `json:"dataStr"`
	PackageDetail json.RawMessage `json:"packageDetail"`
	LCSC          *struct {
		URL string `json:"url"`
	} `json:"lcsc"`
}

type dataStr struct {
	Head  head              `json:"head"`
	Shape []json.RawMessage `json:"shape"`
}

type head struct {
	X     flexFloat      `json:"x"`
	Y     flexFloat      `json:"y"`
	CPara map[string]any `json:"c_para"`
}

// flexFloat accepts a JSON number or a numeric string; anything else is zero.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

func (h head) param(key string) string {
	if v, ok := h.CPara[key].(string); ok {
		return v
	}
	return ""
}

// decodeComponent validates the payload shape once and maps it to a
// ComponentRecord, applying defaults to absent optional fields.
func decodeComponent(id string, body []byte) (*models.ComponentRecord, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", apperr.ErrRemote, id, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: %w: %s", apperr.ErrRemote, apperr.ErrComponentNotFound, id)
	}
	r := resp.Result
	switch {
	case r == nil:
		return nil, fmt.Errorf("%w: %s: missing result", apperr.ErrRemote, id)
	case r.Title == nil:
		return nil, fmt.Errorf("%w: %s: missing result.title", apperr.ErrRemote, id)
	case r.DataStr == nil:
		return nil, fmt.Errorf("%w: %s: missing result.dataStr", apperr.ErrRemote, id)
	}

	h := r.DataStr.Head
	rec := &models.ComponentRecord{
		ID:           id,
		Title:        *r.Title,
		Prefix:       prefix(h.param("pre")),
		Package:      h.param("package"),
		SymbolShapes: shapeStrings(r.DataStr.Shape),
		SymbolOrigin: geometry.Pt(float64(h.X), float64(h.Y)),
		Manufacturer: h.param("BOM_Manufacturer"),
		PartClass:    h.param("BOM_JLCPCB Part Class"),
	}
	if r.LCSC != nil {
		rec.Datasheet = r.LCSC.URL
	}

	shapes, origin, err := decodePackage(r.PackageDetail)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: packageDetail: %w", apperr.ErrRemote, id, err)
	}
	rec.FootprintShapes = shapes
	rec.FootprintOrigin = origin
	rec.Model3D = FindModel3D(shapes)
	return rec, nil
}

// decodePackage accepts {"dataStr": {"head": ..., "shape": [...]}} or a bare
// shape array. Absence yields no shapes.
func decodePackage(raw json.RawMessage) ([]string, geometry.Point, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, geometry.Point{}, nil
	}
	if raw[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil {
			return nil, geometry.Point{}, err
		}
		return shapeStrings(arr), geometry.Point{}, nil
	}
	var pkg struct {
		DataStr *dataStr `json:"dataStr"`
	}
	if err := json.Unmarshal(raw, &pkg); err != nil {
		return nil, geometry.Point{}, err
	}
	if pkg.DataStr == nil {
		return nil, geometry.Point{}, nil
	}
	h := pkg.DataStr.Head
	return shapeStrings(pkg.DataStr.Shape), geometry.Pt(float64(h.X), float64(h.Y)), nil
}

// shapeStrings keeps the string elements of a shape array.
func shapeStrings(raw []json.RawMessage) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func prefix(pre string) string {
	pre = strings.TrimSpace(strings.TrimRight(pre, "?"))
	if pre == "" {
		return "U"
	}
	return pre
}

const modelMarker = "SVGNODE~"

// FindModel3D returns the first outline3D attachment among footprint shapes
// that carries both a uuid and a title.
func FindModel3D(shapes []string) *models.Model3D {
	for _, s := range shapes {
		if !strings.HasPrefix(s, modelMarker) {
			continue
		}
		payload, _, _ := strings.Cut(strings.TrimPrefix(s, modelMarker), "~")
		var node struct {
			Attrs struct {
				Type  string `json:"c_etype"`
				UUID  string `json:"uuid"`
				Title string `json:"title"`
			} `json:"attrs"`
		}
		if err := json.Unmarshal([]byte(payload), &node); err != nil {
			continue
		}
		a := node.Attrs
		if a.Type == "outline3D" && a.UUID != "" && a.Title != "" {
			return &models.Model3D{UUID: a.UUID, Title: a.Title}
		}
	}
	return nil
}
