package shape

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/lcsc2kicad/internal/apperr"
)

// record gives indexed access to the fields of one shape record. The first
// failed required read is kept in err; later reads become no-ops.
type record struct {
	fields []string
	err    error
}

func newRecord(raw string) *record {
	return &record{fields: strings.Split(raw, "~")}
}

func (r *record) tag() string { return r.str(0) }

func (r *record) str(i int) string {
	if i < 0 || i >= len(r.fields) {
		return ""
	}
	return r.fields[i]
}

// num reads a required float field.
func (r *record) num(i int) float64 {
	if r.err != nil {
		return 0
	}
	s := strings.TrimSpace(r.str(i))
	if s == "" {
		r.err = fmt.Errorf("%w: %s field %d missing", apperr.ErrMalformedRecord, r.tag(), i)
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.err = fmt.Errorf("%w: %s field %d: %w", apperr.ErrMalformedRecord, r.tag(), i, err)
		return 0
	}
	return v
}

// optNum reads an optional float field, defaulting to zero.
func (r *record) optNum(i int) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(r.str(i)), 64)
	if err != nil {
		return 0
	}
	return v
}

func (r *record) optInt(i int) int { return int(r.optNum(i)) }

func (r *record) flag(i int) bool { return strings.TrimSpace(r.str(i)) == "1" }

// fill reports whether the fill colour field names a real fill.
func (r *record) fill(i int) bool {
	v := strings.TrimSpace(r.str(i))
	return v != "" && !strings.EqualFold(v, "none")
}

func (r *record) fail(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s: %s", apperr.ErrMalformedRecord, r.tag(), fmt.Sprintf(format, args...))
	}
}
