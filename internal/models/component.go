// Package models defines the domain types shared by the converter stages.
package models

import (
	"time"

	"github.com/starford/lcsc2kicad/internal/geometry"
)

// ComponentRecord is the validated remote description of one part. It is
// produced once per fetch and consumed by a single conversion.
type ComponentRecord struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Prefix string `json:"prefix"`
	// Package is the vendor package name, e.g. "SOT-23-3".
	Package string `json:"package,omitempty"`

	SymbolShapes    []string       `json:"symbol_shapes"`
	SymbolOrigin    geometry.Point `json:"symbol_origin"`
	FootprintShapes []string       `json:"footprint_shapes"`
	FootprintOrigin geometry.Point `json:"footprint_origin"`

	Model3D *Model3D `json:"model_3d,omitempty"`

	Manufacturer string `json:"manufacturer,omitempty"`
	Datasheet    string `json:"datasheet,omitempty"`
	PartClass    string `json:"part_class,omitempty"`
}

// Model3D references the vendor 3D model attached to a footprint.
type Model3D struct {
	UUID  string `json:"uuid"`
	Title string `json:"title"`
}

// ComponentSummary is the catalog view of a converted component.
type ComponentSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Title        string    `json:"title"`
	Manufacturer string    `json:"manufacturer,omitempty"`
	Datasheet    string    `json:"datasheet,omitempty"`
	Package      string    `json:"package,omitempty"`
	HasSymbol    bool      `json:"has_symbol"`
	HasFootprint bool      `json:"has_footprint"`
	ModelFormats []string  `json:"model_formats"`
	Checksum     string    `json:"checksum"`
	UpdatedAt    time.Time `json:"updated_at"`
}
