package api

import (
	"github.com/starford/lcsc2kicad/internal/converter"
	"github.com/starford/lcsc2kicad/internal/library"
	"github.com/starford/lcsc2kicad/internal/models"
	"github.com/starford/lcsc2kicad/internal/storage"
)

// ConvertRequest optionally narrows what POST /components/{id} converts.
// Omitted fields fall back to the server defaults.
type ConvertRequest struct {
	Symbol    *bool `json:"symbol,omitempty"`
	Footprint *bool `json:"footprint,omitempty"`
	Model3D   *bool `json:"model_3d,omitempty"`
}

// ComponentSummary is a catalog entry (aliased from the domain layer).
type ComponentSummary = models.ComponentSummary

// ConvertResponse is returned after a successful conversion.
type ConvertResponse = converter.Result

// RemoveResponse reports what DELETE /components/{id} removed.
type RemoveResponse struct {
	ID      string               `json:"id" example:"C25804" validate:"required"`
	Removed library.RemoveReport `json:"removed" validate:"required"`
}

// ComponentListResponse wraps paginated component listings.
type ComponentListResponse struct {
	Components []ComponentSummary `json:"components" validate:"required"`
	Total      int                `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []ComponentSummary `json:"results" validate:"required"`
}

// FileListResponse lists the files of one kind with their checksums.
type FileListResponse struct {
	Kind  string          `json:"kind" example:"footprints"`
	Files []storage.Entry `json:"files" validate:"required"`
}
