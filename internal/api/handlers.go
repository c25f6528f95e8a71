package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lcsc2kicad/internal/apperr"
	"github.com/starford/lcsc2kicad/internal/componentservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *componentservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *componentservice.Service) *Handler {
	return &Handler{svc: svc}
}

// errorStatus maps an error kind onto an HTTP status.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrComponentNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrDuplicateComponent):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrRemote):
		return http.StatusBadGateway
	case errors.Is(err, apperr.ErrGeometry), errors.Is(err, apperr.ErrArcGeometry), errors.Is(err, apperr.ErrMalformedRecord):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, op, id string, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error(op+" failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, status, errorBody("internal error"))
		return
	}
	writeJSON(w, status, errorBody(err.Error()))
}

// ListComponents handles GET /api/components.
//
//	@Summary		List converted components
//	@Tags			components
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			sort	query		string	false	"Sort field"	Enums(updated, id, name)
//	@Success		200		{object}	ComponentListResponse
//	@Security		BearerAuth
//	@Router			/components [get]
func (h *Handler) ListComponents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.ListComponents(r.Context(), limit, offset, q.Get("sort"))
	if err != nil {
		writeError(w, "list components", "", err)
		return
	}
	writeJSON(w, http.StatusOK, ComponentListResponse{Components: items, Total: total})
}

// GetComponent handles GET /api/components/{id}.
//
//	@Summary		Get one catalogued component
//	@Tags			components
//	@Produce		json
//	@Param			id	path		string	true	"LCSC part number"
//	@Success		200	{object}	ComponentSummary
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/components/{id} [get]
func (h *Handler) GetComponent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := h.svc.GetComponent(r.Context(), id)
	if err != nil {
		writeError(w, "get component", id, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ConvertComponent handles POST /api/components/{id}.
//
//	@Summary		Convert a component into the library
//	@Tags			components
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string			true	"LCSC part number"
//	@Param			overwrite	query		bool			false	"Replace an existing symbol"
//	@Param			body		body		ConvertRequest	false	"Artifact selection"
//	@Success		201			{object}	ConvertResponse
//	@Failure		400			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Failure		502			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/components/{id} [post]
func (h *Handler) ConvertComponent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")

	var req ConvertRequest
	if err := readOptionalJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	opts := h.svc.Defaults()
	if req.Symbol != nil {
		opts.Symbol = *req.Symbol
	}
	if req.Footprint != nil {
		opts.Footprint = *req.Footprint
	}
	if req.Model3D != nil {
		opts.Model3D = *req.Model3D
	}
	if v := r.URL.Query().Get("overwrite"); v != "" {
		overwrite, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("overwrite must be a boolean"))
			return
		}
		opts.Overwrite = overwrite
	}

	res, err := h.svc.Convert(r.Context(), id, opts)
	if err != nil {
		writeError(w, "convert component", id, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// RemoveComponent handles DELETE /api/components/{id}.
//
//	@Summary		Remove every artifact of a component
//	@Tags			components
//	@Produce		json
//	@Param			id	path		string	true	"LCSC part number"
//	@Success		200	{object}	RemoveResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/components/{id} [delete]
func (h *Handler) RemoveComponent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rep, err := h.svc.Remove(r.Context(), id)
	if err != nil {
		writeError(w, "remove component", id, err)
		return
	}
	writeJSON(w, http.StatusOK, RemoveResponse{ID: id, Removed: rep})
}

// Search handles GET /api/search.
//
//	@Summary		Search the component catalog
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", q, err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
