package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/odl/internal/catalog"
	"github.com/starford/odl/pkg/apperr"
	"github.com/starford/odl/pkg/odl"
)

const maxUploadBytes = 10 << 20 // 10 MB

// Handler holds API route handlers.
type Handler struct {
	svc *catalog.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *catalog.Service) *Handler {
	return &Handler{svc: svc}
}

// programPath extracts the program path from the wildcard part of the URL.
// Supports encoded slashes from OpenAPI clients (e.g. uploads%2Fn1.yaml).
func programPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Health handles GET /health/live and /health/ready.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ping handles HEAD /, the client connectivity check.
func (h *Handler) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Upload handles POST / (multipart/form-data, field "yaml_cfg").
//
//	@Summary		Store an observing program
//	@Tags			programs
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			yaml_cfg	formData	file	true	"Program document"
//	@Success		200			{object}	UploadResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("document too large or invalid multipart"))
		return
	}
	data, err := formDocument(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	p, err := h.svc.Upload(r.Context(), data)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidDocument) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		} else {
			slog.Error("upload failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	slog.Info("program uploaded", slog.String("path", p), slog.Int("bytes", len(data)))
	writeJSON(w, http.StatusOK, UploadResponse{Path: p})
}

// formDocument returns the yaml_cfg field, sent either as a file part or
// as a plain form value.
func formDocument(r *http.Request) ([]byte, error) {
	file, _, err := r.FormFile(odl.UploadField)
	if err == nil {
		defer file.Close()
		return io.ReadAll(file)
	}
	if v := r.FormValue(odl.UploadField); v != "" {
		return []byte(v), nil
	}
	return nil, errors.New("missing '" + odl.UploadField + "' field in multipart form")
}

// GetDefs handles GET /api/ddoi/getDefs.
//
//	@Summary		Fetch the definitions of one collection as a program document
//	@Tags			definitions
//	@Produce		application/yaml
//	@Param			col		query		string	true	"Collection"	Enums(Targets, OffsetPatterns, InstrumentConfigs, DetectorConfigs, ObservingBlocks)
//	@Param			name	query		string	false	"Definition name"
//	@Success		200		{string}	string
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/api/ddoi/getDefs [get]
func (h *Handler) GetDefs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	col := q.Get("col")
	if col == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'col' is required"))
		return
	}
	doc, err := h.svc.Definitions(r.Context(), col, q.Get("name"))
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrUnknownCollection):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		default:
			slog.Error("get defs failed", slog.String("col", col), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	h.writeDocument(w, doc)
}

// ListPrograms handles GET /api/programs.
//
//	@Summary		List stored programs
//	@Tags			programs
//	@Produce		json
//	@Success		200	{object}	ProgramListResponse
//	@Security		BearerAuth
//	@Router			/api/programs [get]
func (h *Handler) ListPrograms(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Programs(r.Context())
	if err != nil {
		slog.Error("list programs failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ProgramListResponse{Programs: rows, Total: len(rows)})
}

// GetProgram handles GET /api/programs/*.
//
//	@Summary		Get a stored program with its definitions
//	@Tags			programs
//	@Produce		json
//	@Param			path	path		string	true	"Program path"
//	@Success		200		{object}	ProgramDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/api/programs/{path} [get]
func (h *Handler) GetProgram(w http.ResponseWriter, r *http.Request) {
	p := programPath(r)
	if p == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	detail, err := h.svc.Program(r.Context(), p)
	if err != nil {
		h.programError(w, p, "get program", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// DeleteProgram handles DELETE /api/programs/*.
//
//	@Summary		Delete a stored program
//	@Tags			programs
//	@Param			path	path	string	true	"Program path"
//	@Success		204		"Program deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/api/programs/{path} [delete]
func (h *Handler) DeleteProgram(w http.ResponseWriter, r *http.Request) {
	p := programPath(r)
	if p == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.Delete(r.Context(), p); err != nil {
		h.programError(w, p, "delete program", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Estimate handles GET /api/estimate/*.
//
//	@Summary		Shutter-open and wall-clock time of a program
//	@Tags			programs
//	@Produce		json
//	@Param			path	path		string	true	"Program path"
//	@Success		200		{object}	EstimateResult
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/api/estimate/{path} [get]
func (h *Handler) Estimate(w http.ResponseWriter, r *http.Request) {
	p := programPath(r)
	if p == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	est, err := h.svc.Estimate(r.Context(), p)
	if err != nil {
		h.programError(w, p, "estimate", err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

// Cals handles GET /api/cals/*.
//
//	@Summary		Calibration blocks needed by a program
//	@Tags			programs
//	@Produce		application/yaml
//	@Param			path	path		string	true	"Program path"
//	@Success		200		{string}	string
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/api/cals/{path} [get]
func (h *Handler) Cals(w http.ResponseWriter, r *http.Request) {
	p := programPath(r)
	if p == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	cals, err := h.svc.Cals(r.Context(), p)
	if err != nil {
		h.programError(w, p, "cals", err)
		return
	}
	h.writeDocument(w, &odl.Document{ObservingBlocks: cals})
}

// Search handles GET /api/definitions.
//
//	@Summary		Full-text search across definitions
//	@Tags			definitions
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/api/definitions [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Referrers handles GET /api/referrers.
//
//	@Summary		Definitions that use a named definition
//	@Tags			definitions
//	@Produce		json
//	@Param			name	query		string	true	"Definition name"
//	@Success		200		{object}	ReferrersResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/api/referrers [get]
func (h *Handler) Referrers(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'name' is required"))
		return
	}
	refs, err := h.svc.Referrers(r.Context(), name)
	if err != nil {
		slog.Error("referrers failed", slog.String("name", name), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ReferrersResponse{Name: name, Referrers: refs})
}

func (h *Handler) writeDocument(w http.ResponseWriter, doc *odl.Document) {
	data, err := odl.Marshal(doc)
	if err != nil {
		slog.Error("marshal document failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeYAML(w, http.StatusOK, data)
}

func (h *Handler) programError(w http.ResponseWriter, p, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrInvalidDocument), errors.Is(err, apperr.ErrInstrumentConfig):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("path", p), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
