package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"poimap/pkg/map/lod"
	"poimap/pkg/map/render"
	"poimap/pkg/map/viewport"
	"poimap/pkg/model"
	"poimap/pkg/session"
)

// SessionHandler exposes map sessions over HTTP.
type SessionHandler struct {
	manager *session.Manager
}

// NewSessionHandler creates a new handler.
func NewSessionHandler(m *session.Manager) *SessionHandler {
	return &SessionHandler{manager: m}
}

// UpdateResponse is returned by every call that may change the render state.
type UpdateResponse struct {
	ID    string       `json:"id,omitempty"`
	View  session.View `json:"view"`
	Stats lod.Stats    `json:"stats"`
	Ops   []render.Op  `json:"ops"`
}

// CategoriesResponse is the legend state.
type CategoriesResponse struct {
	Categories []lod.Category `json:"categories"`
	Featured   bool           `json:"featured"`
}

// HandleCreate handles POST /api/sessions
func (h *SessionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var v session.View
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if v.Width < 0 || v.Height < 0 {
		http.Error(w, "Viewport size must not be negative", http.StatusBadRequest)
		return
	}

	s, ops := h.manager.Create(r.Context(), v)
	writeJSON(w, http.StatusCreated, h.updateResponse(s, ops, true))
}

// HandleDelete handles DELETE /api/sessions/{id}
func (h *SessionHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Close(r.PathValue("id")); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleViewport handles POST /api/sessions/{id}/viewport
func (h *SessionHandler) HandleViewport(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var v session.View
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if v.Width < 0 || v.Height < 0 {
		http.Error(w, "Viewport size must not be negative", http.StatusBadRequest)
		return
	}

	ops := s.SetView(v)
	writeJSON(w, http.StatusOK, h.updateResponse(s, ops, false))
}

// HandleGetCategories handles GET /api/sessions/{id}/categories
func (h *SessionHandler) HandleGetCategories(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var resp CategoriesResponse
	s.Do(func(e *lod.Engine, _ *viewport.Mercator) {
		resp = CategoriesResponse{Categories: e.Categories(), Featured: e.FeaturedVisible()}
	})
	writeJSON(w, http.StatusOK, resp)
}

type categoryRequest struct {
	Glyph   model.Glyph `json:"glyph"`
	Visible *bool       `json:"visible"`
	All     *bool       `json:"all"`
}

// HandleSetCategories handles POST /api/sessions/{id}/categories
// Body is either {"glyph": "...", "visible": bool} or {"all": bool}.
func (h *SessionHandler) HandleSetCategories(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	var ops []render.Op
	switch {
	case req.All != nil:
		ops = s.Do(func(e *lod.Engine, _ *viewport.Mercator) { e.SetAllCategoriesVisible(ctx, *req.All) })
	case req.Glyph != "" && req.Visible != nil:
		ops = s.Do(func(e *lod.Engine, _ *viewport.Mercator) { e.SetCategoryVisible(ctx, req.Glyph, *req.Visible) })
	default:
		http.Error(w, "Expected glyph and visible, or all", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.updateResponse(s, ops, false))
}

// HandleFeatured handles POST /api/sessions/{id}/featured
func (h *SessionHandler) HandleFeatured(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Visible *bool `json:"visible"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Visible == nil {
		http.Error(w, "Expected visible", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	ops := s.Do(func(e *lod.Engine, _ *viewport.Mercator) { e.SetFeaturedVisible(ctx, *req.Visible) })
	writeJSON(w, http.StatusOK, h.updateResponse(s, ops, false))
}

// HandleClick handles POST /api/sessions/{id}/click
func (h *SessionHandler) HandleClick(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "Expected name", http.StatusBadRequest)
		return
	}

	kind := render.Marker
	switch req.Kind {
	case "", "marker":
	case "dot":
		kind = render.Dot
	default:
		http.Error(w, "Unknown kind", http.StatusBadRequest)
		return
	}

	ops, clicked := s.Click(kind, req.Name)
	if !clicked {
		http.Error(w, "No such handle on the map", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, h.updateResponse(s, ops, false))
}

// HandleRender handles GET /api/sessions/{id}/render
func (h *SessionHandler) HandleRender(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	if err := json.NewEncoder(w).Encode(s.Snapshot()); err != nil {
		slog.Error("Failed to write render response", "error", err)
	}
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.manager.Get(r.PathValue("id"))
	if err != nil {
		writeSessionError(w, err)
		return nil, false
	}
	return s, true
}

func (h *SessionHandler) updateResponse(s *session.Session, ops []render.Op, withID bool) UpdateResponse {
	resp := UpdateResponse{View: s.View(), Ops: ops}
	if withID {
		resp.ID = s.ID
	}
	if resp.Ops == nil {
		resp.Ops = []render.Op{}
	}
	s.Do(func(e *lod.Engine, _ *viewport.Mercator) { resp.Stats = e.LastStats() })
	return resp
}

func writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrSessionNotFound) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
