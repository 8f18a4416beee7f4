package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vango-dev/toast/internal/errors"
)

// maxBodyBytes bounds API request bodies.
const maxBodyBytes = 64 << 10

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error *errors.ToastError `json:"error"`
}

// ListResponse is the body of GET /api/toasts.
type ListResponse struct {
	Toasts []ToastJSON `json:"toasts"`
}

// ClearResponse is the body of DELETE /api/toasts.
type ClearResponse struct {
	Removed int `json:"removed"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Toasts  int    `json:"toasts"`
	Clients int    `json:"clients"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	te := errors.FromError(err, "E302")
	writeJSON(w, te.HTTPStatus(), ErrorResponse{Error: te})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("E204").WithDetail(err.Error())
	}
	return nil
}

func toastID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return 0, errors.New("E206").WithDetailf("%q is not a toast id", raw)
	}
	return id, nil
}

func notFound(id int) error {
	return errors.New("E205").WithDetailf("no active toast with id %d", id).
		WithSuggestion("The toast may have expired or been dismissed")
}

func (s *Server) listToasts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ListResponse{Toasts: encodeToasts(s.store.Toasts())})
}

func (s *Server) createToast(w http.ResponseWriter, r *http.Request) {
	var req ToastRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	msg, typ, opts, err := req.decode()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, encodeToast(s.store.Add(msg, typ, opts...)))
}

func (s *Server) updateToast(w http.ResponseWriter, r *http.Request) {
	id, err := toastID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req ToastRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	msg, typ, opts, err := req.decode()
	if err != nil {
		writeError(w, err)
		return
	}

	t, ok := s.store.Replace(id, msg, typ, opts...)
	if !ok {
		writeError(w, notFound(id))
		return
	}
	writeJSON(w, http.StatusOK, encodeToast(t))
}

func (s *Server) dismissToast(w http.ResponseWriter, r *http.Request) {
	id, err := toastID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if !s.store.Dismiss(id) {
		writeError(w, notFound(id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) clearToasts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ClearResponse{Removed: s.store.Clear()})
}

func (s *Server) getDefaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, encodeDefaults(s.store.Defaults()))
}

func (s *Server) patchDefaults(w http.ResponseWriter, r *http.Request) {
	var req DefaultsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	patch, err := req.decode()
	if err != nil {
		writeError(w, err)
		return
	}
	s.store.SetDefaults(patch)
	s.logger.Info("defaults changed", "request_id", middleware.GetReqID(r.Context()))
	writeJSON(w, http.StatusOK, encodeDefaults(s.store.Defaults()))
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Toasts:  s.store.Len(),
		Clients: s.hub.len(),
	})
}

func (s *Server) serveMetrics(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		writeError(w, errors.New("E303"))
		return
	}
	s.metrics.ServeHTTP(w, r)
}
