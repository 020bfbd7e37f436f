package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/flixflex/flixflex/internal/server/docstore"
)

type storeDocument struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

type storeQueryResponse struct {
	Documents []storeDocument `json:"documents"`
}

// authorizeWrite enforces per-collection ownership: a caller may only write
// their own user document, and username reservations that point at their own
// uid. Every other collection is read-only over the API.
func (s *Server) authorizeWrite(w http.ResponseWriter, r *http.Request, collection, id string, fields map[string]any) bool {
	claims := claimsFrom(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, codeUnauthenticated, "authentication required")
		return false
	}

	switch collection {
	case "users":
		if id != claims.UserID {
			writeError(w, http.StatusForbidden, codeUnauthenticated, "document does not belong to caller")
			return false
		}
	case "usernames":
		if uid, _ := fields["uid"].(string); uid != claims.UserID {
			writeError(w, http.StatusForbidden, codeUnauthenticated, "reservation does not belong to caller")
			return false
		}
	default:
		writeError(w, http.StatusForbidden, codeUnauthenticated, "collection is read-only")
		return false
	}
	return true
}

func (s *Server) handleStoreGet(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	fields, err := s.store.Get(r.Context(), collection, id)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "document not found")
		return
	case err != nil:
		s.log.Error(r.Context(), "store get failed", "collection", collection, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, fields)
}

func (s *Server) handleStoreQuery(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	field := r.URL.Query().Get("field")
	value := r.URL.Query().Get("value")
	if field == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "field parameter is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, codeBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	docs, err := s.store.QueryEquals(r.Context(), collection, field, value, limit)
	if err != nil {
		s.log.Error(r.Context(), "store query failed", "collection", collection, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	resp := storeQueryResponse{Documents: make([]storeDocument, 0, len(docs))}
	for _, d := range docs {
		resp.Documents = append(resp.Documents, storeDocument{ID: d.ID, Fields: d.Fields})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStoreCreate(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	if !s.authorizeWrite(w, r, collection, id, fields) {
		return
	}

	err := s.store.Create(r.Context(), collection, id, fields)
	switch {
	case errors.Is(err, docstore.ErrAlreadyExists):
		writeError(w, http.StatusConflict, codeAlreadyExists, "document already exists")
		return
	case err != nil:
		s.log.Error(r.Context(), "store create failed", "collection", collection, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleStoreSet(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	if !s.authorizeWrite(w, r, collection, id, fields) {
		return
	}

	if err := s.store.Set(r.Context(), collection, id, fields); err != nil {
		s.log.Error(r.Context(), "store set failed", "collection", collection, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStoreDelete(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	// Deleting takes the same ownership check as other writes. For username
	// reservations the caller proves ownership by owning the reservation
	// itself, so load it first.
	fields := map[string]any{}
	if collection == "usernames" {
		existing, err := s.store.Get(r.Context(), collection, id)
		switch {
		case errors.Is(err, docstore.ErrNotFound):
			w.WriteHeader(http.StatusNoContent)
			return
		case err != nil:
			s.log.Error(r.Context(), "store delete failed", "collection", collection, "error", err)
			writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
			return
		}
		fields = existing
	}
	if !s.authorizeWrite(w, r, collection, id, fields) {
		return
	}

	if err := s.store.Delete(r.Context(), collection, id); err != nil {
		s.log.Error(r.Context(), "store delete failed", "collection", collection, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
