// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pdiddy/research-digest/internal/digest"
	"github.com/pdiddy/research-digest/internal/storage"
	"github.com/pdiddy/research-digest/pkg/types"
)

// generateRequest overrides the server's default digest configuration.
// Omitted fields keep their defaults.
type generateRequest struct {
	Categories      []string `json:"categories"`
	Interests       *string  `json:"interests"`
	MaxPapers       *int     `json:"max_papers"`
	TopN            *int     `json:"top_n"`
	DaysBack        *int     `json:"days_back"`
	Sources         []string `json:"sources"`
	PriorityAuthors []string `json:"priority_authors"`
	AuthorBoost     *float64 `json:"author_boost"`
	ExcludeSeen     *bool    `json:"exclude_seen"`
}

func (req generateRequest) apply(cfg types.DigestConfig) types.DigestConfig {
	if len(req.Categories) > 0 {
		cfg.Categories = req.Categories
	}
	if req.Interests != nil {
		cfg.Interests = *req.Interests
	}
	if req.MaxPapers != nil {
		cfg.MaxPapers = *req.MaxPapers
	}
	if req.TopN != nil {
		cfg.TopN = *req.TopN
	}
	if req.DaysBack != nil {
		cfg.DateFilter = &types.DateFilter{DaysBack: *req.DaysBack}
	}
	if len(req.Sources) > 0 {
		cfg.Sources = req.Sources
	}
	if req.PriorityAuthors != nil {
		cfg.PriorityAuthors = req.PriorityAuthors
	}
	if req.AuthorBoost != nil {
		cfg.AuthorBoost = *req.AuthorBoost
	}
	if req.ExcludeSeen != nil {
		cfg.ExcludeSeen = *req.ExcludeSeen
	}
	return cfg
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.gen.State())
}

func (s *Server) handleListDigests(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	dates, err := s.store.List(limit)
	if err != nil {
		s.log.Error("listing digests", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list digests")
		return
	}
	if dates == nil {
		dates = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"dates": dates})
}

func (s *Server) handleLatestDigest(w http.ResponseWriter, _ *http.Request) {
	d, err := s.store.Load("")
	if err != nil {
		s.log.Error("loading latest digest", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load digest")
		return
	}
	if d == nil {
		writeError(w, http.StatusNotFound, "no digests stored")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleGetDigest(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	raw, err := s.store.LoadRaw(date)
	switch {
	case errors.Is(err, storage.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.log.Error("loading digest", "date", date, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load digest")
		return
	case raw == nil:
		writeError(w, http.StatusNotFound, "no digest for "+date)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func (s *Server) handleDeleteDigest(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	ok, err := s.store.Delete(date)
	switch {
	case errors.Is(err, storage.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		s.log.Error("deleting digest", "date", date, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete digest")
	case !ok:
		writeError(w, http.StatusNotFound, "no digest for "+date)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleGenerate runs a generation synchronously and maps the result
// status onto the response code.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	res := s.gen.Generate(r.Context(), req.apply(s.defaults))
	switch {
	case res.Status == digest.StatusAlreadyGenerating:
		writeJSON(w, http.StatusConflict, res)
	case res.Status == digest.StatusError && digest.IsEmpty(res.Cause):
		writeJSON(w, http.StatusUnprocessableEntity, res)
	case res.Status == digest.StatusError:
		writeJSON(w, http.StatusInternalServerError, res)
	default:
		writeJSON(w, http.StatusOK, res)
	}
}
