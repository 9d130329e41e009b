package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/flowatlas/flowatlas/pkg/errors"
	"github.com/flowatlas/flowatlas/pkg/pipeline"
	"github.com/flowatlas/flowatlas/pkg/spec"
	"github.com/flowatlas/flowatlas/pkg/store"
)

// maxRequestBody caps document uploads at 16 MiB.
const maxRequestBody = 16 << 20

// buildRequest is the POST /api/v1/builds payload.
type buildRequest struct {
	// Name labels the build in listings. Optional.
	Name string `json:"name"`

	// Documents are the behavior documents to build from.
	Documents []documentPayload `json:"documents"`

	// Engine overrides the server's default layout engine. Optional.
	Engine string `json:"engine,omitempty"`

	// Vocabulary adds entity types beyond the defaults. Optional.
	Vocabulary []string `json:"vocabulary,omitempty"`

	// Refresh bypasses the pipeline cache.
	Refresh bool `json:"refresh,omitempty"`
}

type documentPayload struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// buildResponse is returned by POST /api/v1/builds.
type buildResponse struct {
	store.Summary
	NodeCount      int                `json:"node_count"`
	EdgeCount      int                `json:"edge_count"`
	Collisions     []string           `json:"collisions,omitempty"`
	DocumentErrors []string           `json:"document_errors,omitempty"`
	CacheInfo      pipeline.CacheInfo `json:"cache_info"`
}

func (s *Server) createBuild(w http.ResponseWriter, r *http.Request) {
	var req buildRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	if err := errors.ValidateBuildName(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidInput, "documents is required"))
		return
	}

	docs := make([]spec.Document, len(req.Documents))
	for i, d := range req.Documents {
		if err := errors.ValidateDocumentName(d.Name); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		docs[i] = spec.Document{Name: d.Name, Data: []byte(d.Content)}
	}

	opts := s.Options
	opts.Logger = s.Logger
	opts.Refresh = req.Refresh
	if req.Engine != "" {
		if err := pipeline.ValidateEngine(req.Engine); err != nil {
			writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidEngine, err, "engine %q", req.Engine))
			return
		}
		opts.Engine = req.Engine
		opts.LayoutEngine = nil
	}
	for _, term := range req.Vocabulary {
		if err := errors.ValidateVocabularyTerm(term); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	if len(req.Vocabulary) > 0 {
		opts.Vocabulary = append(opts.Vocabulary, req.Vocabulary...)
	}

	result, err := s.Runner.Execute(r.Context(), docs, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.Wrap(errors.ErrCodeInternal, err, "build failed"))
		return
	}

	b := store.New(req.Name, result.GraphHash, result.Graph, result.Layout)
	if err := s.Store.Put(r.Context(), b); err != nil {
		writeError(w, http.StatusInternalServerError, errors.Wrap(errors.ErrCodeStore, err, "save build"))
		return
	}

	resp := buildResponse{
		Summary:    b.Summary(),
		NodeCount:  result.Stats.NodeCount,
		EdgeCount:  result.Stats.EdgeCount,
		Collisions: result.Collisions,
		CacheInfo:  result.CacheInfo,
	}
	for _, derr := range result.DocumentErrors {
		resp.DocumentErrors = append(resp.DocumentErrors, derr.Error())
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) listBuilds(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, errors.New(errors.ErrCodeInvalidInput, "invalid limit"))
			return
		}
		limit = n
	}

	list, err := s.Store.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.Wrap(errors.ErrCodeStore, err, "list builds"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"builds": list})
}

func (s *Server) getBuild(w http.ResponseWriter, r *http.Request) {
	b, ok := s.loadBuild(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	b, ok := s.loadBuild(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, b.Graph)
}

func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) {
	b, ok := s.loadBuild(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, b.Layout)
}

func (s *Server) deleteBuild(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "buildID")
	if err := s.Store.Delete(r.Context(), id); err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, errors.New(errors.ErrCodeBuildNotFound, "build %s not found", id))
			return
		}
		writeError(w, http.StatusInternalServerError, errors.Wrap(errors.ErrCodeStore, err, "delete build"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) loadBuild(w http.ResponseWriter, r *http.Request) (*store.Build, bool) {
	id := chi.URLParam(r, "buildID")
	b, err := s.Store.Get(r.Context(), id)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, errors.New(errors.ErrCodeBuildNotFound, "build %s not found", id))
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, errors.Wrap(errors.ErrCodeStore, err, "load build"))
		return nil, false
	}
	return b, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the JSON error body. Code lets clients branch without
// parsing the message.
type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  errors.GetCode(err),
	})
}
