package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hauswerk/vorlage/document"
	"github.com/hauswerk/vorlage/placeholder"
	"github.com/hauswerk/vorlage/recovery"
	"github.com/hauswerk/vorlage/store"
)

// Breaker keys, one per dependency direction so a flood of failed writes does
// not take reads down with it.
const (
	breakerTemplateRead  = "templates.read"
	breakerTemplateWrite = "templates.write"
)

type templateRequest struct {
	Name    string          `json:"name"`
	Content json.RawMessage `json:"content"`
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := recovery.Execute(r.Context(), s.breaker, breakerTemplateRead, func(ctx context.Context) ([]store.Template, error) {
		return s.store.List(ctx)
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"templates": templates})
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeTemplateRequest(w, r)
	if !ok {
		return
	}

	parsed := document.Parse(string(req.Content))
	created, err := recovery.Execute(r.Context(), s.breaker, breakerTemplateWrite, func(ctx context.Context) (store.Template, error) {
		return s.store.Create(ctx, req.Name, parsed.Content)
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "templateID")
	tpl, err := recovery.Execute(r.Context(), s.breaker, breakerTemplateRead, func(ctx context.Context) (store.Template, error) {
		return s.store.Get(ctx, id)
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tpl)
}

func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "templateID")
	req, ok := s.decodeTemplateRequest(w, r)
	if !ok {
		return
	}

	parsed := document.Parse(string(req.Content))
	updated, err := recovery.Execute(r.Context(), s.breaker, breakerTemplateWrite, func(ctx context.Context) (store.Template, error) {
		return s.store.Update(ctx, id, req.Name, parsed.Content)
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "templateID")
	_, err := recovery.Execute(r.Context(), s.breaker, breakerTemplateWrite, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.store.Delete(ctx, id)
	})
	if err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type templateRenderRequest struct {
	Context placeholder.Context `json:"context"`
}

// handleRenderTemplate loads a stored template and renders it against the
// supplied context.
func (s *Server) handleRenderTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "templateID")

	body, err := readBody(w, r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req templateRenderRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			respondError(w, recovery.New(recovery.TypeInvalidTemplateData, "request body is not valid JSON", err, nil))
			return
		}
	}

	tpl, err := recovery.Execute(r.Context(), s.breaker, breakerTemplateRead, func(ctx context.Context) (store.Template, error) {
		return s.store.Get(ctx, id)
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, placeholder.RenderDocument(tpl.Content, req.Context))
}

func (s *Server) decodeTemplateRequest(w http.ResponseWriter, r *http.Request) (templateRequest, bool) {
	body, err := readBody(w, r)
	if err != nil {
		respondError(w, err)
		return templateRequest{}, false
	}

	var req templateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, recovery.New(recovery.TypeInvalidTemplateData, "request body is not valid JSON", err, nil))
		return templateRequest{}, false
	}
	if req.Name == "" {
		respondError(w, recovery.New(recovery.TypeInvalidTemplateData, "name is required", nil, nil))
		return templateRequest{}, false
	}
	return req, true
}
