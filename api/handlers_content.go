package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/hauswerk/vorlage/document"
	"github.com/hauswerk/vorlage/placeholder"
	"github.com/hauswerk/vorlage/recovery"
)

const maxBodyBytes = 4 << 20

// handleParse runs the robust parser over the request body and returns the
// full parse result, recovered or not.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondError(w, err)
		return
	}

	result := document.Parse(string(body))
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondError(w, err)
		return
	}

	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		respondError(w, recovery.New(recovery.TypeInvalidTemplateData, "request body is not valid JSON", err, nil))
		return
	}

	respondJSON(w, http.StatusOK, document.Validate(decoded))
}

type variablesResponse struct {
	Variables           []string `json:"variables"`
	ContextRequirements []string `json:"contextRequirements"`
	Errors              []string `json:"errors,omitempty"`
	Warnings            []string `json:"warnings,omitempty"`
}

// handleVariables parses the body and reports the variables the content
// references plus the data groups needed to render them.
func (s *Server) handleVariables(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondError(w, err)
		return
	}

	parsed := document.Parse(string(body))
	extraction := document.ExtractVariables(parsed.Content)

	respondJSON(w, http.StatusOK, variablesResponse{
		Variables:           extraction.Variables,
		ContextRequirements: document.ContextRequirements(extraction.Variables),
		Errors:              extraction.Errors,
		Warnings:            extraction.Warnings,
	})
}

type renderRequest struct {
	Content json.RawMessage     `json:"content"`
	Context placeholder.Context `json:"context"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req renderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, recovery.New(recovery.TypeInvalidTemplateData, "request body is not valid JSON", err, nil))
		return
	}
	if len(req.Content) == 0 {
		respondError(w, recovery.New(recovery.TypeInvalidTemplateData, "content is required", nil, nil))
		return
	}

	parsed := document.Parse(string(req.Content))
	respondJSON(w, http.StatusOK, placeholder.RenderDocument(parsed.Content, req.Context))
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, recovery.New(recovery.TypeInvalidTemplateData, "failed to read request body", err, nil)
	}
	return body, nil
}
