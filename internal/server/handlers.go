package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jonathan/job-finder/internal/pipeline"
	"github.com/jonathan/job-finder/internal/types"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 64 << 10

// SearchRequest represents the request body for /search and /search/stream
type SearchRequest struct {
	Query   string `json:"query" validate:"required,max=1000"`
	Profile string `json:"profile,omitempty" validate:"omitempty,max=2048"`
}

// SearchResponse represents the response for /search
type SearchResponse struct {
	Success   bool   `json:"success"`
	Result    string `json:"result"`
	Query     string `json:"query"`
	RequestID string `json:"request_id"`
}

// ChatRequest represents the request body for /chat
type ChatRequest struct {
	Message string                   `json:"message" validate:"required,max=1000"`
	History []types.ConversationTurn `json:"history,omitempty" validate:"max=50,dive"`
}

// Chat response types
const (
	ChatTypeResponse   = "response"
	ChatTypeJobResults = "job_results"
)

// ChatResponse represents the response for /chat
type ChatResponse struct {
	Success   bool    `json:"success"`
	Type      string  `json:"type"`
	Message   string  `json:"message"`
	Reasoning string  `json:"reasoning,omitempty"`
	Result    *string `json:"result,omitempty"`
	RequestID string  `json:"request_id,omitempty"`
}

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decode reads a JSON body into v, trims its text and validates it
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	switch req := v.(type) {
	case *SearchRequest:
		req.Query = strings.TrimSpace(req.Query)
		req.Profile = strings.TrimSpace(req.Profile)
	case *ChatRequest:
		req.Message = strings.TrimSpace(req.Message)
	}
	if err := s.validate.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}

// acquire takes a search slot, waiting until ctx is done
func (s *Server) acquire(ctx context.Context) (func(), error) {
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, &ErrBusy{Cause: err}
	}
	return func() { s.slots.Release(1) }, nil
}

// handleSearch runs a search-only request; routing is skipped
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	release, err := s.acquire(r.Context())
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	defer release()

	res := s.searcher.Run(r.Context(), pipeline.Request{
		Query:       req.Query,
		ProfileRef:  req.Profile,
		SkipRouting: true,
	})

	s.jsonResponse(w, http.StatusOK, SearchResponse{
		Success:   true,
		Result:    res.Document,
		Query:     req.Query,
		RequestID: res.RequestID,
	})
}

// handleChat routes a message, searching only when the router says so
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	route := s.searcher.Route(r.Context(), req.Message, req.History)
	if !route.ShouldSearch {
		reply := ""
		if route.Response != nil {
			reply = *route.Response
		}
		s.jsonResponse(w, http.StatusOK, ChatResponse{
			Success:   true,
			Type:      ChatTypeResponse,
			Message:   reply,
			Reasoning: route.Reasoning,
		})
		return
	}

	release, err := s.acquire(r.Context())
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	defer release()

	res := s.searcher.Run(r.Context(), pipeline.Request{
		Query:       req.Message,
		History:     req.History,
		SkipRouting: true,
	})
	s.jsonResponse(w, http.StatusOK, ChatResponse{
		Success:   true,
		Type:      ChatTypeJobResults,
		Message:   res.Document,
		Reasoning: route.Reasoning,
		Result:    &res.Document,
		RequestID: res.RequestID,
	})
}

// handleSearchStream runs a search and streams progress as Server-Sent Events
func (s *Server) handleSearchStream(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	sse, err := NewSSEWriter(w, "search")
	if err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	release, err := s.acquire(r.Context())
	if err != nil {
		sse.WriteError(err.Error())
		return
	}
	defer release()

	res := s.searcher.Run(r.Context(), pipeline.Request{
		Query:       req.Query,
		ProfileRef:  req.Profile,
		SkipRouting: true,
		OnProgress: func(e pipeline.ProgressEvent) {
			if e.Step == pipeline.StepComplete {
				return
			}
			if err := sse.WriteEvent("progress", e); err != nil {
				s.logger.Debug().Err(err).Msg("client stopped reading progress")
			}
		},
	})
	sse.WriteComplete(res.RequestID, res.Document)
}
