// Package api serves the studio HTTP endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/fabfab/portfolio-agent/chat"
	"github.com/fabfab/portfolio-agent/knowledge"
	"github.com/fabfab/portfolio-agent/llm"
	"github.com/fabfab/portfolio-agent/retrieval"
)

const unknownErrorMessage = "Unknown error"

// Retriever validates queries and ranks the knowledge base.
type Retriever interface {
	Validate(query string) error
	Retrieve(ctx context.Context, query string) (retrieval.Result, error)
	Documents(ctx context.Context) ([]knowledge.Document, error)
}

// Answerer composes grounded answers.
type Answerer interface {
	Answer(ctx context.Context, query string) (chat.Response, error)
}

// Server exposes the retrieval and answer workflows over HTTP.
type Server struct {
	retriever Retriever
	answers   Answerer
	queries   chat.QueryLog
	logger    *log.Logger
	handler   http.Handler
}

type queryRequest struct {
	Query any `json:"query"`
}

type errorResponse struct {
	OK           bool   `json:"ok"`
	ErrorMessage string `json:"errorMessage"`
}

type healthResponse struct {
	OK bool `json:"ok"`
}

type retrieveResponse struct {
	OK      bool              `json:"ok"`
	Steps   []retrieval.Stage `json:"steps"`
	Query   string            `json:"query"`
	Results []retrieval.Match `json:"results"`
}

type answerResponse struct {
	OK      bool              `json:"ok"`
	Steps   []retrieval.Stage `json:"steps"`
	Query   string            `json:"query"`
	Results []retrieval.Match `json:"results"`
	Answer  string            `json:"answer"`
}

type documentsResponse struct {
	OK        bool           `json:"ok"`
	Documents []documentInfo `json:"documents"`
}

type documentInfo struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	RelativePath string `json:"relativePath"`
}

// New constructs a Server. A nil query log drops records.
func New(retriever Retriever, answers Answerer, queries chat.QueryLog, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if queries == nil {
		queries = chat.NopQueryLog{}
	}

	s := &Server{retriever: retriever, answers: answers, queries: queries, logger: logger}
	s.handler = s.withRequestLog(s.withRecovery(s.routes()))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/studio/retrieve", s.handleRetrieve)
	mux.HandleFunc("/api/studio/answer", s.handleAnswer)
	mux.HandleFunc("/api/studio/documents", s.handleDocuments)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}

	s.writeJSON(w, http.StatusOK, healthResponse{OK: true})
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	query, ok := s.readQuery(w, r)
	if !ok {
		return
	}

	started := time.Now()
	result, err := s.retriever.Retrieve(r.Context(), query)
	s.record(r.Context(), chat.QueryRecord{
		Endpoint:     "retrieve",
		Query:        query,
		ResultCount:  len(result.Results),
		ErrorMessage: errorText(err),
		Duration:     time.Since(started),
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusOK, retrieveResponse{
		OK:      true,
		Steps:   result.Steps,
		Query:   query,
		Results: nonNilMatches(result.Results),
	})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	query, ok := s.readQuery(w, r)
	if !ok {
		return
	}

	started := time.Now()
	resp, err := s.answers.Answer(r.Context(), query)
	s.record(r.Context(), chat.QueryRecord{
		Endpoint:     "answer",
		Query:        query,
		ResultCount:  len(resp.Results),
		Provider:     string(resp.Provider),
		Model:        resp.Model,
		ErrorMessage: errorText(err),
		Duration:     time.Since(started),
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusOK, answerResponse{
		OK:      true,
		Steps:   resp.Steps,
		Query:   resp.Query,
		Results: nonNilMatches(resp.Results),
		Answer:  resp.Answer,
	})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}

	docs, err := s.retriever.Documents(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("list documents: %w", err))
		return
	}

	infos := make([]documentInfo, len(docs))
	for i, doc := range docs {
		infos[i] = documentInfo{ID: doc.ID, Title: doc.Title, RelativePath: doc.RelativePath}
	}
	s.writeJSON(w, http.StatusOK, documentsResponse{OK: true, Documents: infos})
}

// readQuery decodes and validates the request query. It writes the error
// response itself and reports false when the handler must stop.
func (s *Server) readQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return "", false
	}

	var req queryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return "", false
	}

	query, _ := req.Query.(string)
	query = strings.TrimSpace(query)

	if err := s.retriever.Validate(query); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return "", false
	}
	return query, true
}

func (s *Server) record(ctx context.Context, rec chat.QueryRecord) {
	if err := s.queries.Record(context.WithoutCancel(ctx), rec); err != nil {
		s.logger.Printf("record query: %v", err)
	}
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed, use %s", allowed))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Printf("api error (%d): %v", status, err)
	s.writeJSON(w, status, errorResponse{OK: false, ErrorMessage: errorMessage(err)})
}

// errorMessage picks the message shown to users. Provider and configuration
// errors are reported verbatim, without the wrapping added on the way up.
func errorMessage(err error) string {
	if err == nil {
		return unknownErrorMessage
	}

	var cfgErr *llm.ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Error()
	}
	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return unknownErrorMessage
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return errorMessage(err)
}

func nonNilMatches(matches []retrieval.Match) []retrieval.Match {
	if matches == nil {
		return []retrieval.Match{}
	}
	return matches
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}

	if dec.More() {
		return fmt.Errorf("request body must contain a single JSON object")
	}

	return nil
}
