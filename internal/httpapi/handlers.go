package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"sangkhep/internal/domain"
	"sangkhep/internal/session"

	"github.com/gorilla/mux"
)

const maxRequestBytes = 1 << 20

type sessionResponse struct {
	ID          string    `json:"id"`
	InputText   string    `json:"input_text"`
	Summary     string    `json:"summary"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type fetchRequest struct {
	URL string `json:"url"`
}

type fetchResponse struct {
	Text string `json:"text"`
}

type summarizeRequest struct {
	Endpoint    string   `json:"endpoint"`
	Text        string   `json:"text"`
	MaxTokens   *int     `json:"max_tokens"`
	Temperature *float64 `json:"temperature"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

type askRequest struct {
	Question string `json:"question"`
	APIKey   string `json:"api_key"`
	Model    string `json:"model"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

type optionsRequest struct {
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Open(r.Context(), s.newID())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusCreated, toSessionResponse(sess))
}

func (s *Server) getSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, toSessionResponse(sess))
}

func (s *Server) deleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Reset(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) fetchHandler(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if !s.decode(w, r, &req) {
		return
	}

	text, err := s.sessions.Fetch(r.Context(), mux.Vars(r)["id"], req.URL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, fetchResponse{Text: text})
}

func (s *Server) summarizeHandler(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if !s.decode(w, r, &req) {
		return
	}

	id := mux.Vars(r)["id"]
	params := session.SummarizeParams{
		Endpoint: req.Endpoint,
		Text:     req.Text,
	}

	if req.MaxTokens != nil || req.Temperature != nil {
		sess, err := s.sessions.Get(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		options := sess.Options
		if req.MaxTokens != nil {
			options.MaxTokens = *req.MaxTokens
		}
		if req.Temperature != nil {
			options.Temperature = *req.Temperature
		}

		params.Options = &options
	}

	summary, err := s.sessions.Summarize(r.Context(), id, params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, summarizeResponse{Summary: summary})
}

func (s *Server) askHandler(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !s.decode(w, r, &req) {
		return
	}

	answer, err := s.sessions.Ask(r.Context(), mux.Vars(r)["id"], session.AskParams{
		Question: req.Question,
		APIKey:   req.APIKey,
		Model:    req.Model,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, askResponse{Answer: answer})
}

func (s *Server) optionsHandler(w http.ResponseWriter, r *http.Request) {
	var req optionsRequest
	if !s.decode(w, r, &req) {
		return
	}

	id := mux.Vars(r)["id"]
	if err := s.sessions.SetOptions(r.Context(), id, domain.Options{
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.getSessionHandler(w, r)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		s.writeJSON(w, r, http.StatusBadRequest, errorResponse{
			Error: fmt.Sprintf("decode request body: %v", err),
			Kind:  kindBadRequest,
		})

		return false
	}

	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.ErrorContext(r.Context(), "Failed to encode response",
			"error", err,
			"path", r.URL.Path)
	}
}

func toSessionResponse(sess *domain.Session) sessionResponse {
	return sessionResponse{
		ID:          sess.ID,
		InputText:   sess.InputText,
		Summary:     sess.Summary,
		MaxTokens:   sess.Options.MaxTokens,
		Temperature: sess.Options.Temperature,
		UpdatedAt:   sess.UpdatedAt,
	}
}
