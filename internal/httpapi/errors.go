package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"

	"sangkhep/internal/article"
	"sangkhep/internal/domain"
	"sangkhep/internal/qa"
	"sangkhep/internal/session"
	"sangkhep/internal/summarizer"
)

const (
	kindBadRequest      = "bad_request"
	kindValidation      = "validation"
	kindNotFound        = "not_found"
	kindEmptyExtraction = "empty_extraction"
	kindEmptyResult     = "empty_result"
	kindFetch           = "fetch"
	kindBackendHTTP     = "backend_http"
	kindBackendNetwork  = "backend_network"
	kindBackendDecode   = "backend_decode"
	kindProvider        = "provider"
	kindInternal        = "internal"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Body  string `json:"body,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := classify(err)

	if status >= http.StatusInternalServerError {
		s.log.WarnContext(r.Context(), "Request failed",
			"error", err,
			"status", status,
			"kind", resp.Kind,
			"path", r.URL.Path)
	}

	s.writeJSON(w, r, status, resp)
}

// classify maps an orchestrator error to an HTTP status and a typed body.
func classify(err error) (int, errorResponse) {
	resp := errorResponse{Error: err.Error()}

	var (
		fetchErr     *article.FetchError
		httpErr      *summarizer.HTTPError
		networkErr   *summarizer.NetworkError
		decodeErr    *summarizer.DecodeError
		transportErr *qa.TransportError
	)

	switch {
	case session.IsValidation(err):
		resp.Kind = kindValidation
		return http.StatusBadRequest, resp
	case errors.Is(err, domain.ErrSessionNotFound):
		resp.Kind = kindNotFound
		return http.StatusNotFound, resp
	case errors.Is(err, session.ErrEmptyExtraction):
		resp.Kind = kindEmptyExtraction
		return http.StatusUnprocessableEntity, resp
	case errors.Is(err, summarizer.ErrEmptyResult):
		resp.Kind = kindEmptyResult
		return http.StatusUnprocessableEntity, resp
	case errors.As(err, &fetchErr):
		resp.Kind = kindFetch
		return upstreamStatus(err), resp
	case errors.As(err, &httpErr):
		resp.Kind = kindBackendHTTP
		resp.Body = httpErr.Body
		return http.StatusBadGateway, resp
	case errors.As(err, &networkErr):
		resp.Kind = kindBackendNetwork
		return upstreamStatus(err), resp
	case errors.As(err, &decodeErr):
		resp.Kind = kindBackendDecode
		resp.Body = decodeErr.Body
		return http.StatusBadGateway, resp
	case errors.As(err, &transportErr):
		resp.Kind = kindProvider
		return upstreamStatus(err), resp
	default:
		resp.Kind = kindInternal
		return http.StatusInternalServerError, resp
	}
}

func upstreamStatus(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return http.StatusGatewayTimeout
	}

	return http.StatusBadGateway
}
