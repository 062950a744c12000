package chi

import (
	"errors"
	"net/http"

	"github.com/travellive/tourquery/internal/domain"
)

// Response codes that are not search error kinds.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeUnauthorized     = "unauthorized"
	codeNotFound         = "not_found"
	codeMethodNotAllowed = "method_not_allowed"
	codeInternalError    = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// kindStatus maps each search error kind to its HTTP status.
var kindStatus = []struct {
	kind   error
	status int
}{
	{domain.ErrConfiguration, http.StatusInternalServerError},
	{domain.ErrDatabaseUnreachable, http.StatusServiceUnavailable},
	{domain.ErrEmbeddingProviderUnavailable, http.StatusBadGateway},
	{domain.ErrIndexIntrospectionFailed, http.StatusBadGateway},
	{domain.ErrSearchIndexMissing, http.StatusServiceUnavailable},
	{domain.ErrSearchExecutionFailed, http.StatusBadGateway},
}

func kindHandlers() []errorHandler {
	handlers := make([]errorHandler, len(kindStatus))
	for i, ks := range kindStatus {
		handlers[i] = kindHandler(ks.kind, ks.status)
	}
	return handlers
}

// kindHandler returns an errorHandler that matches a single error kind. Only the
// sanitized message and hint reach the body.
func kindHandler(kind error, status int) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, kind) {
			return false
		}
		var se *domain.SearchError
		if !errors.As(err, &se) {
			se = &domain.SearchError{Kind: kind}
		}
		writeJSON(w, status, ErrorResponse{
			Code:    domain.Code(se),
			Message: se.Message(),
			Hint:    se.Hint(),
		})
		return true
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
