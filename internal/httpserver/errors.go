package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cburgosro9303/vortex-config/internal/vortexerr"
)

var (
	errLabelTraversal   = errors.New("label cannot contain '..'")
	errLabelControlChar = errors.New("label cannot contain control characters")
)

// errorResponse is the JSON body written for every non-2xx response,
// per spec.md §7.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusForError maps the source-layer error taxonomy to an HTTP
// status, per spec.md §7: NotFound-family -> 404, validation -> 400,
// everything else -> 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, errLabelTraversal), errors.Is(err, errLabelControlChar):
		return http.StatusBadRequest
	}
	verr, ok := vortexerr.As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch verr.Kind {
	case vortexerr.KindApplicationNotFound, vortexerr.KindProfileNotFound, vortexerr.KindLabelNotFound:
		return http.StatusNotFound
	case vortexerr.KindParse, vortexerr.KindInvalidConfig, vortexerr.KindUnsupportedFormat:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes the {error, message} body spec.md §7 requires,
// classifying err's HTTP status via statusForError.
func writeError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	kind := "Error"
	if verr, ok := vortexerr.As(err); ok {
		kind = verr.Kind.String()
	} else if errors.Is(err, errLabelTraversal) || errors.Is(err, errLabelControlChar) {
		kind = "InvalidLabel"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: kind, Message: err.Error()})
}
