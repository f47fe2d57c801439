package shared

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/platform/logger"
	"github.com/phrazzld/todo-api/internal/redact"
)

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the body of every API response.
type Envelope struct {
	Data    any    `json:"data"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Errors  any    `json:"errors,omitempty"`
	Meta    any    `json:"meta,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// FieldErrors renders validation failures as a JSON object keyed by field, with
// fields in the order their first failure was detected.
type FieldErrors []domain.FieldError

// MarshalJSON implements json.Marshaler.
func (f FieldErrors) MarshalJSON() ([]byte, error) {
	var order []string
	grouped := make(map[string][]string)
	for _, fe := range f {
		if _, seen := grouped[fe.Field]; !seen {
			order = append(order, fe.Field)
		}
		grouped[fe.Field] = append(grouped[fe.Field], fe.Message)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field)
		if err != nil {
			return nil, err
		}
		msgs, err := json.Marshal(grouped[field])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(msgs)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ResponseOption customizes error response logging.
type ResponseOption func(*responseOptions)

type responseOptions struct {
	elevateLogLevel bool
}

// WithElevatedLogLevel logs a 4xx response at WARN instead of DEBUG.
func WithElevatedLogLevel() ResponseOption {
	return func(opts *responseOptions) {
		opts.elevateLogLevel = true
	}
}

// RespondWithJSON writes v as JSON with the given status code.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode JSON response", "error", err)
	}
}

// RespondSuccess writes a success envelope.
func RespondSuccess(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	RespondWithJSON(w, r, status, Envelope{
		Data:    data,
		Status:  StatusSuccess,
		Message: message,
	})
}

// RespondSuccessWithMeta writes a success envelope carrying list metadata.
func RespondSuccessWithMeta(w http.ResponseWriter, r *http.Request, status int, message string, data, meta any) {
	RespondWithJSON(w, r, status, Envelope{
		Data:    data,
		Status:  StatusSuccess,
		Message: message,
		Meta:    meta,
	})
}

// RespondWithError writes an error envelope with no detail.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	RespondWithErrorAndLog(w, r, status, message, nil, nil)
}

// RespondWithErrorAndLog writes an error envelope and logs err in redacted form.
// details, when non-nil, is sent to the client in the errors member.
//
// Log levels: 5xx at ERROR, 429 at WARN, other statuses at DEBUG unless
// WithElevatedLogLevel is given.
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	message string,
	details any,
	err error,
	opts ...ResponseOption,
) {
	traceID := GetTraceID(r.Context())

	attrs := []slog.Attr{
		slog.String("trace_id", traceID),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("user_message", message),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	options := responseOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	level := slog.LevelDebug
	switch {
	case status >= http.StatusInternalServerError:
		level = slog.LevelError
	case status == http.StatusTooManyRequests:
		level = slog.LevelWarn
	case options.elevateLogLevel && status >= http.StatusBadRequest:
		level = slog.LevelWarn
	}
	logger.FromContext(r.Context()).LogAttrs(r.Context(), level, "API error response", attrs...)

	RespondWithJSON(w, r, status, Envelope{
		Status:  StatusError,
		Message: message,
		Errors:  details,
		TraceID: traceID,
	})
}
