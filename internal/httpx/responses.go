package httpx

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Envelope statuses.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// Response is the body of every JSON reply.
type Response struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// ErrMalformedJSON is returned by ReadJSON when the body is not a single JSON value.
var ErrMalformedJSON = errors.New("malformed JSON body")

// ErrBodyTooLarge is returned by ReadJSON when the body exceeds the limit set
// by RequestSizeLimitMiddleware.
var ErrBodyTooLarge = errors.New("request body too large")

func buildMeta(r *http.Request) map[string]any {
	if r == nil {
		return nil
	}
	requestID := RequestIDFrom(r)
	if requestID == "" {
		return nil
	}
	return map[string]any{"request_id": requestID}
}

func writeJSON(w http.ResponseWriter, statusCode int, resp Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

// JSONSuccess writes a "success" envelope.
func JSONSuccess(w http.ResponseWriter, r *http.Request, statusCode int, message string, data any) {
	writeJSON(w, statusCode, Response{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
		Meta:    buildMeta(r),
	})
}

// JSONFail writes a "fail" envelope for errors caused by the client.
func JSONFail(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	writeJSON(w, statusCode, Response{
		Status:  StatusFail,
		Message: message,
		Meta:    buildMeta(r),
	})
}

// JSONError writes an "error" envelope for server-side failures.
func JSONError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	writeJSON(w, statusCode, Response{
		Status:  StatusError,
		Message: message,
		Meta:    buildMeta(r),
	})
}

// ReadJSON decodes exactly one JSON value from the request body into dst.
// An empty body leaves dst untouched.
func ReadJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errors.Join(ErrBodyTooLarge, err)
		}
		return errors.Join(ErrMalformedJSON, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if !json.Valid(data) {
		return ErrMalformedJSON
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return errors.Join(ErrMalformedJSON, err)
	}
	return nil
}

// BodyTooLarge writes the 413 reply used for oversized request bodies.
func BodyTooLarge(w http.ResponseWriter, r *http.Request) {
	JSONFail(w, r, http.StatusRequestEntityTooLarge, "Request body too large")
}

// NotFound is the router fallback for unknown paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	JSONFail(w, r, http.StatusNotFound, "The requested resource could not be found")
}

// MethodNotAllowed is the router fallback for known paths with an unsupported method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	JSONFail(w, r, http.StatusMethodNotAllowed, "The "+r.Method+" method is not supported for this resource")
}
