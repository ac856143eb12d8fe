// Package responses writes JSON bodies and the uniform API error shape.
package responses

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// Error codes carried in the "error" field of an error body.
const (
	CodeNotFound         = "NOT_FOUND"
	CodeInvalidStrategy  = "INVALID_STRATEGY"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInternalError    = "INTERNAL_ERROR"
)

// InternalErrorMessage is the only text clients see for unexpected failures.
const InternalErrorMessage = "An internal server error occurred."

// ErrorBody is the JSON shape of every API error.
type ErrorBody struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
}

// JSON writes data with the given status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// Error writes an ErrorBody.
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorBody{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     code,
		Message:   message,
	})
}
