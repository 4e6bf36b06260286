package response

import (
	"context"
	"encoding/json"
	"net/http"

	"educate/internal/contextutils"
	"educate/internal/services"

	"go.uber.org/zap"
)

// Payload carries the endpoint-specific keys of a response body.
type Payload map[string]interface{}

// Builder writes the flat API envelope every endpoint uses:
// {"success": bool, "message"?: string, "errors"?: {...}, <payload keys>...}.
type Builder struct {
	logger *zap.Logger
}

// NewBuilder creates a response builder.
func NewBuilder(logger *zap.Logger) *Builder {
	return &Builder{logger: logger}
}

// WriteSuccess writes a 200 envelope with the given payload keys.
func (b *Builder) WriteSuccess(w http.ResponseWriter, r *http.Request, message string, payload Payload) {
	b.write(w, r, http.StatusOK, true, message, nil, payload)
}

// WriteCreated writes a 201 envelope with the given payload keys.
func (b *Builder) WriteCreated(w http.ResponseWriter, r *http.Request, message string, payload Payload) {
	b.write(w, r, http.StatusCreated, true, message, nil, payload)
}

// WriteStatus writes an envelope with an explicit status code.
func (b *Builder) WriteStatus(w http.ResponseWriter, r *http.Request, status int, success bool, message string, payload Payload) {
	b.write(w, r, status, success, message, nil, payload)
}

// WriteError maps a service error onto its status code and failure envelope.
func (b *Builder) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	serviceErr := services.GetServiceError(err)

	if serviceErr.GetStatusCode() >= http.StatusInternalServerError {
		b.logger.Error("Request failed",
			zap.String("request_id", contextutils.GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		// Internal details never reach the client.
		b.write(w, r, serviceErr.GetStatusCode(), false, "Internal server error", nil, nil)
		return
	}

	var errors map[string]interface{}
	if len(serviceErr.Details) > 0 {
		errors = serviceErr.Details
	}
	b.write(w, r, serviceErr.GetStatusCode(), false, serviceErr.Message, errors, nil)
}

// WriteValidationError writes a 400 envelope with per-field messages.
func (b *Builder) WriteValidationError(w http.ResponseWriter, r *http.Request, message string, fields map[string]string) {
	errors := make(map[string]interface{}, len(fields))
	for field, msg := range fields {
		errors[field] = msg
	}
	b.write(w, r, http.StatusBadRequest, false, message, errors, nil)
}

func (b *Builder) write(w http.ResponseWriter, r *http.Request, status int, success bool, message string, errors map[string]interface{}, payload Payload) {
	body := make(map[string]interface{}, len(payload)+3)
	body["success"] = success
	if message != "" {
		body["message"] = message
	}
	if len(errors) > 0 {
		body["errors"] = errors
	}
	for key, value := range payload {
		body[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	if requestID := contextutils.GetRequestID(requestContext(r)); requestID != "" {
		w.Header().Set("X-Request-ID", requestID)
	}
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		b.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func requestContext(r *http.Request) context.Context {
	if r == nil {
		return context.Background()
	}
	return r.Context()
}
