package auth

import (
	"encoding/json"
	"net/http"

	"educate/internal/contextutils"
	"educate/internal/response"
	"educate/internal/services"

	"go.uber.org/zap"
)

// Controller handles authentication endpoints.
type Controller struct {
	services        *services.Collection
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewController creates the auth controller.
func NewController(collection *services.Collection, logger *zap.Logger, builder *response.Builder) *Controller {
	return &Controller{
		services:        collection,
		logger:          logger,
		responseBuilder: builder,
	}
}

// Register handles POST /api/auth/register
func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	result, err := c.services.Auth.Register(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteCreated(w, r, "Registration successful", response.Payload{
		"user":  result.User,
		"token": result.Token,
	})
}

// Login handles POST /api/auth/login
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	result, err := c.services.Auth.Login(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, "Login successful", response.Payload{
		"user":  result.User,
		"token": result.Token,
	})
}

// Me handles GET /api/auth/me
func (c *Controller) Me(w http.ResponseWriter, r *http.Request) {
	user := contextutils.GetUser(r.Context())
	if user == nil {
		c.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("Authentication required"))
		return
	}

	c.responseBuilder.WriteSuccess(w, r, "", response.Payload{
		"user": user,
	})
}
