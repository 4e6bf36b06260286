package users

import (
	"encoding/json"
	"net/http"
	"strconv"

	"educate/internal/contextutils"
	"educate/internal/models"
	"educate/internal/response"
	"educate/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Controller handles user profile and community endpoints.
type Controller struct {
	services        *services.Collection
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewController creates the users controller.
func NewController(collection *services.Collection, logger *zap.Logger, builder *response.Builder) *Controller {
	return &Controller{
		services:        collection,
		logger:          logger,
		responseBuilder: builder,
	}
}

// GetProfile handles GET /api/users/{id}
func (c *Controller) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathID(w, r)
	if !ok {
		return
	}

	profile, err := c.services.Users.GetProfile(r.Context(), id)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, "", response.Payload{
		"user":            profile.User,
		"stats":           profile.Stats,
		"recentResources": profile.RecentResources,
	})
}

// UpdateProfile handles PUT /api/users/profile
func (c *Controller) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())

	var req services.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	user, err := c.services.Users.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, "Profile updated", response.Payload{
		"user": user,
	})
}

// Search handles GET /api/users
func (c *Controller) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := models.UserFilter{
		Search:     query.Get("search"),
		University: query.Get("university"),
		Course:     query.Get("course"),
	}

	page, err := c.services.Users.Search(r.Context(), filter, response.ParsePagination(r))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, "", response.Payload{
		"users":      page.Data,
		"pagination": page.Pagination,
	})
}

// Leaderboard handles GET /api/users/leaderboard/top
func (c *Controller) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	entries, err := c.services.Users.GetLeaderboard(r.Context(), limit)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, "", response.Payload{
		"leaderboard": entries,
	})
}

// Dashboard handles GET /api/users/dashboard/stats
func (c *Controller) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())

	dashboard, err := c.services.Users.GetDashboard(r.Context(), userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, "", response.Payload{
		"stats":           dashboard.Stats,
		"recentResources": dashboard.RecentResources,
		"recentBookmarks": dashboard.RecentBookmarks,
	})
}

// MyBookmarks handles GET /api/users/me/bookmarks. Bookmark lists are
// private, so only the authenticated user's own list is reachable.
func (c *Controller) MyBookmarks(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())

	page, err := c.services.Users.GetBookmarks(r.Context(), userID, response.ParsePagination(r))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, "", response.Payload{
		"resources":  page.Data,
		"pagination": page.Pagination,
	})
}

// GetUploads handles GET /api/users/{id}/uploads. Only approved resources
// are listed, whoever asks.
func (c *Controller) GetUploads(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathID(w, r)
	if !ok {
		return
	}

	page, err := c.services.Resources.List(r.Context(), &services.ListResourcesRequest{
		Filter:     models.ResourceFilter{AuthorID: id, Status: models.StatusApproved},
		Pagination: response.ParsePagination(r),
		ViewerID:   contextutils.GetUserID(r.Context()),
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, "", response.Payload{
		"resources":  page.Data,
		"pagination": page.Pagination,
	})
}

func (c *Controller) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		c.responseBuilder.WriteError(w, r,
			services.NewValidationError("Invalid id parameter", err))
		return 0, false
	}
	return id, true
}
