package resources

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"educate/internal/contextutils"
	"educate/internal/models"
	"educate/internal/response"
	"educate/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing; larger
// file parts spill to disk.
const maxUploadMemory = 16 << 20

// Controller handles resource endpoints.
type Controller struct {
	services        *services.Collection
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewController creates the resources controller.
func NewController(collection *services.Collection, logger *zap.Logger, builder *response.Builder) *Controller {
	return &Controller{
		services:        collection,
		logger:          logger,
		responseBuilder: builder,
	}
}

// ===============================
// LISTING AND DETAIL
// ===============================

// List handles GET /api/resources
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &services.ListResourcesRequest{
		Filter: models.ResourceFilter{
			Category:   query.Get("category"),
			Type:       models.ResourceType(query.Get("type")),
			Subject:    query.Get("subject"),
			Semester:   query.Get("semester"),
			Difficulty: models.Difficulty(query.Get("difficulty")),
			Search:     query.Get("search"),
		},
		Pagination: response.ParsePagination(r),
		ViewerID:   contextutils.GetUserID(r.Context()),
	}
	if raw := query.Get("author"); raw != "" {
		if authorID, err := strconv.ParseInt(raw, 10, 64); err == nil && authorID > 0 {
			req.Filter.AuthorID = authorID
		}
	}

	page, err := c.services.Resources.List(r.Context(), req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, "", response.Payload{
		"resources":  page.Data,
		"pagination": page.Pagination,
	})
}

// Get handles GET /api/resources/{id}
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathID(w, r, "id")
	if !ok {
		return
	}

	resource, err := c.services.Resources.View(r.Context(), id, contextutils.GetUserID(r.Context()))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, "", response.Payload{
		"resource": resource,
	})
}

// MyResources handles GET /api/resources/user/my-resources
func (c *Controller) MyResources(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())

	page, err := c.services.Resources.ListByAuthor(r.Context(), userID, response.ParsePagination(r))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, "", response.Payload{
		"resources":  page.Data,
		"pagination": page.Pagination,
	})
}

// ===============================
// LIFECYCLE
// ===============================

// Create handles POST /api/resources. Submissions with files arrive as
// multipart forms; link-only submissions may be plain JSON.
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())

	req, err := c.parseCreateRequest(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	resource, err := c.services.Resources.Create(r.Context(), userID, req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteCreated(w, r, "Resource created", response.Payload{
		"resource": resource,
	})
}

// Update handles PUT /api/resources/{id}
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathID(w, r, "id")
	if !ok {
		return
	}
	actor := contextutils.GetUser(r.Context())

	var req services.UpdateResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	resource, err := c.services.Resources.Update(r.Context(), id, actor, &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, "Resource updated", response.Payload{
		"resource": resource,
	})
}

// Delete handles DELETE /api/resources/{id}
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathID(w, r, "id")
	if !ok {
		return
	}
	actor := contextutils.GetUser(r.Context())

	if err := c.services.Resources.Delete(r.Context(), id, actor); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, "Resource deleted", nil)
}

// ===============================
// ENGAGEMENT
// ===============================

// Vote handles POST /api/resources/{id}/vote
func (c *Controller) Vote(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathID(w, r, "id")
	if !ok {
		return
	}
	userID := contextutils.GetUserID(r.Context())

	var req services.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	outcome, err := c.services.Resources.Vote(r.Context(), id, userID, &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, "Vote recorded", response.Payload{
		"votes":    outcome.Votes,
		"userVote": outcome.UserVote,
	})
}

// Bookmark handles POST /api/resources/{id}/bookmark
func (c *Controller) Bookmark(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathID(w, r, "id")
	if !ok {
		return
	}
	userID := contextutils.GetUserID(r.Context())

	outcome, err := c.services.Resources.ToggleBookmark(r.Context(), id, userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	message := "Bookmark removed"
	if outcome.Bookmarked {
		message = "Resource bookmarked"
	}
	c.responseBuilder.WriteSuccess(w, r, message, response.Payload{
		"isBookmarked":  outcome.Bookmarked,
		"bookmarkCount": outcome.BookmarkCount,
	})
}

// AddComment handles POST /api/resources/{id}/comments
func (c *Controller) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathID(w, r, "id")
	if !ok {
		return
	}
	userID := contextutils.GetUserID(r.Context())

	var req services.CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("Invalid request body", err))
		return
	}

	comment, err := c.services.Resources.AddComment(r.Context(), id, userID, &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteCreated(w, r, "Comment added", response.Payload{
		"comment": comment,
	})
}

// ListComments handles GET /api/resources/{id}/comments
func (c *Controller) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathID(w, r, "id")
	if !ok {
		return
	}

	page, err := c.services.Resources.ListComments(r.Context(), id, response.ParsePagination(r))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, "", response.Payload{
		"comments":   page.Data,
		"pagination": page.Pagination,
	})
}

// Download handles GET /api/resources/{id}/download/{fileId}
func (c *Controller) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := c.pathID(w, r, "id")
	if !ok {
		return
	}
	fileID, ok := c.pathID(w, r, "fileId")
	if !ok {
		return
	}

	outcome, err := c.services.Resources.Download(r.Context(), id, fileID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, "", response.Payload{
		"fileName":    outcome.FileName,
		"downloadUrl": outcome.DownloadURL,
		"mimeType":    outcome.MimeType,
	})
}

// ===============================
// PARSING HELPERS
// ===============================

func (c *Controller) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		c.responseBuilder.WriteError(w, r,
			services.NewValidationError("Invalid "+name+" parameter", err))
		return 0, false
	}
	return id, true
}

func (c *Controller) parseCreateRequest(r *http.Request) (*services.CreateResourceRequest, error) {
	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if contentType == "application/json" {
		var req services.CreateResourceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, services.NewValidationError("Invalid request body", err)
		}
		return &req, nil
	}

	if !strings.HasPrefix(contentType, "multipart/") {
		return nil, services.NewValidationError("Expected JSON or multipart form data", nil)
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, services.NewValidationError("Invalid multipart form", err)
	}

	req := &services.CreateResourceRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Type:        models.ResourceType(r.FormValue("type")),
		Category:    r.FormValue("category"),
		Subject:     r.FormValue("subject"),
	}
	if semester := r.FormValue("semester"); semester != "" {
		req.Semester = &semester
	}
	if difficulty := r.FormValue("difficulty"); difficulty != "" {
		req.Difficulty = models.Difficulty(difficulty)
	}

	// Tags and links arrive as JSON-encoded form fields.
	if tags := r.FormValue("tags"); tags != "" {
		if err := json.Unmarshal([]byte(tags), &req.Tags); err != nil {
			return nil, services.NewValidationError("Invalid tags field", err)
		}
	}
	if links := r.FormValue("externalLinks"); links != "" {
		if err := json.Unmarshal([]byte(links), &req.Links); err != nil {
			return nil, services.NewValidationError("Invalid externalLinks field", err)
		}
	}

	if r.MultipartForm != nil {
		req.Files = r.MultipartForm.File["files"]
	}
	return req, nil
}
