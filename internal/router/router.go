package router

import (
	"net/http"

	"educate/internal/cache"
	"educate/internal/config"
	"educate/internal/database"
	"educate/internal/handlers/api/auth"
	"educate/internal/handlers/api/health"
	"educate/internal/handlers/api/resources"
	"educate/internal/handlers/api/users"
	"educate/internal/middleware"
	"educate/internal/response"
	"educate/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Dependencies carries everything the router needs to wire handlers.
type Dependencies struct {
	Config   *config.Config
	Services *services.Collection
	Database *database.Manager
	Cache    cache.Cache
	Logger   *zap.Logger
}

// New builds the HTTP handler with the full middleware chain and route table.
func New(deps *Dependencies) http.Handler {
	builder := response.NewBuilder(deps.Logger)

	authController := auth.NewController(deps.Services, deps.Logger, builder)
	resourcesController := resources.NewController(deps.Services, deps.Logger, builder)
	usersController := users.NewController(deps.Services, deps.Logger, builder)
	healthController := health.NewController(deps.Database, deps.Cache, deps.Logger, builder)

	requireAuth := middleware.RequireAuth(deps.Services.Auth, builder)
	optionalAuth := middleware.OptionalAuth(deps.Services.Auth)
	authLimit := middleware.RateLimit(deps.Cache, middleware.AuthRateLimit(), builder, deps.Logger)

	r := mux.NewRouter()
	r.NotFoundHandler = notFound(builder)
	r.MethodNotAllowedHandler = methodNotAllowed(builder)

	api := r.PathPrefix("/api").Subrouter()

	// Health
	api.HandleFunc("/health", healthController.Check).Methods(http.MethodGet)

	// Auth
	api.Handle("/auth/register", authLimit(http.HandlerFunc(authController.Register))).Methods(http.MethodPost)
	api.Handle("/auth/login", authLimit(http.HandlerFunc(authController.Login))).Methods(http.MethodPost)
	api.Handle("/auth/me", requireAuth(http.HandlerFunc(authController.Me))).Methods(http.MethodGet)

	// Resources
	api.Handle("/resources", optionalAuth(http.HandlerFunc(resourcesController.List))).Methods(http.MethodGet)
	api.Handle("/resources", requireAuth(http.HandlerFunc(resourcesController.Create))).Methods(http.MethodPost)
	api.Handle("/resources/user/my-resources", requireAuth(http.HandlerFunc(resourcesController.MyResources))).Methods(http.MethodGet)
	api.Handle("/resources/{id:[0-9]+}", optionalAuth(http.HandlerFunc(resourcesController.Get))).Methods(http.MethodGet)
	api.Handle("/resources/{id:[0-9]+}", requireAuth(http.HandlerFunc(resourcesController.Update))).Methods(http.MethodPut)
	api.Handle("/resources/{id:[0-9]+}", requireAuth(http.HandlerFunc(resourcesController.Delete))).Methods(http.MethodDelete)
	api.Handle("/resources/{id:[0-9]+}/vote", requireAuth(http.HandlerFunc(resourcesController.Vote))).Methods(http.MethodPost)
	api.Handle("/resources/{id:[0-9]+}/bookmark", requireAuth(http.HandlerFunc(resourcesController.Bookmark))).Methods(http.MethodPost)
	api.Handle("/resources/{id:[0-9]+}/comments", http.HandlerFunc(resourcesController.ListComments)).Methods(http.MethodGet)
	api.Handle("/resources/{id:[0-9]+}/comments", requireAuth(http.HandlerFunc(resourcesController.AddComment))).Methods(http.MethodPost)
	api.Handle("/resources/{id:[0-9]+}/download/{fileId:[0-9]+}", http.HandlerFunc(resourcesController.Download)).Methods(http.MethodGet)

	// Users
	api.Handle("/users", http.HandlerFunc(usersController.Search)).Methods(http.MethodGet)
	api.Handle("/users/leaderboard/top", http.HandlerFunc(usersController.Leaderboard)).Methods(http.MethodGet)
	api.Handle("/users/dashboard/stats", requireAuth(http.HandlerFunc(usersController.Dashboard))).Methods(http.MethodGet)
	api.Handle("/users/me/bookmarks", requireAuth(http.HandlerFunc(usersController.MyBookmarks))).Methods(http.MethodGet)
	api.Handle("/users/profile", requireAuth(http.HandlerFunc(usersController.UpdateProfile))).Methods(http.MethodPut)
	api.Handle("/users/{id:[0-9]+}", http.HandlerFunc(usersController.GetProfile)).Methods(http.MethodGet)
	api.Handle("/users/{id:[0-9]+}/uploads", optionalAuth(http.HandlerFunc(usersController.GetUploads))).Methods(http.MethodGet)

	// Outer middleware chain, innermost first.
	var handler http.Handler = r
	handler = middleware.RateLimit(deps.Cache, middleware.DefaultRateLimit(), builder, deps.Logger)(handler)
	handler = middleware.StructuredLogging(deps.Logger)(handler)
	handler = middleware.Recovery(deps.Logger, builder)(handler)
	handler = middleware.CORS(deps.Config.Server.FrontendURL)(handler)
	handler = middleware.SecurityHeaders()(handler)
	handler = middleware.RequestID()(handler)
	return handler
}

func notFound(builder *response.Builder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		builder.WriteStatus(w, r, http.StatusNotFound, false, "Route not found", nil)
	})
}

func methodNotAllowed(builder *response.Builder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		builder.WriteStatus(w, r, http.StatusMethodNotAllowed, false, "Method not allowed", nil)
	})
}
