package services

import (
	"educate/internal/cache"
	"educate/internal/config"
	"educate/internal/repositories"
	"educate/internal/utils"

	"go.uber.org/zap"
)

// Collection bundles every service for handler wiring.
type Collection struct {
	Auth      AuthService
	Users     UserService
	Resources ResourceService
}

// NewCollection wires the services against their repositories.
func NewCollection(
	repos *repositories.Collection,
	storage utils.FileStorage,
	cacheClient cache.Cache,
	cfg *config.Config,
	logger *zap.Logger,
) *Collection {
	return &Collection{
		Auth:      NewAuthService(repos.Users, &cfg.Auth, logger),
		Users:     NewUserService(repos.Users, repos.Resources, cacheClient, logger),
		Resources: NewResourceService(repos.Resources, repos.Users, storage, cacheClient, &cfg.Cloudinary, logger),
	}
}
