package repositories

import (
	"educate/internal/config"
	"educate/internal/database"

	"go.uber.org/zap"
)

// Collection bundles all repositories for dependency injection.
type Collection struct {
	Users     UserRepository
	Resources ResourceRepository
}

// NewCollection wires every repository against one database manager.
func NewCollection(manager *database.Manager, cfg *config.DatabaseConfig, logger *zap.Logger) *Collection {
	return &Collection{
		Users:     NewUserRepository(manager, logger, cfg.SlowQueryThreshold),
		Resources: NewResourceRepository(manager, logger, cfg.SlowQueryThreshold),
	}
}
