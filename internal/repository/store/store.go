// Package store opens the document store selected by configuration.
package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/livestock/internal/config"
	"github.com/mamadbah2/livestock/internal/domain/models"
	"github.com/mamadbah2/livestock/internal/repository"
	"github.com/mamadbah2/livestock/internal/repository/memory"
	"github.com/mamadbah2/livestock/internal/repository/mongodb"
)

// Open connects to the configured driver and ensures the unique indexes the
// services rely on.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var s repository.Store
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		s = memory.New()
	case config.DriverMongoDB:
		repo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, logger.Named("repo.mongodb"))
		if err != nil {
			return nil, err
		}
		s = repo
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}

	if err := s.EnsureUnique(ctx, models.CollectionUsers, "email"); err != nil {
		_ = s.Close(ctx)
		return nil, fmt.Errorf("ensure unique user email: %w", err)
	}
	return s, nil
}
