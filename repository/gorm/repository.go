package gorm

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/strandchat/strand/bus"
	"github.com/strandchat/strand/migration"
	"github.com/strandchat/strand/repository"
)

// Repository リポジトリ実装
type Repository struct {
	db     *gorm.DB
	bus    bus.Bus
	logger *zap.Logger
}

var _ repository.Repository = (*Repository)(nil)

// NewGormRepository リポジトリ実装を初期化して生成します
func NewGormRepository(db *gorm.DB, b bus.Bus, logger *zap.Logger, doMigration bool) (repo repository.Repository, init bool, err error) {
	r := &Repository{
		db:     db,
		bus:    b,
		logger: logger.Named("repository"),
	}
	if doMigration {
		if init, err = migration.Migrate(db); err != nil {
			return nil, false, err
		}
	}
	return r, init, nil
}

func convertError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	default:
		return err
	}
}
