package waitlist

import (
	"context"
	"errors"

	"github.com/gazon-app/waitlist/internal/models"
	apperrors "github.com/gazon-app/waitlist/pkg/errors"
	"gorm.io/gorm"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=waitlist

type WaitlistRepository interface {
	// CreateEntry inserts the entry; a unique-constraint violation is returned as a CONFLICT AppError.
	CreateEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error)
	// Ping checks that the underlying database answers.
	Ping(ctx context.Context) error
}

type waitlistRepository struct {
	db *gorm.DB
}

func NewWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return &waitlistRepository{db: db}
}

func (wr *waitlistRepository) CreateEntry(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
	if entry == nil {
		return nil, apperrors.NewInvalidRequestError("waitlist entry cannot be nil", nil)
	}

	if err := wr.db.WithContext(ctx).Create(entry).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, apperrors.NewConflictError("waitlist entry with this email already exists", err)
		}
		return nil, apperrors.NewDatabaseError("unable to create waitlist entry", err)
	}

	return entry, nil
}

func (wr *waitlistRepository) Ping(ctx context.Context) error {
	sqlDB, err := wr.db.DB()
	if err != nil {
		return apperrors.NewDatabaseError("unable to access database handle", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperrors.NewDatabaseError("database ping failed", err)
	}
	return nil
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || apperrors.IsDuplicateKeyError(err)
}
