package waitlist

import (
	"context"
	"errors"

	"github.com/gazon-app/waitlist/internal/models"
	apperrors "github.com/gazon-app/waitlist/pkg/errors"
)

//go:generate mockgen -source=store.go -destination=mock_store.go -package=waitlist

// InsertOutcome is the non-failure result of an append-if-absent insert.
type InsertOutcome int

const (
	OutcomeInserted InsertOutcome = iota + 1
	OutcomeDuplicate
)

func (o InsertOutcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

var ErrStoreUnavailable = errors.New("waitlist store unavailable")

// WaitlistStore inserts an email at most once. A non-nil error is a failure; the
// outcome is only meaningful when the error is nil. Implementations never retry.
type WaitlistStore interface {
	Insert(ctx context.Context, email string) (InsertOutcome, error)
	Ping(ctx context.Context) error
}

type sqlStore struct {
	repository WaitlistRepository
}

// NewSQLStore adapts a repository so the uniqueness violation becomes OutcomeDuplicate.
func NewSQLStore(repository WaitlistRepository) WaitlistStore {
	return &sqlStore{repository: repository}
}

func (s *sqlStore) Insert(ctx context.Context, email string) (InsertOutcome, error) {
	_, err := s.repository.CreateEntry(ctx, &models.WaitlistEntry{Email: email})
	switch {
	case err == nil:
		return OutcomeInserted, nil
	case apperrors.IsConflict(err):
		return OutcomeDuplicate, nil
	default:
		return 0, err
	}
}

func (s *sqlStore) Ping(ctx context.Context) error {
	return s.repository.Ping(ctx)
}
