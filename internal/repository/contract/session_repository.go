package contract

import (
	"context"
	"time"

	"lola-discovery-be/internal/entity"
	"lola-discovery-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SessionRepository interface {
	// Create inserts the session, returning ErrAlreadyExists if the id is taken.
	Create(ctx context.Context, session *entity.Session) error
	// Update writes the mutable fields of an in-progress session. It returns
	// ErrNoRows when no in-progress session with that id exists.
	Update(ctx context.Context, session *entity.Session) error
	// Delete removes the session with id that also matches specs, then its
	// answers. It reports false when no such session exists.
	Delete(ctx context.Context, id uuid.UUID, specs ...specification.Specification) (bool, error)
	// DeleteStale removes in-progress sessions idle since before cutoff, with
	// their answers. The predicate is re-applied by the delete itself.
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error)
	FindAllWithAnswerCount(ctx context.Context, specs ...specification.Specification) ([]*entity.SessionListItem, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
