package contract

import (
	"context"

	"lola-discovery-be/internal/entity"
	"lola-discovery-be/internal/repository/specification"
)

type AnswerRepository interface {
	// Upsert inserts the answer or overwrites the one stored for the same (session, question).
	Upsert(ctx context.Context, answer *entity.Answer) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Answer, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Answer, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
