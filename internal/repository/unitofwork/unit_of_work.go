package unitofwork

import (
	"context"

	"lola-discovery-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SessionRepository() contract.SessionRepository
	AnswerRepository() contract.AnswerRepository
}
