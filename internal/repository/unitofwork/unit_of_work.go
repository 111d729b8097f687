package unitofwork

import (
	"context"

	"classroom-ai-be/internal/repository/contract"
)

// UnitOfWork scopes repository calls to one transaction. The persistence
// stage relies on it for the all-or-nothing guarantee: bulk chunk insert and
// the terminal status flip either both land or neither does.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ContentRepository() contract.ContentRepository
	ChunkRepository() contract.ChunkRepository
}

type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
