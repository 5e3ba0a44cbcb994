package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/quest-coach/quest-coach-bot/internal/application/command"
)

// ══════════════════════════════════════════════════════════════════════════════
// UNIT OF WORK
// Все репозитории внутри fn работают на одной транзакции pgx.Tx.
// ══════════════════════════════════════════════════════════════════════════════

// UnitOfWork implements command.UnitOfWork on top of a Connection.
type UnitOfWork struct {
	conn *Connection
}

// NewUnitOfWork creates a new UnitOfWork.
func NewUnitOfWork(conn *Connection) *UnitOfWork {
	return &UnitOfWork{conn: conn}
}

// WithTx runs fn inside a single database transaction. The repositories
// passed to fn share the transaction, so the whole block commits or
// rolls back together.
func (u *UnitOfWork) WithTx(ctx context.Context, fn func(ctx context.Context, r command.Repositories) error) error {
	return u.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		return fn(ctx, NewRepositories(tx))
	})
}

// NewRepositories builds the repository set over a single Querier.
// Pass the pool for standalone reads or a pgx.Tx for transactional work.
func NewRepositories(q Querier) command.Repositories {
	return command.Repositories{
		Users:      NewUserRepository(q),
		Tasks:      NewTaskRepository(q),
		Categories: NewCategoryRepository(q),
		Logs:       NewLogRepository(q),
		Catalog:    NewCatalogRepository(q),
		Grants:     NewGrantRepository(q),
	}
}
