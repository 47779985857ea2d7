package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-blog-auth/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Migrate(ctx context.Context) error
	Principals() Principals
}

type mngr struct {
	db         *bun.DB
	principals Principals
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:         db,
		principals: NewPrincipalsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.db == nil {
		return errors.New("repository manager database should be initialized")
	}

	if m.principals == nil {
		return errors.New("repository principals should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

// Migrate applies the embedded schema migrations for the database dialect
func (m mngr) Migrate(ctx context.Context) error {
	return migrations.Up(ctx, m.db.DB, GooseDialect(m.db))
}

func (m mngr) Principals() Principals {
	return m.principals
}

// GooseDialect maps the bun dialect to the goose dialect name
func GooseDialect(db *bun.DB) string {
	switch db.Dialect().Name() {
	case dialect.PG:
		return "postgres"
	default:
		return "sqlite3"
	}
}
