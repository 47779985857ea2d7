package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"
)

// Principals is the principal repository consumed by the session flows and
// the identity resolver. Lookups return ErrPrincipalNotFound when nothing matches.
type Principals interface {
	FindByID(ctx context.Context, id string) (*Principal, error)
	FindByEmail(ctx context.Context, email string) (*Principal, error)
	FindByUsername(ctx context.Context, username string) (*Principal, error)
	List(ctx context.Context) ([]*Principal, error)
	Create(ctx context.Context, record *Principal) (*Principal, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Principal) (*Principal, error)
	UpdateProfile(ctx context.Context, record *Principal) (*Principal, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) error
	Delete(ctx context.Context, id string) error
}

type principals struct {
	repository.Repository[*Principal]
	db *bun.DB
}

var _ Principals = (*principals)(nil)

// profileColumns are the only columns a profile update may touch
var profileColumns = []string{
	"avatar",
	"facebook",
	"twitter",
	"instagram",
	"linkedin",
	"subscribed",
	"updated_at",
}

func NewPrincipalsRepository(db *bun.DB) Principals {
	repo := repository.NewRepository[*Principal](db, repository.ModelHandlers[*Principal]{
		NewRecord: func() *Principal { return &Principal{} },
		GetID: func(p *Principal) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Principal, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &principals{
		Repository: repo,
		db:         db,
	}
}

func (r *principals) FindByID(ctx context.Context, id string) (*Principal, error) {
	pid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, cloneWith(ErrPrincipalNotFound, map[string]any{"id": id})
	}
	return r.findBy(ctx, "id", pid)
}

func (r *principals) FindByEmail(ctx context.Context, email string) (*Principal, error) {
	return r.findBy(ctx, "email", normalizeEmail(email))
}

func (r *principals) FindByUsername(ctx context.Context, username string) (*Principal, error) {
	return r.findBy(ctx, "username", strings.TrimSpace(username))
}

func (r *principals) findBy(ctx context.Context, column string, value any) (*Principal, error) {
	record := &Principal{}
	err := r.db.NewSelect().
		Model(record).
		Where("?TableAlias.? = ?", bun.Ident(column), value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, cloneWith(ErrPrincipalNotFound, map[string]any{column: value})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to find principal")
	}

	return record, nil
}

func (r *principals) List(ctx context.Context) ([]*Principal, error) {
	records := make([]*Principal, 0)
	err := r.db.NewSelect().
		Model(&records).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list principals")
	}
	return records, nil
}

func (r *principals) Create(ctx context.Context, record *Principal) (*Principal, error) {
	return r.CreateTx(ctx, r.db, record)
}

// CreateTx inserts record. A unique constraint violation on email or username
// is reported as ErrPrincipalExists.
func (r *principals) CreateTx(ctx context.Context, tx bun.IDB, record *Principal) (*Principal, error) {
	prepareDefaults(record)

	created, err := r.Repository.CreateTx(ctx, tx, record)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrPrincipalExists
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create principal")
	}

	return created, nil
}

func (r *principals) UpdateProfile(ctx context.Context, record *Principal) (*Principal, error) {
	now := time.Now().UTC()
	record.UpdatedAt = &now

	res, err := r.db.NewUpdate().
		Model(record).
		Column(profileColumns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update principal")
	}

	if err := expectAffected(res, record.ID.String()); err != nil {
		return nil, err
	}

	return r.FindByID(ctx, record.ID.String())
}

func (r *principals) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	now := time.Now().UTC()
	res, err := r.db.NewUpdate().
		Model((*Principal)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("password_changed_at = ?", now).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update password")
	}
	return expectAffected(res, id.String())
}

func (r *principals) SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) error {
	res, err := r.db.NewUpdate().
		Model((*Principal)(nil)).
		Set("is_admin = ?", isAdmin).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update role")
	}
	return expectAffected(res, id.String())
}

func (r *principals) Delete(ctx context.Context, id string) error {
	pid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return cloneWith(ErrPrincipalNotFound, map[string]any{"id": id})
	}

	res, err := r.db.NewDelete().
		Model((*Principal)(nil)).
		Where("id = ?", pid).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete principal")
	}
	return expectAffected(res, id)
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func expectAffected(res rowsAffecter, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read affected rows")
	}
	if n == 0 {
		return cloneWith(ErrPrincipalNotFound, map[string]any{"id": id})
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		msg := e.Error()
		if strings.Contains(msg, "UNIQUE constraint failed") ||
			strings.Contains(msg, "duplicate key value") {
			return true
		}
	}

	return false
}
