package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Principal is the user account model
type Principal struct {
	bun.BaseModel     `bun:"table:users,alias:usr"`
	ID                uuid.UUID  `bun:"id,pk" json:"id"`
	Username          string     `bun:"username,notnull,unique" json:"username"`
	Email             string     `bun:"email,notnull,unique" json:"email"`
	PasswordHash      string     `bun:"password_hash,notnull" json:"-"`
	IsAdmin           bool       `bun:"is_admin,notnull" json:"isAdmin"`
	Avatar            string     `bun:"avatar" json:"avatar,omitempty"`
	Facebook          string     `bun:"facebook" json:"facebook,omitempty"`
	Twitter           string     `bun:"twitter" json:"twitter,omitempty"`
	Instagram         string     `bun:"instagram" json:"instagram,omitempty"`
	LinkedIn          string     `bun:"linkedin" json:"linkedin,omitempty"`
	Subscribed        bool       `bun:"subscribed,notnull" json:"subscribed"`
	PasswordChangedAt *time.Time `bun:"password_changed_at,nullzero" json:"-"`
	CreatedAt         *time.Time `bun:"created_at,nullzero" json:"createdAt,omitempty"`
	UpdatedAt         *time.Time `bun:"updated_at,nullzero" json:"updatedAt,omitempty"`
}

// Role returns the coarse role derived from the administrator flag
func (p *Principal) Role() UserRole {
	if p != nil && p.IsAdmin {
		return RoleAdmin
	}
	return RoleStandard
}

// Summary is the minimal non secret view returned on login
func (p *Principal) Summary() PrincipalSummary {
	return PrincipalSummary{
		ID:      p.ID.String(),
		IsAdmin: p.IsAdmin,
	}
}

// PrincipalSummary holds the id and role flag of a principal
type PrincipalSummary struct {
	ID      string `json:"id"`
	IsAdmin bool   `json:"isAdmin"`
}

// LoginResult is the outcome of a successful login
type LoginResult struct {
	Token     string
	Principal *Principal
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func prepareDefaults(p *Principal) {
	if p == nil {
		return
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	p.Email = normalizeEmail(p.Email)
	p.Username = strings.TrimSpace(p.Username)

	now := time.Now().UTC()
	if p.CreatedAt == nil {
		p.CreatedAt = &now
	}
	p.UpdatedAt = &now
}
