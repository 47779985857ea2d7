package auth

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-blog-auth/middleware/jwtware"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// Auther implements the session flows on top of the principal repository,
// the credential store and the token codec.
type Auther struct {
	repo         RepositoryManager
	hasher       PasswordHasher
	tokenService TokenService
	useHashid    bool
	logger       Logger
	activitySink ActivitySink
	now          func() time.Time
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator. It fails when the
// configuration carries no signing key.
func NewAuthenticator(repo RepositoryManager, opts Config) (*Auther, error) {
	tokenService, err := NewTokenServiceFromConfig(opts, defLogger{})
	if err != nil {
		return nil, err
	}

	return &Auther{
		repo:         repo,
		hasher:       NewBcryptHasher(opts.GetPasswordCost()),
		tokenService: tokenService,
		useHashid:    opts.GetUseHashid(),
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		now:          time.Now,
	}, nil
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = resolveLogger(logger)
	if ts, ok := s.tokenService.(*TokenServiceImpl); ok {
		ts.logger = s.logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithPasswordHasher replaces the bcrypt credential store
func (s *Auther) WithPasswordHasher(hasher PasswordHasher) *Auther {
	if hasher != nil {
		s.hasher = hasher
	}
	return s
}

// WithTokenService replaces the token codec
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Signup creates a standard principal. It does not issue a token.
func (s *Auther) Signup(ctx context.Context, payload SignupPayload) (*Principal, error) {
	if err := payload.Validate(); err != nil {
		return nil, NewValidationError(err)
	}

	if payload.Password != payload.ConfirmPassword {
		return nil, ErrPasswordsDoNotMatch
	}

	email := normalizeEmail(payload.Email)
	username := strings.TrimSpace(payload.Username)

	if err := s.ensureAvailable(ctx, email, username); err != nil {
		return nil, err
	}

	hash, err := s.hasher.HashPassword(payload.Password)
	if err != nil {
		return nil, err
	}

	record := &Principal{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}

	if s.useHashid {
		id, err := hashid.NewUUID(email)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to derive principal id")
		}
		record.ID = id
	}

	var created *Principal
	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		created, err = s.repo.Principals().CreateTx(ctx, tx, record)
		return err
	})

	if err != nil {
		s.logger.Error("signup failed to create principal", "email", email, "error", err)
		return nil, err
	}

	s.emit(ctx, ActivityEventSignup, created.ID.String(), created.ID.String(), map[string]any{
		"username": created.Username,
	})

	return created, nil
}

// ensureAvailable rejects emails and usernames already taken. The storage
// UNIQUE constraints still decide concurrent signups.
func (s *Auther) ensureAvailable(ctx context.Context, email, username string) error {
	lookups := []func(context.Context, string) (*Principal, error){
		s.repo.Principals().FindByEmail,
		s.repo.Principals().FindByUsername,
	}
	values := []string{email, username}

	for i, find := range lookups {
		_, err := find(ctx, values[i])
		if err == nil {
			return ErrPrincipalExists
		}
		if !IsPrincipalNotFound(err) {
			return err
		}
	}
	return nil
}

// Login exchanges an email and password for a signed token
func (s *Auther) Login(ctx context.Context, payload LoginPayload) (*LoginResult, error) {
	if err := payload.Validate(); err != nil {
		return nil, NewValidationError(err)
	}

	email := normalizeEmail(payload.Email)

	principal, err := s.repo.Principals().FindByEmail(ctx, email)
	if err != nil {
		s.logger.Error("Login find principal error", "error", err)
		s.emit(ctx, ActivityEventLoginFailure, "", "", map[string]any{
			"email": email,
			"error": err.Error(),
		})
		return nil, err
	}

	if !s.hasher.Verify(payload.Password, principal.PasswordHash) {
		s.logger.Warn("Login rejected credentials", "principal", principal.ID.String())
		s.emit(ctx, ActivityEventLoginFailure, principal.ID.String(), principal.ID.String(), map[string]any{
			"email": email,
			"error": ErrMismatchedHashAndPassword.Error(),
		})
		return nil, ErrMismatchedHashAndPassword
	}

	token, err := s.tokenService.Issue(principal.ID.String())
	if err != nil {
		return nil, err
	}

	s.emit(ctx, ActivityEventLoginSuccess, principal.ID.String(), principal.ID.String(), map[string]any{
		"email": email,
	})

	return &LoginResult{
		Token:     token,
		Principal: principal,
	}, nil
}

// ChangePassword replaces the secret of principalID after verifying the current one
func (s *Auther) ChangePassword(ctx context.Context, principalID string, payload ChangePasswordPayload) error {
	if err := payload.Validate(); err != nil {
		return NewValidationError(err)
	}

	principal, err := s.repo.Principals().FindByID(ctx, principalID)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(payload.CurrentPassword, principal.PasswordHash) {
		return ErrMismatchedHashAndPassword
	}

	hash, err := s.hasher.HashPassword(payload.NewPassword)
	if err != nil {
		return err
	}

	if err := s.repo.Principals().UpdatePassword(ctx, principal.ID, hash); err != nil {
		return err
	}

	s.emit(ctx, ActivityEventPasswordChanged, principal.ID.String(), principal.ID.String(), nil)

	return nil
}

// UpdateProfile applies the non nil fields of payload to principalID
func (s *Auther) UpdateProfile(ctx context.Context, principalID string, payload ProfilePayload) (*Principal, error) {
	if err := payload.Validate(); err != nil {
		return nil, NewValidationError(err)
	}

	principal, err := s.repo.Principals().FindByID(ctx, principalID)
	if err != nil {
		return nil, err
	}

	if payload.IsEmpty() {
		return principal, nil
	}

	payload.apply(principal)

	updated, err := s.repo.Principals().UpdateProfile(ctx, principal)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, ActivityEventProfileUpdated, updated.ID.String(), updated.ID.String(), nil)

	return updated, nil
}

// PrincipalFromToken verifies token and loads the principal it names
func (s *Auther) PrincipalFromToken(ctx context.Context, token string) (*Principal, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrNoToken
	}

	claims, err := s.tokenService.Verify(token)
	if err != nil {
		return nil, err
	}

	return s.ResolvePrincipal(ctx, claims)
}

// ResolvePrincipal loads the principal named by verified claims. A missing
// principal, or one created after the token was issued, is an identity
// rejection. Any other failure is internal.
func (s *Auther) ResolvePrincipal(ctx context.Context, claims jwtware.TokenClaims) (*Principal, error) {
	if claims == nil {
		return nil, ErrTokenMalformed
	}

	principalID := claims.PrincipalID()

	principal, err := s.repo.Principals().FindByID(ctx, principalID)
	if err != nil {
		if IsPrincipalNotFound(err) {
			return nil, cloneWith(ErrTokenPrincipalNotFound, map[string]any{"id": principalID})
		}
		return nil, err
	}

	// iat has second precision
	if principal.CreatedAt != nil && claims.IssuedAt().Before(principal.CreatedAt.Truncate(time.Second)) {
		return nil, cloneWith(ErrTokenPrincipalNotFound, map[string]any{
			"id":        principalID,
			"issued_at": claims.IssuedAt(),
		})
	}

	return principal, nil
}

// ListPrincipals returns every principal ordered by creation
func (s *Auther) ListPrincipals(ctx context.Context) ([]*Principal, error) {
	return s.repo.Principals().List(ctx)
}

// GetPrincipal returns the principal with id
func (s *Auther) GetPrincipal(ctx context.Context, id string) (*Principal, error) {
	return s.repo.Principals().FindByID(ctx, id)
}

// DeletePrincipal removes the principal with id on behalf of actor
func (s *Auther) DeletePrincipal(ctx context.Context, actor *Principal, id string) error {
	if err := s.repo.Principals().Delete(ctx, id); err != nil {
		return err
	}

	actorID := ""
	if actor != nil {
		actorID = actor.ID.String()
	}
	s.emit(ctx, ActivityEventPrincipalDeleted, actorID, id, nil)

	return nil
}

func (s *Auther) emit(ctx context.Context, eventType ActivityEventType, actorID, principalID string, metadata map[string]any) {
	event := ActivityEvent{
		EventType:   eventType,
		ActorID:     actorID,
		PrincipalID: principalID,
		Metadata:    metadata,
		OccurredAt:  s.now().UTC(),
	}

	if err := s.activitySink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink error", "event", string(eventType), "error", err)
	}
}
