package auth

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-blog-auth/middleware/jwtware"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// RouteAuthenticator wires the identity resolver and the access policy into fiber
type RouteAuthenticator struct {
	auth           Authenticator
	cfg            Config
	validator      jwtware.TokenValidator
	policy         *AccessPolicy
	cookieDuration time.Duration
	Logger         Logger
	// AuthErrorHandler renders identity resolver rejections
	AuthErrorHandler fiber.ErrorHandler
	// ErrorHandler renders every other error, install it as the fiber app error handler
	ErrorHandler fiber.ErrorHandler
}

// NewHTTPAuthenticator verifies tokens with the codec of auther, so tokens it
// issues are the tokens ProtectedRoute accepts.
func NewHTTPAuthenticator(auther Authenticator, cfg Config) (*RouteAuthenticator, error) {
	if auther == nil {
		return nil, errors.New("authenticator is required", errors.CategoryInternal)
	}

	validator := auther.TokenService()
	if validator == nil {
		return nil, ErrMissingSigningKey
	}

	cookieDuration := DefaultTokenExpiration
	if cfg.GetTokenExpiration() > 0 {
		cookieDuration = cfg.GetTokenExpiration()
	}

	a := &RouteAuthenticator{
		auth:           auther,
		cfg:            cfg,
		validator:      validator,
		policy:         NewAccessPolicy(),
		cookieDuration: cookieDuration,
		Logger:         defLogger{},
	}

	a.ErrorHandler = a.defaultErrHandler
	a.AuthErrorHandler = a.defaultAuthErrHandler

	return a, nil
}

func (a *RouteAuthenticator) WithLogger(logger Logger) *RouteAuthenticator {
	a.Logger = resolveLogger(logger)
	a.policy.WithLogger(a.Logger)
	return a
}

func (a RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

// ProtectedRoute resolves the request principal or rejects the request
// with the single unauthenticated response.
func (a *RouteAuthenticator) ProtectedRoute(listeners ...ValidationListener) fiber.Handler {
	cfg := jwtware.Config{
		ErrorHandler:   a.AuthErrorHandler,
		TokenValidator: a.validator,
		PrincipalLoader: func(ctx context.Context, claims jwtware.TokenClaims) (any, error) {
			return a.auth.ResolvePrincipal(ctx, claims)
		},
		ContextEnricher: contextEnricher,
		AuthScheme:      a.cfg.GetAuthScheme(),
		ContextKey:      a.cfg.GetContextKey(),
		TokenLookup:     a.cfg.GetTokenLookup(),
	}
	RegisterValidationListeners(&cfg, listeners...)
	return jwtware.New(cfg)
}

// RequireRole gates the next handler on the resolved principal holding role.
// It must be mounted after ProtectedRoute.
func (a *RouteAuthenticator) RequireRole(op Operation, resource string, role UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, _ := GetFiberPrincipal(c, a.cfg.GetContextKey())
		if err := a.policy.Authorize(principal, op, resource, role); err != nil {
			return a.ErrorHandler(c, err)
		}
		return c.Next()
	}
}

// Principal returns the principal resolved by ProtectedRoute
func (a *RouteAuthenticator) Principal(c *fiber.Ctx) (*Principal, error) {
	principal, ok := GetFiberPrincipal(c, a.cfg.GetContextKey())
	if !ok {
		return nil, ErrPrincipalMissing
	}
	return principal, nil
}

// SetTokenCookie stores token in the cookie transport when it is configured
func (a *RouteAuthenticator) SetTokenCookie(c *fiber.Ctx, token string) {
	if !CookieTransport(a.cfg) {
		return
	}
	a.setCookie(c, token, time.Now().Add(a.cookieDuration))
}

// ClearTokenCookie expires the cookie transport
func (a *RouteAuthenticator) ClearTokenCookie(c *fiber.Ctx) {
	a.setCookie(c, "", time.Now().Add(-time.Hour*(24*365)))
}

func (a *RouteAuthenticator) setCookie(c *fiber.Ctx, val string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     a.cfg.GetCookieName(),
		Value:    val,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (a *RouteAuthenticator) defaultAuthErrHandler(c *fiber.Ctx, err error) error {
	cause := err
	if stderrors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
		cause = ErrNoToken
	}

	if !IsIdentityRejection(cause) {
		return a.ErrorHandler(c, cause)
	}

	var richErr *errors.Error
	errors.As(cause, &richErr)

	a.Logger.Info(
		"Authentication rejected",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"path", c.OriginalURL(),
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": ErrUnauthenticated.Message,
		"code":    ErrUnauthenticated.TextCode,
	})
}

func (a *RouteAuthenticator) defaultErrHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if stderrors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"message": fiberErr.Message,
		})
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := statusFor(richErr)

	a.Logger.Info(
		"Middleware error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"status", status,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	if status >= fiber.StatusInternalServerError {
		a.Logger.Error("Internal error", "error", err)
		return c.Status(status).JSON(fiber.Map{
			"message": "internal server error",
		})
	}

	body := fiber.Map{
		"message": richErr.Message,
		"code":    richErr.TextCode,
	}
	if fields := ValidationFields(richErr); len(fields) > 0 {
		body["errors"] = fields
	}

	return c.Status(status).JSON(body)
}

func statusFor(richErr *errors.Error) int {
	if richErr.Code >= 400 && richErr.Code < 600 {
		return richErr.Code
	}

	switch richErr.Category {
	case errors.CategoryValidation, errors.CategoryBadInput, errors.CategoryConflict:
		return fiber.StatusBadRequest
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	case errors.CategoryAuthz:
		return fiber.StatusForbidden
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	case errors.CategoryRateLimit:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}
