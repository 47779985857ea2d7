package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-blog-auth/middleware/jwtware"
)

// ValidationListener aliases the jwtware listener so consumers can use auth helpers directly.
type ValidationListener = jwtware.ValidationListener

// RegisterValidationListeners appends listeners to a jwtware.Config in a safe, reusable way.
func RegisterValidationListeners(cfg *jwtware.Config, listeners ...ValidationListener) {
	if cfg == nil || len(listeners) == 0 {
		return
	}
	cfg.ValidationListeners = append(cfg.ValidationListeners, listeners...)
}

// PrincipalListener adapts a listener over *Principal to a ValidationListener.
// Values that are not a *Principal are rejected as unauthenticated.
func PrincipalListener(fn func(c *fiber.Ctx, principal *Principal) error) ValidationListener {
	return func(c *fiber.Ctx, principal any) error {
		p, ok := principal.(*Principal)
		if !ok || p == nil {
			return ErrUnauthenticated
		}
		return fn(c, p)
	}
}
