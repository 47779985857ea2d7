package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

var principalCtxKey = &contextKey{"principal"}

type contextKey struct {
	name string
}

// WithContext sets the Principal in the given context
func WithContext(r context.Context, principal *Principal) context.Context {
	return context.WithValue(r, principalCtxKey, principal)
}

// FromContext finds the principal from the context.
func FromContext(ctx context.Context) (*Principal, bool) {
	raw, ok := ctx.Value(principalCtxKey).(*Principal)
	return raw, ok && raw != nil
}

// GetFiberPrincipal extracts the resolved Principal from fiber locals
func GetFiberPrincipal(c *fiber.Ctx, key string) (*Principal, bool) {
	if key == "" {
		key = "principal"
	}
	raw, ok := c.Locals(key).(*Principal)
	return raw, ok && raw != nil
}

func contextEnricher(ctx context.Context, principal any) context.Context {
	p, ok := principal.(*Principal)
	if !ok {
		return ctx
	}
	return WithContext(ctx, p)
}
