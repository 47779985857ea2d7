package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
)

// HTTPControllerRoutes holds the mount points of the auth routes
type HTTPControllerRoutes struct {
	Signup   string
	Login    string
	Logout   string
	Password string
	Me       string
	Users    string
}

// HTTPController exposes the session flows as JSON endpoints
type HTTPController struct {
	Debug  bool
	Logger Logger
	Auther Authenticator
	Routes *HTTPControllerRoutes
	Route  *RouteAuthenticator
}

type HTTPControllerOption func(*HTTPController) *HTTPController

func WithControllerLogger(logger Logger) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		c.Logger = resolveLogger(logger)
		return c
	}
}

func WithControllerDebug(debug bool) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		c.Debug = debug
		return c
	}
}

func WithControllerRoutes(routes *HTTPControllerRoutes) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		if routes != nil {
			c.Routes = routes
		}
		return c
	}
}

func NewHTTPController(auther Authenticator, route *RouteAuthenticator, opts ...HTTPControllerOption) *HTTPController {
	c := &HTTPController{
		Logger: defLogger{},
		Auther: auther,
		Route:  route,
		Routes: &HTTPControllerRoutes{
			Signup:   "/auth/signup",
			Login:    "/auth/login",
			Logout:   "/auth/logout",
			Password: "/auth/password",
			Me:       "/me",
			Users:    "/users",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Route == nil {
		panic("Missing RouteAuthenticator in auth controller...")
	}

	return c
}

// RegisterRoutes mounts the auth, profile and administration routes on app
func (h *HTTPController) RegisterRoutes(app fiber.Router) {
	protected := h.Route.ProtectedRoute()

	app.Post(h.Routes.Signup, h.Signup).Name("auth.signup")
	app.Post(h.Routes.Login, h.Login).Name("auth.login")
	app.Post(h.Routes.Logout, h.Logout).Name("auth.logout")
	app.Put(h.Routes.Password, protected, h.ChangePassword).Name("auth.password")

	app.Get(h.Routes.Me, protected, h.Me).Name("me.get")
	app.Patch(h.Routes.Me, protected, h.UpdateMe).Name("me.patch")

	app.Get(h.Routes.Users, protected, h.ListUsers).Name("users.list")
	app.Get(h.Routes.Users+"/:id", protected, h.GetUser).Name("users.get")

	app.Delete(h.Routes.Users+"/:id",
		protected,
		h.Route.RequireRole(OperationDelete, "users", RoleAdmin),
		h.DeleteUser,
	).Name("users.delete")
}

func (h *HTTPController) Signup(c *fiber.Ctx) error {
	payload := new(SignupPayload)
	if err := c.BodyParser(payload); err != nil {
		h.Logger.Error("signup parse payload", "error", err)
		return ErrUnableToParseData
	}

	principal, err := h.Auther.Signup(c.UserContext(), *payload)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "account created",
		"id":      principal.ID.String(),
	})
}

func (h *HTTPController) Login(c *fiber.Ctx) error {
	payload := new(LoginPayload)
	if err := c.BodyParser(payload); err != nil {
		h.Logger.Error("login parse payload", "error", err)
		return ErrUnableToParseData
	}

	if h.Debug {
		h.Logger.Debug("login attempt", "email", payload.Email)
	}

	result, err := h.Auther.Login(c.UserContext(), *payload)
	if err != nil {
		return err
	}

	h.Route.SetTokenCookie(c, result.Token)

	return c.JSON(fiber.Map{
		"message": "login successful",
		"token":   result.Token,
		"user":    result.Principal.Summary(),
	})
}

func (h *HTTPController) Logout(c *fiber.Ctx) error {
	h.Route.ClearTokenCookie(c)
	return c.JSON(fiber.Map{
		"message": "logged out",
	})
}

func (h *HTTPController) ChangePassword(c *fiber.Ctx) error {
	principal, err := h.Route.Principal(c)
	if err != nil {
		return err
	}

	payload := new(ChangePasswordPayload)
	if err := c.BodyParser(payload); err != nil {
		h.Logger.Error("change password parse payload", "error", err)
		return ErrUnableToParseData
	}

	if err := h.Auther.ChangePassword(c.UserContext(), principal.ID.String(), *payload); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "password updated",
	})
}

func (h *HTTPController) Me(c *fiber.Ctx) error {
	principal, err := h.Route.Principal(c)
	if err != nil {
		return err
	}
	return c.JSON(principal)
}

func (h *HTTPController) UpdateMe(c *fiber.Ctx) error {
	principal, err := h.Route.Principal(c)
	if err != nil {
		return err
	}

	payload := new(ProfilePayload)
	if err := c.BodyParser(payload); err != nil {
		h.Logger.Error("profile parse payload", "error", err)
		return ErrUnableToParseData
	}

	if h.Debug {
		h.Logger.Debug("profile update", "payload", print.MaybePrettyJSON(payload))
	}

	updated, err := h.Auther.UpdateProfile(c.UserContext(), principal.ID.String(), *payload)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

func (h *HTTPController) ListUsers(c *fiber.Ctx) error {
	records, err := h.Auther.ListPrincipals(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"users": records,
		"count": len(records),
	})
}

func (h *HTTPController) GetUser(c *fiber.Ctx) error {
	record, err := h.Auther.GetPrincipal(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(record)
}

func (h *HTTPController) DeleteUser(c *fiber.Ctx) error {
	actor, err := h.Route.Principal(c)
	if err != nil {
		return err
	}

	if err := h.Auther.DeletePrincipal(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "user deleted",
	})
}
