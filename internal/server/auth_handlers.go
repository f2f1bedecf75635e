package server

import (
	"errors"
	"log/slog"
	"time"

	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/service"
	"yatube/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// formErrorKey holds errors not tied to one field.
const formErrorKey = "__all__"

func signupForm(c *fiber.Ctx) validation.SignupForm {
	return validation.SignupForm{
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
		Username:  c.FormValue("username"),
		Email:     c.FormValue("email"),
	}
}

// SignupPage handles GET /auth/signup/
func (s *Server) SignupPage(c *fiber.Ctx) error {
	return s.render(c, "users/signup", fiber.Map{"form": validation.SignupForm{}, "title": "Sign up"})
}

// Signup handles POST /auth/signup/. A new account is signed in right away.
func (s *Server) Signup(c *fiber.Ctx) error {
	form := signupForm(c)
	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Username:  form.Username,
		Email:     form.Email,
		Password:  c.FormValue("password"),
	})
	var formErr *service.FormError
	if errors.As(err, &formErr) {
		return s.render(c, "users/signup", fiber.Map{"form": form, "errors": formErr.Fields, "title": "Sign up"})
	}
	if err != nil {
		return err
	}

	if err := s.startSession(c, user); err != nil {
		return err
	}
	return c.Redirect("/", fiber.StatusFound)
}

// LoginPage handles GET /auth/login/
func (s *Server) LoginPage(c *fiber.Ctx) error {
	return s.render(c, "users/login", fiber.Map{"next": c.Query("next"), "title": "Log in"})
}

// Login handles POST /auth/login/
func (s *Server) Login(c *fiber.Ctx) error {
	username := c.FormValue("username")
	next := c.FormValue("next")

	user, err := s.userService.Authenticate(c.UserContext(), username, c.FormValue("password"))
	if errors.Is(err, service.ErrBadCredentials) {
		errs := validation.FieldErrors{}
		errs.Add(formErrorKey, service.ErrBadCredentials.Message)
		return s.render(c, "users/login", fiber.Map{"username": username, "next": next, "errors": errs, "title": "Log in"})
	}
	if err != nil {
		return err
	}

	if err := s.startSession(c, user); err != nil {
		return err
	}
	return c.Redirect(safeNext(next), fiber.StatusFound)
}

func (s *Server) startSession(c *fiber.Ctx, user *models.User) error {
	token, claims, err := middleware.IssueToken(s.config.JWTSecret, user.ID, user.Username, s.now())
	if err != nil {
		return models.NewInternalError(err)
	}
	middleware.SetSessionCookie(c, token, claims.ExpiresAt, s.config.IsProduction())
	middleware.Logger.InfoContext(c.UserContext(), "user logged in", slog.Uint64("user_id", uint64(user.ID)))
	return nil
}

// Logout handles GET /auth/logout/. The token id is blacklisted until the
// token would have expired anyway.
func (s *Server) Logout(c *fiber.Ctx) error {
	if token := middleware.TokenFromRequest(c); token != "" {
		if claims, err := middleware.ParseToken(s.config.JWTSecret, token); err == nil && claims.JTI != "" {
			ttl := claims.ExpiresAt.Sub(s.now())
			if ttl <= 0 {
				ttl = time.Minute
			}
			if err := s.sessions.Set(middleware.BlacklistKey(claims.JTI), []byte("1"), ttl); err != nil {
				return models.NewInternalError(err)
			}
		}
	}
	middleware.ClearSessionCookie(c)
	c.Locals("viewer", nil)
	c.Locals("userID", nil)
	return s.render(c, "users/logged_out", fiber.Map{"title": "Logged out"})
}
