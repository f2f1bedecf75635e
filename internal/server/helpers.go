package server

import (
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"yatube/internal/middleware"
	"yatube/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// viewer returns the signed-in user or nil.
func viewer(c *fiber.Ctx) *models.User {
	u, _ := c.Locals("viewer").(*models.User)
	return u
}

// viewerID returns the signed-in user's id or 0.
func viewerID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

// render writes a full page. The viewer is added to every binding for the
// navigation bar.
func (s *Server) render(c *fiber.Ctx, name string, bind fiber.Map) error {
	if bind == nil {
		bind = fiber.Map{}
	}
	if v := viewer(c); v != nil {
		bind["viewer"] = v
	}
	return c.Render(name, bind)
}

// parseID reads a positive numeric route parameter. Anything else is a
// missing page.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewNotFoundError("Page", c.Params(param))
	}
	return uint(id), nil
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

func postURL(id uint) string {
	return "/posts/" + strconv.FormatUint(uint64(id), 10) + "/"
}

// loginURL sends the visitor to the login form and back to target afterwards.
func loginURL(target string) string {
	return "/auth/login/?next=" + url.QueryEscape(target)
}

// safeNext keeps only same-site absolute paths.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

// NotFound renders the custom 404 page for unmatched routes.
func (s *Server) NotFound(c *fiber.Ctx) error {
	return s.renderStatus(c, fiber.StatusNotFound, "core/404", fiber.Map{"path": c.Path()})
}

func (s *Server) renderStatus(c *fiber.Ctx, status int, name string, bind fiber.Map) error {
	c.Status(status)
	if err := s.render(c, name, bind); err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "render error page failed",
			slog.String("template", name), slog.String("error", err.Error()))
		return c.Status(status).SendString(strconv.Itoa(status) + " " + utils.StatusMessage(status))
	}
	return nil
}

// errorHandler turns handler errors into pages: NotFound gives the 404 page,
// unexpected failures the 500 page, and other client errors a short text.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}

	switch {
	case status == fiber.StatusNotFound:
		return s.NotFound(c)
	case status >= fiber.StatusInternalServerError:
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()), slog.String("error", err.Error()))
		return s.renderStatus(c, status, "core/500", nil)
	default:
		msg := utils.StatusMessage(status)
		if fe != nil {
			msg = fe.Message
		}
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			msg = appErr.Message
		}
		return c.Status(status).SendString(msg)
	}
}
