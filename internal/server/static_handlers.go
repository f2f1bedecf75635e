package server

import (
	"errors"
	"io"
	"path"
	"strings"

	"yatube/internal/models"
	"yatube/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// AboutAuthor handles GET /about/author/
func (s *Server) AboutAuthor(c *fiber.Ctx) error {
	return s.render(c, "about/author", fiber.Map{"title": "About the author"})
}

// AboutTech handles GET /about/tech/
func (s *Server) AboutTech(c *fiber.Ctx) error {
	return s.render(c, "about/tech", fiber.Map{"title": "Technologies"})
}

// Media handles GET /media/* by streaming the stored object.
func (s *Server) Media(c *fiber.Ctx) error {
	p, err := storage.CleanPath(c.Params("*"))
	if err != nil {
		return models.NewNotFoundError("File", c.Params("*"))
	}
	rc, err := s.media.Open(c.UserContext(), p)
	if errors.Is(err, storage.ErrNotFound) {
		return models.NewNotFoundError("File", p)
	}
	if err != nil {
		return models.NewInternalError(err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return models.NewInternalError(err)
	}
	if ext := strings.TrimPrefix(path.Ext(p), "."); ext != "" {
		c.Type(ext)
	}
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(data)
}
