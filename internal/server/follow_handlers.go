package server

import (
	"errors"

	"yatube/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// FollowIndex handles GET /follow/: posts by the authors the viewer follows.
func (s *Server) FollowIndex(c *fiber.Ctx) error {
	page, err := s.postService.Feed(c.UserContext(), viewerID(c), c.Query("page"))
	if err != nil {
		return err
	}
	return s.render(c, "posts/follow", fiber.Map{"page_obj": page, "title": "Following"})
}

// ProfileFollow handles GET /profile/:username/follow/. Following yourself
// or someone already followed changes nothing.
func (s *Server) ProfileFollow(c *fiber.Ctx) error {
	author, err := s.followService.Follow(c.UserContext(), viewerID(c), c.Params("username"))
	if err != nil && !errors.Is(err, repository.ErrSelfFollow) {
		return err
	}
	return c.Redirect(profileURL(author.Username), fiber.StatusFound)
}

// ProfileUnfollow handles GET /profile/:username/unfollow/
func (s *Server) ProfileUnfollow(c *fiber.Ctx) error {
	author, err := s.followService.Unfollow(c.UserContext(), viewerID(c), c.Params("username"))
	if err != nil {
		return err
	}
	return c.Redirect(profileURL(author.Username), fiber.StatusFound)
}
