package server

import (
	"yatube/internal/service"
	"yatube/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// AddComment handles POST /posts/:id/comment/. Valid or not, the visitor
// lands back on the post; an invalid comment is simply dropped.
func (s *Server) AddComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	post, err := s.postService.Get(c.UserContext(), id)
	if err != nil {
		return err
	}

	data, errs := validation.CommentForm{Text: c.FormValue("text")}.Validate()
	if errs.Empty() {
		if _, err := s.commentService.Create(c.UserContext(), service.CreateCommentInput{
			PostID:   post.ID,
			AuthorID: viewerID(c),
			Text:     data.Text,
		}); err != nil {
			return err
		}
	}
	return c.Redirect(postURL(post.ID), fiber.StatusFound)
}
