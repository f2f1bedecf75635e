package server

import (
	"errors"
	"io"
	"mime/multipart"
	"strconv"

	"yatube/internal/models"
	"yatube/internal/service"
	"yatube/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Index handles GET /. The route is wrapped in the page cache.
func (s *Server) Index(c *fiber.Ctx) error {
	page, err := s.postService.ListAll(c.UserContext(), c.Query("page"))
	if err != nil {
		return err
	}
	return s.render(c, "posts/index", fiber.Map{"page_obj": page, "title": "Latest updates"})
}

// GroupPosts handles GET /group/:slug/
func (s *Server) GroupPosts(c *fiber.Ctx) error {
	group, err := s.groupService.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	page, err := s.postService.ListByGroup(c.UserContext(), group.ID, c.Query("page"))
	if err != nil {
		return err
	}
	return s.render(c, "posts/group_list", fiber.Map{"group": group, "page_obj": page, "title": group.Title})
}

// Profile handles GET /profile/:username/
func (s *Server) Profile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	author, err := s.userService.GetByUsername(ctx, c.Params("username"))
	if err != nil {
		return err
	}
	page, err := s.postService.ListByAuthor(ctx, author.ID, c.Query("page"))
	if err != nil {
		return err
	}
	uid := viewerID(c)
	following, err := s.followService.IsFollowing(ctx, uid, author.ID)
	if err != nil {
		return err
	}
	followers, err := s.followService.CountFollowers(ctx, author.ID)
	if err != nil {
		return err
	}

	return s.render(c, "posts/profile", fiber.Map{
		"author":          author,
		"page_obj":        page,
		"posts_count":     page.Total,
		"followers_count": followers,
		"following":       following,
		"show_follow":     uid != 0 && uid != author.ID,
		"title":           "Profile of " + author.FullName(),
	})
}

// PostDetail handles GET /posts/:id/
func (s *Server) PostDetail(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	post, err := s.postService.Get(ctx, id)
	if err != nil {
		return err
	}
	comments, err := s.commentService.ListByPost(ctx, post.ID)
	if err != nil {
		return err
	}
	count, err := s.postService.CountByAuthor(ctx, post.AuthorID)
	if err != nil {
		return err
	}

	return s.render(c, "posts/post_detail", fiber.Map{
		"post":        post,
		"comments":    comments,
		"form":        validation.CommentForm{},
		"posts_count": count,
		"can_edit":    viewerID(c) == post.AuthorID,
		"title":       post.String(),
	})
}

// postForm reads the create/edit form, including the optional image file.
func (s *Server) postForm(c *fiber.Ctx) (validation.PostForm, error) {
	form := validation.PostForm{
		Text:          c.FormValue("text"),
		Group:         c.FormValue("group"),
		MaxImageBytes: s.maxImageBytes(),
	}

	fh, err := c.FormFile("image")
	if err != nil {
		// no file part, or a urlencoded body
		return form, nil
	}
	up, err := readUpload(fh, form.MaxImageBytes)
	if err != nil {
		return form, err
	}
	form.Image = up
	return form, nil
}

func readUpload(fh *multipart.FileHeader, limit int64) (*validation.Upload, error) {
	if fh.Size == 0 {
		return nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	// one byte over the limit is enough for the size check to fail
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	return &validation.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}

func (s *Server) renderPostForm(c *fiber.Ctx, form validation.PostForm, errs validation.FieldErrors, postID uint) error {
	groups, err := s.groupService.List(c.UserContext())
	if err != nil {
		return err
	}
	title := "New post"
	if postID != 0 {
		title = "Edit post"
	}
	return s.render(c, "posts/create_post", fiber.Map{
		"form":    form,
		"errors":  errs,
		"groups":  groups,
		"is_edit": postID != 0,
		"post_id": postID,
		"title":   title,
	})
}

func (s *Server) validatePostForm(c *fiber.Ctx, form validation.PostForm) (*validation.PostData, validation.FieldErrors, error) {
	return form.Validate(func(id uint) (bool, error) {
		return s.groupService.Exists(c.UserContext(), id)
	})
}

// PostCreatePage handles GET /create/
func (s *Server) PostCreatePage(c *fiber.Ctx) error {
	return s.renderPostForm(c, validation.PostForm{}, nil, 0)
}

// PostCreate handles POST /create/. Invalid input re-renders the form with
// its errors and nothing is saved.
func (s *Server) PostCreate(c *fiber.Ctx) error {
	form, err := s.postForm(c)
	if err != nil {
		return err
	}
	data, errs, err := s.validatePostForm(c, form)
	if err != nil {
		return err
	}
	if !errs.Empty() {
		return s.renderPostForm(c, form, errs, 0)
	}

	me := viewer(c)
	_, err = s.postService.Create(c.UserContext(), service.CreatePostInput{
		AuthorID: me.ID,
		Text:     data.Text,
		GroupID:  data.GroupID,
		Image:    data.Image,
	})
	var formErr *service.FormError
	if errors.As(err, &formErr) {
		return s.renderPostForm(c, form, formErr.Fields, 0)
	}
	if err != nil {
		return err
	}
	return c.Redirect(profileURL(me.Username), fiber.StatusFound)
}

// editablePost loads the post for editing. ok is false when the viewer is
// not the author, in which case the caller has already been redirected.
func (s *Server) editablePost(c *fiber.Ctx) (post *models.Post, ok bool, err error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, false, err
	}
	post, err = s.postService.Get(c.UserContext(), id)
	if err != nil {
		return nil, false, err
	}
	if post.AuthorID != viewerID(c) {
		return post, false, c.Redirect(postURL(post.ID), fiber.StatusFound)
	}
	return post, true, nil
}

// PostEditPage handles GET /posts/:id/edit/
func (s *Server) PostEditPage(c *fiber.Ctx) error {
	post, ok, err := s.editablePost(c)
	if err != nil || !ok {
		return err
	}
	form := validation.PostForm{Text: post.Text}
	if post.GroupID != nil {
		form.Group = strconv.FormatUint(uint64(*post.GroupID), 10)
	}
	return s.renderPostForm(c, form, nil, post.ID)
}

// PostEdit handles POST /posts/:id/edit/. Only the author may edit; anyone
// else is sent back to the post unchanged.
func (s *Server) PostEdit(c *fiber.Ctx) error {
	post, ok, err := s.editablePost(c)
	if err != nil || !ok {
		return err
	}

	form, err := s.postForm(c)
	if err != nil {
		return err
	}
	data, errs, err := s.validatePostForm(c, form)
	if err != nil {
		return err
	}
	if !errs.Empty() {
		return s.renderPostForm(c, form, errs, post.ID)
	}

	_, err = s.postService.Update(c.UserContext(), service.UpdatePostInput{
		PostID:   post.ID,
		EditorID: viewerID(c),
		Text:     data.Text,
		GroupID:  data.GroupID,
		Image:    data.Image,
	})
	var formErr *service.FormError
	switch {
	case errors.As(err, &formErr):
		return s.renderPostForm(c, form, formErr.Fields, post.ID)
	case errors.Is(err, service.ErrNotAuthor):
		return c.Redirect(postURL(post.ID), fiber.StatusFound)
	case err != nil:
		return err
	}
	return c.Redirect(postURL(post.ID), fiber.StatusFound)
}
