package service

import (
	"context"
	"log/slog"
	"strings"

	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/pagination"
	"yatube/internal/repository"
	"yatube/internal/validation"
)

type PostService struct {
	postRepo  repository.PostRepository
	groupRepo repository.GroupRepository
	images    *ImageService
}

type CreatePostInput struct {
	AuthorID uint
	Text     string
	GroupID  *uint
	Image    *validation.Upload
}

// UpdatePostInput replaces text and group. Image, when set, replaces the
// stored image; otherwise the current one is kept.
type UpdatePostInput struct {
	PostID   uint
	EditorID uint
	Text     string
	GroupID  *uint
	Image    *validation.Upload
}

func NewPostService(postRepo repository.PostRepository, groupRepo repository.GroupRepository, images *ImageService) *PostService {
	return &PostService{postRepo: postRepo, groupRepo: groupRepo, images: images}
}

func (s *PostService) checkGroup(ctx context.Context, groupID *uint) error {
	if groupID == nil {
		return nil
	}
	ok, err := s.groupRepo.Exists(ctx, *groupID)
	if err != nil {
		return err
	}
	if !ok {
		return newFormError("group", validation.MsgInvalidChoice)
	}
	return nil
}

func (s *PostService) storeImage(ctx context.Context, up *validation.Upload) (string, error) {
	if up == nil || len(up.Data) == 0 {
		return "", nil
	}
	if s.images == nil {
		return "", models.NewInternalError(nil)
	}
	stored, err := s.images.Store(ctx, up)
	if err != nil {
		return "", newFormError("image", validation.MsgInvalidImage)
	}
	return stored.Path, nil
}

func (s *PostService) Create(ctx context.Context, in CreatePostInput) (_ *models.Post, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "Create")
	defer func() { observability.EndSpan(span, err) }()

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, newFormError("text", validation.MsgRequired)
	}
	if err := s.checkGroup(ctx, in.GroupID); err != nil {
		return nil, err
	}
	imagePath, err := s.storeImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:     text,
		AuthorID: in.AuthorID,
		GroupID:  in.GroupID,
		Image:    imagePath,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	observability.PostsCreated.Inc()
	middleware.Logger.InfoContext(ctx, "post created", slog.Uint64("post_id", uint64(post.ID)), slog.Uint64("author_id", uint64(in.AuthorID)))
	return post, nil
}

// Update applies an edit by the post's author. Anyone else gets ErrNotAuthor
// and the post is left untouched.
func (s *PostService) Update(ctx context.Context, in UpdatePostInput) (_ *models.Post, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "Update")
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != in.EditorID {
		return nil, ErrNotAuthor
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, newFormError("text", validation.MsgRequired)
	}
	if err := s.checkGroup(ctx, in.GroupID); err != nil {
		return nil, err
	}
	imagePath, err := s.storeImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	post.Text = text
	post.GroupID = in.GroupID
	if imagePath != "" {
		post.Image = imagePath
	}
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	observability.PostsEdited.Inc()
	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

func (s *PostService) ListAll(ctx context.Context, page string) (pagination.Page[*models.Post], error) {
	return s.list(ctx, repository.PostFilter{}, page)
}

func (s *PostService) ListByGroup(ctx context.Context, groupID uint, page string) (pagination.Page[*models.Post], error) {
	return s.list(ctx, repository.PostFilter{GroupID: groupID}, page)
}

func (s *PostService) ListByAuthor(ctx context.Context, authorID uint, page string) (pagination.Page[*models.Post], error) {
	return s.list(ctx, repository.PostFilter{AuthorID: authorID}, page)
}

// Feed lists posts by the authors userID follows.
func (s *PostService) Feed(ctx context.Context, userID uint, page string) (pagination.Page[*models.Post], error) {
	return s.list(ctx, repository.PostFilter{FollowerID: userID}, page)
}

func (s *PostService) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return s.postRepo.Count(ctx, repository.PostFilter{AuthorID: authorID})
}

func (s *PostService) list(ctx context.Context, filter repository.PostFilter, page string) (pagination.Page[*models.Post], error) {
	total, err := s.postRepo.Count(ctx, filter)
	if err != nil {
		return pagination.Page[*models.Post]{}, err
	}
	number, offset := pagination.Clamp(page, total, pagination.PageSize)
	posts, err := s.postRepo.List(ctx, filter, pagination.PageSize, offset)
	if err != nil {
		return pagination.Page[*models.Post]{}, err
	}
	return pagination.New(posts, total, number, pagination.PageSize), nil
}

// Delete removes the post with its comments, then its stored image and
// thumbnail. A failed file removal is logged and does not fail the call.
func (s *PostService) Delete(ctx context.Context, id uint) (err error) {
	ctx, span := observability.StartServiceSpan(ctx, "PostService", "Delete")
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.RemoveImages(ctx, []string{post.Image})
	return nil
}

// ImagePathsByAuthor collects the stored image of every post by authorID.
func (s *PostService) ImagePathsByAuthor(ctx context.Context, authorID uint) ([]string, error) {
	const batch = 100
	filter := repository.PostFilter{AuthorID: authorID}
	var paths []string
	for offset := 0; ; offset += batch {
		posts, err := s.postRepo.List(ctx, filter, batch, offset)
		if err != nil {
			return nil, err
		}
		for _, p := range posts {
			if p.Image != "" {
				paths = append(paths, p.Image)
			}
		}
		if len(posts) < batch {
			return paths, nil
		}
	}
}

// RemoveImages deletes stored images and their thumbnails.
func (s *PostService) RemoveImages(ctx context.Context, paths []string) {
	if s.images == nil {
		return
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := s.images.Delete(ctx, p); err != nil {
			middleware.Logger.WarnContext(ctx, "image removal failed", slog.String("path", p), slog.String("error", err.Error()))
		}
	}
}
