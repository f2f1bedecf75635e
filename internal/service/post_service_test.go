package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/storage"
	"yatube/internal/testutil"
	"yatube/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func TestPostService_Create_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("blank text", func(t *testing.T) {
		t.Parallel()
		svc := NewPostService(noopPostRepo(), noopGroupRepo(), nil)
		_, err := svc.Create(ctx, CreatePostInput{AuthorID: 1, Text: "   "})
		assertValidationError(t, err)
		assertFieldError(t, err, "text")
	})

	t.Run("unknown group", func(t *testing.T) {
		t.Parallel()
		groups := noopGroupRepo()
		groups.existsFn = func(_ context.Context, _ uint) (bool, error) { return false, nil }
		svc := NewPostService(noopPostRepo(), groups, nil)
		_, err := svc.Create(ctx, CreatePostInput{AuthorID: 1, Text: "hi", GroupID: uintPtr(9)})
		assertFieldError(t, err, "group")
	})

	t.Run("undecodable image", func(t *testing.T) {
		t.Parallel()
		images := NewImageService(storage.NewLocal(t.TempDir(), ""), nil)
		svc := NewPostService(noopPostRepo(), noopGroupRepo(), images)
		_, err := svc.Create(ctx, CreatePostInput{
			AuthorID: 1,
			Text:     "hi",
			Image:    &validation.Upload{Filename: "x.png", Data: []byte("not an image")},
		})
		assertFieldError(t, err, "image")
	})
}

func TestPostService_Create_Success(t *testing.T) {
	t.Parallel()

	var saved *models.Post
	posts := noopPostRepo()
	posts.createFn = func(_ context.Context, p *models.Post) error {
		p.ID = 7
		saved = p
		return nil
	}
	images := NewImageService(storage.NewLocal(t.TempDir(), ""), func() bool { return false })
	svc := NewPostService(posts, noopGroupRepo(), images)

	post, err := svc.Create(context.Background(), CreatePostInput{
		AuthorID: 3,
		Text:     "  Hello  ",
		GroupID:  uintPtr(2),
		Image:    &validation.Upload{Filename: "small.gif", Data: testutil.SmallGIF},
	})
	require.NoError(t, err)
	assert.Equal(t, uint(7), post.ID)
	assert.Equal(t, "Hello", saved.Text)
	assert.Equal(t, uint(3), saved.AuthorID)
	assert.Equal(t, uint(2), *saved.GroupID)
	assert.Equal(t, "posts/small.gif", saved.Image)
}

func TestPostService_Update(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	existing := func() *models.Post {
		return &models.Post{ID: 5, AuthorID: 1, Text: "old", GroupID: uintPtr(2), Image: "posts/keep.png"}
	}

	t.Run("non-author is refused", func(t *testing.T) {
		t.Parallel()
		posts := noopPostRepo()
		posts.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) { return existing(), nil }
		posts.updateFn = func(_ context.Context, _ *models.Post) error {
			t.Fatal("update must not be called")
			return nil
		}
		svc := NewPostService(posts, noopGroupRepo(), nil)
		_, err := svc.Update(ctx, UpdatePostInput{PostID: 5, EditorID: 2, Text: "new"})
		assert.ErrorIs(t, err, ErrNotAuthor)
		assert.True(t, models.IsForbidden(err))
	})

	t.Run("missing post", func(t *testing.T) {
		t.Parallel()
		posts := noopPostRepo()
		posts.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", id)
		}
		svc := NewPostService(posts, noopGroupRepo(), nil)
		_, err := svc.Update(ctx, UpdatePostInput{PostID: 5, EditorID: 1, Text: "new"})
		assert.True(t, models.IsNotFound(err))
	})

	t.Run("author edit keeps image and clears group", func(t *testing.T) {
		t.Parallel()
		var updated *models.Post
		posts := noopPostRepo()
		posts.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			if updated != nil {
				return updated, nil
			}
			return existing(), nil
		}
		posts.updateFn = func(_ context.Context, p *models.Post) error {
			updated = p
			return nil
		}
		svc := NewPostService(posts, noopGroupRepo(), nil)
		post, err := svc.Update(ctx, UpdatePostInput{PostID: 5, EditorID: 1, Text: "new"})
		require.NoError(t, err)
		assert.Equal(t, "new", post.Text)
		assert.Nil(t, post.GroupID)
		assert.Equal(t, "posts/keep.png", post.Image)
	})
}

func TestPostService_ListClampsPage(t *testing.T) {
	t.Parallel()

	var gotFilter repository.PostFilter
	var gotLimit, gotOffset int
	posts := noopPostRepo()
	posts.countFn = func(_ context.Context, _ repository.PostFilter) (int64, error) { return 13, nil }
	posts.listFn = func(_ context.Context, f repository.PostFilter, limit, offset int) ([]*models.Post, error) {
		gotFilter, gotLimit, gotOffset = f, limit, offset
		return make([]*models.Post, 3), nil
	}
	svc := NewPostService(posts, noopGroupRepo(), nil)

	page, err := svc.ListByGroup(context.Background(), 4, "99")
	require.NoError(t, err)
	assert.Equal(t, repository.PostFilter{GroupID: 4}, gotFilter)
	assert.Equal(t, 10, gotLimit)
	assert.Equal(t, 10, gotOffset)
	assert.Equal(t, 2, page.Number)
	assert.Equal(t, 2, page.NumPages)
	assert.Equal(t, 3, page.Len())

	_, err = svc.Feed(context.Background(), 8, "")
	require.NoError(t, err)
	assert.Equal(t, repository.PostFilter{FollowerID: 8}, gotFilter)
	assert.Equal(t, 0, gotOffset)
}

func TestPostService_ListPropagatesErrors(t *testing.T) {
	t.Parallel()

	repoErr := errors.New("db down")
	posts := noopPostRepo()
	posts.countFn = func(_ context.Context, _ repository.PostFilter) (int64, error) { return 0, repoErr }
	svc := NewPostService(posts, noopGroupRepo(), nil)

	_, err := svc.ListAll(context.Background(), "1")
	assert.ErrorIs(t, err, repoErr)
}

func TestPostService_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("removes the image and its thumbnail", func(t *testing.T) {
		t.Parallel()
		store := testutil.NewMemoryStorage("/media/")
		images := NewImageService(store, nil)
		stored, err := images.Store(ctx, &validation.Upload{Filename: "small.gif", Data: testutil.SmallGIF})
		require.NoError(t, err)
		require.Len(t, store.Paths(), 2)

		var deleted uint
		posts := noopPostRepo()
		posts.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, Image: stored.Path}, nil
		}
		posts.deleteFn = func(_ context.Context, id uint) error {
			deleted = id
			return nil
		}

		svc := NewPostService(posts, noopGroupRepo(), images)
		require.NoError(t, svc.Delete(ctx, 5))
		assert.Equal(t, uint(5), deleted)
		assert.Empty(t, store.Paths())
	})

	t.Run("missing post", func(t *testing.T) {
		t.Parallel()
		posts := noopPostRepo()
		posts.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", id)
		}
		posts.deleteFn = func(_ context.Context, _ uint) error {
			t.Fatal("delete must not be called")
			return nil
		}
		svc := NewPostService(posts, noopGroupRepo(), nil)
		err := svc.Delete(ctx, 5)
		var appErr *models.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})
}

func TestPostService_ImagePathsByAuthor(t *testing.T) {
	t.Parallel()

	posts := noopPostRepo()
	posts.listFn = func(_ context.Context, f repository.PostFilter, limit, offset int) ([]*models.Post, error) {
		assert.Equal(t, uint(3), f.AuthorID)
		var out []*models.Post
		n := limit
		if offset > 0 {
			n = 2
		}
		for i := 0; i < n; i++ {
			p := &models.Post{}
			if i%2 == 0 {
				p.Image = fmt.Sprintf("posts/%d_%d.png", offset, i)
			}
			out = append(out, p)
		}
		return out, nil
	}

	svc := NewPostService(posts, noopGroupRepo(), nil)
	paths, err := svc.ImagePathsByAuthor(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, paths, 51)
	assert.Equal(t, "posts/0_0.png", paths[0])
	assert.Equal(t, "posts/100_0.png", paths[50])
}
