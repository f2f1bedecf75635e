package views

import (
	"bytes"
	"testing"
	"time"

	"yatube/internal/models"
	"yatube/internal/pagination"
	"yatube/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, name string, bind fiber.Map) string {
	t.Helper()
	engine := New(Funcs{
		MediaURL: func(p string) string { return "/media/" + p },
		ThumbURL: func(p string) string { return "/media/thumbs/" + p },
	}, false)
	require.NoError(t, engine.Load())

	var buf bytes.Buffer
	require.NoError(t, engine.Render(&buf, name, bind, Layout))
	return buf.String()
}

func samplePosts(n int) []*models.Post {
	group := &models.Group{ID: 1, Title: "Cats", Slug: "cats"}
	out := make([]*models.Post, n)
	for i := range out {
		gid := group.ID
		out[i] = &models.Post{
			ID:      uint(i + 1),
			Text:    "post body",
			PubDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Author:  models.User{ID: 1, Username: "leo", FirstName: "Leo"},
			GroupID: &gid,
			Group:   group,
			Image:   "posts/small.gif",
		}
	}
	return out
}

func TestIndexTemplate(t *testing.T) {
	page := pagination.New(samplePosts(3), 13, 2, pagination.PageSize)
	out := render(t, "posts/index", fiber.Map{"page_obj": page})

	assert.Contains(t, out, "Latest updates on the site")
	assert.Contains(t, out, `href="/profile/leo/"`)
	assert.Contains(t, out, `href="/group/cats/"`)
	assert.Contains(t, out, "/media/thumbs/posts/small.gif")
	assert.Contains(t, out, "1 March 2024")
	assert.Contains(t, out, `href="?page=1"`)
	assert.NotContains(t, out, "Next")
	assert.Contains(t, out, "Log in", "anonymous header")
}

func TestPostDetailTemplate(t *testing.T) {
	post := samplePosts(1)[0]
	post.Text = "line one\n<b>line two</b>"
	out := render(t, "posts/post_detail", fiber.Map{
		"post":        post,
		"posts_count": int64(4),
		"comments":    []*models.Comment{{Text: "nice", Author: models.User{Username: "ann"}}},
		"form":        validation.CommentForm{},
		"viewer":      &models.User{ID: 1, Username: "leo"},
		"can_edit":    true,
	})

	assert.Contains(t, out, "line one<br>&lt;b&gt;line two&lt;/b&gt;")
	assert.Contains(t, out, "/media/posts/small.gif")
	assert.Contains(t, out, `action="/posts/1/comment/"`)
	assert.Contains(t, out, `href="/posts/1/edit/"`)
	assert.Contains(t, out, "nice")
	assert.Contains(t, out, "<span>4</span>")
}

func TestCreatePostTemplate_ShowsErrors(t *testing.T) {
	errs := validation.FieldErrors{}
	errs.Add("text", validation.MsgRequired)
	out := render(t, "posts/create_post", fiber.Map{
		"form":    validation.PostForm{Group: "1"},
		"groups":  []models.Group{{ID: 1, Title: "Cats"}, {ID: 2, Title: "Dogs"}},
		"errors":  errs,
		"is_edit": false,
	})

	assert.Contains(t, out, validation.MsgRequired)
	assert.Contains(t, out, `<option value="1" selected>Cats</option>`)
	assert.Contains(t, out, `<option value="2">Dogs</option>`)
	assert.Contains(t, out, `action="/create/"`)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "a b …", TruncateWords("a b c", 2))
	assert.Equal(t, "a b", TruncateWords(" a  b ", 2))
	assert.Equal(t, "", FormatDate(time.Time{}))
	assert.Equal(t, "?page=3", PageQuery(3))
	assert.Equal(t, "x<br>y", string(LineBreaks("x\r\ny")))
}
