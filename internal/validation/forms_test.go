package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

func groupsExist(ids ...uint) func(uint) (bool, error) {
	return func(id uint) (bool, error) {
		for _, known := range ids {
			if known == id {
				return true, nil
			}
		}
		return false, nil
	}
}

func TestPostForm_Valid(t *testing.T) {
	t.Parallel()
	form := PostForm{
		Text:  "  hello  ",
		Group: "3",
		Image: &Upload{Filename: "small.gif", ContentType: "image/gif", Data: smallGIF},
	}

	data, errs, err := form.Validate(groupsExist(3))
	require.NoError(t, err)
	require.Nil(t, errs)
	assert.Equal(t, "hello", data.Text)
	require.NotNil(t, data.GroupID)
	assert.Equal(t, uint(3), *data.GroupID)
	assert.Equal(t, "gif", data.Image.Format())
}

func TestPostForm_GroupAndImageOptional(t *testing.T) {
	t.Parallel()
	data, errs, err := PostForm{Text: "only text"}.Validate(groupsExist())
	require.NoError(t, err)
	require.Nil(t, errs)
	assert.Nil(t, data.GroupID)
	assert.Nil(t, data.Image)
}

func TestPostForm_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		form  PostForm
		field string
		msg   string
	}{
		{"empty text", PostForm{Text: ""}, "text", MsgRequired},
		{"blank text", PostForm{Text: " \n\t "}, "text", MsgRequired},
		{"unknown group", PostForm{Text: "x", Group: "99"}, "group", MsgInvalidChoice},
		{"non numeric group", PostForm{Text: "x", Group: "cats"}, "group", MsgInvalidChoice},
		{"zero group", PostForm{Text: "x", Group: "0"}, "group", MsgInvalidChoice},
		{"not an image", PostForm{Text: "x", Image: &Upload{Filename: "a.txt", Data: []byte("plain text")}}, "image", MsgInvalidImage},
		{"truncated gif", PostForm{Text: "x", Image: &Upload{Filename: "a.gif", Data: smallGIF[:8]}}, "image", MsgInvalidImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, errs, err := tt.form.Validate(groupsExist(1))
			require.NoError(t, err)
			assert.Nil(t, data)
			assert.True(t, errs.Has(tt.field), "errors: %v", errs)
			assert.Equal(t, tt.msg, errs.First(tt.field))
		})
	}
}

func TestPostForm_ImageTooLarge(t *testing.T) {
	t.Parallel()
	form := PostForm{Text: "x", Image: &Upload{Data: smallGIF}, MaxImageBytes: 10}
	_, errs, err := form.Validate(groupsExist())
	require.NoError(t, err)
	assert.True(t, errs.Has("image"))
	assert.Contains(t, errs.First("image"), "too large")
}

func TestPostForm_GroupLookupFailure(t *testing.T) {
	t.Parallel()
	boom := errors.New("db down")
	_, _, err := PostForm{Text: "x", Group: "1"}.Validate(func(uint) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}

func TestCommentForm(t *testing.T) {
	t.Parallel()
	data, errs := CommentForm{Text: " nice "}.Validate()
	require.Nil(t, errs)
	assert.Equal(t, "nice", data.Text)

	data, errs = CommentForm{Text: "   "}.Validate()
	assert.Nil(t, data)
	assert.Equal(t, []string{MsgRequired}, errs["text"])
}

func TestSignupForm(t *testing.T) {
	t.Parallel()
	ok := SignupForm{Username: "leo", Email: "leo@example.com", Password: "SecurePass12!@"}
	assert.True(t, ok.Validate().Empty())

	bad := SignupForm{Username: "a b", Email: "nope", LastName: strings.Repeat("x", 151)}
	errs := bad.Validate()
	assert.True(t, errs.Has("username"))
	assert.True(t, errs.Has("email"))
	assert.Equal(t, MsgRequired, errs.First("password"))
	assert.True(t, errs.Has("last_name"))
	assert.False(t, errs.Has("first_name"))
}

func TestFormFieldSpecs(t *testing.T) {
	t.Parallel()
	require.Len(t, PostFormFields, 3)
	assert.Equal(t, "text", PostFormFields[0].Name)
	assert.True(t, PostFormFields[0].Required)
	assert.False(t, PostFormFields[1].Required)
	assert.Equal(t, KindImage, PostFormFields[2].Kind)
	require.Len(t, CommentFormFields, 1)
	assert.True(t, CommentFormFields[0].Required)
}
