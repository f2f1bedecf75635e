package validation

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strconv"
	"strings"

	_ "golang.org/x/image/webp"
)

const (
	MsgRequired      = "This field is required."
	MsgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
	MsgInvalidImage  = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
)

// DefaultMaxImageBytes caps uploads when the form does not set a limit.
const DefaultMaxImageBytes = 5 << 20

// Kind is the input kind of a form field.
type Kind int

const (
	KindText Kind = iota
	KindChoice
	KindImage
)

// FieldSpec describes one form field for rendering and validation.
type FieldSpec struct {
	Name     string
	Label    string
	HelpText string
	Required bool
	Kind     Kind
}

// PostFormFields lists the fields of the post create/edit form in display order.
var PostFormFields = []FieldSpec{
	{Name: "text", Label: "Post text", HelpText: "Enter the post text", Required: true, Kind: KindText},
	{Name: "group", Label: "Group", HelpText: "Group the post will belong to", Kind: KindChoice},
	{Name: "image", Label: "Image", Kind: KindImage},
}

// CommentFormFields lists the fields of the comment form.
var CommentFormFields = []FieldSpec{
	{Name: "text", Label: "Comment text", Required: true, Kind: KindText},
}

// FieldErrors maps a field name to its error messages.
type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e FieldErrors) Has(field string) bool {
	return len(e[field]) > 0
}

func (e FieldErrors) Empty() bool {
	return len(e) == 0
}

// First returns the first message for field, or "".
func (e FieldErrors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Upload is a file received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Format reports the decoded image format ("gif", "jpeg", "png", "webp") or "".
func (u *Upload) Format() string {
	if u == nil || len(u.Data) == 0 {
		return ""
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(u.Data))
	if err != nil {
		return ""
	}
	return format
}

// PostForm carries the raw post form values. Group is the submitted group
// id or "" for none.
type PostForm struct {
	Text          string
	Group         string
	Image         *Upload
	MaxImageBytes int64
}

// PostData is a validated post form. Author, publication date and id are
// never taken from the form.
type PostData struct {
	Text    string
	GroupID *uint
	Image   *Upload
}

// Validate checks the form. groupExists resolves a submitted group id; its
// error is returned as the third result and means validation could not finish.
func (f PostForm) Validate(groupExists func(id uint) (bool, error)) (*PostData, FieldErrors, error) {
	errs := FieldErrors{}
	data := &PostData{Text: strings.TrimSpace(f.Text)}

	if data.Text == "" {
		errs.Add("text", MsgRequired)
	}

	if raw := strings.TrimSpace(f.Group); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			errs.Add("group", MsgInvalidChoice)
		} else {
			ok, err := groupExists(uint(id))
			if err != nil {
				return nil, nil, err
			}
			if !ok {
				errs.Add("group", MsgInvalidChoice)
			} else {
				gid := uint(id)
				data.GroupID = &gid
			}
		}
	}

	if f.Image != nil && len(f.Image.Data) > 0 {
		limit := f.MaxImageBytes
		if limit <= 0 {
			limit = DefaultMaxImageBytes
		}
		if msg := validateImage(f.Image, limit); msg != "" {
			errs.Add("image", msg)
		} else {
			data.Image = f.Image
		}
	}

	if !errs.Empty() {
		return nil, errs, nil
	}
	return data, nil, nil
}

func validateImage(u *Upload, limit int64) string {
	if int64(len(u.Data)) > limit {
		return fmt.Sprintf("Image is too large (max %d MB).", limit>>20)
	}
	sniffed := http.DetectContentType(u.Data)
	if !strings.HasPrefix(sniffed, "image/") {
		return MsgInvalidImage
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(u.Data)); err != nil {
		return MsgInvalidImage
	}
	return ""
}

// CommentForm carries the raw comment form values.
type CommentForm struct {
	Text string
}

// CommentData is a validated comment form.
type CommentData struct {
	Text string
}

func (f CommentForm) Validate() (*CommentData, FieldErrors) {
	text := strings.TrimSpace(f.Text)
	if text == "" {
		errs := FieldErrors{}
		errs.Add("text", MsgRequired)
		return nil, errs
	}
	return &CommentData{Text: text}, nil
}

// SignupForm carries the registration form values.
type SignupForm struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

func (f SignupForm) Validate() FieldErrors {
	errs := FieldErrors{}
	if f.Username == "" {
		errs.Add("username", MsgRequired)
	} else if err := ValidateUsername(f.Username); err != nil {
		errs.Add("username", err.Error())
	}
	if f.Email == "" {
		errs.Add("email", MsgRequired)
	} else if err := ValidateEmail(f.Email); err != nil {
		errs.Add("email", err.Error())
	}
	if f.Password == "" {
		errs.Add("password", MsgRequired)
	} else if err := ValidatePassword(f.Password); err != nil {
		errs.Add("password", err.Error())
	}
	if len([]rune(f.FirstName)) > UsernameMaxLength {
		errs.Add("first_name", fmt.Sprintf("Ensure this value has at most %d characters.", UsernameMaxLength))
	}
	if len([]rune(f.LastName)) > UsernameMaxLength {
		errs.Add("last_name", fmt.Sprintf("Ensure this value has at most %d characters.", UsernameMaxLength))
	}
	return errs
}
