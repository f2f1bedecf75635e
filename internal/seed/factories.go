// Package seed provides helpers to create demo data for development and
// manual testing.
package seed

import (
	"fmt"
	"strings"
	"time"

	"yatube/internal/middleware"
	"yatube/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DemoPassword is the password of every seeded user.
const DemoPassword = "password123"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	hash  string
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a Factory bound to db. A zero opts.RandSeed seeds the
// faker from the clock.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	f := &Factory{db: db, opts: opts, faker: gofakeit.New(seed), nextID: 1000}

	if opts.SkipBcrypt {
		f.hash = DemoPassword
	} else {
		hashed, _ := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
		f.hash = string(hashed)
	}
	return f
}

func (f *Factory) persist(value any) error {
	if f.opts.DryRun {
		return nil
	}
	return f.db.Omit(clause.Associations).Create(value).Error
}

func (f *Factory) assignID() uint {
	f.nextID++
	return f.nextID
}

// CreateUser builds and persists a user. n keeps usernames unique within a run.
func (f *Factory) CreateUser(n int, overrides ...func(*models.User)) (*models.User, error) {
	first, last := f.faker.FirstName(), f.faker.LastName()
	user := &models.User{
		Username:  fmt.Sprintf("%s%s%d", strings.ToLower(first), strings.ToLower(last[:1]), n),
		Email:     fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), n),
		FirstName: first,
		LastName:  last,
		Password:  f.hash,
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.persist(user); err != nil {
		return nil, err
	}
	if f.opts.DryRun {
		user.ID = f.assignID()
	}
	return user, nil
}

// BuildPost constructs an unsaved post by author, published some time within
// the last MaxDays days.
func (f *Factory) BuildPost(author *models.User, group *models.Group, overrides ...func(*models.Post)) *models.Post {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.faker.Number(0, maxDays*24*60)) * time.Minute

	post := &models.Post{
		Text:     f.faker.Paragraph(1, f.faker.Number(1, 4), 12, "\n"),
		AuthorID: author.ID,
		PubDate:  time.Now().Add(-back),
	}
	if group != nil {
		gid := group.ID
		post.GroupID = &gid
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists posts in a single statement.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			p.ID = f.assignID()
		}
		middleware.Logger.Info("[dry-run] CreatePostsBatch", "posts", len(posts))
		return nil
	}
	return f.db.Omit(clause.Associations).CreateInBatches(posts, 100).Error
}

// CreateComment persists a comment on post by author.
func (f *Factory) CreateComment(author *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Text:     f.faker.Sentence(f.faker.Number(3, 15)),
		Created:  post.PubDate.Add(time.Duration(f.faker.Number(1, 600)) * time.Minute),
	}
	if err := f.persist(comment); err != nil {
		return nil, err
	}
	if f.opts.DryRun {
		comment.ID = f.assignID()
	}
	return comment, nil
}

// CreateFollow subscribes user to author. Self-follows and existing pairs are
// skipped; the result reports whether a row was written.
func (f *Factory) CreateFollow(user, author *models.User) (bool, error) {
	if user.ID == author.ID {
		return false, nil
	}
	if f.opts.DryRun {
		return true, nil
	}
	res := f.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "author_id"}},
		DoNothing: true,
	}).Omit(clause.Associations).Create(&models.Follow{UserID: user.ID, AuthorID: author.ID})
	return res.RowsAffected > 0, res.Error
}
