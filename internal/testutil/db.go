// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"testing"

	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewSQLiteDB returns a migrated in-memory SQLite database private to t.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Connect(&config.Config{DBDriver: database.DriverSQLite, DBDSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Fixtures inserts rows directly, bypassing services and validation.
type Fixtures struct {
	DB *gorm.DB
	T  testing.TB
}

// User creates a user with an unusable password.
func (f Fixtures) User(username string) *models.User {
	f.T.Helper()
	u := &models.User{Username: username, FirstName: username, Password: "x"}
	require.NoError(f.T, f.DB.Create(u).Error)
	return u
}

// Group creates a group titled after its slug.
func (f Fixtures) Group(slug string) *models.Group {
	f.T.Helper()
	g := &models.Group{Title: "Group " + slug, Slug: slug, Description: "about " + slug}
	require.NoError(f.T, f.DB.Create(g).Error)
	return g
}

// Post creates a post; group may be nil.
func (f Fixtures) Post(author *models.User, group *models.Group, text string) *models.Post {
	f.T.Helper()
	p := &models.Post{Text: text, AuthorID: author.ID}
	if group != nil {
		p.GroupID = &group.ID
	}
	require.NoError(f.T, f.DB.Omit("Author", "Group").Create(p).Error)
	return p
}

// Comment creates a comment on post.
func (f Fixtures) Comment(post *models.Post, author *models.User, text string) *models.Comment {
	f.T.Helper()
	c := &models.Comment{PostID: post.ID, AuthorID: author.ID, Text: text}
	require.NoError(f.T, f.DB.Omit("Author", "Post").Create(c).Error)
	return c
}

// Count returns the number of model rows matching where ("" for all).
func (f Fixtures) Count(model any, where string, args ...any) int64 {
	f.T.Helper()
	var n int64
	q := f.DB.Model(model)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(f.T, q.Count(&n).Error)
	return n
}
