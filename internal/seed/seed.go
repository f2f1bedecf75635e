package seed

import (
	"context"
	"fmt"
	"log/slog"

	"yatube/internal/middleware"
	"yatube/internal/models"

	"gorm.io/gorm"
)

// Options configure a seeding run.
type Options struct {
	Users           int
	Posts           int
	CommentsPerPost int
	FollowsPerUser  int
	// MaxDays spreads publication dates over this many past days.
	MaxDays int
	// RandSeed makes runs reproducible when non-zero.
	RandSeed   int64
	SkipBcrypt bool
	DryRun     bool
}

// DefaultOptions are the values used by `manage seed` without flags.
func DefaultOptions() Options {
	return Options{Users: 10, Posts: 60, CommentsPerPost: 3, FollowsPerUser: 3, MaxDays: 90}
}

// Summary counts what a run created.
type Summary struct {
	Users    int
	Posts    int
	Comments int
	Follows  int
}

// Seed fills the database with demo users, posts in the default groups,
// comments and follows. Every user's password is DemoPassword.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (Summary, error) {
	var sum Summary
	if opts.Users <= 0 {
		return sum, fmt.Errorf("seed needs at least one user")
	}

	var groups []models.Group
	if !opts.DryRun {
		if _, err := DefaultGroups(ctx, db); err != nil {
			return sum, err
		}
		if err := db.WithContext(ctx).Order("id").Find(&groups).Error; err != nil {
			return sum, err
		}
	}

	f := NewFactory(db.WithContext(ctx), opts)

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u, err := f.CreateUser(i + 1)
		if err != nil {
			return sum, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)

	posts := make([]*models.Post, 0, opts.Posts)
	for i := 0; i < opts.Posts; i++ {
		author := users[f.faker.Number(0, len(users)-1)]
		var group *models.Group
		// roughly one post in four stays outside any group
		if len(groups) > 0 && f.faker.Number(0, 3) > 0 {
			group = &groups[f.faker.Number(0, len(groups)-1)]
		}
		posts = append(posts, f.BuildPost(author, group))
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return sum, fmt.Errorf("create posts: %w", err)
	}
	sum.Posts = len(posts)

	for _, p := range posts {
		for i := 0; i < opts.CommentsPerPost; i++ {
			author := users[f.faker.Number(0, len(users)-1)]
			if _, err := f.CreateComment(author, p); err != nil {
				return sum, fmt.Errorf("create comment: %w", err)
			}
			sum.Comments++
		}
	}

	for _, u := range users {
		for i := 0; i < opts.FollowsPerUser; i++ {
			created, err := f.CreateFollow(u, users[f.faker.Number(0, len(users)-1)])
			if err != nil {
				return sum, fmt.Errorf("create follow: %w", err)
			}
			if created {
				sum.Follows++
			}
		}
	}

	middleware.Logger.InfoContext(ctx, "seed complete",
		slog.Int("users", sum.Users), slog.Int("posts", sum.Posts),
		slog.Int("comments", sum.Comments), slog.Int("follows", sum.Follows),
		slog.Bool("dry_run", opts.DryRun))
	return sum, nil
}
