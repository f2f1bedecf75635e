package service

import (
	"context"

	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo}
}

// Follow subscribes userID to the author named username. Following twice is
// a no-op; following yourself is a validation error. The author is returned
// in every non-NotFound case so callers can redirect to the profile.
func (s *FollowService) Follow(ctx context.Context, userID uint, username string) (*models.User, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if author.ID == userID {
		return author, repository.ErrSelfFollow
	}
	created, err := s.followRepo.Create(ctx, userID, author.ID)
	if err != nil {
		return author, err
	}
	if created {
		observability.FollowEvents.WithLabelValues("follow").Inc()
	}
	return author, nil
}

// Unfollow removes the subscription if there is one.
func (s *FollowService) Unfollow(ctx context.Context, userID uint, username string) (*models.User, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	removed, err := s.followRepo.Delete(ctx, userID, author.ID)
	if err != nil {
		return author, err
	}
	if removed {
		observability.FollowEvents.WithLabelValues("unfollow").Inc()
	}
	return author, nil
}

// IsFollowing is false for anonymous viewers (userID 0).
func (s *FollowService) IsFollowing(ctx context.Context, userID, authorID uint) (bool, error) {
	if userID == 0 || userID == authorID {
		return false, nil
	}
	return s.followRepo.Exists(ctx, userID, authorID)
}

// CountFollowers returns how many users follow authorID.
func (s *FollowService) CountFollowers(ctx context.Context, authorID uint) (int64, error) {
	return s.followRepo.CountFollowers(ctx, authorID)
}
