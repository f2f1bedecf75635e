package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/validation"

	"gopkg.in/yaml.v3"
)

type GroupService struct {
	groupRepo repository.GroupRepository
}

// GroupFixture is one entry of a groups YAML file:
//
//	- title: Cats
//	  slug: cats
//	  description: Everything about cats
type GroupFixture struct {
	Title       string `yaml:"title"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

// FixtureResult counts what LoadFixtures did.
type FixtureResult struct {
	Created int
	Updated int
}

func NewGroupService(groupRepo repository.GroupRepository) *GroupService {
	return &GroupService{groupRepo: groupRepo}
}

func (s *GroupService) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	return s.groupRepo.GetBySlug(ctx, slug)
}

func (s *GroupService) List(ctx context.Context) ([]models.Group, error) {
	return s.groupRepo.List(ctx)
}

func (s *GroupService) Exists(ctx context.Context, id uint) (bool, error) {
	return s.groupRepo.Exists(ctx, id)
}

// ParseFixtures decodes and validates a groups YAML document.
func ParseFixtures(r io.Reader) ([]GroupFixture, error) {
	var fixtures []GroupFixture
	if err := yaml.NewDecoder(r).Decode(&fixtures); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode groups: %w", err)
	}

	seen := make(map[string]bool, len(fixtures))
	for i, f := range fixtures {
		f.Title = strings.TrimSpace(f.Title)
		f.Slug = strings.TrimSpace(f.Slug)
		if f.Title == "" {
			return nil, fmt.Errorf("group %d: title is required", i+1)
		}
		if err := validation.ValidateSlug(f.Slug); err != nil {
			return nil, fmt.Errorf("group %d (%q): %w", i+1, f.Slug, err)
		}
		if seen[f.Slug] {
			return nil, fmt.Errorf("group %d: duplicate slug %q", i+1, f.Slug)
		}
		seen[f.Slug] = true
		fixtures[i] = f
	}
	return fixtures, nil
}

// LoadFixtures upserts groups by slug.
func (s *GroupService) LoadFixtures(ctx context.Context, fixtures []GroupFixture) (FixtureResult, error) {
	var res FixtureResult
	for _, f := range fixtures {
		created, err := s.groupRepo.Upsert(ctx, &models.Group{
			Title:       f.Title,
			Slug:        f.Slug,
			Description: f.Description,
		})
		if err != nil {
			return res, fmt.Errorf("upsert group %q: %w", f.Slug, err)
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}
	middleware.Logger.InfoContext(ctx, "group fixtures loaded", "created", res.Created, "updated", res.Updated)
	return res, nil
}
