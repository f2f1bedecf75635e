package seed

import (
	"bytes"
	"context"
	_ "embed"

	"yatube/internal/repository"
	"yatube/internal/service"

	"gorm.io/gorm"
)

//go:embed groups.yaml
var defaultGroupsYAML []byte

// DefaultGroupFixtures returns the built-in groups.
func DefaultGroupFixtures() ([]service.GroupFixture, error) {
	return service.ParseFixtures(bytes.NewReader(defaultGroupsYAML))
}

// DefaultGroups upserts the built-in groups. Running it again only refreshes
// titles and descriptions.
func DefaultGroups(ctx context.Context, db *gorm.DB) (service.FixtureResult, error) {
	fixtures, err := DefaultGroupFixtures()
	if err != nil {
		return service.FixtureResult{}, err
	}
	svc := service.NewGroupService(repository.NewGroupRepository(db))
	return svc.LoadFixtures(ctx, fixtures)
}
