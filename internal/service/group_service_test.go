package service

import (
	"context"
	"strings"
	"testing"

	"yatube/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFixtures(t *testing.T) {
	t.Parallel()

	fixtures, err := ParseFixtures(strings.NewReader(`
- title: Cats
  slug: cats
  description: Everything about cats
- title: " Dogs "
  slug: dogs
`))
	require.NoError(t, err)
	require.Len(t, fixtures, 2)
	assert.Equal(t, "Dogs", fixtures[1].Title)
	assert.Equal(t, "Everything about cats", fixtures[0].Description)

	empty, err := ParseFixtures(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty)

	tests := []struct {
		name string
		doc  string
	}{
		{"not a list", "title: cats"},
		{"missing title", "- slug: cats"},
		{"bad slug", "- title: Cats\n  slug: 'cats and dogs'"},
		{"duplicate slug", "- title: A\n  slug: a\n- title: B\n  slug: a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFixtures(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestGroupService_LoadFixtures(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{"cats": true}
	groups := noopGroupRepo()
	groups.upsertFn = func(_ context.Context, g *models.Group) (bool, error) {
		if seen[g.Slug] {
			return false, nil
		}
		seen[g.Slug] = true
		return true, nil
	}
	svc := NewGroupService(groups)

	res, err := svc.LoadFixtures(context.Background(), []GroupFixture{
		{Title: "Cats", Slug: "cats"},
		{Title: "Dogs", Slug: "dogs"},
		{Title: "Birds", Slug: "birds"},
	})
	require.NoError(t, err)
	assert.Equal(t, FixtureResult{Created: 2, Updated: 1}, res)
}
