package database

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistentModels_ParentsFirst(t *testing.T) {
	order := map[string]int{}
	for i, m := range PersistentModels() {
		order[fmt.Sprintf("%T", m)] = i
	}
	require.Len(t, order, 5)

	assert.Less(t, order["*models.User"], order["*models.Post"])
	assert.Less(t, order["*models.Group"], order["*models.Post"])
	assert.Less(t, order["*models.Post"], order["*models.Comment"])
	assert.Less(t, order["*models.User"], order["*models.Follow"])
}
