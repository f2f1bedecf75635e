package repository

import (
	"context"
	"testing"

	"yatube/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestRepositories_StartStoreSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := observability.Tracer
	observability.Tracer = tp.Tracer("test")
	t.Cleanup(func() { observability.Tracer = prev })

	db := setupTestDB(t)
	f := fixture{db: db, t: t}
	reader := f.user("reader")
	author := f.user("author")
	ctx := context.Background()

	_, err := NewFollowRepository(db).CountFollowers(ctx, author.ID)
	require.NoError(t, err)
	_, err = NewPostRepository(db).Count(ctx, PostFilter{FollowerID: reader.ID})
	require.NoError(t, err)

	var names []string
	tables := map[string]string{}
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
		for _, kv := range s.Attributes() {
			if kv.Key == attribute.Key("db.table") {
				tables[s.Name()] = kv.Value.AsString()
			}
		}
	}
	assert.Contains(t, names, "store.CountFollowers")
	assert.Contains(t, names, "store.Count")
	assert.Equal(t, "follows", tables["store.CountFollowers"])
	assert.Equal(t, "posts", tables["store.Count"])
}
