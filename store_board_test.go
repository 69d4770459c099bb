package homepage_test

import (
	"context"
	"testing"

	homepage "github.com/goliatone/go-homepage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardPersistenceRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	messages := []homepage.GuestbookMessage{
		{ID: uuid.New(), Name: "alice", Content: "first", PeerAddr: "203.0.113.9"},
		{ID: uuid.New(), Name: "bob", Content: "second", PeerAddr: "203.0.113.10"},
	}

	require.NoError(t, store.SaveBoard(ctx, messages))

	loaded, err := store.LoadBoard(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "first", loaded[0].Content)
	assert.Equal(t, "second", loaded[1].Content)

	// a save replaces the previous board wholesale
	require.NoError(t, store.SaveBoard(ctx, messages[1:]))

	loaded, err = store.LoadBoard(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "second", loaded[0].Content)
}

func TestSaveBoardEmpty(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveBoard(ctx, []homepage.GuestbookMessage{
		{ID: uuid.New(), Name: "alice", Content: "hello", PeerAddr: "203.0.113.9"},
	}))
	require.NoError(t, store.SaveBoard(ctx, nil))

	loaded, err := store.LoadBoard(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestVisitorsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// schema bootstrap seeds the counter row
	visitors, err := store.Visitors(ctx)
	require.NoError(t, err)
	assert.Zero(t, visitors)

	require.NoError(t, store.SetVisitors(ctx, 1234))

	visitors, err = store.Visitors(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), visitors)
}
