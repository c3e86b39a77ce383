package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlayerCreatesDefaultRecord(t *testing.T) {
	store := NewMemoryStore()

	player, err := store.GetPlayer(context.Background(), "user123456")
	require.NoError(t, err)

	assert.Equal(t, "user123456", player.ID)
	assert.Equal(t, "Player user1", player.Name)
	assert.Equal(t, 1, player.Level)
	assert.Equal(t, initialRating, player.Rating)
	assert.Equal(t, 100, player.XPToNextLevel)
	assert.True(t, player.HasUsableDeck())

	deck, ok := player.ActiveDeck()
	require.True(t, ok)
	assert.Equal(t, starterDeckCardIDs, deck.CardIDs)
	assert.Equal(t, starterDeckCardIDs, player.OwnedCardIDs)
}

func TestGetPlayerIsStable(t *testing.T) {
	store := NewMemoryStore()

	first, err := store.GetPlayer(context.Background(), "u1")
	require.NoError(t, err)
	second, err := store.GetPlayer(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestUpdatePlayerPartial(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_, err := store.GetPlayer(ctx, "u1")
	require.NoError(t, err)

	rating := 1015
	level := 2
	updated, err := store.UpdatePlayer(ctx, "u1", PlayerUpdate{
		Rating: &rating,
		Level:  &level,
	})
	require.NoError(t, err)

	assert.Equal(t, 1015, updated.Rating)
	assert.Equal(t, 2, updated.Level)
	// Fields not named in the update keep their stored values.
	assert.Equal(t, "Player u1", updated.Name)
	assert.True(t, updated.HasUsableDeck())

	reread, err := store.GetPlayer(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, updated, reread)
}

func TestUpdatePlayerUnknownIDCreatesRecord(t *testing.T) {
	store := NewMemoryStore()
	wins := 1

	updated, err := store.UpdatePlayer(context.Background(), "fresh", PlayerUpdate{TotalWins: &wins})
	require.NoError(t, err)

	assert.Equal(t, 1, updated.TotalWins)
	assert.Equal(t, initialRating, updated.Rating)
}
