package storage

import (
	"fmt"

	"github.com/krendi/telecards/internal/domains/entities"
	"github.com/krendi/telecards/pkg/utils"
)

const initialRating = 1000

// starterDeckCardIDs is the collection every new player begins with,
// already assembled into an active deck.
var starterDeckCardIDs = []string{
	"c001", "c002", "c003", "c004", "c005", "c006", "r002", "s001",
}

// DefaultPlayer is the record created on a player's first access.
func DefaultPlayer(playerID string) entities.Player {
	suffix := playerID
	if len(suffix) > 5 {
		suffix = suffix[:5]
	}
	return entities.Player{
		ID:            playerID,
		Name:          fmt.Sprintf("Player %s", suffix),
		Level:         1,
		XP:            0,
		XPToNextLevel: 100,
		Rating:        initialRating,
		OwnedCardIDs:  append([]string(nil), starterDeckCardIDs...),
		Decks: []entities.Deck{
			{
				ID:       utils.GenerateUUID(),
				Name:     "Starter Deck",
				CardIDs:  append([]string(nil), starterDeckCardIDs...),
				IsActive: true,
			},
		},
	}
}
