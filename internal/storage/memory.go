package storage

import (
	"context"
	"sync"

	"github.com/krendi/telecards/internal/domains/entities"
)

// MemoryStore is an in-process PlayerStore for tests and local mode.
// Updates to the same player id are serialized behind the mutex.
type MemoryStore struct {
	mu      sync.Mutex
	players map[string]entities.Player
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{players: make(map[string]entities.Player)}
}

func (m *MemoryStore) GetPlayer(_ context.Context, playerID string) (entities.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	player, ok := m.players[playerID]
	if !ok {
		player = DefaultPlayer(playerID)
		m.players[playerID] = player
	}
	return player, nil
}

func (m *MemoryStore) UpdatePlayer(_ context.Context, playerID string, update PlayerUpdate) (entities.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	player, ok := m.players[playerID]
	if !ok {
		player = DefaultPlayer(playerID)
	}
	update.applyTo(&player)
	m.players[playerID] = player
	return player, nil
}

// PutPlayer seeds a record directly; test helper.
func (m *MemoryStore) PutPlayer(player entities.Player) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[player.ID] = player
}
