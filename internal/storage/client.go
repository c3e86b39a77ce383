// Package storage persists player records. The DynamoDB client is the
// production implementation; MemoryStore backs tests and local mode.
package storage

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/krendi/telecards/internal/domains/entities"
)

// PlayerUpdate carries the partial fields of an update. Nil pointers and
// nil slices leave the stored value untouched.
type PlayerUpdate struct {
	Name          *string
	AvatarURL     *string
	Level         *int
	XP            *int
	XPToNextLevel *int
	Rating        *int
	KrendiCoins   *int
	KrendiDust    *int
	OwnedCardIDs  []string
	Decks         []entities.Deck
	TotalWins     *int
	PvpWins       *int
	BotWins       *int
}

func (u PlayerUpdate) applyTo(p *entities.Player) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.AvatarURL != nil {
		p.AvatarURL = *u.AvatarURL
	}
	if u.Level != nil {
		p.Level = *u.Level
	}
	if u.XP != nil {
		p.XP = *u.XP
	}
	if u.XPToNextLevel != nil {
		p.XPToNextLevel = *u.XPToNextLevel
	}
	if u.Rating != nil {
		p.Rating = *u.Rating
	}
	if u.KrendiCoins != nil {
		p.KrendiCoins = *u.KrendiCoins
	}
	if u.KrendiDust != nil {
		p.KrendiDust = *u.KrendiDust
	}
	if u.OwnedCardIDs != nil {
		p.OwnedCardIDs = u.OwnedCardIDs
	}
	if u.Decks != nil {
		p.Decks = u.Decks
	}
	if u.TotalWins != nil {
		p.TotalWins = *u.TotalWins
	}
	if u.PvpWins != nil {
		p.PvpWins = *u.PvpWins
	}
	if u.BotWins != nil {
		p.BotWins = *u.BotWins
	}
}

// PlayerStore is the contract the match core needs from the player
// record system. GetPlayer creates a default record on first access and
// reads are immediately visible to the calling flow.
type PlayerStore interface {
	GetPlayer(ctx context.Context, playerID string) (entities.Player, error)
	UpdatePlayer(ctx context.Context, playerID string, update PlayerUpdate) (entities.Player, error)
}

type Config struct {
	PlayersTableName *string
}

// Client is the DynamoDB-backed PlayerStore.
type Client struct {
	dynamodb *dynamodb.Client
	cfg      Config
}

func NewClient(dynamoClient *dynamodb.Client, cfg Config) *Client {
	return &Client{
		dynamodb: dynamoClient,
		cfg:      cfg,
	}
}
