package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/krendi/telecards/internal/domains/entities"
)

// GetPlayer loads the player record, creating and persisting a default
// record on first access.
func (client *Client) GetPlayer(ctx context.Context, playerID string) (entities.Player, error) {
	output, err := client.dynamodb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: client.cfg.PlayersTableName,
		Key: map[string]types.AttributeValue{
			"PlayerId": &types.AttributeValueMemberS{Value: playerID},
		},
	})
	if err != nil {
		return entities.Player{}, fmt.Errorf("failed to get player: %w", err)
	}
	if output.Item == nil {
		player := DefaultPlayer(playerID)
		if err := client.putPlayer(ctx, player); err != nil {
			return entities.Player{}, err
		}
		return player, nil
	}
	var player entities.Player
	if err := attributevalue.UnmarshalMap(output.Item, &player); err != nil {
		return entities.Player{}, fmt.Errorf("failed to unmarshal player: %w", err)
	}
	return player, nil
}

// UpdatePlayer applies the partial update with last-writer-wins semantics.
func (client *Client) UpdatePlayer(ctx context.Context, playerID string, update PlayerUpdate) (entities.Player, error) {
	player, err := client.GetPlayer(ctx, playerID)
	if err != nil {
		return entities.Player{}, err
	}
	update.applyTo(&player)
	if err := client.putPlayer(ctx, player); err != nil {
		return entities.Player{}, err
	}
	return player, nil
}

func (client *Client) putPlayer(ctx context.Context, player entities.Player) error {
	av, err := attributevalue.MarshalMap(player)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}
	_, err = client.dynamodb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: client.cfg.PlayersTableName,
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put player: %w", err)
	}
	return nil
}
