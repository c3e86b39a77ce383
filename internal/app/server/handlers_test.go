package server

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krendi/telecards/internal/domains/entities"
	"github.com/krendi/telecards/internal/matchmaking"
	"github.com/krendi/telecards/internal/storage"
)

func challengeTestServer() *Server {
	return NewServer(Config{
		LocalMode:     true,
		JwtSecret:     "test-secret",
		TurnDuration:  time.Minute,
		CancelTimeout: time.Minute,
		Matchmaking:   matchmaking.DefaultConfig(),
	})
}

func responsePayload(t *testing.T, challengeID string, accepted bool) json.RawMessage {
	t.Helper()
	payload, err := json.Marshal(challengeResponsePayload{ChallengeID: challengeID, Accepted: accepted})
	require.NoError(t, err)
	return payload
}

func TestDeclineNotifiesChallengerWithoutDeckCheck(t *testing.T) {
	s := challengeTestServer()
	// A responder with no usable deck can still decline.
	s.store.(*storage.MemoryStore).PutPlayer(entities.Player{ID: "bob", Name: "Bob"})

	challengerConn, responderConn := &recordConn{}, &recordConn{}
	s.broker.SetOnline("bob", responderConn)
	ch, _, err := s.broker.Create("alice", "bob", challengerConn, []string{"c001"})
	require.NoError(t, err)

	s.handleChallengeResponse(context.Background(), "bob", responderConn, responsePayload(t, ch.ID, false))

	declined, ok := challengerConn.last(MsgChallengeDeclined)
	require.True(t, ok, "challenger must receive the decline notice")
	payload := declined.Payload.(challengeDeclinedPayload)
	assert.Equal(t, ch.ID, payload.ChallengeID)
	assert.Equal(t, "Bob", payload.ResponderName)

	assert.Zero(t, responderConn.count(MsgError))
	assert.False(t, s.broker.Pending(ch.ID))
}

func TestAcceptStillRequiresUsableDeck(t *testing.T) {
	s := challengeTestServer()
	s.store.(*storage.MemoryStore).PutPlayer(entities.Player{ID: "bob", Name: "Bob"})

	challengerConn, responderConn := &recordConn{}, &recordConn{}
	s.broker.SetOnline("bob", responderConn)
	ch, _, err := s.broker.Create("alice", "bob", challengerConn, []string{"c001"})
	require.NoError(t, err)

	s.handleChallengeResponse(context.Background(), "bob", responderConn, responsePayload(t, ch.ID, true))

	msg, ok := responderConn.last(MsgError)
	require.True(t, ok)
	assert.Equal(t, ErrStatusNoActiveDeck, msg.Payload.(errorPayload).Message)
	assert.Zero(t, challengerConn.count(MsgMatchFound))
}
