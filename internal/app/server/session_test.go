package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krendi/telecards/internal/game"
	"github.com/krendi/telecards/internal/storage"
)

// recordConn captures everything a session writes to one participant.
type recordConn struct {
	mu     sync.Mutex
	msgs   []notice
	closed bool
}

func (c *recordConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, v.(notice))
	return nil
}

func (c *recordConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *recordConn) count(msgType string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, m := range c.msgs {
		if m.Type == msgType {
			n++
		}
	}
	return n
}

func (c *recordConn) last(msgType string) (notice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.msgs) - 1; i >= 0; i-- {
		if c.msgs[i].Type == msgType {
			return c.msgs[i], true
		}
	}
	return notice{}, false
}

func testSessionConfig() SessionConfig {
	return SessionConfig{
		TurnDuration:  time.Minute,
		CancelTimeout: time.Minute,
		BotDelayMin:   time.Millisecond,
		BotDelayMax:   5 * time.Millisecond,
	}
}

func humanParticipant(id, name string) Participant {
	return Participant{
		ID:   id,
		Name: name,
		DeckCardIDs: []string{
			"c001", "c002", "c003", "c004", "c005", "c006", "c007", "c008",
		},
	}
}

func newTestSession(t *testing.T, cfg SessionConfig) (*Session, *storage.MemoryStore, chan *Session) {
	t.Helper()
	store := storage.NewMemoryStore()
	ended := make(chan *Session, 1)
	sess, err := NewSession(
		humanParticipant("alice", "Alice"),
		humanParticipant("bob", "Bob"),
		game.NewEngine(game.DefaultCatalog()),
		store,
		cfg,
		func(s *Session) { ended <- s },
	)
	require.NoError(t, err)
	t.Cleanup(func() { sess.HandleDisconnect("alice") })
	return sess, store, ended
}

func TestSessionStartsWhenBothJoin(t *testing.T) {
	sess, _, _ := newTestSession(t, testSessionConfig())
	aliceConn, bobConn := &recordConn{}, &recordConn{}

	require.NoError(t, sess.Join("alice", aliceConn))
	require.NoError(t, sess.Join("bob", bobConn))

	require.Eventually(t, func() bool {
		return aliceConn.count(MsgGameStateUpdate) >= 1 && bobConn.count(MsgGameStateUpdate) >= 1
	}, time.Second, 5*time.Millisecond)

	msg, ok := aliceConn.last(MsgGameStateUpdate)
	require.True(t, ok)
	state := msg.Payload.(*game.MatchState)
	assert.Equal(t, "alice", state.CurrentTurnParticipantID)
}

func TestSessionRejectsUnknownParticipant(t *testing.T) {
	sess, _, _ := newTestSession(t, testSessionConfig())
	assert.ErrorIs(t, sess.Join("mallory", &recordConn{}), ErrNotAParticipant)
}

func TestActionBeforeStartRejected(t *testing.T) {
	sess, _, _ := newTestSession(t, testSessionConfig())
	aliceConn := &recordConn{}
	require.NoError(t, sess.Join("alice", aliceConn))

	sess.Submit("alice", game.EndTurnAction())

	require.Eventually(t, func() bool {
		return aliceConn.count(MsgError) >= 1
	}, time.Second, 5*time.Millisecond)
	msg, _ := aliceConn.last(MsgError)
	assert.Equal(t, ErrStatusMatchNotStarted, msg.Payload.(errorPayload).Message)
}

func TestOutOfTurnActionRejected(t *testing.T) {
	sess, _, _ := newTestSession(t, testSessionConfig())
	aliceConn, bobConn := &recordConn{}, &recordConn{}
	require.NoError(t, sess.Join("alice", aliceConn))
	require.NoError(t, sess.Join("bob", bobConn))

	sess.Submit("bob", game.EndTurnAction())

	require.Eventually(t, func() bool {
		return bobConn.count(MsgError) >= 1
	}, time.Second, 5*time.Millisecond)
	msg, _ := bobConn.last(MsgError)
	assert.Equal(t, ErrStatusNotYourTurn, msg.Payload.(errorPayload).Message)
	assert.Zero(t, aliceConn.count(MsgError))
}

func TestEndTurnBroadcastsToBoth(t *testing.T) {
	sess, _, _ := newTestSession(t, testSessionConfig())
	aliceConn, bobConn := &recordConn{}, &recordConn{}
	require.NoError(t, sess.Join("alice", aliceConn))
	require.NoError(t, sess.Join("bob", bobConn))

	sess.Submit("alice", game.EndTurnAction())

	require.Eventually(t, func() bool {
		return aliceConn.count(MsgGameStateUpdate) >= 2 && bobConn.count(MsgGameStateUpdate) >= 2
	}, time.Second, 5*time.Millisecond)

	msg, _ := bobConn.last(MsgGameStateUpdate)
	state := msg.Payload.(*game.MatchState)
	assert.Equal(t, "bob", state.CurrentTurnParticipantID)
}

func TestDisconnectForfeitsAndPersistsProgression(t *testing.T) {
	sess, store, ended := newTestSession(t, testSessionConfig())
	aliceConn, bobConn := &recordConn{}, &recordConn{}
	require.NoError(t, sess.Join("alice", aliceConn))
	require.NoError(t, sess.Join("bob", bobConn))

	sess.HandleDisconnect("alice")

	select {
	case <-ended:
	case <-time.After(time.Second):
		t.Fatal("session did not end after disconnect")
	}

	over, ok := bobConn.last(MsgGameOver)
	require.True(t, ok)
	assert.Equal(t, "bob", over.Payload.(gameOverPayload).WinnerID)

	ctx := context.Background()
	winner, err := store.GetPlayer(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 30, winner.XP)
	assert.Equal(t, 1015, winner.Rating)
	assert.Equal(t, 1, winner.TotalWins)
	assert.Equal(t, 1, winner.PvpWins)
	assert.Equal(t, 0, winner.BotWins)

	loser, err := store.GetPlayer(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 10, loser.XP)
	assert.Equal(t, 990, loser.Rating)
	assert.Equal(t, 0, loser.TotalWins)

	update, ok := bobConn.last(MsgProgressionUpdate)
	require.True(t, ok)
	payload := update.Payload.(progressionPayload)
	assert.Equal(t, 30, payload.XP)
	assert.Equal(t, 1015, payload.Rating)
}

func TestTurnTimerSynthesizesEndTurn(t *testing.T) {
	cfg := testSessionConfig()
	cfg.TurnDuration = 30 * time.Millisecond
	sess, _, _ := newTestSession(t, cfg)
	aliceConn, bobConn := &recordConn{}, &recordConn{}
	require.NoError(t, sess.Join("alice", aliceConn))
	require.NoError(t, sess.Join("bob", bobConn))

	require.Eventually(t, func() bool {
		msg, ok := bobConn.last(MsgGameStateUpdate)
		if !ok {
			return false
		}
		return msg.Payload.(*game.MatchState).CurrentTurnParticipantID == "bob"
	}, time.Second, 5*time.Millisecond)
}

func TestBotMatchPlaysItsTurn(t *testing.T) {
	store := storage.NewMemoryStore()
	sess, err := NewSession(
		humanParticipant("human", "Human"),
		Participant{ID: botParticipantID, Name: botName, DeckCardIDs: botDeckCardIDs, IsBot: true},
		game.NewEngine(game.DefaultCatalog()),
		store,
		testSessionConfig(),
		nil,
	)
	require.NoError(t, err)
	t.Cleanup(func() { sess.HandleDisconnect("human") })
	conn := &recordConn{}
	require.NoError(t, sess.Join("human", conn))

	require.Eventually(t, func() bool {
		return conn.count(MsgGameStateUpdate) >= 1
	}, time.Second, 5*time.Millisecond)

	sess.Submit("human", game.EndTurnAction())

	// The scripted opponent takes its whole turn and hands control back.
	require.Eventually(t, func() bool {
		msg, ok := conn.last(MsgGameStateUpdate)
		if !ok {
			return false
		}
		state := msg.Payload.(*game.MatchState)
		return state.CurrentTurnParticipantID == "human" && state.TurnCounter == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAbortWhenNobodyJoins(t *testing.T) {
	cfg := testSessionConfig()
	cfg.CancelTimeout = 20 * time.Millisecond
	sess, _, ended := newTestSession(t, cfg)

	select {
	case <-ended:
	case <-time.After(time.Second):
		t.Fatal("session was not aborted")
	}
	assert.ErrorIs(t, sess.Join("alice", &recordConn{}), ErrSessionEnded)
}

func TestRejoinClosesReplacedConnection(t *testing.T) {
	sess, _, _ := newTestSession(t, testSessionConfig())
	first, second := &recordConn{}, &recordConn{}

	require.NoError(t, sess.Join("alice", first))
	require.NoError(t, sess.Join("alice", second))

	require.Eventually(t, func() bool {
		return second.count(MsgGameStateUpdate) >= 1
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		first.mu.Lock()
		defer first.mu.Unlock()
		return first.closed
	}, time.Second, 5*time.Millisecond)
}

func TestConnectionsClosedOnGameOver(t *testing.T) {
	sess, _, ended := newTestSession(t, testSessionConfig())
	aliceConn, bobConn := &recordConn{}, &recordConn{}
	require.NoError(t, sess.Join("alice", aliceConn))
	require.NoError(t, sess.Join("bob", bobConn))

	sess.HandleDisconnect("bob")
	<-ended

	aliceConn.mu.Lock()
	closed := aliceConn.closed
	aliceConn.mu.Unlock()
	assert.True(t, closed)
}
