package challenge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct{ id string }

func (fakeConn) WriteJSON(any) error { return nil }
func (fakeConn) Close() error        { return nil }

func TestCreateRequiresOnlineTarget(t *testing.T) {
	b := NewBroker()

	_, _, err := b.Create("alice", "bob", fakeConn{"alice"}, []string{"c001"})
	assert.ErrorIs(t, err, ErrNotOnline)

	b.SetOnline("bob", fakeConn{"bob"})
	ch, conn, err := b.Create("alice", "bob", fakeConn{"alice"}, []string{"c001"})
	require.NoError(t, err)
	assert.Equal(t, fakeConn{"bob"}, conn)
	assert.Equal(t, StatusPending, ch.Status)
	assert.True(t, b.Pending(ch.ID))
}

func TestCreateSnapshotsDeck(t *testing.T) {
	b := NewBroker()
	b.SetOnline("bob", fakeConn{"bob"})
	deck := []string{"c001", "c002"}

	ch, _, err := b.Create("alice", "bob", fakeConn{"alice"}, deck)
	require.NoError(t, err)

	deck[0] = "l001"
	assert.Equal(t, []string{"c001", "c002"}, ch.DeckCardIDs)
}

func TestTakeAcceptAndDecline(t *testing.T) {
	b := NewBroker()
	b.SetOnline("bob", fakeConn{"bob"})

	ch, _, err := b.Create("alice", "bob", fakeConn{"alice"}, []string{"c001"})
	require.NoError(t, err)

	taken, err := b.Take(ch.ID, "bob", true)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, taken.Status)
	assert.False(t, b.Pending(ch.ID))

	// A resolved challenge cannot be taken again.
	_, err = b.Take(ch.ID, "bob", false)
	assert.ErrorIs(t, err, ErrUnknownChallenge)

	ch2, _, err := b.Create("alice", "bob", fakeConn{"alice"}, []string{"c001"})
	require.NoError(t, err)
	declined, err := b.Take(ch2.ID, "bob", false)
	require.NoError(t, err)
	assert.Equal(t, StatusDeclined, declined.Status)
}

func TestTakeRejectsWrongResponder(t *testing.T) {
	b := NewBroker()
	b.SetOnline("bob", fakeConn{"bob"})

	ch, _, err := b.Create("alice", "bob", fakeConn{"alice"}, []string{"c001"})
	require.NoError(t, err)

	_, err = b.Take(ch.ID, "mallory", true)
	assert.ErrorIs(t, err, ErrWrongResponder)
	assert.True(t, b.Pending(ch.ID), "a failed take leaves the challenge pending")
}

func TestDisconnectCancelsBothDirections(t *testing.T) {
	b := NewBroker()
	b.SetOnline("alice", fakeConn{"alice"})
	b.SetOnline("bob", fakeConn{"bob"})
	b.SetOnline("carol", fakeConn{"carol"})

	sent, _, err := b.Create("alice", "bob", fakeConn{"alice"}, []string{"c001"})
	require.NoError(t, err)
	received, _, err := b.Create("carol", "alice", fakeConn{"carol"}, []string{"c001"})
	require.NoError(t, err)

	cancelled := b.Disconnect("alice")

	require.Len(t, cancelled, 2)
	for _, c := range cancelled {
		assert.Equal(t, StatusCancelled, c.Challenge.Status)
		assert.NotNil(t, c.OtherConn)
		assert.NotEqual(t, "alice", c.OtherID)
	}
	assert.False(t, b.Pending(sent.ID))
	assert.False(t, b.Pending(received.ID))

	_, online := b.Online("alice")
	assert.False(t, online)
}
