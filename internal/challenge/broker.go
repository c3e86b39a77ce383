package challenge

import (
	"errors"
	"sync"
	"time"

	"github.com/krendi/telecards/pkg/utils"
)

// Conn is the write side of a challenge-class connection.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusCancelled Status = "cancelled"
)

var (
	ErrNotOnline        = errors.New("challenged participant is not online")
	ErrUnknownChallenge = errors.New("unknown or expired challenge")
	ErrWrongResponder   = errors.New("responder does not match the challenge")
)

// Challenge is one outstanding invitation. The challenger's connection and
// deck card ids are snapshotted at invitation time.
type Challenge struct {
	ID             string
	ChallengerID   string
	ChallengedID   string
	ChallengerConn Conn
	DeckCardIDs    []string
	Status         Status
	CreatedAt      time.Time
}

// Broker tracks online challenge-capable participants and their pending
// invitations. It is a pure registry: all notification and match
// construction happens in the caller, so the broker stays testable in
// isolation.
type Broker struct {
	mu      sync.Mutex
	online  map[string]Conn
	pending map[string]*Challenge
}

func NewBroker() *Broker {
	return &Broker{
		online:  make(map[string]Conn),
		pending: make(map[string]*Challenge),
	}
}

// SetOnline registers a participant's connection for the lifetime of their
// challenge-class connection.
func (b *Broker) SetOnline(participantID string, conn Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.online[participantID] = conn
}

func (b *Broker) Online(participantID string) (Conn, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	conn, ok := b.online[participantID]
	return conn, ok
}

// Create records a pending challenge against an online participant,
// snapshotting the challenger's active deck. The caller has already
// validated that the deck is non-empty.
func (b *Broker) Create(challengerID, challengedID string, challengerConn Conn, deckCardIDs []string) (*Challenge, Conn, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	challengedConn, ok := b.online[challengedID]
	if !ok {
		return nil, nil, ErrNotOnline
	}
	c := &Challenge{
		ID:             utils.GenerateUUID(),
		ChallengerID:   challengerID,
		ChallengedID:   challengedID,
		ChallengerConn: challengerConn,
		DeckCardIDs:    append([]string(nil), deckCardIDs...),
		Status:         StatusPending,
		CreatedAt:      time.Now(),
	}
	b.pending[c.ID] = c
	return c, challengedConn, nil
}

// Take resolves a pending challenge for the given responder and removes it
// from pending storage, marking it accepted or declined.
func (b *Broker) Take(challengeID, responderID string, accepted bool) (*Challenge, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.pending[challengeID]
	if !ok || c.Status != StatusPending {
		return nil, ErrUnknownChallenge
	}
	if c.ChallengedID != responderID {
		return nil, ErrWrongResponder
	}
	delete(b.pending, challengeID)
	if accepted {
		c.Status = StatusAccepted
	} else {
		c.Status = StatusDeclined
	}
	return c, nil
}

// Pending reports whether a challenge id is still outstanding.
func (b *Broker) Pending(challengeID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.pending[challengeID]
	return ok
}

// Cancelled is a challenge voided by a disconnect, paired with the other
// party's connection when that party is still online.
type Cancelled struct {
	Challenge *Challenge
	OtherID   string
	OtherConn Conn
}

// Disconnect removes the participant from the online registry and cancels
// every pending challenge naming them on either side, returning the
// cancellations so the caller can send notices.
func (b *Broker) Disconnect(participantID string) []Cancelled {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.online, participantID)

	var cancelled []Cancelled
	for id, c := range b.pending {
		if c.ChallengerID != participantID && c.ChallengedID != participantID {
			continue
		}
		delete(b.pending, id)
		c.Status = StatusCancelled
		otherID := c.ChallengerID
		if otherID == participantID {
			otherID = c.ChallengedID
		}
		cancelled = append(cancelled, Cancelled{
			Challenge: c,
			OtherID:   otherID,
			OtherConn: b.online[otherID],
		})
	}
	return cancelled
}
