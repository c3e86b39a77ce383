package game

import "fmt"

// OpponentKind tags what sits on the other side of a match.
type OpponentKind string

const (
	OpponentHuman    OpponentKind = "human"
	OpponentScripted OpponentKind = "bot"
)

// CardInstance is a concrete copy of a definition living in a hand or on a
// board. Attack and health are per-copy so buffs never touch the shared
// definition. Every zone transition produces a fresh instance with a new id.
type CardInstance struct {
	Def           *CardDefinition `json:"card"`
	InstanceID    string          `json:"instanceId"`
	Attack        *int            `json:"attack,omitempty"`
	CurrentHealth int             `json:"currentHealth,omitempty"`
	MaxHealth     int             `json:"maxHealth,omitempty"`
	Played        bool            `json:"played"`
	HasAttacked   bool            `json:"hasAttacked"`
}

func (ci *CardInstance) IsMinion() bool {
	return ci.Attack != nil
}

func (ci *CardInstance) Alive() bool {
	return ci.CurrentHealth > 0
}

func (ci *CardInstance) HasAbility(kind AbilityKind) bool {
	return ci.Def.HasAbility(kind)
}

func (ci *CardInstance) clone() *CardInstance {
	dup := *ci
	if ci.Attack != nil {
		dup.Attack = intp(*ci.Attack)
	}
	return &dup
}

// ParticipantState is one side of a match.
type ParticipantState struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	AvatarURL      string            `json:"avatarUrl,omitempty"`
	Health         int               `json:"health"`
	MaxHealth      int               `json:"maxHealth"`
	Mana           int               `json:"mana"`
	MaxMana        int               `json:"maxMana"`
	Deck           []*CardDefinition `json:"deck"`
	Hand           []*CardInstance   `json:"hand"`
	Board          []*CardInstance   `json:"board"`
	BurnoutCounter int               `json:"burnoutCounter"`
}

func (p *ParticipantState) clone() *ParticipantState {
	dup := *p
	dup.Deck = make([]*CardDefinition, len(p.Deck))
	copy(dup.Deck, p.Deck) // definitions are immutable, share them
	dup.Hand = make([]*CardInstance, len(p.Hand))
	for i, ci := range p.Hand {
		dup.Hand[i] = ci.clone()
	}
	dup.Board = make([]*CardInstance, len(p.Board))
	for i, ci := range p.Board {
		dup.Board[i] = ci.clone()
	}
	return &dup
}

func (p *ParticipantState) handIndex(instanceID string) int {
	for i, ci := range p.Hand {
		if ci.InstanceID == instanceID {
			return i
		}
	}
	return -1
}

func (p *ParticipantState) boardMinion(instanceID string) *CardInstance {
	for _, ci := range p.Board {
		if ci.InstanceID == instanceID {
			return ci
		}
	}
	return nil
}

// MatchState is the full authoritative state of one match. Slot 0 always
// holds the participant who moves first.
type MatchState struct {
	MatchID                  string               `json:"matchId"`
	Participants             [2]*ParticipantState `json:"participants"`
	CurrentTurnParticipantID string               `json:"currentTurnParticipantId"`
	TurnCounter              int                  `json:"turnNumber"`
	Log                      []string             `json:"log"`
	IsGameOver               bool                 `json:"isGameOver"`
	WinnerID                 string               `json:"winnerId,omitempty"`
	OpponentKind             OpponentKind         `json:"opponentKind"`
}

// Clone produces a state the caller may mutate without aliasing the
// receiver. Card definitions stay shared; everything mutable is copied.
func (s *MatchState) Clone() *MatchState {
	dup := *s
	dup.Participants[0] = s.Participants[0].clone()
	dup.Participants[1] = s.Participants[1].clone()
	dup.Log = make([]string, len(s.Log), len(s.Log)+4)
	copy(dup.Log, s.Log)
	return &dup
}

// acting returns the participant whose turn it is and their opponent.
func (s *MatchState) acting() (*ParticipantState, *ParticipantState) {
	if s.Participants[0].ID == s.CurrentTurnParticipantID {
		return s.Participants[0], s.Participants[1]
	}
	return s.Participants[1], s.Participants[0]
}

func (s *MatchState) Participant(id string) *ParticipantState {
	for _, p := range s.Participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *MatchState) Opponent(id string) *ParticipantState {
	if s.Participants[0].ID == id {
		return s.Participants[1]
	}
	return s.Participants[0]
}

func (s *MatchState) logf(format string, args ...any) {
	s.Log = append(s.Log, fmt.Sprintf(format, args...))
}
