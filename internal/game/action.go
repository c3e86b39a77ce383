package game

// ActionType discriminates the Action union.
type ActionType string

const (
	ActionPlayCard ActionType = "PLAY_CARD"
	ActionAttack   ActionType = "ATTACK"
	ActionEndTurn  ActionType = "END_TURN"
)

// Reserved target ids mapping to the two heroes. "opponent" is always
// relative to the acting participant.
const (
	TargetOpponentHero = "opponent_hero"
	TargetOwnHero      = "player_hero"
)

// Action is a player's intended move. Exactly one shape is meaningful per
// type: PlayCard uses CardInstanceID/Position/TargetID, Attack uses
// AttackerInstanceID/TargetID, EndTurn carries nothing.
type Action struct {
	Type               ActionType `json:"type"`
	CardInstanceID     string     `json:"cardInstanceId,omitempty"`
	Position           *int       `json:"position,omitempty"`
	TargetID           string     `json:"targetId,omitempty"`
	AttackerInstanceID string     `json:"attackerInstanceId,omitempty"`
}

func EndTurnAction() Action {
	return Action{Type: ActionEndTurn}
}
