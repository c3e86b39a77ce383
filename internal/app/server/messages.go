package server

import (
	"encoding/json"

	"github.com/krendi/telecards/internal/game"
	"github.com/krendi/telecards/internal/progression"
)

// Inbound message types.
const (
	MsgPlayerAction      = "PLAYER_ACTION"
	MsgCancelFindMatch   = "CANCEL_FIND_MATCH"
	MsgFindBotMatch      = "FIND_BOT_MATCH"
	MsgChallengeFriend   = "CHALLENGE_FRIEND"
	MsgChallengeResponse = "CHALLENGE_RESPONSE"
)

// Outbound message types.
const (
	MsgGameStateUpdate       = "GAME_STATE_UPDATE"
	MsgGameOver              = "GAME_OVER"
	MsgError                 = "ERROR"
	MsgMatchFound            = "MATCH_FOUND"
	MsgMatchmakingQueued     = "MATCHMAKING_QUEUED"
	MsgMatchmakingCancelled  = "MATCHMAKING_CANCELLED"
	MsgChallengeIncoming     = "CHALLENGE_INCOMING"
	MsgChallengeSent         = "CHALLENGE_SENT"
	MsgChallengeDeclined     = "CHALLENGE_DECLINED_NOTICE"
	MsgChallengeCancelled    = "CHALLENGE_CANCELLED"
	MsgChallengeConnected    = "CHALLENGE_SYSTEM_CONNECTED"
	MsgProgressionUpdate     = "XP_UPDATE"
)

// envelope is the inbound wire frame; the payload stays raw until the
// type is known.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// notice is the outbound wire frame.
type notice struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func errorNotice(message string) notice {
	return notice{Type: MsgError, Payload: errorPayload{Message: message}}
}

type matchFoundPayload struct {
	MatchID    string `json:"matchId"`
	OpponentID string `json:"opponentId"`
}

type gameOverPayload struct {
	WinnerID string `json:"winnerId"`
	MatchID  string `json:"matchId"`
}

type challengeFriendPayload struct {
	FriendID string `json:"friendId"`
}

type challengeResponsePayload struct {
	ChallengeID string `json:"challengeId"`
	Accepted    bool   `json:"accepted"`
}

type challengeIncomingPayload struct {
	ChallengeID      string `json:"challengeId"`
	ChallengerID     string `json:"challengerId"`
	ChallengerName   string `json:"challengerName,omitempty"`
	ChallengerRating int    `json:"challengerRating,omitempty"`
}

type challengeSentPayload struct {
	ChallengeID  string `json:"challengeId"`
	ChallengedID string `json:"challengedId"`
}

type challengeDeclinedPayload struct {
	ChallengeID   string `json:"challengeId"`
	ResponderName string `json:"responderName,omitempty"`
}

type challengeCancelledPayload struct {
	ChallengeID string `json:"challengeId"`
	Reason      string `json:"reason"`
}

type progressionPayload struct {
	XP             int                  `json:"xp"`
	NewLevel       int                  `json:"newLevel"`
	XPToNextLevel  int                  `json:"xpToNextLevel"`
	Rating         int                  `json:"rating"`
	RewardsGranted []progression.Reward `json:"rewardsGranted"`
}

func gameStateNotice(state *game.MatchState) notice {
	return notice{Type: MsgGameStateUpdate, Payload: state}
}
