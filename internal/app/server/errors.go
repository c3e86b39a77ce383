package server

import "errors"

// Wire-level rejection statuses.
const (
	ErrStatusNotYourTurn      = "Not your turn."
	ErrStatusGameOver         = "Game is over. No more actions allowed."
	ErrStatusMatchNotStarted  = "Match has not started yet."
	ErrStatusInvalidFormat    = "Invalid message format."
	ErrStatusNoActiveDeck     = "No active or valid deck found. Please set one up."
	ErrStatusFriendOffline    = "Friend is not online or available."
	ErrStatusInvalidChallenge = "Invalid or expired challenge."
)

var (
	ErrMatchNotFound   = errors.New("match not found")
	ErrNotAParticipant = errors.New("participant does not belong to this match")
	ErrSessionEnded    = errors.New("session already ended")
)
