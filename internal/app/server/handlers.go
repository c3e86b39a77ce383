package server

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"

	"go.uber.org/zap"

	"github.com/krendi/telecards/internal/challenge"
	"github.com/krendi/telecards/internal/game"
	"github.com/krendi/telecards/internal/matchmaking"
	"github.com/krendi/telecards/pkg/logging"
)

// handleMatchmakingWS serves a matchmaking-class connection: it enqueues
// the authenticated player with their active deck and keeps reading for
// cancel and bot-match requests until the client hangs up.
func (s *Server) handleMatchmakingWS(w http.ResponseWriter, r *http.Request) {
	playerID, err := s.authenticate(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("failed to upgrade matchmaking connection", zap.Error(err))
		return
	}
	defer conn.Close()

	record, err := s.store.GetPlayer(r.Context(), playerID)
	if err != nil {
		logging.Error("failed to load player", zap.String("player_id", playerID), zap.Error(err))
		conn.WriteJSON(errorNotice("Failed to load your profile."))
		return
	}
	deck, ok := record.ActiveDeck()
	if !ok || len(deck.CardIDs) == 0 {
		conn.WriteJSON(errorNotice(ErrStatusNoActiveDeck))
		return
	}

	s.queue.Enqueue(matchmaking.Entry{
		ParticipantID: playerID,
		Rating:        record.Rating,
		DeckID:        deck.ID,
		Conn:          conn,
	})
	conn.WriteJSON(notice{Type: MsgMatchmakingQueued})
	defer s.queue.RemoveIf(playerID, conn)

	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		switch env.Type {
		case MsgCancelFindMatch:
			s.queue.RemoveIf(playerID, conn)
			conn.WriteJSON(notice{Type: MsgMatchmakingCancelled})
		case MsgFindBotMatch:
			s.queue.RemoveIf(playerID, conn)
			s.startBotMatch(r.Context(), playerID, conn)
		default:
			conn.WriteJSON(errorNotice(ErrStatusInvalidFormat))
		}
	}
}

// onPair is the matchmaking queue's callback. Player records are
// re-fetched so the deck and rating reflect the moment of pairing, not
// the moment of enqueueing.
func (s *Server) onPair(a, b matchmaking.Entry) {
	ctx := context.Background()

	first, errA := s.pairedParticipant(ctx, a.ParticipantID)
	second, errB := s.pairedParticipant(ctx, b.ParticipantID)
	if errA != nil || errB != nil {
		// Whoever still has a usable record goes back to waiting with
		// their original timestamp, so their widened gap survives.
		if errA != nil {
			a.Conn.WriteJSON(errorNotice(ErrStatusNoActiveDeck))
			if errB == nil {
				s.queue.Enqueue(b)
			}
		}
		if errB != nil {
			b.Conn.WriteJSON(errorNotice(ErrStatusNoActiveDeck))
			if errA == nil {
				s.queue.Enqueue(a)
			}
		}
		return
	}

	sess, err := s.startSession(first, second)
	if err != nil {
		logging.Error("failed to start paired match", zap.Error(err))
		a.Conn.WriteJSON(errorNotice(ErrStatusNoActiveDeck))
		b.Conn.WriteJSON(errorNotice(ErrStatusNoActiveDeck))
		return
	}

	a.Conn.WriteJSON(notice{Type: MsgMatchFound, Payload: matchFoundPayload{
		MatchID:    sess.ID(),
		OpponentID: b.ParticipantID,
	}})
	b.Conn.WriteJSON(notice{Type: MsgMatchFound, Payload: matchFoundPayload{
		MatchID:    sess.ID(),
		OpponentID: a.ParticipantID,
	}})
}

func (s *Server) pairedParticipant(ctx context.Context, playerID string) (Participant, error) {
	record, err := s.store.GetPlayer(ctx, playerID)
	if err != nil {
		return Participant{}, err
	}
	deck, ok := record.ActiveDeck()
	if !ok || len(deck.CardIDs) == 0 {
		return Participant{}, errors.New("no usable active deck")
	}
	return Participant{
		ID:          record.ID,
		Name:        record.Name,
		AvatarURL:   record.AvatarURL,
		DeckCardIDs: deck.CardIDs,
	}, nil
}

func (s *Server) startBotMatch(ctx context.Context, playerID string, conn Conn) {
	human, err := s.pairedParticipant(ctx, playerID)
	if err != nil {
		conn.WriteJSON(errorNotice(ErrStatusNoActiveDeck))
		return
	}
	bot := Participant{
		ID:          botParticipantID,
		Name:        botName,
		DeckCardIDs: botDeckCardIDs,
		IsBot:       true,
	}
	sess, err := s.startSession(human, bot)
	if err != nil {
		conn.WriteJSON(errorNotice(ErrStatusNoActiveDeck))
		return
	}
	conn.WriteJSON(notice{Type: MsgMatchFound, Payload: matchFoundPayload{
		MatchID:    sess.ID(),
		OpponentID: botParticipantID,
	}})
}

// startSession registers a new session under its match id. Who moves
// first is a coin flip.
func (s *Server) startSession(first, second Participant) (*Session, error) {
	if rand.IntN(2) == 1 {
		first, second = second, first
	}
	sess, err := NewSession(first, second, s.engine, s.store, SessionConfig{
		TurnDuration:  s.cfg.TurnDuration,
		CancelTimeout: s.cfg.CancelTimeout,
		BotDelayMin:   s.cfg.BotDelayMin,
		BotDelayMax:   s.cfg.BotDelayMax,
	}, func(ended *Session) {
		s.sessions.Delete(ended.ID())
	})
	if err != nil {
		return nil, err
	}
	s.sessions.Store(sess.ID(), sess)
	return sess, nil
}

// handleChallengeWS serves a challenge-class connection: presence
// registration, friend invitations and responses.
func (s *Server) handleChallengeWS(w http.ResponseWriter, r *http.Request) {
	playerID, err := s.authenticate(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("failed to upgrade challenge connection", zap.Error(err))
		return
	}
	defer conn.Close()

	s.broker.SetOnline(playerID, conn)
	conn.WriteJSON(notice{Type: MsgChallengeConnected})
	defer func() {
		for _, c := range s.broker.Disconnect(playerID) {
			if c.OtherConn == nil {
				continue
			}
			c.OtherConn.WriteJSON(notice{Type: MsgChallengeCancelled, Payload: challengeCancelledPayload{
				ChallengeID: c.Challenge.ID,
				Reason:      "opponent_disconnected",
			}})
		}
	}()

	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		switch env.Type {
		case MsgChallengeFriend:
			s.handleChallengeFriend(r.Context(), playerID, conn, env.Payload)
		case MsgChallengeResponse:
			s.handleChallengeResponse(r.Context(), playerID, conn, env.Payload)
		default:
			conn.WriteJSON(errorNotice(ErrStatusInvalidFormat))
		}
	}
}

func (s *Server) handleChallengeFriend(ctx context.Context, playerID string, conn Conn, payload json.RawMessage) {
	var req challengeFriendPayload
	if err := json.Unmarshal(payload, &req); err != nil || req.FriendID == "" {
		conn.WriteJSON(errorNotice(ErrStatusInvalidFormat))
		return
	}

	record, err := s.store.GetPlayer(ctx, playerID)
	if err != nil {
		conn.WriteJSON(errorNotice("Failed to load your profile."))
		return
	}
	deck, ok := record.ActiveDeck()
	if !ok || len(deck.CardIDs) == 0 {
		conn.WriteJSON(errorNotice(ErrStatusNoActiveDeck))
		return
	}

	ch, friendConn, err := s.broker.Create(playerID, req.FriendID, conn, deck.CardIDs)
	if err != nil {
		if errors.Is(err, challenge.ErrNotOnline) {
			conn.WriteJSON(errorNotice(ErrStatusFriendOffline))
			return
		}
		conn.WriteJSON(errorNotice(ErrStatusInvalidChallenge))
		return
	}

	conn.WriteJSON(notice{Type: MsgChallengeSent, Payload: challengeSentPayload{
		ChallengeID:  ch.ID,
		ChallengedID: req.FriendID,
	}})
	friendConn.WriteJSON(notice{Type: MsgChallengeIncoming, Payload: challengeIncomingPayload{
		ChallengeID:      ch.ID,
		ChallengerID:     playerID,
		ChallengerName:   record.Name,
		ChallengerRating: record.Rating,
	}})
}

func (s *Server) handleChallengeResponse(ctx context.Context, playerID string, conn Conn, payload json.RawMessage) {
	var req challengeResponsePayload
	if err := json.Unmarshal(payload, &req); err != nil || req.ChallengeID == "" {
		conn.WriteJSON(errorNotice(ErrStatusInvalidFormat))
		return
	}

	ch, err := s.broker.Take(req.ChallengeID, playerID, req.Accepted)
	if err != nil {
		conn.WriteJSON(errorNotice(ErrStatusInvalidChallenge))
		return
	}

	// Declining needs nothing but the responder's name; only an accept
	// re-validates their deck.
	if !req.Accepted {
		responderName := playerID
		if record, err := s.store.GetPlayer(ctx, playerID); err == nil {
			responderName = record.Name
		}
		if ch.ChallengerConn != nil {
			ch.ChallengerConn.WriteJSON(notice{Type: MsgChallengeDeclined, Payload: challengeDeclinedPayload{
				ChallengeID:   ch.ID,
				ResponderName: responderName,
			}})
		}
		return
	}

	responder, err := s.pairedParticipant(ctx, playerID)
	if err != nil {
		conn.WriteJSON(errorNotice(ErrStatusNoActiveDeck))
		return
	}

	// The challenger plays the deck snapshotted at invitation time.
	challengerRecord, err := s.store.GetPlayer(ctx, ch.ChallengerID)
	if err != nil {
		conn.WriteJSON(errorNotice(ErrStatusInvalidChallenge))
		return
	}
	challenger := Participant{
		ID:          challengerRecord.ID,
		Name:        challengerRecord.Name,
		AvatarURL:   challengerRecord.AvatarURL,
		DeckCardIDs: ch.DeckCardIDs,
	}

	sess, err := s.startSession(challenger, responder)
	if err != nil {
		conn.WriteJSON(errorNotice(ErrStatusInvalidChallenge))
		if ch.ChallengerConn != nil {
			ch.ChallengerConn.WriteJSON(errorNotice(ErrStatusInvalidChallenge))
		}
		return
	}

	conn.WriteJSON(notice{Type: MsgMatchFound, Payload: matchFoundPayload{
		MatchID:    sess.ID(),
		OpponentID: ch.ChallengerID,
	}})
	if ch.ChallengerConn != nil {
		ch.ChallengerConn.WriteJSON(notice{Type: MsgMatchFound, Payload: matchFoundPayload{
			MatchID:    sess.ID(),
			OpponentID: playerID,
		}})
	}
}

// handleMatchWS serves a match-class connection bound to one running
// session. A dropped read forfeits the match.
func (s *Server) handleMatchWS(w http.ResponseWriter, r *http.Request) {
	playerID, err := s.authenticate(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	matchID := r.PathValue("matchId")
	v, ok := s.sessions.Load(matchID)
	if !ok {
		http.Error(w, ErrMatchNotFound.Error(), http.StatusNotFound)
		return
	}
	sess := v.(*Session)
	if !sess.HasParticipant(playerID) {
		http.Error(w, ErrNotAParticipant.Error(), http.StatusForbidden)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("failed to upgrade match connection", zap.Error(err))
		return
	}
	if err := sess.Join(playerID, conn); err != nil {
		conn.WriteJSON(errorNotice(err.Error()))
		conn.Close()
		return
	}

	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			sess.HandleDisconnect(playerID)
			return
		}
		if env.Type != MsgPlayerAction {
			conn.WriteJSON(errorNotice(ErrStatusInvalidFormat))
			continue
		}
		var action game.Action
		if err := json.Unmarshal(env.Payload, &action); err != nil {
			conn.WriteJSON(errorNotice(ErrStatusInvalidFormat))
			continue
		}
		sess.Submit(playerID, action)
	}
}
