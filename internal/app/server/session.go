package server

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/krendi/telecards/internal/game"
	"github.com/krendi/telecards/internal/progression"
	"github.com/krendi/telecards/internal/storage"
	"github.com/krendi/telecards/pkg/logging"
)

// Conn is the reliable, ordered, message-oriented send primitive the
// session needs per participant. *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Participant describes one side of a new match as handed over by the
// matchmaking queue or the challenge broker.
type Participant struct {
	ID          string
	Name        string
	AvatarURL   string
	DeckCardIDs []string
	IsBot       bool
}

type SessionConfig struct {
	TurnDuration  time.Duration
	CancelTimeout time.Duration
	BotDelayMin   time.Duration
	BotDelayMax   time.Duration
}

type sessionPlayer struct {
	id     string
	name   string
	isBot  bool
	conn   Conn
	joined bool
}

type inboundKind uint8

const (
	inboundPlayer inboundKind = iota
	inboundJoin
	inboundLeave
	inboundTimeout
	inboundBotMove
	inboundAbort
)

type inbound struct {
	kind          inboundKind
	participantID string
	action        game.Action
	conn          Conn
	turnSeq       int
}

// Session owns one running match: its state, its timers and its two
// connections. Every mutation of the match state goes through the inbound
// channel and is handled by the single run goroutine, so at most one
// mutation is in flight at any instant.
type Session struct {
	id     string
	engine *game.Engine
	state  *game.MatchState
	config SessionConfig
	store  storage.PlayerStore

	players [2]*sessionPlayer

	inCh chan inbound
	done chan struct{}

	turnSeq     int
	turnTimer   *time.Timer
	botTimer    *time.Timer
	cancelTimer *time.Timer

	started bool
	ended   bool
	mu      sync.Mutex

	endHandler func(*Session)
}

// NewSession initializes the match state and starts the session loop. The
// session begins waiting: human participants attach their match-class
// connections through Join, and play starts once all of them have joined.
func NewSession(
	first, second Participant,
	engine *game.Engine,
	store storage.PlayerStore,
	config SessionConfig,
	endHandler func(*Session),
) (*Session, error) {
	kind := game.OpponentHuman
	if first.IsBot || second.IsBot {
		kind = game.OpponentScripted
	}
	state, err := engine.Initialize(
		game.ParticipantSetup{ID: first.ID, Name: first.Name, AvatarURL: first.AvatarURL, DeckCardIDs: first.DeckCardIDs},
		game.ParticipantSetup{ID: second.ID, Name: second.Name, AvatarURL: second.AvatarURL, DeckCardIDs: second.DeckCardIDs},
		kind,
	)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:     state.MatchID,
		engine: engine,
		state:  state,
		config: config,
		store:  store,
		players: [2]*sessionPlayer{
			{id: first.ID, name: first.Name, isBot: first.IsBot},
			{id: second.ID, name: second.Name, isBot: second.IsBot},
		},
		inCh:       make(chan inbound, 16),
		done:       make(chan struct{}),
		endHandler: endHandler,
	}

	// Abort the match if the participants never show up.
	s.cancelTimer = time.AfterFunc(config.CancelTimeout, func() {
		s.submit(inbound{kind: inboundAbort})
	})

	go s.run()
	logging.Info("session created",
		zap.String("match_id", s.id),
		zap.String("participant_a", first.ID),
		zap.String("participant_b", second.ID),
		zap.String("opponent_kind", string(kind)),
	)
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) HasParticipant(participantID string) bool {
	return s.players[0].id == participantID || s.players[1].id == participantID
}

// Join attaches a participant's match-class connection.
func (s *Session) Join(participantID string, conn Conn) error {
	if !s.HasParticipant(participantID) {
		return ErrNotAParticipant
	}
	if s.isEnded() {
		return ErrSessionEnded
	}
	s.submit(inbound{kind: inboundJoin, participantID: participantID, conn: conn})
	return nil
}

// Submit queues a player action for serialized handling.
func (s *Session) Submit(participantID string, action game.Action) {
	s.submit(inbound{kind: inboundPlayer, participantID: participantID, action: action})
}

// HandleDisconnect forfeits the match to the remaining participant.
func (s *Session) HandleDisconnect(participantID string) {
	s.submit(inbound{kind: inboundLeave, participantID: participantID})
}

func (s *Session) isEnded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

func (s *Session) submit(in inbound) {
	select {
	case s.inCh <- in:
	case <-s.done:
	}
}

func (s *Session) run() {
	for {
		select {
		case <-s.done:
			return
		case in := <-s.inCh:
			s.handle(in)
		}
	}
}

func (s *Session) handle(in inbound) {
	switch in.kind {
	case inboundJoin:
		s.handleJoin(in)
	case inboundLeave:
		s.handleLeave(in)
	case inboundTimeout:
		if in.turnSeq != s.turnSeq || !s.started || s.state.IsGameOver {
			return
		}
		pid := s.state.CurrentTurnParticipantID
		s.state.Log = append(s.state.Log, s.state.Participant(pid).Name+" ran out of time!")
		logging.Info("turn timed out",
			zap.String("match_id", s.id),
			zap.String("participant_id", pid),
		)
		s.apply(pid, game.EndTurnAction())
	case inboundBotMove:
		if in.turnSeq != s.turnSeq || !s.started || s.state.IsGameOver {
			return
		}
		botID := s.state.CurrentTurnParticipantID
		if p := s.playerByID(botID); p == nil || !p.isBot {
			return
		}
		s.apply(botID, chooseBotAction(s.state, botID))
	case inboundPlayer:
		s.handlePlayerAction(in)
	case inboundAbort:
		s.abort()
	}
}

func (s *Session) playerByID(id string) *sessionPlayer {
	for _, p := range s.players {
		if p.id == id {
			return p
		}
	}
	return nil
}

func (s *Session) handleJoin(in inbound) {
	if s.isEnded() {
		return
	}
	p := s.playerByID(in.participantID)
	if p.conn != nil && p.conn != in.conn {
		p.conn.Close()
	}
	p.conn = in.conn
	p.joined = true
	logging.Info("participant joined match",
		zap.String("match_id", s.id),
		zap.String("participant_id", in.participantID),
	)

	// Late joiners and rejoiners still get the current snapshot.
	if err := in.conn.WriteJSON(gameStateNotice(s.state)); err != nil {
		logging.Error("failed to send snapshot",
			zap.String("participant_id", in.participantID),
			zap.Error(err),
		)
	}

	if s.started {
		return
	}
	for _, q := range s.players {
		if !q.isBot && !q.joined {
			return
		}
	}
	s.started = true
	s.cancelTimer.Stop()
	s.onTurnBegin()
}

func (s *Session) handleLeave(in inbound) {
	if s.isEnded() || s.state.IsGameOver {
		return
	}
	winner := s.state.Opponent(in.participantID)
	s.state.IsGameOver = true
	s.state.WinnerID = winner.ID
	s.state.Log = append(s.state.Log,
		in.participantID+" disconnected. "+winner.Name+" wins by default.")
	logging.Info("participant disconnected, forfeiting",
		zap.String("match_id", s.id),
		zap.String("participant_id", in.participantID),
		zap.String("winner_id", winner.ID),
	)
	s.broadcast()
	s.finalize()
}

func (s *Session) handlePlayerAction(in inbound) {
	p := s.playerByID(in.participantID)
	if p == nil {
		return
	}
	if !s.started {
		s.reject(p, ErrStatusMatchNotStarted)
		return
	}
	if s.state.IsGameOver {
		s.reject(p, ErrStatusGameOver)
		return
	}
	if s.state.CurrentTurnParticipantID != in.participantID {
		s.reject(p, ErrStatusNotYourTurn)
		return
	}
	s.apply(in.participantID, in.action)
}

func (s *Session) reject(p *sessionPlayer, status string) {
	if p.conn == nil {
		return
	}
	if err := p.conn.WriteJSON(errorNotice(status)); err != nil {
		logging.Error("failed to send rejection", zap.String("participant_id", p.id), zap.Error(err))
	}
}

// apply runs one action through the state machine, broadcasts the result,
// and drives the turn orchestration that follows from it.
func (s *Session) apply(participantID string, action game.Action) {
	prevTurn := s.state.CurrentTurnParticipantID
	s.state = s.engine.Apply(s.state, action)
	s.broadcast()

	if s.state.IsGameOver {
		s.finalize()
		return
	}

	turnChanged := s.state.CurrentTurnParticipantID != prevTurn
	if turnChanged || action.Type == game.ActionEndTurn {
		s.onTurnBegin()
		return
	}

	// A scripted participant keeps thinking between its own actions.
	if p := s.playerByID(s.state.CurrentTurnParticipantID); p != nil && p.isBot {
		s.scheduleBotMove()
	}
}

// onTurnBegin cancels the previous turn's timers and arms the right one
// for the new acting participant. Bumping turnSeq invalidates any timer
// that already fired but has not been handled yet.
func (s *Session) onTurnBegin() {
	s.turnSeq++
	if s.turnTimer != nil {
		s.turnTimer.Stop()
	}
	if s.botTimer != nil {
		s.botTimer.Stop()
	}

	p := s.playerByID(s.state.CurrentTurnParticipantID)
	if p != nil && p.isBot {
		s.scheduleBotMove()
		return
	}

	seq := s.turnSeq
	s.turnTimer = time.AfterFunc(s.config.TurnDuration, func() {
		s.submit(inbound{kind: inboundTimeout, turnSeq: seq})
	})
}

// scheduleBotMove queues the scripted opponent's next action after a
// randomized delay so its thinking is perceptible.
func (s *Session) scheduleBotMove() {
	delay := s.config.BotDelayMin
	if jitter := s.config.BotDelayMax - s.config.BotDelayMin; jitter > 0 {
		delay += rand.N(jitter)
	}
	seq := s.turnSeq
	s.botTimer = time.AfterFunc(delay, func() {
		s.submit(inbound{kind: inboundBotMove, turnSeq: seq})
	})
}

func (s *Session) broadcast() {
	msg := gameStateNotice(s.state)
	for _, p := range s.players {
		if p.isBot || p.conn == nil {
			continue
		}
		if err := p.conn.WriteJSON(msg); err != nil {
			logging.Error("couldn't notify participant",
				zap.String("match_id", s.id),
				zap.String("participant_id", p.id),
			)
		}
	}
}

// abort ends a match whose participants never all joined. A human who did
// show up wins by forfeit; with no joiners there is no winner and no
// progression.
func (s *Session) abort() {
	if s.started || s.isEnded() {
		return
	}
	s.state.IsGameOver = true
	for _, p := range s.players {
		if p.joined {
			s.state.WinnerID = p.id
			break
		}
	}
	s.state.Log = append(s.state.Log, "Match cancelled: participants failed to join in time.")
	logging.Info("match aborted before start", zap.String("match_id", s.id))
	s.finalize()
}

// finalize runs exactly once: it cancels timers, notifies both
// connections of the outcome, applies progression and rating updates for
// each human participant, and releases the session.
func (s *Session) finalize() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	s.mu.Unlock()

	if s.turnTimer != nil {
		s.turnTimer.Stop()
	}
	if s.botTimer != nil {
		s.botTimer.Stop()
	}
	s.cancelTimer.Stop()

	over := notice{Type: MsgGameOver, Payload: gameOverPayload{
		WinnerID: s.state.WinnerID,
		MatchID:  s.id,
	}}
	for _, p := range s.players {
		if p.isBot || p.conn == nil {
			continue
		}
		if err := p.conn.WriteJSON(over); err != nil {
			logging.Error("couldn't send game over", zap.String("participant_id", p.id))
		}
	}

	if s.state.WinnerID != "" {
		for _, p := range s.players {
			if !p.isBot {
				s.applyProgression(p)
			}
		}
	}

	close(s.done)
	for _, p := range s.players {
		if p.conn != nil {
			p.conn.Close()
		}
	}
	if s.endHandler != nil {
		s.endHandler(s)
	}
	logging.Info("session ended",
		zap.String("match_id", s.id),
		zap.String("winner_id", s.state.WinnerID),
	)
}

// applyProgression computes and persists one human participant's
// post-match experience, level rewards and rating, then pushes the
// progression notice if their connection is still open.
func (s *Session) applyProgression(p *sessionPlayer) {
	ctx := context.Background()
	record, err := s.store.GetPlayer(ctx, p.id)
	if err != nil {
		logging.Error("failed to load player for finalization",
			zap.String("participant_id", p.id), zap.Error(err))
		return
	}

	won := s.state.WinnerID == p.id
	vsScripted := s.state.OpponentKind == game.OpponentScripted

	xpGained := progression.MatchExperience(won, vsScripted)
	result := progression.AdvanceLevel(record.Level, record.XP, xpGained)
	rating := progression.ApplyRatingDelta(record.Rating, progression.RatingDelta(won, vsScripted))

	coins := record.KrendiCoins
	dust := record.KrendiDust
	owned := append([]string(nil), record.OwnedCardIDs...)
	for _, reward := range result.Granted {
		switch reward.Type {
		case progression.RewardKrendiCoins:
			coins += reward.Amount
		case progression.RewardKrendiDust:
			dust += reward.Amount
		case progression.RewardSpecificCard:
			owned = appendUnique(owned, reward.CardID)
		}
	}

	totalWins := record.TotalWins
	pvpWins := record.PvpWins
	botWins := record.BotWins
	if won {
		totalWins++
		if vsScripted {
			botWins++
		} else {
			pvpWins++
		}
	}

	updated, err := s.store.UpdatePlayer(ctx, p.id, storage.PlayerUpdate{
		Level:         &result.Level,
		XP:            &result.XP,
		XPToNextLevel: &result.XPToNextLevel,
		Rating:        &rating,
		KrendiCoins:   &coins,
		KrendiDust:    &dust,
		OwnedCardIDs:  owned,
		TotalWins:     &totalWins,
		PvpWins:       &pvpWins,
		BotWins:       &botWins,
	})
	if err != nil {
		logging.Error("failed to persist progression",
			zap.String("participant_id", p.id), zap.Error(err))
		return
	}

	if p.conn != nil {
		err := p.conn.WriteJSON(notice{Type: MsgProgressionUpdate, Payload: progressionPayload{
			XP:             updated.XP,
			NewLevel:       updated.Level,
			XPToNextLevel:  updated.XPToNextLevel,
			Rating:         updated.Rating,
			RewardsGranted: result.Granted,
		}})
		if err != nil {
			logging.Error("couldn't send progression notice", zap.String("participant_id", p.id))
		}
	}
}

func appendUnique(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}
