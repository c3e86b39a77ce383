package server

import (
	"github.com/krendi/telecards/internal/game"
)

// The scripted opponent's fixed identity. Real participant ids are UUIDs
// or numeric platform ids, so the prefix cannot collide.
const (
	botParticipantID = "bot_opponent"
	botName          = "Krendi Bot"
)

// botDeckCardIDs is the house deck used for scripted matches.
var botDeckCardIDs = []string{
	"c001", "c002", "c003", "c004", "c005", "c007", "r001", "r002",
}

// chooseBotAction picks the scripted opponent's next move. The policy is a
// fixed baseline: play the highest-cost affordable card that fits the
// board, otherwise attack with the first ready minion (taunts first, then
// any enemy minion, then the hero), otherwise end the turn.
func chooseBotAction(state *game.MatchState, botID string) game.Action {
	bot := state.Participant(botID)
	if bot == nil || state.CurrentTurnParticipantID != botID {
		return game.EndTurnAction()
	}
	enemy := state.Opponent(botID)

	var best *game.CardInstance
	for _, c := range bot.Hand {
		if c.Def.Cost > bot.Mana {
			continue
		}
		if c.Def.IsMinion() && len(bot.Board) >= game.MaxBoardSize {
			continue
		}
		if best == nil || c.Def.Cost > best.Def.Cost {
			best = c
		}
	}
	if best != nil {
		return game.Action{Type: game.ActionPlayCard, CardInstanceID: best.InstanceID}
	}

	for _, m := range bot.Board {
		if m.HasAttacked || !m.Alive() || m.Attack == nil || *m.Attack <= 0 {
			continue
		}
		return game.Action{
			Type:               game.ActionAttack,
			AttackerInstanceID: m.InstanceID,
			TargetID:           chooseBotTarget(enemy),
		}
	}

	return game.EndTurnAction()
}

func chooseBotTarget(enemy *game.ParticipantState) string {
	for _, m := range enemy.Board {
		if m.Alive() && m.HasAbility(game.AbilityTaunt) {
			return m.InstanceID
		}
	}
	for _, m := range enemy.Board {
		if m.Alive() {
			return m.InstanceID
		}
	}
	return game.TargetOpponentHero
}
