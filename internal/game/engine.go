package game

import (
	"errors"
	"math/rand/v2"

	"github.com/krendi/telecards/pkg/utils"
)

const (
	InitialHealth     = 30
	MaxMana           = 10
	MaxHandSize       = 10
	MaxBoardSize      = 7
	OpeningHandFirst  = 3
	OpeningHandSecond = 4
)

var ErrNoUsableCards = errors.New("both decks resolved to zero usable cards")

// ParticipantSetup is what the pre-match flows hand to a new match.
type ParticipantSetup struct {
	ID          string
	Name        string
	AvatarURL   string
	DeckCardIDs []string
}

// Engine owns the catalog and the effect registry and applies actions to
// match states. It performs no I/O and keeps no per-match state.
type Engine struct {
	catalog *Catalog
	effects *EffectRegistry
}

func NewEngine(catalog *Catalog) *Engine {
	return &Engine{
		catalog: catalog,
		effects: DefaultEffects(),
	}
}

func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

func newCardInstance(def *CardDefinition) *CardInstance {
	ci := &CardInstance{
		Def:        def,
		InstanceID: utils.GenerateUUID(),
	}
	if def.Attack != nil {
		ci.Attack = intp(*def.Attack)
	}
	if def.Health != nil {
		ci.CurrentHealth = *def.Health
		ci.MaxHealth = *def.Health
	}
	return ci
}

// resolveDeck maps card ids to definitions, silently dropping unknown ids.
func (e *Engine) resolveDeck(cardIDs []string) []*CardDefinition {
	deck := make([]*CardDefinition, 0, len(cardIDs))
	for _, id := range cardIDs {
		if def, ok := e.catalog.ByID(id); ok {
			deck = append(deck, def)
		}
	}
	return deck
}

func newParticipantState(setup ParticipantSetup, deck []*CardDefinition) *ParticipantState {
	return &ParticipantState{
		ID:        setup.ID,
		Name:      setup.Name,
		AvatarURL: setup.AvatarURL,
		Health:    InitialHealth,
		MaxHealth: InitialHealth,
		Deck:      deck,
		Hand:      []*CardInstance{},
		Board:     []*CardInstance{},
	}
}

// Initialize builds the starting state for a match. The first participant
// moves first: they get the smaller opening hand and start with 1 mana,
// while the second mover stays at 0 mana until their first turn begins.
func (e *Engine) Initialize(first, second ParticipantSetup, kind OpponentKind) (*MatchState, error) {
	firstDeck := e.resolveDeck(first.DeckCardIDs)
	secondDeck := e.resolveDeck(second.DeckCardIDs)
	if len(firstDeck) == 0 && len(secondDeck) == 0 {
		return nil, ErrNoUsableCards
	}
	rand.Shuffle(len(firstDeck), func(i, j int) {
		firstDeck[i], firstDeck[j] = firstDeck[j], firstDeck[i]
	})
	rand.Shuffle(len(secondDeck), func(i, j int) {
		secondDeck[i], secondDeck[j] = secondDeck[j], secondDeck[i]
	})

	p1 := newParticipantState(first, firstDeck)
	p2 := newParticipantState(second, secondDeck)

	for i := 0; i < OpeningHandFirst && len(p1.Deck) > 0; i++ {
		p1.Hand = append(p1.Hand, newCardInstance(p1.Deck[0]))
		p1.Deck = p1.Deck[1:]
	}
	for i := 0; i < OpeningHandSecond && len(p2.Deck) > 0; i++ {
		p2.Hand = append(p2.Hand, newCardInstance(p2.Deck[0]))
		p2.Deck = p2.Deck[1:]
	}

	p1.MaxMana = 1
	p1.Mana = 1

	state := &MatchState{
		MatchID:                  utils.GenerateUUID(),
		Participants:             [2]*ParticipantState{p1, p2},
		CurrentTurnParticipantID: p1.ID,
		TurnCounter:              1,
		OpponentKind:             kind,
	}
	state.logf("Game started! %s vs %s. %s goes first.", p1.Name, p2.Name, p1.Name)
	return state, nil
}

// Apply is a total function from (state, action) to the next state. Illegal
// actions append an explanatory log line and leave everything else
// untouched. The returned state never aliases mutable data with the input.
func (e *Engine) Apply(state *MatchState, action Action) *MatchState {
	next := state.Clone()

	if next.IsGameOver {
		next.logf("Action attempted after game over.")
		return next
	}

	acting, other := next.acting()

	switch action.Type {
	case ActionPlayCard:
		e.playCard(next, acting, other, action)
	case ActionAttack:
		e.attack(next, acting, other, action)
	case ActionEndTurn:
		e.endTurn(next, acting, other)
	default:
		next.logf("%s sent an unknown action.", acting.Name)
	}

	e.checkWinner(next)
	return next
}

func (e *Engine) playCard(state *MatchState, acting, other *ParticipantState, action Action) {
	idx := acting.handIndex(action.CardInstanceID)
	if idx < 0 {
		state.logf("%s tried to play a card not in hand: %s.", acting.Name, action.CardInstanceID)
		return
	}
	card := acting.Hand[idx]
	if acting.Mana < card.Def.Cost {
		state.logf("%s has not enough mana for %s (needs %d, has %d).",
			acting.Name, card.Def.Name, card.Def.Cost, acting.Mana)
		return
	}
	if card.Def.IsMinion() && len(acting.Board) >= MaxBoardSize {
		state.logf("%s's board is full, cannot play %s.", acting.Name, card.Def.Name)
		return
	}

	acting.Mana -= card.Def.Cost
	acting.Hand = append(acting.Hand[:idx], acting.Hand[idx+1:]...)

	// The board copy is a fresh instance; the hand copy keeps no identity.
	played := newCardInstance(card.Def)
	played.Played = true

	if played.IsMinion() {
		played.HasAttacked = !played.HasAbility(AbilityCharge)
		pos := len(acting.Board)
		if action.Position != nil && *action.Position >= 0 && *action.Position < pos {
			pos = *action.Position
		}
		acting.Board = append(acting.Board, nil)
		copy(acting.Board[pos+1:], acting.Board[pos:])
		acting.Board[pos] = played
		state.logf("%s played minion %s.", acting.Name, played.Def.Name)

		if played.HasAbility(AbilityBattlecry) {
			e.effects.trigger(AbilityBattlecry, played.Def.ID, &EffectContext{
				State:   state,
				Acting:  acting,
				Other:   other,
				Played:  played,
				Target:  action.TargetID,
				Catalog: e.catalog,
			})
		}
	} else {
		state.logf("%s cast %s.", acting.Name, played.Def.Name)
		if !e.effects.trigger(AbilitySpell, played.Def.ID, &EffectContext{
			State:   state,
			Acting:  acting,
			Other:   other,
			Played:  played,
			Target:  action.TargetID,
			Catalog: e.catalog,
		}) {
			state.logf("%s fizzles with no effect.", played.Def.Name)
		}
	}

	e.sweepDeaths(state, acting, other)
}

func (e *Engine) attack(state *MatchState, acting, other *ParticipantState, action Action) {
	attacker := acting.boardMinion(action.AttackerInstanceID)
	if attacker == nil || attacker.HasAttacked || !attacker.Alive() ||
		attacker.Attack == nil || *attacker.Attack <= 0 {
		name := action.AttackerInstanceID
		if attacker != nil {
			name = attacker.Def.Name
		}
		state.logf("%s tried to attack with an invalid or exhausted minion: %s.", acting.Name, name)
		return
	}

	switch action.TargetID {
	case TargetOwnHero:
		state.logf("%s cannot attack their own hero.", acting.Name)
		return
	case TargetOpponentHero:
		state.logf("%s's %s (Atk: %d) attacks %s.", acting.Name, attacker.Def.Name, *attacker.Attack, other.Name)
		other.Health -= *attacker.Attack
	default:
		target := other.boardMinion(action.TargetID)
		if target == nil || !target.Alive() {
			state.logf("%s's target %s not found or invalid.", acting.Name, action.TargetID)
			return
		}
		state.logf("%s's %s (Atk: %d) attacks %s.", acting.Name, attacker.Def.Name, *attacker.Attack, target.Def.Name)
		target.CurrentHealth -= *attacker.Attack
		// Single-exchange retaliation, only if the defender survives.
		if target.Alive() && target.Attack != nil && *target.Attack > 0 {
			attacker.CurrentHealth -= *target.Attack
			state.logf("%s retaliates for %d damage.", target.Def.Name, *target.Attack)
		}
	}
	attacker.HasAttacked = true

	e.sweepDeaths(state, acting, other)
}

func (e *Engine) endTurn(state *MatchState, acting, other *ParticipantState) {
	state.logf("%s ended their turn.", acting.Name)
	state.CurrentTurnParticipantID = other.ID

	// The counter advances once per full round, when control returns to
	// the participant who moved first.
	if other.ID == state.Participants[0].ID {
		state.TurnCounter++
	}

	other.MaxMana = min(MaxMana, other.MaxMana+1)
	other.Mana = other.MaxMana
	for _, m := range other.Board {
		m.HasAttacked = false
	}

	drawCards(state, other, 1)

	state.logf("It's now %s's turn (Turn %d). Mana: %d/%d.",
		other.Name, state.TurnCounter, other.Mana, other.MaxMana)
}

// drawCards moves up to n cards from deck to hand. A draw into a full hand
// burns the card; a draw from an empty deck deals escalating burnout
// damage (1, then 2, then 3, ...).
func drawCards(state *MatchState, p *ParticipantState, n int) {
	for i := 0; i < n; i++ {
		if len(p.Hand) >= MaxHandSize {
			state.logf("%s's hand is full, card burned!", p.Name)
			if len(p.Deck) > 0 {
				p.Deck = p.Deck[1:]
			}
			continue
		}
		if len(p.Deck) == 0 {
			p.BurnoutCounter++
			p.Health -= p.BurnoutCounter
			state.logf("%s is out of cards and takes %d burnout damage!", p.Name, p.BurnoutCounter)
			continue
		}
		p.Hand = append(p.Hand, newCardInstance(p.Deck[0]))
		p.Deck = p.Deck[1:]
		state.logf("%s drew a card.", p.Name)
	}
}

// sweepDeaths removes dead minions from both boards, firing deathrattles.
// Deathrattles may kill further minions, so the sweep loops to a fixpoint.
func (e *Engine) sweepDeaths(state *MatchState, acting, other *ParticipantState) {
	for {
		removed := false
		for _, p := range []*ParticipantState{other, acting} {
			survivors := p.Board[:0:0]
			var dead []*CardInstance
			for _, m := range p.Board {
				if m.Alive() {
					survivors = append(survivors, m)
				} else {
					dead = append(dead, m)
				}
			}
			if len(dead) == 0 {
				continue
			}
			removed = true
			p.Board = survivors
			for _, m := range dead {
				state.logf("%s's %s was destroyed.", p.Name, m.Def.Name)
				if m.HasAbility(AbilityDeathrattle) {
					opp := acting
					if p == acting {
						opp = other
					}
					e.effects.trigger(AbilityDeathrattle, m.Def.ID, &EffectContext{
						State:   state,
						Acting:  p,
						Other:   opp,
						Played:  m,
						Catalog: e.catalog,
					})
				}
			}
		}
		if !removed {
			return
		}
	}
}

// checkWinner flags game over once a hero is dead. With simultaneous
// lethal the first slot is checked first and therefore loses.
func (e *Engine) checkWinner(state *MatchState) {
	if state.IsGameOver {
		return
	}
	p1, p2 := state.Participants[0], state.Participants[1]
	switch {
	case p1.Health <= 0:
		state.IsGameOver = true
		state.WinnerID = p2.ID
		state.logf("%s has been defeated! %s wins!", p1.Name, p2.Name)
	case p2.Health <= 0:
		state.IsGameOver = true
		state.WinnerID = p1.ID
		state.logf("%s has been defeated! %s wins!", p2.Name, p1.Name)
	}
}
