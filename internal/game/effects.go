package game

// EffectContext is what a card effect gets to work with. Acting is the
// owner of the played (or dying) card, Other the opposing participant.
type EffectContext struct {
	State   *MatchState
	Acting  *ParticipantState
	Other   *ParticipantState
	Played  *CardInstance
	Target  string
	Catalog *Catalog
}

// EffectFunc mutates the state in place. Effects run inside Apply, after
// the card has already been paid for and placed.
type EffectFunc func(ctx *EffectContext)

type effectKey struct {
	kind   AbilityKind
	cardID string
}

// EffectRegistry maps (ability kind, card id) to an effect. Keeping the
// dispatch here keeps the state machine generic: adding a card effect is a
// registration, not a new branch in the engine.
type EffectRegistry struct {
	effects map[effectKey]EffectFunc
}

func NewEffectRegistry() *EffectRegistry {
	return &EffectRegistry{effects: make(map[effectKey]EffectFunc)}
}

func (r *EffectRegistry) Register(kind AbilityKind, cardID string, fn EffectFunc) {
	r.effects[effectKey{kind: kind, cardID: cardID}] = fn
}

func (r *EffectRegistry) trigger(kind AbilityKind, cardID string, ctx *EffectContext) bool {
	fn, ok := r.effects[effectKey{kind: kind, cardID: cardID}]
	if !ok {
		return false
	}
	fn(ctx)
	return true
}

// summon puts a fresh copy of def on p's board with summoning sickness.
func summon(state *MatchState, p *ParticipantState, def *CardDefinition) bool {
	if len(p.Board) >= MaxBoardSize {
		return false
	}
	ci := newCardInstance(def)
	ci.Played = true
	ci.HasAttacked = true
	p.Board = append(p.Board, ci)
	return true
}

// DefaultEffects wires the card-specific behavior of the default catalog.
func DefaultEffects() *EffectRegistry {
	r := NewEffectRegistry()

	// Tapping Hamster: draw 2 cards.
	r.Register(AbilityBattlecry, "r004", func(ctx *EffectContext) {
		drawCards(ctx.State, ctx.Acting, 2)
	})

	// Smooth Scammer: summon a Shill Bot.
	r.Register(AbilityBattlecry, "e001", func(ctx *EffectContext) {
		if def, ok := ctx.Catalog.ByID("c002"); ok && summon(ctx.State, ctx.Acting, def) {
			ctx.State.logf("%s's battlecry summoned a %s.", ctx.Played.Def.Name, def.Name)
		}
	})

	// The Zucc: with 2+ Bot minions out, summon two more Shill Bots.
	r.Register(AbilityBattlecry, "e003", func(ctx *EffectContext) {
		bots := 0
		for _, m := range ctx.Acting.Board {
			if m.Def.CardType == "Bot" {
				bots++
			}
		}
		if bots < 2 {
			return
		}
		def, ok := ctx.Catalog.ByID("c002")
		if !ok {
			return
		}
		for i := 0; i < 2; i++ {
			if summon(ctx.State, ctx.Acting, def) {
				ctx.State.logf("%s's battlecry summoned a %s.", ctx.Played.Def.Name, def.Name)
			}
		}
	})

	// Pavel Turov: give your other minions +1/+1.
	r.Register(AbilityBattlecry, "l003", func(ctx *EffectContext) {
		for _, m := range ctx.Acting.Board {
			if m.InstanceID == ctx.Played.InstanceID || m.Attack == nil {
				continue
			}
			*m.Attack++
			m.CurrentHealth++
			m.MaxHealth++
		}
		ctx.State.logf("%s gives the other friendly minions +1/+1.", ctx.Played.Def.Name)
	})

	// NotCoin Tapper: +1 attack for each other NotCoin Tapper you control.
	r.Register(AbilityBattlecry, "c009", func(ctx *EffectContext) {
		bonus := 0
		for _, m := range ctx.Acting.Board {
			if m.Def.ID == "c009" && m.InstanceID != ctx.Played.InstanceID {
				bonus++
			}
		}
		if bonus > 0 && ctx.Played.Attack != nil {
			*ctx.Played.Attack += bonus
			ctx.State.logf("%s gains +%d attack.", ctx.Played.Def.Name, bonus)
		}
	})

	// Rug Pull Rugrat: deal 2 damage to all other minions.
	r.Register(AbilityDeathrattle, "e002", func(ctx *EffectContext) {
		ctx.State.logf("%s's deathrattle deals 2 damage to all other minions.", ctx.Played.Def.Name)
		for _, p := range ctx.State.Participants {
			for _, m := range p.Board {
				if m.InstanceID != ctx.Played.InstanceID {
					m.CurrentHealth -= 2
				}
			}
		}
	})

	// Shitcoin Shaman: add a Rug Pull Rugrat to your hand.
	r.Register(AbilityDeathrattle, "r007", func(ctx *EffectContext) {
		def, ok := ctx.Catalog.ByID("e002")
		if !ok || len(ctx.Acting.Hand) >= MaxHandSize {
			return
		}
		ctx.Acting.Hand = append(ctx.Acting.Hand, newCardInstance(def))
		ctx.State.logf("%s's deathrattle adds a %s to %s's hand.", ctx.Played.Def.Name, def.Name, ctx.Acting.Name)
	})

	// Pump Signal: deal 2 damage to the enemy hero.
	r.Register(AbilitySpell, "s001", func(ctx *EffectContext) {
		ctx.Other.Health -= 2
		ctx.State.logf("%s dealt 2 damage to %s.", ctx.Played.Def.Name, ctx.Other.Name)
	})

	// Free Mint: draw a card.
	r.Register(AbilitySpell, "s002", func(ctx *EffectContext) {
		drawCards(ctx.State, ctx.Acting, 1)
	})

	return r
}
