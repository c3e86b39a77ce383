package game

// Rarity of a card definition. Matches the wire values used by clients.
type Rarity string

const (
	RarityCommon    Rarity = "COMMON"
	RarityRare      Rarity = "RARE"
	RarityEpic      Rarity = "EPIC"
	RarityLegendary Rarity = "LEGENDARY"
)

// AbilityKind tags an ability on a card definition. Only a subset of kinds
// has engine behavior; the rest are carried as data for clients.
type AbilityKind string

const (
	AbilityTaunt        AbilityKind = "TAUNT"
	AbilityCharge       AbilityKind = "CHARGE"
	AbilityBattlecry    AbilityKind = "BATTLECRY"
	AbilityDeathrattle  AbilityKind = "DEATHRATTLE"
	AbilityDivineShield AbilityKind = "DIVINE_SHIELD"
	AbilityStealth      AbilityKind = "STEALTH"
	AbilitySpell        AbilityKind = "SPELL"
)

type Ability struct {
	Kind        AbilityKind `json:"kind"`
	Description string      `json:"description,omitempty"`
}

// CardDefinition is the immutable description of a card. Definitions are
// shared by reference between states and instances and must never be
// mutated after catalog construction.
type CardDefinition struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Cost      int       `json:"cost"`
	Attack    *int      `json:"attack,omitempty"`
	Health    *int      `json:"health,omitempty"`
	Rarity    Rarity    `json:"rarity"`
	Abilities []Ability `json:"abilities"`
	CardType  string    `json:"cardType,omitempty"`
}

// IsMinion reports whether the card enters the board when played. Cards
// without an attack value are spells and resolve immediately.
func (d *CardDefinition) IsMinion() bool {
	return d.Attack != nil
}

func (d *CardDefinition) HasAbility(kind AbilityKind) bool {
	for _, a := range d.Abilities {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

// Catalog is a read-only lookup table from card id to definition. It is
// safe for unsynchronized concurrent reads after construction.
type Catalog struct {
	byID map[string]*CardDefinition
	all  []*CardDefinition
}

func NewCatalog(defs []*CardDefinition) *Catalog {
	c := &Catalog{
		byID: make(map[string]*CardDefinition, len(defs)),
		all:  defs,
	}
	for _, d := range defs {
		c.byID[d.ID] = d
	}
	return c
}

func (c *Catalog) ByID(id string) (*CardDefinition, bool) {
	d, ok := c.byID[id]
	return d, ok
}

func (c *Catalog) All() []*CardDefinition {
	return c.all
}

func intp(v int) *int { return &v }

func minion(id, name string, rarity Rarity, cost, attack, health int, cardType string, abilities ...Ability) *CardDefinition {
	return &CardDefinition{
		ID:        id,
		Name:      name,
		Cost:      cost,
		Attack:    intp(attack),
		Health:    intp(health),
		Rarity:    rarity,
		Abilities: abilities,
		CardType:  cardType,
	}
}

func spell(id, name string, rarity Rarity, cost int, cardType string) *CardDefinition {
	return &CardDefinition{
		ID:        id,
		Name:      name,
		Cost:      cost,
		Rarity:    rarity,
		Abilities: []Ability{{Kind: AbilitySpell}},
		CardType:  cardType,
	}
}

func taunt() Ability       { return Ability{Kind: AbilityTaunt} }
func charge() Ability      { return Ability{Kind: AbilityCharge} }
func battlecry() Ability   { return Ability{Kind: AbilityBattlecry} }
func deathrattle() Ability { return Ability{Kind: AbilityDeathrattle} }
func stealth() Ability     { return Ability{Kind: AbilityStealth} }
func divineShield() Ability {
	return Ability{Kind: AbilityDivineShield}
}

// DefaultCatalog returns the full card pool of the game.
func DefaultCatalog() *Catalog {
	return NewCatalog([]*CardDefinition{
		minion("c001", "Noob Trader", RarityCommon, 1, 1, 2, "Trader"),
		minion("c002", "Shill Bot", RarityCommon, 2, 2, 1, "Bot"),
		minion("c003", "Doge Pup", RarityCommon, 1, 1, 1, "Meme Coin"),
		minion("c004", "DeFi Degenerate", RarityCommon, 3, 3, 3, "DeFi User"),
		minion("c005", "Chad Influencer", RarityCommon, 2, 2, 2, "Influencer"),
		minion("c006", "Keyboard Warrior", RarityCommon, 1, 1, 1, "DeFi User", taunt()),
		minion("c007", "NFT Bro", RarityCommon, 3, 3, 2, "Investor"),
		minion("c008", "Liquidity Farmer", RarityCommon, 2, 1, 3, "DeFi User"),
		minion("c009", "NotCoin Tapper", RarityCommon, 1, 0, 2, "Meme Coin", battlecry()),
		minion("r001", "Diamond Hands Holder", RarityRare, 4, 2, 6, "Investor", taunt()),
		minion("r002", "FOMO Buyer", RarityRare, 2, 3, 2, "Trader", charge()),
		minion("r003", "Community Mod", RarityRare, 3, 1, 4, "Community Mod", divineShield()),
		minion("r004", "Tapping Hamster", RarityRare, 3, 2, 2, "Crypto Critter", battlecry()),
		minion("r005", "Telegram Channel Admin", RarityRare, 4, 3, 3, "Community Mod", stealth()),
		minion("r007", "Shitcoin Shaman", RarityRare, 3, 2, 3, "Scammer", deathrattle()),
		minion("r009", "Concerned Citizen", RarityRare, 3, 1, 5, "Community Mod", taunt()),
		minion("e001", "Smooth Scammer", RarityEpic, 5, 4, 4, "Scammer", battlecry()),
		minion("e002", "Rug Pull Rugrat", RarityEpic, 4, 2, 1, "Scammer", deathrattle()),
		minion("e003", "The Zucc", RarityEpic, 6, 5, 5, "Visionary", battlecry()),
		minion("l001", "Sleepy Joe King", RarityLegendary, 7, 6, 8, "Figurehead", taunt()),
		minion("l002", "Elongated Muskrat", RarityLegendary, 8, 7, 7, "Visionary", charge()),
		minion("l003", "Pavel Turov", RarityLegendary, 6, 5, 5, "Founder", battlecry()),
		spell("s001", "Pump Signal", RarityCommon, 1, "Market Move"),
		spell("s002", "Free Mint", RarityCommon, 0, "Market Move"),
	})
}
