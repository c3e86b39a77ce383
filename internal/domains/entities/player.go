package entities

// Deck is a named list of card ids. At most one deck per player is active.
type Deck struct {
	ID       string   `dynamodbav:"Id" json:"id"`
	Name     string   `dynamodbav:"Name" json:"name"`
	CardIDs  []string `dynamodbav:"CardIds" json:"cardIds"`
	IsActive bool     `dynamodbav:"IsActive" json:"isActive"`
}

// Player is the persistent record behind one participant: profile,
// progression, currency, collection and decks.
type Player struct {
	ID            string   `dynamodbav:"PlayerId" json:"id"`
	Name          string   `dynamodbav:"Name" json:"name"`
	AvatarURL     string   `dynamodbav:"AvatarUrl" json:"avatarUrl,omitempty"`
	Level         int      `dynamodbav:"Level" json:"level"`
	XP            int      `dynamodbav:"Xp" json:"xp"`
	XPToNextLevel int      `dynamodbav:"XpToNextLevel" json:"xpToNextLevel"`
	Rating        int      `dynamodbav:"Rating" json:"rating"`
	KrendiCoins   int      `dynamodbav:"KrendiCoins" json:"krendiCoins"`
	KrendiDust    int      `dynamodbav:"KrendiDust" json:"krendiDust"`
	OwnedCardIDs  []string `dynamodbav:"OwnedCardIds" json:"ownedCardIds"`
	Decks         []Deck   `dynamodbav:"Decks" json:"decks"`
	TotalWins     int      `dynamodbav:"TotalWins" json:"totalWins"`
	PvpWins       int      `dynamodbav:"PvpWins" json:"pvpWins"`
	BotWins       int      `dynamodbav:"BotWins" json:"botWins"`
}

// ActiveDeck returns the player's active deck, if any.
func (p *Player) ActiveDeck() (Deck, bool) {
	for _, d := range p.Decks {
		if d.IsActive {
			return d, true
		}
	}
	return Deck{}, false
}

// HasUsableDeck reports whether the player can enter a match.
func (p *Player) HasUsableDeck() bool {
	d, ok := p.ActiveDeck()
	return ok && len(d.CardIDs) > 0
}
