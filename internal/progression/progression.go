// Package progression computes post-match experience, level-ups, rewards
// and rating deltas. Everything here is pure; persistence is the caller's
// problem.
package progression

type RewardType string

const (
	RewardKrendiCoins  RewardType = "KRENDI_COINS"
	RewardSpecificCard RewardType = "SPECIFIC_CARD"
	RewardKrendiDust   RewardType = "KRENDI_DUST"
)

type Reward struct {
	Type        RewardType `json:"type"`
	Amount      int        `json:"amount,omitempty"`
	CardID      string     `json:"cardId,omitempty"`
	Description string     `json:"description"`
}

const (
	xpPerWin     = 30
	xpPerBotWin  = 15
	xpPerLoss    = 10
	xpPerBotLoss = 5

	ratingPerWin  = 15
	ratingPerLoss = -10
)

// levelThresholds maps a level to the total XP required to reach it.
var levelThresholds = map[int]int{
	1: 0, 2: 100, 3: 250, 4: 500, 5: 1000,
	6: 1750, 7: 2800, 8: 4200, 9: 6000, 10: 8500,
}

var levelRewards = map[int][]Reward{
	2: {{Type: RewardKrendiCoins, Amount: 100, Description: "reward_level_2_coins"}},
	3: {{Type: RewardSpecificCard, CardID: "c001", Description: "reward_level_3_card_c001"}},
	4: {{Type: RewardKrendiCoins, Amount: 200, Description: "reward_level_4_coins"}},
	5: {
		{Type: RewardSpecificCard, CardID: "r001", Description: "reward_level_5_card_r001"},
		{Type: RewardKrendiCoins, Amount: 150, Description: "reward_level_5_coins_extra"},
	},
}

// MatchExperience returns the XP gained for a finished match. Matches
// against the scripted opponent grant a reduced amount.
func MatchExperience(won, vsScripted bool) int {
	switch {
	case won && vsScripted:
		return xpPerBotWin
	case won:
		return xpPerWin
	case vsScripted:
		return xpPerBotLoss
	default:
		return xpPerLoss
	}
}

// RatingDelta returns the rating change for a finished match. Scripted
// opponents never move rating.
func RatingDelta(won, vsScripted bool) int {
	if vsScripted {
		return 0
	}
	if won {
		return ratingPerWin
	}
	return ratingPerLoss
}

// ApplyRatingDelta clamps the new rating at zero.
func ApplyRatingDelta(rating, delta int) int {
	return max(0, rating+delta)
}

// Result of advancing a participant's XP total.
type Result struct {
	Level         int
	XP            int
	XPToNextLevel int
	Granted       []Reward
}

// AdvanceLevel adds gained XP to the running total and crosses as many
// level thresholds as the new total covers, collecting every crossed
// level's rewards.
func AdvanceLevel(level, xp, gained int) Result {
	total := xp + gained
	granted := []Reward{}
	for {
		threshold, ok := levelThresholds[level+1]
		if !ok || total < threshold {
			break
		}
		level++
		granted = append(granted, levelRewards[level]...)
	}
	next, ok := levelThresholds[level+1]
	if !ok {
		next = total // max level: nothing further to reach
	}
	return Result{
		Level:         level,
		XP:            total,
		XPToNextLevel: next,
		Granted:       granted,
	}
}
