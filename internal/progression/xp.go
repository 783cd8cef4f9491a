// Package progression turns finished games into titan experience, level-ups
// and archived match records.
package progression

import "math"

const (
	winXP           = 50
	lossXP          = 20
	defeatBonus     = 1.1
	minXPFactor     = 0.5
	maxXPFactor     = 2.0
	levelStepXP     = 100
	levelStepGrowth = 1.15
)

// XPToNext is the experience needed to advance from level to level+1.
func XPToNext(level int) int {
	if level < 1 {
		level = 1
	}
	return int(math.Floor(levelStepXP * math.Pow(levelStepGrowth, float64(level-1))))
}

// BattleXP is the experience a titan of level own earns against a titan of
// level opp. Beating a stronger opponent pays more, up to double.
func BattleXP(own, opp int, won, defeated bool) int {
	base := float64(lossXP)
	if won {
		base = winXP
	}
	factor := math.Max(minXPFactor, math.Min(maxXPFactor, 1+0.1*float64(opp-own)))
	xp := math.Round(base * factor)
	if won && defeated {
		xp = math.Round(xp * defeatBonus)
	}
	return int(xp)
}

// StatIncrease maps a uniform draw in [0,1) to a level-up stat gain between
// 0 and 3, with the extremes the least likely.
func StatIncrease(r float64) int {
	switch {
	case r < 0.1:
		return 0
	case r < 0.4:
		return 1
	case r < 0.8:
		return 2
	default:
		return 3
	}
}
