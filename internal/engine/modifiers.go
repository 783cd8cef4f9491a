package engine

import "github.com/ericogr/titan-arena/internal/abilities"

const (
	baseHitChance = 0.8
	minHitChance  = 0.05
	maxHitChance  = 0.95

	critMultiplier      = 1.5
	defendChargeGain    = 20
	attackChargeBase    = 10.0
	restChargeBase      = 20.0
	defendMultiplierMin = 1.5
	defendMultiplierVar = 0.5
)

// --- Modifier helpers --------------------------------------------------

// carriedModifier returns the debuff multiplier carried into this round for a
// titan, 1 when none.
func (rc *roundContext) carriedModifier(titanID string) float64 {
	if m, ok := rc.in.Modifiers[titanID]; ok && m >= 0 {
		return m
	}
	return 1
}

func hitChance(accuracy, evasion int) float64 {
	p := baseHitChance + float64(accuracy-evasion)/100
	if p < minHitChance {
		p = minHitChance
	}
	if p > maxHitChance {
		p = maxHitChance
	}
	return p
}

// staminaGain scales base by the stamina stat and caps at full charge.
func staminaGain(base float64, stamina int) int {
	g := abilities.Round(base * (1 + float64(stamina)/100))
	if g > abilities.MaxCharge {
		g = abilities.MaxCharge
	}
	return g
}

// addCharge raises a titan's charge, capped at full.
func (rc *roundContext) addCharge(titanID string, gain int) int {
	v := rc.charge[titanID] + gain
	if v > abilities.MaxCharge {
		v = abilities.MaxCharge
	}
	rc.charge[titanID] = v
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
