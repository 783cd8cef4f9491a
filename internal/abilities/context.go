package abilities

import (
	"fmt"
	"math"

	"github.com/ericogr/titan-arena/internal/game"
)

// Context is the round-scoped state an ability effect may read and mutate.
// Records are keyed by titan id. Attacker and Defender are copies; changing
// them never reaches the titans themselves.
type Context struct {
	AttackerID   string
	DefenderID   string
	AttackerName string
	DefenderName string
	Attacker     game.Stats
	Defender     game.Stats
	// AttackMultiplier scales Attacker.Attack for this call only; zero means 1.
	AttackMultiplier float64

	HP       map[string]int
	Charge   map[string]int
	Shield   map[string]int
	SpeedMod map[string]float64

	Log *[]string
}

// Logf appends a formatted line to the round log.
func (c *Context) Logf(format string, args ...interface{}) {
	if c.Log == nil {
		return
	}
	*c.Log = append(*c.Log, fmt.Sprintf(format, args...))
}

// Round converts a float result to the nearest integer.
func Round(f float64) int {
	return int(math.Round(f))
}

// AttackPower is the caster's Attack after AttackMultiplier.
func (c *Context) AttackPower() float64 {
	m := c.AttackMultiplier
	if m == 0 {
		m = 1
	}
	return float64(c.Attacker.Attack) * m
}

// Absorb consumes the shield of id against dmg and returns the damage left.
func (c *Context) Absorb(id, name string, dmg int) int {
	shield := c.Shield[id]
	if shield <= 0 || dmg <= 0 {
		return dmg
	}
	absorbed := shield
	if dmg < absorbed {
		absorbed = dmg
	}
	c.Shield[id] = shield - absorbed
	c.Logf("%s's shield absorbs %d damage.", name, absorbed)
	return dmg - absorbed
}

// hitDefender runs dmg through the defender's shield and subtracts what is
// left from its HP, never below zero.
func (c *Context) hitDefender(dmg int) (dealt, before, after int) {
	dealt = c.Absorb(c.DefenderID, c.DefenderName, dmg)
	before = c.HP[c.DefenderID]
	after = before - dealt
	if after < 0 {
		after = 0
	}
	c.HP[c.DefenderID] = after
	return dealt, before, after
}

// healAttacker raises the attacker's HP by amount, capped at its max HP.
func (c *Context) healAttacker(amount int) (before, after int) {
	before = c.HP[c.AttackerID]
	after = before + amount
	if after > c.Attacker.HP {
		after = c.Attacker.HP
	}
	if after < before {
		after = before
	}
	c.HP[c.AttackerID] = after
	return before, after
}

// scaleSpeed multiplies the speed modifier of id, which defaults to 1.
func (c *Context) scaleSpeed(id string, factor float64) float64 {
	cur, ok := c.SpeedMod[id]
	if !ok {
		cur = 1
	}
	next := math.Max(0, cur*factor)
	c.SpeedMod[id] = next
	return next
}
