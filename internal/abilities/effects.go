package abilities

import "math"

// Effect is the strategy every catalog ability implements. Apply must only
// touch the records held by the context.
type Effect interface {
	Apply(c *Context)
}

// strike deals a multiple of the caster's Attack.
type strike struct {
	name       string
	multiplier float64
}

func (s strike) Apply(c *Context) {
	dmg := Round(c.AttackPower() * s.multiplier)
	dealt, before, after := c.hitDefender(dmg)
	c.Logf("%s uses %s dealing %d damage (%d -> %d).", c.AttackerName, s.name, dealt, before, after)
}

// drain deals a fraction of Attack and heals the caster by the damage that
// got through the shield.
type drain struct {
	ratio float64
}

func (d drain) Apply(c *Context) {
	dmg := Round(c.AttackPower() * d.ratio)
	dealt, defBefore, defAfter := c.hitDefender(dmg)
	selfBefore, selfAfter := c.healAttacker(dealt)
	c.Logf("%s uses Drain dealing %d damage and healing %d HP (%d -> %d; self %d -> %d).",
		c.AttackerName, dealt, selfAfter-selfBefore, defBefore, defAfter, selfBefore, selfAfter)
}

// shock deals fixed damage and slows the defender.
type shock struct {
	damage int
	slow   float64
}

func (s shock) Apply(c *Context) {
	dealt, before, after := c.hitDefender(s.damage)
	c.scaleSpeed(c.DefenderID, s.slow)
	c.Logf("%s uses Shock dealing %d damage and reducing %s's Speed by %d%% (HP %d -> %d).",
		c.AttackerName, dealt, c.DefenderName, Round((1-s.slow)*100), before, after)
}

// mend heals the caster by a flat amount.
type mend struct {
	name   string
	amount int
}

func (m mend) Apply(c *Context) {
	before, after := c.healAttacker(m.amount)
	c.Logf("%s uses %s and heals %d HP (%d -> %d).", c.AttackerName, m.name, after-before, before, after)
}

// fortify heals a little and raises the caster's shield.
type fortify struct {
	heal   int
	shield int
}

func (f fortify) Apply(c *Context) {
	before, after := c.healAttacker(f.heal)
	c.Shield[c.AttackerID] += f.shield
	c.Logf("%s uses Fortify: heals %d HP and gains +%d shield (HP %d -> %d).",
		c.AttackerName, after-before, f.shield, before, after)
}

// barrier adds a flat amount to the caster's shield.
type barrier struct {
	amount int
}

func (b barrier) Apply(c *Context) {
	before := c.Shield[c.AttackerID]
	c.Shield[c.AttackerID] = before + b.amount
	c.Logf("%s creates a Barrier absorbing %d damage (shield %d -> %d).",
		c.AttackerName, b.amount, before, before+b.amount)
}

// quickCharge adds stamina-scaled charge to the caster.
type quickCharge struct {
	base float64
}

func (q quickCharge) Apply(c *Context) {
	gain := Round(q.base * (1 + float64(c.Attacker.Stamina)/100))
	if gain > MaxCharge {
		gain = MaxCharge
	}
	before := c.Charge[c.AttackerID]
	after := before + gain
	if after > MaxCharge {
		after = MaxCharge
	}
	c.Charge[c.AttackerID] = after
	c.Logf("%s uses Quick Charge and gains %d%% charge (now %d%%).", c.AttackerName, after-before, after)
}

// weaken lowers the defender's modifier without dealing damage.
type weaken struct {
	factor float64
}

func (w weaken) Apply(c *Context) {
	c.scaleSpeed(c.DefenderID, w.factor)
	c.Logf("%s is weakened: speed and defense reduced by %d%%.", c.DefenderName, int(math.Round((1-w.factor)*100)))
}
