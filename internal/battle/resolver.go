// Package battle is a pure, deterministic team-battle resolver. It
// knows nothing about persistence: given two team snapshots and a seed
// it always produces the same winner and turn log, which is what makes
// match outcomes replayable for audit.
package battle

import (
	"errors"
	"math/rand"

	"github.com/google/uuid"
)

// ErrNoCombatants is returned when neither side fielded a team, so no
// winner can be determined by the resolver itself.
var ErrNoCombatants = errors.New("neither side fielded a combatant")

// MaxLogTurns caps how many attack entries are kept in the turn log.
const MaxLogTurns = 50

// maxTotalTurns bounds a battle that cannot conclude (e.g. both sides
// deal minimum damage against huge HP pools). When hit, side B wins,
// matching the defender-wins convention of the original engine.
const maxTotalTurns = 2000

// AttackKind selects which attack/defense pair a combatant uses.
type AttackKind string

const (
	Physical AttackKind = "physical"
	Magic    AttackKind = "magic"
)

// Combatant is a snapshot of one fighter with all passive/equipment
// bonuses already applied.
type Combatant struct {
	ID   uuid.UUID
	Name string

	HPMax     int
	HPCurrent int

	PhysicalAttack  int
	MagicAttack     int
	PhysicalDefense int
	MagicDefense    int
	Speed           int

	AttackKind AttackKind

	// Grade breaks first-strike ties: higher grades act first.
	Grade int

	Skills []string
}

// Alive reports whether the combatant can still fight.
func (c *Combatant) Alive() bool {
	return c.HPCurrent > 0
}

func (c *Combatant) mainAttack() int {
	if c.AttackKind == Magic {
		return c.MagicAttack
	}
	return c.PhysicalAttack
}

// Team is one side's snapshot at match time.
type Team struct {
	CompetitorID uuid.UUID
	Name         string
	Level        int
	Combatants   []*Combatant
}

func (t *Team) firstAlive() *Combatant {
	for _, c := range t.Combatants {
		if c.Alive() {
			return c
		}
	}
	return nil
}

// TurnEntry records a single attack. One attack is one turn.
type TurnEntry struct {
	Turn            int       `json:"turn"`
	AttackerID      uuid.UUID `json:"attackerId"`
	DefenderID      uuid.UUID `json:"defenderId"`
	AttackerName    string    `json:"attackerName"`
	DefenderName    string    `json:"defenderName"`
	Damage          int       `json:"damage"`
	AttackerHPAfter int       `json:"attackerHpAfter"`
	DefenderHPAfter int       `json:"defenderHpAfter"`
}

// Result is the outcome of one resolved battle.
type Result struct {
	WinnerID uuid.UUID
	LoserID  uuid.UUID

	// Forfeit is true when one side had no combatants and lost without
	// any turn resolution.
	Forfeit bool

	TotalTurns int
	Seed       int64
	Log        []TurnEntry
}

// Resolve runs a full battle between two teams. Combatants fight in
// fielded order, one pair at a time; a surviving combatant carries its
// remaining HP into the next pairing. A side with no combatants loses
// automatically. Resolve(a, b, seed) is a pure function of its inputs.
func Resolve(a, b *Team, seed int64) (*Result, error) {
	aAlive := a.firstAlive() != nil
	bAlive := b.firstAlive() != nil

	if !aAlive && !bAlive {
		return nil, ErrNoCombatants
	}
	if !aAlive {
		return &Result{WinnerID: b.CompetitorID, LoserID: a.CompetitorID, Forfeit: true, Seed: seed}, nil
	}
	if !bAlive {
		return &Result{WinnerID: a.CompetitorID, LoserID: b.CompetitorID, Forfeit: true, Seed: seed}, nil
	}

	rng := rand.New(rand.NewSource(seed))
	var log []TurnEntry
	turn := 0

	for {
		ca := a.firstAlive()
		cb := b.firstAlive()
		if ca == nil || cb == nil || turn >= maxTotalTurns {
			break
		}

		// This pair fights until one of them falls.
		for ca.Alive() && cb.Alive() && turn < maxTotalTurns {
			var order [][2]*Combatant
			if firstStrikerIsA(ca, cb, rng) {
				order = [][2]*Combatant{{ca, cb}, {cb, ca}}
			} else {
				order = [][2]*Combatant{{cb, ca}, {ca, cb}}
			}

			for _, pair := range order {
				atk, def := pair[0], pair[1]
				if !atk.Alive() || !def.Alive() {
					continue
				}

				turn++
				level := a.Level
				if atk == cb {
					level = b.Level
				}
				dmg := calcDamage(atk, def, level, rng)
				def.HPCurrent -= dmg
				if def.HPCurrent < 0 {
					def.HPCurrent = 0
				}

				if turn <= MaxLogTurns {
					log = append(log, TurnEntry{
						Turn:            turn,
						AttackerID:      atk.ID,
						DefenderID:      def.ID,
						AttackerName:    atk.Name,
						DefenderName:    def.Name,
						Damage:          dmg,
						AttackerHPAfter: atk.HPCurrent,
						DefenderHPAfter: def.HPCurrent,
					})
				}

				if !def.Alive() {
					break
				}
			}
		}
	}

	res := &Result{TotalTurns: turn, Seed: seed, Log: log}
	if a.firstAlive() != nil && b.firstAlive() == nil {
		res.WinnerID = a.CompetitorID
		res.LoserID = b.CompetitorID
	} else {
		// Turn cap or mutual wipe: side B (the defender slot) wins.
		res.WinnerID = b.CompetitorID
		res.LoserID = a.CompetitorID
	}
	return res, nil
}

// firstStrikerIsA applies the first-strike ladder: speed, then grade,
// then total stats, then a seeded coin flip. The ladder is a total
// order given the rng, never map iteration.
func firstStrikerIsA(ca, cb *Combatant, rng *rand.Rand) bool {
	if ca.Speed != cb.Speed {
		return ca.Speed > cb.Speed
	}
	if ca.Grade != cb.Grade {
		return ca.Grade > cb.Grade
	}
	aSum := ca.HPMax + ca.mainAttack() + ca.PhysicalDefense + ca.MagicDefense + ca.Speed
	bSum := cb.HPMax + cb.mainAttack() + cb.PhysicalDefense + cb.MagicDefense + cb.Speed
	if aSum != bSum {
		return aSum > bSum
	}
	return rng.Intn(2) == 0
}

// defenseMultiplier returns the damage multiplier for the defender's
// defense tier, used when attack exceeds defense.
func defenseMultiplier(defense int) float64 {
	switch {
	case defense < 1000:
		return 3.8
	case defense < 2000:
		return 2.0
	case defense < 3000:
		return 1.6
	case defense < 4000:
		return 1.3
	case defense < 5000:
		return 1.1
	default:
		return 1.0
	}
}

// calcDamage computes one attack's damage.
//
// With attack >= defense:
//
//	damage = (attack - defense) * rand(0.069, 0.071) * tier multiplier
//
// With attack < defense the damage comes from fixed bands scaled by how
// far behind the attacker is, and low-level attackers (20-39) deal 30%.
// Damage is floored and never below 1.
func calcDamage(atk, def *Combatant, attackerLevel int, rng *rand.Rand) int {
	var attack, defense int
	if atk.AttackKind == Magic || (atk.MagicAttack > 0 && atk.PhysicalAttack <= 0) {
		attack = atk.MagicAttack
		defense = def.MagicDefense
	} else {
		attack = atk.PhysicalAttack
		defense = def.PhysicalDefense
	}

	diff := attack - defense
	var dmg int
	if diff >= 0 {
		factor := 0.069 + rng.Float64()*0.002
		dmg = int(float64(diff) * factor * defenseMultiplier(defense))
	} else {
		d := -diff
		var base float64
		switch {
		case d <= 1000:
			base = float64(250 + rng.Intn(51))
		case d <= 2000:
			base = float64(250+rng.Intn(51)) * 0.7
		case d <= 3000:
			base = float64(250+rng.Intn(51)) * 0.5
		case d <= 4000:
			base = float64(250+rng.Intn(51)) * 0.3
		default:
			base = float64(20 + rng.Intn(21))
		}
		if attackerLevel >= 20 && attackerLevel <= 39 {
			base *= 0.3
		}
		dmg = int(base)
	}

	if dmg < 1 {
		dmg = 1
	}
	return dmg
}
