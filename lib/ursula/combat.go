// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ursula

import "slices"

// Combat economics.
const (
	WinnerReward = 10
	LossFood     = 10
	LossGold     = 10
)

// Combatant is a ship's state going into a fight.
type Combatant struct {
	PID  int `cbor:"pid"`
	Food int `cbor:"food"`
	Gold int `cbor:"gold"`
}

// Loss is what one loser gives up.
type Loss struct {
	PID  int `cbor:"pid"`
	Food int `cbor:"food"`
	Gold int `cbor:"gold"`
}

// CombatOutcome is the settled result of one fight.
type CombatOutcome struct {
	X int `cbor:"x"`
	Y int `cbor:"y"`

	// Combatants lists every pid in the fight, ascending.
	Combatants []int `cbor:"combatants"`

	Winner int    `cbor:"winner"`
	Losses []Loss `cbor:"losses"`

	// Pool is the gold actually taken from the losers.
	Pool int `cbor:"pool"`

	// Subsidy is what the treasury pays towards the reward; negative
	// when the pool's surplus is taxed into the treasury. Pool plus
	// Subsidy is always WinnerReward.
	Subsidy int `cbor:"subsidy"`

	// Bankrupt is set when the treasury cannot cover Subsidy. A
	// bankrupt outcome is never applied.
	Bankrupt bool `cbor:"bankrupt"`
}

// ResolveCombat settles a fight among combatants. pick chooses the
// winner's index in [0, n) after combatants are ordered by pid, so a
// seeded source replays the same session. With fewer than two
// combatants there is no fight and ok is false.
func ResolveCombat(combatants []Combatant, treasury int, pick func(n int) int) (outcome CombatOutcome, ok bool) {
	if len(combatants) < 2 {
		return CombatOutcome{}, false
	}

	ordered := slices.Clone(combatants)
	slices.SortFunc(ordered, func(a, b Combatant) int { return a.PID - b.PID })

	winner := pick(len(ordered))
	outcome.Winner = ordered[winner].PID
	for index, combatant := range ordered {
		outcome.Combatants = append(outcome.Combatants, combatant.PID)
		if index == winner {
			continue
		}
		loss := Loss{
			PID:  combatant.PID,
			Food: min(LossFood, max(0, combatant.Food)),
			Gold: min(LossGold, max(0, combatant.Gold)),
		}
		outcome.Losses = append(outcome.Losses, loss)
		outcome.Pool += loss.Gold
	}

	outcome.Subsidy = WinnerReward - outcome.Pool
	outcome.Bankrupt = outcome.Subsidy > treasury
	return outcome, true
}
