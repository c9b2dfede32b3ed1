// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ursula

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/armada/lib/codec"
)

// Outcomes recorded in a snapshot.
const (
	OutcomeQuiescent   = "quiescent"
	OutcomeBankrupt    = "bankrupt"
	OutcomeInterrupted = "interrupted"
	OutcomeFailed      = "failed"
)

// Snapshot is the registry as it stood when the arbiter stopped.
type Snapshot struct {
	TakenAt  time.Time       `cbor:"taken_at"`
	Outcome  string          `cbor:"outcome"`
	Treasury int             `cbor:"treasury"`
	Ships    []ShipRecord    `cbor:"ships"`
	Captains []CaptainRecord `cbor:"captains"`
	Combats  []CombatOutcome `cbor:"combats"`
}

// Snapshot captures the registry, ships and captains ordered by pid.
func (a *Arbiter) Snapshot(outcome string, takenAt time.Time) Snapshot {
	snapshot := Snapshot{
		TakenAt:  takenAt.UTC(),
		Outcome:  outcome,
		Treasury: a.treasury,
		Combats:  slices.Clone(a.combats),
	}
	for _, ship := range a.ships {
		snapshot.Ships = append(snapshot.Ships, *ship)
	}
	for _, captain := range a.captains {
		snapshot.Captains = append(snapshot.Captains, *captain)
	}
	slices.SortFunc(snapshot.Ships, func(x, y ShipRecord) int { return cmp.Compare(x.PID, y.PID) })
	slices.SortFunc(snapshot.Captains, func(x, y CaptainRecord) int { return cmp.Compare(x.PID, y.PID) })
	return snapshot
}

// WriteSnapshot stores s at path, replacing any earlier snapshot.
func WriteSnapshot(path string, s Snapshot) error {
	return codec.WriteFile(path, s)
}

// ReadSnapshot loads a snapshot written by WriteSnapshot.
func ReadSnapshot(path string) (Snapshot, error) {
	var s Snapshot
	err := codec.ReadFile(path, &s)
	return s, err
}

// Report prints s for an operator.
func (s Snapshot) Report(w io.Writer) error {
	renderer := lipgloss.NewRenderer(w)
	heading := renderer.NewStyle().Bold(true)
	alert := renderer.NewStyle().Foreground(lipgloss.Color("1"))

	outcome := s.Outcome
	if s.Outcome == OutcomeBankrupt {
		outcome = alert.Render(outcome)
	}

	var lines []string
	lines = append(lines,
		heading.Render("session "+s.TakenAt.Format(time.RFC3339)),
		fmt.Sprintf("outcome:  %s", outcome),
		fmt.Sprintf("treasury: %d", s.Treasury),
		fmt.Sprintf("combats:  %d", len(s.Combats)),
		"",
		heading.Render("SHIP    X   Y   FOOD  GOLD  STATE"),
	)
	for _, ship := range s.Ships {
		state := "gone"
		if ship.Active {
			state = "active"
		}
		lines = append(lines, fmt.Sprintf("%-6d  %-2d  %-2d  %-4d  %-4d  %s",
			ship.PID, ship.X, ship.Y, ship.Food, ship.Gold, state))
	}
	if len(s.Captains) > 0 {
		lines = append(lines, "", heading.Render("CAPTAINS"))
		for _, captain := range s.Captains {
			state := "signed off"
			if captain.Active {
				state = "active"
			}
			lines = append(lines, strconv.Itoa(captain.PID)+"  "+state)
		}
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
