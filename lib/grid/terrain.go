// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package grid

// Terrain is the symbol stored in a chart cell.
type Terrain byte

const (
	Water  Terrain = '.'
	Rock   Terrain = '#'
	Port   Terrain = 'P'
	Island Terrain = 'I'

	// Occupied overlays. Each remembers the terrain underneath.
	ShipOnWater  Terrain = 'S'
	ShipOnPort   Terrain = 'H'
	ShipOnIsland Terrain = 'B'
)

// Underlying returns the terrain beneath an occupancy overlay. Plain
// terrain is returned unchanged.
func (t Terrain) Underlying() Terrain {
	switch t {
	case ShipOnWater:
		return Water
	case ShipOnPort:
		return Port
	case ShipOnIsland:
		return Island
	default:
		return t
	}
}

// Occupied returns the overlay drawn when a ship sits on t. Rock and
// symbols the chart legend does not know are returned unchanged.
func (t Terrain) Occupied() Terrain {
	switch t {
	case Water:
		return ShipOnWater
	case Port:
		return ShipOnPort
	case Island:
		return ShipOnIsland
	default:
		return t
	}
}

func (t Terrain) String() string {
	switch t.Underlying() {
	case Water:
		return "water"
	case Rock:
		return "rock"
	case Port:
		return "port"
	case Island:
		return "island"
	default:
		return string(rune(t))
	}
}
