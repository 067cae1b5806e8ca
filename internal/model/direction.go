package model

import "github.com/shopspring/decimal"

// Direction classifies a price move for the display layer's up/down arrow.
// This is the one place a price is parsed as a number; tracked-field change
// detection elsewhere stays textual.
type Direction int

const (
	Down Direction = iota - 1
	Flat
	Up
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "flat"
	}
}

// PriceDirection compares two textual prices numerically. Unparseable input
// yields Flat; a stale or malformed price should never render as a move.
func PriceDirection(old, new string) Direction {
	po, err := decimal.NewFromString(old)
	if err != nil {
		return Flat
	}
	pn, err := decimal.NewFromString(new)
	if err != nil {
		return Flat
	}

	switch pn.Cmp(po) {
	case 1:
		return Up
	case -1:
		return Down
	default:
		return Flat
	}
}
