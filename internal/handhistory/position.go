package handhistory

// PositionFor derives the seat role from the seat's offset to the
// button. It is a pure function of (seat, button, format):
//
//	offset := (seat - button) mod size
//	offset 0 -> BTN
//	3-max:  1 -> SB, 2 -> BB
//	6-max:  1 -> SB, 2 -> BB, 3 -> UTG, 4 -> MP, 5 -> CO
func PositionFor(seat, button int, format TableFormat) Position {
	size := format.Size()
	offset := ((seat - button) % size + size) % size

	switch offset {
	case 0:
		return Button
	case 1:
		return SmallBlind
	case 2:
		return BigBlind
	}
	if format == SixMax {
		switch offset {
		case 3:
			return UnderTheGun
		case 4:
			return MiddlePosition
		case 5:
			return Cutoff
		}
	}
	return UnknownPosition
}
