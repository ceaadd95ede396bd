package entity

// Move is the instruction payload sent to the game program.
type Move struct {
	Row  uint64
	Col  uint64
	Mark Mark
}

func NewMove(row, col int, mark Mark) Move {
	return Move{
		Row:  uint64(row), //nolint: gosec // bounds are checked by the program
		Col:  uint64(col), //nolint: gosec // bounds are checked by the program
		Mark: mark,
	}
}
