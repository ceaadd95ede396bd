package entity

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rocketscienceinc/noughts-and-crosses/internal/apperror"
)

const GridSize = 3

// Mark is the symbol occupying a grid cell.
type Mark uint8

const (
	EmptyCell Mark = iota
	MarkX
	MarkO
)

func (m Mark) String() string {
	switch m {
	case EmptyCell:
		return "E"
	case MarkX:
		return "X"
	case MarkO:
		return "O"
	default:
		return fmt.Sprintf("Mark(%d)", uint8(m))
	}
}

func (m Mark) IsValid() bool {
	return m <= MarkO
}

// WinCombos lists rows, then columns, then the two diagonals. The order decides
// which line is reported first when several complete at once.
var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Grid is a row-major view of the board.
type Grid [GridSize][GridSize]Mark

// GameState is the persisted record of a single match. Field order is the
// encoding order and must not change.
type GameState struct {
	Player1    solana.PublicKey
	Player2    solana.PublicKey
	MostRecent *solana.PublicKey `bin:"optional"`
	Winner     *solana.PublicKey `bin:"optional"`
	Board      [GridSize * GridSize]Mark
}

func NewGameState(player1, player2 solana.PublicKey) *GameState {
	return &GameState{
		Player1: player1,
		Player2: player2,
	}
}

// Play writes mark at (row, col) on behalf of player. Once the game is over it
// does nothing. No turn order or cell occupancy is enforced here; see CheckTurn.
func (that *GameState) Play(player solana.PublicKey, row, col int, mark Mark) error {
	if that.IsOver() {
		return nil
	}

	cell, err := cellIndex(row, col)
	if err != nil {
		return err
	}

	that.Board[cell] = mark

	actor := player
	that.MostRecent = &actor

	if that.isWin() {
		winner := player
		that.Winner = &winner
	}

	return nil
}

// CheckTurn reports whether the move would be legal under alternating play,
// with player 1 holding X and player 2 holding O.
func (that *GameState) CheckTurn(player solana.PublicKey, row, col int, mark Mark) error {
	cell, err := cellIndex(row, col)
	if err != nil {
		return err
	}

	if that.IsOver() {
		return apperror.ErrGameFinished
	}

	owned, ok := that.MarkOf(player)
	if !ok {
		return fmt.Errorf("%w: %s", apperror.ErrNotParticipant, player)
	}

	if that.MostRecent != nil && that.MostRecent.Equals(player) {
		return apperror.ErrOutOfTurn
	}

	if that.MostRecent == nil && owned != MarkX {
		return apperror.ErrOutOfTurn
	}

	if mark != owned {
		return fmt.Errorf("%w: %s plays %s", apperror.ErrWrongMark, player, owned)
	}

	if that.Board[cell] != EmptyCell {
		return apperror.ErrCellOccupied
	}

	return nil
}

// MarkOf returns the symbol assigned to player.
func (that *GameState) MarkOf(player solana.PublicKey) (Mark, bool) {
	switch {
	case that.Player1.Equals(player):
		return MarkX, true
	case that.Player2.Equals(player):
		return MarkO, true
	default:
		return EmptyCell, false
	}
}

func (that *GameState) IsOver() bool {
	return that.Winner != nil || that.isFullyMarked()
}

func (that *GameState) GetWinner() *solana.PublicKey {
	return copyKey(that.Winner)
}

func (that *GameState) GetMostRecent() *solana.PublicKey {
	return copyKey(that.MostRecent)
}

func (that *GameState) Grid() Grid {
	var grid Grid
	for i := 0; i < GridSize; i++ {
		for j := 0; j < GridSize; j++ {
			grid[i][j] = that.Board[i*GridSize+j]
		}
	}

	return grid
}

func (that *GameState) isWin() bool {
	for _, combo := range WinCombos {
		a, b, c := that.Board[combo[0]], that.Board[combo[1]], that.Board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return true
		}
	}

	return false
}

func (that *GameState) isFullyMarked() bool {
	for _, cell := range that.Board {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// ValidateCell fails with ErrInvalidMove unless both coordinates are on the board.
func ValidateCell(row, col int) error {
	_, err := cellIndex(row, col)
	return err
}

func cellIndex(row, col int) (int, error) {
	if row < 0 || row >= GridSize || col < 0 || col >= GridSize {
		return 0, fmt.Errorf("%w: row %d, col %d", apperror.ErrInvalidMove, row, col)
	}

	return row*GridSize + col, nil
}

func copyKey(key *solana.PublicKey) *solana.PublicKey {
	if key == nil {
		return nil
	}

	out := *key
	return &out
}
