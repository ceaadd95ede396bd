package entity

import (
	"fmt"
	"math"

	bin "github.com/gagliardetto/binary"

	"github.com/rocketscienceinc/noughts-and-crosses/internal/apperror"
)

// Encode serializes the state with borsh: player_1, player_2, most_recent,
// winner, grid.
func (that *GameState) Encode() ([]byte, error) {
	data, err := bin.MarshalBorsh(that)
	if err != nil {
		return nil, fmt.Errorf("%w: encode game state: %w", apperror.ErrSerialization, err)
	}

	return data, nil
}

// EncodedSize is the number of bytes Encode would produce.
func (that *GameState) EncodedSize() (int, error) {
	data, err := that.Encode()
	if err != nil {
		return 0, err
	}

	return len(data), nil
}

// DecodeGameState expects data to hold exactly one encoded state.
func DecodeGameState(data []byte) (*GameState, error) {
	var state GameState

	if err := decodeExact(data, &state); err != nil {
		return nil, fmt.Errorf("%w: decode game state: %w", apperror.ErrSerialization, err)
	}

	for i, cell := range state.Board {
		if !cell.IsValid() {
			return nil, fmt.Errorf("%w: invalid mark %d at cell %d", apperror.ErrSerialization, cell, i)
		}
	}

	return &state, nil
}

func (that Move) Encode() ([]byte, error) {
	data, err := bin.MarshalBorsh(&that)
	if err != nil {
		return nil, fmt.Errorf("%w: encode move: %w", apperror.ErrSerialization, err)
	}

	return data, nil
}

func DecodeMove(data []byte) (Move, error) {
	var move Move

	if err := decodeExact(data, &move); err != nil {
		return Move{}, fmt.Errorf("%w: decode move: %w", apperror.ErrSerialization, err)
	}

	if !move.Mark.IsValid() {
		return Move{}, fmt.Errorf("%w: invalid mark %d", apperror.ErrSerialization, move.Mark)
	}

	return move, nil
}

// Cell converts the wire coordinates, mapping anything that does not fit an int
// to -1 so that Play rejects it.
func (that Move) Cell() (int, int) {
	return toCoord(that.Row), toCoord(that.Col)
}

func toCoord(v uint64) int {
	if v > math.MaxInt32 {
		return -1
	}

	return int(v)
}

func decodeExact(data []byte, v interface{}) error {
	decoder := bin.NewBorshDecoder(data)
	if err := decoder.Decode(v); err != nil {
		return err
	}

	if rest := decoder.Remaining(); rest > 0 {
		return fmt.Errorf("%d trailing bytes", rest)
	}

	return nil
}
