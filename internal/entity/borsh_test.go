package entity

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/noughts-and-crosses/internal/apperror"
)

func TestGameState_Encode(t *testing.T) {
	t.Run("Fresh state has a fixed size", func(t *testing.T) {
		// Given: a fresh game
		game := NewGameState(solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())

		// When: encoding it
		size, err := game.EncodedSize()

		// Then: two keys, two empty options and nine marks
		require.NoError(t, err)
		assert.Equal(t, 32+32+1+1+9, size)
	})

	t.Run("Field order is player_1, player_2, most_recent, winner, grid", func(t *testing.T) {
		// Given: a game where player 1 has moved
		player1 := solana.NewWallet().PublicKey()
		player2 := solana.NewWallet().PublicKey()
		game := NewGameState(player1, player2)
		require.NoError(t, game.Play(player1, 2, 2, X))

		// When: encoding it
		data, err := game.Encode()
		require.NoError(t, err)

		// Then: the bytes follow the declared layout
		require.Len(t, data, 32+32+33+1+9)
		assert.Equal(t, player1[:], data[0:32])
		assert.Equal(t, player2[:], data[32:64])
		assert.Equal(t, byte(1), data[64])
		assert.Equal(t, player1[:], data[65:97])
		assert.Equal(t, byte(0), data[97])
		assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0, 1}, data[98:])
	})

	t.Run("Round trip preserves every field", func(t *testing.T) {
		// Given: a won game
		game := newGameWithBoard([9]Mark{X, X, E, E, E, O, E, O, E})
		require.NoError(t, game.Play(game.Player1, 0, 2, X))

		// When: encoding and decoding it
		data, err := game.Encode()
		require.NoError(t, err)
		decoded, err := DecodeGameState(data)

		// Then: the decoded state is identical
		require.NoError(t, err)
		assert.Equal(t, game, decoded)
	})
}

func TestDecodeGameState(t *testing.T) {
	t.Run("Zeroed account decodes as an empty game", func(t *testing.T) {
		// Given: freshly allocated account data
		data := make([]byte, 75)

		// When: decoding it
		game, err := DecodeGameState(data)

		// Then: it is an empty game with zero keys
		require.NoError(t, err)
		assert.True(t, game.Player1.IsZero())
		assert.Nil(t, game.Winner)
		assert.Equal(t, [9]Mark{}, game.Board)
	})

	t.Run("Rejects truncated data", func(t *testing.T) {
		_, err := DecodeGameState(make([]byte, 40))

		assert.ErrorIs(t, err, apperror.ErrSerialization)
	})

	t.Run("Rejects trailing bytes", func(t *testing.T) {
		_, err := DecodeGameState(make([]byte, 80))

		assert.ErrorIs(t, err, apperror.ErrSerialization)
	})

	t.Run("Rejects unknown marks", func(t *testing.T) {
		data := make([]byte, 75)
		data[70] = 7

		_, err := DecodeGameState(data)

		assert.ErrorIs(t, err, apperror.ErrSerialization)
	})
}

func TestMove_Encode(t *testing.T) {
	t.Run("Layout is row u64, col u64, mark u8", func(t *testing.T) {
		// Given: a move
		move := NewMove(1, 2, O)

		// When: encoding it
		data, err := move.Encode()

		// Then: little endian integers followed by the mark byte
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 2}, data)
	})

	t.Run("Round trip", func(t *testing.T) {
		data, err := NewMove(2, 0, X).Encode()
		require.NoError(t, err)

		move, err := DecodeMove(data)

		require.NoError(t, err)
		assert.Equal(t, Move{Row: 2, Col: 0, Mark: X}, move)
	})

	t.Run("Huge coordinates map to an invalid cell", func(t *testing.T) {
		row, col := Move{Row: 1 << 40, Col: 1}.Cell()

		assert.Equal(t, -1, row)
		assert.Equal(t, 1, col)
	})

	t.Run("Rejects an unknown mark", func(t *testing.T) {
		_, err := DecodeMove([]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 9})

		assert.ErrorIs(t, err, apperror.ErrSerialization)
	})
}
