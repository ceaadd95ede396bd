package tictactoe

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rocketscienceinc/noughts-and-crosses/internal/apperror"
	"github.com/rocketscienceinc/noughts-and-crosses/internal/entity"
)

// AccountInfo is the view of an account handed to the program by the ledger.
type AccountInfo struct {
	Key        solana.PublicKey
	Owner      solana.PublicKey
	Data       []byte
	IsSigner   bool
	IsWritable bool
}

// Process executes a single move instruction. The first account holds the game
// state and must be owned by the program, the second is the acting player.
func Process(programID solana.PublicKey, accounts []*AccountInfo, data []byte) error {
	if len(accounts) < 2 {
		return fmt.Errorf("%w: expected 2, got %d", apperror.ErrNotEnoughAccounts, len(accounts))
	}

	gameAccount, player := accounts[0], accounts[1]

	if !gameAccount.Owner.Equals(programID) {
		return fmt.Errorf("%w: account %s is owned by %s", apperror.ErrIncorrectProgramID, gameAccount.Key, gameAccount.Owner)
	}

	move, err := entity.DecodeMove(data)
	if err != nil {
		return fmt.Errorf("invalid instruction data: %w", err)
	}

	game, err := entity.DecodeGameState(gameAccount.Data)
	if err != nil {
		return fmt.Errorf("invalid game account: %w", err)
	}

	row, col := move.Cell()
	if err = game.Play(player.Key, row, col, move.Mark); err != nil {
		return fmt.Errorf("failed to play: %w", err)
	}

	// data is resized to the encoded length since optional fields grow the record
	encoded, err := game.Encode()
	if err != nil {
		return fmt.Errorf("failed to store game: %w", err)
	}

	gameAccount.Data = encoded

	return nil
}
