package apperror

import "errors"

var (
	ErrConfigRead    = errors.New("failed to read config")
	ErrInvalidConfig = errors.New("invalid config")
	ErrSerialization = errors.New("serialization failed")

	ErrInvalidMove    = errors.New("invalid move")
	ErrOutOfTurn      = errors.New("it's not your turn")
	ErrCellOccupied   = errors.New("cell is already occupied")
	ErrGameFinished   = errors.New("game is already finished")
	ErrNotParticipant = errors.New("player is not a participant of the game")
	ErrWrongMark      = errors.New("mark does not belong to player")

	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrIncorrectProgramID = errors.New("incorrect program id")
	ErrNotEnoughAccounts  = errors.New("not enough account keys")
	ErrMissingSignature   = errors.New("missing required signature")
	ErrTransactionFailed  = errors.New("transaction failed")
	ErrUnknownInstruction = errors.New("unknown instruction")
)
