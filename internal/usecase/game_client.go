package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	"github.com/rocketscienceinc/noughts-and-crosses/internal/apperror"
	"github.com/rocketscienceinc/noughts-and-crosses/internal/entity"
)

const (
	// rentSafetyFactor funds the game account well above the rent-exempt minimum,
	// since the record grows once players have moved.
	rentSafetyFactor = 10

	seedPartLength = 10
)

type ledger interface {
	GetAccount(ctx context.Context, address solana.PublicKey) (*entity.Account, error)
	GetBalance(ctx context.Context, address solana.PublicKey) (uint64, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)
	SendAndConfirm(ctx context.Context, payer solana.PrivateKey, instructions ...solana.Instruction) (solana.Signature, error)
}

type Params struct {
	Player1   solana.PublicKey
	Player2   solana.PublicKey
	Organizer solana.PrivateKey
	ProgramID solana.PublicKey

	// StrictTurns checks turn order locally before a move is submitted.
	StrictTurns bool
}

// GameClient drives a single game stored on the ledger. The organizer funds
// and signs every transaction.
type GameClient struct {
	logger *slog.Logger
	ledger ledger

	player1     solana.PublicKey
	player2     solana.PublicKey
	organizer   solana.PrivateKey
	programID   solana.PublicKey
	strictTurns bool
}

func NewGameClient(logger *slog.Logger, ledger ledger, params Params) *GameClient {
	return &GameClient{
		logger: logger.With("component", "game_client"),
		ledger: ledger,

		player1:     params.Player1,
		player2:     params.Player2,
		organizer:   params.Organizer,
		programID:   params.ProgramID,
		strictTurns: params.StrictTurns,
	}
}

// Seed - seed of the game account address.
//
// Player 2 is not part of the seed: the second slot repeats player 1. Games
// created by earlier clients live at these addresses, so this is kept as is,
// which means two games of one organizer and player 1 share one account.
func (that *GameClient) Seed() string {
	organizer := that.organizer.PublicKey().String()
	player := that.player1.String()

	return fmt.Sprintf("%s-%s-%s", organizer[:seedPartLength], player[:seedPartLength], player[:seedPartLength])
}

// DeriveAddress - address of the game account owned by the program.
func (that *GameClient) DeriveAddress() (solana.PublicKey, error) {
	address, err := solana.CreateWithSeed(that.organizer.PublicKey(), that.Seed(), that.programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive game address: %w", err)
	}

	return address, nil
}

// CreateGame - creates and funds the game account unless it already exists.
func (that *GameClient) CreateGame(ctx context.Context) (solana.PublicKey, error) {
	log := that.logger.With("method", "CreateGame")

	address, err := that.DeriveAddress()
	if err != nil {
		return solana.PublicKey{}, err
	}

	existing, err := that.ledger.GetAccount(ctx, address)
	if err == nil {
		log.Info("account already exists", "address", address, "lamports", existing.Lamports, "owner", existing.Owner)
		return address, nil
	}

	if !errors.Is(err, apperror.ErrAccountNotFound) {
		return solana.PublicKey{}, fmt.Errorf("failed to get game account: %w", err)
	}

	size, err := that.GetSchemaDataSize()
	if err != nil {
		return solana.PublicKey{}, err
	}

	minimumBalance, err := that.ledger.GetMinimumBalanceForRentExemption(ctx, size)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to get minimum balance for rent exemption: %w", err)
	}

	organizer := that.organizer.PublicKey()
	instruction := system.NewCreateAccountWithSeedInstruction(
		organizer,
		that.Seed(),
		minimumBalance*rentSafetyFactor,
		size,
		that.programID,
		organizer, // payer
		address,
		organizer, // base
	).Build()

	signature, err := that.ledger.SendAndConfirm(ctx, that.organizer, instruction)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to create game account: %w", err)
	}

	log.Info("game account created", "address", address, "size", size, "signature", signature)

	return address, nil
}

// Play - submits a move of player. Only the organizer signs.
func (that *GameClient) Play(ctx context.Context, player solana.PublicKey, row, col int, mark entity.Mark) error {
	log := that.logger.With("method", "Play")

	if err := entity.ValidateCell(row, col); err != nil {
		return err
	}

	address, err := that.DeriveAddress()
	if err != nil {
		return err
	}

	if that.strictTurns {
		if err = that.checkTurn(ctx, address, player, row, col, mark); err != nil {
			return err
		}
	}

	data, err := entity.NewMove(row, col, mark).Encode()
	if err != nil {
		return err
	}

	instruction := solana.NewInstruction(
		that.programID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(address, true, false),
			solana.NewAccountMeta(player, true, false),
		},
		data,
	)

	signature, err := that.ledger.SendAndConfirm(ctx, that.organizer, instruction)
	if err != nil {
		return fmt.Errorf("failed to send move: %w", err)
	}

	log.Debug("move confirmed", "player", player, "row", row, "col", col, "mark", mark, "signature", signature)

	return nil
}

func (that *GameClient) IsOver(ctx context.Context) (bool, error) {
	game, err := that.GetState(ctx)
	if err != nil {
		return false, err
	}

	return game.IsOver(), nil
}

func (that *GameClient) GetWinner(ctx context.Context) (*solana.PublicKey, error) {
	game, err := that.GetState(ctx)
	if err != nil {
		return nil, err
	}

	return game.GetWinner(), nil
}

func (that *GameClient) GetMostRecent(ctx context.Context) (*solana.PublicKey, error) {
	game, err := that.GetState(ctx)
	if err != nil {
		return nil, err
	}

	return game.GetMostRecent(), nil
}

func (that *GameClient) GetGrid(ctx context.Context) (entity.Grid, error) {
	game, err := that.GetState(ctx)
	if err != nil {
		return entity.Grid{}, err
	}

	return game.Grid(), nil
}

// GetState - fetches and decodes the game account.
func (that *GameClient) GetState(ctx context.Context) (*entity.GameState, error) {
	address, err := that.DeriveAddress()
	if err != nil {
		return nil, err
	}

	return that.getState(ctx, address)
}

// GetSchemaDataSize - encoded size of a fresh game between the two players.
func (that *GameClient) GetSchemaDataSize() (uint64, error) {
	size, err := entity.NewGameState(that.player1, that.player2).EncodedSize()
	if err != nil {
		return 0, err
	}

	return uint64(size), nil
}

func (that *GameClient) GetGameBalance(ctx context.Context) (uint64, error) {
	address, err := that.DeriveAddress()
	if err != nil {
		return 0, err
	}

	balance, err := that.ledger.GetBalance(ctx, address)
	if err != nil {
		return 0, fmt.Errorf("failed to get game balance: %w", err)
	}

	return balance, nil
}

func (that *GameClient) getState(ctx context.Context, address solana.PublicKey) (*entity.GameState, error) {
	account, err := that.ledger.GetAccount(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get game account: %w", err)
	}

	game, err := entity.DecodeGameState(account.Data)
	if err != nil {
		return nil, err
	}

	return game, nil
}

func (that *GameClient) checkTurn(ctx context.Context, address, player solana.PublicKey, row, col int, mark entity.Mark) error {
	game, err := that.getState(ctx, address)
	if err != nil {
		return err
	}

	// the account is allocated but never initialized, so the stored players
	// stay zero until the program writes them
	if game.Player1.IsZero() && game.Player2.IsZero() {
		game.Player1, game.Player2 = that.player1, that.player2
	}

	if err = game.CheckTurn(player, row, col, mark); err != nil {
		return fmt.Errorf("move rejected: %w", err)
	}

	return nil
}
