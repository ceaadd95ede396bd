package local

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"

	"github.com/rocketscienceinc/noughts-and-crosses/internal/apperror"
	"github.com/rocketscienceinc/noughts-and-crosses/internal/entity"
	"github.com/rocketscienceinc/noughts-and-crosses/internal/repository"
	"github.com/rocketscienceinc/noughts-and-crosses/internal/tictactoe"
)

const (
	// rent parameters of the default cluster configuration
	accountStorageOverhead = 128
	lamportsPerByteYear    = 3480
	exemptionThresholdYear = 2
)

// Ledger executes transactions against accounts kept in Redis. It knows the
// system program's create with seed and the game program, nothing else.
// Payers are treated as funded and are never debited.
type Ledger struct {
	logger    *slog.Logger
	accounts  repository.AccountRepository
	programID solana.PublicKey

	// serializes transactions so that staged writes do not interleave
	mu sync.Mutex
}

func New(logger *slog.Logger, accounts repository.AccountRepository, programID solana.PublicKey) *Ledger {
	return &Ledger{
		logger:    logger.With("component", "local_ledger"),
		accounts:  accounts,
		programID: programID,
	}
}

func (that *Ledger) GetAccount(ctx context.Context, address solana.PublicKey) (*entity.Account, error) {
	return that.accounts.GetByAddress(ctx, address)
}

// GetBalance - lamports held by address, zero for unknown accounts.
func (that *Ledger) GetBalance(ctx context.Context, address solana.PublicKey) (uint64, error) {
	account, err := that.accounts.GetByAddress(ctx, address)
	if errors.Is(err, apperror.ErrAccountNotFound) {
		return 0, nil
	} else if err != nil {
		return 0, err
	}

	return account.Lamports, nil
}

func (that *Ledger) GetMinimumBalanceForRentExemption(_ context.Context, size uint64) (uint64, error) {
	return MinimumBalance(size), nil
}

// MinimumBalance - rent exempt minimum for an account holding size bytes.
func MinimumBalance(size uint64) uint64 {
	return (accountStorageOverhead + size) * lamportsPerByteYear * exemptionThresholdYear
}

// SendAndConfirm - runs the instructions in order. Accounts are written only
// after every instruction succeeded.
func (that *Ledger) SendAndConfirm(
	ctx context.Context,
	payer solana.PrivateKey,
	instructions ...solana.Instruction,
) (solana.Signature, error) {
	log := that.logger.With("method", "SendAndConfirm")

	that.mu.Lock()
	defer that.mu.Unlock()

	tx := newTransaction(that.accounts, payer.PublicKey())

	for i, instruction := range instructions {
		if err := that.execute(ctx, tx, instruction); err != nil {
			return solana.Signature{}, fmt.Errorf("%w: instruction %d: %w", apperror.ErrTransactionFailed, i, err)
		}
	}

	if err := tx.commit(ctx); err != nil {
		return solana.Signature{}, err
	}

	signature, err := sign(payer, instructions)
	if err != nil {
		return solana.Signature{}, err
	}

	log.Debug("transaction executed", "signature", signature, "instructions", len(instructions))

	return signature, nil
}

func (that *Ledger) execute(ctx context.Context, tx *transaction, instruction solana.Instruction) error {
	for _, meta := range instruction.Accounts() {
		if meta.IsSigner && !tx.signedBy(meta.PublicKey) {
			return fmt.Errorf("%w: %s", apperror.ErrMissingSignature, meta.PublicKey)
		}
	}

	data, err := instruction.Data()
	if err != nil {
		return fmt.Errorf("failed to read instruction data: %w", err)
	}

	switch programID := instruction.ProgramID(); {
	case programID.Equals(solana.SystemProgramID):
		return that.executeSystem(ctx, tx, instruction.Accounts(), data)
	case programID.Equals(that.programID):
		return that.executeGame(ctx, tx, instruction.Accounts(), data)
	default:
		return fmt.Errorf("%w: program %s", apperror.ErrUnknownInstruction, programID)
	}
}

func (that *Ledger) executeSystem(ctx context.Context, tx *transaction, accounts []*solana.AccountMeta, data []byte) error {
	decoded, err := system.DecodeInstruction(accounts, data)
	if err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrUnknownInstruction, err)
	}

	create, ok := decoded.Impl.(*system.CreateAccountWithSeed)
	if !ok {
		return fmt.Errorf("%w: system instruction %d", apperror.ErrUnknownInstruction, decoded.TypeID.Uint32())
	}

	if len(accounts) < 2 {
		return fmt.Errorf("%w: expected 2, got %d", apperror.ErrNotEnoughAccounts, len(accounts))
	}

	if !tx.signedBy(*create.Base) {
		return fmt.Errorf("%w: base %s", apperror.ErrMissingSignature, create.Base)
	}

	expected, err := solana.CreateWithSeed(*create.Base, *create.Seed, *create.Owner)
	if err != nil {
		return fmt.Errorf("failed to derive address: %w", err)
	}

	address := accounts[1].PublicKey
	if !address.Equals(expected) {
		return fmt.Errorf("address %s does not match derived %s", address, expected)
	}

	if _, err = tx.load(ctx, address); err == nil {
		return fmt.Errorf("%w: %s", apperror.ErrAccountExists, address)
	} else if !errors.Is(err, apperror.ErrAccountNotFound) {
		return err
	}

	tx.create(&entity.Account{
		Address:  address,
		Owner:    *create.Owner,
		Lamports: *create.Lamports,
		Data:     make([]byte, *create.Space),
	})

	return nil
}

func (that *Ledger) executeGame(ctx context.Context, tx *transaction, metas []*solana.AccountMeta, data []byte) error {
	accounts := make([]*tictactoe.AccountInfo, 0, len(metas))

	for i, meta := range metas {
		info := &tictactoe.AccountInfo{
			Key:        meta.PublicKey,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
		}

		account, err := tx.load(ctx, meta.PublicKey)
		switch {
		case err == nil:
			info.Owner = account.Owner
			info.Data = account.Data
		case errors.Is(err, apperror.ErrAccountNotFound) && i > 0:
			// players do not need to exist on the ledger
		default:
			return err
		}

		accounts = append(accounts, info)
	}

	if err := tictactoe.Process(that.programID, accounts, data); err != nil {
		return err
	}

	game, err := tx.load(ctx, accounts[0].Key)
	if err != nil {
		return err
	}

	game.Data = accounts[0].Data
	tx.update(game)

	return nil
}

// sign produces the signature the transaction would carry on a cluster. The
// blockhash is derived from the clock so repeated moves get distinct ids.
func sign(payer solana.PrivateKey, instructions []solana.Instruction) (solana.Signature, error) {
	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], uint64(time.Now().UnixNano())) //nolint:gosec // clock is positive

	tx, err := solana.NewTransaction(instructions, solana.Hash(sha256.Sum256(seed[:])), solana.TransactionPayer(payer.PublicKey()))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to build transaction: %w", err)
	}

	signatures, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer.PublicKey()) {
			return &payer
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %w", apperror.ErrMissingSignature, err)
	}

	return signatures[0], nil
}
