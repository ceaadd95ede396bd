package rpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/rocketscienceinc/noughts-and-crosses/internal/apperror"
	"github.com/rocketscienceinc/noughts-and-crosses/internal/entity"
)

const (
	defaultPollInterval   = 500 * time.Millisecond
	defaultConfirmTimeout = 60 * time.Second
)

// Client talks to a solana cluster over JSON-RPC.
type Client struct {
	client     *rpc.Client
	commitment rpc.CommitmentType

	pollInterval   time.Duration
	confirmTimeout time.Duration
}

type Option func(*Client)

func WithPollInterval(interval time.Duration) Option {
	return func(that *Client) {
		that.pollInterval = interval
	}
}

func WithConfirmTimeout(timeout time.Duration) Option {
	return func(that *Client) {
		that.confirmTimeout = timeout
	}
}

func New(endpoint string, commitment rpc.CommitmentType, opts ...Option) *Client {
	client := &Client{
		client:         rpc.New(endpoint),
		commitment:     commitment,
		pollInterval:   defaultPollInterval,
		confirmTimeout: defaultConfirmTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// GetAccount - fetches the account at address.
func (that *Client) GetAccount(ctx context.Context, address solana.PublicKey) (*entity.Account, error) {
	result, err := that.client.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: that.commitment,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrAccountNotFound, address)
	} else if err != nil {
		return nil, fmt.Errorf("failed to get account info: %w", err)
	}

	if result == nil || result.Value == nil {
		return nil, fmt.Errorf("%w: %s", apperror.ErrAccountNotFound, address)
	}

	var data []byte
	if result.Value.Data != nil {
		data = result.Value.Data.GetBinary()
	}

	return &entity.Account{
		Address:  address,
		Owner:    result.Value.Owner,
		Lamports: result.Value.Lamports,
		Data:     data,
	}, nil
}

func (that *Client) GetBalance(ctx context.Context, address solana.PublicKey) (uint64, error) {
	result, err := that.client.GetBalance(ctx, address, that.commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	return result.Value, nil
}

func (that *Client) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	lamports, err := that.client.GetMinimumBalanceForRentExemption(ctx, size, that.commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to get minimum balance for rent exemption: %w", err)
	}

	return lamports, nil
}

// SendAndConfirm - signs the instructions with payer, sends them as one
// transaction and waits until the cluster reaches the configured commitment.
func (that *Client) SendAndConfirm(
	ctx context.Context,
	payer solana.PrivateKey,
	instructions ...solana.Instruction,
) (solana.Signature, error) {
	blockhash, err := that.client.GetLatestBlockhash(ctx, that.commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, blockhash.Value.Blockhash, solana.TransactionPayer(payer.PublicKey()))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to build transaction: %w", err)
	}

	if _, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer.PublicKey()) {
			return &payer
		}
		return nil
	}); err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %w", apperror.ErrMissingSignature, err)
	}

	signature, err := that.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: that.commitment,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	if err = that.waitForConfirmation(ctx, signature); err != nil {
		return signature, err
	}

	return signature, nil
}

func (that *Client) waitForConfirmation(ctx context.Context, signature solana.Signature) error {
	ctx, cancel := context.WithTimeout(ctx, that.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(that.pollInterval)
	defer ticker.Stop()

	for {
		result, err := that.client.GetSignatureStatuses(ctx, false, signature)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("transaction %s not confirmed: %w", signature, ctx.Err())
			}
			return fmt.Errorf("failed to get signature status: %w", err)
		}

		if len(result.Value) > 0 && result.Value[0] != nil {
			status := result.Value[0]
			if status.Err != nil {
				return fmt.Errorf("%w: %s: %v", apperror.ErrTransactionFailed, signature, status.Err)
			}

			if that.reached(status.ConfirmationStatus) {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("transaction %s not confirmed: %w", signature, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (that *Client) reached(status rpc.ConfirmationStatusType) bool {
	switch that.commitment {
	case rpc.CommitmentFinalized:
		return status == rpc.ConfirmationStatusFinalized
	case rpc.CommitmentProcessed:
		return status != ""
	default:
		return status == rpc.ConfirmationStatusConfirmed || status == rpc.ConfirmationStatusFinalized
	}
}
