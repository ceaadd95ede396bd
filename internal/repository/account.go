package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/noughts-and-crosses/internal/apperror"
	"github.com/rocketscienceinc/noughts-and-crosses/internal/entity"
)

type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	Update(ctx context.Context, account *entity.Account) error
	GetByAddress(ctx context.Context, address solana.PublicKey) (*entity.Account, error)
}

type dbAccount struct {
	client *redis.Client
}

func NewAccountRepository(client *redis.Client) AccountRepository {
	return &dbAccount{
		client: client,
	}
}

func accountKey(address solana.PublicKey) string {
	return "account:" + address.String()
}

// Create - stores a new account, failing if the address is taken.
func (that *dbAccount) Create(ctx context.Context, account *entity.Account) error {
	accountJSON, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("could not marshal account: %w", err)
	}

	created, err := that.client.SetNX(ctx, accountKey(account.Address), accountJSON, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	if !created {
		return fmt.Errorf("%w: %s", apperror.ErrAccountExists, account.Address)
	}

	return nil
}

// Update - overwrites an existing account.
func (that *dbAccount) Update(ctx context.Context, account *entity.Account) error {
	accountJSON, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("could not marshal account: %w", err)
	}

	updated, err := that.client.SetXX(ctx, accountKey(account.Address), accountJSON, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	if !updated {
		return fmt.Errorf("%w: %s", apperror.ErrAccountNotFound, account.Address)
	}

	return nil
}

func (that *dbAccount) GetByAddress(ctx context.Context, address solana.PublicKey) (*entity.Account, error) {
	response, err := that.client.Get(ctx, accountKey(address)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrAccountNotFound, address)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get account by address: %w", err)
	}

	var account entity.Account
	if err = json.Unmarshal([]byte(response), &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	return &account, nil
}
