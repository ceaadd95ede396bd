package local

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/rocketscienceinc/noughts-and-crosses/internal/entity"
	"github.com/rocketscienceinc/noughts-and-crosses/internal/repository"
)

// transaction stages account writes until commit.
type transaction struct {
	accounts repository.AccountRepository
	signer   solana.PublicKey

	created map[solana.PublicKey]*entity.Account
	updated map[solana.PublicKey]*entity.Account
	order   []solana.PublicKey
}

func newTransaction(accounts repository.AccountRepository, signer solana.PublicKey) *transaction {
	return &transaction{
		accounts: accounts,
		signer:   signer,
		created:  make(map[solana.PublicKey]*entity.Account),
		updated:  make(map[solana.PublicKey]*entity.Account),
	}
}

func (that *transaction) signedBy(key solana.PublicKey) bool {
	return that.signer.Equals(key)
}

// load returns a copy of the account as seen by this transaction.
func (that *transaction) load(ctx context.Context, address solana.PublicKey) (*entity.Account, error) {
	if account, ok := that.created[address]; ok {
		return cloneAccount(account), nil
	}

	if account, ok := that.updated[address]; ok {
		return cloneAccount(account), nil
	}

	return that.accounts.GetByAddress(ctx, address)
}

func (that *transaction) create(account *entity.Account) {
	that.created[account.Address] = account
	that.order = append(that.order, account.Address)
}

func (that *transaction) update(account *entity.Account) {
	if _, ok := that.created[account.Address]; ok {
		that.created[account.Address] = account
		return
	}

	if _, ok := that.updated[account.Address]; !ok {
		that.order = append(that.order, account.Address)
	}

	that.updated[account.Address] = account
}

func (that *transaction) commit(ctx context.Context) error {
	for _, address := range that.order {
		if account, ok := that.created[address]; ok {
			if err := that.accounts.Create(ctx, account); err != nil {
				return fmt.Errorf("failed to commit account %s: %w", address, err)
			}
			continue
		}

		if err := that.accounts.Update(ctx, that.updated[address]); err != nil {
			return fmt.Errorf("failed to commit account %s: %w", address, err)
		}
	}

	return nil
}

func cloneAccount(account *entity.Account) *entity.Account {
	out := *account
	out.Data = append([]byte(nil), account.Data...)

	return &out
}
