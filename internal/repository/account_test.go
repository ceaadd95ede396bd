package repository

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/noughts-and-crosses/internal/apperror"
	"github.com/rocketscienceinc/noughts-and-crosses/internal/entity"
	"github.com/rocketscienceinc/noughts-and-crosses/testing/suite"
)

func newAccount() *entity.Account {
	return &entity.Account{
		Address:  solana.NewWallet().PublicKey(),
		Owner:    solana.NewWallet().PublicKey(),
		Lamports: 10_000,
		Data:     []byte{0, 1, 2, 3},
	}
}

func TestAccountRepository_Create(t *testing.T) {
	t.Run("Create_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		accountRepo := NewAccountRepository(st.Storage)

		// Given: a new account
		account := newAccount()

		// When: Create is called
		err := accountRepo.Create(ctx, account)

		// Then: no error should be returned, and the account is stored
		require.NoError(t, err)

		stored, err := accountRepo.GetByAddress(ctx, account.Address)
		require.NoError(t, err)
		assert.Equal(t, account, stored)
	})

	t.Run("Create_AlreadyExists", func(t *testing.T) {
		ctx, st := suite.New(t)

		accountRepo := NewAccountRepository(st.Storage)

		// Given: an account already stored
		account := newAccount()
		require.NoError(t, accountRepo.Create(ctx, account))

		// When: Create is called again for the same address
		other := newAccount()
		other.Address = account.Address
		err := accountRepo.Create(ctx, other)

		// Then: ErrAccountExists is returned and the original survives
		require.ErrorIs(t, err, apperror.ErrAccountExists)

		stored, err := accountRepo.GetByAddress(ctx, account.Address)
		require.NoError(t, err)
		assert.Equal(t, account.Owner, stored.Owner)
	})
}

func TestAccountRepository_Update(t *testing.T) {
	t.Run("Update_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		accountRepo := NewAccountRepository(st.Storage)

		// Given: a stored account
		account := newAccount()
		require.NoError(t, accountRepo.Create(ctx, account))

		// When: its data is replaced
		account.Data = []byte{9, 9, 9, 9, 9, 9}
		err := accountRepo.Update(ctx, account)

		// Then: the new data is returned
		require.NoError(t, err)

		stored, err := accountRepo.GetByAddress(ctx, account.Address)
		require.NoError(t, err)
		assert.Equal(t, []byte{9, 9, 9, 9, 9, 9}, stored.Data)
	})

	t.Run("Update_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		accountRepo := NewAccountRepository(st.Storage)

		// When: an unknown account is updated
		err := accountRepo.Update(ctx, newAccount())

		// Then: ErrAccountNotFound is returned
		require.ErrorIs(t, err, apperror.ErrAccountNotFound)
	})
}

func TestAccountRepository_GetByAddress(t *testing.T) {
	ctx, st := suite.New(t)

	accountRepo := NewAccountRepository(st.Storage)

	// When: GetByAddress is called with an unknown address
	account, err := accountRepo.GetByAddress(ctx, solana.NewWallet().PublicKey())

	// Then: an ErrAccountNotFound error should be returned
	require.ErrorIs(t, err, apperror.ErrAccountNotFound)
	assert.Nil(t, account)
}
