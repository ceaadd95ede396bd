package entity

import "github.com/gagliardetto/solana-go"

// Account is a ledger account as seen by the client.
type Account struct {
	Address  solana.PublicKey `json:"address"`
	Owner    solana.PublicKey `json:"owner"`
	Lamports uint64           `json:"lamports"`
	Data     []byte           `json:"data"`
}
