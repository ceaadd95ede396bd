package entity

import "github.com/gagliardetto/solana-go"

type Player struct {
	Key  solana.PublicKey
	Mark Mark
}

// NewPlayers assigns X to the first player and O to the second.
func NewPlayers(player1, player2 solana.PublicKey) (Player, Player) {
	return Player{Key: player1, Mark: MarkX}, Player{Key: player2, Mark: MarkO}
}
