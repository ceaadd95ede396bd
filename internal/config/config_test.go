package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/noughts-and-crosses/internal/apperror"
)

const validConfig = `---
json_rpc_url: "http://localhost:8899"
websocket_url: ""
keypair_path: /tmp/organizer.json
keypair_1_path: /tmp/player1.json
keypair_2_path: /tmp/player2.json
commitment: finalized
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func writeKeypair(t *testing.T, key solana.PrivateKey) string {
	t.Helper()

	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}

	raw, err := json.Marshal(ints)
	require.NoError(t, err)

	return writeFile(t, "id.json", string(raw))
}

func TestLoad(t *testing.T) {
	t.Run("Reads the solana CLI fields", func(t *testing.T) {
		// Given: a complete config file
		path := writeFile(t, "config.yml", validConfig)

		// When: loading it
		conf, err := Load(path)

		// Then: fields and defaults are populated
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8899", conf.JSONRPCURL)
		assert.Equal(t, "/tmp/organizer.json", conf.KeypairPath)
		assert.Equal(t, "/tmp/player1.json", conf.Keypair1Path)
		assert.Equal(t, "/tmp/player2.json", conf.Keypair2Path)
		assert.Equal(t, rpc.CommitmentFinalized, conf.CommitmentType())
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, LedgerRPC, conf.Ledger)
		assert.False(t, conf.IsLocalLedger())
		assert.False(t, conf.StrictTurns)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
	})

	t.Run("Reads the local ledger settings", func(t *testing.T) {
		path := writeFile(t, "config.yml", validConfig+"ledger: local\nstrict_turns: true\nredis:\n  host: cache\n  port: \"7000\"\n")

		conf, err := Load(path)

		require.NoError(t, err)
		assert.True(t, conf.IsLocalLedger())
		assert.True(t, conf.StrictTurns)
		assert.Equal(t, "cache:7000", conf.Redis.GetRedisAddr())
	})

	t.Run("Missing file is a read error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))

		assert.ErrorIs(t, err, apperror.ErrConfigRead)
	})

	t.Run("Missing field is invalid", func(t *testing.T) {
		path := writeFile(t, "config.yml", "json_rpc_url: http://localhost:8899\nkeypair_path: /tmp/a.json\n")

		_, err := Load(path)

		assert.ErrorIs(t, err, apperror.ErrInvalidConfig)
	})

	t.Run("More than one document is invalid", func(t *testing.T) {
		path := writeFile(t, "config.yml", validConfig+"---\njson_rpc_url: other\n")

		_, err := Load(path)

		require.ErrorIs(t, err, apperror.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "expected one yaml document got (2)")
	})

	t.Run("Empty file is invalid", func(t *testing.T) {
		path := writeFile(t, "config.yml", "")

		_, err := Load(path)

		assert.ErrorIs(t, err, apperror.ErrInvalidConfig)
	})

	t.Run("Unknown ledger is invalid", func(t *testing.T) {
		path := writeFile(t, "config.yml", validConfig+"ledger: carrier-pigeon\n")

		_, err := Load(path)

		assert.ErrorIs(t, err, apperror.ErrInvalidConfig)
	})

	t.Run("Unknown commitment is invalid", func(t *testing.T) {
		path := writeFile(t, "config.yml", "json_rpc_url: x\nkeypair_path: a\nkeypair_1_path: b\nkeypair_2_path: c\ncommitment: eventually\n")

		_, err := Load(path)

		assert.ErrorIs(t, err, apperror.ErrInvalidConfig)
	})
}

func TestReadKeypair(t *testing.T) {
	t.Run("Reads a solana-keygen file", func(t *testing.T) {
		// Given: a keypair written in the keygen format
		wallet := solana.NewWallet()
		path := writeKeypair(t, wallet.PrivateKey)

		// When: reading it back
		key, err := ReadKeypair(path)

		// Then: the same public key is derived
		require.NoError(t, err)
		assert.Equal(t, wallet.PublicKey(), key.PublicKey())
	})

	t.Run("Unreadable keypair is invalid config", func(t *testing.T) {
		_, err := ReadKeypair(filepath.Join(t.TempDir(), "missing.json"))

		require.ErrorIs(t, err, apperror.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "failed to read keypair file")
	})
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("HOME", "/home/organizer")

	path, err := DefaultPath()

	require.NoError(t, err)
	assert.Equal(t, "/home/organizer/.config/solana/cli/config.yml", path)
}
