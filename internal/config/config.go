package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"github.com/rocketscienceinc/noughts-and-crosses/internal/apperror"
)

const (
	LedgerRPC   = "rpc"
	LedgerLocal = "local"
)

// Config mirrors the solana CLI config file, extended with the player keypairs
// and a few settings of this tool.
type Config struct {
	JSONRPCURL   string `yaml:"json_rpc_url" env:"SOLANA_JSON_RPC_URL" env-required:"true"`
	Commitment   string `yaml:"commitment" env:"SOLANA_COMMITMENT" env-default:"confirmed"`
	KeypairPath  string `yaml:"keypair_path" env-required:"true"`
	Keypair1Path string `yaml:"keypair_1_path" env-required:"true"`
	Keypair2Path string `yaml:"keypair_2_path" env-required:"true"`

	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Ledger      string `yaml:"ledger" env:"LEDGER" env-default:"rpc"`
	StrictTurns bool   `yaml:"strict_turns" env-default:"false"`
	Redis       Redis  `yaml:"redis"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

// DefaultPath - location of the solana CLI config in the user's home.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: failed to locate homedir and thus can not locate solana config: %w", apperror.ErrConfigRead, err)
	}

	return filepath.Join(home, ".config", "solana", "cli", "config.yml"), nil
}

// Load - reads and validates the config file at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrConfigRead, err)
	}

	if err = ensureSingleDocument(raw); err != nil {
		return nil, err
	}

	conf := &Config{}
	if err = cleanenv.ParseYAML(bytes.NewReader(raw), conf); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidConfig, err)
	}

	if err = cleanenv.ReadEnv(conf); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidConfig, err)
	}

	if err = conf.validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func (that *Config) CommitmentType() rpc.CommitmentType {
	return rpc.CommitmentType(that.Commitment)
}

func (that *Config) IsLocalLedger() bool {
	return that.Ledger == LedgerLocal
}

func (that *Config) validate() error {
	switch rpc.CommitmentType(that.Commitment) {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return fmt.Errorf("%w: unknown commitment %q", apperror.ErrInvalidConfig, that.Commitment)
	}

	switch that.Ledger {
	case LedgerRPC, LedgerLocal:
	default:
		return fmt.Errorf("%w: unknown ledger %q", apperror.ErrInvalidConfig, that.Ledger)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// ReadKeypair - loads a keypair file in the solana-keygen JSON format.
func ReadKeypair(path string) (solana.PrivateKey, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read keypair file (%s): %w", apperror.ErrInvalidConfig, path, err)
	}

	return key, nil
}

func ensureSingleDocument(raw []byte) error {
	decoder := yaml.NewDecoder(bytes.NewReader(raw))

	documents := 0
	for {
		var node yaml.Node

		err := decoder.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return fmt.Errorf("%w: %w", apperror.ErrInvalidConfig, err)
		}

		documents++
	}

	if documents != 1 {
		return fmt.Errorf("%w: expected one yaml document got (%d)", apperror.ErrInvalidConfig, documents)
	}

	return nil
}
