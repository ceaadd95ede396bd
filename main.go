package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	app "github.com/rocketscienceinc/noughts-and-crosses/internal"
	"github.com/rocketscienceinc/noughts-and-crosses/internal/config"
)

// main - is the entry point of the application. It parses the arguments, loads the configuration and runs the demo game.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "noughts-and-crosses <path to solana noughts-and-crosses program keypair>",
		Short: "Plays a game of noughts and crosses against a solana program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// arguments are valid past this point, failures are not usage errors
			cmd.SilenceUsage = true

			conf, err := initConfig(configPath)
			if err != nil {
				return err
			}

			logger := initLogger(conf)

			if err = app.RunApp(logger, conf, args[0], cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("app run failed: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the solana CLI config (default $HOME/.config/solana/cli/config.yml)")

	return cmd
}

// initialize config.
func initConfig(path string) (*config.Config, error) {
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	return config.Load(path)
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
