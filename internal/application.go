package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/noughts-and-crosses/internal/config"
	"github.com/rocketscienceinc/noughts-and-crosses/internal/entity"
	"github.com/rocketscienceinc/noughts-and-crosses/internal/presentation"
	"github.com/rocketscienceinc/noughts-and-crosses/internal/repository"
	"github.com/rocketscienceinc/noughts-and-crosses/internal/repository/storage"
	"github.com/rocketscienceinc/noughts-and-crosses/internal/transport/local"
	"github.com/rocketscienceinc/noughts-and-crosses/internal/transport/rpc"
	"github.com/rocketscienceinc/noughts-and-crosses/internal/usecase"
)

type demoMove struct {
	row, col int
	mark     entity.Mark
}

// demoMoves ends with X completing the first column.
var demoMoves = []demoMove{
	{row: 0, col: 0, mark: entity.MarkX},
	{row: 0, col: 1, mark: entity.MarkO},
	{row: 2, col: 0, mark: entity.MarkX},
	{row: 1, col: 1, mark: entity.MarkO},
	{row: 1, col: 0, mark: entity.MarkX},
}

// RunApp - runs the demo game with the program at programKeypairPath.
func RunApp(logger *slog.Logger, conf *config.Config, programKeypairPath string, stdout io.Writer) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	params, err := loadParams(conf, programKeypairPath)
	if err != nil {
		return err
	}

	client, closeLedger, err := newClient(ctx, logger, conf, params)
	if err != nil {
		return err
	}
	defer closeLedger()

	return Play(ctx, client, params, presentation.NewPrinter(stdout))
}

// Play - creates the game and plays the demo moves, printing the grid after each.
func Play(ctx context.Context, client *usecase.GameClient, params usecase.Params, printer *presentation.Printer) error {
	crosses, noughts := entity.NewPlayers(params.Player1, params.Player2)

	for _, player := range []entity.Player{crosses, noughts} {
		if err := printer.Println("%s plays %s", player.Key, player.Mark); err != nil {
			return err
		}
	}

	if _, err := client.CreateGame(ctx); err != nil {
		return fmt.Errorf("could not create game: %w", err)
	}

	for _, move := range demoMoves {
		player := crosses
		if move.mark == noughts.Mark {
			player = noughts
		}

		if err := client.Play(ctx, player.Key, move.row, move.col, move.mark); err != nil {
			return fmt.Errorf("could not play %s at (%d, %d): %w", move.mark, move.row, move.col, err)
		}

		grid, err := client.GetGrid(ctx)
		if err != nil {
			return err
		}

		if err = printer.Grid(grid); err != nil {
			return err
		}
	}

	over, err := client.IsOver(ctx)
	if err != nil {
		return err
	}

	if over {
		if err = printer.Println("Game is over"); err != nil {
			return err
		}
	}

	winner, err := client.GetWinner(ctx)
	if err != nil {
		return err
	}

	if winner == nil {
		return printer.Println("No winner")
	}

	return printer.Println("Winner: %s", *winner)
}

func loadParams(conf *config.Config, programKeypairPath string) (usecase.Params, error) {
	organizer, err := config.ReadKeypair(conf.KeypairPath)
	if err != nil {
		return usecase.Params{}, err
	}

	player1, err := config.ReadKeypair(conf.Keypair1Path)
	if err != nil {
		return usecase.Params{}, err
	}

	player2, err := config.ReadKeypair(conf.Keypair2Path)
	if err != nil {
		return usecase.Params{}, err
	}

	program, err := config.ReadKeypair(programKeypairPath)
	if err != nil {
		return usecase.Params{}, err
	}

	return usecase.Params{
		Player1:     player1.PublicKey(),
		Player2:     player2.PublicKey(),
		Organizer:   organizer,
		ProgramID:   program.PublicKey(),
		StrictTurns: conf.StrictTurns,
	}, nil
}

func newClient(
	ctx context.Context,
	logger *slog.Logger,
	conf *config.Config,
	params usecase.Params,
) (*usecase.GameClient, func(), error) {
	log := logger.With("component", "app")

	if !conf.IsLocalLedger() {
		log.Info("Using cluster", "url", conf.JSONRPCURL, "commitment", conf.Commitment)
		ledger := rpc.New(conf.JSONRPCURL, conf.CommitmentType())

		return usecase.NewGameClient(logger, ledger, params), func() {}, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	log.Info("Using local ledger", "redis", redisAddrString)

	ledger := local.New(logger, repository.NewAccountRepository(redisStorage), params.ProgramID)
	closeStorage := func() {
		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	return usecase.NewGameClient(logger, ledger, params), closeStorage, nil
}
