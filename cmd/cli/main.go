package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/minaorangina/bluff/bot"
	"github.com/minaorangina/bluff/config"
	"github.com/minaorangina/bluff/game"
	"github.com/minaorangina/bluff/session"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Plays a match between bots and logs how it went
func main() {
	players := flag.Int("players", 4, "number of bots, 2 to 6")
	turns := flag.Int("turns", 1000, "give up after this many turns")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "bot random seed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err.Error())
	}
	logger, err := cfg.Logger()
	if err != nil {
		log.Fatal(err.Error())
	}
	defer logger.Sync()

	if *players < game.MinPlayers || *players > game.MaxPlayers {
		logger.Fatal("bad player count", zap.Int("players", *players))
	}

	ctx := context.Background()
	store, closeStore, err := cfg.OpenStore(ctx, logger)
	if err != nil {
		logger.Fatal("could not open store", zap.Error(err))
	}
	defer closeStore()

	opts := session.ManagerOpts{
		Store:          store,
		Logger:         logger,
		Options:        cfg.GameOptions(),
		Jokers:         cfg.Jokers,
		RoomCodeLength: cfg.RoomCodeLength,
	}

	var managers []*session.Manager
	defer func() {
		var err error
		for _, m := range managers {
			err = multierr.Append(err, m.Close())
		}
		if err != nil {
			logger.Warn("closing sessions", zap.Error(err))
		}
	}()

	host := session.NewManager(opts)
	managers = append(managers, host)
	hostSession, err := host.InitialiseGame(ctx)
	if err != nil {
		logger.Fatal("could not create game", zap.Error(err))
	}

	sessions := map[game.Player]*session.Session{game.Host: hostSession}
	for i := 1; i < *players; i++ {
		m := session.NewManager(opts)
		managers = append(managers, m)
		s, err := m.JoinGame(ctx, hostSession.RoomID)
		if err != nil {
			logger.Fatal("could not join game", zap.Error(err))
		}
		sessions[s.Seat] = s
	}

	// the host must see every joiner before starting
	if err := hostSession.Engine.ApplySnapshot(mustLoad(ctx, logger, store, hostSession.RoomID)); err != nil {
		logger.Debug("host already up to date", zap.Error(err))
	}
	res, err := hostSession.Engine.Start(ctx, game.Host)
	if err != nil {
		logger.Fatal("could not start game", zap.Error(err))
	}
	if err := <-res; err != nil {
		logger.Fatal("could not save start", zap.Error(err))
	}

	r := bot.NewRandom(*seed, bot.DefaultBluffProbability)
	for turn := 0; turn < *turns; turn++ {
		data := mustLoad(ctx, logger, store, hostSession.RoomID)
		if data.GameStatus == game.Completed {
			logger.Info("game over", zap.Stringer("winner", data.Winner), zap.Int("turns", turn))
			return
		}

		s := sessions[data.CurrentPlayer]
		s.Engine.ApplySnapshot(data)
		res, err := r.Play(ctx, s.Engine, s.Seat)
		if err != nil {
			logger.Fatal("bot failed", zap.Stringer("seat", s.Seat), zap.Error(err))
		}
		if err := <-res; err != nil {
			logger.Fatal("could not save turn", zap.Stringer("seat", s.Seat), zap.Error(err))
		}
	}
	logger.Info("no winner", zap.Int("turns", *turns))
}

func mustLoad(ctx context.Context, logger *zap.Logger, store game.Store, roomID string) game.GameData {
	data, err := store.Load(ctx, roomID)
	if err != nil {
		logger.Fatal("could not load game", zap.String("room", roomID), zap.Error(err))
	}
	return data
}
