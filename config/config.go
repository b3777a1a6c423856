package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joeshaw/envdecode"
	"github.com/minaorangina/bluff/game"
	"github.com/minaorangina/bluff/store"
	"go.uber.org/zap"
)

const (
	MemoryStore = "memory"
	RedisStore  = "redis"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is read from BLUFF_* environment variables
type Config struct {
	Addr            string        `env:"BLUFF_ADDR,default=:8000"`
	Store           string        `env:"BLUFF_STORE,default=memory"`
	RedisAddr       string        `env:"BLUFF_REDIS_ADDR,default=localhost:6379"`
	RedisPassword   string        `env:"BLUFF_REDIS_PASSWORD"`
	RedisDB         int           `env:"BLUFF_REDIS_DB,default=0"`
	Jokers          int           `env:"BLUFF_JOKERS,default=2"`
	RoomCodeLength  int           `env:"BLUFF_ROOM_CODE_LENGTH,default=5"`
	SaveRetries     int           `env:"BLUFF_SAVE_RETRIES,default=3"`
	SaveBackoff     time.Duration `env:"BLUFF_SAVE_BACKOFF,default=100ms"`
	JokersWild      bool          `env:"BLUFF_JOKERS_WILD,default=false"`
	FlushOnFullPass bool          `env:"BLUFF_FLUSH_ON_FULL_PASS,default=false"`
	LogLevel        string        `env:"BLUFF_LOG_LEVEL,default=info"`
}

// Load reads and validates the environment
func Load() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.Store != MemoryStore && c.Store != RedisStore:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	case c.Jokers < 0:
		return fmt.Errorf("%w: negative joker count", ErrInvalidConfig)
	case c.RoomCodeLength <= 0:
		return fmt.Errorf("%w: room code length must be positive", ErrInvalidConfig)
	case c.SaveRetries < 0:
		return fmt.Errorf("%w: negative save retries", ErrInvalidConfig)
	}
	if _, err := zap.ParseAtomicLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c Config) GameOptions() game.Options {
	return game.Options{
		JokersWild:      c.JokersWild,
		FlushOnFullPass: c.FlushOnFullPass,
		SaveRetries:     c.SaveRetries,
		SaveBackoff:     c.SaveBackoff,
	}
}

func (c Config) RedisOptions() *redis.Options {
	return &redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// Logger builds a production zap logger at the configured level
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = level
	return zc.Build()
}

// OpenStore connects the configured store. The returned func releases it.
func (c Config) OpenStore(ctx context.Context, logger *zap.Logger) (game.Store, func() error, error) {
	if c.Store == RedisStore {
		rs, err := store.DialRedis(ctx, c.RedisOptions(), logger)
		if err != nil {
			return nil, nil, err
		}
		return rs, rs.Close, nil
	}
	return store.NewInMemoryGameStore(logger), func() error { return nil }, nil
}
