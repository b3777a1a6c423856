package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/minaorangina/bluff/game"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// RedisGameStore keeps snapshots in redis and fans out updates over pub/sub
type RedisGameStore struct {
	rdb *redis.Client
	log *zap.Logger

	mu   sync.Mutex
	subs map[*redisSubscription]struct{}

	// beforeExec runs between the version check and EXEC
	beforeExec func()
}

func matchKey(matchID string) string {
	return fmt.Sprintf("bluff:match:%s", matchID)
}

func versionKey(matchID string) string {
	return fmt.Sprintf("bluff:match:%s:version", matchID)
}

func updatesChannel(matchID string) string {
	return fmt.Sprintf("bluff:match:%s:updates", matchID)
}

// NewRedisGameStore wraps an existing client
func NewRedisGameStore(rdb *redis.Client, logger *zap.Logger) *RedisGameStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisGameStore{
		rdb:  rdb,
		log:  logger,
		subs: map[*redisSubscription]struct{}{},
	}
}

// DialRedis connects to redis and checks the connection
func DialRedis(ctx context.Context, opts *redis.Options, logger *zap.Logger) (*RedisGameStore, error) {
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", opts.Addr, err)
	}
	return NewRedisGameStore(rdb, logger), nil
}

// Save writes the snapshot and publishes it when the stored version is still
// base. Concurrent writers race on WATCH and the loser gets ErrStaleWrite.
func (s *RedisGameStore) Save(ctx context.Context, matchID string, base int64, data game.GameData) error {
	b, err := Encode(data)
	if err != nil {
		return err
	}

	vkey := versionKey(matchID)
	txf := func(tx *redis.Tx) error {
		stored, err := tx.Get(ctx, vkey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if stored != base || data.Version <= base {
			return game.ErrStaleWrite
		}
		if s.beforeExec != nil {
			s.beforeExec()
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, matchKey(matchID), b, 0)
			pipe.Set(ctx, vkey, strconv.FormatInt(data.Version, 10), 0)
			pipe.Publish(ctx, updatesChannel(matchID), b)
			return nil
		})
		return err
	}

	err = s.rdb.Watch(ctx, txf, vkey)
	if errors.Is(err, redis.TxFailedErr) {
		return game.ErrStaleWrite
	}
	if err != nil && !errors.Is(err, game.ErrStaleWrite) {
		return fmt.Errorf("saving match %s: %w", matchID, err)
	}
	return err
}

func (s *RedisGameStore) Load(ctx context.Context, matchID string) (game.GameData, error) {
	b, err := s.rdb.Get(ctx, matchKey(matchID)).Bytes()
	if err == redis.Nil {
		return game.GameData{}, game.ErrUnknownMatch
	}
	if err != nil {
		return game.GameData{}, fmt.Errorf("loading match %s: %w", matchID, err)
	}
	return Decode(b)
}

func (s *RedisGameStore) Observe(ctx context.Context, matchID string, onUpdate func(game.GameData)) (game.Subscription, error) {
	pubsub := s.rdb.Subscribe(ctx, updatesChannel(matchID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribing to match %s: %w", matchID, err)
	}

	sub := &redisSubscription{pubsub: pubsub, store: s}
	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	go func() {
		for msg := range pubsub.Channel() {
			s.dispatch(matchID, msg.Payload, onUpdate)
		}
	}()

	return sub, nil
}

// dispatch decodes a published snapshot; undecodable payloads are not updates
func (s *RedisGameStore) dispatch(matchID, payload string, onUpdate func(game.GameData)) {
	data, err := Decode([]byte(payload))
	if err != nil {
		s.log.Warn("skipping snapshot", zap.String("match", matchID), zap.Error(err))
		return
	}
	onUpdate(data)
}

// Close ends every subscription and the client
func (s *RedisGameStore) Close() error {
	s.mu.Lock()
	subs := s.subs
	s.subs = map[*redisSubscription]struct{}{}
	s.mu.Unlock()

	var err error
	for sub := range subs {
		err = multierr.Append(err, sub.Close())
	}
	return multierr.Append(err, s.rdb.Close())
}

type redisSubscription struct {
	pubsub *redis.PubSub
	store  *RedisGameStore

	once sync.Once
	err  error
}

func (sub *redisSubscription) Close() error {
	sub.once.Do(func() {
		sub.store.mu.Lock()
		delete(sub.store.subs, sub)
		sub.store.mu.Unlock()
		sub.err = sub.pubsub.Close()
	})
	return sub.err
}
