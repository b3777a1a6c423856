package store

import (
	"context"
	"errors"
	"sync"

	"github.com/minaorangina/bluff/game"
	"go.uber.org/zap"
)

var (
	ErrUndecodable = errors.New("undecodable game data")
	ErrClosed      = errors.New("subscription closed")
)

// InMemoryGameStore maps match id to the latest encoded snapshot
type InMemoryGameStore struct {
	mu        sync.Mutex
	games     map[string]entry
	observers map[string]map[*subscription]struct{}
	log       *zap.Logger
}

// NewInMemoryGameStore constructs an InMemoryGameStore
func NewInMemoryGameStore(logger *zap.Logger) *InMemoryGameStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryGameStore{
		games:     map[string]entry{},
		observers: map[string]map[*subscription]struct{}{},
		log:       logger,
	}
}

func (s *InMemoryGameStore) Save(ctx context.Context, matchID string, base int64, data game.GameData) error {
	b, err := Encode(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var stored int64
	if existing, ok := s.games[matchID]; ok {
		stored = existing.version
	}
	if stored != base || data.Version <= base {
		return game.ErrStaleWrite
	}
	s.games[matchID] = entry{b: b, version: data.Version}

	for sub := range s.observers[matchID] {
		sub.push(b)
	}
	return nil
}

func (s *InMemoryGameStore) Load(ctx context.Context, matchID string) (game.GameData, error) {
	s.mu.Lock()
	e, ok := s.games[matchID]
	s.mu.Unlock()

	if !ok {
		return game.GameData{}, game.ErrUnknownMatch
	}
	return Decode(e.b)
}

// Observe delivers snapshots saved after the call, in write order. A slow
// observer skips intermediate snapshots but always sees the latest.
func (s *InMemoryGameStore) Observe(ctx context.Context, matchID string, onUpdate func(game.GameData)) (game.Subscription, error) {
	sub := &subscription{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	if s.observers[matchID] == nil {
		s.observers[matchID] = map[*subscription]struct{}{}
	}
	s.observers[matchID][sub] = struct{}{}
	s.mu.Unlock()

	sub.unregister = func() {
		s.mu.Lock()
		delete(s.observers[matchID], sub)
		s.mu.Unlock()
	}

	go sub.deliver(ctx, func(b []byte) {
		data, err := Decode(b)
		if err != nil {
			s.log.Warn("skipping snapshot", zap.String("match", matchID), zap.Error(err))
			return
		}
		onUpdate(data)
	})

	return sub, nil
}

// Matches lists the ids of every stored match
func (s *InMemoryGameStore) Matches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.games))
	for id := range s.games {
		ids = append(ids, id)
	}
	return ids
}

type entry struct {
	b       []byte
	version int64
}

type subscription struct {
	mu         sync.Mutex
	pending    []byte
	signal     chan struct{}
	done       chan struct{}
	once       sync.Once
	unregister func()
}

func (sub *subscription) push(b []byte) {
	sub.mu.Lock()
	sub.pending = b
	sub.mu.Unlock()

	select {
	case sub.signal <- struct{}{}:
	default:
	}
}

func (sub *subscription) deliver(ctx context.Context, fn func([]byte)) {
	for {
		select {
		case <-ctx.Done():
			sub.Close()
			return
		case <-sub.done:
			return
		case <-sub.signal:
			sub.mu.Lock()
			b := sub.pending
			sub.pending = nil
			sub.mu.Unlock()
			if b != nil {
				fn(b)
			}
		}
	}
}

func (sub *subscription) Close() error {
	sub.once.Do(func() {
		close(sub.done)
		sub.unregister()
	})
	return nil
}
