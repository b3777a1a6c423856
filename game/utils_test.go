package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/minaorangina/bluff/deck"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store unavailable")

type spyStore struct {
	mu       sync.Mutex
	saved    []GameData
	bases    []int64
	calls    int
	gate     chan struct{}
	failures int
	err      error
	onUpdate func(GameData)
	closed   bool
}

func (s *spyStore) Save(ctx context.Context, matchID string, base int64, data GameData) error {
	s.mu.Lock()
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	if s.failures > 0 {
		s.failures--
		return errStoreDown
	}
	s.saved = append(s.saved, data.Clone())
	s.bases = append(s.bases, base)
	return nil
}

func (s *spyStore) Load(ctx context.Context, matchID string) (GameData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.saved) == 0 {
		return GameData{}, ErrUnknownMatch
	}
	return s.saved[len(s.saved)-1].Clone(), nil
}

func (s *spyStore) Observe(ctx context.Context, matchID string, onUpdate func(GameData)) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = onUpdate
	return s, nil
}

func (s *spyStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *spyStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *spyStore) saves() []GameData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]GameData(nil), s.saved...)
}

func testOptions() Options {
	return Options{SaveRetries: 2, SaveBackoff: time.Millisecond}
}

// newStartedGame seats n players on a 54 card deck dealt round-robin, ongoing, player1 to act
func newStartedGame(t *testing.T, n int) GameData {
	t.Helper()

	data := NewGameData(deck.New(deck.DefaultJokers))
	for i := 1; i < n; i++ {
		_, err := data.AddPlayer()
		require.NoError(t, err)
	}
	require.NoError(t, start(&data, Host))
	require.NoError(t, data.Validate())
	return data
}

// give moves the card with the given face to p's hand and returns it
func give(t *testing.T, d *GameData, p Player, rank deck.Rank, suit deck.Suit) deck.Card {
	t.Helper()

	for i, c := range d.PlayerDeck {
		if c.Rank == rank && c.Suit == suit {
			d.PlayerDeck[i].Status = p.Status()
			d.UpdateCardDetails()
			return d.PlayerDeck[i]
		}
	}
	t.Fatalf("no %s of %s in deck", rank, suit)
	return deck.Card{}
}

func newTestEngine(t *testing.T, data GameData) (*Engine, *spyStore) {
	t.Helper()
	store := &spyStore{}
	return NewEngine("ROOM1", data, store, nil, testOptions()), store
}

// mustSave is used as mustSave(t)(e.Pass(ctx, p))
func mustSave(t *testing.T) func(SaveResult, error) {
	return func(res SaveResult, err error) {
		t.Helper()
		require.NoError(t, err)
		require.NotNil(t, res)
		require.NoError(t, <-res)
	}
}

func assertStatus(t *testing.T, e *Engine, ids []deck.Card, want deck.Status) {
	t.Helper()
	snap := e.Snapshot()
	for _, c := range ids {
		got, ok := snap.Card(c.ID)
		require.True(t, ok)
		require.Equal(t, want, got.Status, c.String())
	}
}
