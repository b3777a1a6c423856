package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/minaorangina/bluff/deck"
	"github.com/minaorangina/bluff/game"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	maxJoinAttempts = 3
	maxCodeAttempts = 10
)

var ErrNoFreeRoomCode = errors.New("could not find a free room code")

// Session is one seat at one match, as seen from this client
type Session struct {
	RoomID string
	Seat   game.Player
	Engine *game.Engine
}

type ManagerOpts struct {
	Store   game.Store
	Logger  *zap.Logger
	Options game.Options
	// Jokers added to the 52 card deck; negative means deck.DefaultJokers
	Jokers         int
	RoomCodeLength int
}

// Manager creates and joins matches on behalf of a single client. It holds
// at most one session per room.
type Manager struct {
	store      game.Store
	log        *zap.Logger
	opts       game.Options
	jokers     int
	codeLength int

	// engines follow the store until the manager is closed
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(opts ManagerOpts) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	jokers := opts.Jokers
	if jokers < 0 {
		jokers = deck.DefaultJokers
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		store:      opts.Store,
		log:        logger,
		opts:       opts.Options,
		jokers:     jokers,
		codeLength: opts.RoomCodeLength,
		ctx:        ctx,
		cancel:     cancel,
		sessions:   map[string]*Session{},
	}
}

// InitialiseGame creates a match under a fresh room code with this client as host
func (m *Manager) InitialiseGame(ctx context.Context) (*Session, error) {
	d := deck.New(m.jokers)
	d.Shuffle()
	data := game.NewGameData(d)

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		roomID := GenerateRoomCode(m.codeLength)

		_, err := m.store.Load(ctx, roomID)
		if err == nil {
			continue
		}
		if !errors.Is(err, game.ErrUnknownMatch) {
			return nil, fmt.Errorf("checking room %s: %w", roomID, err)
		}

		err = m.store.Save(ctx, roomID, 0, data)
		if errors.Is(err, game.ErrStaleWrite) {
			// someone claimed the code between Load and Save
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("creating room %s: %w", roomID, err)
		}

		m.log.Info("created room", zap.String("room", roomID), zap.Int("cards", len(d)))
		return m.track(roomID, game.Host, data)
	}

	return nil, ErrNoFreeRoomCode
}

// JoinGame takes the lowest free seat in roomID. Joining a room this manager
// already sits in refreshes and returns the existing session.
func (m *Manager) JoinGame(ctx context.Context, roomID string) (*Session, error) {
	var err error
	for attempt := 0; attempt < maxJoinAttempts; attempt++ {
		var data game.GameData
		data, err = m.store.Load(ctx, roomID)
		if err != nil {
			return nil, err
		}

		if s, ok := m.Session(roomID); ok {
			s.Engine.ApplySnapshot(data)
			return s, nil
		}

		var seat game.Player
		seat, err = data.AddPlayer()
		if err != nil {
			return nil, err
		}
		base := data.Version
		data.Version++

		err = m.store.Save(ctx, roomID, base, data)
		if errors.Is(err, game.ErrStaleWrite) {
			m.log.Debug("lost join race, retrying", zap.String("room", roomID), zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("joining room %s: %w", roomID, err)
		}

		m.log.Info("joined room", zap.String("room", roomID), zap.Stringer("seat", seat))
		return m.track(roomID, seat, data)
	}
	return nil, fmt.Errorf("joining room %s: %w", roomID, err)
}

// Session returns this manager's session in roomID
func (m *Manager) Session(roomID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[roomID]
	return s, ok
}

// Close stops every engine following its match
func (m *Manager) Close() error {
	m.cancel()

	m.mu.Lock()
	sessions := m.sessions
	m.sessions = map[string]*Session{}
	m.mu.Unlock()

	var err error
	for _, s := range sessions {
		err = multierr.Append(err, s.Engine.Close())
	}
	return err
}

func (m *Manager) track(roomID string, seat game.Player, data game.GameData) (*Session, error) {
	engine := game.NewEngine(roomID, data, m.store, m.log, m.opts)
	if err := engine.Follow(m.ctx); err != nil {
		return nil, err
	}
	// catch writes that landed before the subscription was in place
	if latest, err := m.store.Load(m.ctx, roomID); err == nil {
		engine.ApplySnapshot(latest)
	}

	s := &Session{RoomID: roomID, Seat: seat, Engine: engine}
	m.mu.Lock()
	m.sessions[roomID] = s
	m.mu.Unlock()
	return s, nil
}
