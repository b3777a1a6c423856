package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	uuid "github.com/satori/go.uuid"
	"go.uber.org/zap"
)

var (
	ErrNotYourTurn        = errors.New("not your turn")
	ErrNoCardsSelected    = errors.New("no cards selected")
	ErrBluffCardRequired  = errors.New("a bluff card is required to open a round")
	ErrCardNotInHand      = errors.New("card is not in the player's hand")
	ErrRoundCardDeclared  = errors.New("round card already declared")
	ErrRoundOpen          = errors.New("a round is already open")
	ErrEmptyStash         = errors.New("stash is empty")
	ErrSelfChallenge      = errors.New("cannot call bluff on your own play")
	ErrGameNotStarted     = errors.New("game has not started")
	ErrGameAlreadyStarted = errors.New("game has already started")
	ErrGameOver           = errors.New("game is already over")
	ErrNotHost            = errors.New("only the host can start the game")
	ErrTooFewPlayers      = fmt.Errorf("minimum of %d players required", MinPlayers)
	ErrRoomFull           = fmt.Errorf("maximum of %d players allowed", MaxPlayers)
	ErrInvalidGameState   = errors.New("invalid game state")
	ErrUnknownPlayer      = errors.New("unknown player")
	ErrStaleSnapshot      = errors.New("snapshot is older than the local state")
	ErrStaleWrite         = errors.New("stored snapshot is newer than the write")
	ErrUnknownMatch       = errors.New("unknown match")
)

// Options are the house rules and persistence policy of an engine
type Options struct {
	// JokersWild lets a joker pass for any declared rank when a bluff is called
	JokersWild bool
	// FlushOnFullPass discards the stash when everyone else passes on the last play
	FlushOnFullPass bool
	SaveRetries     int
	SaveBackoff     time.Duration
}

func DefaultOptions() Options {
	return Options{
		SaveRetries: 3,
		SaveBackoff: 100 * time.Millisecond,
	}
}

// Engine validates player actions against its local mirror of a match,
// applies them, and pushes every new snapshot to the Store.
type Engine struct {
	matchID string
	store   Store
	log     *zap.Logger
	opts    Options

	mu   sync.Mutex
	data GameData
	sub  Subscription

	// confirmed is the last version known to be stored on this engine's
	// write chain. epoch changes whenever the chain is broken by a remote
	// write; saves queued under an older epoch are dropped.
	confirmed int64
	epoch     int
	lastSave  chan struct{}
}

// NewEngine constructs an Engine mirroring data for the given match
func NewEngine(matchID string, data GameData, store Store, logger *zap.Logger, opts Options) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	data = data.Clone()
	return &Engine{
		matchID:   matchID,
		store:     store,
		log:       logger.With(zap.String("match", matchID)),
		opts:      opts,
		data:      data,
		confirmed: data.Version,
	}
}

func (e *Engine) MatchID() string {
	return e.matchID
}

// Snapshot returns a copy of the local mirror
func (e *Engine) Snapshot() GameData {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data.Clone()
}

// ApplySnapshot replaces the local mirror with a remote snapshot. Invalid or
// outdated snapshots are dropped and the mirror is left untouched.
func (e *Engine) ApplySnapshot(data GameData) error {
	if err := data.Validate(); err != nil {
		e.log.Warn("dropping invalid snapshot", zap.Error(err))
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if data.Version < e.data.Version {
		e.log.Debug("dropping stale snapshot",
			zap.Int64("remote", data.Version), zap.Int64("local", e.data.Version))
		return ErrStaleSnapshot
	}
	if data.Version > e.data.Version {
		e.epoch++
	}
	e.data = data.Clone()
	if data.Version > e.confirmed {
		e.confirmed = data.Version
	}
	return nil
}

// resync replaces the mirror with the stored snapshot after a rejected write
func (e *Engine) resync(ctx context.Context) {
	latest, err := e.store.Load(ctx, e.matchID)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.epoch++
	if err != nil {
		e.log.Error("could not reload after stale write", zap.Error(err))
		return
	}
	e.data = latest.Clone()
	e.confirmed = latest.Version
	e.log.Info("reloaded after stale write", zap.Int64("version", latest.Version))
}

// Follow subscribes the engine to remote updates of its match
func (e *Engine) Follow(ctx context.Context) error {
	sub, err := e.store.Observe(ctx, e.matchID, func(data GameData) {
		e.ApplySnapshot(data)
	})
	if err != nil {
		return fmt.Errorf("observing match %s: %w", e.matchID, err)
	}

	e.mu.Lock()
	old := e.sub
	e.sub = sub
	e.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return nil
}

// Close stops following remote updates
func (e *Engine) Close() error {
	e.mu.Lock()
	sub := e.sub
	e.sub = nil
	e.mu.Unlock()

	if sub == nil {
		return nil
	}
	return sub.Close()
}

// Start moves the match from notStarted to ongoing. Host only.
func (e *Engine) Start(ctx context.Context, actor Player) (SaveResult, error) {
	return e.mutate(ctx, "start", actor, func(d *GameData) error {
		return start(d, actor)
	})
}

// SelectCard toggles the selection of a card in the actor's hand
func (e *Engine) SelectCard(ctx context.Context, actor Player, card uuid.UUID) (SaveResult, error) {
	return e.mutate(ctx, "selectCard", actor, func(d *GameData) error {
		return selectCard(d, actor, card)
	})
}

// DeclareRoundCard marks the card whose rank the actor will claim
func (e *Engine) DeclareRoundCard(ctx context.Context, actor Player, card uuid.UUID) (SaveResult, error) {
	return e.mutate(ctx, "declareRoundCard", actor, func(d *GameData) error {
		return declareRoundCard(d, actor, card)
	})
}

// PlayTurn moves the actor's selected cards into the stash. bluffCard opens
// a new round and is required when the stash is empty; pass uuid.Nil otherwise.
func (e *Engine) PlayTurn(ctx context.Context, actor Player, bluffCard uuid.UUID) (SaveResult, error) {
	return e.mutate(ctx, "playTurn", actor, func(d *GameData) error {
		return playTurn(d, actor, bluffCard)
	})
}

// Pass hands the turn to the next seat
func (e *Engine) Pass(ctx context.Context, actor Player) (SaveResult, error) {
	return e.mutate(ctx, "pass", actor, func(d *GameData) error {
		return pass(d, actor, e.opts)
	})
}

// CallBluff challenges the last play of the round
func (e *Engine) CallBluff(ctx context.Context, actor Player) (SaveResult, error) {
	return e.mutate(ctx, "callBluff", actor, func(d *GameData) error {
		outcome, err := callBluff(d, actor, e.opts)
		if err != nil {
			return err
		}
		e.log.Info("bluff called",
			zap.Stringer("accuser", outcome.Accuser),
			zap.Stringer("accused", outcome.Accused),
			zap.Bool("honest", outcome.Honest),
			zap.Int("cards", len(outcome.Cards)),
		)
		return nil
	})
}

// mutate applies fn to a copy of the mirror. On error nothing changes; on
// success the copy becomes the mirror and is saved in the background.
func (e *Engine) mutate(ctx context.Context, action string, actor Player, fn func(*GameData) error) (SaveResult, error) {
	e.mu.Lock()

	next := e.data.Clone()
	if err := fn(&next); err != nil {
		e.mu.Unlock()
		e.log.Warn("rejected action",
			zap.String("action", action),
			zap.Stringer("player", actor),
			zap.Error(err),
		)
		return nil, err
	}

	next.Version = e.data.Version + 1
	next.UpdateCardDetails()
	e.data = next
	snapshot := next.Clone()

	epoch := e.epoch
	prev := e.lastSave
	done := make(chan struct{})
	e.lastSave = done
	e.mu.Unlock()

	if snapshot.GameStatus == Completed && snapshot.Winner.Valid() {
		e.log.Info("game over", zap.Stringer("winner", snapshot.Winner))
	}

	return e.persist(ctx, snapshot, epoch, prev, done), nil
}

// persist saves snapshots one at a time in the order they were made
func (e *Engine) persist(ctx context.Context, snapshot GameData, epoch int, prev, done chan struct{}) SaveResult {
	res := make(chan error, 1)
	go func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		res <- e.save(ctx, snapshot, epoch)
		close(res)
	}()
	return res
}

// save retries with exponential backoff. Each write is based on the last
// version this engine saw stored, so a write after a failed one still
// carries the failed change. A stale write is final: the mirror is
// reloaded from the store and saves queued behind it are dropped.
func (e *Engine) save(ctx context.Context, snapshot GameData, epoch int) error {
	e.mu.Lock()
	if epoch != e.epoch {
		e.mu.Unlock()
		return ErrStaleWrite
	}
	base := e.confirmed
	e.mu.Unlock()

	backoff := e.opts.SaveBackoff
	var err error

	for attempt := 0; attempt <= e.opts.SaveRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		err = e.store.Save(ctx, e.matchID, base, snapshot)
		if err == nil {
			e.mu.Lock()
			if epoch == e.epoch && snapshot.Version > e.confirmed {
				e.confirmed = snapshot.Version
			}
			e.mu.Unlock()
			return nil
		}
		if errors.Is(err, ErrStaleWrite) {
			e.log.Warn("write rejected as stale", zap.Int64("base", base), zap.Int64("version", snapshot.Version))
			e.resync(ctx)
			return err
		}
		if ctx.Err() != nil {
			break
		}
		e.log.Warn("save failed, retrying", zap.Int("attempt", attempt+1), zap.Error(err))
	}

	e.log.Error("could not save snapshot", zap.Int64("version", snapshot.Version), zap.Error(err))
	return err
}
