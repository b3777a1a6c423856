package bot

import (
	"context"
	"errors"
	"sync"

	"github.com/minaorangina/bluff/deck"
	"github.com/minaorangina/bluff/game"
	"github.com/minaorangina/bluff/protocol"
	uuid "github.com/satori/go.uuid"
	"golang.org/x/exp/rand"
)

var ErrNotMyTurn = errors.New("bot asked to play out of turn")

const (
	DefaultBluffProbability = 0.3
	maxCardsPerTurn         = 3
)

// Action is a complete turn: the cards to select and the command that ends the turn
type Action struct {
	Command protocol.Cmd
	Cards   []uuid.UUID
	// BluffCard is set when the action opens a round
	BluffCard uuid.UUID
}

// Random plays legal but aimless turns
type Random struct {
	BluffProbability float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandom(seed uint64, bluffProbability float64) *Random {
	return &Random{
		BluffProbability: bluffProbability,
		rng:              rand.New(rand.NewSource(seed)),
	}
}

// Decide picks the action for seat given the current snapshot
func (r *Random) Decide(data game.GameData, seat game.Player) (Action, error) {
	if data.GameStatus != game.Ongoing || !data.IsPlayerTurn(seat) {
		return Action{}, ErrNotMyTurn
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	hand := data.Hand(seat)
	stash := data.CurrentStash

	if stash == nil {
		if len(hand) == 0 {
			return Action{Command: protocol.Pass}, nil
		}
		claim := hand[r.rng.Intn(len(hand))]
		cards := r.pick(hand, claim.Rank)
		return Action{Command: protocol.PlayTurn, Cards: cards, BluffCard: claim.ID}, nil
	}

	if stash.LastPlayer != seat && r.rng.Float64() < r.BluffProbability {
		return Action{Command: protocol.CallBluff}, nil
	}
	if len(hand) == 0 {
		if stash.LastPlayer != seat {
			return Action{Command: protocol.CallBluff}, nil
		}
		return Action{Command: protocol.Pass}, nil
	}
	if r.rng.Float64() < r.BluffProbability/2 {
		return Action{Command: protocol.Pass}, nil
	}
	return Action{Command: protocol.PlayTurn, Cards: r.pick(hand, stash.RoundCard.Rank)}, nil
}

// pick chooses 1 to 3 cards, preferring those of the given rank
func (r *Random) pick(hand []deck.Card, rank deck.Rank) []uuid.UUID {
	n := 1 + r.rng.Intn(maxCardsPerTurn)

	var matching, others []deck.Card
	for _, c := range hand {
		if c.Rank == rank {
			matching = append(matching, c)
		} else {
			others = append(others, c)
		}
	}
	r.rng.Shuffle(len(matching), func(i, j int) { matching[i], matching[j] = matching[j], matching[i] })
	r.rng.Shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })

	var picked []uuid.UUID
	for _, c := range append(matching, others...) {
		if len(picked) == n {
			break
		}
		picked = append(picked, c.ID)
	}
	return picked
}

// Play decides and applies a turn for seat. The returned SaveResult belongs
// to the action that ended the turn.
func (r *Random) Play(ctx context.Context, engine *game.Engine, seat game.Player) (game.SaveResult, error) {
	data := engine.Snapshot()
	action, err := r.Decide(data, seat)
	if err != nil {
		return nil, err
	}

	switch action.Command {
	case protocol.Pass:
		return engine.Pass(ctx, seat)
	case protocol.CallBluff:
		return engine.CallBluff(ctx, seat)
	}

	// drop any selection left over from an earlier attempt
	for _, c := range data.Selected(seat) {
		if _, err := engine.SelectCard(ctx, seat, c.ID); err != nil {
			return nil, err
		}
	}
	for _, id := range action.Cards {
		if _, err := engine.SelectCard(ctx, seat, id); err != nil {
			return nil, err
		}
	}
	return engine.PlayTurn(ctx, seat, action.BluffCard)
}
