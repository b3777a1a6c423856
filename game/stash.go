package game

import (
	"github.com/minaorangina/bluff/deck"
	uuid "github.com/satori/go.uuid"
)

// Stash is the face-down pile of one bluff round. A nil *Stash is an empty
// stash; a non-nil one always has a round card, a last player and at least
// one contribution.
type Stash struct {
	RoundCard     deck.Card              `json:"roundCard"`
	Contributions map[Player][]uuid.UUID `json:"contributions"`
	LastPlayer    Player                 `json:"lastPlayer"`
	// Passes counts consecutive passes since the last play
	Passes int `json:"passes"`
}

func openStash(roundCard deck.Card, p Player, cards []uuid.UUID) *Stash {
	s := &Stash{
		RoundCard:     roundCard,
		Contributions: map[Player][]uuid.UUID{},
	}
	s.add(p, cards)
	return s
}

func (s *Stash) add(p Player, cards []uuid.UUID) {
	s.Contributions[p] = append(s.Contributions[p], cards...)
	s.LastPlayer = p
	s.Passes = 0
}

// PlayedBy returns the cards the player contributed this round
func (s *Stash) PlayedBy(p Player) []uuid.UUID {
	if s == nil {
		return nil
	}
	return s.Contributions[p]
}

// AllCards flattens every contribution of the round, in seat order
func (s *Stash) AllCards() []uuid.UUID {
	if s == nil {
		return nil
	}
	all := []uuid.UUID{}
	for _, p := range Seats {
		all = append(all, s.Contributions[p]...)
	}
	return all
}

// Size is the number of cards in the stash
func (s *Stash) Size() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, cards := range s.Contributions {
		n += len(cards)
	}
	return n
}

func (s *Stash) clone() *Stash {
	if s == nil {
		return nil
	}
	c := &Stash{
		RoundCard:     s.RoundCard,
		Contributions: make(map[Player][]uuid.UUID, len(s.Contributions)),
		LastPlayer:    s.LastPlayer,
		Passes:        s.Passes,
	}
	for p, cards := range s.Contributions {
		c.Contributions[p] = append([]uuid.UUID(nil), cards...)
	}
	return c
}

func (s *Stash) valid() bool {
	if s == nil {
		return true
	}
	if !s.LastPlayer.Valid() || s.RoundCard.ID == uuid.Nil {
		return false
	}
	return len(s.Contributions[s.LastPlayer]) > 0
}
