package game

import (
	"fmt"

	"github.com/minaorangina/bluff/deck"
)

// Player is one of the six fixed seats at the table
type Player int

const (
	NoPlayer Player = iota
	Player1
	Player2
	Player3
	Player4
	Player5
	Player6
)

const (
	MinPlayers = 2
	MaxPlayers = 6
)

// Seats lists every seat in turn order
var Seats = []Player{Player1, Player2, Player3, Player4, Player5, Player6}

// Host is the seat of the player who creates a match
const Host = Player1

func (p Player) Valid() bool {
	return p >= Player1 && p <= Player6
}

func (p Player) String() string {
	if !p.Valid() {
		return "none"
	}
	return fmt.Sprintf("player%d", int(p))
}

// Status is the card status for cards held by this seat
func (p Player) Status() deck.Status {
	return deck.PlayerStatus(int(p))
}

func (p Player) MarshalText() ([]byte, error) {
	if p == NoPlayer {
		return []byte(""), nil
	}
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPlayer, int(p))
	}
	return []byte(p.String()), nil
}

func (p *Player) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*p = NoPlayer
		return nil
	}
	seat, ok := deck.Status(text).Seat()
	if !ok || !Player(seat).Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPlayer, text)
	}
	*p = Player(seat)
	return nil
}

// PlayerFromStatus returns the seat holding a card with the given status
func PlayerFromStatus(s deck.Status) (Player, bool) {
	seat, ok := s.Seat()
	if !ok || !Player(seat).Valid() {
		return NoPlayer, false
	}
	return Player(seat), true
}

func containsPlayer(ps []Player, p Player) bool {
	for _, x := range ps {
		if x == p {
			return true
		}
	}
	return false
}
