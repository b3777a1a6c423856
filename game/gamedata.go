package game

import (
	"fmt"

	"github.com/minaorangina/bluff/deck"
	uuid "github.com/satori/go.uuid"
)

// GameData is the authoritative snapshot of a match
type GameData struct {
	PlayerDeck    deck.Deck  `json:"playerDeck"`
	AllPlayers    []Player   `json:"allPlayers"`
	CurrentPlayer Player     `json:"currentPlayer"`
	CurrentStash  *Stash     `json:"currentStash,omitempty"`
	GameStatus    GameStatus `json:"gameStatus"`
	Winner        Player     `json:"winner,omitempty"`
	// Version increases with every write and lets the store refuse stale writes
	Version int64 `json:"version"`

	cardDetails map[deck.Status][]deck.Card
}

// NewGameData builds the host's opening snapshot: one seated player who
// holds the whole (already shuffled) deck.
func NewGameData(d deck.Deck) GameData {
	data := GameData{
		PlayerDeck:    d,
		AllPlayers:    []Player{Host},
		CurrentPlayer: Host,
		GameStatus:    NotStarted,
		Version:       1,
	}
	for i := range data.PlayerDeck {
		data.PlayerDeck[i].Status = Host.Status()
	}
	data.UpdateCardDetails()
	return data
}

// DeriveCardDetails groups cards by status, keeping deck order within a group
func DeriveCardDetails(playerDeck deck.Deck) map[deck.Status][]deck.Card {
	details := map[deck.Status][]deck.Card{}
	for _, c := range playerDeck {
		details[c.Status] = append(details[c.Status], c)
	}
	return details
}

// UpdateCardDetails recomputes the status grouping from PlayerDeck
func (d *GameData) UpdateCardDetails() {
	d.cardDetails = DeriveCardDetails(d.PlayerDeck)
}

// CardDetails returns the grouping computed by the last UpdateCardDetails
func (d GameData) CardDetails() map[deck.Status][]deck.Card {
	return d.cardDetails
}

// Hand returns the cards held by a seat
func (d GameData) Hand(p Player) []deck.Card {
	return d.cardDetails[p.Status()]
}

// Selected returns the cards a seat has selected, in deck order
func (d GameData) Selected(p Player) []deck.Card {
	selected := []deck.Card{}
	for _, c := range d.Hand(p) {
		if c.IsSelected {
			selected = append(selected, c)
		}
	}
	return selected
}

// Card looks a card up by ID
func (d GameData) Card(id uuid.UUID) (deck.Card, bool) {
	idx, ok := d.PlayerDeck.Find(id)
	if !ok {
		return deck.Card{}, false
	}
	return d.PlayerDeck[idx], true
}

// IsPlayerTurn reports whether the seat may act now
func (d GameData) IsPlayerTurn(p Player) bool {
	return p.Valid() && p == d.CurrentPlayer && containsPlayer(d.AllPlayers, p)
}

// NextPlayer returns the seat after p in AllPlayers, wrapping around
func (d GameData) NextPlayer(p Player) Player {
	if len(d.AllPlayers) == 0 {
		return NoPlayer
	}
	for i, x := range d.AllPlayers {
		if x == p {
			return d.AllPlayers[(i+1)%len(d.AllPlayers)]
		}
	}
	return d.AllPlayers[0]
}

// Clone returns a deep copy
func (d GameData) Clone() GameData {
	c := d
	c.PlayerDeck = append(deck.Deck(nil), d.PlayerDeck...)
	c.AllPlayers = append([]Player(nil), d.AllPlayers...)
	c.CurrentStash = d.CurrentStash.clone()
	c.UpdateCardDetails()
	return c
}

// Validate checks the status partition: every card has one valid owner, the
// cards marked inStash are exactly the stash contents, and the stash and turn
// refer to seated players.
func (d GameData) Validate() error {
	if d.GameStatus < NotStarted || d.GameStatus > Completed {
		return fmt.Errorf("%w: status %d", ErrInvalidGameState, d.GameStatus)
	}
	if len(d.AllPlayers) > MaxPlayers {
		return fmt.Errorf("%w: %d players", ErrInvalidGameState, len(d.AllPlayers))
	}

	seated := map[Player]bool{}
	for _, p := range d.AllPlayers {
		if !p.Valid() || seated[p] {
			return fmt.Errorf("%w: bad seat %d", ErrInvalidGameState, p)
		}
		seated[p] = true
	}
	if len(d.AllPlayers) > 0 && !seated[d.CurrentPlayer] {
		return fmt.Errorf("%w: current player %s not seated", ErrInvalidGameState, d.CurrentPlayer)
	}

	ids := map[uuid.UUID]deck.Status{}
	for _, c := range d.PlayerDeck {
		if _, dup := ids[c.ID]; dup {
			return fmt.Errorf("%w: duplicate card %s", ErrInvalidGameState, c.ID)
		}
		ids[c.ID] = c.Status

		switch c.Status {
		case deck.NotPlayed, deck.InStash, deck.Flushed:
		default:
			p, ok := PlayerFromStatus(c.Status)
			if !ok || !seated[p] {
				return fmt.Errorf("%w: card %s has status %q", ErrInvalidGameState, c.ID, c.Status)
			}
		}
	}

	s := d.CurrentStash
	if !s.valid() {
		return fmt.Errorf("%w: malformed stash", ErrInvalidGameState)
	}
	inStash := 0
	for _, id := range s.AllCards() {
		if ids[id] != deck.InStash {
			return fmt.Errorf("%w: stash card %s has status %q", ErrInvalidGameState, id, ids[id])
		}
		inStash++
	}
	if s != nil {
		for p := range s.Contributions {
			if !seated[p] {
				return fmt.Errorf("%w: stash contributor %s not seated", ErrInvalidGameState, p)
			}
		}
	}
	if n := d.PlayerDeck.Count(deck.InStash); n != inStash {
		return fmt.Errorf("%w: %d cards in stash, %d marked inStash", ErrInvalidGameState, inStash, n)
	}

	return nil
}
