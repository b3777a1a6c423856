package protocol

import (
	"github.com/minaorangina/bluff/deck"
	"github.com/minaorangina/bluff/game"
	uuid "github.com/satori/go.uuid"
)

// View is what one seat is allowed to see of a match
type View struct {
	Seat          game.Player         `json:"seat"`
	Players       []game.Player       `json:"players"`
	CurrentPlayer game.Player         `json:"currentPlayer"`
	Status        game.GameStatus     `json:"status"`
	Winner        game.Player         `json:"winner,omitempty"`
	Version       int64               `json:"version"`
	Hand          []CardView          `json:"hand"`
	HandSizes     map[game.Player]int `json:"handSizes"`
	Stash         *StashView          `json:"stash,omitempty"`
	FlushedCount  int                 `json:"flushedCount"`
}

// CardView is a card as seen by a seat. Rank and suit are only present when Known.
type CardView struct {
	ID          uuid.UUID   `json:"id"`
	Known       bool        `json:"known"`
	Rank        *deck.Rank  `json:"rank,omitempty"`
	Suit        *deck.Suit  `json:"suit,omitempty"`
	IsSelected  bool        `json:"isSelected"`
	IsRoundCard bool        `json:"isRoundCard"`
	Status      deck.Status `json:"status"`
}

// StashView exposes the claim and who contributed, never the stashed faces
type StashView struct {
	RoundRank     deck.Rank           `json:"roundRank"`
	LastPlayer    game.Player         `json:"lastPlayer"`
	Passes        int                 `json:"passes"`
	Size          int                 `json:"size"`
	Contributions map[game.Player]int `json:"contributions"`
	Cards         []CardView          `json:"cards"`
}

// NewView builds the view of data for seat
func NewView(data game.GameData, seat game.Player) *View {
	v := &View{
		Seat:          seat,
		Players:       append([]game.Player(nil), data.AllPlayers...),
		CurrentPlayer: data.CurrentPlayer,
		Status:        data.GameStatus,
		Winner:        data.Winner,
		Version:       data.Version,
		Hand:          []CardView{},
		HandSizes:     map[game.Player]int{},
	}

	for _, p := range data.AllPlayers {
		v.HandSizes[p] = 0
	}

	for _, c := range data.PlayerDeck {
		switch c.Status {
		case deck.Flushed:
			v.FlushedCount++
			continue
		case deck.InStash, deck.NotPlayed:
			continue
		}
		p, ok := game.PlayerFromStatus(c.Status)
		if !ok {
			continue
		}
		v.HandSizes[p]++
		if p == seat {
			v.Hand = append(v.Hand, knownCard(c))
		}
	}

	if s := data.CurrentStash; s != nil {
		sv := &StashView{
			RoundRank:     s.RoundCard.Rank,
			LastPlayer:    s.LastPlayer,
			Passes:        s.Passes,
			Size:          s.Size(),
			Contributions: map[game.Player]int{},
		}
		for p, ids := range s.Contributions {
			sv.Contributions[p] = len(ids)
		}
		for _, id := range s.AllCards() {
			if c, ok := data.Card(id); ok {
				sv.Cards = append(sv.Cards, conceal(c))
			}
		}
		v.Stash = sv
	}

	return v
}

func conceal(c deck.Card) CardView {
	return CardView{ID: c.ID, Status: c.Status}
}

func knownCard(c deck.Card) CardView {
	rank, suit := c.Rank, c.Suit
	return CardView{
		ID:          c.ID,
		Known:       true,
		Rank:        &rank,
		Suit:        &suit,
		IsSelected:  c.IsSelected,
		IsRoundCard: c.IsRoundCard,
		Status:      c.Status,
	}
}

// Card looks up a card in the view's hand
func (v *View) Card(id uuid.UUID) (CardView, bool) {
	for _, c := range v.Hand {
		if uuid.Equal(c.ID, id) {
			return c, true
		}
	}
	return CardView{}, false
}
