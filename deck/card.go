package deck

import (
	"fmt"

	uuid "github.com/satori/go.uuid"
)

// Card represents a playing card together with its live position in a match.
// IsSelected is transient UI intent; Status is the gameplay truth.
type Card struct {
	ID          uuid.UUID `json:"id"`
	Rank        Rank      `json:"rank"`
	Suit        Suit      `json:"suit"`
	IsSelected  bool      `json:"isSelected"`
	IsRoundCard bool      `json:"isRoundCard"`
	Status      Status    `json:"status"`
}

// NewCard constructs a card that has not been played yet
func NewCard(rank Rank, suit Suit) Card {
	if rank < Ace || rank > Joker || suit < Clubs || suit > JokerSuit {
		panic(fmt.Sprintf("card out of range: rank %d, suit %d", rank, suit))
	}
	return Card{
		ID:     uuid.NewV4(),
		Rank:   rank,
		Suit:   suit,
		Status: NotPlayed,
	}
}

// Color returns the display colour of the card
func (c Card) Color() Color {
	return c.Suit.Color()
}

func (c Card) IsJoker() bool {
	return c.Rank == Joker
}

func (c Card) String() string {
	if c.IsJoker() {
		return "Joker"
	}
	return fmt.Sprintf("%s of %s", c.Rank, c.Suit)
}
