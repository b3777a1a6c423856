package deck

import (
	"errors"
	"fmt"
)

var ErrUnknownRank = errors.New("unknown rank")

// Rank represents a rank in a deck of cards
type Rank int

var rankNames = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "Joker"}

const (
	Ace Rank = iota
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Joker
)

func (r Rank) String() string {
	if r < Ace || r > Joker {
		return fmt.Sprintf("Rank(%d)", int(r))
	}
	return rankNames[r]
}

func (r Rank) MarshalText() ([]byte, error) {
	if r < Ace || r > Joker {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRank, int(r))
	}
	return []byte(rankNames[r]), nil
}

func (r *Rank) UnmarshalText(text []byte) error {
	for i, name := range rankNames {
		if name == string(text) {
			*r = Rank(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownRank, text)
}

// Suit represents a suit in a deck of cards
type Suit int

var ErrUnknownSuit = errors.New("unknown suit")

var suitNames = []string{"Clubs", "Diamonds", "Hearts", "Spades", "Joker"}

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
	// JokerSuit is the suit carried by jokers, which belong to none of the four.
	JokerSuit
)

func (s Suit) String() string {
	if s < Clubs || s > JokerSuit {
		return fmt.Sprintf("Suit(%d)", int(s))
	}
	return suitNames[s]
}

func (s Suit) MarshalText() ([]byte, error) {
	if s < Clubs || s > JokerSuit {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSuit, int(s))
	}
	return []byte(suitNames[s]), nil
}

func (s *Suit) UnmarshalText(text []byte) error {
	for i, name := range suitNames {
		if name == string(text) {
			*s = Suit(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownSuit, text)
}

// Color is the display colour of a card
type Color int

const (
	Black Color = iota
	Red
)

func (c Color) String() string {
	if c == Red {
		return "red"
	}
	return "black"
}

// Color derives the display colour from the suit
func (s Suit) Color() Color {
	if s == Diamonds || s == Hearts {
		return Red
	}
	return Black
}
