package deck

import (
	"math/rand"
	"time"

	uuid "github.com/satori/go.uuid"
)

// DefaultJokers is the number of jokers in a standard bluff deck
const DefaultJokers = 2

const (
	numSuits     = 4
	ranksPerSuit = 13
)

// Deck represents a deck of cards
type Deck []Card

// New creates a deck of 52 ranked cards followed by the given number of jokers
func New(jokers int) Deck {
	if jokers < 0 {
		jokers = 0
	}

	cards := make(Deck, 0, numSuits*ranksPerSuit+jokers)
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Ace; rank <= King; rank++ {
			cards = append(cards, NewCard(rank, suit))
		}
	}
	for i := 0; i < jokers; i++ {
		cards = append(cards, NewCard(Joker, JokerSuit))
	}
	return cards
}

// Shuffle shuffles the deck of cards
func (d Deck) Shuffle() {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := len(d) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		d[i], d[j] = d[j], d[i]
	}
}

// Find returns the index of the card with the given ID
func (d Deck) Find(id uuid.UUID) (int, bool) {
	for i, c := range d {
		if uuid.Equal(c.ID, id) {
			return i, true
		}
	}
	return -1, false
}

// Count returns the number of cards with the given status
func (d Deck) Count(status Status) int {
	n := 0
	for _, c := range d {
		if c.Status == status {
			n++
		}
	}
	return n
}
