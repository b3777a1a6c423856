package deck

import (
	"encoding/json"
	"testing"

	utils "github.com/minaorangina/bluff/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCard(t *testing.T) {
	cases := []struct {
		name     string
		card     Card
		expected string
	}{
		{"Lowest value card", NewCard(Ace, Clubs), "A of Clubs"},
		{"Specific card", NewCard(Queen, Hearts), "Q of Hearts"},
		{"Highest value card", NewCard(King, Spades), "K of Spades"},
		{"Joker", NewCard(Joker, JokerSuit), "Joker"},
	}

	for _, c := range cases {
		utils.AssertEqual(t, c.card.String(), c.expected)
	}

	t.Run("Out of range (should panic)", func(t *testing.T) {
		assert.Panics(t, func() { NewCard(Rank(14), Clubs) })
		assert.Panics(t, func() { NewCard(Two, Suit(5)) })
	})

	t.Run("colour follows suit", func(t *testing.T) {
		assert.Equal(t, Red, NewCard(Seven, Hearts).Color())
		assert.Equal(t, Red, NewCard(Seven, Diamonds).Color())
		assert.Equal(t, Black, NewCard(Seven, Clubs).Color())
		assert.Equal(t, Black, NewCard(Seven, Spades).Color())
		assert.Equal(t, Black, NewCard(Joker, JokerSuit).Color())
	})

	t.Run("ranks and suits encode by name", func(t *testing.T) {
		c := NewCard(Seven, Diamonds)
		c.Status = PlayerStatus(3)

		b, err := json.Marshal(c)
		require.NoError(t, err)
		assert.Contains(t, string(b), `"rank":"7"`)
		assert.Contains(t, string(b), `"suit":"Diamonds"`)
		assert.Contains(t, string(b), `"status":"player3"`)

		var got Card
		require.NoError(t, json.Unmarshal(b, &got))
		assert.Equal(t, c, got)
	})

	t.Run("unknown rank is rejected", func(t *testing.T) {
		var r Rank
		err := r.UnmarshalText([]byte("11"))
		assert.ErrorIs(t, err, ErrUnknownRank)
	})
}

func TestStatusSeat(t *testing.T) {
	seat, ok := PlayerStatus(4).Seat()
	utils.AssertTrue(t, ok)
	utils.AssertEqual(t, seat, 4)

	for _, s := range []Status{NotPlayed, InStash, Flushed, "player", "playerX", "player0"} {
		_, ok := s.Seat()
		assert.False(t, ok, s.String())
	}
}
