package protocol

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/minaorangina/bluff/deck"
	"github.com/minaorangina/bluff/game"
	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoPlayerGame(t *testing.T) game.GameData {
	t.Helper()
	data := game.NewGameData(deck.New(deck.DefaultJokers))
	_, err := data.AddPlayer()
	require.NoError(t, err)
	return data
}

func TestCmd(t *testing.T) {
	for cmd, name := range CmdNames {
		assert.Equal(t, cmd, NameToCmd[name])
		assert.Equal(t, name, cmd.String())
	}
	assert.Len(t, NameToCmd, len(CmdNames))
	assert.Equal(t, "Cmd(99)", Cmd(99).String())

	b, err := json.Marshal(OutboundMessage{Command: CallBluff})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"command":"CallBluff"`)
}

func TestDecodeInbound(t *testing.T) {
	card := uuid.NewV4()

	t.Run("Names and UUID strings", func(t *testing.T) {
		msg, err := DecodeInbound([]byte(`{"playerID":"abc","command":"SelectCard","card":"` + card.String() + `"}`))
		require.NoError(t, err)
		assert.Equal(t, "abc", msg.PlayerID)
		assert.Equal(t, SelectCard, msg.Command)
		assert.True(t, uuid.Equal(card, msg.Card))
		assert.True(t, uuid.Equal(uuid.Nil, msg.BluffCard))
	})

	t.Run("Empty card is absent", func(t *testing.T) {
		msg, err := DecodeInbound([]byte(`{"command":"PlayTurn","bluffCard":""}`))
		require.NoError(t, err)
		assert.Equal(t, PlayTurn, msg.Command)
		assert.Equal(t, uuid.Nil, msg.BluffCard)
	})

	t.Run("Unknown command", func(t *testing.T) {
		_, err := DecodeInbound([]byte(`{"command":"Cheat"}`))
		assert.True(t, errors.Is(err, ErrUnknownCommand))
	})

	t.Run("Bad card id", func(t *testing.T) {
		_, err := DecodeInbound([]byte(`{"command":"SelectCard","card":"not-a-uuid"}`))
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("Not an object", func(t *testing.T) {
		_, err := DecodeInbound([]byte(`[1,2]`))
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

func TestNewView(t *testing.T) {
	t.Run("Only the seat's own cards are known", func(t *testing.T) {
		data := twoPlayerGame(t)
		v := NewView(data, game.Player2)

		assert.Len(t, v.Hand, 27)
		for _, c := range v.Hand {
			assert.True(t, c.Known)
			assert.NotNil(t, c.Rank)
			assert.Equal(t, game.Player2.Status(), c.Status)
		}
		assert.Equal(t, map[game.Player]int{game.Player1: 27, game.Player2: 27}, v.HandSizes)
		assert.Nil(t, v.Stash)
	})

	t.Run("Stash faces are concealed", func(t *testing.T) {
		data := twoPlayerGame(t)
		data.GameStatus = game.Ongoing
		hand := data.Hand(game.Player1)

		data.CurrentStash = &game.Stash{
			RoundCard:     hand[0],
			Contributions: map[game.Player][]uuid.UUID{game.Player1: {hand[0].ID, hand[1].ID}},
			LastPlayer:    game.Player1,
		}
		for _, c := range hand[:2] {
			idx, _ := data.PlayerDeck.Find(c.ID)
			data.PlayerDeck[idx].Status = deck.InStash
		}
		data.CurrentPlayer = game.Player2
		data.UpdateCardDetails()
		require.NoError(t, data.Validate())

		v := NewView(data, game.Player2)
		require.NotNil(t, v.Stash)
		assert.Equal(t, hand[0].Rank, v.Stash.RoundRank)
		assert.Equal(t, 2, v.Stash.Size)
		assert.Equal(t, 2, v.Stash.Contributions[game.Player1])
		require.Len(t, v.Stash.Cards, 2)
		for _, c := range v.Stash.Cards {
			assert.False(t, c.Known)
			assert.Nil(t, c.Rank)
			assert.Nil(t, c.Suit)
		}

		b, err := json.Marshal(v.Stash.Cards[0])
		require.NoError(t, err)
		assert.NotContains(t, string(b), "rank")
	})
}

func TestBuildUpdateMessage(t *testing.T) {
	data := twoPlayerGame(t)

	first := BuildUpdateMessage("p", game.Player1, nil, data)
	assert.Equal(t, Snapshot, first.Command)

	joined := data.Clone()
	_, err := joined.AddPlayer()
	require.NoError(t, err)
	assert.Equal(t, NewJoiner, BuildUpdateMessage("p", game.Player1, &data, joined).Command)

	started := joined.Clone()
	started.GameStatus = game.Ongoing
	assert.Equal(t, HasStarted, BuildUpdateMessage("p", game.Player1, &joined, started).Command)

	over := started.Clone()
	over.GameStatus = game.Completed
	assert.Equal(t, GameOver, BuildUpdateMessage("p", game.Player1, &started, over).Command)

	msg := BuildErrorMessage("p", game.Player2, game.ErrNotYourTurn)
	assert.Equal(t, Error, msg.Command)
	assert.Equal(t, game.ErrNotYourTurn.Error(), msg.Error)
}
