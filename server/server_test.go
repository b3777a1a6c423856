package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/minaorangina/bluff/game"
	utils "github.com/minaorangina/bluff/internal"
	"github.com/minaorangina/bluff/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerPOSTNewGame(t *testing.T) {
	t.Run("succeeds and returns expected data", func(t *testing.T) {
		server := newTestGameServer(t)
		got := mustCreateGame(t, server)

		assert.NotEmpty(t, got.GameID)
		assert.NotEmpty(t, got.PlayerID)
		assert.Equal(t, game.Player1, got.Seat)
	})

	t.Run("Does not match on GET /new", func(t *testing.T) {
		response := httptest.NewRecorder()
		request, _ := http.NewRequest(http.MethodGet, "/new", nil)

		newTestGameServer(t).ServeHTTP(response, request)

		assertStatus(t, response.Code, http.StatusNotFound)
	})

	t.Run("Allows cross origin requests", func(t *testing.T) {
		response := httptest.NewRecorder()
		request := newCreateGameRequest()
		request.Header.Set("Origin", "http://example.com")

		newTestGameServer(t).ServeHTTP(response, request)

		assertStatus(t, response.Code, http.StatusCreated)
		assert.Equal(t, "*", response.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestServerGETGame(t *testing.T) {
	t.Run("returns the game's status", func(t *testing.T) {
		server := newTestGameServer(t)
		created := mustCreateGame(t, server)

		response := httptest.NewRecorder()
		server.ServeHTTP(response, newGetGameRequest(created.GameID))
		assertStatus(t, response.Code, http.StatusOK)

		var got GetGameRes
		mustDecode(t, response.Body, &got)
		assert.Equal(t, created.GameID, got.GameID)
		assert.Equal(t, game.NotStarted, got.Status)
		assert.Equal(t, []game.Player{game.Player1}, got.Players)
		assert.Equal(t, game.Player1, got.CurrentPlayer)
	})

	t.Run("returns 404 for unknown games", func(t *testing.T) {
		response := httptest.NewRecorder()
		newTestGameServer(t).ServeHTTP(response, newGetGameRequest("NOPE1"))
		assertStatus(t, response.Code, http.StatusNotFound)
	})

	t.Run("returns 400 without an id", func(t *testing.T) {
		response := httptest.NewRecorder()
		newTestGameServer(t).ServeHTTP(response, newGetGameRequest(""))
		assertStatus(t, response.Code, http.StatusBadRequest)
	})
}

func TestJoinGame(t *testing.T) {
	t.Run("POST /join returns 200 for existing game", func(t *testing.T) {
		server := newTestGameServer(t)
		created := mustCreateGame(t, server)

		got := mustJoinGame(t, server, created.GameID)
		assert.Equal(t, created.GameID, got.GameID)
		assert.NotEmpty(t, got.PlayerID)
		assert.NotEqual(t, created.PlayerID, got.PlayerID)
		assert.Equal(t, game.Player2, got.Seat)
		assert.Equal(t, []game.Player{game.Player1, game.Player2}, got.Players)
	})

	t.Run("POST /join returns 400 if request data missing", func(t *testing.T) {
		response := httptest.NewRecorder()
		newTestGameServer(t).ServeHTTP(response, newJoinGameRequest(nil))
		assertStatus(t, response.Code, http.StatusBadRequest)
	})

	t.Run("POST /join returns 400 for malformed data", func(t *testing.T) {
		response := httptest.NewRecorder()
		newTestGameServer(t).ServeHTTP(response, newJoinGameRequest([]byte("{game")))
		assertStatus(t, response.Code, http.StatusBadRequest)
	})

	t.Run("POST /join returns 400 if game id missing", func(t *testing.T) {
		response := joinGame(t, newTestGameServer(t), "")
		assertStatus(t, response.Code, http.StatusBadRequest)
	})

	t.Run("POST /join returns 404 for unknown game", func(t *testing.T) {
		response := joinGame(t, newTestGameServer(t), "NOPE1")
		assertStatus(t, response.Code, http.StatusNotFound)
	})

	t.Run("POST /join returns 409 when the game is full", func(t *testing.T) {
		server := newTestGameServer(t)
		created := mustCreateGame(t, server)
		for i := 1; i < game.MaxPlayers; i++ {
			mustJoinGame(t, server, created.GameID)
		}

		response := joinGame(t, server, created.GameID)
		assertStatus(t, response.Code, http.StatusConflict)
	})
}

func TestWebsocket(t *testing.T) {
	t.Run("rejects unknown players", func(t *testing.T) {
		gs := newTestGameServer(t)
		created := mustCreateGame(t, gs)
		server := httptest.NewServer(gs)
		defer server.Close()

		_, resp, err := websocket.DefaultDialer.Dial(makeWSUrl(server.URL, created.GameID, "stranger"), nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assertStatus(t, resp.StatusCode, http.StatusUnauthorized)
	})

	t.Run("rejects missing parameters", func(t *testing.T) {
		response := httptest.NewRecorder()
		request, _ := http.NewRequest(http.MethodGet, "/ws", nil)
		newTestGameServer(t).ServeHTTP(response, request)
		assertStatus(t, response.Code, http.StatusBadRequest)
	})

	t.Run("streams the game and accepts actions", func(t *testing.T) {
		gs := newTestGameServer(t)
		server := httptest.NewServer(gs)
		defer server.Close()

		host := mustCreateGame(t, gs)
		hostWS := mustDialWS(t, makeWSUrl(server.URL, host.GameID, host.PlayerID))

		first := readUntil(t, hostWS, protocol.Snapshot)
		require.NotNil(t, first.Game)
		assert.Equal(t, game.Player1, first.Seat)
		assert.Len(t, first.Game.Hand, 54)

		joiner := mustJoinGame(t, gs, host.GameID)
		joined := readUntil(t, hostWS, protocol.NewJoiner)
		assert.Len(t, joined.Game.Hand, 27)
		assert.Equal(t, 27, joined.Game.HandSizes[game.Player2])

		joinerWS := mustDialWS(t, makeWSUrl(server.URL, joiner.GameID, joiner.PlayerID))
		readUntil(t, joinerWS, protocol.Snapshot)

		// only the host may start
		send(t, joinerWS, map[string]interface{}{"command": "Start"})
		failed := readUntil(t, joinerWS, protocol.Error)
		assert.Equal(t, game.ErrNotHost.Error(), failed.Error)

		hostSeat, ok := gs.findPlayer(host.PlayerID)
		require.True(t, ok)
		utils.Eventually(t, 2*time.Second, func() bool {
			return len(hostSeat.session.Engine.Snapshot().AllPlayers) == 2
		})

		send(t, hostWS, map[string]interface{}{"command": "Start"})
		view := readUntil(t, hostWS, protocol.HasStarted).Game
		started := readUntil(t, joinerWS, protocol.HasStarted)
		assert.Equal(t, game.Ongoing, started.Game.Status)
		assert.Equal(t, game.Player1, started.Game.CurrentPlayer)
		assert.Len(t, started.Game.Hand, 27)

		// playing with nothing selected is refused
		send(t, hostWS, map[string]interface{}{"command": "PlayTurn"})
		refused := readUntil(t, hostWS, protocol.Error)
		assert.Equal(t, game.ErrNoCardsSelected.Error(), refused.Error)

		card := view.Hand[0]
		send(t, hostWS, map[string]interface{}{"command": "SelectCard", "card": card.ID.String()})
		send(t, hostWS, map[string]interface{}{"command": "PlayTurn", "bluffCard": card.ID.String()})

		var played protocol.OutboundMessage
		for {
			played = readUntil(t, joinerWS, protocol.Snapshot)
			if played.Game.Stash != nil {
				break
			}
		}
		assert.Equal(t, game.Player2, played.Game.CurrentPlayer)
		assert.Equal(t, 1, played.Game.Stash.Size)
		assert.Equal(t, *card.Rank, played.Game.Stash.RoundRank)
		assert.False(t, played.Game.Stash.Cards[0].Known)

		send(t, hostWS, map[string]interface{}{"command": "Cheat"})
		unknown := readUntil(t, hostWS, protocol.Error)
		assert.Contains(t, unknown.Error, "unknown command")
	})
}
