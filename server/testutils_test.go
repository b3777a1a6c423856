package server

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/minaorangina/bluff/game"
	utils "github.com/minaorangina/bluff/internal"
	"github.com/minaorangina/bluff/protocol"
	"github.com/minaorangina/bluff/store"
)

func newTestGameServer(t *testing.T) *GameServer {
	t.Helper()
	s := NewServer(ServerOpts{
		Store:   store.NewInMemoryGameStore(nil),
		Options: game.Options{SaveRetries: 1, SaveBackoff: time.Millisecond},
		Jokers:  2,
	})
	t.Cleanup(func() { s.Close() })
	return s
}

func mustMakeJson(t *testing.T, input interface{}) []byte {
	t.Helper()

	data, err := json.Marshal(input)
	utils.AssertNoError(t, err)

	return data
}

func newCreateGameRequest() *http.Request {
	request, _ := http.NewRequest(http.MethodPost, "/new", nil)
	return request
}

func newGetGameRequest(gameID string) *http.Request {
	request, _ := http.NewRequest(http.MethodGet, "/game/"+gameID, nil)
	return request
}

func newJoinGameRequest(data []byte) *http.Request {
	request, _ := http.NewRequest(http.MethodPost, "/join", bytes.NewBuffer(data))
	return request
}

// mustCreateGame creates a game and returns the host's response
func mustCreateGame(t *testing.T, server http.Handler) NewGameRes {
	t.Helper()

	response := httptest.NewRecorder()
	server.ServeHTTP(response, newCreateGameRequest())
	assertStatus(t, response.Code, http.StatusCreated)

	var got NewGameRes
	mustDecode(t, response.Body, &got)
	return got
}

func joinGame(t *testing.T, server http.Handler, gameID string) *httptest.ResponseRecorder {
	t.Helper()

	response := httptest.NewRecorder()
	server.ServeHTTP(response, newJoinGameRequest(mustMakeJson(t, JoinGameReq{GameID: gameID})))
	return response
}

func mustJoinGame(t *testing.T, server http.Handler, gameID string) JoinGameRes {
	t.Helper()

	response := joinGame(t, server, gameID)
	assertStatus(t, response.Code, http.StatusOK)

	var got JoinGameRes
	mustDecode(t, response.Body, &got)
	return got
}

func mustDecode(t *testing.T, body *bytes.Buffer, v interface{}) {
	t.Helper()
	bodyBytes, err := ioutil.ReadAll(body)
	utils.AssertNoError(t, err)

	if err := json.Unmarshal(bodyBytes, v); err != nil {
		t.Fatalf("could not unmarshal json: %s", err.Error())
	}
}

func mustDialWS(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)

	if err != nil {
		status := 0
		var body []byte
		if resp != nil {
			status = resp.StatusCode
			body, _ = ioutil.ReadAll(resp.Body)
		}
		t.Fatalf("could not open a ws connection on %s, code %d: %s, %v", url, status, body, err)
	}
	if ws == nil {
		t.Fatal("unexpected nil websocket conn")
	}
	t.Cleanup(func() { ws.Close() })

	return ws
}

func makeWSUrl(serverURL, gameID, playerID string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http") +
		"/ws?game_id=" + gameID + "&player_id=" + playerID
}

// readUntil reads messages until one has the wanted command
func readUntil(t *testing.T, ws *websocket.Conn, want protocol.Cmd) protocol.OutboundMessage {
	t.Helper()

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg protocol.OutboundMessage
		if err := ws.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %s: %v", want, err)
		}
		if msg.Command == want {
			return msg
		}
	}
}

func send(t *testing.T, ws *websocket.Conn, msg map[string]interface{}) {
	t.Helper()
	utils.AssertNoError(t, ws.WriteJSON(msg))
}

// ASSERTIONS

func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("got status %d, want %d", got, want)
	}
}
