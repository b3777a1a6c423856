package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/websocket"
	"github.com/minaorangina/bluff/game"
	"github.com/minaorangina/bluff/session"
	uuid "github.com/satori/go.uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type NewGameRes struct {
	GameID   string      `json:"game_id"`
	PlayerID string      `json:"player_id"`
	Seat     game.Player `json:"seat"`
}

type JoinGameReq struct {
	GameID string `json:"game_id"`
}

type JoinGameRes struct {
	GameID   string        `json:"game_id"`
	PlayerID string        `json:"player_id"`
	Seat     game.Player   `json:"seat"`
	Players  []game.Player `json:"players"`
}

type GetGameRes struct {
	GameID        string          `json:"game_id"`
	Status        game.GameStatus `json:"status"`
	Players       []game.Player   `json:"players"`
	CurrentPlayer game.Player     `json:"current_player"`
}

type ServerOpts struct {
	Store          game.Store
	Logger         *zap.Logger
	Options        game.Options
	Jokers         int
	RoomCodeLength int
}

// GameServer is a game server. Every player it admits gets its own
// session.Manager, so several seats of one match can live in one process.
type GameServer struct {
	http.Server

	store       game.Store
	log         *zap.Logger
	managerOpts session.ManagerOpts

	// engine saves outlive the request that triggered them
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	players map[string]*seat
}

type seat struct {
	playerID string
	manager  *session.Manager
	session  *session.Session
}

func NewID() string {
	return uuid.NewV4().String()
}

func unknownGameIDMsg(unknownID string) string {
	return fmt.Sprintf("unknown game ID '%s'", unknownID)
}

// NewServer creates a new GameServer
func NewServer(opts ServerOpts) *GameServer {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &GameServer{
		store: opts.Store,
		log:   logger,
		managerOpts: session.ManagerOpts{
			Store:          opts.Store,
			Logger:         logger,
			Options:        opts.Options,
			Jokers:         opts.Jokers,
			RoomCodeLength: opts.RoomCodeLength,
		},
		ctx:     ctx,
		cancel:  cancel,
		players: map[string]*seat{},
	}

	router := http.NewServeMux()
	router.HandleFunc("/new", s.HandleNewGame)
	router.HandleFunc("/game/", s.HandleFindGame)
	router.HandleFunc("/join", s.HandleJoinGame)
	router.HandleFunc("/ws", s.HandleWS)

	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(logger)),
		handlers.PrintRecoveryStack(true),
	)
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	s.Handler = cors(recovery(router))

	return s
}

// ServeHTTP serves http
func (g *GameServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.Handler.ServeHTTP(w, r)
}

// Close releases every player's session
func (g *GameServer) Close() error {
	g.cancel()

	g.mu.Lock()
	players := g.players
	g.players = map[string]*seat{}
	g.mu.Unlock()

	var err error
	for _, p := range players {
		err = multierr.Append(err, p.manager.Close())
	}
	return multierr.Append(err, g.Server.Close())
}

// HandleNewGame handles a request to create a new game
func (g *GameServer) HandleNewGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	manager := session.NewManager(g.managerOpts)
	sess, err := manager.InitialiseGame(r.Context())
	if err != nil {
		manager.Close()
		g.log.Error("could not create game", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	p := g.admit(manager, sess)

	writeJSON(w, http.StatusCreated, NewGameRes{
		GameID:   sess.RoomID,
		PlayerID: p.playerID,
		Seat:     sess.Seat,
	})
}

func (g *GameServer) HandleFindGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	gameID := strings.TrimPrefix(r.URL.Path, "/game/")
	if gameID == "" {
		writeText(w, http.StatusBadRequest, "missing game ID")
		return
	}

	data, err := g.store.Load(r.Context(), gameID)
	if errors.Is(err, game.ErrUnknownMatch) {
		writeText(w, http.StatusNotFound, unknownGameIDMsg(gameID))
		return
	}
	if err != nil {
		g.log.Error("could not load game", zap.String("game", gameID), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, GetGameRes{
		GameID:        gameID,
		Status:        data.GameStatus,
		Players:       data.AllPlayers,
		CurrentPlayer: data.CurrentPlayer,
	})
}

func (g *GameServer) HandleJoinGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var data JoinGameReq
	err := json.NewDecoder(r.Body).Decode(&data)
	defer r.Body.Close()
	if err != nil {
		writeParseError(err, w)
		return
	}

	if data.GameID == "" {
		writeText(w, http.StatusBadRequest, "Missing game ID")
		return
	}

	manager := session.NewManager(g.managerOpts)
	sess, err := manager.JoinGame(r.Context(), data.GameID)
	if err != nil {
		manager.Close()
		g.writeJoinError(w, data.GameID, err)
		return
	}

	p := g.admit(manager, sess)
	snapshot := sess.Engine.Snapshot()

	writeJSON(w, http.StatusOK, JoinGameRes{
		GameID:   sess.RoomID,
		PlayerID: p.playerID,
		Seat:     sess.Seat,
		Players:  snapshot.AllPlayers,
	})
}

func (g *GameServer) writeJoinError(w http.ResponseWriter, gameID string, err error) {
	switch {
	case errors.Is(err, game.ErrUnknownMatch):
		writeText(w, http.StatusNotFound, unknownGameIDMsg(gameID))
	case errors.Is(err, game.ErrRoomFull), errors.Is(err, game.ErrGameAlreadyStarted):
		writeText(w, http.StatusConflict, err.Error())
	default:
		g.log.Error("could not join game", zap.String("game", gameID), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (g *GameServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	gameID := query.Get("game_id")
	if gameID == "" {
		writeText(w, http.StatusBadRequest, "missing game ID")
		return
	}
	playerID := query.Get("player_id")
	if playerID == "" {
		writeText(w, http.StatusBadRequest, "missing player ID")
		return
	}

	p, ok := g.findPlayer(playerID)
	if !ok || p.session.RoomID != gameID {
		writeText(w, http.StatusUnauthorized, "unknown player ID")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied
		g.log.Warn("could not upgrade to websocket", zap.Error(err))
		return
	}

	c := newClient(g.ctx, conn, p, g.store, g.log)
	if err := c.listen(); err != nil {
		g.log.Warn("could not stream game", zap.String("game", gameID), zap.Error(err))
	}
}

func (g *GameServer) admit(manager *session.Manager, sess *session.Session) *seat {
	p := &seat{
		playerID: NewID(),
		manager:  manager,
		session:  sess,
	}
	g.mu.Lock()
	g.players[p.playerID] = p
	g.mu.Unlock()
	return p
}

func (g *GameServer) findPlayer(playerID string) (*seat, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.players[playerID]
	return p, ok
}
