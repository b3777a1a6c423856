package protocol

import (
	"fmt"

	"github.com/minaorangina/bluff/game"
	uuid "github.com/satori/go.uuid"
)

// InboundMessage is a message from a player to the engine
type InboundMessage struct {
	PlayerID string    `json:"playerID"`
	Command  Cmd       `json:"command"`
	Card     uuid.UUID `json:"card"`
	// BluffCard opens a round when sent with PlayTurn on an empty stash
	BluffCard uuid.UUID `json:"bluffCard"`
}

// OutboundMessage is a message from the engine to a player
type OutboundMessage struct {
	PlayerID string      `json:"playerID"`
	Command  Cmd         `json:"command"`
	Seat     game.Player `json:"seat"`
	Game     *View       `json:"game,omitempty"`
	Error    string      `json:"error,omitempty"`
}

type Cmd int

const (
	Null Cmd = iota
	NewJoiner
	Start
	HasStarted
	SelectCard
	DeclareRoundCard
	PlayTurn
	Pass
	CallBluff
	Snapshot
	GameOver
	Error
)

var CmdNames = map[Cmd]string{
	Null:             "Null",
	NewJoiner:        "NewJoiner",
	Start:            "Start",
	HasStarted:       "HasStarted",
	SelectCard:       "SelectCard",
	DeclareRoundCard: "DeclareRoundCard",
	PlayTurn:         "PlayTurn",
	Pass:             "Pass",
	CallBluff:        "CallBluff",
	Snapshot:         "Snapshot",
	GameOver:         "GameOver",
	Error:            "Error",
}

var NameToCmd = map[string]Cmd{
	"Null":             Null,
	"NewJoiner":        NewJoiner,
	"Start":            Start,
	"HasStarted":       HasStarted,
	"SelectCard":       SelectCard,
	"DeclareRoundCard": DeclareRoundCard,
	"PlayTurn":         PlayTurn,
	"Pass":             Pass,
	"CallBluff":        CallBluff,
	"Snapshot":         Snapshot,
	"GameOver":         GameOver,
	"Error":            Error,
}

func (c Cmd) String() string {
	if name, ok := CmdNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Cmd(%d)", int(c))
}

func (c Cmd) MarshalText() ([]byte, error) {
	name, ok := CmdNames[c]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCommand, int(c))
	}
	return []byte(name), nil
}

func (c *Cmd) UnmarshalText(text []byte) error {
	cmd, ok := NameToCmd[string(text)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, text)
	}
	*c = cmd
	return nil
}
