package protocol

import "github.com/minaorangina/bluff/game"

// BuildSnapshotMessage wraps seat's view of data. A completed game is sent as GameOver.
func BuildSnapshotMessage(playerID string, seat game.Player, data game.GameData) OutboundMessage {
	cmd := Snapshot
	if data.GameStatus == game.Completed {
		cmd = GameOver
	}
	return OutboundMessage{
		PlayerID: playerID,
		Command:  cmd,
		Seat:     seat,
		Game:     NewView(data, seat),
	}
}

func BuildErrorMessage(playerID string, seat game.Player, err error) OutboundMessage {
	return OutboundMessage{
		PlayerID: playerID,
		Command:  Error,
		Seat:     seat,
		Error:    err.Error(),
	}
}

// BuildUpdateMessage picks the command describing how data differs from the
// previous snapshot the player saw. prev is nil for the first message.
func BuildUpdateMessage(playerID string, seat game.Player, prev *game.GameData, data game.GameData) OutboundMessage {
	msg := BuildSnapshotMessage(playerID, seat, data)
	if prev == nil || msg.Command == GameOver {
		return msg
	}
	switch {
	case prev.GameStatus == game.NotStarted && data.GameStatus == game.Ongoing:
		msg.Command = HasStarted
	case len(data.AllPlayers) > len(prev.AllPlayers):
		msg.Command = NewJoiner
	}
	return msg
}
