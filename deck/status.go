package deck

import (
	"fmt"
	"strconv"
	"strings"
)

// Status records who or what owns a card
type Status string

const (
	NotPlayed Status = "notPlayed"
	InStash   Status = "inStash"
	Flushed   Status = "flushed"
)

const playerStatusPrefix = "player"

// PlayerStatus is the status of a card held by the given seat (1-based)
func PlayerStatus(seat int) Status {
	return Status(fmt.Sprintf("%s%d", playerStatusPrefix, seat))
}

// Seat returns the seat holding the card, if the status is a player status
func (s Status) Seat() (int, bool) {
	if !strings.HasPrefix(string(s), playerStatusPrefix) {
		return 0, false
	}
	seat, err := strconv.Atoi(strings.TrimPrefix(string(s), playerStatusPrefix))
	if err != nil || seat < 1 {
		return 0, false
	}
	return seat, true
}

func (s Status) String() string {
	return string(s)
}
