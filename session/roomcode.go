package session

import (
	"time"

	"golang.org/x/exp/rand"
)

const (
	DefaultRoomCodeLength = 5
	roomCodeAlphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var rng = func() *rand.Rand {
	src := &rand.LockedSource{}
	src.Seed(uint64(time.Now().UnixNano()))
	return rand.New(src)
}()

// GenerateRoomCode returns a code drawn uniformly from [A-Z0-9]. A length
// of zero or less gives DefaultRoomCodeLength.
func GenerateRoomCode(length int) string {
	if length <= 0 {
		length = DefaultRoomCodeLength
	}
	code := make([]byte, length)
	for i := range code {
		code[i] = roomCodeAlphabet[rng.Intn(len(roomCodeAlphabet))]
	}
	return string(code)
}
