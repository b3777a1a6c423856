package game

import "fmt"

// GameStatus is the lifecycle of a match. It only moves forward.
type GameStatus int

const (
	NotStarted GameStatus = iota
	Ongoing
	Completed
)

var gameStatusNames = []string{"notStarted", "ongoing", "completed"}

func (s GameStatus) String() string {
	if s < NotStarted || s > Completed {
		return fmt.Sprintf("GameStatus(%d)", int(s))
	}
	return gameStatusNames[s]
}

func (s GameStatus) MarshalText() ([]byte, error) {
	if s < NotStarted || s > Completed {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGameState, int(s))
	}
	return []byte(gameStatusNames[s]), nil
}

func (s *GameStatus) UnmarshalText(text []byte) error {
	for i, name := range gameStatusNames {
		if name == string(text) {
			*s = GameStatus(i)
			return nil
		}
	}
	return fmt.Errorf("%w: unknown game status %q", ErrInvalidGameState, text)
}
