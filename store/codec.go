package store

import (
	"encoding/json"
	"fmt"

	"github.com/minaorangina/bluff/game"
)

// Encode serialises a snapshot for storage
func Encode(data game.GameData) ([]byte, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding game data: %w", err)
	}
	return b, nil
}

// Decode parses and validates a stored snapshot, and derives its card details
func Decode(b []byte) (game.GameData, error) {
	var data game.GameData
	if err := json.Unmarshal(b, &data); err != nil {
		return game.GameData{}, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if err := data.Validate(); err != nil {
		return game.GameData{}, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	data.UpdateCardDetails()
	return data, nil
}
