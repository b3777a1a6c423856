package game

// AddPlayer seats the lowest free seat and re-deals ownership of every card
// round-robin across the new roster, in deck order.
func (d *GameData) AddPlayer() (Player, error) {
	if len(d.AllPlayers) >= MaxPlayers {
		return NoPlayer, ErrRoomFull
	}
	if d.GameStatus != NotStarted {
		return NoPlayer, ErrGameAlreadyStarted
	}

	var seat Player
	for _, p := range Seats {
		if !containsPlayer(d.AllPlayers, p) {
			seat = p
			break
		}
	}

	d.AllPlayers = append(d.AllPlayers, seat)
	d.redistribute()

	return seat, nil
}

// redistribute assigns card i to AllPlayers[i % n]
func (d *GameData) redistribute() {
	n := len(d.AllPlayers)
	if n == 0 {
		return
	}
	for i := range d.PlayerDeck {
		d.PlayerDeck[i].Status = d.AllPlayers[i%n].Status()
		d.PlayerDeck[i].IsSelected = false
		d.PlayerDeck[i].IsRoundCard = false
	}
	d.UpdateCardDetails()
}
