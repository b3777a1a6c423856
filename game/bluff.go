package game

import (
	uuid "github.com/satori/go.uuid"
)

// BluffOutcome is the verdict on a bluff call
type BluffOutcome struct {
	Accuser Player
	Accused Player
	// Honest is true when every card the accused played matches the round card
	Honest bool
	// Receiver picks up the whole stash
	Receiver Player
	Cards    []uuid.UUID
}

// ResolveBluff judges the accused's own contribution against the declared
// rank. The whole stash is at stake: it goes to the accuser when the accused
// was honest, otherwise back to the accused.
func ResolveBluff(d GameData, accuser Player, opts Options) (BluffOutcome, error) {
	s := d.CurrentStash
	if s == nil || !s.valid() {
		return BluffOutcome{}, ErrEmptyStash
	}
	if accuser == s.LastPlayer {
		return BluffOutcome{}, ErrSelfChallenge
	}

	honest := true
	for _, id := range s.PlayedBy(s.LastPlayer) {
		c, ok := d.Card(id)
		if !ok {
			return BluffOutcome{}, ErrInvalidGameState
		}
		if c.Rank == s.RoundCard.Rank {
			continue
		}
		if opts.JokersWild && c.IsJoker() {
			continue
		}
		honest = false
		break
	}

	outcome := BluffOutcome{
		Accuser: accuser,
		Accused: s.LastPlayer,
		Honest:  honest,
		Cards:   s.AllCards(),
	}
	if honest {
		outcome.Receiver = accuser
	} else {
		outcome.Receiver = s.LastPlayer
	}
	return outcome, nil
}

// applyBluff hands the stash to the receiver and resets the round. A bluffer
// plays next; after a failed challenge the turn stays where it was.
func applyBluff(d *GameData, o BluffOutcome) {
	moveCards(d, o.Cards, o.Receiver.Status())
	clearRoundCards(d.PlayerDeck)
	d.CurrentStash = nil
	if !o.Honest {
		d.CurrentPlayer = o.Accused
	}
	d.UpdateCardDetails()
	checkWinner(d)
}

// checkWinner ends the match once the stash is settled and a seat has no cards left
func checkWinner(d *GameData) {
	for _, p := range d.AllPlayers {
		if len(d.Hand(p)) == 0 {
			d.GameStatus = Completed
			d.Winner = p
			return
		}
	}
}
