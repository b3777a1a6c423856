package game

import (
	"github.com/minaorangina/bluff/deck"
	uuid "github.com/satori/go.uuid"
)

// checkTurn rejects play actions outside an ongoing match or out of turn
func checkTurn(d *GameData, actor Player) error {
	switch d.GameStatus {
	case NotStarted:
		return ErrGameNotStarted
	case Completed:
		return ErrGameOver
	}
	if !d.IsPlayerTurn(actor) {
		return ErrNotYourTurn
	}
	return nil
}

// cardInHand returns the deck index of a card held by the actor
func cardInHand(d *GameData, actor Player, id uuid.UUID) (int, error) {
	idx, ok := d.PlayerDeck.Find(id)
	if !ok || d.PlayerDeck[idx].Status != actor.Status() {
		return -1, ErrCardNotInHand
	}
	return idx, nil
}

func start(d *GameData, actor Player) error {
	if d.GameStatus != NotStarted {
		return ErrGameAlreadyStarted
	}
	if actor != Host {
		return ErrNotHost
	}
	if len(d.AllPlayers) < MinPlayers {
		return ErrTooFewPlayers
	}

	d.redistribute()
	d.CurrentStash = nil
	d.CurrentPlayer = d.AllPlayers[0]
	d.GameStatus = Ongoing
	return nil
}

func selectCard(d *GameData, actor Player, id uuid.UUID) error {
	if err := checkTurn(d, actor); err != nil {
		return err
	}
	idx, err := cardInHand(d, actor, id)
	if err != nil {
		return err
	}

	d.PlayerDeck[idx].IsSelected = !d.PlayerDeck[idx].IsSelected
	return nil
}

func declareRoundCard(d *GameData, actor Player, id uuid.UUID) error {
	if err := checkTurn(d, actor); err != nil {
		return err
	}
	if d.CurrentStash != nil {
		return ErrRoundOpen
	}
	idx, err := cardInHand(d, actor, id)
	if err != nil {
		return err
	}
	for _, c := range d.Hand(actor) {
		if c.IsRoundCard {
			return ErrRoundCardDeclared
		}
	}

	clearRoundCards(d.PlayerDeck)
	d.PlayerDeck[idx].IsRoundCard = true
	d.PlayerDeck[idx].IsSelected = !d.PlayerDeck[idx].IsSelected
	return nil
}

func playTurn(d *GameData, actor Player, bluffCard uuid.UUID) error {
	if err := checkTurn(d, actor); err != nil {
		return err
	}

	selected := d.Selected(actor)
	if len(selected) == 0 {
		return ErrNoCardsSelected
	}
	played := make([]uuid.UUID, 0, len(selected))
	for _, c := range selected {
		played = append(played, c.ID)
	}

	if d.CurrentStash == nil {
		if bluffCard == uuid.Nil {
			return ErrBluffCardRequired
		}
		idx, err := cardInHand(d, actor, bluffCard)
		if err != nil {
			return err
		}

		clearRoundCards(d.PlayerDeck)
		d.PlayerDeck[idx].IsRoundCard = true

		roundCard := d.PlayerDeck[idx]
		roundCard.IsSelected = false
		d.CurrentStash = openStash(roundCard, actor, played)
	} else {
		d.CurrentStash.add(actor, played)
	}

	for _, id := range played {
		idx, _ := d.PlayerDeck.Find(id)
		d.PlayerDeck[idx].Status = deck.InStash
		d.PlayerDeck[idx].IsSelected = false
	}

	d.CurrentPlayer = d.NextPlayer(actor)
	d.UpdateCardDetails()
	return nil
}

func pass(d *GameData, actor Player, opts Options) error {
	if err := checkTurn(d, actor); err != nil {
		return err
	}

	next := d.NextPlayer(actor)
	if s := d.CurrentStash; s != nil {
		s.Passes++
		if opts.FlushOnFullPass && next == s.LastPlayer && s.Passes >= len(d.AllPlayers)-1 {
			flush(d)
		}
	}

	d.CurrentPlayer = next
	return nil
}

// flush discards the stash out of play
func flush(d *GameData) {
	moveCards(d, d.CurrentStash.AllCards(), deck.Flushed)
	clearRoundCards(d.PlayerDeck)
	d.CurrentStash = nil
	d.UpdateCardDetails()
	checkWinner(d)
}

func callBluff(d *GameData, actor Player, opts Options) (BluffOutcome, error) {
	if err := checkTurn(d, actor); err != nil {
		return BluffOutcome{}, err
	}

	outcome, err := ResolveBluff(*d, actor, opts)
	if err != nil {
		return outcome, err
	}

	applyBluff(d, outcome)
	return outcome, nil
}

// moveCards sets the status of the given cards and clears their transient flags
func moveCards(d *GameData, ids []uuid.UUID, to deck.Status) {
	for _, id := range ids {
		if idx, ok := d.PlayerDeck.Find(id); ok {
			d.PlayerDeck[idx].Status = to
			d.PlayerDeck[idx].IsSelected = false
			d.PlayerDeck[idx].IsRoundCard = false
		}
	}
}

func clearRoundCards(cards deck.Deck) {
	for i := range cards {
		cards[i].IsRoundCard = false
	}
}
