package game

import "fmt"

// Apply validates the action against the current legal set and returns
// the successor state plus an Effect describing what happened. The
// input state is never mutated: Apply works on a clone, so an error
// leaves no partial application behind.
func Apply(s *GameState, action Action) (*GameState, *Effect, error) {
	if action.Type.needsCard() && action.CardID == "" {
		return nil, nil, fmt.Errorf("%w: %s requires a card", ErrMalformedAction, action.Type)
	}
	if action.Type.needsTarget() && action.TargetID == "" {
		return nil, nil, fmt.Errorf("%w: %s requires a target", ErrMalformedAction, action.Type)
	}

	legal := false
	for _, candidate := range LegalActions(s) {
		if candidate.same(action) {
			legal = true
			break
		}
	}
	if !legal {
		return nil, nil, fmt.Errorf("%w: %s by player %d", ErrIllegalAction, action.Type, action.PlayedBy)
	}

	next := s.Clone()
	eff := &Effect{
		Type:        action.Type,
		Player:      action.PlayedBy,
		Turn:        s.Turn,
		OverallTurn: s.OverallTurn,
	}
	if action.CardID != "" {
		eff.Card = next.card(action.CardID).String()
	}
	if action.TargetID != "" {
		if target, ok := next.Cards[action.TargetID]; ok {
			eff.Target = target.String()
		}
	}
	if action.Type != ActionPass {
		next.ConsecutivePasses = 0
	}

	switch action.Type {
	case ActionDraw:
		next.applyDraw(eff)
	case ActionPoints:
		next.applyPoints(action, eff)
	case ActionFaceCard:
		next.applyFaceCard(action, eff)
	case ActionJack:
		next.applyJack(action, eff)
	case ActionScuttle:
		next.applyScuttle(action, eff)
	case ActionOneOff:
		next.applyOneOff(action, eff)
	case ActionCounter:
		next.applyCounter(action, eff)
	case ActionResolve:
		next.applyResolve(eff)
	case ActionSelectFromDiscard:
		next.applySelectFromDiscard(action, eff)
	case ActionDiscardFromHand:
		next.applyDiscardFromHand(action, eff)
	case ActionDiscardRevealed:
		next.applyDiscardRevealed(action, eff)
	case ActionRequestStalemate:
		next.applyRequestStalemate(action, eff)
	case ActionAcceptStalemate:
		next.applyAcceptStalemate(eff)
	case ActionRejectStalemate:
		next.applyRejectStalemate(eff)
	case ActionConcede:
		next.applyConcede(action, eff)
	case ActionPass:
		next.applyPass(eff)
	default:
		return nil, nil, fmt.Errorf("%w: unknown action type %q", ErrMalformedAction, action.Type)
	}
	return next, eff, nil
}

// finishResolution closes out a fully resolved action. A pending Seven
// reveal reclaims control before the turn can advance; otherwise play
// passes to the opponent.
func (s *GameState) finishResolution() {
	if s.Phase.Terminal() {
		return
	}
	if len(s.PendingSeven) > 0 {
		s.Phase = Phase{Kind: PhaseAwaitingSevenReveal, Responder: s.ActivePlayer}
		return
	}
	s.Phase = idlePhase()
	s.advanceTurn()
}

// checkWin ends the game if either player has reached their adjusted
// target, preferring the active player on simultaneous qualification.
func (s *GameState) checkWin() bool {
	winner, over := s.Winner()
	if !over {
		return false
	}
	s.Phase = wonPhase(winner)
	return true
}

// removeID deletes the first occurrence of id from the slice and
// reports whether it was present.
func removeID(ids []string, id string) ([]string, bool) {
	for i, candidate := range ids {
		if candidate == id {
			return append(ids[:i], ids[i+1:]...), true
		}
	}
	return ids, false
}

// takeCard removes the card from the zone the action named: the
// player's hand, or the pending Seven reveal when the source is the
// deck.
func (s *GameState) takeCard(player int, id string, source Source) {
	var ok bool
	if source == SourceDeck {
		s.PendingSeven, ok = removeID(s.PendingSeven, id)
	} else {
		s.Hands[player], ok = removeID(s.Hands[player], id)
	}
	if !ok {
		panic(fmt.Sprintf("game: card %s not in %s of player %d", id, source, player))
	}
}

// toDiscard strips the card's in-play decoration and places it on the
// discard pile.
func (s *GameState) toDiscard(id string) {
	s.card(id).clearPlayInfo()
	s.Discard = append(s.Discard, id)
}

// scrapFieldCard removes a top-level field card and sends it to the
// discard pile along with any attached Jacks.
func (s *GameState) scrapFieldCard(id string, eff *Effect) {
	card := s.card(id)
	owner := card.PlayedBy
	var ok bool
	s.Fields[owner], ok = removeID(s.Fields[owner], id)
	if !ok {
		panic(fmt.Sprintf("game: card %s not on field of player %d", id, owner))
	}
	attachments := card.Attachments
	s.toDiscard(id)
	eff.Scrapped = append(eff.Scrapped, card.String())
	for _, jackID := range attachments {
		s.toDiscard(jackID)
		eff.Scrapped = append(eff.Scrapped, s.card(jackID).String())
	}
}

// scrapAttachment pulls one Jack off its host and discards it, shifting
// control of the host back by one step.
func (s *GameState) scrapAttachment(jackID string, eff *Effect) {
	host := s.findHost(jackID)
	host.Attachments, _ = removeID(host.Attachments, jackID)
	s.toDiscard(jackID)
	eff.Scrapped = append(eff.Scrapped, s.card(jackID).String())
}

// findHost locates the field card the given Jack is attached to.
func (s *GameState) findHost(jackID string) *Card {
	for owner := 0; owner < 2; owner++ {
		for _, id := range s.Fields[owner] {
			card := s.card(id)
			for _, attached := range card.Attachments {
				if attached == jackID {
					return card
				}
			}
		}
	}
	panic("game: jack " + jackID + " attached to nothing")
}

// drawInto moves up to n cards from the top of the deck into the
// player's hand, respecting the hand limit, and returns how many moved.
func (s *GameState) drawInto(player, n int) int {
	drawn := 0
	for drawn < n && len(s.Deck) > 0 && len(s.Hands[player]) < HandLimit {
		top := s.Deck[len(s.Deck)-1]
		s.Deck = s.Deck[:len(s.Deck)-1]
		s.Hands[player] = append(s.Hands[player], top)
		drawn++
	}
	return drawn
}

func (s *GameState) applyDraw(eff *Effect) {
	eff.Drawn = s.drawInto(s.ActivePlayer, 1)
	eff.Description = fmt.Sprintf("Player %d drew a card", s.ActivePlayer)
	s.finishResolution()
}

func (s *GameState) applyPoints(action Action, eff *Effect) {
	s.takeCard(action.PlayedBy, action.CardID, action.Source)
	card := s.card(action.CardID)
	card.PlayedBy = action.PlayedBy
	card.Purpose = PurposePoints
	s.Fields[action.PlayedBy] = append(s.Fields[action.PlayedBy], action.CardID)
	eff.Description = fmt.Sprintf("Player %d played %s for points", action.PlayedBy, card)
	if s.checkWin() {
		return
	}
	s.finishResolution()
}

func (s *GameState) applyFaceCard(action Action, eff *Effect) {
	s.takeCard(action.PlayedBy, action.CardID, action.Source)
	card := s.card(action.CardID)
	card.PlayedBy = action.PlayedBy
	card.Purpose = PurposeFaceCard
	s.Fields[action.PlayedBy] = append(s.Fields[action.PlayedBy], action.CardID)
	eff.Description = fmt.Sprintf("Player %d played %s as a face card", action.PlayedBy, card)
	// A King lowers its player's target; an Eight exposes nothing by
	// itself. Either way only the player of the card can have just won.
	if s.checkWin() {
		return
	}
	s.finishResolution()
}

func (s *GameState) applyJack(action Action, eff *Effect) {
	s.takeCard(action.PlayedBy, action.CardID, action.Source)
	jack := s.card(action.CardID)
	jack.PlayedBy = action.PlayedBy
	jack.Purpose = PurposeJack
	target := s.card(action.TargetID)
	target.Attachments = append(target.Attachments, action.CardID)
	eff.Description = fmt.Sprintf("Player %d stole %s with %s", action.PlayedBy, target, jack)
	if s.checkWin() {
		return
	}
	s.finishResolution()
}

func (s *GameState) applyScuttle(action Action, eff *Effect) {
	s.takeCard(action.PlayedBy, action.CardID, action.Source)
	attacker := s.card(action.CardID)
	target := s.card(action.TargetID)
	eff.Description = fmt.Sprintf("Player %d scuttled %s with %s", action.PlayedBy, target, attacker)
	s.scrapFieldCard(action.TargetID, eff)
	s.toDiscard(action.CardID)
	eff.Scrapped = append(eff.Scrapped, attacker.String())
	if s.checkWin() {
		return
	}
	s.finishResolution()
}

func (s *GameState) applyOneOff(action Action, eff *Effect) {
	s.takeCard(action.PlayedBy, action.CardID, action.Source)
	card := s.card(action.CardID)
	card.PlayedBy = action.PlayedBy
	card.Purpose = PurposeOneOff
	s.Phase = Phase{
		Kind:         PhaseAwaitingCounter,
		Responder:    Opponent(action.PlayedBy),
		OneOffCard:   action.CardID,
		OneOffPlayer: action.PlayedBy,
		OneOffTarget: action.TargetID,
		OneOffSource: action.Source,
	}
	if action.TargetID != "" {
		eff.Description = fmt.Sprintf("Player %d played %s as a one-off targeting %s", action.PlayedBy, card, s.card(action.TargetID))
	} else {
		eff.Description = fmt.Sprintf("Player %d played %s as a one-off", action.PlayedBy, card)
	}
}

func (s *GameState) applyCounter(action Action, eff *Effect) {
	s.takeCard(action.PlayedBy, action.CardID, action.Source)
	two := s.card(action.CardID)
	oneOffID := s.Phase.OneOffCard
	oneOff := s.card(oneOffID)
	eff.Countered = true
	eff.Description = fmt.Sprintf("Player %d countered %s with %s", action.PlayedBy, oneOff, two)
	s.Phase = idlePhase()
	s.toDiscard(action.CardID)
	s.toDiscard(oneOffID)
	eff.Scrapped = append(eff.Scrapped, two.String(), oneOff.String())
	s.finishResolution()
}

// applyResolve executes the pending one-off's effect. Effects that
// require a follow-up choice chain into their selection phase and keep
// the one-off card in the phase payload until fully resolved.
func (s *GameState) applyResolve(eff *Effect) {
	phase := s.Phase
	card := s.card(phase.OneOffCard)
	player := phase.OneOffPlayer
	s.Phase = idlePhase()

	switch card.Rank {
	case RankAce:
		eff.Description = fmt.Sprintf("%s scrapped every point card", card)
		for owner := 0; owner < 2; owner++ {
			for _, id := range append([]string(nil), s.Fields[owner]...) {
				if s.card(id).Purpose == PurposePoints {
					s.scrapFieldCard(id, eff)
				}
			}
		}
		s.toDiscard(card.ID)

	case RankTwo:
		target := s.card(phase.OneOffTarget)
		eff.Description = fmt.Sprintf("%s scrapped %s", card, target)
		if target.Purpose == PurposeJack {
			s.scrapAttachment(phase.OneOffTarget, eff)
		} else {
			s.scrapFieldCard(phase.OneOffTarget, eff)
		}
		s.toDiscard(card.ID)

	case RankThree:
		if len(s.Discard) > 0 {
			s.Phase = Phase{
				Kind:         PhaseAwaitingThreeSelection,
				Responder:    player,
				OneOffCard:   card.ID,
				OneOffPlayer: player,
			}
			eff.Description = fmt.Sprintf("%s resolved; player %d picks a card from the discard pile", card, player)
			return
		}
		eff.Description = fmt.Sprintf("%s resolved with an empty discard pile", card)
		s.toDiscard(card.ID)

	case RankFour:
		opponent := Opponent(player)
		if len(s.Hands[opponent]) > 0 {
			owed := min(fourDiscardCount, len(s.Hands[opponent]))
			s.Phase = Phase{
				Kind:         PhaseAwaitingFourSelection,
				Responder:    opponent,
				OneOffCard:   card.ID,
				OneOffPlayer: player,
				Remaining:    owed,
			}
			eff.Description = fmt.Sprintf("%s resolved; player %d must discard %d", card, opponent, owed)
			return
		}
		eff.Description = fmt.Sprintf("%s resolved against an empty hand", card)
		s.toDiscard(card.ID)

	case RankFive:
		if len(s.Hands[player]) > 0 {
			s.Phase = Phase{
				Kind:         PhaseAwaitingFiveDiscard,
				Responder:    player,
				OneOffCard:   card.ID,
				OneOffPlayer: player,
			}
			eff.Description = fmt.Sprintf("%s resolved; player %d discards one then draws", card, player)
			return
		}
		s.toDiscard(card.ID)
		eff.Drawn = s.drawInto(player, fiveDrawCount)
		eff.Description = fmt.Sprintf("%s resolved; player %d drew %d", card, player, eff.Drawn)

	case RankSix:
		eff.Description = fmt.Sprintf("%s scrapped every face card and Jack", card)
		// Attached Jacks take their host down with them.
		for owner := 0; owner < 2; owner++ {
			for _, id := range append([]string(nil), s.Fields[owner]...) {
				host := s.card(id)
				if host.Purpose == PurposeFaceCard || len(host.Attachments) > 0 {
					s.scrapFieldCard(id, eff)
				}
			}
		}
		s.toDiscard(card.ID)

	case RankSeven:
		revealed := min(sevenRevealCount, len(s.Deck))
		for i := 0; i < revealed; i++ {
			top := s.Deck[len(s.Deck)-1]
			s.Deck = s.Deck[:len(s.Deck)-1]
			s.PendingSeven = append(s.PendingSeven, top)
			eff.Revealed = append(eff.Revealed, s.card(top).String())
		}
		s.toDiscard(card.ID)
		eff.Description = fmt.Sprintf("%s revealed %d deck cards", card, revealed)

	case RankNine:
		target := s.card(phase.OneOffTarget)
		eff.Description = fmt.Sprintf("%s returned %s to hand", card, target)
		owner := s.bounceToHand(phase.OneOffTarget)
		// The lock expires once the owner has taken the turn it covers:
		// next turn when the Nine hit the opponent's card, the turn
		// after when it bounced the player's own card off a steal.
		lockTurn := s.OverallTurn + 1
		if owner == player {
			lockTurn = s.OverallTurn + 2
		}
		s.ReplayLocks[phase.OneOffTarget] = lockTurn
		s.toDiscard(card.ID)

	case RankTen:
		eff.Description = fmt.Sprintf("%s resolved with no effect", card)
		s.toDiscard(card.ID)

	default:
		panic(fmt.Sprintf("game: rank %s has no one-off effect", card.Rank))
	}

	if s.checkWin() {
		return
	}
	s.finishResolution()
}

// bounceToHand returns a field card or attached Jack to its owner's
// hand and reports the owner. Bouncing a point card discards any Jacks
// riding on it.
func (s *GameState) bounceToHand(id string) int {
	card := s.card(id)
	if card.Purpose == PurposeJack {
		host := s.findHost(id)
		host.Attachments, _ = removeID(host.Attachments, id)
		owner := card.PlayedBy
		card.clearPlayInfo()
		s.Hands[owner] = append(s.Hands[owner], id)
		return owner
	}
	owner := card.PlayedBy
	s.Fields[owner], _ = removeID(s.Fields[owner], id)
	for _, jackID := range card.Attachments {
		jack := s.card(jackID)
		jack.clearPlayInfo()
		s.Discard = append(s.Discard, jackID)
	}
	card.clearPlayInfo()
	s.Hands[owner] = append(s.Hands[owner], id)
	return owner
}

func (s *GameState) applySelectFromDiscard(action Action, eff *Effect) {
	var ok bool
	s.Discard, ok = removeID(s.Discard, action.CardID)
	if !ok {
		panic("game: card " + action.CardID + " not in discard")
	}
	s.Hands[action.PlayedBy] = append(s.Hands[action.PlayedBy], action.CardID)
	eff.Description = fmt.Sprintf("Player %d took %s from the discard pile", action.PlayedBy, s.card(action.CardID))
	s.toDiscard(s.Phase.OneOffCard)
	s.Phase = idlePhase()
	s.finishResolution()
}

func (s *GameState) applyDiscardFromHand(action Action, eff *Effect) {
	s.takeCard(action.PlayedBy, action.CardID, SourceHand)
	s.toDiscard(action.CardID)
	eff.Scrapped = append(eff.Scrapped, s.card(action.CardID).String())
	eff.Description = fmt.Sprintf("Player %d discarded %s", action.PlayedBy, s.card(action.CardID))

	switch s.Phase.Kind {
	case PhaseAwaitingFourSelection:
		s.Phase.Remaining--
		if s.Phase.Remaining > 0 && len(s.Hands[action.PlayedBy]) > 0 {
			return
		}
	case PhaseAwaitingFiveDiscard:
		drawn := s.drawInto(s.Phase.OneOffPlayer, fiveDrawCount)
		eff.Drawn = drawn
		eff.Description = fmt.Sprintf("Player %d discarded %s and drew %d", action.PlayedBy, s.card(action.CardID), drawn)
	}
	s.toDiscard(s.Phase.OneOffCard)
	s.Phase = idlePhase()
	s.finishResolution()
}

func (s *GameState) applyDiscardRevealed(action Action, eff *Effect) {
	s.takeCard(action.PlayedBy, action.CardID, SourceDeck)
	s.toDiscard(action.CardID)
	eff.Scrapped = append(eff.Scrapped, s.card(action.CardID).String())
	eff.Description = fmt.Sprintf("Player %d discarded revealed %s", action.PlayedBy, s.card(action.CardID))
	s.finishResolution()
}

func (s *GameState) applyRequestStalemate(action Action, eff *Effect) {
	s.Phase = Phase{
		Kind:        PhaseAwaitingStalemateResponse,
		Responder:   Opponent(action.PlayedBy),
		RequestedBy: action.PlayedBy,
	}
	eff.Description = fmt.Sprintf("Player %d requested a stalemate", action.PlayedBy)
}

func (s *GameState) applyAcceptStalemate(eff *Effect) {
	eff.Description = "Stalemate accepted; the game is a draw"
	s.Phase = drawnPhase()
}

func (s *GameState) applyRejectStalemate(eff *Effect) {
	requester := s.Phase.RequestedBy
	s.StalemateDeniedTurn[requester] = s.OverallTurn
	eff.Description = fmt.Sprintf("Player %d's stalemate request was rejected", requester)
	s.Phase = idlePhase()
}

func (s *GameState) applyConcede(action Action, eff *Effect) {
	winner := Opponent(action.PlayedBy)
	eff.Description = fmt.Sprintf("Player %d conceded", action.PlayedBy)
	s.Phase = wonPhase(winner)
}

func (s *GameState) applyPass(eff *Effect) {
	s.ConsecutivePasses++
	eff.Description = fmt.Sprintf("Player %d passed", s.ActivePlayer)
	if s.ConsecutivePasses >= passLimit {
		eff.Description = "Three consecutive passes; the game is a draw"
		s.Phase = drawnPhase()
		return
	}
	s.finishResolution()
}
