package game

// LegalActions enumerates every action playable in the current state.
// It is pure and deterministic: calling it twice without an intervening
// Apply yields the same ordered list, and Apply never rejects an action
// it returned. Action ids are indices into the returned list and are
// only valid against this exact state.
func LegalActions(s *GameState) []Action {
	var actions []Action

	switch s.Phase.Kind {
	case PhaseGameOver:
		return nil
	case PhaseAwaitingCounter:
		actions = counterActions(s)
	case PhaseAwaitingThreeSelection:
		actions = threeSelectionActions(s)
	case PhaseAwaitingFourSelection, PhaseAwaitingFiveDiscard:
		actions = handDiscardActions(s)
	case PhaseAwaitingSevenReveal:
		actions = sevenRevealActions(s)
	case PhaseAwaitingStalemateResponse:
		actions = stalemateResponseActions(s)
	default:
		actions = idleActions(s)
	}

	for i := range actions {
		actions[i].ID = i
	}
	return actions
}

// idleActions enumerates the normal-turn action set for the active
// player.
func idleActions(s *GameState) []Action {
	player := s.ActivePlayer
	var actions []Action

	if len(s.Hands[player]) < HandLimit && len(s.Deck) > 0 {
		actions = append(actions, Action{Type: ActionDraw, PlayedBy: player, Source: SourceDeck})
	}

	for _, id := range s.Hands[player] {
		actions = append(actions, cardPlays(s, player, id, SourceHand)...)
	}

	hasPlay := len(actions) > 0

	if s.StalemateDeniedTurn[player] != s.OverallTurn {
		actions = append(actions, Action{Type: ActionRequestStalemate, PlayedBy: player})
	}
	actions = append(actions, Action{Type: ActionConcede, PlayedBy: player})

	// No draw available and nothing playable forces a pass. Three
	// passes in a row end the game as a draw.
	if !hasPlay {
		actions = append(actions, Action{Type: ActionPass, PlayedBy: player})
	}
	return actions
}

// cardPlays enumerates every way the given card can be played by
// player from the given source: points, one-off (with targets where
// the rank needs one), face card, Jack and scuttle.
func cardPlays(s *GameState, player int, id string, source Source) []Action {
	if s.locked(id) {
		return nil
	}
	card := s.card(id)
	var actions []Action

	if card.IsPointCard() {
		actions = append(actions, Action{Type: ActionPoints, PlayedBy: player, Source: source, CardID: id})
	}

	if card.IsOneOff() {
		switch card.Rank {
		case RankTwo:
			for _, target := range twoTargets(s, player) {
				actions = append(actions, Action{Type: ActionOneOff, PlayedBy: player, Source: source, CardID: id, TargetID: target})
			}
		case RankNine:
			for _, target := range nineTargets(s, player) {
				actions = append(actions, Action{Type: ActionOneOff, PlayedBy: player, Source: source, CardID: id, TargetID: target})
			}
		default:
			actions = append(actions, Action{Type: ActionOneOff, PlayedBy: player, Source: source, CardID: id})
		}
	}

	switch card.Rank {
	case RankKing, RankQueen, RankEight:
		actions = append(actions, Action{Type: ActionFaceCard, PlayedBy: player, Source: source, CardID: id})
	case RankJack:
		for _, target := range jackTargets(s, player) {
			actions = append(actions, Action{Type: ActionJack, PlayedBy: player, Source: source, CardID: id, TargetID: target})
		}
	}

	if card.IsPointCard() {
		for _, target := range scuttleTargets(s, player, card) {
			actions = append(actions, Action{Type: ActionScuttle, PlayedBy: player, Source: source, CardID: id, TargetID: target})
		}
	}
	return actions
}

// twoTargets lists opposing royals, glasses Eights and attached Jacks
// a Two may scrap, honoring Queen protection.
func twoTargets(s *GameState, player int) []string {
	opponent := Opponent(player)
	var targets []string
	for _, id := range s.Fields[opponent] {
		card := s.card(id)
		if card.Purpose == PurposeFaceCard && !s.IsProtected(id) {
			targets = append(targets, id)
		}
	}
	// Attached Jacks count as royals; only the controlling (topmost)
	// Jack can be pulled off a chain.
	for owner := 0; owner < 2; owner++ {
		for _, id := range s.Fields[owner] {
			host := s.card(id)
			if len(host.Attachments) == 0 {
				continue
			}
			top := host.Attachments[len(host.Attachments)-1]
			jack := s.card(top)
			if jack.PlayedBy == opponent && !s.IsProtected(top) {
				targets = append(targets, top)
			}
		}
	}
	return targets
}

// nineTargets lists opposing field cards a Nine may bounce: top-level
// cards the opponent controls plus their topmost attached Jacks.
func nineTargets(s *GameState, player int) []string {
	opponent := Opponent(player)
	var targets []string
	for owner := 0; owner < 2; owner++ {
		for _, id := range s.Fields[owner] {
			card := s.card(id)
			if card.Controller() == opponent && !s.IsProtected(id) {
				targets = append(targets, id)
			}
			if len(card.Attachments) == 0 {
				continue
			}
			top := card.Attachments[len(card.Attachments)-1]
			jack := s.card(top)
			if jack.PlayedBy == opponent && !s.IsProtected(top) {
				targets = append(targets, top)
			}
		}
	}
	return targets
}

// jackTargets lists opposing point cards a Jack may steal.
func jackTargets(s *GameState, player int) []string {
	opponent := Opponent(player)
	var targets []string
	for owner := 0; owner < 2; owner++ {
		for _, id := range s.Fields[owner] {
			card := s.card(id)
			if card.Purpose == PurposePoints && card.Controller() == opponent && !s.IsProtected(id) {
				targets = append(targets, id)
			}
		}
	}
	return targets
}

// scuttleTargets lists opposing point cards the attacker may scuttle:
// strictly higher rank, or equal rank with the higher suit.
func scuttleTargets(s *GameState, player int, attacker *Card) []string {
	opponent := Opponent(player)
	var targets []string
	for owner := 0; owner < 2; owner++ {
		for _, id := range s.Fields[owner] {
			card := s.card(id)
			if card.Purpose != PurposePoints || card.Controller() != opponent || s.IsProtected(id) {
				continue
			}
			if attacker.PointValue() > card.PointValue() ||
				(attacker.PointValue() == card.PointValue() && attacker.SuitValue() > card.SuitValue()) {
				targets = append(targets, id)
			}
		}
	}
	return targets
}

// counterActions offers the responder a counter per Two in hand plus
// the option to let the one-off resolve. Countering is blocked while
// the one-off's player has a Queen in play.
func counterActions(s *GameState) []Action {
	responder := s.Phase.Responder
	var actions []Action
	if !s.HasQueen(s.Phase.OneOffPlayer, "") {
		for _, id := range s.Hands[responder] {
			if s.card(id).Rank == RankTwo {
				actions = append(actions, Action{
					Type:     ActionCounter,
					PlayedBy: responder,
					Source:   SourceHand,
					CardID:   id,
					TargetID: s.Phase.OneOffCard,
				})
			}
		}
	}
	actions = append(actions, Action{
		Type:     ActionResolve,
		PlayedBy: responder,
		TargetID: s.Phase.OneOffCard,
	})
	return actions
}

// threeSelectionActions offers one reclaim per discard-pile card. The
// resolving Three itself is still held in the phase payload, so it is
// never on offer.
func threeSelectionActions(s *GameState) []Action {
	responder := s.Phase.Responder
	actions := make([]Action, 0, len(s.Discard))
	for _, id := range s.Discard {
		actions = append(actions, Action{
			Type:     ActionSelectFromDiscard,
			PlayedBy: responder,
			Source:   SourceDiscard,
			CardID:   id,
		})
	}
	return actions
}

// handDiscardActions offers one discard per card remaining in the
// responder's hand (Four and Five selections).
func handDiscardActions(s *GameState) []Action {
	responder := s.Phase.Responder
	actions := make([]Action, 0, len(s.Hands[responder]))
	for _, id := range s.Hands[responder] {
		actions = append(actions, Action{
			Type:     ActionDiscardFromHand,
			PlayedBy: responder,
			Source:   SourceHand,
			CardID:   id,
		})
	}
	return actions
}

// sevenRevealActions enumerates the plays for each still-pending
// revealed card. A discard is offered only for a revealed card with no
// legal play.
func sevenRevealActions(s *GameState) []Action {
	responder := s.Phase.Responder
	var actions []Action
	for _, id := range s.PendingSeven {
		plays := cardPlays(s, responder, id, SourceDeck)
		if len(plays) == 0 {
			plays = append(plays, Action{
				Type:     ActionDiscardRevealed,
				PlayedBy: responder,
				Source:   SourceDeck,
				CardID:   id,
			})
		}
		actions = append(actions, plays...)
	}
	return actions
}

func stalemateResponseActions(s *GameState) []Action {
	responder := s.Phase.Responder
	return []Action{
		{Type: ActionAcceptStalemate, PlayedBy: responder},
		{Type: ActionRejectStalemate, PlayedBy: responder},
	}
}
