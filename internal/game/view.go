package game

// CardView is a card as shown to a client. Attachments are expanded
// inline so a client never needs the arena to render a board.
type CardView struct {
	ID          string     `json:"id"`
	Suit        string     `json:"suit"`
	Rank        string     `json:"rank"`
	Name        string     `json:"name"`
	PointValue  int        `json:"point_value"`
	PlayedBy    int        `json:"played_by"`
	Purpose     Purpose    `json:"purpose,omitempty"`
	Controller  int        `json:"controller"`
	Attachments []CardView `json:"attachments,omitempty"`
}

// PlayerView is one player's side of the board. Hand is nil when the
// viewer may not see it; HandSize is always populated.
type PlayerView struct {
	HandSize    int        `json:"hand_size"`
	Hand        []CardView `json:"hand,omitempty"`
	Field       []CardView `json:"field"`
	Score       int        `json:"score"`
	TargetScore int        `json:"target_score"`
}

// PhaseView is the client-facing phase, with card ids resolved to
// views.
type PhaseView struct {
	Kind        string    `json:"kind"`
	Responder   int       `json:"responder"`
	OneOff      *CardView `json:"one_off,omitempty"`
	Target      *CardView `json:"target,omitempty"`
	Remaining   int       `json:"remaining,omitempty"`
	RequestedBy int       `json:"requested_by,omitempty"`
	Winner      int       `json:"winner"`
	Draw        bool      `json:"draw,omitempty"`
}

// ActionView pairs a legal action with its human-readable label.
type ActionView struct {
	Action
	Label string `json:"label"`
}

// GameStateView is the complete redacted snapshot sent to one viewer.
// The opponent's hand appears only while the viewer has a glasses
// Eight in play; the deck is never more than a count.
type GameStateView struct {
	Viewer       int           `json:"viewer"`
	ActivePlayer int           `json:"active_player"`
	ActingPlayer int           `json:"acting_player"`
	Turn         int           `json:"turn"`
	OverallTurn  int           `json:"overall_turn"`
	Phase        PhaseView     `json:"phase"`
	Players      [2]PlayerView `json:"players"`
	DeckSize     int           `json:"deck_size"`
	Discard      []CardView    `json:"discard"`
	PendingSeven []CardView    `json:"pending_seven,omitempty"`
	GameOver     bool          `json:"game_over"`
	Checksum     string        `json:"checksum"`
}

func (s *GameState) cardView(id string) CardView {
	card := s.card(id)
	view := CardView{
		ID:         card.ID,
		Suit:       card.Suit.String(),
		Rank:       card.Rank.String(),
		Name:       card.String(),
		PointValue: card.PointValue(),
		PlayedBy:   card.PlayedBy,
		Purpose:    card.Purpose,
		Controller: card.Controller(),
	}
	for _, attached := range card.Attachments {
		view.Attachments = append(view.Attachments, s.cardView(attached))
	}
	return view
}

func (s *GameState) cardViews(ids []string) []CardView {
	views := make([]CardView, 0, len(ids))
	for _, id := range ids {
		views = append(views, s.cardView(id))
	}
	return views
}

func (s *GameState) phaseView() PhaseView {
	view := PhaseView{
		Kind:        s.Phase.Kind.String(),
		Responder:   s.Phase.Responder,
		Remaining:   s.Phase.Remaining,
		RequestedBy: s.Phase.RequestedBy,
		Winner:      s.Phase.Winner,
		Draw:        s.Phase.Draw,
	}
	if !s.Phase.Terminal() {
		view.Winner = NoPlayer
	}
	if s.Phase.OneOffCard != "" {
		oneOff := s.cardView(s.Phase.OneOffCard)
		view.OneOff = &oneOff
	}
	if s.Phase.OneOffTarget != "" {
		target := s.cardView(s.Phase.OneOffTarget)
		view.Target = &target
	}
	return view
}

// View renders the state as seen by the given player. Revealed Seven
// cards are public: both players watch them being played or discarded.
func (s *GameState) View(viewer int) GameStateView {
	view := GameStateView{
		Viewer:       viewer,
		ActivePlayer: s.ActivePlayer,
		ActingPlayer: s.ActingPlayer(),
		Turn:         s.Turn,
		OverallTurn:  s.OverallTurn,
		Phase:        s.phaseView(),
		DeckSize:     len(s.Deck),
		Discard:      s.cardViews(s.Discard),
		PendingSeven: s.cardViews(s.PendingSeven),
		GameOver:     s.Phase.Terminal(),
		Checksum:     s.Checksum(),
	}
	for player := 0; player < 2; player++ {
		side := PlayerView{
			HandSize:    len(s.Hands[player]),
			Field:       s.cardViews(s.Fields[player]),
			Score:       s.Score(player),
			TargetScore: s.TargetScore(player),
		}
		if s.HandVisibleTo(viewer, player) {
			side.Hand = s.cardViews(s.Hands[player])
		}
		view.Players[player] = side
	}
	return view
}

// ActionViews enumerates the legal actions with display labels.
func ActionViews(s *GameState) []ActionView {
	actions := LegalActions(s)
	views := make([]ActionView, 0, len(actions))
	for _, action := range actions {
		views = append(views, ActionView{Action: action, Label: action.Label(s)})
	}
	return views
}
