package game

// Game-law constants. The deal mirrors the physical game: the player
// who goes first is dealt one card fewer than the dealer.
const (
	FirstPlayerDeal = 5
	DealerDeal      = 6
	HandLimit       = 8
	BaseTarget      = 21
	DeckSize        = 52

	// fiveDrawCount is how many cards a resolved Five draws after its
	// discard, still capped by HandLimit and the deck.
	fiveDrawCount = 3
	// sevenRevealCount is how many deck cards a resolved Seven reveals.
	sevenRevealCount = 2
	// fourDiscardCount is how many cards a resolved Four forces the
	// opponent to discard.
	fourDiscardCount = 2
	// passLimit ends the game as a draw after this many consecutive
	// forced passes.
	passLimit = 3
)

// kingTargets maps the number of Kings a player controls to their
// adjusted win target.
var kingTargets = [...]int{BaseTarget, 14, 10, 5, 0}

// GameState is the complete snapshot of one game. All 52 cards live in
// the Cards arena keyed by id; hands, fields, deck, discard and
// attachments reference them by id only. The deck's top card is the
// last element.
type GameState struct {
	Cards   map[string]*Card `json:"cards"`
	Hands   [2][]string      `json:"hands"`
	Fields  [2][]string      `json:"fields"`
	Deck    []string         `json:"deck"`
	Discard []string         `json:"discard"`

	// ActivePlayer is the player whose turn it is. It is only
	// meaningful while the phase is Idle; during sub-resolutions the
	// acting player is the phase's Responder.
	ActivePlayer int `json:"active_player"`
	// Turn counts whole turns: it increments whenever play returns to
	// player 0.
	Turn int `json:"turn"`
	// OverallTurn counts every sub-turn taken by either player.
	OverallTurn int `json:"overall_turn"`

	Phase Phase `json:"phase"`

	// PendingSeven holds revealed deck cards still awaiting a choice.
	// It survives nested phases so a one-off played from the reveal
	// returns here after its own resolution completes.
	PendingSeven []string `json:"pending_seven,omitempty"`

	// ReplayLocks maps a card id to the OverallTurn during which its
	// owner may not replay it (set when a Nine returns it to hand).
	ReplayLocks map[string]int `json:"replay_locks,omitempty"`

	// ConsecutivePasses tracks forced passes after deck exhaustion.
	ConsecutivePasses int `json:"consecutive_passes,omitempty"`

	// StalemateDeniedTurn records, per player, the OverallTurn of their
	// last rejected stalemate request; -1 means never.
	StalemateDeniedTurn [2]int `json:"stalemate_denied_turn"`
}

// NewGame deals a fresh game from the given deck order. The first
// FirstPlayerDeal cards go to player 0, the next DealerDeal cards to
// player 1, and the rest form the deck with its top at the end.
func NewGame(deck []*Card) *GameState {
	s := &GameState{
		Cards:               make(map[string]*Card, len(deck)),
		ReplayLocks:         make(map[string]int),
		StalemateDeniedTurn: [2]int{-1, -1},
	}
	for _, card := range deck {
		s.Cards[card.ID] = card
	}
	for i, card := range deck {
		switch {
		case i < FirstPlayerDeal:
			s.Hands[0] = append(s.Hands[0], card.ID)
		case i < FirstPlayerDeal+DealerDeal:
			s.Hands[1] = append(s.Hands[1], card.ID)
		default:
			s.Deck = append(s.Deck, card.ID)
		}
	}
	return s
}

// card returns the arena entry for id. A miss is a programming error:
// ids only ever come from the arena itself.
func (s *GameState) card(id string) *Card {
	card, ok := s.Cards[id]
	if !ok {
		panic("game: unknown card id " + id)
	}
	return card
}

// Opponent returns the other player's index.
func Opponent(player int) int {
	return 1 - player
}

// ActingPlayer returns the player expected to submit the next action.
func (s *GameState) ActingPlayer() int {
	if s.Phase.Idle() {
		return s.ActivePlayer
	}
	return s.Phase.Responder
}

// PointCards returns the ids of every point card currently counting
// toward the player's score: unstolen points on their own field plus
// points stolen from the opponent's field.
func (s *GameState) PointCards(player int) []string {
	var ids []string
	for _, id := range s.Fields[player] {
		card := s.card(id)
		if card.Purpose == PurposePoints && !card.IsStolen() {
			ids = append(ids, id)
		}
	}
	for _, id := range s.Fields[Opponent(player)] {
		card := s.card(id)
		if card.Purpose == PurposePoints && card.IsStolen() {
			ids = append(ids, id)
		}
	}
	return ids
}

// Score sums the point values currently counting toward the player.
func (s *GameState) Score(player int) int {
	total := 0
	for _, id := range s.PointCards(player) {
		total += s.card(id).PointValue()
	}
	return total
}

// TargetScore returns the player's win target adjusted for Kings in
// play. Kings sit on their player's own field and cannot be stolen.
func (s *GameState) TargetScore(player int) int {
	kings := 0
	for _, id := range s.Fields[player] {
		if s.card(id).Rank == RankKing {
			kings++
		}
	}
	if kings >= len(kingTargets) {
		kings = len(kingTargets) - 1
	}
	return kingTargets[kings]
}

// HasQueen reports whether the player has a Queen in play other than
// the excluded card. Queens protect the rest of their player's field
// from targeting but never protect themselves.
func (s *GameState) HasQueen(player int, exclude string) bool {
	for _, id := range s.Fields[player] {
		card := s.card(id)
		if card.Rank == RankQueen && card.Purpose == PurposeFaceCard && id != exclude {
			return true
		}
	}
	return false
}

// protectionOwner returns the player whose Queen would shield the
// card: the controller for field cards, the Jack's own player for
// attachments.
func (s *GameState) protectionOwner(card *Card) int {
	if card.Purpose == PurposeJack {
		return card.PlayedBy
	}
	return card.Controller()
}

// IsProtected reports whether the card is shielded from opposing
// targeting by a Queen.
func (s *GameState) IsProtected(id string) bool {
	card := s.card(id)
	owner := s.protectionOwner(card)
	if owner == NoPlayer {
		return false
	}
	return s.HasQueen(owner, id)
}

// HandVisibleTo reports whether viewer may see owner's hand. A hand is
// always visible to its owner, and to the opponent while the opponent
// has a glasses Eight in play.
func (s *GameState) HandVisibleTo(viewer, owner int) bool {
	if viewer == owner {
		return true
	}
	for _, id := range s.Fields[viewer] {
		card := s.card(id)
		if card.Rank == RankEight && card.Purpose == PurposeFaceCard {
			return true
		}
	}
	return false
}

// Winner returns the game's winner once a player's score meets their
// adjusted target. The active player is checked first so simultaneous
// qualification resolves in favor of the player completing the action.
func (s *GameState) Winner() (int, bool) {
	for _, player := range [2]int{s.ActivePlayer, Opponent(s.ActivePlayer)} {
		if s.Score(player) >= s.TargetScore(player) {
			return player, true
		}
	}
	return NoPlayer, false
}

// CardCount totals cards across every zone, including attachments, the
// pending seven reveal and a one-off held in a phase payload. It must
// always equal DeckSize; anything else is a programming error.
func (s *GameState) CardCount() int {
	count := len(s.Deck) + len(s.Discard) + len(s.PendingSeven)
	for player := 0; player < 2; player++ {
		count += len(s.Hands[player])
		for _, id := range s.Fields[player] {
			count += 1 + len(s.card(id).Attachments)
		}
	}
	if s.Phase.OneOffCard != "" {
		count++
	}
	return count
}

// Clone deep-copies the state. Apply operates on a clone so a rejected
// or failed action can never leave a partially mutated state behind.
func (s *GameState) Clone() *GameState {
	out := &GameState{
		Cards:               make(map[string]*Card, len(s.Cards)),
		Deck:                append([]string(nil), s.Deck...),
		Discard:             append([]string(nil), s.Discard...),
		ActivePlayer:        s.ActivePlayer,
		Turn:                s.Turn,
		OverallTurn:         s.OverallTurn,
		Phase:               s.Phase,
		ConsecutivePasses:   s.ConsecutivePasses,
		StalemateDeniedTurn: s.StalemateDeniedTurn,
	}
	for id, card := range s.Cards {
		copied := *card
		copied.Attachments = append([]string(nil), card.Attachments...)
		out.Cards[id] = &copied
	}
	for player := 0; player < 2; player++ {
		out.Hands[player] = append([]string(nil), s.Hands[player]...)
		out.Fields[player] = append([]string(nil), s.Fields[player]...)
	}
	if s.PendingSeven != nil {
		out.PendingSeven = append([]string(nil), s.PendingSeven...)
	}
	out.ReplayLocks = make(map[string]int, len(s.ReplayLocks))
	for id, turn := range s.ReplayLocks {
		out.ReplayLocks[id] = turn
	}
	return out
}

// locked reports whether the card may not be played this sub-turn
// because a Nine returned it to hand last turn.
func (s *GameState) locked(id string) bool {
	turn, ok := s.ReplayLocks[id]
	return ok && turn == s.OverallTurn
}

// advanceTurn flips the active player and expires stale replay locks.
func (s *GameState) advanceTurn() {
	s.ActivePlayer = Opponent(s.ActivePlayer)
	s.OverallTurn++
	if s.ActivePlayer == 0 {
		s.Turn++
	}
	for id, turn := range s.ReplayLocks {
		if turn < s.OverallTurn {
			delete(s.ReplayLocks, id)
		}
	}
}
