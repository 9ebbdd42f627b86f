package game

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"

	"golang.org/x/crypto/blake2b"
)

// Checksum computes a deterministic digest of the full game state. Two
// states with the same checksum are semantically identical, so the
// digest guards against divergence between stored and replayed states.
func (s *GameState) Checksum() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "GAME:%d|%d|%d|%d|%d|%d\n",
		s.ActivePlayer, s.Turn, s.OverallTurn,
		s.ConsecutivePasses, s.StalemateDeniedTurn[0], s.StalemateDeniedTurn[1])
	fmt.Fprintf(&buf, "PHASE:%s|%d|%s|%d|%s|%s|%d|%d|%d|%t\n",
		s.Phase.Kind, s.Phase.Responder,
		s.Phase.OneOffCard, s.Phase.OneOffPlayer, s.Phase.OneOffTarget, s.Phase.OneOffSource,
		s.Phase.Remaining, s.Phase.RequestedBy, s.Phase.Winner, s.Phase.Draw)

	// Hand order carries no meaning; sort for determinism. Deck and
	// discard order is game state and hashes as-is.
	for player := 0; player < 2; player++ {
		hand := append([]string(nil), s.Hands[player]...)
		sort.Strings(hand)
		for _, id := range hand {
			fmt.Fprintf(&buf, "HAND%d:%s\n", player, id)
		}
		for _, id := range s.Fields[player] {
			fmt.Fprintf(&buf, "FIELD%d:%s\n", player, id)
		}
	}
	for _, id := range s.Deck {
		fmt.Fprintf(&buf, "DECK:%s\n", id)
	}
	for _, id := range s.Discard {
		fmt.Fprintf(&buf, "DISCARD:%s\n", id)
	}
	for _, id := range s.PendingSeven {
		fmt.Fprintf(&buf, "PENDING:%s\n", id)
	}

	cardIDs := make([]string, 0, len(s.Cards))
	for id := range s.Cards {
		cardIDs = append(cardIDs, id)
	}
	sort.Strings(cardIDs)
	for _, id := range cardIDs {
		card := s.Cards[id]
		fmt.Fprintf(&buf, "CARD:%s|%d|%d|%d|%s\n",
			id, card.Suit, card.Rank, card.PlayedBy, card.Purpose)
		for _, attached := range card.Attachments {
			fmt.Fprintf(&buf, "  ATTACHED:%s\n", attached)
		}
	}

	lockIDs := make([]string, 0, len(s.ReplayLocks))
	for id := range s.ReplayLocks {
		lockIDs = append(lockIDs, id)
	}
	sort.Strings(lockIDs)
	for _, id := range lockIDs {
		fmt.Fprintf(&buf, "LOCK:%s|%d\n", id, s.ReplayLocks[id])
	}

	sum := blake2b.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}
