package game

// Effect describes what one applied action did, in terms suitable for
// a human-readable history log. The engine produces one per Apply; it
// never stores them itself.
type Effect struct {
	Type        ActionType `json:"type"`
	Player      int        `json:"player"`
	Turn        int        `json:"turn"`
	OverallTurn int        `json:"overall_turn"`
	Card        string     `json:"card,omitempty"`
	Target      string     `json:"target,omitempty"`
	Scrapped    []string   `json:"scrapped,omitempty"`
	Drawn       int        `json:"drawn,omitempty"`
	Revealed    []string   `json:"revealed,omitempty"`
	Countered   bool       `json:"countered,omitempty"`
	Description string     `json:"description"`
}
