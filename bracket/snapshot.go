// Package bracket implements the tournament bracket structure engine: the
// data model for a stage's matches and alliances, consistency validation,
// derived statistics, advancement graph resolution, and normalization into a
// renderer-neutral column/bucket layout.
//
// Every function in this package is a pure transformation over an immutable
// Snapshot. The engine holds no state between calls and never retains a
// reference to its input, so any number of analyses may run concurrently over
// the same snapshot.
package bracket

// AllianceColor identifies one of the two sides of a match.
type AllianceColor string

const (
	ColorRed  AllianceColor = "RED"
	ColorBlue AllianceColor = "BLUE"
)

// Winner is the recorded outcome of a completed match.
type Winner string

const (
	WinnerRed  Winner = "RED"
	WinnerBlue Winner = "BLUE"
	WinnerTie  Winner = "TIE"
)

// MatchStatus mirrors the backend's match lifecycle states.
type MatchStatus string

const (
	StatusPending    MatchStatus = "PENDING"
	StatusInProgress MatchStatus = "IN_PROGRESS"
	StatusCompleted  MatchStatus = "COMPLETED"
	StatusCancelled  MatchStatus = "CANCELLED"
)

// TeamSlot is one team's seat within an alliance. StationPosition values
// within an alliance must form a contiguous 1..N sequence; the validator
// reports any violation.
type TeamSlot struct {
	TeamID          string  `json:"teamId"`
	TeamNumber      *int    `json:"teamNumber,omitempty"`
	TeamName        *string `json:"teamName,omitempty"`
	StationPosition int     `json:"stationPosition"`
	Surrogate       bool    `json:"isSurrogate"`
}

// Alliance is one side of a match. An alliance with zero teams is unresolved:
// its occupant is decided by an upstream match that has not finished yet.
type Alliance struct {
	ID         string        `json:"id"`
	Color      AllianceColor `json:"color"`
	Score      *int          `json:"score,omitempty"`
	AutoScore  *int          `json:"autoScore,omitempty"`
	DriveScore *int          `json:"driveScore,omitempty"`
	Teams      []TeamSlot    `json:"teamAlliances"`
}

// Resolved reports whether the alliance's occupant is known.
func (a *Alliance) Resolved() bool {
	return len(a.Teams) > 0
}

// Match is a single scheduled or played match. FeedsInto and LoserFeedsInto
// are plain identifier references forming a forward advancement graph; the
// graph is reconstructed on demand by scanning, never kept as live pointers.
type Match struct {
	ID              string        `json:"id"`
	MatchNumber     *int          `json:"matchNumber,omitempty"`
	Status          MatchStatus   `json:"status"`
	RoundNumber     *int          `json:"roundNumber,omitempty"`
	BracketSlot     *int          `json:"bracketSlot,omitempty"`
	RecordBucket    *string       `json:"recordBucket,omitempty"`
	WinningAlliance *Winner       `json:"winningAlliance,omitempty"`
	Alliances       []Alliance    `json:"alliances"`
	FeedsInto       *string       `json:"feedsIntoMatchId,omitempty"`
	LoserFeedsInto  *string       `json:"loserFeedsIntoMatchId,omitempty"`
}

// Alliance returns the match's alliance of the given color, or nil.
func (m *Match) Alliance(color AllianceColor) *Alliance {
	for i := range m.Alliances {
		if m.Alliances[i].Color == color {
			return &m.Alliances[i]
		}
	}
	return nil
}

// StructureType tags the three supported stage formats.
type StructureType string

const (
	StructureElimination StructureType = "elimination"
	StructureSwiss       StructureType = "swiss"
	StructureStandard    StructureType = "standard"
)

// Round is an ordered grouping of matches within a stage structure.
type Round struct {
	Number   int      `json:"roundNumber"`
	Label    string   `json:"label,omitempty"`
	MatchIDs []string `json:"matches"`
}

// Bucket groups Swiss-format matches by win-loss record instead of by round.
type Bucket struct {
	Record   string   `json:"record"`
	MatchIDs []string `json:"matches"`
}

// Structure is the stage-level round/bucket organization, shared by the whole
// stage rather than any individual match. Exactly three implementations
// exist: EliminationStructure, SwissStructure, and StandardStructure. The
// normalizer dispatches on the concrete type.
type Structure interface {
	Type() StructureType
}

// EliminationStructure organizes a single or double elimination stage as an
// ordered sequence of rounds. Double elimination is not a separate structure:
// it is detected from loser-path advancement links on the matches.
type EliminationStructure struct {
	Rounds []Round `json:"rounds"`
}

func (EliminationStructure) Type() StructureType { return StructureElimination }

// SwissStructure carries two parallel views over the same match set: rounds
// and record buckets. Consumers choose which view to render.
type SwissStructure struct {
	Rounds  []Round  `json:"rounds"`
	Buckets []Bucket `json:"buckets"`
}

func (SwissStructure) Type() StructureType { return StructureSwiss }

// StandardStructure is generic round-based staging without advancement graph
// semantics. Its rounds may be empty, in which case grouping falls back to
// each match's own round number.
type StandardStructure struct {
	Rounds []Round `json:"rounds"`
}

func (StandardStructure) Type() StructureType { return StructureStandard }

// Snapshot is the unit of work for the engine: one stage's matches and
// structural metadata, built fresh from backend state for each analysis pass.
// Callers must not mutate a snapshot while an analysis over it is in flight.
type Snapshot struct {
	Matches          []Match   `json:"matches"`
	Structure        Structure `json:"structure"`
	TeamsPerAlliance int       `json:"teamsPerAlliance"`
}

// matchIndex maps match IDs to their position in s.Matches. Later duplicates
// do not displace earlier entries, keeping lookups deterministic.
func (s *Snapshot) matchIndex() map[string]int {
	idx := make(map[string]int, len(s.Matches))
	for i := range s.Matches {
		if _, ok := idx[s.Matches[i].ID]; !ok {
			idx[s.Matches[i].ID] = i
		}
	}
	return idx
}

// MatchByID returns the snapshot's match with the given ID, or nil.
func (s *Snapshot) MatchByID(id string) *Match {
	for i := range s.Matches {
		if s.Matches[i].ID == id {
			return &s.Matches[i]
		}
	}
	return nil
}
