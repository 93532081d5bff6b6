package models

import "time"

// StageKind is the tournament format of one stage. The values match the
// structure tags of the bracket engine.
type StageKind string

const (
	StageElimination StageKind = "elimination"
	StageSwiss       StageKind = "swiss"
	StageStandard    StageKind = "standard"
)

// Stage is one phase of a tournament (qualification, playoff, finals). The
// round/bucket organization is stored as a JSON document and decoded into the
// engine's structure variant when a snapshot is assembled.
type Stage struct {
	ID               string    `json:"id" db:"id"`
	TournamentID     int       `json:"tournament_id" db:"tournament_id"`
	Name             string    `json:"name" db:"name"`
	Kind             StageKind `json:"kind" db:"kind"`
	TeamsPerAlliance int       `json:"teams_per_alliance" db:"teams_per_alliance"`
	StructureJSON    *string   `json:"-" db:"structure_json"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// StageMatch is the persistence row for a match within a stage. The
// advancement columns hold match IDs, not foreign keys with cascade
// semantics: a dangling reference is a data problem surfaced by the engine's
// validator, not a constraint violation.
type StageMatch struct {
	ID              string    `json:"id" db:"id"`
	StageID         string    `json:"stage_id" db:"stage_id"`
	MatchNumber     *int      `json:"match_number,omitempty" db:"match_number"`
	Status          string    `json:"status" db:"status"`
	RoundNumber     *int      `json:"round_number,omitempty" db:"round_number"`
	BracketSlot     *int      `json:"bracket_slot,omitempty" db:"bracket_slot"`
	RecordBucket    *string   `json:"record_bucket,omitempty" db:"record_bucket"`
	WinningAlliance *string   `json:"winning_alliance,omitempty" db:"winning_alliance"`
	FeedsInto       *string   `json:"feeds_into_match_id,omitempty" db:"feeds_into_match_id"`
	LoserFeedsInto  *string   `json:"loser_feeds_into_match_id,omitempty" db:"loser_feeds_into_match_id"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// StageAlliance is one side of a stored match.
type StageAlliance struct {
	ID         string `json:"id" db:"id"`
	MatchID    string `json:"match_id" db:"match_id"`
	Color      string `json:"color" db:"color"`
	Score      *int   `json:"score,omitempty" db:"score"`
	AutoScore  *int   `json:"auto_score,omitempty" db:"auto_score"`
	DriveScore *int   `json:"drive_score,omitempty" db:"drive_score"`

	Teams []AllianceTeam `json:"teams" db:"-"`
}

// AllianceTeam seats a team in an alliance at a station position.
type AllianceTeam struct {
	AllianceID      string `json:"alliance_id" db:"alliance_id"`
	TeamID          int    `json:"team_id" db:"team_id"`
	StationPosition int    `json:"station_position" db:"station_position"`
	Surrogate       bool   `json:"is_surrogate" db:"is_surrogate"`

	TeamNumber *int    `json:"team_number,omitempty" db:"-"`
	TeamName   *string `json:"team_name,omitempty" db:"-"`
}
