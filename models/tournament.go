package models

import "time"

// TournamentStatus mirrors the ENUM in the database.
type TournamentStatus string

const (
	TournamentUpcoming  TournamentStatus = "upcoming"
	TournamentActive    TournamentStatus = "active"
	TournamentCompleted TournamentStatus = "completed"
	TournamentCanceled  TournamentStatus = "canceled"
)

type Tournament struct {
	ID          int              `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Description *string          `json:"description,omitempty" db:"description"`
	OrganizerID int              `json:"organizer_id" db:"organizer_id"`
	StartDate   time.Time        `json:"start_date" db:"start_date"`
	EndDate     time.Time        `json:"end_date" db:"end_date"`
	Status      TournamentStatus `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`

	Stages []Stage `json:"stages,omitempty" db:"-"`
}
