package models

import "time"

// Team is a robotics team registered with the event, identified to humans by
// its team number.
type Team struct {
	ID        int       `json:"id" db:"id"`
	Number    int       `json:"number" db:"number"`
	Name      string    `json:"name" db:"name"`
	School    *string   `json:"school,omitempty" db:"school"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}
