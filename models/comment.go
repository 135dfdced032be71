package models

import "time"

// Comment — комментарий к валорации.
type Comment struct {
	ID        int       `json:"id" db:"id"`
	RatingID  int       `json:"rating_id" db:"rating_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Author *PublicProfile `json:"author,omitempty" db:"-"`
}
