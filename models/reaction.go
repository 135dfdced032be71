package models

import "time"

// ReactionType — тип реакции на валорацию.
type ReactionType string

const (
	ReactionLike ReactionType = "like"
	ReactionFire ReactionType = "fire"
	ReactionStar ReactionType = "star"
	ReactionClap ReactionType = "clap"
)

// ReactionTypes — все допустимые типы в стабильном порядке.
var ReactionTypes = []ReactionType{ReactionLike, ReactionFire, ReactionStar, ReactionClap}

func (t ReactionType) Valid() bool {
	switch t {
	case ReactionLike, ReactionFire, ReactionStar, ReactionClap:
		return true
	}
	return false
}

// Reaction — активная реакция пользователя на валорацию.
// На пару (rating, user) приходится не больше одной записи.
type Reaction struct {
	RatingID  int          `json:"rating_id" db:"rating_id"`
	UserID    string       `json:"user_id" db:"user_id"`
	Type      ReactionType `json:"type" db:"type"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`

	User *PublicProfile `json:"user,omitempty" db:"-"`
}
