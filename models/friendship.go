package models

import "time"

// FriendRequestStatus — состояние заявки в друзья.
type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestRejected FriendRequestStatus = "rejected"
)

// FriendRequest — направленная заявка в друзья.
type FriendRequest struct {
	ID          int                 `json:"id" db:"id"`
	SenderID    string              `json:"sender_id" db:"sender_id"`
	ReceiverID  string              `json:"receiver_id" db:"receiver_id"`
	Status      FriendRequestStatus `json:"status" db:"status"`
	CreatedAt   time.Time           `json:"created_at" db:"created_at"`
	RespondedAt *time.Time          `json:"responded_at,omitempty" db:"responded_at"`

	Sender *PublicProfile `json:"sender,omitempty" db:"-"`
}

// Friendship — симметричная связь двух пользователей.
// Хранится одной строкой с нормализованным порядком идентификаторов
// (UserLow < UserHigh), записывается и удаляется в одной транзакции.
type Friendship struct {
	UserLow   string    `json:"-" db:"user_low"`
	UserHigh  string    `json:"-" db:"user_high"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NormalizePair упорядочивает пару идентификаторов для Friendship.
func NormalizePair(a, b string) (low, high string) {
	if a < b {
		return a, b
	}
	return b, a
}
