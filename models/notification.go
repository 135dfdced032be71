package models

import (
	"encoding/json"
	"time"
)

// NotificationType — тип события, породившего уведомление.
type NotificationType string

const (
	NotificationComment        NotificationType = "comment"
	NotificationReaction       NotificationType = "reaction"
	NotificationFriendRequest  NotificationType = "friend_request"
	NotificationFriendAccepted NotificationType = "friend_accepted"
)

// Notification — запись fan-out, создаваемая как побочный эффект комментариев,
// реакций и событий заявок в друзья.
type Notification struct {
	ID        int              `json:"id" db:"id"`
	UserID    string           `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Message   string           `json:"message" db:"message"`
	Payload   json.RawMessage  `json:"payload,omitempty" db:"payload"`
	Read      bool             `json:"read" db:"read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	ReadAt    *time.Time       `json:"read_at,omitempty" db:"read_at"`
}
