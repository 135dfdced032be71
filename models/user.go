package models

import "time"

// User — зеркало профиля из внешнего identity provider плюс настройки приложения.
// ID совпадает с subject токена, выданного провайдером.
type User struct {
	ID          string  `json:"id" db:"id"`
	Email       string  `json:"email" db:"email"`
	DisplayName string  `json:"display_name" db:"display_name"`
	PhotoURL    *string `json:"photo_url,omitempty" db:"photo_url"`

	// FriendCode — короткий публичный идентификатор для поиска друзьями,
	// не связанный с ID аутентификации.
	FriendCode *string `json:"friend_code,omitempty" db:"friend_code"`

	ClubID           *string  `json:"club_id,omitempty" db:"club_id"`
	SecondaryClubIDs []string `json:"secondary_club_ids" db:"secondary_club_ids"`

	AvatarKey *string `json:"-" db:"avatar_key"`
	AvatarURL *string `json:"avatar_url,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PublicProfile — срез профиля, который видят другие пользователи.
type PublicProfile struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	PhotoURL    *string `json:"photo_url,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	FriendCode  *string `json:"friend_code,omitempty"`
	ClubID      *string `json:"club_id,omitempty"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
		AvatarURL:   u.AvatarURL,
		FriendCode:  u.FriendCode,
		ClubID:      u.ClubID,
	}
}
