package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed       = errors.New("validation failed")
	ErrUnknownClub            = errors.New("unknown club")
	ErrClubNotSelected        = errors.New("primary club is not selected")
	ErrSecondaryClubLimit     = errors.New("no more than two secondary clubs allowed")
	ErrSecondaryClubOverlap   = errors.New("secondary clubs must differ from the primary club")
	ErrRatingAlreadyExists    = errors.New("this match is already rated")
	ErrScoreOutOfRange        = errors.New("player score must be between 1 and 10")
	ErrEmptyComment           = errors.New("comment body is empty")
	ErrInvalidReactionType    = errors.New("invalid reaction type")
	ErrSelfFriendRequest      = errors.New("cannot send a friend request to yourself")
	ErrAlreadyFriends         = errors.New("users are already friends")
	ErrFriendRequestPending   = errors.New("friend request already pending")
	ErrUnsupportedMatchSource = errors.New("unsupported match data source")
	ErrInvalidAvatarType      = errors.New("unsupported avatar content type")
	ErrAvatarStorageDisabled  = errors.New("avatar storage is not configured")

	// Ошибки авторизации
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound          = errors.New("user not found")
	ErrRatingNotFound        = errors.New("rating not found")
	ErrCommentNotFound       = errors.New("comment not found")
	ErrFriendRequestNotFound = errors.New("friend request not found")
	ErrFriendshipNotFound    = errors.New("friendship not found")
	ErrNotificationNotFound  = errors.New("notification not found")
)
