package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/clubratings/club-ratings/clubs"
	"github.com/clubratings/club-ratings/models"
	"github.com/clubratings/club-ratings/repositories"
	"github.com/clubratings/club-ratings/storage"
)

const maxSecondaryClubs = 2

// Типы контента, принимаемые для аватара.
var allowedAvatarTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

type UpdateProfileInput struct {
	DisplayName *string
	PhotoURL    *string
}

type UserService interface {
	// EnsureProfile создаёт профиль при первом входе и синхронизирует
	// зеркальные поля провайдера аутентификации.
	EnsureProfile(ctx context.Context, id, email, displayName string, photoURL *string) (*models.User, error)
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*models.User, error)

	// SetPrimaryClub меняет основной клуб. Все валорации пользователя при
	// этом удаляются: оценки имеют смысл только в контексте клуба.
	SetPrimaryClub(ctx context.Context, userID, clubID string) (*models.User, error)
	SetSecondaryClubs(ctx context.Context, userID string, clubIDs []string) (*models.User, error)

	UploadAvatar(ctx context.Context, userID, contentType string, body io.Reader) (*models.User, error)

	// DeleteAccount удаляет профиль со всеми данными (валорации, комментарии,
	// реакции, дружбы и уведомления каскадируются по внешним ключам).
	DeleteAccount(ctx context.Context, userID string) error
}

type userService struct {
	userRepo   repositories.UserRepository
	ratingRepo repositories.RatingRepository
	uploader   storage.FileUploader
	logger     *slog.Logger
}

func NewUserService(
	userRepo repositories.UserRepository,
	ratingRepo repositories.RatingRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		userRepo:   userRepo,
		ratingRepo: ratingRepo,
		uploader:   uploader,
		logger:     logger,
	}
}

func (s *userService) EnsureProfile(ctx context.Context, id, email, displayName string, photoURL *string) (*models.User, error) {
	if id == "" || email == "" {
		return nil, ErrValidationFailed
	}
	user := &models.User{
		ID:          id,
		Email:       email,
		DisplayName: displayName,
		PhotoURL:    photoURL,
	}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to upsert user %s: %w", id, err)
	}
	s.resolveAvatarURL(user)
	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	s.resolveAvatarURL(user)
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		if name == "" {
			return nil, ErrValidationFailed
		}
		user.DisplayName = name
	}
	if input.PhotoURL != nil {
		user.PhotoURL = input.PhotoURL
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", userID, err)
	}
	return user, nil
}

func (s *userService) SetPrimaryClub(ctx context.Context, userID, clubID string) (*models.User, error) {
	if !clubs.IsValidID(clubID) {
		return nil, ErrUnknownClub
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.ClubID != nil && *user.ClubID == clubID {
		return user, nil
	}

	// Оценки привязаны к точке зрения болельщика старого клуба.
	deleted, err := s.ratingRepo.DeleteAllByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete ratings on club switch: %w", err)
	}
	if deleted > 0 {
		s.logger.Info("deleted ratings on club switch",
			slog.String("user_id", userID),
			slog.Int64("count", deleted))
	}

	user.ClubID = &clubID

	// Новый основной клуб выбывает из дополнительных.
	secondary := make([]string, 0, len(user.SecondaryClubIDs))
	for _, id := range user.SecondaryClubIDs {
		if id != clubID {
			secondary = append(secondary, id)
		}
	}
	user.SecondaryClubIDs = secondary

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", userID, err)
	}
	return user, nil
}

func (s *userService) SetSecondaryClubs(ctx context.Context, userID string, clubIDs []string) (*models.User, error) {
	if len(clubIDs) > maxSecondaryClubs {
		return nil, ErrSecondaryClubLimit
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.ClubID == nil {
		return nil, ErrClubNotSelected
	}

	seen := make(map[string]bool, len(clubIDs))
	unique := make([]string, 0, len(clubIDs))
	for _, id := range clubIDs {
		if !clubs.IsValidID(id) {
			return nil, ErrUnknownClub
		}
		if id == *user.ClubID {
			return nil, ErrSecondaryClubOverlap
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}

	user.SecondaryClubIDs = unique
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", userID, err)
	}
	return user, nil
}

func (s *userService) UploadAvatar(ctx context.Context, userID, contentType string, body io.Reader) (*models.User, error) {
	if s.uploader == nil {
		return nil, ErrAvatarStorageDisabled
	}
	ext, ok := allowedAvatarTypes[contentType]
	if !ok {
		return nil, ErrInvalidAvatarType
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatars/%s.%s", userID, ext)
	result, err := s.uploader.Upload(ctx, key, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar for %s: %w", userID, err)
	}

	// Старый файл убираем, если расширение сменилось.
	if user.AvatarKey != nil && *user.AvatarKey != result.Key {
		if delErr := s.uploader.Delete(ctx, *user.AvatarKey); delErr != nil {
			s.logger.Warn("failed to delete previous avatar",
				slog.String("key", *user.AvatarKey),
				slog.Any("error", delErr))
		}
	}

	if err := s.userRepo.SetAvatarKey(ctx, userID, &result.Key); err != nil {
		return nil, fmt.Errorf("failed to store avatar key for %s: %w", userID, err)
	}
	user.AvatarKey = &result.Key
	s.resolveAvatarURL(user)
	return user, nil
}

func (s *userService) DeleteAccount(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user %s: %w", userID, err)
	}

	if user.AvatarKey != nil && s.uploader != nil {
		if delErr := s.uploader.Delete(ctx, *user.AvatarKey); delErr != nil {
			s.logger.Warn("failed to delete avatar of removed account",
				slog.String("key", *user.AvatarKey),
				slog.Any("error", delErr))
		}
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user %s: %w", userID, err)
	}
	s.logger.Info("account deleted", slog.String("user_id", userID))
	return nil
}

func (s *userService) resolveAvatarURL(user *models.User) {
	if s.uploader == nil || user.AvatarKey == nil {
		return
	}
	url := s.uploader.PublicURL(*user.AvatarKey)
	if url != "" {
		user.AvatarURL = &url
	}
}
