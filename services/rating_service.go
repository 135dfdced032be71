package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/clubratings/club-ratings/models"
	"github.com/clubratings/club-ratings/repositories"
)

const (
	minPlayerScore = 1.0
	maxPlayerScore = 10.0
)

type RatingService interface {
	// Create сохраняет валорацию матча. Клуб должен быть основным или
	// дополнительным клубом пользователя, матч — ещё не оценённым.
	Create(ctx context.Context, userID, clubID string, match models.MatchInfo, players []models.RatedPlayer) (*models.Rating, error)
	Get(ctx context.Context, viewerID string, ratingID int) (*models.Rating, error)
	// UpdateScores целиком переписывает документ игроков валорации.
	UpdateScores(ctx context.Context, userID string, ratingID int, players []models.RatedPlayer) (*models.Rating, error)
	Delete(ctx context.Context, userID string, ratingID int) error

	// ListForUser возвращает валорации owner, видимые viewer.
	// Старые записи без клуба показываются только под основным клубом владельца.
	ListForUser(ctx context.Context, viewerID, ownerID string, clubID *string, limit, offset int) ([]models.Rating, error)
	// FriendsFeed — последние валорации друзей.
	FriendsFeed(ctx context.Context, userID string, limit int) ([]models.Rating, error)
}

type ratingService struct {
	ratingRepo     repositories.RatingRepository
	userRepo       repositories.UserRepository
	friendshipRepo repositories.FriendshipRepository
}

func NewRatingService(
	ratingRepo repositories.RatingRepository,
	userRepo repositories.UserRepository,
	friendshipRepo repositories.FriendshipRepository,
) RatingService {
	return &ratingService{
		ratingRepo:     ratingRepo,
		userRepo:       userRepo,
		friendshipRepo: friendshipRepo,
	}
}

func (s *ratingService) Create(ctx context.Context, userID, clubID string, match models.MatchInfo, players []models.RatedPlayer) (*models.Rating, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	if user.ClubID == nil {
		return nil, ErrClubNotSelected
	}
	if clubID != *user.ClubID && !contains(user.SecondaryClubIDs, clubID) {
		return nil, ErrUnknownClub
	}

	if match.MatchURL == "" || match.HomeTeam == "" || match.AwayTeam == "" {
		return nil, ErrValidationFailed
	}
	if err := validateScores(players); err != nil {
		return nil, err
	}

	// Ранняя проверка дубликата; уникальный индекс страхует от гонки.
	exists, err := s.ratingRepo.ExistsForMatch(ctx, userID, match.MatchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing rating: %w", err)
	}
	if exists {
		return nil, ErrRatingAlreadyExists
	}

	rating := &models.Rating{
		UserID:  userID,
		ClubID:  &clubID,
		Match:   match,
		Players: players,
	}
	if err := s.ratingRepo.Create(ctx, rating); err != nil {
		if errors.Is(err, repositories.ErrRatingDuplicate) {
			return nil, ErrRatingAlreadyExists
		}
		return nil, fmt.Errorf("failed to create rating: %w", err)
	}
	return rating, nil
}

func (s *ratingService) Get(ctx context.Context, viewerID string, ratingID int) (*models.Rating, error) {
	rating, err := s.ratingRepo.GetByID(ctx, ratingID)
	if err != nil {
		if errors.Is(err, repositories.ErrRatingNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, fmt.Errorf("failed to get rating %d: %w", ratingID, err)
	}

	if err := s.checkViewAccess(ctx, viewerID, rating.UserID); err != nil {
		return nil, err
	}
	return rating, nil
}

func (s *ratingService) UpdateScores(ctx context.Context, userID string, ratingID int, players []models.RatedPlayer) (*models.Rating, error) {
	rating, err := s.ratingRepo.GetByID(ctx, ratingID)
	if err != nil {
		if errors.Is(err, repositories.ErrRatingNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, fmt.Errorf("failed to get rating %d: %w", ratingID, err)
	}
	if rating.UserID != userID {
		return nil, ErrForbiddenOperation
	}

	if err := validateScores(players); err != nil {
		return nil, err
	}

	rating.Players = players
	if err := s.ratingRepo.Update(ctx, rating); err != nil {
		if errors.Is(err, repositories.ErrRatingNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, fmt.Errorf("failed to update rating %d: %w", ratingID, err)
	}
	return rating, nil
}

func (s *ratingService) Delete(ctx context.Context, userID string, ratingID int) error {
	rating, err := s.ratingRepo.GetByID(ctx, ratingID)
	if err != nil {
		if errors.Is(err, repositories.ErrRatingNotFound) {
			return ErrRatingNotFound
		}
		return fmt.Errorf("failed to get rating %d: %w", ratingID, err)
	}
	if rating.UserID != userID {
		return ErrForbiddenOperation
	}

	if err := s.ratingRepo.Delete(ctx, ratingID); err != nil {
		if errors.Is(err, repositories.ErrRatingNotFound) {
			return ErrRatingNotFound
		}
		return fmt.Errorf("failed to delete rating %d: %w", ratingID, err)
	}
	return nil
}

func (s *ratingService) ListForUser(ctx context.Context, viewerID, ownerID string, clubID *string, limit, offset int) ([]models.Rating, error) {
	if err := s.checkViewAccess(ctx, viewerID, ownerID); err != nil {
		return nil, err
	}

	filter := repositories.RatingFilter{
		ClubID: clubID,
		Limit:  limit,
		Offset: offset,
	}
	if clubID != nil {
		owner, err := s.userRepo.GetByID(ctx, ownerID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to get user %s: %w", ownerID, err)
		}
		filter.LegacyAsPrimary = owner.ClubID != nil && *owner.ClubID == *clubID
	}

	return s.ratingRepo.ListByUser(ctx, ownerID, filter)
}

func (s *ratingService) FriendsFeed(ctx context.Context, userID string, limit int) ([]models.Rating, error) {
	friendIDs, err := s.friendshipRepo.ListFriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend ids: %w", err)
	}
	if limit <= 0 {
		limit = 20
	}
	return s.ratingRepo.ListByUsers(ctx, friendIDs, limit)
}

// checkViewAccess: свои валорации видны всегда, чужие — только друзьям.
func (s *ratingService) checkViewAccess(ctx context.Context, viewerID, ownerID string) error {
	if viewerID == ownerID {
		return nil
	}
	friends, err := s.friendshipRepo.AreFriends(ctx, viewerID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to check friendship: %w", err)
	}
	if !friends {
		return ErrForbiddenOperation
	}
	return nil
}

func validateScores(players []models.RatedPlayer) error {
	for _, p := range players {
		if p.Score == nil {
			continue
		}
		if *p.Score < minPlayerScore || *p.Score > maxPlayerScore {
			return ErrScoreOutOfRange
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
