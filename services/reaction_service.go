package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/clubratings/club-ratings/models"
	"github.com/clubratings/club-ratings/repositories"
)

type ReactionService interface {
	// Toggle переключает реакцию пользователя на валорацию и возвращает
	// итоговое состояние (nil — реакция снята) вместе со свежими агрегатами.
	Toggle(ctx context.Context, userID string, ratingID int, reaction models.ReactionType) (*models.ReactionType, map[models.ReactionType]int, error)
	List(ctx context.Context, viewerID string, ratingID int) ([]models.Reaction, error)
}

type reactionService struct {
	reactionRepo  repositories.ReactionRepository
	userRepo      repositories.UserRepository
	ratings       RatingService
	notifications NotificationService
}

func NewReactionService(
	reactionRepo repositories.ReactionRepository,
	userRepo repositories.UserRepository,
	ratings RatingService,
	notifications NotificationService,
) ReactionService {
	return &reactionService{
		reactionRepo:  reactionRepo,
		userRepo:      userRepo,
		ratings:       ratings,
		notifications: notifications,
	}
}

func (s *reactionService) Toggle(ctx context.Context, userID string, ratingID int, reaction models.ReactionType) (*models.ReactionType, map[models.ReactionType]int, error) {
	if !reaction.Valid() {
		return nil, nil, ErrInvalidReactionType
	}

	rating, err := s.ratings.Get(ctx, userID, ratingID)
	if err != nil {
		return nil, nil, err
	}

	state, err := s.reactionRepo.Toggle(ctx, ratingID, userID, reaction)
	if err != nil {
		if errors.Is(err, repositories.ErrReactionRatingInvalid) {
			return nil, nil, ErrRatingNotFound
		}
		return nil, nil, fmt.Errorf("failed to toggle reaction: %w", err)
	}

	counts, err := s.reactionRepo.CountsByRating(ctx, ratingID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count reactions: %w", err)
	}

	// Уведомляем владельца только о поставленной реакции, не о снятой.
	if state != nil {
		actor, err := s.userRepo.GetByID(ctx, userID)
		if err == nil {
			_ = s.notifications.NotifyFrom(ctx, userID, rating.UserID,
				models.NotificationReaction,
				fmt.Sprintf("A %s le gustó tu valoración de %s", actor.DisplayName, rating.Match.Rival),
				map[string]interface{}{"rating_id": ratingID, "reaction": *state})
		}
	}
	return state, counts, nil
}

func (s *reactionService) List(ctx context.Context, viewerID string, ratingID int) ([]models.Reaction, error) {
	if _, err := s.ratings.Get(ctx, viewerID, ratingID); err != nil {
		return nil, err
	}
	return s.reactionRepo.ListByRating(ctx, ratingID)
}
