package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/clubratings/club-ratings/models"
	"github.com/clubratings/club-ratings/repositories"
)

const maxCommentLength = 500

type CommentService interface {
	Add(ctx context.Context, userID string, ratingID int, body string) (*models.Comment, error)
	List(ctx context.Context, viewerID string, ratingID int) ([]models.Comment, error)
	// Delete доступен автору комментария и владельцу валорации.
	Delete(ctx context.Context, userID string, commentID int) error
}

type commentService struct {
	commentRepo   repositories.CommentRepository
	ratingRepo    repositories.RatingRepository
	userRepo      repositories.UserRepository
	ratings       RatingService
	notifications NotificationService
}

func NewCommentService(
	commentRepo repositories.CommentRepository,
	ratingRepo repositories.RatingRepository,
	userRepo repositories.UserRepository,
	ratings RatingService,
	notifications NotificationService,
) CommentService {
	return &commentService{
		commentRepo:   commentRepo,
		ratingRepo:    ratingRepo,
		userRepo:      userRepo,
		ratings:       ratings,
		notifications: notifications,
	}
}

func (s *commentService) Add(ctx context.Context, userID string, ratingID int, body string) (*models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyComment
	}
	if utf8.RuneCountInString(body) > maxCommentLength {
		return nil, ErrValidationFailed
	}

	// Комментировать можно только видимые валорации (свои или друзей).
	rating, err := s.ratings.Get(ctx, userID, ratingID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		RatingID: ratingID,
		UserID:   userID,
		Body:     body,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		if errors.Is(err, repositories.ErrCommentRatingInvalid) {
			return nil, ErrRatingNotFound
		}
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	author, err := s.userRepo.GetByID(ctx, userID)
	if err == nil {
		profile := author.Public()
		comment.Author = &profile
		_ = s.notifications.NotifyFrom(ctx, userID, rating.UserID,
			models.NotificationComment,
			fmt.Sprintf("%s comentó tu valoración de %s", author.DisplayName, rating.Match.Rival),
			map[string]interface{}{"rating_id": ratingID, "comment_id": comment.ID})
	}
	return comment, nil
}

func (s *commentService) List(ctx context.Context, viewerID string, ratingID int) ([]models.Comment, error) {
	if _, err := s.ratings.Get(ctx, viewerID, ratingID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByRating(ctx, ratingID)
}

func (s *commentService) Delete(ctx context.Context, userID string, commentID int) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("failed to get comment %d: %w", commentID, err)
	}

	if comment.UserID != userID {
		rating, err := s.ratingRepo.GetByID(ctx, comment.RatingID)
		if err != nil {
			return fmt.Errorf("failed to get rating %d: %w", comment.RatingID, err)
		}
		if rating.UserID != userID {
			return ErrForbiddenOperation
		}
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		if errors.Is(err, repositories.ErrCommentNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("failed to delete comment %d: %w", commentID, err)
	}
	return nil
}
