package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/clubratings/club-ratings/models"
)

var (
	ErrCommentNotFound      = errors.New("comment not found")
	ErrCommentRatingInvalid = errors.New("comment rating invalid")
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id int) (*models.Comment, error)
	ListByRating(ctx context.Context, ratingID int) ([]models.Comment, error)
	Delete(ctx context.Context, id int) error
}

type postgresCommentRepository struct {
	db *sql.DB
}

func NewPostgresCommentRepository(db *sql.DB) CommentRepository {
	return &postgresCommentRepository{db: db}
}

func (r *postgresCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (rating_id, user_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		comment.RatingID,
		comment.UserID,
		comment.Body,
	).Scan(&comment.ID, &comment.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if pqErr.Constraint == "comments_rating_id_fkey" {
				return ErrCommentRatingInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresCommentRepository) GetByID(ctx context.Context, id int) (*models.Comment, error) {
	query := `
		SELECT id, rating_id, user_id, body, created_at
		FROM comments
		WHERE id = $1`

	comment := &models.Comment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&comment.ID,
		&comment.RatingID,
		&comment.UserID,
		&comment.Body,
		&comment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return comment, nil
}

// ListByRating возвращает комментарии вместе с публичным профилем автора.
func (r *postgresCommentRepository) ListByRating(ctx context.Context, ratingID int) ([]models.Comment, error) {
	query := `
		SELECT
			c.id, c.rating_id, c.user_id, c.body, c.created_at,
			u.display_name, u.photo_url, u.friend_code, u.club_id
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.rating_id = $1
		ORDER BY c.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, ratingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]models.Comment, 0)
	for rows.Next() {
		var comment models.Comment
		var author models.PublicProfile
		if err := rows.Scan(
			&comment.ID,
			&comment.RatingID,
			&comment.UserID,
			&comment.Body,
			&comment.CreatedAt,
			&author.DisplayName,
			&author.PhotoURL,
			&author.FriendCode,
			&author.ClubID,
		); err != nil {
			return nil, err
		}
		author.ID = comment.UserID
		comment.Author = &author
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func (r *postgresCommentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrCommentNotFound)
}
