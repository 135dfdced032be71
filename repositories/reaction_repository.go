package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/clubratings/club-ratings/models"
)

var ErrReactionRatingInvalid = errors.New("reaction rating invalid")

type ReactionRepository interface {
	// Toggle переключает реакцию пользователя: повторный клик того же типа
	// снимает её, другой тип замещает предыдущий. Возвращает итоговое
	// состояние (nil — реакции больше нет). Выполняется в одной транзакции.
	Toggle(ctx context.Context, ratingID int, userID string, reaction models.ReactionType) (*models.ReactionType, error)
	ListByRating(ctx context.Context, ratingID int) ([]models.Reaction, error)
	CountsByRating(ctx context.Context, ratingID int) (map[models.ReactionType]int, error)
}

type postgresReactionRepository struct {
	db *sql.DB
}

func NewPostgresReactionRepository(db *sql.DB) ReactionRepository {
	return &postgresReactionRepository{db: db}
}

// reactionTransition — действие над существующей строкой реакции.
type reactionTransition int

const (
	reactionInsert reactionTransition = iota
	reactionRemove
	reactionReplace
)

// resolveReactionToggle — чистое правило переключения: нет реакции — ставим,
// тот же тип — снимаем, другой тип — замещаем. Возвращает итоговое состояние
// (nil — реакции больше нет).
func resolveReactionToggle(current *models.ReactionType, requested models.ReactionType) (reactionTransition, *models.ReactionType) {
	switch {
	case current == nil:
		return reactionInsert, &requested
	case *current == requested:
		return reactionRemove, nil
	default:
		return reactionReplace, &requested
	}
}

func (r *postgresReactionRepository) Toggle(ctx context.Context, ratingID int, userID string, reaction models.ReactionType) (*models.ReactionType, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current *models.ReactionType
	var existing models.ReactionType
	err = tx.QueryRowContext(ctx,
		`SELECT type FROM reactions WHERE rating_id = $1 AND user_id = $2 FOR UPDATE`,
		ratingID, userID,
	).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// current остаётся nil
	case err != nil:
		return nil, err
	default:
		current = &existing
	}

	transition, state := resolveReactionToggle(current, reaction)
	switch transition {
	case reactionInsert:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO reactions (rating_id, user_id, type) VALUES ($1, $2, $3)`,
			ratingID, userID, reaction)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
				if pqErr.Constraint == "reactions_rating_id_fkey" {
					return nil, ErrReactionRatingInvalid
				}
			}
			return nil, err
		}

	case reactionRemove:
		_, err = tx.ExecContext(ctx,
			`DELETE FROM reactions WHERE rating_id = $1 AND user_id = $2`,
			ratingID, userID)
		if err != nil {
			return nil, err
		}

	case reactionReplace:
		_, err = tx.ExecContext(ctx,
			`UPDATE reactions SET type = $1, created_at = now() WHERE rating_id = $2 AND user_id = $3`,
			reaction, ratingID, userID)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return state, nil
}

func (r *postgresReactionRepository) ListByRating(ctx context.Context, ratingID int) ([]models.Reaction, error) {
	query := `
		SELECT
			re.rating_id, re.user_id, re.type, re.created_at,
			u.display_name, u.photo_url, u.friend_code, u.club_id
		FROM reactions re
		JOIN users u ON u.id = re.user_id
		WHERE re.rating_id = $1
		ORDER BY re.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, ratingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reactions := make([]models.Reaction, 0)
	for rows.Next() {
		var reaction models.Reaction
		var user models.PublicProfile
		if err := rows.Scan(
			&reaction.RatingID,
			&reaction.UserID,
			&reaction.Type,
			&reaction.CreatedAt,
			&user.DisplayName,
			&user.PhotoURL,
			&user.FriendCode,
			&user.ClubID,
		); err != nil {
			return nil, err
		}
		user.ID = reaction.UserID
		reaction.User = &user
		reactions = append(reactions, reaction)
	}
	return reactions, rows.Err()
}

func (r *postgresReactionRepository) CountsByRating(ctx context.Context, ratingID int) (map[models.ReactionType]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT type, COUNT(*) FROM reactions WHERE rating_id = $1 GROUP BY type`, ratingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.ReactionType]int)
	for rows.Next() {
		var reactionType models.ReactionType
		var count int
		if err := rows.Scan(&reactionType, &count); err != nil {
			return nil, err
		}
		counts[reactionType] = count
	}
	return counts, rows.Err()
}
