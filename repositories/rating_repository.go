package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/clubratings/club-ratings/models"
)

var (
	ErrRatingNotFound    = errors.New("rating not found")
	ErrRatingDuplicate   = errors.New("rating for this match already exists")
	ErrRatingUserInvalid = errors.New("rating user invalid")
)

// RatingFilter ограничивает выборку валорации.
// ClubID: выборка по клубу включает старые записи без club_id только
// при LegacyAsPrimary=true (старые оценки показываются под основным клубом).
type RatingFilter struct {
	ClubID          *string
	LegacyAsPrimary bool
	Limit           int
	Offset          int
}

type RatingRepository interface {
	Create(ctx context.Context, rating *models.Rating) error
	GetByID(ctx context.Context, id int) (*models.Rating, error)
	Update(ctx context.Context, rating *models.Rating) error
	Delete(ctx context.Context, id int) error
	ListByUser(ctx context.Context, userID string, filter RatingFilter) ([]models.Rating, error)
	ListByUsers(ctx context.Context, userIDs []string, limit int) ([]models.Rating, error)
	ExistsForMatch(ctx context.Context, userID, matchURL string) (bool, error)
	DeleteAllByUser(ctx context.Context, userID string) (int64, error)
}

type postgresRatingRepository struct {
	db *sql.DB
}

func NewPostgresRatingRepository(db *sql.DB) RatingRepository {
	return &postgresRatingRepository{db: db}
}

const ratingColumns = `
	r.id, r.user_id, r.club_id,
	r.match_url, r.match_date, r.home_team, r.away_team, r.competition, r.round,
	r.home_score, r.away_score, r.user_team, r.rival, r.result, r.user_score, r.rival_score,
	r.players, r.created_at, r.updated_at,
	(SELECT COUNT(*) FROM comments c WHERE c.rating_id = r.id) AS comment_count`

func (r *postgresRatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	players, err := json.Marshal(rating.Players)
	if err != nil {
		return fmt.Errorf("failed to marshal players: %w", err)
	}

	query := `
		INSERT INTO ratings (
			user_id, club_id,
			match_url, match_date, home_team, away_team, competition, round,
			home_score, away_score, user_team, rival, result, user_score, rival_score,
			players
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at`

	m := rating.Match
	err = r.db.QueryRowContext(ctx, query,
		rating.UserID,
		rating.ClubID,
		m.MatchURL,
		m.Date,
		m.HomeTeam,
		m.AwayTeam,
		m.Competition,
		m.Round,
		m.HomeScore,
		m.AwayScore,
		m.UserTeam,
		m.Rival,
		m.Result,
		m.UserScore,
		m.RivalScore,
		players,
	).Scan(&rating.ID, &rating.CreatedAt, &rating.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "ratings_user_match_key" {
					return ErrRatingDuplicate
				}
			case "23503": // foreign_key_violation
				if pqErr.Constraint == "ratings_user_id_fkey" {
					return ErrRatingUserInvalid
				}
			}
		}
		return err
	}
	return nil
}

func (r *postgresRatingRepository) GetByID(ctx context.Context, id int) (*models.Rating, error) {
	query := `SELECT ` + ratingColumns + ` FROM ratings r WHERE r.id = $1`

	rating, err := r.scanRating(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRatingNotFound
		}
		return nil, err
	}

	if err := r.attachReactionCounts(ctx, []*models.Rating{rating}); err != nil {
		return nil, err
	}
	return rating, nil
}

func (r *postgresRatingRepository) Update(ctx context.Context, rating *models.Rating) error {
	players, err := json.Marshal(rating.Players)
	if err != nil {
		return fmt.Errorf("failed to marshal players: %w", err)
	}

	query := `
		UPDATE ratings SET
			players = $1,
			updated_at = now()
		WHERE id = $2
		RETURNING updated_at`

	err = r.db.QueryRowContext(ctx, query, players, rating.ID).Scan(&rating.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRatingNotFound
		}
		return err
	}
	return nil
}

func (r *postgresRatingRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM ratings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRatingNotFound)
}

func (r *postgresRatingRepository) ListByUser(ctx context.Context, userID string, filter RatingFilter) ([]models.Rating, error) {
	query := `SELECT ` + ratingColumns + ` FROM ratings r WHERE r.user_id = $1`
	args := []interface{}{userID}

	if filter.ClubID != nil {
		if filter.LegacyAsPrimary {
			query += ` AND (r.club_id = $2 OR r.club_id IS NULL)`
		} else {
			query += ` AND r.club_id = $2`
		}
		args = append(args, *filter.ClubID)
	}
	query += ` ORDER BY r.match_date DESC, r.id DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d OFFSET %d`, filter.Limit, filter.Offset)
	}

	return r.list(ctx, query, args...)
}

func (r *postgresRatingRepository) ListByUsers(ctx context.Context, userIDs []string, limit int) ([]models.Rating, error) {
	if len(userIDs) == 0 {
		return []models.Rating{}, nil
	}
	query := `SELECT ` + ratingColumns + `
		FROM ratings r
		WHERE r.user_id = ANY($1)
		ORDER BY r.created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}
	return r.list(ctx, query, pq.Array(userIDs))
}

func (r *postgresRatingRepository) ExistsForMatch(ctx context.Context, userID, matchURL string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM ratings WHERE user_id = $1 AND match_url = $2)`,
		userID, matchURL,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// DeleteAllByUser удаляет все валорации пользователя (смена основного клуба).
func (r *postgresRatingRepository) DeleteAllByUser(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM ratings WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *postgresRatingRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Rating, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := make([]models.Rating, 0)
	refs := make([]*models.Rating, 0)
	for rows.Next() {
		rating, err := r.scanRating(rows)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, *rating)
		refs = append(refs, &ratings[len(ratings)-1])
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachReactionCounts(ctx, refs); err != nil {
		return nil, err
	}
	return ratings, nil
}

func (r *postgresRatingRepository) scanRating(row rowScanner) (*models.Rating, error) {
	var rating models.Rating
	var players []byte

	err := row.Scan(
		&rating.ID,
		&rating.UserID,
		&rating.ClubID,
		&rating.Match.MatchURL,
		&rating.Match.Date,
		&rating.Match.HomeTeam,
		&rating.Match.AwayTeam,
		&rating.Match.Competition,
		&rating.Match.Round,
		&rating.Match.HomeScore,
		&rating.Match.AwayScore,
		&rating.Match.UserTeam,
		&rating.Match.Rival,
		&rating.Match.Result,
		&rating.Match.UserScore,
		&rating.Match.RivalScore,
		&players,
		&rating.CreatedAt,
		&rating.UpdatedAt,
		&rating.CommentCount,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(players, &rating.Players); err != nil {
		return nil, fmt.Errorf("failed to unmarshal players for rating %d: %w", rating.ID, err)
	}
	return &rating, nil
}

// attachReactionCounts одним запросом подгружает агрегаты реакций.
func (r *postgresRatingRepository) attachReactionCounts(ctx context.Context, ratings []*models.Rating) error {
	if len(ratings) == 0 {
		return nil
	}
	ids := make([]int, 0, len(ratings))
	byID := make(map[int]*models.Rating, len(ratings))
	for _, rating := range ratings {
		ids = append(ids, rating.ID)
		byID[rating.ID] = rating
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT rating_id, type, COUNT(*)
		FROM reactions
		WHERE rating_id = ANY($1)
		GROUP BY rating_id, type`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ratingID int
		var reactionType models.ReactionType
		var count int
		if err := rows.Scan(&ratingID, &reactionType, &count); err != nil {
			return err
		}
		rating := byID[ratingID]
		if rating == nil {
			continue
		}
		if rating.ReactionCounts == nil {
			rating.ReactionCounts = make(map[models.ReactionType]int)
		}
		rating.ReactionCounts[reactionType] = count
	}
	return rows.Err()
}
