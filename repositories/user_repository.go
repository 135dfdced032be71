package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/clubratings/club-ratings/models"
)

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrUserEmailConflict      = errors.New("user email conflict")
	ErrUserFriendCodeConflict = errors.New("user friend code conflict")
)

type UserRepository interface {
	// Upsert создаёт профиль при первом входе либо обновляет зеркальные поля провайдера.
	Upsert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByFriendCode(ctx context.Context, code string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetFriendCode(ctx context.Context, userID, code string) error
	SetAvatarKey(ctx context.Context, userID string, key *string) error
	ListByIDs(ctx context.Context, ids []string) ([]models.User, error)
	Delete(ctx context.Context, id string) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, email, display_name, photo_url, avatar_key, friend_code, club_id, secondary_club_ids, created_at, updated_at`

func (r *postgresUserRepository) Upsert(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, display_name, photo_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			display_name = EXCLUDED.display_name,
			photo_url = EXCLUDED.photo_url,
			updated_at = now()
		RETURNING ` + userColumns

	err := r.scanRow(r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.PhotoURL,
	), user)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "users_email_key" {
				return ErrUserEmailConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *postgresUserRepository) GetByFriendCode(ctx context.Context, code string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE friend_code = $1`
	return r.getOne(ctx, query, code)
}

func (r *postgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			display_name = $1,
			photo_url = $2,
			club_id = $3,
			secondary_club_ids = $4,
			updated_at = now()
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query,
		user.DisplayName,
		user.PhotoURL,
		user.ClubID,
		pq.Array(user.SecondaryClubIDs),
		user.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) SetFriendCode(ctx context.Context, userID, code string) error {
	query := `UPDATE users SET friend_code = $1, updated_at = now() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, code, userID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "users_friend_code_key" {
				return ErrUserFriendCodeConflict
			}
		}
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) SetAvatarKey(ctx context.Context, userID string, key *string) error {
	query := `UPDATE users SET avatar_key = $1, updated_at = now() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, key, userID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) ListByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1) ORDER BY display_name ASC`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0, len(ids))
	for rows.Next() {
		var user models.User
		if err := r.scanRow(rows, &user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *postgresUserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *postgresUserRepository) getOne(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.scanRow(r.db.QueryRowContext(ctx, query, args...), user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

func (r *postgresUserRepository) scanRow(row rowScanner, user *models.User) error {
	return row.Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.PhotoURL,
		&user.AvatarKey,
		&user.FriendCode,
		&user.ClubID,
		pq.Array(&user.SecondaryClubIDs),
		&user.CreatedAt,
		&user.UpdatedAt,
	)
}
