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
	ErrFriendRequestNotFound  = errors.New("friend request not found")
	ErrFriendRequestDuplicate = errors.New("friend request already pending")
	ErrFriendshipNotFound     = errors.New("friendship not found")
	ErrFriendshipExists       = errors.New("friendship already exists")
)

type FriendshipRepository interface {
	CreateRequest(ctx context.Context, request *models.FriendRequest) error
	GetRequestByID(ctx context.Context, id int) (*models.FriendRequest, error)
	ListPendingForReceiver(ctx context.Context, receiverID string) ([]models.FriendRequest, error)
	// AcceptRequest в одной транзакции переводит заявку в accepted и создаёт
	// симметричную запись дружбы.
	AcceptRequest(ctx context.Context, requestID int) (*models.FriendRequest, error)
	RejectRequest(ctx context.Context, requestID int) (*models.FriendRequest, error)
	AreFriends(ctx context.Context, userA, userB string) (bool, error)
	ListFriendIDs(ctx context.Context, userID string) ([]string, error)
	RemoveFriendship(ctx context.Context, userA, userB string) error
}

type postgresFriendshipRepository struct {
	db *sql.DB
}

func NewPostgresFriendshipRepository(db *sql.DB) FriendshipRepository {
	return &postgresFriendshipRepository{db: db}
}

func (r *postgresFriendshipRepository) CreateRequest(ctx context.Context, request *models.FriendRequest) error {
	query := `
		INSERT INTO friend_requests (sender_id, receiver_id)
		VALUES ($1, $2)
		RETURNING id, status, created_at`

	err := r.db.QueryRowContext(ctx, query,
		request.SenderID,
		request.ReceiverID,
	).Scan(&request.ID, &request.Status, &request.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "friend_requests_pending_pair_key" {
				return ErrFriendRequestDuplicate
			}
		}
		return err
	}
	return nil
}

func (r *postgresFriendshipRepository) GetRequestByID(ctx context.Context, id int) (*models.FriendRequest, error) {
	query := `
		SELECT id, sender_id, receiver_id, status, created_at, responded_at
		FROM friend_requests
		WHERE id = $1`

	request := &models.FriendRequest{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&request.ID,
		&request.SenderID,
		&request.ReceiverID,
		&request.Status,
		&request.CreatedAt,
		&request.RespondedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFriendRequestNotFound
		}
		return nil, err
	}
	return request, nil
}

// ListPendingForReceiver возвращает входящие заявки вместе с профилем отправителя.
func (r *postgresFriendshipRepository) ListPendingForReceiver(ctx context.Context, receiverID string) ([]models.FriendRequest, error) {
	query := `
		SELECT
			fr.id, fr.sender_id, fr.receiver_id, fr.status, fr.created_at, fr.responded_at,
			u.display_name, u.photo_url, u.friend_code, u.club_id
		FROM friend_requests fr
		JOIN users u ON u.id = fr.sender_id
		WHERE fr.receiver_id = $1 AND fr.status = 'pending'
		ORDER BY fr.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, receiverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]models.FriendRequest, 0)
	for rows.Next() {
		var request models.FriendRequest
		var sender models.PublicProfile
		if err := rows.Scan(
			&request.ID,
			&request.SenderID,
			&request.ReceiverID,
			&request.Status,
			&request.CreatedAt,
			&request.RespondedAt,
			&sender.DisplayName,
			&sender.PhotoURL,
			&sender.FriendCode,
			&sender.ClubID,
		); err != nil {
			return nil, err
		}
		sender.ID = request.SenderID
		request.Sender = &sender
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

func (r *postgresFriendshipRepository) AcceptRequest(ctx context.Context, requestID int) (*models.FriendRequest, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	request := &models.FriendRequest{}
	err = tx.QueryRowContext(ctx, `
		UPDATE friend_requests
		SET status = 'accepted', responded_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING id, sender_id, receiver_id, status, created_at, responded_at`,
		requestID,
	).Scan(
		&request.ID,
		&request.SenderID,
		&request.ReceiverID,
		&request.Status,
		&request.CreatedAt,
		&request.RespondedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFriendRequestNotFound
		}
		return nil, err
	}

	low, high := models.NormalizePair(request.SenderID, request.ReceiverID)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO friendships (user_low, user_high) VALUES ($1, $2)`,
		low, high)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, ErrFriendshipExists
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return request, nil
}

func (r *postgresFriendshipRepository) RejectRequest(ctx context.Context, requestID int) (*models.FriendRequest, error) {
	request := &models.FriendRequest{}
	err := r.db.QueryRowContext(ctx, `
		UPDATE friend_requests
		SET status = 'rejected', responded_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING id, sender_id, receiver_id, status, created_at, responded_at`,
		requestID,
	).Scan(
		&request.ID,
		&request.SenderID,
		&request.ReceiverID,
		&request.Status,
		&request.CreatedAt,
		&request.RespondedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFriendRequestNotFound
		}
		return nil, err
	}
	return request, nil
}

func (r *postgresFriendshipRepository) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	low, high := models.NormalizePair(userA, userB)
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM friendships WHERE user_low = $1 AND user_high = $2)`,
		low, high,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *postgresFriendshipRepository) ListFriendIDs(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT CASE WHEN user_low = $1 THEN user_high ELSE user_low END
		FROM friendships
		WHERE user_low = $1 OR user_high = $1`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresFriendshipRepository) RemoveFriendship(ctx context.Context, userA, userB string) error {
	low, high := models.NormalizePair(userA, userB)
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM friendships WHERE user_low = $1 AND user_high = $2`,
		low, high)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrFriendshipNotFound)
}
