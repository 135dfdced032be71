package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/clubratings/club-ratings/models"
	"github.com/clubratings/club-ratings/repositories"
)

const (
	friendCodeLength   = 5
	friendCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	friendCodeAttempts = 5
)

var ErrFriendCodeGeneration = errors.New("failed to generate unique friend code")

type FriendService interface {
	// EnsureFriendCode выдаёт пользователю код, если его ещё нет.
	EnsureFriendCode(ctx context.Context, userID string) (string, error)
	FindByFriendCode(ctx context.Context, code string) (*models.PublicProfile, error)

	SendRequest(ctx context.Context, senderID, receiverCode string) (*models.FriendRequest, error)
	AcceptRequest(ctx context.Context, userID string, requestID int) (*models.FriendRequest, error)
	RejectRequest(ctx context.Context, userID string, requestID int) error
	ListPendingRequests(ctx context.Context, userID string) ([]models.FriendRequest, error)

	ListFriends(ctx context.Context, userID string) ([]models.PublicProfile, error)
	RemoveFriend(ctx context.Context, userID, friendID string) error
}

type friendService struct {
	userRepo       repositories.UserRepository
	friendshipRepo repositories.FriendshipRepository
	notifications  NotificationService
}

func NewFriendService(
	userRepo repositories.UserRepository,
	friendshipRepo repositories.FriendshipRepository,
	notifications NotificationService,
) FriendService {
	return &friendService{
		userRepo:       userRepo,
		friendshipRepo: friendshipRepo,
		notifications:  notifications,
	}
}

func generateFriendCode() (string, error) {
	// 256 не кратно 36, поэтому байты выше порога отбрасываются,
	// иначе начало алфавита выпадало бы чаще.
	const maxByte = 256 - 256%len(friendCodeAlphabet)

	code := make([]byte, 0, friendCodeLength)
	buf := make([]byte, friendCodeLength)
	for len(code) < friendCodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= maxByte {
				continue
			}
			code = append(code, friendCodeAlphabet[int(b)%len(friendCodeAlphabet)])
			if len(code) == friendCodeLength {
				break
			}
		}
	}
	return string(code), nil
}

func (s *friendService) EnsureFriendCode(ctx context.Context, userID string) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	if user.FriendCode != nil {
		return *user.FriendCode, nil
	}

	for attempt := 0; attempt < friendCodeAttempts; attempt++ {
		code, err := generateFriendCode()
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrFriendCodeGeneration, err)
		}

		err = s.userRepo.SetFriendCode(ctx, userID, code)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, repositories.ErrUserFriendCodeConflict) {
			return "", fmt.Errorf("failed to set friend code for %s: %w", userID, err)
		}
		// Коллизия кода, пробуем снова.
	}
	return "", fmt.Errorf("%w after %d attempts", ErrFriendCodeGeneration, friendCodeAttempts)
}

func (s *friendService) FindByFriendCode(ctx context.Context, code string) (*models.PublicProfile, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != friendCodeLength {
		return nil, ErrValidationFailed
	}

	user, err := s.userRepo.GetByFriendCode(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by friend code: %w", err)
	}
	profile := user.Public()
	return &profile, nil
}

func (s *friendService) SendRequest(ctx context.Context, senderID, receiverCode string) (*models.FriendRequest, error) {
	receiver, err := s.FindByFriendCode(ctx, receiverCode)
	if err != nil {
		return nil, err
	}
	if receiver.ID == senderID {
		return nil, ErrSelfFriendRequest
	}

	already, err := s.friendshipRepo.AreFriends(ctx, senderID, receiver.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check friendship: %w", err)
	}
	if already {
		return nil, ErrAlreadyFriends
	}

	request := &models.FriendRequest{
		SenderID:   senderID,
		ReceiverID: receiver.ID,
	}
	if err := s.friendshipRepo.CreateRequest(ctx, request); err != nil {
		if errors.Is(err, repositories.ErrFriendRequestDuplicate) {
			return nil, ErrFriendRequestPending
		}
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}

	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err == nil {
		_ = s.notifications.NotifyFrom(ctx, senderID, receiver.ID,
			models.NotificationFriendRequest,
			fmt.Sprintf("%s quiere ser tu amigo", sender.DisplayName),
			map[string]interface{}{"request_id": request.ID, "sender_id": senderID})
	}
	return request, nil
}

func (s *friendService) AcceptRequest(ctx context.Context, userID string, requestID int) (*models.FriendRequest, error) {
	request, err := s.friendshipRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrFriendRequestNotFound) {
			return nil, ErrFriendRequestNotFound
		}
		return nil, fmt.Errorf("failed to get friend request %d: %w", requestID, err)
	}
	if request.ReceiverID != userID {
		return nil, ErrForbiddenOperation
	}

	accepted, err := s.friendshipRepo.AcceptRequest(ctx, requestID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrFriendRequestNotFound):
			return nil, ErrFriendRequestNotFound
		case errors.Is(err, repositories.ErrFriendshipExists):
			return nil, ErrAlreadyFriends
		}
		return nil, fmt.Errorf("failed to accept friend request %d: %w", requestID, err)
	}

	receiver, err := s.userRepo.GetByID(ctx, userID)
	if err == nil {
		_ = s.notifications.NotifyFrom(ctx, userID, accepted.SenderID,
			models.NotificationFriendAccepted,
			fmt.Sprintf("%s aceptó tu solicitud de amistad", receiver.DisplayName),
			map[string]interface{}{"friend_id": userID})
	}
	return accepted, nil
}

func (s *friendService) RejectRequest(ctx context.Context, userID string, requestID int) error {
	request, err := s.friendshipRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrFriendRequestNotFound) {
			return ErrFriendRequestNotFound
		}
		return fmt.Errorf("failed to get friend request %d: %w", requestID, err)
	}
	if request.ReceiverID != userID {
		return ErrForbiddenOperation
	}

	if _, err := s.friendshipRepo.RejectRequest(ctx, requestID); err != nil {
		if errors.Is(err, repositories.ErrFriendRequestNotFound) {
			return ErrFriendRequestNotFound
		}
		return fmt.Errorf("failed to reject friend request %d: %w", requestID, err)
	}
	return nil
}

func (s *friendService) ListPendingRequests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	return s.friendshipRepo.ListPendingForReceiver(ctx, userID)
}

func (s *friendService) ListFriends(ctx context.Context, userID string) ([]models.PublicProfile, error) {
	ids, err := s.friendshipRepo.ListFriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend ids: %w", err)
	}

	users, err := s.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load friend profiles: %w", err)
	}

	profiles := make([]models.PublicProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Public())
	}
	return profiles, nil
}

func (s *friendService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	err := s.friendshipRepo.RemoveFriendship(ctx, userID, friendID)
	if err != nil {
		if errors.Is(err, repositories.ErrFriendshipNotFound) {
			return ErrFriendshipNotFound
		}
		return fmt.Errorf("failed to remove friendship: %w", err)
	}
	return nil
}
