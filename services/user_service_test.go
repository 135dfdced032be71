package services

import (
	"context"
	"errors"
	"testing"

	"github.com/clubratings/club-ratings/models"
	"github.com/clubratings/club-ratings/repositories"
)

type fakeUserRepo struct {
	repositories.UserRepository
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	m := make(map[string]*models.User)
	for _, u := range users {
		m[u.ID] = u
	}
	return &fakeUserRepo{users: m}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeRatingRepo struct {
	repositories.RatingRepository
	deletedFor []string
}

func (f *fakeRatingRepo) DeleteAllByUser(_ context.Context, userID string) (int64, error) {
	f.deletedFor = append(f.deletedFor, userID)
	return 3, nil
}

func strPtr(s string) *string { return &s }

func TestSetPrimaryClubCascadesRatings(t *testing.T) {
	userRepo := newFakeUserRepo(&models.User{
		ID:               "u1",
		Email:            "u1@example.com",
		ClubID:           strPtr("boca"),
		SecondaryClubIDs: []string{"river", "racing"},
	})
	ratingRepo := &fakeRatingRepo{}
	svc := NewUserService(userRepo, ratingRepo, nil, nil)

	user, err := svc.SetPrimaryClub(context.Background(), "u1", "river")
	if err != nil {
		t.Fatalf("SetPrimaryClub() error = %v", err)
	}
	if user.ClubID == nil || *user.ClubID != "river" {
		t.Errorf("ClubID = %v, want river", user.ClubID)
	}
	if len(ratingRepo.deletedFor) != 1 || ratingRepo.deletedFor[0] != "u1" {
		t.Errorf("ratings deleted for %v, want [u1]", ratingRepo.deletedFor)
	}
	// Новый основной клуб выбывает из дополнительных.
	if len(user.SecondaryClubIDs) != 1 || user.SecondaryClubIDs[0] != "racing" {
		t.Errorf("SecondaryClubIDs = %v, want [racing]", user.SecondaryClubIDs)
	}
}

func TestSetPrimaryClubNoopForSameClub(t *testing.T) {
	userRepo := newFakeUserRepo(&models.User{
		ID:     "u1",
		Email:  "u1@example.com",
		ClubID: strPtr("boca"),
	})
	ratingRepo := &fakeRatingRepo{}
	svc := NewUserService(userRepo, ratingRepo, nil, nil)

	if _, err := svc.SetPrimaryClub(context.Background(), "u1", "boca"); err != nil {
		t.Fatalf("SetPrimaryClub() error = %v", err)
	}
	if len(ratingRepo.deletedFor) != 0 {
		t.Errorf("ratings deleted on no-op club switch: %v", ratingRepo.deletedFor)
	}
}

func TestSetPrimaryClubUnknown(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), &fakeRatingRepo{}, nil, nil)
	if _, err := svc.SetPrimaryClub(context.Background(), "u1", "chelsea"); !errors.Is(err, ErrUnknownClub) {
		t.Fatalf("SetPrimaryClub() error = %v, want ErrUnknownClub", err)
	}
}

func TestSetSecondaryClubs(t *testing.T) {
	user := &models.User{ID: "u1", Email: "u1@example.com", ClubID: strPtr("river")}

	tests := []struct {
		name    string
		clubIDs []string
		wantErr error
		want    []string
	}{
		{"two clubs", []string{"boca", "racing"}, nil, []string{"boca", "racing"}},
		{"dedupes", []string{"boca", "boca"}, nil, []string{"boca"}},
		{"too many", []string{"boca", "racing", "lanus"}, ErrSecondaryClubLimit, nil},
		{"overlaps primary", []string{"river"}, ErrSecondaryClubOverlap, nil},
		{"unknown club", []string{"arsenal"}, ErrUnknownClub, nil},
		{"clears", []string{}, nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUserService(newFakeUserRepo(user), &fakeRatingRepo{}, nil, nil)
			got, err := svc.SetSecondaryClubs(context.Background(), "u1", tt.clubIDs)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SetSecondaryClubs() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if len(got.SecondaryClubIDs) != len(tt.want) {
				t.Fatalf("SecondaryClubIDs = %v, want %v", got.SecondaryClubIDs, tt.want)
			}
			for i := range tt.want {
				if got.SecondaryClubIDs[i] != tt.want[i] {
					t.Errorf("SecondaryClubIDs = %v, want %v", got.SecondaryClubIDs, tt.want)
				}
			}
		})
	}
}

func TestDeleteAccount(t *testing.T) {
	userRepo := newFakeUserRepo(&models.User{ID: "u1", Email: "u1@example.com"})
	svc := NewUserService(userRepo, &fakeRatingRepo{}, nil, nil)

	if err := svc.DeleteAccount(context.Background(), "u1"); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	if _, ok := userRepo.users["u1"]; ok {
		t.Error("user still present after DeleteAccount")
	}
}

func TestDeleteAccountUnknownUser(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), &fakeRatingRepo{}, nil, nil)
	if err := svc.DeleteAccount(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("DeleteAccount() error = %v, want ErrUserNotFound", err)
	}
}

func TestSetSecondaryClubsRequiresPrimary(t *testing.T) {
	user := &models.User{ID: "u1", Email: "u1@example.com"}
	svc := NewUserService(newFakeUserRepo(user), &fakeRatingRepo{}, nil, nil)

	if _, err := svc.SetSecondaryClubs(context.Background(), "u1", []string{"boca"}); !errors.Is(err, ErrClubNotSelected) {
		t.Fatalf("SetSecondaryClubs() error = %v, want ErrClubNotSelected", err)
	}
}
