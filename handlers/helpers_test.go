package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/clubratings/club-ratings/besoccer"
	"github.com/clubratings/club-ratings/scrape"
	"github.com/clubratings/club-ratings/services"
	"github.com/clubratings/club-ratings/sofascore"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"user not found", services.ErrUserNotFound, http.StatusNotFound},
		{"rating not found", services.ErrRatingNotFound, http.StatusNotFound},
		{"no finished match", besoccer.ErrNoFinishedMatch, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", services.ErrRatingNotFound), http.StatusNotFound},
		{"duplicate rating", services.ErrRatingAlreadyExists, http.StatusConflict},
		{"already friends", services.ErrAlreadyFriends, http.StatusConflict},
		{"pending request", services.ErrFriendRequestPending, http.StatusConflict},
		{"unknown club", services.ErrUnknownClub, http.StatusBadRequest},
		{"score out of range", services.ErrScoreOutOfRange, http.StatusBadRequest},
		{"self friend request", services.ErrSelfFriendRequest, http.StatusBadRequest},
		{"foreign match sofascore", sofascore.ErrNotClubMatch, http.StatusUnprocessableEntity},
		{"foreign match besoccer", besoccer.ErrNotClubMatch, http.StatusUnprocessableEntity},
		{"forbidden", services.ErrForbiddenOperation, http.StatusForbidden},
		{"upstream blocked", &scrape.UpstreamError{StatusCode: 403, Message: "blocked"}, http.StatusForbidden},
		{"upstream rate limited", &scrape.UpstreamError{StatusCode: 429, Message: "slow down"}, http.StatusTooManyRequests},
		{"storage disabled", services.ErrAvatarStorageDisabled, http.StatusServiceUnavailable},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)

			mapServiceErrorToHTTP(rec, req, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("mapServiceErrorToHTTP(%v) status = %d, want %d", tt.err, rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
		})
	}
}

func TestUpstreamFailureResponseContract(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"upstream status propagated", fmt.Errorf("sofascore: %w", &scrape.UpstreamError{StatusCode: 403, Message: "blocked"}), http.StatusForbidden},
		{"network failure falls back to 500", fmt.Errorf("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/proxy", nil)

			upstreamFailureResponse(rec, req, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("response is not JSON: %v", err)
			}
			for _, key := range []string{"error", "message", "hint"} {
				if body[key] == "" {
					t.Errorf("response is missing %q field: %v", key, body)
				}
			}
			if tt.wantStatus == http.StatusForbidden && !strings.Contains(body["message"], "blocked") {
				t.Errorf("message = %q, want upstream text included", body["message"])
			}
		})
	}
}

func TestReadJSONRejectsUnknownFields(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"club_id":"river","bogus":1}`))

	var dst struct {
		ClubID string `json:"club_id"`
	}
	err := readJSON(rec, req, &dst)
	if err == nil {
		t.Fatal("readJSON() error = nil, want unknown field error")
	}
	if !strings.Contains(err.Error(), "unknown key") {
		t.Errorf("readJSON() error = %q, want mention of unknown key", err)
	}
}

func TestReadJSONRejectsMultipleValues(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"club_id":"river"}{"club_id":"boca"}`))

	var dst struct {
		ClubID string `json:"club_id"`
	}
	if err := readJSON(rec, req, &dst); err == nil {
		t.Fatal("readJSON() error = nil, want single JSON value error")
	}
}
