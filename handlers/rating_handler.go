package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/clubratings/club-ratings/middleware"
	"github.com/clubratings/club-ratings/models"
	"github.com/clubratings/club-ratings/services"
)

type RatingHandler struct {
	ratingService services.RatingService
}

func NewRatingHandler(rs services.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: rs}
}

type createRatingInput struct {
	ClubID  string               `json:"club_id"`
	Match   models.MatchInfo     `json:"match"`
	Players []models.RatedPlayer `json:"players"`
}

func (h *RatingHandler) CreateRating(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input createRatingInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rating, err := h.ratingService.Create(r.Context(), currentUserID, input.ClubID, input.Match, input.Players)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"rating": rating}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RatingHandler) GetRating(w http.ResponseWriter, r *http.Request) {
	ratingID, err := getIDFromURL(r, "ratingID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	rating, err := h.ratingService.Get(r.Context(), currentUserID, ratingID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rating": rating}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RatingHandler) UpdateRating(w http.ResponseWriter, r *http.Request) {
	ratingID, err := getIDFromURL(r, "ratingID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input struct {
		Players []models.RatedPlayer `json:"players"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rating, err := h.ratingService.UpdateScores(r.Context(), currentUserID, ratingID, input.Players)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rating": rating}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RatingHandler) DeleteRating(w http.ResponseWriter, r *http.Request) {
	ratingID, err := getIDFromURL(r, "ratingID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := h.ratingService.Delete(r.Context(), currentUserID, ratingID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListUserRatings отдаёт валорации пользователя. Собственные видны всегда,
// чужие — только друзьям.
func (h *RatingHandler) ListUserRatings(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	ownerID := strings.TrimSpace(r.URL.Query().Get("user"))
	if ownerID == "" {
		ownerID = currentUserID
	}

	var clubID *string
	if club := strings.TrimSpace(r.URL.Query().Get("club")); club != "" {
		clubID = &club
	}

	limit, offset := paginationParams(r)
	ratings, err := h.ratingService.ListForUser(r.Context(), currentUserID, ownerID, clubID, limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"ratings": ratings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FriendsFeed — лента последних валораций друзей.
func (h *RatingHandler) FriendsFeed(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	limit, _ := paginationParams(r)
	ratings, err := h.ratingService.FriendsFeed(r.Context(), currentUserID, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"ratings": ratings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func paginationParams(r *http.Request) (limit, offset int) {
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
