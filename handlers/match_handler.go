package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/clubratings/club-ratings/middleware"
	"github.com/clubratings/club-ratings/services"
)

type MatchHandler struct {
	matchService services.MatchService
	userService  services.UserService
}

func NewMatchHandler(ms services.MatchService, us services.UserService) *MatchHandler {
	return &MatchHandler{
		matchService: ms,
		userService:  us,
	}
}

// GetMatchData загружает и нормализует данные матча по его URL.
// Клуб берётся из query-параметра, по умолчанию — основной клуб пользователя.
func (h *MatchHandler) GetMatchData(w http.ResponseWriter, r *http.Request) {
	matchURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if matchURL == "" {
		badRequestResponse(w, r, errors.New("missing required query parameter: url"))
		return
	}

	clubID, err := h.resolveClubID(r)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	source := services.MatchSource(r.URL.Query().Get("source"))
	data, err := h.matchService.FetchMatchData(r.Context(), matchURL, clubID, source)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": data}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetLastMatch ищет URL последнего завершённого матча клуба.
func (h *MatchHandler) GetLastMatch(w http.ResponseWriter, r *http.Request) {
	clubID, err := h.resolveClubID(r)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	source := services.MatchSource(r.URL.Query().Get("source"))
	matchURL, err := h.matchService.LastMatchURL(r.Context(), clubID, source)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match_url": matchURL}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) resolveClubID(r *http.Request) (string, error) {
	if clubID := strings.TrimSpace(r.URL.Query().Get("club")); clubID != "" {
		return clubID, nil
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		return "", services.ErrClubNotSelected
	}
	user, err := h.userService.GetProfile(r.Context(), currentUserID)
	if err != nil {
		return "", err
	}
	if user.ClubID == nil || *user.ClubID == "" {
		return "", services.ErrClubNotSelected
	}
	return *user.ClubID, nil
}
