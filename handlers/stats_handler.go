package handlers

import (
	"net/http"
	"strings"

	"github.com/clubratings/club-ratings/middleware"
	"github.com/clubratings/club-ratings/services"
)

type StatsHandler struct {
	statsService services.StatsService
}

func NewStatsHandler(ss services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: ss}
}

// Dashboard — агрегированная статистика по валорациям пользователя:
// баланс побед, средние оценки и сводка по игрокам.
func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var clubID *string
	if club := strings.TrimSpace(r.URL.Query().Get("club")); club != "" {
		clubID = &club
	}

	stats, err := h.statsService.Dashboard(r.Context(), currentUserID, clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
