package handlers

import (
	"net/http"

	"github.com/clubratings/club-ratings/clubs"
)

type ClubHandler struct{}

func NewClubHandler() *ClubHandler {
	return &ClubHandler{}
}

// ListClubs отдаёт каталог клубов лиги. Каталог статический, авторизация не нужна.
func (h *ClubHandler) ListClubs(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"clubs": clubs.All()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
