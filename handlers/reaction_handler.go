package handlers

import (
	"net/http"

	"github.com/clubratings/club-ratings/middleware"
	"github.com/clubratings/club-ratings/models"
	"github.com/clubratings/club-ratings/services"
)

type ReactionHandler struct {
	reactionService services.ReactionService
}

func NewReactionHandler(rs services.ReactionService) *ReactionHandler {
	return &ReactionHandler{reactionService: rs}
}

// ToggleReaction ставит, меняет или снимает реакцию. Повторная отправка
// того же типа снимает реакцию.
func (h *ReactionHandler) ToggleReaction(w http.ResponseWriter, r *http.Request) {
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
		Type models.ReactionType `json:"type"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	state, counts, err := h.reactionService.Toggle(r.Context(), currentUserID, ratingID, input.Type)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"reaction": state, // null, если реакция снята
		"counts":   counts,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ReactionHandler) ListReactions(w http.ResponseWriter, r *http.Request) {
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

	reactions, err := h.reactionService.List(r.Context(), currentUserID, ratingID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"reactions": reactions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
