package handlers

import (
	"errors"
	"net/http"

	"github.com/clubratings/club-ratings/middleware"
	"github.com/clubratings/club-ratings/services"
	"github.com/go-chi/chi/v5"
)

type FriendHandler struct {
	friendService services.FriendService
}

func NewFriendHandler(fs services.FriendService) *FriendHandler {
	return &FriendHandler{friendService: fs}
}

// GetMyCode возвращает код дружбы пользователя, генерируя его при первом обращении.
func (h *FriendHandler) GetMyCode(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	code, err := h.friendService.EnsureFriendCode(r.Context(), currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"friend_code": code}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FindByCode ищет публичный профиль по коду дружбы.
func (h *FriendHandler) FindByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		badRequestResponse(w, r, errors.New("missing friend code"))
		return
	}

	profile, err := h.friendService.FindByFriendCode(r.Context(), code)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": profile}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input struct {
		FriendCode string `json:"friend_code"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	request, err := h.friendService.SendRequest(r.Context(), currentUserID, input.FriendCode)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"request": request}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FriendHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := getIDFromURL(r, "requestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	request, err := h.friendService.AcceptRequest(r.Context(), currentUserID, requestID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"request": request}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FriendHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := getIDFromURL(r, "requestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := h.friendService.RejectRequest(r.Context(), currentUserID, requestID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *FriendHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	requests, err := h.friendService.ListPendingRequests(r.Context(), currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"requests": requests}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FriendHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	friends, err := h.friendService.ListFriends(r.Context(), currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"friends": friends}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FriendHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	friendID := chi.URLParam(r, "friendID")
	if friendID == "" {
		badRequestResponse(w, r, errors.New("missing friend id"))
		return
	}

	if err := h.friendService.RemoveFriend(r.Context(), currentUserID, friendID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
