package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/clubratings/club-ratings/besoccer"
	"github.com/clubratings/club-ratings/scrape"
	"github.com/clubratings/club-ratings/services"
	"github.com/clubratings/club-ratings/sofascore"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // Ошибка программиста: dst не указатель.
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func slogWriteError(r *http.Request, err error) {
	slog.Error("failed to write response body",
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Error("failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, r, http.StatusNotFound, "the requested resource could not be found")
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, message)
}

// upstreamFailureResponse отвечает статусом источника (или 500) и подсказкой,
// как обойти блокировку.
func upstreamFailureResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var upstreamErr *scrape.UpstreamError
	if errors.As(err, &upstreamErr) && upstreamErr.StatusCode >= 400 {
		status = upstreamErr.StatusCode
	}

	env := jsonResponse{
		"error":   "upstream fetch failed",
		"message": err.Error(),
		"hint":    "the source may be blocking this server; set SCRAPER_API_KEY to route requests through a paid scraping service",
	}
	if writeErr := writeJSON(w, status, env, nil); writeErr != nil {
		slog.Error("failed to write error response", slog.Any("error", writeErr))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

// getIDFromURL читает числовой параметр маршрута.
func getIDFromURL(r *http.Request, paramName string) (int, error) {
	idStr := chi.URLParam(r, paramName)
	id, err := strconv.Atoi(idStr)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s parameter in URL", paramName)
	}
	return id, nil
}

func unprocessableResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnprocessableEntity, message)
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var upstreamErr *scrape.UpstreamError

	switch {
	// Общие ошибки "не найдено"
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrRatingNotFound),
		errors.Is(err, services.ErrCommentNotFound),
		errors.Is(err, services.ErrFriendRequestNotFound),
		errors.Is(err, services.ErrFriendshipNotFound),
		errors.Is(err, services.ErrNotificationNotFound),
		errors.Is(err, sofascore.ErrNoFinishedMatch),
		errors.Is(err, besoccer.ErrNoFinishedMatch):
		notFoundResponse(w, r)

	// Конфликты
	case errors.Is(err, services.ErrRatingAlreadyExists),
		errors.Is(err, services.ErrAlreadyFriends),
		errors.Is(err, services.ErrFriendRequestPending):
		conflictResponse(w, r, err.Error())

	// Невалидные данные / бизнес-правила
	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrUnknownClub),
		errors.Is(err, services.ErrClubNotSelected),
		errors.Is(err, services.ErrSecondaryClubLimit),
		errors.Is(err, services.ErrSecondaryClubOverlap),
		errors.Is(err, services.ErrScoreOutOfRange),
		errors.Is(err, services.ErrEmptyComment),
		errors.Is(err, services.ErrInvalidReactionType),
		errors.Is(err, services.ErrSelfFriendRequest),
		errors.Is(err, services.ErrUnsupportedMatchSource),
		errors.Is(err, services.ErrInvalidAvatarType):
		badRequestResponse(w, r, err)

	// Матч не относится к выбранному клубу
	case errors.Is(err, sofascore.ErrNotClubMatch),
		errors.Is(err, besoccer.ErrNotClubMatch):
		unprocessableResponse(w, r, err.Error())

	// Доступ
	case errors.Is(err, services.ErrForbiddenOperation):
		forbiddenResponse(w, r, err.Error())

	// Блокировка или недоступность верхнего источника
	case errors.As(err, &upstreamErr):
		upstreamFailureResponse(w, r, err)

	case errors.Is(err, services.ErrAvatarStorageDisabled):
		errorResponse(w, r, http.StatusServiceUnavailable, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}
