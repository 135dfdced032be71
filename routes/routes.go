package routes

import (
	"net/http"

	"github.com/clubratings/club-ratings/handlers"
	"github.com/clubratings/club-ratings/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
)

type Handlers struct {
	User         *handlers.UserHandler
	Club         *handlers.ClubHandler
	Match        *handlers.MatchHandler
	Proxy        *handlers.ProxyHandler
	Rating       *handlers.RatingHandler
	Comment      *handlers.CommentHandler
	Reaction     *handlers.ReactionHandler
	Friend       *handlers.FriendHandler
	Notification *handlers.NotificationHandler
	Stats        *handlers.StatsHandler
	WebSocket    *handlers.WebSocketHandler
}

func SetupRoutes(router *chi.Mux, auth *middleware.Authenticator, allowedOrigins []string, h Handlers) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Публичные маршруты
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/clubs", h.Club.ListClubs)
	router.Get("/api/proxy", h.Proxy.Proxy)

	// Защищённые маршруты
	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Route("/me", func(r chi.Router) {
			r.Get("/", h.User.GetMe)
			r.Patch("/", h.User.UpdateMe)
			r.Put("/club", h.User.SetClub)
			r.Put("/secondary-clubs", h.User.SetSecondaryClubs)
			r.Post("/avatar", h.User.UploadAvatar)
			r.Delete("/", h.User.DeleteMe)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/data", h.Match.GetMatchData)
			r.Get("/last", h.Match.GetLastMatch)
		})

		r.Route("/ratings", func(r chi.Router) {
			r.Post("/", h.Rating.CreateRating)
			r.Get("/", h.Rating.ListUserRatings)
			r.Get("/feed", h.Rating.FriendsFeed)

			r.Route("/{ratingID}", func(r chi.Router) {
				r.Get("/", h.Rating.GetRating)
				r.Put("/", h.Rating.UpdateRating)
				r.Delete("/", h.Rating.DeleteRating)

				r.Post("/comments", h.Comment.AddComment)
				r.Get("/comments", h.Comment.ListComments)

				r.Post("/reactions", h.Reaction.ToggleReaction)
				r.Get("/reactions", h.Reaction.ListReactions)
			})
		})

		r.Delete("/comments/{commentID}", h.Comment.DeleteComment)

		r.Route("/friends", func(r chi.Router) {
			r.Get("/", h.Friend.ListFriends)
			r.Delete("/{friendID}", h.Friend.RemoveFriend)
			r.Get("/code", h.Friend.GetMyCode)
			r.Get("/code/{code}", h.Friend.FindByCode)

			r.Route("/requests", func(r chi.Router) {
				r.Get("/", h.Friend.ListRequests)
				r.Post("/", h.Friend.SendRequest)
				r.Post("/{requestID}/accept", h.Friend.AcceptRequest)
				r.Post("/{requestID}/reject", h.Friend.RejectRequest)
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.Notification.ListNotifications)
			r.Get("/unread-count", h.Notification.UnreadCount)
			r.Post("/read-all", h.Notification.MarkAllRead)
			r.Post("/{notificationID}/read", h.Notification.MarkRead)
			r.Delete("/", h.Notification.DeleteAllNotifications)
			r.Delete("/{notificationID}", h.Notification.DeleteNotification)
		})

		r.Get("/stats/dashboard", h.Stats.Dashboard)

		r.Get("/ws/notifications", h.WebSocket.ServeWs)
	})
}
