package handler

import (
	"log/slog"
	"net/http"

	"pixfeed-server/internal/middleware"
	"pixfeed-server/pkg/response"

	"github.com/gorilla/mux"
)

type Handlers struct {
	Auth       *AuthHandler
	User       *UserHandler
	Post       *PostHandler
	Comment    *CommentHandler
	Engagement *EngagementHandler
}

type RouterConfig struct {
	ServiceName    string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// NewRouter mounts every endpoint under /api/v1. Routes other than auth
// require a valid access token.
func NewRouter(h Handlers, tokens middleware.TokenVerifier, cfg RouterConfig, logger *slog.Logger) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.TracingMiddleware(cfg.ServiceName))
	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins, cfg.AllowedMethods, cfg.AllowedHeaders))

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/register", h.Auth.Register).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/login", h.Auth.Login).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/refresh", h.Auth.RefreshToken).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/forgot-password", h.Auth.ForgotPassword).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/check-code/{code}/{user_id}", h.Auth.CheckCode).Methods("POST", "OPTIONS")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(tokens))

	protected.HandleFunc("/users/me", h.User.GetMe).Methods("GET", "OPTIONS")
	protected.HandleFunc("/users/me", h.User.UpdateMe).Methods("PATCH", "OPTIONS")
	protected.HandleFunc("/users/me", h.User.DeleteMe).Methods("DELETE", "OPTIONS")
	protected.HandleFunc("/users/change-password", h.User.ChangePassword).Methods("POST", "OPTIONS")
	protected.HandleFunc("/users/forgot-password", h.User.ForgotPassword).Methods("POST", "OPTIONS")
	protected.HandleFunc("/users/reset-password", h.User.ResetPassword).Methods("POST", "OPTIONS")
	protected.HandleFunc("/search/{username}", h.User.Search).Methods("GET", "OPTIONS")

	protected.HandleFunc("/posts", h.Post.CreatePost).Methods("POST", "OPTIONS")
	protected.HandleFunc("/posts/mine", h.Post.ListMyPosts).Methods("GET", "OPTIONS")
	protected.HandleFunc("/posts/{id}", h.Post.GetPost).Methods("GET", "OPTIONS")
	protected.HandleFunc("/posts/{id}", h.Post.UpdatePost).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/posts/{id}", h.Post.DeletePost).Methods("DELETE", "OPTIONS")

	protected.HandleFunc("/posts/{id}/comments", h.Comment.ListComments).Methods("GET", "OPTIONS")
	protected.HandleFunc("/posts/{id}/comments", h.Comment.AddComment).Methods("POST", "OPTIONS")
	protected.HandleFunc("/comments/{id}/replies", h.Comment.Reply).Methods("POST", "OPTIONS")
	protected.HandleFunc("/comments/{id}", h.Comment.UpdateComment).Methods("PATCH", "OPTIONS")
	protected.HandleFunc("/comments/{id}", h.Comment.DeleteComment).Methods("DELETE", "OPTIONS")
	protected.HandleFunc("/comments/{id}/like", h.Comment.LikeComment).Methods("POST", "OPTIONS")
	protected.HandleFunc("/comments/{id}/like", h.Comment.UnlikeComment).Methods("DELETE", "OPTIONS")

	protected.HandleFunc("/likes/mine", h.Engagement.ListLiked).Methods("GET", "OPTIONS")
	protected.HandleFunc("/likes/{post_id}", h.Engagement.LikePost).Methods("POST", "OPTIONS")
	protected.HandleFunc("/likes/{post_id}", h.Engagement.UnlikePost).Methods("DELETE", "OPTIONS")

	protected.HandleFunc("/saves/mine", h.Engagement.ListSaved).Methods("GET", "OPTIONS")
	protected.HandleFunc("/saves/{post_id}", h.Engagement.SavePost).Methods("POST", "OPTIONS")
	protected.HandleFunc("/saves/{save_id}", h.Engagement.Unsave).Methods("DELETE", "OPTIONS")

	r.HandleFunc("/health", healthHandler).Methods("GET")

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{"status": "healthy"})
}
