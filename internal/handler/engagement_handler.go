package handler

import (
	"context"
	"log/slog"
	"net/http"

	"pixfeed-server/internal/domain"
	"pixfeed-server/internal/middleware"
	"pixfeed-server/pkg/response"

	"github.com/gorilla/mux"
)

type LikeService interface {
	Like(ctx context.Context, userID, postID string) (*domain.PostLike, error)
	Unlike(ctx context.Context, userID, postID string) error
	ListMine(ctx context.Context, userID string) ([]*domain.Post, error)
}

type SaveService interface {
	Save(ctx context.Context, userID, postID string) (*domain.Save, error)
	Unsave(ctx context.Context, actorID, saveID string) error
	ListMine(ctx context.Context, userID string) ([]*domain.Save, error)
}

// EngagementHandler serves post likes and saves.
type EngagementHandler struct {
	likeService LikeService
	saveService SaveService
	logger      *slog.Logger
}

func NewEngagementHandler(likeService LikeService, saveService SaveService, logger *slog.Logger) *EngagementHandler {
	return &EngagementHandler{
		likeService: likeService,
		saveService: saveService,
		logger:      logger,
	}
}

func (h *EngagementHandler) LikePost(w http.ResponseWriter, r *http.Request) {
	like, err := h.likeService.Like(r.Context(), middleware.GetUserID(r), mux.Vars(r)["post_id"])
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, like)
}

func (h *EngagementHandler) UnlikePost(w http.ResponseWriter, r *http.Request) {
	if err := h.likeService.Unlike(r.Context(), middleware.GetUserID(r), mux.Vars(r)["post_id"]); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EngagementHandler) ListLiked(w http.ResponseWriter, r *http.Request) {
	posts, err := h.likeService.ListMine(r.Context(), middleware.GetUserID(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, posts)
}

func (h *EngagementHandler) SavePost(w http.ResponseWriter, r *http.Request) {
	save, err := h.saveService.Save(r.Context(), middleware.GetUserID(r), mux.Vars(r)["post_id"])
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, save)
}

func (h *EngagementHandler) Unsave(w http.ResponseWriter, r *http.Request) {
	if err := h.saveService.Unsave(r.Context(), middleware.GetUserID(r), mux.Vars(r)["save_id"]); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EngagementHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	saves, err := h.saveService.ListMine(r.Context(), middleware.GetUserID(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, saves)
}
