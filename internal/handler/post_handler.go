package handler

import (
	"context"
	"log/slog"
	"net/http"

	"pixfeed-server/internal/domain"
	"pixfeed-server/internal/middleware"
	"pixfeed-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type PostService interface {
	Create(ctx context.Context, ownerID string, req *domain.PostRequest) (*domain.Post, error)
	Get(ctx context.Context, viewerID, postID string) (*domain.PostView, error)
	ListMine(ctx context.Context, ownerID string) ([]*domain.PostView, error)
	Update(ctx context.Context, actorID, postID string, req *domain.PostRequest) (*domain.Post, error)
	Delete(ctx context.Context, actorID, postID string) error
}

type PostHandler struct {
	postService PostService
	validator   *validator.Validate
	logger      *slog.Logger
}

func NewPostHandler(postService PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		postService: postService,
		validator:   newValidator(),
		logger:      logger,
	}
}

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req domain.PostRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	post, err := h.postService.Create(r.Context(), middleware.GetUserID(r), &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, post)
}

func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	view, err := h.postService.Get(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, view)
}

func (h *PostHandler) ListMyPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.ListMine(r.Context(), middleware.GetUserID(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, posts)
}

func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var req domain.PostRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	post, err := h.postService.Update(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"], &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, post)
}

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.postService.Delete(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
