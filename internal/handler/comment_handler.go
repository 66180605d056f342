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

type CommentService interface {
	List(ctx context.Context, postID string) ([]*domain.Comment, error)
	Add(ctx context.Context, userID, postID string, req *domain.CommentRequest) (*domain.Comment, error)
	Reply(ctx context.Context, userID, commentID string, req *domain.ReplyRequest) (*domain.Comment, error)
	Update(ctx context.Context, actorID, commentID, content string) (*domain.Comment, error)
	Delete(ctx context.Context, actorID, commentID string) error
	Like(ctx context.Context, userID, commentID string) error
	Unlike(ctx context.Context, userID, commentID string) error
}

type CommentHandler struct {
	commentService CommentService
	validator      *validator.Validate
	logger         *slog.Logger
}

func NewCommentHandler(commentService CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		validator:      newValidator(),
		logger:         logger,
	}
}

func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.commentService.List(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, comments)
}

func (h *CommentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req domain.CommentRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	comment, err := h.commentService.Add(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"], &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, comment)
}

func (h *CommentHandler) Reply(w http.ResponseWriter, r *http.Request) {
	var req domain.ReplyRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	reply, err := h.commentService.Reply(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"], &req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Created(w, reply)
}

func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	var req domain.CommentRequest
	if !decode(w, r, h.validator, &req) {
		return
	}

	comment, err := h.commentService.Update(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"], req.Content)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Success(w, comment)
}

func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.commentService.Delete(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CommentHandler) LikeComment(w http.ResponseWriter, r *http.Request) {
	if err := h.commentService.Like(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.Message(w, http.StatusCreated, "liked", nil)
}

func (h *CommentHandler) UnlikeComment(w http.ResponseWriter, r *http.Request) {
	if err := h.commentService.Unlike(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
