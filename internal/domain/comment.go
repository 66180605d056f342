package domain

import "time"

// Comment is either a top-level comment on a post or a reply to one.
// ParentID is set for replies only.
type Comment struct {
	ID        string     `json:"id"`
	PostID    string     `json:"post_id,omitempty"`
	ParentID  string     `json:"comment_id,omitempty"`
	UserID    string     `json:"user_id"`
	Content   string     `json:"content"`
	Likes     int        `json:"likes"`
	Replies   []*Comment `json:"replies,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *Comment) IsReply() bool {
	return c.ParentID != ""
}

type CommentRequest struct {
	Content string `json:"comment" validate:"required,max=2000"`
}

type ReplyRequest struct {
	Content string `json:"reply" validate:"required,max=2000"`
}
