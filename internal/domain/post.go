package domain

import "time"

type Post struct {
	ID               string    `json:"id"`
	OwnerID          string    `json:"owner_id"`
	Title            string    `json:"title"`
	PostFile         *string   `json:"post_file"`
	AccessToViews    bool      `json:"access_to_views"`
	AccessToLikes    bool      `json:"access_to_likes"`
	AccessToComments bool      `json:"access_to_comments"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// PostStats are the counters shown alongside a post.
type PostStats struct {
	Likes    int
	Views    int
	Comments int
}

// PostView is a post as returned to a viewer. A nil counter is hidden by the owner.
type PostView struct {
	ID       string  `json:"id"`
	OwnerID  string  `json:"owner_id"`
	Title    string  `json:"title"`
	PostFile *string `json:"post_file"`
	Likes    *int    `json:"likes"`
	Views    *int    `json:"views"`
	Comments *int    `json:"comments"`
}

// NewPostView applies the post's visibility flags to its counters.
func NewPostView(p *Post, stats PostStats) *PostView {
	v := &PostView{
		ID:       p.ID,
		OwnerID:  p.OwnerID,
		Title:    p.Title,
		PostFile: p.PostFile,
	}
	if p.AccessToLikes {
		v.Likes = &stats.Likes
	}
	if p.AccessToViews {
		v.Views = &stats.Views
	}
	if p.AccessToComments {
		v.Comments = &stats.Comments
	}
	return v
}

type PostRequest struct {
	Title            string  `json:"title" validate:"required,max=200"`
	PostFile         *string `json:"post_file" validate:"omitempty,max=255"`
	AccessToViews    bool    `json:"access_to_views"`
	AccessToComments bool    `json:"access_to_comments"`
	AccessToLikes    bool    `json:"access_to_likes"`
}

type PostLike struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PostID    string    `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Save struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PostID    string    `json:"post_id"`
	Post      *Post     `json:"post,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
