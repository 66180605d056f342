package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"pixfeed-server/internal/domain"
	"pixfeed-server/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockState struct {
	users        map[string]domain.User
	codes        map[int64]domain.ResetCode
	posts        map[string]domain.Post
	views        map[string]bool
	likes        map[string]domain.PostLike
	comments     map[string]domain.Comment
	commentLikes map[string]bool
	saves        map[string]domain.Save
	nextCodeID   int64
}

func newMockState() *mockState {
	return &mockState{
		users:        map[string]domain.User{},
		codes:        map[int64]domain.ResetCode{},
		posts:        map[string]domain.Post{},
		views:        map[string]bool{},
		likes:        map[string]domain.PostLike{},
		comments:     map[string]domain.Comment{},
		commentLikes: map[string]bool{},
		saves:        map[string]domain.Save{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *mockState) clone() *mockState {
	return &mockState{
		users:        cloneMap(s.users),
		codes:        cloneMap(s.codes),
		posts:        cloneMap(s.posts),
		views:        cloneMap(s.views),
		likes:        cloneMap(s.likes),
		comments:     cloneMap(s.comments),
		commentLikes: cloneMap(s.commentLikes),
		saves:        cloneMap(s.saves),
		nextCodeID:   s.nextCodeID,
	}
}

type mockDB struct {
	mu   sync.Mutex
	txMu sync.Mutex
	st   *mockState
}

// mockStore is an in-memory repository.Store. InTx serializes transactions
// and restores the previous state when fn fails.
type mockStore struct {
	db   *mockDB
	inTx bool
}

func newMockStore() *mockStore {
	return &mockStore{db: &mockDB{st: newMockState()}}
}

func (s *mockStore) Users() repository.UserRepository           { return &mockUsers{s.db} }
func (s *mockStore) ResetCodes() repository.ResetCodeRepository { return &mockCodes{s.db} }
func (s *mockStore) Posts() repository.PostRepository           { return &mockPosts{s.db} }
func (s *mockStore) Comments() repository.CommentRepository     { return &mockComments{s.db} }
func (s *mockStore) Likes() repository.LikeRepository           { return &mockLikes{s.db} }
func (s *mockStore) Saves() repository.SaveRepository           { return &mockSaves{s.db} }

func (s *mockStore) InTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	s.db.txMu.Lock()
	defer s.db.txMu.Unlock()

	s.db.mu.Lock()
	snapshot := s.db.st.clone()
	s.db.mu.Unlock()

	if err := fn(ctx, &mockStore{db: s.db, inTx: true}); err != nil {
		s.db.mu.Lock()
		s.db.st = snapshot
		s.db.mu.Unlock()
		return err
	}
	return nil
}

func (s *mockStore) codeCount() int {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return len(s.db.st.codes)
}

func (s *mockStore) codes() []domain.ResetCode {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make([]domain.ResetCode, 0, len(s.db.st.codes))
	for _, c := range s.db.st.codes {
		out = append(out, c)
	}
	return out
}

func key(parts ...string) string { return strings.Join(parts, "|") }

type mockUsers struct{ db *mockDB }

func (r *mockUsers) conflict(u *domain.User) error {
	for _, other := range r.db.st.users {
		if other.ID == u.ID {
			continue
		}
		if other.Username == u.Username {
			return domain.ErrUsernameTaken
		}
		if u.Email != nil && other.Email != nil && *u.Email == *other.Email {
			return domain.ErrEmailTaken
		}
		if u.PhoneNumber != nil && other.PhoneNumber != nil && *u.PhoneNumber == *other.PhoneNumber {
			return domain.ErrPhoneTaken
		}
	}
	return nil
}

func (r *mockUsers) Create(ctx context.Context, u *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.conflict(u); err != nil {
		return err
	}
	r.db.st.users[u.ID] = *u
	return nil
}

func (r *mockUsers) find(match func(u domain.User) bool) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.st.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *mockUsers) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.ID == id })
}

func (r *mockUsers) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Username == username })
}

func (r *mockUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email != nil && *u.Email == email })
}

func (r *mockUsers) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.PhoneNumber != nil && *u.PhoneNumber == phone })
}

func (r *mockUsers) Update(ctx context.Context, u *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.st.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	if err := r.conflict(u); err != nil {
		return err
	}
	r.db.st.users[u.ID] = *u
	return nil
}

func (r *mockUsers) UpdatePassword(ctx context.Context, id, hashed string, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.st.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Password = hashed
	u.UpdatedAt = at
	r.db.st.users[id] = u
	return nil
}

func (r *mockUsers) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.st.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.db.st.users, id)
	for pid, p := range r.db.st.posts {
		if p.OwnerID == id {
			delete(r.db.st.posts, pid)
		}
	}
	for cid, c := range r.db.st.codes {
		if c.UserID == id {
			delete(r.db.st.codes, cid)
		}
	}
	return nil
}

func (r *mockUsers) Search(ctx context.Context, query string, limit int) ([]*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.User
	for _, u := range r.db.st.users {
		if strings.Contains(strings.ToLower(u.Username), strings.ToLower(query)) {
			found := u
			out = append(out, &found)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type mockCodes struct{ db *mockDB }

func (r *mockCodes) Create(ctx context.Context, c *domain.ResetCode) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.st.nextCodeID++
	c.ID = r.db.st.nextCodeID
	r.db.st.codes[c.ID] = *c
	return nil
}

func (r *mockCodes) Consume(ctx context.Context, userID string, code int, purpose string, now time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, c := range r.db.st.codes {
		if c.UserID == userID && c.Code == code && c.Purpose == purpose && c.ExpiresAt.After(now) {
			delete(r.db.st.codes, id)
			return nil
		}
	}
	return domain.ErrCodeNotFound
}

func (r *mockCodes) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, c := range r.db.st.codes {
		if !c.ExpiresAt.After(now) {
			delete(r.db.st.codes, id)
			n++
		}
	}
	return n, nil
}

type mockPosts struct{ db *mockDB }

func (r *mockPosts) Create(ctx context.Context, p *domain.Post) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.st.posts[p.ID] = *p
	return nil
}

func (r *mockPosts) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.st.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	return &p, nil
}

func (r *mockPosts) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*domain.Post{}
	for _, p := range r.db.st.posts {
		if p.OwnerID == ownerID {
			found := p
			out = append(out, &found)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *mockPosts) Update(ctx context.Context, p *domain.Post) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.st.posts[p.ID]; !ok {
		return domain.ErrPostNotFound
	}
	r.db.st.posts[p.ID] = *p
	return nil
}

func (r *mockPosts) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.st.posts[id]; !ok {
		return domain.ErrPostNotFound
	}
	delete(r.db.st.posts, id)
	return nil
}

func (r *mockPosts) Stats(ctx context.Context, id string) (domain.PostStats, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var s domain.PostStats
	for _, l := range r.db.st.likes {
		if l.PostID == id {
			s.Likes++
		}
	}
	for k := range r.db.st.views {
		if strings.HasSuffix(k, "|"+id) {
			s.Views++
		}
	}
	for _, c := range r.db.st.comments {
		if c.PostID == id && !c.IsReply() {
			s.Comments++
		}
	}
	return s, nil
}

func (r *mockPosts) RecordView(ctx context.Context, userID, postID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.st.views[key(userID, postID)] = true
	return nil
}

type mockComments struct{ db *mockDB }

func (r *mockComments) Create(ctx context.Context, c *domain.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.st.comments[c.ID] = *c
	return nil
}

func (r *mockComments) likesOf(id string) int {
	n := 0
	for k := range r.db.st.commentLikes {
		if strings.HasSuffix(k, "|"+id) {
			n++
		}
	}
	return n
}

func (r *mockComments) FindByID(ctx context.Context, id string) (*domain.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.st.comments[id]
	if !ok {
		return nil, domain.ErrCommentNotFound
	}
	c.Likes = r.likesOf(id)
	return &c, nil
}

func (r *mockComments) list(match func(c domain.Comment) bool) []*domain.Comment {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*domain.Comment{}
	for _, c := range r.db.st.comments {
		if match(c) {
			found := c
			found.Likes = r.likesOf(c.ID)
			out = append(out, &found)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *mockComments) ListByPost(ctx context.Context, postID string) ([]*domain.Comment, error) {
	return r.list(func(c domain.Comment) bool { return c.PostID == postID && !c.IsReply() }), nil
}

func (r *mockComments) ListRepliesByPost(ctx context.Context, postID string) ([]*domain.Comment, error) {
	return r.list(func(c domain.Comment) bool { return c.PostID == postID && c.IsReply() }), nil
}

func (r *mockComments) UpdateContent(ctx context.Context, c *domain.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.st.comments[c.ID]
	if !ok {
		return domain.ErrCommentNotFound
	}
	stored.Content = c.Content
	stored.UpdatedAt = c.UpdatedAt
	r.db.st.comments[c.ID] = stored
	return nil
}

func (r *mockComments) Delete(ctx context.Context, c *domain.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.st.comments[c.ID]; !ok {
		return domain.ErrCommentNotFound
	}
	delete(r.db.st.comments, c.ID)
	return nil
}

func (r *mockComments) Like(ctx context.Context, userID string, target *domain.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	k := key(userID, target.ID)
	if r.db.st.commentLikes[k] {
		return domain.ErrAlreadyLiked
	}
	r.db.st.commentLikes[k] = true
	return nil
}

func (r *mockComments) Unlike(ctx context.Context, userID string, target *domain.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	k := key(userID, target.ID)
	if !r.db.st.commentLikes[k] {
		return domain.ErrLikeNotFound
	}
	delete(r.db.st.commentLikes, k)
	return nil
}

type mockLikes struct{ db *mockDB }

func (r *mockLikes) Create(ctx context.Context, l *domain.PostLike) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	k := key(l.UserID, l.PostID)
	if _, ok := r.db.st.likes[k]; ok {
		return domain.ErrAlreadyLiked
	}
	r.db.st.likes[k] = *l
	return nil
}

func (r *mockLikes) Delete(ctx context.Context, userID, postID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	k := key(userID, postID)
	if _, ok := r.db.st.likes[k]; !ok {
		return domain.ErrLikeNotFound
	}
	delete(r.db.st.likes, k)
	return nil
}

func (r *mockLikes) ListLikedPosts(ctx context.Context, userID string) ([]*domain.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*domain.Post{}
	for _, l := range r.db.st.likes {
		if l.UserID != userID {
			continue
		}
		if p, ok := r.db.st.posts[l.PostID]; ok {
			out = append(out, &p)
		}
	}
	return out, nil
}

type mockSaves struct{ db *mockDB }

func (r *mockSaves) Create(ctx context.Context, s *domain.Save) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, other := range r.db.st.saves {
		if other.UserID == s.UserID && other.PostID == s.PostID {
			return domain.ErrAlreadySaved
		}
	}
	r.db.st.saves[s.ID] = *s
	return nil
}

func (r *mockSaves) FindByID(ctx context.Context, id string) (*domain.Save, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.st.saves[id]
	if !ok {
		return nil, domain.ErrSaveNotFound
	}
	return &s, nil
}

func (r *mockSaves) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.st.saves[id]; !ok {
		return domain.ErrSaveNotFound
	}
	delete(r.db.st.saves, id)
	return nil
}

func (r *mockSaves) ListByUser(ctx context.Context, userID string) ([]*domain.Save, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []*domain.Save{}
	for _, s := range r.db.st.saves {
		if s.UserID != userID {
			continue
		}
		found := s
		if p, ok := r.db.st.posts[s.PostID]; ok {
			found.Post = &p
		}
		out = append(out, &found)
	}
	return out, nil
}

type sentMessage struct {
	channel string
	to      string
	body    string
}

type mockSender struct {
	mu   sync.Mutex
	err  error
	sent []sentMessage
}

func (m *mockSender) SendEmail(ctx context.Context, to, subject, body string) error {
	return m.record("email", to, body)
}

func (m *mockSender) SendSMS(ctx context.Context, to, body string) error {
	return m.record("sms", to, body)
}

func (m *mockSender) record(channel, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMessage{channel: channel, to: to, body: body})
	return nil
}

func (m *mockSender) last() (sentMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMessage{}, false
	}
	return m.sent[len(m.sent)-1], true
}
