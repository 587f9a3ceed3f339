package handlers

import (
	"time"

	"github.com/google/uuid"

	"github.com/the-dramaturgy/dramaturgy-service/internal/models"
)

// Ниже — API-схемы (JSON) и конвертация из доменных моделей.
// Временные метки наружу уходят в RFC3339 (UTC).

// TokenPairResponse — пара токенов.
type TokenPairResponse struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

func tokenPairResponse(tp *models.TokenPair) TokenPairResponse {
	return TokenPairResponse{
		AccessToken:      tp.AccessToken,
		AccessExpiresAt:  tp.AccessExpiresAt.UTC(),
		RefreshToken:     tp.RefreshToken,
		RefreshExpiresAt: tp.RefreshExpiresAt.UTC(),
	}
}

// UserResponse — публичное представление профиля.
// Email отдаётся только самому владельцу (см. userResponse).
type UserResponse struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email,omitempty"`
	Username      string    `json:"username"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	Visibility    string    `json:"visibility"`
	Bio           string    `json:"bio,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func userResponse(u *models.User, includeEmail bool) UserResponse {
	out := UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		Role:          u.Role.String(),
		EmailVerified: u.EmailVerified,
		Visibility:    u.Visibility.String(),
		Bio:           u.Bio,
		CreatedAt:     u.CreatedAt.UTC(),
	}
	if includeEmail {
		out.Email = u.Email
	}
	return out
}

// QuestionResponse — представление вопроса.
type QuestionResponse struct {
	ID                uuid.UUID  `json:"id"`
	AuthorID          uuid.UUID  `json:"author_id"`
	Title             string     `json:"title"`
	Content           string     `json:"content"`
	Status            string     `json:"status"`
	IsPrivate         bool       `json:"is_private"`
	RequestExpert     bool       `json:"request_expert"`
	IsSolved          bool       `json:"is_solved"`
	SolvedByReplyID   *uuid.UUID `json:"solved_by_reply_id,omitempty"`
	ExpertClaimedByID *uuid.UUID `json:"expert_claimed_by,omitempty"`
	ExpertClaimedAt   *time.Time `json:"expert_claimed_at,omitempty"`
	ReplyCount        int32      `json:"reply_count"`
	HelpfulCount      int32      `json:"helpful_count"`
	InsightfulCount   int32      `json:"insightful_count"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func questionResponse(q *models.Question) QuestionResponse {
	return QuestionResponse{
		ID:                q.ID,
		AuthorID:          q.AuthorID,
		Title:             q.Title,
		Content:           q.Content,
		Status:            q.Status.String(),
		IsPrivate:         q.IsPrivate,
		RequestExpert:     q.RequestExpert,
		IsSolved:          q.IsSolved,
		SolvedByReplyID:   q.SolvedByReplyID,
		ExpertClaimedByID: q.ExpertClaimedByID,
		ExpertClaimedAt:   q.ExpertClaimedAt,
		ReplyCount:        q.ReplyCount,
		HelpfulCount:      q.HelpfulCount,
		InsightfulCount:   q.InsightfulCount,
		CreatedAt:         q.CreatedAt.UTC(),
		UpdatedAt:         q.UpdatedAt.UTC(),
	}
}

func questionListResponse(rows []models.Question) []QuestionResponse {
	out := make([]QuestionResponse, 0, len(rows))
	for i := range rows {
		out = append(out, questionResponse(&rows[i]))
	}
	return out
}

// ReplyResponse — представление ответа.
type ReplyResponse struct {
	ID                  uuid.UUID `json:"id"`
	QuestionID          uuid.UUID `json:"question_id"`
	AuthorID            uuid.UUID `json:"author_id"`
	Content             string    `json:"content"`
	IsExpertPerspective bool      `json:"is_expert_perspective"`
	HelpfulCount        int32     `json:"helpful_count"`
	InsightfulCount     int32     `json:"insightful_count"`
	CommentCount        int32     `json:"comment_count"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func replyResponse(r *models.Reply) ReplyResponse {
	return ReplyResponse{
		ID:                  r.ID,
		QuestionID:          r.QuestionID,
		AuthorID:            r.AuthorID,
		Content:             r.Content,
		IsExpertPerspective: r.IsExpertPerspective,
		HelpfulCount:        r.HelpfulCount,
		InsightfulCount:     r.InsightfulCount,
		CommentCount:        r.CommentCount,
		CreatedAt:           r.CreatedAt.UTC(),
		UpdatedAt:           r.UpdatedAt.UTC(),
	}
}

func replyListResponse(rows []models.Reply) []ReplyResponse {
	out := make([]ReplyResponse, 0, len(rows))
	for i := range rows {
		out = append(out, replyResponse(&rows[i]))
	}
	return out
}

// CommentResponse — представление комментария.
type CommentResponse struct {
	ID              uuid.UUID  `json:"id"`
	ReplyID         uuid.UUID  `json:"reply_id"`
	AuthorID        uuid.UUID  `json:"author_id"`
	ParentCommentID *uuid.UUID `json:"parent_comment_id,omitempty"`
	Content         string     `json:"content"`
	HelpfulCount    int32      `json:"helpful_count"`
	InsightfulCount int32      `json:"insightful_count"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func commentResponse(c *models.Comment) CommentResponse {
	return CommentResponse{
		ID:              c.ID,
		ReplyID:         c.ReplyID,
		AuthorID:        c.AuthorID,
		ParentCommentID: c.ParentCommentID,
		Content:         c.Content,
		HelpfulCount:    c.HelpfulCount,
		InsightfulCount: c.InsightfulCount,
		CreatedAt:       c.CreatedAt.UTC(),
		UpdatedAt:       c.UpdatedAt.UTC(),
	}
}

func commentListResponse(rows []models.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, commentResponse(&rows[i]))
	}
	return out
}

// VoteResultResponse — исход toggle-голосования.
type VoteResultResponse struct {
	Action     string `json:"action"`
	Helpful    int32  `json:"helpful_count"`
	Insightful int32  `json:"insightful_count"`
}

func voteResultResponse(res *models.VoteResult) VoteResultResponse {
	return VoteResultResponse{
		Action:     string(res.Action),
		Helpful:    res.Helpful,
		Insightful: res.Insightful,
	}
}

// BookmarkResponse — представление закладки.
type BookmarkResponse struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func bookmarkResponse(b *models.Bookmark) BookmarkResponse {
	return BookmarkResponse{
		ID:         b.ID,
		QuestionID: b.QuestionID,
		CreatedAt:  b.CreatedAt.UTC(),
	}
}

func bookmarkListResponse(rows []models.Bookmark) []BookmarkResponse {
	out := make([]BookmarkResponse, 0, len(rows))
	for i := range rows {
		out = append(out, bookmarkResponse(&rows[i]))
	}
	return out
}

// NotificationResponse — представление уведомления.
type NotificationResponse struct {
	ID         uuid.UUID  `json:"id"`
	ActorID    uuid.UUID  `json:"actor_id"`
	Kind       string     `json:"kind"`
	QuestionID uuid.UUID  `json:"question_id"`
	ReplyID    *uuid.UUID `json:"reply_id,omitempty"`
	Read       bool       `json:"read"`
	CreatedAt  time.Time  `json:"created_at"`
}

func notificationResponse(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:         n.ID,
		ActorID:    n.ActorID,
		Kind:       n.Kind.String(),
		QuestionID: n.QuestionID,
		ReplyID:    n.ReplyID,
		Read:       n.Read,
		CreatedAt:  n.CreatedAt.UTC(),
	}
}

func notificationListResponse(rows []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(rows))
	for i := range rows {
		out = append(out, notificationResponse(&rows[i]))
	}
	return out
}
