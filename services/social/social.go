// Package social covers comments, comment likes, bookmarks and follows.
package social

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Macwinner1/Xecret/models"
	"github.com/Macwinner1/Xecret/store"
	"github.com/Macwinner1/Xecret/utils"
)

const (
	ActionLiked      = "liked"
	ActionUnliked    = "unliked"
	ActionAdded      = "added"
	ActionRemoved    = "removed"
	ActionFollowed   = "followed"
	ActionUnfollowed = "unfollowed"
)

var (
	ErrCommentTextRequired = errors.New("comment text required")
	ErrContentNotFound     = errors.New("content not found")
	ErrCommentNotFound     = errors.New("comment not found")
	ErrNotAuthorized       = errors.New("not authorized")
	ErrUserNotFound        = errors.New("user not found")
	ErrSelfFollow          = errors.New("cannot follow yourself")
	ErrStreamingDisabled   = errors.New("comment streaming disabled")
)

// errRaced reports that a concurrent toggle created the row first. The
// transaction is rolled back and the toggle resolves to the added state.
var errRaced = errors.New("created concurrently")

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// Mentions returns the usernames referenced as @name in text, in order.
func Mentions(text string) []string {
	out := []string{}
	for _, m := range mentionPattern.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return out
}

type Service struct {
	repo store.Repository
	hub  *Broadcaster
}

// New builds the service. hub may be nil when nobody streams comments.
func New(repo store.Repository, hub *Broadcaster) *Service {
	return &Service{repo: repo, hub: hub}
}

func (s *Service) publish(contentID, kind string, payload any) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(contentID, Event{Type: kind, Payload: payload})
}

func (s *Service) liveContent(ctx context.Context, id string) (*models.Content, error) {
	content, err := s.repo.GetContent(ctx, id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && content.IsDeleted) {
		return nil, ErrContentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}
	return content, nil
}

func (s *Service) CreateComment(ctx context.Context, userID string, req models.CommentCreate) (*models.Comment, error) {
	if strings.TrimSpace(req.CommentText) == "" {
		return nil, ErrCommentTextRequired
	}
	if _, err := s.liveContent(ctx, req.ContentID); err != nil {
		return nil, err
	}
	user, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	comment := &models.Comment{
		ContentID:   req.ContentID,
		UserID:      userID,
		Username:    user.Username,
		CommentText: req.CommentText,
		Mentions:    Mentions(req.CommentText),
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	utils.LogSuccessWithUser(userID, "Comment created on content "+req.ContentID)
	s.publish(comment.ContentID, EventNewComment, comment)
	return comment, nil
}

// ListComments returns the live comments of a content, newest first, flagged
// with whether viewerID liked each one. viewerID may be empty.
func (s *Service) ListComments(ctx context.Context, contentID, viewerID string) ([]models.CommentView, error) {
	comments, err := s.repo.ListComments(ctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	views := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		view := models.CommentView{Comment: c}
		if viewerID != "" {
			_, err := s.repo.FindCommentLike(ctx, c.ID, viewerID)
			switch {
			case err == nil:
				view.IsLiked = true
			case !errors.Is(err, store.ErrNotFound):
				return nil, fmt.Errorf("find like: %w", err)
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// ToggleCommentLike likes the comment, or unlikes it when the user already
// did. The like count never drops below zero.
func (s *Service) ToggleCommentLike(ctx context.Context, userID, commentID string) (models.ToggleResult, error) {
	var result models.ToggleResult
	var contentID string
	err := s.repo.Transaction(ctx, func(tx store.Repository) error {
		comment, err := tx.GetComment(ctx, commentID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && comment.IsDeleted) {
			return ErrCommentNotFound
		}
		if err != nil {
			return fmt.Errorf("get comment: %w", err)
		}
		contentID = comment.ContentID

		like, err := tx.FindCommentLike(ctx, commentID, userID)
		switch {
		case err == nil:
			if err := tx.DeleteCommentLike(ctx, like.ID); err != nil {
				return fmt.Errorf("delete like: %w", err)
			}
			result.Action = ActionUnliked
		case errors.Is(err, store.ErrNotFound):
			l := &models.CommentLike{CommentID: commentID, UserID: userID}
			if err := tx.CreateCommentLike(ctx, l); err != nil {
				if errors.Is(err, store.ErrDuplicate) {
					return errRaced
				}
				return fmt.Errorf("create like: %w", err)
			}
			result.Action = ActionLiked
			result.ID = l.ID
		default:
			return fmt.Errorf("find like: %w", err)
		}

		updated, err := tx.UpdateComment(ctx, commentID, func(c *models.Comment) error {
			if result.Action == ActionLiked {
				c.LikeCount++
			} else if c.LikeCount > 0 {
				c.LikeCount--
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("update comment: %w", err)
		}
		result.Count = updated.LikeCount
		return nil
	})
	if errors.Is(err, errRaced) {
		return s.alreadyLiked(ctx, userID, commentID)
	}
	if err != nil {
		return models.ToggleResult{}, err
	}
	s.publish(contentID, EventCommentLiked, map[string]any{
		"comment_id": commentID,
		"like_count": result.Count,
	})
	return result, nil
}

// alreadyLiked answers a like that lost the race to an identical one: the
// like stands and the count is the committed one.
func (s *Service) alreadyLiked(ctx context.Context, userID, commentID string) (models.ToggleResult, error) {
	comment, err := s.repo.GetComment(ctx, commentID)
	if err != nil {
		return models.ToggleResult{}, fmt.Errorf("get comment: %w", err)
	}
	result := models.ToggleResult{Action: ActionLiked, Count: comment.LikeCount}
	if like, err := s.repo.FindCommentLike(ctx, commentID, userID); err == nil {
		result.ID = like.ID
	}
	return result, nil
}

// DeleteComment soft-deletes a comment. Its author and the creator of the
// commented content may delete it.
func (s *Service) DeleteComment(ctx context.Context, userID, commentID string) error {
	comment, err := s.repo.GetComment(ctx, commentID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && comment.IsDeleted) {
		return ErrCommentNotFound
	}
	if err != nil {
		return fmt.Errorf("get comment: %w", err)
	}

	if comment.UserID != userID {
		content, err := s.repo.GetContent(ctx, comment.ContentID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("get content: %w", err)
		}
		if content == nil || content.CreatorID != userID {
			return ErrNotAuthorized
		}
	}

	if _, err := s.repo.UpdateComment(ctx, commentID, func(c *models.Comment) error {
		c.IsDeleted = true
		return nil
	}); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	utils.LogSuccessWithUser(userID, "Comment deleted: "+commentID)
	s.publish(comment.ContentID, EventDeletedComment, map[string]string{"comment_id": commentID})
	return nil
}

// ToggleBookmark adds the content to the user's bookmarks, or removes it.
func (s *Service) ToggleBookmark(ctx context.Context, userID, contentID string) (models.ToggleResult, error) {
	var result models.ToggleResult
	err := s.repo.Transaction(ctx, func(tx store.Repository) error {
		content, err := tx.GetContent(ctx, contentID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && content.IsDeleted) {
			return ErrContentNotFound
		}
		if err != nil {
			return fmt.Errorf("get content: %w", err)
		}

		existing, err := tx.FindBookmark(ctx, userID, contentID)
		switch {
		case err == nil:
			if err := tx.DeleteBookmark(ctx, existing.ID); err != nil {
				return fmt.Errorf("delete bookmark: %w", err)
			}
			result.Action = ActionRemoved
			return nil
		case errors.Is(err, store.ErrNotFound):
			b := &models.Bookmark{UserID: userID, ContentID: contentID}
			if err := tx.CreateBookmark(ctx, b); err != nil {
				if errors.Is(err, store.ErrDuplicate) {
					return errRaced
				}
				return fmt.Errorf("create bookmark: %w", err)
			}
			result.Action = ActionAdded
			result.ID = b.ID
			return nil
		default:
			return fmt.Errorf("find bookmark: %w", err)
		}
	})
	if errors.Is(err, errRaced) {
		return models.ToggleResult{Action: ActionAdded}, nil
	}
	if err != nil {
		return models.ToggleResult{}, err
	}
	return result, nil
}

// ListBookmarks returns the user's bookmarks with their content. Bookmarks
// pointing at deleted content are left out.
func (s *Service) ListBookmarks(ctx context.Context, userID string) ([]models.BookmarkView, error) {
	bookmarks, err := s.repo.ListBookmarks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	views := make([]models.BookmarkView, 0, len(bookmarks))
	for _, b := range bookmarks {
		content, err := s.repo.GetContent(ctx, b.ContentID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get content: %w", err)
		}
		if content.IsDeleted {
			continue
		}
		views = append(views, models.BookmarkView{Bookmark: b, Content: *content})
	}
	return views, nil
}

func (s *Service) userByName(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ToggleFollow makes followerID follow username, or unfollow when already following.
func (s *Service) ToggleFollow(ctx context.Context, followerID, username string) (models.ToggleResult, error) {
	target, err := s.userByName(ctx, username)
	if err != nil {
		return models.ToggleResult{}, err
	}
	if target.ID == followerID {
		return models.ToggleResult{}, ErrSelfFollow
	}

	var result models.ToggleResult
	err = s.repo.Transaction(ctx, func(tx store.Repository) error {
		existing, err := tx.FindFollow(ctx, followerID, target.ID)
		switch {
		case err == nil:
			if err := tx.DeleteFollow(ctx, existing.ID); err != nil {
				return fmt.Errorf("delete follow: %w", err)
			}
			result.Action = ActionUnfollowed
			return nil
		case errors.Is(err, store.ErrNotFound):
			f := &models.Follow{FollowerID: followerID, FollowingID: target.ID}
			if err := tx.CreateFollow(ctx, f); err != nil {
				if errors.Is(err, store.ErrDuplicate) {
					return errRaced
				}
				return fmt.Errorf("create follow: %w", err)
			}
			result.Action = ActionFollowed
			result.ID = f.ID
			return nil
		default:
			return fmt.Errorf("find follow: %w", err)
		}
	})
	if errors.Is(err, errRaced) {
		return models.ToggleResult{Action: ActionFollowed}, nil
	}
	if err != nil {
		return models.ToggleResult{}, err
	}
	utils.LogSuccessWithUser(followerID, fmt.Sprintf("%s %s", result.Action, username))
	return result, nil
}

func (s *Service) FollowStats(ctx context.Context, username string) (models.FollowStats, error) {
	user, err := s.userByName(ctx, username)
	if err != nil {
		return models.FollowStats{}, err
	}
	stats, err := s.repo.CountFollows(ctx, user.ID)
	if err != nil {
		return models.FollowStats{}, fmt.Errorf("count follows: %w", err)
	}
	return stats, nil
}

// Watch subscribes to the comment events of a live content. The returned
// cancel func must be called once the subscriber is gone.
func (s *Service) Watch(ctx context.Context, contentID string) (<-chan Event, func(), error) {
	if s.hub == nil {
		return nil, nil, ErrStreamingDisabled
	}
	if _, err := s.liveContent(ctx, contentID); err != nil {
		return nil, nil, err
	}
	ch := s.hub.Subscribe(contentID)
	return ch, func() { s.hub.Unsubscribe(contentID, ch) }, nil
}
