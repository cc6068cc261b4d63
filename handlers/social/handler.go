package social

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Macwinner1/Xecret/models"
	"github.com/Macwinner1/Xecret/services/social"
	"github.com/Macwinner1/Xecret/utils"
)

type Handler struct {
	social    *social.Service
	keepAlive time.Duration
}

func New(s *social.Service) *Handler {
	return &Handler{social: s, keepAlive: 30 * time.Second}
}

func socialError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, social.ErrCommentTextRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment text required"})
	case errors.Is(err, social.ErrContentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
	case errors.Is(err, social.ErrCommentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
	case errors.Is(err, social.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
	case errors.Is(err, social.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, social.ErrSelfFollow):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot follow yourself"})
	default:
		return false
	}
	return true
}

// CreateComment godoc
// @Summary Comment on a content item
// @Description @username mentions are extracted. The comment is pushed to stream subscribers.
// @Tags social
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.CommentCreate true "Comment"
// @Success 200 {object} map[string]interface{} "comment_id, comment"
// @Failure 400 {object} map[string]interface{} "error: Comment text required"
// @Failure 404 {object} map[string]interface{} "error: Content not found"
// @Router /social/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
	var req models.CommentCreate
	if !utils.ValidateRequestBody(c, &req) {
		return
	}

	comment, err := h.social.CreateComment(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		if !socialError(c, err) {
			utils.SendInternalError(c, err, "Error creating comment")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"comment_id": comment.ID,
		"comment":    comment,
	})
}

// ListComments godoc
// @Summary Comments of a content item
// @Description Newest first. is_liked reflects the caller when a token is sent.
// @Tags social
// @Produce json
// @Param contentId path string true "Content ID"
// @Success 200 {object} map[string]interface{} "comments"
// @Router /social/comments/{contentId} [get]
func (h *Handler) ListComments(c *gin.Context) {
	comments, err := h.social.ListComments(c.Request.Context(), c.Param("contentId"), c.GetString("user_id"))
	if err != nil {
		utils.SendInternalError(c, err, "Error retrieving comments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

func writeEvent(c *gin.Context, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", name, data)
	return err
}

// StreamComments godoc
// @Summary Live comment stream
// @Description Server-sent events: connected, existing_comment for the current comments, then new_comment, deleted_comment, comment_liked and a periodic ping
// @Tags social
// @Produce text/event-stream
// @Param contentId path string true "Content ID"
// @Success 200 {string} string "event stream"
// @Failure 404 {object} map[string]interface{} "error: Content not found"
// @Router /social/comments/{contentId}/stream [get]
func (h *Handler) StreamComments(c *gin.Context) {
	contentID := c.Param("contentId")
	ctx := c.Request.Context()

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	events, cancel, err := h.social.Watch(ctx, contentID)
	if err != nil {
		if !socialError(c, err) {
			utils.SendInternalError(c, err, "Error opening comment stream")
		}
		return
	}
	defer cancel()

	existing, err := h.social.ListComments(ctx, contentID, c.GetString("user_id"))
	if err != nil {
		utils.SendInternalError(c, err, "Error retrieving comments")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Status(http.StatusOK)

	if err := writeEvent(c, "connected", gin.H{"status": "connected"}); err != nil {
		return
	}
	for _, comment := range existing {
		if err := writeEvent(c, "existing_comment", comment); err != nil {
			return
		}
	}
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(c, ev.Type, ev.Payload); err != nil {
				utils.LogError(err, "Error writing comment event")
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if err := writeEvent(c, "ping", gin.H{}); err != nil {
				return
			}
			flusher.Flush()
		case <-ctx.Done():
			return
		}
	}
}

// ToggleCommentLike godoc
// @Summary Like or unlike a comment
// @Tags social
// @Produce json
// @Security BearerAuth
// @Param commentId path string true "Comment ID"
// @Success 200 {object} map[string]interface{} "action, like_count"
// @Failure 404 {object} map[string]interface{} "error: Comment not found"
// @Router /social/comments/{commentId}/like [post]
func (h *Handler) ToggleCommentLike(c *gin.Context) {
	res, err := h.social.ToggleCommentLike(c.Request.Context(), c.GetString("user_id"), c.Param("commentId"))
	if err != nil {
		if !socialError(c, err) {
			utils.SendInternalError(c, err, "Error toggling like")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"action":     res.Action,
		"like_count": res.Count,
	})
}

// DeleteComment godoc
// @Summary Delete a comment
// @Description Allowed for the comment author and the content creator
// @Tags social
// @Produce json
// @Security BearerAuth
// @Param commentId path string true "Comment ID"
// @Success 200 {object} map[string]interface{} "success"
// @Failure 403 {object} map[string]interface{} "error: Not authorized"
// @Failure 404 {object} map[string]interface{} "error: Comment not found"
// @Router /social/comments/{commentId} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	if err := h.social.DeleteComment(c.Request.Context(), c.GetString("user_id"), c.Param("commentId")); err != nil {
		if !socialError(c, err) {
			utils.SendInternalError(c, err, "Error deleting comment")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ToggleBookmark godoc
// @Summary Bookmark or unbookmark a content item
// @Tags social
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.BookmarkRequest true "Content"
// @Success 200 {object} map[string]interface{} "action, bookmark_id"
// @Failure 404 {object} map[string]interface{} "error: Content not found"
// @Router /social/bookmarks [post]
func (h *Handler) ToggleBookmark(c *gin.Context) {
	var req models.BookmarkRequest
	if !utils.ValidateRequestBody(c, &req) {
		return
	}

	res, err := h.social.ToggleBookmark(c.Request.Context(), c.GetString("user_id"), req.ContentID)
	if err != nil {
		if !socialError(c, err) {
			utils.SendInternalError(c, err, "Error toggling bookmark")
		}
		return
	}

	resp := gin.H{"success": true, "action": res.Action}
	if res.ID != "" {
		resp["bookmark_id"] = res.ID
	}
	c.JSON(http.StatusOK, resp)
}

// ListBookmarks godoc
// @Summary Bookmarked content of the caller
// @Tags social
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "bookmarks"
// @Router /social/bookmarks [get]
func (h *Handler) ListBookmarks(c *gin.Context) {
	bookmarks, err := h.social.ListBookmarks(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		utils.SendInternalError(c, err, "Error retrieving bookmarks")
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookmarks": bookmarks})
}

// ToggleFollow godoc
// @Summary Follow or unfollow a user
// @Tags social
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} map[string]interface{} "action"
// @Failure 400 {object} map[string]interface{} "error: Cannot follow yourself"
// @Failure 404 {object} map[string]interface{} "error: User not found"
// @Router /social/follow/{username} [post]
func (h *Handler) ToggleFollow(c *gin.Context) {
	res, err := h.social.ToggleFollow(c.Request.Context(), c.GetString("user_id"), c.Param("username"))
	if err != nil {
		if !socialError(c, err) {
			utils.SendInternalError(c, err, "Error toggling follow")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "action": res.Action})
}

// FollowStats godoc
// @Summary Follower and following counts
// @Tags social
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.FollowStats
// @Failure 404 {object} map[string]interface{} "error: User not found"
// @Router /social/follow/stats/{username} [get]
func (h *Handler) FollowStats(c *gin.Context) {
	stats, err := h.social.FollowStats(c.Request.Context(), c.Param("username"))
	if err != nil {
		if !socialError(c, err) {
			utils.SendInternalError(c, err, "Error retrieving follow stats")
		}
		return
	}
	c.JSON(http.StatusOK, stats)
}
