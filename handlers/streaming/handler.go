package streaming

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Macwinner1/Xecret/models"
	"github.com/Macwinner1/Xecret/services/streaming"
	"github.com/Macwinner1/Xecret/utils"
)

type Handler struct {
	streams *streaming.Service
}

func New(s *streaming.Service) *Handler {
	return &Handler{streams: s}
}

func streamError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, streaming.ErrContentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
	case errors.Is(err, streaming.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, streaming.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied - purchase required"})
	case errors.Is(err, streaming.ErrSuspended):
		c.JSON(http.StatusForbidden, gin.H{"error": streaming.SuspensionMessage})
	case errors.Is(err, streaming.ErrSessionKeyRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session key required"})
	case errors.Is(err, streaming.ErrInvalidSession):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
	case errors.Is(err, streaming.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, streaming.ErrInvalidViolationType):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid violation type"})
	default:
		return false
	}
	return true
}

// CreateSession godoc
// @Summary Open a streaming session
// @Description Issues a one hour session key for a content the caller may view
// @Tags stream
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.SessionRequest true "Content to stream"
// @Success 200 {object} map[string]interface{} "session_key, session_id, expires_at, watermark"
// @Failure 403 {object} map[string]interface{} "error: Access denied - purchase required"
// @Failure 404 {object} map[string]interface{} "error: Content not found"
// @Router /stream/session [post]
func (h *Handler) CreateSession(c *gin.Context) {
	userID := c.GetString("user_id")

	var req models.SessionRequest
	if !utils.ValidateRequestBody(c, &req) {
		return
	}

	grant, err := h.streams.CreateSession(c.Request.Context(), userID, req.ContentID, c.ClientIP())
	if err != nil {
		if !streamError(c, err) {
			utils.SendInternalError(c, err, "Error creating stream session")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_key": grant.Session.SessionKey,
		"session_id":  grant.Session.ID,
		"expires_at":  grant.Session.ExpiresAt,
		"watermark":   grant.Watermark,
	})
}

// RenewSession godoc
// @Summary Extend a streaming session
// @Tags stream
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.RenewSessionRequest true "Session key"
// @Success 200 {object} map[string]interface{} "expires_at"
// @Failure 404 {object} map[string]interface{} "error: Session not found"
// @Router /stream/session/renew [post]
func (h *Handler) RenewSession(c *gin.Context) {
	var req models.RenewSessionRequest
	if !utils.ValidateRequestBody(c, &req) {
		return
	}

	session, err := h.streams.RenewSession(c.Request.Context(), c.GetString("user_id"), req.SessionKey)
	if err != nil {
		if !streamError(c, err) {
			utils.SendInternalError(c, err, "Error renewing stream session")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"expires_at": session.ExpiresAt,
	})
}

// File godoc
// @Summary Raw content bytes
// @Description Requires a valid session key for this content. The response is never cached and carries the viewer watermark.
// @Tags stream
// @Produce octet-stream
// @Param id path string true "Content ID"
// @Param session_key query string true "Session key"
// @Success 200 {file} file
// @Failure 401 {object} map[string]interface{} "error: Invalid or expired session"
// @Router /stream/{id}/file [get]
func (h *Handler) File(c *gin.Context) {
	key := c.Query("session_key")
	if key == "" {
		key = c.GetHeader("X-Session-Key")
	}

	file, err := h.streams.OpenFile(c.Request.Context(), key, c.Param("id"))
	if err != nil {
		if !streamError(c, err) {
			utils.SendInternalError(c, err, "Error opening content file")
		}
		return
	}
	defer file.Body.Close()

	size := file.Content.FileSize
	if size <= 0 {
		size = -1
	}
	mimeType := file.Content.FileMimetype
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, size, mimeType, file.Body, map[string]string{
		"Cache-Control": "no-store, no-cache, must-revalidate",
		"X-Watermark":   file.Session.Username,
	})
}

// ReportViolation godoc
// @Summary Report a content protection violation
// @Description Three violations trigger a warning, five suspend the account
// @Tags stream
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.ViolationCreate true "Violation"
// @Success 200 {object} map[string]interface{} "violation_count, warning"
// @Failure 400 {object} map[string]interface{} "error: Invalid violation type"
// @Router /stream/violation [post]
func (h *Handler) ReportViolation(c *gin.Context) {
	userID := c.GetString("user_id")

	var req models.ViolationCreate
	if !utils.ValidateRequestBody(c, &req) {
		return
	}

	report, err := h.streams.ReportViolation(c.Request.Context(), userID, req.ContentID, req.ViolationType)
	if err != nil {
		if !streamError(c, err) {
			utils.SendInternalError(c, err, "Error recording violation")
		}
		return
	}

	var warning *string
	if report.Warning != "" {
		warning = &report.Warning
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"violation_count": report.Count,
		"warning":         warning,
		"suspended":       report.Suspended,
	})
}
