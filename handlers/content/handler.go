package content

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Macwinner1/Xecret/models"
	"github.com/Macwinner1/Xecret/services/access"
	"github.com/Macwinner1/Xecret/services/lifecycle"
	"github.com/Macwinner1/Xecret/utils"
)

type Handler struct {
	contents *lifecycle.Service
	access   *access.Checker
}

func New(contents *lifecycle.Service, checker *access.Checker) *Handler {
	return &Handler{contents: contents, access: checker}
}

// Upload godoc
// @Summary Upload a content item
// @Description Stores the file and publishes it as free or pay-per-view. Access type and price cannot change afterwards.
// @Tags content
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Media file"
// @Param title formData string false "Title"
// @Param description formData string false "Description"
// @Param content_type formData string false "photo, video, ..."
// @Param access_type formData string true "free or ppv"
// @Param price formData number false "Price for ppv content"
// @Success 200 {object} map[string]interface{} "content_id, blob_id"
// @Failure 400 {object} map[string]interface{} "error: No file uploaded"
// @Failure 413 {object} map[string]interface{} "error: File too large"
// @Router /content/upload [post]
func (h *Handler) Upload(c *gin.Context) {
	userID := c.GetString("user_id")

	file, err := c.FormFile("file")
	if err != nil || file == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	var form models.ContentUpload
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Access type must be free or ppv"})
		return
	}

	price := decimal.Zero
	if p := strings.TrimSpace(form.Price); p != "" {
		price, err = decimal.NewFromString(p)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price"})
			return
		}
	}

	src, err := file.Open()
	if err != nil {
		utils.SendInternalError(c, err, "Error opening uploaded file")
		return
	}
	defer src.Close()

	mimeType := file.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	content, err := h.contents.Upload(c.Request.Context(), lifecycle.UploadInput{
		CreatorID:       userID,
		CreatorUsername: c.GetString("username"),
		Title:           form.Title,
		Description:     form.Description,
		ContentType:     form.ContentType,
		AccessType:      models.AccessType(form.AccessType),
		Price:           price,
		FileName:        file.Filename,
		MimeType:        mimeType,
		Size:            file.Size,
		File:            src,
	})
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrFileTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		case errors.Is(err, lifecycle.ErrInvalidAccessType):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Access type must be free or ppv"})
		case errors.Is(err, lifecycle.ErrInvalidPrice):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Pay-per-view content needs a positive price"})
		default:
			utils.SendInternalError(c, err, "Error uploading content")
		}
		return
	}

	utils.LogSuccessWithUser(userID, "Content uploaded: "+content.ID)
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Content uploaded successfully",
		"content_id": content.ID,
		"blob_id":    content.BlobID,
	})
}

// List godoc
// @Summary Public content feed
// @Description Content that is neither deleted nor hidden, newest first
// @Tags content
// @Produce json
// @Success 200 {object} map[string]interface{} "contents"
// @Router /content [get]
func (h *Handler) List(c *gin.Context) {
	contents, err := h.contents.List(c.Request.Context())
	if err != nil {
		utils.SendInternalError(c, err, "Error retrieving contents")
		return
	}
	c.JSON(http.StatusOK, gin.H{"contents": contents})
}

// Get godoc
// @Summary Content details
// @Tags content
// @Produce json
// @Param id path string true "Content ID"
// @Success 200 {object} models.Content
// @Failure 404 {object} map[string]interface{} "error: Content not found"
// @Router /content/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	content, err := h.contents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, lifecycle.ErrContentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
			return
		}
		utils.SendInternalError(c, err, "Error retrieving content")
		return
	}
	c.JSON(http.StatusOK, content)
}

// ListByCreator godoc
// @Summary Content of one creator
// @Tags content
// @Produce json
// @Param username path string true "Creator username"
// @Success 200 {object} map[string]interface{} "contents"
// @Failure 404 {object} map[string]interface{} "error: Creator not found"
// @Router /content/creator/{username} [get]
func (h *Handler) ListByCreator(c *gin.Context) {
	contents, err := h.contents.ListByCreator(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, lifecycle.ErrCreatorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Creator not found"})
			return
		}
		utils.SendInternalError(c, err, "Error retrieving creator contents")
		return
	}
	c.JSON(http.StatusOK, gin.H{"contents": contents})
}

// Delete godoc
// @Summary Delete a content item
// @Description Soft delete. Refused once any viewer has purchased the content.
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param id path string true "Content ID"
// @Success 200 {object} map[string]interface{} "message: Content deleted successfully"
// @Failure 403 {object} map[string]interface{} "error, paid_viewer_count"
// @Failure 404 {object} map[string]interface{} "error: Content not found"
// @Router /content/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID := c.GetString("user_id")
	content, err := h.contents.Delete(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrContentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
		case errors.Is(err, lifecycle.ErrNotCreator):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
		case errors.Is(err, lifecycle.ErrDeletionLocked):
			c.JSON(http.StatusForbidden, gin.H{
				"error":             "Cannot delete - viewers have purchased this content",
				"paid_viewer_count": content.PaidViewerCount,
			})
		default:
			utils.SendInternalError(c, err, "Error deleting content")
		}
		return
	}

	utils.LogSuccessWithUser(userID, "Content deleted: "+content.ID)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Content deleted successfully",
	})
}

// Hide godoc
// @Summary Hide a content item from feeds
// @Description Purchasers keep their access
// @Tags content
// @Produce json
// @Security BearerAuth
// @Param id path string true "Content ID"
// @Success 200 {object} map[string]interface{} "message: Content hidden from new viewers"
// @Failure 403 {object} map[string]interface{} "error: Not authorized"
// @Failure 404 {object} map[string]interface{} "error: Content not found"
// @Router /content/{id}/hide [post]
func (h *Handler) Hide(c *gin.Context) {
	userID := c.GetString("user_id")
	if _, err := h.contents.Hide(c.Request.Context(), userID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrContentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
		case errors.Is(err, lifecycle.ErrNotCreator):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
		default:
			utils.SendInternalError(c, err, "Error hiding content")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Content hidden from new viewers",
	})
}

// Access godoc
// @Summary Check whether the caller may view a content item
// @Tags content
// @Produce json
// @Param id path string true "Content ID"
// @Success 200 {object} access.Decision
// @Failure 404 {object} map[string]interface{} "error: Content not found"
// @Router /content/{id}/access [get]
func (h *Handler) Access(c *gin.Context) {
	content, err := h.contents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, lifecycle.ErrContentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
			return
		}
		utils.SendInternalError(c, err, "Error checking access")
		return
	}

	decision, err := h.access.CanAccess(c.Request.Context(), c.GetString("user_id"), content)
	if err != nil {
		utils.SendInternalError(c, err, "Error checking access")
		return
	}
	c.JSON(http.StatusOK, decision)
}
