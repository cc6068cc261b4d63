package payment

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Macwinner1/Xecret/models"
	"github.com/Macwinner1/Xecret/services/ledger"
	"github.com/Macwinner1/Xecret/utils"
)

type Handler struct {
	ledger *ledger.Service
}

func New(l *ledger.Service) *Handler {
	return &Handler{ledger: l}
}

// ledgerError answers the client-facing ledger errors and reports whether
// err was one of them.
func ledgerError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, ledger.ErrContentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Content not found"})
	case errors.Is(err, ledger.ErrNotPayPerView):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content is not pay-per-view"})
	case errors.Is(err, ledger.ErrAlreadyPurchased):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Already purchased"})
	case errors.Is(err, ledger.ErrOwnContent):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot purchase your own content"})
	case errors.Is(err, ledger.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
	case errors.Is(err, ledger.ErrRecipientNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipient not found"})
	case errors.Is(err, ledger.ErrSelfTip):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot tip yourself"})
	case errors.Is(err, ledger.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	default:
		return false
	}
	return true
}

// Purchase godoc
// @Summary Buy a pay-per-view content item
// @Description Grants permanent access. The creator is credited the price minus the platform fee.
// @Tags payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.PurchaseRequest true "Content to buy"
// @Success 200 {object} map[string]interface{} "purchase_id, transaction_hash, amount, creator_amount, platform_fee"
// @Failure 400 {object} map[string]interface{} "error: Already purchased"
// @Failure 404 {object} map[string]interface{} "error: Content not found"
// @Router /payment/purchase [post]
func (h *Handler) Purchase(c *gin.Context) {
	userID := c.GetString("user_id")

	var req models.PurchaseRequest
	if !utils.ValidateRequestBody(c, &req) {
		return
	}

	purchase, err := h.ledger.RecordPurchase(c.Request.Context(), userID, req.ContentID, req.PaymentMethod)
	if err != nil {
		if !ledgerError(c, err) {
			utils.SendInternalError(c, err, "Error recording purchase")
		}
		return
	}

	utils.LogSuccessWithUser(userID, "Content purchased: "+req.ContentID)
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"purchase_id":      purchase.ID,
		"transaction_hash": purchase.TransactionHash,
		"amount":           purchase.Amount,
		"creator_amount":   purchase.CreatorAmount,
		"platform_fee":     purchase.PlatformFee,
		"message":          "Purchase successful - you now have permanent access",
	})
}

// Tip godoc
// @Summary Tip a user
// @Tags payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.TipRequest true "Recipient, amount and optional content"
// @Success 200 {object} map[string]interface{} "tip_id, transaction_hash, amount, recipient_amount, platform_fee"
// @Failure 400 {object} map[string]interface{} "error: Invalid amount"
// @Failure 404 {object} map[string]interface{} "error: Recipient not found"
// @Router /payment/tip [post]
func (h *Handler) Tip(c *gin.Context) {
	userID := c.GetString("user_id")

	var req models.TipRequest
	if !utils.ValidateRequestBody(c, &req) {
		return
	}

	tip, err := h.ledger.RecordTip(c.Request.Context(), userID, req)
	if err != nil {
		if !ledgerError(c, err) {
			utils.SendInternalError(c, err, "Error recording tip")
		}
		return
	}

	utils.LogSuccessWithUser(userID, "Tip sent to "+req.RecipientUsername)
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"tip_id":           tip.ID,
		"transaction_hash": tip.TransactionHash,
		"amount":           tip.Amount,
		"recipient_amount": tip.RecipientAmount,
		"platform_fee":     tip.PlatformFee,
		"message":          "Tip sent successfully",
	})
}

// Purchases godoc
// @Summary Content bought by the caller
// @Tags payment
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "purchases"
// @Router /payment/purchases [get]
func (h *Handler) Purchases(c *gin.Context) {
	purchases, err := h.ledger.Purchases(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		utils.SendInternalError(c, err, "Error retrieving purchases")
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}

// Earnings godoc
// @Summary Creator earnings breakdown
// @Tags payment
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Earnings
// @Failure 404 {object} map[string]interface{} "error: User not found"
// @Router /payment/earnings [get]
func (h *Handler) Earnings(c *gin.Context) {
	earnings, err := h.ledger.Earnings(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		if !ledgerError(c, err) {
			utils.SendInternalError(c, err, "Error retrieving earnings")
		}
		return
	}
	c.JSON(http.StatusOK, earnings)
}
