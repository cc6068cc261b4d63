package wallet

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Macwinner1/Xecret/models"
	"github.com/Macwinner1/Xecret/services/ledger"
	"github.com/Macwinner1/Xecret/utils"
)

// SettlementSecretHeader carries the shared secret of the settlement callback.
const SettlementSecretHeader = "X-Settlement-Secret"

type Handler struct {
	ledger           *ledger.Service
	settlementSecret string
}

// New builds the wallet handler. An empty settlementSecret disables the
// settlement callback.
func New(l *ledger.Service, settlementSecret string) *Handler {
	return &Handler{ledger: l, settlementSecret: settlementSecret}
}

func walletError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
	case errors.Is(err, ledger.ErrInvalidPaymentMethod):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment method"})
	case errors.Is(err, ledger.ErrInvalidWithdrawalMethod):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid withdrawal method"})
	case errors.Is(err, ledger.ErrCryptoAddressRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Crypto address required"})
	case errors.Is(err, ledger.ErrBankDetailsRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bank details required"})
	case errors.Is(err, ledger.ErrInsufficientBalance):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient balance"})
	case errors.Is(err, ledger.ErrWithdrawalNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Withdrawal not found"})
	case errors.Is(err, ledger.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
	case errors.Is(err, ledger.ErrNotPending):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Can only cancel pending withdrawals"})
	case errors.Is(err, ledger.ErrAlreadyResolved):
		c.JSON(http.StatusConflict, gin.H{"error": "Withdrawal is no longer pending"})
	default:
		return false
	}
	return true
}

// Balance godoc
// @Summary Wallet balance
// @Tags wallet
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "balance, pending_balance"
// @Router /wallet/balance [get]
func (h *Handler) Balance(c *gin.Context) {
	w, err := h.ledger.Balance(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		utils.SendInternalError(c, err, "Error retrieving balance")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance":         w.Balance,
		"pending_balance": w.PendingBalance,
	})
}

// Deposit godoc
// @Summary Deposit funds
// @Tags wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.DepositRequest true "Amount and payment method (credit_card or crypto)"
// @Success 200 {object} map[string]interface{} "transaction_id, new_balance"
// @Failure 400 {object} map[string]interface{} "error: Invalid amount"
// @Router /wallet/deposit [post]
func (h *Handler) Deposit(c *gin.Context) {
	userID := c.GetString("user_id")

	var req models.DepositRequest
	if !utils.ValidateRequestBody(c, &req) {
		return
	}

	deposit, wallet, err := h.ledger.Deposit(c.Request.Context(), userID, req.Amount, req.PaymentMethod)
	if err != nil {
		if !walletError(c, err) {
			utils.SendInternalError(c, err, "Error processing deposit")
		}
		return
	}

	utils.LogSuccessWithUser(userID, "Deposit completed: "+deposit.ID)
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"transaction_id": deposit.ID,
		"new_balance":    wallet.Balance,
		"message":        fmt.Sprintf("Successfully deposited %s SUI", req.Amount.String()),
	})
}

// Withdraw godoc
// @Summary Request a withdrawal
// @Description The amount moves to the pending balance until the withdrawal is settled or cancelled
// @Tags wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.WithdrawalRequest true "Amount, method (crypto or bank) and destination"
// @Success 200 {object} map[string]interface{} "withdrawal_id, new_balance, pending_balance"
// @Failure 400 {object} map[string]interface{} "error: Insufficient balance"
// @Router /wallet/withdraw [post]
func (h *Handler) Withdraw(c *gin.Context) {
	userID := c.GetString("user_id")

	var req models.WithdrawalRequest
	if !utils.ValidateRequestBody(c, &req) {
		return
	}

	withdrawal, wallet, err := h.ledger.RequestWithdrawal(c.Request.Context(), userID, req)
	if err != nil {
		if !walletError(c, err) {
			utils.SendInternalError(c, err, "Error requesting withdrawal")
		}
		return
	}

	utils.LogSuccessWithUser(userID, "Withdrawal requested: "+withdrawal.ID)
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"withdrawal_id":   withdrawal.ID,
		"message":         "Withdrawal request submitted. Processing time: 1-3 business days",
		"new_balance":     wallet.Balance,
		"pending_balance": wallet.PendingBalance,
	})
}

// Withdrawals godoc
// @Summary Withdrawal history
// @Tags wallet
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "withdrawals"
// @Router /wallet/withdrawals [get]
func (h *Handler) Withdrawals(c *gin.Context) {
	list, err := h.ledger.Withdrawals(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		utils.SendInternalError(c, err, "Error retrieving withdrawals")
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": list})
}

// CancelWithdrawal godoc
// @Summary Cancel a pending withdrawal
// @Tags wallet
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body models.CancelWithdrawalRequest true "Withdrawal to cancel"
// @Success 200 {object} map[string]interface{} "new_balance, pending_balance"
// @Failure 400 {object} map[string]interface{} "error: Can only cancel pending withdrawals"
// @Failure 403 {object} map[string]interface{} "error: Not authorized"
// @Failure 404 {object} map[string]interface{} "error: Withdrawal not found"
// @Router /wallet/cancel-withdrawal [post]
func (h *Handler) CancelWithdrawal(c *gin.Context) {
	userID := c.GetString("user_id")

	var req models.CancelWithdrawalRequest
	if !utils.ValidateRequestBody(c, &req) {
		return
	}

	_, wallet, err := h.ledger.CancelWithdrawal(c.Request.Context(), userID, req.WithdrawalID)
	if err != nil {
		if !walletError(c, err) {
			utils.SendInternalError(c, err, "Error cancelling withdrawal")
		}
		return
	}

	utils.LogSuccessWithUser(userID, "Withdrawal cancelled: "+req.WithdrawalID)
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         "Withdrawal cancelled successfully",
		"new_balance":     wallet.Balance,
		"pending_balance": wallet.PendingBalance,
	})
}

// Transactions godoc
// @Summary Transaction history
// @Description Deposits, purchases, tips, sales and withdrawals, newest first
// @Tags wallet
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "transactions"
// @Router /wallet/transactions [get]
func (h *Handler) Transactions(c *gin.Context) {
	history, err := h.ledger.History(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		utils.SendInternalError(c, err, "Error retrieving transactions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": history})
}

// Settle godoc
// @Summary Settlement callback
// @Description Completes a pending withdrawal. Called by the payout provider with the shared secret.
// @Tags wallet
// @Produce json
// @Param id path string true "Withdrawal ID"
// @Param X-Settlement-Secret header string true "Shared settlement secret"
// @Success 200 {object} models.Withdrawal
// @Failure 401 {object} map[string]interface{} "error: Invalid settlement secret"
// @Failure 404 {object} map[string]interface{} "error: Withdrawal not found"
// @Failure 409 {object} map[string]interface{} "error: Withdrawal is no longer pending"
// @Router /wallet/settlements/{id} [post]
func (h *Handler) Settle(c *gin.Context) {
	given := c.GetHeader(SettlementSecretHeader)
	if h.settlementSecret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(h.settlementSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid settlement secret"})
		return
	}

	withdrawal, err := h.ledger.SettleWithdrawal(c.Request.Context(), c.Param("id"))
	if err != nil {
		if !walletError(c, err) {
			utils.SendInternalError(c, err, "Error settling withdrawal")
		}
		return
	}

	utils.LogInfo("Withdrawal settled by callback: " + withdrawal.ID)
	c.JSON(http.StatusOK, withdrawal)
}
