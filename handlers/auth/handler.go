package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Macwinner1/Xecret/models"
	"github.com/Macwinner1/Xecret/services/accounts"
	"github.com/Macwinner1/Xecret/utils"
)

type Handler struct {
	accounts *accounts.Service
}

func New(svc *accounts.Service) *Handler {
	return &Handler{accounts: svc}
}

func sessionResponse(sess *accounts.Session) gin.H {
	return gin.H{
		"success":        true,
		"user_id":        sess.User.ID,
		"username":       sess.User.Username,
		"wallet_address": sess.User.WalletAddress,
		"token":          sess.Token,
		"account_type":   sess.User.AccountType,
	}
}

// ZkLogin godoc
// @Summary Create an account through a ZK login provider
// @Description Registers a new verified user with a generated wallet address and returns a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body models.ZkLoginRequest true "Provider and username"
// @Success 200 {object} map[string]interface{} "user_id, username, wallet_address, token, account_type"
// @Failure 400 {object} map[string]interface{} "error: Username must be 3-20 characters"
// @Failure 500 {object} map[string]interface{} "error: Internal server error"
// @Router /auth/zk-login [post]
func (h *Handler) ZkLogin(c *gin.Context) {
	var req models.ZkLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be 3-20 characters"})
		return
	}

	sess, err := h.accounts.ZkLogin(c.Request.Context(), req.Provider, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrInvalidUsername):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be 3-20 characters"})
		case errors.Is(err, accounts.ErrUsernameTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already taken"})
		default:
			utils.SendInternalError(c, err, "ZK login failed")
		}
		return
	}

	c.JSON(http.StatusOK, sessionResponse(sess))
}

// Login godoc
// @Summary Sign in an existing user
// @Tags auth
// @Accept json
// @Produce json
// @Param body body models.LoginRequest true "Username"
// @Success 200 {object} map[string]interface{} "user_id, username, wallet_address, token, account_type"
// @Failure 404 {object} map[string]interface{} "error: User not found"
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username required"})
		return
	}

	sess, err := h.accounts.Login(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		utils.SendInternalError(c, err, "Login failed")
		return
	}

	utils.LogSuccessWithUser(sess.User.ID, "User logged in")
	c.JSON(http.StatusOK, sessionResponse(sess))
}

// Profile godoc
// @Summary Public profile of a user
// @Description The wallet address is never part of the public profile
// @Tags auth
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.PublicProfile
// @Failure 404 {object} map[string]interface{} "error: User not found"
// @Router /auth/profile/{username} [get]
func (h *Handler) Profile(c *gin.Context) {
	profile, err := h.accounts.Profile(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		utils.SendInternalError(c, err, "Error retrieving profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} map[string]interface{} "error: No token provided"
// @Failure 404 {object} map[string]interface{} "error: User not found"
// @Router /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	user, err := h.accounts.Me(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		utils.SendInternalError(c, err, "Error retrieving current user")
		return
	}
	c.JSON(http.StatusOK, user)
}
