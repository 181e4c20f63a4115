package handlers

import (
	"github.com/gin-gonic/gin"

	"clinic-app-server/internal/auth"
	"clinic-app-server/internal/config"
	"clinic-app-server/internal/utils"
)

// AuthHandler handles staff login.
type AuthHandler struct {
	Cfg *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{Cfg: cfg}
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Mobile string `json:"mobile" binding:"required"`
	Pin    string `json:"pin" binding:"required"`
}

// Login verifies the configured clinic credentials and issues an
// access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if !auth.Verify(req.Mobile, req.Pin, h.Cfg.Clinic) {
		utils.Unauthorized(c, "Invalid mobile number or PIN")
		return
	}

	token, err := utils.GenerateToken(req.Mobile, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate token: "+err.Error())
		return
	}

	utils.Success(c, "Login successful", gin.H{"accessToken": token})
}
