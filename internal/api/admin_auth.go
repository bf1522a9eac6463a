package api

import (
	"net/http"

	"notes-marketplace-api/internal/config"
	"notes-marketplace-api/internal/middleware"
	"notes-marketplace-api/internal/response"

	"github.com/gin-gonic/gin"
)

// AdminLoginRequest represents an admin login
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminRegisterRequest creates an admin account; gated by the admin secret
type AdminRegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	AdminSecret string `json:"adminSecret" binding:"required"`
}

// AdminDeleteRequest removes an admin account; gated by the admin secret
type AdminDeleteRequest struct {
	Email       string `json:"email" binding:"required"`
	AdminSecret string `json:"adminSecret" binding:"required"`
}

// AdminLogin issues a session token and sets the session cookie
func (h *Handlers) AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	session, err := h.Admins.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c, err, "Failed to log in")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AdminSessionCookie, session.Token, int(h.Admins.SessionTTL().Seconds()), "/", "", secureCookies(), true)
	response.SuccessJSON(c, session)
}

// AdminLogout revokes the current session and clears the cookie
func (h *Handlers) AdminLogout(c *gin.Context) {
	claims, _ := middleware.AdminClaims(c)
	if err := h.Admins.Logout(c.Request.Context(), claims); err != nil {
		writeServiceError(c, err, "Failed to log out")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AdminSessionCookie, "", -1, "/", "", secureCookies(), true)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out",
	})
}

// AdminRegister creates an admin account
func (h *Handlers) AdminRegister(c *gin.Context) {
	var req AdminRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	if err := h.Admins.CheckAdminSecret(req.AdminSecret); err != nil {
		writeServiceError(c, err, "")
		return
	}

	admin, err := h.Admins.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c, err, "Failed to create admin")
		return
	}
	response.CreatedJSON(c, "Admin created successfully", admin)
}

// AdminDelete removes an admin account
func (h *Handlers) AdminDelete(c *gin.Context) {
	var req AdminDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	if err := h.Admins.CheckAdminSecret(req.AdminSecret); err != nil {
		writeServiceError(c, err, "")
		return
	}

	if err := h.Admins.Delete(c.Request.Context(), req.Email); err != nil {
		writeServiceError(c, err, "Failed to delete admin")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Admin deleted successfully",
	})
}

func secureCookies() bool {
	return config.AppConfig != nil && config.AppConfig.Mode == gin.ReleaseMode
}
