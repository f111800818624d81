// controllers/auth_controller.go
package controllers

import (
	"net/http"

	"sharenest-backend/middleware"
	"sharenest-backend/services"
	"sharenest-backend/utils"

	"github.com/gin-gonic/gin"
)

// ---------------------------
// Payload / DTOs
// ---------------------------

type RegisterPayload struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"required"`
	Phone     string `json:"phone"`
}

type LoginPayload struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshPayload struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type ForgotPasswordPayload struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordPayload struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// ---------------------------
// Controller
// ---------------------------

type AuthController struct {
	AuthSvc *services.AuthService
	UserSvc *services.UserService
}

func NewAuthController(authSvc *services.AuthService, userSvc *services.UserService) *AuthController {
	return &AuthController{AuthSvc: authSvc, UserSvc: userSvc}
}

// Register handles POST /auth/register.
func (ctl *AuthController) Register(c *gin.Context) {
	var payload RegisterPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	user, err := ctl.AuthSvc.Register(services.CreateUserInput{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Password:  payload.Password,
		Role:      payload.Role,
		Phone:     payload.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, user)
}

// Login handles POST /auth/login.
func (ctl *AuthController) Login(c *gin.Context) {
	var payload LoginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	user, pair, err := ctl.AuthSvc.Login(payload.Email, payload.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"user":         user,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// Refresh handles POST /auth/refresh-token.
func (ctl *AuthController) Refresh(c *gin.Context) {
	var payload RefreshPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	accessToken, user, err := ctl.AuthSvc.Refresh(payload.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"user":        user,
		"accessToken": accessToken,
	})
}

// Logout handles POST /auth/logout.
func (ctl *AuthController) Logout(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	if err := ctl.AuthSvc.Logout(actor.ID); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Logged out successfully")
}

// ForgotPassword handles POST /auth/forgot-password. The response does
// not reveal whether the account exists.
func (ctl *AuthController) ForgotPassword(c *gin.Context) {
	var payload ForgotPasswordPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctl.AuthSvc.ForgotPassword(payload.Email)
	utils.JSONMessage(c, http.StatusOK, "If the email exists, a reset link has been sent")
}

// ResetPassword handles POST /auth/reset-password.
func (ctl *AuthController) ResetPassword(c *gin.Context) {
	var payload ResetPasswordPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := ctl.AuthSvc.ResetPassword(payload.Token, payload.Password); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Password reset successfully")
}

// CheckEmail handles GET /auth/check-email?email=.
func (ctl *AuthController) CheckEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		utils.JSONError(c, http.StatusBadRequest, "Email query parameter is required")
		return
	}

	exists, err := ctl.AuthSvc.CheckEmailExists(email)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"exists": exists})
}

// Me handles GET /auth/me.
func (ctl *AuthController) Me(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := ctl.UserSvc.FindOne(actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, user)
}
