// controllers/user_controller.go
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

type UpdateProfilePayload struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	Bio       *string `json:"bio"`
}

type ChangePasswordPayload struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// ---------------------------
// Controller
// ---------------------------

type UserController struct {
	UserSvc *services.UserService
}

func NewUserController(svc *services.UserService) *UserController {
	return &UserController{UserSvc: svc}
}

// List handles GET /users.
func (ctl *UserController) List(c *gin.Context) {
	users, err := ctl.UserSvc.FindAll()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, users)
}

// Profile handles GET /users/profile for the authenticated user.
func (ctl *UserController) Profile(c *gin.Context) {
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

// Get handles GET /users/:id.
func (ctl *UserController) Get(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	user, err := ctl.UserSvc.FindOne(id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, user)
}

// UpdateProfile handles PUT /users/profile.
func (ctl *UserController) UpdateProfile(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var payload UpdateProfilePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	user, err := ctl.UserSvc.UpdateProfile(actor.ID, services.UpdateUserInput{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Phone:     payload.Phone,
		Bio:       payload.Bio,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, user)
}

// ChangePassword handles POST /users/change-password.
func (ctl *UserController) ChangePassword(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var payload ChangePasswordPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := ctl.UserSvc.ChangePassword(actor.ID, payload.CurrentPassword, payload.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Password changed successfully")
}

// UploadImage handles POST /users/profile/upload-image with a multipart
// "image" file.
func (ctl *UserController) UploadImage(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Image file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Could not read image file")
		return
	}
	defer file.Close()

	user, err := ctl.UserSvc.UpdateProfileImage(c.Request.Context(), actor.ID, file)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, user)
}
