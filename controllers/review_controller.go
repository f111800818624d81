// controllers/review_controller.go
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

type CreateReviewPayload struct {
	Type       string `json:"type" binding:"required,oneof=property user"`
	PropertyID *uint  `json:"propertyId"`
	ReviewedID *uint  `json:"reviewedId"`
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
	Comment    string `json:"comment"`
}

// ---------------------------
// Controller
// ---------------------------

type ReviewController struct {
	ReviewSvc *services.ReviewService
}

func NewReviewController(svc *services.ReviewService) *ReviewController {
	return &ReviewController{ReviewSvc: svc}
}

// Create handles POST /reviews.
func (ctl *ReviewController) Create(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var payload CreateReviewPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	review, err := ctl.ReviewSvc.Create(actor.ID, services.CreateReviewInput{
		Type:       payload.Type,
		PropertyID: payload.PropertyID,
		ReviewedID: payload.ReviewedID,
		Rating:     payload.Rating,
		Comment:    payload.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, review)
}

// PropertyReviews handles GET /reviews/property/:propertyId.
func (ctl *ReviewController) PropertyReviews(c *gin.Context) {
	propertyID, ok := paramUint(c, "propertyId")
	if !ok {
		return
	}

	reviews, err := ctl.ReviewSvc.FindPropertyReviews(propertyID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, reviews)
}

// UserReviews handles GET /reviews/user/:userId.
func (ctl *ReviewController) UserReviews(c *gin.Context) {
	userID, ok := paramUint(c, "userId")
	if !ok {
		return
	}

	reviews, err := ctl.ReviewSvc.FindUserReviews(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, reviews)
}

// PendingReviews handles GET /reviews/user/me/pending.
func (ctl *ReviewController) PendingReviews(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	pending, err := ctl.ReviewSvc.GetPendingReviewsForUser(actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, pending)
}

// Delete handles DELETE /reviews/:id. Author only.
func (ctl *ReviewController) Delete(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	if err := ctl.ReviewSvc.Remove(id, actor.ID); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Review deleted successfully")
}
