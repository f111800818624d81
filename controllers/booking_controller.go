// controllers/booking_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"sharenest-backend/middleware"
	"sharenest-backend/models"
	"sharenest-backend/services"
	"sharenest-backend/utils"

	"github.com/gin-gonic/gin"
)

// ---------------------------
// Payload / DTOs
// ---------------------------

type CreateBookingPayload struct {
	PropertyID uint   `json:"propertyId" binding:"required"`
	StartDate  string `json:"startDate" binding:"required,calendardate"`
	EndDate    string `json:"endDate" binding:"required,calendardate"`
	Message    string `json:"message"`
}

type UpdateBookingStatusPayload struct {
	Status string `json:"status" binding:"required"`
}

// ---------------------------
// Controller
// ---------------------------

type BookingController struct {
	BookingSvc *services.BookingService
}

func NewBookingController(svc *services.BookingService) *BookingController {
	return &BookingController{BookingSvc: svc}
}

func paramUint(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// Create handles POST /bookings.
func (ctl *BookingController) Create(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var payload CreateBookingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	booking, err := ctl.BookingSvc.Create(actor.ID, services.CreateBookingInput{
		PropertyID: payload.PropertyID,
		StartDate:  payload.StartDate,
		EndDate:    payload.EndDate,
		Message:    payload.Message,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, booking)
}

// List handles GET /bookings. Tenants see their own requests, landlords
// the requests against their properties.
func (ctl *BookingController) List(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	role := models.RoleTenant
	if actor.HasRole(models.RoleLandlord) {
		role = models.RoleLandlord
	}

	bookings, err := ctl.BookingSvc.ListForUser(actor.ID, role)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, bookings)
}

// Get handles GET /bookings/:id.
func (ctl *BookingController) Get(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	booking, err := ctl.BookingSvc.GetForActor(id, actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// UpdateStatus handles PUT /bookings/:id/status.
func (ctl *BookingController) UpdateStatus(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var payload UpdateBookingStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	booking, err := ctl.BookingSvc.UpdateStatus(id, payload.Status, actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// Delete handles DELETE /bookings/:id.
func (ctl *BookingController) Delete(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	if err := ctl.BookingSvc.Remove(id, actor.ID); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Booking deleted successfully")
}
