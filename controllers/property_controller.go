// controllers/property_controller.go
package controllers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"

	"sharenest-backend/middleware"
	"sharenest-backend/services"
	"sharenest-backend/utils"

	"github.com/gin-gonic/gin"
)

// ---------------------------
// Payload / DTOs
// ---------------------------

type CreatePropertyPayload struct {
	Title         string          `json:"title" binding:"required"`
	Description   string          `json:"description" binding:"required"`
	Category      string          `json:"category" binding:"required"`
	City          string          `json:"city" binding:"required"`
	Postcode      string          `json:"postcode"`
	Address       string          `json:"address"`
	Street        string          `json:"street"`
	HouseNumber   string          `json:"houseNumber"`
	Latitude      *float64        `json:"latitude"`
	Longitude     *float64        `json:"longitude"`
	Price         float64         `json:"price" binding:"required,gt=0"`
	Bedrooms      int             `json:"bedrooms"`
	Bathrooms     int             `json:"bathrooms"`
	Size          *int            `json:"size"`
	Amenities     json.RawMessage `json:"amenities"`
	AvailableFrom string          `json:"availableFrom" binding:"required,calendardate"`
	AvailableTo   string          `json:"availableTo" binding:"omitempty,calendardate"`
}

type UpdatePropertyPayload struct {
	Title         *string         `json:"title"`
	Description   *string         `json:"description"`
	Category      *string         `json:"category"`
	City          *string         `json:"city"`
	Postcode      *string         `json:"postcode"`
	Address       *string         `json:"address"`
	Street        *string         `json:"street"`
	HouseNumber   *string         `json:"houseNumber"`
	Latitude      *float64        `json:"latitude"`
	Longitude     *float64        `json:"longitude"`
	Price         *float64        `json:"price"`
	Bedrooms      *int            `json:"bedrooms"`
	Bathrooms     *int            `json:"bathrooms"`
	Size          *int            `json:"size"`
	Amenities     json.RawMessage `json:"amenities"`
	AvailableFrom *string         `json:"availableFrom"`
	AvailableTo   *string         `json:"availableTo"`
	IsAvailable   *bool           `json:"isAvailable"`
	IsActive      *bool           `json:"isActive"`
}

type ToggleFavoritePayload struct {
	IsFavorite *bool `json:"isFavorite" binding:"required"`
}

// ---------------------------
// Controller
// ---------------------------

type PropertyController struct {
	PropertySvc *services.PropertyService
}

func NewPropertyController(svc *services.PropertyService) *PropertyController {
	return &PropertyController{PropertySvc: svc}
}

// Create handles POST /properties. Landlord only.
func (ctl *PropertyController) Create(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var payload CreatePropertyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	property, err := ctl.PropertySvc.Create(actor.ID, services.CreatePropertyInput{
		Title:         payload.Title,
		Description:   payload.Description,
		Category:      payload.Category,
		City:          payload.City,
		Postcode:      payload.Postcode,
		Address:       payload.Address,
		Street:        payload.Street,
		HouseNumber:   payload.HouseNumber,
		Latitude:      payload.Latitude,
		Longitude:     payload.Longitude,
		Price:         payload.Price,
		Bedrooms:      payload.Bedrooms,
		Bathrooms:     payload.Bathrooms,
		Size:          payload.Size,
		Amenities:     payload.Amenities,
		AvailableFrom: payload.AvailableFrom,
		AvailableTo:   payload.AvailableTo,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, property)
}

// Search handles GET /properties with query-string filters.
func (ctl *PropertyController) Search(c *gin.Context) {
	in := services.PropertySearchInput{
		Query:         c.Query("query"),
		Category:      c.Query("category"),
		City:          c.Query("city"),
		Postcode:      c.Query("postcode"),
		AvailableFrom: c.Query("availableFrom"),
		AvailableTo:   c.Query("availableTo"),
	}
	in.MinPrice, _ = strconv.ParseFloat(c.Query("minPrice"), 64)
	in.MaxPrice, _ = strconv.ParseFloat(c.Query("maxPrice"), 64)
	in.MinBedrooms, _ = strconv.Atoi(c.Query("minBedrooms"))
	in.MinBathrooms, _ = strconv.Atoi(c.Query("minBathrooms"))
	in.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	in.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := ctl.PropertySvc.Search(in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, result)
}

// Featured handles GET /properties/featured.
func (ctl *PropertyController) Featured(c *gin.Context) {
	properties, err := ctl.PropertySvc.GetFeatured()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, properties)
}

// Categories handles GET /properties/categories.
func (ctl *PropertyController) Categories(c *gin.Context) {
	categories, err := ctl.PropertySvc.GetCategories()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, categories)
}

// Cities handles GET /properties/cities.
func (ctl *PropertyController) Cities(c *gin.Context) {
	cities, err := ctl.PropertySvc.GetCities()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, cities)
}

// PriceRange handles GET /properties/price-range.
func (ctl *PropertyController) PriceRange(c *gin.Context) {
	priceRange, err := ctl.PropertySvc.GetPriceRange()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, priceRange)
}

// Get handles GET /properties/:id.
func (ctl *PropertyController) Get(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	property, err := ctl.PropertySvc.FindOne(id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, property)
}

// Update handles PUT /properties/:id. Owner only.
func (ctl *PropertyController) Update(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var payload UpdatePropertyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	property, err := ctl.PropertySvc.Update(id, actor.ID, services.UpdatePropertyInput{
		Title:         payload.Title,
		Description:   payload.Description,
		Category:      payload.Category,
		City:          payload.City,
		Postcode:      payload.Postcode,
		Address:       payload.Address,
		Street:        payload.Street,
		HouseNumber:   payload.HouseNumber,
		Latitude:      payload.Latitude,
		Longitude:     payload.Longitude,
		Price:         payload.Price,
		Bedrooms:      payload.Bedrooms,
		Bathrooms:     payload.Bathrooms,
		Size:          payload.Size,
		Amenities:     payload.Amenities,
		AvailableFrom: payload.AvailableFrom,
		AvailableTo:   payload.AvailableTo,
		IsAvailable:   payload.IsAvailable,
		IsActive:      payload.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, property)
}

// Delete handles DELETE /properties/:id. Owner only.
func (ctl *PropertyController) Delete(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	if err := ctl.PropertySvc.Remove(id, actor.ID); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Property deleted successfully")
}

// MyProperties handles GET /properties/landlord/me.
func (ctl *PropertyController) MyProperties(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	properties, err := ctl.PropertySvc.GetLandlordProperties(actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, properties)
}

// ToggleFavorite handles POST /properties/:id/favorite.
func (ctl *PropertyController) ToggleFavorite(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var payload ToggleFavoritePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := ctl.PropertySvc.ToggleFavorite(actor.ID, id, *payload.IsFavorite); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Favorite updated")
}

// MyFavorites handles GET /properties/favorites/me.
func (ctl *PropertyController) MyFavorites(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	properties, err := ctl.PropertySvc.GetUserFavorites(actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, properties)
}

// UploadImages handles POST /properties/:id/images with multipart "images" files.
func (ctl *PropertyController) UploadImages(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	fileHeaders := form.File["images"]
	if len(fileHeaders) == 0 {
		utils.JSONError(c, http.StatusBadRequest, "At least one image file is required")
		return
	}

	uploads := make([]services.ImageUpload, 0, len(fileHeaders))
	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, fh := range fileHeaders {
		file, err := fh.Open()
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Could not read image file")
			return
		}
		opened = append(opened, file)
		uploads = append(uploads, services.ImageUpload{File: file})
	}

	images, err := ctl.PropertySvc.UploadImages(c.Request.Context(), id, actor.ID, uploads)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, images)
}

// ListImages handles GET /properties/:id/images.
func (ctl *PropertyController) ListImages(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}

	images, err := ctl.PropertySvc.GetImages(id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, images)
}

// DeleteImage handles DELETE /properties/:id/images/:imageId.
func (ctl *PropertyController) DeleteImage(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	imageID, ok := paramUint(c, "imageId")
	if !ok {
		return
	}

	if err := ctl.PropertySvc.DeleteImage(c.Request.Context(), imageID, id, actor.ID); err != nil {
		respondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Property image deleted successfully")
}
