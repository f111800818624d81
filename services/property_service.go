package services

import (
	"context"
	"fmt"
	"io"
	"log"

	"sharenest-backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxPropertyImages = 3

var ErrPropertyImageNotFound = NotFoundError("Property image not found")

type PropertyService struct {
	DB     *gorm.DB
	Images ImageStore
}

func NewPropertyService(db *gorm.DB, images ImageStore) *PropertyService {
	return &PropertyService{DB: db, Images: images}
}

type CreatePropertyInput struct {
	Title         string
	Description   string
	Category      string
	City          string
	Postcode      string
	Address       string
	Street        string
	HouseNumber   string
	Latitude      *float64
	Longitude     *float64
	Price         float64
	Bedrooms      int
	Bathrooms     int
	Size          *int
	Amenities     []byte
	AvailableFrom string
	AvailableTo   string
}

type UpdatePropertyInput struct {
	Title         *string
	Description   *string
	Category      *string
	City          *string
	Postcode      *string
	Address       *string
	Street        *string
	HouseNumber   *string
	Latitude      *float64
	Longitude     *float64
	Price         *float64
	Bedrooms      *int
	Bathrooms     *int
	Size          *int
	Amenities     []byte
	AvailableFrom *string
	AvailableTo   *string
	IsAvailable   *bool
	IsActive      *bool
}

type PropertySearchInput struct {
	Query         string
	Category      string
	City          string
	Postcode      string
	MinPrice      float64
	MaxPrice      float64
	MinBedrooms   int
	MinBathrooms  int
	AvailableFrom string
	AvailableTo   string
	Page          int
	Limit         int
}

type PropertySearchResult struct {
	Count int64             `json:"count"`
	Rows  []models.Property `json:"rows"`
}

func withImagesSorted(db *gorm.DB) *gorm.DB {
	return db.Order("property_images.sort_order ASC")
}

func (s *PropertyService) Create(ownerID uint, in CreatePropertyInput) (*models.Property, error) {
	availableFrom, err := parseDate(in.AvailableFrom)
	if err != nil {
		return nil, ValidationError("Invalid availableFrom date")
	}

	property := models.Property{
		OwnerID:       ownerID,
		Title:         in.Title,
		Description:   in.Description,
		Category:      in.Category,
		City:          in.City,
		Postcode:      in.Postcode,
		Address:       in.Address,
		Street:        in.Street,
		HouseNumber:   in.HouseNumber,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		Price:         in.Price,
		Bedrooms:      in.Bedrooms,
		Bathrooms:     in.Bathrooms,
		Size:          in.Size,
		AvailableFrom: availableFrom,
		IsAvailable:   true,
		IsActive:      true,
	}
	if len(in.Amenities) > 0 {
		property.Amenities = datatypes.JSON(in.Amenities)
	}
	if in.AvailableTo != "" {
		availableTo, err := parseDate(in.AvailableTo)
		if err != nil {
			return nil, ValidationError("Invalid availableTo date")
		}
		property.AvailableTo = &availableTo
	}

	if err := s.DB.Create(&property).Error; err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}
	return s.FindOne(property.ID)
}

func (s *PropertyService) FindOne(id uint) (*models.Property, error) {
	var property models.Property
	err := s.DB.Preload("Owner").Preload("Images", withImagesSorted).First(&property, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to find property: %w", err)
	}
	return &property, nil
}

func (s *PropertyService) FindAll() ([]models.Property, error) {
	var properties []models.Property
	err := s.DB.Preload("Owner").Order("created_at DESC").Find(&properties).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, nil
}

// Update applies the provided fields. Only the owner may update.
func (s *PropertyService) Update(id, actorID uint, in UpdatePropertyInput) (*models.Property, error) {
	property, err := s.FindOne(id)
	if err != nil {
		return nil, err
	}
	if property.OwnerID != actorID {
		return nil, ForbiddenError("You do not have permission to update this property")
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Category != nil {
		updates["category"] = *in.Category
	}
	if in.City != nil {
		updates["city"] = *in.City
	}
	if in.Postcode != nil {
		updates["postcode"] = *in.Postcode
	}
	if in.Address != nil {
		updates["address"] = *in.Address
	}
	if in.Street != nil {
		updates["street"] = *in.Street
	}
	if in.HouseNumber != nil {
		updates["house_number"] = *in.HouseNumber
	}
	if in.Latitude != nil {
		updates["latitude"] = *in.Latitude
	}
	if in.Longitude != nil {
		updates["longitude"] = *in.Longitude
	}
	if in.Price != nil {
		updates["price"] = *in.Price
	}
	if in.Bedrooms != nil {
		updates["bedrooms"] = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		updates["bathrooms"] = *in.Bathrooms
	}
	if in.Size != nil {
		updates["size"] = *in.Size
	}
	if len(in.Amenities) > 0 {
		updates["amenities"] = datatypes.JSON(in.Amenities)
	}
	if in.AvailableFrom != nil {
		availableFrom, err := parseDate(*in.AvailableFrom)
		if err != nil {
			return nil, ValidationError("Invalid availableFrom date")
		}
		updates["available_from"] = availableFrom
	}
	if in.AvailableTo != nil {
		if *in.AvailableTo == "" {
			updates["available_to"] = nil
		} else {
			availableTo, err := parseDate(*in.AvailableTo)
			if err != nil {
				return nil, ValidationError("Invalid availableTo date")
			}
			updates["available_to"] = availableTo
		}
	}
	if in.IsAvailable != nil {
		updates["is_available"] = *in.IsAvailable
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}

	if len(updates) > 0 {
		if err := s.DB.Model(property).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update property: %w", err)
		}
	}
	return s.FindOne(id)
}

// Remove deletes a property together with its images and favorites.
// Only the owner may delete.
func (s *PropertyService) Remove(id, actorID uint) error {
	property, err := s.FindOne(id)
	if err != nil {
		return err
	}
	if property.OwnerID != actorID {
		return ForbiddenError("You do not have permission to delete this property")
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", id).Delete(&models.PropertyImage{}).Error; err != nil {
			return fmt.Errorf("failed to delete property images: %w", err)
		}
		if err := tx.Where("property_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return fmt.Errorf("failed to delete favorites: %w", err)
		}
		if err := tx.Delete(&models.Property{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete property: %w", err)
		}
		return nil
	})
}

// Search filters active listings and paginates the result.
func (s *PropertyService) Search(in PropertySearchInput) (*PropertySearchResult, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit < 1 {
		limit = 10
	}

	query := s.DB.Model(&models.Property{}).Where("is_active = ?", true)

	if in.Query != "" {
		like := "%" + in.Query + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}
	if in.Category != "" {
		query = query.Where("category = ?", in.Category)
	}
	if in.City != "" {
		query = query.Where("city LIKE ?", "%"+in.City+"%")
	}
	if in.Postcode != "" {
		query = query.Where("postcode LIKE ?", "%"+in.Postcode+"%")
	}
	if in.MinPrice > 0 {
		query = query.Where("price >= ?", in.MinPrice)
	}
	if in.MaxPrice > 0 {
		query = query.Where("price <= ?", in.MaxPrice)
	}
	if in.MinBedrooms > 0 {
		query = query.Where("bedrooms >= ?", in.MinBedrooms)
	}
	if in.MinBathrooms > 0 {
		query = query.Where("bathrooms >= ?", in.MinBathrooms)
	}
	if in.AvailableFrom != "" {
		availableFrom, err := parseDate(in.AvailableFrom)
		if err != nil {
			return nil, ValidationError("Invalid availableFrom date")
		}
		query = query.Where("available_from <= ?", availableFrom)
	}
	if in.AvailableTo != "" {
		availableTo, err := parseDate(in.AvailableTo)
		if err != nil {
			return nil, ValidationError("Invalid availableTo date")
		}
		query = query.Where("available_to >= ? OR available_to IS NULL", availableTo)
	}

	var count int64
	if err := query.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count properties: %w", err)
	}

	var rows []models.Property
	err := query.Session(&gorm.Session{}).
		Preload("Owner").
		Preload("Images", withImagesSorted).
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search properties: %w", err)
	}

	return &PropertySearchResult{Count: count, Rows: rows}, nil
}

func (s *PropertyService) GetFeatured() ([]models.Property, error) {
	var properties []models.Property
	err := s.DB.Where("is_active = ?", true).
		Preload("Owner").
		Preload("Images", withImagesSorted).
		Order("created_at DESC").
		Limit(6).
		Find(&properties).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load featured properties: %w", err)
	}
	return properties, nil
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type CityCount struct {
	City  string `json:"city"`
	Count int64  `json:"count"`
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

func (s *PropertyService) GetCategories() ([]CategoryCount, error) {
	var categories []CategoryCount
	err := s.DB.Model(&models.Property{}).
		Select("category, COUNT(id) AS count").
		Where("is_active = ?", true).
		Group("category").
		Scan(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return categories, nil
}

func (s *PropertyService) GetCities() ([]CityCount, error) {
	var cities []CityCount
	err := s.DB.Model(&models.Property{}).
		Select("city, COUNT(id) AS count").
		Where("is_active = ? AND city <> ''", true).
		Group("city").
		Scan(&cities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cities: %w", err)
	}
	return cities, nil
}

func (s *PropertyService) GetPriceRange() (*PriceRange, error) {
	var result PriceRange
	err := s.DB.Model(&models.Property{}).
		Select("COALESCE(MIN(price), 0) AS min, COALESCE(MAX(price), 0) AS max, COALESCE(AVG(price), 0) AS avg").
		Where("is_active = ?", true).
		Scan(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load price range: %w", err)
	}
	return &result, nil
}

func (s *PropertyService) GetLandlordProperties(landlordID uint) ([]models.Property, error) {
	var properties []models.Property
	err := s.DB.Where("owner_id = ?", landlordID).
		Preload("Owner").
		Preload("Images", withImagesSorted).
		Order("created_at DESC").
		Find(&properties).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load landlord properties: %w", err)
	}
	return properties, nil
}

// ToggleFavorite adds or removes a favorite. Adding is idempotent.
func (s *PropertyService) ToggleFavorite(userID, propertyID uint, isFavorite bool) error {
	if _, err := s.FindOne(propertyID); err != nil {
		return err
	}

	if isFavorite {
		favorite := models.Favorite{UserID: userID, PropertyID: propertyID}
		var existing models.Favorite
		err := s.DB.Where("user_id = ? AND property_id = ?", userID, propertyID).First(&existing).Error
		if err == nil {
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("failed to check favorite: %w", err)
		}
		if err := s.DB.Create(&favorite).Error; err != nil {
			return fmt.Errorf("failed to add favorite: %w", err)
		}
		return nil
	}

	if err := s.DB.Where("user_id = ? AND property_id = ?", userID, propertyID).
		Delete(&models.Favorite{}).Error; err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

func (s *PropertyService) GetUserFavorites(userID uint) ([]models.Property, error) {
	var favorites []models.Favorite
	err := s.DB.Where("user_id = ?", userID).
		Preload("Property.Owner").
		Preload("Property.Images", withImagesSorted).
		Find(&favorites).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}

	properties := make([]models.Property, 0, len(favorites))
	for _, favorite := range favorites {
		properties = append(properties, favorite.Property)
	}
	return properties, nil
}

type ImageUpload struct {
	File io.Reader
}

// UploadImages stores up to three images per property.
func (s *PropertyService) UploadImages(ctx context.Context, propertyID, actorID uint, files []ImageUpload) ([]models.PropertyImage, error) {
	if s.Images == nil {
		return nil, ValidationError("Image uploads are not configured")
	}
	property, err := s.FindOne(propertyID)
	if err != nil {
		return nil, err
	}
	if property.OwnerID != actorID {
		return nil, ForbiddenError("You do not have permission to update this property")
	}

	var currentCount int64
	if err := s.DB.Model(&models.PropertyImage{}).
		Where("property_id = ?", propertyID).Count(&currentCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count property images: %w", err)
	}

	if int(currentCount)+len(files) > maxPropertyImages {
		return nil, ValidationError(fmt.Sprintf(
			"Cannot upload %d images. Property already has %d images. Maximum %d images allowed.",
			len(files), currentCount, maxPropertyImages))
	}

	uploaded := make([]models.PropertyImage, 0, len(files))
	for i, file := range files {
		result, err := s.Images.Upload(ctx, file.File, "properties")
		if err != nil {
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}

		image := models.PropertyImage{
			PropertyID:         propertyID,
			ImageURL:           result.URL,
			CloudinaryPublicID: result.PublicID,
			SortOrder:          int(currentCount) + i,
		}
		if err := s.DB.Create(&image).Error; err != nil {
			return nil, fmt.Errorf("failed to save property image: %w", err)
		}
		uploaded = append(uploaded, image)
	}
	return uploaded, nil
}

func (s *PropertyService) GetImages(propertyID uint) ([]models.PropertyImage, error) {
	var images []models.PropertyImage
	err := s.DB.Where("property_id = ?", propertyID).
		Order("sort_order ASC").
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load property images: %w", err)
	}
	return images, nil
}

// DeleteImage removes an image record. The remote copy is deleted on a
// best-effort basis.
func (s *PropertyService) DeleteImage(ctx context.Context, imageID, propertyID, actorID uint) error {
	property, err := s.FindOne(propertyID)
	if err != nil {
		return err
	}
	if property.OwnerID != actorID {
		return ForbiddenError("You do not have permission to update this property")
	}

	var image models.PropertyImage
	err = s.DB.Where("id = ? AND property_id = ?", imageID, propertyID).First(&image).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrPropertyImageNotFound
		}
		return fmt.Errorf("failed to find property image: %w", err)
	}

	if image.CloudinaryPublicID != "" && s.Images != nil {
		if err := s.Images.Delete(ctx, image.CloudinaryPublicID); err != nil {
			log.Printf("failed to delete remote image %s: %v", image.CloudinaryPublicID, err)
		}
	}

	if err := s.DB.Delete(&image).Error; err != nil {
		return fmt.Errorf("failed to delete property image: %w", err)
	}
	return nil
}
