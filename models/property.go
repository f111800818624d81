package models

import (
	"time"

	"gorm.io/datatypes"
)

type Property struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OwnerID uint `gorm:"column:owner_id;index;not null" json:"ownerId"`

	Title       string `gorm:"column:title;size:255;not null" json:"title"`
	Description string `gorm:"column:description;type:text;not null" json:"description"`
	Category    string `gorm:"column:category;size:64;not null;index" json:"category"`

	City        string `gorm:"column:city;size:128;not null;index" json:"city"`
	Postcode    string `gorm:"column:postcode;size:16" json:"postcode"`
	Address     string `gorm:"column:address;size:255;not null" json:"address"`
	Street      string `gorm:"column:street;size:255" json:"street,omitempty"`
	HouseNumber string `gorm:"column:house_number;size:32" json:"houseNumber,omitempty"`

	Latitude  *float64 `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude *float64 `gorm:"column:longitude" json:"longitude,omitempty"`

	Price     float64 `gorm:"column:price;not null" json:"price"`
	Bedrooms  int     `gorm:"column:bedrooms;not null" json:"bedrooms"`
	Bathrooms int     `gorm:"column:bathrooms;not null" json:"bathrooms"`
	Size      *int    `gorm:"column:size" json:"size,omitempty"`

	Amenities datatypes.JSON `gorm:"column:amenities" json:"amenities,omitempty"`
	ImageURL  string         `gorm:"column:image_url;size:512" json:"imageUrl,omitempty"`

	AvailableFrom time.Time  `gorm:"column:available_from;not null" json:"availableFrom"`
	AvailableTo   *time.Time `gorm:"column:available_to" json:"availableTo,omitempty"`
	IsAvailable   bool       `gorm:"column:is_available;default:true" json:"isAvailable"`
	IsActive      bool       `gorm:"column:is_active;default:true;index" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Owner    User            `gorm:"foreignKey:OwnerID;references:ID" json:"owner,omitempty"`
	Images   []PropertyImage `gorm:"foreignKey:PropertyID" json:"images,omitempty"`
	Bookings []Booking       `gorm:"foreignKey:PropertyID" json:"bookings,omitempty"`
	Reviews  []Review        `gorm:"foreignKey:PropertyID" json:"reviews,omitempty"`
}

type PropertyImage struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	PropertyID uint `gorm:"column:property_id;index;not null" json:"propertyId"`

	ImageURL           string `gorm:"column:image_url;size:512;not null" json:"imageUrl"`
	CloudinaryPublicID string `gorm:"column:cloudinary_public_id;size:255" json:"cloudinaryPublicId,omitempty"`
	SortOrder          int    `gorm:"column:sort_order;default:0" json:"sortOrder"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Favorite struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	UserID     uint `gorm:"column:user_id;not null;uniqueIndex:idx_favorites_user_property" json:"userId"`
	PropertyID uint `gorm:"column:property_id;not null;uniqueIndex:idx_favorites_user_property" json:"propertyId"`

	CreatedAt time.Time `json:"createdAt"`

	Property Property `gorm:"foreignKey:PropertyID;references:ID" json:"property,omitempty"`
}
