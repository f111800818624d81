package models

import "time"

const (
	ReviewTypeProperty = "property"
	ReviewTypeUser     = "user"
)

type Review struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ReviewerID uint `gorm:"column:reviewer_id;index;not null" json:"reviewerId"`

	Type string `gorm:"column:type;size:32;not null;index" json:"type"`

	// PropertyID is set for property reviews, ReviewedID for user reviews.
	PropertyID *uint `gorm:"column:property_id;index" json:"propertyId,omitempty"`
	ReviewedID *uint `gorm:"column:reviewed_id;index" json:"reviewedId,omitempty"`

	Rating  int    `gorm:"column:rating;not null" json:"rating"`
	Comment string `gorm:"column:comment;type:text" json:"comment,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Reviewer User      `gorm:"foreignKey:ReviewerID;references:ID" json:"reviewer,omitempty"`
	Reviewed *User     `gorm:"foreignKey:ReviewedID;references:ID" json:"reviewed,omitempty"`
	Property *Property `gorm:"foreignKey:PropertyID;references:ID" json:"property,omitempty"`
}
