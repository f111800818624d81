package services

import (
	"fmt"
	"time"

	"sharenest-backend/models"

	"gorm.io/gorm"
)

var (
	ErrReviewNotFound         = NotFoundError("Review not found")
	ErrReviewNotAllowed       = ForbiddenError("You cannot review this property or user")
	ErrAlreadyReviewed        = ValidationError("You have already reviewed this property or user")
	ErrPropertyIDRequired     = ValidationError("Property ID is required for property reviews")
	ErrReviewedUserIDRequired = ValidationError("Reviewed user ID is required for user reviews")
)

type ReviewService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{DB: db, Now: time.Now}
}

type CreateReviewInput struct {
	Type       string
	PropertyID *uint
	ReviewedID *uint
	Rating     int
	Comment    string
}

// PendingReview is a review the user still owes after a completed stay.
type PendingReview struct {
	Type    string         `json:"type"`
	Booking models.Booking `json:"booking"`
	Target  interface{}    `json:"target"`
}

// Create validates eligibility and records the review. A reviewer must
// have a completed stay linking them to the property or user, and may
// review each target only once.
func (s *ReviewService) Create(reviewerID uint, in CreateReviewInput) (*models.Review, error) {
	switch in.Type {
	case models.ReviewTypeProperty:
		if in.PropertyID == nil {
			return nil, ErrPropertyIDRequired
		}
	case models.ReviewTypeUser:
		if in.ReviewedID == nil {
			return nil, ErrReviewedUserIDRequired
		}
	default:
		return nil, ValidationError("Review type must be property or user")
	}

	canReview, err := s.CanCreateReview(reviewerID, in.Type, in.PropertyID, in.ReviewedID)
	if err != nil {
		return nil, err
	}
	if !canReview {
		return nil, ErrReviewNotAllowed
	}

	hasReviewed, err := s.HasAlreadyReviewed(reviewerID, in.Type, in.PropertyID, in.ReviewedID)
	if err != nil {
		return nil, err
	}
	if hasReviewed {
		return nil, ErrAlreadyReviewed
	}

	review := models.Review{
		ReviewerID: reviewerID,
		Type:       in.Type,
		PropertyID: in.PropertyID,
		ReviewedID: in.ReviewedID,
		Rating:     in.Rating,
		Comment:    in.Comment,
	}
	if err := s.DB.Create(&review).Error; err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return s.FindOne(review.ID)
}

func (s *ReviewService) FindOne(id uint) (*models.Review, error) {
	var review models.Review
	err := s.DB.Preload("Reviewer").Preload("Reviewed").Preload("Property").
		First(&review, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to find review: %w", err)
	}
	return &review, nil
}

func (s *ReviewService) FindPropertyReviews(propertyID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := s.DB.Where("property_id = ? AND type = ?", propertyID, models.ReviewTypeProperty).
		Preload("Reviewer").
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load property reviews: %w", err)
	}
	return reviews, nil
}

func (s *ReviewService) FindUserReviews(userID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := s.DB.Where("reviewed_id = ? AND type = ?", userID, models.ReviewTypeUser).
		Preload("Reviewer").
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load user reviews: %w", err)
	}
	return reviews, nil
}

// Remove deletes a review. Only its author may delete it.
func (s *ReviewService) Remove(id, actorID uint) error {
	review, err := s.FindOne(id)
	if err != nil {
		return err
	}
	if review.ReviewerID != actorID {
		return ForbiddenError("You do not have permission to delete this review")
	}
	if err := s.DB.Delete(&models.Review{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}

// CanCreateReview reports whether a completed stay links the reviewer to
// the target. Property reviews need a finished approved booking by the
// reviewer; user reviews accept either direction of the tenant-landlord
// relationship.
func (s *ReviewService) CanCreateReview(reviewerID uint, reviewType string, propertyID, reviewedID *uint) (bool, error) {
	now := s.Now().UTC()

	if reviewType == models.ReviewTypeProperty && propertyID != nil {
		var count int64
		err := s.DB.Model(&models.Booking{}).
			Where("tenant_id = ? AND property_id = ? AND status = ? AND end_date < ?",
				reviewerID, *propertyID, models.BookingStatusApproved, now).
			Count(&count).Error
		if err != nil {
			return false, fmt.Errorf("failed to check completed stays: %w", err)
		}
		return count > 0, nil
	}

	if reviewType == models.ReviewTypeUser && reviewedID != nil {
		var count int64
		err := s.DB.Model(&models.Booking{}).
			Joins("JOIN properties ON properties.id = bookings.property_id").
			Where("bookings.status = ? AND bookings.end_date < ?", models.BookingStatusApproved, now).
			Where("(bookings.tenant_id = ? AND properties.owner_id = ?) OR (bookings.tenant_id = ? AND properties.owner_id = ?)",
				reviewerID, *reviewedID, *reviewedID, reviewerID).
			Count(&count).Error
		if err != nil {
			return false, fmt.Errorf("failed to check completed stays: %w", err)
		}
		return count > 0, nil
	}

	return false, nil
}

func (s *ReviewService) HasAlreadyReviewed(reviewerID uint, reviewType string, propertyID, reviewedID *uint) (bool, error) {
	query := s.DB.Model(&models.Review{}).
		Where("reviewer_id = ? AND type = ?", reviewerID, reviewType)

	if reviewType == models.ReviewTypeProperty && propertyID != nil {
		query = query.Where("property_id = ?", *propertyID)
	} else if reviewType == models.ReviewTypeUser && reviewedID != nil {
		query = query.Where("reviewed_id = ?", *reviewedID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check existing review: %w", err)
	}
	return count > 0, nil
}

// GetPendingReviewsForUser lists completed stays the user has not yet
// reviewed. Tenants owe a property review and a landlord review per
// stay; landlords owe a tenant review.
func (s *ReviewService) GetPendingReviewsForUser(userID uint) ([]PendingReview, error) {
	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	now := s.Now().UTC()
	pending := []PendingReview{}

	switch user.Role {
	case models.RoleTenant:
		var bookings []models.Booking
		err := s.DB.Where("tenant_id = ? AND status = ? AND end_date < ?",
			userID, models.BookingStatusApproved, now).
			Preload("Property.Owner").
			Find(&bookings).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load completed stays: %w", err)
		}

		for _, booking := range bookings {
			propertyID := booking.PropertyID
			reviewedProperty, err := s.HasAlreadyReviewed(userID, models.ReviewTypeProperty, &propertyID, nil)
			if err != nil {
				return nil, err
			}
			if !reviewedProperty {
				pending = append(pending, PendingReview{
					Type:    models.ReviewTypeProperty,
					Booking: booking,
					Target:  booking.Property,
				})
			}

			ownerID := booking.Property.OwnerID
			reviewedLandlord, err := s.HasAlreadyReviewed(userID, models.ReviewTypeUser, nil, &ownerID)
			if err != nil {
				return nil, err
			}
			if !reviewedLandlord {
				pending = append(pending, PendingReview{
					Type:    models.ReviewTypeUser,
					Booking: booking,
					Target:  booking.Property.Owner,
				})
			}
		}

	case models.RoleLandlord:
		var bookings []models.Booking
		err := s.DB.
			Joins("JOIN properties ON properties.id = bookings.property_id").
			Where("properties.owner_id = ? AND bookings.status = ? AND bookings.end_date < ?",
				userID, models.BookingStatusApproved, now).
			Preload("Tenant").
			Preload("Property").
			Find(&bookings).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load completed stays: %w", err)
		}

		for _, booking := range bookings {
			tenantID := booking.TenantID
			reviewedTenant, err := s.HasAlreadyReviewed(userID, models.ReviewTypeUser, nil, &tenantID)
			if err != nil {
				return nil, err
			}
			if !reviewedTenant {
				pending = append(pending, PendingReview{
					Type:    models.ReviewTypeUser,
					Booking: booking,
					Target:  booking.Tenant,
				})
			}
		}
	}

	return pending, nil
}
