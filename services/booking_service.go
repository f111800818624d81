package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"sharenest-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Booking failure reasons. The strings are part of the API contract.
var (
	ErrPropertyNotFound    = NotFoundError("Property not found")
	ErrBookingNotFound     = NotFoundError("Booking not found")
	ErrPropertyInactive    = ValidationError("Property is not available for booking")
	ErrStartDateInPast     = ValidationError("Start date cannot be in the past")
	ErrInvalidDateRange    = ValidationError("End date must be after start date")
	ErrOutsideAvailability = ValidationError("Requested dates are outside the property's availability window")
	ErrDatesConflict       = ValidationError("Property is not available for the selected dates")
)

type BookingService struct {
	DB          *gorm.DB
	Notifier    Notifier
	FrontendURL string

	// Now is the clock used for "today" checks; tests pin it.
	Now func() time.Time
}

func NewBookingService(db *gorm.DB, notifier Notifier, frontendURL string) *BookingService {
	return &BookingService{DB: db, Notifier: notifier, FrontendURL: frontendURL, Now: time.Now}
}

type CreateBookingInput struct {
	PropertyID uint
	StartDate  string
	EndDate    string
	Message    string
}

const dateLayout = "2006-01-02"

// startOfDayUTC drops the time-of-day so all range comparisons happen at
// calendar granularity.
func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return startOfDayUTC(t), nil
}

// lockForUpdate adds a row lock on dialects that support it. SQLite has a
// single writer and no FOR UPDATE syntax.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// Create validates the proposed range and inserts a pending booking. The
// property row is locked for the duration of the check+insert so two
// concurrent requests for the same property cannot both pass the overlap
// check. Validation order is fixed: each rule has its own failure reason.
func (s *BookingService) Create(tenantID uint, in CreateBookingInput) (*models.Booking, error) {
	start, err := parseDate(in.StartDate)
	if err != nil {
		return nil, ValidationError(fmt.Sprintf("Invalid start date: %s", in.StartDate))
	}
	end, err := parseDate(in.EndDate)
	if err != nil {
		return nil, ValidationError(fmt.Sprintf("Invalid end date: %s", in.EndDate))
	}

	var booking models.Booking
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var property models.Property
		if err := lockForUpdate(tx).First(&property, in.PropertyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPropertyNotFound
			}
			return fmt.Errorf("failed to load property %d: %w", in.PropertyID, err)
		}

		if !property.IsActive {
			return ErrPropertyInactive
		}

		today := startOfDayUTC(s.Now())
		if start.Before(today) {
			return ErrStartDateInPast
		}
		if !end.After(start) {
			return ErrInvalidDateRange
		}

		if start.Before(startOfDayUTC(property.AvailableFrom)) {
			return ErrOutsideAvailability
		}
		if property.AvailableTo != nil && end.After(startOfDayUTC(*property.AvailableTo)) {
			return ErrOutsideAvailability
		}

		// Inclusive overlap: a blocking booking that ends on the proposed
		// start day still conflicts.
		var conflicts int64
		if err := tx.Model(&models.Booking{}).
			Where("property_id = ?", property.ID).
			Where("status IN ?", models.BlockingStatuses()).
			Where("start_date <= ? AND end_date >= ?", end, start).
			Count(&conflicts).Error; err != nil {
			return fmt.Errorf("failed to check overlapping bookings: %w", err)
		}
		if conflicts > 0 {
			return ErrDatesConflict
		}

		booking = models.Booking{
			PropertyID: property.ID,
			TenantID:   tenantID,
			StartDate:  start,
			EndDate:    end,
			Status:     models.BookingStatusPending,
			Message:    in.Message,
		}
		return tx.Create(&booking).Error
	})
	if txErr != nil {
		return nil, txErr
	}

	// Fire after commit; a mail outage must never roll back the booking.
	s.notifyBookingCreated(booking.ID)

	return s.findWithRelations(booking.ID)
}

func (s *BookingService) findWithRelations(id uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.DB.
		Preload("Property").
		Preload("Property.Owner").
		Preload("Tenant").
		First(&booking, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking %d: %w", id, err)
	}
	return &booking, nil
}

// FindOne returns a booking with its property, owner and tenant loaded.
func (s *BookingService) FindOne(id uint) (*models.Booking, error) {
	return s.findWithRelations(id)
}

// CanAccess reports whether the actor is the booking's tenant or the owner
// of its property. Read access does not imply mutate rights.
func (s *BookingService) CanAccess(booking *models.Booking, actorID uint) bool {
	return booking.TenantID == actorID || booking.Property.OwnerID == actorID
}

// GetForActor applies the access predicate on top of FindOne.
func (s *BookingService) GetForActor(id, actorID uint) (*models.Booking, error) {
	booking, err := s.findWithRelations(id)
	if err != nil {
		return nil, err
	}
	if !s.CanAccess(booking, actorID) {
		return nil, ForbiddenError("You do not have access to this booking")
	}
	return booking, nil
}

// ListForUser scopes bookings by role: tenants see their own requests,
// landlords see requests against their properties. Most recent first.
func (s *BookingService) ListForUser(userID uint, role string) ([]models.Booking, error) {
	q := s.DB.
		Preload("Property").
		Preload("Property.Owner").
		Preload("Tenant").
		Order("bookings.created_at DESC")

	if role == models.RoleTenant {
		q = q.Where("bookings.tenant_id = ?", userID)
	} else {
		q = q.Joins("JOIN properties ON properties.id = bookings.property_id").
			Where("properties.owner_id = ?", userID)
	}

	var list []models.Booking
	if err := q.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return list, nil
}

// UpdateStatus runs one state-machine transition. Approve and reject are
// owner-only; cancel is open to the booking's tenant as well. Authorization
// failures are forbidden errors, distinct from validation failures. There
// is deliberately no terminal-state check: an already-decided booking can
// be re-decided, matching long-standing behavior the frontend relies on.
func (s *BookingService) UpdateStatus(id uint, status string, actorID uint) (*models.Booking, error) {
	if !models.IsValidBookingStatus(status) || status == models.BookingStatusPending {
		return nil, ValidationError(fmt.Sprintf("Invalid booking status: %s", status))
	}

	booking, err := s.findWithRelations(id)
	if err != nil {
		return nil, err
	}

	switch status {
	case models.BookingStatusApproved, models.BookingStatusRejected:
		if booking.Property.OwnerID != actorID {
			return nil, ForbiddenError("You do not have permission to update this booking")
		}
	case models.BookingStatusCancelled:
		if booking.TenantID != actorID && booking.Property.OwnerID != actorID {
			return nil, ForbiddenError("You do not have permission to update this booking")
		}
	}

	if booking.Status == status {
		return booking, nil
	}

	if err := s.DB.Model(&models.Booking{}).
		Where("id = ?", booking.ID).
		Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	if status == models.BookingStatusApproved || status == models.BookingStatusRejected {
		s.notifyStatusDecided(booking, status)
	}

	return s.findWithRelations(id)
}

// Remove hard-deletes a booking. Only the tenant who created it may do so;
// this path intentionally bypasses the state machine.
func (s *BookingService) Remove(id, actorID uint) error {
	booking, err := s.findWithRelations(id)
	if err != nil {
		return err
	}
	if booking.TenantID != actorID {
		return ForbiddenError("You do not have permission to delete this booking")
	}
	if err := s.DB.Delete(&models.Booking{}, booking.ID).Error; err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return nil
}

func (s *BookingService) bookingViewURL(id uint) string {
	return fmt.Sprintf("%s/bookings/%d", s.FrontendURL, id)
}

func (s *BookingService) notifyBookingCreated(id uint) {
	booking, err := s.findWithRelations(id)
	if err != nil {
		log.Printf("booking %d: skipping notifications: %v", id, err)
		return
	}

	dates := DateRange{
		From: booking.StartDate.Format(dateLayout),
		To:   booking.EndDate.Format(dateLayout),
	}
	viewURL := s.bookingViewURL(booking.ID)
	landlord := booking.Property.Owner
	tenant := booking.Tenant

	if err := s.Notifier.SendBookingRequest(
		landlord.Email, landlord.FirstName, tenant.FirstName,
		booking.Property.Title, dates, viewURL,
	); err != nil {
		log.Printf("booking %d: failed to notify landlord: %v", booking.ID, err)
	}

	if err := s.Notifier.SendBookingConfirmation(
		tenant.Email, tenant.FirstName, booking.Property.Title, dates, viewURL,
	); err != nil {
		log.Printf("booking %d: failed to confirm to tenant: %v", booking.ID, err)
	}
}

func (s *BookingService) notifyStatusDecided(booking *models.Booking, status string) {
	dates := DateRange{
		From: booking.StartDate.Format(dateLayout),
		To:   booking.EndDate.Format(dateLayout),
	}

	// Contact details are only disclosed to an approved tenant.
	var contact *LandlordContact
	if status == models.BookingStatusApproved {
		contact = &LandlordContact{
			Name:  booking.Property.Owner.FullName(),
			Phone: booking.Property.Owner.Phone,
		}
	}

	if err := s.Notifier.SendBookingStatusUpdate(
		booking.Tenant.Email, booking.Tenant.FirstName, booking.Property.Title,
		status, dates, s.bookingViewURL(booking.ID), contact,
	); err != nil {
		log.Printf("booking %d: failed to notify tenant of %s: %v", booking.ID, status, err)
	}
}
