package services

import (
	"testing"
	"time"

	"sharenest-backend/models"

	"gorm.io/gorm"
)

func newBookingService(t *testing.T, db *gorm.DB, notifier *fakeNotifier) *BookingService {
	t.Helper()
	svc := NewBookingService(db, notifier, "http://localhost:3000")
	// Pin the clock inside the property's availability window.
	svc.Now = func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func bookingFixture(t *testing.T) (*gorm.DB, *BookingService, *fakeNotifier, *models.User, *models.User, *models.Property) {
	t.Helper()
	db := newTestDB(t)
	notifier := &fakeNotifier{}
	svc := newBookingService(t, db, notifier)

	landlord := seedUser(t, db, "landlord@example.com", models.RoleLandlord)
	tenant := seedUser(t, db, "tenant@example.com", models.RoleTenant)
	availableTo := "2024-08-31"
	property := seedProperty(t, db, landlord.ID, "2024-06-01", &availableTo)
	return db, svc, notifier, landlord, tenant, property
}

func TestCreateBookingPending(t *testing.T) {
	_, svc, notifier, landlord, tenant, property := bookingFixture(t)

	booking, err := svc.Create(tenant.ID, CreateBookingInput{
		PropertyID: property.ID,
		StartDate:  "2024-06-10",
		EndDate:    "2024-06-15",
		Message:    "Looking forward to it",
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	if booking.Status != models.BookingStatusPending {
		t.Errorf("expected status pending, got %s", booking.Status)
	}
	if booking.Property.ID != property.ID || booking.Tenant.ID != tenant.ID {
		t.Errorf("relations not loaded: property=%d tenant=%d", booking.Property.ID, booking.Tenant.ID)
	}

	if len(notifier.requests) != 1 || notifier.requests[0] != landlord.Email {
		t.Errorf("expected one request email to landlord, got %v", notifier.requests)
	}
	if len(notifier.confirmations) != 1 || notifier.confirmations[0] != tenant.Email {
		t.Errorf("expected one confirmation email to tenant, got %v", notifier.confirmations)
	}
}

func TestCreateBookingValidationOrder(t *testing.T) {
	db, svc, _, _, tenant, property := bookingFixture(t)

	cases := []struct {
		name    string
		start   string
		end     string
		want    error
		prepare func()
	}{
		{name: "past start date", start: "2024-05-20", end: "2024-06-05", want: ErrStartDateInPast},
		{name: "end not after start", start: "2024-06-10", end: "2024-06-10", want: ErrInvalidDateRange},
		{name: "end before start", start: "2024-06-10", end: "2024-06-08", want: ErrInvalidDateRange},
		{name: "after availability window", start: "2024-08-20", end: "2024-09-05", want: ErrOutsideAvailability},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(tenant.ID, CreateBookingInput{
				PropertyID: property.ID,
				StartDate:  tc.start,
				EndDate:    tc.end,
			})
			if err != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	t.Run("unknown property", func(t *testing.T) {
		_, err := svc.Create(tenant.ID, CreateBookingInput{PropertyID: 9999, StartDate: "2024-06-10", EndDate: "2024-06-15"})
		if err != ErrPropertyNotFound {
			t.Fatalf("expected %v, got %v", ErrPropertyNotFound, err)
		}
	})

	t.Run("inactive property", func(t *testing.T) {
		if err := db.Model(property).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate property: %v", err)
		}
		defer db.Model(property).Update("is_active", true)

		_, err := svc.Create(tenant.ID, CreateBookingInput{PropertyID: property.ID, StartDate: "2024-06-10", EndDate: "2024-06-15"})
		if err != ErrPropertyInactive {
			t.Fatalf("expected %v, got %v", ErrPropertyInactive, err)
		}
	})
}

func TestCreateBookingOverlap(t *testing.T) {
	db, svc, _, _, tenant, property := bookingFixture(t)
	other := seedUser(t, db, "other@example.com", models.RoleTenant)
	seedBooking(t, db, property.ID, other.ID, "2024-06-10", "2024-06-15", models.BookingStatusApproved)

	cases := []struct {
		name     string
		start    string
		end      string
		conflict bool
	}{
		{name: "fully inside", start: "2024-06-11", end: "2024-06-13", conflict: true},
		{name: "straddles start", start: "2024-06-08", end: "2024-06-11", conflict: true},
		{name: "ends on existing start", start: "2024-06-05", end: "2024-06-10", conflict: true},
		{name: "starts during stay", start: "2024-06-14", end: "2024-06-20", conflict: true},
		{name: "starts on existing end", start: "2024-06-15", end: "2024-06-20", conflict: true},
		{name: "starts day after end", start: "2024-06-16", end: "2024-06-20", conflict: false},
		{name: "ends day before start", start: "2024-06-05", end: "2024-06-09", conflict: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			booking, err := svc.Create(tenant.ID, CreateBookingInput{
				PropertyID: property.ID,
				StartDate:  tc.start,
				EndDate:    tc.end,
			})
			if tc.conflict {
				if err != ErrDatesConflict {
					t.Fatalf("expected conflict, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			// keep the table independent of prior successful rows
			if err := db.Delete(&models.Booking{}, booking.ID).Error; err != nil {
				t.Fatalf("cleanup: %v", err)
			}
		})
	}
}

func TestCreateBookingIgnoresNonBlockingStatuses(t *testing.T) {
	db, svc, _, _, tenant, property := bookingFixture(t)
	other := seedUser(t, db, "other@example.com", models.RoleTenant)
	seedBooking(t, db, property.ID, other.ID, "2024-06-10", "2024-06-15", models.BookingStatusRejected)
	seedBooking(t, db, property.ID, other.ID, "2024-06-10", "2024-06-15", models.BookingStatusCancelled)

	_, err := svc.Create(tenant.ID, CreateBookingInput{
		PropertyID: property.ID,
		StartDate:  "2024-06-10",
		EndDate:    "2024-06-15",
	})
	if err != nil {
		t.Fatalf("rejected and cancelled bookings must not block, got %v", err)
	}
}

func TestCreateBookingPendingBlocks(t *testing.T) {
	db, svc, _, _, tenant, property := bookingFixture(t)
	other := seedUser(t, db, "other@example.com", models.RoleTenant)
	seedBooking(t, db, property.ID, other.ID, "2024-06-10", "2024-06-15", models.BookingStatusPending)

	_, err := svc.Create(tenant.ID, CreateBookingInput{
		PropertyID: property.ID,
		StartDate:  "2024-06-12",
		EndDate:    "2024-06-18",
	})
	if err != ErrDatesConflict {
		t.Fatalf("pending bookings must block, got %v", err)
	}
}

func TestCreateBookingSurvivesNotifierOutage(t *testing.T) {
	_, svc, notifier, _, tenant, property := bookingFixture(t)
	notifier.fail = true

	booking, err := svc.Create(tenant.ID, CreateBookingInput{
		PropertyID: property.ID,
		StartDate:  "2024-06-10",
		EndDate:    "2024-06-15",
	})
	if err != nil {
		t.Fatalf("mail outage must not fail the booking, got %v", err)
	}
	if booking.Status != models.BookingStatusPending {
		t.Errorf("expected pending, got %s", booking.Status)
	}
}

func TestGetForActor(t *testing.T) {
	db, svc, _, landlord, tenant, property := bookingFixture(t)
	stranger := seedUser(t, db, "stranger@example.com", models.RoleTenant)
	booking := seedBooking(t, db, property.ID, tenant.ID, "2024-06-10", "2024-06-15", models.BookingStatusPending)

	if _, err := svc.GetForActor(booking.ID, tenant.ID); err != nil {
		t.Errorf("tenant must see own booking: %v", err)
	}
	if _, err := svc.GetForActor(booking.ID, landlord.ID); err != nil {
		t.Errorf("property owner must see booking: %v", err)
	}

	_, err := svc.GetForActor(booking.ID, stranger.ID)
	assertKind(t, err, KindForbidden)

	_, err = svc.GetForActor(9999, tenant.ID)
	if err != ErrBookingNotFound {
		t.Errorf("expected %v, got %v", ErrBookingNotFound, err)
	}
}

func TestListForUserScopes(t *testing.T) {
	db, svc, _, landlord, tenant, property := bookingFixture(t)
	otherLandlord := seedUser(t, db, "landlord2@example.com", models.RoleLandlord)
	otherProperty := seedProperty(t, db, otherLandlord.ID, "2024-06-01", nil)
	otherTenant := seedUser(t, db, "tenant2@example.com", models.RoleTenant)

	seedBooking(t, db, property.ID, tenant.ID, "2024-06-10", "2024-06-15", models.BookingStatusPending)
	seedBooking(t, db, otherProperty.ID, tenant.ID, "2024-06-20", "2024-06-25", models.BookingStatusPending)
	seedBooking(t, db, property.ID, otherTenant.ID, "2024-07-01", "2024-07-05", models.BookingStatusPending)

	mine, err := svc.ListForUser(tenant.ID, models.RoleTenant)
	if err != nil {
		t.Fatalf("list tenant bookings: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("tenant expected 2 bookings, got %d", len(mine))
	}
	for _, b := range mine {
		if b.TenantID != tenant.ID {
			t.Errorf("tenant listing leaked booking %d of tenant %d", b.ID, b.TenantID)
		}
	}

	incoming, err := svc.ListForUser(landlord.ID, models.RoleLandlord)
	if err != nil {
		t.Fatalf("list landlord bookings: %v", err)
	}
	if len(incoming) != 2 {
		t.Errorf("landlord expected 2 bookings, got %d", len(incoming))
	}
	for _, b := range incoming {
		if b.Property.OwnerID != landlord.ID {
			t.Errorf("landlord listing leaked booking %d of property %d", b.ID, b.PropertyID)
		}
	}
}

func TestUpdateStatusAuthorization(t *testing.T) {
	db, svc, notifier, landlord, tenant, property := bookingFixture(t)
	stranger := seedUser(t, db, "stranger2@example.com", models.RoleTenant)
	booking := seedBooking(t, db, property.ID, tenant.ID, "2024-06-10", "2024-06-15", models.BookingStatusPending)

	// Neither the tenant nor an unrelated user may decide a request;
	// this is an authorization failure, not a validation failure.
	_, err := svc.UpdateStatus(booking.ID, models.BookingStatusApproved, tenant.ID)
	assertKind(t, err, KindForbidden)
	_, err = svc.UpdateStatus(booking.ID, models.BookingStatusApproved, stranger.ID)
	assertKind(t, err, KindForbidden)

	updated, err := svc.UpdateStatus(booking.ID, models.BookingStatusApproved, landlord.ID)
	if err != nil {
		t.Fatalf("owner approve: %v", err)
	}
	if updated.Status != models.BookingStatusApproved {
		t.Errorf("expected approved, got %s", updated.Status)
	}
	if len(notifier.statusUpdates) != 1 || notifier.statusUpdates[0] != tenant.Email+":approved" {
		t.Errorf("expected approval email to tenant, got %v", notifier.statusUpdates)
	}
	if notifier.lastContact == nil || notifier.lastContact.Phone == "" {
		t.Errorf("approved update must carry landlord contact, got %+v", notifier.lastContact)
	}
}

func TestUpdateStatusCancel(t *testing.T) {
	db, svc, _, landlord, tenant, property := bookingFixture(t)
	stranger := seedUser(t, db, "stranger@example.com", models.RoleTenant)

	first := seedBooking(t, db, property.ID, tenant.ID, "2024-06-10", "2024-06-15", models.BookingStatusPending)
	second := seedBooking(t, db, property.ID, tenant.ID, "2024-07-10", "2024-07-15", models.BookingStatusPending)

	_, err := svc.UpdateStatus(first.ID, models.BookingStatusCancelled, stranger.ID)
	assertKind(t, err, KindForbidden)

	if _, err := svc.UpdateStatus(first.ID, models.BookingStatusCancelled, tenant.ID); err != nil {
		t.Errorf("tenant cancel: %v", err)
	}
	if _, err := svc.UpdateStatus(second.ID, models.BookingStatusCancelled, landlord.ID); err != nil {
		t.Errorf("owner cancel: %v", err)
	}
}

func TestUpdateStatusRejectsInvalidStatus(t *testing.T) {
	db, svc, _, landlord, tenant, property := bookingFixture(t)
	booking := seedBooking(t, db, property.ID, tenant.ID, "2024-06-10", "2024-06-15", models.BookingStatusPending)

	for _, status := range []string{"confirmed", "", models.BookingStatusPending} {
		_, err := svc.UpdateStatus(booking.ID, status, landlord.ID)
		assertKind(t, err, KindValidation)
	}
}

// An already-decided booking can be re-decided. The frontend relies on
// landlords being able to reverse a decision, so this stays allowed.
func TestUpdateStatusApprovedToRejected(t *testing.T) {
	db, svc, notifier, landlord, tenant, property := bookingFixture(t)
	booking := seedBooking(t, db, property.ID, tenant.ID, "2024-06-10", "2024-06-15", models.BookingStatusApproved)

	updated, err := svc.UpdateStatus(booking.ID, models.BookingStatusRejected, landlord.ID)
	if err != nil {
		t.Fatalf("re-deciding an approved booking must be allowed: %v", err)
	}
	if updated.Status != models.BookingStatusRejected {
		t.Errorf("expected rejected, got %s", updated.Status)
	}
	if notifier.lastContact != nil {
		t.Errorf("rejection must not disclose landlord contact, got %+v", notifier.lastContact)
	}
}

func TestUpdateStatusSameStatusNoop(t *testing.T) {
	db, svc, notifier, landlord, tenant, property := bookingFixture(t)
	booking := seedBooking(t, db, property.ID, tenant.ID, "2024-06-10", "2024-06-15", models.BookingStatusApproved)

	updated, err := svc.UpdateStatus(booking.ID, models.BookingStatusApproved, landlord.ID)
	if err != nil {
		t.Fatalf("same-status update: %v", err)
	}
	if updated.Status != models.BookingStatusApproved {
		t.Errorf("expected approved, got %s", updated.Status)
	}
	if len(notifier.statusUpdates) != 0 {
		t.Errorf("no-op update must not send mail, got %v", notifier.statusUpdates)
	}
}

func TestRemoveBooking(t *testing.T) {
	db, svc, _, landlord, tenant, property := bookingFixture(t)
	booking := seedBooking(t, db, property.ID, tenant.ID, "2024-06-10", "2024-06-15", models.BookingStatusPending)

	err := svc.Remove(booking.ID, landlord.ID)
	assertKind(t, err, KindForbidden)

	if err := svc.Remove(booking.ID, tenant.ID); err != nil {
		t.Fatalf("tenant delete: %v", err)
	}

	var count int64
	if err := db.Model(&models.Booking{}).Where("id = ?", booking.ID).Count(&count).Error; err != nil {
		t.Fatalf("count bookings: %v", err)
	}
	if count != 0 {
		t.Errorf("booking row should be gone, found %d", count)
	}
}
