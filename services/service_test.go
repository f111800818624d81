package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"sharenest-backend/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.PropertyImage{},
		&models.Favorite{},
		&models.Booking{},
		&models.Review{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// fakeNotifier records every send so tests can assert on delivery.
type fakeNotifier struct {
	requests       []string // landlord emails
	confirmations  []string // tenant emails
	statusUpdates  []string // "email:status"
	lastContact    *LandlordContact
	passwordResets []string // "email:resetURL"
	fail           bool
}

func (f *fakeNotifier) SendBookingRequest(to, landlordName, tenantName, propertyTitle string, dates DateRange, viewURL string) error {
	if f.fail {
		return errors.New("smtp down")
	}
	f.requests = append(f.requests, to)
	return nil
}

func (f *fakeNotifier) SendBookingConfirmation(to, tenantName, propertyTitle string, dates DateRange, viewURL string) error {
	if f.fail {
		return errors.New("smtp down")
	}
	f.confirmations = append(f.confirmations, to)
	return nil
}

func (f *fakeNotifier) SendBookingStatusUpdate(to, tenantName, propertyTitle, status string, dates DateRange, viewURL string, contact *LandlordContact) error {
	if f.fail {
		return errors.New("smtp down")
	}
	f.statusUpdates = append(f.statusUpdates, to+":"+status)
	f.lastContact = contact
	return nil
}

func (f *fakeNotifier) SendPasswordReset(to, name, resetURL string) error {
	if f.fail {
		return errors.New("smtp down")
	}
	f.passwordResets = append(f.passwordResets, to+":"+resetURL)
	return nil
}

// fakeImageStore serves uploads from memory.
type fakeImageStore struct {
	uploads int
	deleted []string
	fail    bool
}

func (f *fakeImageStore) Upload(ctx context.Context, file io.Reader, subfolder string) (UploadedImage, error) {
	if f.fail {
		return UploadedImage{}, errors.New("upload failed")
	}
	f.uploads++
	return UploadedImage{
		URL:      fmt.Sprintf("https://img.example/%s/%d.jpg", subfolder, f.uploads),
		PublicID: fmt.Sprintf("%s/%d", subfolder, f.uploads),
	}, nil
}

func (f *fakeImageStore) Delete(ctx context.Context, publicID string) error {
	if f.fail {
		return errors.New("delete failed")
	}
	f.deleted = append(f.deleted, publicID)
	return nil
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := parseDate(value)
	if err != nil {
		t.Fatalf("bad test date %q: %v", value, err)
	}
	return d
}

func seedUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()
	user := &models.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  "x",
		Role:      role,
		Phone:     "0123456789",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedProperty(t *testing.T, db *gorm.DB, ownerID uint, availableFrom string, availableTo *string) *models.Property {
	t.Helper()
	property := &models.Property{
		OwnerID:       ownerID,
		Title:         "Canal View Apartment",
		Description:   "Two rooms near the center",
		Category:      "apartment",
		City:          "Amsterdam",
		Price:         1250,
		Bedrooms:      2,
		Bathrooms:     1,
		AvailableFrom: mustDate(t, availableFrom),
		IsAvailable:   true,
		IsActive:      true,
	}
	if availableTo != nil {
		to := mustDate(t, *availableTo)
		property.AvailableTo = &to
	}
	if err := db.Create(property).Error; err != nil {
		t.Fatalf("seed property: %v", err)
	}
	return property
}

func seedBooking(t *testing.T, db *gorm.DB, propertyID, tenantID uint, start, end, status string) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		PropertyID: propertyID,
		TenantID:   tenantID,
		StartDate:  mustDate(t, start),
		EndDate:    mustDate(t, end),
		Status:     status,
	}
	if err := db.Create(booking).Error; err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return booking
}

func assertKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected service error, got %v", err)
	}
	if svcErr.Kind != kind {
		t.Fatalf("expected error kind %v, got %v (%s)", kind, svcErr.Kind, svcErr.Message)
	}
}
