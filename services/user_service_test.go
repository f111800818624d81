package services

import (
	"context"
	"strings"
	"testing"

	"sharenest-backend/models"
)

func TestCreateUserHashesPassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, nil)

	user, err := svc.Create(CreateUserInput{
		FirstName: "Bram",
		LastName:  "de Vries",
		Email:     "  Bram@Example.com ",
		Password:  "a long enough password",
		Role:      models.RoleLandlord,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	if user.Email != "bram@example.com" {
		t.Errorf("email not normalized: %q", user.Email)
	}
	if user.Password == "a long enough password" {
		t.Error("password stored in plaintext")
	}
	if !svc.ValidatePassword(user, "a long enough password") {
		t.Error("stored hash does not verify the original password")
	}
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, nil)

	_, err := svc.Create(CreateUserInput{
		FirstName: "Bram",
		LastName:  "de Vries",
		Email:     "bram@example.com",
		Password:  "a long enough password",
		Role:      "admin",
	})
	assertKind(t, err, KindValidation)
}

func TestUpdateProfilePartial(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, nil)
	user := seedUser(t, db, "bram@example.com", models.RoleTenant)

	bio := "Student in Utrecht"
	updated, err := svc.UpdateProfile(user.ID, UpdateUserInput{Bio: &bio})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Bio != bio {
		t.Errorf("bio = %q, want %q", updated.Bio, bio)
	}
	if updated.FirstName != user.FirstName {
		t.Errorf("untouched field changed: %q", updated.FirstName)
	}
}

func TestChangePassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, nil)

	user, err := svc.Create(CreateUserInput{
		FirstName: "Bram",
		LastName:  "de Vries",
		Email:     "bram@example.com",
		Password:  "the old password",
		Role:      models.RoleTenant,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	err = svc.ChangePassword(user.ID, "not the old password", "a new password")
	assertKind(t, err, KindValidation)

	if err := svc.ChangePassword(user.ID, "the old password", "a new password"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	fresh, err := svc.FindOne(user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if !svc.ValidatePassword(fresh, "a new password") {
		t.Error("new password does not verify")
	}
	if svc.ValidatePassword(fresh, "the old password") {
		t.Error("old password still verifies")
	}
}

func TestUpdateProfileImage(t *testing.T) {
	db := newTestDB(t)
	store := &fakeImageStore{}
	svc := NewUserService(db, store)
	user := seedUser(t, db, "bram@example.com", models.RoleTenant)

	updated, err := svc.UpdateProfileImage(context.Background(), user.ID, strings.NewReader("jpeg bytes"))
	if err != nil {
		t.Fatalf("upload profile image: %v", err)
	}
	if updated.ProfileImage == "" {
		t.Error("profile image URL not stored")
	}
	if store.uploads != 1 {
		t.Errorf("expected 1 upload, got %d", store.uploads)
	}
}

func TestUpdateProfileImageWithoutStore(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, nil)
	user := seedUser(t, db, "bram@example.com", models.RoleTenant)

	_, err := svc.UpdateProfileImage(context.Background(), user.ID, strings.NewReader("jpeg bytes"))
	assertKind(t, err, KindValidation)
}

func TestFindOneUnknownUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, nil)

	_, err := svc.FindOne(42)
	if err != ErrUserNotFound {
		t.Errorf("expected %v, got %v", ErrUserNotFound, err)
	}
}
