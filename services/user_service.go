package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"sharenest-backend/models"

	"github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrUserNotFound = NotFoundError("User not found")

type UserService struct {
	DB     *gorm.DB
	Images ImageStore
}

func NewUserService(db *gorm.DB, images ImageStore) *UserService {
	return &UserService{DB: db, Images: images}
}

type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string
	Phone     string
}

type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Bio       *string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Create(in CreateUserInput) (*models.User, error) {
	email := normalizeEmail(in.Email)

	var count int64
	if err := s.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, ValidationError("Email is already registered")
	}

	if in.Role != models.RoleTenant && in.Role != models.RoleLandlord {
		return nil, ValidationError("Role must be tenant or landlord")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     email,
		Password:  string(hash),
		Role:      in.Role,
		Phone:     strings.TrimSpace(in.Phone),
	}
	if err := s.DB.Create(&user).Error; err != nil {
		// Two registrations can race past the count check; the unique
		// index on email catches the loser.
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return nil, ValidationError("Email is already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

func (s *UserService) FindOne(id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %d: %w", id, err)
	}
	return &user, nil
}

func (s *UserService) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user by email: %w", err)
	}
	return &user, nil
}

func (s *UserService) FindAll() ([]models.User, error) {
	var users []models.User
	if err := s.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *UserService) UpdateProfile(id uint, in UpdateUserInput) (*models.User, error) {
	if _, err := s.FindOne(id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*in.LastName)
	}
	if in.Phone != nil {
		updates["phone"] = strings.TrimSpace(*in.Phone)
	}
	if in.Bio != nil {
		updates["bio"] = *in.Bio
	}

	if len(updates) > 0 {
		if err := s.DB.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update user %d: %w", id, err)
		}
	}
	return s.FindOne(id)
}

// ValidatePassword compares a candidate against the stored bcrypt hash.
func (s *UserService) ValidatePassword(user *models.User, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(candidate)) == nil
}

func (s *UserService) ChangePassword(id uint, currentPassword, newPassword string) error {
	user, err := s.FindOne(id)
	if err != nil {
		return err
	}
	if !s.ValidatePassword(user, currentPassword) {
		return ValidationError("Current password is incorrect")
	}
	return s.UpdatePassword(id, newPassword)
}

func (s *UserService) UpdatePassword(id uint, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.DB.Model(&models.User{}).Where("id = ?", id).Update("password", string(hash)).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *UserService) UpdateProfileImage(ctx context.Context, id uint, file io.Reader) (*models.User, error) {
	if s.Images == nil {
		return nil, ValidationError("Image uploads are not configured")
	}
	if _, err := s.FindOne(id); err != nil {
		return nil, err
	}

	uploaded, err := s.Images.Upload(ctx, file, "profiles")
	if err != nil {
		return nil, fmt.Errorf("failed to upload profile image: %w", err)
	}

	if err := s.DB.Model(&models.User{}).Where("id = ?", id).
		Update("profile_image", uploaded.URL).Error; err != nil {
		return nil, fmt.Errorf("failed to save profile image: %w", err)
	}
	return s.FindOne(id)
}
