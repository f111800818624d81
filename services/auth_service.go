package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"sharenest-backend/config"
	"sharenest-backend/models"
	"sharenest-backend/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = UnauthorizedError("Invalid credentials")

type AuthService struct {
	DB       *gorm.DB
	Users    *UserService
	Notifier Notifier

	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	FrontendURL   string
}

func NewAuthService(db *gorm.DB, users *UserService, notifier Notifier, cfg config.App) *AuthService {
	return &AuthService{
		DB:            db,
		Users:         users,
		Notifier:      notifier,
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     time.Duration(cfg.AccessTokenTTLMin) * time.Minute,
		RefreshTTL:    time.Duration(cfg.RefreshTokenTTLHr) * time.Hour,
		FrontendURL:   cfg.FrontendURL,
	}
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// hashToken stores a bcrypt hash of the token digest. bcrypt caps its
// input at 72 bytes and JWTs are longer, so the token is digested first.
func hashToken(token string) (string, error) {
	digest := sha256.Sum256([]byte(token))
	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(digest[:])), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func compareToken(token, storedHash string) bool {
	digest := sha256.Sum256([]byte(token))
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(hex.EncodeToString(digest[:]))) == nil
}

func (s *AuthService) Register(in CreateUserInput) (*models.User, error) {
	return s.Users.Create(in)
}

// Login validates credentials and issues a fresh token pair. Hashes of the
// issued tokens are stored on the user row so refresh and revocation can
// verify against them.
func (s *AuthService) Login(email, password string) (*models.User, *TokenPair, error) {
	user, err := s.Users.FindByEmail(email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !s.Users.ValidatePassword(user, password) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokenPair(user)
	if err != nil {
		return nil, nil, err
	}

	log.Printf("user %s logged in, tokens issued", user.Email)
	return user, pair, nil
}

func (s *AuthService) issueTokenPair(user *models.User) (*TokenPair, error) {
	accessToken, err := utils.SignToken(user.ID, user.Email, user.Role, s.AccessSecret, s.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refreshToken, err := utils.SignToken(user.ID, user.Email, user.Role, s.RefreshSecret, s.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	accessHash, err := hashToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to hash access token: %w", err)
	}
	refreshHash, err := hashToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to hash refresh token: %w", err)
	}

	now := time.Now().UTC()
	if err := s.DB.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"auth_access_token":  accessHash,
		"auth_refresh_token": refreshHash,
		"last_authenticated": now,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to store token hashes: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh rotates the access token for a valid, still-stored refresh
// token. The stored value is a bcrypt hash, so candidates are compared
// per-user rather than looked up directly.
func (s *AuthService) Refresh(refreshToken string) (string, *models.User, error) {
	claims, err := utils.ParseToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return "", nil, ValidationError("Invalid refresh token")
	}

	var candidates []models.User
	if err := s.DB.Where("auth_refresh_token <> ''").Find(&candidates).Error; err != nil {
		return "", nil, fmt.Errorf("failed to load refresh candidates: %w", err)
	}

	var user *models.User
	for i := range candidates {
		if compareToken(refreshToken, candidates[i].AuthRefreshToken) {
			user = &candidates[i]
			break
		}
	}
	if user == nil || user.ID != claims.UserID {
		return "", nil, ValidationError("Invalid refresh token")
	}

	accessToken, err := utils.SignToken(user.ID, user.Email, user.Role, s.AccessSecret, s.AccessTTL)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	accessHash, err := hashToken(accessToken)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash access token: %w", err)
	}

	now := time.Now().UTC()
	if err := s.DB.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"auth_access_token":  accessHash,
		"last_authenticated": now,
	}).Error; err != nil {
		return "", nil, fmt.Errorf("failed to store access token hash: %w", err)
	}

	return accessToken, user, nil
}

// Logout drops the stored token hashes, revoking the refresh token.
func (s *AuthService) Logout(userID uint) error {
	if err := s.DB.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"auth_access_token":  "",
		"auth_refresh_token": "",
	}).Error; err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	return nil
}

// ForgotPassword issues a reset token and mails the reset link. It reports
// nothing about whether the email exists. The reset token hash reuses the
// refresh-token column, which also revokes any active refresh token.
func (s *AuthService) ForgotPassword(email string) {
	user, err := s.Users.FindByEmail(email)
	if err != nil {
		return
	}

	resetToken := uuid.NewString()
	resetHash, err := hashToken(resetToken)
	if err != nil {
		log.Printf("failed to hash reset token: %v", err)
		return
	}

	if err := s.DB.Model(&models.User{}).Where("id = ?", user.ID).
		Update("auth_refresh_token", resetHash).Error; err != nil {
		log.Printf("failed to store reset token for user %d: %v", user.ID, err)
		return
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.FrontendURL, resetToken)
	if err := s.Notifier.SendPasswordReset(user.Email, user.FirstName, resetURL); err != nil {
		log.Printf("failed to send password reset email to user %d: %v", user.ID, err)
	}
}

func (s *AuthService) ResetPassword(token, newPassword string) error {
	var candidates []models.User
	if err := s.DB.Where("auth_refresh_token <> ''").Find(&candidates).Error; err != nil {
		return fmt.Errorf("failed to load reset candidates: %w", err)
	}

	var user *models.User
	for i := range candidates {
		if compareToken(token, candidates[i].AuthRefreshToken) {
			user = &candidates[i]
			break
		}
	}
	if user == nil {
		return ValidationError("Invalid or expired reset token")
	}

	if err := s.Users.UpdatePassword(user.ID, newPassword); err != nil {
		return err
	}

	if err := s.DB.Model(&models.User{}).Where("id = ?", user.ID).
		Update("auth_refresh_token", "").Error; err != nil {
		return fmt.Errorf("failed to clear reset token: %w", err)
	}
	return nil
}

func (s *AuthService) CheckEmailExists(email string) (bool, error) {
	var count int64
	if err := s.DB.Model(&models.User{}).Where("email = ?", normalizeEmail(email)).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}
