package user

import (
	"context"
	"errors"
	"strings"

	"postmarket-backend/internal/application/emails"
	"postmarket-backend/internal/domain"
	"postmarket-backend/internal/infrastructure/database"
	"postmarket-backend/internal/pkg/validation"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service holds DB and the mailer for user operations.
type Service struct {
	DB     *gorm.DB
	Mailer emails.Sender
}

// RegisterInput is the registration request body.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Profile is a user together with the listings they authored, newest first.
type Profile struct {
	User     *domain.User     `json:"user"`
	Listings []domain.Listing `json:"listings"`
}

// Register creates a user and sends the welcome email. Returns the created model
// (PasswordHash never serializes).
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if !validation.IsValidUsername(username) {
		return nil, ErrUsernameInvalid
	}
	if !validation.IsValidEmail(email) {
		return nil, ErrEmailInvalid
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, ErrPasswordInvalid
	}

	db := s.DB.WithContext(ctx)
	var count int64
	if err := db.Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}
	if err := db.Model(&domain.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := db.Create(u).Error; err != nil {
		// lost a race with a concurrent registration
		if database.IsUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	if s.Mailer != nil {
		if err := s.Mailer.SendWelcome(ctx, u.Email, u.Username); err != nil {
			log.Warn().Err(err).Str("user_id", u.UserID.String()).Msg("welcome email failed")
		}
	}
	return u, nil
}

// GetProfile returns the user named username and their listings.
func (s *Service) GetProfile(ctx context.Context, username string) (*Profile, error) {
	db := s.DB.WithContext(ctx)
	var u domain.User
	if err := db.Where("username = ?", strings.TrimSpace(username)).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	listings := make([]domain.Listing, 0)
	if err := db.Where("author_id = ?", u.UserID).Order("date_posted DESC").Find(&listings).Error; err != nil {
		return nil, err
	}
	return &Profile{User: &u, Listings: listings}, nil
}
