package auth

import (
	"errors"
	"strings"

	"postmarket-backend/internal/domain"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginInput for login request body. Identifier is a username or an email.
type LoginInput struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// SessionUserShape is the object stored in session and returned by /me.
type SessionUserShape struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserFinder abstracts user lookup by credentials (for production GORM or test doubles).
type UserFinder interface {
	FindByCredentials(identifier, password string) (*domain.User, error)
}

// GormUserFinder implements UserFinder using GORM and bcrypt.
type GormUserFinder struct{ DB *gorm.DB }

func (g *GormUserFinder) FindByCredentials(identifier, password string) (*domain.User, error) {
	return LoginUser(g.DB, LoginInput{Identifier: identifier, Password: password})
}

// LoginUser finds the user by email (when the identifier contains "@") or username and
// verifies the password.
func LoginUser(db *gorm.DB, input LoginInput) (*domain.User, error) {
	ident := strings.TrimSpace(input.Identifier)
	if ident == "" || input.Password == "" {
		return nil, ErrCredentialsRequired
	}
	q := db.Where("username = ?", ident)
	if strings.Contains(ident, "@") {
		q = db.Where("email = ?", strings.ToLower(ident))
	}
	var u domain.User
	if err := q.First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, ErrUnknownUser
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	return &u, nil
}

// VerifyUser validates the session user and returns the shape for /me.
func VerifyUser(sessionUser interface{}) (*SessionUserShape, error) {
	if sessionUser == nil {
		return nil, ErrNotAuthenticated
	}
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, ErrNotAuthenticated
	}
	userID, _ := m["user_id"].(string)
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return &SessionUserShape{
		UserID:   userID,
		Username: str(m["username"]),
		Email:    str(m["email"]),
	}, nil
}

func str(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
