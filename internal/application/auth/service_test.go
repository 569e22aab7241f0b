package auth

import (
	"testing"

	"postmarket-backend/internal/domain"
	"postmarket-backend/internal/infrastructure/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func seedUser(t *testing.T) *gorm.DB {
	db, err := database.OpenMemory()
	require.NoError(t, err)
	hash, err := bcrypt.GenerateFromPassword([]byte("secret12!"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.User{Username: "alice", Email: "alice@example.com", PasswordHash: string(hash)}).Error)
	return db
}

func TestLoginUser_ByUsernameAndEmail(t *testing.T) {
	db := seedUser(t)

	u, err := LoginUser(db, LoginInput{Identifier: "alice", Password: "secret12!"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)

	u, err = LoginUser(db, LoginInput{Identifier: "ALICE@example.com", Password: "secret12!"})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
}

func TestLoginUser_Errors(t *testing.T) {
	db := seedUser(t)

	_, err := LoginUser(db, LoginInput{Identifier: "", Password: "x"})
	assert.Equal(t, ErrCredentialsRequired, err)

	_, err = LoginUser(db, LoginInput{Identifier: "bob", Password: "secret12!"})
	assert.Equal(t, ErrUnknownUser, err)

	_, err = LoginUser(db, LoginInput{Identifier: "alice", Password: "wrong"})
	assert.Equal(t, ErrIncorrectPassword, err)
}

func TestVerifyUser(t *testing.T) {
	u, err := VerifyUser(nil)
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)

	_, err = VerifyUser(map[string]interface{}{"username": "alice"})
	assert.Equal(t, ErrNotAuthenticated, err)

	u, err = VerifyUser(map[string]interface{}{
		"user_id":  "550e8400-e29b-41d4-a716-446655440000",
		"username": "alice",
		"email":    "alice@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", u.UserID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)
}
