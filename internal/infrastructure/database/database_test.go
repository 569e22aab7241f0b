package database

import (
	"errors"
	"testing"

	"postmarket-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOpenMemory_Migrates(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)
	for _, m := range domain.All() {
		assert.True(t, db.Migrator().HasTable(m))
	}
	assert.NoError(t, (&Pinger{DB: db}).Ping())
}

func TestOpen_SQLiteScheme(t *testing.T) {
	db, err := Open("sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	assert.True(t, db.Migrator().HasTable(&domain.Order{}))
}

func TestIsUniqueViolation_CartIndex(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)
	userID, listingID := uuid.New(), uuid.New()
	require.NoError(t, db.Create(&domain.CartEntry{UserID: userID, ListingID: listingID}).Error)

	err = db.Create(&domain.CartEntry{UserID: userID, ListingID: listingID}).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestIsUniqueViolation_Other(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
}

func TestPinger_NilSafe(t *testing.T) {
	var p *Pinger
	assert.NoError(t, p.Ping())
}
