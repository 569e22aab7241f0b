package user

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	usersvc "postmarket-backend/internal/application/user"
	"postmarket-backend/internal/domain"
	"postmarket-backend/internal/infrastructure/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile(t *testing.T) {
	db, err := database.OpenMemory()
	require.NoError(t, err)
	u := &domain.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(u).Error)
	require.NoError(t, db.Create(&domain.Listing{Title: "Bike", Content: "c", AuthorID: u.UserID}).Error)

	h := &Handlers{Service: &usersvc.Service{DB: db}}
	app := fiber.New()
	app.Get("/users/:username", h.Profile)

	resp, err := app.Test(httptest.NewRequest("GET", "/users/alice", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	data := out["data"].(map[string]interface{})
	assert.Equal(t, "alice", data["user"].(map[string]interface{})["username"])
	assert.NotContains(t, data["user"], "password_hash")
	assert.Len(t, data["listings"], 1)

	resp, err = app.Test(httptest.NewRequest("GET", "/users/nobody", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
