package orders

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	orderssvc "postmarket-backend/internal/application/orders"
	"postmarket-backend/internal/domain"
	"postmarket-backend/internal/infrastructure/database"
	"postmarket-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOrdersTest(t *testing.T) (*fiber.App, *gorm.DB, uuid.UUID) {
	db, err := database.OpenMemory()
	require.NoError(t, err)
	buyer := uuid.New()
	h := &Handlers{Service: &orderssvc.Service{DB: db}}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if id := c.Get("X-Test-User"); id != "" {
			c.Locals("user", map[string]interface{}{"user_id": id})
		}
		return c.Next()
	})
	api := app.Group("/api/v1", middleware.RequireAuth())
	api.Post("/listings/:id/buy", h.BuyListing)
	api.Get("/orders/mine", h.MyPurchases)
	api.Get("/orders/sales", h.MySales)
	api.Get("/orders/:id/payment-success", h.PaymentSuccess)
	return app, db, buyer
}

func call(t *testing.T, app *fiber.App, method, path string, user uuid.UUID, body interface{}) (int, map[string]interface{}) {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if user != uuid.Nil {
		req.Header.Set("X-Test-User", user.String())
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func TestBuyListing_Flow(t *testing.T) {
	app, db, buyer := setupOrdersTest(t)
	l := &domain.Listing{Title: "Bike", Content: "c", Price: decimal.RequireFromString("15.00"), AuthorID: uuid.New()}
	require.NoError(t, db.Create(l).Error)
	buyPath := "/api/v1/listings/" + l.ListingID.String() + "/buy"

	code, _ := call(t, app, "POST", buyPath, uuid.Nil, map[string]string{"payment_method": "paypal"})
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, out := call(t, app, "POST", buyPath, buyer, map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, code)
	details := out["error"].(map[string]interface{})["details"].(map[string]interface{})
	assert.Equal(t, "/api/v1/listings/"+l.ListingID.String(), details["redirect"])

	code, out = call(t, app, "GET", "/api/v1/orders/mine", buyer, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Empty(t, out["data"])

	code, out = call(t, app, "POST", buyPath, buyer, map[string]string{"payment_method": "bank_transfer"})
	require.Equal(t, fiber.StatusCreated, code)
	orderID := out["data"].(map[string]interface{})["order_id"].(string)
	redirect := out["metadata"].(map[string]interface{})["redirect"].(string)
	assert.Equal(t, "/api/v1/orders/"+orderID+"/payment-success", redirect)

	code, out = call(t, app, "GET", redirect, buyer, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "Bike", out["data"].(map[string]interface{})["listing_title"])

	code, _ = call(t, app, "GET", redirect, uuid.New(), nil)
	assert.Equal(t, fiber.StatusNotFound, code)

	code, out = call(t, app, "GET", "/api/v1/orders/mine", buyer, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Len(t, out["data"], 1)
}

func TestBuyListing_UnknownListing(t *testing.T) {
	app, _, buyer := setupOrdersTest(t)
	code, _ := call(t, app, "POST", "/api/v1/listings/"+uuid.NewString()+"/buy", buyer, map[string]string{"payment_method": "paypal"})
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestMySales(t *testing.T) {
	app, db, buyer := setupOrdersTest(t)
	seller := uuid.New()
	l := &domain.Listing{Title: "Vase", Content: "c", Price: decimal.RequireFromString("7.00"), AuthorID: seller}
	require.NoError(t, db.Create(l).Error)

	code, _ := call(t, app, "POST", "/api/v1/listings/"+l.ListingID.String()+"/buy", buyer, map[string]string{"payment_method": "debit_card"})
	require.Equal(t, fiber.StatusCreated, code)

	code, out := call(t, app, "GET", "/api/v1/orders/sales", seller, nil)
	require.Equal(t, fiber.StatusOK, code)
	data := out["data"].(map[string]interface{})
	assert.Len(t, data["orders"], 1)
	assert.Equal(t, "7", data["total"])

	code, out = call(t, app, "GET", "/api/v1/orders/sales", buyer, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Empty(t, out["data"].(map[string]interface{})["orders"])
}

func TestBuyListing_MalformedBody(t *testing.T) {
	app, db, buyer := setupOrdersTest(t)
	l := &domain.Listing{Title: "Rug", Content: "c", Price: decimal.RequireFromString("30.00"), AuthorID: uuid.New()}
	require.NoError(t, db.Create(l).Error)

	req := httptest.NewRequest("POST", "/api/v1/listings/"+l.ListingID.String()+"/buy", strings.NewReader(`{"payment_method":`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", buyer.String())
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "Invalid request body")

	var n int64
	require.NoError(t, db.Model(&domain.Order{}).Count(&n).Error)
	assert.Zero(t, n)
}
