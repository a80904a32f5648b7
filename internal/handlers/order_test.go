package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/deliverus/backend/internal/config"
	"github.com/deliverus/backend/internal/models"
	ordersvc "github.com/deliverus/backend/internal/service/order"
)

type testEnv struct {
	E  *echo.Echo
	H  *OrderHandler
	DB *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.Migrate(db))

	return &testEnv{
		E:  echo.New(),
		H:  &OrderHandler{Svc: ordersvc.New(db)},
		DB: db,
	}
}

func (env *testEnv) doJSONRequest(t *testing.T, method, target string, payload any, userID uint) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	if userID != 0 {
		c.Set("user_id", userID)
	}
	return rec, c
}

func (env *testEnv) seedRestaurantWithProduct(t *testing.T, shipping, price float64) (*models.Restaurant, *models.Product) {
	t.Helper()
	r := &models.Restaurant{Name: "Casa Felix", Address: "Calle Betis 1", ShippingCosts: shipping, Status: "online"}
	require.NoError(t, env.DB.Create(r).Error)
	p := &models.Product{RestaurantID: r.ID, Name: "Salmorejo", Price: price, Availability: true}
	require.NoError(t, env.DB.Create(p).Error)
	return r, p
}

func TestCreateOrderHandler(t *testing.T) {
	env := newTestEnv(t)
	r, p := env.seedRestaurantWithProduct(t, 2.50, 6)

	payload := map[string]any{
		"restaurantId": r.ID,
		"address":      "Avenida Reina Mercedes 12",
		"products":     []map[string]any{{"productId": p.ID, "quantity": 2}},
	}
	rec, c := env.doJSONRequest(t, http.MethodPost, "/api/v1/orders", payload, 1)

	require.NoError(t, env.H.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, float64(12), resp.Price)
	require.Equal(t, float64(0), resp.ShippingCosts)
	require.Len(t, resp.Lines, 1)
}

func TestCreateOrderHandlerValidationStatus(t *testing.T) {
	env := newTestEnv(t)
	r, _ := env.seedRestaurantWithProduct(t, 2.50, 6)

	payload := map[string]any{
		"restaurantId": r.ID,
		"address":      "Avenida Reina Mercedes 12",
		"products":     []map[string]any{},
	}
	_, c := env.doJSONRequest(t, http.MethodPost, "/api/v1/orders", payload, 1)

	err := env.H.Create(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusUnprocessableEntity, he.Code)
}

func TestShowOrderHandlerNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(t, http.MethodGet, "/api/v1/orders/99", nil, 1)
	c.SetParamNames("orderId")
	c.SetParamValues("99")

	err := env.H.Show(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusNotFound, he.Code)
}

func TestDestroyOrderHandlerMessage(t *testing.T) {
	env := newTestEnv(t)
	r, p := env.seedRestaurantWithProduct(t, 2.50, 6)

	payload := map[string]any{
		"restaurantId": r.ID,
		"address":      "Avenida Reina Mercedes 12",
		"products":     []map[string]any{{"productId": p.ID, "quantity": 2}},
	}
	rec, c := env.doJSONRequest(t, http.MethodPost, "/api/v1/orders", payload, 1)
	require.NoError(t, env.H.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec, c = env.doJSONRequest(t, http.MethodDelete, "/api/v1/orders/1", nil, 1)
	c.SetParamNames("orderId")
	c.SetParamValues("1")
	require.NoError(t, env.H.Destroy(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Order with id 1 destroyed successfully", resp["message"])
}

func TestTransitionHandlerConflict(t *testing.T) {
	env := newTestEnv(t)
	r, p := env.seedRestaurantWithProduct(t, 2.50, 6)

	payload := map[string]any{
		"restaurantId": r.ID,
		"address":      "Avenida Reina Mercedes 12",
		"products":     []map[string]any{{"productId": p.ID, "quantity": 2}},
	}
	rec, c := env.doJSONRequest(t, http.MethodPost, "/api/v1/orders", payload, 1)
	require.NoError(t, env.H.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	// sending before confirming must be refused
	_, c = env.doJSONRequest(t, http.MethodPatch, "/api/v1/orders/1/send", nil, 1)
	c.SetParamNames("orderId")
	c.SetParamValues("1")

	err := env.H.Send(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusConflict, he.Code)
}

func TestIndexRestaurantHandlerBadStatus(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(t, http.MethodGet, "/api/v1/restaurants/1/orders?status=bogus", nil, 1)
	c.SetParamNames("restaurantId")
	c.SetParamValues("1")

	err := env.H.IndexRestaurant(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusBadRequest, he.Code)
}
