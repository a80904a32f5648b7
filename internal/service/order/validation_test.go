package order

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deliverus/backend/internal/models"
	"github.com/deliverus/backend/internal/transport"
)

func testCatalog() catalog {
	r := &models.Restaurant{ID: 1, ShippingCosts: 2.50}
	return catalog{
		restaurant: r,
		products: map[uint]*models.Product{
			1: {ID: 1, RestaurantID: 1, Price: 6, Availability: true},
			2: {ID: 2, RestaurantID: 1, Price: 4, Availability: false},
			3: {ID: 3, RestaurantID: 9, Price: 5, Availability: true},
		},
	}
}

func fieldsOf(verr *ValidationError) map[string]string {
	out := make(map[string]string)
	for _, f := range verr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestValidateCreateOK(t *testing.T) {
	req := transport.CreateOrderRequest{
		RestaurantID: 1,
		Address:      "Calle Betis 1",
		Products:     []transport.OrderLineRequest{{ProductID: 1, Quantity: 2}},
	}
	require.Nil(t, validateCreate(req, testCatalog()))
}

func TestValidateCreateFailures(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(*transport.CreateOrderRequest)
		wantField string
		wantMsg   string
	}{
		{"empty address", func(r *transport.CreateOrderRequest) { r.Address = "  " }, "address", "between 1 and 255"},
		{"address too long", func(r *transport.CreateOrderRequest) { r.Address = strings.Repeat("x", 256) }, "address", "between 1 and 255"},
		{"zero restaurant", func(r *transport.CreateOrderRequest) { r.RestaurantID = 0 }, "restaurantId", "positive integer"},
		{"unknown restaurant", func(r *transport.CreateOrderRequest) { r.RestaurantID = 42 }, "restaurantId", "does not exist"},
		{"no products", func(r *transport.CreateOrderRequest) { r.Products = nil }, "products", "non-empty"},
		{"zero quantity", func(r *transport.CreateOrderRequest) {
			r.Products = []transport.OrderLineRequest{{ProductID: 1, Quantity: 0}}
		}, "products", "quantity is 0"},
		{"unknown product", func(r *transport.CreateOrderRequest) {
			r.Products = []transport.OrderLineRequest{{ProductID: 99, Quantity: 1}}
		}, "products", "does not exist"},
		{"unavailable product", func(r *transport.CreateOrderRequest) {
			r.Products = []transport.OrderLineRequest{{ProductID: 2, Quantity: 1}}
		}, "products", "not available"},
		{"foreign product", func(r *transport.CreateOrderRequest) {
			r.Products = []transport.OrderLineRequest{{ProductID: 3, Quantity: 1}}
		}, "products", "does not belong to restaurant 1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := transport.CreateOrderRequest{
				RestaurantID: 1,
				Address:      "Calle Betis 1",
				Products:     []transport.OrderLineRequest{{ProductID: 1, Quantity: 2}},
			}
			tc.mutate(&req)

			verr := validateCreate(req, testCatalog())
			require.NotNil(t, verr)
			msg, ok := fieldsOf(verr)[tc.wantField]
			require.True(t, ok, "expected a failure on field %s, got %v", tc.wantField, verr.Fields)
			require.Contains(t, msg, tc.wantMsg)
		})
	}
}

// Only the first failing rule per field is reported, but all failing fields
// are.
func TestValidateCreateFirstRulePerField(t *testing.T) {
	req := transport.CreateOrderRequest{
		RestaurantID: 0,
		Address:      "",
		Products:     []transport.OrderLineRequest{{ProductID: 2, Quantity: 0}},
	}
	verr := validateCreate(req, testCatalog())
	require.NotNil(t, verr)
	require.Len(t, verr.Fields, 3)

	fields := fieldsOf(verr)
	require.Contains(t, fields["restaurantId"], "positive integer")
	require.Contains(t, fields["products"], "quantity is 0")
}

func TestValidateUpdateRejectsRestaurantID(t *testing.T) {
	rid := uint(2)
	req := transport.UpdateOrderRequest{RestaurantID: &rid}
	verr := validateUpdate(req, 1, testCatalog())
	require.NotNil(t, verr)
	require.Contains(t, fieldsOf(verr)["restaurantId"], "must not be provided")
}

func TestValidateUpdateChecksAgainstOriginalRestaurant(t *testing.T) {
	req := transport.UpdateOrderRequest{
		Products: []transport.OrderLineRequest{{ProductID: 1, Quantity: 1}},
	}
	// product 1 belongs to restaurant 1, not to the order's restaurant 9
	verr := validateUpdate(req, 9, testCatalog())
	require.NotNil(t, verr)
	require.Contains(t, fieldsOf(verr)["products"], "does not belong to restaurant 9")

	require.Nil(t, validateUpdate(req, 1, testCatalog()))
}

func TestValidateUpdateWithoutProducts(t *testing.T) {
	addr := "Calle Nueva 5"
	require.Nil(t, validateUpdate(transport.UpdateOrderRequest{Address: &addr}, 1, testCatalog()))

	bad := ""
	verr := validateUpdate(transport.UpdateOrderRequest{Address: &bad}, 1, testCatalog())
	require.NotNil(t, verr)
	require.Contains(t, fieldsOf(verr)["address"], "between 1 and 255")
}
