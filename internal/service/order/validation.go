package order

import (
	"fmt"
	"strings"

	"github.com/deliverus/backend/internal/models"
	"github.com/deliverus/backend/internal/transport"
)

// catalog is the pre-fetched context the validation rules run against, so
// the rules themselves stay pure predicates.
type catalog struct {
	restaurant *models.Restaurant       // nil when the stated restaurant does not exist
	products   map[uint]*models.Product // keyed by product id; absent key = no such product
}

type rule struct {
	field string
	name  string
	check func() string // non-empty result is the failure message
}

// runRules evaluates rules in order and reports the first failing rule per
// field, aggregated over all fields.
func runRules(rules []rule) *ValidationError {
	var fields []FieldError
	failed := make(map[string]bool)
	for _, r := range rules {
		if failed[r.field] {
			continue
		}
		if msg := r.check(); msg != "" {
			failed[r.field] = true
			fields = append(fields, FieldError{Field: r.field, Message: msg})
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func checkAddress(address string) string {
	addr := strings.TrimSpace(address)
	if addr == "" || len(addr) > 255 {
		return "address must be a string between 1 and 255 characters"
	}
	return ""
}

func checkLinesNotZero(lines []transport.OrderLineRequest) string {
	for _, l := range lines {
		if l.Quantity < 1 {
			return fmt.Sprintf("The quantity is %d and it must be greater than 0", l.Quantity)
		}
		if l.ProductID < 1 {
			return fmt.Sprintf("The productId is %d and it must be greater than 0", l.ProductID)
		}
	}
	return ""
}

func checkProductsExist(lines []transport.OrderLineRequest, products map[uint]*models.Product) string {
	for _, l := range lines {
		if products[l.ProductID] == nil {
			return fmt.Sprintf("Product %d does not exist", l.ProductID)
		}
	}
	return ""
}

func checkProductsAvailable(lines []transport.OrderLineRequest, products map[uint]*models.Product) string {
	for _, l := range lines {
		if p := products[l.ProductID]; p != nil && !p.Availability {
			return fmt.Sprintf("Product %d is not available", l.ProductID)
		}
	}
	return ""
}

func checkProductsSameRestaurant(lines []transport.OrderLineRequest, products map[uint]*models.Product, restaurantID uint) string {
	for _, l := range lines {
		if p := products[l.ProductID]; p != nil && p.RestaurantID != restaurantID {
			return fmt.Sprintf("Product %d does not belong to restaurant %d", l.ProductID, restaurantID)
		}
	}
	return ""
}

func validateCreate(req transport.CreateOrderRequest, cat catalog) *ValidationError {
	rules := []rule{
		{"address", "address_length", func() string {
			return checkAddress(req.Address)
		}},
		{"restaurantId", "restaurant_positive", func() string {
			if req.RestaurantID < 1 {
				return "restaurantId must be a positive integer"
			}
			return ""
		}},
		{"restaurantId", "restaurant_exists", func() string {
			if cat.restaurant == nil {
				return fmt.Sprintf("Restaurant %d does not exist", req.RestaurantID)
			}
			return ""
		}},
		{"products", "products_present", func() string {
			if len(req.Products) == 0 {
				return "products must be a non-empty array"
			}
			return ""
		}},
		{"products", "products_not_zero", func() string {
			return checkLinesNotZero(req.Products)
		}},
		{"products", "products_exist", func() string {
			return checkProductsExist(req.Products, cat.products)
		}},
		{"products", "products_available", func() string {
			return checkProductsAvailable(req.Products, cat.products)
		}},
		{"products", "products_same_restaurant", func() string {
			return checkProductsSameRestaurant(req.Products, cat.products, req.RestaurantID)
		}},
	}
	return runRules(rules)
}

// validateUpdate checks an update against the restaurant of the order being
// edited; the client cannot re-point an order at another restaurant.
func validateUpdate(req transport.UpdateOrderRequest, restaurantID uint, cat catalog) *ValidationError {
	rules := []rule{
		{"restaurantId", "restaurant_forbidden", func() string {
			if req.RestaurantID != nil {
				return "restaurantId must not be provided, the restaurant cannot change"
			}
			return ""
		}},
		{"address", "address_length", func() string {
			if req.Address == nil {
				return ""
			}
			return checkAddress(*req.Address)
		}},
	}
	if len(req.Products) > 0 {
		rules = append(rules,
			rule{"products", "products_not_zero", func() string {
				return checkLinesNotZero(req.Products)
			}},
			rule{"products", "products_exist", func() string {
				return checkProductsExist(req.Products, cat.products)
			}},
			rule{"products", "products_available", func() string {
				return checkProductsAvailable(req.Products, cat.products)
			}},
			rule{"products", "products_same_restaurant", func() string {
				return checkProductsSameRestaurant(req.Products, cat.products, restaurantID)
			}},
		)
	}
	return runRules(rules)
}
