package order

import (
	"github.com/deliverus/backend/internal/models"
)

// Orders above this subtotal ship for free; at or below it the restaurant's
// default shipping cost is charged and folded into the total.
const freeShippingThreshold = 10.0

func subtotalOf(lines []models.OrderLine) float64 {
	var sum float64
	for _, l := range lines {
		sum += l.UnitPrice * float64(l.Quantity)
	}
	return sum
}

func priceWithShipping(subtotal, defaultShippingCosts float64) (price, shippingCosts float64) {
	if subtotal > freeShippingThreshold {
		return subtotal, 0
	}
	return subtotal + defaultShippingCosts, defaultShippingCosts
}
