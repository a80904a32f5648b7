package transport

// OrderLineRequest is one (product, quantity) pair in a create/update body.
// Unit prices are never accepted from the client; they are snapshotted from
// the product catalog.
type OrderLineRequest struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

type CreateOrderRequest struct {
	RestaurantID uint               `json:"restaurantId"`
	Address      string             `json:"address"`
	Products     []OrderLineRequest `json:"products"`
}

// UpdateOrderRequest uses pointers so "absent" and "zero" can be told apart;
// restaurantId must not be supplied at all, the restaurant is immutable after
// creation.
type UpdateOrderRequest struct {
	Address      *string            `json:"address"`
	RestaurantID *uint              `json:"restaurantId"`
	Products     []OrderLineRequest `json:"products"`
}

type RestaurantAnalytics struct {
	RestaurantID            uint    `json:"restaurantId"`
	NumYesterdayOrders      int64   `json:"numYesterdayOrders"`
	NumPendingOrders        int64   `json:"numPendingOrders"`
	NumDeliveredTodayOrders int64   `json:"numDeliveredTodayOrders"`
	InvoicedToday           float64 `json:"invoicedToday"`
}

type ValidationErrorResponse struct {
	Errors []FieldMessage `json:"errors"`
}

type FieldMessage struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
