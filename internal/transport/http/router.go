package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/deliverus/backend/internal/handlers"
	"github.com/deliverus/backend/internal/jwtmiddleware"
)

type Deps struct {
	DB           *gorm.DB
	OrderHandler *handlers.OrderHandler
	JWTSecret    []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")
	auth := jwtmiddleware.RequireUser(d.JWTSecret)

	orders := v1.Group("/orders", auth)
	orders.GET("", d.OrderHandler.IndexCustomer)
	orders.POST("", d.OrderHandler.Create)
	orders.GET("/:orderId", d.OrderHandler.Show)
	orders.PUT("/:orderId", d.OrderHandler.Update)
	orders.DELETE("/:orderId", d.OrderHandler.Destroy)
	orders.PATCH("/:orderId/confirm", d.OrderHandler.Confirm)
	orders.PATCH("/:orderId/send", d.OrderHandler.Send)
	orders.PATCH("/:orderId/deliver", d.OrderHandler.Deliver)

	restaurants := v1.Group("/restaurants", auth)
	restaurants.GET("/:restaurantId/orders", d.OrderHandler.IndexRestaurant)
	restaurants.GET("/:restaurantId/analytics", d.OrderHandler.Analytics)
}
