package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/deliverus/backend/internal/jwtmiddleware"
	"github.com/deliverus/backend/internal/logging"
	"github.com/deliverus/backend/internal/mykafka"
	ordersvc "github.com/deliverus/backend/internal/service/order"
	"github.com/deliverus/backend/internal/transport"
)

type OrderHandler struct {
	Svc      *ordersvc.Service
	Producer *mykafka.Producer
}

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	event["event_id"] = uuid.NewString()
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", fmt.Sprint(event["orderID"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "error", err)
	}
}

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
	}
	return uint(id), nil
}

// serviceError maps the service error taxonomy onto HTTP statuses.
func serviceError(err error) error {
	var verr *ordersvc.ValidationError
	switch {
	case errors.As(err, &verr):
		fields := make([]transport.FieldMessage, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, transport.FieldMessage{Field: f.Field, Message: f.Message})
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, transport.ValidationErrorResponse{Errors: fields})
	case errors.Is(err, ordersvc.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ordersvc.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func (h *OrderHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	userID, err := jwtmiddleware.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.Create(ctx, userID, req)
	if err != nil {
		l.Warn("create_order_error", "error", err)
		return serviceError(err)
	}

	l.Info("create_order_success", "order_id", order.ID)
	h.publish(c, map[string]any{
		"type":    "order_created",
		"orderID": order.ID,
		"userID":  userID,
		"price":   order.Price,
	})
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update")

	userID, err := jwtmiddleware.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	orderID, err := pathID(c, "orderId")
	if err != nil {
		return err
	}

	var req transport.UpdateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.Update(ctx, orderID, userID, req)
	if err != nil {
		l.Warn("update_order_error", "order_id", orderID, "error", err)
		return serviceError(err)
	}

	l.Info("update_order_success", "order_id", order.ID)
	h.publish(c, map[string]any{
		"type":    "order_updated",
		"orderID": order.ID,
		"userID":  userID,
		"price":   order.Price,
	})
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Destroy(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.destroy")

	userID, err := jwtmiddleware.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	orderID, err := pathID(c, "orderId")
	if err != nil {
		return err
	}

	if err := h.Svc.Destroy(ctx, orderID, userID); err != nil {
		l.Warn("destroy_order_error", "order_id", orderID, "error", err)
		return serviceError(err)
	}

	l.Info("destroy_order_success", "order_id", orderID)
	h.publish(c, map[string]any{
		"type":    "order_deleted",
		"orderID": orderID,
		"userID":  userID,
	})
	return c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Order with id %d destroyed successfully", orderID),
	})
}

func (h *OrderHandler) Show(c echo.Context) error {
	orderID, err := pathID(c, "orderId")
	if err != nil {
		return err
	}
	order, err := h.Svc.Show(c.Request().Context(), orderID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) IndexCustomer(c echo.Context) error {
	userID, err := jwtmiddleware.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	orders, err := h.Svc.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) IndexRestaurant(c echo.Context) error {
	restaurantID, err := pathID(c, "restaurantId")
	if err != nil {
		return err
	}

	var filters ordersvc.Filters
	if raw := c.QueryParam("status"); raw != "" {
		st, ok := ordersvc.ParseStatus(raw)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown status %q", raw))
		}
		filters.Status = &st
	}
	if raw := c.QueryParam("from"); raw != "" {
		from, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "from must be YYYY-MM-DD")
		}
		filters.From = &from
	}
	if raw := c.QueryParam("to"); raw != "" {
		to, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "to must be YYYY-MM-DD")
		}
		filters.To = &to
	}

	orders, err := h.Svc.ListForRestaurant(c.Request().Context(), restaurantID, filters)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Confirm(c echo.Context) error { return h.transition(c, ordersvc.TransitionConfirm) }
func (h *OrderHandler) Send(c echo.Context) error    { return h.transition(c, ordersvc.TransitionSend) }
func (h *OrderHandler) Deliver(c echo.Context) error { return h.transition(c, ordersvc.TransitionDeliver) }

func (h *OrderHandler) transition(c echo.Context, kind ordersvc.TransitionKind) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order."+string(kind))

	orderID, err := pathID(c, "orderId")
	if err != nil {
		return err
	}

	order, err := h.Svc.Transition(ctx, orderID, kind)
	if err != nil {
		l.Warn("transition_error", "order_id", orderID, "error", err)
		return serviceError(err)
	}

	l.Info("transition_success", "order_id", order.ID, "status", ordersvc.StatusOf(order))
	h.publish(c, map[string]any{
		"type":    "order_status_changed",
		"orderID": order.ID,
		"status":  ordersvc.StatusOf(order),
	})
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Analytics(c echo.Context) error {
	restaurantID, err := pathID(c, "restaurantId")
	if err != nil {
		return err
	}
	stats, err := h.Svc.Analytics(c.Request().Context(), restaurantID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, stats)
}
