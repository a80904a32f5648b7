package order

import (
	"gorm.io/gorm"

	"github.com/deliverus/backend/internal/models"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusInProcess Status = "in process"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
)

// StatusOf derives the lifecycle stage from the three nullable timestamps.
// Delivered wins over sent: an order is delivered iff deliveredAt is set.
func StatusOf(o *models.Order) Status {
	switch {
	case o.DeliveredAt != nil:
		return StatusDelivered
	case o.SentAt != nil:
		return StatusSent
	case o.StartedAt != nil:
		return StatusInProcess
	default:
		return StatusPending
	}
}

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusPending, StatusInProcess, StatusSent, StatusDelivered:
		return Status(s), true
	}
	return "", false
}

// statusScope translates a status label into the equivalent predicate over
// the stored timestamp columns, mirroring StatusOf.
func statusScope(st Status) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch st {
		case StatusPending:
			return db.Where("started_at IS NULL")
		case StatusInProcess:
			return db.Where("started_at IS NOT NULL AND sent_at IS NULL AND delivered_at IS NULL")
		case StatusSent:
			return db.Where("sent_at IS NOT NULL AND delivered_at IS NULL")
		case StatusDelivered:
			return db.Where("delivered_at IS NOT NULL")
		}
		return db
	}
}
