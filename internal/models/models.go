package models

import (
	"time"
)

type Restaurant struct {
	ID                    uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                  string   `gorm:"not null"                 json:"name"`
	Description           string   `json:"description"`
	Address               string   `gorm:"not null"                 json:"address"`
	PostalCode            string   `json:"postalCode"`
	URL                   string   `json:"url"`
	Email                 string   `json:"email"`
	Phone                 string   `json:"phone"`
	ShippingCosts         float64  `gorm:"not null;default:0"       json:"shippingCosts"`
	AverageServiceMinutes *float64 `json:"averageServiceMinutes"`
	Status                string   `gorm:"not null;default:closed"  json:"status"`
}

type Product struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	RestaurantID uint    `gorm:"index;not null"           json:"restaurantId"`
	Name         string  `gorm:"not null"                 json:"name"`
	Description  string  `json:"description"`
	Price        float64 `gorm:"not null"                 json:"price"`
	Availability bool    `gorm:"not null;default:true"    json:"availability"`
}

// Order timestamps move strictly forward (startedAt, then sentAt, then
// deliveredAt) and are never cleared once set.
type Order struct {
	ID            uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint        `gorm:"index;not null"           json:"userId"`
	RestaurantID  uint        `gorm:"index;not null"           json:"restaurantId"`
	Address       string      `gorm:"size:255;not null"        json:"address"`
	Price         float64     `gorm:"not null"                 json:"price"`
	ShippingCosts float64     `gorm:"not null;default:0"       json:"shippingCosts"`
	CreatedAt     time.Time   `json:"createdAt"`
	StartedAt     *time.Time  `json:"startedAt"`
	SentAt        *time.Time  `json:"sentAt"`
	DeliveredAt   *time.Time  `json:"deliveredAt"`
	Lines         []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"products"`
	Restaurant    *Restaurant `gorm:"foreignKey:RestaurantID"  json:"restaurant,omitempty"`
}

// OrderLine snapshots the product price at order time, so later menu price
// changes do not touch existing orders.
type OrderLine struct {
	ID        uint    `gorm:"primaryKey"                 json:"id"`
	OrderID   uint    `gorm:"index;not null"             json:"orderId"`
	ProductID uint    `gorm:"not null"                   json:"productId"`
	Quantity  uint    `gorm:"not null;check:quantity>0"  json:"quantity"`
	UnitPrice float64 `gorm:"not null"                   json:"unitPrice"`
}
