package repo

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/deliverus/backend/internal/models"
)

// Every function takes the database handle (or transaction handle) it must
// run on; transactions are opened, committed and rolled back by the calling
// service, never held here.

func CreateOrder(tx *gorm.DB, o *models.Order) error {
	return tx.Omit(clause.Associations).Create(o).Error
}

func SaveOrder(tx *gorm.DB, o *models.Order) error {
	return tx.Omit(clause.Associations).Save(o).Error
}

// DeleteOrder removes the order row and its lines in that handle. The line
// delete is explicit so the cascade invariant does not depend on the storage
// engine honoring the FK constraint.
func DeleteOrder(tx *gorm.DB, orderID uint) (int64, error) {
	if err := DeleteOrderLines(tx, orderID); err != nil {
		return 0, err
	}
	res := tx.Delete(&models.Order{}, orderID)
	return res.RowsAffected, res.Error
}

func CreateOrderLines(tx *gorm.DB, lines []models.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return tx.Create(&lines).Error
}

func DeleteOrderLines(tx *gorm.DB, orderID uint) error {
	return tx.Where("order_id = ?", orderID).Delete(&models.OrderLine{}).Error
}

func OrderByID(db *gorm.DB, id uint) (*models.Order, error) {
	var o models.Order
	if err := db.First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func OrderWithLines(db *gorm.DB, id uint) (*models.Order, error) {
	var o models.Order
	if err := db.Preload("Lines").First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func OrderWithLinesAndRestaurant(db *gorm.DB, id uint) (*models.Order, error) {
	var o models.Order
	if err := db.Preload("Lines").Preload("Restaurant").First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func OrdersForRestaurant(db *gorm.DB, restaurantID uint, scopes ...func(*gorm.DB) *gorm.DB) ([]models.Order, error) {
	var orders []models.Order
	q := db.Where("restaurant_id = ?", restaurantID).Scopes(scopes...).Preload("Lines")
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func OrdersForUser(db *gorm.DB, userID uint) ([]models.Order, error) {
	var orders []models.Order
	q := db.Where("user_id = ?", userID).Preload("Lines").Preload("Restaurant")
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func CountOrdersCreatedBetween(db *gorm.DB, restaurantID uint, from, to time.Time) (int64, error) {
	var n int64
	err := db.Model(&models.Order{}).
		Where("restaurant_id = ? AND created_at >= ? AND created_at < ?", restaurantID, from, to).
		Count(&n).Error
	return n, err
}

func CountPendingOrders(db *gorm.DB, restaurantID uint) (int64, error) {
	var n int64
	err := db.Model(&models.Order{}).
		Where("restaurant_id = ? AND started_at IS NULL", restaurantID).
		Count(&n).Error
	return n, err
}

func CountDeliveredSince(db *gorm.DB, restaurantID uint, since time.Time) (int64, error) {
	var n int64
	err := db.Model(&models.Order{}).
		Where("restaurant_id = ? AND delivered_at >= ?", restaurantID, since).
		Count(&n).Error
	return n, err
}

func SumPriceCreatedSince(db *gorm.DB, restaurantID uint, since time.Time) (float64, error) {
	var sum float64
	err := db.Model(&models.Order{}).
		Where("restaurant_id = ? AND created_at >= ?", restaurantID, since).
		Select("COALESCE(SUM(price), 0)").
		Scan(&sum).Error
	return sum, err
}

// DeliveredOrders returns the delivered orders of a restaurant; callers use
// the createdAt/deliveredAt pairs to derive the rolling service time.
func DeliveredOrders(db *gorm.DB, restaurantID uint) ([]models.Order, error) {
	var orders []models.Order
	err := db.Where("restaurant_id = ? AND delivered_at IS NOT NULL", restaurantID).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
