package repo

import (
	"errors"

	"gorm.io/gorm"

	"github.com/deliverus/backend/internal/models"
)

// Read-only surface over the restaurant and product tables. The order
// subsystem never mutates the catalog except for the rolling service time.

func RestaurantByID(db *gorm.DB, id uint) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := db.First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

func ProductsByIDs(db *gorm.DB, ids []uint) (map[uint]*models.Product, error) {
	out := make(map[uint]*models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []models.Product
	if err := db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for i := range products {
		out[products[i].ID] = &products[i]
	}
	return out, nil
}

func SetAverageServiceMinutes(tx *gorm.DB, restaurantID uint, minutes *float64) error {
	return tx.Model(&models.Restaurant{}).
		Where("id = ?", restaurantID).
		Update("average_service_minutes", minutes).Error
}
