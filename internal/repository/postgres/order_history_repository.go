package postgres

import (
	"context"

	"timele/domain"

	"gorm.io/gorm"
)

type OrderHistoryRepository struct {
	DB *gorm.DB
}

func NewOrderHistoryRepository(db *gorm.DB) *OrderHistoryRepository {
	return &OrderHistoryRepository{
		DB: db,
	}
}

// GetOrderHistory returns the user's past baskets ordered by sequence
// number. A user with no orders gets an empty slice, not an error.
func (r *OrderHistoryRepository) GetOrderHistory(ctx context.Context, userID uint) ([]domain.HistoricalBasket, error) {
	var orders []domain.Order
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("order_number asc").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return []domain.HistoricalBasket{}, nil
	}

	orderIDs := make([]uint64, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}

	var items []domain.OrderItem
	err = r.DB.WithContext(ctx).
		Where("order_id IN ?", orderIDs).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	itemsByOrder := make(map[uint64][]domain.BasketItem, len(orders))
	for _, item := range items {
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], domain.BasketItem{
			ProductID: item.ProductID,
			Reordered: item.Reordered,
		})
	}

	baskets := make([]domain.HistoricalBasket, 0, len(orders))
	for _, o := range orders {
		baskets = append(baskets, domain.HistoricalBasket{
			UserID:      userID,
			OrderNumber: o.OrderNumber,
			Items:       itemsByOrder[o.ID],
		})
	}

	return baskets, nil
}

// SampleUserIDs returns up to limit users that have at least two orders, so
// one basket can be held out as ground truth.
func (r *OrderHistoryRepository) SampleUserIDs(ctx context.Context, limit int) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).
		Model(&domain.Order{}).
		Group("user_id").
		Having("COUNT(*) >= ?", 2).
		Order("user_id").
		Limit(limit).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}
