package domain

import "time"

type Order struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	OrderNumber int       `gorm:"column:order_number;not null" json:"order_number"`
	OrderStatus string    `gorm:"column:order_status" json:"order_status"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint64 `gorm:"column:order_id;not null;index" json:"order_id"`
	ProductID uint64 `gorm:"column:product_id;not null" json:"product_id"`
	Reordered bool   `gorm:"column:reordered;not null;default:false" json:"reordered"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
