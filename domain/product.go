package domain

import (
	"time"
)

// CREATE TABLE public.products (
//     id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     product_name    TEXT NOT NULL,
//     department_id   BIGINT NOT NULL,
//     department      TEXT,
//     aisle_id        BIGINT,
//     aisle           TEXT,
//     created_at      TIMESTAMPTZ DEFAULT NOW()
// );

type Product struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductName  string    `gorm:"column:product_name;type:text" json:"product_name"`
	DepartmentID uint64    `gorm:"column:department_id;not null" json:"department_id"`
	Department   string    `gorm:"column:department;type:text" json:"department"`
	AisleID      uint64    `gorm:"column:aisle_id" json:"aisle_id"`
	Aisle        string    `gorm:"column:aisle;type:text" json:"aisle"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Product) TableName() string {
	return "products"
}
