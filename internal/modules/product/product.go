package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CategoryVeg    = "veg"
	CategoryNonVeg = "non-veg"
)

// Product is a sellable item belonging to exactly one firm.
type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
	Category    []string        `json:"category"`
	BestSeller  bool            `json:"bestSeller"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	FirmID      *uuid.UUID      `json:"firm"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// FirmProducts is the product listing of one firm.
type FirmProducts struct {
	FirmName string     `json:"restaurantName"`
	Products []*Product `json:"products"`
}
