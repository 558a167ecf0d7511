package firm

import (
	"time"

	"github.com/google/uuid"
)

// Firm is a vendor's storefront. Products holds the ids of the products it
// owns; each of those products points back through its firm reference.
type Firm struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"firmName"`
	Area      string      `json:"area"`
	Category  []string    `json:"category"`
	Region    []string    `json:"region"`
	Offer     string      `json:"offer"`
	Image     string      `json:"image"`
	VendorID  *uuid.UUID  `json:"vendor"`
	Products  []uuid.UUID `json:"products"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// HasProduct reports whether productID is in the firm's product set.
func (f *Firm) HasProduct(productID uuid.UUID) bool {
	for _, id := range f.Products {
		if id == productID {
			return true
		}
	}
	return false
}
