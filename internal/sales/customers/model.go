package customers

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a buyer the shop keeps on file. Sales keep working when the
// customer is deleted; their customer reference becomes empty.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"-"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	City      *string   `json:"city,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
