package checkout

import (
	"github.com/google/uuid"

	"github.com/pallab-BJIT/mid-term-project/pkg/enums"
)

// Buyer is the authenticated user placing the order.
type Buyer struct {
	UserID uuid.UUID
}

// Input is the checkout request body.
type Input struct {
	CartID        uuid.UUID `json:"cartId" validate:"required"`
	PaymentMethod string    `json:"paymentMethod" validate:"required,oneof=online card mobile_banking"`
}

func (in Input) paymentMethod() (enums.PaymentMethod, error) {
	return enums.ParsePaymentMethod(in.PaymentMethod)
}
