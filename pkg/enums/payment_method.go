package enums

import "fmt"

// PaymentMethod records how the customer declared payment at checkout. The
// amount is always settled against the account balance.
type PaymentMethod string

const (
	PaymentMethodOnline        PaymentMethod = "online"
	PaymentMethodCard          PaymentMethod = "card"
	PaymentMethodMobileBanking PaymentMethod = "mobile_banking"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodOnline,
	PaymentMethodCard,
	PaymentMethodMobileBanking,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
