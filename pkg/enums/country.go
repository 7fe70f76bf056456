package enums

import (
	"fmt"
	"strings"
)

// Country is an upper-case country code as stored on addresses and campaigns.
type Country string

const (
	CountryBangladesh   Country = "BD"
	CountryUnitedStates Country = "US"
	CountryIndia        Country = "IND"
)

// DefaultDiscountCountries is the campaign allow-list used when none is configured.
var DefaultDiscountCountries = []Country{
	CountryBangladesh,
	CountryUnitedStates,
	CountryIndia,
}

// String implements fmt.Stringer.
func (c Country) String() string {
	return string(c)
}

// NormalizeCountry upper-cases and trims raw input.
func NormalizeCountry(value string) Country {
	return Country(strings.ToUpper(strings.TrimSpace(value)))
}

// ParseCountry normalizes value and checks it against allowed.
func ParseCountry(value string, allowed []Country) (Country, error) {
	normalized := NormalizeCountry(value)
	for _, candidate := range allowed {
		if candidate == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid country %q", value)
}

// CountriesFromStrings converts configured codes into a normalized allow-list.
func CountriesFromStrings(values []string) []Country {
	out := make([]Country, 0, len(values))
	for _, v := range values {
		if c := NormalizeCountry(v); c != "" {
			out = append(out, c)
		}
	}
	return out
}
