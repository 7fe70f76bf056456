package enums

import "fmt"

// Rank gates admin-only operations such as catalog and discount management.
type Rank string

const (
	RankAdmin    Rank = "admin"
	RankCustomer Rank = "customer"
)

var validRanks = []Rank{
	RankAdmin,
	RankCustomer,
}

// String implements fmt.Stringer.
func (r Rank) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Rank.
func (r Rank) IsValid() bool {
	for _, candidate := range validRanks {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRank converts raw input into a Rank.
func ParseRank(value string) (Rank, error) {
	for _, candidate := range validRanks {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rank %q", value)
}
