package enums

import "fmt"

// BookSortField lists the catalog columns a client may sort by.
type BookSortField string

const (
	BookSortPrice  BookSortField = "price"
	BookSortStock  BookSortField = "stock"
	BookSortRating BookSortField = "rating"
)

var validBookSortFields = []BookSortField{BookSortPrice, BookSortStock, BookSortRating}

func (f BookSortField) IsValid() bool {
	for _, candidate := range validBookSortFields {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseBookSortField converts raw input into a BookSortField.
func ParseBookSortField(value string) (BookSortField, error) {
	if f := BookSortField(value); f.IsValid() {
		return f, nil
	}
	return "", fmt.Errorf("invalid sort field %q", value)
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder converts raw input into a SortOrder.
func ParseSortOrder(value string) (SortOrder, error) {
	switch SortOrder(value) {
	case SortAsc, SortDesc:
		return SortOrder(value), nil
	}
	return "", fmt.Errorf("invalid sort order %q", value)
}

// BookFilterField lists the numeric catalog attributes a client may filter on.
type BookFilterField string

const (
	BookFilterStock              BookFilterField = "stock"
	BookFilterPrice              BookFilterField = "price"
	BookFilterRating             BookFilterField = "rating"
	BookFilterDiscountPercentage BookFilterField = "discountPercentage"
)

var validBookFilterFields = []BookFilterField{
	BookFilterStock,
	BookFilterPrice,
	BookFilterRating,
	BookFilterDiscountPercentage,
}

func (f BookFilterField) IsValid() bool {
	for _, candidate := range validBookFilterFields {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseBookFilterField converts raw input into a BookFilterField.
func ParseBookFilterField(value string) (BookFilterField, error) {
	if f := BookFilterField(value); f.IsValid() {
		return f, nil
	}
	return "", fmt.Errorf("invalid filter %q", value)
}

// FilterOrder selects whether a filter keeps values above or below the threshold.
type FilterOrder string

const (
	FilterHigh FilterOrder = "high"
	FilterLow  FilterOrder = "low"
)

// ParseFilterOrder converts raw input into a FilterOrder.
func ParseFilterOrder(value string) (FilterOrder, error) {
	switch FilterOrder(value) {
	case FilterHigh, FilterLow:
		return FilterOrder(value), nil
	}
	return "", fmt.Errorf("invalid filter order %q", value)
}
