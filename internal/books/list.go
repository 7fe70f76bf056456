package books

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/pallab-BJIT/mid-term-project/pkg/enums"
	"github.com/pallab-BJIT/mid-term-project/pkg/pagination"
	"github.com/pallab-BJIT/mid-term-project/pkg/validation"
)

// RawListQuery is the catalog browse query exactly as received.
type RawListQuery struct {
	Offset      string
	Limit       string
	Search      *string
	SortBy      string
	SortOrder   string
	Filter      string
	FilterOrder string
	FilterValue string
	Category    *string
}

// ListQuery is a validated browse request.
type ListQuery struct {
	Search     string
	Categories []string
	Sort       *Sort
	Filter     *Filter
	Page       pagination.Page
}

type Sort struct {
	Field enums.BookSortField
	Order enums.SortOrder
}

func (s Sort) clause() string {
	dir := "ASC"
	if s.Order == enums.SortDesc {
		dir = "DESC"
	}
	return string(s.Field) + " " + dir
}

type Filter struct {
	Field enums.BookFilterField
	Order enums.FilterOrder
	Value decimal.Decimal
}

// ListResult is one catalog page.
type ListResult struct {
	Books []BookView `json:"books"`
	Total int64      `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}

// ParseListQuery validates raw query values. Paired parameters (offset/limit,
// sortBy/sortOrder, filter/filterOrder/filterValue) must be supplied together.
func ParseListQuery(raw RawListQuery) (ListQuery, error) {
	var problems validation.Problems
	q := ListQuery{}

	number, size := 0, 0
	offsetSet, limitSet := raw.Offset != "", raw.Limit != ""
	if offsetSet != limitSet {
		if offsetSet {
			problems.Add("limit", "must be provided with offset")
		} else {
			problems.Add("offset", "must be provided with limit")
		}
	}
	if offsetSet {
		n, err := strconv.Atoi(raw.Offset)
		if err != nil || n < 1 {
			problems.Add("offset", "must be a number of at least 1")
		}
		number = n
	}
	if limitSet {
		n, err := strconv.Atoi(raw.Limit)
		if err != nil || n < 1 {
			problems.Add("limit", "must be a number of at least 1")
		}
		size = n
	}
	if !problems.Has("offset") && !problems.Has("limit") {
		page, err := pagination.NewPage(number, size)
		if err != nil {
			problems.Add("offset", err.Error())
		}
		q.Page = page
	}

	if raw.Search != nil {
		q.Search = strings.TrimSpace(*raw.Search)
		if q.Search == "" {
			problems.Add("search", "cannot be empty")
		}
	}

	if raw.Category != nil {
		for _, c := range strings.Split(*raw.Category, ",") {
			if c = strings.TrimSpace(c); c != "" {
				q.Categories = append(q.Categories, c)
			}
		}
		if len(q.Categories) == 0 {
			problems.Add("category", "cannot be empty")
		}
	}

	switch {
	case raw.SortBy == "" && raw.SortOrder == "":
	case raw.SortBy == "":
		problems.Add("sortBy", "must be provided with sortOrder")
	case raw.SortOrder == "":
		problems.Add("sortOrder", "must be provided with sortBy")
	default:
		field, err := enums.ParseBookSortField(raw.SortBy)
		if err != nil {
			problems.Add("sortBy", "must be one of price, stock, rating")
		}
		order, err := enums.ParseSortOrder(raw.SortOrder)
		if err != nil {
			problems.Add("sortOrder", "must be asc or desc")
		}
		q.Sort = &Sort{Field: field, Order: order}
	}

	filterParts := 0
	for _, v := range []string{raw.Filter, raw.FilterOrder, raw.FilterValue} {
		if v != "" {
			filterParts++
		}
	}
	switch filterParts {
	case 0:
	case 3:
		field, err := enums.ParseBookFilterField(raw.Filter)
		if err != nil {
			problems.Add("filter", "must be one of stock, price, rating, discountPercentage")
		}
		order, err := enums.ParseFilterOrder(raw.FilterOrder)
		if err != nil {
			problems.Add("filterOrder", "must be high or low")
		}
		value, err := decimal.NewFromString(raw.FilterValue)
		if err != nil {
			problems.Add("filterValue", "must be numeric")
		}
		q.Filter = &Filter{Field: field, Order: order, Value: value}
	default:
		problems.Add("filter", "filter, filterOrder and filterValue must be provided together")
	}

	if err := problems.Err(); err != nil {
		return ListQuery{}, err
	}
	return q, nil
}
