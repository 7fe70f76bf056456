package reviews

import (
	"github.com/shopspring/decimal"

	"github.com/pallab-BJIT/mid-term-project/pkg/db/models"
)

// MeanRating is the plain mean over every entry, or zero for none.
func MeanRating(entries []models.Review) decimal.Decimal {
	if len(entries) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(decimal.NewFromInt(int64(e.Rating)))
	}
	return sum.Div(decimal.NewFromInt(int64(len(entries))))
}
