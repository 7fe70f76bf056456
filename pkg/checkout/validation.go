package checkout

import (
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/pallab-BJIT/mid-term-project/pkg/errors"
)

// StockCheckInput describes the data required to verify a line against live stock.
type StockCheckInput struct {
	BookID    uuid.UUID
	Title     string
	Available int
	Requested int
}

// StockShortageDetail exposes the data returned to callers when a check fails.
type StockShortageDetail struct {
	BookID       uuid.UUID `json:"bookId"`
	Title        string    `json:"title,omitempty"`
	AvailableQty int       `json:"availableQty"`
	RequestedQty int       `json:"requestedQty"`
}

// VerifyStock ensures every line can be served from the stock currently on hand.
func VerifyStock(items []StockCheckInput) error {
	var shortages []StockShortageDetail
	for _, item := range items {
		if item.Requested <= item.Available {
			continue
		}
		shortages = append(shortages, StockShortageDetail{
			BookID:       item.BookID,
			Title:        item.Title,
			AvailableQty: item.Available,
			RequestedQty: item.Requested,
		})
	}
	if len(shortages) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientResource, fmt.Sprintf("insufficient stock for %d item(s)", len(shortages))).WithDetails(map[string]any{
		"shortages": shortages,
	})
}
