package enums

import "fmt"

// OutboxAggregateType names the entity an outbox event describes.
type OutboxAggregateType string

const (
	AggregateTransaction      OutboxAggregateType = "transaction"
	AggregateBook             OutboxAggregateType = "book"
	AggregateDiscountCampaign OutboxAggregateType = "discount_campaign"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateTransaction,
	AggregateBook,
	AggregateDiscountCampaign,
}

// IsValid reports whether the value is a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType is the routing key for published domain events.
type OutboxEventType string

const (
	EventTransactionCreated OutboxEventType = "transaction_created"
	EventBookRatingChanged  OutboxEventType = "book_rating_changed"
	EventDiscountChanged    OutboxEventType = "discount_changed"
	EventDiscountDeleted    OutboxEventType = "discount_deleted"
)

var validOutboxEventTypes = []OutboxEventType{
	EventTransactionCreated,
	EventBookRatingChanged,
	EventDiscountChanged,
	EventDiscountDeleted,
}

// IsValid reports whether the value is a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
