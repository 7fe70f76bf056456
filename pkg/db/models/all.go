package models

// All lists every persisted model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Book{},
		&DiscountCampaign{},
		&DiscountCampaignBook{},
		&DiscountCampaignCountry{},
		&Cart{},
		&CartItem{},
		&ReviewBucket{},
		&Review{},
		&Transaction{},
		&TransactionItem{},
		&OutboxEvent{},
	}
}
