package domain

// All returns every persisted model, in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Listing{},
		&ListingEvent{},
		&Comment{},
		&CartEntry{},
		&Order{},
		&Message{},
	}
}
