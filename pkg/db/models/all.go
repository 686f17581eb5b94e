package models

// All lists every persisted model, in dependency order, for AutoMigrate in
// SQLite mode and tests.
func All() []any {
	return []any{
		&User{},
		&Store{},
		&Product{},
		&ProductOption{},
		&ProductLike{},
		&StoreLike{},
		&Feed{},
		&Order{},
		&OrderItem{},
		&OutboxEvent{},
		&OutboxDLQ{},
	}
}
