package models

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&Restaurant{},
		&User{},
		&Category{},
		&MenuItem{},
		&Table{},
		&Order{},
		&OrderItem{},
		&Review{},
		&WaiterCall{},
	}
}
