package domain

// Order lifecycle: pending -> served, terminal. There is no void path for a
// served order.
var orderNext = map[OrderStatus]map[OrderStatus]bool{
	OrderPending: {OrderServed: true},
	OrderServed:  {},
}

func CanTransitionOrder(from, to OrderStatus) bool {
	return orderNext[from][to]
}

// Kitchen flow per food item: pending -> cooking -> ready -> served. Each
// single action advances exactly one step; there is no skipping.
var itemNext = map[ItemStatus]map[ItemStatus]bool{
	ItemPending: {ItemCooking: true},
	ItemCooking: {ItemReady: true},
	ItemReady:   {ItemServed: true},
	ItemServed:  {},
}

func CanTransitionItem(from, to ItemStatus) bool {
	return itemNext[from][to]
}
