package domain

import "time"

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleWaiter    Role = "waiter"
	RoleChef      Role = "chef"
	RoleBartender Role = "bartender"
	RoleCashier   Role = "cashier"
	RoleOwner     Role = "owner"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleWaiter, RoleChef, RoleBartender, RoleCashier, RoleOwner:
		return true
	}
	return false
}

type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeInactive EmployeeStatus = "inactive"
)

type Employee struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	PasswordHash string         `json:"-"`
	Role         Role           `json:"role"`
	Status       EmployeeStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
)

// Table is one physical table. Invariant: Status == occupied exactly when
// AssignedEmployee is set and one pending order references the table.
type Table struct {
	ID               string      `json:"id"`
	TableNo          string      `json:"table_no"`
	Status           TableStatus `json:"status"`
	AssignedEmployee *string     `json:"assigned_employee,omitempty"`
	Version          int64       `json:"version"`
	CreatedAt        time.Time   `json:"created_at"`
}

type OrderStatus string

const (
	OrderPending OrderStatus = "pending"
	OrderServed  OrderStatus = "served"
)

// Order is one billing session for a table. While Status == pending it is
// the unique open session for its table; served is terminal.
type Order struct {
	ID          string      `json:"id"`
	TableID     string      `json:"table_id"`
	WaiterID    string      `json:"waiter_id"`
	Status      OrderStatus `json:"status"`
	Cash        float64     `json:"cash"`
	Card        float64     `json:"card"`
	Balance     float64     `json:"balance"`
	Total       float64     `json:"total"`
	Printed     bool        `json:"printed"`
	BillPrinted bool        `json:"bill_printed"`
	Version     int64       `json:"version"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type ItemKind string

const (
	KindFood  ItemKind = "food"
	KindDrink ItemKind = "drink"
)

type ItemStatus string

const (
	ItemPending ItemStatus = "pending"
	ItemCooking ItemStatus = "cooking"
	ItemReady   ItemStatus = "ready"
	ItemServed  ItemStatus = "served"
)

// OrderItem is one line of an order. Exactly one of MenuItemID / DrinkID is
// set. Total is always UnitPrice * Quantity rounded to the cent; it is never
// edited independently. Status only drives the kitchen flow of food items.
type OrderItem struct {
	ID         string     `json:"id"`
	OrderID    string     `json:"order_id"`
	MenuItemID *string    `json:"menu_item_id,omitempty"`
	DrinkID    *string    `json:"drink_id,omitempty"`
	Name       string     `json:"name"`
	Quantity   int        `json:"quantity"`
	UnitPrice  float64    `json:"unit_price"`
	Total      float64    `json:"total"`
	Status     ItemStatus `json:"status"`
	Version    int64      `json:"version"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (i OrderItem) Kind() ItemKind {
	if i.DrinkID != nil {
		return KindDrink
	}
	return KindFood
}

type MenuItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

type Drink struct {
	ID          string  `json:"id"`
	ItemName    string  `json:"item_name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

// CatalogRef is the server-side resolved reference an item is added from.
// Prices always come from the catalog tables, never from the client.
type CatalogRef struct {
	Kind  ItemKind
	ID    string
	Name  string
	Price float64
}

type Totals struct {
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type PaymentResult struct {
	Order   Order   `json:"order"`
	Balance float64 `json:"balance"`
}

// OrderAggregate is the "order with everything the screens need" shape,
// fetched from the store in a single round trip.
type OrderAggregate struct {
	Order      Order       `json:"order"`
	TableNo    string      `json:"table_no"`
	WaiterName string      `json:"waiter_name"`
	Items      []OrderItem `json:"items"`
	Totals     Totals      `json:"totals"`
}

// Ticket is a kitchen board line: a food order item joined with the table
// it is for.
type Ticket struct {
	OrderItem
	TableNo string `json:"table_no"`
}
