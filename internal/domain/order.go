package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Order struct {
	ID          uuid.UUID   `json:"id" db:"order_id"`
	UserID      uuid.UUID   `json:"user_id" db:"user_id"`
	MenuID      uuid.UUID   `json:"menu_id" db:"menu_id"`
	ServiceDate string      `json:"service_date" db:"service_date"`
	Items       OrderItems  `json:"items" db:"items"`
	Note        *string     `json:"note,omitempty" db:"note"`
	Status      OrderStatus `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

type OrderItem struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

type OrderItems []OrderItem

func (o OrderItems) Value() (driver.Value, error) {
	if o == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(o)
}

func (o *OrderItems) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		*o = OrderItems{}
		return nil
	default:
		return errors.New("unsupported type for order items")
	}
	return json.Unmarshal(data, o)
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderModified  OrderStatus = "modified"
	OrderCancelled OrderStatus = "cancelled"
	OrderDelivered OrderStatus = "delivered"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderModified, OrderCancelled, OrderDelivered:
		return true
	default:
		return false
	}
}

// Editable reports whether the owner may still change the order.
func (s OrderStatus) Editable() bool {
	return s == OrderPending || s == OrderModified
}

type PlaceOrderInput struct {
	ServiceDate string      `json:"service_date"`
	Items       []OrderItem `json:"items"`
	Note        *string     `json:"note,omitempty"`
}

type ModifyOrderInput struct {
	Items []OrderItem `json:"items"`
	Note  *string     `json:"note,omitempty"`
}

type UpdateOrderStatusInput struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func ValidateOrderItems(menu *Menu, items []OrderItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: order needs at least one item", ErrValidation)
	}
	for _, it := range items {
		if it.Quantity < 1 {
			return fmt.Errorf("%w: quantity must be positive", ErrValidation)
		}
		if !menu.HasItem(it.MenuItemID) {
			return fmt.Errorf("%w: item %q is not on the menu", ErrValidation, it.MenuItemID)
		}
	}
	return nil
}
