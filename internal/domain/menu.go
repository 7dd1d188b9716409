package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const MenuDateLayout = "2006-01-02"

type Menu struct {
	ID          uuid.UUID  `json:"id" db:"menu_id"`
	ServiceDate string     `json:"service_date" db:"service_date"`
	Items       MenuItems  `json:"items" db:"items"`
	ImageKey    *string    `json:"-" db:"image_key"`
	ImageURL    string     `json:"image_url,omitempty" db:"-"`
	OrderCutoff *time.Time `json:"order_cutoff,omitempty" db:"order_cutoff"`
	CreatedBy   uuid.UUID  `json:"created_by" db:"created_by"`
	PublishedAt time.Time  `json:"published_at" db:"published_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// IsOpen reports whether orders may still be placed or modified at now.
func (m *Menu) IsOpen(now time.Time) bool {
	return m.OrderCutoff == nil || now.Before(*m.OrderCutoff)
}

func (m *Menu) HasItem(id string) bool {
	for _, it := range m.Items {
		if it.ID == id && it.Available {
			return true
		}
	}
	return false
}

type MenuItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"price_cents"`
	Available   bool   `json:"available"`
}

// MenuItems is stored as a JSONB column.
type MenuItems []MenuItem

func (m MenuItems) Value() (driver.Value, error) {
	if m == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m)
}

func (m *MenuItems) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		*m = MenuItems{}
		return nil
	default:
		return errors.New("unsupported type for menu items")
	}
	return json.Unmarshal(data, m)
}

type UpsertMenuInput struct {
	Items       []MenuItem `json:"items"`
	OrderCutoff *time.Time `json:"order_cutoff,omitempty"`
}

func (in UpsertMenuInput) Validate() error {
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: menu needs at least one item", ErrValidation)
	}
	seen := make(map[string]bool, len(in.Items))
	for _, it := range in.Items {
		if it.ID == "" || it.Name == "" {
			return fmt.Errorf("%w: menu items need an id and a name", ErrValidation)
		}
		if seen[it.ID] {
			return fmt.Errorf("%w: duplicate menu item %q", ErrValidation, it.ID)
		}
		seen[it.ID] = true
	}
	return nil
}

// ParseServiceDate validates a YYYY-MM-DD menu date.
func ParseServiceDate(s string) (string, error) {
	t, err := time.Parse(MenuDateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: invalid date %q", ErrValidation, s)
	}
	return t.Format(MenuDateLayout), nil
}
