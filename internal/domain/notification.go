package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Notification is a stored in-app notification. A nil UserID marks a
// broadcast row shown to every user subject to their own preferences.
// Only IsRead changes after creation.
type Notification struct {
	ID        uuid.UUID  `json:"id" db:"notification_id"`
	UserID    *uuid.UUID `json:"user_id" db:"user_id"`
	Category  Category   `json:"category" db:"category"`
	Message   string     `json:"message" db:"message"`
	IsRead    bool       `json:"is_read" db:"is_read"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

func (n *Notification) IsBroadcast() bool {
	return n.UserID == nil
}

// OwnedBy reports whether the row is scoped to exactly this user.
func (n *Notification) OwnedBy(userID uuid.UUID) bool {
	return n.UserID != nil && *n.UserID == userID
}

type Category string

const (
	CategoryReminder    Category = "reminder"
	CategoryConfirmed   Category = "confirmed"
	CategoryModified    Category = "modified"
	CategoryMenuUpdated Category = "menu_updated"
)

var AllCategories = []Category{
	CategoryReminder,
	CategoryConfirmed,
	CategoryModified,
	CategoryMenuUpdated,
}

func (c Category) IsValid() bool {
	switch c {
	case CategoryReminder, CategoryConfirmed, CategoryModified, CategoryMenuUpdated:
		return true
	default:
		return false
	}
}

// ParseCategory accepts the canonical names and their hyphenated spellings
// ("menu-updated").
func ParseCategory(s string) (Category, error) {
	c := Category(normalizeEnum(s))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: unknown notification category %q", ErrValidation, s)
	}
	return c, nil
}

type DeliveryResult struct {
	InApp bool `json:"in_app"`
	Email bool `json:"email"`
}

type BulkResult struct {
	Delivered int         `json:"delivered"`
	Skipped   int         `json:"skipped"`
	Failed    []uuid.UUID `json:"failed"`
}

type MarkAllResult struct {
	Updated int         `json:"updated"`
	Failed  []uuid.UUID `json:"failed"`
}

type BroadcastInput struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

type BulkNotifyInput struct {
	Category string      `json:"category"`
	Message  string      `json:"message"`
	UserIDs  []uuid.UUID `json:"user_ids"`
}

// StreamFrame is the JSON payload of one event-stream frame.
type StreamFrame struct {
	Notifications []Notification `json:"notifications"`
}

func normalizeEnum(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
}
