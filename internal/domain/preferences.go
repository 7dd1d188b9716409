package domain

import "fmt"

type DeliveryMethod string

const (
	DeliveryInApp DeliveryMethod = "in_app"
	DeliveryEmail DeliveryMethod = "email"
	DeliveryBoth  DeliveryMethod = "both"
)

func (m DeliveryMethod) IsValid() bool {
	switch m {
	case DeliveryInApp, DeliveryEmail, DeliveryBoth:
		return true
	default:
		return false
	}
}

func (m DeliveryMethod) IncludesEmail() bool {
	return m == DeliveryEmail || m == DeliveryBoth
}

func ParseDeliveryMethod(s string) (DeliveryMethod, error) {
	m := DeliveryMethod(normalizeEnum(s))
	if !m.IsValid() {
		return "", fmt.Errorf("%w: unknown delivery method %q", ErrValidation, s)
	}
	return m, nil
}

type Frequency string

const (
	FrequencyAll           Frequency = "all"
	FrequencyImportantOnly Frequency = "important_only"
	FrequencyNone          Frequency = "none"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyAll, FrequencyImportantOnly, FrequencyNone:
		return true
	default:
		return false
	}
}

func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(normalizeEnum(s))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: unknown frequency %q", ErrValidation, s)
	}
	return f, nil
}

// NotificationPreferences lives on the users row; it has no lifecycle of its own.
type NotificationPreferences struct {
	OrderReminders     bool           `json:"order_reminders" db:"order_reminders"`
	OrderConfirmations bool           `json:"order_confirmations" db:"order_confirmations"`
	OrderModifications bool           `json:"order_modifications" db:"order_modifications"`
	MenuUpdates        bool           `json:"menu_updates" db:"menu_updates"`
	DeliveryMethod     DeliveryMethod `json:"delivery_method" db:"delivery_method"`
	Frequency          Frequency      `json:"frequency" db:"frequency"`
}

func DefaultPreferences() NotificationPreferences {
	return NotificationPreferences{
		OrderReminders:     true,
		OrderConfirmations: true,
		OrderModifications: true,
		MenuUpdates:        true,
		DeliveryMethod:     DeliveryInApp,
		Frequency:          FrequencyAll,
	}
}

// Toggle returns the per-category switch.
func (p NotificationPreferences) Toggle(c Category) bool {
	switch c {
	case CategoryReminder:
		return p.OrderReminders
	case CategoryConfirmed:
		return p.OrderConfirmations
	case CategoryModified:
		return p.OrderModifications
	case CategoryMenuUpdated:
		return p.MenuUpdates
	default:
		return false
	}
}

// ShouldDeliver decides whether a notification of category c reaches a user
// with these preferences. Frequency "none" mutes everything and
// "important_only" mutes menu updates regardless of their toggle.
func ShouldDeliver(p NotificationPreferences, c Category) bool {
	if p.Frequency == FrequencyNone {
		return false
	}
	if c == CategoryMenuUpdated && p.Frequency == FrequencyImportantOnly {
		return false
	}
	return p.Toggle(c)
}

// IsImportant reports whether c survives the "important_only" frequency.
func IsImportant(c Category) bool {
	switch c {
	case CategoryReminder, CategoryConfirmed, CategoryModified:
		return true
	default:
		return false
	}
}

// Visibility is the read-time filter for one user. Broadcast rows never went
// through the per-user check at dispatch, so they are filtered with
// ShouldDeliver here; user-scoped rows were filtered at dispatch and only the
// importance cut is reapplied.
type Visibility struct {
	Broadcast []Category
	Scoped    []Category
}

func (p NotificationPreferences) Visibility() Visibility {
	v := Visibility{
		Broadcast: make([]Category, 0, len(AllCategories)),
		Scoped:    make([]Category, 0, len(AllCategories)),
	}
	for _, c := range AllCategories {
		if ShouldDeliver(p, c) {
			v.Broadcast = append(v.Broadcast, c)
		}
		if p.Frequency != FrequencyImportantOnly || IsImportant(c) {
			v.Scoped = append(v.Scoped, c)
		}
	}
	return v
}

// Allows applies the same rule to a single row.
func (v Visibility) Allows(n Notification) bool {
	set := v.Scoped
	if n.IsBroadcast() {
		set = v.Broadcast
	}
	for _, c := range set {
		if c == n.Category {
			return true
		}
	}
	return false
}

func (v Visibility) BroadcastStrings() []string {
	return categoryStrings(v.Broadcast)
}

func (v Visibility) ScopedStrings() []string {
	return categoryStrings(v.Scoped)
}

func categoryStrings(cs []Category) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}

// UpdatePreferencesInput overwrites the stored preferences wholesale, so every
// field is required.
type UpdatePreferencesInput struct {
	OrderReminders     *bool   `json:"order_reminders"`
	OrderConfirmations *bool   `json:"order_confirmations"`
	OrderModifications *bool   `json:"order_modifications"`
	MenuUpdates        *bool   `json:"menu_updates"`
	DeliveryMethod     *string `json:"delivery_method"`
	Frequency          *string `json:"frequency"`
}

func (in UpdatePreferencesInput) ToPreferences() (NotificationPreferences, error) {
	if in.OrderReminders == nil || in.OrderConfirmations == nil || in.OrderModifications == nil ||
		in.MenuUpdates == nil || in.DeliveryMethod == nil || in.Frequency == nil {
		return NotificationPreferences{}, fmt.Errorf("%w: all preference fields are required", ErrValidation)
	}

	method, err := ParseDeliveryMethod(*in.DeliveryMethod)
	if err != nil {
		return NotificationPreferences{}, err
	}
	freq, err := ParseFrequency(*in.Frequency)
	if err != nil {
		return NotificationPreferences{}, err
	}

	return NotificationPreferences{
		OrderReminders:     *in.OrderReminders,
		OrderConfirmations: *in.OrderConfirmations,
		OrderModifications: *in.OrderModifications,
		MenuUpdates:        *in.MenuUpdates,
		DeliveryMethod:     method,
		Frequency:          freq,
	}, nil
}
