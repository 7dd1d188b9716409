package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunch-order/internal/domain"
)

// everyPreference enumerates all toggle, method and frequency combinations.
func everyPreference() []domain.NotificationPreferences {
	var out []domain.NotificationPreferences
	methods := []domain.DeliveryMethod{domain.DeliveryInApp, domain.DeliveryEmail, domain.DeliveryBoth}
	freqs := []domain.Frequency{domain.FrequencyAll, domain.FrequencyImportantOnly, domain.FrequencyNone}
	for mask := 0; mask < 16; mask++ {
		for _, m := range methods {
			for _, f := range freqs {
				out = append(out, domain.NotificationPreferences{
					OrderReminders:     mask&1 != 0,
					OrderConfirmations: mask&2 != 0,
					OrderModifications: mask&4 != 0,
					MenuUpdates:        mask&8 != 0,
					DeliveryMethod:     m,
					Frequency:          f,
				})
			}
		}
	}
	return out
}

func TestShouldDeliver(t *testing.T) {
	defaults := domain.DefaultPreferences()

	tests := []struct {
		name     string
		mutate   func(p *domain.NotificationPreferences)
		category domain.Category
		want     bool
	}{
		{"defaults deliver reminders", nil, domain.CategoryReminder, true},
		{"defaults deliver menu updates", nil, domain.CategoryMenuUpdated, true},
		{"toggle off", func(p *domain.NotificationPreferences) { p.OrderConfirmations = false }, domain.CategoryConfirmed, false},
		{"none mutes everything", func(p *domain.NotificationPreferences) { p.Frequency = domain.FrequencyNone }, domain.CategoryModified, false},
		{"important only drops menu updates", func(p *domain.NotificationPreferences) { p.Frequency = domain.FrequencyImportantOnly }, domain.CategoryMenuUpdated, false},
		{"important only keeps reminders", func(p *domain.NotificationPreferences) { p.Frequency = domain.FrequencyImportantOnly }, domain.CategoryReminder, true},
		{"unknown category", nil, domain.Category("lottery"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := defaults
			if tt.mutate != nil {
				tt.mutate(&p)
			}
			assert.Equal(t, tt.want, domain.ShouldDeliver(p, tt.category))
		})
	}
}

func TestShouldDeliver_Properties(t *testing.T) {
	for _, p := range everyPreference() {
		for _, c := range domain.AllCategories {
			got := domain.ShouldDeliver(p, c)

			if p.Frequency == domain.FrequencyNone {
				assert.False(t, got, "frequency none must mute %s", c)
			}
			if !p.Toggle(c) {
				assert.False(t, got, "disabled toggle must mute %s", c)
			}
			if got && p.Frequency == domain.FrequencyImportantOnly {
				assert.True(t, domain.IsImportant(c))
			}
			if p.Frequency == domain.FrequencyAll {
				assert.Equal(t, p.Toggle(c), got)
			}
		}
	}
}

func TestVisibility_BroadcastMatchesShouldDeliver(t *testing.T) {
	for _, p := range everyPreference() {
		vis := p.Visibility()
		for _, c := range domain.AllCategories {
			n := domain.Notification{ID: uuid.New(), Category: c}
			assert.Equal(t, domain.ShouldDeliver(p, c), vis.Allows(n), "prefs=%+v category=%s", p, c)
		}
	}
}

func TestVisibility_ScopedRows(t *testing.T) {
	userID := uuid.New()
	scoped := func(c domain.Category) domain.Notification {
		return domain.Notification{ID: uuid.New(), UserID: &userID, Category: c}
	}

	t.Run("toggles do not hide rows already delivered", func(t *testing.T) {
		p := domain.DefaultPreferences()
		p.OrderConfirmations = false
		assert.True(t, p.Visibility().Allows(scoped(domain.CategoryConfirmed)))
	})

	t.Run("important only hides scoped menu updates", func(t *testing.T) {
		p := domain.DefaultPreferences()
		p.Frequency = domain.FrequencyImportantOnly
		vis := p.Visibility()
		assert.False(t, vis.Allows(scoped(domain.CategoryMenuUpdated)))
		assert.True(t, vis.Allows(scoped(domain.CategoryReminder)))
	})
}

func TestIsImportant(t *testing.T) {
	assert.True(t, domain.IsImportant(domain.CategoryReminder))
	assert.True(t, domain.IsImportant(domain.CategoryConfirmed))
	assert.True(t, domain.IsImportant(domain.CategoryModified))
	assert.False(t, domain.IsImportant(domain.CategoryMenuUpdated))
}

func TestParseEnums(t *testing.T) {
	c, err := domain.ParseCategory("Menu-Updated")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryMenuUpdated, c)

	m, err := domain.ParseDeliveryMethod("in-app")
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryInApp, m)

	f, err := domain.ParseFrequency("important-only")
	require.NoError(t, err)
	assert.Equal(t, domain.FrequencyImportantOnly, f)

	_, err = domain.ParseFrequency("sometimes")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdatePreferencesInput_ToPreferences(t *testing.T) {
	yes, no := true, false
	method, freq := "both", "important_only"

	t.Run("complete input", func(t *testing.T) {
		in := domain.UpdatePreferencesInput{
			OrderReminders:     &yes,
			OrderConfirmations: &no,
			OrderModifications: &yes,
			MenuUpdates:        &no,
			DeliveryMethod:     &method,
			Frequency:          &freq,
		}

		p, err := in.ToPreferences()

		require.NoError(t, err)
		assert.Equal(t, domain.NotificationPreferences{
			OrderReminders:     true,
			OrderConfirmations: false,
			OrderModifications: true,
			MenuUpdates:        false,
			DeliveryMethod:     domain.DeliveryBoth,
			Frequency:          domain.FrequencyImportantOnly,
		}, p)
	})

	t.Run("missing field", func(t *testing.T) {
		in := domain.UpdatePreferencesInput{OrderReminders: &yes, DeliveryMethod: &method, Frequency: &freq}

		_, err := in.ToPreferences()

		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("bad delivery method", func(t *testing.T) {
		bad := "pigeon"
		in := domain.UpdatePreferencesInput{
			OrderReminders: &yes, OrderConfirmations: &yes, OrderModifications: &yes, MenuUpdates: &yes,
			DeliveryMethod: &bad, Frequency: &freq,
		}

		_, err := in.ToPreferences()

		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}
