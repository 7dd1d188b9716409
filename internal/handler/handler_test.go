package handler_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lunch-order/internal/domain"
	"lunch-order/internal/handler"
	"lunch-order/internal/middleware"
	"lunch-order/internal/mocks"
	"lunch-order/internal/service/notification"
)

type testApp struct {
	app   *fiber.App
	notif *mocks.NotificationService
	prefs *mocks.PreferenceService
	hub   *notification.StreamHub
	user  *domain.User
}

func newTestApp(t *testing.T, role domain.UserRole) *testApp {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ta := &testApp{
		notif: new(mocks.NotificationService),
		prefs: new(mocks.PreferenceService),
		user:  &domain.User{ID: uuid.New(), Role: string(role), IsActive: true},
	}
	ta.hub = notification.NewStreamHub(ta.notif, notification.StreamConfig{
		TickInterval:      5 * time.Millisecond,
		HeartbeatInterval: time.Hour,
		SnapshotSize:      10,
	}, logger)

	h := &handler.Handlers{
		Auth:         handler.NewAuthHandler(nil),
		Notification: handler.NewNotificationHandler(ta.notif),
		Preference:   handler.NewPreferenceHandler(ta.prefs),
		Stream:       handler.NewStreamHandler(ta.hub, logger),
		Menu:         handler.NewMenuHandler(nil),
		Order:        handler.NewOrderHandler(nil),
	}

	authenticated := func(c *fiber.Ctx) error {
		if c.Get("Authorization") == "" {
			return middleware.Unauthorized("Missing authorization header")
		}
		c.Locals(middleware.UserContextKey, ta.user)
		c.Locals(middleware.UserIDContextKey, ta.user.ID)
		return c.Next()
	}

	ta.app = fiber.New(fiber.Config{ErrorHandler: middleware.NewErrorHandler(logger)})
	handler.RegisterRoutes(ta.app, h, authenticated)
	return ta
}

func (ta *testApp) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer test")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestNotificationHandler_List(t *testing.T) {
	ta := newTestApp(t, domain.RoleUser)
	rows := []domain.Notification{{ID: uuid.New(), UserID: &ta.user.ID, Category: domain.CategoryConfirmed, Message: "ok"}}
	ta.notif.On("List", mock.Anything, ta.user.ID, true, 5).Return(rows, nil).Once()

	resp := ta.do(t, http.MethodGet, "/api/v1/notifications?unread_only=true&limit=5", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Data []domain.Notification `json:"data"`
	}
	decode(t, resp, &body)
	require.Len(t, body.Data, 1)
	assert.Equal(t, rows[0].ID, body.Data[0].ID)
}

func TestNotificationHandler_Unauthenticated(t *testing.T) {
	ta := newTestApp(t, domain.RoleUser)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)

	resp, err := ta.app.Test(req, -1)

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNotificationHandler_SetRead(t *testing.T) {
	id := uuid.New()

	t.Run("marks unread", func(t *testing.T) {
		ta := newTestApp(t, domain.RoleUser)
		ta.notif.On("SetRead", mock.Anything, id, ta.user.ID, false).
			Return(&domain.Notification{ID: id}, nil).Once()

		resp := ta.do(t, http.MethodPatch, "/api/v1/notifications/"+id.String()+"/read", `{"read":false}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		ta.notif.AssertExpectations(t)
	})

	t.Run("empty body marks read", func(t *testing.T) {
		ta := newTestApp(t, domain.RoleUser)
		ta.notif.On("SetRead", mock.Anything, id, ta.user.ID, true).
			Return(&domain.Notification{ID: id, IsRead: true}, nil).Once()

		resp := ta.do(t, http.MethodPatch, "/api/v1/notifications/"+id.String()+"/read", "")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("error kinds map to status codes", func(t *testing.T) {
		cases := map[error]int{
			fmt.Errorf("%w: nope", domain.ErrForbidden): http.StatusForbidden,
			fmt.Errorf("%w: gone", domain.ErrNotFound):  http.StatusNotFound,
			fmt.Errorf("connection refused"):            http.StatusInternalServerError,
		}
		for err, status := range cases {
			ta := newTestApp(t, domain.RoleUser)
			ta.notif.On("SetRead", mock.Anything, id, ta.user.ID, true).Return(nil, err).Once()

			resp := ta.do(t, http.MethodPatch, "/api/v1/notifications/"+id.String()+"/read", `{"read":true}`)

			assert.Equal(t, status, resp.StatusCode, err.Error())
			var body middleware.ErrorResponse
			decode(t, resp, &body)
			assert.NotEmpty(t, body.TraceID)
		}
	})

	t.Run("malformed input is a validation error", func(t *testing.T) {
		cases := map[string]struct{ path, body string }{
			"bad id":           {"/api/v1/notifications/not-a-uuid/read", ""},
			"read is a string": {"/api/v1/notifications/" + id.String() + "/read", `{"read":"yes"}`},
			"read is a number": {"/api/v1/notifications/" + id.String() + "/read", `{"read":1}`},
			"body is not JSON": {"/api/v1/notifications/" + id.String() + "/read", `{"read":`},
		}
		for name, tc := range cases {
			t.Run(name, func(t *testing.T) {
				ta := newTestApp(t, domain.RoleUser)

				resp := ta.do(t, http.MethodPatch, tc.path, tc.body)

				assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
				var body middleware.ErrorResponse
				decode(t, resp, &body)
				assert.Equal(t, "VALIDATION_ERROR", body.Code)
				ta.notif.AssertNotCalled(t, "SetRead", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			})
		}
	})
}

func TestNotificationHandler_DeleteBadID(t *testing.T) {
	ta := newTestApp(t, domain.RoleUser)

	resp := ta.do(t, http.MethodDelete, "/api/v1/notifications/42", "")

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestNotificationHandler_Delete(t *testing.T) {
	ta := newTestApp(t, domain.RoleUser)
	id := uuid.New()
	ta.notif.On("Delete", mock.Anything, id, ta.user.ID).Return(nil).Once()

	resp := ta.do(t, http.MethodDelete, "/api/v1/notifications/"+id.String(), "")

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestNotificationHandler_MarkAllRead(t *testing.T) {
	ta := newTestApp(t, domain.RoleUser)
	failed := uuid.New()
	ta.notif.On("MarkAllRead", mock.Anything, ta.user.ID).
		Return(domain.MarkAllResult{Updated: 2, Failed: []uuid.UUID{failed}}, nil).Once()

	resp := ta.do(t, http.MethodPost, "/api/v1/notifications/mark-all-read", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body domain.MarkAllResult
	decode(t, resp, &body)
	assert.Equal(t, 2, body.Updated)
	assert.Equal(t, []uuid.UUID{failed}, body.Failed)
}

func TestNotificationHandler_Broadcast(t *testing.T) {
	t.Run("admin", func(t *testing.T) {
		ta := newTestApp(t, domain.RoleAdmin)
		ta.notif.On("Broadcast", mock.Anything, domain.CategoryMenuUpdated, "Soup day").
			Return(&domain.Notification{ID: uuid.New(), Category: domain.CategoryMenuUpdated}, nil).Once()

		resp := ta.do(t, http.MethodPost, "/api/v1/admin/notifications/broadcast", `{"category":"menu-updated","message":"Soup day"}`)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		ta.notif.AssertExpectations(t)
	})

	t.Run("regular user is forbidden", func(t *testing.T) {
		ta := newTestApp(t, domain.RoleUser)

		resp := ta.do(t, http.MethodPost, "/api/v1/admin/notifications/broadcast", `{"category":"menu_updated","message":"Soup day"}`)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		ta.notif.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown category", func(t *testing.T) {
		ta := newTestApp(t, domain.RoleAdmin)

		resp := ta.do(t, http.MethodPost, "/api/v1/admin/notifications/broadcast", `{"category":"gossip","message":"hi"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		var body middleware.ErrorResponse
		decode(t, resp, &body)
		assert.Equal(t, "VALIDATION_ERROR", body.Code)
	})
}

func TestPreferenceHandler_Update(t *testing.T) {
	ta := newTestApp(t, domain.RoleUser)
	want := domain.DefaultPreferences()
	want.Frequency = domain.FrequencyImportantOnly
	ta.prefs.On("Update", mock.Anything, ta.user.ID, mock.MatchedBy(func(in domain.UpdatePreferencesInput) bool {
		return in.Frequency != nil && *in.Frequency == "important_only"
	})).Return(&want, nil).Once()

	body := `{"order_reminders":true,"order_confirmations":true,"order_modifications":true,"menu_updates":true,"delivery_method":"in_app","frequency":"important_only"}`
	resp := ta.do(t, http.MethodPut, "/api/v1/notifications/preferences", body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var got domain.NotificationPreferences
	decode(t, resp, &got)
	assert.Equal(t, want, got)
}

func TestStreamHandler_Stream(t *testing.T) {
	ta := newTestApp(t, domain.RoleUser)
	row := domain.Notification{ID: uuid.New(), Category: domain.CategoryMenuUpdated, Message: "New menu", CreatedAt: time.Now().UTC()}
	ta.notif.On("List", mock.Anything, ta.user.ID, false, 10).Return([]domain.Notification{row}, nil).Once()
	ta.notif.On("ListSince", mock.Anything, ta.user.ID, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Notification{}, nil)

	time.AfterFunc(100*time.Millisecond, ta.hub.Shutdown)
	resp := ta.do(t, http.MethodGet, "/api/v1/notifications/stream", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(raw), "data: "), string(raw))

	payload := strings.TrimSpace(strings.TrimPrefix(strings.SplitN(string(raw), "\n\n", 2)[0], "data: "))
	var frame domain.StreamFrame
	require.NoError(t, json.Unmarshal([]byte(payload), &frame))
	require.Len(t, frame.Notifications, 1)
	assert.Equal(t, row.ID, frame.Notifications[0].ID)

	assert.Zero(t, ta.hub.Active())

	resp = ta.do(t, http.MethodGet, "/api/v1/notifications/stream", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Zero(t, ta.hub.Active())
}
