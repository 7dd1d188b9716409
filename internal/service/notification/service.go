package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"lunch-order/internal/config"
	"lunch-order/internal/domain"
	"lunch-order/internal/repository"
	"lunch-order/internal/service/email"
	"lunch-order/internal/service/preference"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = domain.MaxPageSize
	// markAllBatch is the page size MarkAllRead works through.
	markAllBatch = 1000
)

type Service interface {
	Notify(ctx context.Context, category domain.Category, message string, userID uuid.UUID) (domain.DeliveryResult, error)
	Broadcast(ctx context.Context, category domain.Category, message string) (*domain.Notification, error)
	NotifyUsers(ctx context.Context, category domain.Category, message string, userIDs []uuid.UUID) (domain.BulkResult, error)

	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]domain.Notification, error)
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time, exclude []uuid.UUID, limit int) ([]domain.Notification, error)
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)

	SetRead(ctx context.Context, id uuid.UUID, userID uuid.UUID, read bool) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (domain.MarkAllResult, error)
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
}

type service struct {
	notifRepo repository.NotificationRepository
	userRepo  repository.UserRepository
	prefs     preference.Service
	emailSvc  email.Service
	logger    *slog.Logger

	listLimit int
	batchSize int
	// background tracks broadcast email fan-outs still running.
	background sync.WaitGroup
}

func NewService(
	notifRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	prefs preference.Service,
	emailSvc email.Service,
	cfg *config.Config,
	logger *slog.Logger,
) Service {
	return &service{
		notifRepo: notifRepo,
		userRepo:  userRepo,
		prefs:     prefs,
		emailSvc:  emailSvc,
		logger:    logger.With("component", "notification"),
		listLimit: domain.ClampLimit(cfg.NotificationListLimit, DefaultListLimit, MaxListLimit),
		batchSize: markAllBatch,
	}
}

func validateDispatch(category domain.Category, message string) error {
	if !category.IsValid() {
		return fmt.Errorf("%w: unknown notification category %q", domain.ErrValidation, category)
	}
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("%w: message is required", domain.ErrValidation)
	}
	return nil
}

// Notify delivers to a single user according to their preferences. A muted
// category creates nothing. Email failures are logged and reported as
// Email=false; they never undo the in-app row.
func (s *service) Notify(ctx context.Context, category domain.Category, message string, userID uuid.UUID) (domain.DeliveryResult, error) {
	if err := validateDispatch(category, message); err != nil {
		return domain.DeliveryResult{}, err
	}

	prefs, err := s.prefs.Get(ctx, userID)
	if err != nil {
		return domain.DeliveryResult{}, err
	}

	return s.deliver(ctx, userID, *prefs, nil, category, message)
}

// deliver writes the in-app row and sends the email the preferences ask for.
// recipient may be nil; it is then loaded only when an email goes out.
func (s *service) deliver(ctx context.Context, userID uuid.UUID, prefs domain.NotificationPreferences, recipient *domain.User, category domain.Category, message string) (domain.DeliveryResult, error) {
	var result domain.DeliveryResult

	if !domain.ShouldDeliver(prefs, category) {
		s.logger.Debug("notification suppressed by preferences", "user_id", userID, "category", category)
		return result, nil
	}

	notif := &domain.Notification{
		ID:       uuid.New(),
		UserID:   &userID,
		Category: category,
		Message:  message,
	}
	if err := s.notifRepo.Create(ctx, notif); err != nil {
		return result, fmt.Errorf("failed to create notification: %w", err)
	}
	result.InApp = true

	if prefs.DeliveryMethod.IncludesEmail() {
		result.Email = s.sendEmail(ctx, userID, recipient, category, message)
	}

	return result, nil
}

func (s *service) sendEmail(ctx context.Context, userID uuid.UUID, recipient *domain.User, category domain.Category, message string) bool {
	if s.emailSvc == nil {
		return false
	}

	if recipient == nil {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil || user == nil {
			s.logger.Warn("no email address for notification", "user_id", userID, "error", err)
			return false
		}
		recipient = user
	}
	if recipient.Email == "" {
		return false
	}

	err := s.emailSvc.SendNotificationEmail(ctx, recipient.Email, recipient.FullName, category, message)
	switch {
	case errors.Is(err, email.ErrDisabled):
		return false
	case err != nil:
		s.logger.Error("failed to send notification email", "user_id", userID, "category", category, "error", err)
		return false
	}
	return true
}

// Broadcast stores one unscoped row that every user sees subject to their own
// read-time filter. Emails to users who opted into email for the category go
// out in the background and never hold up the caller.
func (s *service) Broadcast(ctx context.Context, category domain.Category, message string) (*domain.Notification, error) {
	if err := validateDispatch(category, message); err != nil {
		return nil, err
	}

	notif := &domain.Notification{
		ID:       uuid.New(),
		Category: category,
		Message:  message,
	}
	if err := s.notifRepo.Create(ctx, notif); err != nil {
		return nil, fmt.Errorf("failed to create broadcast notification: %w", err)
	}

	if s.emailSvc != nil {
		s.background.Add(1)
		go func() {
			defer s.background.Done()
			s.emailBroadcast(context.WithoutCancel(ctx), notif)
		}()
	}

	return notif, nil
}

func (s *service) emailBroadcast(ctx context.Context, notif *domain.Notification) {
	users, err := s.userRepo.ListActive(ctx)
	if err != nil {
		s.logger.Error("failed to list users for broadcast email", "notification_id", notif.ID, "error", err)
		return
	}

	sent := 0
	for i := range users {
		user := &users[i]
		if !user.DeliveryMethod.IncludesEmail() || !domain.ShouldDeliver(user.NotificationPreferences, notif.Category) {
			continue
		}
		if s.sendEmail(ctx, user.ID, user, notif.Category, notif.Message) {
			sent++
		}
	}
	s.logger.Info("broadcast emails sent", "notification_id", notif.ID, "category", notif.Category, "emails_sent", sent)
}

// NotifyUsers creates one row per eligible recipient. Recipients are loaded
// in one query; each is then handled independently and failures are logged
// and reported in the result.
func (s *service) NotifyUsers(ctx context.Context, category domain.Category, message string, userIDs []uuid.UUID) (domain.BulkResult, error) {
	result := domain.BulkResult{Failed: []uuid.UUID{}}

	if err := validateDispatch(category, message); err != nil {
		return result, err
	}

	ids := make([]uuid.UUID, 0, len(userIDs))
	seen := make(map[uuid.UUID]bool, len(userIDs))
	for _, id := range userIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	users, err := s.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		return result, fmt.Errorf("failed to load recipients: %w", err)
	}
	byID := make(map[uuid.UUID]*domain.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	for _, userID := range ids {
		user, ok := byID[userID]
		if !ok {
			s.logger.Warn("bulk notification recipient not found", "user_id", userID)
			result.Failed = append(result.Failed, userID)
			continue
		}
		if !user.IsActive {
			result.Skipped++
			continue
		}

		res, err := s.deliver(ctx, userID, user.NotificationPreferences, user, category, message)
		if err != nil {
			s.logger.Error("bulk notification failed", "user_id", userID, "category", category, "error", err)
			result.Failed = append(result.Failed, userID)
			continue
		}
		if !res.InApp {
			result.Skipped++
			continue
		}
		result.Delivered++
	}

	return result, nil
}

func (s *service) clampLimit(limit int) int {
	return domain.ClampLimit(limit, s.listLimit, MaxListLimit)
}

func (s *service) visibility(ctx context.Context, userID uuid.UUID) (domain.Visibility, error) {
	prefs, err := s.prefs.Get(ctx, userID)
	if err != nil {
		return domain.Visibility{}, err
	}
	return prefs.Visibility(), nil
}

// visibleOnly drops rows the user's preferences hide. The store already
// filters in SQL, so anything dropped here is logged.
func (s *service) visibleOnly(userID uuid.UUID, vis domain.Visibility, rows []domain.Notification) []domain.Notification {
	kept := make([]domain.Notification, 0, len(rows))
	for _, n := range rows {
		if !vis.Allows(n) {
			s.logger.Warn("store returned a notification hidden by preferences", "user_id", userID, "notification_id", n.ID, "category", n.Category)
			continue
		}
		kept = append(kept, n)
	}
	return kept
}

// List returns the user's own and broadcast notifications, newest first,
// filtered by the user's current preferences.
func (s *service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]domain.Notification, error) {
	vis, err := s.visibility(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.notifRepo.ListForRecipient(ctx, userID, vis, unreadOnly, s.clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return s.visibleOnly(userID, vis, rows), nil
}

func (s *service) ListSince(ctx context.Context, userID uuid.UUID, since time.Time, exclude []uuid.UUID, limit int) ([]domain.Notification, error) {
	vis, err := s.visibility(ctx, userID)
	if err != nil {
		return nil, err
	}
	rows, err := s.notifRepo.ListSince(ctx, userID, vis, since, exclude, s.clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return s.visibleOnly(userID, vis, rows), nil
}

func (s *service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	vis, err := s.visibility(ctx, userID)
	if err != nil {
		return 0, err
	}
	return s.notifRepo.CountUnread(ctx, userID, vis)
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	notif, err := s.notifRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification: %w", err)
	}
	if notif == nil {
		return nil, fmt.Errorf("%w: notification %s", domain.ErrNotFound, id)
	}
	return notif, nil
}

// SetRead flips the read flag on the caller's own row or on a broadcast row.
// Setting the current value again is a no-op.
func (s *service) SetRead(ctx context.Context, id uuid.UUID, userID uuid.UUID, read bool) (*domain.Notification, error) {
	notif, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !notif.IsBroadcast() && !notif.OwnedBy(userID) {
		return nil, fmt.Errorf("%w: notification belongs to another user", domain.ErrForbidden)
	}

	if notif.IsRead == read {
		return notif, nil
	}

	updated, err := s.notifRepo.SetRead(ctx, id, read)
	if err != nil {
		return nil, fmt.Errorf("failed to update notification: %w", err)
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: notification %s", domain.ErrNotFound, id)
	}
	return updated, nil
}

// MarkAllRead marks every unread notification visible to the user, one page
// at a time. A failing row is reported once and does not stop the others.
func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (domain.MarkAllResult, error) {
	result := domain.MarkAllResult{Failed: []uuid.UUID{}}

	vis, err := s.visibility(ctx, userID)
	if err != nil {
		return result, err
	}

	failed := map[uuid.UUID]bool{}
	for {
		unread, err := s.notifRepo.ListForRecipient(ctx, userID, vis, true, s.batchSize)
		if err != nil {
			return result, fmt.Errorf("failed to list unread notifications: %w", err)
		}

		updated := 0
		for _, notif := range unread {
			if failed[notif.ID] {
				continue
			}
			if _, err := s.SetRead(ctx, notif.ID, userID, true); err != nil {
				s.logger.Warn("failed to mark notification read", "notification_id", notif.ID, "user_id", userID, "error", err)
				failed[notif.ID] = true
				result.Failed = append(result.Failed, notif.ID)
				continue
			}
			updated++
		}
		result.Updated += updated

		// A short page is the last one; a page of only failures would repeat forever.
		if len(unread) < s.batchSize || updated == 0 {
			return result, nil
		}
	}
}

// Delete removes a row scoped to the caller. Broadcast rows belong to no one
// and cannot be deleted here.
func (s *service) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	notif, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if !notif.OwnedBy(userID) {
		return fmt.Errorf("%w: only the recipient can delete this notification", domain.ErrForbidden)
	}

	return s.notifRepo.Delete(ctx, id, userID)
}
