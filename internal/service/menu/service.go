package menu

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"

	"lunch-order/internal/config"
	"lunch-order/internal/domain"
	"lunch-order/internal/pkg/i18n"
	"lunch-order/internal/repository"
	"lunch-order/internal/service/notification"
)

const (
	cacheTTL     = 10 * time.Minute
	maxImageSize = 5 << 20
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ImageStore is the subset of *minio.Client used for menu images.
type ImageStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

type Service interface {
	Get(ctx context.Context, serviceDate string) (*domain.Menu, error)
	Today(ctx context.Context) (*domain.Menu, error)
	Upsert(ctx context.Context, adminID uuid.UUID, serviceDate string, input domain.UpsertMenuInput) (*domain.Menu, error)
	UploadImage(ctx context.Context, serviceDate string, contentType string, size int64, reader io.Reader) (*domain.Menu, error)
}

type service struct {
	menuRepo repository.MenuRepository
	notifSvc notification.Service
	images   ImageStore
	redis    *redis.Client
	catalog  *i18n.Catalog
	cfg      *config.Config
	logger   *slog.Logger
}

func NewService(
	menuRepo repository.MenuRepository,
	notifSvc notification.Service,
	images ImageStore,
	redis *redis.Client,
	catalog *i18n.Catalog,
	cfg *config.Config,
	logger *slog.Logger,
) Service {
	return &service{
		menuRepo: menuRepo,
		notifSvc: notifSvc,
		images:   images,
		redis:    redis,
		catalog:  catalog,
		cfg:      cfg,
		logger:   logger.With("component", "menu"),
	}
}

// cachedMenu keeps the image key, which is hidden from API responses.
type cachedMenu struct {
	domain.Menu
	ImageKey *string `json:"image_key"`
}

func cacheKey(serviceDate string) string {
	return "menu:" + serviceDate
}

func (s *service) Today(ctx context.Context) (*domain.Menu, error) {
	return s.Get(ctx, time.Now().Format(domain.MenuDateLayout))
}

func (s *service) Get(ctx context.Context, serviceDate string) (*domain.Menu, error) {
	date, err := domain.ParseServiceDate(serviceDate)
	if err != nil {
		return nil, err
	}

	if menu := s.fromCache(ctx, date); menu != nil {
		s.attachImageURL(ctx, menu)
		return menu, nil
	}

	menu, err := s.menuRepo.GetByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu: %w", err)
	}
	if menu == nil {
		return nil, fmt.Errorf("%w: no menu for %s", domain.ErrNotFound, date)
	}

	s.toCache(ctx, menu)
	s.attachImageURL(ctx, menu)
	return menu, nil
}

// Upsert publishes or replaces the menu for a date and tells everyone about
// it. Notification failures never fail the menu write.
func (s *service) Upsert(ctx context.Context, adminID uuid.UUID, serviceDate string, input domain.UpsertMenuInput) (*domain.Menu, error) {
	date, err := domain.ParseServiceDate(serviceDate)
	if err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.menuRepo.GetByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu: %w", err)
	}

	menu := &domain.Menu{
		ID:          uuid.New(),
		ServiceDate: date,
		Items:       input.Items,
		OrderCutoff: input.OrderCutoff,
		CreatedBy:   adminID,
	}
	if err := s.menuRepo.Upsert(ctx, menu); err != nil {
		return nil, fmt.Errorf("failed to save menu: %w", err)
	}
	s.invalidate(ctx, date)

	key := "MENU_POSTED"
	if existing != nil {
		key = "MENU_UPDATED"
	}
	message := s.catalog.Format(s.cfg.Locale, key, date)
	if _, err := s.notifSvc.Broadcast(ctx, domain.CategoryMenuUpdated, message); err != nil {
		s.logger.Error("failed to broadcast menu update", "service_date", date, "error", err)
	}

	s.attachImageURL(ctx, menu)
	return menu, nil
}

func (s *service) UploadImage(ctx context.Context, serviceDate string, contentType string, size int64, reader io.Reader) (*domain.Menu, error) {
	if s.images == nil {
		return nil, fmt.Errorf("%w: image storage is not configured", domain.ErrValidation)
	}

	date, err := domain.ParseServiceDate(serviceDate)
	if err != nil {
		return nil, err
	}

	contentType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported image type %q", domain.ErrValidation, contentType)
	}
	if size <= 0 || size > maxImageSize {
		return nil, fmt.Errorf("%w: image must be between 1 byte and %d bytes", domain.ErrValidation, maxImageSize)
	}

	menu, err := s.menuRepo.GetByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu: %w", err)
	}
	if menu == nil {
		return nil, fmt.Errorf("%w: no menu for %s", domain.ErrNotFound, date)
	}

	objectName := path.Join("menus", date, uuid.New().String()+ext)
	if _, err := s.images.PutObject(ctx, s.cfg.MinIOBucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return nil, fmt.Errorf("failed to upload to MinIO: %w", err)
	}

	if err := s.menuRepo.SetImage(ctx, date, objectName); err != nil {
		_ = s.images.RemoveObject(ctx, s.cfg.MinIOBucket, objectName, minio.RemoveObjectOptions{})
		return nil, err
	}

	if menu.ImageKey != nil {
		if err := s.images.RemoveObject(ctx, s.cfg.MinIOBucket, *menu.ImageKey, minio.RemoveObjectOptions{}); err != nil {
			s.logger.Warn("failed to remove previous menu image", "object", *menu.ImageKey, "error", err)
		}
	}
	s.invalidate(ctx, date)

	menu.ImageKey = &objectName
	s.attachImageURL(ctx, menu)
	return menu, nil
}

func (s *service) attachImageURL(ctx context.Context, menu *domain.Menu) {
	if menu.ImageKey == nil || s.images == nil {
		return
	}
	u, err := s.images.PresignedGetObject(ctx, s.cfg.MinIOBucket, *menu.ImageKey, s.cfg.MinIOURLExpiry, nil)
	if err != nil {
		s.logger.Warn("failed to presign menu image", "object", *menu.ImageKey, "error", err)
		return
	}
	menu.ImageURL = u.String()
}

func (s *service) fromCache(ctx context.Context, date string) *domain.Menu {
	if s.redis == nil {
		return nil
	}
	data, err := s.redis.Get(ctx, cacheKey(date)).Bytes()
	if err != nil {
		return nil
	}
	var cached cachedMenu
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil
	}
	menu := cached.Menu
	menu.ImageKey = cached.ImageKey
	return &menu
}

func (s *service) toCache(ctx context.Context, menu *domain.Menu) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(cachedMenu{Menu: *menu, ImageKey: menu.ImageKey})
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, cacheKey(menu.ServiceDate), data, cacheTTL).Err(); err != nil {
		s.logger.Warn("failed to cache menu", "service_date", menu.ServiceDate, "error", err)
	}
}

func (s *service) invalidate(ctx context.Context, date string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, cacheKey(date)).Err(); err != nil {
		s.logger.Warn("failed to invalidate menu cache", "service_date", date, "error", err)
	}
}
