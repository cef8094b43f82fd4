package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gigboard/backend/internal/domain/enums"
	"github.com/gigboard/backend/internal/domain/model"
	pgrepo "github.com/gigboard/backend/internal/repo/postgres"
)

var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("service not found")
	ErrForbidden   = errors.New("service belongs to another user")
	ErrNotPending  = errors.New("service is no longer pending")
	ErrUnsupported = errors.New("unsupported image type")
)

const (
	signedURLTTL  = 15 * time.Minute
	MaxImageBytes = 5 << 20
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type Store interface {
	GetService(ctx context.Context, serviceID int64) (model.Service, error)
	SetServiceImage(ctx context.Context, serviceID int64, imageKey string) (model.Service, error)
}

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// Service stores service listing cover images and signs links to them.
type Service struct {
	store   Store
	storage ObjectStorage
	log     *zap.Logger
	now     func() time.Time
}

func NewService(store Store, storage ObjectStorage, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:   store,
		storage: storage,
		log:     log,
		now:     time.Now,
	}
}

func (s *Service) UploadServiceImage(ctx context.Context, ownerID string, serviceID int64, contentType string, body io.Reader, size int64) (model.Service, error) {
	if strings.TrimSpace(ownerID) == "" || serviceID <= 0 || body == nil || size <= 0 || size > MaxImageBytes {
		return model.Service{}, ErrValidation
	}
	ext, ok := imageExtensions[normalizeContentType(contentType)]
	if !ok {
		return model.Service{}, ErrUnsupported
	}
	if s.store == nil || s.storage == nil {
		return model.Service{}, fmt.Errorf("media dependencies are not configured")
	}

	current, err := s.store.GetService(ctx, serviceID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrNotFound) {
			return model.Service{}, ErrNotFound
		}
		return model.Service{}, fmt.Errorf("get service: %w", err)
	}
	if current.FreelancerID != ownerID {
		return model.Service{}, ErrForbidden
	}
	if current.Status != enums.ModerationStatusPending {
		return model.Service{}, ErrNotPending
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return model.Service{}, fmt.Errorf("ensure bucket: %w", err)
	}

	objectKey, err := s.buildObjectKey(serviceID, ext)
	if err != nil {
		return model.Service{}, fmt.Errorf("build object key: %w", err)
	}
	if err := s.storage.PutObject(ctx, objectKey, io.LimitReader(body, size), size, normalizeContentType(contentType)); err != nil {
		return model.Service{}, fmt.Errorf("put object: %w", err)
	}

	updated, err := s.store.SetServiceImage(ctx, serviceID, objectKey)
	if err != nil {
		s.deleteQuietly(ctx, objectKey)
		if errors.Is(err, pgrepo.ErrNotFound) {
			// moderated between the read and the write
			return model.Service{}, ErrNotPending
		}
		return model.Service{}, fmt.Errorf("set service image: %w", err)
	}

	if current.ImageKey != nil && *current.ImageKey != objectKey {
		s.deleteQuietly(ctx, *current.ImageKey)
	}

	return s.SignService(ctx, updated), nil
}

// SignService fills ImageURL when the listing has a stored image. Signing
// errors are logged and leave the URL empty.
func (s *Service) SignService(ctx context.Context, service model.Service) model.Service {
	if s.storage == nil || service.ImageKey == nil || *service.ImageKey == "" {
		return service
	}

	url, err := s.storage.PresignGet(ctx, *service.ImageKey, signedURLTTL)
	if err != nil {
		s.log.Warn("presign service image failed", zap.Int64("service_id", service.ID), zap.Error(err))
		return service
	}
	service.ImageURL = url
	return service
}

func (s *Service) SignServices(ctx context.Context, services []model.Service) []model.Service {
	for i := range services {
		services[i] = s.SignService(ctx, services[i])
	}
	return services
}

func (s *Service) deleteQuietly(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.log.Warn("delete service image failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) buildObjectKey(serviceID int64, ext string) (string, error) {
	rnd := make([]byte, 8)
	if _, err := rand.Read(rnd); err != nil {
		return "", err
	}

	stamp := s.now().UTC().Format("20060102T150405")
	return fmt.Sprintf("services/%d/cover_%s_%s%s", serviceID, stamp, hex.EncodeToString(rnd), ext), nil
}

func normalizeContentType(contentType string) string {
	value, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(value))
}
