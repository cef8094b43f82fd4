package cleanup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gigboard/backend/internal/domain/model"
	pgrepo "github.com/gigboard/backend/internal/repo/postgres"
)

const (
	defaultInterval  = 6 * time.Hour
	defaultRetention = 30 * 24 * time.Hour
)

type ImageStore interface {
	ListRejectedServiceImages(ctx context.Context, cutoff time.Time) ([]model.Service, error)
	ClearServiceImage(ctx context.Context, serviceID int64, imageKey string) error
}

type ObjectDeleter interface {
	Delete(ctx context.Context, key string) error
}

// Job removes cover images of services that stayed rejected longer than the
// retention window.
type Job struct {
	store     ImageStore
	storage   ObjectDeleter
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func NewRejectedImageJob(store ImageStore, storage ObjectDeleter, interval, retention time.Duration, logger *zap.Logger) *Job {
	if interval < 0 {
		interval = defaultInterval
	}
	if retention <= 0 {
		retention = defaultRetention
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		store:     store,
		storage:   storage,
		retention: retention,
		interval:  interval,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.store == nil || j.storage == nil {
		return nil
	}

	cutoff := j.now().Add(-j.retention)
	services, err := j.store.ListRejectedServiceImages(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list rejected service images: %w", err)
	}
	if len(services) == 0 {
		return nil
	}

	cleared := 0
	for _, service := range services {
		if service.ImageKey == nil {
			continue
		}
		key := *service.ImageKey
		if err := j.storage.Delete(ctx, key); err != nil {
			j.logger.Warn("failed to delete service image from storage", zap.Error(err), zap.String("object_key", key))
			continue
		}
		if err := j.store.ClearServiceImage(ctx, service.ID, key); err != nil {
			if errors.Is(err, pgrepo.ErrNotFound) {
				continue
			}
			return fmt.Errorf("clear service image: %w", err)
		}
		cleared++
	}

	j.logger.Info("cleanup rejected service images completed", zap.Int("cleared", cleared))
	return nil
}

// Loop runs the job immediately and then on every tick until ctx is done.
// Run errors are logged; the loop keeps going.
func (j *Job) Loop(ctx context.Context) {
	if j.interval == 0 {
		return
	}

	j.runLogged(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.runLogged(ctx)
		}
	}
}

func (j *Job) runLogged(ctx context.Context) {
	if err := j.Run(ctx); err != nil && ctx.Err() == nil {
		j.logger.Warn("cleanup run failed", zap.Error(err))
	}
}
