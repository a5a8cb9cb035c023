package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/hari13172/alumni-portal-api/pkg/errors"
	"github.com/hari13172/alumni-portal-api/pkg/storage"
)

type selfieStorage interface {
	Save(key string, data []byte) error
	Open(key string) (*os.File, error)
	Delete(key string) error
	CleanupOlderThan(ttl time.Duration, keep func(key string) bool) ([]string, error)
}

// SelfieConfig bounds accepted uploads and re-encoding quality.
type SelfieConfig struct {
	MaxFileSize     int64
	JPEGQuality     int
	CleanupInterval time.Duration
}

// SelfieService validates captured frames and normalises them to JPEG
// before handing them to storage.
type SelfieService struct {
	store  selfieStorage
	logger *zap.Logger
	cfg    SelfieConfig
}

// NewSelfieService constructs the selfie service with defaults.
func NewSelfieService(store selfieStorage, logger *zap.Logger, cfg SelfieConfig) *SelfieService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 5 * 1024 * 1024
	}
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = 80
	}
	return &SelfieService{store: store, logger: logger, cfg: cfg}
}

// Store decodes the uploaded frame, re-encodes it as JPEG and persists it
// under a fresh random key.
func (s *SelfieService) Store(data []byte) (string, error) {
	if len(data) == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "selfie image is required")
	}
	if int64(len(data)) > s.cfg.MaxFileSize {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("selfie exceeds %d bytes limit", s.cfg.MaxFileSize))
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "selfie is not a valid image")
	}

	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: s.cfg.JPEGQuality}); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode selfie")
	}

	key, err := storage.NewKey()
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create selfie key")
	}
	if err := s.store.Save(key, buf.Bytes()); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist selfie")
	}

	s.logger.Debug("selfie stored", zap.String("key", key), zap.String("source_format", format), zap.Int("bytes", buf.Len()))
	return key, nil
}

// Open returns a read handle for a stored selfie.
func (s *SelfieService) Open(key string) (*os.File, error) {
	file, err := s.store.Open(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "selfie not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open selfie")
	}
	return file, nil
}

// StartCleanup boots a goroutine that periodically purges stored selfies
// older than the draft TTL. liveKeys supplies the keys still referenced
// by a profile; those always survive. Drafts vanish from Redis on expiry
// without a callback, so orphaned images are reclaimed here.
func (s *SelfieService) StartCleanup(ctx context.Context, ttl time.Duration, liveKeys func(context.Context) (map[string]struct{}, error)) {
	if s.cfg.CleanupInterval <= 0 || ttl <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx, ttl, liveKeys)
			}
		}
	}()
}

func (s *SelfieService) cleanupExpired(ctx context.Context, ttl time.Duration, liveKeys func(context.Context) (map[string]struct{}, error)) {
	referenced, err := liveKeys(ctx)
	if err != nil {
		s.logger.Warn("selfie cleanup skipped, live key lookup failed", zap.Error(err))
		return
	}
	deleted, err := s.store.CleanupOlderThan(ttl, func(key string) bool {
		_, ok := referenced[key]
		return ok
	})
	if err != nil {
		s.logger.Warn("selfie cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Info("purged expired draft selfies", zap.Int("count", len(deleted)))
	}
}

// Remove deletes a stored selfie, tolerating missing files.
func (s *SelfieService) Remove(key string) error {
	if key == "" {
		return nil
	}
	if err := s.store.Delete(key); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete selfie")
	}
	return nil
}
