package service

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/timmy/memeverse/internal/logger"
	"github.com/timmy/memeverse/internal/storage"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultMaxUploadBytes is the largest image accepted for upload.
	DefaultMaxUploadBytes = 5 << 20
	// DefaultImageWidth and DefaultImageHeight are used when dimensions cannot be decoded.
	DefaultImageWidth  = 500
	DefaultImageHeight = 500
)

var (
	// ErrNotImage is returned when uploaded content is not an image.
	ErrNotImage = errors.New("file is not an image")
	// ErrTooLarge is returned when uploaded content exceeds the size limit.
	ErrTooLarge = errors.New("file exceeds upload size limit")
	// ErrStorageDisabled is returned by Store when no object storage is configured.
	ErrStorageDisabled = errors.New("object storage is not configured")
)

// MediaConfig holds limits for MediaService.
type MediaConfig struct {
	MaxBytes      int64
	DefaultWidth  int
	DefaultHeight int
}

// MediaInfo describes a probed image.
type MediaInfo struct {
	ContentType string `json:"content_type"`
	Extension   string `json:"extension"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	MD5         string `json:"md5"`
}

// StoredMedia is an image that has been written to object storage.
type StoredMedia struct {
	MediaInfo
	Key string `json:"key"`
	URL string `json:"url"`
}

// MediaService validates uploaded images and writes them to object storage.
type MediaService struct {
	storage storage.ObjectStorage
	logger  *logger.Logger
	cfg     MediaConfig
}

// NewMediaService creates a media service. objectStorage may be nil, in which case
// only Probe is usable.
func NewMediaService(objectStorage storage.ObjectStorage, log *logger.Logger, cfg MediaConfig) *MediaService {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxUploadBytes
	}
	if cfg.DefaultWidth <= 0 {
		cfg.DefaultWidth = DefaultImageWidth
	}
	if cfg.DefaultHeight <= 0 {
		cfg.DefaultHeight = DefaultImageHeight
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &MediaService{storage: objectStorage, logger: log, cfg: cfg}
}

// StorageEnabled reports whether Store can write images.
func (s *MediaService) StorageEnabled() bool {
	return s.storage != nil
}

// MaxBytes returns the upload size limit.
func (s *MediaService) MaxBytes() int64 {
	return s.cfg.MaxBytes
}

// Probe validates data and reads its dimensions.
// Undecodable dimensions fall back to the configured defaults.
func (s *MediaService) Probe(data []byte) (*MediaInfo, error) {
	if int64(len(data)) > s.cfg.MaxBytes {
		return nil, ErrTooLarge
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, fmt.Errorf("%w: detected %s", ErrNotImage, mtype.String())
	}

	sum := md5.Sum(data)
	info := &MediaInfo{
		ContentType: mtype.String(),
		Extension:   strings.TrimPrefix(mtype.Extension(), "."),
		Width:       s.cfg.DefaultWidth,
		Height:      s.cfg.DefaultHeight,
		MD5:         hex.EncodeToString(sum[:]),
	}
	if info.Extension == "" {
		info.Extension = "bin"
	}

	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil && cfg.Width > 0 && cfg.Height > 0 {
		info.Width = cfg.Width
		info.Height = cfg.Height
	}
	return info, nil
}

// Store validates data and writes it under uploads/<md5[:2]>/<md5>.<ext>.
// Identical content maps to the same key and is only written once.
func (s *MediaService) Store(ctx context.Context, data []byte) (*StoredMedia, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}

	info, err := s.Probe(data)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("uploads/%s/%s.%s", info.MD5[:2], info.MD5, info.Extension)

	exists, err := s.storage.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check object: %w", err)
	}
	if !exists {
		if err := s.storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), info.ContentType); err != nil {
			return nil, err
		}
		logger.With(logger.Fields{"key": key}).WithSize(len(data)).Debug(ctx, "Stored uploaded image")
	}

	return &StoredMedia{MediaInfo: *info, Key: key, URL: s.storage.GetURL(key)}, nil
}
